// Command rawbridge converts and inspects camera raw files by driving
// the LibRaw command-line tools.
package main

import (
	"os"

	"github.com/pixelfold/rawbridge/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
