// Package dcraw opens digital-camera raw files by driving the LibRaw
// command-line tools. It locates the tool binaries, translates typed
// conversion options into their argument vectors, runs the tools with
// captured output, and loads the intermediate TIFF they produce.
package dcraw

import "runtime"

// Tool identifies one of the external LibRaw executables.
// Immutable; create once per operation.
type Tool struct {
	// Name is the executable name without any platform suffix.
	Name string

	// ConfigKey is the configuration key that may override the tool's
	// location.
	ConfigKey string
}

// The tools the package drives. Convert and Unprocessed both produce a
// TIFF next to their input; Identify only describes the file on stdout.
var (
	Convert     = Tool{Name: "dcraw_emu", ConfigKey: "tools.dcraw_emu.path"}
	Identify    = Tool{Name: "raw-identify", ConfigKey: "tools.raw_identify.path"}
	Unprocessed = Tool{Name: "unprocessed_raw", ConfigKey: "tools.unprocessed_raw.path"}
)

// ExecutableName returns the platform-specific file name of the tool.
func (t Tool) ExecutableName() string {
	if runtime.GOOS == "windows" {
		return t.Name + ".exe"
	}
	return t.Name
}
