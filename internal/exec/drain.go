package exec

import (
	"bufio"
	"io"
	"strings"
)

// drain consumes one output stream of a child process line by line.
// Each line is appended to the drain's own buffer and, if a listener is
// registered, forwarded as "<name>: <line>" while the process is still
// running. The buffer is owned exclusively by the drain goroutine until
// wait returns.
type drain struct {
	r      io.Reader
	prefix string
	log    LogFunc
	buf    strings.Builder
	done   chan struct{}
}

func newDrain(r io.Reader, prefix string, log LogFunc) *drain {
	return &drain{r: r, prefix: prefix, log: log, done: make(chan struct{})}
}

func (d *drain) start() {
	go d.run()
}

func (d *drain) run() {
	defer close(d.done)

	scanner := bufio.NewScanner(d.r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		d.buf.WriteString(line)
		d.buf.WriteByte('\n')
		if d.log != nil {
			d.log(d.prefix + ": " + line)
		}
	}
	// A read error ends the drain but does not fail the invocation;
	// whatever was captured so far is returned as best effort.
	if err := scanner.Err(); err != nil && d.log != nil {
		d.log(d.prefix + ": error reading output: " + err.Error())
	}
}

// wait blocks until the underlying stream reaches end-of-file.
func (d *drain) wait() {
	<-d.done
}

// text returns the accumulated output. Only valid after wait.
func (d *drain) text() string {
	return d.buf.String()
}
