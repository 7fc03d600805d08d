package report

import (
	"fmt"
	"io"
)

// errWriter accumulates the first write error encountered across a
// sequence of Fprintf calls, so callers can check it once at the end
// instead of after every line.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
