package gdb

import "fmt"

// TransportError reports a failure talking to the GDB subprocess: a broken
// pipe, a dead process, or a failed write. It is converted into a failed
// Outcome at the controller boundary and never escapes to callers.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gdb transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
