// Package mi implements the GDB/MI wire codec: parsing and serializing the
// line-oriented records the debugger writes on its MI channel. The package
// does no I/O.
package mi

import (
	"bytes"
	"encoding/json"
)

// Kind identifies the record category, determined by the line's sigil.
type Kind string

const (
	KindResult        Kind = "result"         // ^
	KindExecAsync     Kind = "exec-async"     // *
	KindNotifyAsync   Kind = "notify-async"   // =
	KindStatusAsync   Kind = "status-async"   // +
	KindConsoleStream Kind = "console-stream" // ~
	KindTargetStream  Kind = "target-stream"  // @
	KindLogStream     Kind = "log-stream"     // &
	KindPrompt        Kind = "prompt"         // (gdb)
)

// Stream reports whether the record carries a plain string payload.
func (k Kind) Stream() bool {
	return k == KindConsoleStream || k == KindTargetStream || k == KindLogStream
}

// Notification reports whether the record feeds the inferior state machine.
// Exec-async records (*running, *stopped) and notify-async records both
// arrive independently of any specific command.
func (k Kind) Notification() bool {
	return k == KindExecAsync || k == KindNotifyAsync
}

// Record is one parsed MI line.
type Record struct {
	// Token correlates a result record to the command that carried the same
	// token. Zero when absent.
	Token int
	Kind  Kind
	// Class is the result class or async message: "done", "error",
	// "running", "stopped", "thread-group-exited", ...
	Class string
	// Payload is a StringValue for stream records, a MapValue (possibly
	// empty) for result and async records, and nil for the prompt.
	Payload Value
}

// MarshalJSON renders the record in the shape tool results carry:
// {"token":..,"type":..,"message":..,"payload":..}.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if r.Token > 0 {
		buf.WriteString(`"token":`)
		b, _ := json.Marshal(r.Token)
		buf.Write(b)
		buf.WriteByte(',')
	}
	buf.WriteString(`"type":`)
	b, _ := json.Marshal(string(r.Kind))
	buf.Write(b)
	if r.Class != "" {
		buf.WriteString(`,"message":`)
		b, _ = json.Marshal(r.Class)
		buf.Write(b)
	}
	if r.Payload != nil {
		buf.WriteString(`,"payload":`)
		b, err := r.Payload.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
