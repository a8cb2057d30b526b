package mi

import "strconv"

// Serialize renders a record back to its wire form. For every record
// produced by Parse, Parse(Serialize(r)) yields a semantically equal record.
func Serialize(r Record) string {
	if r.Kind == KindPrompt {
		return "(gdb)"
	}
	var dst []byte
	if r.Token > 0 {
		dst = strconv.AppendInt(dst, int64(r.Token), 10)
	}
	dst = append(dst, sigil(r.Kind))
	if r.Kind.Stream() {
		s, _ := r.Payload.(StringValue)
		dst = appendQuoted(dst, string(s))
		return string(dst)
	}
	dst = append(dst, r.Class...)
	if m, ok := r.Payload.(MapValue); ok && len(m) > 0 {
		dst = append(dst, ',')
		dst = m.appendFields(dst)
	}
	return string(dst)
}

func sigil(k Kind) byte {
	switch k {
	case KindResult:
		return '^'
	case KindExecAsync:
		return '*'
	case KindNotifyAsync:
		return '='
	case KindStatusAsync:
		return '+'
	case KindConsoleStream:
		return '~'
	case KindTargetStream:
		return '@'
	case KindLogStream:
		return '&'
	}
	return '?'
}
