package mi

import (
	"bytes"
	"encoding/json"
)

// Value is the recursively nested payload of a result or async record: a
// quoted string, a tuple of key/value fields, or a list. The tagged union
// keeps round-trip fidelity (insertion order of tuple fields is preserved)
// and lets consumers switch exhaustively.
type Value interface {
	json.Marshaler
	appendMI(dst []byte) []byte
	isValue()
}

// StringValue is a double-quoted MI constant, stored de-escaped.
type StringValue string

func (StringValue) isValue() {}

func (v StringValue) appendMI(dst []byte) []byte {
	return appendQuoted(dst, string(v))
}

func (v StringValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(v))
}

// Field is one key=value entry of a tuple.
type Field struct {
	Key   string
	Value Value
}

// MapValue is an MI tuple. Fields keep their wire order; keys may repeat.
type MapValue []Field

func (MapValue) isValue() {}

// Get returns the first field with the given key.
func (m MapValue) Get(key string) (Value, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// GetString returns the first field with the given key when it holds a
// string constant.
func (m MapValue) GetString(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(StringValue)
	return string(s), ok
}

func (m MapValue) appendMI(dst []byte) []byte {
	dst = append(dst, '{')
	dst = m.appendFields(dst)
	return append(dst, '}')
}

func (m MapValue) appendFields(dst []byte) []byte {
	for i, f := range m {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, f.Key...)
		dst = append(dst, '=')
		dst = f.Value.appendMI(dst)
	}
	return dst
}

func (m MapValue) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(f.Key)
		buf.Write(k)
		buf.WriteByte(':')
		v, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ListValue is an MI list. Elements that arrive as key=value pairs are
// represented as single-field MapValues, so the list behaves as an ordered
// sequence of mappings.
type ListValue []Value

func (ListValue) isValue() {}

func (l ListValue) appendMI(dst []byte) []byte {
	dst = append(dst, '[')
	for i, v := range l {
		if i > 0 {
			dst = append(dst, ',')
		}
		// A single-field map inside a list round-trips as bare key=value.
		if m, ok := v.(MapValue); ok && len(m) == 1 {
			dst = m.appendFields(dst)
			continue
		}
		dst = v.appendMI(dst)
	}
	return append(dst, ']')
}

func (l ListValue) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func appendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\r':
			dst = append(dst, '\\', 'r')
		default:
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}
