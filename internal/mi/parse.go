package mi

import (
	"fmt"
	"strings"
)

// ProtocolError reports a line that matches none of the known MI grammars.
type ProtocolError struct {
	Line   string
	Offset int
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("mi: %s at offset %d in %q", e.Reason, e.Offset, e.Line)
}

// Parse decodes one MI output line into a Record.
//
// Grammar: an optional decimal token, then a sigil selecting the kind. For
// result and async kinds the rest is <class>[,key=value...]; for stream
// kinds it is a single quoted string; a bare "(gdb)" line is the prompt.
func Parse(line string) (Record, error) {
	p := &parser{line: strings.TrimRight(line, "\r\n")}
	return p.record()
}

type parser struct {
	line string
	pos  int
}

func (p *parser) fail(reason string) error {
	return &ProtocolError{Line: p.line, Offset: p.pos, Reason: reason}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.line)
}

func (p *parser) peek() byte {
	return p.line[p.pos]
}

func (p *parser) record() (Record, error) {
	var rec Record

	// Optional correlation token.
	start := p.pos
	for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
		p.pos++
	}
	if p.pos > start {
		token := 0
		for _, c := range p.line[start:p.pos] {
			token = token*10 + int(c-'0')
		}
		rec.Token = token
	}

	if p.eof() {
		return rec, p.fail("empty record")
	}

	sigil := p.peek()
	switch sigil {
	case '^':
		rec.Kind = KindResult
	case '*':
		rec.Kind = KindExecAsync
	case '=':
		rec.Kind = KindNotifyAsync
	case '+':
		rec.Kind = KindStatusAsync
	case '~':
		rec.Kind = KindConsoleStream
	case '@':
		rec.Kind = KindTargetStream
	case '&':
		rec.Kind = KindLogStream
	case '(':
		if rec.Token == 0 && strings.TrimRight(p.line[p.pos:], " ") == "(gdb)" {
			rec.Kind = KindPrompt
			return rec, nil
		}
		return rec, p.fail("unknown sigil")
	default:
		return rec, p.fail("unknown sigil")
	}
	p.pos++

	if rec.Kind.Stream() {
		s, err := p.quoted()
		if err != nil {
			return rec, err
		}
		if !p.eof() {
			return rec, p.fail("trailing data after stream payload")
		}
		rec.Payload = StringValue(s)
		return rec, nil
	}

	class, err := p.class()
	if err != nil {
		return rec, err
	}
	rec.Class = class

	payload := MapValue{}
	for !p.eof() {
		if p.peek() != ',' {
			return rec, p.fail("expected ','")
		}
		p.pos++
		field, err := p.field()
		if err != nil {
			return rec, err
		}
		payload = append(payload, field)
	}
	rec.Payload = payload
	return rec, nil
}

func (p *parser) class() (string, error) {
	start := p.pos
	for !p.eof() && p.peek() != ',' {
		p.pos++
	}
	if p.pos == start {
		return "", p.fail("missing class")
	}
	return p.line[start:p.pos], nil
}

func (p *parser) field() (Field, error) {
	key, err := p.key()
	if err != nil {
		return Field{}, err
	}
	value, err := p.value()
	if err != nil {
		return Field{}, err
	}
	return Field{Key: key, Value: value}, nil
}

func (p *parser) key() (string, error) {
	start := p.pos
	for !p.eof() {
		switch p.peek() {
		case '=':
			if p.pos == start {
				return "", p.fail("missing key")
			}
			key := p.line[start:p.pos]
			p.pos++
			return key, nil
		case ',', '{', '}', '[', ']', '"':
			return "", p.fail("malformed key")
		}
		p.pos++
	}
	return "", p.fail("missing '=' after key")
}

func (p *parser) value() (Value, error) {
	if p.eof() {
		return nil, p.fail("missing value")
	}
	switch p.peek() {
	case '"':
		s, err := p.quoted()
		if err != nil {
			return nil, err
		}
		return StringValue(s), nil
	case '{':
		return p.tuple()
	case '[':
		return p.list()
	}
	return nil, p.fail("malformed value")
}

func (p *parser) tuple() (Value, error) {
	p.pos++ // consume '{'
	m := MapValue{}
	if !p.eof() && p.peek() == '}' {
		p.pos++
		return m, nil
	}
	for {
		field, err := p.field()
		if err != nil {
			return nil, err
		}
		m = append(m, field)
		if p.eof() {
			return nil, p.fail("unterminated tuple")
		}
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return m, nil
		default:
			return nil, p.fail("malformed tuple")
		}
	}
}

func (p *parser) list() (Value, error) {
	p.pos++ // consume '['
	l := ListValue{}
	if !p.eof() && p.peek() == ']' {
		p.pos++
		return l, nil
	}
	for {
		var (
			v   Value
			err error
		)
		if !p.eof() && (p.peek() == '"' || p.peek() == '{' || p.peek() == '[') {
			v, err = p.value()
		} else {
			// Bare key=value element: the list is an ordered sequence of
			// single-field mappings.
			var field Field
			field, err = p.field()
			v = MapValue{field}
		}
		if err != nil {
			return nil, err
		}
		l = append(l, v)
		if p.eof() {
			return nil, p.fail("unterminated list")
		}
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return l, nil
		default:
			return nil, p.fail("malformed list")
		}
	}
}

func (p *parser) quoted() (string, error) {
	if p.eof() || p.peek() != '"' {
		return "", p.fail("expected '\"'")
	}
	p.pos++
	var b strings.Builder
	for !p.eof() {
		c := p.peek()
		p.pos++
		switch c {
		case '"':
			return b.String(), nil
		case '\\':
			if p.eof() {
				return "", p.fail("dangling escape")
			}
			e := p.peek()
			p.pos++
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '"':
				b.WriteByte(e)
			default:
				// GDB escapes more than we care to decode; keep the raw
				// character so nothing is lost.
				b.WriteByte(e)
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", p.fail("unterminated string")
}
