package debugger

// StepVerb is the closed set of stepping commands. Each verb carries its
// fixed wire command; there is no dynamic string dispatch.
type StepVerb int

const (
	Continue StepVerb = iota
	Next
	Step
	NextInstruction
	StepInstruction
)

// Command returns the console command the verb dispatches.
func (v StepVerb) Command() string {
	switch v {
	case Continue:
		return "continue"
	case Next:
		return "next"
	case Step:
		return "step"
	case NextInstruction:
		return "ni"
	case StepInstruction:
		return "si"
	}
	return ""
}

// ParseStepVerb accepts the full verb names and the classic single-letter
// aliases.
func ParseStepVerb(s string) (StepVerb, bool) {
	switch s {
	case "c", "continue":
		return Continue, true
	case "n", "next":
		return Next, true
	case "s", "step":
		return Step, true
	case "ni", "nexti":
		return NextInstruction, true
	case "si", "stepi":
		return StepInstruction, true
	}
	return 0, false
}

// ContextKind selects one pwndbg context pane.
type ContextKind string

const (
	ContextRegs      ContextKind = "regs"
	ContextStack     ContextKind = "stack"
	ContextDisasm    ContextKind = "disasm"
	ContextCode      ContextKind = "code"
	ContextBacktrace ContextKind = "backtrace"
)

// ContextKinds lists every pane, in the order the aggregate context reports
// them.
func ContextKinds() []ContextKind {
	return []ContextKind{ContextRegs, ContextStack, ContextDisasm, ContextCode, ContextBacktrace}
}

// ParseContextKind validates a context name. "all" is not a kind; the
// aggregate fan-out is handled a level up.
func ParseContextKind(s string) (ContextKind, bool) {
	switch k := ContextKind(s); k {
	case ContextRegs, ContextStack, ContextDisasm, ContextCode, ContextBacktrace:
		return k, true
	}
	return "", false
}

// MemoryFormat selects how read memory is rendered.
type MemoryFormat string

const (
	MemoryHex    MemoryFormat = "hex"
	MemoryString MemoryFormat = "string"
	MemoryRaw    MemoryFormat = "raw"
)

// ParseMemoryFormat validates a memory format, defaulting empty to hex.
func ParseMemoryFormat(s string) (MemoryFormat, bool) {
	switch f := MemoryFormat(s); f {
	case MemoryHex, MemoryString, MemoryRaw:
		return f, true
	case "":
		return MemoryHex, true
	}
	return "", false
}
