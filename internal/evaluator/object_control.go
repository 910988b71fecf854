package evaluator

import (
	"errors"
	"fmt"
	"strings"
)

// ReturnValue carries the values of a return statement up to the call
// boundary. Multiple values stay an ordered slice, never a table.
type ReturnValue struct {
	Values []Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return "return " + inspectList(rv.Values) }

// BreakSignal unwinds to the innermost enclosing loop.
type BreakSignal struct {
	Line int
}

func (bs *BreakSignal) Type() ObjectType { return BREAK_SIGNAL_OBJ }
func (bs *BreakSignal) Inspect() string  { return "break" }

// ErrorKind classifies runtime failures.
type ErrorKind string

const (
	NameError            ErrorKind = "NameError"
	TypeMismatch         ErrorKind = "TypeMismatch"
	UnsupportedConstruct ErrorKind = "UnsupportedConstruct"
	InternalError        ErrorKind = "InternalError"
	ModuleError          ErrorKind = "ModuleError"
	RuntimeError         ErrorKind = "RuntimeError"
)

// Sentinels matched by errors.Is against *Error.
var (
	ErrName               = errors.New("name error")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrUnsupported        = errors.New("unsupported construct")
	ErrInternal           = errors.New("internal evaluator error")
	ErrModule             = errors.New("module error")
	ErrRuntime            = errors.New("runtime error")
	ErrExtractionComplete = errors.New("extraction complete")
)

var kindSentinels = map[ErrorKind]error{
	NameError:            ErrName,
	TypeMismatch:         ErrTypeMismatch,
	UnsupportedConstruct: ErrUnsupported,
	InternalError:        ErrInternal,
	ModuleError:          ErrModule,
	RuntimeError:         ErrRuntime,
}

// Error is a runtime failure. It travels through evaluation as an Object
// and leaves the evaluator as a Go error.
type Error struct {
	Kind       ErrorKind
	Message    string
	Source     string
	Line       int
	StackTrace []StackFrame
	Value      Object // payload of error(v)
	Cause      error
}

// StackFrame for error stack traces
type StackFrame struct {
	Name   string
	Source string
	Line   int
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }

func (e *Error) Inspect() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Source != "" || e.Line > 0 {
		fmt.Fprintf(&b, " at %s:%d", e.Source, e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	// innermost call first
	for i := len(e.StackTrace) - 1; i >= 0; i-- {
		f := e.StackTrace[i]
		fmt.Fprintf(&b, "\n  at %s:%d (called %s)", f.Source, f.Line, f.Name)
	}
	return b.String()
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", e.Source, e.Line, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

func (e *Error) Unwrap() error { return e.Cause }

// ExtractionComplete aborts the rest of a file once the data of interest
// has been produced. Drivers treat it as success.
type ExtractionComplete struct {
	Target string
	Source string
	Line   int
}

func (ec *ExtractionComplete) Type() ObjectType { return EXTRACTION_COMPLETE_OBJ }
func (ec *ExtractionComplete) Inspect() string {
	return fmt.Sprintf("extraction complete at %s (%s:%d)", ec.Target, ec.Source, ec.Line)
}
func (ec *ExtractionComplete) Error() string         { return ec.Inspect() }
func (ec *ExtractionComplete) Is(target error) bool { return target == ErrExtractionComplete }
