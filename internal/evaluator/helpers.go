package evaluator

import (
	"fmt"
)

func newError(kind ErrorKind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// errorAt builds an error located in the current file with a snapshot of
// the call stack.
func (e *Evaluator) errorAt(line int, kind ErrorKind, format string, a ...interface{}) *Error {
	err := newError(kind, format, a...)
	e.locate(err, line)
	return err
}

// locate fills in position and stack for errors raised by builtins.
func (e *Evaluator) locate(err *Error, line int) {
	if err.Line == 0 {
		err.Line = line
		err.Source = e.CurrentFile
	}
	if len(err.StackTrace) == 0 && len(e.CallStack) > 0 {
		err.StackTrace = make([]StackFrame, len(e.CallStack))
		for i, f := range e.CallStack {
			err.StackTrace[i] = StackFrame{Name: f.Name, Source: f.Source, Line: f.Line}
		}
	}
}

// PushCall adds a call frame to the stack
func (e *Evaluator) PushCall(name string, line int) {
	e.CallStack = append(e.CallStack, CallFrame{Name: name, Source: e.CurrentFile, Line: line})
}

// PopCall removes the last call frame from the stack
func (e *Evaluator) PopCall() {
	if len(e.CallStack) > 0 {
		e.CallStack = e.CallStack[:len(e.CallStack)-1]
	}
}

// IsAbort reports whether obj stops evaluation of the enclosing
// expression: a runtime error or early termination.
func IsAbort(obj Object) bool {
	if obj == nil {
		return false
	}
	t := obj.Type()
	return t == ERROR_OBJ || t == EXTRACTION_COMPLETE_OBJ
}

// IsTruthy: everything except nil and false.
func IsTruthy(obj Object) bool {
	switch obj := obj.(type) {
	case nil, *Nil:
		return false
	case *Boolean:
		return obj.Value
	}
	return true
}

func isStandIn(obj Object) bool {
	_, ok := obj.(StandIn)
	return ok
}

// TypeName is what the type() builtin reports.
func TypeName(obj Object) string {
	switch obj.(type) {
	case nil, *Nil:
		return "nil"
	case *Boolean:
		return "boolean"
	case *Number:
		return "number"
	case *String:
		return "string"
	case *Table, StandIn:
		return "table"
	case *Function, *Builtin:
		return "function"
	}
	return string(obj.Type())
}

// toDisplayString is the tostring() conversion.
func toDisplayString(obj Object) string {
	switch obj := obj.(type) {
	case nil:
		return "nil"
	case *String:
		return obj.Value
	case StandIn:
		if p := obj.PathString(); p != "" {
			return p
		}
	}
	return obj.Inspect()
}

// Equals is the == relation for non-stand-in values: primitives by value,
// everything else by identity.
func Equals(a, b Object) bool {
	switch a := a.(type) {
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *Boolean:
		bb, ok := b.(*Boolean)
		return ok && a.Value == bb.Value
	case *Number:
		bn, ok := b.(*Number)
		return ok && a.Value == bn.Value
	case *String:
		bs, ok := b.(*String)
		return ok && a.Value == bs.Value
	}
	return a == b
}
