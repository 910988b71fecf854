package evaluator

import (
	"math"
	"strings"

	"github.com/funvibe/luaharvest/internal/ast"
	"github.com/funvibe/luaharvest/internal/parser"
)

// toNumber converts numbers and numeric strings.
func toNumber(obj Object) (float64, bool) {
	switch o := obj.(type) {
	case *Number:
		return o.Value, true
	case *String:
		v, err := parser.ParseNumber(o.Value)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

func (e *Evaluator) evalBinary(x *ast.Binary, env *Environment) Object {
	left := e.evalExpr(x.Left, env)
	if IsAbort(left) {
		return left
	}
	right := e.evalExpr(x.Right, env)
	if IsAbort(right) {
		return right
	}
	return e.arith(x.Op, left, right, x.Line())
}

func (e *Evaluator) arith(op string, left, right Object, line int) Object {
	if isStandIn(left) || isStandIn(right) {
		return standInArith(op, left, right)
	}
	a, ok := toNumber(left)
	if !ok {
		return e.errorAt(line, TypeMismatch, "attempt to perform arithmetic on a %s value", TypeName(left))
	}
	b, ok := toNumber(right)
	if !ok {
		return e.errorAt(line, TypeMismatch, "attempt to perform arithmetic on a %s value", TypeName(right))
	}
	switch op {
	case "+":
		return NewNumber(a + b)
	case "-":
		return NewNumber(a - b)
	case "*":
		return NewNumber(a * b)
	case "/":
		// IEEE division: x/0 is ±inf, 0/0 is nan.
		return NewNumber(a / b)
	case "%":
		return NewNumber(a - math.Floor(a/b)*b)
	case "^":
		return NewNumber(math.Pow(a, b))
	}
	return e.errorAt(line, UnsupportedConstruct, "unknown arithmetic operator %q", op)
}

// standInArith degrades arithmetic involving a stand-in: + * / yield the
// other operand, s-x yields 0 and x-s yields x, % and ^ yield 0.
func standInArith(op string, left, right Object) Object {
	other := right
	if isStandIn(right) {
		other = left
	}
	switch op {
	case "+", "*", "/":
		return other
	case "-":
		if isStandIn(left) {
			return NewNumber(0)
		}
		return left
	}
	return NewNumber(0)
}

func (e *Evaluator) evalUnary(x *ast.Unary, env *Environment) Object {
	v := e.evalExpr(x.Operand, env)
	if IsAbort(v) {
		return v
	}
	switch x.Op {
	case "not":
		return nativeBoolToBooleanObject(!IsTruthy(v))
	case "-":
		if isStandIn(v) {
			return NewNumber(0)
		}
		n, ok := toNumber(v)
		if !ok {
			return e.errorAt(x.Line(), TypeMismatch, "attempt to perform arithmetic on a %s value", TypeName(v))
		}
		return NewNumber(-n)
	case "#":
		switch o := v.(type) {
		case *Table:
			return NewNumber(float64(o.Length()))
		case *String:
			return NewNumber(float64(len(o.Value)))
		case StandIn:
			return NewNumber(0)
		}
		return e.errorAt(x.Line(), TypeMismatch, "attempt to get length of a %s value", TypeName(v))
	}
	return e.errorAt(x.Line(), UnsupportedConstruct, "unknown unary operator %q", x.Op)
}

func (e *Evaluator) evalConcat(x *ast.Concat, env *Environment) Object {
	left := e.evalExpr(x.Left, env)
	if IsAbort(left) {
		return left
	}
	right := e.evalExpr(x.Right, env)
	if IsAbort(right) {
		return right
	}
	var b strings.Builder
	for _, v := range []Object{left, right} {
		switch o := v.(type) {
		case *String:
			b.WriteString(o.Value)
		case *Number:
			b.WriteString(FormatNumber(o.Value))
		case StandIn:
			b.WriteString(o.PathString())
		default:
			return e.errorAt(x.Line(), TypeMismatch, "attempt to concatenate a %s value", TypeName(v))
		}
	}
	return NewString(b.String())
}

func (e *Evaluator) evalRelational(x *ast.Relational, env *Environment) Object {
	left := e.evalExpr(x.Left, env)
	if IsAbort(left) {
		return left
	}
	right := e.evalExpr(x.Right, env)
	if IsAbort(right) {
		return right
	}
	return e.compare(x.Op, left, right, x.Line())
}

// compare implements the relational operators. Any comparison involving a
// stand-in holds, whichever operator is used.
func (e *Evaluator) compare(op string, left, right Object, line int) Object {
	if isStandIn(left) || isStandIn(right) {
		return TRUE
	}
	switch op {
	case "==":
		return nativeBoolToBooleanObject(Equals(left, right))
	case "~=":
		return nativeBoolToBooleanObject(!Equals(left, right))
	}
	less, ok := lessThan(left, right)
	if !ok {
		return e.errorAt(line, TypeMismatch, "attempt to compare %s with %s", TypeName(left), TypeName(right))
	}
	switch op {
	case "<":
		return nativeBoolToBooleanObject(less(left, right))
	case ">":
		return nativeBoolToBooleanObject(less(right, left))
	case "<=":
		return nativeBoolToBooleanObject(!less(right, left))
	case ">=":
		return nativeBoolToBooleanObject(!less(left, right))
	}
	return e.errorAt(line, UnsupportedConstruct, "unknown relational operator %q", op)
}

// lessThan returns the ordering for two numbers or two strings.
func lessThan(a, b Object) (func(x, y Object) bool, bool) {
	switch a.(type) {
	case *Number:
		if _, ok := b.(*Number); ok {
			return func(x, y Object) bool { return x.(*Number).Value < y.(*Number).Value }, true
		}
	case *String:
		if _, ok := b.(*String); ok {
			return func(x, y Object) bool { return x.(*String).Value < y.(*String).Value }, true
		}
	}
	return nil, false
}

func (e *Evaluator) evalLogical(x *ast.Logical, env *Environment) Object {
	left := e.evalExpr(x.Left, env)
	if IsAbort(left) {
		return left
	}
	switch x.Op {
	case "and":
		if !IsTruthy(left) {
			return left
		}
		return e.evalExpr(x.Right, env)
	case "or":
		if IsTruthy(left) {
			return left
		}
		return e.evalExpr(x.Right, env)
	}
	return e.errorAt(x.Line(), UnsupportedConstruct, "unknown logical operator %q", x.Op)
}
