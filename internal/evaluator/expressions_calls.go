package evaluator

import (
	"github.com/funvibe/luaharvest/internal/ast"
)

// evalCallNode evaluates a *ast.Call or *ast.Invoke and returns the raw
// call result: a value, a *VarArgs for zero or several values, or an abort.
func (e *Evaluator) evalCallNode(node ast.Expr, env *Environment) Object {
	switch n := node.(type) {
	case *ast.Call:
		return e.evalCall(n, env)
	case *ast.Invoke:
		return e.evalInvoke(n, env)
	case *ast.Paren:
		return First(e.evalCallNode(n.Inner, env))
	}
	return e.unsupported(node)
}

func (e *Evaluator) evalCall(n *ast.Call, env *Environment) Object {
	path, _ := ast.DottedPath(n.Func)
	if e.Policy.CallSuppressed(path) {
		return NIL
	}
	fn := e.evalExpr(n.Func, env)
	if IsAbort(fn) {
		return fn
	}
	if ignoresArgs(fn) {
		return e.apply(fn, nil, n.Line(), path)
	}
	args, abort := e.evalExprList(n.Args, env)
	if abort != nil {
		return abort
	}
	name := path
	if name == "" {
		name = calleeName(fn)
	}
	return e.apply(fn, args, n.Line(), name)
}

// evalInvoke calls recv:method(args) with recv as the first argument.
// Methods on strings resolve through the string library.
func (e *Evaluator) evalInvoke(n *ast.Invoke, env *Environment) Object {
	path := n.Method
	if recvPath, ok := ast.DottedPath(n.Receiver); ok {
		path = recvPath + ":" + n.Method
	}
	if e.Policy.CallSuppressed(path) {
		return NIL
	}
	recv := e.evalExpr(n.Receiver, env)
	if IsAbort(recv) {
		return recv
	}
	if recv == NIL {
		return e.errorAt(n.Line(), TypeMismatch, "attempt to call method '%s' on a nil value", n.Method)
	}
	fn := e.index(recv, NewString(n.Method), n.Line())
	if IsAbort(fn) {
		return fn
	}
	if fn == NIL {
		return e.errorAt(n.Line(), TypeMismatch, "attempt to call method '%s' (a nil value)", n.Method)
	}
	if ignoresArgs(fn) {
		return e.apply(fn, []Object{recv}, n.Line(), path)
	}
	args, abort := e.evalExprList(n.Args, env)
	if abort != nil {
		return abort
	}
	return e.apply(fn, append([]Object{recv}, args...), n.Line(), path)
}

// ignoresArgs reports callees whose argument expressions are never
// evaluated: flagged builtins and stand-ins.
func ignoresArgs(fn Object) bool {
	switch fn := fn.(type) {
	case *Builtin:
		return fn.IgnoreArgs
	case StandIn:
		return true
	}
	return false
}

func calleeName(fn Object) string {
	switch fn := fn.(type) {
	case *Function:
		return fn.Name
	case *Builtin:
		return fn.Name
	}
	return ""
}

// Call invokes any callable value with already evaluated arguments. It is
// the entry point used by builtins that take callbacks.
func (e *Evaluator) Call(fn Object, args ...Object) Object {
	return e.apply(fn, args, 0, calleeName(fn))
}

func (e *Evaluator) apply(fn Object, args []Object, line int, name string) Object {
	switch f := fn.(type) {
	case *Function:
		return e.callFunction(f, args, line, name)
	case *Builtin:
		res := f.Fn(e, args...)
		if res == nil {
			return NIL
		}
		if err, ok := res.(*Error); ok {
			e.locate(err, line)
		}
		return res
	case StandIn:
		return f.CallResult()
	case *Table:
		return e.callTable(f, args, line, name)
	}
	if name == "" {
		return e.errorAt(line, TypeMismatch, "attempt to call a %s value", TypeName(fn))
	}
	return e.errorAt(line, TypeMismatch, "attempt to call a %s value (%s)", TypeName(fn), name)
}

// callTable supports class tables: a metatable __call wins, otherwise a
// _ctor field builds an instance that delegates lookups to the class.
func (e *Evaluator) callTable(t *Table, args []Object, line int, name string) Object {
	if t.Meta != nil {
		if h := t.Meta.GetString("__call"); h != NIL {
			return e.apply(h, append([]Object{t}, args...), line, name)
		}
	}
	ctor := t.GetString("_ctor")
	if ctor == NIL {
		return e.errorAt(line, TypeMismatch, "attempt to call a table value")
	}
	inst := NewTable()
	meta := NewTable()
	meta.SetString("__index", t)
	inst.Meta = meta
	if res := e.apply(ctor, append([]Object{inst}, args...), line, name); IsAbort(res) {
		return res
	}
	return inst
}

// callFunction runs a closure in one new scope whose parent is the
// closure's captured scope.
func (e *Evaluator) callFunction(fn *Function, args []Object, line int, name string) Object {
	if len(e.CallStack) >= maxCallDepth {
		return e.errorAt(line, RuntimeError, "stack overflow")
	}
	scope := fn.Env.Child()
	for i, p := range fn.Params {
		if i < len(args) {
			scope.Define(p, args[i])
		} else {
			scope.Define(p, NIL)
		}
	}
	if fn.Variadic {
		var rest []Object
		if len(args) > len(fn.Params) {
			rest = append(rest, args[len(fn.Params):]...)
		}
		scope.Define("...", &VarArgs{Values: rest})
	}
	if name == "" {
		name = fn.Name
	}
	e.PushCall(name, line)
	res := e.execStatements(fn.Body.Stmts, scope)
	e.PopCall()

	switch r := res.(type) {
	case nil:
		return &VarArgs{}
	case *ReturnValue:
		return Multi(r.Values...)
	case *BreakSignal:
		return e.errorAt(r.Line, InternalError, "break outside a loop in %s", name)
	}
	return res
}
