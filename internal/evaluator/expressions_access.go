package evaluator

import (
	"github.com/funvibe/luaharvest/internal/ast"
	"github.com/funvibe/luaharvest/internal/config"
)

// maxIndexChain bounds __index delegation.
const maxIndexChain = 32

func (e *Evaluator) evalName(n *ast.Name, env *Environment) Object {
	if v, ok := env.Get(n.Value); ok {
		return v
	}
	switch e.Policy.Undefined {
	case UndefinedError:
		return e.errorAt(n.Line(), NameError, "undefined name '%s'", n.Value)
	case UndefinedStandIn:
		su := NewUnmodeled(n.Value)
		e.Globals.Define(n.Value, su)
		return su
	}
	return NIL
}

func (e *Evaluator) evalIndex(x *ast.Index, env *Environment) Object {
	obj := e.evalExpr(x.Object, env)
	if IsAbort(obj) {
		return obj
	}
	key := e.evalExpr(x.Key, env)
	if IsAbort(key) {
		return key
	}
	return e.index(obj, key, x.Line())
}

// index reads obj[key]. Reading through nil yields nil so that optional
// lookups like `a.b.c` on a partially built tree do not fail.
func (e *Evaluator) index(obj, key Object, line int) Object {
	switch o := obj.(type) {
	case *Table:
		return e.tableGet(o, key, line)
	case StandIn:
		return o.Member(key)
	case *String:
		lib, _ := e.Globals.Get(config.StringLibName)
		if t, ok := lib.(*Table); ok {
			return t.Get(key)
		}
		return NIL
	case *Nil:
		return NIL
	}
	return e.errorAt(line, TypeMismatch, "attempt to index a %s value", TypeName(obj))
}

// tableGet is a raw read that falls back to the metatable's __index.
func (e *Evaluator) tableGet(t *Table, key Object, line int) Object {
	for depth := 0; depth < maxIndexChain; depth++ {
		v := t.Get(key)
		if v != NIL || t.Meta == nil {
			return v
		}
		switch h := t.Meta.GetString("__index").(type) {
		case *Table:
			t = h
		case *Function, *Builtin:
			return First(e.apply(h, []Object{t, key}, line, "__index"))
		default:
			return NIL
		}
	}
	return NIL
}
