package evaluator

import (
	"github.com/funvibe/luaharvest/internal/ast"
)

// execLocalAssign declares every name in the current scope. The last value
// expression expands across remaining names; names left over bind to nil.
func (e *Evaluator) execLocalAssign(s *ast.LocalAssign, env *Environment) Object {
	live := false
	for _, name := range s.Names {
		if !e.Policy.NameSuppressed(name) {
			live = true
			break
		}
	}
	var values []Object
	if live {
		var abort Object
		if values, abort = e.evalExprList(s.Values, env); abort != nil {
			return abort
		}
	}
	for i, name := range s.Names {
		if e.Policy.NameSuppressed(name) {
			if !env.HasLocal(name) {
				env.Define(name, NIL)
			}
			continue
		}
		if i < len(values) {
			env.Define(name, values[i])
		} else {
			env.Define(name, NIL)
		}
	}
	return nil
}

func (e *Evaluator) execAssign(s *ast.Assign, env *Environment) Object {
	if len(s.Targets) == 0 {
		return nil
	}
	root := ast.RootName(s.Targets[0])
	if root != "" {
		if e.Policy.StopAt != "" && root == e.Policy.StopAt {
			return &ExtractionComplete{Target: root, Source: e.CurrentFile, Line: s.Line()}
		}
		if e.Policy.SkipAssign[root] {
			return nil
		}
	}

	live := false
	for _, t := range s.Targets {
		if !e.Policy.NameSuppressed(ast.RootName(t)) {
			live = true
			break
		}
	}
	var values []Object
	if live {
		var abort Object
		if values, abort = e.evalExprList(s.Values, env); abort != nil {
			return abort
		}
	}

	for i, target := range s.Targets {
		value := Object(NIL)
		if i < len(values) {
			value = values[i]
		}
		switch t := target.(type) {
		case *ast.Name:
			if e.Policy.NameSuppressed(t.Value) {
				if _, bound := env.Get(t.Value); !bound {
					env.Assign(t.Value, NIL)
				}
				continue
			}
			env.Assign(t.Value, value)
		case *ast.Index:
			if e.Policy.NameSuppressed(ast.RootName(t)) {
				continue
			}
			if res := e.assignIndex(t, value, env); res != nil {
				return res
			}
		default:
			return e.errorAt(s.Line(), UnsupportedConstruct, "cannot assign to %s", ast.Kind(target))
		}
	}
	return nil
}

// assignIndex writes value at an indexed path. An unbound root name is
// created as an empty global table first.
func (e *Evaluator) assignIndex(t *ast.Index, value Object, env *Environment) Object {
	var obj Object
	if name, ok := t.Object.(*ast.Name); ok {
		if v, bound := env.Get(name.Value); bound {
			obj = v
		} else {
			tbl := NewTable()
			env.Root().Define(name.Value, tbl)
			obj = tbl
		}
	} else {
		obj = e.evalExpr(t.Object, env)
		if IsAbort(obj) {
			return obj
		}
	}
	key := e.evalExpr(t.Key, env)
	if IsAbort(key) {
		return key
	}
	return e.setIndex(obj, key, value, t.Line())
}

func (e *Evaluator) setIndex(obj, key, value Object, line int) Object {
	switch o := obj.(type) {
	case *Table:
		if _, ok := hashKey(key); !ok {
			return e.errorAt(line, TypeMismatch, "table index is %s", TypeName(key))
		}
		o.Set(key, value)
		return nil
	case StandIn:
		o.SetMember(key, value)
		return nil
	}
	return e.errorAt(line, TypeMismatch, "attempt to index a %s value", TypeName(obj))
}

func (e *Evaluator) execLocalFunction(s *ast.LocalFunction, env *Environment) Object {
	// Declared before the closure is built so the body can recurse.
	env.Define(s.Name, NIL)
	env.Define(s.Name, e.newFunction(s.Func, env, false))
	return nil
}

// execFunctionDef handles `function a.b()` and `function a.b:c()`. Plain
// names follow assignment rules and so become globals unless a local is in
// scope.
func (e *Evaluator) execFunctionDef(s *ast.FunctionDef, env *Environment) Object {
	if s.Method != "" {
		fn := e.newFunction(s.Func, env, true)
		target := &ast.Index{
			Pos:      s.Pos,
			Object:   s.Target,
			Key:      &ast.String{Pos: s.Pos, Value: s.Method},
			Notation: ast.Dot,
		}
		return e.assignIndex(target, fn, env)
	}
	fn := e.newFunction(s.Func, env, false)
	switch t := s.Target.(type) {
	case *ast.Name:
		env.Assign(t.Value, fn)
		return nil
	case *ast.Index:
		return e.assignIndex(t, fn, env)
	}
	return e.errorAt(s.Line(), UnsupportedConstruct, "cannot define function on %s", ast.Kind(s.Target))
}

// newFunction captures env. Methods get an implicit leading self.
func (e *Evaluator) newFunction(f *ast.FunctionExpr, env *Environment, method bool) *Function {
	params := f.Params
	if method {
		params = append([]string{"self"}, f.Params...)
	}
	return &Function{
		Name:     f.Name,
		Params:   params,
		Variadic: f.Variadic,
		Body:     f.Body,
		Env:      env,
		Source:   e.CurrentFile,
		Line:     f.Line(),
	}
}
