package evaluator

import (
	"github.com/funvibe/luaharvest/internal/ast"
	"github.com/funvibe/luaharvest/internal/config"
)

func (e *Evaluator) execBlock(block *ast.Block, env *Environment) Object {
	if block == nil {
		return nil
	}
	return e.execStatements(block.Stmts, env.Child())
}

func (e *Evaluator) execIf(s *ast.If, env *Environment) Object {
	cond := e.evalExpr(s.Cond, env)
	if IsAbort(cond) {
		return cond
	}
	if IsTruthy(cond) {
		return e.execBlock(s.Then, env)
	}
	for _, arm := range s.ElseIfs {
		cond := e.evalExpr(arm.Cond, env)
		if IsAbort(cond) {
			return cond
		}
		if IsTruthy(cond) {
			return e.execBlock(arm.Body, env)
		}
	}
	return e.execBlock(s.Else, env)
}

// loopResult folds a body result into the loop: done is true when the loop
// must stop, res is what the loop statement itself yields.
func loopResult(res Object) (done bool, out Object) {
	switch res.(type) {
	case nil:
		return false, nil
	case *BreakSignal:
		return true, nil
	}
	return true, res
}

func (e *Evaluator) execNumericFor(s *ast.NumericFor, env *Environment) Object {
	start, errObj := e.forNumber(s.Start, env, "initial")
	if errObj != nil {
		return errObj
	}
	stop, errObj := e.forNumber(s.Stop, env, "limit")
	if errObj != nil {
		return errObj
	}
	step := 1.0
	if s.Step != nil {
		if step, errObj = e.forNumber(s.Step, env, "step"); errObj != nil {
			return errObj
		}
		if step == 0 {
			return e.errorAt(s.Line(), RuntimeError, "'for' step is zero")
		}
	}
	for v := start; (step >= 0 && v <= stop) || (step < 0 && v >= stop); v += step {
		scope := env.Child()
		scope.Define(s.Var, NewNumber(v))
		if done, out := loopResult(e.execStatements(s.Body.Stmts, scope)); done {
			return out
		}
	}
	return nil
}

func (e *Evaluator) forNumber(x ast.Expr, env *Environment, what string) (float64, Object) {
	v := e.evalExpr(x, env)
	if IsAbort(v) {
		return 0, v
	}
	n, ok := toNumber(v)
	if !ok {
		return 0, e.errorAt(x.Line(), TypeMismatch, "'for' %s value must be a number", what)
	}
	return n, nil
}

// execGenericFor supports the two iteration protocols scripts use, chosen
// by the iterator function's name: pairs (every entry in table order) and
// ipairs (1..N, stopping at the first gap).
func (e *Evaluator) execGenericFor(s *ast.GenericFor, env *Environment) Object {
	call, ok := s.Exprs[0].(*ast.Call)
	if !ok || len(s.Exprs) != 1 {
		return e.errorAt(s.Line(), UnsupportedConstruct, "generic for needs a pairs or ipairs call")
	}
	fn := e.evalExpr(call.Func, env)
	if IsAbort(fn) {
		return fn
	}
	protocol := ""
	if b, ok := fn.(*Builtin); ok {
		protocol = b.Name
	} else if name, ok := call.Func.(*ast.Name); ok {
		protocol = name.Value
	}
	if protocol != config.PairsFuncName && protocol != config.IpairsFuncName {
		return e.errorAt(s.Line(), UnsupportedConstruct, "generic for over iterator %q", protocol)
	}
	if len(call.Args) == 0 {
		return e.errorAt(s.Line(), TypeMismatch, "bad argument #1 to '%s' (table expected, got no value)", protocol)
	}
	target := e.evalExpr(call.Args[0], env)
	if IsAbort(target) {
		return target
	}
	var tbl *Table
	switch t := target.(type) {
	case *Table:
		tbl = t
	case StandIn:
		tbl = t.Members()
	default:
		return e.errorAt(s.Line(), TypeMismatch, "bad argument #1 to '%s' (table expected, got %s)", protocol, TypeName(target))
	}

	bind := func(k, v Object) Object {
		scope := env.Child()
		for i, name := range s.Names {
			switch i {
			case 0:
				scope.Define(name, k)
			case 1:
				scope.Define(name, v)
			default:
				scope.Define(name, NIL)
			}
		}
		return e.execStatements(s.Body.Stmts, scope)
	}

	if protocol == config.IpairsFuncName {
		for i := 1; ; i++ {
			v := tbl.GetInt(i)
			if v == NIL {
				return nil
			}
			if done, out := loopResult(bind(NewNumber(float64(i)), v)); done {
				return out
			}
		}
	}
	for _, k := range tbl.Keys() {
		v := tbl.Get(k)
		if v == NIL {
			continue
		}
		if done, out := loopResult(bind(k, v)); done {
			return out
		}
	}
	return nil
}

func (e *Evaluator) execWhile(s *ast.While, env *Environment) Object {
	for {
		cond := e.evalExpr(s.Cond, env)
		if IsAbort(cond) {
			return cond
		}
		if !IsTruthy(cond) {
			return nil
		}
		if done, out := loopResult(e.execBlock(s.Body, env)); done {
			return out
		}
	}
}

// execRepeat evaluates the condition inside the body's scope so that it
// can see the body's locals.
func (e *Evaluator) execRepeat(s *ast.Repeat, env *Environment) Object {
	for {
		scope := env.Child()
		if done, out := loopResult(e.execStatements(s.Body.Stmts, scope)); done {
			return out
		}
		cond := e.evalExpr(s.Cond, scope)
		if IsAbort(cond) {
			return cond
		}
		if IsTruthy(cond) {
			return nil
		}
	}
}
