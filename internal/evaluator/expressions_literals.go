package evaluator

import (
	"github.com/funvibe/luaharvest/internal/ast"
)

// evalTable builds a table constructor. Positional fields fill the array
// view in order; a trailing call or `...` spreads its non-nil values.
func (e *Evaluator) evalTable(x *ast.Table, env *Environment) Object {
	t := NewTable()
	pos := 1
	for i, f := range x.Fields {
		if f.Key == nil {
			if i == len(x.Fields)-1 {
				values, abort := e.evalMulti(f.Value, env)
				if abort != nil {
					return abort
				}
				for _, v := range values {
					if v == NIL {
						continue
					}
					t.SetInt(pos, v)
					pos++
				}
				continue
			}
			v := e.evalExpr(f.Value, env)
			if IsAbort(v) {
				return v
			}
			t.SetInt(pos, v)
			pos++
			continue
		}
		k := e.evalExpr(f.Key, env)
		if IsAbort(k) {
			return k
		}
		if _, ok := hashKey(k); !ok {
			return e.errorAt(x.Line(), TypeMismatch, "table index is %s", TypeName(k))
		}
		v := e.evalExpr(f.Value, env)
		if IsAbort(v) {
			return v
		}
		t.Set(k, v)
	}
	return t
}
