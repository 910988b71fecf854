package evaluator

import (
	"fmt"
	"strings"

	"github.com/funvibe/luaharvest/internal/ast"
)

// Function is a script closure: the function node plus the scope active at
// its definition.
type Function struct {
	Name     string
	Params   []string
	Variadic bool
	Body     *ast.Block
	Env      *Environment
	Source   string
	Line     int
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	if f.Name != "" {
		return "function: " + f.Name
	}
	return fmt.Sprintf("function: %p", f)
}

// BuiltinFunction receives already evaluated arguments. Multiple results are
// returned as *VarArgs.
type BuiltinFunction func(e *Evaluator, args ...Object) Object

type Builtin struct {
	Name string
	Fn   BuiltinFunction
	// IgnoreArgs skips evaluation of the call's argument expressions.
	IgnoreArgs bool
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin: " + b.Name }

// VarArgs is an ordered pack of values: the `...` of a variadic function
// and the carrier for multiple call results.
type VarArgs struct {
	Values []Object
}

func (v *VarArgs) Type() ObjectType { return VARARGS_OBJ }
func (v *VarArgs) Inspect() string  { return inspectList(v.Values) }

// First returns the first value of the pack, or nil when it is empty.
func (v *VarArgs) First() Object {
	if len(v.Values) == 0 {
		return NIL
	}
	return v.Values[0]
}

// Multi packs results of a builtin. A single value is returned unwrapped.
func Multi(values ...Object) Object {
	if len(values) == 1 {
		return values[0]
	}
	return &VarArgs{Values: values}
}

func inspectList(values []Object) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.Inspect()
	}
	return strings.Join(parts, ", ")
}
