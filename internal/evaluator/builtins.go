package evaluator

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/funvibe/luaharvest/internal/config"
	"github.com/funvibe/luaharvest/internal/parser"
)

// RegisterBuiltins installs the base functions and the string, math and
// table libraries into env. Library tables are created per call so that
// sessions never share mutable state.
func RegisterBuiltins(env *Environment) {
	for name, fn := range baseBuiltins() {
		env.Set(name, &Builtin{Name: name, Fn: fn})
	}
	env.Set(config.StringLibName, newLibrary(stringBuiltins))
	env.Set(config.MathLibName, newMathLibrary())
	env.Set(config.TableLibName, newLibrary(tableBuiltins))
}

// newLibrary builds a library table with members in name order.
func newLibrary(fns map[string]BuiltinFunction) *Table {
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names)
	t := NewTable()
	for _, name := range names {
		t.SetString(name, &Builtin{Name: name, Fn: fns[name]})
	}
	return t
}

func baseBuiltins() map[string]BuiltinFunction {
	return map[string]BuiltinFunction{
		config.PrintFuncName:        builtinPrint,
		config.TypeFuncName:         builtinType,
		config.ToStringFuncName:     builtinToString,
		config.ToNumberFuncName:     builtinToNumber,
		config.AssertFuncName:       builtinAssert,
		config.ErrorFuncName:        builtinError,
		config.PcallFuncName:        builtinPcall,
		config.PairsFuncName:        builtinPairs,
		config.IpairsFuncName:       builtinIpairs,
		config.NextFuncName:         builtinNext,
		config.SelectFuncName:       builtinSelect,
		config.UnpackFuncName:       builtinUnpack,
		config.RawGetFuncName:       builtinRawGet,
		config.RawSetFuncName:       builtinRawSet,
		config.RawEqualFuncName:     builtinRawEqual,
		config.SetMetatableFuncName: builtinSetMetatable,
		config.GetMetatableFuncName: builtinGetMetatable,
		config.RequireFuncName:      builtinRequire,
	}
}

func argAt(args []Object, i int) Object {
	if i < len(args) && args[i] != nil {
		return args[i]
	}
	return NIL
}

func argError(fname string, i int, expected string, got Object) *Error {
	gotName := "no value"
	if got != nil && got != NIL {
		gotName = TypeName(got)
	} else if got == NIL {
		gotName = "nil"
	}
	return newError(TypeMismatch, "bad argument #%d to '%s' (%s expected, got %s)", i+1, fname, expected, gotName)
}

func checkTable(fname string, args []Object, i int) (*Table, *Error) {
	switch t := argAt(args, i).(type) {
	case *Table:
		return t, nil
	case StandIn:
		return t.Members(), nil
	}
	return nil, argError(fname, i, "table", argAt(args, i))
}

// checkNumber accepts numbers and numeric strings. Stand-ins count as 0.
func checkNumber(fname string, args []Object, i int) (float64, *Error) {
	v := argAt(args, i)
	if isStandIn(v) {
		return 0, nil
	}
	if n, ok := toNumber(v); ok {
		return n, nil
	}
	return 0, argError(fname, i, "number", v)
}

func optNumber(fname string, args []Object, i int, def float64) (float64, *Error) {
	if argAt(args, i) == NIL {
		return def, nil
	}
	return checkNumber(fname, args, i)
}

// checkString accepts strings and numbers. Stand-ins give their path.
func checkString(fname string, args []Object, i int) (string, *Error) {
	switch v := argAt(args, i).(type) {
	case *String:
		return v.Value, nil
	case *Number:
		return FormatNumber(v.Value), nil
	case StandIn:
		return v.PathString(), nil
	}
	return "", argError(fname, i, "string", argAt(args, i))
}

func builtinPrint(e *Evaluator, args ...Object) Object {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = toDisplayString(a)
	}
	fmt.Fprintln(e.Out, strings.Join(parts, "\t"))
	return NIL
}

func builtinType(e *Evaluator, args ...Object) Object {
	if len(args) == 0 {
		return argError("type", 0, "value", nil)
	}
	return NewString(TypeName(args[0]))
}

func builtinToString(e *Evaluator, args ...Object) Object {
	return NewString(toDisplayString(argAt(args, 0)))
}

func builtinToNumber(e *Evaluator, args ...Object) Object {
	v := argAt(args, 0)
	if base := argAt(args, 1); base != NIL {
		b, err := checkNumber("tonumber", args, 1)
		if err != nil {
			return err
		}
		s, err := checkString("tonumber", args, 0)
		if err != nil {
			return err
		}
		n, perr := strconv.ParseInt(strings.TrimSpace(s), int(b), 64)
		if perr != nil {
			return NIL
		}
		return NewNumber(float64(n))
	}
	switch o := v.(type) {
	case *Number:
		return o
	case *String:
		n, err := parser.ParseNumber(o.Value)
		if err != nil {
			return NIL
		}
		return NewNumber(n)
	}
	return NIL
}

// builtinAssert never fails; a false assertion is only logged, since the
// host state scripts assert on is not modeled.
func builtinAssert(e *Evaluator, args ...Object) Object {
	if !IsTruthy(argAt(args, 0)) {
		e.Logger.Debug("assertion failed", "file", e.CurrentFile, "message", toDisplayString(argAt(args, 1)))
	}
	return Multi(args...)
}

func builtinError(e *Evaluator, args ...Object) Object {
	v := argAt(args, 0)
	return &Error{Kind: RuntimeError, Message: toDisplayString(v), Value: v}
}

// builtinPcall converts runtime errors into (false, message). Early
// termination is not an error and passes through.
func builtinPcall(e *Evaluator, args ...Object) Object {
	if len(args) == 0 {
		return argError("pcall", 0, "value", nil)
	}
	depth := len(e.CallStack)
	res := e.Call(args[0], args[1:]...)
	if err, ok := res.(*Error); ok {
		e.CallStack = e.CallStack[:depth]
		msg := err.Value
		if msg == nil {
			msg = NewString(err.Message)
		}
		return Multi(FALSE, msg)
	}
	if IsAbort(res) {
		return res
	}
	if pack, ok := res.(*VarArgs); ok {
		return Multi(append([]Object{TRUE}, pack.Values...)...)
	}
	return Multi(TRUE, res)
}

func builtinPairs(e *Evaluator, args ...Object) Object {
	t, err := checkTable("pairs", args, 0)
	if err != nil {
		return err
	}
	next, _ := e.Globals.Get(config.NextFuncName)
	return Multi(next, t, NIL)
}

func builtinIpairs(e *Evaluator, args ...Object) Object {
	t, err := checkTable("ipairs", args, 0)
	if err != nil {
		return err
	}
	iter := &Builtin{Name: "ipairs_iterator", Fn: func(e *Evaluator, args ...Object) Object {
		i, err := checkNumber("ipairs_iterator", args, 1)
		if err != nil {
			return err
		}
		v := t.GetInt(int(i) + 1)
		if v == NIL {
			return NIL
		}
		return Multi(NewNumber(i+1), v)
	}}
	return Multi(iter, t, NewNumber(0))
}

func builtinNext(e *Evaluator, args ...Object) Object {
	t, err := checkTable("next", args, 0)
	if err != nil {
		return err
	}
	k, v, ok := t.Next(argAt(args, 1))
	if !ok {
		return NIL
	}
	return Multi(k, v)
}

func builtinSelect(e *Evaluator, args ...Object) Object {
	if s, ok := argAt(args, 0).(*String); ok && s.Value == "#" {
		return NewNumber(float64(len(args) - 1))
	}
	n, err := checkNumber("select", args, 0)
	if err != nil {
		return err
	}
	rest := args[1:]
	i := int(n)
	if i < 0 {
		i = len(rest) + i + 1
	}
	if i < 1 {
		return newError(TypeMismatch, "bad argument #1 to 'select' (index out of range)")
	}
	if i > len(rest) {
		return &VarArgs{}
	}
	return &VarArgs{Values: rest[i-1:]}
}

func builtinUnpack(e *Evaluator, args ...Object) Object {
	t, err := checkTable("unpack", args, 0)
	if err != nil {
		return err
	}
	from, err := optNumber("unpack", args, 1, 1)
	if err != nil {
		return err
	}
	to, err := optNumber("unpack", args, 2, float64(t.Length()))
	if err != nil {
		return err
	}
	var values []Object
	for i := int(from); i <= int(to); i++ {
		values = append(values, t.GetInt(i))
	}
	return &VarArgs{Values: values}
}

func builtinRawGet(e *Evaluator, args ...Object) Object {
	t, err := checkTable("rawget", args, 0)
	if err != nil {
		return err
	}
	return t.Get(argAt(args, 1))
}

func builtinRawSet(e *Evaluator, args ...Object) Object {
	t, err := checkTable("rawset", args, 0)
	if err != nil {
		return err
	}
	t.Set(argAt(args, 1), argAt(args, 2))
	return argAt(args, 0)
}

func builtinRawEqual(e *Evaluator, args ...Object) Object {
	return nativeBoolToBooleanObject(Equals(argAt(args, 0), argAt(args, 1)))
}

// builtinSetMetatable records the metatable; only __index and __call are
// ever consulted.
func builtinSetMetatable(e *Evaluator, args ...Object) Object {
	target := argAt(args, 0)
	t, ok := target.(*Table)
	if !ok {
		return target
	}
	if mt, ok := argAt(args, 1).(*Table); ok {
		t.Meta = mt
	} else {
		t.Meta = nil
	}
	return t
}

func builtinGetMetatable(e *Evaluator, args ...Object) Object {
	if t, ok := argAt(args, 0).(*Table); ok && t.Meta != nil {
		return t.Meta
	}
	return NIL
}

func builtinRequire(e *Evaluator, args ...Object) Object {
	path, err := checkString("require", args, 0)
	if err != nil {
		return err
	}
	if e.Policy.ModuleSkipped(path) {
		return NIL
	}
	if e.Loader == nil {
		return newError(ModuleError, "cannot load module '%s': no module loader", path)
	}
	v, lerr := e.Loader.LoadModule(e, path)
	if lerr != nil {
		var rerr *Error
		if errors.As(lerr, &rerr) {
			return rerr
		}
		return &Error{Kind: ModuleError, Message: fmt.Sprintf("module '%s': %v", path, lerr), Cause: lerr}
	}
	if v == nil {
		return NIL
	}
	return v
}
