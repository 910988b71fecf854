package host

import (
	"sort"

	"github.com/funvibe/luaharvest/internal/evaluator"
)

type object = evaluator.Object

func builtin(name string, fn evaluator.BuiltinFunction) *evaluator.Builtin {
	return &evaluator.Builtin{Name: name, Fn: fn}
}

// constant is a function that ignores its arguments and returns v.
func constant(name string, v object) *evaluator.Builtin {
	return &evaluator.Builtin{
		Name:       name,
		IgnoreArgs: true,
		Fn:         func(*evaluator.Evaluator, ...object) object { return v },
	}
}

// noop is a function that ignores its arguments and returns nil.
func noop(name string) *evaluator.Builtin {
	return constant(name, evaluator.NIL)
}

func arg(args []object, i int) object {
	if i < len(args) && args[i] != nil {
		return args[i]
	}
	return evaluator.NIL
}

func stringArg(args []object, i int) (string, bool) {
	switch v := arg(args, i).(type) {
	case *evaluator.String:
		return v.Value, true
	case evaluator.StandIn:
		return v.PathString(), v.PathString() != ""
	}
	return "", false
}

func numberArg(args []object, i int, def float64) float64 {
	if n, ok := arg(args, i).(*evaluator.Number); ok {
		return n.Value
	}
	return def
}

// standIn builds a named stand-in with preset members.
func standIn(path string, members map[string]object) *evaluator.Unmodeled {
	u := evaluator.NewUnmodeled(path)
	fill(u.Fields, members)
	return u
}

func table(fields map[string]object) *evaluator.Table {
	t := evaluator.NewTable()
	fill(t, fields)
	return t
}

// fill sets fields in key order so iteration order is reproducible.
func fill(t *evaluator.Table, fields map[string]object) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.SetString(k, fields[k])
	}
}

func num(v float64) object { return evaluator.NewNumber(v) }
func str(s string) object { return evaluator.NewString(s) }
