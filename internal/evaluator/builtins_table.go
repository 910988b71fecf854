package evaluator

import (
	"sort"
	"strings"
)

var tableBuiltins = map[string]BuiltinFunction{
	"insert": func(e *Evaluator, args ...Object) Object {
		t, err := checkTable("insert", args, 0)
		if err != nil {
			return err
		}
		switch len(args) {
		case 2:
			t.Append(argAt(args, 1))
		case 3:
			pos, err := checkNumber("insert", args, 1)
			if err != nil {
				return err
			}
			t.Insert(int(pos), argAt(args, 2))
		default:
			return newError(TypeMismatch, "wrong number of arguments to 'insert'")
		}
		return NIL
	},
	"remove": func(e *Evaluator, args ...Object) Object {
		t, err := checkTable("remove", args, 0)
		if err != nil {
			return err
		}
		if argAt(args, 1) == NIL {
			return t.Remove()
		}
		pos, err := checkNumber("remove", args, 1)
		if err != nil {
			return err
		}
		return t.Remove(int(pos))
	},
	"concat": func(e *Evaluator, args ...Object) Object {
		t, err := checkTable("concat", args, 0)
		if err != nil {
			return err
		}
		sep := ""
		if argAt(args, 1) != NIL {
			if sep, err = checkString("concat", args, 1); err != nil {
				return err
			}
		}
		from, err := optNumber("concat", args, 2, 1)
		if err != nil {
			return err
		}
		to, err := optNumber("concat", args, 3, float64(t.Length()))
		if err != nil {
			return err
		}
		var parts []string
		for i := int(from); i <= int(to); i++ {
			switch v := t.GetInt(i).(type) {
			case *String:
				parts = append(parts, v.Value)
			case *Number:
				parts = append(parts, FormatNumber(v.Value))
			default:
				return newError(TypeMismatch, "invalid value (at index %d) in table for 'concat'", i)
			}
		}
		return NewString(strings.Join(parts, sep))
	},
	"contains": func(e *Evaluator, args ...Object) Object {
		t, err := checkTable("contains", args, 0)
		if err != nil {
			return err
		}
		want := argAt(args, 1)
		found := false
		t.Range(func(_, v Object) bool {
			found = Equals(v, want)
			return !found
		})
		return nativeBoolToBooleanObject(found)
	},
	"getn": func(e *Evaluator, args ...Object) Object {
		t, err := checkTable("getn", args, 0)
		if err != nil {
			return err
		}
		return NewNumber(float64(t.Length()))
	},
	"unpack":  builtinUnpack,
	"sort":    tableSort,
	"reverse": tableReverse,
	"invert": func(e *Evaluator, args ...Object) Object {
		t, err := checkTable("invert", args, 0)
		if err != nil {
			return err
		}
		out := NewTable()
		t.Range(func(k, v Object) bool {
			out.Set(v, k)
			return true
		})
		return out
	},
	"getkeys": func(e *Evaluator, args ...Object) Object {
		t, err := checkTable("getkeys", args, 0)
		if err != nil {
			return err
		}
		return NewArray(t.Keys()...)
	},
}

// tableSort sorts the array view in place with < or a comparator. Errors
// raised by the comparator abort the sort and are returned.
func tableSort(e *Evaluator, args ...Object) Object {
	t, err := checkTable("sort", args, 0)
	if err != nil {
		return err
	}
	values := t.Array()
	cmp := argAt(args, 1)
	var failure Object
	less := func(a, b Object) bool {
		if failure != nil {
			return false
		}
		if cmp == NIL {
			lt, ok := lessThan(a, b)
			if !ok {
				failure = newError(TypeMismatch, "attempt to compare %s with %s", TypeName(a), TypeName(b))
				return false
			}
			return lt(a, b)
		}
		r := First(e.Call(cmp, a, b))
		if IsAbort(r) {
			failure = r
			return false
		}
		return IsTruthy(r)
	}
	sort.SliceStable(values, func(i, j int) bool { return less(values[i], values[j]) })
	if failure != nil {
		return failure
	}
	for i, v := range values {
		t.SetInt(i+1, v)
	}
	return NIL
}

func tableReverse(e *Evaluator, args ...Object) Object {
	t, err := checkTable("reverse", args, 0)
	if err != nil {
		return err
	}
	values := t.Array()
	out := NewTable()
	for i := len(values) - 1; i >= 0; i-- {
		out.Append(values[i])
	}
	return out
}
