package evaluator

import (
	"math"
)

// ToNative converts a script value into plain Go data for serialization.
// Tables whose keys are exactly 1..N become slices, other tables become
// maps keyed by the display form of each key. Functions are dropped,
// stand-ins become their access path and entities their prefab name.
// Cyclic references are cut and reported as nil.
func ToNative(obj Object) interface{} {
	return toNative(obj, make(map[*Table]bool))
}

func toNative(obj Object, visiting map[*Table]bool) interface{} {
	switch o := obj.(type) {
	case nil, *Nil:
		return nil
	case *Boolean:
		return o.Value
	case *Number:
		if o.IsInteger() && math.Abs(o.Value) < 1<<53 {
			return int64(o.Value)
		}
		if math.IsInf(o.Value, 0) || math.IsNaN(o.Value) {
			return FormatNumber(o.Value)
		}
		return o.Value
	case *String:
		return o.Value
	case *Entity:
		if o.Prefab != "" {
			return o.Prefab
		}
		return nil
	case StandIn:
		if p := o.PathString(); p != "" {
			return p
		}
		return nil
	case *Table:
		if visiting[o] {
			return nil
		}
		visiting[o] = true
		defer delete(visiting, o)
		if n := o.Length(); n > 0 && n == o.Count() {
			out := make([]interface{}, 0, n)
			for _, v := range o.Array() {
				out = append(out, toNative(v, visiting))
			}
			return out
		}
		out := make(map[string]interface{}, o.Count())
		o.Range(func(k, v Object) bool {
			if !isNativeValue(v) {
				return true
			}
			out[toDisplayString(k)] = toNative(v, visiting)
			return true
		})
		return out
	case *VarArgs:
		out := make([]interface{}, len(o.Values))
		for i, v := range o.Values {
			out[i] = toNative(v, visiting)
		}
		return out
	}
	return nil
}

// isNativeValue reports whether a table entry survives conversion.
func isNativeValue(v Object) bool {
	switch v.(type) {
	case *Function, *Builtin:
		return false
	}
	return true
}
