package evaluator

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToNative(t *testing.T) {
	mixed := NewTable()
	mixed.SetString("x", NewNumber(1.5))
	mixed.SetString("y", NewString("s"))
	mixed.SetString("f", &Function{Name: "f"})
	mixed.SetString("ok", TRUE)

	cyclic := NewTable()
	cyclic.SetString("self", cyclic)

	nested := NewArray(NewArray(NewNumber(1)), NewString("two"))

	pig := NewEntity()
	pig.Prefab = "pig"

	tests := []struct {
		name  string
		input Object
		want  interface{}
	}{
		{"nil", NIL, nil},
		{"integer", NewNumber(3), int64(3)},
		{"fraction", NewNumber(0.25), 0.25},
		{"inf", NewNumber(math.Inf(1)), "inf"},
		{"array", NewArray(NewNumber(1), NewNumber(2)), []interface{}{int64(1), int64(2)}},
		{"nested array", nested, []interface{}{[]interface{}{int64(1)}, "two"}},
		{"map drops functions", mixed, map[string]interface{}{"x": 1.5, "y": "s", "ok": true}},
		{"sparse array is a map", NewArray(NewNumber(1), NIL, NewNumber(3)), map[string]interface{}{"1": int64(1), "3": int64(3)}},
		{"empty table", NewTable(), map[string]interface{}{}},
		{"cycle is cut", cyclic, map[string]interface{}{"self": nil}},
		{"stand-in", NewUnmodeled("TUNING.X"), "TUNING.X"},
		{"entity", pig, "pig"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ToNative(tt.input)); diff != "" {
				t.Errorf("ToNative mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToNativeSharedSubtable(t *testing.T) {
	shared := NewArray(NewNumber(1))
	outer := NewTable()
	outer.SetString("a", shared)
	outer.SetString("b", shared)
	want := map[string]interface{}{
		"a": []interface{}{int64(1)},
		"b": []interface{}{int64(1)},
	}
	if diff := cmp.Diff(want, ToNative(outer)); diff != "" {
		t.Errorf("shared subtable must not be treated as a cycle (-want +got):\n%s", diff)
	}
}
