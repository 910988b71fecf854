package evaluator

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func keyStrings(t *Table) []string {
	var out []string
	for _, k := range t.Keys() {
		out = append(out, toDisplayString(k))
	}
	return out
}

func arrayStrings(t *Table) string {
	parts := make([]string, 0, t.Length())
	for _, v := range t.Array() {
		parts = append(parts, toDisplayString(v))
	}
	return strings.Join(parts, ",")
}

func TestTableInsertionOrder(t *testing.T) {
	tbl := NewTable()
	for _, k := range []string{"a", "b", "c"} {
		tbl.SetString(k, TRUE)
	}
	tbl.SetString("b", NIL)
	tbl.SetString("b", FALSE)
	tbl.SetString("a", NewNumber(2))
	if diff := cmp.Diff([]string{"a", "c", "b"}, keyStrings(tbl)); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}
	if tbl.Count() != 3 {
		t.Errorf("Count = %d, want 3", tbl.Count())
	}
}

func TestTableKeys(t *testing.T) {
	tbl := NewTable()
	tbl.Set(NewNumber(math.Copysign(0, -1)), NewString("zero"))
	if got := toDisplayString(tbl.Get(NewNumber(0))); got != "zero" {
		t.Errorf("negative zero key not normalised: %q", got)
	}
	tbl.Set(NewNumber(math.NaN()), TRUE)
	tbl.Set(NIL, TRUE)
	if tbl.Count() != 1 {
		t.Errorf("Count = %d, want 1 after unusable keys", tbl.Count())
	}
	if tbl.Get(NIL) != NIL {
		t.Error("nil key must read as nil")
	}
	tbl.Set(NewNumber(1), TRUE)
	if tbl.GetString("1") != NIL {
		t.Error("string and number keys must be distinct")
	}
}

func TestTableLength(t *testing.T) {
	tbl := NewTable()
	tbl.SetInt(1, TRUE)
	tbl.SetInt(3, TRUE)
	if tbl.Length() != 1 {
		t.Errorf("Length = %d, want 1", tbl.Length())
	}
	tbl.SetInt(2, TRUE)
	if tbl.Length() != 3 {
		t.Errorf("Length = %d, want 3", tbl.Length())
	}
	tbl.Append(FALSE)
	if tbl.Length() != 4 {
		t.Errorf("Length = %d after Append, want 4", tbl.Length())
	}
}

func TestTableInsert(t *testing.T) {
	tbl := NewArray(NewString("a"), NewString("b"), NewString("c"))
	tbl.Insert(2, NewString("x"))
	if got := arrayStrings(tbl); got != "a,x,b,c" {
		t.Errorf("array = %q, want a,x,b,c", got)
	}

	gappy := NewTable()
	gappy.SetInt(1, NewString("a"))
	gappy.SetInt(2, NewString("b"))
	gappy.SetInt(4, NewString("d"))
	gappy.Insert(2, NewString("x"))
	for i, want := range map[int]string{1: "a", 2: "x", 3: "b", 4: "nil", 5: "d"} {
		if got := toDisplayString(gappy.GetInt(i)); got != want {
			t.Errorf("gappy[%d] = %q, want %q", i, got, want)
		}
	}
	if gappy.Length() != 3 {
		t.Errorf("Length = %d, want 3", gappy.Length())
	}
}

func TestTableRemove(t *testing.T) {
	tbl := NewArray(NewString("a"), NewString("b"), NewString("c"))
	if got := toDisplayString(tbl.Remove(2)); got != "b" {
		t.Errorf("Remove(2) = %q, want b", got)
	}
	if got := arrayStrings(tbl); got != "a,c" {
		t.Errorf("array = %q, want a,c", got)
	}
	if got := toDisplayString(tbl.Remove()); got != "c" {
		t.Errorf("Remove() = %q, want c", got)
	}
	if tbl.Remove(0) != NIL || tbl.Remove(9) != NIL {
		t.Error("out-of-range Remove must return nil")
	}
	if tbl.Length() != 1 {
		t.Errorf("Length = %d, want 1", tbl.Length())
	}
	if NewTable().Remove() != NIL {
		t.Error("Remove on an empty table must return nil")
	}
}

func TestTableNext(t *testing.T) {
	tbl := NewTable()
	tbl.SetString("a", NewNumber(1))
	tbl.SetString("b", NewNumber(2))
	tbl.SetString("c", NewNumber(3))
	tbl.SetString("b", NIL)

	var seen []string
	k, _, ok := tbl.Next(NIL)
	for ok {
		seen = append(seen, toDisplayString(k))
		k, _, ok = tbl.Next(k)
	}
	if diff := cmp.Diff([]string{"a", "c"}, seen); diff != "" {
		t.Errorf("walk mismatch (-want +got):\n%s", diff)
	}
	if _, _, ok := tbl.Next(NewString("missing")); ok {
		t.Error("Next from a missing key must stop")
	}
}

func TestTableCompaction(t *testing.T) {
	tbl := NewTable()
	for i := 1; i <= 20; i++ {
		tbl.SetInt(i, NewNumber(float64(i)))
	}
	for i := 1; i <= 15; i++ {
		tbl.SetInt(i, NIL)
	}
	if diff := cmp.Diff([]string{"16", "17", "18", "19", "20"}, keyStrings(tbl)); diff != "" {
		t.Errorf("keys after compaction mismatch (-want +got):\n%s", diff)
	}
	if got := toDisplayString(tbl.GetInt(18)); got != "18" {
		t.Errorf("tbl[18] = %q after compaction", got)
	}
	tbl.SetInt(1, TRUE)
	if diff := cmp.Diff([]string{"16", "17", "18", "19", "20", "1"}, keyStrings(tbl)); diff != "" {
		t.Errorf("keys after reinsert mismatch (-want +got):\n%s", diff)
	}
}

func TestTableRangeSkipsDeleted(t *testing.T) {
	tbl := NewArray(NewNumber(1), NewNumber(2), NewNumber(3))
	var visited []string
	tbl.Range(func(k, v Object) bool {
		visited = append(visited, toDisplayString(v))
		if toDisplayString(k) == "1" {
			tbl.SetInt(2, NIL)
			tbl.SetInt(4, NewNumber(4))
		}
		return true
	})
	if diff := cmp.Diff([]string{"1", "3"}, visited); diff != "" {
		t.Errorf("visited mismatch (-want +got):\n%s", diff)
	}
}
