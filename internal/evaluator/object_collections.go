package evaluator

import (
	"fmt"
	"math"
	"sort"
)

// Table is the hybrid array/map aggregate. Entries keep insertion order;
// deleted entries leave tombstones that are compacted lazily. Tables never
// hold nil values.
type Table struct {
	entries []tableEntry
	index   map[interface{}]int
	live    int

	// Meta is the table recorded by setmetatable. Only __index and __call
	// are consulted.
	Meta *Table
}

type tableEntry struct {
	key     Object
	value   Object
	deleted bool
}

func NewTable() *Table {
	return &Table{index: make(map[interface{}]int)}
}

// NewArray builds a table whose array view is values (nils are skipped but
// still consume their position).
func NewArray(values ...Object) *Table {
	t := NewTable()
	for i, v := range values {
		t.Set(NewNumber(float64(i+1)), v)
	}
	return t
}

func (t *Table) Type() ObjectType { return TABLE_OBJ }
func (t *Table) Inspect() string  { return fmt.Sprintf("table: %p", t) }

// hashKey maps a key to its identity in the index. Numbers compare by
// value, strings by content, everything else by reference. ok is false for
// keys that can never be stored (nil, NaN).
func hashKey(k Object) (interface{}, bool) {
	switch k := k.(type) {
	case nil, *Nil:
		return nil, false
	case *Number:
		if math.IsNaN(k.Value) {
			return nil, false
		}
		if k.Value == 0 {
			return float64(0), true
		}
		return k.Value, true
	case *String:
		return k.Value, true
	case *Boolean:
		return k.Value, true
	default:
		return k, true
	}
}

// Get never fails: a missing or unusable key reads as nil.
func (t *Table) Get(key Object) Object {
	hk, ok := hashKey(key)
	if !ok {
		return NIL
	}
	if i, found := t.index[hk]; found {
		return t.entries[i].value
	}
	return NIL
}

func (t *Table) GetString(key string) Object { return t.Get(NewString(key)) }

func (t *Table) GetInt(i int) Object { return t.Get(NewNumber(float64(i))) }

// Set writes value under key; a nil value deletes the key. Updating an
// existing key keeps its position in iteration order.
func (t *Table) Set(key, value Object) {
	hk, ok := hashKey(key)
	if !ok {
		return
	}
	if value == nil || value.Type() == NIL_OBJ {
		t.delete(hk)
		return
	}
	if i, found := t.index[hk]; found {
		t.entries[i].value = value
		return
	}
	if n, isNum := key.(*Number); isNum && n.Value == 0 {
		key = NewNumber(0)
	}
	t.index[hk] = len(t.entries)
	t.entries = append(t.entries, tableEntry{key: key, value: value})
	t.live++
}

func (t *Table) SetString(key string, value Object) { t.Set(NewString(key), value) }

func (t *Table) SetInt(i int, value Object) { t.Set(NewNumber(float64(i)), value) }

func (t *Table) delete(hk interface{}) {
	i, found := t.index[hk]
	if !found {
		return
	}
	delete(t.index, hk)
	t.entries[i] = tableEntry{deleted: true}
	t.live--
	if len(t.entries) > 16 && t.live < len(t.entries)/2 {
		t.compact()
	}
}

func (t *Table) compact() {
	entries := make([]tableEntry, 0, t.live)
	for _, e := range t.entries {
		if e.deleted {
			continue
		}
		hk, _ := hashKey(e.key)
		t.index[hk] = len(entries)
		entries = append(entries, e)
	}
	t.entries = entries
}

// Length is the size of the array view: the largest N such that keys
// 1..N are all present.
func (t *Table) Length() int {
	n := 0
	for {
		if _, found := t.index[float64(n+1)]; !found {
			return n
		}
		n++
	}
}

// Count is the number of stored entries.
func (t *Table) Count() int { return t.live }

// Append writes value at the first vacant positive integer key.
func (t *Table) Append(value Object) {
	t.SetInt(t.Length()+1, value)
}

// Insert places value at pos, first moving every integer key >= pos up by
// one, highest key first. Keys left without a predecessor are cleared.
func (t *Table) Insert(pos int, value Object) {
	var shifted []int
	for _, e := range t.entries {
		if e.deleted {
			continue
		}
		if k, ok := integerKey(e.key); ok && k >= pos {
			shifted = append(shifted, k)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(shifted)))
	present := make(map[int]bool, len(shifted))
	for _, k := range shifted {
		present[k] = true
	}
	for _, k := range shifted {
		t.SetInt(k+1, t.GetInt(k))
	}
	for _, k := range shifted {
		if k != pos && !present[k-1] {
			t.SetInt(k, NIL)
		}
	}
	t.SetInt(pos, value)
}

// Remove deletes and returns the element at pos, moving later array
// elements down by one. Without a position the last array element is
// removed. Positions outside the array view leave the table unchanged.
func (t *Table) Remove(pos ...int) Object {
	n := t.Length()
	if n == 0 {
		return NIL
	}
	p := n
	if len(pos) > 0 {
		p = pos[0]
	}
	if p < 1 || p > n {
		return NIL
	}
	removed := t.GetInt(p)
	for i := p; i < n; i++ {
		t.SetInt(i, t.GetInt(i+1))
	}
	t.SetInt(n, NIL)
	return removed
}

// Keys returns the live keys in insertion order.
func (t *Table) Keys() []Object {
	keys := make([]Object, 0, t.live)
	for _, e := range t.entries {
		if !e.deleted {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// Range visits entries in insertion order. Entries deleted during the walk
// are skipped; entries added during the walk are not visited.
func (t *Table) Range(fn func(key, value Object) bool) {
	for _, k := range t.Keys() {
		v := t.Get(k)
		if v == NIL {
			continue
		}
		if !fn(k, v) {
			return
		}
	}
}

// Next returns the entry following key in iteration order, or ok=false at
// the end. A nil key starts the walk.
func (t *Table) Next(key Object) (Object, Object, bool) {
	start := 0
	if key != nil && key.Type() != NIL_OBJ {
		hk, ok := hashKey(key)
		if !ok {
			return nil, nil, false
		}
		i, found := t.index[hk]
		if !found {
			return nil, nil, false
		}
		start = i + 1
	}
	for i := start; i < len(t.entries); i++ {
		if e := t.entries[i]; !e.deleted {
			return e.key, e.value, true
		}
	}
	return nil, nil, false
}

// Array returns the array view as a slice.
func (t *Table) Array() []Object {
	n := t.Length()
	out := make([]Object, n)
	for i := 1; i <= n; i++ {
		out[i-1] = t.GetInt(i)
	}
	return out
}

func integerKey(k Object) (int, bool) {
	n, ok := k.(*Number)
	if !ok || !n.IsInteger() {
		return 0, false
	}
	return int(n.Value), true
}
