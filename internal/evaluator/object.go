package evaluator

import (
	"fmt"
	"math"
	"strconv"
)

type ObjectType string

const (
	NIL_OBJ       = "nil"
	BOOLEAN_OBJ   = "boolean"
	NUMBER_OBJ    = "number"
	STRING_OBJ    = "string"
	TABLE_OBJ     = "table"
	FUNCTION_OBJ  = "function"
	BUILTIN_OBJ   = "builtin"
	VARARGS_OBJ   = "varargs"
	UNMODELED_OBJ = "unmodeled"
	ENTITY_OBJ    = "entity"

	RETURN_VALUE_OBJ        = "RETURN_VALUE"
	BREAK_SIGNAL_OBJ        = "BREAK_SIGNAL"
	ERROR_OBJ               = "ERROR"
	EXTRACTION_COMPLETE_OBJ = "EXTRACTION_COMPLETE"
)

// Object is any value the evaluator produces, including control signals.
type Object interface {
	Type() ObjectType
	Inspect() string
}

type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

// Number is the single numeric kind; integers are floats with no fraction.
type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return FormatNumber(n.Value) }

// IsInteger reports whether the number has no fractional part.
func (n *Number) IsInteger() bool {
	return !math.IsInf(n.Value, 0) && n.Value == math.Trunc(n.Value)
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func NewNumber(v float64) *Number { return &Number{Value: v} }

func NewString(s string) *String { return &String{Value: s} }

func nativeBoolToBooleanObject(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// FormatNumber renders a number the way the scripting language prints it:
// integral values without a fraction, everything else with 14 significant
// digits.
func FormatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "nan"
	}
	return fmt.Sprintf("%.14g", v)
}
