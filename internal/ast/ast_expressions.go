package ast

type Name struct {
	Pos
	Value string
}

// Number holds an already converted numeric literal.
type Number struct {
	Pos
	Value float64
}

type String struct {
	Pos
	Value string
}

type Nil struct{ Pos }
type True struct{ Pos }
type False struct{ Pos }

// Varargs is the `...` expression.
type Varargs struct{ Pos }

// Notation tells how an Index was written.
type Notation int

const (
	Dot Notation = iota
	Bracket
)

// Index is `obj.key` or `obj[key]`. For Dot notation Key is a *String.
type Index struct {
	Pos
	Object   Expr
	Key      Expr
	Notation Notation
}

type Call struct {
	Pos
	Func Expr
	Args []Expr
}

// Invoke is a method call `recv:method(args)`.
type Invoke struct {
	Pos
	Receiver Expr
	Method   string
	Args     []Expr
}

// Field is one table constructor entry. A nil Key marks a positional field.
type Field struct {
	Key   Expr
	Value Expr
}

type Table struct {
	Pos
	Fields []*Field
}

// FunctionExpr is a function body with its parameter list.
type FunctionExpr struct {
	Pos
	Name     string // best-effort name for stack traces
	Params   []string
	Variadic bool
	Body     *Block
}

// Unary operators: "-", "not", "#".
type Unary struct {
	Pos
	Op      string
	Operand Expr
}

// Binary arithmetic: "+", "-", "*", "/", "%", "^".
type Binary struct {
	Pos
	Op          string
	Left, Right Expr
}

type Concat struct {
	Pos
	Left, Right Expr
}

// Relational comparisons: "<", ">", "<=", ">=", "==", "~=".
type Relational struct {
	Pos
	Op          string
	Left, Right Expr
}

// Logical is "and" / "or" with short-circuit evaluation.
type Logical struct {
	Pos
	Op          string
	Left, Right Expr
}

// Paren truncates a multi-valued expression to one value: `(f())`.
type Paren struct {
	Pos
	Inner Expr
}

func (e *Name) exprNode()         {}
func (e *Number) exprNode()       {}
func (e *String) exprNode()       {}
func (e *Nil) exprNode()          {}
func (e *True) exprNode()         {}
func (e *False) exprNode()        {}
func (e *Varargs) exprNode()      {}
func (e *Index) exprNode()        {}
func (e *Call) exprNode()         {}
func (e *Invoke) exprNode()       {}
func (e *Table) exprNode()        {}
func (e *FunctionExpr) exprNode() {}
func (e *Unary) exprNode()        {}
func (e *Binary) exprNode()       {}
func (e *Concat) exprNode()       {}
func (e *Relational) exprNode()   {}
func (e *Logical) exprNode()      {}
func (e *Paren) exprNode()        {}

// RootName returns the identifier a Name/Index chain starts from, or "" if
// the chain is rooted at something else (a call, a literal).
func RootName(e Expr) string {
	for {
		switch n := e.(type) {
		case *Name:
			return n.Value
		case *Index:
			e = n.Object
		default:
			return ""
		}
	}
}

// DottedPath renders a Name/Index chain with string keys as "a.b.c".
// ok is false when a segment is not a plain name or string key.
func DottedPath(e Expr) (path string, ok bool) {
	switch n := e.(type) {
	case *Name:
		return n.Value, true
	case *Index:
		key, isStr := n.Key.(*String)
		if !isStr {
			return "", false
		}
		prefix, ok := DottedPath(n.Object)
		if !ok {
			return "", false
		}
		return prefix + "." + key.Value, true
	default:
		return "", false
	}
}
