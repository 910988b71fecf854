// Package ast defines the syntax tree evaluated by the interpreter.
//
// The node set is closed: every statement implements Stmt and every
// expression implements Expr, and the evaluator switches over the concrete
// types. Nodes carry only the source line they start on.
package ast

// Node is the base interface for all AST nodes.
type Node interface {
	Line() int
}

// Stmt is a Node that represents a statement.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is a Node that represents an expression.
type Expr interface {
	Node
	exprNode()
}

// Pos records where a node starts.
type Pos struct {
	Ln int
}

func (p Pos) Line() int { return p.Ln }

// Chunk is the root of every parsed file.
type Chunk struct {
	Pos
	Name string // source name, usually the module path or file name
	Body *Block
}

// Block is an ordered statement list. Entering a block opens a scope.
type Block struct {
	Pos
	Stmts []Stmt
}

func (c *Chunk) stmtNode() {}
func (b *Block) stmtNode() {}

// Kind returns a short, stable name for a node type, used in diagnostics.
func Kind(n Node) string {
	switch n.(type) {
	case *Chunk:
		return "Chunk"
	case *Block:
		return "Block"
	case *LocalAssign:
		return "LocalAssign"
	case *Assign:
		return "Assign"
	case *If:
		return "If"
	case *NumericFor:
		return "NumericFor"
	case *GenericFor:
		return "GenericFor"
	case *While:
		return "While"
	case *Repeat:
		return "Repeat"
	case *Do:
		return "Do"
	case *Return:
		return "Return"
	case *Break:
		return "Break"
	case *CallStmt:
		return "CallStmt"
	case *LocalFunction:
		return "LocalFunction"
	case *FunctionDef:
		return "Function"
	case *Goto:
		return "Goto"
	case *Label:
		return "Label"
	case *Name:
		return "Name"
	case *Number:
		return "Number"
	case *String:
		return "String"
	case *Nil:
		return "Nil"
	case *True:
		return "True"
	case *False:
		return "False"
	case *Varargs:
		return "Varargs"
	case *Index:
		return "Index"
	case *Call:
		return "Call"
	case *Invoke:
		return "Invoke"
	case *Table:
		return "Table"
	case *FunctionExpr:
		return "AnonymousFunction"
	case *Unary:
		return "UnaryOp"
	case *Binary:
		return "BinaryOp"
	case *Concat:
		return "Concat"
	case *Relational:
		return "RelOp"
	case *Logical:
		return "LogicalOp"
	case *Paren:
		return "Paren"
	default:
		return "Unknown"
	}
}
