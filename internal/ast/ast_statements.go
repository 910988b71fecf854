package ast

// LocalAssign declares names in the current scope.
// local a, b = x, y
type LocalAssign struct {
	Pos
	Names  []string
	Values []Expr
}

// Assign writes to names or indexed paths.
// a, t.b, t["c"] = x, y, z
type Assign struct {
	Pos
	Targets []Expr // *Name or *Index
	Values  []Expr
}

// ElseIf is one `elseif cond then body` arm.
type ElseIf struct {
	Pos
	Cond Expr
	Body *Block
}

type If struct {
	Pos
	Cond    Expr
	Then    *Block
	ElseIfs []*ElseIf
	Else    *Block // nil when absent
}

// NumericFor is `for v = start, stop[, step] do ... end`.
type NumericFor struct {
	Pos
	Var   string
	Start Expr
	Stop  Expr
	Step  Expr // nil means 1
	Body  *Block
}

// GenericFor is `for k, v in explist do ... end`.
type GenericFor struct {
	Pos
	Names []string
	Exprs []Expr
	Body  *Block
}

type While struct {
	Pos
	Cond Expr
	Body *Block
}

// Repeat is `repeat ... until cond`. The condition sees the body's locals.
type Repeat struct {
	Pos
	Body *Block
	Cond Expr
}

type Do struct {
	Pos
	Body *Block
}

type Return struct {
	Pos
	Values []Expr
}

type Break struct {
	Pos
}

// CallStmt is a call evaluated for its effects. Call is *Call or *Invoke.
type CallStmt struct {
	Pos
	Call Expr
}

// LocalFunction is `local function name(...) ... end`.
type LocalFunction struct {
	Pos
	Name string
	Func *FunctionExpr
}

// FunctionDef is `function a.b.c(...)` or, with Method set,
// `function a.b:c(...)`. Target is the receiver path for methods and the
// full path otherwise.
type FunctionDef struct {
	Pos
	Target Expr // *Name or *Index
	Method string
	Func   *FunctionExpr
}

// Goto and Label are parsed but never executed.
type Goto struct {
	Pos
	Label string
}

type Label struct {
	Pos
	Name string
}

func (s *LocalAssign) stmtNode()   {}
func (s *Assign) stmtNode()        {}
func (s *If) stmtNode()            {}
func (s *NumericFor) stmtNode()    {}
func (s *GenericFor) stmtNode()    {}
func (s *While) stmtNode()         {}
func (s *Repeat) stmtNode()        {}
func (s *Do) stmtNode()            {}
func (s *Return) stmtNode()        {}
func (s *Break) stmtNode()         {}
func (s *CallStmt) stmtNode()      {}
func (s *LocalFunction) stmtNode() {}
func (s *FunctionDef) stmtNode()   {}
func (s *Goto) stmtNode()          {}
func (s *Label) stmtNode()         {}
