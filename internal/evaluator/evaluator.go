package evaluator

import (
	"io"
	"log/slog"
	"math/rand"

	"github.com/funvibe/luaharvest/internal/ast"
)

// CallFrame represents a single frame in the call stack
type CallFrame struct {
	Name   string // Function name
	Source string // Source file
	Line   int    // Line of the call site
}

// maxCallDepth bounds script recursion so a runaway script fails its own
// file instead of exhausting the Go stack.
const maxCallDepth = 10000

// ModuleLoader resolves require paths. Implementations memoize results.
type ModuleLoader interface {
	LoadModule(e *Evaluator, path string) (Object, error)
}

// Evaluator walks an AST against a scope chain rooted at Globals. One
// Evaluator together with its Globals and Loader forms an interpreter
// session; sessions share nothing with each other.
type Evaluator struct {
	// Globals is the root scope: builtins, host bindings and every global
	// assigned by evaluated scripts.
	Globals *Environment
	// Loader for require; nil makes require fail with a ModuleError.
	Loader ModuleLoader
	// Policy selects which parts of a script are executed.
	Policy *Policy

	Out    io.Writer
	Logger *slog.Logger
	Rand   *rand.Rand

	// CallStack for stack traces on errors
	CallStack []CallFrame
	// CurrentFile being evaluated
	CurrentFile string

	gated bool
}

// New returns an evaluator whose globals hold the standard builtins.
func New() *Evaluator {
	e := &Evaluator{
		Globals: NewEnvironment(),
		Policy:  &Policy{},
		Out:     io.Discard,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Rand:    rand.New(rand.NewSource(1)),
	}
	RegisterBuiltins(e.Globals)
	return e
}

// Fork returns a fresh evaluator for a module: same globals, loader and
// output, the policy without its file-scoped gates, and an empty call stack.
func (e *Evaluator) Fork(file string) *Evaluator {
	return &Evaluator{
		Globals:     e.Globals,
		Loader:      e.Loader,
		Policy:      e.Policy.ForModule(),
		Out:         e.Out,
		Logger:      e.Logger,
		Rand:        e.Rand,
		CurrentFile: file,
	}
}

// Run evaluates a chunk in a new scope beneath Globals and returns the
// chunk's return values. Early termination is reported as an error that
// matches ErrExtractionComplete.
func (e *Evaluator) Run(chunk *ast.Chunk) ([]Object, error) {
	e.CurrentFile = chunk.Name
	e.CallStack = e.CallStack[:0]
	e.gated = e.Policy.GateUntil != ""
	defer func() { e.gated = false }()

	res := e.evalChunk(chunk, e.Globals.Child())
	switch r := res.(type) {
	case *Error:
		return nil, r
	case *ExtractionComplete:
		return nil, r
	case *ReturnValue:
		return r.Values, nil
	}
	return nil, nil
}

// Eval evaluates a statement or an expression. Expressions yield their
// first value; statements yield nil or a control signal.
func (e *Evaluator) Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {
	case ast.Stmt:
		return e.execStmt(node, env)
	case ast.Expr:
		return e.evalExpr(node, env)
	}
	return e.unsupported(node)
}

func (e *Evaluator) evalChunk(chunk *ast.Chunk, env *Environment) Object {
	res := e.execStatements(chunk.Body.Stmts, env)
	switch r := res.(type) {
	case *BreakSignal:
		return e.errorAt(r.Line, InternalError, "break outside a loop")
	case *ReturnValue, *Error, *ExtractionComplete:
		return r
	}
	return nil
}

func (e *Evaluator) execStatements(stmts []ast.Stmt, env *Environment) Object {
	for _, stmt := range stmts {
		var res Object
		if e.gated {
			res = e.execGated(stmt, env)
		} else {
			res = e.execStmt(stmt, env)
		}
		if res != nil {
			return res
		}
	}
	return nil
}

func (e *Evaluator) execStmt(stmt ast.Stmt, env *Environment) Object {
	switch s := stmt.(type) {
	case *ast.LocalAssign:
		return e.execLocalAssign(s, env)
	case *ast.Assign:
		return e.execAssign(s, env)
	case *ast.CallStmt:
		if res := e.evalCallNode(s.Call, env); IsAbort(res) {
			return res
		}
		return nil
	case *ast.Do:
		return e.execBlock(s.Body, env)
	case *ast.Block:
		return e.execBlock(s, env)
	case *ast.If:
		return e.execIf(s, env)
	case *ast.NumericFor:
		return e.execNumericFor(s, env)
	case *ast.GenericFor:
		return e.execGenericFor(s, env)
	case *ast.While:
		return e.execWhile(s, env)
	case *ast.Repeat:
		return e.execRepeat(s, env)
	case *ast.Return:
		values, abort := e.evalExprList(s.Values, env)
		if abort != nil {
			return abort
		}
		return &ReturnValue{Values: values}
	case *ast.Break:
		return &BreakSignal{Line: s.Line()}
	case *ast.LocalFunction:
		return e.execLocalFunction(s, env)
	case *ast.FunctionDef:
		return e.execFunctionDef(s, env)
	case *ast.Chunk:
		return e.evalChunk(s, env.Child())
	default:
		return e.unsupported(stmt)
	}
}

func (e *Evaluator) evalExpr(expr ast.Expr, env *Environment) Object {
	switch x := expr.(type) {
	case *ast.Nil:
		return NIL
	case *ast.True:
		return TRUE
	case *ast.False:
		return FALSE
	case *ast.Number:
		return NewNumber(x.Value)
	case *ast.String:
		return NewString(x.Value)
	case *ast.Name:
		return e.evalName(x, env)
	case *ast.Varargs:
		if pack, ok := e.varargs(env); ok {
			return pack.First()
		}
		return NIL
	case *ast.Paren:
		return e.evalExpr(x.Inner, env)
	case *ast.Index:
		return e.evalIndex(x, env)
	case *ast.Call, *ast.Invoke:
		return First(e.evalCallNode(x, env))
	case *ast.Table:
		return e.evalTable(x, env)
	case *ast.FunctionExpr:
		return e.newFunction(x, env, false)
	case *ast.Unary:
		return e.evalUnary(x, env)
	case *ast.Binary:
		return e.evalBinary(x, env)
	case *ast.Concat:
		return e.evalConcat(x, env)
	case *ast.Relational:
		return e.evalRelational(x, env)
	case *ast.Logical:
		return e.evalLogical(x, env)
	default:
		return e.unsupported(expr)
	}
}

// evalMulti evaluates an expression that may produce several values:
// calls and `...`. Other expressions produce exactly one value.
func (e *Evaluator) evalMulti(expr ast.Expr, env *Environment) ([]Object, Object) {
	switch x := expr.(type) {
	case *ast.Call, *ast.Invoke:
		res := e.evalCallNode(x, env)
		if IsAbort(res) {
			return nil, res
		}
		if pack, ok := res.(*VarArgs); ok {
			return pack.Values, nil
		}
		return []Object{res}, nil
	case *ast.Varargs:
		if pack, ok := e.varargs(env); ok {
			return pack.Values, nil
		}
		return nil, nil
	}
	v := e.evalExpr(expr, env)
	if IsAbort(v) {
		return nil, v
	}
	return []Object{v}, nil
}

// evalExprList evaluates an expression list, expanding only the last
// expression to all of its values.
func (e *Evaluator) evalExprList(exprs []ast.Expr, env *Environment) ([]Object, Object) {
	values := make([]Object, 0, len(exprs))
	for i, x := range exprs {
		if i == len(exprs)-1 {
			rest, abort := e.evalMulti(x, env)
			if abort != nil {
				return nil, abort
			}
			values = append(values, rest...)
			break
		}
		v := e.evalExpr(x, env)
		if IsAbort(v) {
			return nil, v
		}
		values = append(values, v)
	}
	return values, nil
}

func (e *Evaluator) varargs(env *Environment) (*VarArgs, bool) {
	obj, ok := env.Get("...")
	if !ok {
		return nil, false
	}
	pack, ok := obj.(*VarArgs)
	return pack, ok
}

func (e *Evaluator) unsupported(node ast.Node) *Error {
	line := 0
	if node != nil {
		line = node.Line()
	}
	return e.errorAt(line, UnsupportedConstruct, "no evaluator for %s", ast.Kind(node))
}

// first truncates a call result to one value, passing aborts through.
func First(obj Object) Object {
	if pack, ok := obj.(*VarArgs); ok {
		return pack.First()
	}
	return obj
}
