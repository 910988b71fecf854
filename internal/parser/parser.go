// Package parser turns script source into an *ast.Chunk.
//
// Tokenizing and grammar are handled by gopher-lua's parser; this package
// converts its tree into the closed node set the evaluator understands.
package parser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	glast "github.com/yuin/gopher-lua/ast"
	glparse "github.com/yuin/gopher-lua/parse"

	"github.com/funvibe/luaharvest/internal/ast"
)

// SyntaxError reports source that could not be parsed or converted.
type SyntaxError struct {
	Source  string
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// Parse reads a whole script and returns its chunk. name is used in error
// messages and as the chunk name.
func Parse(r io.Reader, name string) (*ast.Chunk, error) {
	stmts, err := glparse.Parse(r, name)
	if err != nil {
		var perr *glparse.Error
		if errors.As(err, &perr) {
			return nil, &SyntaxError{Source: name, Line: perr.Pos.Line, Message: strings.TrimSpace(perr.Message)}
		}
		return nil, &SyntaxError{Source: name, Message: strings.TrimSpace(err.Error())}
	}
	c := &converter{source: name}
	body, err := c.block(stmts, 1)
	if err != nil {
		return nil, err
	}
	return &ast.Chunk{Pos: ast.Pos{Ln: 1}, Name: name, Body: body}, nil
}

// ParseString is Parse over an in-memory source.
func ParseString(src, name string) (*ast.Chunk, error) {
	return Parse(strings.NewReader(src), name)
}

type converter struct {
	source string
}

func (c *converter) errorf(line int, format string, a ...interface{}) error {
	return &SyntaxError{Source: c.source, Line: line, Message: fmt.Sprintf(format, a...)}
}

func (c *converter) block(stmts []glast.Stmt, line int) (*ast.Block, error) {
	if len(stmts) > 0 {
		line = stmts[0].Line()
	}
	b := &ast.Block{Pos: ast.Pos{Ln: line}, Stmts: make([]ast.Stmt, 0, len(stmts))}
	for _, s := range stmts {
		st, err := c.stmt(s)
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, st)
	}
	return b, nil
}

func (c *converter) stmt(s glast.Stmt) (ast.Stmt, error) {
	pos := ast.Pos{Ln: s.Line()}
	switch s := s.(type) {
	case *glast.LocalAssignStmt:
		if len(s.Names) == 1 && len(s.Exprs) == 1 {
			if fn, ok := s.Exprs[0].(*glast.FunctionExpr); ok {
				f, err := c.function(fn, s.Names[0])
				if err != nil {
					return nil, err
				}
				return &ast.LocalFunction{Pos: pos, Name: s.Names[0], Func: f}, nil
			}
		}
		values, err := c.exprs(s.Exprs)
		if err != nil {
			return nil, err
		}
		return &ast.LocalAssign{Pos: pos, Names: s.Names, Values: values}, nil
	case *glast.AssignStmt:
		targets, err := c.exprs(s.Lhs)
		if err != nil {
			return nil, err
		}
		values, err := c.exprs(s.Rhs)
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Pos: pos, Targets: targets, Values: values}, nil
	case *glast.FuncCallStmt:
		call, err := c.expr(s.Expr)
		if err != nil {
			return nil, err
		}
		if p, ok := call.(*ast.Paren); ok {
			call = p.Inner
		}
		return &ast.CallStmt{Pos: pos, Call: call}, nil
	case *glast.DoBlockStmt:
		body, err := c.block(s.Stmts, s.Line())
		if err != nil {
			return nil, err
		}
		return &ast.Do{Pos: pos, Body: body}, nil
	case *glast.WhileStmt:
		cond, err := c.expr(s.Condition)
		if err != nil {
			return nil, err
		}
		body, err := c.block(s.Stmts, s.Line())
		if err != nil {
			return nil, err
		}
		return &ast.While{Pos: pos, Cond: cond, Body: body}, nil
	case *glast.RepeatStmt:
		cond, err := c.expr(s.Condition)
		if err != nil {
			return nil, err
		}
		body, err := c.block(s.Stmts, s.Line())
		if err != nil {
			return nil, err
		}
		return &ast.Repeat{Pos: pos, Body: body, Cond: cond}, nil
	case *glast.IfStmt:
		return c.ifStmt(s)
	case *glast.NumberForStmt:
		start, err := c.expr(s.Init)
		if err != nil {
			return nil, err
		}
		stop, err := c.expr(s.Limit)
		if err != nil {
			return nil, err
		}
		var step ast.Expr
		if s.Step != nil {
			if step, err = c.expr(s.Step); err != nil {
				return nil, err
			}
		}
		body, err := c.block(s.Stmts, s.Line())
		if err != nil {
			return nil, err
		}
		return &ast.NumericFor{Pos: pos, Var: s.Name, Start: start, Stop: stop, Step: step, Body: body}, nil
	case *glast.GenericForStmt:
		exprs, err := c.exprs(s.Exprs)
		if err != nil {
			return nil, err
		}
		body, err := c.block(s.Stmts, s.Line())
		if err != nil {
			return nil, err
		}
		return &ast.GenericFor{Pos: pos, Names: s.Names, Exprs: exprs, Body: body}, nil
	case *glast.FuncDefStmt:
		return c.funcDef(s)
	case *glast.ReturnStmt:
		values, err := c.exprs(s.Exprs)
		if err != nil {
			return nil, err
		}
		return &ast.Return{Pos: pos, Values: values}, nil
	case *glast.BreakStmt:
		return &ast.Break{Pos: pos}, nil
	case *glast.GotoStmt:
		return &ast.Goto{Pos: pos, Label: s.Label}, nil
	case *glast.LabelStmt:
		return &ast.Label{Pos: pos, Name: s.Name}, nil
	default:
		return nil, c.errorf(s.Line(), "unknown statement %T", s)
	}
}

// ifStmt flattens gopher-lua's nested else-if chains into ElseIf arms.
func (c *converter) ifStmt(s *glast.IfStmt) (ast.Stmt, error) {
	cond, err := c.expr(s.Condition)
	if err != nil {
		return nil, err
	}
	then, err := c.block(s.Then, s.Line())
	if err != nil {
		return nil, err
	}
	out := &ast.If{Pos: ast.Pos{Ln: s.Line()}, Cond: cond, Then: then}
	rest := s.Else
	for len(rest) == 1 {
		nested, ok := rest[0].(*glast.IfStmt)
		if !ok {
			break
		}
		ncond, err := c.expr(nested.Condition)
		if err != nil {
			return nil, err
		}
		body, err := c.block(nested.Then, nested.Line())
		if err != nil {
			return nil, err
		}
		out.ElseIfs = append(out.ElseIfs, &ast.ElseIf{Pos: ast.Pos{Ln: nested.Line()}, Cond: ncond, Body: body})
		rest = nested.Else
	}
	if len(rest) > 0 {
		if out.Else, err = c.block(rest, rest[0].Line()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *converter) funcDef(s *glast.FuncDefStmt) (ast.Stmt, error) {
	pos := ast.Pos{Ln: s.Line()}
	if s.Name.Func != nil {
		target, err := c.expr(s.Name.Func)
		if err != nil {
			return nil, err
		}
		name, _ := ast.DottedPath(target)
		fn, err := c.function(s.Func, name)
		if err != nil {
			return nil, err
		}
		return &ast.FunctionDef{Pos: pos, Target: target, Func: fn}, nil
	}
	recv, err := c.expr(s.Name.Receiver)
	if err != nil {
		return nil, err
	}
	name, _ := ast.DottedPath(recv)
	fn, err := c.function(s.Func, name+":"+s.Name.Method)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDef{Pos: pos, Target: recv, Method: s.Name.Method, Func: fn}, nil
}

func (c *converter) function(f *glast.FunctionExpr, name string) (*ast.FunctionExpr, error) {
	body, err := c.block(f.Stmts, f.Line())
	if err != nil {
		return nil, err
	}
	out := &ast.FunctionExpr{Pos: ast.Pos{Ln: f.Line()}, Name: name, Body: body}
	if f.ParList != nil {
		out.Params = f.ParList.Names
		out.Variadic = f.ParList.HasVargs
	}
	return out, nil
}

func (c *converter) exprs(list []glast.Expr) ([]ast.Expr, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]ast.Expr, 0, len(list))
	for _, e := range list {
		x, err := c.expr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

func (c *converter) expr(e glast.Expr) (ast.Expr, error) {
	pos := ast.Pos{Ln: e.Line()}
	switch e := e.(type) {
	case *glast.TrueExpr:
		return &ast.True{Pos: pos}, nil
	case *glast.FalseExpr:
		return &ast.False{Pos: pos}, nil
	case *glast.NilExpr:
		return &ast.Nil{Pos: pos}, nil
	case *glast.NumberExpr:
		v, err := ParseNumber(e.Value)
		if err != nil {
			return nil, c.errorf(e.Line(), "malformed number %q", e.Value)
		}
		return &ast.Number{Pos: pos, Value: v}, nil
	case *glast.StringExpr:
		return &ast.String{Pos: pos, Value: e.Value}, nil
	case *glast.Comma3Expr:
		if e.AdjustRet {
			return &ast.Paren{Pos: pos, Inner: &ast.Varargs{Pos: pos}}, nil
		}
		return &ast.Varargs{Pos: pos}, nil
	case *glast.IdentExpr:
		return &ast.Name{Pos: pos, Value: e.Value}, nil
	case *glast.AttrGetExpr:
		obj, err := c.expr(e.Object)
		if err != nil {
			return nil, err
		}
		key, err := c.expr(e.Key)
		if err != nil {
			return nil, err
		}
		// gopher-lua lowers `a.b` to a string key; the dot form is only
		// distinguishable by an identifier-shaped key.
		notation := ast.Bracket
		if s, ok := key.(*ast.String); ok && isIdentifier(s.Value) {
			notation = ast.Dot
		}
		return &ast.Index{Pos: pos, Object: obj, Key: key, Notation: notation}, nil
	case *glast.TableExpr:
		t := &ast.Table{Pos: pos, Fields: make([]*ast.Field, 0, len(e.Fields))}
		for _, f := range e.Fields {
			var key ast.Expr
			if f.Key != nil {
				k, err := c.expr(f.Key)
				if err != nil {
					return nil, err
				}
				key = k
			}
			v, err := c.expr(f.Value)
			if err != nil {
				return nil, err
			}
			t.Fields = append(t.Fields, &ast.Field{Key: key, Value: v})
		}
		return t, nil
	case *glast.FuncCallExpr:
		return c.call(e)
	case *glast.LogicalOpExpr:
		l, r, err := c.pair(e.Lhs, e.Rhs)
		if err != nil {
			return nil, err
		}
		return &ast.Logical{Pos: pos, Op: e.Operator, Left: l, Right: r}, nil
	case *glast.RelationalOpExpr:
		l, r, err := c.pair(e.Lhs, e.Rhs)
		if err != nil {
			return nil, err
		}
		return &ast.Relational{Pos: pos, Op: e.Operator, Left: l, Right: r}, nil
	case *glast.StringConcatOpExpr:
		l, r, err := c.pair(e.Lhs, e.Rhs)
		if err != nil {
			return nil, err
		}
		return &ast.Concat{Pos: pos, Left: l, Right: r}, nil
	case *glast.ArithmeticOpExpr:
		l, r, err := c.pair(e.Lhs, e.Rhs)
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Pos: pos, Op: e.Operator, Left: l, Right: r}, nil
	case *glast.UnaryMinusOpExpr:
		return c.unary(pos, "-", e.Expr)
	case *glast.UnaryNotOpExpr:
		return c.unary(pos, "not", e.Expr)
	case *glast.UnaryLenOpExpr:
		return c.unary(pos, "#", e.Expr)
	case *glast.FunctionExpr:
		return c.function(e, "")
	default:
		return nil, c.errorf(e.Line(), "unknown expression %T", e)
	}
}

func (c *converter) call(e *glast.FuncCallExpr) (ast.Expr, error) {
	pos := ast.Pos{Ln: e.Line()}
	args, err := c.exprs(e.Args)
	if err != nil {
		return nil, err
	}
	var out ast.Expr
	if e.Receiver != nil {
		recv, err := c.expr(e.Receiver)
		if err != nil {
			return nil, err
		}
		out = &ast.Invoke{Pos: pos, Receiver: recv, Method: e.Method, Args: args}
	} else {
		fn, err := c.expr(e.Func)
		if err != nil {
			return nil, err
		}
		out = &ast.Call{Pos: pos, Func: fn, Args: args}
	}
	if e.AdjustRet {
		return &ast.Paren{Pos: pos, Inner: out}, nil
	}
	return out, nil
}

func (c *converter) pair(l, r glast.Expr) (ast.Expr, ast.Expr, error) {
	left, err := c.expr(l)
	if err != nil {
		return nil, nil, err
	}
	right, err := c.expr(r)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func (c *converter) unary(pos ast.Pos, op string, operand glast.Expr) (ast.Expr, error) {
	x, err := c.expr(operand)
	if err != nil {
		return nil, err
	}
	return &ast.Unary{Pos: pos, Op: op, Operand: x}, nil
}

// ParseNumber converts a numeric literal, including hex integers.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		if u, err := strconv.ParseUint(s[2:], 16, 64); err == nil {
			return float64(u), nil
		}
	}
	// strconv also accepts spellings such as "inf" and "nan"; literals
	// never do.
	if l := strings.ToLower(s); strings.Contains(l, "inf") || strings.Contains(l, "nan") {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
