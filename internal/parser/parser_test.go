package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/luaharvest/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	chunk, err := ParseString(src, "test.lua")
	if err != nil {
		t.Fatalf("ParseString(%q) error: %v", src, err)
	}
	return chunk
}

func TestStatementKinds(t *testing.T) {
	tests := []struct {
		input string
		kinds []string
	}{
		{"local a = 1", []string{"LocalAssign"}},
		{"a, b = 1, 2", []string{"Assign"}},
		{"f()", []string{"CallStmt"}},
		{"obj:m()", []string{"CallStmt"}},
		{"do end", []string{"Do"}},
		{"if a then end", []string{"If"}},
		{"for i = 1, 2 do end", []string{"NumericFor"}},
		{"for k, v in pairs(t) do end", []string{"GenericFor"}},
		{"while a do end", []string{"While"}},
		{"repeat until a", []string{"Repeat"}},
		{"local function f() end", []string{"LocalFunction"}},
		{"local f = function() end", []string{"LocalFunction"}},
		{"function a.b.c() end", []string{"Function"}},
		{"function a:m() end", []string{"Function"}},
		{"return 1", []string{"Return"}},
		{"while true do break end", []string{"While"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			chunk := mustParse(t, tt.input)
			var got []string
			for _, s := range chunk.Body.Stmts {
				got = append(got, ast.Kind(s))
			}
			if diff := cmp.Diff(tt.kinds, got); diff != "" {
				t.Errorf("statement kinds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestElseIfChainIsFlattened(t *testing.T) {
	chunk := mustParse(t, `
if a then x = 1
elseif b then x = 2
elseif c then x = 3
else x = 4
end`)
	s, ok := chunk.Body.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", chunk.Body.Stmts[0])
	}
	if len(s.ElseIfs) != 2 {
		t.Fatalf("expected 2 elseif arms, got %d", len(s.ElseIfs))
	}
	if s.Else == nil || len(s.Else.Stmts) != 1 {
		t.Fatalf("expected an else block with one statement, got %+v", s.Else)
	}
}

func TestIndexNotation(t *testing.T) {
	chunk := mustParse(t, `x = a.b
y = a["c d"]
z = a[1]`)
	want := []ast.Notation{ast.Dot, ast.Bracket, ast.Bracket}
	for i, s := range chunk.Body.Stmts {
		assign := s.(*ast.Assign)
		idx, ok := assign.Values[0].(*ast.Index)
		if !ok {
			t.Fatalf("stmt %d: expected *ast.Index, got %T", i, assign.Values[0])
		}
		if idx.Notation != want[i] {
			t.Errorf("stmt %d: notation = %v, want %v", i, idx.Notation, want[i])
		}
	}
}

func TestParenthesisedCallIsTruncated(t *testing.T) {
	chunk := mustParse(t, "x = (f())")
	assign := chunk.Body.Stmts[0].(*ast.Assign)
	p, ok := assign.Values[0].(*ast.Paren)
	if !ok {
		t.Fatalf("expected *ast.Paren, got %T", assign.Values[0])
	}
	if _, ok := p.Inner.(*ast.Call); !ok {
		t.Errorf("expected inner *ast.Call, got %T", p.Inner)
	}
}

func TestFunctionNames(t *testing.T) {
	chunk := mustParse(t, `
function M.helpers.make(a, b, ...) end
function Class:init(x) end`)

	def := chunk.Body.Stmts[0].(*ast.FunctionDef)
	if def.Func.Name != "M.helpers.make" {
		t.Errorf("name = %q, want M.helpers.make", def.Func.Name)
	}
	if diff := cmp.Diff([]string{"a", "b"}, def.Func.Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
	if !def.Func.Variadic {
		t.Error("expected variadic function")
	}

	method := chunk.Body.Stmts[1].(*ast.FunctionDef)
	if method.Method != "init" || method.Func.Name != "Class:init" {
		t.Errorf("method = %q, name = %q", method.Method, method.Func.Name)
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"10", 10},
		{"0x10", 16},
		{"0XfF", 255},
		{"1.5", 1.5},
		{"1e3", 1000},
		{".5", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNumber(tt.input)
			if err != nil {
				t.Fatalf("ParseNumber(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "abc", "inf", "nan", "1_000"} {
		if _, err := ParseNumber(bad); err == nil {
			t.Errorf("ParseNumber(%q) succeeded, want error", bad)
		}
	}
}

func TestSyntaxError(t *testing.T) {
	_, err := ParseString("local = 1", "broken.lua")
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *SyntaxError, got %T: %v", err, err)
	}
	if serr.Source != "broken.lua" {
		t.Errorf("source = %q, want broken.lua", serr.Source)
	}
}

func TestChunkName(t *testing.T) {
	chunk := mustParse(t, "")
	if chunk.Name != "test.lua" {
		t.Errorf("chunk name = %q, want test.lua", chunk.Name)
	}
	if len(chunk.Body.Stmts) != 0 {
		t.Errorf("expected empty body, got %d statements", len(chunk.Body.Stmts))
	}
}
