package evaluator

import (
	"strings"

	"github.com/funvibe/luaharvest/internal/ast"
	"github.com/funvibe/luaharvest/internal/config"
)

// UndefinedMode decides what reading an unbound name yields.
type UndefinedMode int

const (
	UndefinedNil     UndefinedMode = iota // read as nil
	UndefinedError                        // raise NameError
	UndefinedStandIn                      // materialise a global stand-in
)

// Policy is the selective-execution configuration of a session. The zero
// value executes everything.
type Policy struct {
	// SuppressCalls replaces calls to these callees with nil without
	// evaluating their arguments. A callee matches by its full dotted path,
	// its root name or its last member name.
	SuppressCalls map[string]bool
	// AllowCalls, when non-empty, suppresses every call that does not match.
	AllowCalls map[string]bool
	// SuppressNames are bound at most once, to nil; later assignments to
	// them, or to paths rooted at them, are skipped unevaluated.
	SuppressNames map[string]bool
	// GateUntil skips every statement outside block boundaries except an
	// assignment whose first target is this global.
	GateUntil string
	// StopAt ends the file with ExtractionComplete on reaching an
	// assignment rooted at this name.
	StopAt string
	// SkipAssign drops assignments rooted at these names.
	SkipAssign map[string]bool
	// SkipModules lists require paths that resolve to nil without loading.
	// Entries ending in "/" match as prefixes.
	SkipModules []string
	Undefined   UndefinedMode
}

// NewPolicy converts a profile into a policy.
func NewPolicy(p *config.Profile) *Policy {
	if p == nil {
		return &Policy{}
	}
	pol := &Policy{
		SuppressCalls: toSet(p.SuppressCalls),
		AllowCalls:    toSet(p.AllowCalls),
		SuppressNames: toSet(p.SuppressNames),
		GateUntil:     p.GateUntil,
		StopAt:        p.StopAt,
		SkipAssign:    toSet(p.SkipAssign),
		SkipModules:   append([]string(nil), p.SkipModules...),
	}
	switch p.UndefinedNames {
	case config.UndefinedError:
		pol.Undefined = UndefinedError
	case config.UndefinedStandIn:
		pol.Undefined = UndefinedStandIn
	}
	return pol
}

func toSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// ForModule is the policy applied to required modules: the same call, name
// and module rules, without the file-scoped gate and stop target.
func (p *Policy) ForModule() *Policy {
	cp := *p
	cp.GateUntil = ""
	cp.StopAt = ""
	return &cp
}

// CallSuppressed reports whether a call to the callee at path is a no-op.
// An empty path stands for a callee with no static name.
func (p *Policy) CallSuppressed(path string) bool {
	if len(p.SuppressCalls) == 0 && len(p.AllowCalls) == 0 {
		return false
	}
	candidates := pathCandidates(path)
	for _, c := range candidates {
		if p.SuppressCalls[c] {
			return true
		}
	}
	if len(p.AllowCalls) == 0 {
		return false
	}
	for _, c := range candidates {
		if p.AllowCalls[c] {
			return false
		}
	}
	return true
}

func pathCandidates(path string) []string {
	if path == "" {
		return nil
	}
	out := []string{path}
	if i := strings.IndexAny(path, ".:"); i >= 0 {
		out = append(out, path[:i])
	}
	if i := strings.LastIndexAny(path, ".:"); i >= 0 {
		out = append(out, path[i+1:])
	}
	return out
}

func (p *Policy) NameSuppressed(name string) bool {
	return p.SuppressNames[name]
}

func (p *Policy) ModuleSkipped(path string) bool {
	for _, m := range p.SkipModules {
		if strings.HasSuffix(m, "/") {
			if strings.HasPrefix(path, m) {
				return true
			}
		} else if path == m {
			return true
		}
	}
	return false
}

// isGateTarget reports whether an assignment lifts the gate.
func (p *Policy) isGateTarget(s *ast.Assign) bool {
	if p.GateUntil == "" || len(s.Targets) == 0 {
		return false
	}
	name, ok := s.Targets[0].(*ast.Name)
	return ok && name.Value == p.GateUntil
}

// execGated runs one statement while the gate is down: block boundaries
// are entered, the target assignment runs with the gate lifted, and every
// other statement is skipped.
func (e *Evaluator) execGated(stmt ast.Stmt, env *Environment) Object {
	switch s := stmt.(type) {
	case *ast.Do:
		return e.execBlock(s.Body, env)
	case *ast.Block:
		return e.execBlock(s, env)
	case *ast.Assign:
		if !e.Policy.isGateTarget(s) {
			return nil
		}
		e.gated = false
		res := e.execAssign(s, env)
		e.gated = true
		return res
	}
	return nil
}
