package evaluator

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/luaharvest/internal/config"
)

func TestNewPolicy(t *testing.T) {
	p := NewPolicy(&config.Profile{
		Name:           "prefab",
		SuppressCalls:  []string{"MakeInventoryPhysics"},
		SuppressNames:  []string{"brain"},
		SkipModules:    []string{"widgets/"},
		UndefinedNames: config.UndefinedStandIn,
	})
	if !p.SuppressCalls["MakeInventoryPhysics"] || !p.SuppressNames["brain"] {
		t.Errorf("sets not converted: %+v", p)
	}
	if p.Undefined != UndefinedStandIn {
		t.Errorf("Undefined = %v, want UndefinedStandIn", p.Undefined)
	}
	if NewPolicy(nil).Undefined != UndefinedNil {
		t.Error("nil profile must give the permissive zero policy")
	}
}

func TestCallSuppression(t *testing.T) {
	tests := []struct {
		name   string
		policy *Policy
		path   string
		want   bool
	}{
		{"exact", &Policy{SuppressCalls: toSet([]string{"MakePlacer"})}, "MakePlacer", true},
		{"root of dotted path", &Policy{SuppressCalls: toSet([]string{"bit"})}, "bit.band", true},
		{"last member", &Policy{SuppressCalls: toSet([]string{"SetDesiredMaxTakeCountFunction"})}, "inst.components.x.SetDesiredMaxTakeCountFunction", true},
		{"method", &Policy{SuppressCalls: toSet([]string{"AddTag"})}, "inst:AddTag", true},
		{"unrelated", &Policy{SuppressCalls: toSet([]string{"bit"})}, "bitten", false},
		{"allowed", &Policy{AllowCalls: toSet([]string{"Recipe2"})}, "Recipe2", false},
		{"not allowed", &Policy{AllowCalls: toSet([]string{"Recipe2"})}, "DeconstructRecipe", true},
		{"anonymous callee under allow list", &Policy{AllowCalls: toSet([]string{"Recipe2"})}, "", true},
		{"no rules", &Policy{}, "anything", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.CallSuppressed(tt.path); got != tt.want {
				t.Errorf("CallSuppressed(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestModuleSkipped(t *testing.T) {
	p := &Policy{SkipModules: []string{"widgets/", "strings"}}
	for path, want := range map[string]bool{
		"widgets/text":   true,
		"strings":        true,
		"strings_pretty": false,
		"prefabutil":     false,
	} {
		if got := p.ModuleSkipped(path); got != want {
			t.Errorf("ModuleSkipped(%q) = %v, want %v", path, got, want)
		}
	}
}

func runWithPolicy(t *testing.T, p *Policy, src string) (*Evaluator, []Object, error) {
	t.Helper()
	e := New()
	e.Policy = p
	values, err := runSource(t, e, src)
	return e, values, err
}

func globalString(e *Evaluator, name string) string {
	v, ok := e.Globals.Get(name)
	if !ok {
		return "<unbound>"
	}
	return toDisplayString(v)
}

func TestSuppressedCallsSkipArguments(t *testing.T) {
	e, _, err := runWithPolicy(t, &Policy{SuppressCalls: toSet([]string{"Boom"})}, `
Boom(error("never evaluated"))
local r = a.b.Boom(1)
x = 1`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := globalString(e, "x"); got != "1" {
		t.Errorf("x = %s, want 1", got)
	}
}

func TestAllowListMode(t *testing.T) {
	e, _, err := runWithPolicy(t, &Policy{AllowCalls: toSet([]string{"keep"})}, `
function keep(v) kept = v end
function drop() dropped = true end
keep(1)
drop()
undefined_function()`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := globalString(e, "kept"); got != "1" {
		t.Errorf("kept = %s, want 1", got)
	}
	if got := globalString(e, "dropped"); got != "<unbound>" {
		t.Errorf("dropped = %s, want unbound", got)
	}
}

func TestSuppressedNames(t *testing.T) {
	e, _, err := runWithPolicy(t, &Policy{SuppressNames: toSet([]string{"STRINGS", "brain"})}, `
STRINGS = error("not evaluated")
STRINGS.NAMES = {}
local brain = require("brains/pigbrain")
kept = brain == nil`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := globalString(e, "STRINGS"); got != "nil" {
		t.Errorf("STRINGS = %s, want nil", got)
	}
	if got := globalString(e, "kept"); got != "true" {
		t.Errorf("kept = %s, want true", got)
	}
}

func TestSuppressedNameKeepsExistingBinding(t *testing.T) {
	e := New()
	e.Globals.Define("STRINGS", NewUnmodeled("STRINGS"))
	e.Policy = &Policy{SuppressNames: toSet([]string{"STRINGS"})}
	if _, err := runSource(t, e, `STRINGS = {}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := e.Globals.Get("STRINGS"); !isStandIn(v) {
		t.Errorf("STRINGS rebound to %s", TypeName(v))
	}
}

func TestGateUntil(t *testing.T) {
	e, _, err := runWithPolicy(t, &Policy{GateUntil: "TUNING"}, `
local seg = error("skipped")
before = 1
do
  TUNING = {WILSON_HEALTH = 150, NESTED = {X = 2 * 3}}
end
after = error("skipped too")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tuning, _ := e.Globals.Get("TUNING")
	got := ToNative(tuning)
	want := map[string]interface{}{
		"WILSON_HEALTH": int64(150),
		"NESTED":        map[string]interface{}{"X": int64(6)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TUNING mismatch (-want +got):\n%s", diff)
	}
	if got := globalString(e, "before"); got != "<unbound>" {
		t.Errorf("before = %s, want unbound", got)
	}
}

func TestGateDoesNotApplyInsideFunctions(t *testing.T) {
	e, _, err := runWithPolicy(t, &Policy{GateUntil: "TUNING"}, `
TUNING = (function()
  local base = 10
  return {VALUE = base * 2}
end)()`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tuning, _ := e.Globals.Get("TUNING")
	if diff := cmp.Diff(map[string]interface{}{"VALUE": int64(20)}, ToNative(tuning)); diff != "" {
		t.Errorf("TUNING mismatch (-want +got):\n%s", diff)
	}
}

func TestStopAt(t *testing.T) {
	e, _, err := runWithPolicy(t, &Policy{StopAt: "CONSTRUCTION_PLANS"}, `
a = 1
CONSTRUCTION_PLANS = {}
b = 2`)
	if !errors.Is(err, ErrExtractionComplete) {
		t.Fatalf("expected extraction complete, got %v", err)
	}
	var ec *ExtractionComplete
	if !errors.As(err, &ec) || ec.Line != 3 || ec.Target != "CONSTRUCTION_PLANS" {
		t.Errorf("unexpected completion: %+v", ec)
	}
	if globalString(e, "a") != "1" || globalString(e, "b") != "<unbound>" {
		t.Errorf("a = %s, b = %s", globalString(e, "a"), globalString(e, "b"))
	}
}

func TestStopAtPassesThroughPcall(t *testing.T) {
	_, _, err := runWithPolicy(t, &Policy{StopAt: "DONE"}, `
pcall(function() DONE = 1 end)
after = 1`)
	if !errors.Is(err, ErrExtractionComplete) {
		t.Fatalf("expected extraction complete, got %v", err)
	}
}

func TestSkipAssign(t *testing.T) {
	e, _, err := runWithPolicy(t, &Policy{SkipAssign: toSet([]string{"PROTOTYPER_DEFS"})}, `
PROTOTYPER_DEFS = error("skipped")
PROTOTYPER_DEFS.x = error("skipped")
kept = 1`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if globalString(e, "kept") != "1" {
		t.Error("assignment after skipped one did not run")
	}
}

func TestSkippedModulesAreNil(t *testing.T) {
	_, values, err := runWithPolicy(t, &Policy{SkipModules: []string{"widgets/"}}, `
local w = require("widgets/text")
return w`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := display(values); got != "nil" {
		t.Errorf("got %s, want nil", got)
	}
}
