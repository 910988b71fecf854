package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/luaharvest/internal/host"
	"github.com/funvibe/luaharvest/internal/modules"
)

func scripts(files map[string]string) modules.Source {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys["scripts/"+name] = &fstest.MapFile{Data: []byte(body)}
	}
	return modules.NewFSSource(fsys, "scripts")
}

var tuningOnly = []Prerequisite{{Module: "tuning", Profile: "constants"}}

func TestScanPrefabs(t *testing.T) {
	src := scripts(map[string]string{
		"tuning.lua": `
local wilson_health = 150
function Tune()
    TUNING = {PIG_HEALTH = 250, WILSON_HEALTH = wilson_health}
end`,
		"prefabs/pig.lua": `
local function fn()
    local inst = CreateEntity()
    inst.entity:AddTransform()
    MakeCharacterPhysics(inst, 50, .5)
    inst:AddTag("pig")
    inst:AddTag("character")
    inst.maxhealth = TUNING.PIG_HEALTH
    if not TheWorld.ismastersim then
        return inst
    end
    inst:AddComponent("health")
    return inst
end
return Prefab("pig", fn)`,
		"prefabs/broken.lua":         "local x = nil\nx.y()",
		"prefabs/syntax.lua":         "local = 1",
		"prefabs/loot.lua":           `SetSharedLootTable("pig", {{"meat", 1.0}, {"pigskin", 0.5}})`,
		"prefabs/lavae.lua":          `return Prefab("lavae", function() return CreateEntity() end)`,
		"prefabs/lavaarena_boss.lua": `error("never evaluated")`,
		"prefabs/quagmire_food.lua":  `error("never evaluated")`,
		"prefabs/wilson.lua":         `error("never evaluated")`,
	})

	res, err := ScanPrefabs(context.Background(), src, Options{Prerequisites: tuningOnly})
	if err != nil {
		t.Fatalf("ScanPrefabs: %v", err)
	}
	if res.RunID == "" {
		t.Error("missing run id")
	}

	want := []*host.PrefabRecord{
		{Name: "lavae", Source: "prefabs/lavae"},
		{Name: "pig", Tags: []string{"character", "pig"}, Source: "prefabs/pig"},
	}
	if diff := cmp.Diff(want, res.Prefabs); diff != "" {
		t.Errorf("prefabs mismatch (-want +got):\n%s", diff)
	}
	if res.Files != 5 {
		t.Errorf("Files = %d, want 5", res.Files)
	}
	if diff := cmp.Diff([]string{"lavaarena_boss", "quagmire_food", "wilson"}, res.Skipped); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}

	wantFailures := []FileError{
		{File: "prefabs/broken", Kind: "TypeMismatch", Line: 2, Message: "attempt to call a nil value (x.y)"},
		{File: "prefabs/syntax", Kind: "SyntaxError"},
	}
	if diff := cmp.Diff(wantFailures, res.Failures, cmpFailure); diff != "" {
		t.Errorf("failures mismatch (-want +got):\n%s", diff)
	}

	wantLoot := map[string]interface{}{
		"pig": []interface{}{
			[]interface{}{"meat", int64(1)},
			[]interface{}{"pigskin", 0.5},
		},
	}
	if diff := cmp.Diff(wantLoot, res.LootTables); diff != "" {
		t.Errorf("loot tables mismatch (-want +got):\n%s", diff)
	}
}

// cmpFailure compares the kind and file of every failure, and the line and
// message only when the expectation sets them.
var cmpFailure = cmp.Comparer(func(a, b FileError) bool {
	if a.File != b.File || a.Kind != b.Kind {
		return false
	}
	if a.Line != 0 && b.Line != 0 && a.Line != b.Line {
		return false
	}
	if a.Message != "" && b.Message != "" && a.Message != b.Message {
		return false
	}
	return true
})

func TestScanPrefabsRecordsPrerequisiteFailures(t *testing.T) {
	src := scripts(map[string]string{
		"prefabs/rock.lua": `return Prefab("rock", function() return CreateEntity() end)`,
	})
	res, err := ScanPrefabs(context.Background(), src, Options{
		Prerequisites: []Prerequisite{{Module: "class", Profile: "base"}},
	})
	if err != nil {
		t.Fatalf("ScanPrefabs: %v", err)
	}
	if len(res.Failures) != 1 || res.Failures[0].File != "class" || res.Failures[0].Kind != "ModuleError" {
		t.Errorf("unexpected failures: %+v", res.Failures)
	}
	if len(res.Prefabs) != 1 {
		t.Errorf("scan must continue after a failed prerequisite: %+v", res.Prefabs)
	}
}

func TestScanPrefabsCancelled(t *testing.T) {
	src := scripts(map[string]string{"prefabs/rock.lua": ""})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ScanPrefabs(ctx, src, Options{Prerequisites: []Prerequisite{}}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestScanRecipes(t *testing.T) {
	src := scripts(map[string]string{
		"recipes_filter.lua": `return {}`,
		"recipes.lua": `
require("recipes_filter")
local unrelated = SomethingElse(error("not evaluated"))
Recipe2("axe", {Ingredient("twigs", 1), Ingredient("flint", 1)}, TECH.NONE)
PROTOTYPER_DEFS = {broken = error("not evaluated")}
Recipe2("torch", {Ingredient("cutgrass", 2), Ingredient("twigs", 2)}, TECH.NONE, {numtogive = 1})
CONSTRUCTION_PLANS = {}
Recipe2("after_the_stop", {}, TECH.NONE)`,
	})
	res, err := ScanRecipes(context.Background(), src, Options{})
	if err != nil {
		t.Fatalf("ScanRecipes: %v", err)
	}
	if !res.Completed {
		t.Error("expected the scan to end at CONSTRUCTION_PLANS")
	}
	var names []string
	for _, r := range res.Recipes {
		names = append(names, r.Name)
	}
	if diff := cmp.Diff([]string{"axe", "torch"}, names); diff != "" {
		t.Errorf("recipes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]interface{}{"numtogive": int64(1)}, res.Recipes[1].Config); diff != "" {
		t.Errorf("torch config mismatch (-want +got):\n%s", diff)
	}
}

func TestScanRecipesMissingFile(t *testing.T) {
	_, err := ScanRecipes(context.Background(), scripts(nil), Options{})
	if !errors.Is(err, modules.ErrModuleNotFound) {
		t.Errorf("expected ErrModuleNotFound, got %v", err)
	}
}

func TestScanTuning(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   map[string]interface{}
	}{
		{
			name: "top-level assignment",
			source: `
local seg_time = 30
DoSideEffect()
TUNING = {SEG_TIME = 30, TOTAL_DAY_TIME = 30 * 16, NESTED = {A = 1}}
DoMore()`,
			want: map[string]interface{}{
				"SEG_TIME":       int64(30),
				"TOTAL_DAY_TIME": int64(480),
				"NESTED":         map[string]interface{}{"A": int64(1)},
			},
		},
		{
			name: "built by Tune",
			source: `
local seg_time = 30
function Tune(overrides)
    TUNING = {SEG_TIME = seg_time, TOTAL = seg_time * 2, RATE = 1 / 3}
end`,
			want: map[string]interface{}{
				"SEG_TIME": int64(30),
				"TOTAL":    int64(60),
				"RATE":     1.0 / 3,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ScanTuning(context.Background(), scripts(map[string]string{"tuning.lua": tt.source}), Options{})
			if err != nil {
				t.Fatalf("ScanTuning: %v", err)
			}
			if diff := cmp.Diff(tt.want, res.Tuning); diff != "" {
				t.Errorf("tuning mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanTuningWithoutTable(t *testing.T) {
	_, err := ScanTuning(context.Background(), scripts(map[string]string{"tuning.lua": "x = 1"}), Options{})
	if err == nil || !strings.Contains(err.Error(), "TUNING is nil") {
		t.Errorf("expected a missing TUNING error, got %v", err)
	}
}

func TestSkipPrefab(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want bool
	}{
		{"pig", Options{}, false},
		{"wilson", Options{}, true},
		{"quagmire_altar", Options{}, true},
		{"lavaarena_beetletaur", Options{}, true},
		{"lavae", Options{}, false},
		{"lavae_egg", Options{}, false},
		{"wilson", Options{IgnorePrefabs: []string{}}, false},
		{"custom", Options{IgnorePrefabs: []string{"custom"}}, true},
		{"quagmire_altar", Options{SkipPrefixes: []string{}}, false},
	}
	for _, tt := range tests {
		if got := tt.opts.skipPrefab(tt.name); got != tt.want {
			t.Errorf("skipPrefab(%q) with %+v = %v, want %v", tt.name, tt.opts, got, tt.want)
		}
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	src := scripts(map[string]string{"a.lua": `SHARED = (SHARED or 0) + 1`})
	for i := 0; i < 2; i++ {
		s, err := NewSession(src, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.RunFile("a", "base"); err != nil {
			t.Fatal(err)
		}
		v, _ := s.Global("SHARED")
		if v.Inspect() != "1" {
			t.Errorf("session %d saw SHARED = %s", i, v.Inspect())
		}
	}
}

func TestRunFileUnknownProfile(t *testing.T) {
	s, err := NewSession(scripts(nil), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.RunFile("a", "nope"); err == nil {
		t.Error("expected an unknown profile error")
	}
}
