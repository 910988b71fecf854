package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/luaharvest/internal/store"
)

func writeScripts(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, "scripts", filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestParseArgs(t *testing.T) {
	t.Setenv("LUAHARVEST_SCRIPTS", "")
	t.Setenv("LUAHARVEST_DB", "")
	t.Setenv("LUAHARVEST_PROFILES", "")

	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{"no task", []string{"-scripts", "x"}, "expected exactly one task"},
		{"two tasks", []string{"-scripts", "x", "prefabs", "recipes"}, "expected exactly one task"},
		{"unknown task", []string{"-scripts", "x", "weapons"}, `unknown task "weapons"`},
		{"no scripts", []string{"tuning"}, "no scripts path"},
		{"bad flag", []string{"-nope", "tuning"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.args, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error = %v, want it to contain %q", err, tt.message)
			}
		})
	}
}

func TestParseArgsFromEnvironment(t *testing.T) {
	t.Setenv("LUAHARVEST_SCRIPTS", "/games/dst/data")
	t.Setenv("LUAHARVEST_DB", "harvest.db")
	t.Setenv("LUAHARVEST_PROFILES", "")
	cfg, err := parseArgs([]string{"-format", "yaml", "all"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	want := cliConfig{task: "all", scripts: "/games/dst/data", db: "harvest.db", format: "yaml"}
	if *cfg != want {
		t.Errorf("config = %+v, want %+v", *cfg, want)
	}
}

func TestRunExitCodes(t *testing.T) {
	t.Setenv("LUAHARVEST_SCRIPTS", "")
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"-h"}, &stdout, &stderr); code != 0 {
		t.Errorf("-h exit code = %d, want 0", code)
	}
	if !strings.Contains(stderr.String(), "Usage: luaharvest") {
		t.Errorf("usage not printed: %q", stderr.String())
	}
	if code := run(context.Background(), []string{"tuning"}, &stdout, &stderr); code != 2 {
		t.Errorf("usage error exit code = %d, want 2", code)
	}
	missing := filepath.Join(t.TempDir(), "absent")
	if code := run(context.Background(), []string{"-scripts", missing, "tuning"}, &stdout, &stderr); code != 1 {
		t.Errorf("missing scripts exit code = %d, want 1", code)
	}
}

func TestRunTuning(t *testing.T) {
	dir := writeScripts(t, map[string]string{
		"tuning.lua": `
DoSomething()
TUNING = {WILSON_HEALTH = 150, ARMOR = {ABSORPTION = 0.8}}`,
	})
	dbPath := filepath.Join(t.TempDir(), "harvest.db")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-scripts", dir, "-db", dbPath, "tuning"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}

	var doc struct {
		RunID  string                 `json:"run_id"`
		Tuning map[string]interface{} `json:"tuning"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, stdout.String())
	}
	want := map[string]interface{}{
		"WILSON_HEALTH": 150.0,
		"ARMOR":         map[string]interface{}{"ABSORPTION": 0.8},
	}
	if diff := cmp.Diff(want, doc.Tuning); diff != "" {
		t.Errorf("tuning mismatch (-want +got):\n%s", diff)
	}

	db, err := store.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	runs, err := db.Runs(context.Background(), "tuning")
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != doc.RunID || runs[0].Source != dir {
		t.Errorf("unexpected runs: %+v", runs)
	}
	v, err := db.Constant(context.Background(), doc.RunID, "ARMOR.ABSORPTION")
	if err != nil || v != 0.8 {
		t.Errorf("stored constant = %v, %v", v, err)
	}
}

func TestRunAll(t *testing.T) {
	dir := writeScripts(t, map[string]string{
		"tuning.lua":       `TUNING = {ROCK_WORK = 6}`,
		"recipes.lua":      `Recipe2("axe", {Ingredient("twigs", 1), Ingredient("flint", 1)}, TECH.NONE)`,
		"prefabs/rock.lua": `return Prefab("rock", function() return CreateEntity() end)`,
	})
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-scripts", dir, "-format", "json", "all"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	var keys []string
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if diff := cmp.Diff([]string{"prefabs", "recipes", "tuning"}, keys); diff != "" {
		t.Errorf("task keys mismatch (-want +got):\n%s", diff)
	}
	if !bytes.Contains(doc["prefabs"], []byte(`"name": "rock"`)) {
		t.Errorf("rock prefab missing: %s", doc["prefabs"])
	}
	if !bytes.Contains(doc["recipes"], []byte(`"name": "axe"`)) {
		t.Errorf("axe recipe missing: %s", doc["recipes"])
	}
}

func TestTaskNames(t *testing.T) {
	if diff := cmp.Diff([]string{"prefabs", "recipes", "tuning"}, taskNames()); diff != "" {
		t.Errorf("task names mismatch (-want +got):\n%s", diff)
	}
}
