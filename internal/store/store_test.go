package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/luaharvest/internal/host"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "harvest.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRuns(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	older := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	runs := []Run{
		{ID: "r1", Task: "prefabs", Source: "/games/dst", StartedAt: older, Files: 10, Failures: 2},
		{ID: "r2", Task: "prefabs", Source: "/games/dst", StartedAt: newer, Files: 11},
		{ID: "r3", Task: "tuning", Source: "/games/dst", StartedAt: newer, Files: 1},
	}
	for _, r := range runs {
		if err := db.SaveRun(ctx, r); err != nil {
			t.Fatalf("SaveRun(%s): %v", r.ID, err)
		}
	}
	got, err := db.Runs(ctx, "prefabs")
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if diff := cmp.Diff([]Run{runs[1], runs[0]}, got); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
	if err := db.SaveRun(ctx, runs[0]); err == nil {
		t.Error("expected a duplicate run id to fail")
	}
}

func TestPrefabsAndOverrides(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	if err := db.SaveRun(ctx, Run{ID: "r1", Task: "prefabs", StartedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	prefabs := []*host.PrefabRecord{
		{Name: "pigman", NameOverride: "pigman_royal", Tags: []string{"character", "pig"}, Source: "prefabs/pigman"},
		{Name: "rock", Components: []string{"workable"}, Source: "prefabs/rocks"},
	}
	if err := db.SavePrefabs(ctx, "r1", prefabs); err != nil {
		t.Fatalf("SavePrefabs: %v", err)
	}
	overrides, err := db.NameOverrides(ctx, "r1")
	if err != nil {
		t.Fatalf("NameOverrides: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"pigman": "pigman_royal"}, overrides); diff != "" {
		t.Errorf("overrides mismatch (-want +got):\n%s", diff)
	}

	var tags string
	if err := db.db.QueryRowContext(ctx, `SELECT tags FROM prefabs WHERE run_id = ? AND name = ?`, "r1", "pigman").Scan(&tags); err != nil {
		t.Fatal(err)
	}
	if tags != "character,pig" {
		t.Errorf("tags = %q", tags)
	}
}

func TestRecipes(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	if err := db.SaveRun(ctx, Run{ID: "r1", Task: "recipes", StartedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	recipes := []*host.Recipe{
		{Name: "axe", Tech: "TECH.NONE", Ingredients: []host.Ingredient{{Prefab: "twigs", Amount: int64(1)}}},
		{Name: "torch", Tech: "TECH.NONE", Ingredients: []host.Ingredient{}, Config: map[string]interface{}{"numtogive": int64(2)}},
	}
	if err := db.SaveRecipes(ctx, "r1", recipes); err != nil {
		t.Fatalf("SaveRecipes: %v", err)
	}

	var ingredients string
	var config sql.NullString
	if err := db.db.QueryRowContext(ctx, `SELECT ingredients, config FROM recipes WHERE name = 'axe'`).Scan(&ingredients, &config); err != nil {
		t.Fatal(err)
	}
	if ingredients != `[{"prefab":"twigs","amount":1}]` || config.Valid {
		t.Errorf("axe row = %q, %v", ingredients, config)
	}
	if err := db.db.QueryRowContext(ctx, `SELECT config FROM recipes WHERE name = 'torch'`).Scan(&config); err != nil {
		t.Fatal(err)
	}
	if config.String != `{"numtogive":2}` {
		t.Errorf("torch config = %q", config.String)
	}
}

func TestConstants(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	if err := db.SaveRun(ctx, Run{ID: "r1", Task: "tuning", StartedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	constants := map[string]interface{}{
		"WILSON_HEALTH": int64(150),
		"ARMOR":         map[string]interface{}{"ABSORPTION": 0.8, "NAME": "football"},
		"EMPTY":         map[string]interface{}{},
		"LIST":          []interface{}{int64(1), int64(2)},
	}
	if err := db.SaveConstants(ctx, "r1", constants); err != nil {
		t.Fatalf("SaveConstants: %v", err)
	}

	tests := []struct {
		path string
		want interface{}
	}{
		{"WILSON_HEALTH", 150.0},
		{"ARMOR.ABSORPTION", 0.8},
		{"ARMOR.NAME", "football"},
		{"EMPTY", map[string]interface{}{}},
		{"LIST", []interface{}{1.0, 2.0}},
	}
	for _, tt := range tests {
		got, err := db.Constant(ctx, "r1", tt.path)
		if err != nil {
			t.Errorf("Constant(%s): %v", tt.path, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Constant(%s) mismatch (-want +got):\n%s", tt.path, diff)
		}
	}
	if _, err := db.Constant(ctx, "r1", "ARMOR"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("intermediate tables are not stored, got %v", err)
	}
}

func TestWriteDocument(t *testing.T) {
	doc := map[string]interface{}{"name": "<pig>", "count": 2}
	tests := []struct {
		format string
		want   string
	}{
		{"json", "{\n    \"count\": 2,\n    \"name\": \"<pig>\"\n}\n"},
		{"", "{\n    \"count\": 2,\n    \"name\": \"<pig>\"\n}\n"},
		{"yaml", "count: 2\nname: <pig>\n"},
		{"YML", "count: 2\nname: <pig>\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var b strings.Builder
			if err := WriteDocument(&b, tt.format, doc); err != nil {
				t.Fatalf("WriteDocument: %v", err)
			}
			if b.String() != tt.want {
				t.Errorf("got %q, want %q", b.String(), tt.want)
			}
		})
	}

	var b strings.Builder
	if err := WriteDocument(&b, "xml", doc); err == nil {
		t.Error("expected an unknown format error")
	}
}
