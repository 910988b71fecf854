package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/funvibe/luaharvest/internal/host"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	task        TEXT NOT NULL,
	source      TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	files       INTEGER NOT NULL DEFAULT 0,
	failures    INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS prefabs (
	run_id        TEXT NOT NULL REFERENCES runs(id),
	name          TEXT NOT NULL,
	name_override TEXT,
	tags          TEXT NOT NULL,
	components    TEXT NOT NULL,
	source        TEXT NOT NULL,
	PRIMARY KEY (run_id, name)
);
CREATE TABLE IF NOT EXISTS recipes (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	name        TEXT NOT NULL,
	tech        TEXT NOT NULL,
	ingredients TEXT NOT NULL,
	config      TEXT,
	PRIMARY KEY (run_id, name)
);
CREATE TABLE IF NOT EXISTS constants (
	run_id TEXT NOT NULL REFERENCES runs(id),
	path   TEXT NOT NULL,
	value  TEXT NOT NULL,
	PRIMARY KEY (run_id, path)
);
`

// Run describes one extraction task execution.
type Run struct {
	ID        string
	Task      string
	Source    string
	StartedAt time.Time
	Files     int
	Failures  int
}

// DB is the result database.
type DB struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema in %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error { return d.db.Close() }

func (d *DB) SaveRun(ctx context.Context, r Run) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO runs (id, task, source, started_at, files, failures) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Task, r.Source, r.StartedAt.UTC().Format(time.RFC3339), r.Files, r.Failures)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", r.ID, err)
	}
	return nil
}

// Runs returns every recorded run of task, newest first.
func (d *DB) Runs(ctx context.Context, task string) ([]Run, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, task, source, started_at, files, failures FROM runs WHERE task = ? ORDER BY started_at DESC, id`, task)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &r.Task, &r.Source, &started, &r.Files, &r.Failures); err != nil {
			return nil, err
		}
		if r.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("run %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) SavePrefabs(ctx context.Context, runID string, prefabs []*host.PrefabRecord) error {
	return d.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO prefabs (run_id, name, name_override, tags, components, source) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, p := range prefabs {
			var override interface{}
			if p.NameOverride != "" {
				override = p.NameOverride
			}
			_, err := stmt.ExecContext(ctx, runID, p.Name, override,
				strings.Join(p.Tags, ","), strings.Join(p.Components, ","), p.Source)
			if err != nil {
				return fmt.Errorf("saving prefab %s: %w", p.Name, err)
			}
		}
		return nil
	})
}

// NameOverrides reads back the name overrides saved for a run.
func (d *DB) NameOverrides(ctx context.Context, runID string) (map[string]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT name, name_override FROM prefabs WHERE run_id = ? AND name_override IS NOT NULL`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var name, override string
		if err := rows.Scan(&name, &override); err != nil {
			return nil, err
		}
		out[name] = override
	}
	return out, rows.Err()
}

func (d *DB) SaveRecipes(ctx context.Context, runID string, recipes []*host.Recipe) error {
	return d.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO recipes (run_id, name, tech, ingredients, config) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range recipes {
			ingredients, err := json.Marshal(r.Ingredients)
			if err != nil {
				return fmt.Errorf("recipe %s: %w", r.Name, err)
			}
			var config interface{}
			if r.Config != nil {
				data, err := json.Marshal(r.Config)
				if err != nil {
					return fmt.Errorf("recipe %s: %w", r.Name, err)
				}
				config = string(data)
			}
			if _, err := stmt.ExecContext(ctx, runID, r.Name, r.Tech, string(ingredients), config); err != nil {
				return fmt.Errorf("saving recipe %s: %w", r.Name, err)
			}
		}
		return nil
	})
}

// SaveConstants flattens a nested constant table into dotted paths
// ("ARMOR_FOOTBALLHAT.ABSORPTION") with JSON-encoded leaf values.
func (d *DB) SaveConstants(ctx context.Context, runID string, constants map[string]interface{}) error {
	flat := make(map[string]interface{})
	flatten("", constants, flat)
	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return d.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO constants (run_id, path, value) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, p := range paths {
			data, err := json.Marshal(flat[p])
			if err != nil {
				return fmt.Errorf("constant %s: %w", p, err)
			}
			if _, err := stmt.ExecContext(ctx, runID, p, string(data)); err != nil {
				return fmt.Errorf("saving constant %s: %w", p, err)
			}
		}
		return nil
	})
}

// Constant reads one saved constant, decoded from JSON.
func (d *DB) Constant(ctx context.Context, runID, path string) (interface{}, error) {
	var data string
	err := d.db.QueryRowContext(ctx, `SELECT value FROM constants WHERE run_id = ? AND path = ?`, runID, path).Scan(&data)
	if err != nil {
		return nil, err
	}
	var v interface{}
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func flatten(prefix string, v interface{}, out map[string]interface{}) {
	m, ok := v.(map[string]interface{})
	if !ok || len(m) == 0 {
		if prefix != "" {
			out[prefix] = v
		}
		return
	}
	for k, child := range m {
		p := k
		if prefix != "" {
			p = prefix + "." + k
		}
		flatten(p, child, out)
	}
}

func (d *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
