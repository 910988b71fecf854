package main

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/funvibe/luaharvest/internal/extract"
	"github.com/funvibe/luaharvest/internal/modules"
	"github.com/funvibe/luaharvest/internal/store"
)

const taskAll = "all"

// task runs one extraction, saves it to db when db is set and returns the
// document to print.
type task func(ctx context.Context, src modules.Source, opts extract.Options, db *store.DB, source string) (interface{}, error)

var tasks = map[string]task{
	"prefabs": prefabTask,
	"recipes": recipeTask,
	"tuning":  tuningTask,
}

func taskNames() []string {
	names := make([]string, 0, len(tasks))
	for n := range tasks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// runTasks runs the configured task. "all" runs every task concurrently,
// each with its own session, and keys the documents by task name.
func runTasks(ctx context.Context, cfg *cliConfig, src modules.Source, opts extract.Options, db *store.DB) (interface{}, error) {
	if cfg.task != taskAll {
		return tasks[cfg.task](ctx, src, opts, db, cfg.scripts)
	}

	var mu sync.Mutex
	out := make(map[string]interface{}, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range taskNames() {
		name, fn := name, tasks[name]
		g.Go(func() error {
			doc, err := fn(gctx, src, opts, db, cfg.scripts)
			if err != nil {
				return err
			}
			mu.Lock()
			out[name] = doc
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func prefabTask(ctx context.Context, src modules.Source, opts extract.Options, db *store.DB, source string) (interface{}, error) {
	started := time.Now()
	res, err := extract.ScanPrefabs(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	if db != nil {
		run := store.Run{ID: res.RunID, Task: "prefabs", Source: source, StartedAt: started, Files: res.Files, Failures: len(res.Failures)}
		if err := db.SaveRun(ctx, run); err != nil {
			return nil, err
		}
		if err := db.SavePrefabs(ctx, res.RunID, res.Prefabs); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func recipeTask(ctx context.Context, src modules.Source, opts extract.Options, db *store.DB, source string) (interface{}, error) {
	started := time.Now()
	res, err := extract.ScanRecipes(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	if db != nil {
		if err := db.SaveRun(ctx, store.Run{ID: res.RunID, Task: "recipes", Source: source, StartedAt: started, Files: 1}); err != nil {
			return nil, err
		}
		if err := db.SaveRecipes(ctx, res.RunID, res.Recipes); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func tuningTask(ctx context.Context, src modules.Source, opts extract.Options, db *store.DB, source string) (interface{}, error) {
	started := time.Now()
	res, err := extract.ScanTuning(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	if db != nil {
		if err := db.SaveRun(ctx, store.Run{ID: res.RunID, Task: "tuning", Source: source, StartedAt: started, Files: 1}); err != nil {
			return nil, err
		}
		if err := db.SaveConstants(ctx, res.RunID, res.Tuning); err != nil {
			return nil, err
		}
	}
	return res, nil
}
