package extract

import (
	"context"
	"fmt"

	"github.com/funvibe/luaharvest/internal/config"
	"github.com/funvibe/luaharvest/internal/evaluator"
	"github.com/funvibe/luaharvest/internal/host"
	"github.com/funvibe/luaharvest/internal/modules"
	"github.com/funvibe/luaharvest/internal/utils"
)

// PrefabResult is the outcome of a prefab scan.
type PrefabResult struct {
	RunID      string                 `json:"run_id" yaml:"run_id"`
	Prefabs    []*host.PrefabRecord   `json:"prefabs" yaml:"prefabs"`
	LootTables map[string]interface{} `json:"loot_tables,omitempty" yaml:"loot_tables,omitempty"`
	Files      int                    `json:"files" yaml:"files"`
	Skipped    []string               `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Failures   []FileError            `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// NameOverrides maps prefab names to the display name they borrow.
func (r *PrefabResult) NameOverrides() map[string]string {
	out := make(map[string]string)
	for _, p := range r.Prefabs {
		if p.NameOverride != "" {
			out[p.Name] = p.NameOverride
		}
	}
	return out
}

// ScanPrefabs evaluates the prerequisite modules, then every prefab file
// that is not skipped, in one session. A file that fails is recorded and
// the scan continues.
func ScanPrefabs(ctx context.Context, src modules.Source, opts Options) (*PrefabResult, error) {
	s, err := NewSession(src, opts)
	if err != nil {
		return nil, err
	}
	res := &PrefabResult{RunID: s.RunID}

	for _, pre := range opts.prerequisites() {
		if _, err := s.RunFile(pre.Module, pre.Profile); err != nil {
			s.logger.Warn("prerequisite failed", "file", pre.Module, "error", err)
			res.Failures = append(res.Failures, newFileError(pre.Module, err))
			continue
		}
		if pre.Module == config.TuningModule {
			if err := s.ensureTuning(); err != nil {
				s.logger.Warn("tuning setup failed", "error", err)
				res.Failures = append(res.Failures, newFileError(pre.Module, err))
			}
		}
	}

	files, err := src.List(config.PrefabsDir)
	if err != nil {
		return nil, fmt.Errorf("scanning prefabs: %w", err)
	}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := utils.ExtractModuleName(file)
		if opts.skipPrefab(name) {
			s.logger.Debug("skipping", "file", file)
			res.Skipped = append(res.Skipped, name)
			continue
		}
		res.Files++
		s.logger.Debug("visiting", "file", file)
		if _, err := s.RunFile(file, config.ProfilePrefab); err != nil {
			fe := newFileError(file, err)
			s.logger.Warn("prefab file failed", "file", file, "kind", fe.Kind, "line", fe.Line, "error", fe.Message)
			res.Failures = append(res.Failures, fe)
		}
	}

	res.Prefabs = s.Registry.Prefabs()
	if names := s.Registry.LootTableNames(); len(names) > 0 {
		res.LootTables = make(map[string]interface{}, len(names))
		for _, n := range names {
			res.LootTables[n], _ = s.Registry.LootTable(n)
		}
	}
	s.logger.Info("prefab scan done", "files", res.Files, "prefabs", len(res.Prefabs), "failures", len(res.Failures))
	return res, nil
}

// ensureTuning builds TUNING by calling Tune() when the tuning module only
// defined the function.
func (s *Session) ensureTuning() error {
	if v, ok := s.Global(tuningGlobal); ok && v != evaluator.NIL {
		return nil
	}
	tune, ok := s.Global(tuneFunc)
	if !ok {
		return nil
	}
	if _, isFn := tune.(*evaluator.Function); !isFn {
		return nil
	}
	res := s.Evaluator.Call(tune)
	if err, ok := res.(*evaluator.Error); ok {
		return fmt.Errorf("%s(): %w", tuneFunc, err)
	}
	return nil
}

const (
	tuningGlobal = "TUNING"
	tuneFunc     = "Tune"
)
