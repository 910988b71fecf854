package extract

import (
	"context"
	"fmt"

	"github.com/funvibe/luaharvest/internal/config"
	"github.com/funvibe/luaharvest/internal/evaluator"
	"github.com/funvibe/luaharvest/internal/modules"
)

// TuningResult holds the TUNING table as plain data.
type TuningResult struct {
	RunID  string                 `json:"run_id" yaml:"run_id"`
	Tuning map[string]interface{} `json:"tuning" yaml:"tuning"`
}

// ScanTuning extracts TUNING from the tuning module. The module is first
// evaluated gated on the TUNING assignment. Game versions that build the
// table inside Tune() leave nothing for the gate to find; for those the
// module is evaluated in full with the constants profile and Tune() is
// called.
func ScanTuning(ctx context.Context, src modules.Source, opts Options) (*TuningResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := NewSession(src, opts)
	if err != nil {
		return nil, err
	}
	if _, err := s.RunFile(config.TuningModule, config.ProfileTuning); err != nil {
		return nil, fmt.Errorf("scanning tuning: %w", err)
	}
	if v, ok := s.Global(tuningGlobal); !ok || v == evaluator.NIL {
		s.logger.Debug("no top-level TUNING assignment, calling Tune()")
		if _, err := s.RunFile(config.TuningModule, config.ProfileConstants); err != nil {
			return nil, fmt.Errorf("scanning tuning: %w", err)
		}
		if err := s.ensureTuning(); err != nil {
			return nil, fmt.Errorf("scanning tuning: %w", err)
		}
	}

	v, _ := s.Global(tuningGlobal)
	tuning, ok := evaluator.ToNative(v).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("scanning tuning: TUNING is %s, not a table", evaluator.TypeName(v))
	}
	s.logger.Info("tuning scan done", "constants", len(tuning))
	return &TuningResult{RunID: s.RunID, Tuning: tuning}, nil
}
