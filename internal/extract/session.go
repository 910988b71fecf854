// Package extract runs the extraction tasks: each task owns one
// interpreter session, evaluates a fixed set of scripts under their
// profiles and returns the data those scripts registered.
package extract

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/funvibe/luaharvest/internal/config"
	"github.com/funvibe/luaharvest/internal/evaluator"
	"github.com/funvibe/luaharvest/internal/host"
	"github.com/funvibe/luaharvest/internal/modules"
	"github.com/funvibe/luaharvest/internal/parser"
	"github.com/funvibe/luaharvest/internal/pipeline"
)

// Session is one interpreter instance: an evaluator, its module loader and
// the registry its host bindings write to. Sessions share nothing.
type Session struct {
	RunID     string
	Evaluator *evaluator.Evaluator
	Loader    *modules.Loader
	Registry  *host.Registry

	profiles *config.Profiles
	logger   *slog.Logger
}

// NewSession prepares a session over src with the game runtime installed.
func NewSession(src modules.Source, opts Options) (*Session, error) {
	profiles := opts.Profiles
	if profiles == nil {
		var err error
		if profiles, err = config.DefaultProfiles(); err != nil {
			return nil, err
		}
	}
	runID := uuid.NewString()
	logger := opts.logger().With("run", runID)

	e := evaluator.New()
	e.Logger = logger
	if opts.Out != nil {
		e.Out = opts.Out
	}
	loader := modules.NewLoader(src, logger)
	e.Loader = loader
	reg := host.NewRegistry()
	host.Install(e, reg)

	return &Session{
		RunID:     runID,
		Evaluator: e,
		Loader:    loader,
		Registry:  reg,
		profiles:  profiles,
		logger:    logger,
	}, nil
}

// RunFile evaluates one script under the named profile. The script's first
// return value is cached in the loader, so later requires of the same path
// reuse it. Reaching the profile's stop target is not a failure.
func (s *Session) RunFile(modulePath, profile string) (*pipeline.PipelineContext, error) {
	p, err := s.profiles.Get(profile)
	if err != nil {
		return nil, err
	}
	s.Evaluator.Policy = evaluator.NewPolicy(p)

	ctx := pipeline.NewPipelineContext(modulePath)
	ctx.Logger = s.logger
	ctx = pipeline.New(
		&modules.ReadProcessor{Source: s.Loader.Source},
		&parser.ParserProcessor{},
		&evaluator.EvaluatorProcessor{Evaluator: s.Evaluator},
	).Run(ctx)
	if ctx.Failed() {
		return ctx, fmt.Errorf("%s: %w", modulePath, ctx.Err())
	}
	var result evaluator.Object = evaluator.NIL
	if values, ok := ctx.Result.([]evaluator.Object); ok && len(values) > 0 {
		result = values[0]
	}
	s.Loader.Preload(modulePath, result)
	return ctx, nil
}

// Global returns a global binding of the session.
func (s *Session) Global(name string) (evaluator.Object, bool) {
	return s.Evaluator.Globals.Get(name)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
