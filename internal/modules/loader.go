package modules

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/funvibe/luaharvest/internal/evaluator"
	"github.com/funvibe/luaharvest/internal/parser"
	"github.com/funvibe/luaharvest/internal/pipeline"
)

// Loader resolves require paths against a Source. Each module is read and
// evaluated at most once per loader; its first return value (nil when it
// returns nothing) is cached and handed to every later require. Modules
// run in the requiring session's global scope.
type Loader struct {
	Source Source
	Logger *slog.Logger

	loaded     map[string]evaluator.Object // Cache of evaluated modules by path
	processing map[string]bool             // Cycle detection during loading
	reads      int
}

func NewLoader(src Source, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{
		Source:     src,
		Logger:     logger,
		loaded:     make(map[string]evaluator.Object),
		processing: make(map[string]bool),
	}
}

// LoadModule implements evaluator.ModuleLoader.
func (l *Loader) LoadModule(e *evaluator.Evaluator, modulePath string) (evaluator.Object, error) {
	if v, ok := l.loaded[modulePath]; ok {
		return v, nil
	}
	if l.processing[modulePath] {
		l.Logger.Warn("circular require", "module", modulePath, "from", e.CurrentFile)
		return evaluator.NIL, nil
	}
	l.processing[modulePath] = true
	defer delete(l.processing, modulePath)

	l.reads++
	l.Logger.Debug("loading module", "module", modulePath)
	ctx := pipeline.NewPipelineContext(modulePath)
	ctx.Logger = l.Logger
	ctx = pipeline.New(
		&ReadProcessor{Source: l.Source},
		&parser.ParserProcessor{},
		&evaluator.EvaluatorProcessor{Evaluator: e.Fork(modulePath)},
	).Run(ctx)
	if ctx.Failed() {
		return nil, fmt.Errorf("loading module %s: %w", modulePath, ctx.Err())
	}

	var result evaluator.Object = evaluator.NIL
	if values, ok := ctx.Result.([]evaluator.Object); ok && len(values) > 0 {
		result = values[0]
	}
	l.loaded[modulePath] = result
	return result, nil
}

// Reads is the number of module files fetched from the source so far.
func (l *Loader) Reads() int { return l.reads }

// Loaded returns the paths of the cached modules, sorted.
func (l *Loader) Loaded() []string {
	out := make([]string, 0, len(l.loaded))
	for p := range l.loaded {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Preload records v as the result of modulePath without reading it.
func (l *Loader) Preload(modulePath string, v evaluator.Object) {
	l.loaded[modulePath] = v
}
