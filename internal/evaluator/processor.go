package evaluator

import (
	"errors"

	"github.com/funvibe/luaharvest/internal/pipeline"
)

// EvaluatorProcessor runs the parsed chunk in the given evaluator and
// stores its return values ([]Object) as the context result.
type EvaluatorProcessor struct {
	Evaluator *Evaluator
}

func (ep *EvaluatorProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || ctx.Failed() {
		return ctx
	}
	values, err := ep.Evaluator.Run(ctx.AstRoot)
	switch {
	case errors.Is(err, ErrExtractionComplete):
		ctx.Completed = true
		ctx.Logger.Debug("extraction complete", "file", ctx.ModulePath, "reason", err)
	case err != nil:
		ctx.AddError(err)
		return ctx
	}
	ctx.Result = values
	return ctx
}
