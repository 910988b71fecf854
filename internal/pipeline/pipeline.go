package pipeline

import "fmt"

// Processor is one stage of per-file processing: reading the script,
// parsing it, evaluating it.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc func(ctx *PipelineContext) *PipelineContext

func (f ProcessorFunc) Process(ctx *PipelineContext) *PipelineContext { return f(ctx) }

// Pipeline carries one script file through its stages in order.
type Pipeline struct {
	stages []Processor
}

func New(stages ...Processor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run hands ctx to every stage. A stage that finds nothing to consume, such
// as the evaluator after a syntax error, passes ctx through untouched, so
// one failing file still reports the diagnostics of every stage.
func (p *Pipeline) Run(ctx *PipelineContext) *PipelineContext {
	for i, stage := range p.stages {
		before := len(ctx.Errors)
		ctx = stage.Process(ctx)
		if added := len(ctx.Errors) - before; added > 0 {
			ctx.Logger.Debug("stage reported errors",
				"module", ctx.ModulePath,
				"stage", stageName(i, stage),
				"errors", added)
		}
	}
	return ctx
}

func stageName(i int, stage Processor) string {
	if _, ok := stage.(ProcessorFunc); ok {
		return fmt.Sprintf("#%d", i+1)
	}
	return fmt.Sprintf("%T", stage)
}
