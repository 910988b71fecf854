package parser

import (
	"bytes"
	"errors"

	"github.com/funvibe/luaharvest/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() {
		return ctx
	}
	if ctx.Source == nil {
		ctx.AddError(errors.New("parser: no source for " + ctx.ModulePath))
		return ctx
	}
	chunk, err := Parse(bytes.NewReader(ctx.Source), ctx.ModulePath)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	ctx.AstRoot = chunk
	return ctx
}
