package pipeline

import (
	"errors"
	"io"
	"log/slog"

	"github.com/funvibe/luaharvest/internal/ast"
)

// PipelineContext carries one script file through the stages.
type PipelineContext struct {
	// ModulePath names the script, e.g. "prefabs/pig".
	ModulePath string
	Source     []byte
	AstRoot    *ast.Chunk

	// Result holds what the evaluation stage produced; its concrete type
	// belongs to that stage.
	Result interface{}
	// Completed is set when evaluation ended early at its stop target.
	Completed bool

	Errors []error
	Logger *slog.Logger
}

func NewPipelineContext(modulePath string) *PipelineContext {
	return &PipelineContext{
		ModulePath: modulePath,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// AddError records a diagnostic for the file.
func (ctx *PipelineContext) AddError(err error) {
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
	}
}

// Failed reports whether any stage recorded an error.
func (ctx *PipelineContext) Failed() bool { return len(ctx.Errors) > 0 }

// Err joins the recorded diagnostics, or returns nil.
func (ctx *PipelineContext) Err() error { return errors.Join(ctx.Errors...) }
