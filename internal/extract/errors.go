package extract

import (
	"errors"

	"github.com/funvibe/luaharvest/internal/evaluator"
	"github.com/funvibe/luaharvest/internal/modules"
	"github.com/funvibe/luaharvest/internal/parser"
)

// FileError records why one script was abandoned. The scan moves on to the
// next file.
type FileError struct {
	File    string `json:"file" yaml:"file"`
	Kind    string `json:"kind" yaml:"kind"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
	Message string `json:"message" yaml:"message"`
}

func newFileError(file string, err error) FileError {
	fe := FileError{File: file, Kind: "Error", Message: err.Error()}
	var rerr *evaluator.Error
	var serr *parser.SyntaxError
	switch {
	case errors.As(err, &rerr):
		fe.Kind = string(rerr.Kind)
		fe.Line = rerr.Line
		fe.Message = rerr.Message
		if rerr.Source != "" && rerr.Source != file {
			fe.Message = rerr.Source + ": " + rerr.Message
		}
	case errors.As(err, &serr):
		fe.Kind = "SyntaxError"
		fe.Line = serr.Line
		fe.Message = serr.Message
	case errors.Is(err, modules.ErrModuleNotFound):
		fe.Kind = string(evaluator.ModuleError)
	}
	return fe
}
