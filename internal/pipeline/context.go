package pipeline

import (
	"time"

	"github.com/funvibe/tycheck/internal/ast"
	"github.com/funvibe/tycheck/internal/config"
	"github.com/funvibe/tycheck/internal/diagnostics"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// StageTiming records how long a stage took.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// PipelineContext carries state between stages.
type PipelineContext struct {
	Config *config.Config

	// Forest is the unchecked input, filled by the loader stage.
	Forest ast.Forest

	// Checked and TypingContext hold *analyzer.CheckedForest and
	// *analyzer.GlobalTypingContext (interface{} to avoid an import cycle).
	Checked       interface{}
	TypingContext interface{}

	// Errors are problems in the checked program.
	Errors []*diagnostics.DiagnosticError

	// Failure is set when a stage could not run at all (I/O, malformed input).
	Failure error

	Timings []StageTiming
}

func NewPipelineContext(cfg *config.Config) *PipelineContext {
	return &PipelineContext{Config: cfg}
}

// Failed reports whether a stage aborted the run.
func (ctx *PipelineContext) Failed() bool {
	return ctx.Failure != nil
}
