package analyzer

import (
	"github.com/funvibe/tycheck/internal/pipeline"
)

// TypeCheckProcessor checks the forest loaded by an earlier stage.
type TypeCheckProcessor struct {
	// Builtins defaults to DefaultBuiltins().
	Builtins ModuleTypingContext
}

func (p *TypeCheckProcessor) Name() string { return "typecheck" }

func (p *TypeCheckProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Forest == nil {
		return ctx
	}
	builtins := p.Builtins
	if builtins == nil {
		builtins = DefaultBuiltins()
	}
	checked, typingContext := TypeCheckSources(ctx.Forest, builtins)
	ctx.Checked = checked
	ctx.TypingContext = typingContext
	if len(checked.Diagnostics) > 0 {
		ctx.Errors = append(ctx.Errors, checked.Diagnostics...)
	}
	return ctx
}
