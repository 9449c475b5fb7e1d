package forest

import (
	"github.com/funvibe/tycheck/internal/pipeline"
)

// LoadProcessor fills the pipeline forest from the configured source root.
type LoadProcessor struct{}

func (p *LoadProcessor) Name() string { return "load" }

func (p *LoadProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	forest, err := LoadForest(ctx.Config)
	if err != nil {
		ctx.Failure = err
		return ctx
	}
	ctx.Forest = forest
	return ctx
}
