package pipeline

import (
	"fmt"
	"time"
)

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Diagnostics do not stop it so later stages can still report
// theirs; a Failure does.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		if ctx.Failed() {
			break
		}
		start := time.Now()
		ctx = processor.Process(ctx)
		ctx.Timings = append(ctx.Timings, StageTiming{Stage: stageName(processor), Duration: time.Since(start)})
	}
	return ctx
}

func stageName(p Processor) string {
	if named, ok := p.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", p)
}
