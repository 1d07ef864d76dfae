package batch

import (
	"context"

	"github.com/dmorgan81/stabilitybot/internal/image"
	"github.com/dmorgan81/stabilitybot/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type Result struct {
	Model   image.Model
	Outcome image.Outcome
}

type Runner struct {
	generator image.Generator
}

func NewRunner(i *do.Injector) (*Runner, error) {
	return &Runner{generator: do.MustInvoke[image.Generator](i)}, nil
}

func New(generator image.Generator) *Runner {
	return &Runner{generator: generator}
}

// Run generates base once per model concurrently and waits for all of them.
// Results are in the order the models were given, one per entry.
func (r *Runner) Run(ctx context.Context, base image.Request, models []image.Model) []Result {
	log := log.FromContextOrDiscard(ctx).WithGroup("batch")
	log.Info("running batch", "models", models)

	results := make([]Result, len(models))
	var group errgroup.Group
	group.SetLimit(max(len(models), 1))
	for idx, model := range models {
		idx, model := idx, model
		group.Go(func() error {
			req := base
			req.Model = model
			results[idx] = Result{Model: model, Outcome: r.generator.Generate(ctx, req)}
			return nil
		})
	}
	_ = group.Wait()

	log.Info("batch complete", "succeeded", lo.CountBy(results, func(r Result) bool { return r.Outcome.OK() }))
	return results
}
