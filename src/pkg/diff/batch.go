package diff

import (
	"context"
	"sync"

	"github.com/gh-nvat/gitops-argodiff/src/pkg/models"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/trace"
	"golang.org/x/sync/errgroup"
)

func (d *Differ) concurrency() int {
	if d.opts.Concurrency < 1 {
		return 1
	}
	return d.opts.Concurrency
}

// DiffAll runs Diff for every application with at most Concurrency running at once and
// returns one outcome per application, in completion order. A failing application never
// cancels the others.
func (d *Differ) DiffAll(ctx context.Context, apps []models.Application, revision string) []models.DiffOutcome {
	ctx, span := trace.StartSpan(ctx, "DiffAll")
	defer span.End()

	logger.WithField("apps", len(apps)).WithField("concurrency", d.concurrency()).Info("DiffAll: starting...")

	var (
		mu       sync.Mutex
		outcomes = make([]models.DiffOutcome, 0, len(apps))
	)

	// plain Group: no derived context, tasks never return errors
	var g errgroup.Group
	g.SetLimit(d.concurrency())
	for _, app := range apps {
		g.Go(func() error {
			outcome := d.Diff(ctx, app, revision)
			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	logger.WithField("outcomes", len(outcomes)).Info("DiffAll: done.")
	return outcomes
}
