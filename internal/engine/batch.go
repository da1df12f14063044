package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/followcam/internal/timeline"
	"github.com/ivlev/followcam/internal/viewport"
)

// Job is one timeline to precompute in a batch.
type Job struct {
	Name       string
	Layout     *timeline.Layout
	Canvas     viewport.Canvas
	Recordings RecordingLookup
}

// CalculateAll precomputes paths for several timelines concurrently, keyed
// by job name. Each job owns its own simulation state, so the per-timeline
// determinism guarantee carries over unchanged; only whole timelines run in
// parallel, never frames within one.
func (e *Engine) CalculateAll(ctx context.Context, jobs []Job, parallelism int) (map[string][]PathFrame, error) {
	if parallelism <= 0 {
		parallelism = 1
	}

	results := make([]([]PathFrame), len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i := range jobs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			job := jobs[i]
			if job.Layout == nil {
				return fmt.Errorf("job %q: nil layout", job.Name)
			}
			results[i] = e.CalculateCameraPath(job.Layout, job.Canvas, job.Recordings)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]PathFrame, len(jobs))
	for i, job := range jobs {
		out[job.Name] = results[i]
	}
	return out, nil
}
