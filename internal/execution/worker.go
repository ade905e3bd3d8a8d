package execution

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"iltransform/internal/diag"
	"iltransform/internal/domain"
	"iltransform/internal/ui"
)

// Pool analyzes descriptors in parallel with a bounded number of workers
type Pool struct {
	runner   *Runner
	workers  int
	progress *ui.ProgressBar
	log      diag.Logger
}

// NewPool creates a new Pool. A worker count below one runs sequentially.
func NewPool(runner *Runner, workers int, log diag.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{runner: runner, workers: workers, log: log}
}

// SetProgress sets the progress bar for the pool
func (wp *Pool) SetProgress(progress *ui.ProgressBar) {
	wp.progress = progress
}

// Analyze runs every descriptor through the runner. The first descriptor that
// cannot be parsed cancels the remaining work and is returned. Projects come
// back sorted by descriptor path whatever order the workers finished in.
func (wp *Pool) Analyze(ctx context.Context, descriptors []string) ([]*domain.Project, time.Duration, error) {
	startTime := time.Now()
	if len(descriptors) == 0 {
		return nil, 0, nil
	}

	projects := make([]*domain.Project, len(descriptors))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.workers)

	var mu sync.Mutex
	var withEntry, without int
	for i, descriptor := range descriptors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := wp.runner.Run(descriptor)
			if err != nil {
				return err
			}
			projects[i] = p

			mu.Lock()
			defer mu.Unlock()
			if p.Source.HasEntryPoint() {
				withEntry++
			} else {
				without++
			}
			if wp.progress != nil {
				wp.progress.Update(withEntry, without)
			}
			return nil
		})
	}

	err := g.Wait()
	if wp.progress != nil {
		wp.progress.Finish()
	}
	if err != nil {
		return nil, time.Since(startTime), err
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].AbsolutePath < projects[j].AbsolutePath
	})
	wp.log.Debug("analysis finished",
		diag.F("projects", len(projects)), diag.F("entry_points", withEntry), diag.F("workers", wp.workers))
	return projects, time.Since(startTime), nil
}
