// Package forkjoin runs work over a splittable sequence on a bounded pool of
// goroutines.
//
// Run recursively halves the sequence until each piece is small enough,
// then executes one task per piece. Pieces are disjoint, so tasks that write
// through an Exclusive view need no locking; results land in index order no
// matter which task finishes first.
//
//	chunks := chunk.Split(buf, 8)
//	results := make([]*aggregate.SummaryMap, len(chunks))
//	err := forkjoin.Run(ctx, forkjoin.NewZip(chunks, results), forkjoin.Options{},
//	    func(ctx context.Context, part forkjoin.Zip[chunk.Chunk, *aggregate.SummaryMap]) error {
//	        for c, out := range part.All() {
//	            m, err := aggregate.Aggregate(c.Bytes(buf), aggregate.Options{})
//	            if err != nil {
//	                return err
//	            }
//	            *out = m
//	        }
//	        return nil
//	    })
package forkjoin

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xtxerr/chunkit/internal/errors"
	"github.com/xtxerr/chunkit/internal/logging"
)

// Options configures Run.
type Options struct {
	// Workers bounds the number of tasks running at once.
	// Zero means runtime.GOMAXPROCS(0).
	Workers int

	// Grain is the largest piece handed to a single task.
	// Zero means 1: one task per element.
	Grain int

	// Name labels log entries.
	Name string
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Grain <= 0 {
		o.Grain = 1
	}
	if o.Name == "" {
		o.Name = "forkjoin"
	}
	return o
}

// Plan splits src in halves until every piece holds at most grain elements.
// Pieces are returned in index order and are never empty.
func Plan[S Splittable[S]](src S, grain int) []S {
	if grain < 1 {
		grain = 1
	}

	var parts []S
	var split func(s S)
	split = func(s S) {
		n := s.Len()
		if n == 0 {
			return
		}
		if n <= grain {
			parts = append(parts, s)
			return
		}
		left, right := s.SplitAt(n / 2)
		split(left)
		split(right)
	}
	split(src)

	return parts
}

// Run executes task once per piece of src and waits for all of them.
//
// The first failing task fails the run; pieces that have not started by
// then are skipped. A task that panics is reported as errors.ErrWorker.
// Run returns only after every started task has returned, so src's
// backing storage may be released as soon as Run does.
func Run[S Splittable[S]](ctx context.Context, src S, opts Options, task func(ctx context.Context, part S) error) error {
	opts = opts.withDefaults()
	log := logging.Component("forkjoin").With("name", opts.Name)

	parts := Plan(src, opts.Grain)
	if len(parts) == 0 {
		return nil
	}

	log.Debug("dispatching",
		"elements", src.Len(),
		"tasks", len(parts),
		"workers", opts.Workers,
		"grain", opts.Grain)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	lo := 0
	for i, part := range parts {
		hi := lo + part.Len()
		start := lo
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			began := time.Now()
			if err := runTask(gctx, i, start, hi, part, task); err != nil {
				return err
			}
			log.Debug("task done", "task", i, "first", start, "last", hi-1, "elapsed", time.Since(began))
			return nil
		})
		lo = hi
	}

	return g.Wait()
}

func runTask[S any](ctx context.Context, index, lo, hi int, part S, task func(context.Context, S) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: task %d (elements [%d,%d)): panic: %v", errors.ErrWorker, index, lo, hi, r)
		}
	}()

	if err := task(ctx, part); err != nil {
		return fmt.Errorf("%w: task %d (elements [%d,%d)): %w", errors.ErrWorker, index, lo, hi, err)
	}
	return nil
}
