package pool

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is used when New is given a non-positive worker count.
const DefaultWorkers = 4

// ErrPanic is wrapped by the error of a unit that panicked.
var ErrPanic = errors.New("pool: unit panicked")

// Result is the outcome of one unit.
type Result struct {
	Err     error
	Name    string
	Elapsed time.Duration
}

// Pool is a bounded set of workers. Go may be called concurrently; Wait
// must be called once, after the last Go.
type Pool struct {
	ctx     context.Context
	group   *errgroup.Group
	mu      sync.Mutex
	results []Result
}

// New returns a pool running at most workers units at a time. Units receive
// ctx; cancelling it is the only way to stop siblings early.
func New(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	g := new(errgroup.Group)
	g.SetLimit(workers)
	return &Pool{ctx: ctx, group: g}
}

// Go schedules fn. It blocks while all workers are busy.
func (p *Pool) Go(name string, fn func(ctx context.Context) error) {
	p.mu.Lock()
	idx := len(p.results)
	p.results = append(p.results, Result{Name: name})
	p.mu.Unlock()

	p.group.Go(func() error {
		start := time.Now()
		err := run(p.ctx, fn)

		p.mu.Lock()
		p.results[idx].Err = err
		p.results[idx].Elapsed = time.Since(start)
		p.mu.Unlock()
		// Never report to the group: a failure must not look like a
		// reason to stop the others.
		return nil
	})
}

// Wait blocks until every unit has finished and returns their results in
// submission order.
func (p *Pool) Wait() []Result {
	_ = p.group.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Result, len(p.results))
	copy(out, p.results)
	return out
}

// Errors returns the non-nil unit errors from results, joined.
func Errors(results []Result) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Name, r.Err))
		}
	}
	return errors.Join(errs...)
}

func run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v\n%s", ErrPanic, r, debug.Stack())
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
