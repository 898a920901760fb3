package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/minis3/pkg/logger"
)

const (
	defaultTimeout = 5 * time.Second

	// StatusHealthy indicates all checks passed.
	StatusHealthy = "healthy"
	// StatusUnhealthy indicates one or more checks failed.
	StatusUnhealthy = "unhealthy"
)

// CheckFunc is a single probe.
type CheckFunc func(ctx context.Context) error

// Checks is a map of named health check functions.
type Checks map[string]CheckFunc

// Report is the aggregated outcome of Run.
type Report struct {
	Checks  map[string]Check `json:"checks,omitempty"`
	Status  string           `json:"status"`
	Elapsed time.Duration    `json:"elapsed"`
}

// Check is the status of a single health check.
type Check struct {
	Status  string        `json:"status"`
	Error   string        `json:"error,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

type config struct {
	logger  *slog.Logger
	now     func() time.Time
	timeout time.Duration
}

// Option configures health check behavior.
type Option func(*config)

// WithTimeout sets the timeout shared by all checks.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger failed checks are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides time.Now for elapsed times.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		logger:  logger.NewNope(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes all checks concurrently and returns the aggregated result.
// It returns once every check is done or the timeout fires, whichever comes
// first; a check that ignores ctx keeps running in the background. An empty
// set of checks is healthy.
func Run(ctx context.Context, checks Checks, opts ...Option) *Report {
	cfg := newConfig(opts...)
	start := cfg.now()
	if len(checks) == 0 {
		return &Report{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]Check, len(checks))
		g       errgroup.Group
	)
	for name, check := range checks {
		g.Go(func() error {
			began := cfg.now()
			result := Check{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					err = fmt.Errorf("%w: %v", ErrCheckTimeout, err)
				}
				result.Status = StatusUnhealthy
				result.Error = err.Error()
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}
			result.Elapsed = cfg.now().Sub(began)

			mu.Lock()
			results[name] = result
			mu.Unlock()
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	// Checks still running are reported as timed out and left behind.
	mu.Lock()
	report := make(map[string]Check, len(checks))
	for name := range checks {
		r, ok := results[name]
		if !ok {
			r = Check{Status: StatusUnhealthy, Error: ErrCheckTimeout.Error(), Elapsed: cfg.now().Sub(start)}
			cfg.logger.WarnContext(ctx, "health check cut off",
				slog.String("check", name),
				slog.Duration("timeout", cfg.timeout),
			)
		}
		report[name] = r
	}
	mu.Unlock()

	status := StatusHealthy
	for _, r := range report {
		if r.Status == StatusUnhealthy {
			status = StatusUnhealthy
			break
		}
	}
	return &Report{
		Status:  status,
		Checks:  report,
		Elapsed: cfg.now().Sub(start),
	}
}

// Names returns the check names in sorted order.
func (r *Report) Names() []string {
	names := make([]string, 0, len(r.Checks))
	for name := range r.Checks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Err returns nil for a healthy report, otherwise ErrCheckFailed listing the
// failed checks.
func (r *Report) Err() error {
	if r.Status != StatusUnhealthy {
		return nil
	}
	var failed []string
	for _, name := range r.Names() {
		if c := r.Checks[name]; c.Status == StatusUnhealthy {
			failed = append(failed, name+": "+c.Error)
		}
	}
	return fmt.Errorf("%w: %s", ErrCheckFailed, strings.Join(failed, "; "))
}
