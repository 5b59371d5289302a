package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorhill/cronexpr"

	"NewsMirror/internal/ports"
)

// CronScheduler fires a job at the instants described by a cron expression.
type CronScheduler struct {
	expr     *cronexpr.Expression
	location *time.Location
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler parses spec (5, 6 or 7 fields) evaluated in location.
func NewCronScheduler(spec string, location *time.Location) (*CronScheduler, error) {
	expr, err := cronexpr.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", spec, err)
	}
	if location == nil {
		location = time.UTC
	}
	return &CronScheduler{
		expr:     expr,
		location: location,
		now:      time.Now,
		after:    time.After,
	}, nil
}

// NextRun returns the first firing strictly after from.
func (c *CronScheduler) NextRun(from time.Time) time.Time {
	return c.expr.Next(from.In(c.location))
}

// Start runs job at every firing until ctx is cancelled or Stop is called.
// Jobs run on the scheduler goroutine, so firings never overlap.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	c.stop, c.done = stop, done

	go func() {
		defer close(done)
		for {
			next := c.NextRun(c.now())
			if next.IsZero() {
				return
			}
			select {
			case <-c.after(next.Sub(c.now())):
				job(next)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the loop and waits for a running job to return.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
