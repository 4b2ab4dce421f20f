package gateways

import (
	"context"
	"fmt"
	"time"

	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/syncs"
)

// CallInterval is the minimum gap between the completion of one reasoning
// call and the start of the next, process wide.
type CallInterval time.Duration

const defaultCallsPerMinute = 9

func (Module) CallInterval(
	loader configs.Loader,
) CallInterval {
	if value := configs.First[string](loader, "min_call_interval"); value != "" {
		interval, err := time.ParseDuration(value)
		if err != nil {
			panic(fmt.Errorf("min_call_interval: %w", err))
		}
		return CallInterval(interval)
	}
	perMinute := configs.First[float64](loader, "calls_per_minute")
	if perMinute <= 0 {
		perMinute = defaultCallsPerMinute
	}
	return CallInterval(float64(time.Minute) / perMinute)
}

// RateLimiter serializes calls and spaces them by an interval. One instance
// is shared by all runs of a process.
type RateLimiter struct {
	interval time.Duration
	sem      syncs.Semaphore
	lastDone time.Time
	logger   logs.Logger
}

func NewRateLimiter(interval time.Duration, logger logs.Logger) *RateLimiter {
	return &RateLimiter{
		interval: interval,
		sem:      syncs.NewSemaphore(1),
		logger:   logger,
	}
}

func (Module) RateLimiter(
	interval CallInterval,
	logger logs.Logger,
) *RateLimiter {
	return NewRateLimiter(time.Duration(interval), logger)
}

func (r *RateLimiter) Interval() time.Duration {
	return r.interval
}

// Do waits for a slot and for the interval to elapse since the previous call
// completed, then runs fn. Completion is recorded whether fn fails or not.
func (r *RateLimiter) Do(ctx context.Context, fn func() error) error {
	if err := r.sem.AcquireContext(ctx); err != nil {
		return err
	}
	defer r.sem.Release()

	if !r.lastDone.IsZero() {
		if wait := r.interval - time.Since(r.lastDone); wait > 0 {
			r.logger.InfoContext(ctx, "rate limit wait", "duration", wait)
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return context.Cause(ctx)
			}
		}
	}

	defer func() {
		r.lastDone = time.Now()
	}()
	return fn()
}
