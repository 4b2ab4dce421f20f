package tools

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/generators"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/syncs"
	"github.com/reusee/quizrun/vars"
)

// Concurrency bounds the invocations of one step running at the same time.
type Concurrency int

func (Module) Concurrency(
	loader configs.Loader,
) Concurrency {
	return vars.FirstNonZero(
		configs.First[Concurrency](loader, "tool_concurrency"),
		4,
	)
}

// Grace is added to a capability timeout before the dispatcher gives up
// waiting; capabilities are expected to honor their own timeout first.
type Grace time.Duration

func (Module) Grace() Grace {
	return Grace(5 * time.Second)
}

// Dispatcher executes invocations against a Registry. Every invocation
// yields exactly one result, failures included.
type Dispatcher struct {
	registry    *Registry
	concurrency int
	grace       time.Duration
	logger      logs.Logger
}

func (Module) Dispatcher(
	registry *Registry,
	concurrency Concurrency,
	grace Grace,
	logger logs.Logger,
) *Dispatcher {
	return &Dispatcher{
		registry:    registry,
		concurrency: max(int(concurrency), 1),
		grace:       time.Duration(grace),
		logger:      logger,
	}
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch runs calls concurrently and returns their results in call order.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []generators.FuncCall) []generators.CallResult {
	results := make([]generators.CallResult, len(calls))
	sem := syncs.NewSemaphore(d.concurrency)
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.AcquireContext(ctx); err != nil {
				results[i] = failure(call, fmt.Sprintf("Error: %s not started: %v", call.Name, err))
				return
			}
			defer sem.Release()
			results[i] = d.Invoke(ctx, call)
		}()
	}
	wg.Wait()
	return results
}

// Invoke runs one call. It never returns without a result.
func (d *Dispatcher) Invoke(ctx context.Context, call generators.FuncCall) generators.CallResult {
	capability, err := d.registry.Get(call.Name)
	if err != nil {
		d.logger.WarnContext(ctx, "unknown tool", "name", call.Name)
		return failure(call, fmt.Sprintf("Error: %v; available tools: %v", err, d.registry.Names()))
	}

	args, err := capability.Decl.Params.Coerce(call.Args)
	if err != nil {
		d.logger.WarnContext(ctx, "invalid arguments",
			"name", call.Name,
			"error", err,
		)
		return failure(call, fmt.Sprintf("Error: invalid arguments for %s: %v", call.Name, err))
	}

	timeout := capability.Timeout + d.grace
	ctx, cancel := context.WithTimeoutCause(ctx, timeout, errInvocationTimeout)
	defer cancel()

	type outcome struct {
		results map[string]any
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				d.logger.ErrorContext(ctx, "tool panicked",
					"name", call.Name,
					"panic", p,
					"stack", string(debug.Stack()),
				)
				done <- outcome{
					err: fmt.Errorf("panic: %v", p),
				}
			}
		}()
		results, err := capability.Func(ctx, args)
		done <- outcome{
			results: results,
			err:     err,
		}
	}()

	started := time.Now()
	d.logger.InfoContext(ctx, "tool started", "name", call.Name)

	select {
	case out := <-done:
		d.logger.InfoContext(ctx, "tool finished",
			"name", call.Name,
			"duration", time.Since(started),
		)
		if out.err != nil {
			return failure(call, fmt.Sprintf("Error: %s failed: %v", call.Name, out.err))
		}
		if out.results == nil {
			out.results = map[string]any{}
		}
		return generators.CallResult{
			ID:      call.ID,
			Name:    call.Name,
			Results: out.results,
		}

	case <-ctx.Done():
		err := context.Cause(ctx)
		if errors.Is(err, errInvocationTimeout) {
			d.logger.WarnContext(ctx, "tool timed out",
				"name", call.Name,
				"timeout", timeout,
			)
			return failure(call, fmt.Sprintf("Error: %s timed out after %s", call.Name, describeDuration(timeout)))
		}
		return failure(call, fmt.Sprintf("Error: %s aborted: %v", call.Name, err))
	}
}

var errInvocationTimeout = errors.New("invocation timed out")

func failure(call generators.FuncCall, msg string) generators.CallResult {
	return generators.CallResult{
		ID:   call.ID,
		Name: call.Name,
		Results: map[string]any{
			"error": msg,
		},
	}
}
