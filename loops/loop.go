package loops

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reusee/quizrun/chains"
	"github.com/reusee/quizrun/generators"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/tools"
)

// Outcome describes how a loop ended.
type Outcome struct {
	Reason     Reason
	Iterations int
	Steps      int
	LastText   string
}

// Loop alternates Reasoning and Acting steps on conv until StateTerminal.
// The returned error is non-nil only with ReasonFailed or ReasonCanceled.
type Loop func(ctx context.Context, state *chains.RunState, conv *generators.Conversation) (Outcome, error)

func (Module) Loop(
	reasoner Reasoner,
	dispatcher *tools.Dispatcher,
	maxIterations MaxIterations,
	retries ReasoningRetries,
	backoff RetryBackoff,
	system SystemMessage,
	logger logs.Logger,
) Loop {
	return func(ctx context.Context, state *chains.RunState, conv *generators.Conversation) (outcome Outcome, err error) {
		systemContent := generators.NewText(generators.RoleSystem, string(system))

		reason := func() (*generators.Content, error) {
			for attempt := 0; ; attempt++ {
				content, err := reasoner.Invoke(ctx, conv)
				if err == nil {
					return content, nil
				}
				if !generators.IsRetryable(err) || attempt >= int(retries) {
					return nil, err
				}
				delay := retryDelay(time.Duration(backoff), attempt)
				logger.WarnContext(ctx, "reasoning failed, retrying",
					"error", err,
					"attempt", describeAttempt(attempt, int(retries)),
					"delay", delay,
				)
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return nil, context.Cause(ctx)
				}
			}
		}

		fail := func(r Reason, e error) (Outcome, error) {
			outcome.Reason = r
			return outcome, e
		}

		current := StateReasoning
		for {
			if err := ctx.Err(); err != nil {
				return fail(ReasonCanceled, context.Cause(ctx))
			}
			outcome.Steps++

			switch current {

			case StateReasoning:
				if err := conv.EnsureSystem(systemContent); err != nil {
					return fail(ReasonFailed, err)
				}
				if err := conv.Append(state.ContextMessage()); err != nil {
					return fail(ReasonFailed, err)
				}
				logger.InfoContext(ctx, "reasoning",
					"quiz", state.TaskCount(),
					"remaining", state.Remaining().Round(time.Millisecond),
				)
				content, err := reason()
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return fail(ReasonCanceled, err)
					}
					return fail(ReasonFailed, fmt.Errorf("reasoning: %w", err))
				}
				if err := conv.Append(content); err != nil {
					return fail(ReasonFailed, err)
				}
				outcome.LastText = content.Text()
				next, r := Transition(current, content)
				if next == StateTerminal {
					logger.InfoContext(ctx, "loop terminated",
						"reason", r,
						"iterations", outcome.Iterations,
					)
					outcome.Reason = r
					return outcome, nil
				}
				current = next

			case StateActing:
				calls := conv.Pending()
				logger.InfoContext(ctx, "acting", "calls", len(calls))
				results := dispatcher.Dispatch(
					tools.WithIdentity(ctx, state.Identity()),
					calls,
				)
				for _, result := range results {
					if err := conv.Append(&generators.Content{
						Role:  generators.RoleTool,
						Parts: []generators.Part{result},
					}); err != nil {
						return fail(ReasonFailed, err)
					}
				}
				if state.Observe(results) {
					logger.InfoContext(ctx, "next task",
						"quiz", state.TaskCount(),
						"url", state.CurrentURL(),
					)
				}
				outcome.Iterations++
				if outcome.Iterations >= int(maxIterations) {
					logger.WarnContext(ctx, "iteration ceiling reached",
						"iterations", outcome.Iterations,
					)
					outcome.Reason = ReasonIterationCeiling
					return outcome, nil
				}
				current, _ = Transition(current, nil)

			default:
				return fail(ReasonFailed, fmt.Errorf("invalid state: %v", current))
			}
		}
	}
}
