package loops

import (
	"context"
	"fmt"
	"time"

	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/gateways"
	"github.com/reusee/quizrun/generators"
	"github.com/reusee/quizrun/prompts"
	"github.com/reusee/quizrun/vars"
)

// MaxIterations caps Reasoning to Acting round trips.
type MaxIterations int

func (Module) MaxIterations(
	loader configs.Loader,
) MaxIterations {
	return vars.FirstNonZero(
		configs.First[MaxIterations](loader, "max_iterations"),
		100,
	)
}

// ReasoningRetries is how many times a retryable reasoning failure is
// repeated before the run fails.
type ReasoningRetries int

func (Module) ReasoningRetries(
	loader configs.Loader,
) ReasoningRetries {
	var n ReasoningRetries
	if err := loader.AssignFirst("reasoning_retries", &n); err != nil {
		return 3
	}
	return n
}

// RetryBackoff is the first retry delay; it doubles on every attempt.
type RetryBackoff time.Duration

func (Module) RetryBackoff() RetryBackoff {
	return RetryBackoff(2 * time.Second)
}

// Reasoner produces the next reasoner message for a conversation.
type Reasoner interface {
	Invoke(ctx context.Context, conv *generators.Conversation) (*generators.Content, error)
}

var _ Reasoner = new(gateways.Gateway)

func (Module) Reasoner(
	gateway *gateways.Gateway,
) Reasoner {
	return gateway
}

type SystemMessage string

func (Module) SystemMessage() SystemMessage {
	return SystemMessage(prompts.System)
}

func retryDelay(base time.Duration, attempt int) time.Duration {
	delay := base << attempt
	if limit := time.Minute; delay > limit || delay <= 0 {
		delay = limit
	}
	return delay
}

func describeAttempt(attempt, retries int) string {
	return fmt.Sprintf("%d/%d", attempt+1, retries+1)
}
