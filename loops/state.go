package loops

import (
	"strings"

	"github.com/reusee/quizrun/generators"
)

type State uint8

const (
	StateReasoning State = iota + 1
	StateActing
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateReasoning:
		return "reasoning"
	case StateActing:
		return "acting"
	case StateTerminal:
		return "terminal"
	}
	return "unknown"
}

// Reason tells why a run reached StateTerminal.
type Reason string

const (
	ReasonCompleted        Reason = "completed"
	ReasonNoAction         Reason = "no_action"
	ReasonIterationCeiling Reason = "iteration_ceiling"
	ReasonFailed           Reason = "failed"
	ReasonCanceled         Reason = "canceled"
)

var completionPhrases = []string{
	"quiz complete",
	"no new url",
	"finished",
}

func IsCompletionSignal(text string) bool {
	text = strings.ToLower(text)
	for _, phrase := range completionPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// Transition computes the state following state, given the latest reasoner
// message when leaving StateReasoning. A reply without invocations ends the
// run whether or not it carries a completion signal.
func Transition(state State, last *generators.Content) (State, Reason) {
	switch state {

	case StateReasoning:
		if last != nil && len(last.Calls()) > 0 {
			return StateActing, ""
		}
		if last != nil && IsCompletionSignal(last.Text()) {
			return StateTerminal, ReasonCompleted
		}
		return StateTerminal, ReasonNoAction

	case StateActing:
		return StateReasoning, ""

	}
	return StateTerminal, ""
}
