package runs

import (
	"time"

	"github.com/reusee/quizrun/generators"
	"github.com/reusee/quizrun/loops"
)

// Submission starts a run.
type Submission struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

type RunID string

// Report is the outcome of one run. A report of a run still in progress has
// Done unset.
type Report struct {
	ID          RunID         `json:"id"`
	Email       string        `json:"email"`
	StartURL    string        `json:"start_url"`
	CurrentURL  string        `json:"current_url"`
	Started     time.Time     `json:"started"`
	Done        bool          `json:"done"`
	Success     bool          `json:"success"`
	Reason      loops.Reason  `json:"reason,omitempty"`
	Error       string        `json:"error,omitempty"`
	Elapsed     time.Duration `json:"-"`
	ElapsedSecs float64       `json:"elapsed_seconds"`
	TaskCount   int           `json:"task_count"`
	Iterations  int           `json:"iterations"`
	Submissions int           `json:"submissions"`
	Correct     int           `json:"correct"`
}

// transcript renders conv for inspection.
func transcript(conv *generators.Conversation) (ret []any) {
	for _, content := range conv.Contents() {
		entry := map[string]any{
			"role": string(content.Role),
			"text": content.Text(),
		}
		var calls []any
		for _, call := range content.Calls() {
			calls = append(calls, map[string]any{
				"id":   call.ID,
				"name": call.Name,
				"args": call.Args,
			})
		}
		if len(calls) > 0 {
			entry["calls"] = calls
		}
		for _, part := range content.Parts {
			if result, ok := part.(generators.CallResult); ok {
				entry["result"] = result.Text()
			}
		}
		ret = append(ret, entry)
	}
	return
}
