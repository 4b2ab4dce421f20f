package chains

import (
	"sync"
	"time"

	"github.com/reusee/quizrun/generators"
	"github.com/reusee/quizrun/prompts"
	"github.com/reusee/quizrun/tools"
)

// RunState is the mutable state of one run. It is never shared between runs.
type RunState struct {
	mu          sync.Mutex
	email       string
	secret      string
	startURL    string
	currentURL  string
	started     time.Time
	maxDuration time.Duration
	taskCount   int
	submissions int
	correct     int
	now         func() time.Time
}

type NewRunState func(email, secret, url string) *RunState

func (Module) NewRunState(
	maxDuration MaxDuration,
	now Now,
) NewRunState {
	return func(email, secret, url string) *RunState {
		return &RunState{
			email:       email,
			secret:      secret,
			startURL:    url,
			currentURL:  url,
			started:     now(),
			maxDuration: time.Duration(maxDuration),
			taskCount:   1,
			now:         now,
		}
	}
}

func (s *RunState) Email() string {
	return s.email
}

func (s *RunState) StartURL() string {
	return s.startURL
}

func (s *RunState) Started() time.Time {
	return s.started
}

func (s *RunState) Deadline() time.Time {
	return s.started.Add(s.maxDuration)
}

func (s *RunState) Elapsed() time.Duration {
	return s.now().Sub(s.started)
}

// Remaining is negative once the budget is exceeded.
func (s *RunState) Remaining() time.Duration {
	return s.Deadline().Sub(s.now())
}

func (s *RunState) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentURL
}

func (s *RunState) TaskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taskCount
}

func (s *RunState) Submissions() (total int, correct int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submissions, s.correct
}

// Identity is what the tools see of the run.
func (s *RunState) Identity() tools.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tools.Identity{
		Email:  s.email,
		Secret: s.secret,
		URL:    s.currentURL,
	}
}

// ContextMessage renders the live state for the next reasoning step.
func (s *RunState) ContextMessage() *generators.Content {
	s.mu.Lock()
	url := s.currentURL
	taskCount := s.taskCount
	s.mu.Unlock()
	return generators.NewText(
		generators.RoleUser,
		prompts.Context(
			s.email,
			s.secret,
			url,
			taskCount,
			s.Elapsed(),
			s.Remaining(),
		),
	)
}

// Observe inspects tool results for submissions. A response naming a url
// other than the current one chains the run to it. It returns whether the
// run moved to a new task.
func (s *RunState) Observe(results []generators.CallResult) (advanced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, result := range results {
		if result.Name != tools.SubmitAnswerName {
			continue
		}
		response, ok := result.Results["response"].(map[string]any)
		if !ok {
			continue
		}
		s.submissions++
		if correct, ok := response["correct"].(bool); ok && correct {
			s.correct++
		}
		next, ok := response["url"].(string)
		if !ok || next == "" || next == s.currentURL {
			continue
		}
		s.currentURL = next
		s.taskCount++
		advanced = true
	}
	return
}
