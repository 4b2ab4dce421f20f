package runs

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/quizrun/chains"
	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/debugs"
	"github.com/reusee/quizrun/generators"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/loops"
	"github.com/reusee/quizrun/prompts"
	"github.com/reusee/quizrun/storages"
	"github.com/reusee/quizrun/vars"
)

// RetainReports bounds how many finished reports are kept for lookup.
type RetainReports int

func (Module) RetainReports(
	loader configs.Loader,
) RetainReports {
	return vars.FirstNonZero(
		configs.First[RetainReports](loader, "retain_reports"),
		256,
	)
}

// Supervisor owns runs. Runs share nothing but what the loop is composed of.
type Supervisor struct {
	loop     loops.Loop
	newState chains.NewRunState
	newSpan  logs.NewSpan
	tap      debugs.Tap
	getStore storages.GetStore
	logger   logs.Logger
	retain   int

	active atomic.Int64
	wg     sync.WaitGroup

	mu       sync.Mutex
	reports  map[RunID]*Report
	finished []RunID
}

func (Module) Supervisor(
	loop loops.Loop,
	newState chains.NewRunState,
	newSpan logs.NewSpan,
	tap debugs.Tap,
	getStore storages.GetStore,
	retain RetainReports,
	logger logs.Logger,
) *Supervisor {
	return &Supervisor{
		loop:     loop,
		newState: newState,
		newSpan:  newSpan,
		tap:      tap,
		getStore: getStore,
		logger:   logger,
		retain:   int(retain),
		reports:  make(map[RunID]*Report),
	}
}

// Start runs sub in the background and returns at once.
func (s *Supervisor) Start(sub Submission) RunID {
	id := newRunID()
	s.track(id, sub)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(context.Background(), id, sub)
	}()
	return id
}

// Run runs sub to its end.
func (s *Supervisor) Run(ctx context.Context, sub Submission) Report {
	id := newRunID()
	s.track(id, sub)
	return s.run(ctx, id, sub)
}

// Wait blocks until every background run ended.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

func (s *Supervisor) Active() int {
	return int(s.active.Load())
}

// Report returns the report of a run in progress or finished. Finished
// reports evicted from memory are read from the report store if one is
// configured.
func (s *Supervisor) Report(id RunID) (Report, bool) {
	s.mu.Lock()
	report, ok := s.reports[id]
	s.mu.Unlock()
	if ok {
		return *report, true
	}

	store, err := s.getStore()
	if err != nil {
		return Report{}, false
	}
	var stored Report
	ok, err = store.Get(reportsBucket, string(id), &stored)
	if err != nil {
		s.logger.Error("load report", "run", id, "error", err)
		return Report{}, false
	}
	if !ok {
		return Report{}, false
	}
	stored.Elapsed = time.Duration(stored.ElapsedSecs * float64(time.Second))
	return stored, true
}

const reportsBucket = "reports"

func newRunID() RunID {
	return RunID(uuid.NewString())
}

func (s *Supervisor) track(id RunID, sub Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[id] = &Report{
		ID:         id,
		Email:      sub.Email,
		StartURL:   sub.URL,
		CurrentURL: sub.URL,
		Started:    time.Now(),
		TaskCount:  1,
	}
}

func (s *Supervisor) finish(report Report) {
	if store, err := s.getStore(); err == nil {
		if err := store.Put(reportsBucket, string(report.ID), report); err != nil {
			s.logger.Error("save report", "run", report.ID, "error", err)
		}
	} else if !errors.Is(err, storages.ErrDisabled) {
		s.logger.Error("report store", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = &report
	s.finished = append(s.finished, report.ID)
	for len(s.finished) > s.retain {
		delete(s.reports, s.finished[0])
		s.finished = s.finished[1:]
	}
}

func (s *Supervisor) run(ctx context.Context, id RunID, sub Submission) (report Report) {
	s.active.Add(1)
	defer s.active.Add(-1)

	ctx, _ = s.newSpan(ctx, "")
	logger := s.logger.With("run", id)
	logger.InfoContext(ctx, "run started",
		"email", sub.Email,
		"url", sub.URL,
	)

	state := s.newState(sub.Email, sub.Secret, sub.URL)
	report = Report{
		ID:       id,
		Email:    sub.Email,
		StartURL: sub.URL,
		Started:  state.Started(),
	}
	var conv *generators.Conversation

	defer func() {
		if p := recover(); p != nil {
			logger.ErrorContext(ctx, "run panicked",
				"panic", p,
				"stack", string(debug.Stack()),
			)
			report.Success = false
			report.Reason = loops.ReasonFailed
			report.Error = fmt.Sprintf("panic: %v", p)
		}

		report.Done = true
		report.Elapsed = state.Elapsed()
		report.ElapsedSecs = report.Elapsed.Seconds()
		report.TaskCount = state.TaskCount()
		report.CurrentURL = state.CurrentURL()
		report.Submissions, report.Correct = state.Submissions()
		s.finish(report)

		if report.Success {
			logger.InfoContext(ctx, "run completed",
				"reason", report.Reason,
				"elapsed", report.Elapsed,
				"tasks", report.TaskCount,
				"iterations", report.Iterations,
			)
		} else {
			logger.ErrorContext(ctx, "run failed",
				"reason", report.Reason,
				"error", report.Error,
				"elapsed", report.Elapsed,
			)
		}

		globals := map[string]any{
			"report": report,
		}
		if conv != nil {
			globals["messages"] = transcript(conv)
		}
		s.tap(ctx, "run "+string(id), globals)
	}()

	conv, err := generators.NewConversation(
		generators.NewText(generators.RoleUser, prompts.Start(sub.URL)),
	)
	if err != nil {
		report.Reason = loops.ReasonFailed
		report.Error = err.Error()
		return
	}

	outcome, err := s.loop(ctx, state, conv)
	report.Reason = outcome.Reason
	report.Iterations = outcome.Iterations
	if err != nil {
		report.Error = logs.WrapSpan(ctx, err).Error()
		return
	}
	if outcome.Reason == loops.ReasonIterationCeiling {
		report.Error = fmt.Sprintf("iteration ceiling reached after %d iterations", outcome.Iterations)
		return
	}
	report.Success = true
	return
}
