package runs

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/generators"
	"github.com/reusee/quizrun/loops"
	"github.com/reusee/quizrun/modes"
	"github.com/reusee/quizrun/storages"
	"github.com/reusee/quizrun/tools"
)

type reasonerFunc func(ctx context.Context, conv *generators.Conversation) (*generators.Content, error)

func (r reasonerFunc) Invoke(ctx context.Context, conv *generators.Conversation) (*generators.Content, error) {
	return r(ctx, conv)
}

func testScope(t *testing.T, reasoner loops.Reasoner, defs ...any) dscope.Scope {
	registry, err := tools.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	return dscope.New(
		modes.ForTest(t),
		new(Module),
	).Fork(
		func() configs.Loader {
			return configs.NewLoader(nil, "")
		},
		func() *tools.Registry {
			return registry
		},
		func() loops.Reasoner {
			return reasoner
		},
	).Fork(defs...)
}

func TestRunCompleted(t *testing.T) {
	var first string
	reasoner := reasonerFunc(func(ctx context.Context, conv *generators.Conversation) (*generators.Content, error) {
		first = conv.Contents()[1].Text()
		return generators.NewText(generators.RoleModel, "Quiz complete"), nil
	})
	testScope(t, reasoner).Call(func(
		supervisor *Supervisor,
	) {
		report := supervisor.Run(t.Context(), Submission{
			Email:  "a@b.c",
			Secret: "s",
			URL:    "https://example.com/q1",
		})
		if !report.Success || !report.Done {
			t.Fatalf("got %+v", report)
		}
		if report.Reason != loops.ReasonCompleted {
			t.Fatalf("got %v", report.Reason)
		}
		if report.TaskCount != 1 {
			t.Fatalf("got %d", report.TaskCount)
		}
		if report.ID == "" {
			t.Fatal()
		}
		if first != "Solve the quiz at this URL: https://example.com/q1" {
			t.Fatalf("got %q", first)
		}
		stored, ok := supervisor.Report(report.ID)
		if !ok || !stored.Done {
			t.Fatalf("got %+v", stored)
		}
	})
}

func TestRunGatewayFailure(t *testing.T) {
	reasoner := reasonerFunc(func(ctx context.Context, conv *generators.Conversation) (*generators.Content, error) {
		return nil, errors.New("permission denied")
	})
	testScope(t, reasoner).Call(func(
		supervisor *Supervisor,
	) {
		report := supervisor.Run(t.Context(), Submission{
			URL: "https://example.com/q1",
		})
		if report.Success {
			t.Fatal()
		}
		if report.Reason != loops.ReasonFailed {
			t.Fatalf("got %v", report.Reason)
		}
		if !strings.Contains(report.Error, "permission denied") {
			t.Fatalf("got %q", report.Error)
		}
		if report.Elapsed < 0 {
			t.Fatal()
		}
	})
}

func TestRunPanicIsolated(t *testing.T) {
	reasoner := reasonerFunc(func(ctx context.Context, conv *generators.Conversation) (*generators.Content, error) {
		for _, content := range conv.Contents() {
			if strings.Contains(content.Text(), "/bad") {
				panic("bad run")
			}
		}
		time.Sleep(10 * time.Millisecond)
		return generators.NewText(generators.RoleModel, "finished"), nil
	})
	testScope(t, reasoner).Call(func(
		supervisor *Supervisor,
	) {
		var wg sync.WaitGroup
		reports := make([]Report, 2)
		for i, url := range []string{"https://example.com/bad", "https://example.com/good"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				reports[i] = supervisor.Run(t.Context(), Submission{
					URL: url,
				})
			}()
		}
		wg.Wait()
		if reports[0].Success || !strings.Contains(reports[0].Error, "bad run") {
			t.Fatalf("got %+v", reports[0])
		}
		if !reports[1].Success {
			t.Fatalf("got %+v", reports[1])
		}
	})
}

func TestStartDetached(t *testing.T) {
	release := make(chan struct{})
	reasoner := reasonerFunc(func(ctx context.Context, conv *generators.Conversation) (*generators.Content, error) {
		<-release
		return generators.NewText(generators.RoleModel, "quiz complete"), nil
	})
	testScope(t, reasoner).Call(func(
		supervisor *Supervisor,
	) {
		id := supervisor.Start(Submission{
			URL: "https://example.com/q1",
		})
		report, ok := supervisor.Report(id)
		if !ok || report.Done {
			t.Fatalf("got %+v", report)
		}
		deadline := time.Now().Add(time.Second)
		for supervisor.Active() != 1 {
			if time.Now().After(deadline) {
				t.Fatal("run not active")
			}
			time.Sleep(time.Millisecond)
		}
		close(release)
		supervisor.Wait()
		if supervisor.Active() != 0 {
			t.Fatal()
		}
		report, _ = supervisor.Report(id)
		if !report.Done || !report.Success {
			t.Fatalf("got %+v", report)
		}
	})
}

func TestIterationCeilingFails(t *testing.T) {
	n := 0
	reasoner := reasonerFunc(func(ctx context.Context, conv *generators.Conversation) (*generators.Content, error) {
		n++
		return &generators.Content{
			Role: generators.RoleModel,
			Parts: []generators.Part{
				generators.FuncCall{ID: string(rune('a' + n)), Name: "nothing"},
			},
		}, nil
	})
	testScope(t, reasoner,
		func() loops.MaxIterations {
			return 2
		},
	).Call(func(
		supervisor *Supervisor,
	) {
		report := supervisor.Run(t.Context(), Submission{
			URL: "https://example.com/q1",
		})
		if report.Success || report.Reason != loops.ReasonIterationCeiling {
			t.Fatalf("got %+v", report)
		}
		if report.Iterations != 2 {
			t.Fatalf("got %d", report.Iterations)
		}
	})
}

func TestReportRetention(t *testing.T) {
	reasoner := reasonerFunc(func(ctx context.Context, conv *generators.Conversation) (*generators.Content, error) {
		return generators.NewText(generators.RoleModel, "done"), nil
	})
	testScope(t, reasoner,
		func() RetainReports {
			return 2
		},
	).Call(func(
		supervisor *Supervisor,
	) {
		var ids []RunID
		for range 3 {
			ids = append(ids, supervisor.Run(t.Context(), Submission{}).ID)
		}
		if _, ok := supervisor.Report(ids[0]); ok {
			t.Fatal("expecting evicted")
		}
		if _, ok := supervisor.Report(ids[2]); !ok {
			t.Fatal()
		}
	})
}

func TestReportPersisted(t *testing.T) {
	reasoner := reasonerFunc(func(ctx context.Context, conv *generators.Conversation) (*generators.Content, error) {
		return generators.NewText(generators.RoleModel, "quiz complete"), nil
	})
	path := filepath.Join(t.TempDir(), "reports.db")
	testScope(t, reasoner,
		func() RetainReports {
			return 1
		},
		func() storages.Path {
			return storages.Path(path)
		},
	).Call(func(
		supervisor *Supervisor,
		getStore storages.GetStore,
	) {
		first := supervisor.Run(t.Context(), Submission{
			Email: "a@b.c",
			URL:   "https://example.com/q1",
		})
		supervisor.Run(t.Context(), Submission{})

		// evicted from memory, read back from the store
		report, ok := supervisor.Report(first.ID)
		if !ok {
			t.Fatal("expecting persisted report")
		}
		if report.StartURL != "https://example.com/q1" || !report.Success || !report.Done {
			t.Fatalf("got %+v", report)
		}
		if report.Reason != loops.ReasonCompleted {
			t.Fatalf("got %v", report.Reason)
		}

		store, err := getStore()
		if err != nil {
			t.Fatal(err)
		}
		if err := store.Close(); err != nil {
			t.Fatal(err)
		}
	})
}
