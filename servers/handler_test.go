package servers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/modes"
	"github.com/reusee/quizrun/quizconfigs"
	"github.com/reusee/quizrun/runs"
)

type fakeRunner struct {
	mu      sync.Mutex
	started []runs.Submission
}

var _ Runner = new(fakeRunner)

func (f *fakeRunner) Start(sub runs.Submission) runs.RunID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, sub)
	return "run-1"
}

func (f *fakeRunner) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.started)
}

func (f *fakeRunner) Report(id runs.RunID) (runs.Report, bool) {
	if id != "run-1" {
		return runs.Report{}, false
	}
	return runs.Report{
		ID:   id,
		Done: true,
	}, true
}

func testServer(t *testing.T, runner Runner, secret quizconfigs.Secret) *httptest.Server {
	var server *httptest.Server
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Fork(
		func() configs.Loader {
			return configs.NewLoader(nil, "")
		},
		func() Runner {
			return runner
		},
		func() quizconfigs.Secret {
			return secret
		},
		func() quizconfigs.Email {
			return "student@example.com"
		},
	).Call(func(
		handler Handler,
	) {
		server = httptest.NewServer(handler)
	})
	t.Cleanup(server.Close)
	return server
}

func post(t *testing.T, server *httptest.Server, body string) (int, map[string]any) {
	resp, err := http.Post(server.URL+"/solve", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var ret map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&ret); err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, ret
}

func TestSolve(t *testing.T) {
	runner := new(fakeRunner)
	server := testServer(t, runner, "s3cret")

	status, body := post(t, server, `{"email": "other@example.com", "secret": "s3cret", "url": "https://example.com/q1"}`)
	if status != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("got %d %v", status, body)
	}
	if len(runner.started) != 1 {
		t.Fatal("run not started")
	}
	if runner.started[0].URL != "https://example.com/q1" {
		t.Fatalf("got %+v", runner.started[0])
	}

	status, body = post(t, server, `{not json`)
	if status != http.StatusBadRequest || body["detail"] != "Invalid JSON payload" {
		t.Fatalf("got %d %v", status, body)
	}

	status, body = post(t, server, `{"email": "a", "secret": "s3cret"}`)
	if status != http.StatusBadRequest || body["detail"] != "Invalid request format" {
		t.Fatalf("got %d %v", status, body)
	}

	status, body = post(t, server, `{"email": 1, "secret": "s3cret", "url": "https://example.com"}`)
	if status != http.StatusBadRequest || body["detail"] != "Invalid request format" {
		t.Fatalf("got %d %v", status, body)
	}

	status, body = post(t, server, `{"email": "a", "secret": "s3cret", "url": "file:///etc/passwd"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("got %d %v", status, body)
	}

	status, body = post(t, server, `{"email": "a", "secret": "wrong", "url": "https://example.com/q1"}`)
	if status != http.StatusForbidden || body["detail"] != "Invalid secret" {
		t.Fatalf("got %d %v", status, body)
	}

	if len(runner.started) != 1 {
		t.Fatalf("got %d runs", len(runner.started))
	}
}

func TestSolveWithoutSecret(t *testing.T) {
	runner := new(fakeRunner)
	server := testServer(t, runner, "")
	status, body := post(t, server, `{"email": "a", "secret": "x", "url": "https://example.com/q1"}`)
	if status != http.StatusInternalServerError || body["detail"] != "Server configuration error" {
		t.Fatalf("got %d %v", status, body)
	}
	if len(runner.started) != 0 {
		t.Fatal()
	}
}

func TestHealthz(t *testing.T) {
	server := testServer(t, new(fakeRunner), "s")
	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Fatalf("got %v", body)
	}
	if uptime, ok := body["uptime_seconds"].(float64); !ok || uptime < 0 {
		t.Fatalf("got %v", body)
	}
	if body["active_runs"] != float64(0) {
		t.Fatalf("got %v", body)
	}
}

func TestRoot(t *testing.T) {
	server := testServer(t, new(fakeRunner), "s")
	resp, err := http.Get(server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["version"] != Version {
		t.Fatalf("got %v", body)
	}

	resp2, err := http.Get(server.URL + "/nothing")
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("got %d", resp2.StatusCode)
	}
}

func TestRunReport(t *testing.T) {
	server := testServer(t, new(fakeRunner), "s")

	get := func(path string) int {
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}
	if status := get("/runs/run-1?secret=s"); status != http.StatusOK {
		t.Fatalf("got %d", status)
	}
	if status := get("/runs/run-1"); status != http.StatusForbidden {
		t.Fatalf("got %d", status)
	}
	if status := get("/runs/run-2?secret=s"); status != http.StatusNotFound {
		t.Fatalf("got %d", status)
	}
}

func TestServeShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Call(func(
		logger logs.Logger,
	) {
		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() {
			done <- serve(ctx, ln, http.NotFoundHandler(), logger)
		}()
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("got %d", resp.StatusCode)
		}
		cancel()
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	})
}
