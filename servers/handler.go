package servers

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/quizconfigs"
	"github.com/reusee/quizrun/runs"
)

const Version = "1.0.0"

const maxBodyBytes = 1 << 20

// Runner accepts submissions. *runs.Supervisor implements it.
type Runner interface {
	Start(runs.Submission) runs.RunID
	Active() int
	Report(runs.RunID) (runs.Report, bool)
}

var _ Runner = new(runs.Supervisor)

func (Module) Runner(
	supervisor *runs.Supervisor,
) Runner {
	return supervisor
}

// Started is when the process began serving.
type Started time.Time

func (Module) Started() Started {
	return Started(time.Now())
}

type Handler http.Handler

func (Module) Handler(
	runner Runner,
	secret quizconfigs.Secret,
	email quizconfigs.Email,
	started Started,
	logger logs.Logger,
) Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Quiz Solver",
			"version": Version,
			"endpoints": map[string]string{
				"POST /solve":    "Submit quiz to solve",
				"GET /healthz":   "Health check",
				"GET /runs/{id}": "Run report",
			},
		})
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":         "ok",
			"uptime_seconds": time.Since(time.Time(started)).Seconds(),
			"active_runs":    runner.Active(),
		})
	})

	mux.HandleFunc("POST /solve", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sub, err := decodeSubmission(r.Body)
		if err != nil {
			logger.WarnContext(ctx, "bad submission", "error", err)
			if errors.Is(err, errInvalidJSON) {
				writeDetail(w, http.StatusBadRequest, "Invalid JSON payload")
			} else {
				writeDetail(w, http.StatusBadRequest, "Invalid request format")
			}
			return
		}

		if secret == "" {
			logger.ErrorContext(ctx, "secret not configured")
			writeDetail(w, http.StatusInternalServerError, "Server configuration error")
			return
		}
		if !secretEqual(sub.Secret, string(secret)) {
			logger.WarnContext(ctx, "invalid secret", "email", sub.Email)
			writeDetail(w, http.StatusForbidden, "Invalid secret")
			return
		}
		if email != "" && sub.Email != string(email) {
			logger.WarnContext(ctx, "email mismatch",
				"expected", email,
				"got", sub.Email,
			)
		}

		id := runner.Start(sub)
		logger.InfoContext(ctx, "quiz request accepted",
			"email", sub.Email,
			"url", sub.URL,
			"run", id,
		)
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"run_id": id,
		})
	})

	mux.HandleFunc("GET /runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if secret == "" || !secretEqual(r.URL.Query().Get("secret"), string(secret)) {
			writeDetail(w, http.StatusForbidden, "Invalid secret")
			return
		}
		report, ok := runner.Report(runs.RunID(r.PathValue("id")))
		if !ok {
			writeDetail(w, http.StatusNotFound, "Run not found")
			return
		}
		writeJSON(w, http.StatusOK, report)
	})

	return withRequestLog(logger, mux)
}

var errInvalidJSON = errors.New("invalid json")

func decodeSubmission(r io.Reader) (sub runs.Submission, err error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return sub, err
	}
	if !json.Valid(body) {
		return sub, errInvalidJSON
	}

	var fields struct {
		Email  *string `json:"email"`
		Secret *string `json:"secret"`
		URL    *string `json:"url"`
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&fields); err != nil {
		return sub, err
	}
	if fields.Email == nil || fields.Secret == nil || fields.URL == nil {
		return sub, errors.New("email, secret and url are required")
	}
	parsed, err := url.Parse(*fields.URL)
	if err != nil {
		return sub, err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return sub, errors.New("url must be absolute http or https")
	}

	return runs.Submission{
		Email:  *fields.Email,
		Secret: *fields.Secret,
		URL:    *fields.URL,
	}, nil
}

func secretEqual(got, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}
