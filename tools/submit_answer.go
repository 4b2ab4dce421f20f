package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"

	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/nets"
)

// SubmitAnswer posts payload as JSON to url. The result always carries
// status_code; transport failures report -1 with an error.
type SubmitAnswer func(ctx context.Context, url string, payload map[string]any) map[string]any

func (Module) SubmitAnswer(
	client nets.HTTPClient,
	timeouts Timeouts,
	logger logs.Logger,
) SubmitAnswer {
	return func(ctx context.Context, url string, payload map[string]any) map[string]any {
		payload = fillIdentity(ctx, payload)
		logger.InfoContext(ctx, "submit answer",
			"url", url,
			"keys", slices.Sorted(maps.Keys(payload)),
		)

		failed := func(msg string) map[string]any {
			logger.ErrorContext(ctx, "submit answer", "error", msg)
			return map[string]any{
				"error":       msg,
				"status_code": -1,
			}
		}

		body, err := json.Marshal(payload)
		if err != nil {
			return failed(fmt.Sprintf("Failed to serialize payload: %v", err))
		}

		timeout := timeouts.Of(SubmitAnswerName)
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return failed(fmt.Sprintf("Error sending POST request: %v", err))
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return failed("Request timed out after " + describeDuration(timeout))
			}
			return failed(fmt.Sprintf("Error sending POST request: %v", err))
		}
		defer resp.Body.Close()
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return failed(fmt.Sprintf("Error reading response: %v", err))
		}

		var response any
		if err := json.Unmarshal(respBody, &response); err != nil {
			response = map[string]any{
				"text": string(respBody),
			}
		}

		logger.InfoContext(ctx, "answer submitted", "status", resp.StatusCode)
		if m, ok := response.(map[string]any); ok {
			for _, key := range []string{"correct", "url", "reason"} {
				if value, ok := m[key]; ok {
					logger.InfoContext(ctx, "submission response", key, value)
				}
			}
		}

		return map[string]any{
			"status_code": resp.StatusCode,
			"response":    response,
		}
	}
}

// fillIdentity returns a copy of payload with email, secret and url taken
// from the run identity where absent.
func fillIdentity(ctx context.Context, payload map[string]any) map[string]any {
	ret := maps.Clone(payload)
	if ret == nil {
		ret = make(map[string]any)
	}
	identity, ok := IdentityOf(ctx)
	if !ok {
		return ret
	}
	fill := func(key, value string) {
		if value == "" {
			return
		}
		if v, ok := ret[key]; ok && v != nil && v != "" {
			return
		}
		ret[key] = value
	}
	fill("email", identity.Email)
	fill("secret", identity.Secret)
	fill("url", identity.URL)
	return ret
}

func submitAnswerCapability(submit SubmitAnswer, timeouts Timeouts) Capability {
	return Capability{
		Decl:    submitAnswerDecl,
		Timeout: timeouts.Of(SubmitAnswerName),
		Func: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			url, _ := args["url"].(string)
			payload, _ := args["payload"].(map[string]any)
			return submit(ctx, url, payload), nil
		},
	}
}
