package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"slices"

	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/nets"
)

// BrowserCommand renders a page to stdout when the url is appended. Empty
// means pages are fetched without script execution.
type BrowserCommand []string

func (Module) BrowserCommand(
	loader configs.Loader,
	logger logs.Logger,
) (ret BrowserCommand) {
	defer func() {
		logger.Info("browser command", "command", ret)
	}()
	if command := configs.First[[]string](loader, "browser_command"); len(command) > 0 {
		return command
	}
	for _, name := range []string{
		"chromium",
		"chromium-browser",
		"google-chrome",
		"google-chrome-stable",
	} {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		return BrowserCommand{
			path,
			"--headless",
			"--no-sandbox",
			"--disable-gpu",
			"--disable-dev-shm-usage",
			"--no-first-run",
			"--virtual-time-budget=2000",
			"--dump-dom",
		}
	}
	return nil
}

// RenderPage returns the markup of url after client-side scripts ran.
type RenderPage func(ctx context.Context, url string) (string, error)

func (Module) RenderPage(
	browser BrowserCommand,
	client nets.HTTPClient,
	timeouts Timeouts,
	logger logs.Logger,
) RenderPage {
	return func(ctx context.Context, url string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, timeouts.Of(RenderPageName))
		defer cancel()
		logger.InfoContext(ctx, "render page", "url", url)

		if len(browser) == 0 {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return "", err
			}
			resp, err := client.Do(req)
			if err != nil {
				return "", err
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return "", err
			}
			logger.InfoContext(ctx, "page fetched",
				"url", url,
				"status", resp.StatusCode,
				"length", len(body),
			)
			return string(body), nil
		}

		args := append(slices.Clone(browser[1:]), url)
		cmd := exec.CommandContext(ctx, browser[0], args...)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("render timed out: %w", context.Cause(ctx))
			}
			return "", fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes()))
		}
		logger.InfoContext(ctx, "page rendered",
			"url", url,
			"length", stdout.Len(),
		)
		return stdout.String(), nil
	}
}

func renderPageCapability(render RenderPage, timeouts Timeouts) Capability {
	return Capability{
		Decl:    renderPageDecl,
		Timeout: timeouts.Of(RenderPageName),
		Func: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			url, _ := args["url"].(string)
			html, err := render(ctx, url)
			if err != nil {
				return map[string]any{
					"error": fmt.Sprintf("Error: Error scraping %s: %v", url, err),
				}, nil
			}
			return map[string]any{
				"html": html,
			}, nil
		},
	}
}
