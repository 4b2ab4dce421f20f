package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/nets"
	"github.com/reusee/quizrun/quizconfigs"
)

const defaultFileName = "downloaded_file"

type DownloadError struct {
	StatusCode int
}

func (d DownloadError) Error() string {
	return fmt.Sprintf("Failed to download: HTTP %d", d.StatusCode)
}

// FetchFile downloads rawURL into the files directory and returns the local
// path. An empty filename is derived from the url path.
type FetchFile func(ctx context.Context, rawURL string, filename string) (string, error)

func (Module) FetchFile(
	client nets.HTTPClient,
	dir quizconfigs.FilesDir,
	timeouts Timeouts,
	logger logs.Logger,
) FetchFile {
	return func(ctx context.Context, rawURL string, filename string) (_ string, err error) {
		ctx, cancel := context.WithTimeout(ctx, timeouts.Of(FetchFileName))
		defer cancel()
		logger.InfoContext(ctx, "fetch file", "url", rawURL)

		derived := false
		if filename == "" {
			filename = fileNameFromURL(rawURL)
			derived = filename == defaultFileName
		}
		// no directory traversal
		filename = filepath.Base(filepath.Clean("/" + filename))
		if filename == "/" || filename == "." {
			filename = defaultFileName
			derived = true
		}

		if err := os.MkdirAll(string(dir), 0o755); err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return "", err
		}
		resp, err := client.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", DownloadError{
				StatusCode: resp.StatusCode,
			}
		}
		if resp.ContentLength > 0 {
			logger.InfoContext(ctx, "file size", "bytes", resp.ContentLength)
		}

		tmp, err := os.CreateTemp(string(dir), ".fetch-*")
		if err != nil {
			return "", err
		}
		defer func() {
			if err != nil {
				os.Remove(tmp.Name())
			}
		}()
		n, err := io.Copy(tmp, resp.Body)
		if err != nil {
			tmp.Close()
			return "", err
		}
		if err := tmp.Close(); err != nil {
			return "", err
		}

		if derived {
			if mime, err := mimetype.DetectFile(tmp.Name()); err == nil {
				filename += mime.Extension()
			}
		}

		target := filepath.Join(string(dir), filename)
		if err := os.Rename(tmp.Name(), target); err != nil {
			return "", err
		}
		logger.InfoContext(ctx, "file downloaded",
			"path", target,
			"bytes", n,
		)
		return target, nil
	}
}

func fileNameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return defaultFileName
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "/" || name == "." || strings.HasSuffix(parsed.Path, "/") {
		return defaultFileName
	}
	return name
}

func fetchFileCapability(fetch FetchFile, timeouts Timeouts) Capability {
	return Capability{
		Decl:    fetchFileDecl,
		Timeout: timeouts.Of(FetchFileName),
		Func: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			rawURL, _ := args["url"].(string)
			filename, _ := args["filename"].(string)
			local, err := fetch(ctx, rawURL, filename)
			if err != nil {
				var downloadErr DownloadError
				if errors.As(err, &downloadErr) {
					return map[string]any{
						"error": "Error: " + downloadErr.Error(),
					}, nil
				}
				return map[string]any{
					"error": fmt.Sprintf("Error: Error downloading file: %v", err),
				}, nil
			}
			return map[string]any{
				"path": local,
			}, nil
		},
	}
}
