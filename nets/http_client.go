package nets

import (
	"net/http"
	"time"
)

// HTTPClient is shared by the page renderer, the file fetcher, the answer
// submitter and the OpenAI-compatible reasoning clients. Per-request
// deadlines come from the caller's context.
type HTTPClient = *http.Client

func (Module) HTTPClient(
	dialer Dialer,
) HTTPClient {
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			Proxy:                 nil,
			MaxIdleConnsPerHost:   8,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
	}
}
