package kvcache

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// RetryOption bounds how many times and for how long per attempt
// NewSDLFetcher retries a subgraph before giving up.
type RetryOption struct {
	Attempts int    `yaml:"attempts" default:"3"`
	Timeout  string `yaml:"timeout" default:"5s"`
}

type serviceSDLResponse struct {
	Data struct {
		Service struct {
			SDL string `json:"sdl"`
		} `json:"_service"`
	} `json:"data"`
}

// NewSDLFetcher returns a Fetcher keyed by subgraph endpoint that resolves
// to that subgraph's SDL text, for use with Cache[string, string].
// cmd/fedcore's composeStatic wraps it in such a Cache for the subgraphs
// configured with an endpoint but no schema files; the registry does not
// use it.
func NewSDLFetcher(httpClient *http.Client, retry RetryOption) Fetcher[string, string] {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return func(ctx context.Context, endpoint string) (string, error) {
		return fetchSDL(ctx, endpoint, httpClient, retry)
	}
}

// fetchSDL sends `{ _service { sdl } }` to endpoint, retrying up to
// retry.Attempts times with a per-attempt timeout.
func fetchSDL(ctx context.Context, endpoint string, httpClient *http.Client, retry RetryOption) (string, error) {
	attempts := retry.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	timeout := 5 * time.Second
	if retry.Timeout != "" {
		if d, err := time.ParseDuration(retry.Timeout); err == nil {
			timeout = d
		}
	}

	body := []byte(`{"query":"{_service{sdl}}"}`)

	var lastErr error
	for i := 0; i < attempts; i++ {
		sdl, err := doFetchSDL(ctx, endpoint, httpClient, body, timeout)
		if err == nil {
			return sdl, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("failed to fetch SDL from %s after %d attempt(s): %w", endpoint, attempts, lastErr)
}

func doFetchSDL(ctx context.Context, endpoint string, httpClient *http.Client, body []byte, timeout time.Duration) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building SDL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, endpoint)
	}

	var svcResp serviceSDLResponse
	if err := json.NewDecoder(resp.Body).Decode(&svcResp); err != nil {
		return "", fmt.Errorf("failed to decode SDL response: %w", err)
	}

	if svcResp.Data.Service.SDL == "" {
		return "", fmt.Errorf("empty SDL returned from %s", endpoint)
	}

	return svcResp.Data.Service.SDL, nil
}
