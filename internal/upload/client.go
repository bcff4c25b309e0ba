// Package upload sends chat exports to a remote Pocket Lifts server and
// remembers which ones were already applied.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/pocketlifts/internal/importer"
	"github.com/claude/pocketlifts/internal/ingest"
)

// maxAttempts bounds retries of a single request.
const maxAttempts = 3

// Client sends import requests to a Pocket Lifts server over HTTP.
type Client struct {
	serverURL  string
	httpClient *http.Client
	retryWait  time.Duration
}

// NewClient creates a new HTTP client for the Pocket Lifts server.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		retryWait: time.Second,
	}
}

// retryableError marks failures worth another attempt.
type retryableError struct{ err error }

func (e retryableError) Error() string { return e.err.Error() }
func (e retryableError) Unwrap() error { return e.err }

// ProposeImport posts the export text and returns the server's proposal.
// A 409 means a newer import superseded this one and maps to
// importer.ErrSuperseded.
func (c *Client) ProposeImport(ctx context.Context, source string, data []byte) (*importer.Proposal, error) {
	path := "/api/v1/import/proposal?source=" + url.QueryEscape(source)
	var p importer.Proposal
	if err := c.post(ctx, path, "text/plain; charset=utf-8", data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ApplyImport asks the server to add the selected candidates.
func (c *Client) ApplyImport(ctx context.Context, source string, cands []importer.Candidate) (ingest.Result, error) {
	data, err := json.Marshal(map[string]any{
		"source":     source,
		"candidates": cands,
	})
	if err != nil {
		return ingest.Result{}, fmt.Errorf("marshaling apply request: %w", err)
	}

	var res ingest.Result
	if err := c.post(ctx, "/api/v1/import/apply", "application/json", data, &res); err != nil {
		return ingest.Result{}, err
	}
	return res, nil
}

// post sends data and decodes a 200 response into out. Network errors and
// 5xx responses are retried with exponential backoff.
func (c *Client) post(ctx context.Context, path, contentType string, data []byte, out any) error {
	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			select {
			case <-time.After(c.retryWait << uint(attempt-1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := c.postOnce(ctx, path, contentType, data, out)
		var re retryableError
		if !errors.As(err, &re) {
			return err
		}
		lastErr = re.err
	}
	return fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) postOnce(ctx context.Context, path, contentType string, data []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return retryableError{err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return retryableError{fmt.Errorf("reading response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusConflict && strings.HasPrefix(path, "/api/v1/import/proposal"):
		return importer.ErrSuperseded
	case resp.StatusCode >= 500:
		return retryableError{fmt.Errorf("%s failed (status %d): %s", path, resp.StatusCode, bytes.TrimSpace(body))}
	default:
		return fmt.Errorf("%s failed (status %d): %s", path, resp.StatusCode, bytes.TrimSpace(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
