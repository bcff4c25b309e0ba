package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/pocketlifts/internal/history"
	"github.com/claude/pocketlifts/internal/models"
	"github.com/claude/pocketlifts/internal/stats"
)

// HTTPClient implements DataSource by calling the Pocket Lifts REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but the
// training log lives on a server (reached over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// statusError is returned for non-200 responses.
type statusError struct {
	path   string
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("httpclient: %s returned %d: %s", e.path, e.status, strings.TrimSpace(string(e.body)))
}

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{path: path, status: resp.StatusCode, body: body}
	}

	return body, nil
}

// getJSON fetches path and decodes the body into v. A 404 maps to
// models.ErrNotFound.
func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.status == http.StatusNotFound {
			return fmt.Errorf("%s: %w", path, models.ErrNotFound)
		}
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func movementParam(movement string) url.Values {
	v := url.Values{}
	v.Set("movement", movement)
	return v
}

func (c *HTTPClient) ListMovements(ctx context.Context) ([]models.Movement, error) {
	var movements []models.Movement
	if err := c.getJSON(ctx, "/api/v1/movements", nil, &movements); err != nil {
		return nil, err
	}
	return movements, nil
}

func (c *HTTPClient) QueryWorkouts(ctx context.Context, start, end, movementFilter string) ([]models.Workout, error) {
	params := url.Values{}
	if start != "" {
		params.Set("start", start)
	}
	if end != "" {
		params.Set("end", end)
	}
	if movementFilter != "" {
		params.Set("movement", movementFilter)
	}

	var workouts []models.Workout
	if err := c.getJSON(ctx, "/api/v1/workouts", params, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// GetLastUsed treats a 404 as "no history". The server answers 404 both for
// unknown movements and for movements without sets.
func (c *HTTPClient) GetLastUsed(ctx context.Context, movement string) (*history.LastSet, error) {
	var last history.LastSet
	err := c.getJSON(ctx, "/api/v1/history/last", movementParam(movement), &last)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &last, nil
}

func (c *HTTPClient) SuggestWeight(ctx context.Context, movement string) (history.Suggestion, error) {
	var sug history.Suggestion
	if err := c.getJSON(ctx, "/api/v1/history/suggest", movementParam(movement), &sug); err != nil {
		return history.Suggestion{}, err
	}
	return sug, nil
}

func (c *HTTPClient) GetMovementSummary(ctx context.Context, movement string) (*stats.MovementSummary, error) {
	var sum stats.MovementSummary
	if err := c.getJSON(ctx, "/api/v1/stats/summary", movementParam(movement), &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}

func (c *HTTPClient) GetMovementSummaries(ctx context.Context) ([]stats.MovementSummary, error) {
	var sums []stats.MovementSummary
	if err := c.getJSON(ctx, "/api/v1/stats/summaries", nil, &sums); err != nil {
		return nil, err
	}
	return sums, nil
}
