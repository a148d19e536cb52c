package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/pulsefit/internal/catalog"
	"github.com/meltforce/pulsefit/internal/models"
	"github.com/meltforce/pulsefit/internal/storage"
)

// HTTPClient implements DataSource by calling the PulseFit REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// errStatus carries a non-200 response status.
type errStatus struct {
	path string
	code int
	body string
}

func (e *errStatus) Error() string {
	return fmt.Sprintf("httpclient: %s returned %d: %s", e.path, e.code, e.body)
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
		return nil, &errStatus{path: path, code: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	return body, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var se *errStatus
	return errors.As(err, &se) && se.code == http.StatusNotFound
}

func (c *HTTPClient) ListWorkouts(ctx context.Context, category models.Category) ([]models.Workout, error) {
	params := url.Values{}
	if category != "" {
		params.Set("category", string(category))
	}
	var workouts []models.Workout
	if err := c.getJSON(ctx, "/api/v1/workouts", params, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, id string) (models.Workout, error) {
	var w models.Workout
	err := c.getJSON(ctx, "/api/v1/workouts/"+url.PathEscape(id), nil, &w)
	if isNotFound(err) {
		return models.Workout{}, fmt.Errorf("workout %q: %w", id, catalog.ErrNotFound)
	}
	return w, err
}

func (c *HTTPClient) GetUserProfile(ctx context.Context) (*models.UserProfile, error) {
	var p models.UserProfile
	err := c.getJSON(ctx, "/api/v1/profile", nil, &p)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) Dashboard(ctx context.Context) (storage.Dashboard, error) {
	var d storage.Dashboard
	err := c.getJSON(ctx, "/api/v1/home", nil, &d)
	return d, err
}

func (c *HTTPClient) ListSessions(ctx context.Context, limit int) ([]models.SessionRecord, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var recs []models.SessionRecord
	if err := c.getJSON(ctx, "/api/v1/history", params, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
