package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/workoutlog/internal/storage"
	"github.com/claude/workoutlog/internal/workout"
)

// HTTPClient implements Backend by calling a workoutlog server's REST API.
// Used for stdio MCP mode where the binary runs next to the MCP client
// and the server runs elsewhere.
type HTTPClient struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

// RemoteError is a non-200 reply from the workoutlog server. Message and
// Detail are copied from the response body.
type RemoteError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("httpclient: status %d: %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("httpclient: status %d: %s", e.StatusCode, e.Message)
}

// NewHTTPClient creates an HTTPClient targeting the given base URL. secret
// is sent as X-Webhook-Secret when non-empty.
func NewHTTPClient(baseURL, secret string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secret:     secret,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// remoteResponse mirrors the /logWorkout response body.
type remoteResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	SessionPageID string `json:"session_page_id"`
	SetsCreated   int    `json:"sets_created"`
	Error         string `json:"error"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.secret != "" {
		req.Header.Set("X-Webhook-Secret", c.secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: read body: %w", err)
	}
	return resp.StatusCode, data, nil
}

func (c *HTTPClient) LogWorkout(ctx context.Context, payload json.RawMessage) (*workout.Result, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/api/logWorkout", payload)
	if err != nil {
		return nil, err
	}

	var resp remoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if status != http.StatusOK {
			return nil, &RemoteError{StatusCode: status, Message: http.StatusText(status), Detail: string(body)}
		}
		return nil, fmt.Errorf("httpclient: decode logWorkout: %w", err)
	}
	if status != http.StatusOK || !resp.Success {
		return nil, &RemoteError{StatusCode: status, Message: resp.Message, Detail: resp.Error}
	}
	return &workout.Result{SessionPageID: resp.SessionPageID, SetsCreated: resp.SetsCreated}, nil
}

func (c *HTTPClient) RecentSubmissions(ctx context.Context, limit int) ([]storage.Submission, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	status, body, err := c.do(ctx, http.MethodGet, "/api/submissions?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("httpclient: /api/submissions returned %d: %s", status, body)
	}

	var subs []storage.Submission
	if err := json.Unmarshal(body, &subs); err != nil {
		return nil, fmt.Errorf("httpclient: decode submissions: %w", err)
	}
	return subs, nil
}
