package client

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

	"github.com/gorilla/websocket"

	"github.com/groblegark/confstore/internal/events"
	"github.com/groblegark/confstore/internal/model"
)

// HTTPClient implements Client using the confstore HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	userID     string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). userID is sent as the caller identity on
// every request. When token is non-empty, an Authorization header is set too.
func NewHTTPClient(baseURL, token, userID string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		userID:     userID,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

func (c *HTTPClient) CreateConfiguration(ctx context.Context, req *CreateConfigurationRequest) (*model.Configuration, error) {
	var cfg model.Configuration
	if err := c.doJSON(ctx, http.MethodPost, "/v1/configurations", req, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *HTTPClient) GetConfiguration(ctx context.Context, id string) (*model.Configuration, error) {
	var cfg model.Configuration
	if err := c.doJSON(ctx, http.MethodGet, "/v1/configurations/"+url.PathEscape(id), nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *HTTPClient) ListConfigurations(ctx context.Context, req *ListConfigurationsRequest) (*ListConfigurationsResponse, error) {
	q := url.Values{}
	if req.Name != "" {
		q.Set("name", req.Name)
	}
	if req.CreatedFrom != nil {
		q.Set("created_from", req.CreatedFrom.Format(time.RFC3339))
	}
	if req.CreatedTo != nil {
		q.Set("created_to", req.CreatedTo.Format(time.RFC3339))
	}
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	if req.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(req.PageSize))
	}

	path := "/v1/configurations"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListConfigurationsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateConfiguration(ctx context.Context, id string, req *UpdateConfigurationRequest) (*model.Configuration, error) {
	var cfg model.Configuration
	if err := c.doJSON(ctx, http.MethodPut, "/v1/configurations/"+url.PathEscape(id), req, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *HTTPClient) RestoreVersion(ctx context.Context, id string, versionNumber int) (*model.Configuration, error) {
	path := fmt.Sprintf("/v1/configurations/%s/versions/%d/restore", url.PathEscape(id), versionNumber)
	var cfg model.Configuration
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *HTTPClient) ListVersions(ctx context.Context, id string, req *ListVersionsRequest) (*ListVersionsResponse, error) {
	q := url.Values{}
	if req.CreatedFrom != nil {
		q.Set("created_from", req.CreatedFrom.Format(time.RFC3339))
	}
	if req.CreatedTo != nil {
		q.Set("created_to", req.CreatedTo.Format(time.RFC3339))
	}
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	if req.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(req.PageSize))
	}

	path := "/v1/configurations/" + url.PathEscape(id) + "/versions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListVersionsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Subscribe(ctx context.Context, eventTypes []model.EventType) (*model.Subscription, error) {
	body := map[string]any{"event_types": eventTypes}
	var sub model.Subscription
	if err := c.doJSON(ctx, http.MethodPost, "/v1/subscriptions", body, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *HTTPClient) Unsubscribe(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/subscriptions", nil, nil)
}

// Watch dials the websocket notification endpoint and decodes incoming
// payloads until ctx is cancelled or the server closes the connection.
func (c *HTTPClient) Watch(ctx context.Context) (<-chan *events.ConfigurationChanged, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/v1/notifications/ws"

	header := http.Header{}
	header.Set("X-User-ID", c.userID)
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: "websocket dial failed"}
		}
		return nil, fmt.Errorf("dialing %s: %w", wsURL, err)
	}

	ch := make(chan *events.ConfigurationChanged, 16)

	// Close the connection when the context ends; this unblocks the reader.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	go func() {
		defer close(ch)
		defer conn.Close()
		for {
			var n events.ConfigurationChanged
			if err := conn.ReadJSON(&n); err != nil {
				return
			}
			select {
			case ch <- &n:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-User-ID", c.userID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content — success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
