package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	dataview "github.com/goliatone/go-dataview/components/dataview"
)

// ErrUnauthorized is returned when the backend rejects the credentials.
var ErrUnauthorized = errors.New("rest: unauthorized")

// Config configures the REST client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	CacheSize  int
	CacheTTL   time.Duration
	Tokens     TokenSource
	Logger     dataview.Logger
}

// Client talks to the marketplace REST API and implements dataview.Backend.
type Client struct {
	http   *resty.Client
	tokens TokenSource
	cache  *expirable.LRU[string, dataview.Record]
	logger dataview.Logger
}

var _ dataview.Backend = (*Client)(nil)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rest: backend returned %d: %s", e.Status, e.Message)
}

// NewClient builds a client with retries on network and server errors.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("rest: base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	httpClient.AddRetryCondition(retryCondition)

	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	return &Client{
		http:   httpClient,
		tokens: cfg.Tokens,
		cache:  expirable.NewLRU[string, dataview.Record](cfg.CacheSize, nil, cfg.CacheTTL),
		logger: logger,
	}, nil
}

// List fetches the whole collection from GET <endpoint>; the response is {"data": [...]}.
func (c *Client) List(ctx context.Context, resource dataview.ResourceConfig) ([]dataview.Record, error) {
	var envelope struct {
		Data []dataview.Record `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, resource.Endpoint, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		envelope.Data = []dataview.Record{}
	}
	return envelope.Data, nil
}

// Get fetches GET <endpoint>/<id>. Results are cached until a mutation touches the record.
func (c *Client) Get(ctx context.Context, resource dataview.ResourceConfig, id string) (dataview.Record, error) {
	key := cacheKey(resource, id)
	if record, ok := c.cache.Get(key); ok {
		return record.Clone(), nil
	}
	var body map[string]any
	if err := c.do(ctx, http.MethodGet, recordPath(resource, id, ""), nil, &body); err != nil {
		return nil, err
	}
	record := unwrapRecord(body)
	if record == nil {
		return nil, fmt.Errorf("rest: %s %s: %w", resource.Code, id, dataview.ErrRecordNotFound)
	}
	c.cache.Add(key, record)
	return record.Clone(), nil
}

// Execute sends a row action to <endpoint>/<id>[/<path>] and reports the server's view of the record.
func (c *Client) Execute(ctx context.Context, resource dataview.ResourceConfig, id string, action dataview.RowAction) (dataview.ActionResult, error) {
	method := strings.ToUpper(action.Method)
	switch {
	case action.Deletes && method == "":
		method = http.MethodDelete
	case method == "":
		method = http.MethodPatch
	}
	var body any
	if len(action.Body) > 0 {
		body = action.Body
	}
	var payload map[string]any
	err := c.do(ctx, method, recordPath(resource, id, action.Path), body, &payload)
	c.cache.Remove(cacheKey(resource, id))
	if err != nil {
		return dataview.ActionResult{}, err
	}
	return parseActionResult(payload), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, target any) error {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		tokens, err := c.tokens.Tokens(ctx)
		if err != nil {
			return err
		}
		req.SetAuthToken(tokens.Access)
		if tokens.Refresh != "" {
			req.SetHeader("X-Refresh-Token", tokens.Refresh)
		}
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("rest: %s %s: %w", method, path, err)
	}
	c.logger.Debug("backend request", "method", method, "path", path, "status", resp.StatusCode())
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return fmt.Errorf("%w: %s %s", ErrUnauthorized, method, path)
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Message: errorMessage(resp.Body())}
	}
	if target == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), target); err != nil {
		return fmt.Errorf("rest: decode %s %s: %w", method, path, err)
	}
	return nil
}

// retryCondition retries reads only. A write that timed out may already have
// been applied, so it is reported to the caller instead of being replayed.
func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

func recordPath(resource dataview.ResourceConfig, id, suffix string) string {
	path := strings.TrimRight(resource.Endpoint, "/") + "/" + url.PathEscape(id)
	if suffix = strings.Trim(suffix, "/"); suffix != "" {
		path += "/" + suffix
	}
	return path
}

func cacheKey(resource dataview.ResourceConfig, id string) string {
	return resource.Code + "/" + id
}

// unwrapRecord accepts both {"data": {...}} and a bare object.
func unwrapRecord(body map[string]any) dataview.Record {
	if body == nil {
		return nil
	}
	if data, ok := body["data"].(map[string]any); ok {
		return dataview.Record(data)
	}
	if _, ok := body["data"]; ok {
		return nil
	}
	return dataview.Record(body)
}

func parseActionResult(body map[string]any) dataview.ActionResult {
	if len(body) == 0 {
		return dataview.ActionResult{Success: true}
	}
	if flag, ok := body["success"].(bool); ok {
		result := dataview.ActionResult{Success: flag}
		if data, ok := body["data"].(map[string]any); ok && flag {
			result.Record = dataview.Record(data)
		}
		return result
	}
	return dataview.ActionResult{Success: true, Record: unwrapRecord(body)}
}

func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
