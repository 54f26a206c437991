package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dataview "github.com/goliatone/go-dataview/components/dataview"
)

func products() dataview.ResourceConfig {
	res, _ := dataview.NewRegistry().Resource("products")
	return res
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(Config{BaseURL: server.URL, Tokens: tokens, RetryCount: 2})
	require.NoError(t, err)
	return client
}

func TestClientListSendsCredentials(t *testing.T) {
	var seen http.Header
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		assert.Equal(t, "/products", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":[{"id":"1","name":"Alpha"},{"id":2,"name":"Beta"}]}`)
	}, StaticTokens{Access: "acc", Refresh: "ref"})

	records, err := client.List(context.Background(), products())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Alpha", records[0]["name"])
	assert.Equal(t, "2", records[1].ID("id"))

	assert.Equal(t, "Bearer acc", seen.Get("Authorization"))
	assert.Equal(t, "ref", seen.Get("X-Refresh-Token"))
	assert.NotEmpty(t, seen.Get("X-Request-ID"))
}

func TestClientListEmptyData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":null}`)
	}, nil)
	records, err := client.List(context.Background(), products())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"data":[]}`)
	}, nil)
	_, err := client.List(context.Background(), products())
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientDoesNotRetryWrites(t *testing.T) {
	var patches int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			atomic.AddInt32(&patches, 1)
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)
	client, err := NewClient(Config{BaseURL: server.URL, RetryCount: 3})
	require.NoError(t, err)

	plans, _ := dataview.NewRegistry().Resource("subscription_plans")
	toggle, _ := plans.Action("toggle_active")
	_, err = client.Execute(context.Background(), plans, "basic", toggle)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&patches), "a toggle must be sent exactly once")
}

func TestClientUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, StaticTokens{Access: "expired"})
	_, err := client.List(context.Background(), products())
	assert.True(t, errors.Is(err, ErrUnauthorized), "got %v", err)
}

func TestClientMissingCredentials(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Fatalf("request should not be sent without credentials")
	}, StaticTokens{})
	_, err := client.List(context.Background(), products())
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestClientGetCachesUntilMutation(t *testing.T) {
	var gets int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			atomic.AddInt32(&gets, 1)
			_, _ = io.WriteString(w, `{"data":{"id":"7","status":"active"}}`)
		case http.MethodPatch:
			_, _ = io.WriteString(w, `{"success":true}`)
		}
	}, nil)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		record, err := client.Get(ctx, products(), "7")
		require.NoError(t, err)
		assert.Equal(t, "active", record["status"])
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&gets))

	_, err := client.Execute(ctx, products(), "7", dataview.SetField("status", "draft"))
	require.NoError(t, err)
	_, err = client.Get(ctx, products(), "7")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&gets))
}

func TestClientExecute(t *testing.T) {
	var method, path string
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"data":{"id":"o1","status":"shipped","updatedAt":"now"}}`)
	}, nil)
	orders, _ := dataview.NewRegistry().Resource("orders")
	action, _ := orders.Action("set_status")

	result, err := client.Execute(context.Background(), orders, "o1", action.WithValues(map[string]any{"status": "shipped"}))
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "/orders/o1/status", path)
	assert.Equal(t, "shipped", body["status"])
	assert.True(t, result.Success)
	assert.Equal(t, "now", result.Record["updatedAt"])
}

func TestClientExecuteReportsFailureFlag(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"success":false}`)
	}, nil)
	result, err := client.Execute(context.Background(), products(), "1", dataview.DeleteAction())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Nil(t, result.Record)
}

func TestClientExecuteAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"message":"invalid status"}`)
	}, nil)
	_, err := client.Execute(context.Background(), products(), "1", dataview.SetField("status", "x"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "invalid status", apiErr.Message)
}

func TestCookieTokens(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := CookieTokens{Request: req}.Tokens(context.Background())
	assert.ErrorIs(t, err, ErrNoCredentials)

	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "a"})
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "r"})
	tokens, err := CookieTokens{Request: req}.Tokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Tokens{Access: "a", Refresh: "r"}, tokens)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}
