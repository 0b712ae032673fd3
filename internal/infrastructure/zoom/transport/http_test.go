// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetries() Config {
	return Config{
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestNewHTTPTransport_Defaults(t *testing.T) {
	tr := NewHTTPTransport(Config{})
	if tr.config.Timeout != DefaultTimeout {
		t.Errorf("expected Timeout %v, got %v", DefaultTimeout, tr.config.Timeout)
	}
	if tr.config.MaxRetries != DefaultMaxRetries {
		t.Errorf("expected MaxRetries %d, got %d", DefaultMaxRetries, tr.config.MaxRetries)
	}
	if tr.httpClient.Timeout != DefaultTimeout {
		t.Errorf("expected HTTP client timeout %v, got %v", DefaultTimeout, tr.httpClient.Timeout)
	}

	noRetry := NewHTTPTransport(Config{MaxRetries: -1})
	if noRetry.config.MaxRetries != 0 {
		t.Errorf("expected retries disabled, got %d", noRetry.config.MaxRetries)
	}
}

func TestHTTPTransport_Execute(t *testing.T) {
	var captured *http.Request
	var capturedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		capturedBody, _ = io.ReadAll(r.Body)
		http.SetCookie(w, &http.Cookie{Name: "a", Value: "1"})
		http.SetCookie(w, &http.Cookie{Name: "b", Value: "2"})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"u1"}`))
	}))
	defer server.Close()

	tr := NewHTTPTransport(Config{})
	raw, err := tr.Execute(context.Background(), server.URL+"/v2", &Request{
		Method: MethodPatch,
		Path:   "/users/u1",
		Headers: []string{
			"Content-Type: application/json",
			"Authorization: Bearer abc",
			"X-Trace:one",
			"X-Trace: two",
			"no-colon-is-skipped",
		},
		Query: map[string]string{"login_type": "100", "a": "b c"},
		Body:  []byte(`{"first_name":"Ada"}`),
	})
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, http.MethodPatch, captured.Method)
	assert.Equal(t, "/v2/users/u1", captured.URL.Path)
	assert.Equal(t, "a=b+c&login_type=100", captured.URL.RawQuery)
	assert.Equal(t, "Bearer abc", captured.Header.Get("Authorization"))
	assert.Equal(t, []string{"one", "two"}, captured.Header.Values("X-Trace"))
	assert.Equal(t, `{"first_name":"Ada"}`, string(capturedBody))

	resp := ParseResponse(raw)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Created", resp.StatusText)
	assert.Equal(t, "application/json", resp.Get("Content-Type"))
	assert.Equal(t, []string{"a=1", "b=2"}, resp.Cookies())
	assert.Equal(t, `{"id":"u1"}`, string(resp.Body))
}

func TestHTTPTransport_GetSendsNoBody(t *testing.T) {
	var gotBody []byte
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tr := NewHTTPTransport(Config{})
	_, err := tr.Execute(context.Background(), server.URL, &Request{
		Method: MethodGet,
		Path:   "/users",
		Body:   []byte("ignored"),
	})
	require.NoError(t, err)
	assert.Empty(t, gotBody)
	assert.Empty(t, gotQuery)
}

func TestHTTPTransport_NonSuccessIsNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":1001,"message":"User does not exist"}`))
	}))
	defer server.Close()

	tr := NewHTTPTransport(fastRetries())
	raw, err := tr.Execute(context.Background(), server.URL, &Request{Method: MethodGet, Path: "/users/x"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, ParseResponse(raw).StatusCode)
}

func TestHTTPTransport_RetryBehavior(t *testing.T) {
	tests := []struct {
		name          string
		statuses      []int
		maxRetries    int
		expectCalls   int32
		expectedFinal int
	}{
		{"succeeds first time", []int{200}, 2, 1, 200},
		{"retries 503 then succeeds", []int{503, 200}, 2, 2, 200},
		{"retries 429 then succeeds", []int{429, 429, 200}, 2, 3, 200},
		{"gives up after max retries", []int{500, 500, 500, 500}, 2, 3, 500},
		{"does not retry 4xx", []int{400, 200}, 2, 1, 400},
		{"retries disabled", []int{503, 200}, -1, 1, 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				n := atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.statuses[n-1])
			}))
			defer server.Close()

			cfg := fastRetries()
			cfg.MaxRetries = tt.maxRetries
			tr := NewHTTPTransport(cfg)

			raw, err := tr.Execute(context.Background(), server.URL, &Request{Method: MethodGet, Path: "/users"})
			require.NoError(t, err)
			assert.Equal(t, tt.expectCalls, atomic.LoadInt32(&calls))
			assert.Equal(t, tt.expectedFinal, ParseResponse(raw).StatusCode)
		})
	}
}

func TestHTTPTransport_NetworkErrorNotRetried(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	tr := NewHTTPTransport(fastRetries())
	raw, err := tr.Execute(context.Background(), "http://"+addr, &Request{Method: MethodGet, Path: "/users"})
	assert.Nil(t, raw)

	var transportErr *Error
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, CodeConnection, transportErr.Code)
	assert.NotEmpty(t, transportErr.Message)
}

func TestHTTPTransport_Timeouts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tr := NewHTTPTransport(Config{})
	_, err := tr.Execute(context.Background(), server.URL, &Request{
		Method:  MethodGet,
		Path:    "/slow",
		Options: &Options{Timeout: 20 * time.Millisecond, CloseConnection: true},
	})

	var transportErr *Error
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, CodeTimeout, transportErr.Code)
}

func TestHTTPTransport_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := fastRetries()
	cfg.InitialBackoff = time.Second
	cfg.MaxBackoff = time.Second
	tr := NewHTTPTransport(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := tr.Execute(ctx, server.URL, &Request{Method: MethodGet, Path: "/users"})
	var transportErr *Error
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, CodeTimeout, transportErr.Code)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCalculateBackoff(t *testing.T) {
	tr := NewHTTPTransport(Config{
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        time.Second,
		BackoffMultiplier: 2,
	})

	if got := tr.calculateBackoff(0); got != 100*time.Millisecond {
		t.Errorf("expected initial backoff, got %v", got)
	}
	for attempt := 1; attempt < 10; attempt++ {
		got := tr.calculateBackoff(attempt)
		if got < 100*time.Millisecond || got > 1250*time.Millisecond {
			t.Errorf("attempt %d: backoff %v out of range", attempt, got)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		path     string
		query    map[string]string
		expected string
	}{
		{"no query", "https://api.zoom.us/v2", "/users", nil, "https://api.zoom.us/v2/users"},
		{"trailing slash on base", "https://api.zoom.us/v2/", "/users", nil, "https://api.zoom.us/v2/users"},
		{"sorted query", "https://api.zoom.us/v2", "/users", map[string]string{"page_size": "50", "page_number": "2"}, "https://api.zoom.us/v2/users?page_number=2&page_size=50"},
		{"path already has query", "https://api.zoom.us/v2", "/users?status=active", map[string]string{"page_number": "1"}, "https://api.zoom.us/v2/users?status=active&page_number=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildURL(tt.base, tt.path, tt.query))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"canceled", context.Canceled, CodeCanceled},
		{"deadline", context.DeadlineExceeded, CodeTimeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "zoom.invalid"}, CodeDNS},
		{"connection", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, CodeConnection},
		{"unknown", errors.New("boom"), CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewError(tt.err).Code)
		})
	}
}
