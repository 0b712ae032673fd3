// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/logging"
)

const (
	// DefaultTimeout is the default HTTP timeout for Zoom requests
	DefaultTimeout = 30 * time.Second
	// Default retry configuration for 429 and 5xx responses
	DefaultMaxRetries        = 2
	DefaultInitialBackoff    = 1 * time.Second
	DefaultMaxBackoff        = 30 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// Config holds the configuration for HTTPTransport
type Config struct {
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// InsecureSkipVerify disables TLS certificate verification. Only meant for
	// trusted test hosts.
	InsecureSkipVerify bool
	// Optional: retry configuration. A negative MaxRetries disables retries.
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	// Optional: base round tripper, mostly for tests
	Base http.RoundTripper
}

// HTTPTransport is the net/http implementation of Transport.
type HTTPTransport struct {
	httpClient *http.Client
	config     Config
}

// Ensure that HTTPTransport implements Transport
var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a transport, filling in defaults for unset fields.
func NewHTTPTransport(config Config) *HTTPTransport {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = DefaultInitialBackoff
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = DefaultMaxBackoff
	}
	if config.BackoffMultiplier == 0 {
		config.BackoffMultiplier = DefaultBackoffMultiplier
	}

	base := config.Base
	if base == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if config.InsecureSkipVerify {
			slog.Warn("TLS certificate verification is disabled for Zoom requests",
				"insecure_skip_verify", true)
			t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		}
		base = t
	}

	return &HTTPTransport{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(base),
		},
		config: config,
	}
}

// shouldRetry reports whether a status is worth another attempt
func shouldRetry(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= 500 && statusCode < 600)
}

// calculateBackoff calculates the backoff duration for a retry attempt with jitter
func (t *HTTPTransport) calculateBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return t.config.InitialBackoff
	}

	backoff := float64(t.config.InitialBackoff) * math.Pow(t.config.BackoffMultiplier, float64(attempt))
	if time.Duration(backoff) > t.config.MaxBackoff {
		backoff = float64(t.config.MaxBackoff)
	}

	// ±25% jitter
	jitter := backoff * 0.25 * (rand.Float64()*2 - 1)
	backoffWithJitter := time.Duration(backoff + jitter)
	if backoffWithJitter < t.config.InitialBackoff {
		backoffWithJitter = t.config.InitialBackoff
	}

	return backoffWithJitter
}

// Execute sends req to baseURL+req.Path and returns the raw response.
func (t *HTTPTransport) Execute(ctx context.Context, baseURL string, req *Request) ([]byte, error) {
	if req == nil {
		return nil, &Error{Code: CodeUnknown, Message: "nil request"}
	}

	target := buildURL(baseURL, req.Path, req.Query)

	for attempt := 0; ; attempt++ {
		httpReq, err := t.createRequest(ctx, target, req)
		if err != nil {
			return nil, &Error{Code: CodeUnknown, Message: err.Error(), Err: err}
		}

		startTime := time.Now()
		resp, err := t.do(httpReq, req.Options)
		duration := time.Since(startTime)
		if err != nil {
			slog.ErrorContext(ctx, "Zoom request failed",
				"method", req.Method,
				"path", req.Path,
				"duration", duration.String(),
				"attempt", attempt+1,
				logging.ErrKey, err)
			return nil, NewError(err)
		}

		raw, readErr := dumpResponse(resp)
		if readErr != nil {
			return nil, NewError(readErr)
		}

		if !shouldRetry(resp.StatusCode) || attempt >= t.config.MaxRetries {
			t.logResponse(ctx, req, resp.StatusCode, duration, attempt)
			return raw, nil
		}

		backoff := t.calculateBackoff(attempt)
		slog.WarnContext(ctx, "Zoom request failed, retrying",
			"method", req.Method,
			"path", req.Path,
			"status", resp.StatusCode,
			"duration", duration.String(),
			"attempt", attempt+1,
			"max_retries", t.config.MaxRetries,
			"backoff", backoff.String())

		select {
		case <-ctx.Done():
			return nil, NewError(ctx.Err())
		case <-time.After(backoff):
		}
	}
}

func (t *HTTPTransport) do(req *http.Request, opts *Options) (*http.Response, error) {
	if opts == nil || opts.Timeout == 0 {
		return t.httpClient.Do(req)
	}
	client := *t.httpClient
	client.Timeout = opts.Timeout
	return client.Do(req)
}

func (t *HTTPTransport) logResponse(ctx context.Context, req *Request, status int, duration time.Duration, attempt int) {
	if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
		slog.ErrorContext(ctx, "Zoom request failed after all retries",
			"method", req.Method,
			"path", req.Path,
			"status", status,
			"duration", duration.String(),
			"attempts", attempt+1,
			logging.PriorityCritical())
		return
	}
	slog.DebugContext(ctx, "Zoom request completed",
		"method", req.Method,
		"path", req.Path,
		"status", status,
		"duration", duration.String(),
		"attempt", attempt+1)
}

// createRequest builds the http.Request. GET never carries a body.
func (t *HTTPTransport) createRequest(ctx context.Context, target string, req *Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = MethodGet
	}

	var body io.Reader
	if method != MethodGet && req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for _, h := range req.Headers {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if strings.EqualFold(name, "Host") {
			httpReq.Host = value
			continue
		}
		httpReq.Header.Add(name, value)
	}

	if req.Options != nil && req.Options.CloseConnection {
		httpReq.Close = true
	}

	return httpReq, nil
}

func buildURL(baseURL, path string, query map[string]string) string {
	target := strings.TrimRight(baseURL, "/") + path
	if len(query) == 0 {
		return target
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(query[k]))
	}

	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + sb.String()
}

// dumpResponse renders resp back into wire form so that every caller parses
// responses the same way, whatever transport produced them.
func dumpResponse(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var buf bytes.Buffer
	proto := resp.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}
	fmt.Fprintf(&buf, "%s %d %s\r\n", proto, resp.StatusCode, statusText(resp))

	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range resp.Header[name] {
			fmt.Fprintf(&buf, "%s: %s\r\n", name, v)
		}
	}
	buf.WriteString("\r\n")
	buf.Write(body)

	return buf.Bytes(), nil
}

func statusText(resp *http.Response) string {
	if _, text, ok := strings.Cut(resp.Status, " "); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
