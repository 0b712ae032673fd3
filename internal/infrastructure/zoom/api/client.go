// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/oauth"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/token"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/transport"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/logging"
)

const (
	// BaseURL is the base URL for Zoom API
	BaseURL = "https://api.zoom.us/v2"
	// DefaultClientTimeout is the default HTTP client timeout for Zoom API requests
	DefaultClientTimeout = 30 * time.Second
	// DefaultMaxPages caps every paginated listing
	DefaultMaxPages = 1000
	// CodeAccessTokenExpired is the application error code Zoom puts in the body
	// when the bearer token has expired
	CodeAccessTokenExpired = 124

	// one original attempt plus one after a token refresh
	maxSendAttempts = 2

	tracerName = "github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/api"
)

// ClientAPI defines the interface for Zoom API operations
// This allows for easy mocking and testing of the Zoom client
type ClientAPI interface {
	UsersAPI
	MeetingsAPI
	MetricsAPI
	GroupsAPI
}

// UsersAPI covers the /users endpoints
type UsersAPI interface {
	GetAllUsers(ctx context.Context, withDetails bool) ([]User, error)
	CreateUser(ctx context.Context, request *CreateUserRequest) (*User, error)
	IsEmailExists(ctx context.Context, email string) (bool, error)
	UpdateUser(ctx context.Context, userID string, request *UpdateUserRequest) error
	GetUserInfo(ctx context.Context, userID string) (*User, error)
	UpdateUserPicture(ctx context.Context, userID string, picture Picture) error
}

// MeetingsAPI covers meeting and past meeting endpoints
type MeetingsAPI interface {
	ListMeetings(ctx context.Context, userID string, listType MeetingListType) ([]Meeting, error)
	GetPastMeetingDetails(ctx context.Context, meetingUUID string) (*PastMeeting, error)
	GetPastMeetingParticipants(ctx context.Context, meetingUUID string) ([]PastMeetingParticipant, error)
	CreateMeeting(ctx context.Context, userID string, request *CreateMeetingRequest) (*CreateMeetingResponse, error)
	UpdateMeeting(ctx context.Context, meetingID string, request *UpdateMeetingRequest) error
	DeleteMeeting(ctx context.Context, meetingID string) error
}

// MetricsAPI covers the dashboard endpoints
type MetricsAPI interface {
	ListMeetingParticipants(ctx context.Context, meetingID string, metricsType MetricsType) ([]MetricsParticipant, error)
	MetricsMeetings(ctx context.Context, from, to string, metricsType MetricsType) ([]MetricsMeeting, error)
	GetMeetingDetails(ctx context.Context, meetingID string, metricsType MetricsType) (*MetricsMeeting, error)
}

// GroupsAPI covers the /groups endpoints
type GroupsAPI interface {
	AddGroupMember(ctx context.Context, groupID, userID string, idType MemberIDType) (*AddGroupMembersResponse, error)
	GetGroupsList(ctx context.Context) (map[string]Group, error)
	DeleteGroupMember(ctx context.Context, groupID, memberID string) error
}

// ErrAccessTokenExpired matches an *Error whose code is 124.
var ErrAccessTokenExpired = errors.New("zoom access token expired")

// Config holds the configuration for the Zoom client
type Config struct {
	oauth.Credentials
	// TokenFile is where the token record is kept when no store is supplied
	TokenFile string
	// AutoRefresh refreshes an expired token once while the client is created
	AutoRefresh bool
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override OAuth endpoints for testing
	TokenURL     string
	AuthorizeURL string
	Scopes       []string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// InsecureSkipVerify disables TLS verification on the default transport
	InsecureSkipVerify bool
	// Optional: retry configuration for 429 and 5xx responses
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	// Optional: ceiling on pages fetched by a single listing
	MaxPages int
}

// Option customizes a Client
type Option func(*Client)

// WithTransport replaces the HTTP transport.
func WithTransport(t transport.Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithTokenStore replaces the file token store.
func WithTokenStore(s token.Store) Option {
	return func(c *Client) {
		c.store = s
	}
}

// WithClock sets the clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// Client represents a Zoom API client
type Client struct {
	config    Config
	transport transport.Transport
	store     token.Store
	oauth     *oauth.Client
	now       func() time.Time

	mu           sync.Mutex
	lastResponse *transport.Response
}

// Ensure that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)

// NewClient creates a new Zoom API client and loads the stored token. With
// AutoRefresh set, an expired token is refreshed exactly once.
func NewClient(ctx context.Context, config Config, opts ...Option) *Client {
	// Set defaults if not provided
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	if config.MaxPages <= 0 {
		config.MaxPages = DefaultMaxPages
	}
	if config.TokenFile == "" {
		config.TokenFile = token.DefaultFilename
	}

	c := &Client{config: config, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		c.transport = transport.NewHTTPTransport(transport.Config{
			Timeout:            config.Timeout,
			InsecureSkipVerify: config.InsecureSkipVerify,
			MaxRetries:         config.MaxRetries,
			InitialBackoff:     config.InitialBackoff,
			MaxBackoff:         config.MaxBackoff,
			BackoffMultiplier:  config.BackoffMultiplier,
		})
	}
	if c.store == nil {
		c.store = token.NewFileStore(config.TokenFile, token.WithClock(c.now))
	}

	c.oauth = oauth.NewClient(ctx, oauth.Config{
		Credentials:  config.Credentials,
		TokenURL:     config.TokenURL,
		AuthorizeURL: config.AuthorizeURL,
		Scopes:       config.Scopes,
	}, c.store, c.transport)

	record := c.oauth.Record()
	if config.AutoRefresh && record != nil && record.Expired(c.now()) {
		slog.InfoContext(ctx, "stored Zoom token has expired, refreshing",
			"expired_at", record.ExpiresAt().Format(time.RFC3339))
		if err := c.oauth.Refresh(ctx); err != nil {
			slog.ErrorContext(ctx, "unable to refresh expired Zoom token", logging.ErrKey, err)
		}
	}

	if c.oauth.AccessToken() == "" {
		slog.ErrorContext(ctx, "no Zoom access token available, API calls will be rejected until the app is authorized",
			logging.PriorityCritical())
	}

	return c
}

// OAuth exposes the token lifecycle operations.
func (c *Client) OAuth() *oauth.Client {
	return c.oauth
}

// sendOptions control a single Send call
type sendOptions struct {
	decodeJSON      bool
	refreshOnExpiry bool
}

// SendOption customizes Send
type SendOption func(*sendOptions)

// WithoutJSONDecode leaves the body undecoded. The expired token check needs a
// decoded body, so it is skipped as well.
func WithoutJSONDecode() SendOption {
	return func(o *sendOptions) {
		o.decodeJSON = false
	}
}

// WithoutTokenRefresh returns a code 124 response as is.
func WithoutTokenRefresh() SendOption {
	return func(o *sendOptions) {
		o.refreshOnExpiry = false
	}
}

// Result is the outcome of Send.
type Result struct {
	Response *transport.Response
	// Body is the decoded JSON body, nil when decoding was skipped or failed.
	Body any
}

// Code returns the Zoom application code of an object body, or 0.
func (r *Result) Code() int {
	if r == nil {
		return 0
	}
	obj, ok := r.Body.(map[string]any)
	if !ok {
		return 0
	}
	n, ok := obj["code"].(json.Number)
	if !ok {
		return 0
	}
	code, err := n.Int64()
	if err != nil {
		return 0
	}
	return int(code)
}

// Send executes req with the current bearer token. When the decoded body
// reports an expired token the token is refreshed and the request is sent one
// more time; a second expiry is returned unchanged.
func (c *Client) Send(ctx context.Context, req *transport.Request, opts ...SendOption) (*Result, error) {
	o := sendOptions{decodeJSON: true, refreshOnExpiry: true}
	for _, opt := range opts {
		opt(&o)
	}

	req.Path = normalizePath(req.Path)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "zoom.api.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("zoom.path", req.Path),
		),
	)
	defer span.End()

	var result *Result
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		var err error
		result, err = c.sendOnce(ctx, req, o.decodeJSON)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		span.SetAttributes(attribute.Int("http.response.status_code", result.Response.StatusCode))

		if !o.decodeJSON || !o.refreshOnExpiry || result.Code() != CodeAccessTokenExpired {
			break
		}
		if attempt == maxSendAttempts {
			slog.ErrorContext(ctx, "Zoom access token still expired after refresh",
				"method", req.Method,
				"path", req.Path,
				logging.PriorityCritical())
			break
		}

		slog.WarnContext(ctx, "Zoom access token expired, refreshing and retrying",
			"method", req.Method,
			"path", req.Path)
		span.AddEvent("token refresh")
		if err := c.oauth.Refresh(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "token refresh failed")
			return nil, err
		}
	}

	return result, nil
}

func (c *Client) sendOnce(ctx context.Context, req *transport.Request, decodeJSON bool) (*Result, error) {
	attemptReq := *req
	tok, err := c.oauth.Token()
	if err != nil {
		// Zoom answers with its own error, which reaches the caller as usual
		slog.DebugContext(ctx, "sending Zoom request without a token", logging.ErrKey, err)
	}
	attemptReq.Headers = withBearer(req.Headers, tok)

	raw, err := c.transport.Execute(ctx, c.config.BaseURL, &attemptReq)
	if err != nil {
		return nil, err
	}

	resp := transport.ParseResponse(raw)
	c.mu.Lock()
	c.lastResponse = resp
	c.mu.Unlock()

	result := &Result{Response: resp}
	if decodeJSON {
		result.Body = decodeBody(resp.Body)
	}
	return result, nil
}

// LastResponse returns the most recent parsed response.
func (c *Client) LastResponse() *transport.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResponse
}

// LastHeaders returns the headers of the most recent response.
func (c *Client) LastHeaders() map[string][]string {
	resp := c.LastResponse()
	if resp == nil {
		return nil
	}
	return resp.Headers
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}

// withBearer returns a copy of headers carrying an Authorization header built
// from tok. A nil tok yields an empty bearer.
func withBearer(headers []string, tok *oauth2.Token) []string {
	out := make([]string, 0, len(headers)+1)
	out = append(out, headers...)
	for _, h := range headers {
		name, _, _ := strings.Cut(h, ":")
		if strings.EqualFold(strings.TrimSpace(name), "Authorization") {
			return out
		}
	}
	if tok == nil {
		return append(out, "Authorization: Bearer ")
	}
	return append(out, "Authorization: "+tok.Type()+" "+tok.AccessToken)
}

func decodeBody(body []byte) any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// Error is a Zoom API error response.
type Error struct {
	StatusCode int
	Code       int
	Message    string
	Headers    map[string][]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("zoom API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("zoom API error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
}

// Is lets errors.Is match ErrAccessTokenExpired.
func (e *Error) Is(target error) bool {
	return target == ErrAccessTokenExpired && e.Code == CodeAccessTokenExpired
}

// parseErrorResponse builds an *Error from a failed response
func parseErrorResponse(resp *transport.Response) *Error {
	apiErr := &Error{StatusCode: resp.StatusCode, Headers: resp.Headers}

	var errResp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body, &errResp); err == nil && errResp.Message != "" {
		apiErr.Code = errResp.Code
		apiErr.Message = errResp.Message
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(resp.Body))
	if apiErr.Message == "" {
		apiErr.Message = resp.StatusText
	}
	return apiErr
}

// isFailure reports whether a response should surface as an *Error
func isFailure(resp *transport.Response) bool {
	return resp.StatusCode >= http.StatusBadRequest || resp.StatusCode == 0
}
