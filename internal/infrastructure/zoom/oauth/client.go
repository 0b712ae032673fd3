// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package oauth performs the Zoom authorization-code and refresh-token grants
// and keeps the resulting token record in memory and in the token store.
package oauth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/oauth2"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/token"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/transport"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/logging"
)

const (
	// TokenURL is the Zoom OAuth token endpoint
	TokenURL = "https://zoom.us/oauth/token"
	// AuthorizeURL is the Zoom OAuth consent page
	AuthorizeURL = "https://zoom.us/oauth/authorize"

	grantAuthorizationCode = "authorization_code"
	grantRefreshToken      = "refresh_token"

	meterName = "github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/oauth"
)

var (
	// ErrMissingRefreshToken means no refresh token is loaded; the authorization
	// flow has to be run again.
	ErrMissingRefreshToken = errors.New("no refresh token available, authorize the application again")
	// ErrNoToken is returned by Token when nothing has been loaded or exchanged.
	ErrNoToken = errors.New("no zoom token available")
)

// Credentials identify the Zoom OAuth app.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Config holds the configuration for the OAuth client
type Config struct {
	Credentials
	// Optional: override token URL for testing
	TokenURL string
	// Optional: override authorize URL for testing
	AuthorizeURL string
	// Optional: scopes requested on the consent page
	Scopes []string
}

// Client exchanges grants against the Zoom token endpoint.
type Client struct {
	config      Config
	store       token.Store
	transport   transport.Transport
	oauthConfig *oauth2.Config
	exchanges   metric.Int64Counter

	mu     sync.RWMutex
	record *token.Record
}

// Ensure that Client implements oauth2.TokenSource
var _ oauth2.TokenSource = (*Client)(nil)

// NewClient creates an OAuth client and loads the stored token record, if any.
func NewClient(ctx context.Context, config Config, store token.Store, tr transport.Transport) *Client {
	if config.TokenURL == "" {
		config.TokenURL = TokenURL
	}
	if config.AuthorizeURL == "" {
		config.AuthorizeURL = AuthorizeURL
	}

	counter, err := otel.Meter(meterName).Int64Counter("zoom.oauth.token_exchanges",
		metric.WithDescription("Number of token grants sent to the Zoom OAuth endpoint"),
		metric.WithUnit("{exchange}"),
	)
	if err != nil {
		slog.WarnContext(ctx, "unable to create token exchange counter", logging.ErrKey, err)
	}

	c := &Client{
		config:    config,
		store:     store,
		transport: tr,
		exchanges: counter,
		oauthConfig: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURI,
			Scopes:       config.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   config.AuthorizeURL,
				TokenURL:  config.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
	}
	c.Reload(ctx)

	return c
}

// AuthCodeURL returns the Zoom consent page URL carrying state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauthConfig.AuthCodeURL(state)
}

// Reload replaces the in-memory record with the stored one. It reports whether
// a record was found.
func (c *Client) Reload(ctx context.Context) bool {
	record, ok := c.store.Load(ctx)

	c.mu.Lock()
	c.record = record
	c.mu.Unlock()

	if !ok {
		slog.DebugContext(ctx, "no stored Zoom token")
	}
	return ok
}

// Record returns the current token record, or nil.
func (c *Client) Record() *token.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.record
}

// AccessToken returns the current bearer token, or "" when none is loaded.
func (c *Client) AccessToken() string {
	record := c.Record()
	if record == nil {
		return ""
	}
	return record.Data.AccessToken()
}

// Token implements oauth2.TokenSource over the current record. It never
// refreshes; refreshing is driven by the API client.
func (c *Client) Token() (*oauth2.Token, error) {
	record := c.Record()
	if record == nil || record.Data.AccessToken() == "" {
		return nil, ErrNoToken
	}
	return record.OAuth2Token(), nil
}

// ExchangeAuthorizationCode trades the code from the consent redirect for a token.
func (c *Client) ExchangeAuthorizationCode(ctx context.Context, code string) error {
	form := url.Values{
		"grant_type":   {grantAuthorizationCode},
		"code":         {code},
		"redirect_uri": {c.config.RedirectURI},
	}
	return c.exchange(ctx, grantAuthorizationCode, form)
}

// Refresh trades the loaded refresh token for a new token.
func (c *Client) Refresh(ctx context.Context) error {
	record := c.Record()
	if record == nil || record.Data.RefreshToken() == "" {
		slog.ErrorContext(ctx, "cannot refresh Zoom token",
			logging.ErrKey, ErrMissingRefreshToken,
			logging.PriorityCritical())
		c.count(ctx, grantRefreshToken, "missing_refresh_token")
		return ErrMissingRefreshToken
	}

	form := url.Values{
		"grant_type":    {grantRefreshToken},
		"refresh_token": {record.Data.RefreshToken()},
	}
	return c.exchange(ctx, grantRefreshToken, form)
}

func (c *Client) exchange(ctx context.Context, grant string, form url.Values) error {
	ctx = logging.AppendCtx(ctx, slog.String("grant_type", grant))

	raw, err := c.transport.Execute(ctx, c.config.TokenURL, &transport.Request{
		Method: transport.MethodPost,
		Headers: []string{
			"Authorization: Basic " + c.basicAuth(),
			"Content-Type: application/x-www-form-urlencoded",
			"Accept: application/json",
		},
		Body: []byte(form.Encode()),
	})
	if err != nil {
		slog.ErrorContext(ctx, "Zoom token request failed", logging.ErrKey, err)
		c.count(ctx, grant, "transport_error")
		return err
	}

	resp := transport.ParseResponse(raw)
	payload := token.ParsePayload(resp.Body)

	record, err := c.store.Save(ctx, payload)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrMissingAccessToken):
			err = rejection(resp, payload)
			c.count(ctx, grant, "rejected")
		case domain.GetErrorType(err) == domain.ErrorTypeConflict:
			// another process stored a token first, continue with that one
			c.count(ctx, grant, "conflict")
			if c.Reload(ctx) {
				slog.WarnContext(ctx, "Zoom token was replaced by another process, reloaded it", logging.ErrKey, err)
			}
		default:
			c.count(ctx, grant, "store_error")
		}
		slog.ErrorContext(ctx, "Zoom token exchange failed",
			"status", resp.StatusCode,
			logging.ErrKey, err,
			logging.PriorityCritical())
		return err
	}

	c.mu.Lock()
	c.record = record
	c.mu.Unlock()

	c.count(ctx, grant, "ok")
	slog.InfoContext(ctx, "Zoom token exchanged",
		"expires_at", record.ExpiresAt().Format(time.RFC3339),
		"scope", record.Data.Scope())
	return nil
}

// rejection wraps ErrMissingAccessToken with whatever reason Zoom gave.
func rejection(resp *transport.Response, payload token.Payload) error {
	for _, key := range []string{"reason", "error_description", "error"} {
		if reason := payload.String(key); reason != "" {
			return fmt.Errorf("%w: %s", token.ErrMissingAccessToken, reason)
		}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: status %d", token.ErrMissingAccessToken, resp.StatusCode)
	}
	return token.ErrMissingAccessToken
}

func (c *Client) basicAuth() string {
	return base64.StdEncoding.EncodeToString([]byte(c.config.ClientID + ":" + c.config.ClientSecret))
}

func (c *Client) count(ctx context.Context, grant, outcome string) {
	if c.exchanges == nil {
		return
	}
	c.exchanges.Add(ctx, 1, metric.WithAttributes(
		attribute.String("grant_type", grant),
		attribute.String("outcome", outcome),
	))
}
