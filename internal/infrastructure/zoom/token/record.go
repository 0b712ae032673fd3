// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package token persists the Zoom OAuth token record between process restarts.
package token

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// ErrMissingAccessToken is returned by Save when the payload carries no access_token,
// which is what Zoom sends back when a grant is rejected.
var ErrMissingAccessToken = errors.New("token payload has no access_token")

// createdLayout is the human readable timestamp kept next to created_ts.
const createdLayout = "2006-01-02 15:04:05"

// Store loads and saves the single token record.
type Store interface {
	// Load returns the stored record. A missing or unreadable record is
	// reported as absent, never as an error.
	Load(ctx context.Context) (*Record, bool)
	// Save replaces the stored record with one built from payload.
	Save(ctx context.Context, payload Payload) (*Record, error)
}

// Payload is the raw OAuth token response. Values are kept as raw JSON so that
// a save/load round-trip reproduces every field exactly.
type Payload map[string]json.RawMessage

// Record is the persisted token document.
type Record struct {
	Created   string  `json:"created"`
	CreatedTS int64   `json:"created_ts"`
	ExpiresTS int64   `json:"expires_ts"`
	Data      Payload `json:"data"`
}

// ParsePayload decodes a token endpoint response body. Anything that is not a
// JSON object yields an empty payload.
func ParsePayload(body []byte) Payload {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil || p == nil {
		return Payload{}
	}
	return p
}

// NewRecord builds a record for payload issued at now.
func NewRecord(payload Payload, now time.Time) *Record {
	created := now.Unix()
	return &Record{
		Created:   now.Format(createdLayout),
		CreatedTS: created,
		ExpiresTS: created + payload.ExpiresIn(),
		Data:      payload,
	}
}

// String returns the string value stored under key, or "" when absent or not a string.
func (p Payload) String(key string) string {
	raw, ok := p[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// AccessToken returns the bearer token.
func (p Payload) AccessToken() string { return p.String("access_token") }

// RefreshToken returns the refresh token.
func (p Payload) RefreshToken() string { return p.String("refresh_token") }

// TokenType returns the token type, normally "bearer".
func (p Payload) TokenType() string { return p.String("token_type") }

// Scope returns the granted scopes.
func (p Payload) Scope() string { return p.String("scope") }

// ExpiresIn returns the token lifetime in seconds. Numeric strings are accepted;
// anything else counts as zero.
func (p Payload) ExpiresIn() int64 {
	raw, ok := p["expires_in"]
	if !ok {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		n = json.Number(s)
	}
	if v, err := n.Int64(); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(string(n), 64); err == nil {
		return int64(f)
	}
	return 0
}

// CreatedAt returns when the token was obtained.
func (r *Record) CreatedAt() time.Time {
	return time.Unix(r.CreatedTS, 0)
}

// ExpiresAt returns when the access token stops being accepted.
func (r *Record) ExpiresAt() time.Time {
	return time.Unix(r.ExpiresTS, 0)
}

// Expired reports whether the access token expiry is in the past.
func (r *Record) Expired(now time.Time) bool {
	return r.ExpiresTS < now.Unix()
}

// OAuth2Token converts the record to an oauth2.Token.
func (r *Record) OAuth2Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  r.Data.AccessToken(),
		TokenType:    r.Data.TokenType(),
		RefreshToken: r.Data.RefreshToken(),
		Expiry:       r.ExpiresAt(),
	}
	if scope := r.Data.Scope(); scope != "" {
		tok = tok.WithExtra(map[string]any{"scope": scope})
	}
	return tok
}
