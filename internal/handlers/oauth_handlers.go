// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/token"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/pkg/constants"
)

// TokenStatus describes the loaded Zoom token without exposing it.
type TokenStatus struct {
	Authorized bool       `json:"authorized"`
	Expired    bool       `json:"expired"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	TokenType  string     `json:"token_type,omitempty"`
	Scope      string     `json:"scope,omitempty"`
}

// NewTokenStatus summarizes record as of now. A nil record is unauthorized.
func NewTokenStatus(record *token.Record, now time.Time) TokenStatus {
	if record == nil {
		return TokenStatus{}
	}
	created := record.CreatedAt().UTC()
	expires := record.ExpiresAt().UTC()
	return TokenStatus{
		Authorized: true,
		Expired:    record.Expired(now),
		CreatedAt:  &created,
		ExpiresAt:  &expires,
		TokenType:  record.Data.TokenType(),
		Scope:      record.Data.Scope(),
	}
}

func (h *AdminHandler) tokenStatus() TokenStatus {
	return NewTokenStatus(h.oauth.Record(), h.now())
}

// Status reports whether a Zoom token is loaded and when it expires.
func (h *AdminHandler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.tokenStatus())
}

// Authorize stores a fresh state in the session and redirects to the Zoom
// consent page.
func (h *AdminHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.sessions.Get(r, constants.SessionName)
	if err != nil {
		// undecodable cookie, start over
		session, err = h.sessions.New(r, constants.SessionName)
		if session == nil {
			writeError(ctx, w, domain.NewInternalError("failed to create session", err))
			return
		}
	}

	state := uuid.NewString()
	session.Values[constants.OAuthStateKey] = state
	if err := session.Save(r, w); err != nil {
		writeError(ctx, w, domain.NewInternalError("failed to save session", err))
		return
	}

	slog.DebugContext(ctx, "redirecting to Zoom consent page")
	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusFound)
}

// Callback verifies the state against the session and exchanges the code.
func (h *AdminHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		slog.WarnContext(ctx, "Zoom authorization denied",
			"error", errParam,
			"error_description", query.Get("error_description"))
		writeError(ctx, w, domain.NewUnauthorizedError("authorization denied: "+errParam))
		return
	}

	code := query.Get("code")
	if code == "" {
		writeError(ctx, w, domain.NewValidationError("missing authorization code"))
		return
	}

	session, err := h.sessions.Get(r, constants.SessionName)
	if err != nil || session == nil {
		writeError(ctx, w, domain.NewValidationError("missing or invalid session", err))
		return
	}
	savedState, ok := session.Values[constants.OAuthStateKey].(string)
	if !ok || savedState == "" || savedState != query.Get("state") {
		slog.WarnContext(ctx, "OAuth state mismatch")
		writeError(ctx, w, domain.NewValidationError("invalid state parameter"))
		return
	}

	// single use
	delete(session.Values, constants.OAuthStateKey)
	if err := session.Save(r, w); err != nil {
		slog.WarnContext(ctx, "failed to clear OAuth state", logging.ErrKey, err)
	}

	if err := h.oauth.ExchangeAuthorizationCode(ctx, code); err != nil {
		writeError(ctx, w, err)
		return
	}

	slog.InfoContext(ctx, "Zoom authorization completed")
	writeJSON(w, http.StatusOK, h.tokenStatus())
}

// RefreshToken forces a refresh-token grant.
func (h *AdminHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.oauth.Refresh(ctx); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.tokenStatus())
}
