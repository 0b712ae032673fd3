// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package handlers exposes the Zoom client as a small JSON admin API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/oauth"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/token"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/transport"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/pkg/constants"
)

// OAuthFlow is the token side of the Zoom client driven by the admin API.
type OAuthFlow interface {
	AuthCodeURL(state string) string
	ExchangeAuthorizationCode(ctx context.Context, code string) error
	Refresh(ctx context.Context) error
	Record() *token.Record
}

// AdminHandler serves the admin API on top of a Zoom client.
type AdminHandler struct {
	zoom     api.ClientAPI
	oauth    OAuthFlow
	sessions sessions.Store
	now      func() time.Time
}

// NewAdminHandler creates an AdminHandler. The session store keeps the
// pending OAuth state between /oauth/authorize and /oauth/callback.
func NewAdminHandler(zoom api.ClientAPI, flow OAuthFlow, store sessions.Store) *AdminHandler {
	return &AdminHandler{
		zoom:     zoom,
		oauth:    flow,
		sessions: store,
		now:      time.Now,
	}
}

// NewSessionStore returns the cookie store used for the OAuth state.
func NewSessionStore(secret []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Router registers every admin route on a new gorilla/mux router. Path
// variables are matched encoded so meeting UUIDs may carry "%2F".
func (h *AdminHandler) Router() *mux.Router {
	router := mux.NewRouter()
	router.UseEncodedPath()

	router.HandleFunc(constants.LivezPath, h.Livez).Methods(http.MethodGet)
	router.HandleFunc(constants.ReadyzPath, h.Readyz).Methods(http.MethodGet)

	router.HandleFunc("/", h.Status).Methods(http.MethodGet)
	router.HandleFunc("/oauth/authorize", h.Authorize).Methods(http.MethodGet)
	router.HandleFunc("/oauth/callback", h.Callback).Methods(http.MethodGet)
	router.HandleFunc("/oauth/refresh", h.RefreshToken).Methods(http.MethodPost)

	router.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	router.HandleFunc("/users", h.CreateUser).Methods(http.MethodPost)
	router.HandleFunc("/users/email-exists", h.EmailExists).Methods(http.MethodGet)
	router.HandleFunc("/users/{userId}", h.GetUser).Methods(http.MethodGet)
	router.HandleFunc("/users/{userId}", h.UpdateUser).Methods(http.MethodPatch)
	router.HandleFunc("/users/{userId}/picture", h.UpdateUserPicture).Methods(http.MethodPost)
	router.HandleFunc("/users/{userId}/meetings", h.ListUserMeetings).Methods(http.MethodGet)

	router.HandleFunc("/groups", h.ListGroups).Methods(http.MethodGet)
	router.HandleFunc("/groups/{groupId}/members", h.AddGroupMember).Methods(http.MethodPost)
	router.HandleFunc("/groups/{groupId}/members/{memberId}", h.DeleteGroupMember).Methods(http.MethodDelete)

	router.HandleFunc("/meetings/{meetingId}/participants", h.ListMeetingParticipants).Methods(http.MethodGet)
	router.HandleFunc("/past_meetings/{meetingUUID}", h.GetPastMeeting).Methods(http.MethodGet)
	router.HandleFunc("/past_meetings/{meetingUUID}/participants", h.GetPastMeetingParticipants).Methods(http.MethodGet)
	router.HandleFunc("/metrics/meetings", h.MetricsMeetings).Methods(http.MethodGet)
	router.HandleFunc("/metrics/meetings/{meetingId}", h.GetMetricsMeeting).Methods(http.MethodGet)

	return router
}

// Livez always answers ok while the process is serving.
func (h *AdminHandler) Livez(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// Readyz answers ok once a Zoom token has been loaded or exchanged.
func (h *AdminHandler) Readyz(w http.ResponseWriter, _ *http.Request) {
	if h.oauth.Record() == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no zoom token\n"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// listResponse wraps list endpoints. Truncated is set when the page ceiling
// stopped the walk early.
type listResponse[T any] struct {
	Items     []T  `json:"items"`
	Total     int  `json:"total"`
	Truncated bool `json:"truncated,omitempty"`
}

type errorResponse struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", constants.ContentTypeJSON)
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", logging.ErrKey, err)
	}
}

// writeList answers with the collected items. Hitting the page ceiling still
// returns what was read.
func writeList[T any](ctx context.Context, w http.ResponseWriter, items []T, err error) bool {
	truncated := errors.Is(err, api.ErrPageLimitReached)
	if err != nil && !truncated {
		return false
	}
	if truncated {
		slog.WarnContext(ctx, "Zoom listing truncated at page limit", "item_count", len(items))
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, listResponse[T]{Items: items, Total: len(items), Truncated: truncated})
	return true
}

// writeError maps err to an HTTP status. Zoom 4xx answers pass through, Zoom
// 5xx and network failures become 502.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := errorResponse{Message: err.Error()}

	var (
		apiErr       *api.Error
		domainErr    *domain.DomainError
		transportErr *transport.Error
	)
	switch {
	case errors.As(err, &domainErr):
		status = domainErr.Type.HTTPStatus()
		body.Message = domainErr.Message
	case errors.As(err, &apiErr):
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		switch {
		case apiErr.Code == api.CodeAccessTokenExpired:
			status = http.StatusUnauthorized
		case apiErr.StatusCode >= http.StatusBadRequest && apiErr.StatusCode < http.StatusInternalServerError:
			status = apiErr.StatusCode
		default:
			status = http.StatusBadGateway
		}
	case errors.Is(err, oauth.ErrMissingRefreshToken), errors.Is(err, oauth.ErrNoToken):
		status = http.StatusUnauthorized
	case errors.As(err, &transportErr):
		status = http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "admin request failed", logging.ErrKey, err, "status", status)
	} else {
		slog.WarnContext(ctx, "admin request rejected", logging.ErrKey, err, "status", status)
	}
	writeJSON(w, status, body)
}

// pathVar returns a decoded mux variable.
func pathVar(r *http.Request, name string) (string, error) {
	raw := mux.Vars(r)[name]
	value, err := url.PathUnescape(raw)
	if err != nil || value == "" {
		return "", domain.NewValidationError("invalid " + name)
	}
	return value, nil
}

func decodeJSONBody(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.NewValidationError("request body too large", err)
		}
		return domain.NewValidationError("invalid JSON body", err)
	}
	return nil
}

func parseMetricsType(r *http.Request) (api.MetricsType, error) {
	value := api.MetricsType(r.URL.Query().Get("type"))
	switch value {
	case "", api.MetricsLive, api.MetricsPast, api.MetricsPastOne:
		return value, nil
	default:
		return "", domain.NewValidationError("type must be one of live, past, pastOne")
	}
}
