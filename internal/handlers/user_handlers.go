// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/middleware"
)

// pictureField is the multipart field carrying an uploaded picture
const pictureField = "pic_file"

// CreateUserBody is the JSON body of POST /users
type CreateUserBody struct {
	Action    string `json:"action,omitempty"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Password  string `json:"password,omitempty"`
	Type      int    `json:"type,omitempty"`
}

// ListUsers returns every account user. With ?details=true each entry is the
// full profile.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	details := false
	if raw := r.URL.Query().Get("details"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(ctx, w, domain.NewValidationError("details must be a boolean", err))
			return
		}
		details = parsed
	}

	users, err := h.zoom.GetAllUsers(ctx, details)
	if !writeList(ctx, w, users, err) {
		writeError(ctx, w, err)
	}
}

// CreateUser adds a user to the Zoom account.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body CreateUserBody
	if err := decodeJSONBody(r, &body); err != nil {
		writeError(ctx, w, err)
		return
	}

	user, err := h.zoom.CreateUser(ctx, &api.CreateUserRequest{
		Action:    api.CreateUserAction(body.Action),
		Email:     strings.TrimSpace(body.Email),
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Password:  body.Password,
		Type:      body.Type,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// EmailExists reports whether ?email= is taken by a Zoom user.
func (h *AdminHandler) EmailExists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeError(ctx, w, domain.NewValidationError("email is required"))
		return
	}

	exists, err := h.zoom.IsEmailExists(ctx, email)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"email": email, "exists": exists})
}

// GetUser returns the full profile of a user.
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := pathVar(r, "userId")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	user, err := h.zoom.GetUserInfo(ctx, userID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUser patches a user profile.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := pathVar(r, "userId")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var body api.UpdateUserRequest
	if err := decodeJSONBody(r, &body); err != nil {
		writeError(ctx, w, err)
		return
	}
	if body == (api.UpdateUserRequest{}) {
		writeError(ctx, w, domain.NewValidationError("no fields to update"))
		return
	}

	if err := h.zoom.UpdateUser(ctx, userID, &body); err != nil {
		writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateUserPicture accepts a multipart upload with a pic_file part, or a raw
// image body, and forwards it to Zoom.
func (h *AdminHandler) UpdateUserPicture(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := pathVar(r, "userId")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	picture, err := readPicture(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.zoom.UpdateUserPicture(ctx, userID, picture); err != nil {
		writeError(ctx, w, err)
		return
	}
	slog.InfoContext(ctx, "profile picture updated", "user_id", userID, "size", len(picture.Content))
	w.WriteHeader(http.StatusNoContent)
}

func readPicture(r *http.Request) (api.Picture, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(middleware.DefaultMaxBodyBytes); err != nil {
			return api.Picture{}, domain.NewValidationError("invalid multipart body", err)
		}
		file, header, err := r.FormFile(pictureField)
		if err != nil {
			return api.Picture{}, domain.NewValidationError("missing "+pictureField+" part", err)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil {
				slog.WarnContext(r.Context(), "failed to close uploaded picture", logging.ErrKey, cerr)
			}
		}()
		content, err := io.ReadAll(file)
		if err != nil {
			return api.Picture{}, domain.NewValidationError("failed to read picture", err)
		}
		return api.Picture{
			Content:   content,
			Extension: strings.TrimPrefix(filepath.Ext(header.Filename), "."),
		}, pictureNotEmpty(content)
	}

	if strings.HasPrefix(contentType, "image/") {
		content, err := io.ReadAll(r.Body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return api.Picture{}, domain.NewValidationError("picture too large", err)
			}
			return api.Picture{}, domain.NewValidationError("failed to read picture", err)
		}
		return api.Picture{
			Content:   content,
			Extension: strings.TrimPrefix(contentType, "image/"),
		}, pictureNotEmpty(content)
	}

	return api.Picture{}, domain.NewValidationError("expected multipart/form-data or image/* body")
}

func pictureNotEmpty(content []byte) error {
	if len(content) == 0 {
		return domain.NewValidationError("picture is empty")
	}
	return nil
}
