// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/transport"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/logging"
)

// User type constants for Zoom API
const (
	UserTypeBasic    = 1
	UserTypeLicensed = 2
	UserTypeOnPrem   = 3
)

// User status constants for Zoom API
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusPending  = "pending"
)

// CreateUserAction selects how Zoom activates a new user
type CreateUserAction string

const (
	// ActionCreate sends the user an activation email
	ActionCreate CreateUserAction = "create"
	// ActionAutoCreate creates the user with a password and no email
	ActionAutoCreate CreateUserAction = "autoCreate"
)

// User represents a user in the Zoom account
type User struct {
	ID                string   `json:"id"`
	Email             string   `json:"email"`
	FirstName         string   `json:"first_name"`
	LastName          string   `json:"last_name"`
	DisplayName       string   `json:"display_name,omitempty"`
	Type              int      `json:"type"`
	Status            string   `json:"status,omitempty"`
	PMI               int64    `json:"pmi,omitempty"`
	Timezone          string   `json:"timezone,omitempty"`
	Dept              string   `json:"dept,omitempty"`
	RoleName          string   `json:"role_name,omitempty"`
	Language          string   `json:"language,omitempty"`
	PhoneNumber       string   `json:"phone_number,omitempty"`
	JobTitle          string   `json:"job_title,omitempty"`
	Company           string   `json:"company,omitempty"`
	Location          string   `json:"location,omitempty"`
	PicURL            string   `json:"pic_url,omitempty"`
	Verified          int      `json:"verified,omitempty"`
	GroupIDs          []string `json:"group_ids,omitempty"`
	CreatedAt         string   `json:"created_at,omitempty"`
	LastLoginTime     string   `json:"last_login_time,omitempty"`
	LastClientVersion string   `json:"last_client_version,omitempty"`
}

// CreateUserRequest is the input of CreateUser
type CreateUserRequest struct {
	Action    CreateUserAction
	Email     string
	FirstName string
	LastName  string
	// Password is only sent with ActionAutoCreate
	Password string
	Type     int
}

type createUserBody struct {
	Action   CreateUserAction `json:"action"`
	UserInfo createUserInfo   `json:"user_info"`
}

type createUserInfo struct {
	Type      int    `json:"type"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Password  string `json:"password,omitempty"`
}

// UpdateUserRequest holds the profile fields to change. Empty fields are left alone.
type UpdateUserRequest struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Type        int    `json:"type,omitempty"`
	PMI         int64  `json:"pmi,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Dept        string `json:"dept,omitempty"`
	Language    string `json:"language,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	JobTitle    string `json:"job_title,omitempty"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
}

// Picture is a profile picture, either read from Filename or given as Content.
type Picture struct {
	Filename string
	Content  []byte
	// Extension such as "png" or "jpeg". Derived from Filename when empty.
	Extension string
}

// GetAllUsers walks every page of /users. With details set, each user is
// replaced by its full profile, fetched one at a time.
func (c *Client) GetAllUsers(ctx context.Context, withDetails bool) ([]User, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "get_all_users"))

	users, err := collectPages[User](ctx, c, "/users", nil, "users")
	if err != nil {
		slog.ErrorContext(ctx, "failed to get Zoom users", logging.ErrKey, err)
		return users, err
	}

	if withDetails {
		for i, user := range users {
			slog.DebugContext(ctx, "getting detailed Zoom user info",
				"progress", fmt.Sprintf("%d / %d", i+1, len(users)),
				"user_id", user.ID)
			detail, err := c.GetUserInfo(ctx, user.ID)
			if err != nil {
				return nil, err
			}
			users[i] = *detail
		}
	}

	slog.InfoContext(ctx, "successfully retrieved Zoom users", "user_count", len(users))
	return users, nil
}

// CreateUser adds a user to the account.
func (c *Client) CreateUser(ctx context.Context, request *CreateUserRequest) (*User, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "create_user"))

	if request == nil || request.Email == "" {
		return nil, domain.NewValidationError("email is required")
	}
	action := request.Action
	if action == "" {
		action = ActionCreate
	}
	if action != ActionCreate && action != ActionAutoCreate {
		return nil, domain.NewValidationError(fmt.Sprintf("unsupported create action %q", action))
	}
	if action == ActionAutoCreate && request.Password == "" {
		return nil, domain.NewValidationError("password is required for autoCreate")
	}
	userType := request.Type
	if userType == 0 {
		userType = UserTypeBasic
	}

	body := createUserBody{
		Action: action,
		UserInfo: createUserInfo{
			Type:      userType,
			Email:     request.Email,
			FirstName: request.FirstName,
			LastName:  request.LastName,
		},
	}
	if action == ActionAutoCreate {
		body.UserInfo.Password = request.Password
	}

	var user User
	if _, err := c.call(ctx, transport.MethodPost, "/users", nil, body, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("zoom did not return an id for %s", request.Email)
	}

	slog.InfoContext(ctx, "created Zoom user", "user_id", user.ID, "action", string(action))
	return &user, nil
}

// IsEmailExists reports whether email is already used by a Zoom user. A
// response without existed_email counts as false.
func (c *Client) IsEmailExists(ctx context.Context, email string) (bool, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "is_email_exists"))

	var out struct {
		ExistedEmail *bool `json:"existed_email"`
	}
	if _, err := c.call(ctx, transport.MethodGet, "/users/email", map[string]string{"email": email}, nil, &out); err != nil {
		return false, err
	}
	return out.ExistedEmail != nil && *out.ExistedEmail, nil
}

// UpdateUser patches the user's profile.
func (c *Client) UpdateUser(ctx context.Context, userID string, request *UpdateUserRequest) error {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "update_user"))

	if request == nil {
		request = &UpdateUserRequest{}
	}
	path := "/users/" + pathSegment(userID)
	_, err := c.call(ctx, transport.MethodPatch, path, map[string]string{"login_type": loginTypeZoom}, request, nil)
	return err
}

// GetUserInfo returns the full profile of a user.
func (c *Client) GetUserInfo(ctx context.Context, userID string) (*User, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "get_user_info"))

	var user User
	path := "/users/" + pathSegment(userID)
	if _, err := c.call(ctx, transport.MethodGet, path, map[string]string{"login_type": loginTypeZoom}, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserPicture uploads a profile picture as multipart/form-data with a
// single pic_file part.
func (c *Client) UpdateUserPicture(ctx context.Context, userID string, picture Picture) error {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "update_user_picture"))

	content, ext, err := picture.load()
	if err != nil {
		return err
	}

	body, contentType, err := buildPictureForm(content, ext)
	if err != nil {
		return err
	}

	result, err := c.Send(ctx, &transport.Request{
		Method:  transport.MethodPost,
		Path:    "/users/" + pathSegment(userID) + "/picture",
		Headers: []string{"Content-Type: " + contentType},
		Body:    body,
		Options: &transport.Options{CloseConnection: true},
	})
	if err != nil {
		return err
	}
	if isFailure(result.Response) {
		apiErr := parseErrorResponse(result.Response)
		slog.ErrorContext(ctx, "Zoom rejected picture upload", logging.ErrKey, apiErr)
		return apiErr
	}

	slog.InfoContext(ctx, "updated Zoom user picture", "user_id", userID, "size", len(content))
	return nil
}

func (p Picture) load() ([]byte, string, error) {
	ext := strings.ToLower(strings.TrimPrefix(p.Extension, "."))
	content := p.Content

	if content == nil {
		if p.Filename == "" {
			return nil, "", domain.NewValidationError("picture has neither content nor filename")
		}
		data, err := os.ReadFile(p.Filename)
		if err != nil {
			return nil, "", domain.NewValidationError("unable to read picture file", err)
		}
		content = data
	}
	if ext == "" && p.Filename != "" {
		ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(p.Filename), "."))
	}
	if ext == "" {
		ext = extensionFromContent(content)
	}
	if ext == "jpg" {
		ext = "jpeg"
	}
	return content, ext, nil
}

func extensionFromContent(content []byte) string {
	detected := http.DetectContentType(content)
	if strings.HasPrefix(detected, "image/") {
		return strings.TrimPrefix(detected, "image/")
	}
	return "png"
}

func buildPictureForm(content []byte, ext string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="pic_file"; filename="avatar.%s"`, ext))
	h.Set("Content-Type", "image/"+ext)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create picture part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", fmt.Errorf("failed to write picture part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close picture form: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

// TranslateUserType returns a display name for a Zoom user type.
func TranslateUserType(typeID int) string {
	switch typeID {
	case UserTypeBasic:
		return "Basic"
	case UserTypeLicensed:
		return "Licensed"
	case UserTypeOnPrem:
		return "On-prem"
	default:
		return fmt.Sprintf("Type %d", typeID)
	}
}

