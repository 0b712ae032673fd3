// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/api/mocks"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/oauth"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/token"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/transport"
)

var testSessionKey = []byte("0123456789abcdef0123456789abcdef")

type mockOAuthFlow struct {
	mock.Mock
}

func (m *mockOAuthFlow) AuthCodeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *mockOAuthFlow) ExchangeAuthorizationCode(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *mockOAuthFlow) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockOAuthFlow) Record() *token.Record {
	args := m.Called()
	record, _ := args.Get(0).(*token.Record)
	return record
}

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func testRecord(t *testing.T) *token.Record {
	t.Helper()
	payload := token.ParsePayload([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"bearer","expires_in":3600,"scope":"user:read:admin"}`))
	return token.NewRecord(payload, fixedNow)
}

func setupAdminHandler(t *testing.T) (*AdminHandler, *mocks.MockClient, *mockOAuthFlow) {
	t.Helper()
	zoom := mocks.NewMockClient()
	flow := new(mockOAuthFlow)
	h := NewAdminHandler(zoom, flow, NewSessionStore(testSessionKey, false))
	h.now = func() time.Time { return fixedNow }
	return h, zoom, flow
}

func serve(h *AdminHandler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestAdminHandler_Health(t *testing.T) {
	h, _, flow := setupAdminHandler(t)
	flow.On("Record").Return(nil).Once()
	flow.On("Record").Return(testRecord(t))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminHandler_Status(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		h, _, flow := setupAdminHandler(t)
		flow.On("Record").Return(nil)

		rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		status := decodeBody[TokenStatus](t, rec)
		assert.False(t, status.Authorized)
		assert.Nil(t, status.ExpiresAt)
	})

	t.Run("token loaded", func(t *testing.T) {
		h, _, flow := setupAdminHandler(t)
		flow.On("Record").Return(testRecord(t))

		rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), `"at"`)

		status := decodeBody[TokenStatus](t, rec)
		assert.True(t, status.Authorized)
		assert.False(t, status.Expired)
		assert.Equal(t, "user:read:admin", status.Scope)
		require.NotNil(t, status.ExpiresAt)
		assert.Equal(t, fixedNow.Add(time.Hour), *status.ExpiresAt)
	})
}

func TestAdminHandler_AuthorizeAndCallback(t *testing.T) {
	h, _, flow := setupAdminHandler(t)

	var state string
	flow.On("AuthCodeURL", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { state = args.String(0) }).
		Return("https://zoom.example/oauth/authorize?state=x")
	flow.On("ExchangeAuthorizationCode", mock.Anything, "the-code").Return(nil).Once()
	flow.On("Record").Return(testRecord(t))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/oauth/authorize", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://zoom.example/oauth/authorize?state=x", rec.Header().Get("Location"))
	require.NotEmpty(t, state)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	callback := func(query string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/oauth/callback?"+query, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		return serve(h, req)
	}

	rec = callback("code=the-code&state=wrong")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = callback("code=the-code&state=" + state)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeBody[TokenStatus](t, rec).Authorized)

	flow.AssertExpectations(t)
}

func TestAdminHandler_Callback_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected int
	}{
		{"consent denied", "error=access_denied", http.StatusUnauthorized},
		{"missing code", "state=abc", http.StatusBadRequest},
		{"no session", "code=c&state=abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, flow := setupAdminHandler(t)

			rec := serve(h, httptest.NewRequest(http.MethodGet, "/oauth/callback?"+tt.query, nil))
			assert.Equal(t, tt.expected, rec.Code)
			flow.AssertNotCalled(t, "ExchangeAuthorizationCode", mock.Anything, mock.Anything)
		})
	}
}

func TestAdminHandler_RefreshToken(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"refreshed", nil, http.StatusOK},
		{"no refresh token", oauth.ErrMissingRefreshToken, http.StatusUnauthorized},
		{"zoom unreachable", transport.NewError(errors.New("dial tcp: connection refused")), http.StatusBadGateway},
		{"zoom rejected", &api.Error{StatusCode: http.StatusBadRequest, Code: 4709, Message: "Invalid Token!"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, flow := setupAdminHandler(t)
			flow.On("Refresh", mock.Anything).Return(tt.err)
			flow.On("Record").Return(testRecord(t)).Maybe()

			rec := serve(h, httptest.NewRequest(http.MethodPost, "/oauth/refresh", nil))
			assert.Equal(t, tt.expected, rec.Code)
			flow.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_ListUsers(t *testing.T) {
	tests := []struct {
		name            string
		query           string
		result          []api.User
		err             error
		expectedStatus  int
		expectedDetails bool
		truncated       bool
	}{
		{"plain", "", []api.User{{ID: "u1"}, {ID: "u2"}}, nil, http.StatusOK, false, false},
		{"details", "?details=true", []api.User{{ID: "u1", Dept: "Eng"}}, nil, http.StatusOK, true, false},
		{"empty", "", nil, nil, http.StatusOK, false, false},
		{"truncated", "", []api.User{{ID: "u1"}}, api.ErrPageLimitReached, http.StatusOK, false, true},
		{"zoom not found", "", nil, &api.Error{StatusCode: http.StatusNotFound, Code: 1001, Message: "nope"}, http.StatusNotFound, false, false},
		{"zoom server error", "", nil, &api.Error{StatusCode: http.StatusInternalServerError}, http.StatusBadGateway, false, false},
		{"expired token", "", nil, &api.Error{StatusCode: http.StatusUnauthorized, Code: api.CodeAccessTokenExpired}, http.StatusUnauthorized, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, zoom, _ := setupAdminHandler(t)
			var gotDetails bool
			zoom.GetAllUsersFunc = func(_ context.Context, withDetails bool) ([]api.User, error) {
				gotDetails = withDetails
				return tt.result, tt.err
			}

			rec := serve(h, httptest.NewRequest(http.MethodGet, "/users"+tt.query, nil))
			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.expectedDetails, gotDetails)

			if tt.expectedStatus == http.StatusOK {
				body := decodeBody[listResponse[api.User]](t, rec)
				assert.Equal(t, len(tt.result), body.Total)
				assert.NotNil(t, body.Items)
				assert.Equal(t, tt.truncated, body.Truncated)
			}
		})
	}
}

func TestAdminHandler_ListUsers_InvalidDetails(t *testing.T) {
	h, _, _ := setupAdminHandler(t)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/users?details=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandler_CreateUser(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		expected int
	}{
		{"created", `{"email":" new@example.com ","first_name":"New","type":2}`, nil, http.StatusCreated},
		{"invalid json", `{"email":`, nil, http.StatusBadRequest},
		{"unknown field", `{"mail":"x@example.com"}`, nil, http.StatusBadRequest},
		{"validation from client", `{"action":"autoCreate","email":"a@example.com"}`, domain.NewValidationError("password is required for autoCreate"), http.StatusBadRequest},
		{"email taken", `{"email":"a@example.com"}`, &api.Error{StatusCode: http.StatusConflict, Code: 1005, Message: "User already in the account"}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, zoom, _ := setupAdminHandler(t)
			var got *api.CreateUserRequest
			zoom.CreateUserFunc = func(_ context.Context, request *api.CreateUserRequest) (*api.User, error) {
				got = request
				if tt.err != nil {
					return nil, tt.err
				}
				return &api.User{ID: "new-id", Email: request.Email}, nil
			}

			rec := serve(h, httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(tt.body)))
			require.Equal(t, tt.expected, rec.Code, rec.Body.String())

			if tt.expected == http.StatusCreated {
				require.NotNil(t, got)
				assert.Equal(t, "new@example.com", got.Email)
				assert.Equal(t, 2, got.Type)
				assert.Equal(t, "new-id", decodeBody[api.User](t, rec).ID)
			}
			if tt.name == "email taken" {
				body := decodeBody[errorResponse](t, rec)
				assert.Equal(t, 1005, body.Code)
			}
		})
	}
}

func TestAdminHandler_EmailExists(t *testing.T) {
	h, zoom, _ := setupAdminHandler(t)
	zoom.IsEmailExistsFunc = func(_ context.Context, email string) (bool, error) {
		return email == "taken@example.com", nil
	}

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/users/email-exists?email=taken@example.com", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"taken@example.com","exists":true}`, rec.Body.String())

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/users/email-exists?email=free@example.com", nil))
	assert.JSONEq(t, `{"email":"free@example.com","exists":false}`, rec.Body.String())

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/users/email-exists", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandler_GetAndUpdateUser(t *testing.T) {
	h, zoom, _ := setupAdminHandler(t)

	var updatedID string
	var updated *api.UpdateUserRequest
	zoom.UpdateUserFunc = func(_ context.Context, userID string, request *api.UpdateUserRequest) error {
		updatedID, updated = userID, request
		return nil
	}
	zoom.GetUserInfoFunc = func(_ context.Context, userID string) (*api.User, error) {
		return &api.User{ID: userID, Email: "a@example.com"}, nil
	}

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/users/u1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", decodeBody[api.User](t, rec).ID)

	rec = serve(h, httptest.NewRequest(http.MethodPatch, "/users/u1", strings.NewReader(`{"dept":"Eng"}`)))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u1", updatedID)
	assert.Equal(t, "Eng", updated.Dept)

	rec = serve(h, httptest.NewRequest(http.MethodPatch, "/users/u1", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandler_UpdateUserPicture(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nrest")

	multipartBody := func(field, filename string) (*bytes.Buffer, string) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		hdr.Set("Content-Type", "image/png")
		part, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(png)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return &buf, w.FormDataContentType()
	}

	tests := []struct {
		name        string
		build       func() (*bytes.Buffer, string)
		expected    int
		expectedExt string
	}{
		{
			name:        "multipart upload",
			build:       func() (*bytes.Buffer, string) { return multipartBody("pic_file", "me.PNG") },
			expected:    http.StatusNoContent,
			expectedExt: "PNG",
		},
		{
			name:        "raw image body",
			build:       func() (*bytes.Buffer, string) { return bytes.NewBuffer(png), "image/png" },
			expected:    http.StatusNoContent,
			expectedExt: "png",
		},
		{
			name:     "wrong part name",
			build:    func() (*bytes.Buffer, string) { return multipartBody("avatar", "me.png") },
			expected: http.StatusBadRequest,
		},
		{
			name:     "unsupported content type",
			build:    func() (*bytes.Buffer, string) { return bytes.NewBufferString("{}"), "application/json" },
			expected: http.StatusBadRequest,
		},
		{
			name:     "empty image",
			build:    func() (*bytes.Buffer, string) { return &bytes.Buffer{}, "image/png" },
			expected: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, zoom, _ := setupAdminHandler(t)
			var got api.Picture
			var called bool
			zoom.UpdateUserPictureFunc = func(_ context.Context, userID string, picture api.Picture) error {
				called = true
				got = picture
				return nil
			}

			body, contentType := tt.build()
			req := httptest.NewRequest(http.MethodPost, "/users/u1/picture", body)
			req.Header.Set("Content-Type", contentType)
			rec := serve(h, req)

			require.Equal(t, tt.expected, rec.Code, rec.Body.String())
			assert.Equal(t, tt.expected == http.StatusNoContent, called)
			if called {
				assert.Equal(t, png, got.Content)
				assert.Equal(t, tt.expectedExt, got.Extension)
			}
		})
	}
}

func TestAdminHandler_PastMeetingEncodedUUID(t *testing.T) {
	h, zoom, _ := setupAdminHandler(t)

	var gotUUID string
	zoom.GetPastMeetingDetailsFunc = func(_ context.Context, meetingUUID string) (*api.PastMeeting, error) {
		gotUUID = meetingUUID
		return &api.PastMeeting{UUID: meetingUUID, Topic: "Board"}, nil
	}
	zoom.GetPastMeetingParticipantsFunc = func(_ context.Context, meetingUUID string) ([]api.PastMeetingParticipant, error) {
		gotUUID = meetingUUID
		return []api.PastMeetingParticipant{{ID: "p1"}}, nil
	}

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/past_meetings/%2Fabc%3D%3D", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "/abc==", gotUUID)

	gotUUID = ""
	rec = serve(h, httptest.NewRequest(http.MethodGet, "/past_meetings/%2Fabc%3D%3D/participants", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/abc==", gotUUID)
	assert.Equal(t, 1, decodeBody[listResponse[api.PastMeetingParticipant]](t, rec).Total)
}

func TestAdminHandler_ListUserMeetings(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		expected     int
		expectedType api.MeetingListType
	}{
		{"default", "", http.StatusOK, ""},
		{"previous", "?type=previous_meetings", http.StatusOK, api.MeetingListPreviousMeetings},
		{"invalid", "?type=past", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, zoom, _ := setupAdminHandler(t)
			var gotType api.MeetingListType
			zoom.ListMeetingsFunc = func(_ context.Context, userID string, listType api.MeetingListType) ([]api.Meeting, error) {
				gotType = listType
				return []api.Meeting{{ID: 1}}, nil
			}

			rec := serve(h, httptest.NewRequest(http.MethodGet, "/users/me/meetings"+tt.query, nil))
			assert.Equal(t, tt.expected, rec.Code)
			assert.Equal(t, tt.expectedType, gotType)
		})
	}
}

func TestAdminHandler_Metrics(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		expected int
	}{
		{"meetings", "/metrics/meetings?from=2026-10-01&to=2026-10-02&type=past", http.StatusOK},
		{"missing from", "/metrics/meetings?to=2026-10-02", http.StatusBadRequest},
		{"bad date", "/metrics/meetings?from=10/01/2026&to=2026-10-02", http.StatusBadRequest},
		{"reversed range", "/metrics/meetings?from=2026-10-05&to=2026-10-02", http.StatusBadRequest},
		{"bad type", "/metrics/meetings?from=2026-10-01&to=2026-10-02&type=ended", http.StatusBadRequest},
		{"meeting details", "/metrics/meetings/85746065432?type=pastOne", http.StatusOK},
		{"participants", "/meetings/85746065432/participants", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := setupAdminHandler(t)
			rec := serve(h, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.expected, rec.Code, rec.Body.String())
		})
	}
}

func TestAdminHandler_MetricsMeetings_PassesArguments(t *testing.T) {
	h, zoom, _ := setupAdminHandler(t)
	var from, to string
	var metricsType api.MetricsType
	zoom.MetricsMeetingsFunc = func(_ context.Context, f, tt string, mt api.MetricsType) ([]api.MetricsMeeting, error) {
		from, to, metricsType = f, tt, mt
		return nil, nil
	}

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/metrics/meetings?from=2026-10-01&to=2026-10-02", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-10-01", from)
	assert.Equal(t, "2026-10-02", to)
	assert.Equal(t, api.MetricsType(""), metricsType)
	assert.JSONEq(t, `{"items":[],"total":0}`, rec.Body.String())
}

func TestAdminHandler_Groups(t *testing.T) {
	h, zoom, _ := setupAdminHandler(t)
	zoom.GetGroupsListFunc = func(context.Context) (map[string]api.Group, error) {
		return map[string]api.Group{
			"g2": {ID: "g2", Name: "Finance"},
			"g1": {ID: "g1", Name: "Engineering"},
		}, nil
	}

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/groups", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[listResponse[api.Group]](t, rec)
	require.Len(t, body.Items, 2)
	assert.Equal(t, "Engineering", body.Items[0].Name)
	assert.Equal(t, "Finance", body.Items[1].Name)
}

func TestAdminHandler_AddGroupMember(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expected       int
		expectedMember string
		expectedType   api.MemberIDType
	}{
		{"by id", `{"id":"z1"}`, http.StatusCreated, "z1", api.MemberIDZoom},
		{"by email", `{"email":"a@example.com"}`, http.StatusCreated, "a@example.com", api.MemberIDEmail},
		{"both", `{"id":"z1","email":"a@example.com"}`, http.StatusBadRequest, "", ""},
		{"neither", `{}`, http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, zoom, _ := setupAdminHandler(t)
			var gotGroup, gotMember string
			var gotType api.MemberIDType
			zoom.AddGroupMemberFunc = func(_ context.Context, groupID, userID string, idType api.MemberIDType) (*api.AddGroupMembersResponse, error) {
				gotGroup, gotMember, gotType = groupID, userID, idType
				return &api.AddGroupMembersResponse{IDs: userID}, nil
			}

			rec := serve(h, httptest.NewRequest(http.MethodPost, "/groups/g1/members", strings.NewReader(tt.body)))
			require.Equal(t, tt.expected, rec.Code, rec.Body.String())
			if tt.expected == http.StatusCreated {
				assert.Equal(t, "g1", gotGroup)
				assert.Equal(t, tt.expectedMember, gotMember)
				assert.Equal(t, tt.expectedType, gotType)
			}
		})
	}
}

func TestAdminHandler_DeleteGroupMember(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"missing member", &api.Error{StatusCode: http.StatusNotFound, Code: 4130}, http.StatusNotFound},
		{"unexpected success code", &api.Error{StatusCode: http.StatusOK}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, zoom, _ := setupAdminHandler(t)
			zoom.DeleteGroupMemberFunc = func(_ context.Context, groupID, memberID string) error {
				assert.Equal(t, "g1", groupID)
				assert.Equal(t, "m1", memberID)
				return tt.err
			}

			rec := serve(h, httptest.NewRequest(http.MethodDelete, "/groups/g1/members/m1", nil))
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestAdminHandler_MethodNotAllowed(t *testing.T) {
	h, _, _ := setupAdminHandler(t)
	rec := serve(h, httptest.NewRequest(http.MethodDelete, "/users", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNewTokenStatus(t *testing.T) {
	assert.Equal(t, TokenStatus{}, NewTokenStatus(nil, fixedNow))

	record := testRecord(t)
	status := NewTokenStatus(record, fixedNow)
	assert.True(t, status.Authorized)
	assert.False(t, status.Expired)
	assert.Equal(t, "bearer", status.TokenType)
	assert.Equal(t, "user:read:admin", status.Scope)

	later := NewTokenStatus(record, fixedNow.Add(2*time.Hour))
	assert.True(t, later.Expired)
}
