// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/api"
)

// MockMeetingsAPI is a mock implementation of Zoom meeting API operations for testing
type MockMeetingsAPI struct {
	ListMeetingsFunc               func(ctx context.Context, userID string, listType api.MeetingListType) ([]api.Meeting, error)
	GetPastMeetingDetailsFunc      func(ctx context.Context, meetingUUID string) (*api.PastMeeting, error)
	GetPastMeetingParticipantsFunc func(ctx context.Context, meetingUUID string) ([]api.PastMeetingParticipant, error)
	CreateMeetingFunc              func(ctx context.Context, userID string, request *api.CreateMeetingRequest) (*api.CreateMeetingResponse, error)
	UpdateMeetingFunc              func(ctx context.Context, meetingID string, request *api.UpdateMeetingRequest) error
	DeleteMeetingFunc              func(ctx context.Context, meetingID string) error
}

// ListMeetings mocks the ListMeetings API call
func (m *MockMeetingsAPI) ListMeetings(ctx context.Context, userID string, listType api.MeetingListType) ([]api.Meeting, error) {
	if m.ListMeetingsFunc != nil {
		return m.ListMeetingsFunc(ctx, userID, listType)
	}
	return []api.Meeting{
		{ID: 123456789, UUID: "test-uuid-123", HostID: userID, Topic: "Weekly sync", Type: api.MeetingTypeScheduled},
	}, nil
}

// GetPastMeetingDetails mocks the GetPastMeetingDetails API call
func (m *MockMeetingsAPI) GetPastMeetingDetails(ctx context.Context, meetingUUID string) (*api.PastMeeting, error) {
	if m.GetPastMeetingDetailsFunc != nil {
		return m.GetPastMeetingDetailsFunc(ctx, meetingUUID)
	}
	return &api.PastMeeting{ID: 123456789, UUID: meetingUUID, Topic: "Weekly sync", Duration: 30, ParticipantsCount: 2}, nil
}

// GetPastMeetingParticipants mocks the GetPastMeetingParticipants API call
func (m *MockMeetingsAPI) GetPastMeetingParticipants(ctx context.Context, meetingUUID string) ([]api.PastMeetingParticipant, error) {
	if m.GetPastMeetingParticipantsFunc != nil {
		return m.GetPastMeetingParticipantsFunc(ctx, meetingUUID)
	}
	return []api.PastMeetingParticipant{
		{ID: "p1", Name: "John Doe", UserEmail: "user1@example.com"},
	}, nil
}

// CreateMeeting mocks the CreateMeeting API call
func (m *MockMeetingsAPI) CreateMeeting(ctx context.Context, userID string, request *api.CreateMeetingRequest) (*api.CreateMeetingResponse, error) {
	if m.CreateMeetingFunc != nil {
		return m.CreateMeetingFunc(ctx, userID, request)
	}
	// Default mock response
	return &api.CreateMeetingResponse{
		ID:       123456789,
		UUID:     "test-uuid-123",
		HostID:   userID,
		Topic:    request.Topic,
		Type:     request.Type,
		Status:   "waiting",
		Duration: request.Duration,
		Timezone: request.Timezone,
		JoinURL:  "https://zoom.us/j/123456789",
	}, nil
}

// UpdateMeeting mocks the UpdateMeeting API call
func (m *MockMeetingsAPI) UpdateMeeting(ctx context.Context, meetingID string, request *api.UpdateMeetingRequest) error {
	if m.UpdateMeetingFunc != nil {
		return m.UpdateMeetingFunc(ctx, meetingID, request)
	}
	return nil
}

// DeleteMeeting mocks the DeleteMeeting API call
func (m *MockMeetingsAPI) DeleteMeeting(ctx context.Context, meetingID string) error {
	if m.DeleteMeetingFunc != nil {
		return m.DeleteMeetingFunc(ctx, meetingID)
	}
	return nil
}
