// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/api"
)

// MockMetricsAPI is a mock implementation of Zoom dashboard API operations for testing
type MockMetricsAPI struct {
	ListMeetingParticipantsFunc func(ctx context.Context, meetingID string, metricsType api.MetricsType) ([]api.MetricsParticipant, error)
	MetricsMeetingsFunc         func(ctx context.Context, from, to string, metricsType api.MetricsType) ([]api.MetricsMeeting, error)
	GetMeetingDetailsFunc       func(ctx context.Context, meetingID string, metricsType api.MetricsType) (*api.MetricsMeeting, error)
}

// ListMeetingParticipants mocks the ListMeetingParticipants API call
func (m *MockMetricsAPI) ListMeetingParticipants(ctx context.Context, meetingID string, metricsType api.MetricsType) ([]api.MetricsParticipant, error) {
	if m.ListMeetingParticipantsFunc != nil {
		return m.ListMeetingParticipantsFunc(ctx, meetingID, metricsType)
	}
	return []api.MetricsParticipant{
		{ID: "p1", UserName: "John Doe", Device: "Mac", JoinTime: "2026-01-01T10:00:00Z"},
	}, nil
}

// MetricsMeetings mocks the MetricsMeetings API call
func (m *MockMetricsAPI) MetricsMeetings(ctx context.Context, from, to string, metricsType api.MetricsType) ([]api.MetricsMeeting, error) {
	if m.MetricsMeetingsFunc != nil {
		return m.MetricsMeetingsFunc(ctx, from, to, metricsType)
	}
	return []api.MetricsMeeting{
		{ID: 123456789, UUID: "test-uuid-123", Topic: "Weekly sync", Participants: 2},
	}, nil
}

// GetMeetingDetails mocks the GetMeetingDetails API call
func (m *MockMetricsAPI) GetMeetingDetails(ctx context.Context, meetingID string, metricsType api.MetricsType) (*api.MetricsMeeting, error) {
	if m.GetMeetingDetailsFunc != nil {
		return m.GetMeetingDetailsFunc(ctx, meetingID, metricsType)
	}
	return &api.MetricsMeeting{UUID: meetingID, Topic: "Weekly sync", Participants: 2}, nil
}
