// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/transport"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/logging"
)

// Meeting type constants for Zoom API
const (
	MeetingTypeInstant              = 1
	MeetingTypeScheduled            = 2
	MeetingTypeRecurringNoFixedTime = 3
	MeetingTypeRecurringFixedTime   = 8
)

// MeetingListType filters ListMeetings
type MeetingListType string

const (
	MeetingListScheduled        MeetingListType = "scheduled"
	MeetingListLive             MeetingListType = "live"
	MeetingListUpcoming         MeetingListType = "upcoming"
	MeetingListUpcomingMeetings MeetingListType = "upcoming_meetings"
	MeetingListPreviousMeetings MeetingListType = "previous_meetings"
)

// Registration type constants for meeting settings
const (
	RegistrationTypeOnce      = 1
	RegistrationTypeEachTime  = 2
	RegistrationTypeSelective = 3
)

// Auto recording constants for meeting settings
const (
	AutoRecordingLocal    = "local"
	AutoRecordingCloud    = "cloud"
	AutoRecordingDisabled = "none"
)

// Audio constants for meeting settings
const (
	AudioVoIP      = "voip"
	AudioTelephony = "telephony"
	AudioBoth      = "both"
)

const (
	listMeetingsPageSize     = "50"
	pastParticipantsPageSize = "50"
)

// Meeting is an entry of a user's meeting list
type Meeting struct {
	ID        int64  `json:"id"`
	UUID      string `json:"uuid"`
	HostID    string `json:"host_id"`
	Topic     string `json:"topic"`
	Type      int    `json:"type"`
	StartTime string `json:"start_time,omitempty"`
	Duration  int    `json:"duration,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	Agenda    string `json:"agenda,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	JoinURL   string `json:"join_url,omitempty"`
}

// PastMeeting is the summary of an ended meeting instance
type PastMeeting struct {
	ID                int64  `json:"id"`
	UUID              string `json:"uuid"`
	HostID            string `json:"host_id"`
	Type              int    `json:"type"`
	Topic             string `json:"topic"`
	UserName          string `json:"user_name"`
	UserEmail         string `json:"user_email"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	Duration          int    `json:"duration"`
	TotalMinutes      int    `json:"total_minutes"`
	ParticipantsCount int    `json:"participants_count"`
	Dept              string `json:"dept,omitempty"`
}

// PastMeetingParticipant is an attendee of an ended meeting instance
type PastMeetingParticipant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UserEmail string `json:"user_email"`
}

// MeetingSettings represents Zoom meeting settings
type MeetingSettings struct {
	HostVideo        bool   `json:"host_video"`
	ParticipantVideo bool   `json:"participant_video"`
	JoinBeforeHost   bool   `json:"join_before_host"`
	MuteUponEntry    bool   `json:"mute_upon_entry"`
	ApprovalType     int    `json:"approval_type"`
	RegistrationType int    `json:"registration_type,omitempty"`
	Audio            string `json:"audio,omitempty"`
	AutoRecording    string `json:"auto_recording,omitempty"`
	WaitingRoom      bool   `json:"waiting_room"`
}

// CreateMeetingRequest represents the request to create a Zoom meeting
type CreateMeetingRequest struct {
	Topic     string           `json:"topic"`
	Type      int              `json:"type"`
	StartTime string           `json:"start_time,omitempty"`
	Duration  int              `json:"duration,omitempty"`
	Timezone  string           `json:"timezone,omitempty"`
	Agenda    string           `json:"agenda,omitempty"`
	Password  string           `json:"password,omitempty"`
	Settings  *MeetingSettings `json:"settings,omitempty"`
}

// UpdateMeetingRequest represents the request to update a Zoom meeting
type UpdateMeetingRequest struct {
	Topic     string           `json:"topic,omitempty"`
	Type      int              `json:"type,omitempty"`
	StartTime string           `json:"start_time,omitempty"`
	Duration  int              `json:"duration,omitempty"`
	Timezone  string           `json:"timezone,omitempty"`
	Agenda    string           `json:"agenda,omitempty"`
	Settings  *MeetingSettings `json:"settings,omitempty"`
}

// CreateMeetingResponse represents the response from creating a Zoom meeting
type CreateMeetingResponse struct {
	ID        int64            `json:"id"`
	UUID      string           `json:"uuid"`
	HostID    string           `json:"host_id"`
	HostEmail string           `json:"host_email"`
	Topic     string           `json:"topic"`
	Type      int              `json:"type"`
	Status    string           `json:"status"`
	StartTime string           `json:"start_time"`
	Duration  int              `json:"duration"`
	Timezone  string           `json:"timezone"`
	CreatedAt string           `json:"created_at"`
	StartURL  string           `json:"start_url"`
	JoinURL   string           `json:"join_url"`
	Password  string           `json:"password"`
	Settings  *MeetingSettings `json:"settings"`
}

// ListMeetings returns every meeting of userID of the given list type.
func (c *Client) ListMeetings(ctx context.Context, userID string, listType MeetingListType) ([]Meeting, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "list_meetings"))

	if listType == "" {
		listType = MeetingListUpcoming
	}
	path := "/users/" + pathSegment(userID) + "/meetings"
	return collectPages[Meeting](ctx, c, path, map[string]string{
		"type":      string(listType),
		"page_size": listMeetingsPageSize,
	}, "meetings")
}

// GetPastMeetingDetails returns the summary of an ended meeting instance.
func (c *Client) GetPastMeetingDetails(ctx context.Context, meetingUUID string) (*PastMeeting, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "get_past_meeting_details"))

	var meeting PastMeeting
	if _, err := c.call(ctx, transport.MethodGet, "/past_meetings/"+meetingSegment(meetingUUID), nil, nil, &meeting); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// GetPastMeetingParticipants lists attendees of an ended meeting instance, one
// entry per email, or per name for attendees without an email. A later entry
// replaces an earlier one in place.
func (c *Client) GetPastMeetingParticipants(ctx context.Context, meetingUUID string) ([]PastMeetingParticipant, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "get_past_meeting_participants"))

	path := "/past_meetings/" + meetingSegment(meetingUUID) + "/participants"
	all, err := collectCursor[PastMeetingParticipant](ctx, c, path, map[string]string{
		"page_size": pastParticipantsPageSize,
	}, "participants")
	if err != nil {
		return all, err
	}

	return dedupeParticipants(all), nil
}

func dedupeParticipants(all []PastMeetingParticipant) []PastMeetingParticipant {
	out := make([]PastMeetingParticipant, 0, len(all))
	index := make(map[string]int, len(all))

	for _, p := range all {
		key := p.UserEmail
		if key == "" {
			key = p.Name
		}
		if key == "" {
			out = append(out, p)
			continue
		}
		if i, ok := index[key]; ok {
			out[i] = p
			continue
		}
		index[key] = len(out)
		out = append(out, p)
	}
	return out
}

// CreateMeeting creates a new meeting in Zoom for the specified user
func (c *Client) CreateMeeting(ctx context.Context, userID string, request *CreateMeetingRequest) (*CreateMeetingResponse, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "create_meeting"))

	var meeting CreateMeetingResponse
	path := fmt.Sprintf("/users/%s/meetings", pathSegment(userID))
	if _, err := c.call(ctx, transport.MethodPost, path, nil, request, &meeting); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// UpdateMeeting updates an existing meeting in Zoom
func (c *Client) UpdateMeeting(ctx context.Context, meetingID string, request *UpdateMeetingRequest) error {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "update_meeting"))

	_, err := c.call(ctx, transport.MethodPatch, "/meetings/"+meetingSegment(meetingID), nil, request, nil)
	return err
}

// DeleteMeeting deletes a meeting from Zoom
func (c *Client) DeleteMeeting(ctx context.Context, meetingID string) error {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "delete_meeting"))

	resp, err := c.call(ctx, transport.MethodDelete, "/meetings/"+meetingSegment(meetingID), nil, nil, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return parseErrorResponse(resp)
	}
	return nil
}

// TranslateMeetingType returns a display name for a Zoom meeting type.
func TranslateMeetingType(typeID int) string {
	switch typeID {
	case MeetingTypeInstant:
		return "Instant"
	case MeetingTypeScheduled:
		return "Scheduled"
	case MeetingTypeRecurringNoFixedTime:
		return "Recurring with no fixed time"
	case MeetingTypeRecurringFixedTime:
		return "Recurring with fixed time"
	default:
		return fmt.Sprintf("Type #%d", typeID)
	}
}
