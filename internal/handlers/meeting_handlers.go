// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"net/http"
	"time"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/api"
)

// metricsDateLayout is the yyyy-mm-dd form the dashboard API expects
const metricsDateLayout = "2006-01-02"

// ListUserMeetings lists the meetings of a user, filtered by ?type=.
func (h *AdminHandler) ListUserMeetings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := pathVar(r, "userId")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	listType := api.MeetingListType(r.URL.Query().Get("type"))
	switch listType {
	case "", api.MeetingListScheduled, api.MeetingListLive, api.MeetingListUpcoming,
		api.MeetingListUpcomingMeetings, api.MeetingListPreviousMeetings:
	default:
		writeError(ctx, w, domain.NewValidationError("unsupported meeting list type "+string(listType)))
		return
	}

	meetings, err := h.zoom.ListMeetings(ctx, userID, listType)
	if !writeList(ctx, w, meetings, err) {
		writeError(ctx, w, err)
	}
}

// ListMeetingParticipants lists dashboard participants of a meeting.
func (h *AdminHandler) ListMeetingParticipants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	meetingID, err := pathVar(r, "meetingId")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	metricsType, err := parseMetricsType(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	participants, err := h.zoom.ListMeetingParticipants(ctx, meetingID, metricsType)
	if !writeList(ctx, w, participants, err) {
		writeError(ctx, w, err)
	}
}

// GetPastMeeting returns the summary of an ended meeting instance.
func (h *AdminHandler) GetPastMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	meetingUUID, err := pathVar(r, "meetingUUID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	meeting, err := h.zoom.GetPastMeetingDetails(ctx, meetingUUID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, meeting)
}

// GetPastMeetingParticipants lists the deduplicated attendees of an ended meeting.
func (h *AdminHandler) GetPastMeetingParticipants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	meetingUUID, err := pathVar(r, "meetingUUID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	participants, err := h.zoom.GetPastMeetingParticipants(ctx, meetingUUID)
	if !writeList(ctx, w, participants, err) {
		writeError(ctx, w, err)
	}
}

// MetricsMeetings lists dashboard meetings between ?from= and ?to=.
func (h *AdminHandler) MetricsMeetings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	from, to := query.Get("from"), query.Get("to")
	fromDate, err := time.Parse(metricsDateLayout, from)
	if err != nil {
		writeError(ctx, w, domain.NewValidationError("from must be a yyyy-mm-dd date", err))
		return
	}
	toDate, err := time.Parse(metricsDateLayout, to)
	if err != nil {
		writeError(ctx, w, domain.NewValidationError("to must be a yyyy-mm-dd date", err))
		return
	}
	if toDate.Before(fromDate) {
		writeError(ctx, w, domain.NewValidationError("to must not be before from"))
		return
	}

	metricsType, err := parseMetricsType(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	meetings, err := h.zoom.MetricsMeetings(ctx, from, to, metricsType)
	if !writeList(ctx, w, meetings, err) {
		writeError(ctx, w, err)
	}
}

// GetMetricsMeeting returns the dashboard entry of one meeting.
func (h *AdminHandler) GetMetricsMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	meetingID, err := pathVar(r, "meetingId")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	metricsType, err := parseMetricsType(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	meeting, err := h.zoom.GetMeetingDetails(ctx, meetingID, metricsType)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, meeting)
}
