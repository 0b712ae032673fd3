// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/transport"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/logging"
)

// MemberIDType tells AddGroupMember how to read the member identifier
type MemberIDType string

const (
	MemberIDZoom  MemberIDType = "zoom_id"
	MemberIDEmail MemberIDType = "email"
)

// Group is a Zoom user group
type Group struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TotalMembers int    `json:"total_members"`
}

// AddGroupMembersResponse is Zoom's answer to a member addition
type AddGroupMembersResponse struct {
	IDs     string `json:"ids"`
	AddedAt string `json:"added_at"`
}

type groupMember struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
}

// AddGroupMember adds one user to a group, by Zoom id or by email.
func (c *Client) AddGroupMember(ctx context.Context, groupID, userID string, idType MemberIDType) (*AddGroupMembersResponse, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "add_group_member"))

	member := groupMember{ID: userID}
	if idType == MemberIDEmail {
		member = groupMember{Email: userID}
	}
	body := struct {
		Members []groupMember `json:"members"`
	}{Members: []groupMember{member}}

	var out AddGroupMembersResponse
	path := "/groups/" + pathSegment(groupID) + "/members"
	if _, err := c.call(ctx, transport.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetGroupsList returns every group of the account keyed by group id.
func (c *Client) GetGroupsList(ctx context.Context) (map[string]Group, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "get_groups_list"))

	var out struct {
		Groups []Group `json:"groups"`
	}
	if _, err := c.call(ctx, transport.MethodGet, "/groups", nil, nil, &out); err != nil {
		return nil, err
	}

	groups := make(map[string]Group, len(out.Groups))
	for _, g := range out.Groups {
		groups[g.ID] = g
	}
	return groups, nil
}

// DeleteGroupMember removes a member from a group. Only 204 No Content counts
// as success; anything else comes back as an *Error with the response headers.
func (c *Client) DeleteGroupMember(ctx context.Context, groupID, memberID string) error {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "delete_group_member"))

	result, err := c.Send(ctx, &transport.Request{
		Method: transport.MethodDelete,
		Path:   "/groups/" + pathSegment(groupID) + "/members/" + pathSegment(memberID),
	})
	if err != nil {
		return err
	}
	if result.Response.StatusCode != http.StatusNoContent {
		apiErr := parseErrorResponse(result.Response)
		slog.ErrorContext(ctx, "failed to delete Zoom group member",
			"group_id", groupID,
			"member_id", memberID,
			logging.ErrKey, apiErr)
		return apiErr
	}
	return nil
}
