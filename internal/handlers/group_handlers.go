// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/api"
)

// AddGroupMemberBody is the JSON body of POST /groups/{groupId}/members.
// Exactly one of ID and Email is set.
type AddGroupMemberBody struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
}

// ListGroups returns every group of the account, ordered by name.
func (h *AdminHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	groups, err := h.zoom.GetGroupsList(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]api.Group, 0, len(groups))
	for _, g := range groups {
		items = append(items, g)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})

	writeList(ctx, w, items, nil)
}

// AddGroupMember adds a user to a group by Zoom id or email.
func (h *AdminHandler) AddGroupMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	groupID, err := pathVar(r, "groupId")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var body AddGroupMemberBody
	if err := decodeJSONBody(r, &body); err != nil {
		writeError(ctx, w, err)
		return
	}

	id, email := strings.TrimSpace(body.ID), strings.TrimSpace(body.Email)
	var member string
	var idType api.MemberIDType
	switch {
	case id != "" && email != "":
		writeError(ctx, w, domain.NewValidationError("set either id or email, not both"))
		return
	case id != "":
		member, idType = id, api.MemberIDZoom
	case email != "":
		member, idType = email, api.MemberIDEmail
	default:
		writeError(ctx, w, domain.NewValidationError("id or email is required"))
		return
	}

	resp, err := h.zoom.AddGroupMember(ctx, groupID, member, idType)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// DeleteGroupMember removes a member from a group.
func (h *AdminHandler) DeleteGroupMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	groupID, err := pathVar(r, "groupId")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	memberID, err := pathVar(r, "memberId")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.zoom.DeleteGroupMember(ctx, groupID, memberID); err != nil {
		writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
