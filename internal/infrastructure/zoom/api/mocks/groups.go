// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/api"
)

// MockGroupsAPI is a mock implementation of Zoom group API operations for testing
type MockGroupsAPI struct {
	AddGroupMemberFunc    func(ctx context.Context, groupID, userID string, idType api.MemberIDType) (*api.AddGroupMembersResponse, error)
	GetGroupsListFunc     func(ctx context.Context) (map[string]api.Group, error)
	DeleteGroupMemberFunc func(ctx context.Context, groupID, memberID string) error
}

// AddGroupMember mocks the AddGroupMember API call
func (m *MockGroupsAPI) AddGroupMember(ctx context.Context, groupID, userID string, idType api.MemberIDType) (*api.AddGroupMembersResponse, error) {
	if m.AddGroupMemberFunc != nil {
		return m.AddGroupMemberFunc(ctx, groupID, userID, idType)
	}
	return &api.AddGroupMembersResponse{IDs: userID, AddedAt: "2026-01-01T10:00:00Z"}, nil
}

// GetGroupsList mocks the GetGroupsList API call
func (m *MockGroupsAPI) GetGroupsList(ctx context.Context) (map[string]api.Group, error) {
	if m.GetGroupsListFunc != nil {
		return m.GetGroupsListFunc(ctx)
	}
	return map[string]api.Group{
		"group1": {ID: "group1", Name: "Engineering", TotalMembers: 2},
	}, nil
}

// DeleteGroupMember mocks the DeleteGroupMember API call
func (m *MockGroupsAPI) DeleteGroupMember(ctx context.Context, groupID, memberID string) error {
	if m.DeleteGroupMemberFunc != nil {
		return m.DeleteGroupMemberFunc(ctx, groupID, memberID)
	}
	return nil
}
