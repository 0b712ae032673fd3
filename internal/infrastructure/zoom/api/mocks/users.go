// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/api"
)

// MockUsersAPI is a mock implementation of Zoom user API operations for testing
type MockUsersAPI struct {
	GetAllUsersFunc       func(ctx context.Context, withDetails bool) ([]api.User, error)
	CreateUserFunc        func(ctx context.Context, request *api.CreateUserRequest) (*api.User, error)
	IsEmailExistsFunc     func(ctx context.Context, email string) (bool, error)
	UpdateUserFunc        func(ctx context.Context, userID string, request *api.UpdateUserRequest) error
	GetUserInfoFunc       func(ctx context.Context, userID string) (*api.User, error)
	UpdateUserPictureFunc func(ctx context.Context, userID string, picture api.Picture) error
}

// GetAllUsers mocks the GetAllUsers API call
func (m *MockUsersAPI) GetAllUsers(ctx context.Context, withDetails bool) ([]api.User, error) {
	if m.GetAllUsersFunc != nil {
		return m.GetAllUsersFunc(ctx, withDetails)
	}
	// Default mock response with various user types and statuses for testing
	return []api.User{
		{
			ID:        "user1",
			Email:     "user1@example.com",
			FirstName: "John",
			LastName:  "Doe",
			Type:      api.UserTypeLicensed,
			Status:    api.UserStatusActive,
		},
		{
			ID:        "user2",
			Email:     "user2@example.com",
			FirstName: "Jane",
			LastName:  "Smith",
			Type:      api.UserTypeBasic,
			Status:    api.UserStatusActive,
		},
		{
			ID:        "user3",
			Email:     "user3@example.com",
			FirstName: "Bob",
			LastName:  "Johnson",
			Type:      api.UserTypeLicensed,
			Status:    api.UserStatusInactive,
		},
	}, nil
}

// CreateUser mocks the CreateUser API call
func (m *MockUsersAPI) CreateUser(ctx context.Context, request *api.CreateUserRequest) (*api.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, request)
	}
	return &api.User{
		ID:        "new-user-id",
		Email:     request.Email,
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Type:      request.Type,
	}, nil
}

// IsEmailExists mocks the IsEmailExists API call
func (m *MockUsersAPI) IsEmailExists(ctx context.Context, email string) (bool, error) {
	if m.IsEmailExistsFunc != nil {
		return m.IsEmailExistsFunc(ctx, email)
	}
	return false, nil
}

// UpdateUser mocks the UpdateUser API call
func (m *MockUsersAPI) UpdateUser(ctx context.Context, userID string, request *api.UpdateUserRequest) error {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, userID, request)
	}
	return nil
}

// GetUserInfo mocks the GetUserInfo API call
func (m *MockUsersAPI) GetUserInfo(ctx context.Context, userID string) (*api.User, error) {
	if m.GetUserInfoFunc != nil {
		return m.GetUserInfoFunc(ctx, userID)
	}
	return &api.User{
		ID:        userID,
		Email:     userID + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Type:      api.UserTypeBasic,
		Status:    api.UserStatusActive,
	}, nil
}

// UpdateUserPicture mocks the UpdateUserPicture API call
func (m *MockUsersAPI) UpdateUserPicture(ctx context.Context, userID string, picture api.Picture) error {
	if m.UpdateUserPictureFunc != nil {
		return m.UpdateUserPictureFunc(ctx, userID, picture)
	}
	return nil
}
