// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/api"
)

// MockClient is a complete mock implementation of the Zoom API client
// It embeds the per-area mocks to provide full API coverage
type MockClient struct {
	*MockUsersAPI
	*MockMeetingsAPI
	*MockMetricsAPI
	*MockGroupsAPI
}

// NewMockClient creates a new mock client with default implementations
func NewMockClient() *MockClient {
	return &MockClient{
		MockUsersAPI:    &MockUsersAPI{},
		MockMeetingsAPI: &MockMeetingsAPI{},
		MockMetricsAPI:  &MockMetricsAPI{},
		MockGroupsAPI:   &MockGroupsAPI{},
	}
}

// Ensure MockClient implements ClientAPI interface
var _ api.ClientAPI = (*MockClient)(nil)
