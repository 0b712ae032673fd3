// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "message only",
			err:      NewNotFoundError("token record not found"),
			expected: "token record not found",
		},
		{
			name:     "wrapped cause",
			err:      NewUnavailableError("token bucket unavailable", errors.New("nats: timeout")),
			expected: "token bucket unavailable: nats: timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestGetErrorType(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"validation", NewValidationError("bad email"), ErrorTypeValidation},
		{"not found", NewNotFoundError("missing"), ErrorTypeNotFound},
		{"conflict", NewConflictError("revision changed", cause), ErrorTypeConflict},
		{"unavailable", NewUnavailableError("down"), ErrorTypeUnavailable},
		{"unauthorized", NewUnauthorizedError("no token"), ErrorTypeUnauthorized},
		{"wrapped domain error", fmt.Errorf("outer: %w", NewNotFoundError("inner")), ErrorTypeNotFound},
		{"plain error falls back to internal", cause, ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorType(tt.err))
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternalError("failed to save token", cause)

	assert.ErrorIs(t, err, cause)
}

func TestErrorType_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrorTypeValidation.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, ErrorTypeNotFound.HTTPStatus())
	assert.Equal(t, http.StatusConflict, ErrorTypeConflict.HTTPStatus())
	assert.Equal(t, http.StatusServiceUnavailable, ErrorTypeUnavailable.HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, ErrorTypeUnauthorized.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, ErrorTypeInternal.HTTPStatus())
}
