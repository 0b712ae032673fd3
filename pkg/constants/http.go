// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Constants for the HTTP request headers
const (
	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"

	// ContentTypeJSON is the content type of every admin API response
	ContentTypeJSON string = "application/json"
)

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"

// Admin session constants
const (
	// SessionName is the name of the admin session cookie
	SessionName = "zoom_admin_session"

	// OAuthStateKey is the session key holding the pending OAuth state
	OAuthStateKey = "oauth_state"

	// SessionMaxAge bounds how long an authorization round trip may take, in seconds
	SessionMaxAge = 10 * 60
)

// Health check paths
const (
	LivezPath  = "/livez"
	ReadyzPath = "/readyz"
)
