// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/transport"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/logging"
)

// loginTypeZoom selects Zoom work email login on user lookups
const loginTypeZoom = "100"

// call sends a JSON request and decodes a successful response into out.
func (c *Client) call(ctx context.Context, method, path string, query map[string]string, body, out any) (*transport.Response, error) {
	jsonBody, err := marshalRequestBody(body)
	if err != nil {
		return nil, err
	}

	req := &transport.Request{
		Method: method,
		Path:   path,
		Query:  query,
		Body:   jsonBody,
	}
	if jsonBody != nil {
		req.Headers = []string{"Content-Type: application/json"}
	}

	result, err := c.Send(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "Zoom API request failed", logging.ErrKey, err)
		return nil, err
	}

	resp := result.Response
	if isFailure(resp) {
		apiErr := parseErrorResponse(resp)
		slog.ErrorContext(ctx, "Zoom API returned error", logging.ErrKey, apiErr, "status", resp.StatusCode)
		return resp, apiErr
	}

	if out != nil && len(strings.TrimSpace(string(resp.Body))) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			slog.ErrorContext(ctx, "failed to decode Zoom response", logging.ErrKey, err)
			return resp, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp, nil
}

// marshalRequestBody marshals the request body to JSON
func marshalRequestBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return jsonBody, nil
}

// pathSegment escapes one path segment.
func pathSegment(s string) string {
	return url.PathEscape(s)
}

// meetingSegment escapes a meeting id or UUID. Zoom requires UUIDs that
// contain "/" to be encoded twice.
func meetingSegment(id string) string {
	if strings.Contains(id, "/") {
		return url.PathEscape(url.PathEscape(id))
	}
	return url.PathEscape(id)
}
