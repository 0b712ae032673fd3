// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strconv"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/transport"
)

// ErrPageLimitReached is returned, together with the items collected so far,
// when a listing hits the configured page ceiling.
var ErrPageLimitReached = errors.New("zoom pagination page limit reached")

// page is one decoded page of a listing.
type page map[string]json.RawMessage

func (p page) intField(key string) int {
	raw, ok := p[key]
	if !ok {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	v, err := n.Int64()
	if err != nil {
		return 0
	}
	return int(v)
}

func (p page) stringField(key string) string {
	raw, ok := p[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// items decodes the array under key. A missing, null or non-array value is an
// empty page.
func items[T any](p page, key string) ([]T, error) {
	raw := bytes.TrimSpace(p[key])
	if len(raw) == 0 || raw[0] != '[' {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return out, nil
}

// fetchPage issues one GET of a listing
func (c *Client) fetchPage(ctx context.Context, path string, query map[string]string) (page, error) {
	result, err := c.Send(ctx, &transport.Request{
		Method: transport.MethodGet,
		Path:   path,
		Query:  query,
	})
	if err != nil {
		return nil, err
	}
	if isFailure(result.Response) {
		return nil, parseErrorResponse(result.Response)
	}

	var p page
	if err := json.Unmarshal(result.Response.Body, &p); err != nil || p == nil {
		slog.WarnContext(ctx, "Zoom listing page is not a JSON object, treating it as empty",
			"path", path)
		return page{}, nil
	}
	return p, nil
}

// collectPages walks a page_number/page_count listing. The server's
// page_number wins over the local counter so that a corrected page number
// resynchronizes the walk.
func collectPages[T any](ctx context.Context, c *Client, path string, params map[string]string, itemsKey string) ([]T, error) {
	var all []T
	pageNumber := 0

	for fetched := 0; ; fetched++ {
		if fetched >= c.config.MaxPages {
			slog.WarnContext(ctx, "Zoom listing stopped at page limit",
				"path", path,
				"max_pages", c.config.MaxPages,
				"items", len(all))
			return all, fmt.Errorf("%w: %s after %d pages", ErrPageLimitReached, path, fetched)
		}

		pageNumber++
		query := maps.Clone(params)
		if query == nil {
			query = map[string]string{}
		}
		query["page_number"] = strconv.Itoa(pageNumber)

		p, err := c.fetchPage(ctx, path, query)
		if err != nil {
			return nil, err
		}
		pageItems, err := items[T](p, itemsKey)
		if err != nil {
			return nil, err
		}
		all = append(all, pageItems...)

		if serverPage := p.intField("page_number"); serverPage > 0 {
			pageNumber = serverPage
		}
		if pageNumber >= p.intField("page_count") {
			return all, nil
		}
	}
}

// collectCursor walks a next_page_token listing until the token comes back
// empty or absent.
func collectCursor[T any](ctx context.Context, c *Client, path string, params map[string]string, itemsKey string) ([]T, error) {
	var all []T
	nextPageToken := ""

	for fetched := 0; ; fetched++ {
		if fetched >= c.config.MaxPages {
			slog.WarnContext(ctx, "Zoom listing stopped at page limit",
				"path", path,
				"max_pages", c.config.MaxPages,
				"items", len(all))
			return all, fmt.Errorf("%w: %s after %d pages", ErrPageLimitReached, path, fetched)
		}

		query := maps.Clone(params)
		if query == nil {
			query = map[string]string{}
		}
		query["next_page_token"] = nextPageToken

		p, err := c.fetchPage(ctx, path, query)
		if err != nil {
			return nil, err
		}
		pageItems, err := items[T](p, itemsKey)
		if err != nil {
			return nil, err
		}
		all = append(all, pageItems...)

		nextPageToken = p.stringField("next_page_token")
		if nextPageToken == "" {
			return all, nil
		}
	}
}
