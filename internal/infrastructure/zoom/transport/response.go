// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package transport

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
)

const setCookie = "Set-Cookie"

var (
	headerSeparator = []byte("\r\n\r\n")
	interimStatus   = regexp.MustCompile(`(?i)^HTTP/\d+(?:\.\d+)? 100 Continue\r\n\r\n`)
	statusLine      = regexp.MustCompile(`^(HTTP/\d+(?:\.\d+)?) (\d{3})(?: (.*))?$`)
)

// Response is a parsed Zoom response.
type Response struct {
	StatusCode int
	StatusText string
	Proto      string
	// Headers holds one value per name, except Set-Cookie which keeps every value.
	Headers map[string][]string
	Body    []byte
}

// Get returns the last value of the named header.
func (r *Response) Get(name string) string {
	if r == nil {
		return ""
	}
	values := r.Headers[name]
	if len(values) == 0 {
		for k, v := range r.Headers {
			if strings.EqualFold(k, name) && len(v) > 0 {
				return v[len(v)-1]
			}
		}
		return ""
	}
	return values[len(values)-1]
}

// Cookies returns every Set-Cookie value in the order received.
func (r *Response) Cookies() []string {
	if r == nil {
		return nil
	}
	return r.Headers[setCookie]
}

// ParseResponse splits raw response bytes into status, headers and body.
// Leading "100 Continue" blocks are dropped first. Malformed input degrades to
// zero fields.
func ParseResponse(raw []byte) *Response {
	resp := &Response{Headers: map[string][]string{}}

	for {
		loc := interimStatus.FindIndex(raw)
		if loc == nil {
			break
		}
		raw = raw[loc[1]:]
	}

	head, body, found := bytes.Cut(raw, headerSeparator)
	if found {
		resp.Body = body
	}

	statusSeen := false
	for _, line := range strings.Split(string(head), "\r\n") {
		if line == "" {
			continue
		}
		if !statusSeen {
			if m := statusLine.FindStringSubmatch(line); m != nil {
				statusSeen = true
				resp.Proto = m[1]
				resp.StatusCode, _ = strconv.Atoi(m[2])
				resp.StatusText = m[3]
				continue
			}
		}

		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			resp.Headers[line] = []string{""}
			continue
		}
		if key == setCookie {
			resp.Headers[key] = append(resp.Headers[key], value)
			continue
		}
		resp.Headers[key] = []string{value}
	}

	return resp
}
