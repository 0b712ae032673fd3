// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package transport issues single HTTP requests against Zoom and parses the raw
// responses that come back.
package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// HTTP methods accepted by Request.
const (
	MethodGet    = http.MethodGet
	MethodPost   = http.MethodPost
	MethodPatch  = http.MethodPatch
	MethodPut    = http.MethodPut
	MethodDelete = http.MethodDelete
)

// Error codes carried by Error.
const (
	CodeTimeout    = "timeout"
	CodeCanceled   = "canceled"
	CodeDNS        = "dns"
	CodeTLS        = "tls"
	CodeConnection = "connection"
	CodeUnknown    = "unknown"
)

// Transport executes one request and returns the raw response bytes: status
// line, CRLF separated headers, a blank line and the body. A non-2xx status is
// not an error.
type Transport interface {
	Execute(ctx context.Context, baseURL string, req *Request) ([]byte, error)
}

// Request describes a single call to Zoom.
type Request struct {
	Method string
	// Path is appended to the base URL and must begin with "/".
	Path string
	// Headers are "Name: value" strings. Every entry is sent, duplicates included.
	Headers []string
	Query   map[string]string
	Body    []byte
	Options *Options
}

// Options are per-request transport overrides.
type Options struct {
	// Timeout replaces the transport timeout for this request when non-zero.
	Timeout time.Duration
	// CloseConnection asks the transport not to reuse the connection.
	CloseConnection bool
}

// Error is a network level failure: the request never produced an HTTP response.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("zoom transport error (%s): %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError classifies err into an Error.
func NewError(err error) *Error {
	return &Error{Code: classify(err), Message: err.Error(), Err: err}
}

func classify(err error) string {
	var (
		dnsErr     *net.DNSError
		certErr    *tls.CertificateVerificationError
		unknownCA  x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
		recordErr  tls.RecordHeaderError
		netErr     net.Error
		opErr      *net.OpError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.As(err, &dnsErr):
		return CodeDNS
	case errors.As(err, &certErr), errors.As(err, &unknownCA), errors.As(err, &hostErr),
		errors.As(err, &invalidErr), errors.As(err, &recordErr):
		return CodeTLS
	case errors.As(err, &netErr) && netErr.Timeout():
		return CodeTimeout
	case errors.As(err, &opErr):
		return CodeConnection
	default:
		return CodeUnknown
	}
}
