// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/logging"
)

// DefaultFilename is used when no token file is configured.
const DefaultFilename = "zoom-token.json"

// FileStore keeps the token record in a single JSON file.
type FileStore struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithClock overrides the clock used to stamp saved records.
func WithClock(now func() time.Time) FileStoreOption {
	return func(s *FileStore) {
		s.now = now
	}
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string, opts ...FileStoreOption) *FileStore {
	if path == "" {
		path = DefaultFilename
	}
	s := &FileStore{
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the token file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the token file.
func (s *FileStore) Load(ctx context.Context) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.WarnContext(ctx, "unable to read token file", "path", s.path, logging.ErrKey, err)
		} else {
			slog.DebugContext(ctx, "no token file", "path", s.path)
		}
		return nil, false
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		slog.WarnContext(ctx, "token file is not valid JSON, ignoring it", "path", s.path, logging.ErrKey, err)
		return nil, false
	}
	if record.Data == nil {
		record.Data = Payload{}
	}

	return &record, true
}

// Save overwrites the token file with a record built from payload. The file is
// written next to its final location and renamed into place.
func (s *FileStore) Save(ctx context.Context, payload Payload) (*Record, error) {
	if payload.AccessToken() == "" {
		return nil, ErrMissingAccessToken
	}

	record := NewRecord(payload, s.now())
	data, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(s.path, data); err != nil {
		slog.ErrorContext(ctx, "failed to write token file", "path", s.path, logging.ErrKey, err, logging.PriorityCritical())
		return nil, err
	}

	slog.DebugContext(ctx, "token record saved",
		"path", s.path,
		"created", record.Created,
		"expires_ts", record.ExpiresTS,
		"scope", payload.Scope(),
	)

	return record, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp token file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set token file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp token file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

// Ensure FileStore implements Store
var _ Store = (*FileStore)(nil)
