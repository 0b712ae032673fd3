// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/logging"
)

const (
	// KVBucketName is the JetStream key-value bucket holding the token record.
	KVBucketName = "zoom-oauth-tokens"
	// KVKey is the single key the record lives under.
	KVKey = "token"

	tracerName = "github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/token"
)

// INatsKeyValue is the subset of jetstream.KeyValue used by NatsStore.
type INatsKeyValue interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Create(ctx context.Context, key string, value []byte, opts ...jetstream.KVCreateOpt) (uint64, error)
	Update(ctx context.Context, key string, value []byte, revision uint64) (uint64, error)
}

// NatsStore keeps the token record in a NATS JetStream key-value bucket. Writes
// are conditional on the revision last seen by this process, so two processes
// refreshing at the same time cannot silently overwrite each other.
type NatsStore struct {
	kv  INatsKeyValue
	now func() time.Time

	mu       sync.Mutex
	revision uint64
}

// NewNatsStore creates a store on top of an opened key-value bucket.
func NewNatsStore(kv INatsKeyValue, now func() time.Time) *NatsStore {
	if now == nil {
		now = time.Now
	}
	return &NatsStore{kv: kv, now: now}
}

// OpenNatsStore creates (or binds to) the token bucket on the given JetStream context.
func OpenNatsStore(ctx context.Context, js jetstream.JetStream) (*NatsStore, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      KVBucketName,
		Description: "Zoom OAuth token record",
		History:     5,
	})
	if err != nil {
		return nil, domain.NewUnavailableError("failed to open token bucket", err)
	}
	return NewNatsStore(kv, nil), nil
}

func startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "nats.kv."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "nats"),
			attribute.String("db.operation", op),
			attribute.String("db.nats.bucket", KVBucketName),
			attribute.String("db.nats.key", KVKey),
		),
	)
}

// Load fetches the record from the bucket.
func (s *NatsStore) Load(ctx context.Context) (*Record, bool) {
	ctx, span := startSpan(ctx, "get")
	defer span.End()

	if s.kv == nil {
		span.SetStatus(codes.Error, "bucket not available")
		slog.WarnContext(ctx, "token bucket is not available")
		return nil, false
	}

	entry, err := s.kv.Get(ctx, KVKey)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			s.setRevision(0)
			span.SetStatus(codes.Ok, "not found")
			slog.DebugContext(ctx, "no token record in bucket", "bucket", KVBucketName)
			return nil, false
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.WarnContext(ctx, "unable to read token record from bucket", logging.ErrKey, err)
		return nil, false
	}

	// a corrupt value is still the revision the next Save overwrites
	s.setRevision(entry.Revision())

	var record Record
	if err := json.Unmarshal(entry.Value(), &record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unmarshal")
		slog.WarnContext(ctx, "token record in bucket is not valid JSON, ignoring it", logging.ErrKey, err)
		return nil, false
	}
	if record.Data == nil {
		record.Data = Payload{}
	}

	span.SetStatus(codes.Ok, "")
	return &record, true
}

func (s *NatsStore) setRevision(revision uint64) {
	s.mu.Lock()
	s.revision = revision
	s.mu.Unlock()
}

// Save writes a record built from payload. The write only succeeds if the
// bucket still holds the revision this store last read or wrote.
func (s *NatsStore) Save(ctx context.Context, payload Payload) (*Record, error) {
	if payload.AccessToken() == "" {
		return nil, ErrMissingAccessToken
	}

	ctx, span := startSpan(ctx, "put")
	defer span.End()

	if s.kv == nil {
		err := domain.NewUnavailableError("token bucket is not available")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	record := NewRecord(payload, s.now())
	data, err := json.Marshal(record)
	if err != nil {
		return nil, domain.NewInternalError("failed to marshal token record", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var revision uint64
	if s.revision == 0 {
		revision, err = s.kv.Create(ctx, KVKey, data)
	} else {
		revision, err = s.kv.Update(ctx, KVKey, data, s.revision)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, jetstream.ErrKeyExists) {
			return nil, domain.NewConflictError("token record was changed by another process", err)
		}
		slog.ErrorContext(ctx, "failed to store token record", logging.ErrKey, err, logging.PriorityCritical())
		return nil, domain.NewInternalError(fmt.Sprintf("failed to store token record in %s", KVBucketName), err)
	}

	s.revision = revision
	span.SetStatus(codes.Ok, "")
	return record, nil
}

// Ensure NatsStore implements Store
var _ Store = (*NatsStore)(nil)
