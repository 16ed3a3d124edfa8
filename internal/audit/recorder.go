// Package audit appends immutable change records for every sensitive
// mutation. The trail is the system's ground truth for "who did what, when".
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	id "aidtrack/pkg/domain"
	"aidtrack/internal/platform/metrics"
	"aidtrack/pkg/requestcontext"
)

// Store persists audit records. Append-only: no update or delete methods
// exist on purpose.
type Store interface {
	Append(ctx context.Context, record Record) error
	ListByEntity(ctx context.Context, entity, entityID string) ([]Record, error)
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}

// Recorder builds and persists audit records. Writes are best-effort: a
// failed audit write is logged and counted but never aborts the business
// operation that triggered it. Callers that need the record to commit
// atomically with their own writes run Record inside their transaction.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	events  chan<- Record // optional fan-out to the streaming sink
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithFanOut attaches a channel draining into the streaming sink. Sends
// never block; when the buffer is full the event is dropped for streaming
// purposes (the store write already happened).
func WithFanOut(events chan<- Record) RecorderOption {
	return func(r *Recorder) { r.events = events }
}

func NewRecorder(store Store, logger *slog.Logger, m *metrics.Metrics, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: store, logger: logger, metrics: m}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends one audit record. A nil actorID denotes a system-initiated
// change. Snapshots are serialized as opaque JSON; the recorder does not
// validate their shape.
func (r *Recorder) Record(ctx context.Context, action Action, entity, entityID string, actorID *id.UserID, before, after any) {
	record := Record{
		ID:        uuid.New(),
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		ActorID:   actorID,
		Before:    r.marshalSnapshot(ctx, "before", before),
		After:     r.marshalSnapshot(ctx, "after", after),
		Station:   requestcontext.Station(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Timestamp: requestcontext.Now(ctx),
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	if err := r.store.Append(ctx, record); err != nil {
		r.metrics.AuditWriteErrors.Inc()
		r.logger.ErrorContext(ctx, "audit write failed",
			"action", string(action),
			"entity", entity,
			"entity_id", entityID,
			"error", err,
		)
		return
	}

	if r.events != nil {
		select {
		case r.events <- record:
		default:
			r.logger.WarnContext(ctx, "audit fan-out buffer full, dropping stream copy",
				"entity", entity,
				"entity_id", entityID,
			)
		}
	}
}

func (r *Recorder) marshalSnapshot(ctx context.Context, kind string, v any) json.RawMessage {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		r.logger.ErrorContext(ctx, "audit snapshot marshal failed", "kind", kind, "error", err)
		return nil
	}
	return raw
}

// ListByEntity returns the trail for one entity, newest first.
func (r *Recorder) ListByEntity(ctx context.Context, entity, entityID string) ([]Record, error) {
	return r.store.ListByEntity(ctx, entity, entityID)
}

// ListRecent returns the N most recent records.
func (r *Recorder) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	return r.store.ListRecent(ctx, limit)
}
