package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "aidtrack/pkg/domain"
	"aidtrack/internal/platform/logger"
	"aidtrack/internal/platform/metrics"
	"aidtrack/pkg/requestcontext"
)

var testMetrics = metrics.New()

type failingStore struct{}

func (failingStore) Append(context.Context, Record) error { return errors.New("db down") }
func (failingStore) ListByEntity(context.Context, string, string) ([]Record, error) {
	return nil, nil
}
func (failingStore) ListRecent(context.Context, int) ([]Record, error) { return nil, nil }

func TestRecordAppendsOneRecord(t *testing.T) {
	store := NewInMemoryStore()
	recorder := NewRecorder(store, logger.New(), testMetrics)

	actor := id.UserID(uuid.New())
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-1")

	recorder.Record(ctx, ActionUpdate, EntityDuplicateAlert, "alert-1", &actor,
		map[string]string{"status": "pending"},
		map[string]string{"status": "resolved"},
	)

	records := store.All()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, ActionUpdate, rec.Action)
	assert.Equal(t, EntityDuplicateAlert, rec.Entity)
	assert.Equal(t, "alert-1", rec.EntityID)
	require.NotNil(t, rec.ActorID)
	assert.Equal(t, actor, *rec.ActorID)
	assert.Equal(t, now, rec.Timestamp)
	assert.Equal(t, "req-1", rec.RequestID)

	var before, after map[string]string
	require.NoError(t, json.Unmarshal(rec.Before, &before))
	require.NoError(t, json.Unmarshal(rec.After, &after))
	assert.Equal(t, "pending", before["status"])
	assert.Equal(t, "resolved", after["status"])
}

func TestRecordNilActorMeansSystem(t *testing.T) {
	store := NewInMemoryStore()
	recorder := NewRecorder(store, logger.New(), testMetrics)

	recorder.Record(context.Background(), ActionCreate, EntityDelivery, "d-1", nil, nil, map[string]int{"qty": 2})

	records := store.All()
	require.Len(t, records, 1)
	assert.Nil(t, records[0].ActorID)
	assert.Nil(t, records[0].Before)
	assert.NotNil(t, records[0].After)
}

func TestRecordSwallowsStoreFailure(t *testing.T) {
	recorder := NewRecorder(failingStore{}, logger.New(), testMetrics)

	// Must not panic or propagate; audit is best-effort.
	recorder.Record(context.Background(), ActionDelete, EntityDelivery, "d-1", nil, nil, nil)
}

func TestRecordFanOutNonBlocking(t *testing.T) {
	store := NewInMemoryStore()
	events := make(chan Record, 1)
	recorder := NewRecorder(store, logger.New(), testMetrics, WithFanOut(events))

	recorder.Record(context.Background(), ActionCreate, EntityReceipt, "r-1", nil, nil, nil)
	recorder.Record(context.Background(), ActionCreate, EntityReceipt, "r-2", nil, nil, nil)

	// Buffer holds one; the second send must be dropped, not block, and both
	// store writes must land.
	assert.Len(t, store.All(), 2)
	first := <-events
	assert.Equal(t, "r-1", first.EntityID)
}

func TestListRecentNewestFirst(t *testing.T) {
	store := NewInMemoryStore()
	recorder := NewRecorder(store, logger.New(), testMetrics)

	for _, entityID := range []string{"a", "b", "c"} {
		recorder.Record(context.Background(), ActionCreate, EntityDelivery, entityID, nil, nil, nil)
	}

	recent, err := recorder.ListRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].EntityID)
	assert.Equal(t, "b", recent[1].EntityID)
}
