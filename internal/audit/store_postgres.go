package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "aidtrack/pkg/domain"
	txcontext "aidtrack/pkg/platform/tx"
)

// PostgresStore persists audit records in the audit_log table. When the
// context carries a transaction the append joins it, so a business mutation
// and its audit record can commit or roll back together.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed audit store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, record Record) error {
	query := `
		INSERT INTO audit_log (
			id, action, entity, entity_id, actor_id,
			before_state, after_state, station, client_ip, request_id, recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	var actorID *uuid.UUID
	if record.ActorID != nil {
		actor := uuid.UUID(*record.ActorID)
		actorID = &actor
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		record.ID,
		string(record.Action),
		record.Entity,
		record.EntityID,
		actorID,
		nullableJSON(record.Before),
		nullableJSON(record.After),
		record.Station,
		record.ClientIP,
		record.RequestID,
		record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

func (s *PostgresStore) ListByEntity(ctx context.Context, entity, entityID string) ([]Record, error) {
	query := `
		SELECT id, action, entity, entity_id, actor_id,
		       before_state, after_state, station, client_ip, request_id, recorded_at
		FROM audit_log
		WHERE entity = $1 AND ($2 = '' OR entity_id = $2)
		ORDER BY recorded_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, entity, entityID)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT id, action, entity, entity_id, actor_id,
		       before_state, after_state, station, client_ip, request_id, recorded_at
		FROM audit_log
		ORDER BY recorded_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var (
			record  Record
			action  string
			actorID *uuid.UUID
			before  []byte
			after   []byte
		)
		err := rows.Scan(
			&record.ID,
			&action,
			&record.Entity,
			&record.EntityID,
			&actorID,
			&before,
			&after,
			&record.Station,
			&record.ClientIP,
			&record.RequestID,
			&record.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		record.Action = Action(action)
		if actorID != nil {
			actor := id.UserID(*actorID)
			record.ActorID = &actor
		}
		record.Before = before
		record.After = after
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}
