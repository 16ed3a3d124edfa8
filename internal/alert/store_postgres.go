package alert

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "aidtrack/pkg/domain"
	"aidtrack/pkg/platform/sentinel"
)

// PostgresStore persists alerts in the duplicate_alerts table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed alert store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, a *Alert) error {
	query := `
		INSERT INTO duplicate_alerts (
			id, beneficiary_id, aid_type_id, delivery_id, triggered_at,
			days_since_last, status, reviewed_by, reviewed_at, reason, notes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(a.ID),
		uuid.UUID(a.BeneficiaryID),
		uuid.UUID(a.AidTypeID),
		uuid.UUID(a.DeliveryID),
		a.TriggeredAt,
		a.DaysSinceLast,
		string(a.Status),
		nullableUserID(a.ReviewedBy),
		a.ReviewedAt,
		a.Reason,
		a.Notes,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, alertID id.AlertID) (*Alert, error) {
	query := selectAlert + ` WHERE id = $1`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(alertID))
	a, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("alert %s: %w", alertID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find alert: %w", err)
	}
	return a, nil
}

// UpdateTransition updates lifecycle fields guarded on the prior status, so
// two concurrent reviews cannot both win.
func (s *PostgresStore) UpdateTransition(ctx context.Context, a *Alert, from Status) error {
	query := `
		UPDATE duplicate_alerts
		SET status = $1, reviewed_by = $2, reviewed_at = $3, reason = $4, notes = $5
		WHERE id = $6 AND status = $7
	`
	res, err := s.db.ExecContext(ctx, query,
		string(a.Status),
		nullableUserID(a.ReviewedBy),
		a.ReviewedAt,
		a.Reason,
		a.Notes,
		uuid.UUID(a.ID),
		string(from),
	)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update alert rows affected: %w", err)
	}
	if affected == 0 {
		// Either the alert vanished or its status moved under us.
		if _, findErr := s.Find(ctx, a.ID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("alert %s no longer in status %s: %w", a.ID, from, sentinel.ErrInvalidState)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, alertID id.AlertID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM duplicate_alerts WHERE id = $1`, uuid.UUID(alertID))
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete alert rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("alert %s: %w", alertID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, status Status) ([]*Alert, error) {
	query := selectAlert + ` WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []*Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return out, nil
}

const selectAlert = `
	SELECT id, beneficiary_id, aid_type_id, delivery_id, triggered_at,
	       days_since_last, status, reviewed_by, reviewed_at, reason, notes, created_at
	FROM duplicate_alerts`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (*Alert, error) {
	var (
		a             Alert
		alertID       uuid.UUID
		beneficiaryID uuid.UUID
		aidTypeID     uuid.UUID
		deliveryID    uuid.UUID
		status        string
		reviewedBy    *uuid.UUID
		reviewedAt    *time.Time
	)
	err := row.Scan(
		&alertID, &beneficiaryID, &aidTypeID, &deliveryID, &a.TriggeredAt,
		&a.DaysSinceLast, &status, &reviewedBy, &reviewedAt, &a.Reason, &a.Notes, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.ID = id.AlertID(alertID)
	a.BeneficiaryID = id.BeneficiaryID(beneficiaryID)
	a.AidTypeID = id.AidTypeID(aidTypeID)
	a.DeliveryID = id.DeliveryID(deliveryID)
	a.Status = Status(status)
	if reviewedBy != nil {
		reviewer := id.UserID(*reviewedBy)
		a.ReviewedBy = &reviewer
	}
	a.ReviewedAt = reviewedAt
	return &a, nil
}

func nullableUserID(userID *id.UserID) any {
	if userID == nil {
		return nil
	}
	return uuid.UUID(*userID)
}
