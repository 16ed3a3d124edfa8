package delivery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "aidtrack/pkg/domain"
	"aidtrack/pkg/platform/sentinel"
	txcontext "aidtrack/pkg/platform/tx"
)

// PostgresStore persists deliveries in the deliveries table. Create joins a
// transaction from context when present, so the row and its audit record
// commit together.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed delivery store.
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

func (s *PostgresStore) Create(ctx context.Context, d *Delivery) error {
	query := `
		INSERT INTO deliveries (
			id, beneficiary_id, aid_type_id, quantity, operator_id,
			municipality, notes, delivered_at, receipt_number, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(d.ID),
		uuid.UUID(d.BeneficiaryID),
		uuid.UUID(d.AidTypeID),
		d.Quantity,
		uuid.UUID(d.OperatorID),
		d.Municipality,
		d.Notes,
		d.DeliveredAt,
		d.ReceiptNumber,
		d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, deliveryID id.DeliveryID) (*Delivery, error) {
	query := selectDelivery + ` WHERE id = $1`
	d, err := scanDelivery(s.db.QueryRowContext(ctx, query, uuid.UUID(deliveryID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("delivery %s: %w", deliveryID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find delivery: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) Delete(ctx context.Context, deliveryID id.DeliveryID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM deliveries WHERE id = $1`, uuid.UUID(deliveryID))
	if err != nil {
		return fmt.Errorf("delete delivery: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete delivery rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delivery %s: %w", deliveryID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Delivery, error) {
	query := selectDelivery + ` ORDER BY delivered_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()
	return collectDeliveries(rows)
}

func (s *PostgresStore) ListByBeneficiary(ctx context.Context, beneficiaryID id.BeneficiaryID) ([]*Delivery, error) {
	query := selectDelivery + ` WHERE beneficiary_id = $1 ORDER BY delivered_at DESC`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(beneficiaryID))
	if err != nil {
		return nil, fmt.Errorf("list deliveries by beneficiary: %w", err)
	}
	defer rows.Close()
	return collectDeliveries(rows)
}

func (s *PostgresStore) LastInWindow(ctx context.Context, beneficiaryID id.BeneficiaryID, aidTypeID id.AidTypeID, since, until time.Time, excludeID id.DeliveryID) (*Delivery, error) {
	query := selectDelivery + `
		WHERE beneficiary_id = $1
		  AND aid_type_id = $2
		  AND delivered_at >= $3
		  AND delivered_at < $4
		  AND id <> $5
		ORDER BY delivered_at DESC
		LIMIT 1
	`
	d, err := scanDelivery(s.db.QueryRowContext(ctx, query,
		uuid.UUID(beneficiaryID),
		uuid.UUID(aidTypeID),
		since,
		until,
		uuid.UUID(excludeID),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no delivery in window: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("query delivery window: %w", err)
	}
	return d, nil
}

const selectDelivery = `
	SELECT id, beneficiary_id, aid_type_id, quantity, operator_id,
	       municipality, notes, delivered_at, receipt_number, created_at
	FROM deliveries`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDelivery(row rowScanner) (*Delivery, error) {
	var (
		d             Delivery
		deliveryID    uuid.UUID
		beneficiaryID uuid.UUID
		aidTypeID     uuid.UUID
		operatorID    uuid.UUID
	)
	err := row.Scan(
		&deliveryID, &beneficiaryID, &aidTypeID, &d.Quantity, &operatorID,
		&d.Municipality, &d.Notes, &d.DeliveredAt, &d.ReceiptNumber, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.ID = id.DeliveryID(deliveryID)
	d.BeneficiaryID = id.BeneficiaryID(beneficiaryID)
	d.AidTypeID = id.AidTypeID(aidTypeID)
	d.OperatorID = id.UserID(operatorID)
	return &d, nil
}

func collectDeliveries(rows *sql.Rows) ([]*Delivery, error) {
	var out []*Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deliveries: %w", err)
	}
	return out, nil
}
