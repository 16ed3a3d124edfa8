package receipt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "aidtrack/pkg/domain"
	"aidtrack/pkg/platform/sentinel"
)

// pqUniqueViolation is the PostgreSQL error class for unique constraint
// violations.
const pqUniqueViolation = "23505"

// PostgresStore persists receipts in the receipts table. The one-receipt-per-
// delivery invariant lives in the database as UNIQUE(delivery_id).
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed receipt store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, r *Receipt) error {
	query := `
		INSERT INTO receipts (
			id, delivery_id, receipt_number, hash, issued_by,
			signed_by_beneficiary, generated_at, document_path
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(r.ID),
		uuid.UUID(r.DeliveryID),
		r.ReceiptNumber,
		r.Hash,
		uuid.UUID(r.IssuedBy),
		r.SignedByBeneficiary,
		r.GeneratedAt,
		r.DocumentPath,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("receipt for delivery %s: %w", r.DeliveryID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, receiptID id.ReceiptID) (*Receipt, error) {
	query := selectReceipt + ` WHERE id = $1`
	r, err := scanReceipt(s.db.QueryRowContext(ctx, query, uuid.UUID(receiptID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("receipt %s: %w", receiptID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find receipt: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) FindByDelivery(ctx context.Context, deliveryID id.DeliveryID) (*Receipt, error) {
	query := selectReceipt + ` WHERE delivery_id = $1`
	r, err := scanReceipt(s.db.QueryRowContext(ctx, query, uuid.UUID(deliveryID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("receipt for delivery %s: %w", deliveryID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find receipt by delivery: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ExistsForDelivery(ctx context.Context, deliveryID id.DeliveryID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM receipts WHERE delivery_id = $1)`
	if err := s.db.QueryRowContext(ctx, query, uuid.UUID(deliveryID)).Scan(&exists); err != nil {
		return false, fmt.Errorf("receipt exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Receipt, error) {
	query := selectReceipt + ` ORDER BY generated_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	var out []*Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipts: %w", err)
	}
	return out, nil
}

const selectReceipt = `
	SELECT id, delivery_id, receipt_number, hash, issued_by,
	       signed_by_beneficiary, generated_at, document_path
	FROM receipts`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (*Receipt, error) {
	var (
		r          Receipt
		receiptID  uuid.UUID
		deliveryID uuid.UUID
		issuedBy   uuid.UUID
	)
	err := row.Scan(
		&receiptID, &deliveryID, &r.ReceiptNumber, &r.Hash, &issuedBy,
		&r.SignedByBeneficiary, &r.GeneratedAt, &r.DocumentPath,
	)
	if err != nil {
		return nil, err
	}
	r.ID = id.ReceiptID(receiptID)
	r.DeliveryID = id.DeliveryID(deliveryID)
	r.IssuedBy = id.UserID(issuedBy)
	return &r, nil
}
