package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "aidtrack/pkg/domain"
	"aidtrack/pkg/platform/sentinel"
)

// PostgresStore reads reference data from the beneficiaries and aid_types
// tables maintained by the upstream administration system.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed reference store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindBeneficiary(ctx context.Context, beneficiaryID id.BeneficiaryID) (*Beneficiary, error) {
	query := `
		SELECT id, full_name, document_id, municipality, registered_at
		FROM beneficiaries
		WHERE id = $1
	`
	var b Beneficiary
	var rawID uuid.UUID
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(beneficiaryID)).Scan(
		&rawID, &b.FullName, &b.DocumentID, &b.Municipality, &b.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("beneficiary %s: %w", beneficiaryID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find beneficiary: %w", err)
	}
	b.ID = id.BeneficiaryID(rawID)
	return &b, nil
}

func (s *PostgresStore) FindAidType(ctx context.Context, aidTypeID id.AidTypeID) (*AidType, error) {
	query := `
		SELECT id, name, description, unit
		FROM aid_types
		WHERE id = $1
	`
	var a AidType
	var rawID uuid.UUID
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(aidTypeID)).Scan(
		&rawID, &a.Name, &a.Description, &a.Unit,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("aid type %s: %w", aidTypeID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find aid type: %w", err)
	}
	a.ID = id.AidTypeID(rawID)
	return &a, nil
}

func (s *PostgresStore) ListBeneficiaries(ctx context.Context) ([]*Beneficiary, error) {
	query := `
		SELECT id, full_name, document_id, municipality, registered_at
		FROM beneficiaries
		ORDER BY full_name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list beneficiaries: %w", err)
	}
	defer rows.Close()

	var out []*Beneficiary
	for rows.Next() {
		var b Beneficiary
		var rawID uuid.UUID
		if err := rows.Scan(&rawID, &b.FullName, &b.DocumentID, &b.Municipality, &b.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan beneficiary: %w", err)
		}
		b.ID = id.BeneficiaryID(rawID)
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate beneficiaries: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListAidTypes(ctx context.Context) ([]*AidType, error) {
	query := `
		SELECT id, name, description, unit
		FROM aid_types
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list aid types: %w", err)
	}
	defer rows.Close()

	var out []*AidType
	for rows.Next() {
		var a AidType
		var rawID uuid.UUID
		if err := rows.Scan(&rawID, &a.Name, &a.Description, &a.Unit); err != nil {
			return nil, fmt.Errorf("scan aid type: %w", err)
		}
		a.ID = id.AidTypeID(rawID)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aid types: %w", err)
	}
	return out, nil
}
