// Package domain holds typed identifiers shared across features. Wrapping
// uuid.UUID in distinct types lets the compiler reject cross-entity mixups
// (passing a DeliveryID where an AlertID is expected).
package domain

import (
	"github.com/google/uuid"

	dErrors "aidtrack/pkg/domain-errors"
)

type (
	// UserID identifies an authenticated principal (operator, auditor, admin).
	UserID uuid.UUID
	// BeneficiaryID identifies a registered aid beneficiary.
	BeneficiaryID uuid.UUID
	// AidTypeID identifies a category of humanitarian assistance.
	AidTypeID uuid.UUID
	// DeliveryID identifies one unit-of-aid handout record.
	DeliveryID uuid.UUID
	// AlertID identifies a duplicate-delivery alert.
	AlertID uuid.UUID
	// ReceiptID identifies a proof-of-delivery receipt.
	ReceiptID uuid.UUID
)

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id BeneficiaryID) String() string { return uuid.UUID(id).String() }
func (id AidTypeID) String() string     { return uuid.UUID(id).String() }
func (id DeliveryID) String() string    { return uuid.UUID(id).String() }
func (id AlertID) String() string       { return uuid.UUID(id).String() }
func (id ReceiptID) String() string     { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id BeneficiaryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id AidTypeID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id DeliveryID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id AlertID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id ReceiptID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// The text round-trip keeps the wrapped UUIDs rendering as canonical UUID
// strings in JSON.

func (id UserID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id BeneficiaryID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id AidTypeID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id DeliveryID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id AlertID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id ReceiptID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *BeneficiaryID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *AidTypeID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *DeliveryID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *AlertID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ReceiptID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }

// parseUUID enforces the trust-boundary invariant: IDs arriving from the
// outside must be valid, non-nil UUIDs.
func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return parsed, nil
}

func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw)
	return UserID(parsed), err
}

func ParseBeneficiaryID(raw string) (BeneficiaryID, error) {
	parsed, err := parseUUID(raw)
	return BeneficiaryID(parsed), err
}

func ParseAidTypeID(raw string) (AidTypeID, error) {
	parsed, err := parseUUID(raw)
	return AidTypeID(parsed), err
}

func ParseDeliveryID(raw string) (DeliveryID, error) {
	parsed, err := parseUUID(raw)
	return DeliveryID(parsed), err
}

func ParseAlertID(raw string) (AlertID, error) {
	parsed, err := parseUUID(raw)
	return AlertID(parsed), err
}

func ParseReceiptID(raw string) (ReceiptID, error) {
	parsed, err := parseUUID(raw)
	return ReceiptID(parsed), err
}
