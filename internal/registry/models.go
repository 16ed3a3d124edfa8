// Package registry holds the reference data the delivery workflow validates
// against: registered beneficiaries and the aid-type catalogue.
package registry

import (
	"time"

	id "aidtrack/pkg/domain"
)

// Beneficiary is a registered aid recipient.
type Beneficiary struct {
	ID           id.BeneficiaryID `json:"id"`
	FullName     string           `json:"full_name"`
	DocumentID   string           `json:"document_id"`
	Municipality string           `json:"municipality"`
	RegisteredAt time.Time        `json:"registered_at"`
}

// AidType is a category of humanitarian assistance.
type AidType struct {
	ID          id.AidTypeID `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Unit        string       `json:"unit"` // e.g. "kit", "box", "liter"
}
