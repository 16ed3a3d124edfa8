// Package receipt holds the cryptographically fingerprinted proof-of-delivery
// record.
package receipt

import (
	"time"

	id "aidtrack/pkg/domain"
)

// Receipt is the tamper-evident proof that a delivery happened. At most one
// receipt exists per delivery; the constraint is enforced by the store.
type Receipt struct {
	ID                  id.ReceiptID  `json:"id"`
	DeliveryID          id.DeliveryID `json:"delivery_id"`
	ReceiptNumber       string        `json:"receipt_number"`
	Hash                string        `json:"hash"`
	IssuedBy            id.UserID     `json:"issued_by"`
	SignedByBeneficiary bool          `json:"signed_by_beneficiary"`
	GeneratedAt         time.Time     `json:"generated_at"`
	DocumentPath        string        `json:"document_path,omitempty"`
}

// Snapshot is the shape serialized into audit records on issuance.
type Snapshot struct {
	DeliveryID          id.DeliveryID `json:"delivery_id"`
	ReceiptNumber       string        `json:"receipt_number"`
	Hash                string        `json:"hash"`
	SignedByBeneficiary bool          `json:"signed_by_beneficiary"`
	GeneratedAt         time.Time     `json:"generated_at"`
}

// Snapshot captures the audit-relevant fields of the receipt.
func (r *Receipt) Snapshot() Snapshot {
	return Snapshot{
		DeliveryID:          r.DeliveryID,
		ReceiptNumber:       r.ReceiptNumber,
		Hash:                r.Hash,
		SignedByBeneficiary: r.SignedByBeneficiary,
		GeneratedAt:         r.GeneratedAt,
	}
}
