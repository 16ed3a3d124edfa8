// Package delivery holds the aid-handout record and its receipt numbering.
package delivery

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	id "aidtrack/pkg/domain"
)

// Delivery represents one unit-of-aid handout. Immutable once a receipt has
// been issued; only privileged deletion (itself audited) may remove it
// before that.
type Delivery struct {
	ID            id.DeliveryID    `json:"id"`
	BeneficiaryID id.BeneficiaryID `json:"beneficiary_id"`
	AidTypeID     id.AidTypeID     `json:"aid_type_id"`
	Quantity      int              `json:"quantity"`
	OperatorID    id.UserID        `json:"operator_id"`
	Municipality  string           `json:"municipality"`
	Notes         string           `json:"notes,omitempty"`
	DeliveredAt   time.Time        `json:"delivered_at"`
	ReceiptNumber string           `json:"receipt_number"`
	CreatedAt     time.Time        `json:"created_at"`
}

// NewReceiptNumber generates a REC-<epoch-ms>-<random-suffix> number.
// Uniqueness-by-convention: the millisecond clock plus an 8-hex-char suffix
// makes collisions implausible at this system's throughput.
func NewReceiptNumber(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("REC-%d-%s", at.UnixMilli(), strings.ToUpper(suffix))
}
