package receipt

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"aidtrack/internal/delivery"
)

// Digest computes the SHA-256 fingerprint of a delivery's content at
// issuance time. The issuance timestamp is folded in as a uniqueness salt so
// two receipts over logically identical deliveries never share a hash.
// Recomputing over an unmodified delivery snapshot plus the original issuance
// timestamp reproduces the stored hash exactly.
func Digest(d *delivery.Delivery, issuedAt time.Time) string {
	canonical := canonicalRepresentation(d, issuedAt)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// canonicalRepresentation serializes the delivery fields in a fixed order
// with an unambiguous field separator. Timestamps are rendered in RFC 3339
// nanosecond UTC so the representation is byte-stable across time zones.
func canonicalRepresentation(d *delivery.Delivery, issuedAt time.Time) string {
	fields := []string{
		"delivery_id=" + d.ID.String(),
		"beneficiary_id=" + d.BeneficiaryID.String(),
		"aid_type_id=" + d.AidTypeID.String(),
		fmt.Sprintf("quantity=%d", d.Quantity),
		"operator_id=" + d.OperatorID.String(),
		"municipality=" + d.Municipality,
		"notes=" + d.Notes,
		"delivered_at=" + d.DeliveredAt.UTC().Format(time.RFC3339Nano),
		"receipt_number=" + d.ReceiptNumber,
		"issued_at=" + issuedAt.UTC().Format(time.RFC3339Nano),
	}
	return strings.Join(fields, "\n")
}
