// Package render produces the human-readable proof-of-delivery document and
// stores it.
package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aidtrack/internal/delivery"
	"aidtrack/internal/registry"
)

// Document is the input to rendering: the delivery joined with its reference
// data, the issuer, and the digest computed at issuance.
type Document struct {
	Delivery    *delivery.Delivery
	Beneficiary *registry.Beneficiary
	AidType     *registry.AidType
	IssuedBy    string
	Hash        string
	GeneratedAt time.Time
}

// Renderer turns a Document into a byte stream ready for storage. The core
// does not lay out documents itself; implementations may produce plain text,
// PDF, or anything else downstream tooling accepts.
type Renderer interface {
	Render(doc Document) ([]byte, error)
}

// DocumentStore persists rendered documents and returns a location usable to
// retrieve them later.
type DocumentStore interface {
	Put(ctx context.Context, name string, content []byte) (location string, err error)
	Get(ctx context.Context, location string) ([]byte, error)
}

// TextRenderer renders a fixed-layout plain-text proof of delivery. The full
// digest is embedded so the document can be verified against the delivery
// record independently of this system.
type TextRenderer struct{}

func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

func (TextRenderer) Render(doc Document) ([]byte, error) {
	if doc.Delivery == nil || doc.Beneficiary == nil || doc.AidType == nil {
		return nil, fmt.Errorf("render document: incomplete input")
	}

	var b strings.Builder
	line := strings.Repeat("=", 58)
	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "            PROOF OF DELIVERY / CONSTANCIA DE ENTREGA")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Receipt number:  %s\n", doc.Delivery.ReceiptNumber)
	fmt.Fprintf(&b, "Generated at:    %s\n", doc.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Beneficiary:     %s\n", doc.Beneficiary.FullName)
	fmt.Fprintf(&b, "Document ID:     %s\n", doc.Beneficiary.DocumentID)
	fmt.Fprintf(&b, "Municipality:    %s\n", doc.Delivery.Municipality)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Aid delivered:   %s (%s)\n", doc.AidType.Name, doc.AidType.Description)
	fmt.Fprintf(&b, "Quantity:        %d %s\n", doc.Delivery.Quantity, doc.AidType.Unit)
	fmt.Fprintf(&b, "Delivered at:    %s\n", doc.Delivery.DeliveredAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Operator:        %s\n", doc.IssuedBy)
	if doc.Delivery.Notes != "" {
		fmt.Fprintf(&b, "Notes:           %s\n", doc.Delivery.Notes)
	}
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Verification digest (SHA-256):\n%s\n", doc.Hash)
	fmt.Fprintln(&b, line)
	return []byte(b.String()), nil
}
