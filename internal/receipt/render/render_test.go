package render

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidtrack/internal/delivery"
	"aidtrack/internal/registry"
	id "aidtrack/pkg/domain"
)

func sampleDocument() Document {
	return Document{
		Delivery: &delivery.Delivery{
			ID:            id.DeliveryID(uuid.New()),
			Quantity:      2,
			Municipality:  "Quibdó",
			Notes:         "household of five",
			DeliveredAt:   time.Date(2026, 4, 2, 14, 30, 0, 0, time.UTC),
			ReceiptNumber: "REC-1775141400000-AB12CD34",
		},
		Beneficiary: &registry.Beneficiary{
			FullName:   "María Pérez",
			DocumentID: "CC-1042567890",
		},
		AidType: &registry.AidType{
			Name:        "Food kit",
			Description: "Basic monthly rations",
			Unit:        "kits",
		},
		IssuedBy:    "44444444-4444-4444-4444-444444444444",
		Hash:        "0f1e2d3c4b5a69788796a5b4c3d2e1f00f1e2d3c4b5a69788796a5b4c3d2e1f0",
		GeneratedAt: time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC),
	}
}

func TestTextRendererEmbedsVerificationFields(t *testing.T) {
	content, err := NewTextRenderer().Render(sampleDocument())
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, "REC-1775141400000-AB12CD34")
	assert.Contains(t, text, "María Pérez")
	assert.Contains(t, text, "Food kit")
	assert.Contains(t, text, "Quantity:        2 kits")
	assert.Contains(t, text, "0f1e2d3c4b5a69788796a5b4c3d2e1f00f1e2d3c4b5a69788796a5b4c3d2e1f0")
}

func TestTextRendererRejectsIncompleteInput(t *testing.T) {
	doc := sampleDocument()
	doc.AidType = nil

	_, err := NewTextRenderer().Render(doc)
	require.Error(t, err)
}

func TestFSDocumentStoreRoundTrip(t *testing.T) {
	store, err := NewFSDocumentStore(t.TempDir())
	require.NoError(t, err)

	location, err := store.Put(context.Background(), "REC-1775141400000-AB12CD34", []byte("document body"))
	require.NoError(t, err)
	assert.Contains(t, location, "REC-1775141400000-AB12CD34")

	content, err := store.Get(context.Background(), location)
	require.NoError(t, err)
	assert.Equal(t, []byte("document body"), content)
}
