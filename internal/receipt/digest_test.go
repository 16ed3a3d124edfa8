package receipt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidtrack/internal/delivery"
	id "aidtrack/pkg/domain"
)

func sampleDelivery() *delivery.Delivery {
	return &delivery.Delivery{
		ID:            id.DeliveryID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
		BeneficiaryID: id.BeneficiaryID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
		AidTypeID:     id.AidTypeID(uuid.MustParse("33333333-3333-3333-3333-333333333333")),
		Quantity:      2,
		OperatorID:    id.UserID(uuid.MustParse("44444444-4444-4444-4444-444444444444")),
		Municipality:  "Quibdó",
		Notes:         "household of five",
		DeliveredAt:   time.Date(2026, 4, 2, 14, 30, 0, 0, time.UTC),
		ReceiptNumber: "REC-1775141400000-AB12CD34",
		CreatedAt:     time.Date(2026, 4, 2, 14, 30, 0, 0, time.UTC),
	}
}

func TestDigestDeterministic(t *testing.T) {
	d := sampleDelivery()
	issuedAt := time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC)

	first := Digest(d, issuedAt)
	second := Digest(d, issuedAt)

	require.Len(t, first, 64)
	assert.Equal(t, first, second)
}

func TestDigestSensitiveToEveryField(t *testing.T) {
	issuedAt := time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC)
	base := Digest(sampleDelivery(), issuedAt)

	mutations := map[string]func(*delivery.Delivery){
		"quantity":     func(d *delivery.Delivery) { d.Quantity = 3 },
		"municipality": func(d *delivery.Delivery) { d.Municipality = "Istmina" },
		"notes":        func(d *delivery.Delivery) { d.Notes = "" },
		"delivered_at": func(d *delivery.Delivery) { d.DeliveredAt = d.DeliveredAt.Add(time.Second) },
		"beneficiary":  func(d *delivery.Delivery) { d.BeneficiaryID = id.BeneficiaryID(uuid.New()) },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			d := sampleDelivery()
			mutate(d)
			assert.NotEqual(t, base, Digest(d, issuedAt))
		})
	}
}

func TestDigestSaltedByIssuanceTime(t *testing.T) {
	d := sampleDelivery()
	issuedAt := time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC)

	assert.NotEqual(t, Digest(d, issuedAt), Digest(d, issuedAt.Add(time.Nanosecond)))
}

func TestDigestTimezoneStable(t *testing.T) {
	d := sampleDelivery()
	issuedAt := time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC)
	base := Digest(d, issuedAt)

	bogota := time.FixedZone("America/Bogota", -5*3600)
	shifted := sampleDelivery()
	shifted.DeliveredAt = shifted.DeliveredAt.In(bogota)

	assert.Equal(t, base, Digest(shifted, issuedAt.In(bogota)))
}
