package delivery

import (
	"context"
	"time"

	id "aidtrack/pkg/domain"
)

// Store persists delivery records.
//
// Error contract: Find and Delete return sentinel.ErrNotFound (wrapped) when
// the delivery does not exist.
type Store interface {
	Create(ctx context.Context, d *Delivery) error
	Find(ctx context.Context, deliveryID id.DeliveryID) (*Delivery, error)
	Delete(ctx context.Context, deliveryID id.DeliveryID) error
	List(ctx context.Context) ([]*Delivery, error)
	ListByBeneficiary(ctx context.Context, beneficiaryID id.BeneficiaryID) ([]*Delivery, error)
	// LastInWindow returns the most recent delivery of the given aid type to
	// the given beneficiary with delivered_at in [since, until), excluding
	// excludeID (the delivery that triggered the lookup). Returns
	// sentinel.ErrNotFound (wrapped) when no qualifying delivery exists.
	LastInWindow(ctx context.Context, beneficiaryID id.BeneficiaryID, aidTypeID id.AidTypeID, since, until time.Time, excludeID id.DeliveryID) (*Delivery, error)
}
