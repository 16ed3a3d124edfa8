package alert

import (
	"context"

	id "aidtrack/pkg/domain"
)

// Store persists duplicate alerts.
//
// Error contract: Find, UpdateTransition, and Delete return
// sentinel.ErrNotFound (wrapped) when the alert does not exist;
// UpdateTransition returns sentinel.ErrInvalidState (wrapped) when the row's
// status no longer matches the expected prior status.
type Store interface {
	Create(ctx context.Context, a *Alert) error
	Find(ctx context.Context, alertID id.AlertID) (*Alert, error)
	// UpdateTransition applies the lifecycle fields of a atomically, guarded
	// on the row still being in from.
	UpdateTransition(ctx context.Context, a *Alert, from Status) error
	Delete(ctx context.Context, alertID id.AlertID) error
	List(ctx context.Context, status Status) ([]*Alert, error)
}
