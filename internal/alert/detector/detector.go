// Package detector decides whether a delivery looks like a repeat handout
// inside the cooldown window and, if so, raises a pending alert. The check is
// advisory: it never blocks the delivery it inspects.
package detector

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"aidtrack/internal/alert"
	"aidtrack/internal/delivery"
	"aidtrack/internal/platform/metrics"
	id "aidtrack/pkg/domain"
	"aidtrack/pkg/platform/sentinel"
	"aidtrack/pkg/requestcontext"
)

// DeliveryHistory is the slice of the delivery store the detector needs.
type DeliveryHistory interface {
	LastInWindow(ctx context.Context, beneficiaryID id.BeneficiaryID, aidTypeID id.AidTypeID, since, until time.Time, excludeID id.DeliveryID) (*delivery.Delivery, error)
}

// Detector checks prospective deliveries against recent history.
type Detector struct {
	history  DeliveryHistory
	alerts   alert.Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	cooldown time.Duration
}

func New(history DeliveryHistory, alerts alert.Store, logger *slog.Logger, m *metrics.Metrics, cooldownDays int) *Detector {
	return &Detector{
		history:  history,
		alerts:   alerts,
		logger:   logger,
		metrics:  m,
		cooldown: time.Duration(cooldownDays) * 24 * time.Hour,
	}
}

// CheckAndFlag looks for a delivery of the same aid type to the same
// beneficiary within the cooldown window ending at the triggering delivery's
// timestamp. When one exists it persists and returns a pending alert with
// the floor day-delta; otherwise it returns nil with no side effect.
//
// Availability is favored over the advisory check: any storage error is
// swallowed and logged, and the caller proceeds without a warning. No alert
// is a safe default because the delivery itself is never rejected here.
func (d *Detector) CheckAndFlag(ctx context.Context, triggering *delivery.Delivery) *alert.Alert {
	proposedAt := triggering.DeliveredAt
	since := proposedAt.Add(-d.cooldown)

	last, err := d.history.LastInWindow(ctx,
		triggering.BeneficiaryID, triggering.AidTypeID, since, proposedAt, triggering.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		d.metrics.DetectorErrors.Inc()
		d.logger.ErrorContext(ctx, "duplicate check failed, proceeding without warning",
			"beneficiary_id", triggering.BeneficiaryID,
			"aid_type_id", triggering.AidTypeID,
			"error", err,
		)
		return nil
	}

	daysSince := int(proposedAt.Sub(last.DeliveredAt).Hours() / 24)
	raised := &alert.Alert{
		ID:            id.AlertID(uuid.New()),
		BeneficiaryID: triggering.BeneficiaryID,
		AidTypeID:     triggering.AidTypeID,
		DeliveryID:    triggering.ID,
		TriggeredAt:   proposedAt,
		DaysSinceLast: daysSince,
		Status:        alert.StatusPending,
		CreatedAt:     requestcontext.Now(ctx),
	}
	if err := d.alerts.Create(ctx, raised); err != nil {
		d.metrics.DetectorErrors.Inc()
		d.logger.ErrorContext(ctx, "alert persistence failed, proceeding without warning",
			"beneficiary_id", triggering.BeneficiaryID,
			"aid_type_id", triggering.AidTypeID,
			"error", err,
		)
		return nil
	}

	d.metrics.AlertsRaised.Inc()
	d.logger.InfoContext(ctx, "duplicate delivery flagged",
		"alert_id", raised.ID,
		"beneficiary_id", triggering.BeneficiaryID,
		"aid_type_id", triggering.AidTypeID,
		"days_since_last", daysSince,
	)
	return raised
}
