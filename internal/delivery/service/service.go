// Package service implements the delivery orchestrator: creation with
// duplicate detection, protected deletion, and reads.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"aidtrack/internal/alert"
	"aidtrack/internal/audit"
	"aidtrack/internal/delivery"
	"aidtrack/internal/platform/metrics"
	"aidtrack/internal/registry"
	id "aidtrack/pkg/domain"
	dErrors "aidtrack/pkg/domain-errors"
	"aidtrack/pkg/platform/sentinel"
	txcontext "aidtrack/pkg/platform/tx"
	"aidtrack/pkg/requestcontext"
)

// Detector checks a just-created delivery against the cooldown window. The
// check is advisory: it never returns an error and never blocks creation.
type Detector interface {
	CheckAndFlag(ctx context.Context, triggering *delivery.Delivery) *alert.Alert
}

// ReceiptChecker reports whether a receipt has been issued for a delivery.
type ReceiptChecker interface {
	ExistsForDelivery(ctx context.Context, deliveryID id.DeliveryID) (bool, error)
}

// CreateInput carries the fields of a delivery creation request.
type CreateInput struct {
	BeneficiaryID id.BeneficiaryID
	AidTypeID     id.AidTypeID
	Quantity      int
	Municipality  string
	Notes         string
}

// Service orchestrates delivery creation and deletion.
type Service struct {
	store    delivery.Store
	registry registry.Store
	detector Detector
	receipts ReceiptChecker
	recorder *audit.Recorder
	db       *sql.DB
	tracer   trace.Tracer
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func New(
	store delivery.Store,
	reg registry.Store,
	det Detector,
	receipts ReceiptChecker,
	recorder *audit.Recorder,
	db *sql.DB,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		store:    store,
		registry: reg,
		detector: det,
		receipts: receipts,
		recorder: recorder,
		db:       db,
		tracer:   otel.Tracer("aidtrack/delivery"),
		logger:   logger,
		metrics:  m,
	}
}

// Create registers a delivery, audits the creation, and runs the duplicate
// detector. The returned alert is non-nil when the delivery falls inside the
// cooldown window of a prior one; the delivery is persisted either way.
// The row insert and its audit record share one transaction when the store
// runs on Postgres.
func (s *Service) Create(ctx context.Context, operatorID id.UserID, in CreateInput) (*delivery.Delivery, *alert.Alert, error) {
	ctx, span := s.tracer.Start(ctx, "delivery.create", trace.WithAttributes(
		attribute.String("beneficiary_id", in.BeneficiaryID.String()),
		attribute.String("aid_type_id", in.AidTypeID.String()),
	))
	defer span.End()

	if err := s.validate(ctx, in); err != nil {
		return nil, nil, err
	}

	now := requestcontext.Now(ctx)
	d := &delivery.Delivery{
		ID:            id.DeliveryID(uuid.New()),
		BeneficiaryID: in.BeneficiaryID,
		AidTypeID:     in.AidTypeID,
		Quantity:      in.Quantity,
		OperatorID:    operatorID,
		Municipality:  strings.TrimSpace(in.Municipality),
		Notes:         strings.TrimSpace(in.Notes),
		DeliveredAt:   now,
		ReceiptNumber: delivery.NewReceiptNumber(now),
		CreatedAt:     now,
	}

	err := txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		if err := s.store.Create(ctx, d); err != nil {
			return err
		}
		s.recorder.Record(ctx, audit.ActionCreate, audit.EntityDelivery, d.ID.String(), &operatorID, nil, d)
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create delivery",
			"request_id", requestcontext.RequestID(ctx),
			"beneficiary_id", in.BeneficiaryID.String(),
			"error", err.Error(),
		)
		return nil, nil, dErrors.New(dErrors.CodeInternal, "failed to create delivery")
	}
	s.metrics.DeliveriesCreated.Inc()

	flagged := s.detector.CheckAndFlag(ctx, d)
	if flagged != nil {
		span.SetAttributes(attribute.Int("duplicate_days_since_last", flagged.DaysSinceLast))
	}
	return d, flagged, nil
}

func (s *Service) validate(ctx context.Context, in CreateInput) error {
	if in.BeneficiaryID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "beneficiary_id is required")
	}
	if in.AidTypeID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "aid_type_id is required")
	}
	if in.Quantity <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "quantity must be positive")
	}
	if strings.TrimSpace(in.Municipality) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "municipality is required")
	}

	if _, err := s.registry.FindBeneficiary(ctx, in.BeneficiaryID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "beneficiary not found")
		}
		return dErrors.New(dErrors.CodeInternal, "failed to look up beneficiary")
	}
	if _, err := s.registry.FindAidType(ctx, in.AidTypeID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "aid type not found")
		}
		return dErrors.New(dErrors.CodeInternal, "failed to look up aid type")
	}
	return nil
}

// Delete removes a delivery. Deliveries with an issued receipt are protected
// by the audit trail and refuse deletion with a conflict. Successful
// deletions are audited with the prior state.
func (s *Service) Delete(ctx context.Context, deliveryID id.DeliveryID, actorID id.UserID) error {
	ctx, span := s.tracer.Start(ctx, "delivery.delete", trace.WithAttributes(
		attribute.String("delivery_id", deliveryID.String()),
	))
	defer span.End()

	current, err := s.store.Find(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "delivery not found")
		}
		return dErrors.New(dErrors.CodeInternal, "failed to load delivery")
	}

	receipted, err := s.receipts.ExistsForDelivery(ctx, deliveryID)
	if err != nil {
		return dErrors.New(dErrors.CodeInternal, "failed to check receipt")
	}
	if receipted {
		return dErrors.New(dErrors.CodeConflict, "delivery is protected by its receipt and cannot be deleted")
	}

	err = txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, deliveryID); err != nil {
			return err
		}
		s.recorder.Record(ctx, audit.ActionDelete, audit.EntityDelivery, deliveryID.String(), &actorID, current, nil)
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "delivery not found")
		}
		s.logger.ErrorContext(ctx, "failed to delete delivery",
			"request_id", requestcontext.RequestID(ctx),
			"delivery_id", deliveryID.String(),
			"error", err.Error(),
		)
		return dErrors.New(dErrors.CodeInternal, "failed to delete delivery")
	}
	return nil
}

// Get returns a delivery by its identifier.
func (s *Service) Get(ctx context.Context, deliveryID id.DeliveryID) (*delivery.Delivery, error) {
	d, err := s.store.Find(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "delivery not found")
		}
		return nil, dErrors.New(dErrors.CodeInternal, "failed to load delivery")
	}
	return d, nil
}

// List returns all deliveries, newest first.
func (s *Service) List(ctx context.Context) ([]*delivery.Delivery, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to list deliveries")
	}
	return out, nil
}

// ListByBeneficiary returns a beneficiary's deliveries, newest first.
func (s *Service) ListByBeneficiary(ctx context.Context, beneficiaryID id.BeneficiaryID) ([]*delivery.Delivery, error) {
	out, err := s.store.ListByBeneficiary(ctx, beneficiaryID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to list deliveries")
	}
	return out, nil
}
