// Package service implements receipt issuance.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"aidtrack/internal/audit"
	"aidtrack/internal/delivery"
	"aidtrack/internal/platform/metrics"
	"aidtrack/internal/receipt"
	"aidtrack/internal/receipt/render"
	"aidtrack/internal/registry"
	id "aidtrack/pkg/domain"
	dErrors "aidtrack/pkg/domain-errors"
	"aidtrack/pkg/platform/sentinel"
	"aidtrack/pkg/requestcontext"
)

// Service issues and reads receipts. A delivery gets at most one receipt;
// once issued, the delivery is protected from deletion.
type Service struct {
	receipts   receipt.Store
	deliveries delivery.Store
	registry   registry.Store
	renderer   render.Renderer
	documents  render.DocumentStore
	recorder   *audit.Recorder
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func New(
	receipts receipt.Store,
	deliveries delivery.Store,
	reg registry.Store,
	renderer render.Renderer,
	documents render.DocumentStore,
	recorder *audit.Recorder,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		receipts:   receipts,
		deliveries: deliveries,
		registry:   reg,
		renderer:   renderer,
		documents:  documents,
		recorder:   recorder,
		logger:     logger,
		metrics:    m,
	}
}

// Issue creates the receipt for a delivery: computes the SHA-256 digest of
// the delivery content salted by the issuance timestamp, renders the
// proof-of-delivery document, persists the row, and audits the issuance.
// Issuing a second receipt for the same delivery fails with a conflict;
// the database unique constraint backs the check under concurrency.
func (s *Service) Issue(ctx context.Context, deliveryID id.DeliveryID, issuerID id.UserID, signedByBeneficiary bool) (*receipt.Receipt, error) {
	d, err := s.deliveries.Find(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "delivery not found")
		}
		return nil, dErrors.New(dErrors.CodeInternal, "failed to load delivery")
	}

	exists, err := s.receipts.ExistsForDelivery(ctx, deliveryID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to check existing receipt")
	}
	if exists {
		return nil, dErrors.New(dErrors.CodeConflict, "a receipt already exists for this delivery")
	}

	generatedAt := requestcontext.Now(ctx)
	r := &receipt.Receipt{
		ID:                  id.ReceiptID(uuid.New()),
		DeliveryID:          deliveryID,
		ReceiptNumber:       d.ReceiptNumber,
		Hash:                receipt.Digest(d, generatedAt),
		IssuedBy:            issuerID,
		SignedByBeneficiary: signedByBeneficiary,
		GeneratedAt:         generatedAt,
	}
	r.DocumentPath = s.renderDocument(ctx, d, r)

	if err := s.receipts.Create(ctx, r); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a receipt already exists for this delivery")
		}
		s.logger.ErrorContext(ctx, "failed to persist receipt",
			"request_id", requestcontext.RequestID(ctx),
			"delivery_id", deliveryID.String(),
			"error", err.Error(),
		)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to persist receipt")
	}

	s.recorder.Record(ctx, audit.ActionCreate, audit.EntityReceipt, r.ID.String(), &issuerID, nil, r.Snapshot())
	s.metrics.ReceiptsIssued.Inc()

	return r, nil
}

// renderDocument produces and stores the human-readable document. Rendering
// is a side effect of issuance: failures are logged and leave the document
// path empty, they do not block the receipt row.
func (s *Service) renderDocument(ctx context.Context, d *delivery.Delivery, r *receipt.Receipt) string {
	beneficiary, err := s.registry.FindBeneficiary(ctx, d.BeneficiaryID)
	if err != nil {
		s.logDocumentFailure(ctx, r, "load beneficiary", err)
		return ""
	}
	aidType, err := s.registry.FindAidType(ctx, d.AidTypeID)
	if err != nil {
		s.logDocumentFailure(ctx, r, "load aid type", err)
		return ""
	}

	content, err := s.renderer.Render(render.Document{
		Delivery:    d,
		Beneficiary: beneficiary,
		AidType:     aidType,
		IssuedBy:    r.IssuedBy.String(),
		Hash:        r.Hash,
		GeneratedAt: r.GeneratedAt,
	})
	if err != nil {
		s.logDocumentFailure(ctx, r, "render", err)
		return ""
	}

	location, err := s.documents.Put(ctx, d.ReceiptNumber, content)
	if err != nil {
		s.logDocumentFailure(ctx, r, "store", err)
		return ""
	}
	return location
}

func (s *Service) logDocumentFailure(ctx context.Context, r *receipt.Receipt, step string, err error) {
	s.logger.WarnContext(ctx, "receipt document generation failed",
		"request_id", requestcontext.RequestID(ctx),
		"receipt_number", r.ReceiptNumber,
		"step", step,
		"error", err.Error(),
	)
}

// Get returns a receipt by its identifier.
func (s *Service) Get(ctx context.Context, receiptID id.ReceiptID) (*receipt.Receipt, error) {
	r, err := s.receipts.Find(ctx, receiptID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "receipt not found")
		}
		return nil, dErrors.New(dErrors.CodeInternal, "failed to load receipt")
	}
	return r, nil
}

// GetByDelivery returns the receipt issued for a delivery, if any.
func (s *Service) GetByDelivery(ctx context.Context, deliveryID id.DeliveryID) (*receipt.Receipt, error) {
	r, err := s.receipts.FindByDelivery(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no receipt issued for this delivery")
		}
		return nil, dErrors.New(dErrors.CodeInternal, "failed to load receipt")
	}
	return r, nil
}

// Document returns the stored rendered document for a receipt.
func (s *Service) Document(ctx context.Context, receiptID id.ReceiptID) ([]byte, error) {
	r, err := s.Get(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if r.DocumentPath == "" {
		return nil, dErrors.New(dErrors.CodeNotFound, "no document stored for this receipt")
	}
	content, err := s.documents.Get(ctx, r.DocumentPath)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to load receipt document")
	}
	return content, nil
}

// ExistsForDelivery reports whether a receipt has been issued for the
// delivery. Used by the delivery orchestrator to protect receipted
// deliveries from deletion.
func (s *Service) ExistsForDelivery(ctx context.Context, deliveryID id.DeliveryID) (bool, error) {
	return s.receipts.ExistsForDelivery(ctx, deliveryID)
}
