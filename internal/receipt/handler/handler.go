// Package handler exposes the receipt endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aidtrack/internal/platform/middleware"
	"aidtrack/internal/receipt"
	id "aidtrack/pkg/domain"
	dErrors "aidtrack/pkg/domain-errors"
	"aidtrack/pkg/platform/httputil"
	"aidtrack/pkg/requestcontext"
)

// Service defines the receipt operations the handler needs.
type Service interface {
	Issue(ctx context.Context, deliveryID id.DeliveryID, issuerID id.UserID, signedByBeneficiary bool) (*receipt.Receipt, error)
	Get(ctx context.Context, receiptID id.ReceiptID) (*receipt.Receipt, error)
	GetByDelivery(ctx context.Context, deliveryID id.DeliveryID) (*receipt.Receipt, error)
	Document(ctx context.Context, receiptID id.ReceiptID) ([]byte, error)
}

// Handler handles receipt endpoints.
type Handler struct {
	logger   *slog.Logger
	receipts Service
}

// New creates a new receipt Handler.
func New(receipts Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		receipts: receipts,
	}
}

// Register registers the receipt routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/receipts", func(r chi.Router) {
		r.Use(middleware.RequireRole(requestcontext.RoleOperator, h.logger))
		// POST takes the delivery id; the GETs take the receipt id.
		r.Post("/{id}", h.handleIssue)
		r.Get("/{id}", h.handleGet)
		r.Get("/{id}/document", h.handleDocument)
		r.Get("/delivery/{deliveryID}", h.handleGetByDelivery)
	})
}

// issueRequest is the body of POST /receipts/{deliveryID}.
type issueRequest struct {
	SignedByBeneficiary bool `json:"signed_by_beneficiary"`
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deliveryID, err := id.ParseDeliveryID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid delivery id"))
		return
	}

	var req issueRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}

	issued, err := h.receipts.Issue(ctx, deliveryID, requestcontext.ActorID(ctx), req.SignedByBeneficiary)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to issue receipt")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, issued)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	receiptID, err := id.ParseReceiptID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid receipt id"))
		return
	}

	rec, err := h.receipts.Get(ctx, receiptID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to get receipt")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	receiptID, err := id.ParseReceiptID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid receipt id"))
		return
	}

	content, err := h.receipts.Document(ctx, receiptID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to get receipt document")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func (h *Handler) handleGetByDelivery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deliveryID, err := id.ParseDeliveryID(chi.URLParam(r, "deliveryID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid delivery id"))
		return
	}

	rec, err := h.receipts.GetByDelivery(ctx, deliveryID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to get receipt for delivery")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	if dErrors.HasCode(err, dErrors.CodeBadRequest) ||
		dErrors.HasCode(err, dErrors.CodeNotFound) ||
		dErrors.HasCode(err, dErrors.CodeConflict) {
		h.logger.WarnContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, msg))
}
