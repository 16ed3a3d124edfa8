// Package handler exposes the delivery endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aidtrack/internal/alert"
	"aidtrack/internal/delivery"
	"aidtrack/internal/delivery/service"
	"aidtrack/internal/platform/middleware"
	id "aidtrack/pkg/domain"
	dErrors "aidtrack/pkg/domain-errors"
	"aidtrack/pkg/platform/httputil"
	"aidtrack/pkg/requestcontext"
)

// Service defines the delivery operations the handler needs.
type Service interface {
	Create(ctx context.Context, operatorID id.UserID, in service.CreateInput) (*delivery.Delivery, *alert.Alert, error)
	Delete(ctx context.Context, deliveryID id.DeliveryID, actorID id.UserID) error
	Get(ctx context.Context, deliveryID id.DeliveryID) (*delivery.Delivery, error)
	List(ctx context.Context) ([]*delivery.Delivery, error)
	ListByBeneficiary(ctx context.Context, beneficiaryID id.BeneficiaryID) ([]*delivery.Delivery, error)
}

// Handler handles delivery endpoints.
type Handler struct {
	logger     *slog.Logger
	deliveries Service
}

// New creates a new delivery Handler.
func New(deliveries Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:     logger,
		deliveries: deliveries,
	}
}

// Register registers the delivery routes with the chi router. Deletion is
// admin-only.
func (h *Handler) Register(r chi.Router) {
	r.Route("/deliveries", func(r chi.Router) {
		operator := middleware.RequireRole(requestcontext.RoleOperator, h.logger)
		admin := middleware.RequireRole(requestcontext.RoleAdmin, h.logger)

		r.With(operator).Post("/", h.handleCreate)
		r.With(operator).Get("/", h.handleList)
		r.With(operator).Get("/{deliveryID}", h.handleGet)
		r.With(operator).Get("/beneficiary/{beneficiaryID}", h.handleListByBeneficiary)
		r.With(admin).Delete("/{deliveryID}", h.handleDelete)
	})
}

// createRequest is the body of POST /deliveries.
type createRequest struct {
	BeneficiaryID string `json:"beneficiary_id"`
	AidTypeID     string `json:"aid_type_id"`
	Quantity      int    `json:"quantity"`
	Municipality  string `json:"municipality"`
	Notes         string `json:"notes"`
}

// createResponse returns the stored delivery plus the duplicate warning when
// the detector flagged one.
type createResponse struct {
	Delivery     *delivery.Delivery `json:"delivery"`
	AlertWarning *alert.Alert       `json:"alert_warning,omitempty"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid delivery creation request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	beneficiaryID, err := id.ParseBeneficiaryID(req.BeneficiaryID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid beneficiary_id"))
		return
	}
	aidTypeID, err := id.ParseAidTypeID(req.AidTypeID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid aid_type_id"))
		return
	}

	created, flagged, err := h.deliveries.Create(ctx, requestcontext.ActorID(ctx), service.CreateInput{
		BeneficiaryID: beneficiaryID,
		AidTypeID:     aidTypeID,
		Quantity:      req.Quantity,
		Municipality:  req.Municipality,
		Notes:         req.Notes,
	})
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create delivery")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, createResponse{Delivery: created, AlertWarning: flagged})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deliveries, err := h.deliveries.List(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list deliveries")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"deliveries": deliveries})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deliveryID, err := id.ParseDeliveryID(chi.URLParam(r, "deliveryID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid delivery id"))
		return
	}

	d, err := h.deliveries.Get(ctx, deliveryID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to get delivery")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) handleListByBeneficiary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	beneficiaryID, err := id.ParseBeneficiaryID(chi.URLParam(r, "beneficiaryID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid beneficiary id"))
		return
	}

	deliveries, err := h.deliveries.ListByBeneficiary(ctx, beneficiaryID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list deliveries")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"deliveries": deliveries})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deliveryID, err := id.ParseDeliveryID(chi.URLParam(r, "deliveryID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid delivery id"))
		return
	}

	if err := h.deliveries.Delete(ctx, deliveryID, requestcontext.ActorID(ctx)); err != nil {
		h.writeServiceError(ctx, w, err, "failed to delete delivery")
		return
	}

	w.WriteHeader(http.StatusNoContent)
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
