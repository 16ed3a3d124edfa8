// Package handler exposes read-only reference data endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aidtrack/internal/platform/middleware"
	"aidtrack/internal/registry"
	dErrors "aidtrack/pkg/domain-errors"
	"aidtrack/pkg/platform/httputil"
	"aidtrack/pkg/requestcontext"
)

// Handler serves the beneficiary and aid-type listings used by operator
// tooling.
type Handler struct {
	logger *slog.Logger
	store  registry.Store
}

func New(store registry.Store, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		store:  store,
	}
}

func (h *Handler) Register(r chi.Router) {
	operator := middleware.RequireRole(requestcontext.RoleOperator, h.logger)
	r.With(operator).Get("/beneficiaries", h.handleListBeneficiaries)
	r.With(operator).Get("/aid-types", h.handleListAidTypes)
}

func (h *Handler) handleListBeneficiaries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	beneficiaries, err := h.store.ListBeneficiaries(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list beneficiaries",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list beneficiaries"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"beneficiaries": beneficiaries})
}

func (h *Handler) handleListAidTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	aidTypes, err := h.store.ListAidTypes(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list aid types",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list aid types"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"aid_types": aidTypes})
}
