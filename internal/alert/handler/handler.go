// Package handler exposes the alert review endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aidtrack/internal/alert"
	"aidtrack/internal/platform/middleware"
	id "aidtrack/pkg/domain"
	dErrors "aidtrack/pkg/domain-errors"
	"aidtrack/pkg/platform/httputil"
	"aidtrack/pkg/requestcontext"
)

// Service defines the alert lifecycle operations the handler needs.
type Service interface {
	Transition(ctx context.Context, alertID id.AlertID, target alert.Status, reviewerID id.UserID, reason, notes string) (*alert.Alert, error)
	HardDelete(ctx context.Context, alertID id.AlertID, actorID id.UserID) error
	Get(ctx context.Context, alertID id.AlertID) (*alert.Alert, error)
	List(ctx context.Context, status alert.Status) ([]*alert.Alert, error)
}

// Handler handles alert endpoints.
type Handler struct {
	logger *slog.Logger
	alerts Service
}

// New creates a new alert Handler.
func New(alerts Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		alerts: alerts,
	}
}

// Register registers the alert routes with the chi router. Listing and
// reviewing require auditor role; hard delete requires admin.
func (h *Handler) Register(r chi.Router) {
	r.Route("/alerts", func(r chi.Router) {
		operator := middleware.RequireRole(requestcontext.RoleOperator, h.logger)
		auditor := middleware.RequireRole(requestcontext.RoleAuditor, h.logger)
		admin := middleware.RequireRole(requestcontext.RoleAdmin, h.logger)

		r.With(operator).Get("/", h.handleList)
		r.With(operator).Get("/{alertID}", h.handleGet)
		r.With(auditor).Patch("/{alertID}", h.handleTransition)
		r.With(admin).Delete("/{alertID}", h.handleDelete)
	})
}

// transitionRequest is the body of PATCH /alerts/{id}.
type transitionRequest struct {
	Status alert.Status `json:"status"`
	Reason string       `json:"reason"`
	Notes  string       `json:"notes"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := alert.Status(r.URL.Query().Get("status"))
	alerts, err := h.alerts.List(ctx, status)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list alerts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	alertID, err := id.ParseAlertID(chi.URLParam(r, "alertID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid alert id"))
		return
	}

	a, err := h.alerts.Get(ctx, alertID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to get alert")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	alertID, err := id.ParseAlertID(chi.URLParam(r, "alertID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid alert id"))
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid alert transition request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.alerts.Transition(ctx, alertID, req.Status, requestcontext.ActorID(ctx), req.Reason, req.Notes)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to transition alert")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	alertID, err := id.ParseAlertID(chi.URLParam(r, "alertID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid alert id"))
		return
	}

	if err := h.alerts.HardDelete(ctx, alertID, requestcontext.ActorID(ctx)); err != nil {
		h.writeServiceError(ctx, w, err, "failed to delete alert")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps coded domain errors straight through and masks
// everything else as internal.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	if dErrors.HasCode(err, dErrors.CodeBadRequest) ||
		dErrors.HasCode(err, dErrors.CodeInvalidInput) ||
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
