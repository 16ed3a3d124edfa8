// Package handler exposes the audit trail query endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"aidtrack/internal/audit"
	"aidtrack/internal/platform/middleware"
	dErrors "aidtrack/pkg/domain-errors"
	"aidtrack/pkg/platform/httputil"
	"aidtrack/pkg/requestcontext"
)

const defaultRecentLimit = 50

// Service defines the audit read operations the handler needs.
type Service interface {
	ListByEntity(ctx context.Context, entity, entityID string) ([]audit.Record, error)
	ListRecent(ctx context.Context, limit int) ([]audit.Record, error)
}

// Handler handles audit endpoints. Read-only: the trail is written by the
// recorder, never over HTTP.
type Handler struct {
	logger *slog.Logger
	trail  Service
}

// New creates a new audit Handler.
func New(trail Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		trail:  trail,
	}
}

// Register registers the audit routes with the chi router. Auditor role
// required.
func (h *Handler) Register(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequireRole(requestcontext.RoleAuditor, h.logger))
		r.Get("/", h.handleList)
		r.Get("/recent", h.handleRecent)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entity := r.URL.Query().Get("entity")
	if entity == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "entity query parameter is required"))
		return
	}
	entityID := r.URL.Query().Get("entity_id")

	records, err := h.trail.ListByEntity(ctx, entity, entityID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit records",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list audit records"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	records, err := h.trail.ListRecent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list recent audit records",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list recent audit records"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"records": records})
}
