// Package service drives the alert review workflow: forward-only lifecycle
// transitions plus the administrator's hard delete.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"aidtrack/internal/alert"
	"aidtrack/internal/audit"
	"aidtrack/internal/platform/metrics"
	id "aidtrack/pkg/domain"
	dErrors "aidtrack/pkg/domain-errors"
	"aidtrack/pkg/platform/sentinel"
	"aidtrack/pkg/requestcontext"
)

// Service applies lifecycle transitions to duplicate alerts. Every mutation
// lands exactly one audit record.
type Service struct {
	store    alert.Store
	recorder *audit.Recorder
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func New(store alert.Store, recorder *audit.Recorder, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, recorder: recorder, logger: logger, metrics: m}
}

// Transition moves an alert to reviewed or resolved. Reason and notes are
// mandatory; a review without an explanation is rejected before any
// mutation. The transition is forward-only: resolved is terminal and
// reviewed cannot fall back to pending.
func (s *Service) Transition(ctx context.Context, alertID id.AlertID, target alert.Status, reviewerID id.UserID, reason, notes string) (*alert.Alert, error) {
	if target != alert.StatusReviewed && target != alert.StatusResolved {
		return nil, dErrors.New(dErrors.CodeBadRequest, "status must be reviewed or resolved")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "reason is required")
	}
	if strings.TrimSpace(notes) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "notes are required")
	}

	current, err := s.store.Find(ctx, alertID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "alert not found")
		}
		s.logger.ErrorContext(ctx, "alert lookup failed", "alert_id", alertID, "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to load alert")
	}

	if !current.Status.CanTransitionTo(target) {
		return nil, dErrors.New(dErrors.CodeConflict,
			"alert in state "+string(current.Status)+" cannot move to "+string(target))
	}

	before := current.Snapshot()
	now := requestcontext.Now(ctx)

	updated := *current
	updated.Status = target
	updated.ReviewedBy = &reviewerID
	updated.ReviewedAt = &now
	updated.Reason = reason
	updated.Notes = notes

	if err := s.store.UpdateTransition(ctx, &updated, current.Status); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "alert not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, dErrors.New(dErrors.CodeConflict, "alert was reviewed concurrently")
		default:
			s.logger.ErrorContext(ctx, "alert transition failed", "alert_id", alertID, "error", err)
			return nil, dErrors.New(dErrors.CodeInternal, "failed to update alert")
		}
	}

	s.recorder.Record(ctx, audit.ActionUpdate, audit.EntityDuplicateAlert, alertID.String(),
		&reviewerID, before, updated.Snapshot())
	s.metrics.AlertTransitions.WithLabelValues(string(target)).Inc()

	return &updated, nil
}

// HardDelete removes an alert regardless of its lifecycle state. This is not
// a lifecycle transition: it is a separate destructive operation reserved
// for administrators, and it is irreversible. The handler enforces the role;
// actorID is recorded on the audit trail.
func (s *Service) HardDelete(ctx context.Context, alertID id.AlertID, actorID id.UserID) error {
	current, err := s.store.Find(ctx, alertID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "alert not found")
		}
		s.logger.ErrorContext(ctx, "alert lookup failed", "alert_id", alertID, "error", err)
		return dErrors.New(dErrors.CodeInternal, "failed to load alert")
	}

	if err := s.store.Delete(ctx, alertID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "alert not found")
		}
		s.logger.ErrorContext(ctx, "alert delete failed", "alert_id", alertID, "error", err)
		return dErrors.New(dErrors.CodeInternal, "failed to delete alert")
	}

	s.recorder.Record(ctx, audit.ActionDelete, audit.EntityDuplicateAlert, alertID.String(),
		&actorID, current, nil)
	return nil
}

// Get returns one alert.
func (s *Service) Get(ctx context.Context, alertID id.AlertID) (*alert.Alert, error) {
	a, err := s.store.Find(ctx, alertID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "alert not found")
		}
		return nil, dErrors.New(dErrors.CodeInternal, "failed to load alert")
	}
	return a, nil
}

// List returns alerts, optionally filtered by status.
func (s *Service) List(ctx context.Context, status alert.Status) ([]*alert.Alert, error) {
	if status != "" && !status.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown status filter: "+string(status))
	}
	alerts, err := s.store.List(ctx, status)
	if err != nil {
		s.logger.ErrorContext(ctx, "alert list failed", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to list alerts")
	}
	return alerts, nil
}
