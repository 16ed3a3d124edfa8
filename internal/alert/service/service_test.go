package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"aidtrack/internal/alert"
	"aidtrack/internal/audit"
	"aidtrack/internal/platform/logger"
	"aidtrack/internal/platform/metrics"
	id "aidtrack/pkg/domain"
	dErrors "aidtrack/pkg/domain-errors"
	"aidtrack/pkg/requestcontext"
)

var testMetrics = metrics.New()

type LifecycleSuite struct {
	suite.Suite
	store      *alert.InMemoryStore
	auditStore *audit.InMemoryStore
	svc        *Service

	reviewer id.UserID
	now      time.Time
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	log := logger.New()
	s.store = alert.NewInMemoryStore()
	s.auditStore = audit.NewInMemoryStore()
	recorder := audit.NewRecorder(s.auditStore, log, testMetrics)
	s.svc = New(s.store, recorder, log, testMetrics)

	s.reviewer = id.UserID(uuid.New())
	s.now = time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC)
}

func (s *LifecycleSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *LifecycleSuite) seedAlert(status alert.Status) *alert.Alert {
	a := &alert.Alert{
		ID:            id.AlertID(uuid.New()),
		BeneficiaryID: id.BeneficiaryID(uuid.New()),
		AidTypeID:     id.AidTypeID(uuid.New()),
		DeliveryID:    id.DeliveryID(uuid.New()),
		TriggeredAt:   s.now.AddDate(0, 0, -1),
		DaysSinceLast: 10,
		Status:        status,
		CreatedAt:     s.now.AddDate(0, 0, -1),
	}
	s.Require().NoError(s.store.Create(context.Background(), a))
	return a
}

func (s *LifecycleSuite) TestTransitionToReviewed() {
	a := s.seedAlert(alert.StatusPending)

	updated, err := s.svc.Transition(s.ctx(), a.ID, alert.StatusReviewed, s.reviewer,
		"Possible data entry error", "Awaiting phone confirmation")
	s.Require().NoError(err)
	s.Equal(alert.StatusReviewed, updated.Status)
	s.Require().NotNil(updated.ReviewedBy)
	s.Equal(s.reviewer, *updated.ReviewedBy)
	s.Require().NotNil(updated.ReviewedAt)
	s.Equal(s.now, *updated.ReviewedAt)
}

func (s *LifecycleSuite) TestTransitionEmitsExactlyOneAuditRecord() {
	a := s.seedAlert(alert.StatusPending)

	_, err := s.svc.Transition(s.ctx(), a.ID, alert.StatusResolved, s.reviewer,
		"Caso válido - beneficiario autorizado", "Verified via phone call")
	s.Require().NoError(err)

	records := s.auditStore.All()
	s.Require().Len(records, 1)
	rec := records[0]
	s.Equal(audit.ActionUpdate, rec.Action)
	s.Equal(audit.EntityDuplicateAlert, rec.Entity)
	s.Equal(a.ID.String(), rec.EntityID)
	s.Require().NotNil(rec.ActorID)
	s.Equal(s.reviewer, *rec.ActorID)

	var before, after alert.Snapshot
	s.Require().NoError(json.Unmarshal(rec.Before, &before))
	s.Require().NoError(json.Unmarshal(rec.After, &after))
	s.Equal(alert.StatusPending, before.Status)
	s.Empty(before.Reason)
	s.Equal(alert.StatusResolved, after.Status)
	s.Equal("Caso válido - beneficiario autorizado", after.Reason)
	s.Equal("Verified via phone call", after.Notes)
}

func (s *LifecycleSuite) TestPendingMayskipToResolved() {
	a := s.seedAlert(alert.StatusPending)

	updated, err := s.svc.Transition(s.ctx(), a.ID, alert.StatusResolved, s.reviewer,
		"Authorized second kit", "Household of nine")
	s.Require().NoError(err)
	s.Equal(alert.StatusResolved, updated.Status)
}

func (s *LifecycleSuite) TestResolvedIsTerminal() {
	a := s.seedAlert(alert.StatusResolved)

	_, err := s.svc.Transition(s.ctx(), a.ID, alert.StatusReviewed, s.reviewer, "reason", "notes")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	// No state change, no audit record.
	stored, findErr := s.store.Find(context.Background(), a.ID)
	s.Require().NoError(findErr)
	s.Equal(alert.StatusResolved, stored.Status)
	s.Empty(s.auditStore.All())
}

func (s *LifecycleSuite) TestEmptyReasonRejectedBeforeMutation() {
	a := s.seedAlert(alert.StatusPending)

	_, err := s.svc.Transition(s.ctx(), a.ID, alert.StatusResolved, s.reviewer, "  ", "notes")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	stored, findErr := s.store.Find(context.Background(), a.ID)
	s.Require().NoError(findErr)
	s.Equal(alert.StatusPending, stored.Status)
	s.Empty(s.auditStore.All())
}

func (s *LifecycleSuite) TestEmptyNotesRejected() {
	a := s.seedAlert(alert.StatusPending)

	_, err := s.svc.Transition(s.ctx(), a.ID, alert.StatusReviewed, s.reviewer, "reason", "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.Empty(s.auditStore.All())
}

func (s *LifecycleSuite) TestInvalidTargetStateRejected() {
	a := s.seedAlert(alert.StatusPending)

	_, err := s.svc.Transition(s.ctx(), a.ID, alert.StatusPending, s.reviewer, "reason", "notes")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *LifecycleSuite) TestTransitionMissingAlert() {
	_, err := s.svc.Transition(s.ctx(), id.AlertID(uuid.New()), alert.StatusReviewed, s.reviewer, "reason", "notes")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *LifecycleSuite) TestHardDeleteWorksFromAnyStateAndIsAudited() {
	admin := id.UserID(uuid.New())
	for _, status := range []alert.Status{alert.StatusPending, alert.StatusResolved} {
		a := s.seedAlert(status)

		err := s.svc.HardDelete(s.ctx(), a.ID, admin)
		s.Require().NoError(err)

		_, findErr := s.store.Find(context.Background(), a.ID)
		s.Require().Error(findErr)
	}

	records := s.auditStore.All()
	s.Require().Len(records, 2)
	for _, rec := range records {
		s.Equal(audit.ActionDelete, rec.Action)
		s.Equal(audit.EntityDuplicateAlert, rec.Entity)
		s.NotNil(rec.Before)
		s.Nil(rec.After)
	}
}

func (s *LifecycleSuite) TestHardDeleteMissingAlert() {
	err := s.svc.HardDelete(s.ctx(), id.AlertID(uuid.New()), id.UserID(uuid.New()))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *LifecycleSuite) TestReviewScenario() {
	// The day-10 alert is resolved by an auditor; a later attempt to move it
	// back to reviewed is rejected.
	a := s.seedAlert(alert.StatusPending)

	resolved, err := s.svc.Transition(s.ctx(), a.ID, alert.StatusResolved, s.reviewer,
		"Caso válido - beneficiario autorizado", "Verified via phone call")
	s.Require().NoError(err)
	s.Equal(alert.StatusResolved, resolved.Status)
	s.Len(s.auditStore.All(), 1)

	_, err = s.svc.Transition(s.ctx(), a.ID, alert.StatusReviewed, s.reviewer, "second look", "n/a")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Len(s.auditStore.All(), 1)
}
