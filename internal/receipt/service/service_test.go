package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"aidtrack/internal/audit"
	"aidtrack/internal/delivery"
	"aidtrack/internal/platform/metrics"
	"aidtrack/internal/receipt"
	"aidtrack/internal/receipt/render"
	"aidtrack/internal/registry"
	id "aidtrack/pkg/domain"
	dErrors "aidtrack/pkg/domain-errors"
	"aidtrack/pkg/requestcontext"
)

var testMetrics = metrics.New()

type memoryDocumentStore struct {
	docs map[string][]byte
	fail bool
}

func newMemoryDocumentStore() *memoryDocumentStore {
	return &memoryDocumentStore{docs: make(map[string][]byte)}
}

func (s *memoryDocumentStore) Put(_ context.Context, name string, content []byte) (string, error) {
	if s.fail {
		return "", fmt.Errorf("document store unavailable")
	}
	location := "doc:" + name
	s.docs[location] = content
	return location, nil
}

func (s *memoryDocumentStore) Get(_ context.Context, location string) ([]byte, error) {
	content, ok := s.docs[location]
	if !ok {
		return nil, fmt.Errorf("document %s not found", location)
	}
	return content, nil
}

type IssuerSuite struct {
	suite.Suite
	receipts   *receipt.InMemoryStore
	deliveries *delivery.InMemoryStore
	documents  *memoryDocumentStore
	auditStore *audit.InMemoryStore
	svc        *Service

	operator    id.UserID
	delivered   *delivery.Delivery
	issuedAt    time.Time
	beneficiary *registry.Beneficiary
}

func TestIssuerSuite(t *testing.T) {
	suite.Run(t, new(IssuerSuite))
}

func (s *IssuerSuite) SetupTest() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.receipts = receipt.NewInMemoryStore()
	s.deliveries = delivery.NewInMemoryStore()
	s.documents = newMemoryDocumentStore()
	s.auditStore = audit.NewInMemoryStore()

	reg := registry.NewInMemoryStore()
	s.beneficiary = &registry.Beneficiary{
		ID:         id.BeneficiaryID(uuid.New()),
		FullName:   "María Pérez",
		DocumentID: "CC-1042567890",
	}
	reg.SeedBeneficiary(s.beneficiary)
	aidType := &registry.AidType{
		ID:   id.AidTypeID(uuid.New()),
		Name: "Food kit",
		Unit: "kits",
	}
	reg.SeedAidType(aidType)

	recorder := audit.NewRecorder(s.auditStore, log, testMetrics)
	s.svc = New(s.receipts, s.deliveries, reg, render.NewTextRenderer(), s.documents, recorder, log, testMetrics)

	s.operator = id.UserID(uuid.New())
	s.issuedAt = time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC)

	s.delivered = &delivery.Delivery{
		ID:            id.DeliveryID(uuid.New()),
		BeneficiaryID: s.beneficiary.ID,
		AidTypeID:     aidType.ID,
		Quantity:      2,
		OperatorID:    s.operator,
		Municipality:  "Quibdó",
		DeliveredAt:   s.issuedAt.Add(-30 * time.Minute),
		ReceiptNumber: delivery.NewReceiptNumber(s.issuedAt.Add(-30 * time.Minute)),
		CreatedAt:     s.issuedAt.Add(-30 * time.Minute),
	}
	s.Require().NoError(s.deliveries.Create(context.Background(), s.delivered))
}

func (s *IssuerSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.issuedAt)
}

func (s *IssuerSuite) TestIssueReceipt() {
	r, err := s.svc.Issue(s.ctx(), s.delivered.ID, s.operator, true)
	s.Require().NoError(err)

	s.Equal(s.delivered.ID, r.DeliveryID)
	s.Equal(s.delivered.ReceiptNumber, r.ReceiptNumber)
	s.Equal(s.operator, r.IssuedBy)
	s.True(r.SignedByBeneficiary)
	s.Equal(s.issuedAt, r.GeneratedAt)

	// Recomputing the digest over the unmodified delivery reproduces the
	// stored hash exactly.
	s.Equal(receipt.Digest(s.delivered, s.issuedAt), r.Hash)

	content, err := s.documents.Get(context.Background(), r.DocumentPath)
	s.Require().NoError(err)
	s.Contains(string(content), s.beneficiary.FullName)
	s.Contains(string(content), r.Hash)
}

func (s *IssuerSuite) TestIssueIsAudited() {
	r, err := s.svc.Issue(s.ctx(), s.delivered.ID, s.operator, false)
	s.Require().NoError(err)

	records := s.auditStore.All()
	s.Require().Len(records, 1)
	s.Equal(audit.ActionCreate, records[0].Action)
	s.Equal(audit.EntityReceipt, records[0].Entity)
	s.Equal(r.ID.String(), records[0].EntityID)
	s.Require().NotNil(records[0].ActorID)
	s.Equal(s.operator, *records[0].ActorID)
	s.Nil(records[0].Before)
	s.NotNil(records[0].After)
}

func (s *IssuerSuite) TestSecondIssueConflicts() {
	_, err := s.svc.Issue(s.ctx(), s.delivered.ID, s.operator, true)
	s.Require().NoError(err)

	_, err = s.svc.Issue(s.ctx(), s.delivered.ID, s.operator, true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *IssuerSuite) TestIssueForMissingDelivery() {
	_, err := s.svc.Issue(s.ctx(), id.DeliveryID(uuid.New()), s.operator, true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *IssuerSuite) TestDocumentFailureDoesNotBlockIssuance() {
	s.documents.fail = true

	r, err := s.svc.Issue(s.ctx(), s.delivered.ID, s.operator, true)
	s.Require().NoError(err)
	s.Empty(r.DocumentPath)
	s.NotEmpty(r.Hash)

	exists, err := s.svc.ExistsForDelivery(context.Background(), s.delivered.ID)
	s.Require().NoError(err)
	s.True(exists)
}

func (s *IssuerSuite) TestGetByDelivery() {
	issued, err := s.svc.Issue(s.ctx(), s.delivered.ID, s.operator, true)
	s.Require().NoError(err)

	got, err := s.svc.GetByDelivery(context.Background(), s.delivered.ID)
	s.Require().NoError(err)
	s.Equal(issued.ID, got.ID)

	_, err = s.svc.GetByDelivery(context.Background(), id.DeliveryID(uuid.New()))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *IssuerSuite) TestDocumentRoundTrip() {
	issued, err := s.svc.Issue(s.ctx(), s.delivered.ID, s.operator, true)
	s.Require().NoError(err)

	content, err := s.svc.Document(context.Background(), issued.ID)
	s.Require().NoError(err)
	s.Contains(string(content), "PROOF OF DELIVERY")
}
