package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidtrack/internal/receipt"
	id "aidtrack/pkg/domain"
	dErrors "aidtrack/pkg/domain-errors"
	"aidtrack/pkg/requestcontext"
	"aidtrack/pkg/testutil"
)

type fakeService struct {
	issued   *receipt.Receipt
	issueErr error

	byID       map[id.ReceiptID]*receipt.Receipt
	byDelivery map[id.DeliveryID]*receipt.Receipt
	documents  map[id.ReceiptID][]byte
}

func (f *fakeService) Issue(_ context.Context, deliveryID id.DeliveryID, issuerID id.UserID, signed bool) (*receipt.Receipt, error) {
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	r := *f.issued
	r.DeliveryID = deliveryID
	r.IssuedBy = issuerID
	r.SignedByBeneficiary = signed
	return &r, nil
}

func (f *fakeService) Get(_ context.Context, receiptID id.ReceiptID) (*receipt.Receipt, error) {
	r, ok := f.byID[receiptID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "receipt not found")
	}
	return r, nil
}

func (f *fakeService) GetByDelivery(_ context.Context, deliveryID id.DeliveryID) (*receipt.Receipt, error) {
	r, ok := f.byDelivery[deliveryID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "receipt not found")
	}
	return r, nil
}

func (f *fakeService) Document(_ context.Context, receiptID id.ReceiptID) ([]byte, error) {
	doc, ok := f.documents[receiptID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "receipt document not found")
	}
	return doc, nil
}

func newTestRouter(svc Service) *chi.Mux {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	New(svc, log).Register(router)
	return router
}

func sampleReceipt() *receipt.Receipt {
	return &receipt.Receipt{
		ID:            id.ReceiptID(uuid.New()),
		DeliveryID:    id.DeliveryID(uuid.New()),
		ReceiptNumber: "REC-1767225600000-0A1B2C3D",
		Hash:          strings.Repeat("ab", 32),
		IssuedBy:      id.UserID(uuid.New()),
		GeneratedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestIssueReturnsCreated(t *testing.T) {
	svc := &fakeService{issued: sampleReceipt()}
	router := newTestRouter(svc)

	operator := id.UserID(uuid.New())
	deliveryID := uuid.NewString()

	req := testutil.NewJSONRequest(t, http.MethodPost, "/receipts/"+deliveryID,
		map[string]bool{"signed_by_beneficiary": true})
	req = testutil.WithActor(req, operator, requestcontext.RoleOperator)

	rr := testutil.DoRequest(router, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	resp := testutil.UnmarshalResponse[receipt.Receipt](t, rr)
	assert.Equal(t, deliveryID, resp.DeliveryID.String())
	assert.Equal(t, operator, resp.IssuedBy)
	assert.True(t, resp.SignedByBeneficiary)
	assert.Len(t, resp.Hash, 64)
}

func TestIssueWithoutBodyDefaultsUnsigned(t *testing.T) {
	svc := &fakeService{issued: sampleReceipt()}
	router := newTestRouter(svc)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/receipts/"+uuid.NewString(), nil)
	req = testutil.WithActor(req, id.UserID(uuid.New()), requestcontext.RoleOperator)

	rr := testutil.DoRequest(router, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	resp := testutil.UnmarshalResponse[receipt.Receipt](t, rr)
	assert.False(t, resp.SignedByBeneficiary)
}

func TestIssueDuplicateConflicts(t *testing.T) {
	svc := &fakeService{issueErr: dErrors.New(dErrors.CodeConflict, "delivery already has a receipt")}
	router := newTestRouter(svc)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/receipts/"+uuid.NewString(), nil)
	req = testutil.WithActor(req, id.UserID(uuid.New()), requestcontext.RoleOperator)

	rr := testutil.DoRequest(router, req)
	assert.Equal(t, http.StatusConflict, rr.Code)
	testutil.AssertErrorCode(t, rr, "conflict")
}

func TestIssueRejectsMalformedID(t *testing.T) {
	svc := &fakeService{issued: sampleReceipt()}
	router := newTestRouter(svc)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/receipts/not-a-uuid", nil)
	req = testutil.WithActor(req, id.UserID(uuid.New()), requestcontext.RoleOperator)

	rr := testutil.DoRequest(router, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	testutil.AssertErrorCode(t, rr, "bad_request")
}

func TestGetReceipt(t *testing.T) {
	rec := sampleReceipt()
	svc := &fakeService{byID: map[id.ReceiptID]*receipt.Receipt{rec.ID: rec}}
	router := newTestRouter(svc)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/receipts/"+rec.ID.String(), nil)
	req = testutil.WithActor(req, id.UserID(uuid.New()), requestcontext.RoleOperator)

	rr := testutil.DoRequest(router, req)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := testutil.UnmarshalResponse[receipt.Receipt](t, rr)
	assert.Equal(t, rec.ReceiptNumber, resp.ReceiptNumber)
}

func TestGetUnknownReceiptNotFound(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/receipts/"+uuid.NewString(), nil)
	req = testutil.WithActor(req, id.UserID(uuid.New()), requestcontext.RoleOperator)

	rr := testutil.DoRequest(router, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	testutil.AssertErrorCode(t, rr, "not_found")
}

func TestGetByDelivery(t *testing.T) {
	rec := sampleReceipt()
	svc := &fakeService{byDelivery: map[id.DeliveryID]*receipt.Receipt{rec.DeliveryID: rec}}
	router := newTestRouter(svc)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/receipts/delivery/"+rec.DeliveryID.String(), nil)
	req = testutil.WithActor(req, id.UserID(uuid.New()), requestcontext.RoleOperator)

	rr := testutil.DoRequest(router, req)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := testutil.UnmarshalResponse[receipt.Receipt](t, rr)
	assert.Equal(t, rec.ID, resp.ID)
}

func TestDocumentServedAsPlainText(t *testing.T) {
	rec := sampleReceipt()
	svc := &fakeService{documents: map[id.ReceiptID][]byte{rec.ID: []byte("PROOF OF DELIVERY\n")}}
	router := newTestRouter(svc)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/receipts/"+rec.ID.String()+"/document", nil)
	req = testutil.WithActor(req, id.UserID(uuid.New()), requestcontext.RoleOperator)

	rr := testutil.DoRequest(router, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "PROOF OF DELIVERY")
}

func TestReceiptsRequireActor(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/receipts/"+uuid.NewString(), nil)
	rr := testutil.DoRequest(router, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	testutil.AssertErrorCode(t, rr, "forbidden")
}
