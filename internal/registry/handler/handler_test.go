package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidtrack/internal/registry"
	id "aidtrack/pkg/domain"
	"aidtrack/pkg/requestcontext"
	"aidtrack/pkg/testutil"
)

func newTestRouter() (*chi.Mux, *registry.InMemoryStore) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := registry.NewInMemoryStore()

	router := chi.NewRouter()
	New(store, log).Register(router)
	return router, store
}

func TestListBeneficiaries(t *testing.T) {
	router, store := newTestRouter()
	store.SeedBeneficiary(&registry.Beneficiary{
		ID:         id.BeneficiaryID(uuid.New()),
		FullName:   "María Pérez",
		DocumentID: "CC-1042567890",
	})

	req := testutil.NewJSONRequest(t, http.MethodGet, "/beneficiaries", nil)
	req = testutil.WithActor(req, id.UserID(uuid.New()), requestcontext.RoleOperator)

	rr := testutil.DoRequest(router, req)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := testutil.UnmarshalResponse[struct {
		Beneficiaries []*registry.Beneficiary `json:"beneficiaries"`
	}](t, rr)
	require.Len(t, resp.Beneficiaries, 1)
	assert.Equal(t, "María Pérez", resp.Beneficiaries[0].FullName)
}

func TestListAidTypes(t *testing.T) {
	router, store := newTestRouter()
	store.SeedAidType(&registry.AidType{
		ID:   id.AidTypeID(uuid.New()),
		Name: "Food kit",
		Unit: "kits",
	})

	req := testutil.NewJSONRequest(t, http.MethodGet, "/aid-types", nil)
	req = testutil.WithActor(req, id.UserID(uuid.New()), requestcontext.RoleOperator)

	rr := testutil.DoRequest(router, req)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := testutil.UnmarshalResponse[struct {
		AidTypes []*registry.AidType `json:"aid_types"`
	}](t, rr)
	require.Len(t, resp.AidTypes, 1)
	assert.Equal(t, "Food kit", resp.AidTypes[0].Name)
}

func TestListingsRequireAuth(t *testing.T) {
	router, _ := newTestRouter()

	// No actor in context: the role gate rejects the request.
	req := testutil.NewJSONRequest(t, http.MethodGet, "/beneficiaries", nil)
	rr := testutil.DoRequest(router, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	testutil.AssertErrorCode(t, rr, "forbidden")
}
