package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movigoo/host-server/internal/domain/kyc"
	"github.com/movigoo/host-server/internal/storage/memory"
)

func newKycHandler(t *testing.T) (*KycHandler, *memory.Repository) {
	t.Helper()
	repo := memory.NewRepository()
	service := kyc.NewService(repo.Kyc(), repo.Hosts(), nil)
	return NewKycHandler(service, "test"), repo
}

func validKycBody() []byte {
	body, _ := json.Marshal(submitKycRequest{
		FullName:       "Asha Rao",
		DocumentType:   "passport",
		DocumentNumber: "P1234567",
		DocumentURL:    "https://cdn.movigoo.com/docs/p1234567.jpg",
		Address:        "12 Residency Road, Bengaluru",
	})
	return body
}

func TestKycHandler_Submit(t *testing.T) {
	handler, repo := newKycHandler(t)
	seedUnverifiedHost(t, repo, "host-1")

	res := httptest.NewRecorder()
	handler.Submit(res, authedRequest(http.MethodPost, "/api/v1/kyc", validKycBody(), "host-1"))

	require.Equal(t, http.StatusCreated, res.Code)
	var out submitKycResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.Equal(t, "pending", out.Status)
	assert.NotEmpty(t, out.SubmittedAt)

	// Status is mirrored onto the host profile.
	host, err := repo.Hosts().Get(t.Context(), "host-1")
	require.NoError(t, err)
	assert.Equal(t, kyc.StatusPending, host.KycStatus)
}

func TestKycHandler_SubmitInvalidDocumentType(t *testing.T) {
	handler, repo := newKycHandler(t)
	seedUnverifiedHost(t, repo, "host-1")

	body, _ := json.Marshal(submitKycRequest{
		FullName:       "Asha Rao",
		DocumentType:   "library_card",
		DocumentNumber: "L-1",
		DocumentURL:    "https://cdn.movigoo.com/docs/l1.jpg",
		Address:        "12 Residency Road, Bengaluru",
	})
	res := httptest.NewRecorder()
	handler.Submit(res, authedRequest(http.MethodPost, "/api/v1/kyc", body, "host-1"))

	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
}

func TestKycHandler_SubmitUnknownHost(t *testing.T) {
	handler, _ := newKycHandler(t)

	res := httptest.NewRecorder()
	handler.Submit(res, authedRequest(http.MethodPost, "/api/v1/kyc", validKycBody(), "nobody"))

	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestKycHandler_SubmitAlreadyVerified(t *testing.T) {
	handler, repo := newKycHandler(t)
	seedVerifiedHost(t, repo, "host-1")

	res := httptest.NewRecorder()
	handler.Submit(res, authedRequest(http.MethodPost, "/api/v1/kyc", validKycBody(), "host-1"))

	require.Equal(t, http.StatusConflict, res.Code)
}

func TestKycHandler_StatusDefaultsToNone(t *testing.T) {
	handler, repo := newKycHandler(t)
	seedUnverifiedHost(t, repo, "host-1")

	res := httptest.NewRecorder()
	handler.Status(res, authedRequest(http.MethodGet, "/api/v1/kyc", nil, "host-1"))

	require.Equal(t, http.StatusOK, res.Code)
	var out kycStatusResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	assert.Equal(t, "none", out.Status)
	assert.Empty(t, out.SubmittedAt)
}

func TestKycHandler_StatusAfterSubmit(t *testing.T) {
	handler, repo := newKycHandler(t)
	seedUnverifiedHost(t, repo, "host-1")

	handler.Submit(httptest.NewRecorder(), authedRequest(http.MethodPost, "/api/v1/kyc", validKycBody(), "host-1"))

	res := httptest.NewRecorder()
	handler.Status(res, authedRequest(http.MethodGet, "/api/v1/kyc", nil, "host-1"))

	require.Equal(t, http.StatusOK, res.Code)
	var out kycStatusResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	assert.Equal(t, "pending", out.Status)
	assert.NotEmpty(t, out.SubmittedAt)
}
