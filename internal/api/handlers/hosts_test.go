package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movigoo/host-server/internal/domain/hosts"
	"github.com/movigoo/host-server/internal/storage/memory"
)

func newHostsHandler(t *testing.T) (*HostsHandler, *memory.Repository) {
	t.Helper()
	repo := memory.NewRepository()
	return NewHostsHandler(hosts.NewService(repo.Hosts()), "test"), repo
}

func TestHostsHandler_Register(t *testing.T) {
	handler, repo := newHostsHandler(t)

	body, _ := json.Marshal(registerHostRequest{
		Name:  "Asha Rao",
		Phone: "+919876543210",
		Email: "asha@example.com",
	})
	res := httptest.NewRecorder()
	handler.Register(res, authedRequest(http.MethodPost, "/api/v1/hosts", body, "host-1"))

	require.Equal(t, http.StatusCreated, res.Code)
	var out registerHostResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.True(t, out.Created)
	assert.False(t, out.Updated)

	host, err := repo.Hosts().Get(t.Context(), "host-1")
	require.NoError(t, err)
	assert.True(t, host.IsHost)
	assert.Equal(t, "Asha Rao", host.Name)
}

func TestHostsHandler_RegisterInvalidPhone(t *testing.T) {
	handler, _ := newHostsHandler(t)

	body, _ := json.Marshal(registerHostRequest{
		Name:  "Asha Rao",
		Phone: "not-a-phone",
		Email: "asha@example.com",
	})
	res := httptest.NewRecorder()
	handler.Register(res, authedRequest(http.MethodPost, "/api/v1/hosts", body, "host-1"))

	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "errors")
}

func TestHostsHandler_RegisterCustomerAccountConflict(t *testing.T) {
	handler, repo := newHostsHandler(t)

	require.NoError(t, repo.Hosts().Create(t.Context(), hosts.Host{
		UID:        "host-1",
		Name:       "Existing Customer",
		Email:      "c@example.com",
		IsCustomer: true,
	}))

	body, _ := json.Marshal(registerHostRequest{
		Name:  "Asha Rao",
		Phone: "+919876543210",
		Email: "asha@example.com",
	})
	res := httptest.NewRecorder()
	handler.Register(res, authedRequest(http.MethodPost, "/api/v1/hosts", body, "host-1"))

	require.Equal(t, http.StatusConflict, res.Code)
}

func TestHostsHandler_UpdateProfile(t *testing.T) {
	handler, repo := newHostsHandler(t)
	seedUnverifiedHost(t, repo, "host-1")

	newName := "Asha R."
	body, _ := json.Marshal(updateProfileRequest{Name: &newName})
	res := httptest.NewRecorder()
	handler.UpdateProfile(res, authedRequest(http.MethodPatch, "/api/v1/hosts/profile", body, "host-1"))

	require.Equal(t, http.StatusOK, res.Code)

	host, err := repo.Hosts().Get(t.Context(), "host-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha R.", host.Name)
}

func TestHostsHandler_UpdateProfileNoFields(t *testing.T) {
	handler, repo := newHostsHandler(t)
	seedUnverifiedHost(t, repo, "host-1")

	res := httptest.NewRecorder()
	handler.UpdateProfile(res, authedRequest(http.MethodPatch, "/api/v1/hosts/profile", []byte(`{}`), "host-1"))

	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestHostsHandler_UpdateProfileUnknownHost(t *testing.T) {
	handler, _ := newHostsHandler(t)

	newName := "Ghost"
	body, _ := json.Marshal(updateProfileRequest{Name: &newName})
	res := httptest.NewRecorder()
	handler.UpdateProfile(res, authedRequest(http.MethodPatch, "/api/v1/hosts/profile", body, "ghost"))

	require.Equal(t, http.StatusNotFound, res.Code)
}
