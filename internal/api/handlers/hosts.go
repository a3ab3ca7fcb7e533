package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/movigoo/host-server/internal/api/middleware"
	"github.com/movigoo/host-server/internal/api/problem"
	"github.com/movigoo/host-server/internal/domain/hosts"
)

type HostsHandler struct {
	Service  *hosts.Service
	Env      string
	validate *validator.Validate
}

func NewHostsHandler(service *hosts.Service, env string) *HostsHandler {
	return &HostsHandler{
		Service:  service,
		Env:      env,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type registerHostRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Phone string `json:"phone" validate:"required,e164"`
	Email string `json:"email" validate:"required,email"`
}

type registerHostResponse struct {
	Success bool   `json:"success"`
	HostUID string `json:"hostUid"`
	Created bool   `json:"created"`
	Updated bool   `json:"updated"`
}

// Register creates a host account for the authenticated identity, or
// upgrades an existing non-customer account to host.
func (h *HostsHandler) Register(w http.ResponseWriter, r *http.Request) {
	hostUID := middleware.HostUID(r.Context())

	var req registerHostRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env,
			problem.WithErrors(validationDetails(err)))
		return
	}

	result, err := h.Service.Register(r.Context(), hosts.RegisterInput{
		UID:   hostUID,
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		if errors.Is(err, hosts.ErrAccountIsCustomer) {
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Account is a customer account", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, registerHostResponse{
		Success: true,
		HostUID: hostUID,
		Created: result.Created,
		Updated: result.Updated,
	})
}

type updateProfileRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// UpdateProfile patches the host profile. At least one field is required.
func (h *HostsHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	hostUID := middleware.HostUID(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env,
			problem.WithErrors(validationDetails(err)))
		return
	}

	err := h.Service.UpdateProfile(r.Context(), hostUID, hosts.ProfileUpdate{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, hosts.ErrNoFieldsToUpdate):
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "No fields to update", err, h.Env)
		case errors.Is(err, hosts.ErrNotFound):
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Host not found", err, h.Env)
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// validationDetails flattens validator errors into a field-keyed map.
func validationDetails(err error) map[string]interface{} {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}
