package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/movigoo/host-server/internal/api/middleware"
	"github.com/movigoo/host-server/internal/api/problem"
	"github.com/movigoo/host-server/internal/domain/kyc"
	"github.com/movigoo/host-server/internal/metrics"
)

type KycHandler struct {
	Service  *kyc.Service
	Env      string
	validate *validator.Validate
}

func NewKycHandler(service *kyc.Service, env string) *KycHandler {
	return &KycHandler{
		Service:  service,
		Env:      env,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type submitKycRequest struct {
	FullName       string `json:"fullName" validate:"required,min=1,max=100"`
	DocumentType   string `json:"documentType" validate:"required,oneof=passport national_id drivers_license"`
	DocumentNumber string `json:"documentNumber" validate:"required,min=3,max=50"`
	DocumentURL    string `json:"documentUrl" validate:"required,url"`
	Address        string `json:"address" validate:"required,min=5,max=300"`
}

type submitKycResponse struct {
	Success     bool   `json:"success"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submittedAt"`
}

// Submit files an identity-verification request. Resubmission after a
// rejection is allowed; a verified host cannot resubmit.
func (h *KycHandler) Submit(w http.ResponseWriter, r *http.Request) {
	hostUID := middleware.HostUID(r.Context())

	var req submitKycRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env,
			problem.WithErrors(validationDetails(err)))
		return
	}

	record, err := h.Service.Submit(r.Context(), hostUID, kyc.Submission{
		FullName:       req.FullName,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		DocumentURL:    req.DocumentURL,
		Address:        req.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, kyc.ErrHostNotFound), errors.Is(err, kyc.ErrNotHost):
			problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Host account required", err, h.Env)
		case errors.Is(err, kyc.ErrAlreadyVerified):
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Already verified", err, h.Env)
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		}
		return
	}

	metrics.KycSubmissionsTotal.Inc()
	writeJSON(w, http.StatusCreated, submitKycResponse{
		Success:     true,
		Status:      string(record.Status),
		SubmittedAt: record.SubmittedAt.Format(timeFormat),
	})
}

type kycStatusResponse struct {
	Status          string `json:"status"`
	SubmittedAt     string `json:"submittedAt,omitempty"`
	VerifiedAt      string `json:"verifiedAt,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}

// Status reports the host's verification state. Hosts that never
// submitted get status none rather than a 404.
func (h *KycHandler) Status(w http.ResponseWriter, r *http.Request) {
	hostUID := middleware.HostUID(r.Context())

	record, err := h.Service.Detail(r.Context(), hostUID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	if record == nil {
		writeJSON(w, http.StatusOK, kycStatusResponse{Status: string(kyc.StatusNone)})
		return
	}

	resp := kycStatusResponse{
		Status:          string(record.Status),
		SubmittedAt:     record.SubmittedAt.Format(timeFormat),
		RejectionReason: record.RejectionReason,
	}
	if record.VerifiedAt != nil {
		resp.VerifiedAt = record.VerifiedAt.Format(timeFormat)
	}
	writeJSON(w, http.StatusOK, resp)
}
