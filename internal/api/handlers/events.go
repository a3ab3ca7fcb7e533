package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/movigoo/host-server/internal/api/middleware"
	"github.com/movigoo/host-server/internal/api/problem"
	"github.com/movigoo/host-server/internal/domain/events"
	"github.com/movigoo/host-server/internal/metrics"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

type upsertEventRequest struct {
	Mode         string              `json:"mode"`
	EventID      string              `json:"eventId,omitempty"`
	BasicDetails events.BasicDetails `json:"basicDetails"`
	Schedule     events.Schedule     `json:"schedule"`
	Tickets      events.TicketConfig `json:"tickets"`
}

// Upsert saves or publishes an event submission depending on mode.
// Publication can be blocked by KYC or validation; both blocks keep the
// submission as a draft and report a business condition, not an error
// status in the transport sense.
func (h *EventsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	hostUID := middleware.HostUID(r.Context())

	var req upsertEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	input := events.UpsertInput{
		EventID:      strings.TrimSpace(req.EventID),
		BasicDetails: req.BasicDetails,
		Schedule:     req.Schedule,
		Tickets:      req.Tickets,
	}

	switch req.Mode {
	case "draft":
		saved, err := h.Service.SaveDraft(r.Context(), hostUID, input)
		if err != nil {
			h.writeEventError(w, r, err)
			return
		}
		metrics.EventDraftSavesTotal.Inc()
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"eventId":   saved.EventID,
			"status":    string(events.StatusDraft),
			"lastSaved": saved.LastSaved.Format(timeFormat),
		})
	case "publish":
		result, err := h.Service.Publish(r.Context(), hostUID, input)
		if err != nil {
			metrics.EventPublishesTotal.WithLabelValues("error").Inc()
			h.writeEventError(w, r, err)
			return
		}
		h.writePublishResult(w, result)
	default:
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request",
			errors.New("mode must be draft or publish"), h.Env)
	}
}

func (h *EventsHandler) writePublishResult(w http.ResponseWriter, result events.PublishResult) {
	switch result.Blocked {
	case events.BlockKyc:
		metrics.EventPublishesTotal.WithLabelValues("kyc_blocked").Inc()
		writeJSON(w, http.StatusOK, map[string]any{
			"error":        "KYC_NOT_VERIFIED",
			"savedAsDraft": true,
			"status":       string(events.StatusDraft),
			"eventId":      result.EventID,
		})
	case events.BlockValidation:
		metrics.EventPublishesTotal.WithLabelValues("validation_blocked").Inc()
		writeJSON(w, http.StatusOK, map[string]any{
			"error":   "VALIDATION_FAILED",
			"details": result.Errors,
			"status":  string(events.StatusDraft),
			"eventId": result.EventID,
		})
	default:
		metrics.EventPublishesTotal.WithLabelValues("published").Inc()
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"eventId":     result.EventID,
			"status":      string(events.StatusPublished),
			"publishedAt": result.PublishedAt.Format(timeFormat),
		})
	}
}

// Get returns the caller's own event, preferring the draft copy.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	hostUID := middleware.HostUID(r.Context())

	eventID := strings.TrimSpace(pathParam(r, "id"))
	if err := events.ValidateEventID(eventID); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	doc, err := h.Service.Get(r.Context(), hostUID, eventID)
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *EventsHandler) writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, events.ErrInvalidEventID):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
	case errors.Is(err, events.ErrForbidden):
		problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Forbidden", err, h.Env)
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, h.Env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
	}
}
