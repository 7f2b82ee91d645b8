package auditlog

import (
	"net/http"
	"strconv"

	"github.com/medledger/access-control-api/internal/system/error/serviceerror"
	"github.com/medledger/access-control-api/internal/system/utils"
)

type auditHandler struct {
	service AuditService
}

func newAuditHandler(service AuditService) *auditHandler {
	return &auditHandler{
		service: service,
	}
}

// getPatientAuditTrail handles GET /patients/{patientId}/audit
func (h *auditHandler) getPatientAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := r.PathValue("patientId")

	trail, serviceErr := h.service.GetPatientAuditTrail(ctx, patientID)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, trail)
}

// listPatientEvents handles GET /patients/{patientId}/events
func (h *auditHandler) listPatientEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := r.PathValue("patientId")

	limit := 25
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if err := utils.ValidatePagination(limit, offset); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidEventError, err.Error()))
		return
	}

	events, serviceErr := h.service.ListPatientEvents(ctx, patientID, limit, offset)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, events)
}

// getPatientEventID handles GET /patients/{patientId}/events/{seq}
func (h *auditHandler) getPatientEventID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := r.PathValue("patientId")

	sequenceNumber, err := strconv.ParseInt(r.PathValue("seq"), 10, 64)
	if err != nil || sequenceNumber < 0 {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidEventError,
			"sequence number must be a non-negative integer"))
		return
	}

	response, serviceErr := h.service.GetPatientEventID(ctx, patientID, sequenceNumber)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, response)
}

// getEventDetails handles GET /events/{eventId}
func (h *auditHandler) getEventDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID := r.PathValue("eventId")

	// Event ids are ledger-generated UUIDs; reject malformed ids before
	// touching the store.
	if !utils.IsValidUUID(eventID) {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidEventError,
			"eventId must be a UUID"))
		return
	}

	event, serviceErr := h.service.GetEventDetails(ctx, eventID)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, event)
}
