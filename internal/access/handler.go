package access

import (
	"net/http"

	"github.com/medledger/access-control-api/internal/access/model"
	"github.com/medledger/access-control-api/internal/system/constants"
	"github.com/medledger/access-control-api/internal/system/error/serviceerror"
	"github.com/medledger/access-control-api/internal/system/utils"
)

type accessHandler struct {
	service AccessService
}

func newAccessHandler(service AccessService) *accessHandler {
	return &accessHandler{
		service: service,
	}
}

// approveProviderAccess handles POST /consents. The signer is the patient.
func (h *accessHandler) approveProviderAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := r.Header.Get(constants.HeaderSignerID)

	if err := utils.ValidateSignerIsPresent(r); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidPatientIDError, err.Error()))
		return
	}

	var req model.ApproveAccessRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidScopeError, "Invalid request body"))
		return
	}

	consent, serviceErr := h.service.ApproveProviderAccess(ctx, patientID, req)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, consent)
}

// revokeProviderConsent handles POST /consents/{providerId}/revoke. The
// signer is the patient.
func (h *accessHandler) revokeProviderConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := r.Header.Get(constants.HeaderSignerID)
	providerID := r.PathValue("providerId")

	if err := utils.ValidateSignerIsPresent(r); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidPatientIDError, err.Error()))
		return
	}

	consent, serviceErr := h.service.RevokeProviderConsent(ctx, patientID, providerID)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, consent)
}

// hasPatientConsent handles GET /consents/{patientId}/{providerId}/check
func (h *accessHandler) hasPatientConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := r.PathValue("patientId")
	providerID := r.PathValue("providerId")

	consent, serviceErr := h.service.HasPatientConsent(ctx, patientID, providerID)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, consent)
}

// getPatientConsent handles GET /consents/{patientId}/{providerId}
func (h *accessHandler) getPatientConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := r.PathValue("patientId")
	providerID := r.PathValue("providerId")

	consent, serviceErr := h.service.GetPatientConsent(ctx, patientID, providerID)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, consent)
}

// grantAccess handles POST /grants. The signer is recorded as the granter.
func (h *accessHandler) grantAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	granterID := r.Header.Get(constants.HeaderSignerID)

	if err := utils.ValidateSignerIsPresent(r); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidGrantError, err.Error()))
		return
	}

	var req model.GrantAccessRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidGrantError, "Invalid request body"))
		return
	}

	grant, serviceErr := h.service.GrantAccess(ctx, granterID, req)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, grant)
}

// getAccessGrant handles GET /grants/{patientId}/{providerId}
func (h *accessHandler) getAccessGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := r.PathValue("patientId")
	providerID := r.PathValue("providerId")

	grant, serviceErr := h.service.GetAccessGrant(ctx, providerID, patientID)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, grant)
}

// hasAccess handles GET /grants/{patientId}/{providerId}/check
func (h *accessHandler) hasAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := r.PathValue("patientId")
	providerID := r.PathValue("providerId")

	grant, serviceErr := h.service.HasAccess(ctx, providerID, patientID)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, grant)
}

// hasRecordScopeAccess handles GET /grants/{patientId}/{providerId}/scope/{recordType}
func (h *accessHandler) hasRecordScopeAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := r.PathValue("patientId")
	providerID := r.PathValue("providerId")
	recordType := r.PathValue("recordType")

	grant, serviceErr := h.service.HasRecordScopeAccess(ctx, providerID, patientID, recordType)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, grant)
}

// useAccess handles POST /grants/{patientId}/{providerId}/use
func (h *accessHandler) useAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := r.PathValue("patientId")
	providerID := r.PathValue("providerId")

	grant, serviceErr := h.service.UseAccess(ctx, providerID, patientID)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, grant)
}

// revokeAccess handles POST /grants/{patientId}/{providerId}/revoke
func (h *accessHandler) revokeAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := r.PathValue("patientId")
	providerID := r.PathValue("providerId")

	grant, serviceErr := h.service.RevokeAccess(ctx, providerID, patientID)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, grant)
}
