package credential

import (
	"net/http"

	"github.com/medledger/access-control-api/internal/credential/model"
	"github.com/medledger/access-control-api/internal/system/constants"
	"github.com/medledger/access-control-api/internal/system/error/serviceerror"
	"github.com/medledger/access-control-api/internal/system/utils"
)

type credentialHandler struct {
	service CredentialService
}

func newCredentialHandler(service CredentialService) *credentialHandler {
	return &credentialHandler{
		service: service,
	}
}

// registerProvider handles POST /providers
func (h *credentialHandler) registerProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signerID := r.Header.Get(constants.HeaderSignerID)

	if err := utils.ValidateSignerIsPresent(r); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.RegistryNotAuthorizedError, err.Error()))
		return
	}

	var req model.RegisterProviderRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidCredentialsError, "Invalid request body"))
		return
	}

	provider, serviceErr := h.service.RegisterProvider(ctx, signerID, req)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, provider)
}

// getProvider handles GET /providers/{providerId}
func (h *credentialHandler) getProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	providerID := r.PathValue("providerId")

	credential, serviceErr := h.service.GetProviderCredential(ctx, providerID)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, credential)
}

// getProviderStatus handles GET /providers/{providerId}/status
func (h *credentialHandler) getProviderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	providerID := r.PathValue("providerId")

	status, serviceErr := h.service.GetProviderStatus(ctx, providerID)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, status)
}

// verifyProvider handles GET /providers/{providerId}/verify
func (h *credentialHandler) verifyProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	providerID := r.PathValue("providerId")

	provider, serviceErr := h.service.VerifyProvider(ctx, providerID)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, provider)
}

// updateProviderCredentials handles PUT /providers/{providerId}
func (h *credentialHandler) updateProviderCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signerID := r.Header.Get(constants.HeaderSignerID)
	providerID := r.PathValue("providerId")

	if err := utils.ValidateSignerIsPresent(r); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.RegistryNotAuthorizedError, err.Error()))
		return
	}

	var req model.UpdateCredentialsRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidCredentialsError, "Invalid request body"))
		return
	}

	provider, serviceErr := h.service.UpdateProviderCredentials(ctx, signerID, providerID, req)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, provider)
}

// suspendProvider handles POST /providers/{providerId}/suspend
func (h *credentialHandler) suspendProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signerID := r.Header.Get(constants.HeaderSignerID)
	providerID := r.PathValue("providerId")

	if err := utils.ValidateSignerIsPresent(r); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.RegistryNotAuthorizedError, err.Error()))
		return
	}

	var req model.SuspendProviderRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidCredentialsError, "Invalid request body"))
		return
	}

	provider, serviceErr := h.service.SuspendProvider(ctx, signerID, providerID, req)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, provider)
}

// reactivateProvider handles POST /providers/{providerId}/reactivate
func (h *credentialHandler) reactivateProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signerID := r.Header.Get(constants.HeaderSignerID)
	providerID := r.PathValue("providerId")

	if err := utils.ValidateSignerIsPresent(r); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.RegistryNotAuthorizedError, err.Error()))
		return
	}

	provider, serviceErr := h.service.ReactivateProvider(ctx, signerID, providerID)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, provider)
}

// hasCredentialType handles GET /providers/{providerId}/credential-types/{type}
func (h *credentialHandler) hasCredentialType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	providerID := r.PathValue("providerId")
	credentialType := r.PathValue("type")

	has, serviceErr := h.service.HasCredentialType(ctx, providerID, credentialType)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, map[string]bool{"hasCredentialType": has})
}

// addCredentialType handles POST /credential-types
func (h *credentialHandler) addCredentialType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signerID := r.Header.Get(constants.HeaderSignerID)

	if err := utils.ValidateSignerIsPresent(r); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.RegistryNotAuthorizedError, err.Error()))
		return
	}

	var req model.CredentialTypeRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidCredentialTypeError, "Invalid request body"))
		return
	}

	credentialType, serviceErr := h.service.AddCredentialType(ctx, signerID, req)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, credentialType)
}

// listCredentialTypes handles GET /credential-types
func (h *credentialHandler) listCredentialTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	types, serviceErr := h.service.ListCredentialTypes(ctx)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, types)
}

// getVerificationHistory handles GET /providers/{providerId}/verifications
func (h *credentialHandler) getVerificationHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	providerID := r.PathValue("providerId")

	history, serviceErr := h.service.GetVerificationHistory(ctx, providerID)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	utils.JSONResponse(w, http.StatusOK, history)
}
