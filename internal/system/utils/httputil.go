package utils

import (
	"encoding/json"
	"net/http"

	"github.com/medledger/access-control-api/internal/system/constants"
	"github.com/medledger/access-control-api/internal/system/error/apierror"
	"github.com/medledger/access-control-api/internal/system/error/codes"
	"github.com/medledger/access-control-api/internal/system/error/serviceerror"
)

func DecodeJSONBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// SendError writes a ServiceError as an HTTP response with a status code
// derived from the error code's failure class.
func SendError(w http.ResponseWriter, err *serviceerror.ServiceError) {
	statusCode := http.StatusInternalServerError
	if err.Type == serviceerror.ClientErrorType {
		switch err.Code {
		case codes.GrantNotFound, codes.ConsentNotFound, codes.EventNotFound, codes.ProviderNotFound:
			statusCode = http.StatusNotFound
		case codes.LedgerNotAuthorized, codes.AuditNotAuthorized, codes.RegistryNotAuthorized:
			statusCode = http.StatusForbidden
		case codes.ProviderAlreadyExists:
			statusCode = http.StatusConflict
		default:
			statusCode = http.StatusBadRequest
		}
	}

	errorResponse := apierror.ErrorResponse{
		Code:        err.Code,
		Error:       err.Error,
		Description: err.ErrorDescription,
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponse)
}
