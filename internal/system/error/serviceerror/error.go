package serviceerror

import "github.com/medledger/access-control-api/internal/system/error/codes"

type ServiceErrorType string

const (
	ClientErrorType ServiceErrorType = "client_error"
	ServerErrorType ServiceErrorType = "server_error"
)

// ServiceError is the result value returned by every failed core operation.
// Code is a small non-negative integer partitioned by component; Error is a
// stable machine-readable token. Callers match on Code, never on text.
type ServiceError struct {
	Code             int              `json:"code"`
	Type             ServiceErrorType `json:"type"`
	Error            string           `json:"error"`
	ErrorDescription string           `json:"error_description,omitempty"`
}

var (
	InternalServerError = ServiceError{
		Type:             ServerErrorType,
		Code:             codes.InternalError,
		Error:            "internal_server_error",
		ErrorDescription: "An unexpected error occurred",
	}

	StorageError = ServiceError{
		Type:             ServerErrorType,
		Code:             codes.StorageError,
		Error:            "storage_error",
		ErrorDescription: "A storage error occurred",
	}

	// Consent & Grant Ledger errors

	GrantNotFoundError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.GrantNotFound,
		Error:            "grant_not_found",
		ErrorDescription: "No access grant exists for the pair",
	}

	InvalidGrantError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.InvalidGrant,
		Error:            "invalid_grant",
		ErrorDescription: "The grant is invalid for this operation",
	}

	GrantExpiredError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.GrantExpired,
		Error:            "grant_expired",
		ErrorDescription: "The permission has passed its expiry height",
	}

	LedgerNotAuthorizedError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.LedgerNotAuthorized,
		Error:            "not_authorized",
		ErrorDescription: "Caller is not authorized for this ledger operation",
	}

	ConsentNotFoundError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ConsentNotFound,
		Error:            "consent_not_found",
		ErrorDescription: "No consent record exists for the pair",
	}

	ConsentNotApprovedError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ConsentNotApproved,
		Error:            "consent_not_approved",
		ErrorDescription: "The consent record is not in the approved status",
	}

	InvalidScopeError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.InvalidScope,
		Error:            "invalid_scope",
		ErrorDescription: "The record scope is empty or malformed",
	}

	InvalidPatientIDError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.InvalidPatientID,
		Error:            "invalid_patient_id",
		ErrorDescription: "The patient identity is empty or malformed",
	}

	InvalidMaxAccessesError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.InvalidMaxAccesses,
		Error:            "invalid_max_accesses",
		ErrorDescription: "maxAccesses must be positive when provided",
	}

	ProviderNotVerifiedError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ProviderNotVerified,
		Error:            "provider_not_verified",
		ErrorDescription: "The provider failed credential verification",
	}

	// Audit Log errors

	AuditNotAuthorizedError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.AuditNotAuthorized,
		Error:            "not_authorized",
		ErrorDescription: "Caller is not authorized to log audit events",
	}

	InvalidEventError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.InvalidEvent,
		Error:            "invalid_event",
		ErrorDescription: "The audit event is malformed or duplicates an event id",
	}

	EventNotFoundError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.EventNotFound,
		Error:            "event_not_found",
		ErrorDescription: "No audit event exists for the id",
	}

	// Credential Registry errors

	RegistryNotAuthorizedError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.RegistryNotAuthorized,
		Error:            "not_authorized",
		ErrorDescription: "Caller is not authorized for this registry operation",
	}

	ProviderNotFoundError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ProviderNotFound,
		Error:            "provider_not_found",
		ErrorDescription: "No credential record exists for the provider",
	}

	ProviderAlreadyExistsError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ProviderAlreadyExists,
		Error:            "provider_already_exists",
		ErrorDescription: "A credential record already exists for the provider",
	}

	InvalidExpiryError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.InvalidExpiry,
		Error:            "invalid_expiry",
		ErrorDescription: "The expiry height is not acceptably in the future",
	}

	InvalidCredentialTypeError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.InvalidCredentialType,
		Error:            "invalid_credential_type",
		ErrorDescription: "A credential type tag is not registered",
	}

	InvalidCredentialsError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.InvalidCredentials,
		Error:            "invalid_credentials",
		ErrorDescription: "The credential material is missing or malformed",
	}

	CredentialsExpiredError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.CredentialsExpired,
		Error:            "credentials_expired",
		ErrorDescription: "The provider's credentials have passed their expiry height",
	}

	ProviderSuspendedError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ProviderSuspended,
		Error:            "provider_suspended",
		ErrorDescription: "The provider is not in the active status",
	}
)

// CustomServiceError specializes a base error with a description.
func CustomServiceError(baseError ServiceError, description string) *ServiceError {
	return &ServiceError{
		Code:             baseError.Code,
		Type:             baseError.Type,
		Error:            baseError.Error,
		ErrorDescription: description,
	}
}

// New returns a copy of the base error with its default description.
func New(baseError ServiceError) *ServiceError {
	err := baseError
	return &err
}
