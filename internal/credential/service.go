package credential

import (
	"context"
	"errors"

	"github.com/medledger/access-control-api/internal/credential/model"
	"github.com/medledger/access-control-api/internal/credential/validator"
	"github.com/medledger/access-control-api/internal/system/config"
	"github.com/medledger/access-control-api/internal/system/constants"
	dbmodel "github.com/medledger/access-control-api/internal/system/database/model"
	"github.com/medledger/access-control-api/internal/system/error/serviceerror"
	"github.com/medledger/access-control-api/internal/system/stores"
	"github.com/medledger/access-control-api/internal/system/utils"
)

// errRejected signals a precondition failure out of a sequencer build
// callback; the ServiceError captured alongside it carries the real reason.
var errRejected = errors.New("operation rejected")

// CredentialService defines the exported service interface of the
// credential registry.
type CredentialService interface {
	RegisterProvider(ctx context.Context, signerID string, req model.RegisterProviderRequest) (*model.ProviderResponse, *serviceerror.ServiceError)
	VerifyProvider(ctx context.Context, providerID string) (*model.ProviderResponse, *serviceerror.ServiceError)
	VerifyProviderAt(ctx context.Context, providerID string, height int64) (*model.ProviderResponse, *serviceerror.ServiceError)
	UpdateProviderCredentials(ctx context.Context, signerID, providerID string, req model.UpdateCredentialsRequest) (*model.ProviderResponse, *serviceerror.ServiceError)
	SuspendProvider(ctx context.Context, signerID, providerID string, req model.SuspendProviderRequest) (*model.ProviderResponse, *serviceerror.ServiceError)
	ReactivateProvider(ctx context.Context, signerID, providerID string) (*model.ProviderResponse, *serviceerror.ServiceError)
	RecordProviderActivity(ctx context.Context, callerID, providerID string, height int64) ([]func(tx dbmodel.TxInterface) error, *serviceerror.ServiceError)
	HasCredentialType(ctx context.Context, providerID, credentialType string) (bool, *serviceerror.ServiceError)
	AddCredentialType(ctx context.Context, signerID string, req model.CredentialTypeRequest) (*model.CredentialType, *serviceerror.ServiceError)
	GetProviderCredential(ctx context.Context, providerID string) (*model.ProviderCredential, *serviceerror.ServiceError)
	GetProviderStatus(ctx context.Context, providerID string) (*model.ProviderStatus, *serviceerror.ServiceError)
	ListCredentialTypes(ctx context.Context) (*model.CredentialTypeListResponse, *serviceerror.ServiceError)
	GetVerificationHistory(ctx context.Context, providerID string) (*model.VerificationHistoryResponse, *serviceerror.ServiceError)
}

// credentialService implements the CredentialService interface
type credentialService struct {
	stores *stores.StoreRegistry
}

// newCredentialService creates a new credential registry service
func newCredentialService(registry *stores.StoreRegistry) CredentialService {
	return &credentialService{
		stores: registry,
	}
}

// RegisterProvider creates the credential record, the operational status
// record, and one verification history entry in a single ledger transaction.
func (s *credentialService) RegisterProvider(ctx context.Context, signerID string, req model.RegisterProviderRequest) (*model.ProviderResponse, *serviceerror.ServiceError) {
	if !config.Get().Registry.IsAdministrator(signerID) {
		return nil, serviceerror.New(serviceerror.RegistryNotAuthorizedError)
	}
	if err := validator.ValidateCredentialTypeTags(req.CredentialTypes); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidCredentialTypeError, err.Error())
	}
	if err := validator.ValidateRegisterRequest(req); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidCredentialsError, err.Error())
	}
	if req.CredentialHash == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidCredentialsError, "credentialHash is required")
	}

	credentialStore := s.stores.Credential.(CredentialStore)

	var response *model.ProviderResponse
	var svcErr *serviceerror.ServiceError

	_, err := s.stores.Chain.Submit(func(height int64) ([]func(tx dbmodel.TxInterface) error, error) {
		existing, err := credentialStore.GetCredential(ctx, req.ProviderID)
		if err != nil {
			svcErr = serviceerror.New(serviceerror.StorageError)
			return nil, errRejected
		}
		if existing != nil {
			svcErr = serviceerror.New(serviceerror.ProviderAlreadyExistsError)
			return nil, errRejected
		}
		if svcErr = s.validateExpiry(ctx, req.ExpiresAtHeight, height); svcErr != nil {
			return nil, errRejected
		}
		if svcErr = s.validateTypesRegistered(ctx, req.CredentialTypes); svcErr != nil {
			return nil, errRejected
		}

		credential := &model.ProviderCredential{
			ProviderID:         req.ProviderID,
			LicenseNumber:      req.LicenseNumber,
			CredentialTypes:    req.CredentialTypes,
			IssuedAtHeight:     height,
			ExpiresAtHeight:    req.ExpiresAtHeight,
			IssuingAuthority:   req.IssuingAuthority,
			VerificationStatus: model.VerificationStatusVerified,
			LastVerifiedHeight: height,
		}
		status := &model.ProviderStatus{
			ProviderID:         req.ProviderID,
			RegistrationHeight: height,
			LastActivityHeight: height,
			AccessCount:        0,
			Status:             model.ProviderStatusActive,
			LastUpdatedBy:      signerID,
		}
		verification := &model.CredentialVerification{
			ProviderID:         req.ProviderID,
			VerificationID:     utils.GenerateUUID(),
			VerifierID:         signerID,
			VerificationHeight: height,
			CredentialHash:     req.CredentialHash,
			Result:             model.VerificationStatusVerified,
		}
		response = &model.ProviderResponse{Credential: *credential, Status: *status}

		return []func(tx dbmodel.TxInterface) error{
			func(tx dbmodel.TxInterface) error {
				return credentialStore.CreateCredential(tx, credential)
			},
			func(tx dbmodel.TxInterface) error {
				return credentialStore.CreateStatus(tx, status)
			},
			func(tx dbmodel.TxInterface) error {
				return credentialStore.CreateVerification(tx, verification)
			},
		}, nil
	})
	if err != nil {
		if svcErr != nil {
			return nil, svcErr
		}
		return nil, serviceerror.New(serviceerror.StorageError)
	}

	return response, nil
}

// VerifyProvider checks a provider's standing against the current height.
// The three failure reasons are distinct so callers can branch on which one
// occurred.
func (s *credentialService) VerifyProvider(ctx context.Context, providerID string) (*model.ProviderResponse, *serviceerror.ServiceError) {
	return s.VerifyProviderAt(ctx, providerID, s.stores.Chain.CurrentHeight())
}

// VerifyProviderAt is VerifyProvider evaluated against an explicit height.
// The grant ledger calls it from inside a sequencer build callback, where
// the commit height is already known and the writer lock is held.
func (s *credentialService) VerifyProviderAt(ctx context.Context, providerID string, height int64) (*model.ProviderResponse, *serviceerror.ServiceError) {
	credentialStore := s.stores.Credential.(CredentialStore)

	credential, err := credentialStore.GetCredential(ctx, providerID)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}
	if credential == nil {
		return nil, serviceerror.New(serviceerror.ProviderNotFoundError)
	}
	status, err := credentialStore.GetStatus(ctx, providerID)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}
	if status == nil {
		return nil, serviceerror.New(serviceerror.ProviderNotFoundError)
	}

	// Expiry is recomputed from heights at every read; the stored status
	// field is never updated when a credential lapses.
	if credential.ExpiresAtHeight <= height {
		return nil, serviceerror.New(serviceerror.CredentialsExpiredError)
	}
	if status.Status != model.ProviderStatusActive {
		return nil, serviceerror.New(serviceerror.ProviderSuspendedError)
	}
	if credential.VerificationStatus != model.VerificationStatusVerified {
		return nil, serviceerror.New(serviceerror.ProviderSuspendedError)
	}

	return &model.ProviderResponse{Credential: *credential, Status: *status}, nil
}

// UpdateProviderCredentials overwrites the type set and expiry and refreshes
// the last-verified height. No verification history entry is appended.
func (s *credentialService) UpdateProviderCredentials(ctx context.Context, signerID, providerID string, req model.UpdateCredentialsRequest) (*model.ProviderResponse, *serviceerror.ServiceError) {
	if !config.Get().Registry.IsAdministrator(signerID) {
		return nil, serviceerror.New(serviceerror.RegistryNotAuthorizedError)
	}
	if err := validator.ValidateCredentialTypeTags(req.CredentialTypes); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidCredentialTypeError, err.Error())
	}

	credentialStore := s.stores.Credential.(CredentialStore)

	var response *model.ProviderResponse
	var svcErr *serviceerror.ServiceError

	_, err := s.stores.Chain.Submit(func(height int64) ([]func(tx dbmodel.TxInterface) error, error) {
		credential, err := credentialStore.GetCredential(ctx, providerID)
		if err != nil {
			svcErr = serviceerror.New(serviceerror.StorageError)
			return nil, errRejected
		}
		if credential == nil {
			svcErr = serviceerror.New(serviceerror.ProviderNotFoundError)
			return nil, errRejected
		}
		if svcErr = s.validateExpiry(ctx, req.ExpiresAtHeight, height); svcErr != nil {
			return nil, errRejected
		}
		if svcErr = s.validateTypesRegistered(ctx, req.CredentialTypes); svcErr != nil {
			return nil, errRejected
		}
		status, err := credentialStore.GetStatus(ctx, providerID)
		if err != nil || status == nil {
			svcErr = serviceerror.New(serviceerror.StorageError)
			return nil, errRejected
		}

		credential.CredentialTypes = req.CredentialTypes
		credential.ExpiresAtHeight = req.ExpiresAtHeight
		credential.LastVerifiedHeight = height
		response = &model.ProviderResponse{Credential: *credential, Status: *status}

		return []func(tx dbmodel.TxInterface) error{
			func(tx dbmodel.TxInterface) error {
				return credentialStore.UpdateCredential(tx, credential)
			},
		}, nil
	})
	if err != nil {
		if svcErr != nil {
			return nil, svcErr
		}
		return nil, serviceerror.New(serviceerror.StorageError)
	}

	return response, nil
}

// SuspendProvider sets the operational status to suspended and stores the
// reason on the credential record.
func (s *credentialService) SuspendProvider(ctx context.Context, signerID, providerID string, req model.SuspendProviderRequest) (*model.ProviderResponse, *serviceerror.ServiceError) {
	if !config.Get().Registry.IsAdministrator(signerID) {
		return nil, serviceerror.New(serviceerror.RegistryNotAuthorizedError)
	}
	if err := validator.ValidateSuspensionReason(req.Reason); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidCredentialsError, err.Error())
	}

	return s.setOperationalStatus(ctx, signerID, providerID, model.ProviderStatusSuspended, &req.Reason, nil)
}

// ReactivateProvider sets a suspended provider back to active and clears the
// stored suspension reason.
func (s *credentialService) ReactivateProvider(ctx context.Context, signerID, providerID string) (*model.ProviderResponse, *serviceerror.ServiceError) {
	if !config.Get().Registry.IsAdministrator(signerID) {
		return nil, serviceerror.New(serviceerror.RegistryNotAuthorizedError)
	}

	requireSuspended := model.ProviderStatusSuspended
	return s.setOperationalStatus(ctx, signerID, providerID, model.ProviderStatusActive, nil, &requireSuspended)
}

func (s *credentialService) setOperationalStatus(ctx context.Context, signerID, providerID, newStatus string, reason *string, requiredCurrent *string) (*model.ProviderResponse, *serviceerror.ServiceError) {
	credentialStore := s.stores.Credential.(CredentialStore)

	var response *model.ProviderResponse
	var svcErr *serviceerror.ServiceError

	_, err := s.stores.Chain.Submit(func(height int64) ([]func(tx dbmodel.TxInterface) error, error) {
		credential, err := credentialStore.GetCredential(ctx, providerID)
		if err != nil {
			svcErr = serviceerror.New(serviceerror.StorageError)
			return nil, errRejected
		}
		if credential == nil {
			svcErr = serviceerror.New(serviceerror.ProviderNotFoundError)
			return nil, errRejected
		}
		status, err := credentialStore.GetStatus(ctx, providerID)
		if err != nil {
			svcErr = serviceerror.New(serviceerror.StorageError)
			return nil, errRejected
		}
		if status == nil {
			svcErr = serviceerror.New(serviceerror.ProviderNotFoundError)
			return nil, errRejected
		}
		if requiredCurrent != nil && status.Status != *requiredCurrent {
			svcErr = serviceerror.CustomServiceError(serviceerror.InvalidCredentialsError,
				"provider is not in the "+*requiredCurrent+" status")
			return nil, errRejected
		}

		status.Status = newStatus
		status.LastUpdatedBy = signerID
		credential.SuspensionReason = reason
		response = &model.ProviderResponse{Credential: *credential, Status: *status}

		return []func(tx dbmodel.TxInterface) error{
			func(tx dbmodel.TxInterface) error {
				return credentialStore.UpdateStatusState(tx, providerID, newStatus, signerID)
			},
			func(tx dbmodel.TxInterface) error {
				return credentialStore.UpdateSuspensionReason(tx, providerID, reason)
			},
		}, nil
	})
	if err != nil {
		if svcErr != nil {
			return nil, svcErr
		}
		return nil, serviceerror.New(serviceerror.StorageError)
	}

	return response, nil
}

// RecordProviderActivity is the registry's gated entry point. Only the grant
// ledger component may call it; it returns the activity-record queries for
// the caller to fold into its own ledger transaction, so the activity update
// commits atomically with the grant or use that caused it.
func (s *credentialService) RecordProviderActivity(ctx context.Context, callerID, providerID string, height int64) ([]func(tx dbmodel.TxInterface) error, *serviceerror.ServiceError) {
	if callerID != constants.GrantLedgerIdentity {
		return nil, serviceerror.New(serviceerror.RegistryNotAuthorizedError)
	}

	credentialStore := s.stores.Credential.(CredentialStore)

	status, err := credentialStore.GetStatus(ctx, providerID)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}
	if status == nil {
		return nil, serviceerror.New(serviceerror.ProviderNotFoundError)
	}

	return []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return credentialStore.RecordActivity(tx, providerID, height)
		},
	}, nil
}

// HasCredentialType tests membership of a type tag in the provider's current
// credential set.
func (s *credentialService) HasCredentialType(ctx context.Context, providerID, credentialType string) (bool, *serviceerror.ServiceError) {
	credentialStore := s.stores.Credential.(CredentialStore)

	credential, err := credentialStore.GetCredential(ctx, providerID)
	if err != nil {
		return false, serviceerror.New(serviceerror.StorageError)
	}
	if credential == nil {
		return false, serviceerror.New(serviceerror.ProviderNotFoundError)
	}

	for _, t := range credential.CredentialTypes {
		if t == credentialType {
			return true, nil
		}
	}
	return false, nil
}

// AddCredentialType upserts an entry in the recognized credential type
// registry.
func (s *credentialService) AddCredentialType(ctx context.Context, signerID string, req model.CredentialTypeRequest) (*model.CredentialType, *serviceerror.ServiceError) {
	if !config.Get().Registry.IsAdministrator(signerID) {
		return nil, serviceerror.New(serviceerror.RegistryNotAuthorizedError)
	}
	if err := validator.ValidateCredentialTypeRequest(req); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidCredentialTypeError, err.Error())
	}

	credentialStore := s.stores.Credential.(CredentialStore)

	var credentialType *model.CredentialType

	_, err := s.stores.Chain.Submit(func(height int64) ([]func(tx dbmodel.TxInterface) error, error) {
		credentialType = &model.CredentialType{
			Type:              req.Type,
			Description:       req.Description,
			RequiredForAccess: req.RequiredForAccess,
			CreatedAtHeight:   height,
		}
		return []func(tx dbmodel.TxInterface) error{
			func(tx dbmodel.TxInterface) error {
				return credentialStore.UpsertCredentialType(tx, credentialType)
			},
		}, nil
	})
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}

	return credentialType, nil
}

// GetProviderCredential returns the raw credential record.
func (s *credentialService) GetProviderCredential(ctx context.Context, providerID string) (*model.ProviderCredential, *serviceerror.ServiceError) {
	credentialStore := s.stores.Credential.(CredentialStore)

	credential, err := credentialStore.GetCredential(ctx, providerID)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}
	if credential == nil {
		return nil, serviceerror.New(serviceerror.ProviderNotFoundError)
	}
	return credential, nil
}

// GetProviderStatus returns the raw operational status record.
func (s *credentialService) GetProviderStatus(ctx context.Context, providerID string) (*model.ProviderStatus, *serviceerror.ServiceError) {
	credentialStore := s.stores.Credential.(CredentialStore)

	status, err := credentialStore.GetStatus(ctx, providerID)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}
	if status == nil {
		return nil, serviceerror.New(serviceerror.ProviderNotFoundError)
	}
	return status, nil
}

// ListCredentialTypes returns the recognized credential type registry.
func (s *credentialService) ListCredentialTypes(ctx context.Context) (*model.CredentialTypeListResponse, *serviceerror.ServiceError) {
	credentialStore := s.stores.Credential.(CredentialStore)

	types, err := credentialStore.ListCredentialTypes(ctx)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}
	return &model.CredentialTypeListResponse{Data: types}, nil
}

// GetVerificationHistory returns a provider's verification history entries
// in height order.
func (s *credentialService) GetVerificationHistory(ctx context.Context, providerID string) (*model.VerificationHistoryResponse, *serviceerror.ServiceError) {
	credentialStore := s.stores.Credential.(CredentialStore)

	credential, err := credentialStore.GetCredential(ctx, providerID)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}
	if credential == nil {
		return nil, serviceerror.New(serviceerror.ProviderNotFoundError)
	}

	verifications, err := credentialStore.GetVerificationsByProviderID(ctx, providerID)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}
	return &model.VerificationHistoryResponse{Data: verifications}, nil
}

// validateExpiry enforces the minimum validity window against the height at
// which the write will commit.
func (s *credentialService) validateExpiry(_ context.Context, expiresAt, height int64) *serviceerror.ServiceError {
	if expiresAt <= height {
		return serviceerror.CustomServiceError(serviceerror.InvalidExpiryError,
			"expiresAtHeight must be strictly in the future")
	}
	minWindow := config.Get().Chain.GetMinCredentialValidityBlocks()
	if expiresAt <= height+minWindow {
		return serviceerror.CustomServiceError(serviceerror.InvalidExpiryError,
			"expiresAtHeight is inside the minimum validity window")
	}
	return nil
}

// validateTypesRegistered checks that every tag is currently present in the
// recognized credential type registry. Membership is checked at write time
// only, never retroactively.
func (s *credentialService) validateTypesRegistered(ctx context.Context, tags []string) *serviceerror.ServiceError {
	credentialStore := s.stores.Credential.(CredentialStore)

	for _, tag := range tags {
		registered, err := credentialStore.GetCredentialType(ctx, tag)
		if err != nil {
			return serviceerror.New(serviceerror.StorageError)
		}
		if registered == nil {
			return serviceerror.CustomServiceError(serviceerror.InvalidCredentialTypeError,
				"credential type "+tag+" is not registered")
		}
	}
	return nil
}
