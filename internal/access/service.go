package access

import (
	"context"
	"errors"

	"github.com/medledger/access-control-api/internal/access/model"
	"github.com/medledger/access-control-api/internal/access/validator"
	auditmodel "github.com/medledger/access-control-api/internal/auditlog/model"
	credmodel "github.com/medledger/access-control-api/internal/credential/model"
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

// RegistryGateway is the slice of the credential registry the grant ledger
// consumes: standing verification before a grant, and the gated activity
// recorder whose queries join the ledger's own transaction.
type RegistryGateway interface {
	VerifyProviderAt(ctx context.Context, providerID string, height int64) (*credmodel.ProviderResponse, *serviceerror.ServiceError)
	RecordProviderActivity(ctx context.Context, callerID, providerID string, height int64) ([]func(tx dbmodel.TxInterface) error, *serviceerror.ServiceError)
}

// AuditGateway is the slice of the audit log the grant ledger consumes: the
// gated event logger whose queries join the ledger's own transaction.
type AuditGateway interface {
	LogEvent(ctx context.Context, callerID string, req auditmodel.LogEventRequest, height int64) ([]func(tx dbmodel.TxInterface) error, *serviceerror.ServiceError)
}

// AccessService defines the exported service interface of the consent and
// grant ledger.
type AccessService interface {
	ApproveProviderAccess(ctx context.Context, patientID string, req model.ApproveAccessRequest) (*model.PatientConsent, *serviceerror.ServiceError)
	RevokeProviderConsent(ctx context.Context, patientID, providerID string) (*model.PatientConsent, *serviceerror.ServiceError)
	HasPatientConsent(ctx context.Context, patientID, providerID string) (*model.PatientConsent, *serviceerror.ServiceError)
	GetPatientConsent(ctx context.Context, patientID, providerID string) (*model.PatientConsent, *serviceerror.ServiceError)

	GrantAccess(ctx context.Context, granterID string, req model.GrantAccessRequest) (*model.AccessGrant, *serviceerror.ServiceError)
	HasAccess(ctx context.Context, providerID, patientID string) (*model.AccessGrant, *serviceerror.ServiceError)
	UseAccess(ctx context.Context, providerID, patientID string) (*model.AccessGrant, *serviceerror.ServiceError)
	RevokeAccess(ctx context.Context, providerID, patientID string) (*model.AccessGrant, *serviceerror.ServiceError)
	GetAccessGrant(ctx context.Context, providerID, patientID string) (*model.AccessGrant, *serviceerror.ServiceError)
	HasRecordScopeAccess(ctx context.Context, providerID, patientID, recordType string) (*model.AccessGrant, *serviceerror.ServiceError)
}

// accessService implements the AccessService interface
type accessService struct {
	stores   *stores.StoreRegistry
	registry RegistryGateway
	audit    AuditGateway
}

// newAccessService creates a new consent and grant ledger service
func newAccessService(storeRegistry *stores.StoreRegistry, registry RegistryGateway, audit AuditGateway) AccessService {
	return &accessService{
		stores:   storeRegistry,
		registry: registry,
		audit:    audit,
	}
}

// ApproveProviderAccess creates an approved consent record for the calling
// patient. A consent record for the pair, in any status, blocks re-creation.
func (s *accessService) ApproveProviderAccess(ctx context.Context, patientID string, req model.ApproveAccessRequest) (*model.PatientConsent, *serviceerror.ServiceError) {
	if err := utils.ValidateSignerID(patientID); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidPatientIDError, err.Error())
	}
	if len(req.RecordScope) == 0 {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidScopeError, "recordScope must not be empty")
	}
	if err := validator.ValidateApproveRequest(req); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidScopeError, err.Error())
	}

	accessStore := s.stores.Access.(AccessStore)

	var consent *model.PatientConsent
	var svcErr *serviceerror.ServiceError

	_, err := s.stores.Chain.Submit(func(height int64) ([]func(tx dbmodel.TxInterface) error, error) {
		existing, err := accessStore.GetConsent(ctx, patientID, req.ProviderID)
		if err != nil {
			svcErr = serviceerror.New(serviceerror.StorageError)
			return nil, errRejected
		}
		if existing != nil {
			svcErr = serviceerror.CustomServiceError(serviceerror.InvalidGrantError,
				"a consent record already exists for this provider")
			return nil, errRejected
		}

		consent = &model.PatientConsent{
			PatientID:            patientID,
			ProviderID:           req.ProviderID,
			Status:               model.ConsentStatusApproved,
			RecordScope:          req.RecordScope,
			ConsentGivenAtHeight: height,
			ConsentExpiryHeight:  req.ExpiresAtHeight,
		}

		return []func(tx dbmodel.TxInterface) error{
			func(tx dbmodel.TxInterface) error {
				return accessStore.CreateConsent(tx, consent)
			},
		}, nil
	})
	if err != nil {
		if svcErr != nil {
			return nil, svcErr
		}
		return nil, serviceerror.New(serviceerror.StorageError)
	}

	return consent, nil
}

// RevokeProviderConsent sets the consent record to revoked, stamping the
// height and the revoker identity.
func (s *accessService) RevokeProviderConsent(ctx context.Context, patientID, providerID string) (*model.PatientConsent, *serviceerror.ServiceError) {
	accessStore := s.stores.Access.(AccessStore)

	var consent *model.PatientConsent
	var svcErr *serviceerror.ServiceError

	_, err := s.stores.Chain.Submit(func(height int64) ([]func(tx dbmodel.TxInterface) error, error) {
		existing, err := accessStore.GetConsent(ctx, patientID, providerID)
		if err != nil {
			svcErr = serviceerror.New(serviceerror.StorageError)
			return nil, errRejected
		}
		if existing != nil {
			existing.Status = model.ConsentStatusRevoked
			existing.RevokedAtHeight = &height
			existing.RevokerID = &patientID
			consent = existing
		} else {
			svcErr = serviceerror.New(serviceerror.ConsentNotFoundError)
			return nil, errRejected
		}

		return []func(tx dbmodel.TxInterface) error{
			func(tx dbmodel.TxInterface) error {
				return accessStore.RevokeConsent(tx, patientID, providerID, height, patientID)
			},
		}, nil
	})
	if err != nil {
		if svcErr != nil {
			return nil, svcErr
		}
		return nil, serviceerror.New(serviceerror.StorageError)
	}

	return consent, nil
}

// HasPatientConsent evaluates a consent record against the current height.
// The three failure reasons are distinct so callers can branch on which one
// occurred.
func (s *accessService) HasPatientConsent(ctx context.Context, patientID, providerID string) (*model.PatientConsent, *serviceerror.ServiceError) {
	accessStore := s.stores.Access.(AccessStore)
	height := s.stores.Chain.CurrentHeight()

	consent, err := accessStore.GetConsent(ctx, patientID, providerID)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}
	if consent == nil {
		return nil, serviceerror.New(serviceerror.ConsentNotFoundError)
	}
	if consent.Status != model.ConsentStatusApproved {
		return nil, serviceerror.New(serviceerror.ConsentNotApprovedError)
	}
	if consent.ConsentExpiryHeight != nil && *consent.ConsentExpiryHeight <= height {
		return nil, serviceerror.New(serviceerror.GrantExpiredError)
	}
	return consent, nil
}

// GetPatientConsent returns the raw consent record without evaluating it.
func (s *accessService) GetPatientConsent(ctx context.Context, patientID, providerID string) (*model.PatientConsent, *serviceerror.ServiceError) {
	accessStore := s.stores.Access.(AccessStore)

	consent, err := accessStore.GetConsent(ctx, patientID, providerID)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}
	if consent == nil {
		return nil, serviceerror.New(serviceerror.ConsentNotFoundError)
	}
	return consent, nil
}

// GrantAccess issues a time/usage-bounded grant for the pair, overwriting
// any prior grant. The grant write, the registry's activity record, and the
// audit event commit in one ledger transaction; if any part fails, no state
// changes.
func (s *accessService) GrantAccess(ctx context.Context, granterID string, req model.GrantAccessRequest) (*model.AccessGrant, *serviceerror.ServiceError) {
	if req.PatientID == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidPatientIDError, "patientId is required")
	}
	if len(req.RecordScope) == 0 {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidScopeError, "recordScope must not be empty")
	}
	if err := validator.ValidateGrantRequest(req); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidScopeError, err.Error())
	}
	if req.MaxAccesses != nil && *req.MaxAccesses <= 0 {
		return nil, serviceerror.New(serviceerror.InvalidMaxAccessesError)
	}

	accessStore := s.stores.Access.(AccessStore)

	var grant *model.AccessGrant
	var svcErr *serviceerror.ServiceError

	_, err := s.stores.Chain.Submit(func(height int64) ([]func(tx dbmodel.TxInterface) error, error) {
		if _, verifyErr := s.registry.VerifyProviderAt(ctx, req.ProviderID, height); verifyErr != nil {
			svcErr = serviceerror.CustomServiceError(serviceerror.ProviderNotVerifiedError, verifyErr.ErrorDescription)
			return nil, errRejected
		}
		if req.ExpiryHeight <= height {
			svcErr = serviceerror.CustomServiceError(serviceerror.InvalidGrantError,
				"expiryHeight must be strictly in the future")
			return nil, errRejected
		}
		if req.ExpiryHeight-height > config.Get().Chain.GetMaxGrantDurationBlocks() {
			svcErr = serviceerror.CustomServiceError(serviceerror.InvalidGrantError,
				"expiryHeight exceeds the maximum grant duration")
			return nil, errRejected
		}

		grant = &model.AccessGrant{
			PatientID:       req.PatientID,
			ProviderID:      req.ProviderID,
			ExpiryHeight:    req.ExpiryHeight,
			RecordScope:     req.RecordScope,
			GrantedAtHeight: height,
			GranterID:       granterID,
			Status:          model.GrantStatusActive,
			MaxAccesses:     req.MaxAccesses,
			AccessCount:     0,
		}

		queries := []func(tx dbmodel.TxInterface) error{
			func(tx dbmodel.TxInterface) error {
				return accessStore.UpsertGrant(tx, grant)
			},
		}

		activityQueries, activityErr := s.registry.RecordProviderActivity(ctx, constants.GrantLedgerIdentity, req.ProviderID, height)
		if activityErr != nil {
			svcErr = activityErr
			return nil, errRejected
		}
		queries = append(queries, activityQueries...)

		auditQueries, auditErr := s.audit.LogEvent(ctx, constants.GrantLedgerIdentity, auditmodel.LogEventRequest{
			EventID:     utils.GenerateUUID(),
			PatientID:   req.PatientID,
			ProviderID:  req.ProviderID,
			EventType:   model.EventTypeAccessGranted,
			RecordScope: req.RecordScope,
		}, height)
		if auditErr != nil {
			svcErr = auditErr
			return nil, errRejected
		}
		queries = append(queries, auditQueries...)

		return queries, nil
	})
	if err != nil {
		if svcErr != nil {
			return nil, svcErr
		}
		return nil, serviceerror.New(serviceerror.StorageError)
	}

	return grant, nil
}

// HasAccess evaluates a grant against the current height and its usage
// budget. Time expiry, usage exhaustion, and absence are three distinct
// failure reasons.
func (s *accessService) HasAccess(ctx context.Context, providerID, patientID string) (*model.AccessGrant, *serviceerror.ServiceError) {
	accessStore := s.stores.Access.(AccessStore)

	grant, err := accessStore.GetGrant(ctx, patientID, providerID)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}
	return evaluateGrant(grant, s.stores.Chain.CurrentHeight())
}

// UseAccess consumes one unit of a grant's usage budget. The precondition
// check, the counter update, the registry's activity record, and the audit
// event commit in one ledger transaction; any failure aborts without
// mutating counters.
func (s *accessService) UseAccess(ctx context.Context, providerID, patientID string) (*model.AccessGrant, *serviceerror.ServiceError) {
	accessStore := s.stores.Access.(AccessStore)

	var grant *model.AccessGrant
	var svcErr *serviceerror.ServiceError

	_, err := s.stores.Chain.Submit(func(height int64) ([]func(tx dbmodel.TxInterface) error, error) {
		stored, err := accessStore.GetGrant(ctx, patientID, providerID)
		if err != nil {
			svcErr = serviceerror.New(serviceerror.StorageError)
			return nil, errRejected
		}
		if grant, svcErr = evaluateGrant(stored, height); svcErr != nil {
			return nil, errRejected
		}

		grant.AccessCount++
		grant.LastAccessedHeight = &height

		queries := []func(tx dbmodel.TxInterface) error{
			func(tx dbmodel.TxInterface) error {
				return accessStore.UpdateGrantUsage(tx, patientID, providerID, grant.AccessCount, height)
			},
		}

		activityQueries, activityErr := s.registry.RecordProviderActivity(ctx, constants.GrantLedgerIdentity, providerID, height)
		if activityErr != nil {
			svcErr = activityErr
			return nil, errRejected
		}
		queries = append(queries, activityQueries...)

		auditQueries, auditErr := s.audit.LogEvent(ctx, constants.GrantLedgerIdentity, auditmodel.LogEventRequest{
			EventID:     utils.GenerateUUID(),
			PatientID:   patientID,
			ProviderID:  providerID,
			EventType:   model.EventTypeAccessUsed,
			RecordScope: grant.RecordScope,
		}, height)
		if auditErr != nil {
			svcErr = auditErr
			return nil, errRejected
		}
		queries = append(queries, auditQueries...)

		return queries, nil
	})
	if err != nil {
		if svcErr != nil {
			return nil, svcErr
		}
		return nil, serviceerror.New(serviceerror.StorageError)
	}

	return grant, nil
}

// RevokeAccess sets the grant to revoked. No caller-identity restriction is
// enforced beyond transaction signing.
func (s *accessService) RevokeAccess(ctx context.Context, providerID, patientID string) (*model.AccessGrant, *serviceerror.ServiceError) {
	accessStore := s.stores.Access.(AccessStore)

	var grant *model.AccessGrant
	var svcErr *serviceerror.ServiceError

	_, err := s.stores.Chain.Submit(func(height int64) ([]func(tx dbmodel.TxInterface) error, error) {
		stored, err := accessStore.GetGrant(ctx, patientID, providerID)
		if err != nil {
			svcErr = serviceerror.New(serviceerror.StorageError)
			return nil, errRejected
		}
		if stored == nil {
			svcErr = serviceerror.New(serviceerror.GrantNotFoundError)
			return nil, errRejected
		}

		stored.Status = model.GrantStatusRevoked
		grant = stored

		return []func(tx dbmodel.TxInterface) error{
			func(tx dbmodel.TxInterface) error {
				return accessStore.UpdateGrantStatus(tx, patientID, providerID, model.GrantStatusRevoked)
			},
		}, nil
	})
	if err != nil {
		if svcErr != nil {
			return nil, svcErr
		}
		return nil, serviceerror.New(serviceerror.StorageError)
	}

	return grant, nil
}

// GetAccessGrant returns the raw grant record without evaluating it.
func (s *accessService) GetAccessGrant(ctx context.Context, providerID, patientID string) (*model.AccessGrant, *serviceerror.ServiceError) {
	accessStore := s.stores.Access.(AccessStore)

	grant, err := accessStore.GetGrant(ctx, patientID, providerID)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}
	if grant == nil {
		return nil, serviceerror.New(serviceerror.GrantNotFoundError)
	}
	return grant, nil
}

// HasRecordScopeAccess is HasAccess plus a scope membership test. A scope
// miss on an otherwise valid grant reports InvalidGrant, not a distinct
// code.
func (s *accessService) HasRecordScopeAccess(ctx context.Context, providerID, patientID, recordType string) (*model.AccessGrant, *serviceerror.ServiceError) {
	grant, svcErr := s.HasAccess(ctx, providerID, patientID)
	if svcErr != nil {
		return nil, svcErr
	}

	for _, tag := range grant.RecordScope {
		if tag == recordType {
			return grant, nil
		}
	}
	return nil, serviceerror.CustomServiceError(serviceerror.InvalidGrantError,
		"record type "+recordType+" is outside the grant's scope")
}

// evaluateGrant recomputes a grant's validity at the given height. The
// stored status field is never updated on expiry or exhaustion; both are
// check-time conditions.
func evaluateGrant(grant *model.AccessGrant, height int64) (*model.AccessGrant, *serviceerror.ServiceError) {
	if grant == nil {
		return nil, serviceerror.New(serviceerror.GrantNotFoundError)
	}
	if grant.Status != model.GrantStatusActive {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidGrantError,
			"the grant is not in the active status")
	}
	if grant.ExpiryHeight <= height {
		return nil, serviceerror.New(serviceerror.GrantExpiredError)
	}
	if grant.MaxAccesses != nil && grant.AccessCount >= *grant.MaxAccesses {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidGrantError,
			"the grant's usage budget is exhausted")
	}
	return grant, nil
}
