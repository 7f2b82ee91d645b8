package auditlog

import (
	"context"

	"github.com/medledger/access-control-api/internal/auditlog/model"
	"github.com/medledger/access-control-api/internal/auditlog/validator"
	"github.com/medledger/access-control-api/internal/system/constants"
	dbmodel "github.com/medledger/access-control-api/internal/system/database/model"
	"github.com/medledger/access-control-api/internal/system/error/serviceerror"
	"github.com/medledger/access-control-api/internal/system/stores"
)

// AuditService defines the exported service interface of the audit log.
type AuditService interface {
	LogEvent(ctx context.Context, callerID string, req model.LogEventRequest, height int64) ([]func(tx dbmodel.TxInterface) error, *serviceerror.ServiceError)
	GetPatientAuditTrail(ctx context.Context, patientID string) (*model.AuditTrailResponse, *serviceerror.ServiceError)
	GetEventDetails(ctx context.Context, eventID string) (*model.AuditEvent, *serviceerror.ServiceError)
	GetPatientEventID(ctx context.Context, patientID string, sequenceNumber int64) (*model.PatientEventIDResponse, *serviceerror.ServiceError)
	ListPatientEvents(ctx context.Context, patientID string, limit, offset int) (*model.PatientEventsResponse, *serviceerror.ServiceError)
}

// auditService implements the AuditService interface
type auditService struct {
	stores *stores.StoreRegistry
}

// newAuditService creates a new audit log service
func newAuditService(registry *stores.StoreRegistry) AuditService {
	return &auditService{
		stores: registry,
	}
}

// LogEvent is the audit log's gated entry point. Only the grant ledger
// component may call it; it returns the event, index, and count queries for
// the caller to fold into its own ledger transaction, so a partial index
// update is never observable.
func (s *auditService) LogEvent(ctx context.Context, callerID string, req model.LogEventRequest, height int64) ([]func(tx dbmodel.TxInterface) error, *serviceerror.ServiceError) {
	if callerID != constants.GrantLedgerIdentity {
		return nil, serviceerror.New(serviceerror.AuditNotAuthorizedError)
	}
	if err := validator.ValidateLogEventRequest(req); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidEventError, err.Error())
	}

	auditStore := s.stores.Audit.(AuditStore)

	existing, err := auditStore.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}
	if existing != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidEventError,
			"event id "+req.EventID+" is already used")
	}

	count, err := auditStore.GetEventCount(ctx, req.PatientID)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}

	event := &model.AuditEvent{
		EventID:      req.EventID,
		PatientID:    req.PatientID,
		ProviderID:   req.ProviderID,
		EventType:    req.EventType,
		RecordHeight: height,
		RecordScope:  req.RecordScope,
		Details:      req.Details,
	}

	return []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return auditStore.CreateEvent(tx, event)
		},
		func(tx dbmodel.TxInterface) error {
			return auditStore.CreateIndexEntry(tx, req.PatientID, count, req.EventID)
		},
		func(tx dbmodel.TxInterface) error {
			return auditStore.UpsertEventCount(tx, req.PatientID, count+1)
		},
	}, nil
}

// GetPatientAuditTrail returns the running event count for a patient, zero
// if none was ever recorded.
func (s *auditService) GetPatientAuditTrail(ctx context.Context, patientID string) (*model.AuditTrailResponse, *serviceerror.ServiceError) {
	auditStore := s.stores.Audit.(AuditStore)

	count, err := auditStore.GetEventCount(ctx, patientID)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}
	return &model.AuditTrailResponse{PatientID: patientID, EventCount: count}, nil
}

// GetEventDetails looks up a single event by id.
func (s *auditService) GetEventDetails(ctx context.Context, eventID string) (*model.AuditEvent, *serviceerror.ServiceError) {
	auditStore := s.stores.Audit.(AuditStore)

	event, err := auditStore.GetEvent(ctx, eventID)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}
	if event == nil {
		return nil, serviceerror.New(serviceerror.EventNotFoundError)
	}
	return event, nil
}

// GetPatientEventID maps a position in a patient's history back to an event
// id, enabling callers to page history by iterating 0..count-1.
func (s *auditService) GetPatientEventID(ctx context.Context, patientID string, sequenceNumber int64) (*model.PatientEventIDResponse, *serviceerror.ServiceError) {
	auditStore := s.stores.Audit.(AuditStore)

	eventID, err := auditStore.GetEventIDBySequence(ctx, patientID, sequenceNumber)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}
	if eventID == "" {
		return nil, serviceerror.New(serviceerror.EventNotFoundError)
	}
	return &model.PatientEventIDResponse{
		PatientID:      patientID,
		SequenceNumber: sequenceNumber,
		EventID:        eventID,
	}, nil
}

// ListPatientEvents returns a page of a patient's events in sequence order.
func (s *auditService) ListPatientEvents(ctx context.Context, patientID string, limit, offset int) (*model.PatientEventsResponse, *serviceerror.ServiceError) {
	auditStore := s.stores.Audit.(AuditStore)

	count, err := auditStore.GetEventCount(ctx, patientID)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}
	events, err := auditStore.GetEventsByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, serviceerror.New(serviceerror.StorageError)
	}

	return &model.PatientEventsResponse{
		Data:       events,
		TotalCount: count,
		Limit:      limit,
		Offset:     offset,
	}, nil
}
