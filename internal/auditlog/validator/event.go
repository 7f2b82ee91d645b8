package validator

import (
	"fmt"

	"github.com/medledger/access-control-api/internal/auditlog/model"
	"github.com/medledger/access-control-api/internal/system/constants"
	"github.com/medledger/access-control-api/internal/system/utils"
)

// ValidateLogEventRequest validates the shape of an audit event. Duplicate
// event ids are checked by the service against the event store.
func ValidateLogEventRequest(req model.LogEventRequest) error {
	if req.EventID == "" {
		return fmt.Errorf("eventId is required")
	}
	if len(req.EventID) > constants.MaxEventIDLength {
		return fmt.Errorf("eventId too long (max %d chars)", constants.MaxEventIDLength)
	}
	if req.PatientID == "" {
		return fmt.Errorf("patientId is required")
	}
	if req.EventType == "" {
		return fmt.Errorf("eventType is required")
	}
	if len(req.EventType) > constants.MaxEventTypeLength {
		return fmt.Errorf("eventType too long (max %d chars)", constants.MaxEventTypeLength)
	}
	if req.Details != nil && len(*req.Details) > constants.MaxEventDetailChars {
		return fmt.Errorf("details too long (max %d chars)", constants.MaxEventDetailChars)
	}
	return utils.ValidateScopeTags(req.RecordScope)
}
