package validator

import (
	"fmt"

	"github.com/medledger/access-control-api/internal/access/model"
	"github.com/medledger/access-control-api/internal/system/utils"
)

// ValidateApproveRequest validates the shape of a consent approval.
func ValidateApproveRequest(req model.ApproveAccessRequest) error {
	if req.ProviderID == "" {
		return fmt.Errorf("providerId is required")
	}
	return utils.ValidateScopeTags(req.RecordScope)
}

// ValidateGrantRequest validates the shape of a grant request. Height
// windows and provider standing are checked by the service against ledger
// state.
func ValidateGrantRequest(req model.GrantAccessRequest) error {
	if req.ProviderID == "" {
		return fmt.Errorf("providerId is required")
	}
	return utils.ValidateScopeTags(req.RecordScope)
}
