package validator

import (
	"fmt"

	"github.com/medledger/access-control-api/internal/credential/model"
	"github.com/medledger/access-control-api/internal/system/constants"
)

// ValidateRegisterRequest validates the shape of a provider registration
// request. Height windows and credential-type membership are checked by the
// service against ledger state.
func ValidateRegisterRequest(req model.RegisterProviderRequest) error {
	if req.ProviderID == "" {
		return fmt.Errorf("providerId is required")
	}
	if req.LicenseNumber == "" {
		return fmt.Errorf("licenseNumber is required")
	}
	if len(req.IssuingAuthority) > constants.MaxIssuingAuthorityChars {
		return fmt.Errorf("issuingAuthority too long (max %d chars)", constants.MaxIssuingAuthorityChars)
	}
	return ValidateCredentialTypeTags(req.CredentialTypes)
}

// ValidateCredentialTypeTags validates a credential type tag set against the
// ledger-wide limits.
func ValidateCredentialTypeTags(tags []string) error {
	if len(tags) == 0 {
		return fmt.Errorf("at least one credential type is required")
	}
	if len(tags) > constants.MaxCredentialTypes {
		return fmt.Errorf("too many credential types (max %d)", constants.MaxCredentialTypes)
	}
	for _, tag := range tags {
		if tag == "" {
			return fmt.Errorf("credential type tags must not be empty")
		}
		if len(tag) > constants.MaxCredentialTypeLength {
			return fmt.Errorf("credential type %q too long (max %d chars)", tag, constants.MaxCredentialTypeLength)
		}
	}
	return nil
}

// ValidateSuspensionReason validates the stored suspension reason.
func ValidateSuspensionReason(reason string) error {
	if reason == "" {
		return fmt.Errorf("suspension reason is required")
	}
	if len(reason) > constants.MaxSuspensionReasonChars {
		return fmt.Errorf("suspension reason too long (max %d chars)", constants.MaxSuspensionReasonChars)
	}
	return nil
}

// ValidateCredentialTypeRequest validates a credential type registration.
func ValidateCredentialTypeRequest(req model.CredentialTypeRequest) error {
	if req.Type == "" {
		return fmt.Errorf("type is required")
	}
	if len(req.Type) > constants.MaxCredentialTypeLength {
		return fmt.Errorf("type too long (max %d chars)", constants.MaxCredentialTypeLength)
	}
	return nil
}
