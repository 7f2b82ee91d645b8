package utils

import (
	"fmt"
	"net/http"

	"github.com/medledger/access-control-api/internal/system/constants"
)

// ValidateSignerIsPresent validates the signer identity header on a request.
func ValidateSignerIsPresent(r *http.Request) error {
	return ValidateSignerID(r.Header.Get(constants.HeaderSignerID))
}

// ValidateSignerID validates a signer identity.
func ValidateSignerID(signerID string) error {
	if signerID == "" {
		return fmt.Errorf("signer identity is required")
	}
	if len(signerID) > 255 {
		return fmt.Errorf("signer identity too long (max 255 chars)")
	}
	return nil
}

// ValidateScopeTags validates a record scope tag set against the ledger-wide
// limits. An empty scope is rejected by the services, not here.
func ValidateScopeTags(scope []string) error {
	if len(scope) > constants.MaxScopeTags {
		return fmt.Errorf("record scope has too many tags (max %d)", constants.MaxScopeTags)
	}
	for _, tag := range scope {
		if tag == "" {
			return fmt.Errorf("record scope tags must not be empty")
		}
		if len(tag) > constants.MaxScopeTagLength {
			return fmt.Errorf("record scope tag %q too long (max %d chars)", tag, constants.MaxScopeTagLength)
		}
	}
	return nil
}

// ValidatePagination validates limit and offset.
func ValidatePagination(limit, offset int) error {
	if limit < 1 || limit > 100 {
		return fmt.Errorf("limit must be between 1 and 100")
	}
	if offset < 0 {
		return fmt.Errorf("offset must be non-negative")
	}
	return nil
}
