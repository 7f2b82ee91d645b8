package model

// Verification statuses stored on a ProviderCredential record. Expiry is
// never written back into the status; readers recompute it from heights.
const (
	VerificationStatusVerified    = "verified"
	VerificationStatusExpired     = "expired"
	VerificationStatusSuspended   = "suspended"
	VerificationStatusRevoked     = "revoked"
	VerificationStatusPending     = "pending"
	VerificationStatusUnderReview = "under_review"
)

// Operational statuses stored on a ProviderStatus record.
const (
	ProviderStatusActive    = "active"
	ProviderStatusSuspended = "suspended"
	ProviderStatusRevoked   = "revoked"
	ProviderStatusInactive  = "inactive"
)

// ProviderCredential represents the PROVIDER_CREDENTIAL table. Created once
// per provider identity and never deleted.
type ProviderCredential struct {
	ProviderID         string   `db:"PROVIDER_ID" json:"providerId"`
	LicenseNumber      string   `db:"LICENSE_NUMBER" json:"licenseNumber"`
	CredentialTypes    []string `db:"-" json:"credentialTypes"`
	IssuedAtHeight     int64    `db:"ISSUED_AT_HEIGHT" json:"issuedAtHeight"`
	ExpiresAtHeight    int64    `db:"EXPIRES_AT_HEIGHT" json:"expiresAtHeight"`
	IssuingAuthority   string   `db:"ISSUING_AUTHORITY" json:"issuingAuthority"`
	VerificationStatus string   `db:"VERIFICATION_STATUS" json:"verificationStatus"`
	LastVerifiedHeight int64    `db:"LAST_VERIFIED_HEIGHT" json:"lastVerifiedHeight"`
	SuspensionReason   *string  `db:"SUSPENSION_REASON" json:"suspensionReason,omitempty"`
}

// ProviderStatus represents the PROVIDER_STATUS table. Created atomically
// with the credential record at registration.
type ProviderStatus struct {
	ProviderID         string `db:"PROVIDER_ID" json:"providerId"`
	RegistrationHeight int64  `db:"REGISTRATION_HEIGHT" json:"registrationHeight"`
	LastActivityHeight int64  `db:"LAST_ACTIVITY_HEIGHT" json:"lastActivityHeight"`
	AccessCount        int64  `db:"ACCESS_COUNT" json:"accessCount"`
	Status             string `db:"STATUS" json:"status"`
	LastUpdatedBy      string `db:"LAST_UPDATED_BY" json:"lastUpdatedBy"`
}

// CredentialType represents the VALID_CREDENTIAL_TYPE table.
type CredentialType struct {
	Type              string `db:"CREDENTIAL_TYPE" json:"type"`
	Description       string `db:"DESCRIPTION" json:"description"`
	RequiredForAccess bool   `db:"REQUIRED_FOR_ACCESS" json:"requiredForAccess"`
	CreatedAtHeight   int64  `db:"CREATED_AT_HEIGHT" json:"createdAtHeight"`
}

// CredentialVerification represents the CREDENTIAL_VERIFICATION history
// table. Append-only; one entry is written at registration time.
type CredentialVerification struct {
	ProviderID         string  `db:"PROVIDER_ID" json:"providerId"`
	VerificationID     string  `db:"VERIFICATION_ID" json:"verificationId"`
	VerifierID         string  `db:"VERIFIER_ID" json:"verifierId"`
	VerificationHeight int64   `db:"VERIFICATION_HEIGHT" json:"verificationHeight"`
	CredentialHash     string  `db:"CREDENTIAL_HASH" json:"credentialHash"`
	Result             string  `db:"RESULT" json:"result"`
	Notes              *string `db:"NOTES" json:"notes,omitempty"`
}

// RegisterProviderRequest is the payload for registering a provider.
type RegisterProviderRequest struct {
	ProviderID       string   `json:"providerId"`
	LicenseNumber    string   `json:"licenseNumber"`
	CredentialTypes  []string `json:"credentialTypes"`
	ExpiresAtHeight  int64    `json:"expiresAtHeight"`
	IssuingAuthority string   `json:"issuingAuthority"`
	CredentialHash   string   `json:"credentialHash"`
}

// UpdateCredentialsRequest is the payload for refreshing a provider's
// credential set and expiry.
type UpdateCredentialsRequest struct {
	ExpiresAtHeight int64    `json:"expiresAtHeight"`
	CredentialTypes []string `json:"credentialTypes"`
}

// SuspendProviderRequest is the payload for suspending a provider.
type SuspendProviderRequest struct {
	Reason string `json:"reason"`
}

// CredentialTypeRequest is the payload for registering or updating a
// recognized credential type.
type CredentialTypeRequest struct {
	Type              string `json:"type"`
	Description       string `json:"description"`
	RequiredForAccess bool   `json:"requiredForAccess"`
}

// ProviderResponse is the combined credential/status view returned by the
// registry's read surface.
type ProviderResponse struct {
	Credential ProviderCredential `json:"credential"`
	Status     ProviderStatus     `json:"status"`
}

// VerificationHistoryResponse lists a provider's verification history.
type VerificationHistoryResponse struct {
	Data []CredentialVerification `json:"data"`
}

// CredentialTypeListResponse lists the recognized credential types.
type CredentialTypeListResponse struct {
	Data []CredentialType `json:"data"`
}
