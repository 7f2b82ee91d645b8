package codes

// Error codes for the Health Access Ledger core. Codes are small
// non-negative integers partitioned by component; each maps 1:1 to one named
// failure condition so callers can branch on the code without parsing text.
const (
	// Consent & Grant Ledger (100-109)
	GrantNotFound       = 100
	InvalidGrant        = 101
	GrantExpired        = 102
	LedgerNotAuthorized = 103 // reserved for ledger-side caller gating
	ConsentNotFound     = 104
	ConsentNotApproved  = 105
	InvalidScope        = 106
	InvalidPatientID    = 107
	InvalidMaxAccesses  = 108
	ProviderNotVerified = 109

	// Audit Log (200-202)
	AuditNotAuthorized = 200
	InvalidEvent       = 201
	EventNotFound      = 202

	// Credential Registry (300-307)
	RegistryNotAuthorized = 300
	ProviderNotFound      = 301
	ProviderAlreadyExists = 302
	InvalidExpiry         = 303
	InvalidCredentialType = 304
	InvalidCredentials    = 305
	CredentialsExpired    = 306
	ProviderSuspended     = 307

	// Infrastructure (500+), outside the component ranges
	InternalError = 500
	StorageError  = 501
)
