package model

// Statuses stored on a PatientConsent record.
const (
	ConsentStatusApproved = "approved"
	ConsentStatusRevoked  = "revoked"
)

// Statuses stored on an AccessGrant record. A grant can be time-expired or
// usage-exhausted while its stored status still reads active; validity is
// recomputed from heights and counters at every read.
const (
	GrantStatusActive  = "active"
	GrantStatusRevoked = "revoked"
)

// Audit event types the grant ledger emits.
const (
	EventTypeAccessGranted = "access_granted"
	EventTypeAccessUsed    = "access_used"
)

// PatientConsent represents the PATIENT_CONSENT table, keyed by the
// (patient, provider) pair. Created once per pair; re-creation is rejected
// in any status.
type PatientConsent struct {
	PatientID            string   `db:"PATIENT_ID" json:"patientId"`
	ProviderID           string   `db:"PROVIDER_ID" json:"providerId"`
	Status               string   `db:"STATUS" json:"status"`
	RecordScope          []string `db:"-" json:"recordScope"`
	ConsentGivenAtHeight int64    `db:"CONSENT_GIVEN_AT_HEIGHT" json:"consentGivenAtHeight"`
	ConsentExpiryHeight  *int64   `db:"CONSENT_EXPIRY_HEIGHT" json:"consentExpiryHeight,omitempty"`
	RevokedAtHeight      *int64   `db:"REVOKED_AT_HEIGHT" json:"revokedAtHeight,omitempty"`
	RevokerID            *string  `db:"REVOKER_ID" json:"revokerId,omitempty"`
}

// AccessGrant represents the ACCESS_GRANT table, keyed by the
// (patient, provider) pair. A new grant for the same pair overwrites any
// prior grant; no history is retained.
type AccessGrant struct {
	PatientID          string   `db:"PATIENT_ID" json:"patientId"`
	ProviderID         string   `db:"PROVIDER_ID" json:"providerId"`
	ExpiryHeight       int64    `db:"EXPIRY_HEIGHT" json:"expiryHeight"`
	RecordScope        []string `db:"-" json:"recordScope"`
	GrantedAtHeight    int64    `db:"GRANTED_AT_HEIGHT" json:"grantedAtHeight"`
	GranterID          string   `db:"GRANTER_ID" json:"granterId"`
	Status             string   `db:"STATUS" json:"status"`
	MaxAccesses        *int64   `db:"MAX_ACCESSES" json:"maxAccesses,omitempty"`
	AccessCount        int64    `db:"ACCESS_COUNT" json:"accessCount"`
	LastAccessedHeight *int64   `db:"LAST_ACCESSED_HEIGHT" json:"lastAccessedHeight,omitempty"`
}

// ApproveAccessRequest is the payload for a patient approving a provider.
type ApproveAccessRequest struct {
	ProviderID      string   `json:"providerId"`
	RecordScope     []string `json:"recordScope"`
	ExpiresAtHeight *int64   `json:"expiresAtHeight,omitempty"`
}

// GrantAccessRequest is the payload for issuing a time/usage-bounded grant.
type GrantAccessRequest struct {
	ProviderID   string   `json:"providerId"`
	PatientID    string   `json:"patientId"`
	ExpiryHeight int64    `json:"expiryHeight"`
	RecordScope  []string `json:"recordScope"`
	MaxAccesses  *int64   `json:"maxAccesses,omitempty"`
}
