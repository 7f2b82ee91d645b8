package constants

const (
	AuthorizationHeaderName = "Authorization"
	ContentTypeHeaderName   = "Content-Type"
	CorrelationIDHeaderName = "X-Correlation-ID"
	SignerIDHeaderName      = "X-Signer-ID"
	ContentTypeJSON         = "application/json"

	APIBasePath = "/api/v1"

	// Aliases for convenience
	HeaderContentType = ContentTypeHeaderName
	HeaderSignerID    = SignerIDHeaderName
)

// GrantLedgerIdentity is the component identity of the Consent & Grant
// Ledger. The gated registry and audit entry points accept this caller and
// no other; it is never assigned to an external signer.
const GrantLedgerIdentity = "component:access-ledger"

// Field limits enforced at write time.
const (
	MaxCredentialTypes       = 10
	MaxCredentialTypeLength  = 30
	MaxIssuingAuthorityChars = 100
	MaxSuspensionReasonChars = 200
	MaxVerificationNoteChars = 500

	MaxScopeTags      = 10
	MaxScopeTagLength = 20

	MaxEventIDLength    = 36
	MaxEventTypeLength  = 20
	MaxEventDetailChars = 500
)

// Default chain windows, in blocks (~5s each). Overridable in deployment.yaml.
const (
	DefaultMinCredentialValidityBlocks = 17280   // ~1 day
	DefaultMaxGrantDurationBlocks      = 6307200 // ~1 year
)
