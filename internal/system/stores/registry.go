package stores

import (
	"github.com/medledger/access-control-api/internal/system/chain"
	"github.com/medledger/access-control-api/internal/system/database/provider"
)

// StoreRegistry holds references to all stores in the application plus the
// ledger sequencer every mutating operation commits through.
// Each store is held as interface{} to avoid circular dependencies;
// services type-assert to their needed store interfaces.
type StoreRegistry struct {
	dbClient provider.DBClientInterface

	// Chain is the single-writer sequencer shared by all components.
	Chain chain.Sequencer

	// Store instances - services type-assert these to their specific interfaces.
	Credential interface{} // credential.CredentialStore
	Audit      interface{} // auditlog.AuditStore
	Access     interface{} // access.AccessStore
}

// NewStoreRegistry creates a new store registry with all initialized stores.
func NewStoreRegistry(
	dbClient provider.DBClientInterface,
	sequencer chain.Sequencer,
	credentialStore interface{},
	auditStore interface{},
	accessStore interface{},
) *StoreRegistry {
	return &StoreRegistry{
		dbClient:   dbClient,
		Chain:      sequencer,
		Credential: credentialStore,
		Audit:      auditStore,
		Access:     accessStore,
	}
}
