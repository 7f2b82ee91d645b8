package main

import (
	"net/http"

	"github.com/medledger/access-control-api/internal/access"
	"github.com/medledger/access-control-api/internal/auditlog"
	"github.com/medledger/access-control-api/internal/credential"
	"github.com/medledger/access-control-api/internal/identity"
	"github.com/medledger/access-control-api/internal/system/chain"
	"github.com/medledger/access-control-api/internal/system/database/provider"
	"github.com/medledger/access-control-api/internal/system/log"
	"github.com/medledger/access-control-api/internal/system/stores"
)

// Package-level service references for cleanup during shutdown
var (
	credentialService credential.CredentialService
	auditService      auditlog.AuditService
	accessService     access.AccessService
)

// registerServices wires the component modules in dependency order: the
// credential registry and audit log first, then the grant ledger, which
// composes their gated entry points into its own ledger transactions.
func registerServices(
	mux *http.ServeMux,
	dbClient provider.DBClientInterface,
	sequencer chain.Sequencer,
) {
	logger := log.GetLogger()

	registry := stores.NewStoreRegistry(
		dbClient,
		sequencer,
		credential.NewStore(dbClient),
		auditlog.NewStore(dbClient),
		access.NewStore(dbClient),
	)

	credentialService = credential.Initialize(mux, registry)
	logger.Info("Credential registry module initialized")

	auditService = auditlog.Initialize(mux, registry)
	logger.Info("Audit log module initialized")

	accessService = access.Initialize(mux, registry, credentialService, auditService)
	logger.Info("Consent and grant ledger module initialized")

	identity.Initialize(mux)
	logger.Info("Identity resolver initialized")

	// Register health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})
}

// unregisterServices performs cleanup of all services during shutdown.
func unregisterServices() {
	// The sequencer's height is persisted on every commit; nothing to flush.
}
