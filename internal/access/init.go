package access

import (
	"net/http"

	"github.com/medledger/access-control-api/internal/system/constants"
	"github.com/medledger/access-control-api/internal/system/database/provider"
	"github.com/medledger/access-control-api/internal/system/middleware"
	"github.com/medledger/access-control-api/internal/system/stores"
)

// NewStore creates and returns a new consent and grant ledger store
// (exported for the store registry)
func NewStore(dbClient provider.DBClientInterface) interface{} {
	return newAccessStore(dbClient)
}

// Initialize sets up the consent and grant ledger module and registers
// routes. The registry and audit gateways are the two gated entry points
// this component is allowed to compose into its transactions.
func Initialize(mux *http.ServeMux, storeRegistry *stores.StoreRegistry, registry RegistryGateway, audit AuditGateway) AccessService {
	service := newAccessService(storeRegistry, registry, audit)
	handler := newAccessHandler(service)

	registerRoutes(mux, handler)

	return service
}

// registerRoutes registers all consent and grant ledger routes
func registerRoutes(mux *http.ServeMux, handler *accessHandler) {
	corsOpts := middleware.CORSOptions{
		AllowOrigin:      "*",
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Signer-ID", "X-Correlation-ID"},
		AllowCredentials: true,
	}

	// POST /api/v1/consents - Patient approves a provider
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/consents", handler.approveProviderAccess, corsOpts))

	// POST /api/v1/consents/{providerId}/revoke - Patient revokes a consent
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/consents/{providerId}/revoke", handler.revokeProviderConsent, corsOpts))

	// GET /api/v1/consents/{patientId}/{providerId} - Raw consent record
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/consents/{patientId}/{providerId}", handler.getPatientConsent, corsOpts))

	// GET /api/v1/consents/{patientId}/{providerId}/check - Evaluate consent
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/consents/{patientId}/{providerId}/check", handler.hasPatientConsent, corsOpts))

	// POST /api/v1/grants - Issue a grant
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/grants", handler.grantAccess, corsOpts))

	// GET /api/v1/grants/{patientId}/{providerId} - Raw grant record
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/grants/{patientId}/{providerId}", handler.getAccessGrant, corsOpts))

	// GET /api/v1/grants/{patientId}/{providerId}/check - Evaluate grant
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/grants/{patientId}/{providerId}/check", handler.hasAccess, corsOpts))

	// GET /api/v1/grants/{patientId}/{providerId}/scope/{recordType} - Scope membership
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/grants/{patientId}/{providerId}/scope/{recordType}", handler.hasRecordScopeAccess, corsOpts))

	// POST /api/v1/grants/{patientId}/{providerId}/use - Consume one access
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/grants/{patientId}/{providerId}/use", handler.useAccess, corsOpts))

	// POST /api/v1/grants/{patientId}/{providerId}/revoke - Revoke a grant
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/grants/{patientId}/{providerId}/revoke", handler.revokeAccess, corsOpts))
}
