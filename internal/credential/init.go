package credential

import (
	"net/http"

	"github.com/medledger/access-control-api/internal/system/constants"
	"github.com/medledger/access-control-api/internal/system/database/provider"
	"github.com/medledger/access-control-api/internal/system/middleware"
	"github.com/medledger/access-control-api/internal/system/stores"
)

// NewStore creates and returns a new credential registry store (exported for
// the store registry)
func NewStore(dbClient provider.DBClientInterface) interface{} {
	return newCredentialStore(dbClient)
}

// Initialize sets up the credential registry module and registers routes
func Initialize(mux *http.ServeMux, registry *stores.StoreRegistry) CredentialService {
	service := newCredentialService(registry)
	handler := newCredentialHandler(service)

	registerRoutes(mux, handler)

	return service
}

// registerRoutes registers all credential registry routes. The gated
// RecordProviderActivity entry point deliberately has no route; it is
// reachable only through the grant ledger.
func registerRoutes(mux *http.ServeMux, handler *credentialHandler) {
	corsOpts := middleware.CORSOptions{
		AllowOrigin:      "*",
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Signer-ID", "X-Correlation-ID"},
		AllowCredentials: true,
	}

	// POST /api/v1/providers - Register a provider
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/providers", handler.registerProvider, corsOpts))

	// GET /api/v1/providers/{providerId} - Get credential record
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/providers/{providerId}", handler.getProvider, corsOpts))

	// GET /api/v1/providers/{providerId}/status - Get operational status
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/providers/{providerId}/status", handler.getProviderStatus, corsOpts))

	// GET /api/v1/providers/{providerId}/verify - Verify provider standing
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/providers/{providerId}/verify", handler.verifyProvider, corsOpts))

	// PUT /api/v1/providers/{providerId} - Update credentials
	mux.HandleFunc(middleware.WithCORS("PUT "+constants.APIBasePath+"/providers/{providerId}", handler.updateProviderCredentials, corsOpts))

	// POST /api/v1/providers/{providerId}/suspend - Suspend provider
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/providers/{providerId}/suspend", handler.suspendProvider, corsOpts))

	// POST /api/v1/providers/{providerId}/reactivate - Reactivate provider
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/providers/{providerId}/reactivate", handler.reactivateProvider, corsOpts))

	// GET /api/v1/providers/{providerId}/credential-types/{type} - Membership test
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/providers/{providerId}/credential-types/{type}", handler.hasCredentialType, corsOpts))

	// GET /api/v1/providers/{providerId}/verifications - Verification history
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/providers/{providerId}/verifications", handler.getVerificationHistory, corsOpts))

	// POST /api/v1/credential-types - Upsert a recognized credential type
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/credential-types", handler.addCredentialType, corsOpts))

	// GET /api/v1/credential-types - List recognized credential types
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/credential-types", handler.listCredentialTypes, corsOpts))
}
