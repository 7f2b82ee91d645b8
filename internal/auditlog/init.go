package auditlog

import (
	"net/http"

	"github.com/medledger/access-control-api/internal/system/constants"
	"github.com/medledger/access-control-api/internal/system/database/provider"
	"github.com/medledger/access-control-api/internal/system/middleware"
	"github.com/medledger/access-control-api/internal/system/stores"
)

// NewStore creates and returns a new audit log store (exported for the store
// registry)
func NewStore(dbClient provider.DBClientInterface) interface{} {
	return newAuditStore(dbClient)
}

// Initialize sets up the audit log module and registers routes. The HTTP
// surface is read-only; the gated LogEvent entry point has no route and is
// reachable only through the grant ledger.
func Initialize(mux *http.ServeMux, registry *stores.StoreRegistry) AuditService {
	service := newAuditService(registry)
	handler := newAuditHandler(service)

	registerRoutes(mux, handler)

	return service
}

// registerRoutes registers all audit log routes
func registerRoutes(mux *http.ServeMux, handler *auditHandler) {
	corsOpts := middleware.CORSOptions{
		AllowOrigin:      "*",
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Signer-ID", "X-Correlation-ID"},
		AllowCredentials: true,
	}

	// GET /api/v1/patients/{patientId}/audit - Running event count
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/patients/{patientId}/audit", handler.getPatientAuditTrail, corsOpts))

	// GET /api/v1/patients/{patientId}/events - Page of events in sequence order
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/patients/{patientId}/events", handler.listPatientEvents, corsOpts))

	// GET /api/v1/patients/{patientId}/events/{seq} - Sequence number to event id
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/patients/{patientId}/events/{seq}", handler.getPatientEventID, corsOpts))

	// GET /api/v1/events/{eventId} - Single event lookup
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/events/{eventId}", handler.getEventDetails, corsOpts))
}
