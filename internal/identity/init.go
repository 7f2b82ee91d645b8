package identity

import (
	"net/http"

	"github.com/medledger/access-control-api/internal/system/config"
	"github.com/medledger/access-control-api/internal/system/constants"
	"github.com/medledger/access-control-api/internal/system/middleware"
)

// Initialize builds the config-backed resolver and registers the name
// lookup route.
func Initialize(mux *http.ServeMux) Resolver {
	resolver := NewStaticResolver(&config.Get().Identity)
	handler := newIdentityHandler(resolver)

	corsOpts := middleware.CORSOptions{
		AllowOrigin:      "*",
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Correlation-ID"},
		AllowCredentials: true,
	}

	// GET /api/v1/identities/{name} - Resolve a registered name to its owner
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/identities/{name}", handler.resolveName, corsOpts))

	return resolver
}
