package identity

import (
	"net/http"

	"github.com/medledger/access-control-api/internal/system/error/apierror"
	"github.com/medledger/access-control-api/internal/system/utils"
)

type identityHandler struct {
	resolver Resolver
}

func newIdentityHandler(resolver Resolver) *identityHandler {
	return &identityHandler{resolver: resolver}
}

// resolveName handles GET /identities/{name}.
func (h *identityHandler) resolveName(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	resolution, ok := h.resolver.Resolve(name)
	if !ok {
		utils.JSONResponse(w, http.StatusNotFound, apierror.ErrorResponse{
			Code:        http.StatusNotFound,
			Error:       "Name not found",
			Description: "no identity is bound to the name " + name,
		})
		return
	}
	utils.JSONResponse(w, http.StatusOK, resolution)
}
