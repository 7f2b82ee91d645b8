// Package identity binds human-meaningful names to signer identities. The
// core never consumes it; registration flows on the HTTP surface resolve a
// name to an opaque identity before calling into the services.
package identity

import (
	"github.com/medledger/access-control-api/internal/system/config"
)

// Resolution is the result of a successful name lookup.
type Resolution struct {
	OwnerID            string `json:"ownerId"`
	RegistrationHeight int64  `json:"registrationHeight"`
}

// Resolver maps a name to the identity that owns it.
type Resolver interface {
	Resolve(name string) (*Resolution, bool)
}

// staticResolver serves name bindings from deployment configuration.
type staticResolver struct {
	bindings map[string]Resolution
}

// NewStaticResolver builds a resolver from the configured name bindings.
func NewStaticResolver(cfg *config.IdentityConfig) Resolver {
	bindings := make(map[string]Resolution, len(cfg.Names))
	for _, binding := range cfg.Names {
		bindings[binding.Name] = Resolution{
			OwnerID:            binding.OwnerID,
			RegistrationHeight: binding.RegistrationHeight,
		}
	}
	return &staticResolver{bindings: bindings}
}

func (r *staticResolver) Resolve(name string) (*Resolution, bool) {
	resolution, ok := r.bindings[name]
	if !ok {
		return nil, false
	}
	return &resolution, true
}
