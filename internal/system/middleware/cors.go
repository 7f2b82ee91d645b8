package middleware

import (
	"net/http"
	"strings"
)

// CORSOptions configures the CORS headers attached to a route.
type CORSOptions struct {
	AllowOrigin      string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
}

// WithCORS wraps a route handler with CORS headers and preflight handling.
// It returns the pattern and handler in the form http.ServeMux expects.
func WithCORS(pattern string, handler http.HandlerFunc, opts CORSOptions) (string, http.HandlerFunc) {
	return pattern, func(w http.ResponseWriter, r *http.Request) {
		applyCORSHeaders(w, opts)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		handler(w, r)
	}
}

func applyCORSHeaders(w http.ResponseWriter, opts CORSOptions) {
	if opts.AllowOrigin != "" {
		w.Header().Set("Access-Control-Allow-Origin", opts.AllowOrigin)
	}
	if len(opts.AllowMethods) > 0 {
		w.Header().Set("Access-Control-Allow-Methods", strings.Join(opts.AllowMethods, ", "))
	}
	if len(opts.AllowHeaders) > 0 {
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(opts.AllowHeaders, ", "))
	}
	if opts.AllowCredentials {
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
}
