package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowHeaders = "Authorization, Content-Type, X-Tenant-Id"
	corsAllowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsMaxAge       = "600"
)

// originSet answers whether a request Origin may receive CORS headers.
type originSet struct {
	wildcard bool
	origins  map[string]bool
}

func newOriginSet(allowed []string) originSet {
	set := originSet{origins: make(map[string]bool, len(allowed))}
	for _, entry := range allowed {
		switch entry = strings.TrimSpace(entry); entry {
		case "":
		case "*":
			set.wildcard = true
		default:
			set.origins[entry] = true
		}
	}
	return set
}

func (s originSet) admits(origin string) bool {
	if origin == "" {
		return false
	}
	return s.wildcard || s.origins[origin]
}

// CORS echoes the Origin back to browsers on the allowlist, so tenant booking
// pages and embedded widgets can call the API. A "*" entry admits every
// origin. Unlisted origins still reach the handler; the browser is the one
// that enforces the missing headers.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	set := newOriginSet(allowedOrigins)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if set.admits(origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Allow-Methods", corsAllowMethods)
				h.Set("Access-Control-Max-Age", corsMaxAge)
			}
			if isPreflight(r, origin) {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isPreflight(r *http.Request, origin string) bool {
	return r.Method == http.MethodOptions && origin != "" &&
		r.Header.Get("Access-Control-Request-Method") != ""
}
