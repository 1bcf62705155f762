package http

import (
	"net/http"
	"strings"
)

// originSet is the parsed origin allow-list shared by the CORS middleware
// and the WebSocket origin check, so the two cannot drift.
type originSet struct {
	allowAll bool
	origins  map[string]struct{}
}

func newOriginSet(allowedOrigins []string) originSet {
	set := originSet{origins: make(map[string]struct{}, len(allowedOrigins))}
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			set.allowAll = true
			continue
		}
		set.origins[origin] = struct{}{}
	}
	return set
}

func (s originSet) contains(origin string) bool {
	if s.allowAll {
		return true
	}
	_, ok := s.origins[origin]
	return ok
}

// CORS adds headers for a configured origin allow-list. The UI layer is a
// separate origin in every deployment, so this runs on the whole router.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	set := newOriginSet(allowedOrigins)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		if !set.contains(origin) {
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				writeError(w, http.StatusForbidden, codeForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if set.allowAll {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
