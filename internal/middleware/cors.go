package middleware

import "net/http"

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
	corsMaxAge       = "86400"
)

// CORS returns middleware applying the service's cross-origin policy and
// answering preflight requests. With an empty allowlist any origin is
// allowed; otherwise the request origin is echoed back when allowed and
// "null" is sent when it is not.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	resolveOrigin := func(r *http.Request) string {
		if len(allowed) == 0 {
			return "*"
		}
		if origin := r.Header.Get("Origin"); allowed[origin] {
			return origin
		}
		return "null"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", resolveOrigin(r))
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			if len(allowed) > 0 {
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Max-Age", corsMaxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
