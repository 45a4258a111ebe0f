// Package middleware provides HTTP middleware for the user-admin service.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"gwocadmin/internal/identity"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// CallerContextKey is the context key for storing the verified caller.
const CallerContextKey contextKey = "caller"

// GetCaller retrieves the verified caller from the request context.
// Returns the Caller and true if found, nil and false otherwise.
func GetCaller(ctx context.Context) (*identity.Caller, bool) {
	caller, ok := ctx.Value(CallerContextKey).(*identity.Caller)
	return caller, ok
}

// RequireCaller returns middleware that authenticates requests using the
// provided resolver. It takes the raw Authorization header, resolves it to a
// verified caller, and attaches the caller to the request context.
//
// Error responses:
//   - 401 Unauthorized: missing/empty token, or no verification strategy
//     accepted the token (the last strategy's error is included as detail)
//   - 500 Internal Server Error: anything else
func RequireCaller(resolver *identity.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, identity.ErrNoToken) {
					writeAuthError(w, http.StatusUnauthorized, "Unauthorised: no token provided", "")
					return
				}

				var verr *identity.VerificationError
				if errors.As(err, &verr) {
					writeAuthError(w, http.StatusUnauthorized, "Unauthorised: could not verify token", verr.Detail)
					return
				}

				log.Printf("caller resolution failed: %v", err)
				writeAuthError(w, http.StatusInternalServerError, "Internal server error", "")
				return
			}

			ctx := context.WithValue(r.Context(), CallerContextKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := map[string]string{"error": msg}
	if detail != "" {
		body["detail"] = detail
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to write auth error response: %v", err)
	}
}
