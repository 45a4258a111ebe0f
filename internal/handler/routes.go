package handler

import (
	"net/http"

	"gwocadmin/internal/config"
	"gwocadmin/internal/identity"
	"gwocadmin/internal/middleware"
	"gwocadmin/internal/profile"
	"gwocadmin/internal/useradmin"
)

// Deps holds the dependencies handlers are wired with.
type Deps struct {
	Config   *config.Config
	Resolver *identity.Resolver
	Gate     *useradmin.Gate
	Executor *useradmin.Executor
	Profiles *profile.Manager
}

// RegisterRoutes registers all HTTP routes with the provided mux and returns
// the root handler with the CORS policy applied. OPTIONS preflights are
// answered by the CORS middleware before routing.
func RegisterRoutes(mux *http.ServeMux, deps *Deps) http.Handler {
	// Health endpoint (no auth required)
	mux.HandleFunc("GET /health", HealthCheck)

	requireCaller := middleware.RequireCaller(deps.Resolver)

	admin := NewUserAdminHandler(deps.Gate, deps.Executor)
	mux.HandleFunc("GET /api/v1/user-admin", admin.Version)
	mux.Handle("POST /api/v1/user-admin", requireCaller(http.HandlerFunc(admin.Execute)))
	mux.HandleFunc("/api/v1/user-admin", methodNotAllowedHandler("GET, POST, OPTIONS"))

	users := NewUsersHandler(deps.Gate, deps.Profiles)
	mux.Handle("GET /api/v1/users", requireCaller(http.HandlerFunc(users.List)))

	return middleware.CORS(deps.Config.AllowedOrigins)(mux)
}

func methodNotAllowedHandler(allowedMethods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allowedMethods)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
