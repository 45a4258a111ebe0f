package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityConfig holds connection details for the identity provider's
// auth API (a GoTrue-compatible backend).
type IdentityConfig struct {
	BaseURL        string // e.g., "https://xyzcompany.supabase.co"
	AnonKey        string // low-privilege key; optional, enables user-scoped verification
	ServiceRoleKey string // high-privilege key; never sent to clients
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
}

type Config struct {
	Port              string
	Environment       string
	Database          DatabaseConfig
	Identity          IdentityConfig
	InviteRedirectURL string
	AllowedOrigins    []string // empty means allow any origin
}

// Load reads configuration from environment variables.
// It fails fast with clear errors for missing required values.
func Load() (*Config, error) {
	var missing []string

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "staging" && env != "production" {
		return nil, fmt.Errorf("invalid ENV value %q: must be development, staging, or production", env)
	}

	// Database configuration (required)
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	// Identity provider configuration (required except the anon key)
	identityURL := os.Getenv("SUPABASE_URL")
	if identityURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}

	serviceRoleKey := os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
	if serviceRoleKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
	}

	// Anon key is optional: without it the user-scoped anon verification
	// strategy is skipped.
	anonKey := os.Getenv("SUPABASE_ANON_KEY")

	redirectURL := os.Getenv("INVITE_REDIRECT_URL")
	if redirectURL == "" {
		missing = append(missing, "INVITE_REDIRECT_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}

	if err := validateDatabaseURL(databaseURL); err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	if err := validateHTTPURL(identityURL); err != nil {
		return nil, fmt.Errorf("invalid SUPABASE_URL: %w", err)
	}

	if err := validateHTTPURL(redirectURL); err != nil {
		return nil, fmt.Errorf("invalid INVITE_REDIRECT_URL: %w", err)
	}

	if err := validateServiceRoleKey(serviceRoleKey); err != nil {
		return nil, fmt.Errorf("invalid SUPABASE_SERVICE_ROLE_KEY: %w", err)
	}

	dbConfig := DatabaseConfig{
		URL:             databaseURL,
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
	}

	return &Config{
		Port:        port,
		Environment: env,
		Database:    dbConfig,
		Identity: IdentityConfig{
			BaseURL:        strings.TrimSuffix(identityURL, "/"),
			AnonKey:        anonKey,
			ServiceRoleKey: serviceRoleKey,
		},
		InviteRedirectURL: redirectURL,
		AllowedOrigins:    parseOrigins(os.Getenv("ALLOWED_ORIGINS")),
	}, nil
}

// parseOrigins splits a comma-separated origin list, dropping empty entries.
func parseOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// validateServiceRoleKey catches the most common deployment mistake: the anon
// key pasted where the service role key belongs. Legacy keys are JWTs carrying
// a "role" claim; when the key looks like a JWT we require that claim to be
// service_role. Newer opaque secret keys are accepted as-is.
func validateServiceRoleKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if strings.Count(key, ".") != 2 {
		// Opaque (non-JWT) secret key; nothing to inspect.
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return fmt.Errorf("key looks like a JWT but does not parse: %w", err)
	}

	role, _ := claims["role"].(string)
	if role != "service_role" {
		return fmt.Errorf("key carries role %q, expected service_role (anon key supplied by mistake?)", role)
	}

	return nil
}

// validateHTTPURL ensures a URL is absolute with an http(s) scheme.
func validateHTTPURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme, got %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host")
	}

	return nil
}

// validateDatabaseURL ensures the database URL is a valid PostgreSQL connection string.
func validateDatabaseURL(dbURL string) error {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}

	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return fmt.Errorf("URL must use postgres or postgresql scheme, got %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host")
	}

	return nil
}

// getEnvInt reads an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}
