package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gwocadmin/internal/identity"

	"github.com/google/uuid"
)

// fakeVerifyServer stands in for the identity provider: it accepts the one
// good token and rejects everything else.
func fakeVerifyServer(t *testing.T, goodToken string, id uuid.UUID) *identity.Resolver {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+goodToken {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"msg": "invalid JWT"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": id.String(), "email": "caller@example.com"})
	}))
	t.Cleanup(srv.Close)
	return identity.NewResolver(identity.NewClient(srv.URL, "anon-key", "service-key"))
}

// echoCallerHandler returns 200 with the caller id from the context.
func echoCallerHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := GetCaller(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "caller not found in context"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"caller_id": caller.ID.String()})
	})
}

func TestRequireCaller_MissingAuthorizationHeader(t *testing.T) {
	resolver := fakeVerifyServer(t, "good-token", uuid.New())
	handler := RequireCaller(resolver)(echoCallerHandler())

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected an error message in the response body")
	}
}

func TestRequireCaller_EmptyBearerToken(t *testing.T) {
	resolver := fakeVerifyServer(t, "good-token", uuid.New())
	handler := RequireCaller(resolver)(echoCallerHandler())

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set("Authorization", "Bearer   ")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestRequireCaller_UnverifiableToken(t *testing.T) {
	resolver := fakeVerifyServer(t, "good-token", uuid.New())
	handler := RequireCaller(resolver)(echoCallerHandler())

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["detail"] == "" {
		t.Error("expected the last strategy error as detail")
	}
}

func TestRequireCaller_AttachesCallerContext(t *testing.T) {
	id := uuid.New()
	resolver := fakeVerifyServer(t, "good-token", id)
	handler := RequireCaller(resolver)(echoCallerHandler())

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["caller_id"] != id.String() {
		t.Errorf("expected caller id %s, got %s", id, body["caller_id"])
	}
}

func TestGetCaller_NotSet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if _, ok := GetCaller(req.Context()); ok {
		t.Error("expected no caller in a fresh context")
	}
}
