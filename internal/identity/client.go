// Package identity talks to the identity provider's auth API. It covers the
// two capabilities this service needs: verifying who a bearer token belongs
// to, and performing privileged invite/delete operations with the service
// role key.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// User is the identity provider's record of an authenticated user.
// Only the fields this service reads are mapped.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// InviteMetadata is attached to an invited user as user_metadata and is
// picked up by the profile-creation trigger on first sign-in.
type InviteMetadata struct {
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// APIError is a failure response from the identity provider. The message is
// passed through to API clients verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client is a minimal REST client for a GoTrue-compatible auth API.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates a client for the auth API at baseURL. The anon key may be
// empty; privileged calls always use the service role key.
func NewClient(baseURL, anonKey, serviceKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		anonKey:    anonKey,
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// AnonKey reports the configured low-privilege key. Empty means the
// user-scoped anon verification path is unavailable.
func (c *Client) AnonKey() string {
	return c.anonKey
}

// ServiceKey reports the configured service role key.
func (c *Client) ServiceKey() string {
	return c.serviceKey
}

// IntrospectToken asks the provider who the given access token belongs to,
// authenticating the lookup itself with the service role key.
func (c *Client) IntrospectToken(ctx context.Context, token string) (*User, error) {
	return c.getUser(ctx, c.serviceKey, "Bearer "+token)
}

// UserForHeader performs a user-scoped lookup using the given api key while
// forwarding the caller's original Authorization header unchanged.
func (c *Client) UserForHeader(ctx context.Context, apiKey, authHeader string) (*User, error) {
	return c.getUser(ctx, apiKey, authHeader)
}

func (c *Client) getUser(ctx context.Context, apiKey, authHeader string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("identity: new request: %w", err)
	}
	req.Header.Set("apikey", apiKey)
	req.Header.Set("Authorization", authHeader)

	var user User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	if user.ID == uuid.Nil {
		return nil, &APIError{StatusCode: http.StatusUnauthorized, Message: "no user for token"}
	}
	return &user, nil
}

// InviteByEmail sends an invite email to a new user, attaching metadata and a
// post-invite redirect target. Returns the created user record.
func (c *Client) InviteByEmail(ctx context.Context, email string, meta InviteMetadata, redirectTo string) (*User, error) {
	payload := struct {
		Email string         `json:"email"`
		Data  InviteMetadata `json:"data"`
	}{Email: email, Data: meta}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("identity: marshal invite: %w", err)
	}

	endpoint := c.baseURL + "/auth/v1/invite"
	if redirectTo != "" {
		endpoint += "?redirect_to=" + url.QueryEscape(redirectTo)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("identity: new request: %w", err)
	}
	c.setServiceAuth(req)
	req.Header.Set("Content-Type", "application/json")

	var user User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser permanently removes a user from the identity provider.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	endpoint := c.baseURL + "/auth/v1/admin/users/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("identity: new request: %w", err)
	}
	c.setServiceAuth(req)

	return c.do(req, nil)
}

func (c *Client) setServiceAuth(req *http.Request) {
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
}

// do executes the request and decodes a success body into out (when non-nil).
// Non-2xx responses become *APIError carrying the provider's message.
func (c *Client) do(req *http.Request, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity: request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return decodeAPIError(res)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("identity: decode response: %w", err)
	}
	return nil
}

// decodeAPIError extracts the provider's error message. GoTrue versions
// disagree on the field name, so several are tried.
func decodeAPIError(res *http.Response) error {
	apiErr := &APIError{
		StatusCode: res.StatusCode,
		Message:    fmt.Sprintf("identity provider returned status %d", res.StatusCode),
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 4096))
	if err != nil {
		return apiErr
	}

	var payload struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorField       string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}

	for _, msg := range []string{payload.Msg, payload.Message, payload.ErrorDescription, payload.ErrorField} {
		if msg != "" {
			apiErr.Message = msg
			break
		}
	}
	return apiErr
}
