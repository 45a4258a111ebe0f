package identity

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// Caller is a verified caller identity, valid for a single request.
type Caller struct {
	ID    uuid.UUID
	Email string
	Token string
}

// VerificationError means every verification strategy failed. Detail carries
// the last strategy's error for diagnostics; it is a message string only,
// never a credential.
type VerificationError struct {
	Detail string
}

func (e *VerificationError) Error() string {
	return "could not verify token: " + e.Detail
}

// strategy is one way of turning a bearer token into a user record.
// Deployments differ in which lookups their provider version permits, so the
// resolver tries a fixed chain of them. This is a compatibility shim for
// backend version skew, not a security feature; once the provider is pinned
// the chain can collapse to the first entry.
type strategy struct {
	name   string
	verify func(ctx context.Context, token, rawHeader string) (*User, error)
}

// Resolver resolves an Authorization header to a verified Caller.
type Resolver struct {
	strategies []strategy
}

// NewResolver builds the verification chain over the given client, in
// priority order: privileged introspection, user-scoped lookup with the anon
// key (skipped when none is configured), user-scoped lookup with the service
// key.
func NewResolver(client *Client) *Resolver {
	strategies := []strategy{
		{
			name: "service introspection",
			verify: func(ctx context.Context, token, _ string) (*User, error) {
				return client.IntrospectToken(ctx, token)
			},
		},
	}

	if client.AnonKey() != "" {
		strategies = append(strategies, strategy{
			name: "anon user lookup",
			verify: func(ctx context.Context, _, rawHeader string) (*User, error) {
				return client.UserForHeader(ctx, client.AnonKey(), rawHeader)
			},
		})
	}

	strategies = append(strategies, strategy{
		name: "service user lookup",
		verify: func(ctx context.Context, _, rawHeader string) (*User, error) {
			return client.UserForHeader(ctx, client.ServiceKey(), rawHeader)
		},
	})

	return &Resolver{strategies: strategies}
}

// Resolve extracts the bearer token from the raw Authorization header value
// and verifies it, trying each strategy in order and stopping at the first
// success. Returns ErrNoToken for an empty token and *VerificationError when
// every strategy fails.
func (r *Resolver) Resolve(ctx context.Context, rawHeader string) (*Caller, error) {
	token, err := ExtractBearerToken(rawHeader)
	if err != nil {
		return nil, err
	}

	// Strategies may expect the original header shape, so forward it with
	// the Bearer prefix restored regardless of how the client sent it.
	forwarded := "Bearer " + token

	var lastErr error
	for _, s := range r.strategies {
		user, err := s.verify(ctx, token, forwarded)
		if err != nil {
			lastErr = err
			continue
		}
		log.Printf("caller %s verified via %s", user.ID, s.name)
		return &Caller{ID: user.ID, Email: user.Email, Token: token}, nil
	}

	detail := "no verification strategy available"
	if lastErr != nil {
		detail = lastErr.Error()
	}
	return nil, &VerificationError{Detail: detail}
}

// String implements fmt.Stringer without exposing the token.
func (c *Caller) String() string {
	return fmt.Sprintf("caller(%s)", c.ID)
}
