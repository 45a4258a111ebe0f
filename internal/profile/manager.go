package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Domain errors
var (
	ErrNotFound = errors.New("profile not found")
)

// Manager handles business logic for profiles.
type Manager struct {
	ds *Datastore
}

// NewManager creates a new profile manager.
func NewManager(ds *Datastore) *Manager {
	return &Manager{ds: ds}
}

// GetByID retrieves a profile by identity-provider user id.
func (m *Manager) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	p, err := m.ds.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// EnsureExists checks that a profile row exists for p.ID and inserts one with
// the supplied attributes if it does not. The provider-side trigger normally
// creates the row; this is the reconciliation fallback for when it did not
// fire. Idempotent: an existing row means zero writes, and a concurrent
// insert losing the unique-key race counts as success.
func (m *Manager) EnsureExists(ctx context.Context, p *Profile) (bool, error) {
	_, err := m.ds.GetByID(ctx, p.ID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to check profile: %w", err)
	}

	if err := m.ds.Insert(ctx, p); err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert profile: %w", err)
	}
	return true, nil
}

// Remove deletes a profile row. An already-absent row is not an error; the
// storage layer is expected to cascade deletes and this is the safety net.
func (m *Manager) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := m.ds.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

// List retrieves all profiles.
func (m *Manager) List(ctx context.Context) ([]*Profile, error) {
	profiles, err := m.ds.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
