package profile

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DBTX is the interface for database operations.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Datastore handles database operations for profiles.
type Datastore struct {
	db DBTX
}

// NewDatastore creates a new profile datastore.
func NewDatastore(db DBTX) *Datastore {
	return &Datastore{db: db}
}

// GetByID retrieves a profile by identity-provider user id.
func (ds *Datastore) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `
		SELECT id, email, full_name, role, active, created_at, updated_at
		FROM profiles WHERE id = $1`

	p := &Profile{}
	err := ds.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Email, &p.FullName, &p.Role,
		&p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Insert creates a profile row.
func (ds *Datastore) Insert(ctx context.Context, p *Profile) error {
	now := time.Now()

	query := `
		INSERT INTO profiles (id, email, full_name, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	return ds.db.QueryRowContext(ctx, query,
		p.ID, p.Email, p.FullName, p.Role, p.Active, now, now,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// Delete removes a profile row, returning the number of rows affected.
func (ds *Datastore) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	query := `DELETE FROM profiles WHERE id = $1`
	result, err := ds.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// List retrieves all profiles ordered by full name.
func (ds *Datastore) List(ctx context.Context) ([]*Profile, error) {
	query := `
		SELECT id, email, full_name, role, active, created_at, updated_at
		FROM profiles ORDER BY full_name`

	rows, err := ds.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p := &Profile{}
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
