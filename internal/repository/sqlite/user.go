package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/ayakodama/wishboard/internal/apperror"
	"github.com/ayakodama/wishboard/internal/model"
	"github.com/ayakodama/wishboard/internal/repository"
)

// Compile-time check that *DB satisfies the full storage surface.
var _ repository.Store = (*DB)(nil)

// FindOrCreateUser returns the user with the given display name, inserting
// a fresh row on first reference.
//
// RACE HANDLING:
// Two concurrent requests can both miss the SELECT and race the INSERT.
// The UNIQUE index on name lets exactly one win; the loser re-reads the
// row the winner created instead of surfacing the constraint error.
func (db *DB) FindOrCreateUser(ctx context.Context, name string) (*model.User, error) {
	user, err := db.GetUserByName(ctx, name)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	user = &model.User{
		ID:        xid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, created_at) VALUES (?, ?, ?)`,
		user.ID, user.Name, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return db.GetUserByName(ctx, name)
		}
		return nil, fmt.Errorf("sqlite: creating user %q: %w", name, err)
	}
	return user, nil
}

// GetUserByName returns apperror.ErrNotFound for unknown names.
func (db *DB) GetUserByName(ctx context.Context, name string) (*model.User, error) {
	var user model.User
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM users WHERE name = ?`,
		name,
	).Scan(&user.ID, &user.Name, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", name)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", name, err)
	}
	return &user, nil
}
