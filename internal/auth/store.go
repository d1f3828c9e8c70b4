package auth

import (
	"context"
	"database/sql"
	"fmt"
)

// Store handles user persistence for the user.create background job.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// UpsertUserByEmail checks for an existing user by email and inserts one if
// absent. Safe to retry: a concurrent insert loses to the unique constraint
// and falls back to the existing row.
func (s *Store) UpsertUserByEmail(ctx context.Context, name, email string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("check user %s: %w", email, err)
	}

	err = s.db.QueryRowContext(ctx,
		`INSERT INTO users (user_name, email, is_member)
		 VALUES ($1, $2, FALSE)
		 ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
		 RETURNING id`,
		name, email,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert user %s: %w", email, err)
	}

	return id, nil
}
