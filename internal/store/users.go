package store

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
)

const userSelect = "SELECT id, name, email, password_hash, role, created_at FROM users"

// CreateUser inserts a user. A duplicate email fails with ErrUniqueConstraint.
func (s *SQLiteStore) CreateUser(ctx context.Context, in UserInput) (int64, error) {
	if strings.TrimSpace(in.Name) == "" {
		return 0, requiredField("name")
	}
	if strings.TrimSpace(in.Email) == "" {
		return 0, requiredField("email")
	}
	if in.PasswordHash == "" {
		return 0, requiredField("password_hash")
	}
	role := in.Role
	if role == "" {
		role = DefaultRole
	}

	var id int64
	err := s.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = insert(ctx, tx, "insert user",
			"INSERT INTO users (name, email, password_hash, role) VALUES (?, ?, ?, ?)",
			in.Name, in.Email, in.PasswordHash, role)
		return err
	})
	return id, err
}

func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.getUser(ctx, "get user", userSelect+" WHERE id = ?", id)
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, "get user by email", userSelect+" WHERE email = ?", email)
}

func (s *SQLiteStore) getUser(ctx context.Context, op, query string, arg any) (*User, error) {
	var u User
	var found bool
	err := s.WithReadTransaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		found, err = getOne(ctx, tx, &u, query, arg)
		return classifyIfErr(op, err)
	})
	if err != nil || !found {
		return nil, err // User not found is (nil, nil)
	}
	return &u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context, limit int) ([]User, error) {
	query, args := limitClause(userSelect+" ORDER BY created_at DESC, id DESC", nil, limit)
	var users []User
	err := s.WithReadTransaction(ctx, func(tx *sqlx.Tx) error {
		return classifyIfErr("list users", tx.SelectContext(ctx, &users, query, args...))
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser fails with ErrReferentialConstraint while the user still owns
// chat logs, search history or favorites.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "delete user", "users", id)
}
