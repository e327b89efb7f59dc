// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rgsq/rgsq-go/internal/model"
)

const userColumns = `id, email, full_name, password_hash, membership, role, is_active, created_at, updated_at, last_login_at`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FullName,
		&u.PasswordHash,
		&u.Membership,
		&u.Role,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.LastLoginAt,
	)
	return u, err
}

// CreateUserParams holds the fields for CreateUser. Email must already be
// normalized (lower-cased, trimmed) by the caller.
type CreateUserParams struct {
	Email        string
	FullName     sql.NullString
	PasswordHash string
	Membership   sql.NullString
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a user row and returns the stored record.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO users (email, full_name, password_hash, membership, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		arg.Email, arg.FullName, arg.PasswordHash, arg.Membership, arg.Role, arg.IsActive, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanUser(row)
}

// GetUserByEmail looks up a user by normalized email. Returns
// sql.ErrNoRows when no such user exists.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// GetUserByID looks up a user by id. Returns sql.ErrNoRows when no such
// user exists.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// UpdateUserLastLogin records a successful login timestamp.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`, at, at, id)
	return err
}

// UpdateUserPasswordHash replaces the stored credential, used when the
// hash parameters are out of date.
func (q *Queries) UpdateUserPasswordHash(ctx context.Context, id int64, passwordHash string, at time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, passwordHash, at, id)
	return err
}

// CountUsers returns the total number of user rows.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
