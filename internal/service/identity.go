// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rgsq/rgsq-go/internal/auth"
	"github.com/rgsq/rgsq-go/internal/model"
	"github.com/rgsq/rgsq-go/internal/store"
)

// IdentityService is the identity and role store: account registration
// and credential verification over the users table.
type IdentityService struct {
	queries *store.Queries
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(db *sql.DB) *IdentityService {
	return &IdentityService{
		queries: store.New(db),
	}
}

// NormalizeEmail lower-cases and trims an email address. All storage and
// lookup goes through this, so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterParams holds the fields for Register.
type RegisterParams struct {
	Email      string
	FullName   string
	Membership string
	Password   string
	Role       string // defaults to member when empty
}

// Register creates a new account with a hashed credential. Returns
// ErrDuplicateEmail when the normalized email is already taken.
func (s *IdentityService) Register(ctx context.Context, arg RegisterParams) (model.User, error) {
	email := NormalizeEmail(arg.Email)

	role := arg.Role
	if role == "" {
		role = model.RoleMember
	}

	if _, err := s.queries.GetUserByEmail(ctx, email); err == nil {
		return model.User{}, ErrDuplicateEmail
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("%w: checking email: %v", ErrStorageUnavailable, err)
	}

	passwordHash, err := auth.HashPassword(arg.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        email,
		FullName:     nullString(arg.FullName),
		PasswordHash: passwordHash,
		Membership:   nullString(arg.Membership),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Unique index backs the lookup above against concurrent registration.
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, fmt.Errorf("%w: creating user: %v", ErrStorageUnavailable, err)
	}

	return user, nil
}

// Authenticate verifies an email/password pair. "No such email" and
// "wrong password" both surface as ErrInvalidCredentials; a correct
// credential on a disabled account surfaces as ErrAccountDisabled.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	user, err := s.queries.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("%w: looking up user: %v", ErrStorageUnavailable, err)
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("credential verification failed", "error", err, "user_id", user.ID)
		return model.User{}, ErrInvalidCredentials
	}
	if !valid {
		return model.User{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return model.User{}, ErrAccountDisabled
	}

	now := time.Now()
	if err := s.queries.UpdateUserLastLogin(ctx, user.ID, now); err != nil {
		slog.Warn("failed to record last login", "error", err, "user_id", user.ID)
	}

	// Opportunistic rehash when the stored hash uses legacy parameters.
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := s.queries.UpdateUserPasswordHash(ctx, user.ID, newHash, now); err != nil {
				slog.Warn("failed to rehash password", "error", err, "user_id", user.ID)
			}
		}
	}

	return user, nil
}

// FindByID resolves a user by id. Returns ErrNotFound when absent.
func (s *IdentityService) FindByID(ctx context.Context, id int64) (model.User, error) {
	user, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("%w: looking up user: %v", ErrStorageUnavailable, err)
	}
	return user, nil
}

// FindByEmail resolves a user by normalized email. Returns ErrNotFound
// when absent.
func (s *IdentityService) FindByEmail(ctx context.Context, email string) (model.User, error) {
	user, err := s.queries.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("%w: looking up user: %v", ErrStorageUnavailable, err)
	}
	return user, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
