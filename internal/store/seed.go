package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rgsq/rgsq-go/internal/auth"
	"github.com/rgsq/rgsq-go/internal/model"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@rgsq.org.au"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Site Administrator"
)

// Seed creates initial data in the database: a default admin account and
// a couple of demo events when the events table is empty.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	if err := seedAdmin(ctx, queries); err != nil {
		return err
	}
	return seedEvents(ctx, queries)
}

func seedAdmin(ctx context.Context, queries *Queries) error {
	_, err := queries.GetUserByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DefaultAdminEmail,
		FullName:     sql.NullString{String: DefaultAdminName, Valid: true},
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)
	return nil
}

func seedEvents(ctx context.Context, queries *Queries) error {
	count, err := queries.CountEvents(ctx)
	if err != nil {
		return fmt.Errorf("counting events: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	demos := []CreateEventParams{
		{
			Title:       "Geography writing competition",
			EventTime:   "2025-10-21 18:30",
			Location:    "Brisbane",
			Price:       sql.NullFloat64{Float64: 1.00, Valid: true},
			Description: sql.NullString{String: "A competition for aspiring geography writers.", Valid: true},
			Visibility:  model.VisibilityPublic,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			Title:       "Olympic Games - Elevate 2042 - Legacy",
			EventTime:   "2025-08-01 19:00",
			Location:    "Brisbane",
			Price:       sql.NullFloat64{Float64: 12.00, Valid: true},
			Description: sql.NullString{String: "A discussion on the legacy of the Olympic Games.", Valid: true},
			Visibility:  model.VisibilityPublic,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	for _, demo := range demos {
		if _, err := queries.CreateEvent(ctx, demo); err != nil {
			return fmt.Errorf("seeding event %q: %w", demo.Title, err)
		}
	}

	slog.Info("seeded demo events", "count", len(demos))
	return nil
}
