// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/rgsq/rgsq-go/internal/model"
	"github.com/rgsq/rgsq-go/internal/service"
	"github.com/rgsq/rgsq-go/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request-scoped data.
const (
	ContextKeyUser  ContextKey = "user"
	ContextKeyFlash ContextKey = "flash"
)

// SessionKeyUserID is the session key storing the authenticated user ID.
const SessionKeyUserID = "user_id"

// DenyReason classifies why the access control gate refused a request.
type DenyReason int

// Deny reasons returned by AuthorizeElevated.
const (
	DenyNone DenyReason = iota
	DenyNotAuthenticated
	DenyAccountDisabled
	DenyInsufficientPermission
)

// Decision is the result of the access control gate.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// AuthorizeElevated is the single authorization predicate for admin-only
// operations. Every elevated route goes through it; role checks are never
// re-implemented at call sites.
func AuthorizeElevated(user *model.User) Decision {
	switch {
	case user == nil:
		return Decision{Reason: DenyNotAuthenticated}
	case !user.IsActive:
		return Decision{Reason: DenyAccountDisabled}
	case !user.IsElevated():
		return Decision{Reason: DenyInsufficientPermission}
	default:
		return Decision{Allowed: true}
	}
}

// LoadUser creates middleware that resolves the session identity into the
// request context. Requests without a valid session, or whose user row has
// disappeared, continue without a user; gating is left to RequireElevated.
func LoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				// Stale session referencing a missing user: drop it.
				_ = sm.Destroy(r.Context())
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserIDPtr returns a pointer to the current user's ID from context, or
// nil if not found. Useful for optional user ID parameters in audit logging.
func GetUserIDPtr(r *http.Request) *int64 {
	if user := GetUser(r); user != nil {
		id := user.ID
		return &id
	}
	return nil
}

// RequireElevated creates middleware that applies the access control gate
// to staff/admin routes. Unauthenticated requests are redirected to the
// login page; authenticated but unauthorized ones back to the homepage
// with a permission notice. Denials are audit-logged when auditor is
// non-nil; the gate itself never fails the request with an error.
func RequireElevated(sm *scs.SessionManager, auditor *service.AuditService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			decision := AuthorizeElevated(user)
			if decision.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			switch decision.Reason {
			case DenyNotAuthenticated:
				sm.Put(r.Context(), "flash", "Please login first.")
				sm.Put(r.Context(), "flash_type", "warning")
				http.Redirect(w, r, "/Login.html", http.StatusSeeOther)

			case DenyAccountDisabled:
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", user.ID,
					"reason", "account disabled",
				)
				if auditor != nil {
					_ = auditor.LogAuthEvent(r.Context(), service.AuditLevelWarning,
						"Access denied: account disabled", &user.ID, r.RemoteAddr, map[string]any{
							"method": r.Method,
							"path":   r.URL.Path,
						})
				}
				sm.Put(r.Context(), "flash", "Your account has been disabled.")
				sm.Put(r.Context(), "flash_type", "danger")
				http.Redirect(w, r, "/", http.StatusSeeOther)

			default: // DenyInsufficientPermission
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", user.ID,
					"user_role", user.Role,
					"reason", "insufficient permission",
				)
				if auditor != nil {
					_ = auditor.LogAuthEvent(r.Context(), service.AuditLevelWarning,
						"Access denied: insufficient permissions", &user.ID, r.RemoteAddr, map[string]any{
							"method":    r.Method,
							"path":      r.URL.Path,
							"user_role": user.Role,
						})
				}
				sm.Put(r.Context(), "flash", "Insufficient permissions.")
				sm.Put(r.Context(), "flash_type", "danger")
				http.Redirect(w, r, "/", http.StatusSeeOther)
			}
		})
	}
}
