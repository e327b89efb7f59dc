// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including User, Event, and their role/visibility enums.
package model

import (
	"database/sql"
	"time"
)

// User roles.
const (
	RoleMember = "member"
	RoleStaff  = "staff"
	RoleAdmin  = "admin"
)

// User represents a society account.
type User struct {
	ID           int64          `json:"id"`
	Email        string         `json:"email"`
	FullName     sql.NullString `json:"full_name,omitempty"`
	PasswordHash string         `json:"-"` // Never expose in JSON
	Membership   sql.NullString `json:"membership,omitempty"`
	Role         string         `json:"role"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	LastLoginAt  sql.NullTime   `json:"last_login_at,omitempty"`
}

// IsElevated returns true if the user may access staff-only resources.
// Both staff and admin roles are elevated; plain members are not.
func (u *User) IsElevated() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanViewMemberEvents reports whether the user counts as a member for
// event visibility. Any active account qualifies, so elevated roles see
// everything a member sees.
func (u *User) CanViewMemberEvents() bool {
	return u != nil && u.IsActive
}
