// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"fmt"
	"time"
)

// Event visibility values.
const (
	VisibilityPublic = "public"
	VisibilityMember = "member"
)

// EventTimeLayout is the storage format for event times. Lexicographic
// order on this layout matches chronological order.
const EventTimeLayout = "2006-01-02 15:04"

// Event represents a society event.
type Event struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	EventTime   string          `json:"event_time"`
	Location    string          `json:"location"`
	Price       sql.NullFloat64 `json:"price,omitempty"` // NULL means "not priced", 0 is explicitly free
	Description sql.NullString  `json:"description,omitempty"`
	Image       sql.NullString  `json:"image,omitempty"` // relative reference into the upload store
	Visibility  string          `json:"visibility"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsMemberOnly returns true if the event is hidden from non-members.
func (e Event) IsMemberOnly() bool {
	return e.Visibility == VisibilityMember
}

// PriceLabel formats the price for display. Unpriced events show as "Free".
func (e *Event) PriceLabel() string {
	if !e.Price.Valid {
		return "Free"
	}
	return fmt.Sprintf("$%.2f", e.Price.Float64)
}

// ValidVisibility reports whether v is a recognized visibility value.
func ValidVisibility(v string) bool {
	return v == VisibilityPublic || v == VisibilityMember
}
