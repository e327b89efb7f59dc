// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rgsq/rgsq-go/internal/store"
)

// Audit levels
const (
	AuditLevelInfo    = "info"
	AuditLevelWarning = "warning"
	AuditLevelError   = "error"
)

// Audit categories
const (
	AuditCategoryAuth   = "auth"
	AuditCategoryEvent  = "event"
	AuditCategoryUser   = "user"
	AuditCategorySystem = "system"
)

// AuditService records security- and lifecycle-relevant actions to the
// audit_log table.
type AuditService struct {
	queries *store.Queries
}

// NewAuditService creates a new AuditService.
func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{
		queries: store.New(db),
	}
}

// Log creates a new audit log entry.
func (s *AuditService) Log(ctx context.Context, level, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		if jsonBytes, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	_, err := s.queries.CreateAuditEntry(ctx, store.CreateAuditEntryParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		IPAddress: ipAddress,
		Metadata:  metadataJSON,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to write audit entry", "error", err, "message", message)
		return err
	}

	return nil
}

// LogAuthEvent logs an authentication-related entry.
func (s *AuditService) LogAuthEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.Log(ctx, level, AuditCategoryAuth, message, userID, ipAddress, metadata)
}

// LogEventAction logs an event-catalog entry (create, delete).
func (s *AuditService) LogEventAction(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.Log(ctx, level, AuditCategoryEvent, message, userID, ipAddress, metadata)
}

// LogUserEvent logs a user lifecycle entry (registration, signup).
func (s *AuditService) LogUserEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.Log(ctx, level, AuditCategoryUser, message, userID, ipAddress, metadata)
}

// Recent returns the newest audit entries, for the staff activity view.
func (s *AuditService) Recent(ctx context.Context, limit int64) ([]store.AuditEntry, error) {
	return s.queries.ListAuditEntries(ctx, store.ListAuditEntriesParams{Limit: limit})
}

// DeleteOldEntries removes audit entries older than the specified duration.
func (s *AuditService) DeleteOldEntries(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	return s.queries.DeleteOldAuditEntries(ctx, cutoff)
}
