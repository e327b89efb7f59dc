// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the business logic layer: identity and
// credential handling, the event catalog, uploads, notifications, and
// the audit log.
package service

import "errors"

// Sentinel errors recoverable at the request boundary. Handlers translate
// each into a redirect plus an advisory message.
var (
	// ErrDuplicateEmail is returned when registering an email that is
	// already taken (after normalization).
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials deliberately covers both "no such email" and
	// "wrong password" so callers cannot probe for account existence.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountDisabled is returned when a disabled account presents
	// otherwise-correct credentials.
	ErrAccountDisabled = errors.New("account disabled")

	// ErrInvalidPrice is returned when an event price does not parse as a
	// non-negative number.
	ErrInvalidPrice = errors.New("price must be a non-negative number")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMemberOnly is returned when a non-member requests a member-only
	// event; distinct from ErrNotFound so callers route it to login.
	ErrMemberOnly = errors.New("event is restricted to members")

	// ErrStorageUnavailable wraps storage-layer failures (timeouts,
	// connection loss) behind a generic recoverable error.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
