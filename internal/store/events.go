// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rgsq/rgsq-go/internal/model"
)

const eventColumns = `id, title, event_time, location, price, description, image, visibility, created_at, updated_at`

func scanEvent(scan func(dest ...any) error) (model.Event, error) {
	var e model.Event
	err := scan(
		&e.ID,
		&e.Title,
		&e.EventTime,
		&e.Location,
		&e.Price,
		&e.Description,
		&e.Image,
		&e.Visibility,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

func collectEvents(rows *sql.Rows) ([]model.Event, error) {
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CreateEventParams holds the fields for CreateEvent.
type CreateEventParams struct {
	Title       string
	EventTime   string
	Location    string
	Price       sql.NullFloat64
	Description sql.NullString
	Image       sql.NullString
	Visibility  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateEvent inserts an event row and returns the stored record.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO events (title, event_time, location, price, description, image, visibility, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+eventColumns,
		arg.Title, arg.EventTime, arg.Location, arg.Price, arg.Description, arg.Image, arg.Visibility, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanEvent(row.Scan)
}

// GetEventByID looks up an event by id. Returns sql.ErrNoRows when no
// such event exists.
func (q *Queries) GetEventByID(ctx context.Context, id int64) (model.Event, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEvent(row.Scan)
}

// ListEventsParams bounds a paginated event listing.
type ListEventsParams struct {
	Limit  int64
	Offset int64
}

// ListEvents returns events ordered ascending by event_time.
func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY event_time ASC, id ASC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// ListPublicEvents returns public-visibility events ordered ascending by
// event_time.
func (q *Queries) ListPublicEvents(ctx context.Context, arg ListEventsParams) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE visibility = 'public' ORDER BY event_time ASC, id ASC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// ListEventsDesc returns events ordered descending by event_time, for the
// admin management view.
func (q *Queries) ListEventsDesc(ctx context.Context, arg ListEventsParams) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY event_time DESC, id DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// CountEvents returns the total number of event rows.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	return count, err
}

// CountPublicEvents returns the number of public-visibility event rows.
func (q *Queries) CountPublicEvents(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE visibility = 'public'`).Scan(&count)
	return count, err
}

// DeleteEvent removes an event row. Returns the number of rows deleted.
func (q *Queries) DeleteEvent(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
