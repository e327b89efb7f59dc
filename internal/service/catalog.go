// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rgsq/rgsq-go/internal/model"
	"github.com/rgsq/rgsq-go/internal/store"
)

// DefaultPageSize is the page size of the public event list.
const DefaultPageSize = 6

// ImageRemover releases stored image assets. Removal is best-effort;
// failures never roll back catalog mutations.
type ImageRemover interface {
	Remove(ref string) error
}

// CatalogService is the event catalog: create, list, fetch, and delete
// over the events table.
//
// Composition rule: Create, ListAdmin, and Delete trust their caller to
// have passed the elevated-role gate. The catalog does not re-verify
// authorization; routing composes middleware.RequireElevated in front of
// every mutating endpoint.
type CatalogService struct {
	queries *store.Queries
	images  ImageRemover
}

// NewCatalogService creates a new CatalogService. images may be nil when
// no upload store is configured.
func NewCatalogService(db *sql.DB, images ImageRemover) *CatalogService {
	return &CatalogService{
		queries: store.New(db),
		images:  images,
	}
}

// CreateEventParams holds raw form fields for Create. Price is the
// submitted string: empty means "not priced".
type CreateEventParams struct {
	Title       string
	EventTime   string
	Location    string
	Price       string
	Description string
	Image       string
	Visibility  string // defaults to public when empty
}

// Create validates fields and inserts a new event. All validation happens
// before any write, so no partial event rows are ever committed.
func (s *CatalogService) Create(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	title := strings.TrimSpace(arg.Title)
	eventTime := strings.TrimSpace(arg.EventTime)
	location := strings.TrimSpace(arg.Location)
	if title == "" || eventTime == "" || location == "" {
		return model.Event{}, fmt.Errorf("title, event time and location are required")
	}

	price, err := parsePrice(arg.Price)
	if err != nil {
		return model.Event{}, err
	}

	visibility := arg.Visibility
	if visibility == "" {
		visibility = model.VisibilityPublic
	}
	if !model.ValidVisibility(visibility) {
		return model.Event{}, fmt.Errorf("unknown visibility %q", visibility)
	}

	now := time.Now()
	event, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Title:       title,
		EventTime:   eventTime,
		Location:    location,
		Price:       price,
		Description: nullString(strings.TrimSpace(arg.Description)),
		Image:       nullString(arg.Image),
		Visibility:  visibility,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: creating event: %v", ErrStorageUnavailable, err)
	}
	return event, nil
}

// EventPage is one page of a listing plus its pagination math.
type EventPage struct {
	Items      []model.Event
	Page       int
	TotalPages int
	TotalItems int64
}

// List returns events ascending by event_time, one page at a time. Pages
// are 1-based. Non-members only see public events, in both the items and
// the totals used for pagination; an out-of-range page yields an empty
// item slice with correct totals, never an error.
func (s *CatalogService) List(ctx context.Context, callerIsMember bool, page, pageSize int) (EventPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	listFn := s.queries.ListPublicEvents
	countFn := s.queries.CountPublicEvents
	if callerIsMember {
		listFn = s.queries.ListEvents
		countFn = s.queries.CountEvents
	}
	return s.listPage(ctx, page, pageSize, listFn, countFn)
}

// ListAdmin returns all events descending by event_time for the
// management view. Caller must have passed the elevated gate.
func (s *CatalogService) ListAdmin(ctx context.Context, page, pageSize int) (EventPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return s.listPage(ctx, page, pageSize, s.queries.ListEventsDesc, s.queries.CountEvents)
}

func (s *CatalogService) listPage(
	ctx context.Context,
	page, pageSize int,
	listFn func(context.Context, store.ListEventsParams) ([]model.Event, error),
	countFn func(context.Context) (int64, error),
) (EventPage, error) {
	total, err := countFn(ctx)
	if err != nil {
		return EventPage{}, fmt.Errorf("%w: counting events: %v", ErrStorageUnavailable, err)
	}

	// ceil(total/pageSize), with an empty catalog reporting one empty
	// page so pagination chrome never shows "of 0".
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	items, err := listFn(ctx, store.ListEventsParams{
		Limit:  int64(pageSize),
		Offset: int64(page-1) * int64(pageSize),
	})
	if err != nil {
		return EventPage{}, fmt.Errorf("%w: listing events: %v", ErrStorageUnavailable, err)
	}

	return EventPage{
		Items:      items,
		Page:       page,
		TotalPages: totalPages,
		TotalItems: total,
	}, nil
}

// Get fetches an event by id regardless of visibility. Returns
// ErrNotFound when absent.
func (s *CatalogService) Get(ctx context.Context, id int64) (model.Event, error) {
	event, err := s.queries.GetEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Event{}, ErrNotFound
		}
		return model.Event{}, fmt.Errorf("%w: fetching event: %v", ErrStorageUnavailable, err)
	}
	return event, nil
}

// GetVisible fetches an event for display to a caller. A member-only
// event requested by a non-member returns ErrMemberOnly, which is an
// authorization failure, not a missing record.
func (s *CatalogService) GetVisible(ctx context.Context, id int64, callerIsMember bool) (model.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return model.Event{}, err
	}
	if event.IsMemberOnly() && !callerIsMember {
		return model.Event{}, ErrMemberOnly
	}
	return event, nil
}

// Delete removes an event. Returns ErrNotFound when no such id exists.
// On success any associated image asset is released best-effort: the
// catalog record and the file are not transactionally coupled.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.queries.DeleteEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: deleting event: %v", ErrStorageUnavailable, err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if event.Image.Valid && s.images != nil {
		if err := s.images.Remove(event.Image.String); err != nil {
			slog.Warn("failed to remove event image", "error", err, "event_id", id, "image", event.Image.String)
		}
	}
	return nil
}

// parsePrice converts a submitted price string. Empty input means "not
// priced"; anything else must parse as a finite non-negative number.
// ParseFloat accepts "NaN" and "Inf", neither of which is a price.
func parsePrice(raw string) (sql.NullFloat64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sql.NullFloat64{}, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return sql.NullFloat64{}, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	return sql.NullFloat64{Float64: value, Valid: true}, nil
}
