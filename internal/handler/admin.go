// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rgsq/rgsq-go/internal/middleware"
	"github.com/rgsq/rgsq-go/internal/render"
	"github.com/rgsq/rgsq-go/internal/service"
	"github.com/rgsq/rgsq-go/internal/store"
)

// staffActivityLimit is how many audit entries the staff page shows.
const staffActivityLimit = 20

// AdminHandler serves the staff-only pages. Route protection is applied
// by the router; these handlers assume an elevated caller.
type AdminHandler struct {
	catalog  *service.CatalogService
	uploads  *service.UploadService
	audit    *service.AuditService
	renderer *render.Renderer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(catalog *service.CatalogService, uploads *service.UploadService, audit *service.AuditService, renderer *render.Renderer) *AdminHandler {
	return &AdminHandler{
		catalog:  catalog,
		uploads:  uploads,
		audit:    audit,
		renderer: renderer,
	}
}

// staffData is the template payload for the staff landing page.
type staffData struct {
	Entries []store.AuditEntry
}

// Staff renders the staff landing page with recent activity.
func (h *AdminHandler) Staff(w http.ResponseWriter, r *http.Request) {
	entries, err := h.audit.Recent(r.Context(), staffActivityLimit)
	if err != nil {
		slog.Error("loading recent activity failed", "error", err)
		// The page is still useful without the activity table.
	}
	h.renderer.Render(w, r, "staff.html", "Staff area", staffData{Entries: entries})
}

// Events renders the management listing, newest first.
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.ListAdmin(r.Context(), pageParam(r), service.DefaultPageSize)
	if err != nil {
		logAndInternalError(w, "listing events failed", "error", err)
		return
	}
	h.renderer.Render(w, r, "admin_events.html", "Manage events", buildEventListData(page))
}

// createFormData echoes submitted values back into the form on a
// validation failure.
type createFormData struct {
	Title       string
	EventTime   string
	Location    string
	Price       string
	Description string
	Visibility  string
}

// CreateForm renders the event creation page.
func (h *AdminHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "event_create.html", "Create event", createFormData{Visibility: "public"})
}

// Create handles the event creation submission, including the optional
// image upload.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		flashError(w, r, h.renderer, RouteCreate, "Invalid form data or file too large")
		return
	}

	form := createFormData{
		Title:       r.FormValue("title"),
		EventTime:   normalizeEventTime(r.FormValue("event_time")),
		Location:    r.FormValue("location"),
		Price:       r.FormValue("price"),
		Description: r.FormValue("description"),
		Visibility:  r.FormValue("visibility"),
	}

	imageRef := ""
	if file, header, err := r.FormFile("image"); err == nil {
		defer func() { _ = file.Close() }()
		imageRef, err = h.uploads.SaveImage(file, header)
		if err != nil {
			slog.Warn("event image rejected", "error", err, "filename", header.Filename)
			h.renderer.SetFlash(r, "Image rejected: "+err.Error(), "danger")
			h.renderer.Render(w, r, "event_create.html", "Create event", form)
			return
		}
	}

	event, err := h.catalog.Create(r.Context(), service.CreateEventParams{
		Title:       form.Title,
		EventTime:   form.EventTime,
		Location:    form.Location,
		Price:       form.Price,
		Description: form.Description,
		Image:       imageRef,
		Visibility:  form.Visibility,
	})
	if err != nil {
		// The stored image has no event row to belong to.
		if imageRef != "" {
			if rmErr := h.uploads.Remove(imageRef); rmErr != nil {
				slog.Warn("orphaned image not removed", "ref", imageRef, "error", rmErr)
			}
		}
		if errors.Is(err, service.ErrStorageUnavailable) {
			logAndInternalError(w, "creating event failed", "error", err)
			return
		}
		msg := "Could not create event: " + err.Error()
		if errors.Is(err, service.ErrInvalidPrice) {
			msg = "Price must be a non-negative number."
		}
		h.renderer.SetFlash(r, msg, "danger")
		h.renderer.Render(w, r, "event_create.html", "Create event", form)
		return
	}

	_ = h.audit.LogEventAction(r.Context(), service.AuditLevelInfo,
		"Event created", middleware.GetUserIDPtr(r), remoteIP(r),
		map[string]any{"event_id": event.ID, "title": event.Title})

	flashSuccess(w, r, h.renderer, RouteAdminEvents, "Event created.")
}

// Delete removes an event and its stored image.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			flashError(w, r, h.renderer, RouteAdminEvents, "Event not found.")
			return
		}
		logAndInternalError(w, "deleting event failed", "error", err, "event_id", id)
		return
	}

	_ = h.audit.LogEventAction(r.Context(), service.AuditLevelInfo,
		"Event deleted", middleware.GetUserIDPtr(r), remoteIP(r),
		map[string]any{"event_id": id})

	flashSuccess(w, r, h.renderer, RouteAdminEvents, "Event deleted.")
}

// normalizeEventTime converts the datetime-local input format
// (2006-01-02T15:04) to the stored layout. Values already in the stored
// layout pass through unchanged.
func normalizeEventTime(raw string) string {
	if len(raw) == 16 && raw[10] == 'T' {
		return raw[:10] + " " + raw[11:]
	}
	return raw
}
