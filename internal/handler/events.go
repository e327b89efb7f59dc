// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/rgsq/rgsq-go/internal/middleware"
	"github.com/rgsq/rgsq-go/internal/model"
	"github.com/rgsq/rgsq-go/internal/render"
	"github.com/rgsq/rgsq-go/internal/service"
)

// Session keys carrying registration details across the
// post-redirect-get to the confirmation page.
const (
	sessionKeyRegName  = "registration_name"
	sessionKeyRegEmail = "registration_email"
	sessionKeyRegSent  = "registration_email_sent"
)

// EventHandler serves the public event pages.
type EventHandler struct {
	catalog        *service.CatalogService
	notifier       *service.Notifier
	audit          *service.AuditService
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(catalog *service.CatalogService, notifier *service.Notifier, audit *service.AuditService, renderer *render.Renderer, sm *scs.SessionManager) *EventHandler {
	return &EventHandler{
		catalog:        catalog,
		notifier:       notifier,
		audit:          audit,
		renderer:       renderer,
		sessionManager: sm,
	}
}

// List renders the paginated event listing. Members and staff see
// member-only events alongside public ones; everyone else sees only
// the public set.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	page, err := h.catalog.List(r.Context(), user.CanViewMemberEvents(), pageParam(r), service.DefaultPageSize)
	if err != nil {
		logAndInternalError(w, "listing events failed", "error", err)
		return
	}
	h.renderer.Render(w, r, "event_list.html", "Upcoming events", buildEventListData(page))
}

// eventDetailData is the template payload for the event detail page.
type eventDetailData struct {
	Event           model.Event
	TimeLabel       string
	ImageURL        string
	DescriptionHTML template.HTML
}

// Detail renders a single event page, enforcing visibility.
func (h *EventHandler) Detail(w http.ResponseWriter, r *http.Request) {
	event, ok := h.visibleEvent(w, r)
	if !ok {
		return
	}

	data := eventDetailData{
		Event:     event,
		TimeLabel: timeLabel(event.EventTime),
	}
	if event.Image.Valid {
		data.ImageURL = RouteUploads + "/" + event.Image.String
	}
	if event.Description.Valid {
		data.DescriptionHTML = h.renderer.DescriptionHTML(event.Description.String)
	}

	h.renderer.Render(w, r, "event_detail.html", event.Title, data)
}

// eventRegisterData is the template payload for the registration form
// and the confirmation page.
type eventRegisterData struct {
	Event     model.Event
	TimeLabel string
	Name      string
	Email     string
	EmailSent bool
}

// RegisterForm renders the event registration form, prefilled from the
// current account when one is logged in.
func (h *EventHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	event, ok := h.visibleEvent(w, r)
	if !ok {
		return
	}

	data := eventRegisterData{Event: event, TimeLabel: timeLabel(event.EventTime)}
	if user := middleware.GetUser(r); user != nil {
		data.Email = user.Email
		if user.FullName.Valid {
			data.Name = user.FullName.String
		}
	}

	h.renderer.Render(w, r, "event_register.html", "Register: "+event.Title, data)
}

// Register records an event registration, then redirects to the
// confirmation page so a refresh cannot resubmit. The confirmation email
// is best effort: a skipped or failed delivery never blocks the
// registration.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	event, ok := h.visibleEvent(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteEventList, "Invalid form data")
		return
	}
	name := r.FormValue("name")
	email := service.NormalizeEmail(r.FormValue("email"))
	if name == "" || email == "" {
		flashError(w, r, h.renderer, eventRegisterURL(event.ID), "Name and email are required.")
		return
	}

	_ = h.audit.LogEventAction(r.Context(), service.AuditLevelInfo,
		"Event registration received", middleware.GetUserIDPtr(r), remoteIP(r),
		map[string]any{"event_id": event.ID, "email": email})

	result := h.notifier.SendEventRegistration(email, &event)
	if result.Status != service.DeliverySent {
		slog.Info("registration email not sent", "event_id", event.ID, "result", result.String())
	}

	h.sessionManager.Put(r.Context(), sessionKeyRegName, name)
	h.sessionManager.Put(r.Context(), sessionKeyRegEmail, email)
	h.sessionManager.Put(r.Context(), sessionKeyRegSent, result.Status == service.DeliverySent)
	http.Redirect(w, r, eventRegisterURL(event.ID)+"/confirm", http.StatusSeeOther)
}

// RegisterConfirm renders the confirmation page from the details stored
// by Register. Arriving without a pending registration falls back to the
// registration form.
func (h *EventHandler) RegisterConfirm(w http.ResponseWriter, r *http.Request) {
	event, ok := h.visibleEvent(w, r)
	if !ok {
		return
	}

	name := h.sessionManager.PopString(r.Context(), sessionKeyRegName)
	if name == "" {
		http.Redirect(w, r, eventRegisterURL(event.ID), http.StatusSeeOther)
		return
	}

	data := eventRegisterData{
		Event:     event,
		TimeLabel: timeLabel(event.EventTime),
		Name:      name,
		Email:     h.sessionManager.PopString(r.Context(), sessionKeyRegEmail),
		EmailSent: h.sessionManager.PopBool(r.Context(), sessionKeyRegSent),
	}
	h.renderer.Render(w, r, "event_confirm.html", "Registration received", data)
}

// visibleEvent loads the event in the URL subject to the caller's
// visibility. On failure it writes the response and returns ok=false.
func (h *EventHandler) visibleEvent(w http.ResponseWriter, r *http.Request) (model.Event, bool) {
	id, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return model.Event{}, false
	}

	user := middleware.GetUser(r)
	event, err := h.catalog.GetVisible(r.Context(), id, user.CanViewMemberEvents())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMemberOnly):
			if user == nil {
				flashAndRedirect(w, r, h.renderer, RouteLogin,
					"This event is for members. Please log in.", "warning")
				return model.Event{}, false
			}
			flashError(w, r, h.renderer, RouteEventList, "This event is open to members only.")
		case errors.Is(err, service.ErrNotFound):
			http.NotFound(w, r)
		default:
			logAndInternalError(w, "loading event failed", "error", err, "event_id", id)
		}
		return model.Event{}, false
	}
	return event, true
}

func eventRegisterURL(id int64) string {
	return "/events/" + formatID(id) + "/register"
}
