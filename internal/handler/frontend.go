// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"html/template"
	"net/http"

	"github.com/rgsq/rgsq-go/internal/render"
)

// FrontendHandler serves the static society pages.
type FrontendHandler struct {
	renderer *render.Renderer
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(renderer *render.Renderer) *FrontendHandler {
	return &FrontendHandler{renderer: renderer}
}

// Home renders the homepage.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != RouteRoot {
		http.NotFound(w, r)
		return
	}
	h.renderer.Render(w, r, "home.html", "Home", nil)
}

// pageData is the payload for the generic static page template.
type pageData struct {
	Heading string
	Body    template.HTML
}

// About renders the society background page.
func (h *FrontendHandler) About(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "page.html", "About", pageData{
		Heading: "About the Society",
		Body: template.HTML(`<p>The Royal Geographical Society of Queensland was founded in 1885
to advance the study of geography and to share knowledge of Queensland's
people, places and environment through lectures, publications and field
activities.</p>`),
	})
}

// Contact renders the contact page.
func (h *FrontendHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "page.html", "Contact", pageData{
		Heading: "Contact us",
		Body: template.HTML(`<p>Visit us at 237 Milton Road, Milton, Brisbane, or write to
<a href="mailto:admin@rgsq.org.au">admin@rgsq.org.au</a>.</p>`),
	})
}

// Membership renders the membership tiers page.
func (h *FrontendHandler) Membership(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "page.html", "Membership", pageData{
		Heading: "Membership",
		Body: template.HTML(`<p>The Society offers individual, household and student
memberships. Members receive the bulletin, discounted event prices and
access to member-only lectures and field trips.</p>
<p><a href="/register">Join online</a> or contact the office.</p>`),
	})
}

// Library renders the society library page.
func (h *FrontendHandler) Library(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "page.html", "Library", pageData{
		Heading: "The library",
		Body: template.HTML(`<p>Our library holds maps, journals and expedition records
covering more than a century of Queensland geography. It is open to
members during office hours.</p>`),
	})
}

// VenueHire renders the venue hire page.
func (h *FrontendHandler) VenueHire(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "page.html", "Venue hire", pageData{
		Heading: "Venue hire",
		Body: template.HTML(`<p>Gregory Place, our Milton headquarters, is available for
meetings and functions of up to 80 people, with full audiovisual
facilities. <a href="/contact">Contact the office</a> for rates and
availability.</p>`),
	})
}

// Bulletin renders the bulletin page.
func (h *FrontendHandler) Bulletin(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "page.html", "Bulletin", pageData{
		Heading: "The bulletin",
		Body: template.HTML(`<p>The Society's bulletin is published monthly with lecture
notes, trip reports and geographical commentary. Members receive each
issue by email; back issues are held in the library.</p>`),
	})
}

// News renders the society news page.
func (h *FrontendHandler) News(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "page.html", "News", pageData{
		Heading: "Society news",
		Body: template.HTML(`<p>For upcoming lectures, seminars and field trips see the
<a href="/Eventlist.html">events calendar</a>. Announcements between
bulletins are posted here.</p>`),
	})
}
