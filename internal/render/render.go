// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render loads the embedded HTML templates and renders pages
// with shared chrome: current user, flash messages, and sanitized
// markdown for event descriptions.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/rgsq/rgsq-go/internal/middleware"
	"github.com/rgsq/rgsq-go/internal/model"
)

//go:embed templates/*.html
var templates embed.FS

// Flash is a one-shot message stored in the session.
type Flash struct {
	Message string
	Type    string // info, success, warning, danger
}

// PageData is the payload handed to every template.
type PageData struct {
	Title     string
	User      *model.User
	Flash     *Flash
	CSRFToken string
	Data      any
}

// Renderer renders embedded templates with session-backed flash messages.
type Renderer struct {
	pages          map[string]*template.Template
	sessionManager *scs.SessionManager
	markdown       goldmark.Markdown
	sanitizer      *bluemonday.Policy
}

// New parses the embedded templates and returns a Renderer.
func New(sm *scs.SessionManager) (*Renderer, error) {
	base, err := template.New("base").Funcs(template.FuncMap{
		"priceLabel": func(e model.Event) string { return e.PriceLabel() },
	}).ParseFS(templates, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	entries, err := fs.Glob(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("globbing templates: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, entry := range entries {
		name := strings.TrimPrefix(entry, "templates/")
		if name == "base.html" {
			continue
		}
		tmpl, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base template: %w", err)
		}
		if _, err := tmpl.ParseFS(templates, entry); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{
		pages:          pages,
		sessionManager: sm,
		markdown:       goldmark.New(),
		sanitizer:      bluemonday.UGCPolicy(),
	}, nil
}

// Render writes the named page. Rendering failures log and return a 500;
// they never panic.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	tmpl, ok := rd.pages[name]
	if !ok {
		slog.Error("unknown template", "name", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	pd := PageData{
		Title:     title,
		User:      middleware.GetUser(r),
		Flash:     rd.popFlash(r),
		CSRFToken: rd.sessionManager.Token(r.Context()),
		Data:      data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", pd); err != nil {
		slog.Error("template execution failed", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// SetFlash stores a one-shot message in the session.
func (rd *Renderer) SetFlash(r *http.Request, message, messageType string) {
	rd.sessionManager.Put(r.Context(), "flash", message)
	rd.sessionManager.Put(r.Context(), "flash_type", messageType)
}

func (rd *Renderer) popFlash(r *http.Request) *Flash {
	message := rd.sessionManager.PopString(r.Context(), "flash")
	if message == "" {
		return nil
	}
	flashType := rd.sessionManager.PopString(r.Context(), "flash_type")
	if flashType == "" {
		flashType = "info"
	}
	return &Flash{Message: message, Type: flashType}
}

// DescriptionHTML renders an event description from markdown and
// sanitizes the result for embedding.
func (rd *Renderer) DescriptionHTML(description string) template.HTML {
	var buf bytes.Buffer
	if err := rd.markdown.Convert([]byte(description), &buf); err != nil {
		// Fall back to the escaped plain text
		return template.HTML(template.HTMLEscapeString(description))
	}
	return template.HTML(rd.sanitizer.SanitizeBytes(buf.Bytes()))
}
