// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rgsq/rgsq-go/internal/model"
	"github.com/rgsq/rgsq-go/internal/service"
)

// displayTimeLayout is how event times are shown on pages.
const displayTimeLayout = "Mon 2 Jan 2006, 3:04 PM"

// eventView is an Event shaped for templates.
type eventView struct {
	ID         int64
	Title      string
	TimeLabel  string
	PriceLabel string
	Visibility string
	MemberOnly bool
}

func newEventView(e model.Event) eventView {
	return eventView{
		ID:         e.ID,
		Title:      e.Title,
		TimeLabel:  timeLabel(e.EventTime),
		PriceLabel: e.PriceLabel(),
		Visibility: e.Visibility,
		MemberOnly: e.IsMemberOnly(),
	}
}

// timeLabel formats a stored event time for display. Unparseable values
// fall back to the stored string.
func timeLabel(stored string) string {
	t, err := time.Parse(model.EventTimeLayout, stored)
	if err != nil {
		return stored
	}
	return t.Format(displayTimeLayout)
}

// eventListData is the template payload for paginated event listings.
type eventListData struct {
	Events     []eventView
	Page       int
	TotalPages int
	PrevPage   int
	NextPage   int
	HasPrev    bool
	HasNext    bool
}

func buildEventListData(page service.EventPage) eventListData {
	data := eventListData{
		Events:     make([]eventView, 0, len(page.Items)),
		Page:       page.Page,
		TotalPages: page.TotalPages,
		PrevPage:   page.Page - 1,
		NextPage:   page.Page + 1,
		HasPrev:    page.Page > 1,
		HasNext:    page.Page < page.TotalPages,
	}
	for _, e := range page.Items {
		data.Events = append(data.Events, newEventView(e))
	}
	return data
}

// pageParam reads the "page" query parameter, defaulting to 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
