// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/rgsq/rgsq-go/internal/model"
	"github.com/rgsq/rgsq-go/internal/service"
)

func TestPageParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 1},
		{"?page=3", 3},
		{"?page=0", 1},
		{"?page=-2", 1},
		{"?page=abc", 1},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/Eventlist.html"+tt.query, nil)
		if got := pageParam(r); got != tt.want {
			t.Errorf("pageParam(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestTimeLabel(t *testing.T) {
	if got := timeLabel("2026-10-01 18:00"); got != "Thu 1 Oct 2026, 6:00 PM" {
		t.Errorf("timeLabel = %q", got)
	}
	// Unparseable values pass through untouched.
	if got := timeLabel("sometime soon"); got != "sometime soon" {
		t.Errorf("timeLabel fallback = %q", got)
	}
}

func TestBuildEventListData(t *testing.T) {
	page := service.EventPage{
		Items: []model.Event{
			{ID: 1, Title: "Lecture", EventTime: "2026-10-01 18:00", Visibility: model.VisibilityMember},
		},
		Page:       2,
		TotalPages: 3,
		TotalItems: 13,
	}

	data := buildEventListData(page)
	if !data.HasPrev || !data.HasNext {
		t.Errorf("middle page should have both neighbours: %+v", data)
	}
	if data.PrevPage != 1 || data.NextPage != 3 {
		t.Errorf("neighbour pages = %d/%d, want 1/3", data.PrevPage, data.NextPage)
	}
	if len(data.Events) != 1 || !data.Events[0].MemberOnly {
		t.Errorf("events = %+v", data.Events)
	}

	last := buildEventListData(service.EventPage{Page: 3, TotalPages: 3})
	if last.HasNext {
		t.Error("last page should not advertise a next page")
	}
}
