// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestLoginRedirectsByRole(t *testing.T) {
	app := newTestApp(t)
	createTestUser(t, app.db, "member@example.com", "password123", "member", true)
	createTestUser(t, app.db, "staff@example.com", "password123", "staff", true)

	rec := app.postForm(t, RouteLogin, url.Values{
		"email":    {"member@example.com"},
		"password": {"password123"},
	}, nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteRoot {
		t.Errorf("member login: status %d location %q, want 303 to %s",
			rec.Code, rec.Header().Get("Location"), RouteRoot)
	}

	rec = app.postForm(t, RouteLogin, url.Values{
		"email":    {"staff@example.com"},
		"password": {"password123"},
	}, nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteStaff {
		t.Errorf("staff login: status %d location %q, want 303 to %s",
			rec.Code, rec.Header().Get("Location"), RouteStaff)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	app := newTestApp(t)
	createTestUser(t, app.db, "member@example.com", "password123", "member", true)

	for _, form := range []url.Values{
		{"email": {"member@example.com"}, "password": {"wrong"}},
		{"email": {"nobody@example.com"}, "password": {"password123"}},
	} {
		rec := app.postForm(t, RouteLogin, form, nil)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteLogin {
			t.Errorf("invalid login: status %d location %q, want 303 back to %s",
				rec.Code, rec.Header().Get("Location"), RouteLogin)
		}
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	app := newTestApp(t)
	createTestUser(t, app.db, "old@example.com", "password123", "member", false)

	rec := app.postForm(t, RouteLogin, url.Values{
		"email":    {"old@example.com"},
		"password": {"password123"},
	}, nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteLogin {
		t.Errorf("disabled login: status %d location %q, want 303 back to %s",
			rec.Code, rec.Header().Get("Location"), RouteLogin)
	}
}

func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	app := newTestApp(t)
	createTestUser(t, app.db, "member@example.com", "password123", "member", true)

	app.login(t, "  Member@Example.COM ", "password123")
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t)
	createTestUser(t, app.db, "staff@example.com", "password123", "staff", true)
	cookies := app.login(t, "staff@example.com", "password123")

	rec := app.get(t, RouteLogout, cookies)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteRoot {
		t.Fatalf("logout: status %d location %q", rec.Code, rec.Header().Get("Location"))
	}

	// The old cookie no longer grants access to staff pages.
	rec = app.get(t, RouteStaff, cookies)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteLogin {
		t.Errorf("staff after logout: status %d location %q, want 303 to %s",
			rec.Code, rec.Header().Get("Location"), RouteLogin)
	}
}

func TestRegisterCreatesMember(t *testing.T) {
	app := newTestApp(t)

	rec := app.postForm(t, RouteRegister, url.Values{
		"full_name":  {"New Member"},
		"email":      {"new@example.com"},
		"membership": {"individual"},
		"password":   {"password123"},
	}, nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteLogin {
		t.Fatalf("register: status %d location %q", rec.Code, rec.Header().Get("Location"))
	}

	var role string
	var active bool
	err := app.db.QueryRow(`SELECT role, is_active FROM users WHERE email = 'new@example.com'`).Scan(&role, &active)
	if err != nil {
		t.Fatalf("registered user not found: %v", err)
	}
	if role != "member" || !active {
		t.Errorf("registered user role=%q active=%v, want member/true", role, active)
	}

	app.login(t, "new@example.com", "password123")
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{"missing email", url.Values{"full_name": {"X"}, "password": {"password123"}}},
		{"missing name", url.Values{"email": {"x@example.com"}, "password": {"password123"}}},
		{"short password", url.Values{"full_name": {"X"}, "email": {"x@example.com"}, "password": {"short"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.postForm(t, RouteRegister, tt.form, nil)
			if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteRegister {
				t.Errorf("status %d location %q, want 303 back to %s",
					rec.Code, rec.Header().Get("Location"), RouteRegister)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	createTestUser(t, app.db, "taken@example.com", "password123", "member", true)

	rec := app.postForm(t, RouteRegister, url.Values{
		"full_name": {"Someone Else"},
		"email":     {"Taken@Example.com"},
		"password":  {"password123"},
	}, nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteRegister {
		t.Errorf("duplicate register: status %d location %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestAdminSignupRequiresInviteCode(t *testing.T) {
	app := newTestApp(t)

	rec := app.postForm(t, RouteAdminSignup, url.Values{
		"full_name":   {"Impostor"},
		"email":       {"impostor@example.com"},
		"role":        {"admin"},
		"invite_code": {"WRONG"},
		"password":    {"password123"},
	}, nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteAdminSignup {
		t.Fatalf("bad invite: status %d location %q", rec.Code, rec.Header().Get("Location"))
	}

	var count int
	if err := app.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("user count = %d after rejected signup, want 0", count)
	}
}

func TestAdminSignupCreatesStaff(t *testing.T) {
	app := newTestApp(t)

	rec := app.postForm(t, RouteAdminSignup, url.Values{
		"full_name":   {"New Staff"},
		"email":       {"staff@example.com"},
		"role":        {"staff"},
		"invite_code": {"TEAM305"},
		"password":    {"password123"},
	}, nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteLogin {
		t.Fatalf("staff signup: status %d location %q", rec.Code, rec.Header().Get("Location"))
	}

	cookies := app.login(t, "staff@example.com", "password123")
	if rec := app.get(t, RouteStaff, cookies); rec.Code != http.StatusOK {
		t.Errorf("staff page after signup: status %d, want 200", rec.Code)
	}
}

func TestAdminSignupRejectsMemberRole(t *testing.T) {
	app := newTestApp(t)

	rec := app.postForm(t, RouteAdminSignup, url.Values{
		"full_name":   {"Sneaky"},
		"email":       {"sneaky@example.com"},
		"role":        {"member"},
		"invite_code": {"TEAM305"},
		"password":    {"password123"},
	}, nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteAdminSignup {
		t.Errorf("member role signup: status %d location %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLoginFormRedirectsAuthenticated(t *testing.T) {
	app := newTestApp(t)
	createTestUser(t, app.db, "member@example.com", "password123", "member", true)
	cookies := app.login(t, "member@example.com", "password123")

	rec := app.get(t, RouteLogin, cookies)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteRoot {
		t.Errorf("login form while authenticated: status %d location %q",
			rec.Code, rec.Header().Get("Location"))
	}
}

func TestLoginFormRendersForAnonymous(t *testing.T) {
	app := newTestApp(t)

	rec := app.get(t, RouteLogin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login form: status %d, want 200", rec.Code)
	}
	if !strings.Contains(body(rec), `name="password"`) {
		t.Error("login form missing password field")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30 seconds"},
		{time.Minute, "1 minutes"},
		{15 * time.Minute, "15 minutes"},
		{90 * time.Second, "2 minutes"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
