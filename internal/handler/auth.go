// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/rgsq/rgsq-go/internal/config"
	"github.com/rgsq/rgsq-go/internal/middleware"
	"github.com/rgsq/rgsq-go/internal/model"
	"github.com/rgsq/rgsq-go/internal/render"
	"github.com/rgsq/rgsq-go/internal/service"
)

// minPasswordLength is the minimum accepted password length at signup.
const minPasswordLength = 8

// AuthHandler handles login, logout and both signup flows.
type AuthHandler struct {
	cfg             *config.Config
	identity        *service.IdentityService
	notifier        *service.Notifier
	audit           *service.AuditService
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	cfg *config.Config,
	identity *service.IdentityService,
	notifier *service.Notifier,
	audit *service.AuditService,
	renderer *render.Renderer,
	sm *scs.SessionManager,
	lp *middleware.LoginProtection,
) *AuthHandler {
	return &AuthHandler{
		cfg:             cfg,
		identity:        identity,
		notifier:        notifier,
		audit:           audit,
		renderer:        renderer,
		sessionManager:  sm,
		loginProtection: lp,
	}
}

// LoginForm renders the login page. Already-authenticated users are
// sent back to where they belong.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if user := middleware.GetUser(r); user != nil {
		if user.IsElevated() {
			http.Redirect(w, r, RouteStaff, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, r, "login.html", "Log in", nil)
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteLogin, "Invalid form data")
		return
	}

	email := service.NormalizeEmail(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		flashError(w, r, h.renderer, RouteLogin, "Email and password are required")
		return
	}

	ip := remoteIP(r)

	if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
		_ = h.audit.LogAuthEvent(r.Context(), service.AuditLevelWarning,
			"Login attempt on locked account", nil, ip, map[string]any{"email": email})
		flashError(w, r, h.renderer, RouteLogin,
			fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(remaining)))
		return
	}

	user, err := h.identity.Authenticate(r.Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountDisabled):
			_ = h.audit.LogAuthEvent(r.Context(), service.AuditLevelWarning,
				"Login rejected: account disabled", nil, ip, map[string]any{"email": email})
			flashError(w, r, h.renderer, RouteLogin, "This account has been disabled. Please contact the office.")
		case errors.Is(err, service.ErrInvalidCredentials):
			_ = h.audit.LogAuthEvent(r.Context(), service.AuditLevelWarning,
				"Login failed: invalid credentials", nil, ip, map[string]any{"email": email})
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
				flashError(w, r, h.renderer, RouteLogin,
					fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(lockDuration)))
				return
			}
			if remaining := h.loginProtection.RemainingAttempts(email); remaining > 0 && remaining <= 3 {
				flashError(w, r, h.renderer, RouteLogin,
					fmt.Sprintf("Invalid email or password. %d attempts remaining.", remaining))
				return
			}
			flashError(w, r, h.renderer, RouteLogin, "Invalid email or password")
		default:
			logAndInternalError(w, "login failed", "error", err)
		}
		return
	}

	h.loginProtection.RecordSuccess(email)

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	_ = h.audit.LogAuthEvent(r.Context(), service.AuditLevelInfo,
		"User logged in", &user.ID, ip, map[string]any{"email": user.Email})

	h.renderer.SetFlash(r, "Welcome back!", "success")
	if user.IsElevated() {
		http.Redirect(w, r, RouteStaff, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
}

// Logout destroys the session and returns to the homepage.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDPtr(r)
	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		logAndInternalError(w, "session destroy error", "error", err)
		return
	}
	_ = h.audit.LogAuthEvent(r.Context(), service.AuditLevelInfo,
		"User logged out", userID, remoteIP(r), nil)
	flashSuccess(w, r, h.renderer, RouteRoot, "You have been logged out.")
}

// RegisterForm renders the public member signup page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "register.html", "Join the Society", nil)
}

// Register handles the public member signup submission.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteRegister, "Invalid form data")
		return
	}

	arg := service.RegisterParams{
		Email:      r.FormValue("email"),
		FullName:   r.FormValue("full_name"),
		Membership: r.FormValue("membership"),
		Password:   r.FormValue("password"),
	}
	if msg := validateSignup(arg.Email, arg.FullName, arg.Password); msg != "" {
		flashError(w, r, h.renderer, RouteRegister, msg)
		return
	}

	user, err := h.identity.Register(r.Context(), arg)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			flashError(w, r, h.renderer, RouteRegister, "An account with that email already exists.")
			return
		}
		logAndInternalError(w, "member registration failed", "error", err)
		return
	}

	_ = h.audit.LogUserEvent(r.Context(), service.AuditLevelInfo,
		"Member account created", &user.ID, remoteIP(r), map[string]any{"email": user.Email})

	if result := h.notifier.SendWelcome(&user); result.Status == service.DeliveryFailed {
		slog.Warn("welcome email not delivered", "user_id", user.ID, "result", result.String())
	}

	flashSuccess(w, r, h.renderer, RouteLogin, "Account created. Please log in.")
}

// AdminSignupForm renders the invite-gated staff signup page.
func (h *AuthHandler) AdminSignupForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "admin_signup.html", "Staff sign-up", nil)
}

// AdminSignup handles the invite-gated staff/admin signup submission.
// The invite code is a static shared secret; comparison is constant-time
// to avoid leaking prefix matches.
func (h *AuthHandler) AdminSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteAdminSignup, "Invalid form data")
		return
	}

	code := r.FormValue("invite_code")
	if subtle.ConstantTimeCompare([]byte(code), []byte(h.cfg.AdminInviteCode)) != 1 {
		_ = h.audit.LogAuthEvent(r.Context(), service.AuditLevelWarning,
			"Staff signup rejected: bad invite code", nil, remoteIP(r),
			map[string]any{"email": service.NormalizeEmail(r.FormValue("email"))})
		flashError(w, r, h.renderer, RouteAdminSignup, "Invalid invite code.")
		return
	}

	role := r.FormValue("role")
	if role != model.RoleStaff && role != model.RoleAdmin {
		flashError(w, r, h.renderer, RouteAdminSignup, "Role must be staff or admin.")
		return
	}

	arg := service.RegisterParams{
		Email:    r.FormValue("email"),
		FullName: r.FormValue("full_name"),
		Password: r.FormValue("password"),
		Role:     role,
	}
	if msg := validateSignup(arg.Email, arg.FullName, arg.Password); msg != "" {
		flashError(w, r, h.renderer, RouteAdminSignup, msg)
		return
	}

	user, err := h.identity.Register(r.Context(), arg)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			flashError(w, r, h.renderer, RouteAdminSignup, "An account with that email already exists.")
			return
		}
		logAndInternalError(w, "staff registration failed", "error", err)
		return
	}

	_ = h.audit.LogUserEvent(r.Context(), service.AuditLevelInfo,
		"Staff account created", &user.ID, remoteIP(r),
		map[string]any{"email": user.Email, "role": user.Role})

	if result := h.notifier.SendWelcome(&user); result.Status == service.DeliveryFailed {
		slog.Warn("welcome email not delivered", "user_id", user.ID, "result", result.String())
	}

	flashSuccess(w, r, h.renderer, RouteLogin, "Staff account created. Please log in.")
}

// validateSignup returns a user-facing message for invalid signup input,
// or the empty string when the input is acceptable.
func validateSignup(email, fullName, password string) string {
	if service.NormalizeEmail(email) == "" || fullName == "" {
		return "Name and email are required."
	}
	if len(password) < minPasswordLength {
		return fmt.Sprintf("Password must be at least %d characters.", minPasswordLength)
	}
	return ""
}

// formatDuration renders a lockout duration for flash messages.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	return fmt.Sprintf("%d minutes", int(d.Minutes()+0.5))
}
