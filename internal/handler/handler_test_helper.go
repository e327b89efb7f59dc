package handler

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"github.com/rgsq/rgsq-go/internal/auth"
	"github.com/rgsq/rgsq-go/internal/config"
	"github.com/rgsq/rgsq-go/internal/middleware"
	"github.com/rgsq/rgsq-go/internal/render"
	"github.com/rgsq/rgsq-go/internal/service"
)

// testDB creates an in-memory SQLite database with the required schema for testing.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	schema := `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			full_name TEXT,
			password_hash TEXT NOT NULL,
			membership TEXT,
			role TEXT NOT NULL DEFAULT 'member',
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login_at DATETIME
		);
		CREATE INDEX idx_users_email ON users(email);

		CREATE TABLE events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			event_time TEXT NOT NULL,
			location TEXT NOT NULL,
			price REAL,
			description TEXT,
			image TEXT,
			visibility TEXT NOT NULL DEFAULT 'public',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX idx_events_event_time ON events(event_time);

		CREATE TABLE audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level TEXT NOT NULL DEFAULT 'info',
			category TEXT NOT NULL DEFAULT 'system',
			message TEXT NOT NULL,
			user_id INTEGER,
			ip_address TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}
	return db
}

// testApp wires the full handler stack over an in-memory database,
// mirroring the production router minus CSRF.
type testApp struct {
	db      *sql.DB
	cfg     *config.Config
	catalog *service.CatalogService
	router  http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := testDB(t)
	cfg := &config.Config{AdminInviteCode: "TEAM305"}

	sm := scs.New()
	sm.Lifetime = time.Hour

	renderer, err := render.New(sm)
	if err != nil {
		t.Fatalf("creating renderer: %v", err)
	}

	uploads, err := service.NewUploadService(t.TempDir())
	if err != nil {
		t.Fatalf("creating upload service: %v", err)
	}

	identity := service.NewIdentityService(db)
	catalog := service.NewCatalogService(db, uploads)
	notifier := service.NewNotifier(cfg)
	audit := service.NewAuditService(db)
	lp := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	authHandler := NewAuthHandler(cfg, identity, notifier, audit, renderer, sm, lp)
	eventHandler := NewEventHandler(catalog, notifier, audit, renderer, sm)
	adminHandler := NewAdminHandler(catalog, uploads, audit, renderer)
	frontendHandler := NewFrontendHandler(renderer)
	healthHandler := NewHealthHandler(db)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.LoadUser(sm, db))

	r.Get(RouteRoot, frontendHandler.Home)
	r.Get(RouteAbout, frontendHandler.About)
	r.Get(RouteContact, frontendHandler.Contact)
	r.Get(RouteMembership, frontendHandler.Membership)
	r.Get(RouteLibrary, frontendHandler.Library)
	r.Get(RouteVenueHire, frontendHandler.VenueHire)
	r.Get(RouteBulletin, frontendHandler.Bulletin)
	r.Get(RouteNews, frontendHandler.News)
	r.Get(RouteHealth, healthHandler.Health)
	r.Get(RouteEventList, eventHandler.List)
	r.Get(RouteEventDetail, eventHandler.Detail)
	r.Get(RouteEventRegister, eventHandler.RegisterForm)
	r.Post(RouteEventRegister, eventHandler.Register)
	r.Get(RouteEventRegisterConfirm, eventHandler.RegisterConfirm)
	r.Get(RouteLogin, authHandler.LoginForm)
	r.Post(RouteLogin, authHandler.Login)
	r.Get(RouteLogout, authHandler.Logout)
	r.Get(RouteRegister, authHandler.RegisterForm)
	r.Post(RouteRegister, authHandler.Register)
	r.Get(RouteAdminSignup, authHandler.AdminSignupForm)
	r.Post(RouteAdminSignup, authHandler.AdminSignup)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireElevated(sm, audit))
		r.Get(RouteStaff, adminHandler.Staff)
		r.Get(RouteCreate, adminHandler.CreateForm)
		r.Post(RouteCreate, adminHandler.Create)
		r.Get(RouteAdminEvents, adminHandler.Events)
		r.Post(RouteAdminEventDelete, adminHandler.Delete)
	})

	return &testApp{db: db, cfg: cfg, catalog: catalog, router: r}
}

// createTestUser inserts a user with a real password hash and returns its ID.
func createTestUser(t *testing.T, db *sql.DB, email, password, role string, active bool) int64 {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	res, err := db.Exec(
		`INSERT INTO users (email, full_name, password_hash, role, is_active) VALUES (?, ?, ?, ?, ?)`,
		email, "Test User", hash, role, active,
	)
	if err != nil {
		t.Fatalf("inserting user: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// insertTestEvent inserts an event row directly and returns its ID.
func insertTestEvent(t *testing.T, db *sql.DB, title, eventTime, visibility string) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO events (title, event_time, location, visibility) VALUES (?, ?, 'Brisbane', ?)`,
		title, eventTime, visibility,
	)
	if err != nil {
		t.Fatalf("inserting event: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// get performs a GET request with the given session cookies.
func (app *testApp) get(t *testing.T, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

// postForm performs a form POST with the given session cookies.
func (app *testApp) postForm(t *testing.T, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

// login authenticates through the real login handler and returns the
// session cookies for follow-up requests.
func (app *testApp) login(t *testing.T, email, password string) []*http.Cookie {
	t.Helper()
	rec := app.postForm(t, RouteLogin, url.Values{
		"email":    {email},
		"password": {password},
	}, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc == RouteLogin {
		t.Fatalf("login bounced back to %s", loc)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login set no session cookie")
	}
	return cookies
}

// body reads a recorder's body as a string.
func body(rec *httptest.ResponseRecorder) string {
	b, _ := io.ReadAll(rec.Body)
	return string(b)
}
