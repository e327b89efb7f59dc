// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command rgsq runs the Royal Geographical Society of Queensland
// membership and events site.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/rgsq/rgsq-go/internal/config"
	"github.com/rgsq/rgsq-go/internal/handler"
	"github.com/rgsq/rgsq-go/internal/middleware"
	"github.com/rgsq/rgsq-go/internal/render"
	"github.com/rgsq/rgsq-go/internal/service"
	"github.com/rgsq/rgsq-go/internal/session"
	"github.com/rgsq/rgsq-go/internal/store"
)

var appVersion = "dev"

// auditRetention is how long audit log entries are kept.
const auditRetention = 90 * 24 * time.Hour

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "rgsq - RGSQ membership and events site\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RGSQ_SESSION_SECRET     Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RGSQ_DB_PATH            SQLite database path (default: ./data/rgsq.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RGSQ_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RGSQ_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RGSQ_UPLOADS_DIR        Event image directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RGSQ_ADMIN_INVITE_CODE  Invite code for staff signup\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RGSQ_SMTP_HOST          SMTP host; email is skipped when unset\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RGSQ_DO_SEED            Seed the default admin and demo events\n")
	}
	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("rgsq %s\n", appVersion)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development convenience)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	setupLogger(cfg)

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	if cfg.DoSeed {
		slog.Info("seeding database")
		if err := store.Seed(context.Background(), db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}
	slog.Info("database ready")

	sm := session.New(db, cfg.IsDevelopment())

	renderer, err := render.New(sm)
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	uploads, err := service.NewUploadService(cfg.UploadsDir)
	if err != nil {
		return fmt.Errorf("initializing upload store: %w", err)
	}

	identity := service.NewIdentityService(db)
	catalog := service.NewCatalogService(db, uploads)
	notifier := service.NewNotifier(cfg)
	audit := service.NewAuditService(db)
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	if cfg.SMTPEnabled() {
		slog.Info("email notifications enabled", "host", cfg.SMTPHost, "from", cfg.SMTPFrom)
	} else {
		slog.Info("email notifications disabled: SMTP not configured")
	}

	authHandler := handler.NewAuthHandler(cfg, identity, notifier, audit, renderer, sm, loginProtection)
	eventHandler := handler.NewEventHandler(catalog, notifier, audit, renderer, sm)
	adminHandler := handler.NewAdminHandler(catalog, uploads, audit, renderer)
	frontendHandler := handler.NewFrontendHandler(renderer)
	healthHandler := handler.NewHealthHandler(db)

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment()))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(middleware.SecurityHeaders(cfg.IsDevelopment()))

	r.Get(handler.RouteHealth, healthHandler.Health)

	// Stored event images
	fileServer := http.StripPrefix(handler.RouteUploads+"/", http.FileServer(http.Dir(uploads.Dir())))
	r.Get(handler.RouteUploads+"/*", fileServer.ServeHTTP)

	// Session-backed pages
	r.Group(func(r chi.Router) {
		r.Use(sm.LoadAndSave)
		r.Use(csrfMiddleware)
		r.Use(middleware.LoadUser(sm, db))

		r.Get(handler.RouteRoot, frontendHandler.Home)
		r.Get(handler.RouteAbout, frontendHandler.About)
		r.Get(handler.RouteContact, frontendHandler.Contact)
		r.Get(handler.RouteMembership, frontendHandler.Membership)
		r.Get(handler.RouteLibrary, frontendHandler.Library)
		r.Get(handler.RouteVenueHire, frontendHandler.VenueHire)
		r.Get(handler.RouteBulletin, frontendHandler.Bulletin)
		r.Get(handler.RouteNews, frontendHandler.News)

		r.Get(handler.RouteEventList, eventHandler.List)
		r.Get(handler.RouteEventDetail, eventHandler.Detail)
		r.Get(handler.RouteEventRegister, eventHandler.RegisterForm)
		r.Post(handler.RouteEventRegister, eventHandler.Register)
		r.Get(handler.RouteEventRegisterConfirm, eventHandler.RegisterConfirm)

		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Get(handler.RouteLogout, authHandler.Logout)
		r.Get(handler.RouteRegister, authHandler.RegisterForm)
		r.Post(handler.RouteRegister, authHandler.Register)
		r.Get(handler.RouteAdminSignup, authHandler.AdminSignupForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteAdminSignup, authHandler.AdminSignup)

		// Staff-only routes behind the access gate
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireElevated(sm, audit))
			r.Get(handler.RouteAdmin, func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, handler.RouteStaff, http.StatusSeeOther)
			})
			r.Get(handler.RouteStaff, adminHandler.Staff)
			r.Get(handler.RouteCreate, adminHandler.CreateForm)
			r.Post(handler.RouteCreate, adminHandler.Create)
			r.Get(handler.RouteAdminEvents, adminHandler.Events)
			r.Post(handler.RouteAdminEventDelete, adminHandler.Delete)
		})
	})

	// Nightly audit log pruning
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := audit.DeleteOldEntries(ctx, auditRetention); err != nil {
			slog.Error("audit log pruning failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("scheduling audit pruning: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // allow for image uploads on slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// setupLogger configures the process-wide slog default: text in
// development, JSON in production.
func setupLogger(cfg *config.Config) {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var h slog.Handler
	if cfg.IsDevelopment() {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(h))
}
