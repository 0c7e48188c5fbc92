// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/adminpanel/internal/apiclient"
	"github.com/olegiv/adminpanel/internal/config"
	"github.com/olegiv/adminpanel/internal/handler"
	"github.com/olegiv/adminpanel/internal/logging"
	"github.com/olegiv/adminpanel/internal/middleware"
	"github.com/olegiv/adminpanel/internal/render"
	"github.com/olegiv/adminpanel/internal/router"
	"github.com/olegiv/adminpanel/internal/scheduler"
	"github.com/olegiv/adminpanel/internal/session"
	"github.com/olegiv/adminpanel/internal/store"
	"github.com/olegiv/adminpanel/internal/version"
	"github.com/olegiv/adminpanel/web"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "adminpanel - admin dashboard for the user API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  APP_SESSION_SECRET       Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  APP_API_BASE_URL         Upstream user API (default: http://localhost:3000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  APP_DB_PATH              SQLite database path (default: ./data/adminpanel.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  APP_SERVER_PORT          Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  APP_ENV                  Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  APP_REDIS_URL            Redis URL for session storage (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  APP_THEME                Default UI theme (default: light)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  APP_ENFORCE_ROUTE_RULES  Check route rules against the user's role (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("adminpanel %s\n", version.Get())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := cfg.SlogLevel()
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logging.NewContextHandler(textHandler, nil))
	slog.SetDefault(logger)
	slog.Info("starting adminpanel", "version", version.Get().String())

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	queries := store.New(db)

	// Upgrade logger to also write WARN and ERROR logs to the event log
	logger = slog.New(logging.NewContextHandler(textHandler, queries))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	// Session storage: Redis when configured, SQLite otherwise
	sessionOpts := session.Options{IsDev: cfg.IsDevelopment(), Lifetime: cfg.SessionLifetime}
	var redisStore *session.RedisStore
	if cfg.UseRedisSessions() {
		redisOpts := session.DefaultRedisOptions()
		redisOpts.URL = cfg.RedisURL
		redisOpts.Prefix = cfg.RedisPrefix
		redisStore, err = session.NewRedisStore(redisOpts)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = redisStore.Close() }()
		sessionOpts.Store = redisStore
		slog.Info("session store initialized", "backend", "redis")
	} else {
		slog.Info("session store initialized", "backend", "sqlite")
	}
	sessionManager := session.New(db, sessionOpts)

	templatesFS, err := web.TemplatesFS()
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}

	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Base API client; every browser session clones it with its own token
	apiClient := apiclient.New(apiclient.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Logger:  logger,
	})
	apiClient.MarkReady()
	slog.Info("api client initialized", "base_url", apiClient.BaseURL())

	routes := router.NewTable(router.Options{EnforceRules: cfg.EnforceRouteRules, Logger: logger})
	slog.Info("route table initialized", "routes", len(routes.Routes()), "enforce_rules", cfg.EnforceRouteRules)

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	uiRateLimiter := middleware.NewRateLimiter(10.0, 20)

	sched := scheduler.New(logger)
	if err := sched.AddCleanup("login-protection-cleanup", loginProtection); err != nil {
		return fmt.Errorf("scheduling login protection cleanup: %w", err)
	}
	if err := sched.AddCleanup("ui-rate-limit-cleanup", uiRateLimiter); err != nil {
		return fmt.Errorf("scheduling rate limiter cleanup: %w", err)
	}
	if err := sched.AddEventPruning(queries, scheduler.DefaultEventRetention); err != nil {
		return fmt.Errorf("scheduling event pruning: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	authHandler := handler.NewAuthHandler(renderer, loginProtection, logger)
	uiHandler := handler.NewUIHandler(logger)
	pageHandler := handler.NewPageHandler(renderer)
	healthHandler := handler.NewHealthHandler(queries)
	healthHandler.AddCheck("api", apiClient, false)
	if redisStore != nil {
		healthHandler.AddCheck("sessions", redisStore, true)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(cfg.APITimeout + 15*time.Second))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.RequestPath)

	// Health checks sit outside the session so health checks create no sessions
	r.Route(handler.RouteHealth, func(r chi.Router) {
		r.Get("/", healthHandler.Health)
		r.Get("/live", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr())))
		r.Use(middleware.LoadSession(sessionManager, apiClient, cfg.Theme))

		r.With(loginProtection.Middleware).Post(handler.RouteLogin, authHandler.Login)
		r.Post(handler.RouteLogout, authHandler.Logout)

		r.Route(handler.RouteUI, func(r chi.Router) {
			r.Use(uiRateLimiter.Middleware)
			r.Get(handler.RouteUIState, uiHandler.State)
			r.Post(handler.RouteUITheme, uiHandler.Theme)
			r.Post(handler.RouteUIOverlay, uiHandler.Overlay)
			r.Post(handler.RouteUIMenuWidth, uiHandler.MenuWidth)
			r.Post(handler.RouteUIWindowWidth, uiHandler.WindowWidth)
			r.Post(handler.RouteUIStarred, uiHandler.Starred)
			r.Post(handler.RouteUIStarredArrange, uiHandler.ArrangeStarred)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession)
				r.Post(handler.RouteUIUserInfo, uiHandler.UserInfo)
				r.Post(handler.RouteUIRole, uiHandler.Role)
			})
		})

		routes.Mount(r, pageHandler)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.APITimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
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
