// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the scs session manager that backs each
// browser's persisted storage.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// DefaultLifetime is used when no lifetime is configured.
const DefaultLifetime = 24 * time.Hour

// ProductionCookieName uses the __Host- prefix, which requires Secure and Path=/.
const ProductionCookieName = "__Host-session"

// Options configures a session manager.
type Options struct {
	IsDev    bool
	Lifetime time.Duration
	// Store overrides the default SQLite store (e.g. a RedisStore).
	Store scs.Store
}

// New creates a session manager backed by the SQLite sessions table unless
// opts.Store is set.
func New(db *sql.DB, opts Options) *scs.SessionManager {
	sm := scs.New()

	if opts.Store != nil {
		sm.Store = opts.Store
	} else {
		sm.Store = sqlite3store.New(db)
	}

	sm.Lifetime = opts.Lifetime
	if sm.Lifetime <= 0 {
		sm.Lifetime = DefaultLifetime
	}
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !opts.IsDev
	if !opts.IsDev {
		sm.Cookie.Name = ProductionCookieName
	}

	return sm
}
