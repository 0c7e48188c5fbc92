// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides the HTTP middleware of the admin panel.
package middleware

import (
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/adminpanel/internal/apiclient"
	"github.com/olegiv/adminpanel/internal/dispatch"
	"github.com/olegiv/adminpanel/internal/logging"
	"github.com/olegiv/adminpanel/internal/state"
	"github.com/olegiv/adminpanel/internal/storage"
)

// RequestPath stores the request path in the context for log records.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestPath(r.Context(), r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoadSession restores the browser's session and UI state from its scs
// session and stores the resulting dispatch.Session in the context. It must
// run inside sm.LoadAndSave.
func LoadSession(sm *scs.SessionManager, api *apiclient.Client, theme string) func(http.Handler) http.Handler {
	store := storage.NewSession(sm)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := dispatch.Restore(r.Context(), store, api, state.Options{
				Theme:     theme,
				UserAgent: r.UserAgent(),
			})
			next.ServeHTTP(w, r.WithContext(dispatch.WithSession(r.Context(), sess)))
		})
	}
}

// RequireSession answers 401 when the browser holds no token. Used for the
// JSON endpoints, which do not redirect.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := dispatch.FromContext(r.Context())
		if sess == nil || !sess.State.IsAuthenticated() {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
