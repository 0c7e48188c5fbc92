// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package router holds the admin panel's route table and navigation guards.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/adminpanel/internal/acl"
	"github.com/olegiv/adminpanel/internal/dispatch"
	"github.com/olegiv/adminpanel/internal/logging"
	"github.com/olegiv/adminpanel/internal/state"
)

// Well-known paths.
const (
	PathRoot          = "/"
	PathHome          = "/pages/faq"
	PathLogin         = "/pages/login"
	PathNotFound      = "/pages/error-404"
	PathNotAuthorized = "/pages/not-authorized"
)

// Layout selects the page chrome a view is rendered in.
type Layout string

const (
	LayoutMain     Layout = "main"
	LayoutFullPage Layout = "full-page"
)

// Crumb is one breadcrumb entry.
type Crumb struct {
	Title  string
	URL    string
	Active bool
}

// Meta is static route metadata. Rule names the role the route is meant for.
type Meta struct {
	Breadcrumb []Crumb
	PageTitle  string
	Rule       string
}

// Guard inspects the state before navigation and returns a redirect target,
// or "" to proceed.
type Guard func(st *state.State) string

// RequireToken proceeds only when a token is present.
func RequireToken(loginPath string) Guard {
	return func(st *state.State) string {
		if st != nil && st.Token() != "" {
			return ""
		}
		return loginPath
	}
}

// RedirectIfAuthenticated sends authenticated users away from auth pages.
func RedirectIfAuthenticated(home string) Guard {
	return func(st *state.State) string {
		if st != nil && st.Token() != "" {
			return home
		}
		return ""
	}
}

// Route is an immutable route descriptor.
type Route struct {
	Path     string
	Name     string
	View     string
	Layout   Layout
	Guard    Guard
	Redirect string
	Meta     Meta
}

// Decision is the outcome of evaluating a route's guard.
type Decision struct {
	Allow    bool
	Redirect string
}

// Options configures a Table.
type Options struct {
	// EnforceRules turns Meta.Rule on main-layout routes into an ACL check.
	EnforceRules bool
	Logger       *slog.Logger
}

// Table is the route table. It is read-only after construction.
type Table struct {
	routes  []Route
	byName  map[string]int
	enforce bool
	logger  *slog.Logger
}

// NewTable returns the admin panel's route table.
func NewTable(opts Options) *Table {
	return NewTableWithRoutes(DefaultRoutes(), opts)
}

// NewTableWithRoutes builds a Table over routes.
func NewTableWithRoutes(routes []Route, opts Options) *Table {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	t := &Table{
		routes:  make([]Route, len(routes)),
		byName:  make(map[string]int, len(routes)),
		enforce: opts.EnforceRules,
		logger:  opts.Logger,
	}
	for i, r := range routes {
		r.Meta.Breadcrumb = slices.Clone(r.Meta.Breadcrumb)
		t.routes[i] = r
		if r.Name != "" {
			t.byName[r.Name] = i
		}
	}
	return t
}

// Routes returns a copy of the route descriptors.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	for i, r := range t.routes {
		r.Meta.Breadcrumb = slices.Clone(r.Meta.Breadcrumb)
		out[i] = r
	}
	return out
}

// Lookup finds a route by name.
func (t *Table) Lookup(name string) (Route, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Route{}, false
	}
	r := t.routes[i]
	r.Meta.Breadcrumb = slices.Clone(r.Meta.Breadcrumb)
	return r, true
}

// Evaluate runs the route's guard against st, then the optional rule check.
func (t *Table) Evaluate(r Route, st *state.State, a *acl.ACL) Decision {
	if r.Guard != nil {
		if to := r.Guard(st); to != "" {
			return Decision{Redirect: to}
		}
	}
	if t.enforce && r.Layout == LayoutMain && r.Meta.Rule != "" {
		if a == nil || !a.Allows(r.Meta.Rule) {
			return Decision{Redirect: PathNotAuthorized}
		}
	}
	if r.Redirect != "" {
		return Decision{Redirect: r.Redirect}
	}
	return Decision{Allow: true}
}

type ctxKey struct{}

// WithRoute stores r in ctx.
func WithRoute(ctx context.Context, r Route) context.Context {
	return context.WithValue(ctx, ctxKey{}, r)
}

// RouteFromContext returns the matched route.
func RouteFromContext(ctx context.Context) (Route, bool) {
	r, ok := ctx.Value(ctxKey{}).(Route)
	return r, ok
}

// Mount registers every route on r as a GET handler. Allowed requests reach
// view with the matched Route in the context. Unknown paths redirect to the
// 404 page.
func (t *Table) Mount(r chi.Router, view http.Handler) {
	for _, route := range t.routes {
		r.Get(route.Path, t.serve(route, view))
	}
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, PathNotFound, http.StatusSeeOther)
	})
}

func (t *Table) serve(route Route, view http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var (
			st *state.State
			a  *acl.ACL
		)
		if sess := dispatch.FromContext(req.Context()); sess != nil {
			st, a = sess.State, sess.ACL
		}

		d := t.Evaluate(route, st, a)
		if !d.Allow {
			if d.Redirect == PathNotAuthorized {
				t.logger.WarnContext(req.Context(), "route rule denied",
					"category", logging.CategoryAuth, "route", route.Name, "rule", route.Meta.Rule)
			}
			http.Redirect(w, req, d.Redirect, http.StatusSeeOther)
			return
		}
		view.ServeHTTP(w, req.WithContext(WithRoute(req.Context(), route)))
	}
}
