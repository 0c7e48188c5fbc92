// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render renders the admin panel's HTML views.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/olegiv/adminpanel/internal/router"
	"github.com/olegiv/adminpanel/internal/state"
)

// Session keys for flash messages.
const (
	FlashKey     = "flash"
	FlashTypeKey = "flash_type"
)

// fallbackView is rendered for routes without a dedicated template.
const fallbackView = "page"

// Renderer holds parsed templates keyed "<layout>/<view>".
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
}

// New parses every page template with its layout.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
	}

	partials, err := templateFiles(cfg.TemplatesFS, "partials")
	if err != nil {
		return nil, fmt.Errorf("getting partials: %w", err)
	}

	for _, layout := range []router.Layout{router.LayoutMain, router.LayoutFullPage} {
		pages, err := templateFiles(cfg.TemplatesFS, path.Join("pages", string(layout)))
		if err != nil {
			return nil, fmt.Errorf("getting %s pages: %w", layout, err)
		}
		for _, page := range pages {
			name := string(layout) + "/" + strings.TrimSuffix(path.Base(page), ".html")

			files := []string{"layouts/base.html", "layouts/" + string(layout) + ".html"}
			files = append(files, partials...)
			files = append(files, page)

			tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(cfg.TemplatesFS, files...)
			if err != nil {
				return nil, fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}

	return r, nil
}

func templateFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".html") {
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	return files, nil
}

var (
	titleCaser = cases.Title(language.English)
	upperCaser = cases.Upper(language.English)
)

// DisplayName formats a user's name for the navbar.
func DisplayName(first, last string) string {
	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(name))
}

// Initials returns up to two upper-case initials for the avatar fallback.
func Initials(first, last string) string {
	var b strings.Builder
	for _, s := range []string{first, last} {
		for _, r := range s {
			b.WriteString(upperCaser.String(string(r)))
			break
		}
	}
	return b.String()
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"displayName": DisplayName,
		"initials":    Initials,
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"title": titleCaser.String,
	}
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Route       router.Route
	Breadcrumb  []router.Crumb
	State       state.Snapshot
	Data        any
	Flash       string
	FlashType   string
	CurrentYear int
}

// Has reports whether a template is registered.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// RenderRoute renders the route's view in its layout, falling back to the
// layout's generic page.
func (r *Renderer) RenderRoute(w http.ResponseWriter, req *http.Request, status int, route router.Route, data TemplateData) error {
	name := string(route.Layout) + "/" + route.View
	if !r.Has(name) {
		name = string(route.Layout) + "/" + fallbackView
	}
	data.Route = route
	if data.Title == "" {
		data.Title = route.Meta.PageTitle
	}
	if data.Breadcrumb == nil {
		data.Breadcrumb = route.Meta.Breadcrumb
	}
	return r.Render(w, req, status, name, data)
}

// Render renders the named template. Output is buffered so template errors
// never produce a partial page.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()
	if r.sessionManager != nil && data.Flash == "" {
		if flash := r.sessionManager.PopString(req.Context(), FlashKey); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(req.Context(), FlashTypeKey)
		}
	}
	if data.Flash != "" && data.FlashType == "" {
		data.FlashType = "info"
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// SetFlash stores a one-shot message shown on the next rendered page.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager == nil {
		return
	}
	r.sessionManager.Put(req.Context(), FlashKey, message)
	r.sessionManager.Put(req.Context(), FlashTypeKey, flashType)
}
