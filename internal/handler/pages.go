// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/adminpanel/internal/render"
	"github.com/olegiv/adminpanel/internal/router"
)

// PageHandler renders the view of the route matched by the route table.
type PageHandler struct {
	renderer *render.Renderer
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(renderer *render.Renderer) *PageHandler {
	return &PageHandler{renderer: renderer}
}

// pageData is passed to views as TemplateData.Data.
type pageData struct {
	Params map[string]string
	Email  string
}

// ServeHTTP renders the route stored in the request context by Table.Mount.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route, ok := router.RouteFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, router.PathNotFound, http.StatusSeeOther)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	data := render.TemplateData{
		State: sess.State.Snapshot(),
		Data: pageData{
			Params: urlParams(r),
			Email:  r.URL.Query().Get("email"),
		},
	}
	if err := h.renderer.RenderRoute(w, r, statusFor(route), route, data); err != nil {
		logAndInternalError(w, r, "failed to render page", "route", route.Name, "error", err)
	}
}

func statusFor(route router.Route) int {
	switch route.Path {
	case router.PathNotFound:
		return http.StatusNotFound
	case router.PathNotAuthorized:
		return http.StatusForbidden
	default:
		return http.StatusOK
	}
}

func urlParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || len(rctx.URLParams.Keys) == 0 {
		return nil
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		params[k] = rctx.URLParams.Values[i]
	}
	return params
}
