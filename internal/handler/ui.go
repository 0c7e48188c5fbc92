// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/olegiv/adminpanel/internal/acl"
	"github.com/olegiv/adminpanel/internal/dispatch"
	"github.com/olegiv/adminpanel/internal/state"
)

// Accepted values for the UI setters.
var (
	themes     = []string{"light", "dark", "semi-dark"}
	menuWidths = []string{"default", "reduced", "no-nav-menu"}
	roles      = []string{acl.RoleAdmin, acl.RoleEditor, acl.RolePublic}
)

// UIHandler serves the JSON endpoints that read and mutate the session's UI state.
type UIHandler struct {
	logger *slog.Logger
}

// NewUIHandler creates a new UIHandler.
func NewUIHandler(logger *slog.Logger) *UIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UIHandler{logger: logger}
}

// dispatcher returns a Dispatcher for the request's session, or writes a
// JSON error.
func (h *UIHandler) dispatcher(w http.ResponseWriter, r *http.Request) (*dispatch.Dispatcher, bool) {
	sess := dispatch.FromContext(r.Context())
	if sess == nil {
		writeJSONError(w, http.StatusInternalServerError, "session not loaded")
		return nil, false
	}
	return dispatch.New(sess, h.logger), true
}

// State handles GET /ui/state. The token is never sent back.
func (h *UIHandler) State(w http.ResponseWriter, r *http.Request) {
	sess := dispatch.FromContext(r.Context())
	if sess == nil {
		writeJSONError(w, http.StatusInternalServerError, "session not loaded")
		return
	}
	snap := sess.State.Snapshot()
	snap.Token = ""
	writeJSONSuccess(w, map[string]any{
		"state": snap,
		"role":  sess.ACL.Role(),
	})
}

type themeRequest struct {
	Theme string `json:"theme"`
}

// Theme handles POST /ui/theme.
func (h *UIHandler) Theme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !slices.Contains(themes, req.Theme) {
		writeJSONError(w, http.StatusUnprocessableEntity, "theme must be one of "+strings.Join(themes, ", "))
		return
	}
	d, ok := h.dispatcher(w, r)
	if !ok {
		return
	}
	d.UpdateTheme(r.Context(), req.Theme)
	writeJSONSuccess(w, map[string]any{"theme": req.Theme})
}

// Overlay handles POST /ui/overlay.
func (h *UIHandler) Overlay(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dispatcher(w, r)
	if !ok {
		return
	}
	writeJSONSuccess(w, map[string]any{"bodyOverlay": d.ToggleContentOverlay(r.Context())})
}

type widthRequest struct {
	Width string `json:"width"`
}

// MenuWidth handles POST /ui/menu-width.
func (h *UIHandler) MenuWidth(w http.ResponseWriter, r *http.Request) {
	var req widthRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !slices.Contains(menuWidths, req.Width) {
		writeJSONError(w, http.StatusUnprocessableEntity, "width must be one of "+strings.Join(menuWidths, ", "))
		return
	}
	d, ok := h.dispatcher(w, r)
	if !ok {
		return
	}
	d.UpdateVerticalNavMenuWidth(r.Context(), req.Width)
	writeJSONSuccess(w, map[string]any{"verticalNavMenuWidth": req.Width})
}

type windowWidthRequest struct {
	Width int `json:"width"`
}

// WindowWidth handles POST /ui/window-width.
func (h *UIHandler) WindowWidth(w http.ResponseWriter, r *http.Request) {
	var req windowWidthRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Width < 0 {
		writeJSONError(w, http.StatusUnprocessableEntity, "width must not be negative")
		return
	}
	d, ok := h.dispatcher(w, r)
	if !ok {
		return
	}
	d.UpdateWindowWidth(r.Context(), req.Width)
	writeJSONSuccess(w, map[string]any{"windowWidth": req.Width})
}

type starredRequest struct {
	Page    state.StarredPage `json:"page"`
	Starred bool              `json:"starred"`
}

// Starred handles POST /ui/starred.
func (h *UIHandler) Starred(w http.ResponseWriter, r *http.Request) {
	var req starredRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Page.URL == "" {
		writeJSONError(w, http.StatusUnprocessableEntity, "page url is required")
		return
	}
	d, ok := h.dispatcher(w, r)
	if !ok {
		return
	}
	d.UpdateStarredPage(r.Context(), req.Page, req.Starred)
	writeJSONSuccess(w, map[string]any{"starredPages": d.Session().State.UI().StarredPages})
}

type arrangeRequest struct {
	Limited []state.StarredPage `json:"limited"`
	More    []state.StarredPage `json:"more"`
}

// ArrangeStarred handles POST /ui/starred/arrange. Either list may be
// omitted; the limited list is applied first.
func (h *UIHandler) ArrangeStarred(w http.ResponseWriter, r *http.Request) {
	var req arrangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Limited == nil && req.More == nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "limited or more is required")
		return
	}
	d, ok := h.dispatcher(w, r)
	if !ok {
		return
	}
	if req.Limited != nil {
		d.ArrangeStarredPagesLimited(r.Context(), req.Limited)
	}
	if req.More != nil {
		d.ArrangeStarredPagesMore(r.Context(), req.More)
	}
	writeJSONSuccess(w, map[string]any{"starredPages": d.Session().State.UI().StarredPages})
}

// UserInfo handles POST /ui/user-info.
func (h *UIHandler) UserInfo(w http.ResponseWriter, r *http.Request) {
	var payload map[string]string
	if err := decodeJSON(w, r, &payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	d, ok := h.dispatcher(w, r)
	if !ok {
		return
	}
	writeJSONSuccess(w, map[string]any{"activeUser": d.UpdateUserInfo(r.Context(), payload)})
}

type roleRequest struct {
	Role string `json:"role"`
}

// Role handles POST /ui/role. The role may not rank above the user type
// returned at login.
func (h *UIHandler) Role(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !slices.Contains(roles, req.Role) {
		writeJSONError(w, http.StatusUnprocessableEntity, "role must be one of "+strings.Join(roles, ", "))
		return
	}
	d, ok := h.dispatcher(w, r)
	if !ok {
		return
	}
	sess := d.Session()
	if usertype := sess.State.Profile().UserType; acl.Exceeds(req.Role, usertype) {
		writeJSONError(w, http.StatusForbidden, "role exceeds user type "+usertype)
		return
	}
	active := d.UpdateUserRole(r.Context(), dispatch.RolePayload{
		UserRole:      req.Role,
		ACLChangeRole: sess.ACL.ChangeRole,
	})
	writeJSONSuccess(w, map[string]any{"role": sess.ACL.Role(), "activeUser": active})
}
