// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteLogin receives the login form. GET on the same path is served by
	// the route table.
	RouteLogin = "/pages/login"
	// RouteLogout clears the session.
	RouteLogout = "/logout"

	// RouteUI is the prefix of the UI state endpoints.
	RouteUI = "/ui"
	// RouteUIState returns the current state snapshot.
	RouteUIState = "/state"
	// RouteUITheme sets the theme.
	RouteUITheme = "/theme"
	// RouteUIOverlay toggles the content overlay.
	RouteUIOverlay = "/overlay"
	// RouteUIMenuWidth sets the vertical nav menu width.
	RouteUIMenuWidth = "/menu-width"
	// RouteUIWindowWidth records the window width.
	RouteUIWindowWidth = "/window-width"
	// RouteUIStarred stars or unstars a page.
	RouteUIStarred = "/starred"
	// RouteUIStarredArrange reorders the starred pages.
	RouteUIStarredArrange = "/starred/arrange"
	// RouteUIUserInfo merges user-info overrides.
	RouteUIUserInfo = "/user-info"
	// RouteUIRole changes the acting role.
	RouteUIRole = "/role"

	// RouteHealth is the health check prefix.
	RouteHealth = "/health"
)

const (
	redirectRoot  = "/"
	redirectLogin = RouteLogin
)

// maxJSONBody bounds UI endpoint request bodies.
const maxJSONBody = 64 << 10
