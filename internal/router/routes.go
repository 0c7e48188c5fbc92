// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package router

import "github.com/olegiv/adminpanel/internal/acl"

func crumbs(trail ...string) []Crumb {
	out := []Crumb{{Title: "Home", URL: PathRoot}}
	for i, title := range trail {
		out = append(out, Crumb{Title: title, Active: i == len(trail)-1})
	}
	return out
}

// DefaultRoutes returns the application's routes. Main-layout routes require
// a token; the login and password-reset pages redirect authenticated users.
func DefaultRoutes() []Route {
	auth := RequireToken(PathLogin)
	guest := RedirectIfAuthenticated(PathRoot)

	page := func(path, name, view, title string, trail ...string) Route {
		return Route{
			Path:   path,
			Name:   name,
			View:   view,
			Layout: LayoutMain,
			Guard:  auth,
			Meta:   Meta{Breadcrumb: crumbs(trail...), PageTitle: title, Rule: acl.RoleEditor},
		}
	}
	full := func(path, name, view string, guard Guard) Route {
		return Route{
			Path:   path,
			Name:   name,
			View:   view,
			Layout: LayoutFullPage,
			Guard:  guard,
			Meta:   Meta{Rule: acl.RoleEditor},
		}
	}

	return []Route{
		{Path: PathRoot, Layout: LayoutMain, Guard: auth, Redirect: PathHome},

		{Path: "/pages/profile", Name: "pages-profile", View: "profile", Layout: LayoutMain, Guard: auth,
			Meta: Meta{Rule: acl.RoleEditor}},
		page("/apps/user/user-list", "app-user-list", "user-list", "User List", "User", "List"),
		page("/apps/user/user-register", "app-user-register", "user-register", "User Register", "User", "Register"),
		page("/apps/user/user-edit/{userId}", "app-user-edit", "user-edit", "User Edit", "User", "Edit"),
		page("/key/list-view", "data-list-list-view", "key-list", "List View", "Keys"),
		page("/download", "file-download", "download", "Downloads", "Downloads"),
		page("/upload", "file-upload", "upload", "Upload", "Upload"),
		page("/update/{id}", "file-update", "update", "Update", "Update"),
		page("/pages/user-settings", "page-user-settings", "user-settings", "Settings", "Pages", "User Settings"),
		page(PathHome, "page-faq", "faq", "FAQ", "Pages", "FAQ"),
		page("/pages/addfaq", "page-faq-add", "faq-add", "Add FAQ", "Pages", "Add FAQ"),
		page("/pages/editfaq/{id}", "page-faq-edit", "faq-edit", "Edit FAQ", "Pages", "Edit FAQ"),

		full("/callback", "auth-callback", "callback", nil),
		full(PathLogin, "page-login", "login", guest),
		full("/pages/forget", "page-forget", "forget", guest),
		full("/pages/confirm", "page-confirm", "confirm", guest),
		full("/pages/register", "page-register", "register", nil),
		full("/pages/forgot-password", "page-forgot-password", "forgot-password", nil),
		full("/pages/comingsoon", "page-coming-soon", "coming-soon", nil),
		full(PathNotFound, "page-error-404", "error-404", nil),
		full("/pages/error-500", "page-error-500", "error-500", nil),
		full(PathNotAuthorized, "page-not-authorized", "not-authorized", nil),
		full("/pages/maintenance", "page-maintenance", "maintenance", nil),
	}
}
