// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web embeds the admin panel's HTML templates.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var Templates embed.FS

// TemplatesFS returns the embedded templates rooted at the templates
// directory, the layout render.New expects.
func TemplatesFS() (fs.FS, error) {
	return fs.Sub(Templates, "templates")
}
