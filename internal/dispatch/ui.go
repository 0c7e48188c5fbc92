// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package dispatch

import (
	"context"
	"encoding/json"

	"github.com/olegiv/adminpanel/internal/logging"
	"github.com/olegiv/adminpanel/internal/state"
)

// UpdateVerticalNavMenuWidth sets the sidebar width.
func (d *Dispatcher) UpdateVerticalNavMenuWidth(ctx context.Context, width string) {
	d.sess.State.SetVerticalNavMenuWidth(width)
	d.persistUI(ctx)
}

// ToggleContentOverlay flips the body overlay and returns the new value.
func (d *Dispatcher) ToggleContentOverlay(ctx context.Context) bool {
	on := d.sess.State.ToggleContentOverlay()
	d.persistUI(ctx)
	return on
}

// UpdateTheme sets the theme.
func (d *Dispatcher) UpdateTheme(ctx context.Context, theme string) {
	d.sess.State.SetTheme(theme)
	d.persistUI(ctx)
}

// UpdateWindowWidth records the window width.
func (d *Dispatcher) UpdateWindowWidth(ctx context.Context, width int) {
	d.sess.State.SetWindowWidth(width)
	d.persistUI(ctx)
}

// UpdateStarredPage pins or unpins a page.
func (d *Dispatcher) UpdateStarredPage(ctx context.Context, page state.StarredPage, starred bool) {
	d.sess.State.UpdateStarredPage(page, starred)
	d.persistUI(ctx)
}

// ArrangeStarredPagesLimited reorders the pages shown in the navbar.
func (d *Dispatcher) ArrangeStarredPagesLimited(ctx context.Context, list []state.StarredPage) {
	d.sess.State.ArrangeStarredPagesLimited(list)
	d.persistUI(ctx)
}

// ArrangeStarredPagesMore reorders the overflow pages.
func (d *Dispatcher) ArrangeStarredPagesMore(ctx context.Context, list []state.StarredPage) {
	d.sess.State.ArrangeStarredPagesMore(list)
	d.persistUI(ctx)
}

func (d *Dispatcher) persistUI(ctx context.Context) {
	raw, err := json.Marshal(d.sess.State.UI())
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to encode ui state", "error", err)
		return
	}
	if err := d.sess.Storage.SetItem(ctx, state.KeyUIState, string(raw)); err != nil {
		d.logger.WarnContext(ctx, "failed to persist ui state", "category", logging.CategoryUI, "error", err)
	}
}
