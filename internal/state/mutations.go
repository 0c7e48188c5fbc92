// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package state

import (
	"maps"
	"slices"
)

// AuthRequest marks a login in flight.
func (s *State) AuthRequest() {
	s.mu.Lock()
	s.status = Authenticating
	s.mu.Unlock()
}

// AuthSuccess replaces the whole profile in one step and clears any error.
// The active user is built from p and the stored userInfo overrides, as
// Restore does for an authenticated session.
func (s *State) AuthSuccess(p Profile, overrides map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	s.status = Authenticated
	s.authErr = nil
	s.activeUser = buildActiveUser(p, overrides)
}

// AuthFailure records err. A failed login leaves the state unauthenticated;
// a failed logout leaves the status untouched.
func (s *State) AuthFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authErr = err
	if s.status == Authenticating {
		s.status = Unauthenticated
		s.profile = Profile{}
	}
}

// ClearAuth drops the token and profile together. Stored overrides are not
// applied to a signed-out user.
func (s *State) ClearAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = Profile{}
	s.status = Unauthenticated
	s.activeUser = buildActiveUser(Profile{}, nil)
}

// UpdateUserInfo merges payload into the active user and returns the result.
func (s *State) UpdateUserInfo(payload map[string]string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeUser == nil {
		s.activeUser = map[string]string{}
	}
	maps.Copy(s.activeUser, payload)
	return maps.Clone(s.activeUser)
}

// SetVerticalNavMenuWidth sets the sidebar width ("default", "reduced", "no-nav-menu").
func (s *State) SetVerticalNavMenuWidth(width string) {
	s.mu.Lock()
	s.ui.VerticalNavMenuWidth = width
	s.mu.Unlock()
}

// ToggleContentOverlay flips the body overlay flag and returns the new value.
func (s *State) ToggleContentOverlay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.BodyOverlay = !s.ui.BodyOverlay
	return s.ui.BodyOverlay
}

// SetTheme sets the theme name.
func (s *State) SetTheme(theme string) {
	s.mu.Lock()
	s.ui.Theme = theme
	s.mu.Unlock()
}

// SetWindowWidth records the browser window width in pixels.
func (s *State) SetWindowWidth(width int) {
	s.mu.Lock()
	s.ui.WindowWidth = width
	s.mu.Unlock()
}

// SetTouchDevice overrides touch-device detection.
func (s *State) SetTouchDevice(touch bool) {
	s.mu.Lock()
	s.ui.IsTouchDevice = touch
	s.mu.Unlock()
}

// UpdateStarredPage pins or unpins page, matching on URL.
func (s *State) UpdateStarredPage(page StarredPage, starred bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.ui.StarredPages, func(p StarredPage) bool { return p.URL == page.URL })
	switch {
	case starred && idx < 0:
		s.ui.StarredPages = append(s.ui.StarredPages, page)
	case !starred && idx >= 0:
		s.ui.StarredPages = slices.Delete(s.ui.StarredPages, idx, idx+1)
	}
}

// ArrangeStarredPagesLimited replaces the first StarredLimit pages with list,
// keeping the overflow pages after it.
func (s *State) ArrangeStarredPagesLimited(list []StarredPage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var more []StarredPage
	if len(s.ui.StarredPages) > StarredLimit {
		more = s.ui.StarredPages[StarredLimit:]
	}
	s.ui.StarredPages = append(slices.Clone(list), more...)
}

// ArrangeStarredPagesMore replaces the overflow pages with list.
func (s *State) ArrangeStarredPagesMore(list []StarredPage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	limited := s.ui.StarredPages
	if len(limited) > StarredLimit {
		limited = limited[:StarredLimit]
	}
	s.ui.StarredPages = append(slices.Clone(limited), list...)
}
