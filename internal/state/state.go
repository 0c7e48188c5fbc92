// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package state holds the session and UI state of one browser. A State is
// created per browser from persisted storage and passed explicitly to the
// components that read or mutate it.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/mileusna/useragent"

	"github.com/olegiv/adminpanel/internal/storage"
)

// KeyUIState is the storage key holding the JSON encoded UI flags.
const KeyUIState = "uiState"

// StarredLimit is the number of starred pages shown directly in the navbar.
const StarredLimit = 10

// AuthStatus is the authentication state machine.
type AuthStatus int

const (
	Unauthenticated AuthStatus = iota
	Authenticating
	Authenticated
)

func (s AuthStatus) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Profile is the authenticated user's session data.
type Profile struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	PhotoURL  string `json:"photoUrl"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserType  string `json:"userType"`
}

// StorageValues maps the profile onto persisted storage keys.
func (p Profile) StorageValues() map[string]string {
	return map[string]string{
		storage.KeyToken:     p.Token,
		storage.KeyUserID:    p.UserID,
		storage.KeyPhoto:     p.PhotoURL,
		storage.KeyEmail:     p.Email,
		storage.KeyFirstName: p.FirstName,
		storage.KeyLastName:  p.LastName,
		storage.KeyUserType:  p.UserType,
	}
}

// StarredPage is a page pinned to the navbar.
type StarredPage struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// UI holds the independent interface flags.
type UI struct {
	VerticalNavMenuWidth    string        `json:"verticalNavMenuWidth"`
	IsVerticalNavMenuActive bool          `json:"isVerticalNavMenuActive"`
	MainLayoutType          string        `json:"mainLayoutType"`
	BodyOverlay             bool          `json:"bodyOverlay"`
	Theme                   string        `json:"theme"`
	IsTouchDevice           bool          `json:"isTouchDevice"`
	WindowWidth             int           `json:"windowWidth"`
	StarredPages            []StarredPage `json:"starredPages"`
}

// Options seeds the parts of State that do not come from storage.
type Options struct {
	Theme     string
	UserAgent string
}

// Snapshot is an immutable copy of State for views and JSON responses.
type Snapshot struct {
	Profile
	Status     string            `json:"status"`
	AuthError  string            `json:"authError,omitempty"`
	ActiveUser map[string]string `json:"activeUser"`
	UI         UI                `json:"ui"`
}

// State is the mutable session/UI container. It is safe for concurrent use.
type State struct {
	mu         sync.RWMutex
	profile    Profile
	status     AuthStatus
	authErr    error
	activeUser map[string]string
	ui         UI
}

func defaultUI(theme string) UI {
	if theme == "" {
		theme = "light"
	}
	return UI{
		VerticalNavMenuWidth:    "default",
		IsVerticalNavMenuActive: true,
		MainLayoutType:          "vertical",
		Theme:                   theme,
	}
}

// New returns an unauthenticated State with default UI flags.
func New(opts Options) *State {
	return &State{
		activeUser: map[string]string{},
		ui:         uiWithDevice(defaultUI(opts.Theme), opts.UserAgent),
	}
}

// Restore seeds a State from persisted storage.
func Restore(ctx context.Context, s storage.Storage, opts Options) *State {
	st := New(opts)

	get := func(key string) string { return storage.GetString(ctx, s, key) }
	st.profile = Profile{
		Token:     get(storage.KeyToken),
		UserID:    get(storage.KeyUserID),
		PhotoURL:  get(storage.KeyPhoto),
		Email:     get(storage.KeyEmail),
		FirstName: get(storage.KeyFirstName),
		LastName:  get(storage.KeyLastName),
		UserType:  get(storage.KeyUserType),
	}
	var overrides map[string]string
	if st.profile.Token != "" {
		st.status = Authenticated
		overrides = StoredUserInfo(ctx, s)
	}
	st.activeUser = buildActiveUser(st.profile, overrides)

	if raw := get(KeyUIState); raw != "" {
		var ui UI
		if err := json.Unmarshal([]byte(raw), &ui); err != nil {
			slog.WarnContext(ctx, "ignoring corrupt ui state in storage", "error", err)
		} else {
			st.ui = uiWithDevice(ui, opts.UserAgent)
		}
	}

	return st
}

func uiWithDevice(ui UI, userAgent string) UI {
	if userAgent != "" {
		ui.IsTouchDevice = DetectTouchDevice(userAgent)
	}
	return ui
}

// DetectTouchDevice reports whether the user agent belongs to a phone or tablet.
func DetectTouchDevice(userAgent string) bool {
	ua := useragent.Parse(userAgent)
	return ua.Mobile || ua.Tablet
}

// StoredUserInfo returns the persisted userInfo overrides.
func StoredUserInfo(ctx context.Context, s storage.Storage) map[string]string {
	return decodeUserInfo(storage.GetString(ctx, s, storage.KeyUserInfo))
}

// decodeUserInfo parses the stored userInfo object. Non-string values are
// formatted, null values are dropped.
func decodeUserInfo(raw string) map[string]string {
	out := map[string]string{}
	if raw == "" {
		return out
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return out
	}
	for k, v := range m {
		switch tv := v.(type) {
		case nil:
		case string:
			out[k] = tv
		default:
			out[k] = fmt.Sprint(tv)
		}
	}
	return out
}

// buildActiveUser applies stored overrides on top of the profile defaults.
// Overrides win when non-empty; override-only keys are kept as well.
func buildActiveUser(p Profile, overrides map[string]string) map[string]string {
	user := map[string]string{
		"id":        p.UserID,
		"firstname": p.FirstName,
		"lastname":  p.LastName,
		"about":     "",
		"photoURL":  p.PhotoURL,
		"status":    "",
		"usertype":  p.UserType,
		"email":     p.Email,
	}
	for k := range user {
		if v := overrides[k]; v != "" {
			user[k] = v
		}
	}
	for k, v := range overrides {
		if _, ok := user[k]; !ok {
			user[k] = v
		}
	}
	return user
}

// Token returns the current token; empty when unauthenticated.
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Token
}

// IsAuthenticated reports whether a token is present.
func (s *State) IsAuthenticated() bool {
	return s.Token() != ""
}

// Status returns the authentication status.
func (s *State) Status() AuthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// AuthError returns the last recorded authentication error.
func (s *State) AuthError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authErr
}

// Profile returns a copy of the session profile.
func (s *State) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// ActiveUser returns a copy of the active-user map.
func (s *State) ActiveUser() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.activeUser)
}

// UI returns a copy of the UI flags.
func (s *State) UI() UI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uiCopy()
}

func (s *State) uiCopy() UI {
	ui := s.ui
	ui.StarredPages = slices.Clone(s.ui.StarredPages)
	return ui
}

// Snapshot returns an immutable copy of the whole state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Profile:    s.profile,
		Status:     s.status.String(),
		ActiveUser: maps.Clone(s.activeUser),
		UI:         s.uiCopy(),
	}
	if s.authErr != nil {
		snap.AuthError = s.authErr.Error()
	}
	return snap
}
