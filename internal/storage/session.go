// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"

	"github.com/alexedwards/scs/v2"
)

// keyPrefix namespaces storage keys inside the scs session so they cannot
// collide with flash messages and other session data.
const keyPrefix = "ls:"

// Session is a Storage backed by the browser's scs session. The context passed
// to each call must be one that scs.LoadAndSave has populated.
type Session struct {
	sm *scs.SessionManager
}

// NewSession returns a Storage over sm.
func NewSession(sm *scs.SessionManager) *Session {
	return &Session{sm: sm}
}

// GetItem implements Storage.
func (s *Session) GetItem(ctx context.Context, key string) (string, bool) {
	if !s.sm.Exists(ctx, keyPrefix+key) {
		return "", false
	}
	return s.sm.GetString(ctx, keyPrefix+key), true
}

// SetItem implements Storage.
func (s *Session) SetItem(ctx context.Context, key, value string) error {
	s.sm.Put(ctx, keyPrefix+key, value)
	return nil
}

// RemoveItem implements Storage.
func (s *Session) RemoveItem(ctx context.Context, key string) error {
	s.sm.Remove(ctx, keyPrefix+key)
	return nil
}

// RenewToken rotates the session token, keeping its data. Called on login to
// prevent session fixation.
func (s *Session) RenewToken(ctx context.Context) error {
	return s.sm.RenewToken(ctx)
}

var _ Storage = (*Session)(nil)
