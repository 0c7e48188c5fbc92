// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage provides the persisted per-browser key-value storage that
// survives page reloads. Values are plain strings.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Persisted keys.
const (
	KeyToken     = "user-token"
	KeyUserID    = "user-id"
	KeyPhoto     = "user-photo"
	KeyEmail     = "user-email"
	KeyFirstName = "user-firstname"
	KeyLastName  = "user-lastname"
	KeyUserType  = "user-usertype"

	// KeyUserInfo holds a JSON object of active-user overrides.
	KeyUserInfo = "userInfo"
)

// SessionKeys are the keys written on login and removed on logout.
var SessionKeys = []string{
	KeyToken,
	KeyUserID,
	KeyPhoto,
	KeyEmail,
	KeyFirstName,
	KeyLastName,
	KeyUserType,
}

// Storage is a string key-value store scoped to a single browser.
type Storage interface {
	// GetItem returns the value and whether the key exists.
	GetItem(ctx context.Context, key string) (string, bool)
	// SetItem stores value under key.
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error
}

// GetString returns the value for key or "" when it is absent.
func GetString(ctx context.Context, s Storage, key string) string {
	v, _ := s.GetItem(ctx, key)
	return v
}

// SetItems writes the session keys present in values, stopping at the first error.
func SetItems(ctx context.Context, s Storage, values map[string]string) error {
	for _, key := range SessionKeys {
		v, ok := values[key]
		if !ok {
			continue
		}
		if err := s.SetItem(ctx, key, v); err != nil {
			return fmt.Errorf("storing %s: %w", key, err)
		}
	}
	return nil
}

// ClearSession removes all session keys. Every key is attempted; the joined
// error reports the ones that failed.
func ClearSession(ctx context.Context, s Storage) error {
	var errs []error
	for _, key := range SessionKeys {
		if err := s.RemoveItem(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
