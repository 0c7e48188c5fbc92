// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package dispatch implements the actions that mutate a browser's session and
// UI state. Each action is the single owner of the mutations it performs.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/adminpanel/internal/apiclient"
	"github.com/olegiv/adminpanel/internal/logging"
	"github.com/olegiv/adminpanel/internal/state"
	"github.com/olegiv/adminpanel/internal/storage"
)

// KeyUserRole is the active-user key set by UpdateUserRole.
const KeyUserRole = "userRole"

var sanitizer = bluemonday.StrictPolicy()

// Result is the outcome of an asynchronous login.
type Result struct {
	Response *apiclient.LoginResponse
	Err      error
}

// RolePayload carries a new role and the callback that applies it to the ACL.
type RolePayload struct {
	UserRole      string
	ACLChangeRole func(role string)
}

// renewer is implemented by storages that can rotate their session token.
type renewer interface {
	RenewToken(ctx context.Context) error
}

// Dispatcher runs actions against one Session.
type Dispatcher struct {
	sess   *Session
	logger *slog.Logger

	// authMu serialises login and logout so their storage writes never interleave.
	authMu sync.Mutex
}

// New creates a Dispatcher for sess.
func New(sess *Session, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{sess: sess, logger: logger}
}

// Session returns the bound session.
func (d *Dispatcher) Session() *Session { return d.sess }

// Login authenticates against the backend and persists the session.
func (d *Dispatcher) Login(ctx context.Context, creds apiclient.Credentials) (*apiclient.LoginResponse, error) {
	d.authMu.Lock()
	defer d.authMu.Unlock()

	st := d.sess.State
	st.AuthRequest()

	resp, err := d.sess.API.Login(ctx, creds)
	if err != nil {
		d.failLogin(ctx, err)
		d.logger.WarnContext(ctx, "login failed", "category", logging.CategoryAuth, "email", creds.Email, "error", err)
		return nil, err
	}

	profile := resp.Profile()
	if r, ok := d.sess.Storage.(renewer); ok {
		if err := r.RenewToken(ctx); err != nil {
			d.failLogin(ctx, err)
			return nil, fmt.Errorf("renewing session: %w", err)
		}
	}
	if err := storage.SetItems(ctx, d.sess.Storage, profile.StorageValues()); err != nil {
		d.failLogin(ctx, err)
		_ = storage.ClearSession(ctx, d.sess.Storage)
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	st.AuthSuccess(profile, d.userInfoFor(ctx, profile.UserID))
	d.sess.API.SetToken(profile.Token)
	d.sess.ACL.ChangeRole(initialRole(st))

	d.logger.InfoContext(ctx, "user logged in", "category", logging.CategoryAuth, "user_id", profile.UserID)
	return resp, nil
}

// userInfoFor returns the stored userInfo overrides when they belong to
// userID. Overrides left by another user are removed from storage.
func (d *Dispatcher) userInfoFor(ctx context.Context, userID string) map[string]string {
	overrides := state.StoredUserInfo(ctx, d.sess.Storage)
	if len(overrides) == 0 {
		return nil
	}
	if owner := overrides["id"]; owner != "" && owner == userID {
		return overrides
	}
	if err := d.sess.Storage.RemoveItem(ctx, storage.KeyUserInfo); err != nil {
		d.logger.WarnContext(ctx, "failed to remove user info", "category", logging.CategorySession, "error", err)
	}
	return nil
}

func (d *Dispatcher) failLogin(ctx context.Context, err error) {
	d.sess.State.AuthFailure(err)
	d.sess.API.SetToken("")
	if rmErr := d.sess.Storage.RemoveItem(ctx, storage.KeyToken); rmErr != nil {
		d.logger.ErrorContext(ctx, "failed to remove token", "error", rmErr)
	}
}

// LoginAsync runs Login in a goroutine. The channel yields exactly one Result.
func (d *Dispatcher) LoginAsync(ctx context.Context, creds apiclient.Credentials) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		resp, err := d.Login(ctx, creds)
		ch <- Result{Response: resp, Err: err}
	}()
	return ch
}

// Logout invalidates the token on the backend and clears the local session.
// The local session is cleared even when the backend call fails; the error is
// recorded on the state and returned.
func (d *Dispatcher) Logout(ctx context.Context) error {
	d.authMu.Lock()
	defer d.authMu.Unlock()

	st := d.sess.State
	userID := st.Profile().UserID
	netErr := d.sess.API.Logout(ctx)
	if netErr != nil {
		st.AuthFailure(netErr)
		d.logger.WarnContext(ctx, "logout request failed", "category", logging.CategoryAuth, "user_id", userID, "error", netErr)
	}

	st.ClearAuth()
	d.sess.API.SetToken("")
	if err := storage.ClearSession(ctx, d.sess.Storage); err != nil {
		d.logger.ErrorContext(ctx, "failed to clear stored session", "error", err)
	}

	if netErr != nil {
		return fmt.Errorf("logout: %w", netErr)
	}
	d.logger.InfoContext(ctx, "user logged out", "category", logging.CategoryAuth, "user_id", userID)
	return nil
}

// UpdateUserInfo merges payload into the active user and persists the merged
// object. Storage failures are logged, not returned.
func (d *Dispatcher) UpdateUserInfo(ctx context.Context, payload map[string]string) map[string]string {
	clean := make(map[string]string, len(payload))
	for k, v := range payload {
		clean[k] = html.UnescapeString(sanitizer.Sanitize(v))
	}

	merged := d.sess.State.UpdateUserInfo(clean)

	raw, err := json.Marshal(merged)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to encode user info", "error", err)
		return merged
	}
	if err := d.sess.Storage.SetItem(ctx, storage.KeyUserInfo, string(raw)); err != nil {
		d.logger.WarnContext(ctx, "failed to persist user info", "category", logging.CategorySession, "error", err)
	}
	return merged
}

// UpdateUserRole applies the role to the ACL through the payload callback and
// records it on the active user. The role is not validated.
func (d *Dispatcher) UpdateUserRole(ctx context.Context, p RolePayload) map[string]string {
	if p.ACLChangeRole != nil {
		p.ACLChangeRole(p.UserRole)
	}
	return d.UpdateUserInfo(ctx, map[string]string{KeyUserRole: p.UserRole})
}
