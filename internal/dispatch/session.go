// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package dispatch

import (
	"context"

	"github.com/olegiv/adminpanel/internal/acl"
	"github.com/olegiv/adminpanel/internal/apiclient"
	"github.com/olegiv/adminpanel/internal/state"
	"github.com/olegiv/adminpanel/internal/storage"
)

// Session bundles everything that belongs to one browser.
type Session struct {
	State   *state.State
	Storage storage.Storage
	API     *apiclient.Client
	ACL     *acl.ACL
}

// Restore builds a Session from persisted storage. The API client is cloned
// from base and released with the stored token.
func Restore(ctx context.Context, s storage.Storage, base *apiclient.Client, opts state.Options) *Session {
	st := state.Restore(ctx, s, opts)

	api := base.Clone()
	api.Restore(ctx, apiclient.TokenSourceFunc(func(ctx context.Context) (string, bool) {
		token, ok := s.GetItem(ctx, storage.KeyToken)
		return token, ok && token != ""
	}))

	return &Session{
		State:   st,
		Storage: s,
		API:     api,
		ACL:     acl.New(initialRole(st)),
	}
}

// initialRole prefers a role chosen through UpdateUserRole over the user type
// returned at login. A chosen role above the user type is ignored.
func initialRole(st *state.State) string {
	usertype := st.Profile().UserType
	if role := st.ActiveUser()[KeyUserRole]; role != "" && !acl.Exceeds(role, usertype) {
		return role
	}
	return usertype
}

type ctxKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the Session stored by WithSession, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
