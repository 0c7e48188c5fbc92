// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package acl holds the client-side access-control role and answers
// capability checks against route rules.
package acl

import "sync"

// User roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RolePublic = "public"
)

// roleLevel returns a numeric level for role hierarchy.
// Higher level = more permissions. Unknown roles have level 0.
func roleLevel(role string) int {
	switch role {
	case RoleAdmin:
		return 2
	case RoleEditor:
		return 1
	default:
		return 0
	}
}

// Exceeds reports whether role ranks above ceiling. Unknown roles rank
// with public.
func Exceeds(role, ceiling string) bool {
	return roleLevel(role) > roleLevel(ceiling)
}

// ACL holds the current role. It is safe for concurrent use.
type ACL struct {
	mu   sync.RWMutex
	role string
}

// New returns an ACL starting at role. An empty role means public.
func New(role string) *ACL {
	if role == "" {
		role = RolePublic
	}
	return &ACL{role: role}
}

// Role returns the current role.
func (a *ACL) Role() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.role
}

// ChangeRole replaces the current role. The value is not validated.
func (a *ACL) ChangeRole(role string) {
	a.mu.Lock()
	a.role = role
	a.mu.Unlock()
}

// Allows reports whether the current role satisfies rule. Roles are
// hierarchical, so admin satisfies "editor". An empty rule allows everyone;
// an unknown rule allows no one.
func (a *ACL) Allows(rule string) bool {
	if rule == "" {
		return true
	}
	required := roleLevel(rule)
	if required == 0 && rule != RolePublic {
		return false
	}
	return roleLevel(a.Role()) >= required
}
