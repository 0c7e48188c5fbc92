// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package acl

import "testing"

func TestNew_DefaultsToPublic(t *testing.T) {
	if got := New("").Role(); got != RolePublic {
		t.Errorf("Role() = %q, want %q", got, RolePublic)
	}
}

func TestChangeRole_NoValidation(t *testing.T) {
	a := New(RoleEditor)
	a.ChangeRole("superhero")
	if got := a.Role(); got != "superhero" {
		t.Errorf("Role() = %q, want %q", got, "superhero")
	}
}

func TestAllows(t *testing.T) {
	tests := []struct {
		name string
		role string
		rule string
		want bool
	}{
		{"admin satisfies editor", RoleAdmin, RoleEditor, true},
		{"admin satisfies admin", RoleAdmin, RoleAdmin, true},
		{"editor satisfies editor", RoleEditor, RoleEditor, true},
		{"editor denied admin", RoleEditor, RoleAdmin, false},
		{"public denied editor", RolePublic, RoleEditor, false},
		{"public satisfies public", RolePublic, RolePublic, true},
		{"empty rule allows", RolePublic, "", true},
		{"unknown rule denies", RoleAdmin, "owner", false},
		{"unknown role denied", "guest", RoleEditor, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.role).Allows(tt.rule); got != tt.want {
				t.Errorf("Allows(%q) with role %q = %v, want %v", tt.rule, tt.role, got, tt.want)
			}
		})
	}
}

func TestExceeds(t *testing.T) {
	tests := []struct {
		role    string
		ceiling string
		want    bool
	}{
		{RoleAdmin, RoleEditor, true},
		{RoleAdmin, RolePublic, true},
		{RoleEditor, RolePublic, true},
		{RoleEditor, "", true},
		{RoleEditor, RoleEditor, false},
		{RolePublic, RoleAdmin, false},
		{RoleEditor, RoleAdmin, false},
		{"owner", RolePublic, false},
	}

	for _, tt := range tests {
		if got := Exceeds(tt.role, tt.ceiling); got != tt.want {
			t.Errorf("Exceeds(%q, %q) = %v, want %v", tt.role, tt.ceiling, got, tt.want)
		}
	}
}
