// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"maps"
	"sync"
)

// Memory is an in-process Storage. The zero value is not usable; use NewMemory.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemory returns a Memory pre-populated with seed.
func NewMemory(seed map[string]string) *Memory {
	items := make(map[string]string, len(seed))
	maps.Copy(items, seed)
	return &Memory{items: items}
}

// GetItem implements Storage.
func (m *Memory) GetItem(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

// SetItem implements Storage.
func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

// RemoveItem implements Storage.
func (m *Memory) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Snapshot returns a copy of all items.
func (m *Memory) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.items)
}

var _ Storage = (*Memory)(nil)
