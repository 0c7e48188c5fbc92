// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX sessions_expiry_idx ON sessions(expiry);
	`)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_DevMode(t *testing.T) {
	sm := New(setupTestDB(t), Options{IsDev: true})

	assert.False(t, sm.Cookie.Secure)
	assert.NotEqual(t, ProductionCookieName, sm.Cookie.Name)
	assert.Equal(t, DefaultLifetime, sm.Lifetime)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, sm.Cookie.SameSite)
}

func TestNew_ProductionMode(t *testing.T) {
	sm := New(setupTestDB(t), Options{Lifetime: 2 * time.Hour})

	assert.True(t, sm.Cookie.Secure)
	assert.Equal(t, ProductionCookieName, sm.Cookie.Name)
	assert.Equal(t, "/", sm.Cookie.Path)
	assert.Equal(t, 2*time.Hour, sm.Lifetime)
}

func TestNew_SQLiteRoundTrip(t *testing.T) {
	sm := New(setupTestDB(t), Options{IsDev: true})

	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)
	sm.Put(ctx, "ls:user-token", "T1")

	token, _, err := sm.Commit(ctx)
	require.NoError(t, err)

	ctx2, err := sm.Load(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "T1", sm.GetString(ctx2, "ls:user-token"))
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(RedisOptions{URL: "redis://" + mr.Addr(), Prefix: "test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestNewRedisStore_RequiresURL(t *testing.T) {
	_, err := NewRedisStore(RedisOptions{})
	assert.Error(t, err)
}

func TestRedisStore_CommitFindDelete(t *testing.T) {
	store, mr := newRedisStore(t)

	require.NoError(t, store.Commit("tok", []byte("data"), time.Now().Add(time.Hour)))
	assert.True(t, mr.Exists("test:session:tok"))

	b, found, err := store.Find("tok")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("data"), b)

	require.NoError(t, store.Delete("tok"))
	_, found, err = store.Find("tok")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := newRedisStore(t)

	require.NoError(t, store.Commit("tok", []byte("data"), time.Now().Add(time.Minute)))
	mr.FastForward(2 * time.Minute)

	_, found, err := store.Find("tok")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_PastExpiryDeletes(t *testing.T) {
	store, mr := newRedisStore(t)

	require.NoError(t, store.Commit("tok", []byte("data"), time.Now().Add(time.Hour)))
	require.NoError(t, store.Commit("tok", []byte("data"), time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists("test:session:tok"))
}

func TestRedisStore_WithSessionManager(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStoreWithClient(client, "ap:")
	require.NoError(t, store.Ping(context.Background()))

	sm := New(nil, Options{IsDev: true, Store: store})

	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)
	sm.Put(ctx, "ls:user-id", "U1")
	token, _, err := sm.Commit(ctx)
	require.NoError(t, err)

	ctx2, err := sm.Load(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "U1", sm.GetString(ctx2, "ls:user-id"))
}
