// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/adminpanel/internal/apiclient"
	"github.com/olegiv/adminpanel/internal/dispatch"
	"github.com/olegiv/adminpanel/internal/logging"
)

func TestRequestPath(t *testing.T) {
	var got string
	h := RequestPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = logging.RequestPath(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pages/faq?x=1", nil))
	assert.Equal(t, "/pages/faq", got)
}

func TestLoadSession(t *testing.T) {
	sm := scs.New()
	api := apiclient.New(apiclient.Config{BaseURL: "http://api.test"})

	mux := http.NewServeMux()
	mux.HandleFunc("/seed", func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), "ls:user-token", "T1")
		sm.Put(r.Context(), "ls:user-id", "U1")
	})
	mux.HandleFunc("/check", func(w http.ResponseWriter, r *http.Request) {
		sess := dispatch.FromContext(r.Context())
		require.NotNil(t, sess)
		assert.True(t, sess.State.IsAuthenticated())
		assert.Equal(t, "U1", sess.State.Profile().UserID)
		assert.Equal(t, "T1", sess.API.Token())
		assert.Equal(t, "dark", sess.State.UI().Theme)
		assert.True(t, sess.State.UI().IsTouchDevice)
		w.WriteHeader(http.StatusNoContent)
	})

	h := sm.LoadAndSave(LoadSession(sm, api, "dark")(mux))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/seed", nil))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/check", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireSession(t *testing.T) {
	h := RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/state", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
