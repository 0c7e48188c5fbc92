// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/adminpanel/internal/apiclient"
	"github.com/olegiv/adminpanel/internal/middleware"
	"github.com/olegiv/adminpanel/internal/render"
	"github.com/olegiv/adminpanel/internal/router"
	"github.com/olegiv/adminpanel/internal/testutil"
	"github.com/olegiv/adminpanel/web"
)

const loginBody = `{"token":"T1","_id":"U1","photo":"p.png","email":"a@b.com","firstname":"ada","lastname":"lovelace","usertype":"editor"}`

// fakeAPI is the upstream user API.
type fakeAPI struct {
	srv         *httptest.Server
	loginStatus atomic.Int32
	loginReply  atomic.Pointer[string]
	logoutCode  atomic.Int32
	logouts     atomic.Int32
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.loginStatus.Store(http.StatusOK)
	f.logoutCode.Store(http.StatusOK)
	f.setLoginReply(loginBody)
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case apiclient.LoginPath:
			code := int(f.loginStatus.Load())
			w.WriteHeader(code)
			if code == http.StatusOK {
				_, _ = io.WriteString(w, *f.loginReply.Load())
			}
		case apiclient.LogoutPath:
			f.logouts.Add(1)
			w.WriteHeader(int(f.logoutCode.Load()))
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

// setLoginReply changes the body returned by a successful login.
func (f *fakeAPI) setLoginReply(body string) {
	f.loginReply.Store(&body)
}

// newRenderer builds the renderer from the embedded templates the same way
// cmd/adminpanel does.
func newRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()
	templatesFS, err := web.TemplatesFS()
	require.NoError(t, err)
	renderer, err := render.New(render.Config{TemplatesFS: templatesFS, SessionManager: sm})
	require.NoError(t, err)
	return renderer
}

// testApp wires the handlers the way cmd/adminpanel does, minus the
// database and CSRF.
type testApp struct {
	srv    *httptest.Server
	client *http.Client
	api    *fakeAPI
	lp     *middleware.LoginProtection
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithRules(t, false)
}

// newTestAppWithRules is newTestApp with route rule enforcement toggled.
func newTestAppWithRules(t *testing.T, enforceRules bool) *testApp {
	t.Helper()

	api := newFakeAPI(t)
	sm := scs.New()
	renderer := newRenderer(t, sm)

	base := apiclient.New(apiclient.Config{BaseURL: api.srv.URL})
	base.MarkReady()
	logger := testutil.TestLoggerSilent()
	lp := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	table := router.NewTable(router.Options{EnforceRules: enforceRules, Logger: logger})

	authHandler := NewAuthHandler(renderer, lp, logger)
	uiHandler := NewUIHandler(logger)
	pageHandler := NewPageHandler(renderer)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.LoadSession(sm, base, "light"))

	r.Post(RouteLogin, authHandler.Login)
	r.Post(RouteLogout, authHandler.Logout)
	r.Route(RouteUI, func(r chi.Router) {
		r.Get(RouteUIState, uiHandler.State)
		r.Post(RouteUITheme, uiHandler.Theme)
		r.Post(RouteUIOverlay, uiHandler.Overlay)
		r.Post(RouteUIMenuWidth, uiHandler.MenuWidth)
		r.Post(RouteUIWindowWidth, uiHandler.WindowWidth)
		r.Post(RouteUIStarred, uiHandler.Starred)
		r.Post(RouteUIStarredArrange, uiHandler.ArrangeStarred)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Post(RouteUIUserInfo, uiHandler.UserInfo)
			r.Post(RouteUIRole, uiHandler.Role)
		})
	})
	table.Mount(r, pageHandler)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testApp{srv: srv, client: client, api: api, lp: lp}
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.srv.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := a.client.PostForm(a.srv.URL+path, form)
	require.NoError(t, err)
	readBody(t, resp)
	return resp
}

func (a *testApp) postJSON(t *testing.T, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := a.client.Post(a.srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	raw := readBody(t, resp)
	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal([]byte(raw), &out), raw)
	}
	return resp, out
}

func (a *testApp) login(t *testing.T) {
	t.Helper()
	resp := a.postForm(t, RouteLogin, url.Values{"email": {"a@b.com"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
