// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/adminpanel/internal/router"
)

func (a *testApp) uiState(t *testing.T) map[string]any {
	t.Helper()
	resp, body := a.get(t, RouteUI+RouteUIState)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func uiOf(t *testing.T, out map[string]any) map[string]any {
	t.Helper()
	st, ok := out["state"].(map[string]any)
	require.True(t, ok)
	ui, ok := st["ui"].(map[string]any)
	require.True(t, ok)
	return ui
}

func TestUIState_Anonymous(t *testing.T) {
	app := newTestApp(t)

	out := app.uiState(t)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "public", out["role"])

	st := out["state"].(map[string]any)
	assert.Equal(t, "unauthenticated", st["status"])
	assert.Equal(t, "light", uiOf(t, out)["theme"])
}

func TestUIState_NeverExposesToken(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	out := app.uiState(t)
	st := out["state"].(map[string]any)
	assert.Equal(t, "authenticated", st["status"])
	assert.Equal(t, "", st["token"])
	assert.Equal(t, "U1", st["userId"])
	assert.Equal(t, "editor", out["role"])
}

func TestUITheme(t *testing.T) {
	app := newTestApp(t)

	resp, out := app.postJSON(t, RouteUI+RouteUITheme, `{"theme":"dark"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dark", out["theme"])

	assert.Equal(t, "dark", uiOf(t, app.uiState(t))["theme"])
}

func TestUITheme_Invalid(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown theme", `{"theme":"neon"}`, http.StatusUnprocessableEntity},
		{"malformed", `{"theme":`, http.StatusBadRequest},
		{"empty body", ``, http.StatusBadRequest},
		{"unknown field", `{"colour":"dark"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := app.postJSON(t, RouteUI+RouteUITheme, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.Equal(t, false, out["success"])
		})
	}
	assert.Equal(t, "light", uiOf(t, app.uiState(t))["theme"])
}

func TestUIOverlay_Toggles(t *testing.T) {
	app := newTestApp(t)

	_, out := app.postJSON(t, RouteUI+RouteUIOverlay, `{}`)
	assert.Equal(t, true, out["bodyOverlay"])
	_, out = app.postJSON(t, RouteUI+RouteUIOverlay, `{}`)
	assert.Equal(t, false, out["bodyOverlay"])
}

func TestUIMenuWidth(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.postJSON(t, RouteUI+RouteUIMenuWidth, `{"width":"reduced"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "reduced", uiOf(t, app.uiState(t))["verticalNavMenuWidth"])

	resp, _ = app.postJSON(t, RouteUI+RouteUIMenuWidth, `{"width":"huge"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestUIWindowWidth(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.postJSON(t, RouteUI+RouteUIWindowWidth, `{"width":1280}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 1280, uiOf(t, app.uiState(t))["windowWidth"], 0)

	resp, _ = app.postJSON(t, RouteUI+RouteUIWindowWidth, `{"width":-1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestUIStarred(t *testing.T) {
	app := newTestApp(t)

	resp, out := app.postJSON(t, RouteUI+RouteUIStarred, `{"page":{"title":"Upload","url":"/upload"},"starred":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, out["starredPages"], 1)

	app.postJSON(t, RouteUI+RouteUIStarred, `{"page":{"title":"FAQ","url":"/pages/faq"},"starred":true}`)
	resp, out = app.postJSON(t, RouteUI+RouteUIStarredArrange,
		`{"limited":[{"title":"FAQ","url":"/pages/faq"},{"title":"Upload","url":"/upload"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pages := out["starredPages"].([]any)
	require.Len(t, pages, 2)
	assert.Equal(t, "/pages/faq", pages[0].(map[string]any)["url"])

	_, out = app.postJSON(t, RouteUI+RouteUIStarred, `{"page":{"title":"FAQ","url":"/pages/faq"},"starred":false}`)
	assert.Len(t, out["starredPages"], 1)

	resp, _ = app.postJSON(t, RouteUI+RouteUIStarred, `{"page":{"title":"x"},"starred":true}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = app.postJSON(t, RouteUI+RouteUIStarredArrange, `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestUIUserInfo_RequiresSession(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.postJSON(t, RouteUI+RouteUIUserInfo, `{"about":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = app.postJSON(t, RouteUI+RouteUIRole, `{"role":"admin"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUIUserInfo_SanitisesAndPersists(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp, out := app.postJSON(t, RouteUI+RouteUIUserInfo, `{"about":"<b>hello</b>","status":"online"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	active := out["activeUser"].(map[string]any)
	assert.Equal(t, "hello", active["about"])
	assert.Equal(t, "online", active["status"])

	st := app.uiState(t)["state"].(map[string]any)
	assert.Equal(t, "hello", st["activeUser"].(map[string]any)["about"])
}

func TestUIRole(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp, out := app.postJSON(t, RouteUI+RouteUIRole, `{"role":"public"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public", out["role"])
	assert.Equal(t, "public", out["activeUser"].(map[string]any)["userRole"])

	// The role survives into the next request.
	assert.Equal(t, "public", app.uiState(t)["role"])

	resp, _ = app.postJSON(t, RouteUI+RouteUIRole, `{"role":"root"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestUIRole_CannotExceedUserType(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp, out := app.postJSON(t, RouteUI+RouteUIRole, `{"role":"admin"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "editor", app.uiState(t)["role"])
}

func TestUIRole_PublicUserStaysNotAuthorized(t *testing.T) {
	app := newTestAppWithRules(t, true)
	app.api.setLoginReply(`{"token":"T2","_id":"U2","email":"p@b.com","usertype":"public"}`)
	app.login(t)

	resp, _ := app.get(t, "/pages/faq")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, router.PathNotAuthorized, resp.Header.Get("Location"))

	resp, _ = app.postJSON(t, RouteUI+RouteUIRole, `{"role":"admin"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = app.get(t, "/pages/faq")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, router.PathNotAuthorized, resp.Header.Get("Location"))
	assert.Equal(t, "public", app.uiState(t)["role"])
}

func TestUIRole_DoesNotCarryToNextUser(t *testing.T) {
	app := newTestAppWithRules(t, true)
	app.api.setLoginReply(`{"token":"TA","_id":"UA","email":"a@b.com","usertype":"admin"}`)
	app.login(t)

	resp, _ := app.postJSON(t, RouteUI+RouteUIRole, `{"role":"admin"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = app.postForm(t, RouteLogout, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	app.api.setLoginReply(`{"token":"TB","_id":"UB","email":"b@b.com","usertype":"public"}`)
	app.login(t)

	out := app.uiState(t)
	assert.Equal(t, "public", out["role"])
	active := out["state"].(map[string]any)["activeUser"].(map[string]any)
	assert.Equal(t, "UB", active["id"])
	assert.Nil(t, active["userRole"])

	resp, _ = app.get(t, "/pages/faq")
	assert.Equal(t, router.PathNotAuthorized, resp.Header.Get("Location"))
}
