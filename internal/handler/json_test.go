// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertJSONResponse validates common JSON response properties.
func assertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantSuccess bool) map[string]any {
	t.Helper()

	assert.Equal(t, wantStatus, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, wantSuccess, resp["success"])
	return resp
}

func TestWriteJSONError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		message    string
	}{
		{"bad request", http.StatusBadRequest, "Invalid input"},
		{"unauthorized", http.StatusUnauthorized, "Access denied"},
		{"unprocessable", http.StatusUnprocessableEntity, "theme must be one of light"},
		{"empty message", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeJSONError(w, tt.statusCode, tt.message)

			resp := assertJSONResponse(t, w, tt.statusCode, false)
			assert.Equal(t, tt.message, resp["error"])
		})
	}
}

func TestWriteJSONSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSONSuccess(w, map[string]any{"theme": "dark"})

	resp := assertJSONResponse(t, w, http.StatusOK, true)
	assert.Equal(t, "dark", resp["theme"])

	w = httptest.NewRecorder()
	writeJSONSuccess(w, nil)
	assertJSONResponse(t, w, http.StatusOK, true)
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"theme":"dark"}`, ""},
		{"empty", ``, "request body is empty"},
		{"malformed", `{"theme":`, "invalid JSON"},
		{"unknown field", `{"other":1}`, "invalid JSON"},
		{"trailing object", `{"theme":"a"}{"theme":"b"}`, "single JSON object"},
		{"too large", `{"theme":"` + strings.Repeat("x", maxJSONBody) + `"}`, "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst themeRequest
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := decodeJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "dark", dst.Theme)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
