// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/adminpanel/internal/apiclient"
	"github.com/olegiv/adminpanel/internal/dispatch"
	"github.com/olegiv/adminpanel/internal/logging"
	"github.com/olegiv/adminpanel/internal/middleware"
	"github.com/olegiv/adminpanel/internal/render"
)

// AuthHandler handles login and logout form posts.
type AuthHandler struct {
	renderer        *render.Renderer
	loginProtection *middleware.LoginProtection
	logger          *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. loginProtection may be nil.
func NewAuthHandler(renderer *render.Renderer, loginProtection *middleware.LoginProtection, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		renderer:        renderer,
		loginProtection: loginProtection,
		logger:          logger,
	}
}

// Login handles POST /pages/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if sess.State.IsAuthenticated() {
		http.Redirect(w, r, redirectRoot, http.StatusSeeOther)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		flashError(w, r, h.renderer, redirectLogin, "Email and password are required")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			h.logger.WarnContext(r.Context(), "login attempt on locked account",
				"category", logging.CategoryAuth, "email", email, "remaining", remaining)
			flashError(w, r, h.renderer, redirectLogin, lockedMessage(remaining))
			return
		}
	}

	d := dispatch.New(sess, h.logger)
	if _, err := d.Login(r.Context(), apiclient.Credentials{Email: email, Password: password}); err != nil {
		h.loginFailed(w, r, email, err)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}
	flashSuccess(w, r, h.renderer, redirectRoot, "Welcome back!")
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, email string, err error) {
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "login request failed",
			"category", logging.CategoryAuth, "email", email, "error", err)
		flashError(w, r, h.renderer, redirectLogin, "The login service is unavailable. Please try again later.")
		return
	}

	h.logger.InfoContext(r.Context(), "login rejected",
		"category", logging.CategoryAuth, "email", email, "status", apiErr.StatusCode)

	if h.loginProtection == nil {
		flashError(w, r, h.renderer, redirectLogin, "Invalid email or password")
		return
	}
	if locked, lockout := h.loginProtection.RecordFailedAttempt(email); locked {
		flashError(w, r, h.renderer, redirectLogin, lockedMessage(lockout))
		return
	}
	remaining := h.loginProtection.RemainingAttempts(email)
	flashError(w, r, h.renderer, redirectLogin,
		fmt.Sprintf("Invalid email or password. %d attempt(s) remaining.", remaining))
}

// Logout handles POST /logout. The local session is cleared even when the
// API cannot be reached.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	d := dispatch.New(sess, h.logger)
	if err := d.Logout(r.Context()); err != nil {
		flashAndRedirect(w, r, h.renderer, redirectLogin,
			"You have been signed out locally, but the server could not be reached.", "warning")
		return
	}
	flashSuccess(w, r, h.renderer, redirectLogin, "You have been signed out.")
}

func lockedMessage(d time.Duration) string {
	return fmt.Sprintf("Account temporarily locked. Try again in %s.", d.Round(time.Minute).String())
}
