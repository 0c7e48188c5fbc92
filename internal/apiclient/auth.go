// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/olegiv/adminpanel/internal/state"
)

// Backend endpoints
const (
	LoginPath  = "/user/login"
	LogoutPath = "/user/logout"
)

// ErrMissingToken is returned when a login response carries no token.
var ErrMissingToken = errors.New("login response has no token")

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the backend's login payload.
type LoginResponse struct {
	Token     string `json:"token"`
	ID        string `json:"_id"`
	Photo     string `json:"photo"`
	Email     string `json:"email"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	UserType  string `json:"usertype"`
}

// Profile converts the response into session data.
func (r *LoginResponse) Profile() state.Profile {
	return state.Profile{
		Token:     r.Token,
		UserID:    r.ID,
		PhotoURL:  r.Photo,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		UserType:  r.UserType,
	}
}

// Login posts credentials and returns the backend's session payload.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, LoginPath, creds, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, ErrMissingToken
	}
	return &resp, nil
}

// Logout invalidates the current token on the backend. The response body is ignored.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, LogoutPath, nil, nil)
}

// Ping checks that the backend answers at its base URL. Any HTTP response
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	err := c.do(ctx, http.MethodHead, "/", nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		return nil
	}
	return err
}
