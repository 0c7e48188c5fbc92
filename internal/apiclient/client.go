// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apiclient wraps the backend REST API used by the admin panel.
//
// A Client carries a fixed base URL and the auth token header. Requests wait
// on a readiness barrier that is released once the stored token has been
// restored (Restore) or explicitly skipped (MarkReady).
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Client configuration constants
const (
	DefaultBaseURL  = "http://localhost:3000"
	DefaultTimeout  = 15 * time.Second
	TokenHeader     = "x-auth"
	RequestIDHeader = "X-Request-ID"
	MaxErrorBody    = 4 * 1024
	UserAgent       = "adminpanel/1.0"
)

// ErrNotReady is returned when a request is cancelled while waiting for the
// token to be restored.
var ErrNotReady = errors.New("api client not ready")

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

// RequestHook observes an outgoing request. Hooks must not replace the request.
type RequestHook func(req *http.Request)

// ResponseHook observes a response or transport error.
type ResponseHook func(req *http.Request, resp *http.Response, err error)

// TokenSource yields the persisted token, if any.
type TokenSource interface {
	StoredToken(ctx context.Context) (string, bool)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (string, bool)

// StoredToken implements TokenSource.
func (f TokenSourceFunc) StoredToken(ctx context.Context) (string, bool) { return f(ctx) }

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client issues requests against the backend API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	reqHooks  []RequestHook
	respHooks []ResponseHook

	mu    sync.RWMutex
	token string

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a Client with the default logging hooks installed.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c := &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    cfg.HTTPClient,
		logger:  cfg.Logger,
		ready:   make(chan struct{}),
	}
	c.reqHooks = []RequestHook{c.logRequest}
	c.respHooks = []ResponseHook{c.logResponse}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Clone returns a Client sharing transport and hooks, with its own token and
// an unreleased readiness barrier.
func (c *Client) Clone() *Client {
	return &Client{
		baseURL:   c.baseURL,
		http:      c.http,
		logger:    c.logger,
		reqHooks:  c.reqHooks,
		respHooks: c.respHooks,
		ready:     make(chan struct{}),
	}
}

// UseRequest appends a request hook. Not safe to call once requests are in flight.
func (c *Client) UseRequest(h RequestHook) { c.reqHooks = append(c.reqHooks, h) }

// UseResponse appends a response hook. Not safe to call once requests are in flight.
func (c *Client) UseResponse(h ResponseHook) { c.respHooks = append(c.respHooks, h) }

// SetToken sets the x-auth header value. An empty token removes the header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current header value.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Restore installs the stored token, if any, and releases the barrier.
func (c *Client) Restore(ctx context.Context, src TokenSource) {
	if src != nil {
		if token, ok := src.StoredToken(ctx); ok {
			c.SetToken(token)
		}
	}
	c.MarkReady()
}

// MarkReady releases the barrier. Calling it more than once is harmless.
func (c *Client) MarkReady() {
	c.readyOnce.Do(func() { close(c.ready) })
}

// Ready is closed once the client may issue requests.
func (c *Client) Ready() <-chan struct{} { return c.ready }

func (c *Client) wait(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrNotReady, ctx.Err())
	}
}

// do sends a request and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if token := c.Token(); token != "" {
		req.Header.Set(TokenHeader, token)
	}

	for _, h := range c.reqHooks {
		h(req)
	}

	resp, err := c.http.Do(req)
	for _, h := range c.respHooks {
		h(req, resp, err)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) logRequest(req *http.Request) {
	c.logger.DebugContext(req.Context(), "request interceptor",
		"method", req.Method,
		"url", req.URL.String(),
		"request_id", req.Header.Get(RequestIDHeader))
}

func (c *Client) logResponse(req *http.Request, resp *http.Response, err error) {
	if err != nil {
		c.logger.WarnContext(req.Context(), "response interceptor",
			"method", req.Method,
			"url", req.URL.String(),
			"error", err)
		return
	}
	c.logger.DebugContext(req.Context(), "response interceptor",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode)
}
