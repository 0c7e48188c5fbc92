// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/olegiv/adminpanel/internal/version"
)

// checkTimeout bounds each dependency check.
const checkTimeout = 3 * time.Second

// Pinger is a dependency whose reachability is reported by the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

// Ping calls f.
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler handles health check requests.
type HealthHandler struct {
	// required checks gate readiness; optional ones only degrade /health.
	required  map[string]Pinger
	optional  map[string]Pinger
	startTime time.Time
}

// NewHealthHandler creates a new health handler. The database check is
// required for readiness.
func NewHealthHandler(db Pinger) *HealthHandler {
	h := &HealthHandler{
		required:  map[string]Pinger{},
		optional:  map[string]Pinger{},
		startTime: time.Now(),
	}
	if db != nil {
		h.required["database"] = db
	}
	return h
}

// AddCheck registers a dependency check. Required checks also gate
// /health/ready.
func (h *HealthHandler) AddCheck(name string, p Pinger, required bool) {
	if required {
		h.required[name] = p
		return
	}
	h.optional[name] = p
}

// StartTime returns when the handler (and application) was started.
func (h *HealthHandler) StartTime() time.Time {
	return h.startTime
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   version.Info     `json:"version"`
	Checks    map[string]Check `json:"checks"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]Check, len(h.required)+len(h.optional))
	overall := "healthy"
	for name, p := range h.required {
		c := runCheck(r.Context(), p)
		checks[name] = c
		if c.Status != "healthy" {
			overall = "unhealthy"
		}
	}
	for name, p := range h.optional {
		c := runCheck(r.Context(), p)
		checks[name] = c
		if c.Status != "healthy" && overall == "healthy" {
			overall = "degraded"
		}
	}

	status := HealthStatus{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   version.Get(),
		Checks:    checks,
	}
	if r.URL.Query().Get("verbose") == "true" {
		status.System = &SystemInfo{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			NumCPU:       runtime.NumCPU(),
		}
	}

	code := http.StatusOK
	if overall == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready - checks if the service is ready to accept traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.required))
	for name := range h.required {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if c := runCheck(r.Context(), h.required[name]); c.Status != "healthy" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status": "not_ready",
				"check":  name,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func runCheck(ctx context.Context, p Pinger) Check {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency.String(),
		}
	}
	return Check{
		Status:  "healthy",
		Message: "Connected",
		Latency: latency.String(),
	}
}
