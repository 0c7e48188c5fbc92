// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Event is a row of the event log.
type Event struct {
	ID          int64
	Level       string
	Category    string
	Message     string
	RequestPath string
	Metadata    string
	CreatedAt   time.Time
}

// CreateEventParams holds the columns written by CreateEvent.
type CreateEventParams struct {
	Level       string
	Category    string
	Message     string
	RequestPath string
	Metadata    string
	CreatedAt   time.Time
}

// Queries wraps the prepared SQL used by the application.
type Queries struct {
	db *sql.DB
}

// New returns Queries bound to db.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

const createEvent = `INSERT INTO events (level, category, message, request_path, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

// CreateEvent inserts an event and returns its ID.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (int64, error) {
	if arg.Metadata == "" {
		arg.Metadata = "{}"
	}
	res, err := q.db.ExecContext(ctx, createEvent,
		arg.Level, arg.Category, arg.Message, arg.RequestPath, arg.Metadata, arg.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("creating event: %w", err)
	}
	return res.LastInsertId()
}

const listRecentEvents = `SELECT id, level, category, message, request_path, metadata, created_at
FROM events ORDER BY created_at DESC, id DESC LIMIT ?`

// ListRecentEvents returns the newest events first.
func (q *Queries) ListRecentEvents(ctx context.Context, limit int) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listRecentEvents, limit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.RequestPath, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

const deleteEventsBefore = `DELETE FROM events WHERE created_at < ?`

// DeleteEventsBefore removes events older than cutoff and returns how many were removed.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteEventsBefore, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting events: %w", err)
	}
	return res.RowsAffected()
}

// Ping checks the database connection.
func (q *Queries) Ping(ctx context.Context) error {
	return q.db.PingContext(ctx)
}
