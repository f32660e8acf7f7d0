// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sellerhub/navcore/internal/model"
)

// InsertClickEvent appends a click event to the telemetry log.
func (s *Store) InsertClickEvent(ctx context.Context, e model.ClickEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO click_events
			(menu_id, node_id, user_id, session_id, user_agent, client_ip, referrer, page_url, country, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.MenuID, e.NodeID, nullInt64(e.UserID), e.SessionID, e.UserAgent,
		e.ClientIP, e.Referrer, e.PageURL, e.Country, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting click event: %w", err)
	}
	return nil
}

// ListClickEvents returns click events for a menu within [start, end).
func (s *Store) ListClickEvents(ctx context.Context, menuID int64, start, end time.Time) ([]model.ClickEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, menu_id, node_id, user_id, session_id, user_agent, client_ip, referrer, page_url, country, created_at
		FROM click_events
		WHERE menu_id = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at`,
		menuID, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing click events: %w", err)
	}
	defer rows.Close()

	var events []model.ClickEvent
	for rows.Next() {
		var e model.ClickEvent
		var userID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.MenuID, &e.NodeID, &userID, &e.SessionID,
			&e.UserAgent, &e.ClientIP, &e.Referrer, &e.PageURL, &e.Country, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning click event: %w", err)
		}
		e.UserID = int64Ptr(userID)
		events = append(events, e)
	}
	return events, rows.Err()
}

// PurgeClickEventsBefore deletes events older than the cutoff and returns
// the number removed.
func (s *Store) PurgeClickEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM click_events WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging click events: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
