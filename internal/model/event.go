// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strconv"
	"time"
)

// Device class values derived from user agents.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

// ClickEvent is an append-only telemetry record for a click on a menu
// node. Events are never mutated after creation and are retained for a
// bounded window before being purged.
type ClickEvent struct {
	ID        int64     `json:"id"`
	MenuID    int64     `json:"menu_id"`
	NodeID    int64     `json:"node_id"`
	UserID    *int64    `json:"user_id,omitempty"`
	SessionID string    `json:"session_id"`
	UserAgent string    `json:"user_agent,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	PageURL   string    `json:"page_url,omitempty"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ViewerKey returns the identifier used for unique-viewer counting:
// the user id when present, otherwise the session id.
func (e ClickEvent) ViewerKey() string {
	if e.UserID != nil {
		return "u:" + strconv.FormatInt(*e.UserID, 10)
	}
	return "s:" + e.SessionID
}
