// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Well-known menu location keys registered by default.
const (
	LocationPrimary = "primary"
	LocationFooter  = "footer"
)

// MenuLocation is a registry entry for a valid location key (a layout
// slot menus can be assigned to). Purely descriptive: the resolver only
// uses it to validate location keys.
type MenuLocation struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
