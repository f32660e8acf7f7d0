// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// RoleAnonymous is the role bucket used for viewers without an identity.
const RoleAnonymous = "anonymous"

// Viewer carries the request identity supplied by the identity boundary.
// The engine never resolves identities itself.
type Viewer struct {
	UserID   *int64 `json:"user_id,omitempty"`
	Role     string `json:"role,omitempty"`
	LoggedIn bool   `json:"logged_in"`
}

// RoleBucket returns the cache-key role bucket for the viewer.
func (v Viewer) RoleBucket() string {
	if v.Role == "" {
		return RoleAnonymous
	}
	return v.Role
}
