// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types shared by the store, services and
// handlers: menus, menu nodes, locations, widgets and click events.
package model

import (
	"time"
)

// Link target values for menu nodes.
const (
	TargetSelf   = "_self"
	TargetBlank  = "_blank"
	TargetParent = "_parent"
	TargetTop    = "_top"
)

// ValidTargets contains all valid link target values.
var ValidTargets = []string{TargetSelf, TargetBlank, TargetParent, TargetTop}

// Node kinds describe what a menu node points at.
const (
	NodeKindPage     = "page"      // internal page reference
	NodeKindCustom   = "custom"    // custom link
	NodeKindTaxonomy = "taxonomy"  // taxonomy archive
	NodeKindArchive  = "post_type" // content-type archive
	NodeKindPost     = "post"      // single post
)

// ValidNodeKinds contains all valid node kind values.
var ValidNodeKinds = []string{NodeKindPage, NodeKindCustom, NodeKindTaxonomy, NodeKindArchive, NodeKindPost}

// Display modes for menu nodes.
const (
	DisplayShow = "show"
	DisplayHide = "hide"
)

// Reserved audience role values.
const (
	AudienceEveryone  = "everyone"
	AudienceLoggedOut = "logged_out"
)

// MenuMetadata holds the known scoping hints plus forward-compatible
// extra data. A menu with a Subdomain hint only resolves for requests on
// that subdomain; a PathPrefix hint only resolves for paths starting with
// the prefix.
type MenuMetadata struct {
	Subdomain  string            `json:"subdomain,omitempty"`
	PathPrefix string            `json:"path_prefix,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// IsScoped reports whether the menu carries any scoping hint.
func (m MenuMetadata) IsScoped() bool {
	return m.Subdomain != "" || m.PathPrefix != ""
}

// Menu represents a named, optionally-located collection of menu nodes.
// UpdatedAt doubles as the menu's version marker: every node mutation
// bumps it, and the render cache compares it against cached entries.
type Menu struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Slug      string       `json:"slug"`
	Location  string       `json:"location,omitempty"`
	IsActive  bool         `json:"is_active"`
	Metadata  MenuMetadata `json:"metadata"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Audience describes which viewers may see a node. An empty Roles slice
// means the node is visible to everybody (legacy default-open behavior).
type Audience struct {
	Roles []string `json:"roles,omitempty"`
}

// MenuNode is a single navigation entry. Nodes form a forest per menu:
// ParentID is nil for roots, and a parent always belongs to the same menu.
type MenuNode struct {
	ID          int64             `json:"id"`
	MenuID      int64             `json:"menu_id"`
	ParentID    *int64            `json:"parent_id,omitempty"`
	Title       string            `json:"title"`
	URL         string            `json:"url,omitempty"`
	Kind        string            `json:"kind"`
	Target      string            `json:"target"`
	Icon        string            `json:"icon,omitempty"`
	Classes     []string          `json:"classes,omitempty"`
	Position    int64             `json:"position"`
	ReferenceID *int64            `json:"reference_id,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Display     string            `json:"display"`
	Audience    Audience          `json:"audience"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Children    []*MenuNode       `json:"children,omitempty"`
}

// IsValidTarget checks if a link target value is valid.
func IsValidTarget(target string) bool {
	for _, t := range ValidTargets {
		if t == target {
			return true
		}
	}
	return false
}

// IsValidNodeKind checks if a node kind value is valid.
func IsValidNodeKind(kind string) bool {
	for _, k := range ValidNodeKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// IsValidDisplay checks if a display mode value is valid.
func IsValidDisplay(display string) bool {
	return display == DisplayShow || display == DisplayHide
}
