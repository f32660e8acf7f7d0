// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Widget types, each mapping to a built-in presentation shape.
const (
	WidgetNavigation = "navigation"
	WidgetBreadcrumb = "breadcrumb"
	WidgetSitemap    = "sitemap"
	WidgetFooter     = "footer"
	WidgetMobile     = "mobile"
)

// ValidWidgetTypes contains all valid widget type values.
var ValidWidgetTypes = []string{WidgetNavigation, WidgetBreadcrumb, WidgetSitemap, WidgetFooter, WidgetMobile}

// WidgetConditions restrict where a widget renders. Each non-empty set
// must match the render context; an unconditioned widget always renders.
type WidgetConditions struct {
	Pages   []int64  `json:"pages,omitempty"`
	Roles   []string `json:"roles,omitempty"`
	Devices []string `json:"devices,omitempty"`
}

// Empty reports whether no condition sets are configured.
func (c WidgetConditions) Empty() bool {
	return len(c.Pages) == 0 && len(c.Roles) == 0 && len(c.Devices) == 0
}

// Widget places a menu projection into a layout area. When Template is
// non-empty, placeholder substitution replaces the built-in renderer for
// the widget's type.
type Widget struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Type       string           `json:"type"`
	MenuID     int64            `json:"menu_id"`
	Area       string           `json:"area,omitempty"`
	Position   int64            `json:"position"`
	Template   string           `json:"template,omitempty"`
	Conditions WidgetConditions `json:"conditions"`
	IsActive   bool             `json:"is_active"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// IsValidWidgetType checks if a widget type value is valid.
func IsValidWidgetType(t string) bool {
	for _, v := range ValidWidgetTypes {
		if v == t {
			return true
		}
	}
	return false
}
