// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import "github.com/sellerhub/navcore/internal/model"

// FilterTree returns a copy of the forest containing only nodes visible
// to the viewer. Children of an excluded node are excluded with it, even
// if they would be visible on their own.
func FilterTree(nodes []*model.MenuNode, viewer model.Viewer) []*model.MenuNode {
	var out []*model.MenuNode
	for _, n := range nodes {
		if !nodeVisible(n, viewer) {
			continue
		}
		c := *n
		c.Children = FilterTree(n.Children, viewer)
		out = append(out, &c)
	}
	return out
}

func nodeVisible(n *model.MenuNode, viewer model.Viewer) bool {
	if n.Display == model.DisplayHide {
		return false
	}
	roles := n.Audience.Roles
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		switch role {
		case model.AudienceEveryone:
			return true
		case model.AudienceLoggedOut:
			if !viewer.LoggedIn {
				return true
			}
		default:
			if viewer.LoggedIn && viewer.Role == role {
				return true
			}
		}
	}
	return false
}
