// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"

	"github.com/sellerhub/navcore/internal/model"
	"github.com/sellerhub/navcore/internal/store"
)

// ResolveRequest describes where a menu is being asked for.
type ResolveRequest struct {
	Location  string
	Subdomain string
	Path      string
}

// Resolver selects the best menu for a request context. Candidates are
// active menus registered at the requested location; scoped metadata
// narrows and ranks them.
type Resolver struct {
	store *store.Store
}

// NewResolver creates a Resolver.
func NewResolver(st *store.Store) *Resolver {
	return &Resolver{store: st}
}

// Resolve picks the highest-specificity active menu at the location.
// Subdomain match scores 2, path prefix match scores 1; an unscoped menu
// scores 0 and acts as the fallback. Ties keep the earliest-created menu.
func (r *Resolver) Resolve(ctx context.Context, req ResolveRequest) (model.Menu, error) {
	loc, err := r.store.GetLocationByKey(ctx, req.Location)
	if err != nil {
		return model.Menu{}, err
	}
	if !loc.IsActive {
		return model.Menu{}, model.ErrLocationNotFound
	}

	menus, err := r.store.ListActiveMenusByLocation(ctx, req.Location)
	if err != nil {
		return model.Menu{}, err
	}

	best := -1
	bestScore := -1
	for i, m := range menus {
		score, ok := scoreMenu(m.Metadata, req)
		if !ok {
			continue
		}
		// Strictly greater keeps the earliest candidate on a tie;
		// the list arrives in creation order.
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return model.Menu{}, model.ErrNoMenuAtLocation
	}
	return menus[best], nil
}

// scoreMenu reports the specificity of a menu's metadata against the
// request, and whether the menu is eligible at all. A scoped constraint
// that does not match the request disqualifies the menu.
func scoreMenu(md model.MenuMetadata, req ResolveRequest) (int, bool) {
	score := 0
	if md.Subdomain != "" {
		if !strings.EqualFold(md.Subdomain, req.Subdomain) {
			return 0, false
		}
		score += 2
	}
	if md.PathPrefix != "" {
		// Plain string prefix: "/shop" also matches "/shop2". Menus
		// needing a segment boundary should scope with a trailing slash.
		if !strings.HasPrefix(req.Path, md.PathPrefix) {
			return 0, false
		}
		score++
	}
	return score, true
}
