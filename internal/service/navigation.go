// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sellerhub/navcore/internal/cache"
	"github.com/sellerhub/navcore/internal/model"
)

// RenderRecorder receives render timing samples for performance reports.
type RenderRecorder interface {
	RecordRenderTime(menuID int64, d time.Duration)
}

// NavigationService answers the main question of the engine: which menu,
// with which visible nodes, for this request and viewer. Filtered trees
// are cached per menu version and viewer context.
type NavigationService struct {
	resolver *Resolver
	trees    *TreeService
	cache    *cache.RenderCache
	perf     RenderRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewNavigationService creates a NavigationService. The recorder may be
// nil when performance tracking is disabled.
func NewNavigationService(resolver *Resolver, trees *TreeService, rc *cache.RenderCache, perf RenderRecorder, logger *slog.Logger) *NavigationService {
	return &NavigationService{
		resolver: resolver,
		trees:    trees,
		cache:    rc,
		perf:     perf,
		logger:   logger,
		now:      time.Now,
	}
}

// ResolvedMenu is the outcome of a navigation request.
type ResolvedMenu struct {
	Menu  model.Menu        `json:"menu"`
	Nodes []*model.MenuNode `json:"nodes"`
}

// Menu resolves the request to a menu and returns its tree filtered for
// the viewer. The filtered tree is served from cache when the menu has
// not changed since it was rendered.
func (s *NavigationService) Menu(ctx context.Context, req ResolveRequest, viewer model.Viewer) (ResolvedMenu, error) {
	menu, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		return ResolvedMenu{}, err
	}

	key := cache.NewContext(viewer).Key(menu.ID)
	payload, err := s.cache.GetOrCompute(key, menu.ID, menu.UpdatedAt, func() ([]byte, error) {
		return s.render(ctx, menu.ID, viewer)
	})
	if err != nil {
		return ResolvedMenu{}, err
	}

	var nodes []*model.MenuNode
	if err := json.Unmarshal(payload, &nodes); err != nil {
		return ResolvedMenu{}, err
	}
	return ResolvedMenu{Menu: menu, Nodes: nodes}, nil
}

// Tree returns a menu's filtered tree without resolution, bypassing the
// resolver for direct menu access.
func (s *NavigationService) Tree(ctx context.Context, menuID int64, viewer model.Viewer) ([]*model.MenuNode, error) {
	menu, err := s.trees.GetMenu(ctx, menuID)
	if err != nil {
		return nil, err
	}

	key := cache.NewContext(viewer).Key(menu.ID)
	payload, err := s.cache.GetOrCompute(key, menu.ID, menu.UpdatedAt, func() ([]byte, error) {
		return s.render(ctx, menu.ID, viewer)
	})
	if err != nil {
		return nil, err
	}

	var nodes []*model.MenuNode
	if err := json.Unmarshal(payload, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// Warm precomputes the filtered tree for a menu and viewer context so the
// first real request hits the cache.
func (s *NavigationService) Warm(ctx context.Context, menuID int64, viewer model.Viewer) error {
	menu, err := s.trees.GetMenu(ctx, menuID)
	if err != nil {
		return err
	}
	key := cache.NewContext(viewer).Key(menu.ID)
	_, err = s.cache.GetOrCompute(key, menu.ID, menu.UpdatedAt, func() ([]byte, error) {
		return s.render(ctx, menu.ID, viewer)
	})
	return err
}

// render builds and serializes the filtered tree, recording how long the
// build took.
func (s *NavigationService) render(ctx context.Context, menuID int64, viewer model.Viewer) ([]byte, error) {
	start := s.now()
	tree, err := s.trees.GetTree(ctx, menuID)
	if err != nil {
		return nil, err
	}
	filtered := FilterTree(tree, viewer)
	payload, err := json.Marshal(filtered)
	if err != nil {
		return nil, err
	}
	if s.perf != nil {
		s.perf.RecordRenderTime(menuID, s.now().Sub(start))
	}
	return payload, nil
}
