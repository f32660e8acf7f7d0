// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the navigation engine: tree management,
// context resolution, visibility filtering, analytics and widgets.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/sellerhub/navcore/internal/model"
	"github.com/sellerhub/navcore/internal/store"
	"github.com/sellerhub/navcore/internal/util"
)

// Invalidator receives per-menu cache invalidations from tree mutations.
type Invalidator interface {
	Invalidate(menuID int64) int
}

// Invalidators fans one invalidation out to several caches and reports
// the total number of entries dropped.
type Invalidators []Invalidator

// Invalidate implements Invalidator.
func (is Invalidators) Invalidate(menuID int64) int {
	total := 0
	for _, i := range is {
		total += i.Invalidate(menuID)
	}
	return total
}

// TreeService provides CRUD over menus and menu nodes with tree
// consistency guarantees. Every mutation bumps the owning menu's version
// marker and invalidates its cached renders.
type TreeService struct {
	store  *store.Store
	cache  Invalidator
	logger *slog.Logger
	now    func() time.Time
}

// NewTreeService creates a TreeService. The invalidator may be nil for
// uncached use.
func NewTreeService(st *store.Store, cache Invalidator, logger *slog.Logger) *TreeService {
	return &TreeService{
		store:  st,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// SetInvalidator installs the cache invalidator. Used at wiring time
// when caches depend on services constructed after the tree service.
func (s *TreeService) SetInvalidator(inv Invalidator) {
	s.cache = inv
}

// CreateMenu creates a menu. An empty slug is derived from the name.
func (s *TreeService) CreateMenu(ctx context.Context, name, slug, location string, metadata model.MenuMetadata) (model.Menu, error) {
	if name == "" {
		return model.Menu{}, model.NewValidationError("name", "required")
	}
	if slug == "" {
		slug = util.Slugify(name)
	}
	if !util.IsValidSlug(slug) {
		return model.Menu{}, model.NewValidationError("slug", "invalid format")
	}

	exists, err := s.store.MenuSlugExists(ctx, slug, 0)
	if err != nil {
		return model.Menu{}, err
	}
	if exists {
		return model.Menu{}, model.ErrDuplicateSlug
	}

	if location != "" {
		if _, err := s.store.GetLocationByKey(ctx, location); err != nil {
			return model.Menu{}, err
		}
	}

	menu, err := s.store.CreateMenu(ctx, store.CreateMenuParams{
		Name:     name,
		Slug:     slug,
		Location: location,
		Metadata: metadata,
		Now:      s.now(),
	})
	if err != nil {
		return model.Menu{}, err
	}
	s.logger.Info("menu created", "menu_id", menu.ID, "slug", menu.Slug)
	return menu, nil
}

// GetMenu fetches a menu by id.
func (s *TreeService) GetMenu(ctx context.Context, id int64) (model.Menu, error) {
	return s.store.GetMenuByID(ctx, id)
}

// ListMenus returns all menus in creation order.
func (s *TreeService) ListMenus(ctx context.Context) ([]model.Menu, error) {
	return s.store.ListMenus(ctx)
}

// UpdateMenu updates a menu's fields and invalidates its cached renders.
func (s *TreeService) UpdateMenu(ctx context.Context, p store.UpdateMenuParams) (model.Menu, error) {
	if p.Name == "" {
		return model.Menu{}, model.NewValidationError("name", "required")
	}
	if !util.IsValidSlug(p.Slug) {
		return model.Menu{}, model.NewValidationError("slug", "invalid format")
	}

	exists, err := s.store.MenuSlugExists(ctx, p.Slug, p.ID)
	if err != nil {
		return model.Menu{}, err
	}
	if exists {
		return model.Menu{}, model.ErrDuplicateSlug
	}

	if p.Location != "" {
		if _, err := s.store.GetLocationByKey(ctx, p.Location); err != nil {
			return model.Menu{}, err
		}
	}

	p.Now = s.now()
	menu, err := s.store.UpdateMenu(ctx, p)
	if err != nil {
		return model.Menu{}, err
	}
	s.invalidate(menu.ID)
	return menu, nil
}

// DeleteMenu removes a menu with all its nodes and widgets.
func (s *TreeService) DeleteMenu(ctx context.Context, id int64) error {
	if err := s.store.DeleteMenu(ctx, id); err != nil {
		return err
	}
	s.invalidate(id)
	s.logger.Info("menu deleted", "menu_id", id)
	return nil
}

// AddNodeParams holds the fields for a new node. Kind, Target and
// Display default to custom/_self/show when empty.
type AddNodeParams struct {
	MenuID      int64
	ParentID    *int64
	Title       string
	URL         string
	Kind        string
	Target      string
	Icon        string
	Classes     []string
	ReferenceID *int64
	Metadata    map[string]string
	Display     string
	Audience    model.Audience
}

// AddNode appends a node under a parent (or as a root), positioned after
// its last sibling.
func (s *TreeService) AddNode(ctx context.Context, p AddNodeParams) (model.MenuNode, error) {
	if _, err := s.store.GetMenuByID(ctx, p.MenuID); err != nil {
		return model.MenuNode{}, err
	}
	if p.Title == "" {
		return model.MenuNode{}, model.NewValidationError("title", "required")
	}
	if err := normalizeNodeEnums(&p.Kind, &p.Target, &p.Display); err != nil {
		return model.MenuNode{}, err
	}

	if p.ParentID != nil {
		parent, err := s.store.GetNodeByID(ctx, *p.ParentID)
		if errors.Is(err, model.ErrNodeNotFound) {
			return model.MenuNode{}, model.ErrParentNotFound
		}
		if err != nil {
			return model.MenuNode{}, err
		}
		if parent.MenuID != p.MenuID {
			return model.MenuNode{}, model.ErrCrossMenuParent
		}
	}

	maxPos, err := s.store.MaxNodePosition(ctx, p.MenuID, p.ParentID)
	if err != nil {
		return model.MenuNode{}, err
	}

	node, err := s.store.CreateNode(ctx, store.CreateNodeParams{
		MenuID:      p.MenuID,
		ParentID:    p.ParentID,
		Title:       p.Title,
		URL:         p.URL,
		Kind:        p.Kind,
		Target:      p.Target,
		Icon:        p.Icon,
		Classes:     p.Classes,
		Position:    maxPos + 1,
		ReferenceID: p.ReferenceID,
		Metadata:    p.Metadata,
		Display:     p.Display,
		Audience:    p.Audience,
		Now:         s.now(),
	})
	if err != nil {
		return model.MenuNode{}, err
	}
	s.invalidate(p.MenuID)
	return node, nil
}

// UpdateNode updates a node's content fields.
func (s *TreeService) UpdateNode(ctx context.Context, p store.UpdateNodeParams) (model.MenuNode, error) {
	if p.Title == "" {
		return model.MenuNode{}, model.NewValidationError("title", "required")
	}
	if err := normalizeNodeEnums(&p.Kind, &p.Target, &p.Display); err != nil {
		return model.MenuNode{}, err
	}

	p.Now = s.now()
	node, err := s.store.UpdateNode(ctx, p)
	if err != nil {
		return model.MenuNode{}, err
	}
	s.invalidate(node.MenuID)
	return node, nil
}

// DeleteNode removes a node and its entire subtree, returning the number
// of nodes removed.
func (s *TreeService) DeleteNode(ctx context.Context, id int64) (int, error) {
	node, err := s.store.GetNodeByID(ctx, id)
	if err != nil {
		return 0, err
	}

	nodes, err := s.store.ListNodesByMenu(ctx, node.MenuID)
	if err != nil {
		return 0, err
	}

	// Collect the subtree breadth-first.
	children := make(map[int64][]int64)
	for _, n := range nodes {
		if n.ParentID != nil {
			children[*n.ParentID] = append(children[*n.ParentID], n.ID)
		}
	}
	subtree := []int64{id}
	for i := 0; i < len(subtree); i++ {
		subtree = append(subtree, children[subtree[i]]...)
	}

	if err := s.store.DeleteNodes(ctx, node.MenuID, subtree, s.now()); err != nil {
		return 0, err
	}
	s.invalidate(node.MenuID)
	s.logger.Info("node deleted", "node_id", id, "menu_id", node.MenuID, "removed", len(subtree))
	return len(subtree), nil
}

// Reorder applies a reorder batch atomically: any invalid entry rolls
// back the whole batch, leaving prior state intact.
func (s *TreeService) Reorder(ctx context.Context, menuID int64, entries []store.ReorderEntry) error {
	if _, err := s.store.GetMenuByID(ctx, menuID); err != nil {
		return err
	}
	if err := s.store.ReorderNodes(ctx, menuID, entries, s.now()); err != nil {
		return err
	}
	s.invalidate(menuID)
	return nil
}

// GetTree loads the menu's full node tree, ordered by position at every
// level.
func (s *TreeService) GetTree(ctx context.Context, menuID int64) ([]*model.MenuNode, error) {
	if _, err := s.store.GetMenuByID(ctx, menuID); err != nil {
		return nil, err
	}
	nodes, err := s.store.ListNodesByMenu(ctx, menuID)
	if err != nil {
		return nil, err
	}
	return buildTree(nodes), nil
}

// CreateLocation registers a new layout location.
func (s *TreeService) CreateLocation(ctx context.Context, key, name string, position int64) (model.MenuLocation, error) {
	if !util.IsValidSlug(key) {
		return model.MenuLocation{}, model.NewValidationError("key", "invalid format")
	}
	if name == "" {
		return model.MenuLocation{}, model.NewValidationError("name", "required")
	}
	exists, err := s.store.LocationKeyExists(ctx, key, 0)
	if err != nil {
		return model.MenuLocation{}, err
	}
	if exists {
		return model.MenuLocation{}, model.ErrDuplicateLocationKey
	}
	return s.store.CreateLocation(ctx, store.CreateLocationParams{
		Key:      key,
		Name:     name,
		Position: position,
		Now:      s.now(),
	})
}

// ListLocations returns the location registry in display order.
func (s *TreeService) ListLocations(ctx context.Context) ([]model.MenuLocation, error) {
	return s.store.ListLocations(ctx)
}

// GetLocation fetches a location by its key.
func (s *TreeService) GetLocation(ctx context.Context, key string) (model.MenuLocation, error) {
	return s.store.GetLocationByKey(ctx, key)
}

// UpdateLocation updates a location's key, name, active flag and order.
// Menus assigned to a renamed key keep their old assignment and stop
// resolving until reassigned.
func (s *TreeService) UpdateLocation(ctx context.Context, p store.UpdateLocationParams) (model.MenuLocation, error) {
	if !util.IsValidSlug(p.Key) {
		return model.MenuLocation{}, model.NewValidationError("key", "invalid format")
	}
	if p.Name == "" {
		return model.MenuLocation{}, model.NewValidationError("name", "required")
	}
	exists, err := s.store.LocationKeyExists(ctx, p.Key, p.ID)
	if err != nil {
		return model.MenuLocation{}, err
	}
	if exists {
		return model.MenuLocation{}, model.ErrDuplicateLocationKey
	}
	p.Now = s.now()
	return s.store.UpdateLocation(ctx, p)
}

// DeleteLocation removes a location registry entry.
func (s *TreeService) DeleteLocation(ctx context.Context, id int64) error {
	return s.store.DeleteLocation(ctx, id)
}

func (s *TreeService) invalidate(menuID int64) {
	if s.cache != nil {
		s.cache.Invalidate(menuID)
	}
}

// normalizeNodeEnums applies defaults and validates node enum fields.
func normalizeNodeEnums(kind, target, display *string) error {
	if *kind == "" {
		*kind = model.NodeKindCustom
	} else if !model.IsValidNodeKind(*kind) {
		return model.NewValidationError("kind", "unknown node kind")
	}
	if *target == "" {
		*target = model.TargetSelf
	} else if !model.IsValidTarget(*target) {
		return model.NewValidationError("target", "unknown link target")
	}
	if *display == "" {
		*display = model.DisplayShow
	} else if !model.IsValidDisplay(*display) {
		return model.NewValidationError("display", "unknown display mode")
	}
	return nil
}

// buildTree converts a flat node list into a position-ordered forest.
func buildTree(nodes []model.MenuNode) []*model.MenuNode {
	byID := make(map[int64]*model.MenuNode, len(nodes))
	for i := range nodes {
		n := nodes[i]
		n.Children = nil
		byID[n.ID] = &n
	}

	var roots []*model.MenuNode
	for i := range nodes {
		n := byID[nodes[i].ID]
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		if parent, ok := byID[*n.ParentID]; ok {
			parent.Children = append(parent.Children, n)
		}
	}

	sortSiblings(roots)
	for _, n := range byID {
		sortSiblings(n.Children)
	}
	return roots
}

func sortSiblings(nodes []*model.MenuNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Position != nodes[j].Position {
			return nodes[i].Position < nodes[j].Position
		}
		return nodes[i].ID < nodes[j].ID
	})
}
