// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/sellerhub/navcore/internal/cache"
	"github.com/sellerhub/navcore/internal/model"
	"github.com/sellerhub/navcore/internal/store"
)

// RenderContext describes the page a widget is rendered into.
type RenderContext struct {
	Viewer model.Viewer
	PageID int64  // current page, 0 when unknown
	Device string // device class, empty when unknown
}

// WidgetService manages widget definitions and renders them to HTML
// markup. Rendered markup is cached per widget context; cache failures
// degrade to a fresh render.
type WidgetService struct {
	store     *store.Store
	nav       *NavigationService
	markup    cache.Cacher
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
	ttl       time.Duration
	now       func() time.Time
}

// NewWidgetService creates a WidgetService. The markup cache may be nil
// to render uncached.
func NewWidgetService(st *store.Store, nav *NavigationService, markup cache.Cacher, logger *slog.Logger, ttl time.Duration) *WidgetService {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "id", "data-depth", "aria-label", "aria-current").Globally()
	p.AllowElements("nav")
	return &WidgetService{
		store:     st,
		nav:       nav,
		markup:    markup,
		sanitizer: p,
		logger:    logger,
		ttl:       ttl,
		now:       time.Now,
	}
}

// CreateWidget validates and stores a widget definition.
func (s *WidgetService) CreateWidget(ctx context.Context, p store.CreateWidgetParams) (model.Widget, error) {
	if p.Name == "" {
		return model.Widget{}, model.NewValidationError("name", "required")
	}
	if !model.IsValidWidgetType(p.Type) {
		return model.Widget{}, model.NewValidationError("type", "unknown widget type")
	}
	if _, err := s.store.GetMenuByID(ctx, p.MenuID); err != nil {
		return model.Widget{}, err
	}
	p.Now = s.now()
	return s.store.CreateWidget(ctx, p)
}

// GetWidget fetches a widget by id.
func (s *WidgetService) GetWidget(ctx context.Context, id int64) (model.Widget, error) {
	return s.store.GetWidgetByID(ctx, id)
}

// ListWidgets returns all widgets ordered by area and position.
func (s *WidgetService) ListWidgets(ctx context.Context) ([]model.Widget, error) {
	return s.store.ListWidgets(ctx)
}

// UpdateWidget validates and updates a widget, dropping its cached markup.
func (s *WidgetService) UpdateWidget(ctx context.Context, p store.UpdateWidgetParams) (model.Widget, error) {
	if p.Name == "" {
		return model.Widget{}, model.NewValidationError("name", "required")
	}
	if !model.IsValidWidgetType(p.Type) {
		return model.Widget{}, model.NewValidationError("type", "unknown widget type")
	}
	if _, err := s.store.GetMenuByID(ctx, p.MenuID); err != nil {
		return model.Widget{}, err
	}
	p.Now = s.now()
	w, err := s.store.UpdateWidget(ctx, p)
	if err != nil {
		return model.Widget{}, err
	}
	s.InvalidateMenu(ctx, w.MenuID)
	return w, nil
}

// DeleteWidget removes a widget.
func (s *WidgetService) DeleteWidget(ctx context.Context, id int64) error {
	w, err := s.store.GetWidgetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteWidget(ctx, id); err != nil {
		return err
	}
	s.InvalidateMenu(ctx, w.MenuID)
	return nil
}

// CheckConditions reports whether the widget should render in the given
// context. Every configured condition set must match.
func (s *WidgetService) CheckConditions(w model.Widget, rc RenderContext) bool {
	if len(w.Conditions.Pages) > 0 && !containsInt64(w.Conditions.Pages, rc.PageID) {
		return false
	}
	if len(w.Conditions.Roles) > 0 && !containsString(w.Conditions.Roles, rc.Viewer.RoleBucket()) {
		return false
	}
	if len(w.Conditions.Devices) > 0 && !containsString(w.Conditions.Devices, rc.Device) {
		return false
	}
	return true
}

// Render produces the widget's HTML markup for the context. An inactive
// widget or a failed condition check yields an empty string without
// error.
func (s *WidgetService) Render(ctx context.Context, widgetID int64, rc RenderContext) (string, error) {
	w, err := s.store.GetWidgetByID(ctx, widgetID)
	if err != nil {
		return "", err
	}
	if !w.IsActive || !s.CheckConditions(w, rc) {
		return "", nil
	}

	key := s.markupKey(w, rc)
	if s.markup != nil {
		if data, err := s.markup.Get(ctx, key); err == nil {
			return string(data), nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("widget markup cache read", "err", err, "widget_id", w.ID)
		}
	}

	nodes, err := s.nav.Tree(ctx, w.MenuID, rc.Viewer)
	if err != nil {
		return "", err
	}

	var markup string
	if w.Template != "" {
		markup = s.renderTemplate(w, nodes)
	} else {
		markup = renderBuiltin(w, nodes, rc)
	}

	if s.markup != nil {
		if err := s.markup.Set(ctx, key, []byte(markup), s.ttl); err != nil {
			s.logger.Warn("widget markup cache write", "err", err, "widget_id", w.ID)
		}
	}
	return markup, nil
}

// InvalidateMenu drops all cached widget markup for a menu.
func (s *WidgetService) InvalidateMenu(ctx context.Context, menuID int64) {
	if s.markup == nil {
		return
	}
	if err := s.markup.DeleteByPrefix(ctx, cache.MenuPrefix(menuID)); err != nil {
		s.logger.Warn("widget markup invalidation", "err", err, "menu_id", menuID)
	}
}

// Invalidate adapts InvalidateMenu to the Invalidator interface used by
// tree mutations.
func (s *WidgetService) Invalidate(menuID int64) int {
	s.InvalidateMenu(context.Background(), menuID)
	return 0
}

func (s *WidgetService) markupKey(w model.Widget, rc RenderContext) string {
	c := cache.NewContext(rc.Viewer)
	c.Widget = w.Type
	c.Params = fmt.Sprintf("w%d:p%d:%s", w.ID, rc.PageID, rc.Device)
	return c.Key(w.MenuID)
}

// renderTemplate substitutes widget placeholders into a custom template
// and sanitizes the result.
func (s *WidgetService) renderTemplate(w model.Widget, nodes []*model.MenuNode) string {
	r := strings.NewReplacer(
		"{{widget.id}}", fmt.Sprintf("%d", w.ID),
		"{{widget.name}}", html.EscapeString(w.Name),
		"{{widget.type}}", w.Type,
		"{{widget.menu}}", renderList(nodes, 0),
	)
	return s.sanitizer.Sanitize(r.Replace(w.Template))
}

func renderBuiltin(w model.Widget, nodes []*model.MenuNode, rc RenderContext) string {
	switch w.Type {
	case model.WidgetBreadcrumb:
		return renderBreadcrumb(nodes, rc.PageID)
	case model.WidgetSitemap:
		return renderSitemap(nodes)
	case model.WidgetFooter:
		return renderFooter(nodes)
	case model.WidgetMobile:
		return renderMobile(nodes)
	default:
		return renderNavigation(w, nodes)
	}
}

func renderNavigation(w model.Widget, nodes []*model.MenuNode) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<nav class="menu-widget" aria-label="%s">`, html.EscapeString(w.Name))
	b.WriteString(renderList(nodes, 0))
	b.WriteString("</nav>")
	return b.String()
}

// renderList renders a nested unordered list of nodes.
func renderList(nodes []*model.MenuNode, depth int) string {
	if len(nodes) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, n := range nodes {
		b.WriteString("<li")
		if len(n.Classes) > 0 {
			fmt.Fprintf(&b, ` class="%s"`, html.EscapeString(strings.Join(n.Classes, " ")))
		}
		b.WriteString(">")
		writeLink(&b, n)
		b.WriteString(renderList(n.Children, depth+1))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

// renderBreadcrumb renders the trail from the root to the node that
// references the current page. An unknown page yields an empty trail.
func renderBreadcrumb(nodes []*model.MenuNode, pageID int64) string {
	trail := findTrail(nodes, pageID, nil)
	if trail == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("<nav class=\"breadcrumb-widget\" aria-label=\"Breadcrumb\"><ol>")
	for i, n := range trail {
		if i == len(trail)-1 {
			fmt.Fprintf(&b, "<li aria-current=\"page\">%s</li>", html.EscapeString(n.Title))
			continue
		}
		b.WriteString("<li>")
		writeLink(&b, n)
		b.WriteString("</li>")
	}
	b.WriteString("</ol></nav>")
	return b.String()
}

func findTrail(nodes []*model.MenuNode, pageID int64, prefix []*model.MenuNode) []*model.MenuNode {
	for _, n := range nodes {
		trail := append(append([]*model.MenuNode{}, prefix...), n)
		if n.Kind == model.NodeKindPage && n.ReferenceID != nil && *n.ReferenceID == pageID {
			return trail
		}
		if found := findTrail(n.Children, pageID, trail); found != nil {
			return found
		}
	}
	return nil
}

func renderSitemap(nodes []*model.MenuNode) string {
	var b strings.Builder
	b.WriteString("<nav class=\"sitemap-widget\" aria-label=\"Sitemap\">")
	b.WriteString(renderList(nodes, 0))
	b.WriteString("</nav>")
	return b.String()
}

// renderFooter renders each top-level node as a column with its children
// listed beneath it.
func renderFooter(nodes []*model.MenuNode) string {
	var b strings.Builder
	b.WriteString("<nav class=\"footer-widget\">")
	for _, n := range nodes {
		b.WriteString("<div class=\"footer-column\">")
		fmt.Fprintf(&b, "<h4>%s</h4>", html.EscapeString(n.Title))
		b.WriteString(renderList(n.Children, 1))
		b.WriteString("</div>")
	}
	b.WriteString("</nav>")
	return b.String()
}

// renderMobile renders a single flat list, marking each item with its
// original depth for client-side indentation.
func renderMobile(nodes []*model.MenuNode) string {
	var b strings.Builder
	b.WriteString("<nav class=\"mobile-widget\"><ul>")
	flattenMobile(&b, nodes, 0)
	b.WriteString("</ul></nav>")
	return b.String()
}

func flattenMobile(b *strings.Builder, nodes []*model.MenuNode, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(b, "<li data-depth=\"%d\">", depth)
		writeLink(b, n)
		b.WriteString("</li>")
		flattenMobile(b, n.Children, depth+1)
	}
}

func writeLink(b *strings.Builder, n *model.MenuNode) {
	href := n.URL
	if href == "" {
		href = "#"
	}
	fmt.Fprintf(b, `<a href="%s"`, html.EscapeString(href))
	if n.Target != "" && n.Target != model.TargetSelf {
		fmt.Fprintf(b, ` target="%s"`, n.Target)
	}
	b.WriteString(">")
	if n.Icon != "" {
		fmt.Fprintf(b, `<i class="%s"></i>`, html.EscapeString(n.Icon))
	}
	b.WriteString(html.EscapeString(n.Title))
	b.WriteString("</a>")
}

func containsInt64(list []int64, v int64) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
