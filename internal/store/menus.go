// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sellerhub/navcore/internal/model"
)

const menuColumns = "id, name, slug, location, is_active, metadata, created_at, updated_at"

// CreateMenuParams holds the fields for a new menu.
type CreateMenuParams struct {
	Name     string
	Slug     string
	Location string
	Metadata model.MenuMetadata
	Now      time.Time
}

// CreateMenu inserts a menu and returns it.
func (s *Store) CreateMenu(ctx context.Context, p CreateMenuParams) (model.Menu, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO menus (name, slug, location, is_active, metadata, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?, ?)`,
		p.Name, p.Slug, p.Location, marshalJSON(p.Metadata), p.Now, p.Now)
	if err != nil {
		return model.Menu{}, fmt.Errorf("creating menu: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Menu{}, fmt.Errorf("creating menu: %w", err)
	}
	return s.GetMenuByID(ctx, id)
}

// GetMenuByID fetches a menu by id.
func (s *Store) GetMenuByID(ctx context.Context, id int64) (model.Menu, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+menuColumns+" FROM menus WHERE id = ?", id)
	return scanMenu(row)
}

// GetMenuBySlug fetches a menu by slug.
func (s *Store) GetMenuBySlug(ctx context.Context, slug string) (model.Menu, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+menuColumns+" FROM menus WHERE slug = ?", slug)
	return scanMenu(row)
}

// ListMenus returns all menus ordered by creation.
func (s *Store) ListMenus(ctx context.Context) ([]model.Menu, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+menuColumns+" FROM menus ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing menus: %w", err)
	}
	defer rows.Close()
	return collectMenus(rows)
}

// ListActiveMenusByLocation returns active menus assigned to a location,
// ordered by id ascending. The resolver relies on this ordering as its
// deterministic tie-break.
func (s *Store) ListActiveMenusByLocation(ctx context.Context, location string) ([]model.Menu, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+menuColumns+" FROM menus WHERE location = ? AND is_active = 1 ORDER BY id", location)
	if err != nil {
		return nil, fmt.Errorf("listing menus for location %q: %w", location, err)
	}
	defer rows.Close()
	return collectMenus(rows)
}

// MenuSlugExists reports whether any menu uses the slug, excluding the
// menu with excludeID when non-zero.
func (s *Store) MenuSlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM menus WHERE slug = ? AND id != ?", slug, excludeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking slug: %w", err)
	}
	return count > 0, nil
}

// UpdateMenuParams holds the updatable menu fields.
type UpdateMenuParams struct {
	ID       int64
	Name     string
	Slug     string
	Location string
	IsActive bool
	Metadata model.MenuMetadata
	Now      time.Time
}

// UpdateMenu updates a menu and bumps its version marker.
func (s *Store) UpdateMenu(ctx context.Context, p UpdateMenuParams) (model.Menu, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE menus SET name = ?, slug = ?, location = ?, is_active = ?, metadata = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Slug, p.Location, boolToInt(p.IsActive), marshalJSON(p.Metadata), p.Now, p.ID)
	if err != nil {
		return model.Menu{}, fmt.Errorf("updating menu %d: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Menu{}, model.ErrMenuNotFound
	}
	return s.GetMenuByID(ctx, p.ID)
}

// DeleteMenu removes a menu; nodes and widgets cascade via foreign keys.
func (s *Store) DeleteMenu(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM menus WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting menu %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrMenuNotFound
	}
	return nil
}

// TouchMenu bumps the menu's updated_at version marker.
func (s *Store) TouchMenu(ctx context.Context, id int64, now time.Time) error {
	_, err := s.db.ExecContext(ctx, "UPDATE menus SET updated_at = ? WHERE id = ?", now, id)
	if err != nil {
		return fmt.Errorf("touching menu %d: %w", id, err)
	}
	return nil
}

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMenu(row scanner) (model.Menu, error) {
	var (
		m        model.Menu
		isActive int64
		metadata string
	)
	err := row.Scan(&m.ID, &m.Name, &m.Slug, &m.Location, &isActive, &metadata, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Menu{}, model.ErrMenuNotFound
	}
	if err != nil {
		return model.Menu{}, fmt.Errorf("scanning menu: %w", err)
	}
	m.IsActive = isActive != 0
	unmarshalJSON(metadata, &m.Metadata)
	return m, nil
}

func collectMenus(rows *sql.Rows) ([]model.Menu, error) {
	var menus []model.Menu
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	return menus, rows.Err()
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
