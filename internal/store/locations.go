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

const locationColumns = "id, key, name, is_active, position, created_at, updated_at"

// CreateLocationParams holds the fields for a new location registry entry.
type CreateLocationParams struct {
	Key      string
	Name     string
	Position int64
	Now      time.Time
}

// CreateLocation inserts a location registry entry.
func (s *Store) CreateLocation(ctx context.Context, p CreateLocationParams) (model.MenuLocation, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO menu_locations (key, name, is_active, position, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?, ?)`,
		p.Key, p.Name, p.Position, p.Now, p.Now)
	if err != nil {
		return model.MenuLocation{}, fmt.Errorf("creating location: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.MenuLocation{}, fmt.Errorf("creating location: %w", err)
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+locationColumns+" FROM menu_locations WHERE id = ?", id)
	return scanLocation(row)
}

// GetLocationByKey fetches a location registry entry by key.
func (s *Store) GetLocationByKey(ctx context.Context, key string) (model.MenuLocation, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+locationColumns+" FROM menu_locations WHERE key = ?", key)
	return scanLocation(row)
}

// ListLocations returns all registered locations ordered by position.
func (s *Store) ListLocations(ctx context.Context) ([]model.MenuLocation, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+locationColumns+" FROM menu_locations ORDER BY position, id")
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	var locations []model.MenuLocation
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// LocationKeyExists reports whether a location key is already registered,
// excluding the entry with excludeID when non-zero.
func (s *Store) LocationKeyExists(ctx context.Context, key string, excludeID int64) (bool, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM menu_locations WHERE key = ? AND id != ?", key, excludeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking location key: %w", err)
	}
	return count > 0, nil
}

// UpdateLocationParams holds the updatable location fields.
type UpdateLocationParams struct {
	ID       int64
	Key      string
	Name     string
	IsActive bool
	Position int64
	Now      time.Time
}

// UpdateLocation updates a location registry entry.
func (s *Store) UpdateLocation(ctx context.Context, p UpdateLocationParams) (model.MenuLocation, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE menu_locations SET key = ?, name = ?, is_active = ?, position = ?, updated_at = ?
		WHERE id = ?`,
		p.Key, p.Name, boolToInt(p.IsActive), p.Position, p.Now, p.ID)
	if err != nil {
		return model.MenuLocation{}, fmt.Errorf("updating location %d: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.MenuLocation{}, model.ErrLocationNotFound
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+locationColumns+" FROM menu_locations WHERE id = ?", p.ID)
	return scanLocation(row)
}

// DeleteLocation removes a location registry entry.
func (s *Store) DeleteLocation(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM menu_locations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting location %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrLocationNotFound
	}
	return nil
}

func scanLocation(row scanner) (model.MenuLocation, error) {
	var (
		l        model.MenuLocation
		isActive int64
	)
	err := row.Scan(&l.ID, &l.Key, &l.Name, &isActive, &l.Position, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MenuLocation{}, model.ErrLocationNotFound
	}
	if err != nil {
		return model.MenuLocation{}, fmt.Errorf("scanning location: %w", err)
	}
	l.IsActive = isActive != 0
	return l, nil
}
