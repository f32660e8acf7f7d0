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

const widgetColumns = "id, name, type, menu_id, area, position, template, conditions, is_active, created_at, updated_at"

// CreateWidgetParams holds the fields for a new widget.
type CreateWidgetParams struct {
	Name       string
	Type       string
	MenuID     int64
	Area       string
	Position   int64
	Template   string
	Conditions model.WidgetConditions
	Now        time.Time
}

// CreateWidget inserts a widget.
func (s *Store) CreateWidget(ctx context.Context, p CreateWidgetParams) (model.Widget, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO widgets (name, type, menu_id, area, position, template, conditions, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		p.Name, p.Type, p.MenuID, p.Area, p.Position, p.Template, marshalJSON(p.Conditions), p.Now, p.Now)
	if err != nil {
		return model.Widget{}, fmt.Errorf("creating widget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Widget{}, fmt.Errorf("creating widget: %w", err)
	}
	return s.GetWidgetByID(ctx, id)
}

// GetWidgetByID fetches a widget by id.
func (s *Store) GetWidgetByID(ctx context.Context, id int64) (model.Widget, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+widgetColumns+" FROM widgets WHERE id = ?", id)
	return scanWidget(row)
}

// ListWidgets returns all widgets ordered by area and position.
func (s *Store) ListWidgets(ctx context.Context) ([]model.Widget, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+widgetColumns+" FROM widgets ORDER BY area, position, id")
	if err != nil {
		return nil, fmt.Errorf("listing widgets: %w", err)
	}
	defer rows.Close()

	var widgets []model.Widget
	for rows.Next() {
		w, err := scanWidget(rows)
		if err != nil {
			return nil, err
		}
		widgets = append(widgets, w)
	}
	return widgets, rows.Err()
}

// UpdateWidgetParams holds the updatable widget fields.
type UpdateWidgetParams struct {
	ID         int64
	Name       string
	Type       string
	MenuID     int64
	Area       string
	Position   int64
	Template   string
	Conditions model.WidgetConditions
	IsActive   bool
	Now        time.Time
}

// UpdateWidget updates a widget.
func (s *Store) UpdateWidget(ctx context.Context, p UpdateWidgetParams) (model.Widget, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE widgets SET name = ?, type = ?, menu_id = ?, area = ?, position = ?,
			template = ?, conditions = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Type, p.MenuID, p.Area, p.Position, p.Template,
		marshalJSON(p.Conditions), boolToInt(p.IsActive), p.Now, p.ID)
	if err != nil {
		return model.Widget{}, fmt.Errorf("updating widget %d: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Widget{}, model.ErrWidgetNotFound
	}
	return s.GetWidgetByID(ctx, p.ID)
}

// DeleteWidget removes a widget.
func (s *Store) DeleteWidget(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM widgets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting widget %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrWidgetNotFound
	}
	return nil
}

func scanWidget(row scanner) (model.Widget, error) {
	var (
		w          model.Widget
		isActive   int64
		conditions string
	)
	err := row.Scan(&w.ID, &w.Name, &w.Type, &w.MenuID, &w.Area, &w.Position,
		&w.Template, &conditions, &isActive, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Widget{}, model.ErrWidgetNotFound
	}
	if err != nil {
		return model.Widget{}, fmt.Errorf("scanning widget: %w", err)
	}
	w.IsActive = isActive != 0
	unmarshalJSON(conditions, &w.Conditions)
	return w, nil
}
