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

const nodeColumns = "id, menu_id, parent_id, title, url, kind, target, icon, classes, " +
	"position, reference_id, metadata, display, audience, created_at, updated_at"

// CreateNodeParams holds the fields for a new menu node.
type CreateNodeParams struct {
	MenuID      int64
	ParentID    *int64
	Title       string
	URL         string
	Kind        string
	Target      string
	Icon        string
	Classes     []string
	Position    int64
	ReferenceID *int64
	Metadata    map[string]string
	Display     string
	Audience    model.Audience
	Now         time.Time
}

// CreateNode inserts a node and bumps the owning menu's version marker.
func (s *Store) CreateNode(ctx context.Context, p CreateNodeParams) (model.MenuNode, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO menu_nodes
			(menu_id, parent_id, title, url, kind, target, icon, classes,
			 position, reference_id, metadata, display, audience, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.MenuID, nullInt64(p.ParentID), p.Title, p.URL, p.Kind, p.Target, p.Icon,
		marshalJSON(p.Classes), p.Position, nullInt64(p.ReferenceID),
		marshalJSON(p.Metadata), p.Display, marshalJSON(p.Audience), p.Now, p.Now)
	if err != nil {
		return model.MenuNode{}, fmt.Errorf("creating node: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.MenuNode{}, fmt.Errorf("creating node: %w", err)
	}
	if err := s.TouchMenu(ctx, p.MenuID, p.Now); err != nil {
		return model.MenuNode{}, err
	}
	return s.GetNodeByID(ctx, id)
}

// GetNodeByID fetches a node by id.
func (s *Store) GetNodeByID(ctx context.Context, id int64) (model.MenuNode, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+nodeColumns+" FROM menu_nodes WHERE id = ?", id)
	return scanNode(row)
}

// ListNodesByMenu returns all nodes of a menu as a flat list ordered by
// parent and position.
func (s *Store) ListNodesByMenu(ctx context.Context, menuID int64) ([]model.MenuNode, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+nodeColumns+" FROM menu_nodes WHERE menu_id = ? ORDER BY parent_id, position, id", menuID)
	if err != nil {
		return nil, fmt.Errorf("listing nodes for menu %d: %w", menuID, err)
	}
	defer rows.Close()

	var nodes []model.MenuNode
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// MaxNodePosition returns the highest position among siblings, or -1 when
// the parent has no children yet.
func (s *Store) MaxNodePosition(ctx context.Context, menuID int64, parentID *int64) (int64, error) {
	var max sql.NullInt64
	var err error
	if parentID == nil {
		err = s.db.QueryRowContext(ctx,
			"SELECT MAX(position) FROM menu_nodes WHERE menu_id = ? AND parent_id IS NULL", menuID).Scan(&max)
	} else {
		err = s.db.QueryRowContext(ctx,
			"SELECT MAX(position) FROM menu_nodes WHERE menu_id = ? AND parent_id = ?", menuID, *parentID).Scan(&max)
	}
	if err != nil {
		return 0, fmt.Errorf("getting max position: %w", err)
	}
	if !max.Valid {
		return -1, nil
	}
	return max.Int64, nil
}

// UpdateNodeParams holds the updatable node fields.
type UpdateNodeParams struct {
	ID          int64
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
	Now         time.Time
}

// UpdateNode updates a node's content fields (parent and position are
// changed through reorder only) and bumps the menu version marker.
func (s *Store) UpdateNode(ctx context.Context, p UpdateNodeParams) (model.MenuNode, error) {
	node, err := s.GetNodeByID(ctx, p.ID)
	if err != nil {
		return model.MenuNode{}, err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE menu_nodes SET title = ?, url = ?, kind = ?, target = ?, icon = ?,
			classes = ?, reference_id = ?, metadata = ?, display = ?, audience = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, p.URL, p.Kind, p.Target, p.Icon, marshalJSON(p.Classes),
		nullInt64(p.ReferenceID), marshalJSON(p.Metadata), p.Display,
		marshalJSON(p.Audience), p.Now, p.ID)
	if err != nil {
		return model.MenuNode{}, fmt.Errorf("updating node %d: %w", p.ID, err)
	}
	if err := s.TouchMenu(ctx, node.MenuID, p.Now); err != nil {
		return model.MenuNode{}, err
	}
	return s.GetNodeByID(ctx, p.ID)
}

// DeleteNodes removes the given nodes in one transaction and bumps the
// menu version marker. Callers pass the full subtree id set.
func (s *Store) DeleteNodes(ctx context.Context, menuID int64, ids []int64, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting delete transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, "DELETE FROM menu_nodes WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting node %d: %w", id, err)
		}
	}
	if _, err := tx.ExecContext(ctx, "UPDATE menus SET updated_at = ? WHERE id = ?", now, menuID); err != nil {
		return fmt.Errorf("touching menu %d: %w", menuID, err)
	}
	return tx.Commit()
}

// ReorderEntry moves one node to a parent and position.
type ReorderEntry struct {
	ID       int64  `json:"id"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Position int64  `json:"position"`
}

// ReorderNodes applies a reorder batch as a single transaction. Any entry
// referencing an unknown node, an unknown parent, a parent from a
// different menu, or a parent assignment that would make a node its own
// ancestor aborts the whole batch; the returned error identifies the
// offending entry.
func (s *Store) ReorderNodes(ctx context.Context, menuID int64, entries []ReorderEntry, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting reorder transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Snapshot the menu's parent links so the batch can be validated
	// against the tree it would produce, not against per-row state.
	parents := make(map[int64]*int64)
	rows, err := tx.QueryContext(ctx, "SELECT id, parent_id FROM menu_nodes WHERE menu_id = ?", menuID)
	if err != nil {
		return fmt.Errorf("loading nodes for menu %d: %w", menuID, err)
	}
	for rows.Next() {
		var id int64
		var parentID sql.NullInt64
		if err := rows.Scan(&id, &parentID); err != nil {
			rows.Close()
			return fmt.Errorf("scanning node parent: %w", err)
		}
		parents[id] = int64Ptr(parentID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("loading nodes for menu %d: %w", menuID, err)
	}
	rows.Close()

	for i, e := range entries {
		if _, ok := parents[e.ID]; !ok {
			return &model.ReorderError{Index: i, NodeID: e.ID, Err: reorderLookupErr(ctx, tx, e.ID, model.ErrNodeNotFound)}
		}
		if e.ParentID != nil {
			if _, ok := parents[*e.ParentID]; !ok {
				return &model.ReorderError{Index: i, NodeID: e.ID, Err: reorderLookupErr(ctx, tx, *e.ParentID, model.ErrParentNotFound)}
			}
		}
	}

	// Overlay the batch's parent assignments and walk each entry's
	// ancestor chain; revisiting the entry, or a chain longer than the
	// node count, means the batch would close a cycle.
	for _, e := range entries {
		parents[e.ID] = e.ParentID
	}
	for i, e := range entries {
		steps := 0
		for p := parents[e.ID]; p != nil; p = parents[*p] {
			if *p == e.ID || steps >= len(parents) {
				return &model.ReorderError{Index: i, NodeID: e.ID, Err: model.ErrCyclicParent}
			}
			steps++
		}
	}

	for _, e := range entries {
		if _, err := tx.ExecContext(ctx,
			"UPDATE menu_nodes SET parent_id = ?, position = ?, updated_at = ? WHERE id = ?",
			nullInt64(e.ParentID), e.Position, now, e.ID); err != nil {
			return fmt.Errorf("reorder update for node %d: %w", e.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "UPDATE menus SET updated_at = ? WHERE id = ?", now, menuID); err != nil {
		return fmt.Errorf("touching menu %d: %w", menuID, err)
	}
	return tx.Commit()
}

// reorderLookupErr classifies a node id missing from the menu snapshot:
// a row that does not exist at all gets the notFound sentinel, a row
// owned by another menu gets ErrCrossMenuParent.
func reorderLookupErr(ctx context.Context, tx *sql.Tx, id int64, notFound error) error {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM menu_nodes WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("reorder lookup for node %d: %w", id, err)
	}
	return model.ErrCrossMenuParent
}

func scanNode(row scanner) (model.MenuNode, error) {
	var (
		n                 model.MenuNode
		parentID, refID   sql.NullInt64
		classes, metadata string
		audience          string
	)
	err := row.Scan(&n.ID, &n.MenuID, &parentID, &n.Title, &n.URL, &n.Kind, &n.Target,
		&n.Icon, &classes, &n.Position, &refID, &metadata, &n.Display, &audience,
		&n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MenuNode{}, model.ErrNodeNotFound
	}
	if err != nil {
		return model.MenuNode{}, fmt.Errorf("scanning node: %w", err)
	}
	n.ParentID = int64Ptr(parentID)
	n.ReferenceID = int64Ptr(refID)
	unmarshalJSON(classes, &n.Classes)
	unmarshalJSON(metadata, &n.Metadata)
	unmarshalJSON(audience, &n.Audience)
	return n, nil
}
