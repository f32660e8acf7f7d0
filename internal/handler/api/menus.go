// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"

	"github.com/sellerhub/navcore/internal/model"
	"github.com/sellerhub/navcore/internal/store"
)

// CreateMenuRequest represents the request body for creating a menu.
type CreateMenuRequest struct {
	Name     string             `json:"name"`
	Slug     string             `json:"slug,omitempty"`
	Location string             `json:"location,omitempty"`
	Metadata model.MenuMetadata `json:"metadata"`
}

// UpdateMenuRequest represents the request body for updating a menu.
type UpdateMenuRequest struct {
	Name     string             `json:"name"`
	Slug     string             `json:"slug"`
	Location string             `json:"location,omitempty"`
	IsActive bool               `json:"is_active"`
	Metadata model.MenuMetadata `json:"metadata"`
}

// CreateMenu handles POST /menus.
func (h *Handler) CreateMenu(w http.ResponseWriter, r *http.Request) {
	var req CreateMenuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	menu, err := h.trees.CreateMenu(r.Context(), req.Name, req.Slug, req.Location, req.Metadata)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteCreated(w, menu)
}

// ListMenus handles GET /menus.
func (h *Handler) ListMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := h.trees.ListMenus(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, menus, &Meta{Total: len(menus)})
}

// GetMenu handles GET /menus/{id}.
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid menu ID", nil)
		return
	}
	menu, err := h.trees.GetMenu(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, menu, nil)
}

// UpdateMenu handles PUT /menus/{id}.
func (h *Handler) UpdateMenu(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid menu ID", nil)
		return
	}
	var req UpdateMenuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	menu, err := h.trees.UpdateMenu(r.Context(), store.UpdateMenuParams{
		ID:       id,
		Name:     req.Name,
		Slug:     req.Slug,
		Location: req.Location,
		IsActive: req.IsActive,
		Metadata: req.Metadata,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, menu, nil)
}

// DeleteMenu handles DELETE /menus/{id}.
func (h *Handler) DeleteMenu(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid menu ID", nil)
		return
	}
	if err := h.trees.DeleteMenu(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusNoContent, nil)
}

// GetMenuTree handles GET /menus/{id}/tree. The full unfiltered tree is
// returned for management UIs.
func (h *Handler) GetMenuTree(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid menu ID", nil)
		return
	}
	tree, err := h.trees.GetTree(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, tree, nil)
}

// ReorderRequest represents the request body for reordering nodes.
type ReorderRequest struct {
	Entries []store.ReorderEntry `json:"entries"`
}

// ReorderMenu handles POST /menus/{id}/reorder.
func (h *Handler) ReorderMenu(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid menu ID", nil)
		return
	}
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if len(req.Entries) == 0 {
		WriteBadRequest(w, "No reorder entries", nil)
		return
	}
	if err := h.trees.Reorder(r.Context(), id, req.Entries); err != nil {
		writeServiceError(w, err)
		return
	}
	tree, err := h.trees.GetTree(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, tree, nil)
}
