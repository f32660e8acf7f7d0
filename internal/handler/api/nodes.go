// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"

	"github.com/sellerhub/navcore/internal/model"
	"github.com/sellerhub/navcore/internal/service"
	"github.com/sellerhub/navcore/internal/store"
)

// NodeRequest represents the request body for creating or updating a node.
type NodeRequest struct {
	ParentID    *int64            `json:"parent_id,omitempty"`
	Title       string            `json:"title"`
	URL         string            `json:"url,omitempty"`
	Kind        string            `json:"kind,omitempty"`
	Target      string            `json:"target,omitempty"`
	Icon        string            `json:"icon,omitempty"`
	Classes     []string          `json:"classes,omitempty"`
	ReferenceID *int64            `json:"reference_id,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Display     string            `json:"display,omitempty"`
	Audience    model.Audience    `json:"audience"`
}

// CreateNode handles POST /menus/{id}/nodes.
func (h *Handler) CreateNode(w http.ResponseWriter, r *http.Request) {
	menuID, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid menu ID", nil)
		return
	}
	var req NodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	node, err := h.trees.AddNode(r.Context(), service.AddNodeParams{
		MenuID:      menuID,
		ParentID:    req.ParentID,
		Title:       req.Title,
		URL:         req.URL,
		Kind:        req.Kind,
		Target:      req.Target,
		Icon:        req.Icon,
		Classes:     req.Classes,
		ReferenceID: req.ReferenceID,
		Metadata:    req.Metadata,
		Display:     req.Display,
		Audience:    req.Audience,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteCreated(w, node)
}

// UpdateNode handles PUT /nodes/{id}.
func (h *Handler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid node ID", nil)
		return
	}
	var req NodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	node, err := h.trees.UpdateNode(r.Context(), store.UpdateNodeParams{
		ID:          id,
		Title:       req.Title,
		URL:         req.URL,
		Kind:        req.Kind,
		Target:      req.Target,
		Icon:        req.Icon,
		Classes:     req.Classes,
		ReferenceID: req.ReferenceID,
		Metadata:    req.Metadata,
		Display:     req.Display,
		Audience:    req.Audience,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, node, nil)
}

// DeleteNode handles DELETE /nodes/{id}. The response reports how many
// nodes the cascade removed.
func (h *Handler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid node ID", nil)
		return
	}
	removed, err := h.trees.DeleteNode(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type deleteResponse struct {
		Removed int `json:"removed"`
	}
	WriteSuccess(w, deleteResponse{Removed: removed}, nil)
}
