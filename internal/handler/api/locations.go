// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"

	"github.com/sellerhub/navcore/internal/store"
)

// LocationRequest represents the request body for location writes.
type LocationRequest struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
	Position int64  `json:"position"`
}

// ListLocations handles GET /locations.
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.trees.ListLocations(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, locations, &Meta{Total: len(locations)})
}

// CreateLocation handles POST /locations.
func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req LocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	loc, err := h.trees.CreateLocation(r.Context(), req.Key, req.Name, req.Position)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteCreated(w, loc)
}

// UpdateLocation handles PUT /locations/{id}.
func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid location ID", nil)
		return
	}
	var req LocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	loc, err := h.trees.UpdateLocation(r.Context(), store.UpdateLocationParams{
		ID:       id,
		Key:      req.Key,
		Name:     req.Name,
		IsActive: req.IsActive,
		Position: req.Position,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, loc, nil)
}

// DeleteLocation handles DELETE /locations/{id}.
func (h *Handler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid location ID", nil)
		return
	}
	if err := h.trees.DeleteLocation(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusNoContent, nil)
}
