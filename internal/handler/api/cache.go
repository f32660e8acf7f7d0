// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sellerhub/navcore/internal/model"
)

// CacheStats handles GET /cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, h.render.Stats(), nil)
}

// CacheClear handles POST /cache/clear. An optional menu_id query
// parameter restricts the clear to one menu's entries.
func (h *Handler) CacheClear(w http.ResponseWriter, r *http.Request) {
	type clearResponse struct {
		Cleared int `json:"cleared"`
	}
	if raw := r.URL.Query().Get("menu_id"); raw != "" {
		menuID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			WriteBadRequest(w, "Invalid menu_id parameter", nil)
			return
		}
		WriteSuccess(w, clearResponse{Cleared: h.render.Invalidate(menuID)}, nil)
		return
	}
	h.render.Clear()
	WriteSuccess(w, clearResponse{Cleared: -1}, nil)
}

// WarmRequest represents the request body for cache warming.
type WarmRequest struct {
	MenuID int64    `json:"menu_id"`
	Roles  []string `json:"roles,omitempty"`
}

// CacheWarm handles POST /cache/warm: it precomputes filtered trees for
// the anonymous viewer and each requested logged-in role.
func (h *Handler) CacheWarm(w http.ResponseWriter, r *http.Request) {
	var req WarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.MenuID == 0 {
		WriteBadRequest(w, "Missing menu_id", nil)
		return
	}

	if err := h.nav.Warm(r.Context(), req.MenuID, model.Viewer{}); err != nil {
		writeServiceError(w, err)
		return
	}
	warmed := 1
	uid := int64(0)
	for _, role := range req.Roles {
		v := model.Viewer{UserID: &uid, Role: role, LoggedIn: true}
		if err := h.nav.Warm(r.Context(), req.MenuID, v); err != nil {
			writeServiceError(w, err)
			return
		}
		warmed++
	}

	type warmResponse struct {
		Warmed int `json:"warmed"`
	}
	WriteSuccess(w, warmResponse{Warmed: warmed}, nil)
}
