// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/sellerhub/navcore/internal/service"
)

// Resolve handles GET /resolve. Query parameters select the location and
// request context; the viewer comes from gateway headers. The response
// carries the winning menu and its tree filtered for the viewer.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	location := q.Get("location")
	if location == "" {
		WriteBadRequest(w, "Missing location parameter", nil)
		return
	}
	req := service.ResolveRequest{
		Location:  location,
		Subdomain: q.Get("subdomain"),
		Path:      q.Get("path"),
	}
	resolved, err := h.nav.Menu(r.Context(), req, viewerFromRequest(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, resolved, nil)
}

// ViewMenuTree handles GET /menus/{id}/view: the menu's tree filtered
// for the requesting viewer, served from the render cache.
func (h *Handler) ViewMenuTree(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid menu ID", nil)
		return
	}
	nodes, err := h.nav.Tree(r.Context(), id, viewerFromRequest(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, nodes, nil)
}
