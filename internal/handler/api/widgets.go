// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sellerhub/navcore/internal/model"
	"github.com/sellerhub/navcore/internal/service"
	"github.com/sellerhub/navcore/internal/store"
)

// WidgetRequest represents the request body for widget writes.
type WidgetRequest struct {
	Name       string                 `json:"name"`
	Type       string                 `json:"type"`
	MenuID     int64                  `json:"menu_id"`
	Area       string                 `json:"area,omitempty"`
	Position   int64                  `json:"position"`
	Template   string                 `json:"template,omitempty"`
	Conditions model.WidgetConditions `json:"conditions"`
	IsActive   *bool                  `json:"is_active,omitempty"`
}

// CreateWidget handles POST /widgets.
func (h *Handler) CreateWidget(w http.ResponseWriter, r *http.Request) {
	var req WidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	widget, err := h.widgets.CreateWidget(r.Context(), store.CreateWidgetParams{
		Name:       req.Name,
		Type:       req.Type,
		MenuID:     req.MenuID,
		Area:       req.Area,
		Position:   req.Position,
		Template:   req.Template,
		Conditions: req.Conditions,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteCreated(w, widget)
}

// ListWidgets handles GET /widgets.
func (h *Handler) ListWidgets(w http.ResponseWriter, r *http.Request) {
	widgets, err := h.widgets.ListWidgets(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, widgets, &Meta{Total: len(widgets)})
}

// GetWidget handles GET /widgets/{id}.
func (h *Handler) GetWidget(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid widget ID", nil)
		return
	}
	widget, err := h.widgets.GetWidget(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, widget, nil)
}

// UpdateWidget handles PUT /widgets/{id}.
func (h *Handler) UpdateWidget(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid widget ID", nil)
		return
	}
	var req WidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	widget, err := h.widgets.UpdateWidget(r.Context(), store.UpdateWidgetParams{
		ID:         id,
		Name:       req.Name,
		Type:       req.Type,
		MenuID:     req.MenuID,
		Area:       req.Area,
		Position:   req.Position,
		Template:   req.Template,
		Conditions: req.Conditions,
		IsActive:   active,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, widget, nil)
}

// DeleteWidget handles DELETE /widgets/{id}.
func (h *Handler) DeleteWidget(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid widget ID", nil)
		return
	}
	if err := h.widgets.DeleteWidget(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusNoContent, nil)
}

// RenderWidget handles GET /widgets/{id}/render. Query parameters set the
// page and device context; the viewer comes from gateway headers. A
// widget whose conditions exclude the context renders empty markup.
func (h *Handler) RenderWidget(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid widget ID", nil)
		return
	}

	q := r.URL.Query()
	rc := service.RenderContext{
		Viewer: viewerFromRequest(r),
		Device: q.Get("device"),
	}
	if raw := q.Get("page_id"); raw != "" {
		pageID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			WriteBadRequest(w, "Invalid page_id parameter", nil)
			return
		}
		rc.PageID = pageID
	}

	markup, err := h.widgets.Render(r.Context(), id, rc)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type renderResponse struct {
		Markup string `json:"markup"`
	}
	WriteSuccess(w, renderResponse{Markup: markup}, nil)
}
