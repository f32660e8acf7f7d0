// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sellerhub/navcore/internal/model"
	"github.com/sellerhub/navcore/internal/util"
)

// ClickRequest represents the request body for recording a menu click.
type ClickRequest struct {
	NodeID    int64  `json:"node_id"`
	SessionID string `json:"session_id,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	PageURL   string `json:"page_url,omitempty"`
}

// RecordClick handles POST /menus/{id}/clicks. Recording is asynchronous;
// the endpoint acknowledges immediately.
func (h *Handler) RecordClick(w http.ResponseWriter, r *http.Request) {
	menuID, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid menu ID", nil)
		return
	}
	var req ClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.NodeID == 0 {
		WriteBadRequest(w, "Missing node_id", nil)
		return
	}

	viewer := viewerFromRequest(r)
	h.analytics.RecordClick(model.ClickEvent{
		MenuID:    menuID,
		NodeID:    req.NodeID,
		UserID:    viewer.UserID,
		SessionID: req.SessionID,
		UserAgent: r.UserAgent(),
		ClientIP:  util.ClientIP(r),
		Referrer:  req.Referrer,
		PageURL:   req.PageURL,
	})
	WriteJSON(w, http.StatusAccepted, Response{Data: map[string]string{"status": "accepted"}})
}

// GetAnalytics handles GET /menus/{id}/analytics. The period defaults to
// the last 30 days; start and end accept RFC 3339 timestamps.
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	menuID, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid menu ID", nil)
		return
	}

	end := time.Now()
	start := end.AddDate(0, 0, -30)
	q := r.URL.Query()
	if raw := q.Get("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			WriteBadRequest(w, "Invalid start parameter", nil)
			return
		}
		start = t
	}
	if raw := q.Get("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			WriteBadRequest(w, "Invalid end parameter", nil)
			return
		}
		end = t
	}
	if !start.Before(end) {
		WriteBadRequest(w, "start must be before end", nil)
		return
	}

	report, err := h.analytics.Aggregate(r.Context(), menuID, start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, report, nil)
}

// GetPerformance handles GET /menus/{id}/performance.
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	menuID, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid menu ID", nil)
		return
	}
	report, err := h.analytics.Performance(r.Context(), menuID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, report, nil)
}
