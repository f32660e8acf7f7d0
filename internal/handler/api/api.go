// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides REST API handlers for the navigation engine.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sellerhub/navcore/internal/cache"
	"github.com/sellerhub/navcore/internal/model"
	"github.com/sellerhub/navcore/internal/service"
	"github.com/sellerhub/navcore/internal/store"
	"github.com/sellerhub/navcore/internal/version"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	store     *store.Store
	trees     *service.TreeService
	nav       *service.NavigationService
	analytics *service.AnalyticsService
	widgets   *service.WidgetService
	render    *cache.RenderCache
	info      version.Info
}

// NewHandler creates a new API handler.
func NewHandler(st *store.Store, trees *service.TreeService, nav *service.NavigationService,
	analytics *service.AnalyticsService, widgets *service.WidgetService,
	render *cache.RenderCache, info version.Info) *Handler {
	return &Handler{
		store:     st,
		trees:     trees,
		nav:       nav,
		analytics: analytics,
		widgets:   widgets,
		render:    render,
		info:      info,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains counts and other metadata.
type Meta struct {
	Total int `json:"total,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message, Details: details},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteConflict writes a 409 Conflict response.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// writeServiceError maps service errors to API error responses.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		WriteValidationError(w, map[string]string{ve.Field: ve.Reason})
		return
	}
	var re *model.ReorderError
	if errors.As(err, &re) {
		WriteError(w, http.StatusUnprocessableEntity, "reorder_failed", re.Error(), map[string]string{
			"index":   strconv.Itoa(re.Index),
			"node_id": strconv.FormatInt(re.NodeID, 10),
		})
		return
	}

	switch {
	case errors.Is(err, model.ErrMenuNotFound),
		errors.Is(err, model.ErrNodeNotFound),
		errors.Is(err, model.ErrLocationNotFound),
		errors.Is(err, model.ErrWidgetNotFound),
		errors.Is(err, model.ErrNoMenuAtLocation):
		WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrDuplicateSlug),
		errors.Is(err, model.ErrDuplicateLocationKey):
		WriteConflict(w, err.Error())
	case errors.Is(err, model.ErrParentNotFound),
		errors.Is(err, model.ErrCrossMenuParent),
		errors.Is(err, model.ErrCyclicParent):
		WriteValidationError(w, map[string]string{"parent_id": err.Error()})
	default:
		WriteInternalError(w, "Internal server error")
	}
}

// parseIDParam extracts the {id} URL parameter as an int64.
func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// viewerFromRequest builds the viewer identity from trusted gateway
// headers. The engine never authenticates; the fronting service does.
func viewerFromRequest(r *http.Request) model.Viewer {
	v := model.Viewer{Role: r.Header.Get("X-Viewer-Role")}
	if raw := r.Header.Get("X-Viewer-ID"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			v.UserID = &id
			v.LoggedIn = true
		}
	}
	return v
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status returns the API status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, StatusResponse{Status: "ok", Version: "v1"}, nil)
}

// Health reports liveness together with build information. A failing
// database ping degrades the status to 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	type healthResponse struct {
		Status    string `json:"status"`
		Version   string `json:"version"`
		GitCommit string `json:"git_commit,omitempty"`
		BuildTime string `json:"build_time,omitempty"`
	}
	v := h.info.Version
	if v == "" {
		v = "dev"
	}
	resp := healthResponse{
		Status:    "ok",
		Version:   v,
		GitCommit: h.info.GitCommit,
		BuildTime: h.info.BuildTime,
	}
	if err := h.store.Ping(r.Context()); err != nil {
		resp.Status = "degraded"
		WriteJSON(w, http.StatusServiceUnavailable, Response{Data: resp})
		return
	}
	WriteSuccess(w, resp, nil)
}
