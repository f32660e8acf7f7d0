// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/sellerhub/navcore/internal/model"
	"github.com/sellerhub/navcore/internal/service"
)

func TestResolve(t *testing.T) {
	h := testSetup(t)
	menu := createTestMenu(t, h, "Main")
	createTestNode(t, h, menu.ID, `{"title": "Home", "url": "/"}`)
	createTestNode(t, h, menu.ID, `{"title": "Dashboard", "url": "/dash", "audience": {"roles": ["seller"]}}`)

	w := executeHandler(t, h.Resolve, newGetRequest(t, "/resolve?location=primary&path=/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	resolved := unmarshalData[service.ResolvedMenu](t, w)
	if resolved.Menu.ID != menu.ID {
		t.Errorf("menu ID = %d, want %d", resolved.Menu.ID, menu.ID)
	}
	if len(resolved.Nodes) != 1 || resolved.Nodes[0].Title != "Home" {
		t.Errorf("anonymous nodes = %+v, want only Home", resolved.Nodes)
	}
}

func TestResolve_ViewerHeaders(t *testing.T) {
	h := testSetup(t)
	menu := createTestMenu(t, h, "Main")
	createTestNode(t, h, menu.ID, `{"title": "Home", "url": "/"}`)
	createTestNode(t, h, menu.ID, `{"title": "Dashboard", "url": "/dash", "audience": {"roles": ["seller"]}}`)

	req := newGetRequest(t, "/resolve?location=primary&path=/", nil)
	req.Header.Set("X-Viewer-ID", "42")
	req.Header.Set("X-Viewer-Role", "seller")
	w := executeHandler(t, h.Resolve, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resolved := unmarshalData[service.ResolvedMenu](t, w)
	if len(resolved.Nodes) != 2 {
		t.Errorf("seller sees %d nodes, want 2", len(resolved.Nodes))
	}
}

func TestResolve_MissingLocation(t *testing.T) {
	h := testSetup(t)

	w := executeHandler(t, h.Resolve, newGetRequest(t, "/resolve", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestResolve_NoMenuAtLocation(t *testing.T) {
	h := testSetup(t)

	w := executeHandler(t, h.Resolve, newGetRequest(t, "/resolve?location=footer", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestViewMenuTree(t *testing.T) {
	h := testSetup(t)
	menu := createTestMenu(t, h, "Main")
	createTestNode(t, h, menu.ID, `{"title": "Home", "url": "/"}`)
	createTestNode(t, h, menu.ID, `{"title": "Hidden", "url": "/h", "display": "hide"}`)

	params := map[string]string{"id": fmt.Sprintf("%d", menu.ID)}
	w := executeHandler(t, h.ViewMenuTree, newGetRequest(t, "/menus/1/view", params))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	nodes := unmarshalData[[]*model.MenuNode](t, w)
	if len(nodes) != 1 || nodes[0].Title != "Home" {
		t.Errorf("nodes = %+v, want only Home", nodes)
	}
}
