// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/sellerhub/navcore/internal/model"
)

func TestCreateWidget(t *testing.T) {
	h := testSetup(t)
	menu := createTestMenu(t, h, "Main")

	body := fmt.Sprintf(`{"name": "Header Nav", "type": "navigation", "menu_id": %d, "area": "header"}`, menu.ID)
	w := executeHandler(t, h.CreateWidget, newJSONRequest(t, http.MethodPost, "/widgets", body, nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	widget := unmarshalData[model.Widget](t, w)
	if widget.Name != "Header Nav" {
		t.Errorf("Name = %q, want %q", widget.Name, "Header Nav")
	}
	if !widget.IsActive {
		t.Error("new widget should be active")
	}
}

func TestCreateWidget_UnknownType(t *testing.T) {
	h := testSetup(t)
	menu := createTestMenu(t, h, "Main")

	body := fmt.Sprintf(`{"name": "Bad", "type": "carousel", "menu_id": %d}`, menu.ID)
	w := executeHandler(t, h.CreateWidget, newJSONRequest(t, http.MethodPost, "/widgets", body, nil))
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
}

func TestCreateWidget_UnknownMenu(t *testing.T) {
	h := testSetup(t)

	body := `{"name": "Orphan", "type": "navigation", "menu_id": 999}`
	w := executeHandler(t, h.CreateWidget, newJSONRequest(t, http.MethodPost, "/widgets", body, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestRenderWidget(t *testing.T) {
	h := testSetup(t)
	menu := createTestMenu(t, h, "Main")
	createTestNode(t, h, menu.ID, `{"title": "Shop", "url": "/shop"}`)

	body := fmt.Sprintf(`{"name": "Header Nav", "type": "navigation", "menu_id": %d}`, menu.ID)
	w := executeHandler(t, h.CreateWidget, newJSONRequest(t, http.MethodPost, "/widgets", body, nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	widget := unmarshalData[model.Widget](t, w)

	params := map[string]string{"id": fmt.Sprintf("%d", widget.ID)}
	w = executeHandler(t, h.RenderWidget, newGetRequest(t, "/widgets/1/render?device=desktop", params))
	if w.Code != http.StatusOK {
		t.Fatalf("render status = %d, body %s", w.Code, w.Body.String())
	}
	type renderResponse struct {
		Markup string `json:"markup"`
	}
	resp := unmarshalData[renderResponse](t, w)
	if !strings.Contains(resp.Markup, "Shop") {
		t.Errorf("markup %q should contain the menu entry", resp.Markup)
	}
	if !strings.Contains(resp.Markup, "<nav") {
		t.Errorf("markup %q should be a nav element", resp.Markup)
	}
}

func TestRenderWidget_ConditionsExclude(t *testing.T) {
	h := testSetup(t)
	menu := createTestMenu(t, h, "Main")
	createTestNode(t, h, menu.ID, `{"title": "Shop", "url": "/shop"}`)

	body := fmt.Sprintf(
		`{"name": "Mobile Only", "type": "navigation", "menu_id": %d, "conditions": {"devices": ["mobile"]}}`,
		menu.ID)
	w := executeHandler(t, h.CreateWidget, newJSONRequest(t, http.MethodPost, "/widgets", body, nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	widget := unmarshalData[model.Widget](t, w)

	params := map[string]string{"id": fmt.Sprintf("%d", widget.ID)}
	w = executeHandler(t, h.RenderWidget, newGetRequest(t, "/widgets/1/render?device=desktop", params))
	if w.Code != http.StatusOK {
		t.Fatalf("render status = %d", w.Code)
	}
	type renderResponse struct {
		Markup string `json:"markup"`
	}
	if resp := unmarshalData[renderResponse](t, w); resp.Markup != "" {
		t.Errorf("markup = %q, want empty for excluded device", resp.Markup)
	}
}
