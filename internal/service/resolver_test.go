// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sellerhub/navcore/internal/model"
	"github.com/sellerhub/navcore/internal/store"
	"github.com/sellerhub/navcore/internal/testutil"
)

func newResolverFixture(t *testing.T) (*Resolver, *TreeService) {
	t.Helper()
	st := testutil.TestStore(t)
	return NewResolver(st), NewTreeService(st, nil, testutil.TestLogger())
}

func createLocatedMenu(t *testing.T, trees *TreeService, name, location string, md model.MenuMetadata) model.Menu {
	t.Helper()
	menu, err := trees.CreateMenu(context.Background(), name, "", location, md)
	if err != nil {
		t.Fatalf("CreateMenu(%q): %v", name, err)
	}
	return menu
}

func TestResolveFallbackMenu(t *testing.T) {
	r, trees := newResolverFixture(t)
	menu := createLocatedMenu(t, trees, "Default", "primary", model.MenuMetadata{})

	got, err := r.Resolve(context.Background(), ResolveRequest{Location: "primary", Path: "/anything"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != menu.ID {
		t.Errorf("resolved menu %d, want %d", got.ID, menu.ID)
	}
}

func TestResolveSpecificityRanking(t *testing.T) {
	r, trees := newResolverFixture(t)
	ctx := context.Background()

	fallback := createLocatedMenu(t, trees, "Fallback", "primary", model.MenuMetadata{})
	shopPath := createLocatedMenu(t, trees, "Shop Path", "primary", model.MenuMetadata{PathPrefix: "/shop"})
	sellerSub := createLocatedMenu(t, trees, "Seller Sub", "primary", model.MenuMetadata{Subdomain: "sellers"})
	sellerShop := createLocatedMenu(t, trees, "Seller Shop", "primary", model.MenuMetadata{Subdomain: "sellers", PathPrefix: "/shop"})

	tests := []struct {
		name string
		req  ResolveRequest
		want int64
	}{
		{
			name: "no hints matches fallback",
			req:  ResolveRequest{Location: "primary", Path: "/about"},
			want: fallback.ID,
		},
		{
			name: "path prefix beats fallback",
			req:  ResolveRequest{Location: "primary", Path: "/shop/items"},
			want: shopPath.ID,
		},
		{
			name: "subdomain beats path prefix",
			req:  ResolveRequest{Location: "primary", Subdomain: "sellers", Path: "/about"},
			want: sellerSub.ID,
		},
		{
			name: "subdomain plus path wins everything",
			req:  ResolveRequest{Location: "primary", Subdomain: "sellers", Path: "/shop/items"},
			want: sellerShop.ID,
		},
		{
			name: "raw prefix also matches longer segment",
			req:  ResolveRequest{Location: "primary", Path: "/shop2"},
			want: shopPath.ID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(ctx, tt.req)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got.ID != tt.want {
				t.Errorf("resolved menu %d, want %d", got.ID, tt.want)
			}
		})
	}
}

func TestResolveTieKeepsEarliestMenu(t *testing.T) {
	r, trees := newResolverFixture(t)
	first := createLocatedMenu(t, trees, "First", "primary", model.MenuMetadata{PathPrefix: "/shop"})
	createLocatedMenu(t, trees, "Second", "primary", model.MenuMetadata{PathPrefix: "/shop"})

	got, err := r.Resolve(context.Background(), ResolveRequest{Location: "primary", Path: "/shop"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("tie resolved to menu %d, want earliest %d", got.ID, first.ID)
	}
}

func TestResolveScopedMismatchDisqualifies(t *testing.T) {
	r, trees := newResolverFixture(t)
	createLocatedMenu(t, trees, "Seller Only", "primary", model.MenuMetadata{Subdomain: "sellers"})

	_, err := r.Resolve(context.Background(), ResolveRequest{Location: "primary", Subdomain: "buyers", Path: "/"})
	if !errors.Is(err, model.ErrNoMenuAtLocation) {
		t.Errorf("err = %v, want ErrNoMenuAtLocation", err)
	}
}

func TestResolveUnknownLocation(t *testing.T) {
	r, _ := newResolverFixture(t)
	_, err := r.Resolve(context.Background(), ResolveRequest{Location: "sidebar"})
	if !errors.Is(err, model.ErrLocationNotFound) {
		t.Errorf("err = %v, want ErrLocationNotFound", err)
	}
}

func TestResolveIgnoresInactiveMenus(t *testing.T) {
	r, trees := newResolverFixture(t)
	ctx := context.Background()
	menu := createLocatedMenu(t, trees, "Primary", "primary", model.MenuMetadata{})

	_, err := trees.UpdateMenu(ctx, store.UpdateMenuParams{
		ID:       menu.ID,
		Name:     menu.Name,
		Slug:     menu.Slug,
		Location: menu.Location,
		IsActive: false,
		Metadata: menu.Metadata,
	})
	if err != nil {
		t.Fatalf("UpdateMenu: %v", err)
	}

	_, err = r.Resolve(ctx, ResolveRequest{Location: "primary", Path: "/"})
	if !errors.Is(err, model.ErrNoMenuAtLocation) {
		t.Errorf("err = %v, want ErrNoMenuAtLocation", err)
	}
}
