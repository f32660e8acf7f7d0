// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sellerhub/navcore/internal/geoip"
	"github.com/sellerhub/navcore/internal/model"
	"github.com/sellerhub/navcore/internal/store"
	"github.com/sellerhub/navcore/internal/testutil"
)

func newAnalyticsFixture(t *testing.T, opts AnalyticsOptions) (*AnalyticsService, *store.Store, model.Menu) {
	t.Helper()
	st := testutil.TestStore(t)
	geo, err := geoip.NewLookup("")
	if err != nil {
		t.Fatalf("NewLookup: %v", err)
	}
	svc := NewAnalyticsService(st, geo, testutil.TestLogger(), opts)
	t.Cleanup(svc.Close)

	trees := NewTreeService(st, nil, testutil.TestLogger())
	menu, err := trees.CreateMenu(context.Background(), "Menu", "", "", model.MenuMetadata{})
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	return svc, st, menu
}

func TestClassifyDevice(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", model.DeviceMobile},
		{"Mozilla/5.0 (Linux; Android 14; Pixel 8) Mobile Safari", model.DeviceMobile},
		{"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X)", model.DeviceTablet},
		{"Mozilla/5.0 (Linux; Tablet; rv:109.0)", model.DeviceTablet},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64)", model.DeviceDesktop},
		{"", model.DeviceDesktop},
	}
	for _, tt := range tests {
		if got := classifyDevice(tt.ua); got != tt.want {
			t.Errorf("classifyDevice(%q) = %q, want %q", tt.ua, got, tt.want)
		}
	}
}

func TestPercentileNearestRank(t *testing.T) {
	// 120 ascending samples 1..120.
	samples := make([]float64, 120)
	for i := range samples {
		samples[i] = float64(i + 1)
	}

	tests := []struct {
		p    float64
		want float64
	}{
		{50, 60},
		{95, 114},
		{99, 119},
		{100, 120},
	}
	for _, tt := range tests {
		if got := percentile(samples, tt.p); got != tt.want {
			t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	if got := percentile(nil, 50); got != 0 {
		t.Errorf("percentile(empty) = %v, want 0", got)
	}
	if got := percentile([]float64{42}, 95); got != 42 {
		t.Errorf("percentile(single) = %v, want 42", got)
	}
}

func TestRecordClickStoresEvent(t *testing.T) {
	svc, st, menu := newAnalyticsFixture(t, AnalyticsOptions{})

	svc.RecordClick(model.ClickEvent{MenuID: menu.ID, NodeID: 1})
	svc.Close()

	events, err := st.ListClickEvents(context.Background(), menu.ID,
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("ListClickEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	// An anonymous click gets a generated session id for viewer counting.
	if events[0].SessionID == "" {
		t.Error("session id not generated")
	}
}

func TestAggregateReport(t *testing.T) {
	// A generous retention window keeps the fixed event dates out of
	// the lazy purge's reach.
	svc, st, menu := newAnalyticsFixture(t, AnalyticsOptions{RetentionDays: 100000})
	ctx := context.Background()

	base := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	uid := int64(42)
	desktop := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/126.0 Safari/537.36"
	mobile := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0) Mobile Safari"

	events := []model.ClickEvent{
		{MenuID: menu.ID, NodeID: 1, UserID: &uid, SessionID: "s1", UserAgent: desktop, Referrer: "https://google.com", Country: "DE", CreatedAt: base},
		{MenuID: menu.ID, NodeID: 1, UserID: &uid, SessionID: "s2", UserAgent: desktop, Referrer: "https://google.com", Country: "DE", CreatedAt: base.Add(time.Hour)},
		{MenuID: menu.ID, NodeID: 2, SessionID: "s3", UserAgent: mobile, Referrer: "https://bing.com", Country: "FR", CreatedAt: base.Add(26 * time.Hour)},
		{MenuID: menu.ID, NodeID: 1, SessionID: "s3", UserAgent: mobile, CreatedAt: base.Add(26 * time.Hour)},
	}
	for _, ev := range events {
		if err := st.InsertClickEvent(ctx, ev); err != nil {
			t.Fatalf("InsertClickEvent: %v", err)
		}
	}

	report, err := svc.Aggregate(ctx, menu.ID, base.Add(-time.Hour), base.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if report.TotalClicks != 4 {
		t.Errorf("total clicks = %d, want 4", report.TotalClicks)
	}
	// Same user twice plus one session: 2 unique viewers.
	if report.UniqueViewers != 2 {
		t.Errorf("unique viewers = %d, want 2", report.UniqueViewers)
	}

	if len(report.Nodes) != 2 || report.Nodes[0].NodeID != 1 || report.Nodes[0].Clicks != 3 {
		t.Errorf("node ranking = %+v", report.Nodes)
	}
	if share := report.Nodes[0].Share; share < 0.74 || share > 0.76 {
		t.Errorf("top node share = %v, want 0.75", share)
	}

	if report.Hourly[9] != 1 || report.Hourly[10] != 1 || report.Hourly[11] != 2 {
		t.Errorf("hourly histogram = %v", report.Hourly)
	}
	if len(report.Daily) != 2 || report.Daily[0].Date != "2026-08-10" || report.Daily[0].Clicks != 2 {
		t.Errorf("daily histogram = %+v", report.Daily)
	}

	if len(report.Referrers) != 2 || report.Referrers[0].Referrer != "https://google.com" {
		t.Errorf("referrers = %+v", report.Referrers)
	}

	if report.Devices[model.DeviceDesktop] != 2 || report.Devices[model.DeviceMobile] != 2 {
		t.Errorf("devices = %v", report.Devices)
	}
	if report.Countries["DE"] != 2 || report.Countries["FR"] != 1 {
		t.Errorf("countries = %v", report.Countries)
	}
}

func TestAggregateUnknownMenu(t *testing.T) {
	svc, _, _ := newAnalyticsFixture(t, AnalyticsOptions{})
	_, err := svc.Aggregate(context.Background(), 999, time.Now().Add(-time.Hour), time.Now())
	if err == nil {
		t.Fatal("expected error for unknown menu")
	}
}

func TestPerformanceReport(t *testing.T) {
	svc, st, menu := newAnalyticsFixture(t, AnalyticsOptions{})
	ctx := context.Background()

	for i := 1; i <= 120; i++ {
		svc.RecordRenderTime(menu.ID, time.Duration(i)*time.Millisecond)
	}

	// A flat structure below every threshold.
	trees := NewTreeService(st, nil, testutil.TestLogger())
	for i := 0; i < 3; i++ {
		if _, err := trees.AddNode(ctx, AddNodeParams{MenuID: menu.ID, Title: fmt.Sprintf("n%d", i)}); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}

	report, err := svc.Performance(ctx, menu.ID)
	if err != nil {
		t.Fatalf("Performance: %v", err)
	}

	if report.Samples != 120 {
		t.Errorf("samples = %d, want 120", report.Samples)
	}
	if report.P50Ms != 60 || report.P95Ms != 114 {
		t.Errorf("p50/p95 = %v/%v, want 60/114", report.P50Ms, report.P95Ms)
	}
	if report.MinMs != 1 || report.MaxMs != 120 {
		t.Errorf("min/max = %v/%v, want 1/120", report.MinMs, report.MaxMs)
	}
	if report.NodeCount != 3 || report.MaxDepth != 1 {
		t.Errorf("structure = %d nodes depth %d, want 3/1", report.NodeCount, report.MaxDepth)
	}
	if len(report.Recommendations) != 0 {
		t.Errorf("recommendations = %v, want none", report.Recommendations)
	}
}

func TestPerformanceRecommendations(t *testing.T) {
	svc, st, menu := newAnalyticsFixture(t, AnalyticsOptions{})
	ctx := context.Background()
	trees := NewTreeService(st, nil, testutil.TestLogger())

	// 21 roots and a 4-deep chain trip both structural thresholds.
	var parent *int64
	for i := 0; i < 21; i++ {
		n, err := trees.AddNode(ctx, AddNodeParams{MenuID: menu.ID, Title: fmt.Sprintf("n%d", i)})
		if err != nil {
			t.Fatalf("AddNode: %v", err)
		}
		if i == 0 {
			parent = &n.ID
		}
	}
	for i := 0; i < 3; i++ {
		n, err := trees.AddNode(ctx, AddNodeParams{MenuID: menu.ID, ParentID: parent, Title: fmt.Sprintf("d%d", i)})
		if err != nil {
			t.Fatalf("AddNode: %v", err)
		}
		parent = &n.ID
	}

	svc.RecordRenderTime(menu.ID, 150*time.Millisecond)

	report, err := svc.Performance(ctx, menu.ID)
	if err != nil {
		t.Fatalf("Performance: %v", err)
	}
	if report.MaxDepth != 4 {
		t.Errorf("max depth = %d, want 4", report.MaxDepth)
	}
	if len(report.Recommendations) != 3 {
		t.Errorf("recommendations = %v, want all three", report.Recommendations)
	}
}

func TestPerfRingCapacity(t *testing.T) {
	svc, _, menu := newAnalyticsFixture(t, AnalyticsOptions{PerfSampleCap: 10})

	for i := 1; i <= 25; i++ {
		svc.RecordRenderTime(menu.ID, time.Duration(i)*time.Millisecond)
	}

	report, err := svc.Performance(context.Background(), menu.ID)
	if err != nil {
		t.Fatalf("Performance: %v", err)
	}
	if report.Samples != 10 {
		t.Errorf("samples = %d, want 10", report.Samples)
	}
	// Only the most recent samples remain: 16..25.
	if report.MinMs != 16 || report.MaxMs != 25 {
		t.Errorf("min/max = %v/%v, want 16/25", report.MinMs, report.MaxMs)
	}
}

func TestPurgeExpired(t *testing.T) {
	svc, st, menu := newAnalyticsFixture(t, AnalyticsOptions{RetentionDays: 30})
	ctx := context.Background()

	old := model.ClickEvent{MenuID: menu.ID, NodeID: 1, SessionID: "s", CreatedAt: time.Now().AddDate(0, 0, -40)}
	fresh := model.ClickEvent{MenuID: menu.ID, NodeID: 1, SessionID: "s", CreatedAt: time.Now()}
	if err := st.InsertClickEvent(ctx, old); err != nil {
		t.Fatalf("InsertClickEvent: %v", err)
	}
	if err := st.InsertClickEvent(ctx, fresh); err != nil {
		t.Fatalf("InsertClickEvent: %v", err)
	}

	n, err := svc.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("purged = %d, want 1", n)
	}
}
