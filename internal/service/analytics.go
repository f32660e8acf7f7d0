// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"
	"golang.org/x/time/rate"

	"github.com/sellerhub/navcore/internal/geoip"
	"github.com/sellerhub/navcore/internal/model"
	"github.com/sellerhub/navcore/internal/store"
)

const clickQueueSize = 256

// AnalyticsOptions configure an AnalyticsService.
type AnalyticsOptions struct {
	RetentionDays int
	PerfSampleCap int
	ClickRate     float64
	ClickBurst    int
	Now           func() time.Time
}

// AnalyticsService records menu click events asynchronously and produces
// click and render-performance reports. Recording never blocks request
// handling: events go through a bounded queue and are dropped with a
// warning when it is full.
type AnalyticsService struct {
	store   *store.Store
	geo     *geoip.Lookup
	logger  *slog.Logger
	limiter *rate.Limiter
	queue   chan model.ClickEvent
	done    chan struct{}
	wg      sync.WaitGroup

	retention time.Duration
	sampleCap int
	now       func() time.Time

	mu        sync.Mutex
	samples   map[int64]*perfRing
	lastPurge time.Time
}

// NewAnalyticsService creates an AnalyticsService and starts its worker.
// Call Close to drain the queue on shutdown.
func NewAnalyticsService(st *store.Store, geo *geoip.Lookup, logger *slog.Logger, opts AnalyticsOptions) *AnalyticsService {
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = 90
	}
	if opts.PerfSampleCap <= 0 {
		opts.PerfSampleCap = 1000
	}
	if opts.ClickRate <= 0 {
		opts.ClickRate = 100
	}
	if opts.ClickBurst <= 0 {
		opts.ClickBurst = 200
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &AnalyticsService{
		store:     st,
		geo:       geo,
		logger:    logger,
		limiter:   rate.NewLimiter(rate.Limit(opts.ClickRate), opts.ClickBurst),
		queue:     make(chan model.ClickEvent, clickQueueSize),
		done:      make(chan struct{}),
		retention: time.Duration(opts.RetentionDays) * 24 * time.Hour,
		sampleCap: opts.PerfSampleCap,
		now:       opts.Now,
		samples:   make(map[int64]*perfRing),
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

// Close stops accepting events and waits for queued ones to be stored.
func (s *AnalyticsService) Close() {
	close(s.done)
	s.wg.Wait()
}

// RecordClick enqueues a click event for asynchronous storage. A missing
// session id is filled with a fresh UUID so anonymous clicks still count
// toward unique viewers. The call returns immediately; under overload the
// event is dropped.
func (s *AnalyticsService) RecordClick(ev model.ClickEvent) {
	if !s.limiter.Allow() {
		s.logger.Warn("click event rate limited", "menu_id", ev.MenuID)
		return
	}
	if ev.SessionID == "" {
		ev.SessionID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = s.now()
	}
	select {
	case s.queue <- ev:
	default:
		s.logger.Warn("click event queue full, dropping event", "menu_id", ev.MenuID)
	}
}

func (s *AnalyticsService) worker() {
	defer s.wg.Done()
	for {
		select {
		case ev := <-s.queue:
			s.storeEvent(ev)
		case <-s.done:
			// Drain whatever is left before exiting.
			for {
				select {
				case ev := <-s.queue:
					s.storeEvent(ev)
				default:
					return
				}
			}
		}
	}
}

func (s *AnalyticsService) storeEvent(ev model.ClickEvent) {
	if ev.Country == "" && ev.ClientIP != "" {
		ev.Country = s.geo.Country(ev.ClientIP)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.InsertClickEvent(ctx, ev); err != nil {
		s.logger.Error("store click event", "err", err, "menu_id", ev.MenuID)
	}
}

// RecordRenderTime feeds a render duration into the menu's sample ring.
func (s *AnalyticsService) RecordRenderTime(menuID int64, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ring := s.samples[menuID]
	if ring == nil {
		ring = newPerfRing(s.sampleCap)
		s.samples[menuID] = ring
	}
	ring.add(float64(d) / float64(time.Millisecond))
}

// NodeClicks is a per-node slice of a click report.
type NodeClicks struct {
	NodeID int64   `json:"node_id"`
	Clicks int     `json:"clicks"`
	Share  float64 `json:"share"`
}

// DayClicks is one day of a click report's daily histogram.
type DayClicks struct {
	Date   string `json:"date"`
	Clicks int    `json:"clicks"`
}

// ReferrerClicks is one entry of a click report's referrer ranking.
type ReferrerClicks struct {
	Referrer string `json:"referrer"`
	Clicks   int    `json:"clicks"`
}

// ClickReport aggregates a menu's click events over a period.
type ClickReport struct {
	MenuID        int64            `json:"menu_id"`
	Start         time.Time        `json:"start"`
	End           time.Time        `json:"end"`
	TotalClicks   int              `json:"total_clicks"`
	UniqueViewers int              `json:"unique_viewers"`
	Nodes         []NodeClicks     `json:"nodes"`
	Hourly        [24]int          `json:"hourly"`
	Daily         []DayClicks      `json:"daily"`
	Referrers     []ReferrerClicks `json:"referrers"`
	Devices       map[string]int   `json:"devices"`
	Browsers      map[string]int   `json:"browsers"`
	Countries     map[string]int   `json:"countries"`
}

// Aggregate builds a click report for the menu over [start, end). Events
// past the retention window are purged opportunistically, at most once a
// day.
func (s *AnalyticsService) Aggregate(ctx context.Context, menuID int64, start, end time.Time) (ClickReport, error) {
	if _, err := s.store.GetMenuByID(ctx, menuID); err != nil {
		return ClickReport{}, err
	}
	s.maybePurge(ctx)

	events, err := s.store.ListClickEvents(ctx, menuID, start, end)
	if err != nil {
		return ClickReport{}, err
	}

	report := ClickReport{
		MenuID:      menuID,
		Start:       start,
		End:         end,
		TotalClicks: len(events),
		Devices:     make(map[string]int),
		Browsers:    make(map[string]int),
		Countries:   make(map[string]int),
	}

	viewers := make(map[string]struct{})
	nodeCounts := make(map[int64]int)
	dayCounts := make(map[string]int)
	refCounts := make(map[string]int)

	for _, ev := range events {
		viewers[ev.ViewerKey()] = struct{}{}
		nodeCounts[ev.NodeID]++
		report.Hourly[ev.CreatedAt.Hour()]++
		dayCounts[ev.CreatedAt.Format("2006-01-02")]++
		if ev.Referrer != "" {
			refCounts[ev.Referrer]++
		}
		report.Devices[classifyDevice(ev.UserAgent)]++
		if name := useragent.Parse(ev.UserAgent).Name; name != "" {
			report.Browsers[name]++
		}
		if ev.Country != "" {
			report.Countries[ev.Country]++
		}
	}
	report.UniqueViewers = len(viewers)

	for id, n := range nodeCounts {
		share := 0.0
		if report.TotalClicks > 0 {
			share = float64(n) / float64(report.TotalClicks)
		}
		report.Nodes = append(report.Nodes, NodeClicks{NodeID: id, Clicks: n, Share: share})
	}
	sort.Slice(report.Nodes, func(i, j int) bool {
		if report.Nodes[i].Clicks != report.Nodes[j].Clicks {
			return report.Nodes[i].Clicks > report.Nodes[j].Clicks
		}
		return report.Nodes[i].NodeID < report.Nodes[j].NodeID
	})

	for day, n := range dayCounts {
		report.Daily = append(report.Daily, DayClicks{Date: day, Clicks: n})
	}
	sort.Slice(report.Daily, func(i, j int) bool { return report.Daily[i].Date < report.Daily[j].Date })

	for ref, n := range refCounts {
		report.Referrers = append(report.Referrers, ReferrerClicks{Referrer: ref, Clicks: n})
	}
	sort.Slice(report.Referrers, func(i, j int) bool {
		if report.Referrers[i].Clicks != report.Referrers[j].Clicks {
			return report.Referrers[i].Clicks > report.Referrers[j].Clicks
		}
		return report.Referrers[i].Referrer < report.Referrers[j].Referrer
	})
	if len(report.Referrers) > 10 {
		report.Referrers = report.Referrers[:10]
	}

	return report, nil
}

// PurgeExpired removes click events older than the retention window.
func (s *AnalyticsService) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	n, err := s.store.PurgeClickEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("purged expired click events", "count", n, "cutoff", cutoff)
	}
	s.mu.Lock()
	s.lastPurge = s.now()
	s.mu.Unlock()
	return n, nil
}

func (s *AnalyticsService) maybePurge(ctx context.Context) {
	s.mu.Lock()
	due := s.now().Sub(s.lastPurge) >= 24*time.Hour
	s.mu.Unlock()
	if !due {
		return
	}
	if _, err := s.PurgeExpired(ctx); err != nil {
		s.logger.Error("purge click events", "err", err)
	}
}

// PerformanceReport summarizes render timings and structure of a menu.
type PerformanceReport struct {
	MenuID          int64    `json:"menu_id"`
	Samples         int      `json:"samples"`
	AvgMs           float64  `json:"avg_ms"`
	MinMs           float64  `json:"min_ms"`
	MaxMs           float64  `json:"max_ms"`
	P50Ms           float64  `json:"p50_ms"`
	P95Ms           float64  `json:"p95_ms"`
	P99Ms           float64  `json:"p99_ms"`
	NodeCount       int      `json:"node_count"`
	MaxDepth        int      `json:"max_depth"`
	Recommendations []string `json:"recommendations"`
}

// Performance reports render-time statistics together with structural
// advice for the menu.
func (s *AnalyticsService) Performance(ctx context.Context, menuID int64) (PerformanceReport, error) {
	if _, err := s.store.GetMenuByID(ctx, menuID); err != nil {
		return PerformanceReport{}, err
	}

	nodes, err := s.store.ListNodesByMenu(ctx, menuID)
	if err != nil {
		return PerformanceReport{}, err
	}

	report := PerformanceReport{
		MenuID:    menuID,
		NodeCount: len(nodes),
		MaxDepth:  maxDepth(nodes),
	}

	s.mu.Lock()
	var values []float64
	if ring := s.samples[menuID]; ring != nil {
		values = ring.values()
	}
	s.mu.Unlock()

	if len(values) > 0 {
		sort.Float64s(values)
		report.Samples = len(values)
		report.MinMs = values[0]
		report.MaxMs = values[len(values)-1]
		var sum float64
		for _, v := range values {
			sum += v
		}
		report.AvgMs = sum / float64(len(values))
		report.P50Ms = percentile(values, 50)
		report.P95Ms = percentile(values, 95)
		report.P99Ms = percentile(values, 99)
	}

	if report.NodeCount > 20 {
		report.Recommendations = append(report.Recommendations, "reduce the number of menu items")
	}
	if report.MaxDepth > 3 {
		report.Recommendations = append(report.Recommendations, "flatten the menu hierarchy")
	}
	if report.Samples > 0 && report.AvgMs > 100 {
		report.Recommendations = append(report.Recommendations, "enable caching for this menu")
	}
	return report, nil
}

// percentile reads the p-th percentile from an ascending sample slice
// using the nearest-rank method.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// maxDepth computes the deepest nesting level of a flat node list, with
// root nodes at depth 1.
func maxDepth(nodes []model.MenuNode) int {
	parents := make(map[int64]*int64, len(nodes))
	for _, n := range nodes {
		parents[n.ID] = n.ParentID
	}
	deepest := 0
	for _, n := range nodes {
		depth := 1
		p := n.ParentID
		for p != nil && depth <= len(nodes) {
			depth++
			p = parents[*p]
		}
		if depth > deepest {
			deepest = depth
		}
	}
	return deepest
}

var (
	mobileHints = []string{"mobile", "android", "iphone"}
	tabletHints = []string{"tablet", "ipad"}
)

// classifyDevice buckets a user agent string into mobile, tablet or
// desktop. Mobile hints win over tablet hints; anything else is desktop.
func classifyDevice(ua string) string {
	lower := strings.ToLower(ua)
	for _, hint := range mobileHints {
		if strings.Contains(lower, hint) {
			return model.DeviceMobile
		}
	}
	for _, hint := range tabletHints {
		if strings.Contains(lower, hint) {
			return model.DeviceTablet
		}
	}
	return model.DeviceDesktop
}

// perfRing is a fixed-capacity ring of render-time samples in
// milliseconds. Newer samples overwrite the oldest once full.
type perfRing struct {
	buf  []float64
	next int
	full bool
}

func newPerfRing(capacity int) *perfRing {
	return &perfRing{buf: make([]float64, capacity)}
}

func (r *perfRing) add(v float64) {
	r.buf[r.next] = v
	r.next++
	if r.next == len(r.buf) {
		r.next = 0
		r.full = true
	}
}

func (r *perfRing) values() []float64 {
	if r.full {
		out := make([]float64, len(r.buf))
		copy(out, r.buf)
		return out
	}
	out := make([]float64, r.next)
	copy(out, r.buf[:r.next])
	return out
}
