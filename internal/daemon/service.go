// Package daemon provides the long-running usage monitor service: it watches
// the usage exports, re-ingests on change, and serves the derived views.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	log "github.com/charmbracelet/log"

	"github.com/theirongolddev/cusage/internal/config"
	"github.com/theirongolddev/cusage/internal/logutil"
	"github.com/theirongolddev/cusage/internal/model"
	"github.com/theirongolddev/cusage/internal/pipeline"
	"github.com/theirongolddev/cusage/internal/store"
)

// Event types.
const (
	EventSnapshot    = "snapshot"
	EventReload      = "reload"
	EventReloadError = "reload_error"
)

// LoaderFunc produces the full record set for one reload.
type LoaderFunc func(ctx context.Context) ([]model.UsageRecord, error)

// Config controls the daemon runtime behavior.
type Config struct {
	Paths        []string
	Plan         model.PlanTier
	Plans        config.PlanTable
	Pricing      config.PricingFunc
	UseCache     bool
	Addr         string
	EventsBuffer int
	// Debounce coalesces bursts of file events into one reload.
	Debounce time.Duration
	// Loader overrides file loading; nil loads Paths.
	Loader LoaderFunc
	Logger *log.Logger
}

// Snapshot is a compact usage state for status/event payloads.
type Snapshot struct {
	At                  time.Time `json:"at"`
	Records             int       `json:"records"`
	Users               int       `json:"users"`
	Models              int       `json:"models"`
	LastDate            string    `json:"last_date,omitempty"`
	TotalRequests       float64   `json:"total_requests"`
	CompliantRequests   float64   `json:"compliant_requests"`
	ExceedingRequests   float64   `json:"exceeding_requests"`
	ExceedingPercentage float64   `json:"exceeding_percentage"`
	UsersExceeding      int       `json:"users_exceeding"`
	PowerUsers          int       `json:"power_users"`
	ExcessCostUSD       float64   `json:"excess_cost_usd"`
}

// Delta captures snapshot deltas between reloads.
type Delta struct {
	Records           int     `json:"records"`
	TotalRequests     float64 `json:"total_requests"`
	ExceedingRequests float64 `json:"exceeding_requests"`
	UsersExceeding    int     `json:"users_exceeding"`
	ExcessCostUSD     float64 `json:"excess_cost_usd"`
}

func (d Delta) isZero() bool {
	return d.Records == 0 &&
		d.TotalRequests == 0 &&
		d.ExceedingRequests == 0 &&
		d.UsersExceeding == 0 &&
		d.ExcessCostUSD == 0
}

// Event is emitted whenever the report is rebuilt or a reload fails.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
	Error     string    `json:"error,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastReloadAt    time.Time `json:"last_reload_at"`
	ReloadCount     int64     `json:"reload_count"`
	Paths           []string  `json:"paths"`
	Plan            string    `json:"plan"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	log     *log.Logger
	metrics *Metrics

	mu           sync.RWMutex
	startedAt    time.Time
	lastReloadAt time.Time
	reloadCount  int64
	lastError    string
	records      []model.UsageRecord
	report       *pipeline.Report
	snapshot     Snapshot
	nextEventID  int64
	events       []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 300 * time.Millisecond
	}
	if cfg.Pricing == nil {
		cfg.Pricing = config.DefaultPricing()
	}
	if cfg.Plans.Len() == 0 {
		cfg.Plans = config.DefaultPlanTable()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logutil.New("cusage")
	}

	s := &Service{
		cfg:       cfg,
		log:       logger,
		metrics:   NewMetrics(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	if s.cfg.Loader == nil {
		s.cfg.Loader = s.loadRecords
	}
	return s
}

// Run serves the HTTP API and re-ingests on file changes until ctx is
// canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed the first report so status is useful immediately.
	if err := s.Reload(ctx); err != nil {
		s.log.Error("initial load failed", "err", err)
	}

	trigger := make(chan struct{}, 1)
	w, err := newWatcher(s.cfg.Paths, s.cfg.Debounce, trigger, s.log)
	if err != nil {
		s.log.Warn("file watching disabled", "err", err)
	} else {
		go w.run(ctx)
		defer func() { _ = w.Close() }()
	}

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-trigger:
			if err := s.Reload(ctx); err != nil {
				s.log.Warn("reload failed, keeping previous report", "err", err)
			}
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// Reload re-ingests the inputs and swaps in a fresh report. On failure the
// previous report stays in place and a reload_error event is published.
func (s *Service) Reload(ctx context.Context) error {
	start := time.Now()
	records, err := s.cfg.Loader(ctx)
	var report *pipeline.Report
	if err == nil {
		report, err = pipeline.BuildReport(ctx, records, pipeline.ReportOptions{
			Plan:    s.cfg.Plan,
			Plans:   s.cfg.Plans,
			Pricing: s.cfg.Pricing,
		})
	}
	now := time.Now()
	s.metrics.observeReload(err, now.Sub(start))

	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastReloadAt = now
		s.reloadCount++
		s.nextEventID++
		ev := Event{
			ID:        s.nextEventID,
			Type:      EventReloadError,
			Timestamp: now,
			Snapshot:  s.snapshot,
			Error:     err.Error(),
		}
		s.mu.Unlock()
		s.publishEvent(ev)
		return err
	}

	snap := snapshotFromReport(report, now)
	s.metrics.setReport(report)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	hadReport := s.report != nil

	s.records = records
	s.report = report
	s.snapshot = snap
	s.lastReloadAt = now
	s.reloadCount++
	s.lastError = ""

	if !hadReport {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventReload, Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
	s.log.Info("report rebuilt", "records", snap.Records, "took", time.Since(start).Round(time.Millisecond))
	return nil
}

func (s *Service) loadRecords(_ context.Context) ([]model.UsageRecord, error) {
	if s.cfg.UseCache {
		cache, err := store.Open(pipeline.CachePath())
		if err == nil {
			defer func() { _ = cache.Close() }()
			cr, loadErr := pipeline.LoadWithCache(s.cfg.Paths, cache, nil)
			if loadErr == nil {
				return cr.Records, nil
			}
			s.log.Debug("cache-assisted load failed, reparsing", "err", loadErr)
		}
	}

	result, err := pipeline.Load(s.cfg.Paths, nil)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// current returns the live records and report under the read lock.
func (s *Service) current() ([]model.UsageRecord, *pipeline.Report) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records, s.report
}

func snapshotFromReport(r *pipeline.Report, at time.Time) Snapshot {
	return Snapshot{
		At:                  at,
		Records:             r.Records,
		Users:               r.Users,
		Models:              len(r.Models),
		LastDate:            r.LastDate,
		TotalRequests:       r.Status.TotalRequests,
		CompliantRequests:   r.Status.CompliantRequests,
		ExceedingRequests:   r.Status.ExceedingRequests,
		ExceedingPercentage: r.Status.ExceedingPercentage,
		UsersExceeding:      r.UsersExceedingQuota,
		PowerUsers:          r.PowerUsers.TotalPowerUsers,
		ExcessCostUSD:       r.ExcessCost,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Records:           curr.Records - prev.Records,
		TotalRequests:     curr.TotalRequests - prev.TotalRequests,
		ExceedingRequests: curr.ExceedingRequests - prev.ExceedingRequests,
		UsersExceeding:    curr.UsersExceeding - prev.UsersExceeding,
		ExcessCostUSD:     curr.ExcessCostUSD - prev.ExcessCostUSD,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastReloadAt:    s.lastReloadAt,
		ReloadCount:     s.reloadCount,
		Paths:           s.cfg.Paths,
		Plan:            s.cfg.Plan.String(),
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) eventsCopy() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	return events
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	s.metrics.Subscribers.Set(float64(len(s.subs)))
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
	s.metrics.Subscribers.Set(float64(len(s.subs)))
}
