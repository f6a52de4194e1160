// Package daemon provides the long-running subscription monitor service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/recur/internal/logger"
	"github.com/theirongolddev/recur/internal/model"
	"github.com/theirongolddev/recur/internal/pipeline"
	"github.com/theirongolddev/recur/internal/recurrence"
	"github.com/theirongolddev/recur/internal/store"
)

// Config controls the daemon runtime behavior.
type Config struct {
	InputDir     string
	Days         int // history window, 0 = all
	UseCache     bool
	SkipReviewed bool
	Detect       recurrence.Options
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Log          zerolog.Logger
}

// Snapshot is a compact detection state for status/event payloads.
type Snapshot struct {
	At            time.Time `json:"at"`
	Subscriptions int       `json:"subscriptions"`
	High          int       `json:"high"`
	Medium        int       `json:"medium"`
	Low           int       `json:"low"`
	MonthlySpend  float64   `json:"monthly_spend"`
	YearlySpend   float64   `json:"yearly_spend"`
	Merchants     []string  `json:"merchants"` // sorted
}

// Delta captures what changed between two polls.
type Delta struct {
	Subscriptions int      `json:"subscriptions"`
	MonthlySpend  float64  `json:"monthly_spend"`
	Added         []string `json:"added,omitempty"`
	Removed       []string `json:"removed,omitempty"`
}

func (d Delta) isZero() bool {
	return d.Subscriptions == 0 &&
		math.Abs(d.MonthlySpend) < 0.005 &&
		len(d.Added) == 0 &&
		len(d.Removed) == 0
}

// Event is emitted whenever the detection snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	InputDir        string    `json:"input_dir"`
	Days            int       `json:"days"`
	Transactions    int       `json:"transactions"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// loadFunc returns the transactions to scan and the merchant keys to skip.
type loadFunc func(ctx context.Context) ([]model.Transaction, map[string]struct{}, error)

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg  Config
	load loadFunc
	now  func() time.Time

	mu           sync.RWMutex
	startedAt    time.Time
	lastPollAt   time.Time
	pollCount    int64
	lastError    string
	hasSnapshot  bool
	snapshot     Snapshot
	detected     []model.DetectedSubscription
	transactions int
	nextEventID  int64
	events       []Event
	nextListener int
	listeners    map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 60 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}

	s := &Service{
		cfg:       cfg,
		now:       time.Now,
		startedAt: time.Now(),
		listeners: make(map[int]chan Event),
	}
	s.load = s.loadTransactions
	return s
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/subscriptions", s.handleSubscriptions)
	mux.HandleFunc("/v1/upcoming", s.handleUpcoming)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	ctx = logger.WithContext(ctx, s.cfg.Log)

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
	s.cfg.Log.Info().Str("addr", s.cfg.Addr).Dur("interval", s.cfg.Interval).Msg("daemon listening")

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	start := time.Now()
	txns, skip, err := s.load(ctx)
	now := s.now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.cfg.Log.Error().Err(err).Msg("poll failed")
		return
	}

	if s.cfg.Days > 0 {
		txns = pipeline.FilterByTime(txns, now.AddDate(0, 0, -s.cfg.Days), time.Time{})
	}

	opts := s.cfg.Detect
	opts.Skip = skip
	detected := pipeline.Detect(ctx, txns, opts)
	snap := snapshotFrom(detected, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.detected = detected
	s.transactions = len(txns)
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "subscriptions_changed",
			Timestamp: now,
			Snapshot:  snap,
			Delta:     delta,
		}
		publish = true
	}
	s.mu.Unlock()

	s.cfg.Log.Debug().
		Int("transactions", len(txns)).
		Int("subscriptions", snap.Subscriptions).
		Dur("elapsed", time.Since(start)).
		Msg("poll complete")

	if publish {
		s.cfg.Log.Info().
			Str("type", ev.Type).
			Strs("added", ev.Delta.Added).
			Strs("removed", ev.Delta.Removed).
			Msg("subscriptions updated")
		s.publishEvent(ev)
	}
}

// loadTransactions reads statements through the cache when enabled and
// falls back to a direct parse if the cache can't be used. Reviewed merchants
// come from the cache database on both paths.
func (s *Service) loadTransactions(ctx context.Context) ([]model.Transaction, map[string]struct{}, error) {
	return s.loadFrom(ctx, pipeline.CachePath())
}

func (s *Service) loadFrom(ctx context.Context, cachePath string) ([]model.Transaction, map[string]struct{}, error) {
	var skip map[string]struct{}

	cache, err := store.Open(cachePath)
	if err != nil {
		s.cfg.Log.Warn().Err(err).Msg("cache unavailable, parsing directly and not skipping reviewed merchants")
		cache = nil
	} else {
		defer func() { _ = cache.Close() }()
		if s.cfg.SkipReviewed {
			skip, err = cache.ReviewedKeys()
			if err != nil {
				return nil, nil, fmt.Errorf("reading reviewed merchants: %w", err)
			}
		}
	}

	if cache != nil && s.cfg.UseCache {
		cr, err := pipeline.LoadWithCache(ctx, s.cfg.InputDir, cache, nil)
		if err == nil {
			return cr.Transactions, skip, nil
		}
		s.cfg.Log.Info().Err(err).Msg("cache load failed, parsing directly")
	}

	result, err := pipeline.Load(ctx, s.cfg.InputDir, nil)
	if err != nil {
		return nil, nil, err
	}
	return result.Transactions, skip, nil
}

func snapshotFrom(subs []model.DetectedSubscription, at time.Time) Snapshot {
	stats := pipeline.Summarize(subs)
	merchants := make([]string, 0, len(subs))
	for _, sub := range subs {
		merchants = append(merchants, sub.RecipientName)
	}
	sort.Strings(merchants)

	return Snapshot{
		At:            at,
		Subscriptions: stats.Subscriptions,
		High:          stats.High,
		Medium:        stats.Medium,
		Low:           stats.Low,
		MonthlySpend:  stats.MonthlyCost,
		YearlySpend:   stats.YearlyCost,
		Merchants:     merchants,
	}
}

// diffSnapshots compares two snapshots. Both merchant lists are sorted, so a
// single merge pass finds additions and removals.
func diffSnapshots(prev, curr Snapshot) Delta {
	d := Delta{
		Subscriptions: curr.Subscriptions - prev.Subscriptions,
		MonthlySpend:  curr.MonthlySpend - prev.MonthlySpend,
	}

	i, j := 0, 0
	for i < len(prev.Merchants) || j < len(curr.Merchants) {
		switch {
		case j == len(curr.Merchants) || (i < len(prev.Merchants) && prev.Merchants[i] < curr.Merchants[j]):
			d.Removed = append(d.Removed, prev.Merchants[i])
			i++
		case i == len(prev.Merchants) || curr.Merchants[j] < prev.Merchants[i]:
			d.Added = append(d.Added, curr.Merchants[j])
			j++
		default:
			i++
			j++
		}
	}
	return d
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.listeners {
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
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		InputDir:        s.cfg.InputDir,
		Days:            s.cfg.Days,
		Transactions:    s.transactions,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.listeners),
	}
}

func (s *Service) currentSubscriptions() []model.DetectedSubscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.DetectedSubscription, len(s.detected))
	copy(out, s.detected)
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.snapshotStatus())
}

func (s *Service) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs := s.currentSubscriptions()
	subs = pipeline.FilterByMerchant(subs, r.URL.Query().Get("merchant"))
	if v := r.URL.Query().Get("min_level"); v != "" {
		level, err := model.ParseConfidenceLevel(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		subs = pipeline.FilterByLevel(subs, level)
	}
	writeJSON(w, subs)
}

func (s *Service) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		days = n
	}
	writeJSON(w, pipeline.Upcoming(s.currentSubscriptions(), s.now(), days))
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addListener(ch)
	defer s.removeListener(id)

	// Send current snapshot immediately.
	writeSSE(w, Event{
		Type:      "snapshot",
		Timestamp: s.now(),
		Snapshot:  s.snapshotStatus().Summary,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addListener(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextListener++
	id := s.nextListener
	s.listeners[id] = ch
	return id
}

func (s *Service) removeListener(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, id)
}
