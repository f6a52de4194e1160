package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/recur/internal/model"
	"github.com/theirongolddev/recur/internal/pipeline"
	"github.com/theirongolddev/recur/internal/recurrence"
	"github.com/theirongolddev/recur/internal/store"
)

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Subscriptions: 3,
		MonthlySpend:  300,
		Merchants:     []string{"Gym", "Netflix", "Spotify"},
	}
	curr := Snapshot{
		Subscriptions: 3,
		MonthlySpend:  320.5,
		Merchants:     []string{"Hbo", "Netflix", "Telia"},
	}

	delta := diffSnapshots(prev, curr)
	if delta.Subscriptions != 0 {
		t.Fatalf("Subscriptions delta = %d, want 0", delta.Subscriptions)
	}
	if math.Abs(delta.MonthlySpend-20.5) > 1e-9 {
		t.Fatalf("MonthlySpend delta = %.2f, want 20.50", delta.MonthlySpend)
	}
	if fmt.Sprint(delta.Added) != "[Hbo Telia]" {
		t.Fatalf("Added = %v, want [Hbo Telia]", delta.Added)
	}
	if fmt.Sprint(delta.Removed) != "[Gym Spotify]" {
		t.Fatalf("Removed = %v, want [Gym Spotify]", delta.Removed)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}

	if d := diffSnapshots(curr, curr); !d.isZero() {
		t.Fatalf("self diff = %+v, want zero", d)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		InputDir:     ".",
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func monthly(prefix, desc string, n int) []model.Transaction {
	start := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	txns := make([]model.Transaction, n)
	for i := range txns {
		txns[i] = model.Transaction{
			ID:          fmt.Sprintf("%s-%d", prefix, i),
			Date:        start.AddDate(0, i, 0),
			Description: desc,
			Amount:      -99,
		}
	}
	return txns
}

// newTestService returns a service whose loader hands out the given
// batches one poll at a time.
func newTestService(t *testing.T, batches ...[]model.Transaction) *Service {
	t.Helper()
	s := New(Config{Log: zerolog.Nop()})
	s.now = func() time.Time { return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC) }

	poll := 0
	s.load = func(context.Context) ([]model.Transaction, map[string]struct{}, error) {
		if poll >= len(batches) {
			return nil, nil, errors.New("no more batches")
		}
		b := batches[poll]
		poll++
		return b, nil, nil
	}
	return s
}

func TestPollOnce(t *testing.T) {
	first := monthly("nf", "Netflix", 6)
	second := append(monthly("sp", "Spotify", 4), first...)

	s := newTestService(t, first, first, second)
	ctx := context.Background()

	s.pollOnce(ctx)
	s.pollOnce(ctx)
	s.pollOnce(ctx)
	s.pollOnce(ctx)

	st := s.snapshotStatus()
	if st.PollCount != 4 {
		t.Errorf("PollCount = %d, want 4", st.PollCount)
	}
	if st.LastError != "no more batches" {
		t.Errorf("LastError = %q, want load error", st.LastError)
	}
	if st.Summary.Subscriptions != 2 {
		t.Errorf("Subscriptions = %d, want 2 (kept from last good poll)", st.Summary.Subscriptions)
	}

	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	s.mu.RUnlock()

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2 (initial snapshot + one change)", len(events))
	}
	if events[0].Type != "snapshot" {
		t.Errorf("events[0].Type = %q, want snapshot", events[0].Type)
	}
	if events[1].Type != "subscriptions_changed" || fmt.Sprint(events[1].Delta.Added) != "[Spotify]" {
		t.Errorf("events[1] = %+v, want Spotify added", events[1])
	}
}

func TestPollOnce_DaysWindow(t *testing.T) {
	s := newTestService(t, monthly("nf", "Netflix", 6))
	s.cfg.Days = 60

	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	if st.Transactions != 2 {
		t.Errorf("Transactions = %d, want 2 inside the 60-day window", st.Transactions)
	}
	if st.Summary.Subscriptions != 0 {
		t.Errorf("Subscriptions = %d, want 0", st.Summary.Subscriptions)
	}
}

func TestHandlers(t *testing.T) {
	s := newTestService(t, append(monthly("sp", "Spotify", 4), monthly("nf", "Netflix", 6)...))
	s.pollOnce(context.Background())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	get := func(path string, v any) int {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer func() { _ = resp.Body.Close() }()
		if v != nil && resp.StatusCode == http.StatusOK {
			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				t.Fatalf("decoding %s: %v", path, err)
			}
		}
		return resp.StatusCode
	}

	if code := get("/healthz", nil); code != http.StatusOK {
		t.Errorf("/healthz = %d", code)
	}

	var st Status
	get("/v1/status", &st)
	if st.Summary.Subscriptions != 2 {
		t.Errorf("status subscriptions = %d, want 2", st.Summary.Subscriptions)
	}

	var subs []model.DetectedSubscription
	get("/v1/subscriptions?merchant=net", &subs)
	if len(subs) != 1 || subs[0].RecipientName != "Netflix" {
		t.Errorf("filtered subscriptions = %+v, want Netflix only", subs)
	}

	var upcoming []model.UpcomingCharge
	get("/v1/upcoming?days=31", &upcoming)
	// Spotify last billed in April; its prediction rolls forward to July too.
	if len(upcoming) != 2 || upcoming[0].RecipientName != "Netflix" || upcoming[1].RecipientName != "Spotify" {
		t.Errorf("upcoming = %+v, want Netflix and Spotify on 2024-07-03", upcoming)
	}

	var high []model.DetectedSubscription
	get("/v1/subscriptions?min_level=HIGH", &high)
	if len(high) != 2 {
		t.Errorf("min_level=HIGH returned %d subscriptions, want 2", len(high))
	}
	if code := get("/v1/subscriptions?min_level=hihg", nil); code != http.StatusBadRequest {
		t.Errorf("/v1/subscriptions?min_level=hihg = %d, want 400", code)
	}

	if code := get("/v1/upcoming?days=-1", nil); code != http.StatusBadRequest {
		t.Errorf("/v1/upcoming?days=-1 = %d, want 400", code)
	}

	var events []Event
	get("/v1/events", &events)
	if len(events) != 1 {
		t.Errorf("events = %d, want 1", len(events))
	}
}

// writeStatement writes six monthly charges for each merchant into dir.
func writeStatement(t *testing.T, dir string, merchants ...string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("date,description,amount\n")
	for _, m := range merchants {
		for i := 0; i < 6; i++ {
			d := time.Date(2024, time.Month(i+1), 3, 0, 0, 0, 0, time.UTC)
			fmt.Fprintf(&b, "%s,%s,-99.00\n", d.Format("2006-01-02"), m)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "statement.csv"), []byte(b.String()), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestPollOnce_SkipsReviewedWithoutCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	input := t.TempDir()
	writeStatement(t, input, "Netflix", "Spotify")

	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	if err := cache.MarkReviewed("Spotify", "known"); err != nil {
		t.Fatalf("MarkReviewed: %v", err)
	}
	_ = cache.Close()

	s := New(Config{
		InputDir:     input,
		UseCache:     false,
		SkipReviewed: true,
		Detect:       recurrence.DefaultOptions(),
		Log:          zerolog.Nop(),
	})
	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	if st.LastError != "" {
		t.Fatalf("poll error: %s", st.LastError)
	}
	if fmt.Sprint(st.Summary.Merchants) != "[Netflix]" {
		t.Errorf("merchants = %v, want [Netflix]", st.Summary.Merchants)
	}
}

func TestLoadFrom_UnusableCacheStillParses(t *testing.T) {
	input := t.TempDir()
	writeStatement(t, input, "Netflix")

	// A regular file where the cache directory should be.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	var logs strings.Builder
	s := New(Config{
		InputDir:     input,
		UseCache:     true,
		SkipReviewed: true,
		Log:          zerolog.New(&logs),
	})
	txns, skip, err := s.loadFrom(context.Background(), filepath.Join(blocker, "recur.db"))
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if len(txns) != 6 {
		t.Errorf("transactions = %d, want 6", len(txns))
	}
	if skip != nil {
		t.Errorf("skip = %v, want nil", skip)
	}
	if !strings.Contains(logs.String(), "not skipping reviewed merchants") {
		t.Errorf("expected a warning about reviewed merchants, got %q", logs.String())
	}
}
