package nbastats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/hooplake/hooplake/internal/platform/resilience"
)

func newTestClient(t *testing.T, baseURL string, maxRetries int) (*Client, *[]time.Duration) {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:        baseURL,
		Timeout:        5 * time.Second,
		MaxRetries:     maxRetries,
		RateLimit:      1000,
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	var slept []time.Duration
	client.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	client.jitter = func() time.Duration { return 0 }
	return client, &slept
}

func TestGet_RetriesTransientThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"resource":"scoreboardv2"}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, 5)
	body, _, err := client.Get(context.Background(), EndpointScoreboard, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !strings.Contains(string(body), "scoreboardv2") {
		t.Fatalf("unexpected body: %s", body)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
}

func TestGet_PermanentErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, 5)
	_, _, err := client.Get(context.Background(), EndpointBoxSummary, nil)
	if !crerr.Is(err, ErrPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestGet_HonorsRetryAfter(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, slept := newTestClient(t, srv.URL, 5)
	_, _, err := client.Get(context.Background(), EndpointPlayByPlay, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	found := false
	for _, d := range *slept {
		if d == 2*time.Second {
			found = true
		}
	}
	if !found {
		t.Fatalf("Retry-After sleep missing, slept %v", *slept)
	}
}

func TestGet_ExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, 3)
	_, _, err := client.Get(context.Background(), EndpointScoreboard, nil)
	if !crerr.Is(err, ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
}

func TestShotChart_FallbackAndDedupe(t *testing.T) {
	teamRow := func(gameID string, playerID, period, minutes, seconds, locX, locY int) []any {
		return []any{gameID, playerID, period, minutes, seconds, locX, locY}
	}
	headers := []string{"GAME_ID", "PLAYER_ID", "PERIOD", "MINUTES_REMAINING", "SECONDS_REMAINING", "LOC_X", "LOC_Y"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		teamID := r.URL.Query().Get("TeamID")
		switch teamID {
		case "0":
			w.WriteHeader(http.StatusInternalServerError)
		case "100":
			writeShotPayload(w, headers, [][]any{
				teamRow("0022300123", 2544, 1, 11, 45, -50, 120),
				teamRow("0022300123", 203999, 2, 5, 30, 0, 0),
			})
		case "200":
			writeShotPayload(w, headers, [][]any{
				// Duplicate of the first team-100 row.
				teamRow("0022300123", 2544, 1, 11, 45, -50, 120),
				teamRow("0022300123", 1629029, 3, 2, 10, 80, 40),
			})
		}
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, 1)
	body, err := client.ShotChart(context.Background(), "0022300123", []int64{100, 200})
	if err != nil {
		t.Fatalf("ShotChart: %v", err)
	}

	env, err := decodeShotEnvelope(body)
	if err != nil {
		t.Fatalf("decode merged payload: %v", err)
	}
	set := env.detailSet()
	if set == nil {
		t.Fatal("merged payload missing Shot_Chart_Detail")
	}
	if len(set.RowSet) != 3 {
		t.Fatalf("rows = %d, want 3 after dedupe", len(set.RowSet))
	}
}

func writeShotPayload(w http.ResponseWriter, headers []string, rows [][]any) {
	payload := shotEnvelope{
		Resource: "shotchartdetail",
		ResultSets: []*shotResultSet{
			{Name: shotDetailSetName, Headers: headers, RowSet: rows},
		},
	}
	data, _ := sonic.Marshal(payload)
	_, _ = w.Write(data)
}
