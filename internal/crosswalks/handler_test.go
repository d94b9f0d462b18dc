package crosswalks

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/concordsec/concord/pkg/pagination"
)

type stubSystem struct {
	System
	stats *Statistics
}

func (s *stubSystem) Statistics(ctx context.Context) (*Statistics, error) {
	return s.stats, nil
}

func testHandler(sys System) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(sys, logger, pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
}

func TestStatisticsRouteRegistered(t *testing.T) {
	group := testHandler(nil).Routes()

	for _, route := range group.Routes {
		if route.Method == "GET" && route.Pattern == "/statistics" {
			if route.Handler == nil {
				t.Fatal("statistics route has no handler")
			}
			return
		}
	}
	t.Fatal("no GET /statistics route registered")
}

func TestStatisticsHandler(t *testing.T) {
	sys := &stubSystem{stats: &Statistics{
		TotalCrosswalks: 12,
		Approved:        7,
		PendingReview:   5,
	}}
	h := testHandler(sys)

	w := httptest.NewRecorder()
	h.Statistics(w, httptest.NewRequest("GET", "/crosswalks/statistics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", w.Code)
	}

	var stats Statistics
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalCrosswalks != 12 || stats.Approved != 7 || stats.PendingReview != 5 {
		t.Errorf("stats = %+v", stats)
	}
}
