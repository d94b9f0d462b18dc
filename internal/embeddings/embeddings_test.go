package embeddings_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/concordsec/concord/internal/config"
	"github.com/concordsec/concord/internal/embeddings"
	"github.com/concordsec/concord/internal/frameworks"
)

func strPtr(s string) *string { return &s }

func TestPrepareRequirementText(t *testing.T) {
	tests := []struct {
		name string
		req  frameworks.Requirement
		want string
	}{
		{
			name: "full requirement",
			req: frameworks.Requirement{
				Code:        "GV.OC-01",
				Name:        "Organizational context",
				Description: strPtr("The organizational mission is understood."),
				Guidance:    strPtr("Share the mission."),
			},
			want: "GV.OC-01 | Organizational context | The organizational mission is understood. | Implementation guidance: Share the mission.",
		},
		{
			name: "name equal to code is skipped",
			req:  frameworks.Requirement{Code: "PR-1", Name: "PR-1"},
			want: "PR-1",
		},
		{
			name: "no optional fields",
			req:  frameworks.Requirement{Code: "ID.AM-01", Name: "Inventory"},
			want: "ID.AM-01 | Inventory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := embeddings.PrepareRequirementText(&tt.req); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 100)

	if got := embeddings.Truncate(long, 10); len(got) != 10 {
		t.Errorf("truncated length: got %d, want 10", len(got))
	}
	if got := embeddings.Truncate("short", 10); got != "short" {
		t.Errorf("short text changed: %q", got)
	}
	if got := embeddings.Truncate(long, 0); got != long {
		t.Errorf("zero max should not truncate")
	}
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) embeddings.Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.EmbeddingsConfig{BaseURL: server.URL, Model: "test-model"}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize config: %v", err)
	}
	cfg.BaseURL = server.URL

	return embeddings.NewProvider(cfg)
}

func TestEmbedBatchPreservesOrder(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		// Respond in reverse submission order.
		type datum struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		}
		data := make([]datum, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, datum{Index: i, Embedding: []float64{float64(i)}})
		}

		json.NewEncoder(w).Encode(map[string]any{"data": data})
	})

	vectors, err := provider.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("embed batch: %v", err)
	}

	for i, v := range vectors {
		if v[0] != float64(i) {
			t.Errorf("vector %d out of order: got %v", i, v)
		}
	}
}

func TestEmbedRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float64{0.5}}},
		})
	})

	vector, err := provider.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vector) != 1 || vector[0] != 0.5 {
		t.Errorf("unexpected vector: %v", vector)
	}
	if calls.Load() != 2 {
		t.Errorf("calls: got %d, want 2", calls.Load())
	}
}
