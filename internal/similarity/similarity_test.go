package similarity

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/frameworks"
)

func requirementsWithEmbeddings(vectors [][]float64) []frameworks.Requirement {
	reqs := make([]frameworks.Requirement, len(vectors))
	for i, v := range vectors {
		reqs[i] = frameworks.Requirement{ID: uuid.New(), Embedding: v}
	}
	return reqs
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"empty left", nil, []float64{1, 2}, 0.0},
		{"empty right", []float64{1, 2}, nil, 0.0},
		{"mismatched lengths", []float64{1, 2}, []float64{1, 2, 3}, 0.0},
		{"zero magnitude", []float64{0, 0}, []float64{1, 2}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCosineSymmetry(t *testing.T) {
	a := []float64{0.3, -0.7, 0.64, 0.11}
	b := []float64{0.5, 0.2, -0.9, 0.42}

	if got, want := Cosine(a, b), Cosine(b, a); got != want {
		t.Errorf("asymmetric: %v vs %v", got, want)
	}
}

func TestEuclidean(t *testing.T) {
	if got := Euclidean([]float64{0, 0}, []float64{3, 4}); math.Abs(got-5.0) > 1e-9 {
		t.Errorf("Euclidean = %v, want 5.0", got)
	}
	if got := Euclidean(nil, []float64{1}); !math.IsInf(got, 1) {
		t.Errorf("empty input: got %v, want +Inf", got)
	}
	if got := Euclidean([]float64{1, 2}, []float64{1}); !math.IsInf(got, 1) {
		t.Errorf("mismatched lengths: got %v, want +Inf", got)
	}
}

func TestBuildMatrix(t *testing.T) {
	vectors := [][]float64{
		{1, 0},
		{1, 0.01},
		{0, 1},
	}

	matrix := BuildMatrix(vectors, 0.5)

	for i := range matrix {
		if matrix[i][i] != 1.0 {
			t.Errorf("diagonal [%d][%d] = %v, want 1.0", i, i, matrix[i][i])
		}
	}

	// Near-parallel vectors stay above threshold.
	if matrix[0][1] < 0.5 {
		t.Errorf("matrix[0][1] = %v, want >= 0.5", matrix[0][1])
	}

	// Orthogonal pairs fall below threshold and are zeroed, not omitted.
	if matrix[0][2] != 0.0 {
		t.Errorf("matrix[0][2] = %v, want 0.0", matrix[0][2])
	}

	for i := range matrix {
		for j := range matrix[i] {
			if matrix[i][j] != matrix[j][i] {
				t.Errorf("matrix not symmetric at [%d][%d]", i, j)
			}
		}
	}
}

func TestRankOrderingAndTruncation(t *testing.T) {
	query := []float64{1, 0}
	candidates := requirementsWithEmbeddings([][]float64{
		{0.5, 0.5},
		{1, 0},
		{0.9, 0.1},
		{0, 1},
	})

	matches := rank(query, candidates, Options{Threshold: 0.5, TopK: 2}, nil)

	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Score < matches[1].Score {
		t.Errorf("matches not sorted descending: %v", matches)
	}
	if math.Abs(matches[0].Score-1.0) > 1e-9 {
		t.Errorf("best match score = %v, want 1.0", matches[0].Score)
	}
}
