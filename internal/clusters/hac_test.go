package clusters

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/frameworks"
	"github.com/concordsec/concord/internal/similarity"
)

// tightPairMatrix has indices 0 and 1 highly similar, 2 unrelated.
func tightPairMatrix() [][]float64 {
	return [][]float64{
		{1.0, 0.95, 0.0},
		{0.95, 1.0, 0.0},
		{0.0, 0.0, 1.0},
	}
}

func TestAgglomerateMergesAboveThreshold(t *testing.T) {
	groups := agglomerate(tightPairMatrix(), 0.85, 2)

	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if len(groups[0]) != 2 {
		t.Fatalf("group size = %d, want 2", len(groups[0]))
	}

	members := map[int]bool{}
	for _, idx := range groups[0] {
		members[idx] = true
	}
	if !members[0] || !members[1] {
		t.Errorf("wrong members: %v", groups[0])
	}
}

func TestAgglomerateThresholdMonotonic(t *testing.T) {
	matrix := [][]float64{
		{1.0, 0.9, 0.8, 0.0},
		{0.9, 1.0, 0.8, 0.0},
		{0.8, 0.8, 1.0, 0.0},
		{0.0, 0.0, 0.0, 1.0},
	}

	clusteredCount := func(threshold float64) int {
		count := 0
		for _, g := range agglomerate(matrix, threshold, 2) {
			count += len(g)
		}
		return count
	}

	prev := clusteredCount(0.5)
	for _, threshold := range []float64{0.75, 0.85, 0.95} {
		current := clusteredCount(threshold)
		if current > prev {
			t.Errorf("raising threshold to %v increased clustered requirements: %d > %d",
				threshold, current, prev)
		}
		prev = current
	}
}

func TestAgglomerateMinClusterSize(t *testing.T) {
	// Nothing merges, so every singleton falls below min size 2.
	matrix := [][]float64{
		{1.0, 0.1},
		{0.1, 1.0},
	}

	if groups := agglomerate(matrix, 0.85, 2); len(groups) != 0 {
		t.Errorf("got %d groups, want 0", len(groups))
	}
}

func TestAgglomerateMembershipDisjoint(t *testing.T) {
	matrix := [][]float64{
		{1.0, 0.9, 0.0, 0.0},
		{0.9, 1.0, 0.0, 0.0},
		{0.0, 0.0, 1.0, 0.92},
		{0.0, 0.0, 0.92, 1.0},
	}

	groups := agglomerate(matrix, 0.85, 2)

	seen := map[int]bool{}
	for _, g := range groups {
		for _, idx := range g {
			if seen[idx] {
				t.Fatalf("index %d appears in more than one group", idx)
			}
			seen[idx] = true
		}
	}
}

func TestLinkageAverage(t *testing.T) {
	matrix := [][]float64{
		{1.0, 0.8, 0.4},
		{0.8, 1.0, 0.6},
		{0.4, 0.6, 1.0},
	}

	got := linkage([]int{0, 1}, []int{2}, matrix)
	want := (0.4 + 0.6) / 2

	if math.Abs(got-want) > 1e-9 {
		t.Errorf("linkage = %v, want %v", got, want)
	}
}

func TestClusterName(t *testing.T) {
	tests := []struct {
		name  string
		codes []string
		want  string
	}{
		{"single", []string{"PR.AA-01"}, "PR.AA-01"},
		{"three sorted", []string{"B", "A", "C"}, "A + B + C"},
		{"four collapses", []string{"D", "B", "A", "C"}, "A + 3 related requirements"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clusterName(tt.codes); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClusterDescription(t *testing.T) {
	csf := uuid.New()
	iso := uuid.New()

	members := []frameworks.Requirement{
		{FrameworkID: csf, Code: "GV.OC-01"},
		{FrameworkID: csf, Code: "GV.OC-02"},
		{FrameworkID: iso, Code: "A.5.1"},
	}
	codes := map[uuid.UUID]string{csf: "nist-csf-2.0", iso: "iso-27001"}

	got := clusterDescription(members, codes)
	want := "Cluster covering: nist-csf-2.0: GV.OC-01, GV.OC-02; iso-27001: A.5.1"

	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCentroid(t *testing.T) {
	members := []frameworks.Requirement{
		{Embedding: []float64{1, 0}},
		{Embedding: []float64{0, 1}},
		{Embedding: nil},
	}

	center := centroid(members)
	if len(center) != 2 || center[0] != 0.5 || center[1] != 0.5 {
		t.Errorf("centroid = %v, want [0.5 0.5]", center)
	}

	if c := centroid([]frameworks.Requirement{{Embedding: nil}}); c != nil {
		t.Errorf("centroid without embeddings = %v, want nil", c)
	}
}

func TestMemberSimilarity(t *testing.T) {
	member := frameworks.Requirement{Embedding: []float64{1, 0}}
	center := []float64{1, 0}

	if got := memberSimilarity(&member, center); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("got %v, want 1.0", got)
	}
	if got := memberSimilarity(&frameworks.Requirement{}, center); got != 0.0 {
		t.Errorf("member without embedding: got %v, want 0.0", got)
	}
	if got := memberSimilarity(&member, nil); got != 0.0 {
		t.Errorf("nil centroid: got %v, want 0.0", got)
	}

	// Sanity check against the shared cosine implementation.
	if got, want := memberSimilarity(&member, []float64{0.5, 0.5}), similarity.Cosine([]float64{1, 0}, []float64{0.5, 0.5}); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
