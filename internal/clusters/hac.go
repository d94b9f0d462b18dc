package clusters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/frameworks"
	"github.com/concordsec/concord/internal/similarity"
)

// agglomerate runs hierarchical agglomerative clustering with average
// linkage over a precomputed similarity matrix. Each round merges the pair
// of active clusters with the highest average cross-member similarity,
// stopping when the best pair falls below threshold or one cluster remains.
// Groups smaller than minSize are discarded; their members stay unclustered.
func agglomerate(matrix [][]float64, threshold float64, minSize int) [][]int {
	n := len(matrix)
	if n == 0 {
		return nil
	}

	groups := make([][]int, n)
	active := make([]int, n)
	for i := range groups {
		groups[i] = []int{i}
		active[i] = i
	}

	for len(active) > 1 {
		bestSim := -1.0
		bestI, bestJ := -1, -1

		for i := 0; i < len(active); i++ {
			for j := i + 1; j < len(active); j++ {
				sim := linkage(groups[active[i]], groups[active[j]], matrix)
				if sim > bestSim {
					bestSim = sim
					bestI, bestJ = i, j
				}
			}
		}

		if bestSim < threshold || bestI < 0 {
			break
		}

		ci, cj := active[bestI], active[bestJ]
		groups[ci] = append(groups[ci], groups[cj]...)
		active = append(active[:bestJ], active[bestJ+1:]...)
	}

	var result [][]int
	for _, idx := range active {
		if len(groups[idx]) >= minSize {
			result = append(result, groups[idx])
		}
	}
	return result
}

// linkage is the average pairwise similarity between two groups.
func linkage(a, b []int, matrix [][]float64) float64 {
	var total float64
	for _, i := range a {
		for _, j := range b {
			total += matrix[i][j]
		}
	}

	count := len(a) * len(b)
	if count == 0 {
		return 0.0
	}
	return total / float64(count)
}

// clusterName derives a readable name from sorted member codes.
func clusterName(codes []string) string {
	sorted := make([]string, len(codes))
	copy(sorted, codes)
	sort.Strings(sorted)

	if len(sorted) <= 3 {
		return strings.Join(sorted, " + ")
	}
	return fmt.Sprintf("%s + %d related requirements", sorted[0], len(sorted)-1)
}

// clusterDescription lists member codes grouped by framework code.
func clusterDescription(members []frameworks.Requirement, frameworkCodes map[uuid.UUID]string) string {
	grouped := make(map[string][]string)
	var order []string

	for _, m := range members {
		code, ok := frameworkCodes[m.FrameworkID]
		if !ok {
			code = "Unknown"
		}
		if _, seen := grouped[code]; !seen {
			order = append(order, code)
		}
		grouped[code] = append(grouped[code], m.Code)
	}

	parts := make([]string, 0, len(order))
	for _, code := range order {
		parts = append(parts, fmt.Sprintf("%s: %s", code, strings.Join(grouped[code], ", ")))
	}
	return "Cluster covering: " + strings.Join(parts, "; ")
}

// centroid is the per-dimension mean of member embeddings, skipping members
// without one. Returns nil when no member has an embedding.
func centroid(members []frameworks.Requirement) []float64 {
	var vectors [][]float64
	for i := range members {
		if len(members[i].Embedding) > 0 {
			vectors = append(vectors, members[i].Embedding)
		}
	}

	if len(vectors) == 0 {
		return nil
	}

	n := float64(len(vectors))
	result := make([]float64, len(vectors[0]))
	for _, v := range vectors {
		for i, val := range v {
			result[i] += val / n
		}
	}
	return result
}

// memberSimilarity is the cosine similarity of a member to the centroid,
// 0.0 when either vector is absent.
func memberSimilarity(member *frameworks.Requirement, center []float64) float64 {
	if len(member.Embedding) == 0 || len(center) == 0 {
		return 0.0
	}
	return similarity.Cosine(member.Embedding, center)
}
