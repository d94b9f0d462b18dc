package similarity

import (
	"math"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/frameworks"
)

// Match pairs a requirement with its similarity score against a query.
type Match struct {
	Requirement frameworks.Requirement `json:"requirement"`
	Score       float64                `json:"score"`
}

// Candidate is a cross-framework requirement pair proposed for crosswalk
// review, ranked by embedding similarity.
type Candidate struct {
	Source     frameworks.Requirement `json:"source"`
	Target     frameworks.Requirement `json:"target"`
	Similarity float64                `json:"similarity"`
}

// Matrix holds pairwise similarity values for a set of requirements.
// Values[i][j] corresponds to Requirements[i] and Requirements[j].
type Matrix struct {
	Requirements []frameworks.Requirement `json:"requirements"`
	Values       [][]float64              `json:"values"`
}

// Options control similarity searches. Zero values fall back to defaults
// during normalization.
type Options struct {
	Threshold            float64
	TopK                 int
	FrameworkIDs         []uuid.UUID
	ExcludeSameFramework bool
	OnlyAssessable       bool
}

const (
	defaultThreshold = 0.7
	defaultTopK      = 10
)

func (o Options) normalize() Options {
	if o.Threshold <= 0 {
		o.Threshold = defaultThreshold
	}
	if o.TopK < 1 {
		o.TopK = defaultTopK
	}
	return o
}

// Cosine computes the cosine similarity of two vectors. Empty, mismatched,
// or zero-magnitude inputs yield 0.0 rather than an error so callers can
// treat unusable embeddings as simply dissimilar.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Euclidean computes the euclidean distance between two vectors. Empty or
// mismatched inputs yield +Inf, the distance of something unreachable.
func Euclidean(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}

	return math.Sqrt(sum)
}

// BuildMatrix computes the pairwise cosine similarity matrix for a vector
// set. The diagonal is 1.0, values below threshold are zeroed, and the
// result is symmetric.
func BuildMatrix(vectors [][]float64, threshold float64) [][]float64 {
	n := len(vectors)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1.0
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			score := Cosine(vectors[i], vectors[j])
			if score < threshold {
				score = 0.0
			}
			matrix[i][j] = score
			matrix[j][i] = score
		}
	}

	return matrix
}
