package clusters

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/similarity"
)

func TestValidType(t *testing.T) {
	tests := []struct {
		clusterType string
		valid       bool
	}{
		{TypeSemantic, true},
		{TypeTopic, true},
		{TypeInterview, true},
		{"", false},
		{"Semantic", false},
		{"vibes", false},
	}

	for _, tt := range tests {
		if got := ValidType(tt.clusterType); got != tt.valid {
			t.Errorf("ValidType(%q) = %v, expected %v", tt.clusterType, got, tt.valid)
		}
	}
}

func TestGenerateRejectsUnknownType(t *testing.T) {
	// Validation runs before any similarity or database access.
	r := &repo{}

	_, err := r.Generate(context.Background(), GenerateCommand{ClusterType: "vibes"})
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("err = %v, expected ErrInvalidType", err)
	}
}

func TestClusterForRejectsUnknownType(t *testing.T) {
	r := &repo{}

	_, err := r.ClusterFor(context.Background(), uuid.New(), "vibes")
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("err = %v, expected ErrInvalidType", err)
	}
}

func TestDeleteRejectsUnknownType(t *testing.T) {
	r := &repo{}

	_, err := r.Delete(context.Background(), "vibes")
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("err = %v, expected ErrInvalidType", err)
	}
}

type stubSimilarity struct {
	similarity.System
	matrix *similarity.Matrix
}

func (s *stubSimilarity) BuildMatrix(
	ctx context.Context,
	frameworkIDs []uuid.UUID,
	onlyAssessable bool,
	threshold float64,
) (*similarity.Matrix, error) {
	return s.matrix, nil
}

func TestGenerateClearsStaleClustersOfType(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	r := &repo{
		db:     db,
		sim:    &stubSimilarity{matrix: &similarity.Matrix{}},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	// Even a pass that yields no groups is a full rebuild: stale clusters
	// of the targeted type must not survive it.
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM requirement_clusters WHERE cluster_type = \$1`).
		WithArgs(TypeSemantic).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	created, err := r.Generate(context.Background(), GenerateCommand{ClusterType: TypeSemantic})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("created %d clusters, expected none", len(created))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestEstimateReductionScopesCountsByFramework(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	r := &repo{db: db}
	fid := uuid.New()
	countRow := func(n int) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"count"}).AddRow(n)
	}

	// All three counts carry the framework filter, so a scoped estimate
	// never reports more questions than requirements.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM framework_requirements `+
		`WHERE is_assessable = TRUE AND framework_id IN \(\$1\)`).
		WithArgs(fid).
		WillReturnRows(countRow(10))
	mock.ExpectQuery(`(?s)SELECT COUNT\(DISTINCT c\.id\).*`+
		`JOIN framework_requirements r ON r\.id = m\.requirement_id.*`+
		`AND r\.framework_id IN \(\$1\)`).
		WithArgs(fid).
		WillReturnRows(countRow(2))
	mock.ExpectQuery(`(?s)SELECT COUNT\(DISTINCT m\.requirement_id\).*`+
		`AND r\.framework_id IN \(\$1\)`).
		WithArgs(fid).
		WillReturnRows(countRow(6))

	estimate, err := r.EstimateReduction(context.Background(), []uuid.UUID{fid})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}

	if estimate.QuestionsWithClustering > estimate.TotalRequirements {
		t.Errorf("questions with clustering %d exceeds requirement count %d",
			estimate.QuestionsWithClustering, estimate.TotalRequirements)
	}
	if estimate.QuestionsWithClustering != 6 {
		t.Errorf("questions with clustering = %d, expected 6", estimate.QuestionsWithClustering)
	}
	if estimate.ReductionPercentage != 40.0 {
		t.Errorf("reduction = %v, expected 40.0", estimate.ReductionPercentage)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
