package scoring

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestUpsertBumpsVersionOnRecompute(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	// Recomputing a score for the same (assessment, requirement) pair must
	// hit the conflict branch and increment the stored version.
	upsertPattern := `(?s)INSERT INTO scores.*` +
		`ON CONFLICT \(assessment_id, requirement_id\).*` +
		`version = scores\.version \+ 1`

	mock.ExpectBegin()
	mock.ExpectExec(upsertPattern).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(upsertPattern).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	e := &engine{db: db}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	assessmentID := uuid.New()
	score := pendingScore{RequirementID: uuid.New(), Level: 2, Score: 3}

	for i := 0; i < 2; i++ {
		if err := e.upsert(context.Background(), tx, assessmentID, score); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
