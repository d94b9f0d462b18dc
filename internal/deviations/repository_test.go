package deviations

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/frameworks"
)

var deviationColumns = []string{
	"id", "assessment_id", "requirement_id", "deviation_type", "severity",
	"status", "title", "description", "evidence", "impact_score",
	"likelihood_score", "risk_score", "recommended_remediation",
	"remediation_notes", "resolved_at", "detected_at", "updated_at",
}

func TestUpsertUpdatesActiveRowBeforeInserting(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	r := &repo{db: db, risk: riskConfig(t)}

	req := frameworks.Requirement{ID: uuid.New(), Code: "ID.AM-01", Name: "Asset inventory"}
	finding := Finding{
		DeviationType: TypeMissingControl,
		BaseImpact:    missingControlBaseImpact,
		Likelihood:    missingControlLikelihood,
		Title:         "Missing control for ID.AM-01",
		Description:   "Policy exists for ID.AM-01 but no control is mapped.",
		Remediation:   "Implement and map a control.",
		Evidence:      EvidenceSnapshot{HasPolicy: true, PolicyCount: 1},
	}
	hit := detected{requirement: req, finding: finding}

	assessmentID := uuid.New()
	rowID := uuid.NewString()
	now := time.Now()
	deviationRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(deviationColumns).AddRow(
			rowID, assessmentID.String(), req.ID.String(), TypeMissingControl,
			SeverityCritical, StatusOpen, finding.Title, finding.Description,
			[]byte(`{"has_policy":true,"policy_count":1}`), 4, 4, 16,
			finding.Remediation, nil, nil, now, now,
		)
	}

	// The refresh only matches rows that are still active; remediated
	// deviations regress into a fresh open row instead.
	updatePattern := `(?s)UPDATE deviations.*status <> 'remediated'.*RETURNING`

	mock.ExpectBegin()
	// First detection finds no active row and inserts an open one.
	mock.ExpectQuery(updatePattern).WillReturnRows(sqlmock.NewRows(deviationColumns))
	mock.ExpectQuery(`(?s)INSERT INTO deviations.*RETURNING`).WillReturnRows(deviationRow())
	// Second detection refreshes the active row in place, no insert.
	mock.ExpectQuery(updatePattern).WillReturnRows(deviationRow())
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	first, err := r.upsert(context.Background(), tx, assessmentID, hit)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.Status != StatusOpen {
		t.Errorf("status = %q, expected open", first.Status)
	}

	second, err := r.upsert(context.Background(), tx, assessmentID, hit)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second upsert produced a new row: %v vs %v", second.ID, first.ID)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
