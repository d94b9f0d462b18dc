package crosswalks

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestApproveIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	r := &repo{db: db, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	id, approver := uuid.New(), uuid.New()
	now := time.Now()
	crosswalkRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{
			"id", "source_requirement_id", "target_requirement_id", "mapping_type",
			"confidence_score", "mapping_source", "reasoning", "is_approved",
			"approved_by_id", "approved_at", "created_at", "updated_at",
		}).AddRow(
			id.String(), uuid.NewString(), uuid.NewString(), MappingEquivalent,
			0.95, SourceAIGenerated, nil, true,
			approver.String(), now, now, now,
		)
	}

	// Approving twice restamps the approver without erroring.
	pattern := `(?s)UPDATE requirement_crosswalks.*SET is_approved = TRUE.*RETURNING`
	mock.ExpectQuery(pattern).WillReturnRows(crosswalkRow())
	mock.ExpectQuery(pattern).WillReturnRows(crosswalkRow())

	first, err := r.Approve(context.Background(), id, approver)
	if err != nil {
		t.Fatalf("first approve: %v", err)
	}
	if !first.IsApproved {
		t.Error("first approve did not mark the crosswalk approved")
	}

	second, err := r.Approve(context.Background(), id, approver)
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}
	if !second.IsApproved || second.ApprovedByID == nil || *second.ApprovedByID != approver {
		t.Errorf("second approve = %+v, expected restamped approval", second)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
