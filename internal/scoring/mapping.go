package scoring

import (
	"encoding/json"
	"time"

	"github.com/concordsec/concord/pkg/repository"
)

func scanScore(s repository.Scanner) (Score, error) {
	var (
		sc      Score
		payload []byte
	)

	err := s.Scan(
		&sc.ID,
		&sc.AssessmentID,
		&sc.RequirementID,
		&sc.Level,
		&sc.Score,
		&payload,
		&sc.CalculatedAt,
		&sc.CalculatedBy,
		&sc.Version,
	)
	if err != nil {
		return sc, err
	}

	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &sc.Explanation); err != nil {
			return sc, err
		}
	}

	return sc, nil
}

type summaryRow struct {
	NodeScore
	CalculatedAt time.Time
}

func scanSummaryRow(s repository.Scanner) (summaryRow, error) {
	var row summaryRow

	err := s.Scan(
		&row.RequirementID,
		&row.Code,
		&row.Name,
		&row.Level,
		&row.Score,
		&row.CalculatedAt,
		&row.Version,
	)

	return row, err
}
