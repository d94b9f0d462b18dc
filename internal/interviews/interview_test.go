package interviews

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/concordsec/concord/pkg/pagination"
)

func TestValidQuestionType(t *testing.T) {
	for _, qt := range QuestionTypes {
		if !ValidQuestionType(qt) {
			t.Errorf("ValidQuestionType(%q) = false, want true", qt)
		}
	}

	for _, qt := range []string{"", "unknown", "EXISTENCE"} {
		if ValidQuestionType(qt) {
			t.Errorf("ValidQuestionType(%q) = true, want false", qt)
		}
	}
}

func TestValidSessionStatus(t *testing.T) {
	for _, s := range SessionStatuses {
		if !ValidSessionStatus(s) {
			t.Errorf("ValidSessionStatus(%q) = false, want true", s)
		}
	}

	if ValidSessionStatus("done") {
		t.Error("ValidSessionStatus(\"done\") = true, want false")
	}
}

func TestCreateQuestionValidation(t *testing.T) {
	r := &repo{pagination: pagination.Config{}}
	reqID := uuid.New()
	clusterID := uuid.New()

	tests := []struct {
		name string
		cmd  QuestionCommand
		want error
	}{
		{
			name: "no target",
			cmd:  QuestionCommand{QuestionText: "text", QuestionType: QuestionExistence},
			want: ErrQuestionTarget,
		},
		{
			name: "both targets",
			cmd: QuestionCommand{
				RequirementID: &reqID,
				ClusterID:     &clusterID,
				QuestionText:  "text",
				QuestionType:  QuestionExistence,
			},
			want: ErrQuestionTarget,
		},
		{
			name: "missing text",
			cmd:  QuestionCommand{RequirementID: &reqID, QuestionType: QuestionExistence},
			want: ErrTextRequired,
		},
		{
			name: "invalid type",
			cmd: QuestionCommand{
				RequirementID: &reqID,
				QuestionText:  "text",
				QuestionType:  "trivia",
			},
			want: ErrInvalidQuestionType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.CreateQuestion(context.Background(), tt.cmd)
			if !errors.Is(err, tt.want) {
				t.Errorf("CreateQuestion() error = %v, want %v", err, tt.want)
			}
		})
	}
}
