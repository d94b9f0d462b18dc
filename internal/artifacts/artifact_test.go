package artifacts

import (
	"context"
	"errors"
	"testing"

	"github.com/concordsec/concord/pkg/pagination"
)

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name     string
		cmd      CreateCommand
		expected error
	}{
		{
			"unknown kind",
			CreateCommand{Kind: "runbook", Name: "Incident Runbook"},
			ErrInvalidKind,
		},
		{
			"empty kind",
			CreateCommand{Name: "Access Policy"},
			ErrInvalidKind,
		},
		{
			"missing name",
			CreateCommand{Kind: KindPolicy},
			ErrNameRequired,
		},
	}

	r := &repo{pagination: pagination.Config{}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Create(context.Background(), tt.cmd)
			if !errors.Is(err, tt.expected) {
				t.Errorf("err = %v, expected %v", err, tt.expected)
			}
		})
	}
}
