package frameworks

import (
	"errors"
	"testing"
)

func defWith(reqs ...RequirementDefinition) *Definition {
	return &Definition{
		Code:         "test",
		Name:         "Test Framework",
		Version:      "1.0",
		Requirements: reqs,
	}
}

func TestResolveDefinitionLevels(t *testing.T) {
	def := defWith(
		RequirementDefinition{Code: "GV.OC-01", ParentCode: "GV.OC", IsAssessable: true},
		RequirementDefinition{Code: "GV", Name: "Govern"},
		RequirementDefinition{Code: "GV.OC", ParentCode: "GV"},
	)

	nodes, levels, err := resolveDefinition(def)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if levels != 3 {
		t.Errorf("hierarchy levels: got %d, want 3", levels)
	}

	// Parents must precede children.
	position := map[string]int{}
	for i, n := range nodes {
		position[n.Code] = i
	}
	if position["GV"] > position["GV.OC"] || position["GV.OC"] > position["GV.OC-01"] {
		t.Errorf("nodes not ordered parents-first: %v", position)
	}

	want := map[string]int{"GV": 0, "GV.OC": 1, "GV.OC-01": 2}
	for _, n := range nodes {
		if n.Level != want[n.Code] {
			t.Errorf("%s level: got %d, want %d", n.Code, n.Level, want[n.Code])
		}
	}
}

func TestResolveDefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		def  *Definition
	}{
		{
			name: "duplicate code",
			def: defWith(
				RequirementDefinition{Code: "A"},
				RequirementDefinition{Code: "A"},
			),
		},
		{
			name: "unknown parent",
			def: defWith(
				RequirementDefinition{Code: "A", ParentCode: "missing"},
			),
		},
		{
			name: "parent cycle",
			def: defWith(
				RequirementDefinition{Code: "A", ParentCode: "B"},
				RequirementDefinition{Code: "B", ParentCode: "A"},
			),
		},
		{
			name: "empty requirements",
			def:  defWith(),
		},
		{
			name: "missing metadata",
			def: &Definition{
				Requirements: []RequirementDefinition{{Code: "A"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := resolveDefinition(tt.def); !errors.Is(err, ErrInvalidDefinition) {
				t.Errorf("got %v, want ErrInvalidDefinition", err)
			}
		})
	}
}

func TestRequirementRootCode(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"GV.OC-01", "GV"},
		{"PR-1", "PR"},
		{"ID", "ID"},
		{"A.5.1", "A"},
	}

	for _, tt := range tests {
		r := Requirement{Code: tt.code}
		if got := r.RootCode(); got != tt.want {
			t.Errorf("RootCode(%s): got %s, want %s", tt.code, got, tt.want)
		}
	}
}
