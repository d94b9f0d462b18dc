package crosswalks

import (
	"context"
	"strings"
	"testing"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/frameworks"
	"github.com/concordsec/concord/pkg/backoff"
)

func strPtr(s string) *string { return &s }

func TestGenerateCommandDefaults(t *testing.T) {
	var cmd GenerateCommand
	cmd.normalize()

	if cmd.SimilarityThreshold != 0.75 {
		t.Errorf("threshold = %v, want 0.75", cmd.SimilarityThreshold)
	}
	if cmd.TopKPerRequirement != 5 {
		t.Errorf("top_k = %d, want 5", cmd.TopKPerRequirement)
	}
	if cmd.AutoApproveThreshold != 0.9 {
		t.Errorf("auto_approve = %v, want 0.9", cmd.AutoApproveThreshold)
	}
	if !cmd.validateEnabled() {
		t.Error("classification should default to enabled")
	}

	disabled := false
	cmd.Validate = &disabled
	if cmd.validateEnabled() {
		t.Error("explicit false should disable classification")
	}
}

func TestNormalizeVerdict(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"equivalent kept", MappingEquivalent, MappingEquivalent},
		{"partial kept", MappingPartial, MappingPartial},
		{"none kept", verdictNone, verdictNone},
		{"garbage downgraded", "somewhat-similar", MappingRelated},
		{"empty downgraded", "", MappingRelated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classification{MappingType: tt.in}
			normalizeVerdict(&c)
			if c.MappingType != tt.want {
				t.Errorf("got %q, want %q", c.MappingType, tt.want)
			}
		})
	}
}

func TestClassificationPrompt(t *testing.T) {
	source := &frameworks.Requirement{
		Code:        "GV.OC-01",
		Name:        "Organizational context",
		Description: strPtr("Mission is understood."),
		Guidance:    strPtr("Share the mission."),
	}
	target := &frameworks.Requirement{
		Code: "A.5.1",
		Name: "Policies for information security",
	}

	prompt := classificationPrompt(source, target)

	for _, fragment := range []string{
		"SOURCE REQUIREMENT (GV.OC-01):",
		"TARGET REQUIREMENT (A.5.1):",
		"Guidance: Share the mission.",
		"Description: N/A",
		`"mapping_type": "equivalent" | "partial" | "related" | "none"`,
	} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q", fragment)
		}
	}

	// The target has no guidance, so no guidance line should follow its header.
	targetSection := prompt[strings.Index(prompt, "TARGET REQUIREMENT"):]
	if strings.Contains(strings.Split(targetSection, "Classify")[0], "Guidance:") {
		t.Error("target section should not contain a guidance line")
	}
}

func TestClassifyUnknownProviderExhaustsRetries(t *testing.T) {
	o := &agentOracle{
		cfg: &gaconfig.AgentConfig{
			Name: "crosswalk-oracle",
			Client: &gaconfig.ClientConfig{
				Provider: &gaconfig.ProviderConfig{Name: "nonexistent"},
			},
		},
		retry: backoff.Policy{Attempts: 2, Wait: time.Millisecond},
	}

	source := &frameworks.Requirement{Code: "GV.OC-01", Name: "Organizational context"}
	target := &frameworks.Requirement{Code: "A.5.1", Name: "Policies for information security"}

	_, err := o.Classify(context.Background(), source, target)
	if err == nil {
		t.Fatal("expected agent creation failure")
	}
	if !strings.Contains(err.Error(), "create agent") {
		t.Errorf("err = %v, expected create agent wrap", err)
	}
}

func TestWalkEquivalentsDirect(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	graph := map[uuid.UUID][]uuid.UUID{
		a: {b},
		b: {a, c},
		c: {b},
	}
	neighbors := func(id uuid.UUID) ([]uuid.UUID, error) {
		return graph[id], nil
	}

	ids, err := walkEquivalents(a, false, neighbors)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	if len(ids) != 1 || ids[0] != b {
		t.Errorf("direct mode: got %v, want [%v]", ids, b)
	}
}

func TestWalkEquivalentsTransitiveCycle(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	// A–B–C–A cycle; traversal from A must terminate and return {B, C}.
	graph := map[uuid.UUID][]uuid.UUID{
		a: {b, c},
		b: {a, c},
		c: {a, b},
	}

	var calls int
	neighbors := func(id uuid.UUID) ([]uuid.UUID, error) {
		calls++
		return graph[id], nil
	}

	ids, err := walkEquivalents(a, true, neighbors)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	found := map[uuid.UUID]bool{}
	for _, id := range ids {
		found[id] = true
	}

	if len(ids) != 2 || !found[b] || !found[c] {
		t.Errorf("got %v, want {%v, %v}", ids, b, c)
	}
	if found[a] {
		t.Error("source must not appear in its own equivalents")
	}
	if calls > len(graph)+1 {
		t.Errorf("traversal revisited nodes: %d neighbor calls", calls)
	}
}
