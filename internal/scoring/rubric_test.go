package scoring

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/artifacts"
	"github.com/concordsec/concord/internal/interviews"
)

func TestCalculateTier(t *testing.T) {
	tests := []struct {
		name string
		ev   Evidence
		want int
	}{
		{
			name: "no evidence at all",
			ev:   Evidence{Documentation: PresenceNone, Operation: PresenceNone},
			want: TierNonExistent,
		},
		{
			name: "partial operation without policy or control",
			ev:   Evidence{Documentation: PresenceNone, Operation: PresencePartial},
			want: TierPartial,
		},
		{
			name: "partial documentation without policy or control",
			ev:   Evidence{Documentation: PresencePartial, Operation: PresenceNone},
			want: TierPartial,
		},
		{
			name: "policy only",
			ev:   Evidence{HasPolicy: true, Documentation: PresenceNone, Operation: PresenceNone},
			want: TierRiskInformed,
		},
		{
			name: "control only",
			ev:   Evidence{HasControl: true, Documentation: PresenceFull, Operation: PresenceFull},
			want: TierRiskInformed,
		},
		{
			name: "policy and control but undocumented",
			ev:   Evidence{HasPolicy: true, HasControl: true, Documentation: PresenceNone, Operation: PresenceFull},
			want: TierRiskInformed,
		},
		{
			name: "policy and control with partial operation",
			ev:   Evidence{HasPolicy: true, HasControl: true, Documentation: PresenceFull, Operation: PresencePartial},
			want: TierRiskInformed,
		},
		{
			name: "fully documented and operated",
			ev:   Evidence{HasPolicy: true, HasControl: true, Documentation: PresenceFull, Operation: PresenceFull},
			want: TierRepeatable,
		},
		{
			name: "metrics without improvement stays repeatable",
			ev: Evidence{
				HasPolicy: true, HasControl: true,
				Documentation: PresenceFull, Operation: PresenceFull,
				HasMetrics: true,
			},
			want: TierRepeatable,
		},
		{
			name: "metrics and improvement",
			ev: Evidence{
				HasPolicy: true, HasControl: true,
				Documentation: PresenceFull, Operation: PresenceFull,
				HasMetrics: true, HasImprovement: true,
			},
			want: TierAdaptive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, breakdown := CalculateTier(tt.ev)
			if got != tt.want {
				t.Errorf("CalculateTier() = %d, want %d", got, tt.want)
			}
			if breakdown.Score != tt.want {
				t.Errorf("breakdown.Score = %d, want %d", breakdown.Score, tt.want)
			}
			if breakdown.TierName != TierFor(tt.want).Name {
				t.Errorf("breakdown.TierName = %q, want %q", breakdown.TierName, TierFor(tt.want).Name)
			}
		})
	}
}

// Removing the control mapping from a fully repeatable requirement drops the
// score from 3 to 2.
func TestCalculateTierControlRemoval(t *testing.T) {
	ev := Evidence{
		HasPolicy:     true,
		HasControl:    true,
		Documentation: PresenceFull,
		Operation:     PresenceFull,
	}

	before, _ := CalculateTier(ev)
	if before != TierRepeatable {
		t.Fatalf("with both mappings: tier = %d, want %d", before, TierRepeatable)
	}

	ev.HasControl = false
	after, _ := CalculateTier(ev)
	if after != TierRiskInformed {
		t.Errorf("without control: tier = %d, want %d", after, TierRiskInformed)
	}
}

func answered(questionType, questionText, value string) interviews.AnsweredQuestion {
	var a interviews.AnsweredQuestion
	a.Question.QuestionType = questionType
	a.Question.QuestionText = questionText
	a.Response.ResponseValue = &value
	return a
}

func TestInterpretResponses(t *testing.T) {
	tests := []struct {
		name    string
		answers []interviews.AnsweredQuestion
		want    Evidence
	}{
		{
			name:    "no answers",
			answers: nil,
			want:    Evidence{Documentation: PresenceNone, Operation: PresenceNone},
		},
		{
			name: "policy existence question sets only policy",
			answers: []interviews.AnsweredQuestion{
				answered(interviews.QuestionExistence, "Do you have a written policy for access control?", "yes"),
			},
			want: Evidence{HasPolicy: true, Documentation: PresenceNone, Operation: PresenceNone},
		},
		{
			name: "negative control existence question",
			answers: []interviews.AnsweredQuestion{
				answered(interviews.QuestionExistence, "Is a technical control deployed?", "no"),
			},
			want: Evidence{Documentation: PresenceNone, Operation: PresenceNone},
		},
		{
			name: "generic existence question sets both",
			answers: []interviews.AnsweredQuestion{
				answered(interviews.QuestionExistence, "Does your organization address this requirement?", "yes"),
			},
			want: Evidence{HasPolicy: true, HasControl: true, Documentation: PresenceNone, Operation: PresenceNone},
		},
		{
			name: "partial documentation",
			answers: []interviews.AnsweredQuestion{
				answered(interviews.QuestionDocumentation, "Is the process documented?", "partial"),
			},
			want: Evidence{Documentation: PresencePartial, Operation: PresenceNone},
		},
		{
			name: "strong documentation and operation",
			answers: []interviews.AnsweredQuestion{
				answered(interviews.QuestionDocumentation, "Is the process documented?", "yes"),
				answered(interviews.QuestionOperation, "Is the process operating?", "true"),
			},
			want: Evidence{Documentation: PresenceFull, Operation: PresenceFull},
		},
		{
			name: "metrics and improvement require strong positives",
			answers: []interviews.AnsweredQuestion{
				answered(interviews.QuestionMetrics, "Do you measure effectiveness?", "partial"),
				answered(interviews.QuestionImprovement, "Do you run improvement cycles?", "yes"),
			},
			want: Evidence{Documentation: PresenceNone, Operation: PresenceNone, HasImprovement: true},
		},
		{
			name: "design answers are ignored",
			answers: []interviews.AnsweredQuestion{
				answered(interviews.QuestionDesign, "How is the control designed?", "yes"),
			},
			want: Evidence{Documentation: PresenceNone, Operation: PresenceNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InterpretResponses(tt.answers)
			if got != tt.want {
				t.Errorf("InterpretResponses() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInterpretResponsesNilValue(t *testing.T) {
	var a interviews.AnsweredQuestion
	a.Question.QuestionType = interviews.QuestionExistence
	a.Question.QuestionText = "Do you have a policy?"

	got := InterpretResponses([]interviews.AnsweredQuestion{a})
	if got.HasPolicy {
		t.Error("nil response value should not count as positive")
	}
}

func TestBuildLeafExplanation(t *testing.T) {
	confidence := 0.92
	policy := []artifacts.MappingDetail{{
		Mapping: artifacts.Mapping{
			ArtifactID:      uuid.New(),
			ConfidenceScore: &confidence,
		},
		ArtifactKind: artifacts.KindPolicy,
		ArtifactName: "Access Control Policy",
	}}

	quote := strings.Repeat("x", 300)
	a := answered(interviews.QuestionOperation, "Is the process operating?", "yes")
	a.Response.ResponseText = &quote

	ev := Evidence{HasPolicy: true, Documentation: PresenceNone, Operation: PresenceFull}
	tier, breakdown := CalculateTier(ev)

	exp := buildLeafExplanation(tier, breakdown, policy, nil, []interviews.AnsweredQuestion{a})

	if len(exp.Components) != 3 {
		t.Fatalf("components = %d, want 3", len(exp.Components))
	}
	if exp.Components[0].Type != "policy" || len(exp.Components[0].Items) != 1 {
		t.Errorf("policy component = %+v", exp.Components[0])
	}
	if exp.Components[1].Type != "control" || len(exp.Components[1].Items) != 0 {
		t.Errorf("control component = %+v", exp.Components[1])
	}
	if !strings.Contains(exp.Components[2].Description, "1/1 positive") {
		t.Errorf("interview description = %q", exp.Components[2].Description)
	}

	if !strings.Contains(exp.Rationale, "Policy exists but no control implementation found.") {
		t.Errorf("rationale = %q", exp.Rationale)
	}
	if !strings.Contains(exp.Rationale, "Tier: Risk-Informed") {
		t.Errorf("rationale missing tier: %q", exp.Rationale)
	}

	if got := exp.ConfidenceFactors["policy_coverage"]; got != 1.0 {
		t.Errorf("policy_coverage = %v, want 1.0", got)
	}
	if got := exp.ConfidenceFactors["control_coverage"]; got != 0.0 {
		t.Errorf("control_coverage = %v, want 0.0", got)
	}
	if got := exp.ConfidenceFactors["interview_coverage"]; got != 1.0/3.0 {
		t.Errorf("interview_coverage = %v, want 1/3", got)
	}

	for _, c := range exp.EvidenceCitations {
		if c.Type == "interview" && len(c.Quote) != quoteLimit {
			t.Errorf("quote length = %d, want %d", len(c.Quote), quoteLimit)
		}
	}
}

func TestInterviewCoverageCapped(t *testing.T) {
	answers := []interviews.AnsweredQuestion{
		answered(interviews.QuestionExistence, "a", "yes"),
		answered(interviews.QuestionExistence, "b", "yes"),
		answered(interviews.QuestionExistence, "c", "yes"),
		answered(interviews.QuestionExistence, "d", "yes"),
	}

	tier, breakdown := CalculateTier(InterpretResponses(answers))
	exp := buildLeafExplanation(tier, breakdown, nil, nil, answers)

	if got := exp.ConfidenceFactors["interview_coverage"]; got != 1.0 {
		t.Errorf("interview_coverage = %v, want capped at 1.0", got)
	}
}

func TestBuildRollupExplanation(t *testing.T) {
	children := []NodeScore{
		{Code: "GV.OC-01", Score: 1, TierName: "Partial"},
		{Code: "GV.OC-02", Score: 3, TierName: "Repeatable"},
	}

	exp := buildRollupExplanation(children, 3)

	if len(exp.Components) != 2 {
		t.Fatalf("components = %d, want 2", len(exp.Components))
	}
	if !strings.Contains(exp.Rationale, "average of 2 child scores") {
		t.Errorf("rationale = %q", exp.Rationale)
	}
	if !strings.Contains(exp.Rationale, "Areas needing attention: GV.OC-01") {
		t.Errorf("rationale missing low areas: %q", exp.Rationale)
	}
	if !strings.Contains(exp.Rationale, "Strong areas: GV.OC-02") {
		t.Errorf("rationale missing strong areas: %q", exp.Rationale)
	}
	if got := exp.ConfidenceFactors["child_coverage"]; got != 2.0/3.0 {
		t.Errorf("child_coverage = %v, want 2/3", got)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{7.0 / 3.0, 2.33},
		{2.5, 2.5},
		{0, 0},
	}

	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
