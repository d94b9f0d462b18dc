package deviations

import (
	"testing"

	"github.com/concordsec/concord/internal/config"
	"github.com/concordsec/concord/internal/frameworks"
)

func riskConfig(t *testing.T) config.RiskConfig {
	t.Helper()

	cfg := config.RiskConfig{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize risk config: %v", err)
	}
	return cfg
}

func TestImpact(t *testing.T) {
	cfg := riskConfig(t)

	tests := []struct {
		name     string
		rootCode string
		base     int
		want     int
	}{
		{"governance weighted up", "GV", 3, 4},
		{"identify unweighted", "ID", 4, 4},
		{"protect rounds down", "PR", 3, 3},
		{"protect rounds up", "PR", 4, 4},
		{"unknown function defaults to 1.0", "XX", 3, 3},
		{"clamped at 5", "GV", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Impact(cfg, tt.rootCode, tt.base); got != tt.want {
				t.Errorf("Impact(%s, %d) = %d, want %d", tt.rootCode, tt.base, got, tt.want)
			}
		})
	}
}

func TestRiskScore(t *testing.T) {
	tests := []struct {
		impact     int
		likelihood int
		wantRisk   int
		wantSev    string
	}{
		{4, 4, 16, SeverityCritical},
		{5, 3, 15, SeverityCritical},
		{4, 3, 12, SeverityHigh},
		{5, 2, 10, SeverityHigh},
		{3, 3, 9, SeverityMedium},
		{5, 1, 5, SeverityMedium},
		{2, 2, 4, SeverityLow},
		{1, 1, 1, SeverityLow},
		{9, 9, 25, SeverityCritical}, // clamped to 5x5
		{0, 0, 1, SeverityLow},       // clamped to 1x1
	}

	for _, tt := range tests {
		risk, severity := RiskScore(tt.impact, tt.likelihood)
		if risk != tt.wantRisk || severity != tt.wantSev {
			t.Errorf("RiskScore(%d, %d) = (%d, %s), want (%d, %s)",
				tt.impact, tt.likelihood, risk, severity, tt.wantRisk, tt.wantSev)
		}
	}
}

func testRequirement(code string) frameworks.Requirement {
	desc := "description of " + code
	return frameworks.Requirement{Code: code, Name: "req " + code, Description: &desc}
}

func findingTypes(findings []Finding) []string {
	types := make([]string, 0, len(findings))
	for _, f := range findings {
		types = append(types, f.DeviationType)
	}
	return types
}

func TestEvaluateRules(t *testing.T) {
	req := testRequirement("ID.AM-01")

	tests := []struct {
		name       string
		hasPolicy  bool
		hasControl bool
		score      float64
		want       []string
	}{
		{
			name: "no coverage",
			want: []string{TypeDocumentationGap},
		},
		{
			name:       "control without policy",
			hasControl: true,
			score:      2,
			want:       []string{TypeMissingPolicy},
		},
		{
			name:      "policy without control",
			hasPolicy: true,
			score:     2,
			want:      []string{TypeMissingControl},
		},
		{
			name:       "both present with healthy score",
			hasPolicy:  true,
			hasControl: true,
			score:      3,
			want:       nil,
		},
		{
			name:       "both present with low score fires both inadequate rules",
			hasPolicy:  true,
			hasControl: true,
			score:      1,
			want:       []string{TypeInadequatePolicy, TypeInadequateControl},
		},
		{
			name:      "policy only with low score",
			hasPolicy: true,
			score:     0,
			want:      []string{TypeMissingControl, TypeInadequatePolicy},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := evaluateRules(req, tt.hasPolicy, tt.hasControl, 1, 1, tt.score)
			got := findingTypes(findings)

			if len(got) != len(tt.want) {
				t.Fatalf("evaluateRules() types = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("evaluateRules() types = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

// A requirement with an approved policy mapping but no control yields a
// missing_control deviation with impact 4, likelihood 4, risk 16, critical
// under the default multipliers.
func TestMissingControlWorkedExample(t *testing.T) {
	cfg := riskConfig(t)
	req := testRequirement("ID.AM-01")

	findings := evaluateRules(req, true, false, 1, 0, 2)
	if len(findings) != 1 || findings[0].DeviationType != TypeMissingControl {
		t.Fatalf("findings = %+v, want one missing_control", findings)
	}

	f := findings[0]
	impact := Impact(cfg, req.RootCode(), f.BaseImpact)
	risk, severity := RiskScore(impact, f.Likelihood)

	if impact != 4 {
		t.Errorf("impact = %d, want 4", impact)
	}
	if f.Likelihood != 4 {
		t.Errorf("likelihood = %d, want 4", f.Likelihood)
	}
	if risk != 16 {
		t.Errorf("risk = %d, want 16", risk)
	}
	if severity != SeverityCritical {
		t.Errorf("severity = %s, want %s", severity, SeverityCritical)
	}

	if !f.Evidence.HasPolicy || f.Evidence.HasControl {
		t.Errorf("evidence snapshot = %+v", f.Evidence)
	}
	if f.Evidence.PolicyCount != 1 {
		t.Errorf("policy count = %d, want 1", f.Evidence.PolicyCount)
	}
}

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{StatusOpen, StatusInProgress, true},
		{StatusOpen, StatusAccepted, true},
		{StatusOpen, StatusFalsePositive, true},
		{StatusOpen, StatusRemediated, false},
		{StatusInProgress, StatusRemediated, true},
		{StatusInProgress, StatusOpen, true},
		{StatusRemediated, StatusOpen, false},
		{StatusAccepted, StatusInProgress, false},
		{StatusFalsePositive, StatusOpen, false},
	}

	for _, tt := range tests {
		if got := ValidTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("ValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
