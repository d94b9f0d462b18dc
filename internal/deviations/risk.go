package deviations

import (
	"fmt"
	"math"

	"github.com/concordsec/concord/internal/config"
	"github.com/concordsec/concord/internal/frameworks"
)

// Per-rule base impact and likelihood numbers. Hand-tuned; tests pin them as
// the contract.
const (
	missingPolicyBaseImpact  = 3
	missingPolicyLikelihood  = 4
	missingControlBaseImpact = 4
	missingControlLikelihood = 4

	inadequateBaseImpactPolicy  = 3
	inadequateBaseImpactControl = 4
	inadequateLikelihood        = 3

	noCoverageBaseImpact = 4
	noCoverageLikelihood = 5

	lowScoreCeiling = 1.0
)

func clampScale(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

// Impact adjusts a rule's base impact by the criticality multiplier of the
// requirement's root function, clamped to the 1-5 scale.
func Impact(cfg config.RiskConfig, rootCode string, base int) int {
	multiplier, ok := cfg.FunctionCriticality[rootCode]
	if !ok {
		multiplier = 1.0
	}
	return clampScale(int(math.Round(float64(base) * multiplier)))
}

// RiskScore multiplies clamped impact and likelihood and buckets the product
// into a severity.
func RiskScore(impact, likelihood int) (int, string) {
	risk := clampScale(impact) * clampScale(likelihood)

	switch {
	case risk >= 15:
		return risk, SeverityCritical
	case risk >= 10:
		return risk, SeverityHigh
	case risk >= 5:
		return risk, SeverityMedium
	default:
		return risk, SeverityLow
	}
}

// Finding is one rule hit before persistence.
type Finding struct {
	DeviationType string
	BaseImpact    int
	Likelihood    int
	Title         string
	Description   string
	Remediation   string
	Evidence      EvidenceSnapshot
}

func describe(req frameworks.Requirement) string {
	if req.Description != nil && *req.Description != "" {
		return *req.Description
	}
	return req.Name
}

// evaluateRules applies the five deviation rules to one requirement's
// evidence and score. The missing_* rules and documentation_gap are mutually
// exclusive; both inadequate_* rules can fire together when coverage exists
// but the score stays low.
func evaluateRules(
	req frameworks.Requirement,
	hasPolicy, hasControl bool,
	policyCount, controlCount int,
	score float64,
) []Finding {
	var findings []Finding

	if hasControl && !hasPolicy {
		findings = append(findings, Finding{
			DeviationType: TypeMissingPolicy,
			BaseImpact:    missingPolicyBaseImpact,
			Likelihood:    missingPolicyLikelihood,
			Title:         fmt.Sprintf("Missing policy for %s", req.Code),
			Description: fmt.Sprintf(
				"Control(s) exist for %s but no governing policy is mapped.", req.Code),
			Remediation: fmt.Sprintf(
				"Create or map a policy that addresses %s", describe(req)),
			Evidence: EvidenceSnapshot{
				HasControl:   true,
				ControlCount: controlCount,
			},
		})
	}

	if hasPolicy && !hasControl {
		findings = append(findings, Finding{
			DeviationType: TypeMissingControl,
			BaseImpact:    missingControlBaseImpact,
			Likelihood:    missingControlLikelihood,
			Title:         fmt.Sprintf("Missing control for %s", req.Code),
			Description: fmt.Sprintf(
				"Policy exists for %s but no implementing control is mapped.", req.Code),
			Remediation: fmt.Sprintf(
				"Implement controls to enforce the policy for %s", describe(req)),
			Evidence: EvidenceSnapshot{
				HasPolicy:   true,
				PolicyCount: policyCount,
			},
		})
	}

	if hasPolicy && score <= lowScoreCeiling {
		s := score
		findings = append(findings, Finding{
			DeviationType: TypeInadequatePolicy,
			BaseImpact:    inadequateBaseImpactPolicy,
			Likelihood:    inadequateLikelihood,
			Title:         fmt.Sprintf("Inadequate policy coverage for %s", req.Code),
			Description: fmt.Sprintf(
				"Policy exists but maturity score is low (%.0f/4) indicating inadequate coverage.", score),
			Remediation: "Review and strengthen policy to fully address requirements.",
			Evidence: EvidenceSnapshot{
				HasPolicy: true,
				Score:     &s,
			},
		})
	}

	if hasControl && score <= lowScoreCeiling {
		s := score
		findings = append(findings, Finding{
			DeviationType: TypeInadequateControl,
			BaseImpact:    inadequateBaseImpactControl,
			Likelihood:    inadequateLikelihood,
			Title:         fmt.Sprintf("Inadequate control implementation for %s", req.Code),
			Description: fmt.Sprintf(
				"Control exists but maturity score is low (%.0f/4) indicating inadequate implementation.", score),
			Remediation: "Review control implementation and ensure consistent execution.",
			Evidence: EvidenceSnapshot{
				HasControl: true,
				Score:      &s,
			},
		})
	}

	if !hasPolicy && !hasControl {
		findings = append(findings, Finding{
			DeviationType: TypeDocumentationGap,
			BaseImpact:    noCoverageBaseImpact,
			Likelihood:    noCoverageLikelihood,
			Title:         fmt.Sprintf("No coverage for %s", req.Code),
			Description: fmt.Sprintf(
				"No policies or controls are mapped to %s: %s", req.Code, describe(req)),
			Remediation: fmt.Sprintf(
				"Develop policy and implement controls for %s", describe(req)),
			Evidence: EvidenceSnapshot{},
		})
	}

	return findings
}
