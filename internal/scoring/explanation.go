package scoring

import (
	"fmt"
	"strings"

	"github.com/concordsec/concord/internal/artifacts"
	"github.com/concordsec/concord/internal/interviews"
)

const quoteLimit = 200

// Explanation is the structured payload stored with every score, making the
// calculation auditable without replaying it.
type Explanation struct {
	Components        []Component        `json:"components"`
	Rationale         string             `json:"rationale"`
	EvidenceCitations []Citation         `json:"evidence_citations,omitempty"`
	ConfidenceFactors map[string]float64 `json:"confidence_factors"`
	ScoreBreakdown    *Breakdown         `json:"score_breakdown,omitempty"`
}

// Component is one evidence category (leaf scores) or one contributing child
// (rollup scores).
type Component struct {
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Items       []ComponentItem `json:"items,omitempty"`
	Code        string          `json:"code,omitempty"`
	Name        string          `json:"name,omitempty"`
	Score       *float64        `json:"score,omitempty"`
	Tier        string          `json:"tier,omitempty"`
}

// ComponentItem is one raw evidence entry inside a component.
type ComponentItem struct {
	Name         string   `json:"name,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
	QuestionType string   `json:"question_type,omitempty"`
	Response     string   `json:"response,omitempty"`
	Quote        string   `json:"quote,omitempty"`
}

// Citation points back at a concrete piece of evidence.
type Citation struct {
	Type         string `json:"type"`
	Name         string `json:"name,omitempty"`
	ID           string `json:"id,omitempty"`
	Quote        string `json:"quote,omitempty"`
	QuestionType string `json:"question_type,omitempty"`
}

func truncateQuote(s string) string {
	if len(s) > quoteLimit {
		return s[:quoteLimit]
	}
	return s
}

func mappingItems(details []artifacts.MappingDetail) []ComponentItem {
	items := make([]ComponentItem, 0, len(details))
	for _, d := range details {
		items = append(items, ComponentItem{
			Name:       d.ArtifactName,
			Confidence: d.ConfidenceScore,
		})
	}
	return items
}

func leafRationale(score int, ev Evidence) string {
	var parts []string

	switch score {
	case TierNonExistent:
		parts = append(parts, "No evidence of policy or control implementation found.")
	case TierPartial:
		parts = append(parts, "Ad hoc or informal implementation detected.")
	case TierRiskInformed:
		switch {
		case ev.HasPolicy && !ev.HasControl:
			parts = append(parts, "Policy exists but no control implementation found.")
		case ev.HasControl && !ev.HasPolicy:
			parts = append(parts, "Control exists but no formal policy found.")
		default:
			parts = append(parts, "Partial implementation with inconsistent execution.")
		}
	case TierRepeatable:
		parts = append(parts, "Policy and control both exist with documented, consistent execution.")
	case TierAdaptive:
		parts = append(parts, "Mature implementation with metrics and continuous improvement processes.")
	}

	parts = append(parts, fmt.Sprintf("Tier: %s", TierFor(score).Name))
	return strings.Join(parts, " ")
}

// buildLeafExplanation assembles the payload for an assessable requirement's
// tier score: per-category components, a rationale, citations, and coverage
// factors.
func buildLeafExplanation(
	score int,
	breakdown Breakdown,
	policy []artifacts.MappingDetail,
	control []artifacts.MappingDetail,
	answers []interviews.AnsweredQuestion,
) Explanation {
	components := []Component{
		{
			Type:        "policy",
			Description: describeMappings("policy", len(policy)),
			Items:       mappingItems(policy),
		},
		{
			Type:        "control",
			Description: describeMappings("control", len(control)),
			Items:       mappingItems(control),
		},
	}

	if len(answers) > 0 {
		positives := 0
		items := make([]ComponentItem, 0, len(answers))
		for _, a := range answers {
			value := responseValue(a)
			if strongPositive(value) {
				positives++
			}

			item := ComponentItem{
				QuestionType: a.Question.QuestionType,
				Response:     value,
			}
			if a.Response.ResponseText != nil {
				item.Quote = truncateQuote(*a.Response.ResponseText)
			}
			items = append(items, item)
		}

		components = append(components, Component{
			Type:        "interview",
			Description: fmt.Sprintf("%d/%d positive interview responses", positives, len(answers)),
			Items:       items,
		})
	}

	var citations []Citation
	for _, p := range policy {
		citations = append(citations, Citation{
			Type: "policy",
			Name: p.ArtifactName,
			ID:   p.ArtifactID.String(),
		})
	}
	for _, c := range control {
		citations = append(citations, Citation{
			Type: "control",
			Name: c.ArtifactName,
			ID:   c.ArtifactID.String(),
		})
	}
	for _, a := range answers {
		if a.Response.ResponseText == nil {
			continue
		}
		citations = append(citations, Citation{
			Type:         "interview",
			Quote:        truncateQuote(*a.Response.ResponseText),
			QuestionType: a.Question.QuestionType,
		})
	}

	interviewCoverage := float64(len(answers)) / 3.0
	if interviewCoverage > 1.0 {
		interviewCoverage = 1.0
	}

	return Explanation{
		Components:        components,
		Rationale:         leafRationale(score, breakdown.Evidence),
		EvidenceCitations: citations,
		ConfidenceFactors: map[string]float64{
			"policy_coverage":    coverage(len(policy) > 0),
			"control_coverage":   coverage(len(control) > 0),
			"interview_coverage": interviewCoverage,
		},
		ScoreBreakdown: &breakdown,
	}
}

func describeMappings(kind string, count int) string {
	if count == 0 {
		return fmt.Sprintf("No %s artifacts mapped to this requirement", kind)
	}
	return fmt.Sprintf("Found %d mapped %s artifact(s)", count, kind)
}

func coverage(present bool) float64 {
	if present {
		return 1.0
	}
	return 0.0
}

// buildRollupExplanation assembles the payload for an aggregate node whose
// score is the mean of its scored children.
func buildRollupExplanation(children []NodeScore, totalChildren int) Explanation {
	components := make([]Component, 0, len(children))
	var low, high []string

	for _, c := range children {
		score := c.Score
		components = append(components, Component{
			Type:  "requirement",
			Code:  c.Code,
			Name:  c.Name,
			Score: &score,
			Tier:  c.TierName,
		})

		if c.Score <= 1 {
			low = append(low, c.Code)
		}
		if c.Score >= 3 {
			high = append(high, c.Code)
		}
	}

	parts := []string{
		fmt.Sprintf("Score calculated as average of %d child scores.", len(children)),
	}
	if len(low) > 0 {
		parts = append(parts, fmt.Sprintf("Areas needing attention: %s", strings.Join(low, ", ")))
	}
	if len(high) > 0 {
		parts = append(parts, fmt.Sprintf("Strong areas: %s", strings.Join(high, ", ")))
	}

	childCoverage := 0.0
	if totalChildren > 0 {
		childCoverage = float64(len(children)) / float64(totalChildren)
	}

	return Explanation{
		Components: components,
		Rationale:  strings.Join(parts, " "),
		ConfidenceFactors: map[string]float64{
			"child_coverage": childCoverage,
		},
	}
}
