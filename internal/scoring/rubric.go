package scoring

import (
	"strings"

	"github.com/concordsec/concord/internal/interviews"
)

// Maturity tiers.
const (
	TierNonExistent  = 0
	TierPartial      = 1
	TierRiskInformed = 2
	TierRepeatable   = 3
	TierAdaptive     = 4
)

// TierInfo describes one maturity tier of the rubric.
type TierInfo struct {
	Name        string `json:"name"`
	Tier        string `json:"tier"`
	Description string `json:"description"`
}

var tiers = [5]TierInfo{
	{"Non-existent", "Tier 0", "No policy, no control, no evidence of implementation"},
	{"Partial", "Tier 1", "Ad hoc implementation, informal processes, no documentation"},
	{"Risk-Informed", "Tier 2", "Policy OR control exists, but implementation is inconsistent"},
	{"Repeatable", "Tier 3", "Policy AND control exist, documented, consistent execution"},
	{"Adaptive", "Tier 4", "All Tier 3 requirements plus metrics and continuous improvement"},
}

// TierFor returns the tier description for a score, clamped to 0-4.
func TierFor(score int) TierInfo {
	if score < TierNonExistent {
		score = TierNonExistent
	}
	if score > TierAdaptive {
		score = TierAdaptive
	}
	return tiers[score]
}

// Breakdown records the rubric inputs and outcome for one calculation.
type Breakdown struct {
	Evidence
	Score           int    `json:"score"`
	TierName        string `json:"tier_name"`
	TierDescription string `json:"tier_description"`
}

// CalculateTier applies the fixed maturity rubric to gathered evidence.
func CalculateTier(ev Evidence) (int, Breakdown) {
	var tier int

	switch {
	case !ev.HasPolicy && !ev.HasControl:
		if ev.Documentation == PresencePartial || ev.Operation == PresencePartial {
			tier = TierPartial
		} else {
			tier = TierNonExistent
		}
	case ev.HasPolicy && ev.HasControl &&
		ev.Documentation == PresenceFull && ev.Operation == PresenceFull:
		if ev.HasMetrics && ev.HasImprovement {
			tier = TierAdaptive
		} else {
			tier = TierRepeatable
		}
	default:
		tier = TierRiskInformed
	}

	info := TierFor(tier)
	return tier, Breakdown{
		Evidence:        ev,
		Score:           tier,
		TierName:        info.Name,
		TierDescription: info.Description,
	}
}

func responseValue(a interviews.AnsweredQuestion) string {
	if a.Response.ResponseValue == nil {
		return ""
	}
	return strings.ToLower(*a.Response.ResponseValue)
}

func positive(value string) bool {
	switch value {
	case "yes", "true", "1", "partial":
		return true
	}
	return false
}

func strongPositive(value string) bool {
	switch value {
	case "yes", "true", "1":
		return true
	}
	return false
}

// InterpretResponses derives rubric evidence from the latest interview
// answers. Existence questions set the policy/control flags (a question
// naming only one of them sets just that one); documentation and operation
// questions map strong positives to full presence and weak positives to
// partial. Mapping-derived evidence is layered on top by the caller.
func InterpretResponses(answers []interviews.AnsweredQuestion) Evidence {
	ev := Evidence{
		Documentation: PresenceNone,
		Operation:     PresenceNone,
	}

	for _, a := range answers {
		value := responseValue(a)
		text := strings.ToLower(a.Question.QuestionText)

		switch a.Question.QuestionType {
		case interviews.QuestionExistence:
			switch {
			case strings.Contains(text, "policy"):
				ev.HasPolicy = positive(value)
			case strings.Contains(text, "control"):
				ev.HasControl = positive(value)
			case positive(value):
				// Generic existence question covers both.
				ev.HasPolicy = true
				ev.HasControl = true
			}

		case interviews.QuestionDocumentation:
			if strongPositive(value) {
				ev.Documentation = PresenceFull
			} else if positive(value) {
				ev.Documentation = PresencePartial
			}

		case interviews.QuestionOperation:
			if strongPositive(value) {
				ev.Operation = PresenceFull
			} else if positive(value) {
				ev.Operation = PresencePartial
			}

		case interviews.QuestionMetrics:
			ev.HasMetrics = strongPositive(value)

		case interviews.QuestionImprovement:
			ev.HasImprovement = strongPositive(value)

		case interviews.QuestionDesign:
			// Design answers inform reviewers, not the rubric.
		}
	}

	return ev
}
