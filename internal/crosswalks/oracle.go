package crosswalks

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/concordsec/concord/internal/frameworks"
	"github.com/concordsec/concord/pkg/backoff"
	"github.com/concordsec/concord/pkg/formatting"
)

// Classification is an oracle verdict on a candidate requirement pair.
type Classification struct {
	MappingType string  `json:"mapping_type"`
	Confidence  float64 `json:"confidence"`
	Reasoning   *string `json:"reasoning,omitempty"`
}

// Oracle classifies the relationship between two requirements. A verdict
// of "none" means no meaningful relationship exists and the candidate
// should be dropped.
type Oracle interface {
	Classify(ctx context.Context, source, target *frameworks.Requirement) (*Classification, error)
}

type agentOracle struct {
	cfg   *gaconfig.AgentConfig
	retry backoff.Policy
}

// NewOracle creates a classification oracle backed by a chat agent.
func NewOracle(cfg *gaconfig.AgentConfig) Oracle {
	return &agentOracle{
		cfg:   cfg,
		retry: backoff.Default,
	}
}

func (o *agentOracle) Classify(ctx context.Context, source, target *frameworks.Requirement) (*Classification, error) {
	prompt := classificationPrompt(source, target)

	var result Classification
	err := o.retry.Retry(ctx, func(ctx context.Context) error {
		a, err := agent.New(o.cfg)
		if err != nil {
			return fmt.Errorf("create agent: %w", err)
		}

		resp, err := a.Chat(ctx, prompt)
		if err != nil {
			return fmt.Errorf("chat call: %w", err)
		}

		parsed, err := formatting.Parse[Classification](resp.Content())
		if err != nil {
			return fmt.Errorf("parse response: %w", err)
		}

		result = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	normalizeVerdict(&result)
	return &result, nil
}

// normalizeVerdict downgrades an unexpected mapping type to the weakest
// relationship rather than failing the candidate.
func normalizeVerdict(c *Classification) {
	switch c.MappingType {
	case MappingEquivalent, MappingPartial, MappingRelated, verdictNone:
	default:
		c.MappingType = MappingRelated
	}
}

// verdictNone is a valid oracle verdict but never a stored mapping type.
const verdictNone = "none"

func classificationPrompt(source, target *frameworks.Requirement) string {
	var b strings.Builder

	b.WriteString("Analyze the relationship between these two compliance requirements from different frameworks.\n\n")
	writeRequirement(&b, "SOURCE", source)
	writeRequirement(&b, "TARGET", target)

	b.WriteString(`Classify the relationship and respond with JSON:
{
    "mapping_type": "equivalent" | "partial" | "related" | "none",
    "confidence": 0.0-1.0,
    "reasoning": "Brief explanation of the relationship"
}

Definitions:
- "equivalent": Requirements are essentially the same, addressing identical objectives
- "partial": Target partially satisfies source OR source partially satisfies target
- "related": Requirements are related but distinct, covering adjacent topics
- "none": No meaningful relationship between requirements

Respond ONLY with the JSON object.`)

	return b.String()
}

func writeRequirement(b *strings.Builder, label string, req *frameworks.Requirement) {
	fmt.Fprintf(b, "%s REQUIREMENT (%s):\n", label, req.Code)
	fmt.Fprintf(b, "Name: %s\n", req.Name)

	description := "N/A"
	if req.Description != nil {
		description = *req.Description
	}
	fmt.Fprintf(b, "Description: %s\n", description)

	if req.Guidance != nil {
		fmt.Fprintf(b, "Guidance: %s\n", *req.Guidance)
	}
	b.WriteString("\n")
}
