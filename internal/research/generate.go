package research

import (
	"context"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/joelkehle/pharma-forecast/internal/llm"
)

const (
	therapyMaxTokens     = 4096
	funnelMaxTokens      = 4096
	competitiveMaxTokens = 3072
	scenarioMaxTokens    = 3072
	regulatoryMaxTokens  = 2048
	riskMaxTokens        = 2048
)

var tracer = otel.Tracer("pharma-forecast/research")

// Generator runs the prompt-call-parse cycle for every record kind. It holds
// a Caller factory rather than a Caller because credentials arrive per
// request.
type Generator struct {
	NewCaller llm.Factory
}

func (g *Generator) call(ctx context.Context, apiKey, kind, system, prompt string, maxTokens int64) (string, error) {
	ctx, span := tracer.Start(ctx, "llm.generate")
	defer span.End()
	span.SetAttributes(attribute.String("analysis.kind", kind))

	raw, err := g.NewCaller(apiKey).Generate(ctx, llm.Request{
		System:    system,
		Prompt:    prompt,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", kind, err)
	}
	return raw, nil
}

// TherapySections generates and parses the five-section therapy area
// analysis. Transport errors propagate: without sections there is nothing to
// build an analysis from.
func (g *Generator) TherapySections(ctx context.Context, apiKey, therapyArea, productName string) (TherapySections, error) {
	raw, err := g.call(ctx, apiKey, "therapy", therapySystemPrompt, therapyPrompt(therapyArea, productName), therapyMaxTokens)
	if err != nil {
		return TherapySections{}, err
	}
	return ParseTherapySections(raw), nil
}

// FunnelPayload generates the patient-flow funnel for an existing analysis.
func (g *Generator) FunnelPayload(ctx context.Context, apiKey, therapyArea string, analysis *TherapyAreaAnalysis) (FunnelPayload, error) {
	raw, err := g.call(ctx, apiKey, "funnel", funnelSystemPrompt, funnelPrompt(therapyArea, analysis), funnelMaxTokens)
	if err != nil {
		return FunnelPayload{}, err
	}
	return ParseFunnelResponse(raw), nil
}

// CompetitiveAnalysis always returns a landscape: on transport failure the
// record is an explicit error placeholder so the stored analysis stays
// self-describing.
func (g *Generator) CompetitiveAnalysis(ctx context.Context, apiKey, therapyArea string) *CompetitiveLandscape {
	raw, err := g.call(ctx, apiKey, "competitive", competitiveSystemPrompt, competitivePrompt(therapyArea), competitiveMaxTokens)
	if err != nil {
		log.Printf("competitive analysis failed: %v", err)
		msg := err.Error()
		return &CompetitiveLandscape{
			Competitors: []CompetitorEntry{{
				Name:        "Analysis Error",
				Products:    truncateText(msg, 100),
				MarketShare: 0,
				Strengths:   "Please try again",
				Weaknesses:  "See analysis for details",
			}},
			MarketDynamics: "Error generating analysis: " + msg,
			Pipeline:       "Please regenerate analysis",
			Positioning:    "Error in analysis generation",
			Catalysts:      "Please try again with valid API key",
			FullAnalysis:   "Error: " + msg,
		}
	}
	return ParseCompetitiveResponse(raw)
}

// RegulatoryIntelligence is best effort: nil on transport failure.
func (g *Generator) RegulatoryIntelligence(ctx context.Context, apiKey, therapyArea string) *RegulatoryIntelligence {
	raw, err := g.call(ctx, apiKey, "regulatory", regulatorySystemPrompt, regulatoryPrompt(therapyArea), regulatoryMaxTokens)
	if err != nil {
		log.Printf("regulatory intelligence failed: %v", err)
		return nil
	}
	return ParseRegulatoryResponse(raw)
}

// RiskAssessment is best effort: nil on transport failure.
func (g *Generator) RiskAssessment(ctx context.Context, apiKey, therapyArea string) *RiskAssessment {
	raw, err := g.call(ctx, apiKey, "risk", riskSystemPrompt, riskPrompt(therapyArea), riskMaxTokens)
	if err != nil {
		log.Printf("risk assessment failed: %v", err)
		return nil
	}
	return ParseRiskResponse(raw)
}

// ScenarioModels is best effort: nil on transport failure.
func (g *Generator) ScenarioModels(ctx context.Context, apiKey, therapyArea string, scenarios []string) map[string]ScenarioModel {
	raw, err := g.call(ctx, apiKey, "scenario", scenarioSystemPrompt, scenarioPrompt(therapyArea, scenarios), scenarioMaxTokens)
	if err != nil {
		log.Printf("scenario modeling failed: %v", err)
		return nil
	}
	return ParseScenarioResponse(raw, scenarios)
}
