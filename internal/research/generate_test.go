package research

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/joelkehle/pharma-forecast/internal/llm"
)

type fakeCaller struct {
	response string
	err      error
	lastReq  llm.Request
}

func (f *fakeCaller) Generate(_ context.Context, req llm.Request) (string, error) {
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func generatorFor(c *fakeCaller) *Generator {
	return &Generator{NewCaller: func(string) llm.Caller { return c }}
}

func TestTherapySectionsPropagatesError(t *testing.T) {
	gen := generatorFor(&fakeCaller{err: errors.New("invalid api key")})
	_, err := gen.TherapySections(context.Background(), "key", "NSCLC", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("err = %v", err)
	}
}

func TestTherapySectionsUsesTherapyBudget(t *testing.T) {
	caller := &fakeCaller{response: "## DISEASE SUMMARY\ntext"}
	gen := generatorFor(caller)
	sections, err := gen.TherapySections(context.Background(), "key", "NSCLC", "drugX")
	if err != nil {
		t.Fatal(err)
	}
	if sections.DiseaseSummary != "text" {
		t.Fatalf("sections = %+v", sections)
	}
	if caller.lastReq.MaxTokens != 4096 {
		t.Fatalf("max tokens = %d", caller.lastReq.MaxTokens)
	}
	if !strings.Contains(caller.lastReq.Prompt, "drugX") {
		t.Fatal("product name missing from prompt")
	}
}

func TestCompetitiveAnalysisErrorRecord(t *testing.T) {
	gen := generatorFor(&fakeCaller{err: errors.New("connection refused")})
	out := gen.CompetitiveAnalysis(context.Background(), "key", "NSCLC")
	if out == nil {
		t.Fatal("expected placeholder landscape, got nil")
	}
	if len(out.Competitors) != 1 || out.Competitors[0].Name != "Analysis Error" {
		t.Fatalf("competitors = %+v", out.Competitors)
	}
	if out.Competitors[0].MarketShare != 0 {
		t.Fatalf("error record share = %v", out.Competitors[0].MarketShare)
	}
	if !strings.Contains(out.MarketDynamics, "connection refused") {
		t.Fatalf("market dynamics = %q", out.MarketDynamics)
	}
	if !strings.HasPrefix(out.FullAnalysis, "Error: ") {
		t.Fatalf("full analysis = %q", out.FullAnalysis)
	}
}

func TestRegulatoryIntelligenceNilOnError(t *testing.T) {
	gen := generatorFor(&fakeCaller{err: errors.New("boom")})
	if out := gen.RegulatoryIntelligence(context.Background(), "key", "NSCLC"); out != nil {
		t.Fatalf("expected nil, got %+v", out)
	}
}

func TestRiskAssessmentNilOnError(t *testing.T) {
	gen := generatorFor(&fakeCaller{err: errors.New("boom")})
	if out := gen.RiskAssessment(context.Background(), "key", "NSCLC"); out != nil {
		t.Fatalf("expected nil, got %+v", out)
	}
}

func TestScenarioModelsNilOnError(t *testing.T) {
	gen := generatorFor(&fakeCaller{err: errors.New("boom")})
	if out := gen.ScenarioModels(context.Background(), "key", "NSCLC", []string{"realistic"}); out != nil {
		t.Fatalf("expected nil, got %+v", out)
	}
}

func TestScenarioModelsFallbackOnProse(t *testing.T) {
	gen := generatorFor(&fakeCaller{response: "no json in sight"})
	out := gen.ScenarioModels(context.Background(), "key", "NSCLC", []string{"optimistic", "realistic"})
	if len(out) != 2 {
		t.Fatalf("models = %+v", out)
	}
	if out["realistic"].PeakSales != 900 {
		t.Fatalf("realistic peak = %v", out["realistic"].PeakSales)
	}
}

func TestFunnelPayloadEmbedsAnalysis(t *testing.T) {
	caller := &fakeCaller{response: "not json"}
	gen := generatorFor(caller)
	analysis := NewTherapyAreaAnalysis("NSCLC", "", TherapySections{
		DiseaseSummary:     "summary text",
		TreatmentAlgorithm: "algorithm text",
		PatientJourney:     "journey text",
	})
	payload, err := gen.FunnelPayload(context.Background(), "key", "NSCLC", analysis)
	if err != nil {
		t.Fatal(err)
	}
	if len(payload.FunnelStages) == 0 {
		t.Fatal("expected fallback stages")
	}
	for _, fragment := range []string{"summary text", "algorithm text", "journey text"} {
		if !strings.Contains(caller.lastReq.Prompt, fragment) {
			t.Fatalf("prompt missing %q", fragment)
		}
	}
	if caller.lastReq.MaxTokens != 4096 {
		t.Fatalf("max tokens = %d", caller.lastReq.MaxTokens)
	}
}
