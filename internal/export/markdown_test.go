package export

import (
	"strings"
	"testing"

	"github.com/joelkehle/pharma-forecast/internal/research"
)

func sampleAnalysis() *research.TherapyAreaAnalysis {
	return &research.TherapyAreaAnalysis{
		ID:                 "a-1",
		TherapyArea:        "Lung Cancer",
		DiseaseSummary:     strings.Repeat("s", 600),
		Staging:            "TNM staging",
		Biomarkers:         "EGFR, ALK",
		TreatmentAlgorithm: "chemo then targeted",
		PatientJourney:     "diagnosis to treatment",
		CompetitiveLandscape: &research.CompetitiveLandscape{
			Competitors: []research.CompetitorEntry{
				{Name: "Acme", Strengths: "broad label"},
				{Name: "Beta", Strengths: "pricing"},
				{Name: "Gamma", Strengths: "pipeline"},
				{Name: "Delta", Strengths: "salesforce"},
				{Name: "Epsilon", Strengths: "first mover"},
				{Name: "Zeta", Strengths: "should be cut"},
			},
		},
		RiskAssessment: &research.RiskAssessment{
			Categories: map[string]research.RiskCategory{
				"clinical_risk":    {Level: "High"},
				"market_risk":      {Level: "Medium"},
				"operational_risk": {Level: "Low"},
			},
			OverallScore: 6,
		},
	}
}

func sampleFunnel() *research.PatientFlowFunnel {
	return &research.PatientFlowFunnel{
		ID:          "f-1",
		AnalysisID:  "a-1",
		TherapyArea: "Lung Cancer",
		FunnelStages: []research.FunnelStage{
			{Stage: "Total Population", Percentage: "100%", Description: "everyone at risk"},
			{Stage: "Diagnosed", Percentage: "40%", Description: "confirmed cases"},
		},
	}
}

func TestBuildReportMarkdown(t *testing.T) {
	md := BuildReportMarkdown(sampleAnalysis(), sampleFunnel())

	if !strings.HasPrefix(md, "# Pharma Analysis Report: Lung Cancer\n") {
		t.Fatalf("title missing: %q", md[:60])
	}
	if !strings.Contains(md, "## Executive Summary") {
		t.Fatal("executive summary missing")
	}
	// Long summaries are truncated with an ellipsis in the executive summary.
	if !strings.Contains(md, strings.Repeat("s", 500)+"...") {
		t.Fatal("executive summary not truncated")
	}
	for _, heading := range []string{
		"## Disease Overview", "## Staging Information", "## Biomarkers",
		"## Treatment Algorithm", "## Patient Journey",
	} {
		if !strings.Contains(md, heading) {
			t.Fatalf("missing heading %q", heading)
		}
	}
	if !strings.Contains(md, "- Acme: broad label") {
		t.Fatal("competitor bullet missing")
	}
	// Only the top five competitors appear.
	if strings.Contains(md, "Zeta") {
		t.Fatal("sixth competitor should be cut")
	}
	if !strings.Contains(md, "- Clinical Risk: High") {
		t.Fatal("risk bullet missing")
	}
	if !strings.Contains(md, "| Total Population | 100% | everyone at risk |") {
		t.Fatal("funnel table row missing")
	}
}

func TestBuildReportMarkdownDeterministic(t *testing.T) {
	a, f := sampleAnalysis(), sampleFunnel()
	if BuildReportMarkdown(a, f) != BuildReportMarkdown(a, f) {
		t.Fatal("report output should be deterministic")
	}
}

func TestBuildReportMarkdownSkipsEmptySections(t *testing.T) {
	analysis := &research.TherapyAreaAnalysis{TherapyArea: "Rare Disease", DiseaseSummary: "short"}
	md := BuildReportMarkdown(analysis, nil)
	if strings.Contains(md, "## Staging Information") {
		t.Fatal("empty section should be skipped")
	}
	if strings.Contains(md, "## Patient Flow Funnel") {
		t.Fatal("funnel section should be absent without a funnel")
	}
	// The executive summary carries an ellipsis even when nothing was cut.
	if !strings.Contains(md, "short...") {
		t.Fatal("executive summary should be ellipsized")
	}
}

func TestBuildReportMarkdownEllipsizesLongSections(t *testing.T) {
	analysis := sampleAnalysis()
	analysis.Staging = strings.Repeat("t", 1200)
	md := BuildReportMarkdown(analysis, nil)
	if !strings.Contains(md, strings.Repeat("t", 1000)+"...") {
		t.Fatal("long section should be truncated with an ellipsis")
	}
	if strings.Contains(md, strings.Repeat("t", 1001)) {
		t.Fatal("section text should be cut at the limit")
	}
	// Sections within the limit stay untouched.
	if !strings.Contains(md, "## Biomarkers\n\nEGFR, ALK\n") {
		t.Fatal("short section should not be ellipsized")
	}
}

func TestFilenames(t *testing.T) {
	if got := PDFFilename("lung cancer"); got != "lung_cancer_analysis.pdf" {
		t.Fatalf("pdf filename = %q", got)
	}
	if got := ExcelFilename("lung cancer"); got != "lung_cancer_model.xlsx" {
		t.Fatalf("excel filename = %q", got)
	}
}
