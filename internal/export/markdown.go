// Package export turns stored analysis records into deliverable documents:
// a markdown report printed to PDF through headless Chromium, and a
// three-sheet Excel workbook.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joelkehle/pharma-forecast/internal/research"
)

// BuildReportMarkdown assembles the report body. Output is deterministic for
// a given analysis and funnel so repeated exports are byte-identical.
func BuildReportMarkdown(analysis *research.TherapyAreaAnalysis, funnel *research.PatientFlowFunnel) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Pharma Analysis Report: %s\n\n", analysis.TherapyArea)

	// The executive summary is always ellipsized; it is a teaser for the
	// full disease overview below.
	b.WriteString("## Executive Summary\n\n")
	b.WriteString(truncate(analysis.DiseaseSummary, 500) + "...")
	b.WriteString("\n\n")

	sections := []struct {
		title string
		body  string
	}{
		{"Disease Overview", analysis.DiseaseSummary},
		{"Staging Information", analysis.Staging},
		{"Biomarkers", analysis.Biomarkers},
		{"Treatment Algorithm", analysis.TreatmentAlgorithm},
		{"Patient Journey", analysis.PatientJourney},
	}
	for _, s := range sections {
		if s.body == "" {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.title, truncateWithEllipsis(s.body, 1000))
	}

	if cl := analysis.CompetitiveLandscape; cl != nil && len(cl.Competitors) > 0 {
		b.WriteString("## Competitive Landscape\n\n")
		top := cl.Competitors
		if len(top) > 5 {
			top = top[:5]
		}
		for _, c := range top {
			fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Strengths)
		}
		b.WriteString("\n")
	}

	if ra := analysis.RiskAssessment; ra != nil && len(ra.Categories) > 0 {
		b.WriteString("## Risk Assessment\n\n")
		names := make([]string, 0, len(ra.Categories))
		for name := range ra.Categories {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %s\n", riskCategoryTitle(name), ra.Categories[name].Level)
		}
		b.WriteString("\n")
	}

	if funnel != nil && len(funnel.FunnelStages) > 0 {
		b.WriteString("## Patient Flow Funnel\n\n")
		b.WriteString("| Stage | Percentage | Description |\n")
		b.WriteString("| --- | --- | --- |\n")
		for _, stage := range funnel.FunnelStages {
			fmt.Fprintf(&b, "| %s | %s | %s |\n",
				tableCell(stage.Stage), tableCell(stage.Percentage), tableCell(stage.Description))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// PDFFilename and ExcelFilename derive deliverable names from the therapy
// area, spaces replaced with underscores.
func PDFFilename(therapyArea string) string {
	return strings.ReplaceAll(therapyArea, " ", "_") + "_analysis.pdf"
}

func ExcelFilename(therapyArea string) string {
	return strings.ReplaceAll(therapyArea, " ", "_") + "_model.xlsx"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func truncateWithEllipsis(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func riskCategoryTitle(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func tableCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "\\|")
}
