// Package charts builds declarative chart specifications for client-side
// rendering. The server never rasterizes anything; it ships labels, values,
// and colors and leaves drawing to the frontend.
package charts

import (
	"sort"
	"strconv"
	"strings"

	"github.com/joelkehle/pharma-forecast/internal/research"
)

type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
	Color  string    `json:"color,omitempty"`
}

type Spec struct {
	Kind   string   `json:"kind"`
	Title  string   `json:"title"`
	Labels []string `json:"labels,omitempty"`
	Series []Series `json:"series"`
	Colors []string `json:"colors,omitempty"`
	XTitle string   `json:"x_title,omitempty"`
	YTitle string   `json:"y_title,omitempty"`
}

var funnelColors = []string{"deepskyblue", "lightsalmon", "tan", "teal", "silver", "gold"}

var scenarioColors = map[string]string{
	"optimistic":  "green",
	"realistic":   "blue",
	"pessimistic": "red",
}

var forecastYears = []string{"2024", "2025", "2026", "2027", "2028", "2029"}

// Funnel maps each stage to one series holding its parsed percentage.
// Percentages that do not parse as numbers ("Variable", free text) chart
// as zero rather than being dropped, so stage order stays visible.
func Funnel(stages []research.FunnelStage) *Spec {
	spec := &Spec{Kind: "funnel", Title: "Patient Flow Funnel"}
	for i, stage := range stages {
		color := ""
		if i < len(funnelColors) {
			color = funnelColors[i]
		}
		spec.Series = append(spec.Series, Series{
			Name:   stage.Stage,
			Values: []float64{parsePercent(stage.Percentage)},
			Color:  color,
		})
		spec.Labels = append(spec.Labels, stage.Stage)
	}
	return spec
}

// MarketShare builds a pie of the first ten competitors in input order.
func MarketShare(competitors []research.CompetitorEntry) *Spec {
	if len(competitors) == 0 {
		return nil
	}
	if len(competitors) > 10 {
		competitors = competitors[:10]
	}
	spec := &Spec{Kind: "pie", Title: "Market Share Distribution"}
	values := make([]float64, 0, len(competitors))
	for _, c := range competitors {
		spec.Labels = append(spec.Labels, c.Name)
		values = append(values, c.MarketShare)
	}
	spec.Series = []Series{{Name: "Market Share", Values: values}}
	return spec
}

// ScenarioComparison renders one line per scenario over the six forecast
// years. Scenario order is alphabetical for stable output.
func ScenarioComparison(models map[string]research.ScenarioModel) *Spec {
	if len(models) == 0 {
		return nil
	}
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)

	spec := &Spec{
		Kind:   "line",
		Title:  "Market Forecast Scenarios",
		Labels: forecastYears,
		XTitle: "Year",
		YTitle: "Market Value ($M)",
	}
	for _, name := range names {
		projections := models[name].Projections
		if len(projections) > len(forecastYears) {
			projections = projections[:len(forecastYears)]
		}
		color, ok := scenarioColors[strings.ToLower(name)]
		if !ok {
			color = "gray"
		}
		spec.Series = append(spec.Series, Series{Name: name, Values: projections, Color: color})
	}
	return spec
}

func parsePercent(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
