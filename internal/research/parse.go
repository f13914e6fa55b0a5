package research

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Parsing in this package never fails: model output carries no format
// guarantee, so every parser degrades to a deterministic, fully-typed
// fallback and keeps the verbatim response in a passthrough field.

// TherapySections holds the five delimited sections of a therapy-area
// analysis response. Missing sections stay empty strings.
type TherapySections struct {
	DiseaseSummary     string
	Staging            string
	Biomarkers         string
	TreatmentAlgorithm string
	PatientJourney     string
}

// ParseTherapySections splits raw model output on "## " markers and
// classifies each segment by its leading keyword. Preamble before the first
// marker is discarded.
func ParseTherapySections(raw string) TherapySections {
	var out TherapySections
	parts := strings.Split(raw, "## ")
	if len(parts) < 2 {
		return out
	}
	for _, section := range parts[1:] {
		switch {
		case strings.HasPrefix(section, "DISEASE SUMMARY"):
			out.DiseaseSummary = strings.TrimSpace(strings.TrimPrefix(section, "DISEASE SUMMARY"))
		case strings.HasPrefix(section, "STAGING"):
			out.Staging = strings.TrimSpace(strings.TrimPrefix(section, "STAGING"))
		case strings.HasPrefix(section, "BIOMARKERS"):
			out.Biomarkers = strings.TrimSpace(strings.TrimPrefix(section, "BIOMARKERS"))
		case strings.HasPrefix(section, "TREATMENT ALGORITHM"):
			out.TreatmentAlgorithm = strings.TrimSpace(strings.TrimPrefix(section, "TREATMENT ALGORITHM"))
		case strings.HasPrefix(section, "PATIENT JOURNEY"):
			out.PatientJourney = strings.TrimSpace(strings.TrimPrefix(section, "PATIENT JOURNEY"))
		}
	}
	return out
}

// extractJSON slices the first '{' through the last '}' of raw text so an
// embedded object can be decoded even when surrounded by prose.
func extractJSON(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// FunnelPayload is the decoded body of a funnel-generation response.
type FunnelPayload struct {
	FunnelStages               []FunnelStage `json:"funnel_stages"`
	TotalAddressablePopulation string        `json:"total_addressable_population"`
	ForecastingNotes           string        `json:"forecasting_notes"`
}

// ParseFunnelResponse decodes the embedded JSON object of a funnel response.
// On any decode failure it returns a two-stage placeholder funnel that keeps
// the raw response in the notes fields.
func ParseFunnelResponse(raw string) FunnelPayload {
	if jsonStr, ok := extractJSON(stripCodeFences(raw)); ok {
		var payload FunnelPayload
		if err := json.Unmarshal([]byte(jsonStr), &payload); err == nil && len(payload.FunnelStages) > 0 {
			return payload
		}
	}
	return FunnelPayload{
		FunnelStages: []FunnelStage{
			{Stage: "Total Population", Description: "Analysis generated", Percentage: "100%", Notes: "See full response"},
			{Stage: "Target Population", Description: "Detailed analysis provided", Percentage: "Variable", Notes: truncateText(raw, 200) + "..."},
		},
		TotalAddressablePopulation: "See full analysis response",
		ForecastingNotes:           raw,
	}
}

// ParseRegulatoryResponse decodes regulatory intelligence JSON; on failure
// the full response lands in the market-access passthrough field.
func ParseRegulatoryResponse(raw string) *RegulatoryIntelligence {
	if jsonStr, ok := extractJSON(stripCodeFences(raw)); ok {
		var out RegulatoryIntelligence
		if err := json.Unmarshal([]byte(jsonStr), &out); err == nil {
			return &out
		}
	}
	return &RegulatoryIntelligence{
		Pathways:       "See full analysis",
		RecentActivity: "See full analysis",
		Trends:         "See full analysis",
		Timelines:      "See full analysis",
		MarketAccess:   raw,
	}
}

// ParseRiskResponse decodes a risk-assessment JSON object. Top-level object
// values carrying a "level" key become risk categories; an absent overall
// score defaults to the midpoint 5. Decode failure yields the fixed
// medium-risk fallback with the raw response retained.
func ParseRiskResponse(raw string) *RiskAssessment {
	if jsonStr, ok := extractJSON(stripCodeFences(raw)); ok {
		var decoded map[string]json.RawMessage
		if err := json.Unmarshal([]byte(jsonStr), &decoded); err == nil && len(decoded) > 0 {
			out := &RiskAssessment{Categories: map[string]RiskCategory{}, OverallScore: 5}
			for key, value := range decoded {
				if key == "overall_score" || key == "overall_risk_score" {
					var score float64
					if json.Unmarshal(value, &score) == nil {
						out.OverallScore = score
					}
					continue
				}
				var cat RiskCategory
				if json.Unmarshal(value, &cat) == nil && cat.Level != "" {
					out.Categories[key] = cat
				}
			}
			if len(out.Categories) > 0 {
				return out
			}
		}
	}
	return &RiskAssessment{
		Categories: map[string]RiskCategory{
			"clinical_risk":    {Level: "Medium", Factors: []string{"See analysis"}},
			"regulatory_risk":  {Level: "Medium", Factors: []string{"See analysis"}},
			"commercial_risk":  {Level: "Medium", Factors: []string{"See analysis"}},
			"operational_risk": {Level: "Low", Factors: []string{"See analysis"}},
			"market_risk":      {Level: "Medium", Factors: []string{"See analysis"}},
		},
		OverallScore:   5,
		FullAssessment: raw,
	}
}

const (
	defaultMarketShare     = 5
	sweepMarketShare       = 15
	maxCompetitors         = 7
	maxSweepCompetitors    = 5
	sectionWindowLines     = 10
	competitorNameLimit    = 50
	competitorDetailsLimit = 100
)

var knownCompanies = []string{
	"NOVARTIS", "PFIZER", "ROCHE", "BRISTOL", "MERCK",
	"JOHNSON", "ABBVIE", "GILEAD", "BIOGEN", "AMGEN",
}

var marketShareRe = regexp.MustCompile(`(\d+)%`)

var competitorLineMarkers = []string{"-", "•", "1.", "2.", "3."}

var competitorNamePrefixes = []string{"1.", "2.", "3.", "4.", "5.", "6.", "7.", "-", "•"}

// ParseCompetitiveResponse runs the heuristic line classifier over free-text
// competitive analysis output. It always returns a populated landscape: empty
// sections receive derived defaults and the full response is retained.
func ParseCompetitiveResponse(raw string) *CompetitiveLandscape {
	var (
		competitors                                      []CompetitorEntry
		marketDynamics, pipeline, positioning, catalysts string
		currentSection                                   string
		currentContent                                   []string
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)
		switch {
		case containsAny(upper, "COMPETITOR", "MAJOR", "KEY PLAYER"):
			currentSection, currentContent = "competitors", nil
		case containsAny(upper, "MARKET DYNAMIC", "MARKET TREND"):
			currentSection, currentContent = "market_dynamics", nil
		case containsAny(upper, "PIPELINE", "DEVELOPMENT"):
			currentSection, currentContent = "pipeline", nil
		case containsAny(upper, "POSITIONING", "DIFFERENTIAT"):
			currentSection, currentContent = "positioning", nil
		case containsAny(upper, "CATALYST", "UPCOMING", "EVENTS"):
			currentSection, currentContent = "catalysts", nil
		default:
			currentContent = append(currentContent, line)
			if currentSection == "competitors" {
				if entry, ok := parseCompetitorLine(line); ok {
					competitors = append(competitors, entry)
				}
			}
		}

		// Sections keep a bounded trailing window; long sections
		// intentionally drop earlier content.
		switch currentSection {
		case "market_dynamics":
			marketDynamics = lastLines(currentContent, sectionWindowLines)
		case "pipeline":
			pipeline = lastLines(currentContent, sectionWindowLines)
		case "positioning":
			positioning = lastLines(currentContent, sectionWindowLines)
		case "catalysts":
			catalysts = lastLines(currentContent, sectionWindowLines)
		}
	}

	if len(competitors) == 0 {
		competitors = sweepKnownCompanies(raw)
	}

	if marketDynamics == "" {
		marketDynamics = truncateText(raw, 500) + "..."
	}
	if pipeline == "" {
		pipeline = "Pipeline analysis included in full competitive analysis"
	}
	if positioning == "" {
		positioning = "Competitive positioning varies by therapeutic focus and market presence"
	}
	if catalysts == "" {
		catalysts = "Key market catalysts and events detailed in comprehensive analysis"
	}
	if len(competitors) > maxCompetitors {
		competitors = competitors[:maxCompetitors]
	}

	return &CompetitiveLandscape{
		Competitors:    competitors,
		MarketDynamics: marketDynamics,
		Pipeline:       pipeline,
		Positioning:    positioning,
		Catalysts:      catalysts,
		FullAnalysis:   raw,
	}
}

func parseCompetitorLine(line string) (CompetitorEntry, bool) {
	marked := false
	for _, m := range competitorLineMarkers {
		if strings.Contains(line, m) {
			marked = true
			break
		}
	}
	if !marked {
		return CompetitorEntry{}, false
	}

	name, details := line, ""
	if idx := strings.Index(line, ":"); idx >= 0 {
		name, details = line[:idx], line[idx+1:]
	}
	name = strings.TrimSpace(name)
	details = strings.TrimSpace(details)
	for _, prefix := range competitorNamePrefixes {
		name = strings.TrimSpace(strings.ReplaceAll(name, prefix, ""))
	}
	if len(name) <= 2 {
		return CompetitorEntry{}, false
	}

	share := float64(defaultMarketShare)
	if m := marketShareRe.FindStringSubmatch(details); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			share = float64(v)
		}
	}
	products := truncateText(details, competitorDetailsLimit)
	if products == "" {
		products = "Market presence"
	}
	strengths := truncateText(details, competitorDetailsLimit)
	if strengths == "" {
		strengths = "Established player"
	}
	return CompetitorEntry{
		Name:        truncateText(name, competitorNameLimit),
		Products:    products,
		MarketShare: share,
		Strengths:   strengths,
		Weaknesses:  "See analysis for details",
	}, true
}

// sweepKnownCompanies is the secondary pass: when line classification found
// nothing, synthesize placeholder entries from known company-name mentions.
func sweepKnownCompanies(raw string) []CompetitorEntry {
	var competitors []CompetitorEntry
	for _, line := range strings.Split(raw, "\n") {
		upper := strings.ToUpper(line)
		for _, company := range knownCompanies {
			if strings.Contains(upper, company) {
				competitors = append(competitors, CompetitorEntry{
					Name:        truncateText(strings.TrimSpace(line), 30),
					Products:    "Multiple products in portfolio",
					MarketShare: sweepMarketShare,
					Strengths:   "Established pharmaceutical company",
					Weaknesses:  "High competition",
				})
				break
			}
		}
		if len(competitors) >= maxSweepCompetitors {
			break
		}
	}
	return competitors
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func lastLines(lines []string, n int) string {
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

var baseProjections = []float64{100, 250, 500, 750, 900, 800}

// scenarioMultipliers keys the fallback curve by scenario name so scenarios
// supplied out of order still scale correctly; unrecognized names fall back
// to the positional clamp.
var scenarioMultipliers = map[string]float64{
	"pessimistic": 0.6,
	"realistic":   1.0,
	"optimistic":  1.8,
}

var positionalMultipliers = []float64{0.6, 1.0, 1.8}

// ParseScenarioResponse decodes a scenario-set JSON object tolerantly. When
// no object decodes, it synthesizes the deterministic fallback set for the
// requested scenario names.
func ParseScenarioResponse(raw string, scenarios []string) map[string]ScenarioModel {
	if jsonStr, ok := extractJSON(stripCodeFences(raw)); ok {
		var decoded map[string]map[string]any
		if err := json.Unmarshal([]byte(jsonStr), &decoded); err == nil && len(decoded) > 0 {
			out := make(map[string]ScenarioModel, len(decoded))
			for name, fields := range decoded {
				out[name] = scenarioFromFields(fields)
			}
			return out
		}
	}
	return FallbackScenarioModels(raw, scenarios)
}

// FallbackScenarioModels scales the fixed base curve per scenario, with
// integer-truncated values matching the historical behavior.
func FallbackScenarioModels(raw string, scenarios []string) map[string]ScenarioModel {
	out := make(map[string]ScenarioModel, len(scenarios))
	for i, scenario := range scenarios {
		mult, ok := scenarioMultipliers[strings.ToLower(scenario)]
		if !ok {
			idx := i
			if idx > 2 {
				idx = 2
			}
			mult = positionalMultipliers[idx]
		}
		projections := make([]float64, len(baseProjections))
		for j, p := range baseProjections {
			projections[j] = float64(int(p * mult))
		}
		title := titleCase(scenario)
		out[scenario] = ScenarioModel{
			Assumptions:           []string{title + " market conditions"},
			Projections:           projections,
			PeakSales:             float64(int(900 * mult)),
			MarketShareTrajectory: []float64{2, 5, 8, 12, 15, 13},
			KeyFactors:            []string{title + " execution"},
			FullAnalysis:          raw,
		}
	}
	return out
}

func scenarioFromFields(fields map[string]any) ScenarioModel {
	return ScenarioModel{
		Assumptions:           asStringSlice(fields["assumptions"]),
		Projections:           asFloatSlice(fields["projections"]),
		PeakSales:             asFloat(fields["peak_sales"]),
		MarketShareTrajectory: asFloatSlice(fields["market_share_trajectory"]),
		KeyFactors:            asStringSlice(fields["key_factors"]),
	}
}

func asStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asFloatSlice(v any) []float64 {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		if f, ok := item.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}

func asFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
