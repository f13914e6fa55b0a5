package research

import (
	"time"

	"github.com/google/uuid"
)

// StatusCheck is a minimal liveness record written by integration clients.
type StatusCheck struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewStatusCheck(clientName string) StatusCheck {
	return StatusCheck{
		ID:         uuid.NewString(),
		ClientName: clientName,
		Timestamp:  time.Now().UTC(),
	}
}

// FunnelStage is one step of a patient-flow funnel. Stage order is
// meaningful: the population narrows stage by stage. Percentage is a display
// string ("42%", "Variable", or free text when the model did not commit to a
// number).
type FunnelStage struct {
	Stage       string `json:"stage"`
	Description string `json:"description"`
	Percentage  string `json:"percentage"`
	Notes       string `json:"notes"`
}

type CompetitorEntry struct {
	Name        string  `json:"name"`
	Products    string  `json:"products"`
	MarketShare float64 `json:"market_share"`
	Strengths   string  `json:"strengths"`
	Weaknesses  string  `json:"weaknesses"`
}

// CompetitiveLandscape holds the heuristic competitive read of a therapy
// area. FullAnalysis always carries the verbatim model response so a human
// can recover anything the line classifier missed.
type CompetitiveLandscape struct {
	Competitors    []CompetitorEntry `json:"competitors"`
	MarketDynamics string            `json:"market_dynamics"`
	Pipeline       string            `json:"pipeline"`
	Positioning    string            `json:"positioning"`
	Catalysts      string            `json:"catalysts"`
	FullAnalysis   string            `json:"full_analysis"`
}

type RegulatoryIntelligence struct {
	Pathways       string `json:"pathways"`
	RecentActivity string `json:"recent_activity"`
	Trends         string `json:"trends"`
	Timelines      string `json:"timelines"`
	MarketAccess   string `json:"market_access"`
}

type RiskCategory struct {
	Level      string   `json:"level"`
	Factors    []string `json:"factors"`
	Mitigation string   `json:"mitigation,omitempty"`
}

type RiskAssessment struct {
	Categories     map[string]RiskCategory `json:"categories"`
	OverallScore   float64                 `json:"overall_score"`
	FullAssessment string                  `json:"full_assessment,omitempty"`
}

// ScenarioModel is one named forecast variant. Projections and the share
// trajectory cover six forecast years.
type ScenarioModel struct {
	Assumptions           []string  `json:"assumptions"`
	Projections           []float64 `json:"projections"`
	PeakSales             float64   `json:"peak_sales"`
	MarketShareTrajectory []float64 `json:"market_share_trajectory"`
	KeyFactors            []string  `json:"key_factors"`
	FullAnalysis          string    `json:"full_analysis,omitempty"`
}

type TherapyAreaAnalysis struct {
	ID                     string                   `json:"id"`
	TherapyArea            string                   `json:"therapy_area"`
	ProductName            string                   `json:"product_name,omitempty"`
	DiseaseSummary         string                   `json:"disease_summary"`
	Staging                string                   `json:"staging"`
	Biomarkers             string                   `json:"biomarkers"`
	TreatmentAlgorithm     string                   `json:"treatment_algorithm"`
	PatientJourney         string                   `json:"patient_journey"`
	MarketSizeData         map[string]any           `json:"market_size_data,omitempty"`
	CompetitiveLandscape   *CompetitiveLandscape    `json:"competitive_landscape,omitempty"`
	RegulatoryIntelligence *RegulatoryIntelligence  `json:"regulatory_intelligence,omitempty"`
	ClinicalTrials         []map[string]any         `json:"clinical_trials_data,omitempty"`
	RiskAssessment         *RiskAssessment          `json:"risk_assessment,omitempty"`
	ScenarioModels         map[string]ScenarioModel `json:"scenario_models,omitempty"`
	CreatedAt              time.Time                `json:"created_at"`
	UpdatedAt              time.Time                `json:"updated_at"`
}

func NewTherapyAreaAnalysis(therapyArea, productName string, sections TherapySections) *TherapyAreaAnalysis {
	now := time.Now().UTC()
	return &TherapyAreaAnalysis{
		ID:                 uuid.NewString(),
		TherapyArea:        therapyArea,
		ProductName:        productName,
		DiseaseSummary:     sections.DiseaseSummary,
		Staging:            sections.Staging,
		Biomarkers:         sections.Biomarkers,
		TreatmentAlgorithm: sections.TreatmentAlgorithm,
		PatientJourney:     sections.PatientJourney,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// PatientFlowFunnel references its parent analysis by identifier only; its
// lifetime is independent and deleting the analysis does not cascade.
type PatientFlowFunnel struct {
	ID                         string                   `json:"id"`
	TherapyArea                string                   `json:"therapy_area"`
	AnalysisID                 string                   `json:"analysis_id"`
	FunnelStages               []FunnelStage            `json:"funnel_stages"`
	TotalAddressablePopulation string                   `json:"total_addressable_population"`
	ForecastingNotes           string                   `json:"forecasting_notes"`
	ScenarioModels             map[string]ScenarioModel `json:"scenario_models,omitempty"`
	Visualization              map[string]any           `json:"visualization_data,omitempty"`
	CreatedAt                  time.Time                `json:"created_at"`
}

func NewPatientFlowFunnel(therapyArea, analysisID string, payload FunnelPayload) *PatientFlowFunnel {
	return &PatientFlowFunnel{
		ID:                         uuid.NewString(),
		TherapyArea:                therapyArea,
		AnalysisID:                 analysisID,
		FunnelStages:               payload.FunnelStages,
		TotalAddressablePopulation: payload.TotalAddressablePopulation,
		ForecastingNotes:           payload.ForecastingNotes,
		CreatedAt:                  time.Now().UTC(),
	}
}

// ResearchResult is the cached registry/LLM lookup shape. Nothing writes it
// yet; it is declared so a cache can be added without reshaping records.
type ResearchResult struct {
	ID       string         `json:"id"`
	Query    string         `json:"query"`
	Source   string         `json:"source"`
	Results  map[string]any `json:"results"`
	CachedAt time.Time      `json:"cached_at"`
}
