// Package httpapi exposes the forecasting service over HTTP JSON under the
// /api prefix.
package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/joelkehle/pharma-forecast/internal/charts"
	"github.com/joelkehle/pharma-forecast/internal/export"
	"github.com/joelkehle/pharma-forecast/internal/research"
	"github.com/joelkehle/pharma-forecast/internal/store"
)

// TrialsSearcher queries the clinical trials registry. Registry failures are
// absorbed by handlers: trials enrich records but never block them.
type TrialsSearcher interface {
	Search(ctx context.Context, therapyArea string) ([]map[string]any, error)
}

type Server struct {
	store     *store.Store
	generator *research.Generator
	trials    TrialsSearcher
	pdf       export.Renderer
}

func NewServer(st *store.Store, gen *research.Generator, trials TrialsSearcher, pdf export.Renderer) http.Handler {
	s := &Server{store: st, generator: gen, trials: trials, pdf: pdf}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/analyze-therapy", s.handleAnalyzeTherapy)
	mux.HandleFunc("/api/generate-funnel", s.handleGenerateFunnel)
	mux.HandleFunc("/api/competitive-analysis", s.handleCompetitiveAnalysis)
	mux.HandleFunc("/api/scenario-modeling", s.handleScenarioModeling)
	mux.HandleFunc("/api/export", s.handleExport)
	mux.HandleFunc("/api/analyses", s.handleListAnalyses)
	mux.HandleFunc("/api/analysis/", s.handleGetAnalysis)
	mux.HandleFunc("/api/funnels/", s.handleGetFunnel)
	mux.HandleFunc("/api/search/clinical-trials", s.handleSearchTrials)
	mux.HandleFunc("/api/", s.handleRoot)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/" && r.URL.Path != "/api" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Pharma Forecasting Consultant API v2.0"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var body struct {
			ClientName string `json:"client_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ClientName == "" {
			writeError(w, http.StatusBadRequest, "client_name is required")
			return
		}
		check := research.NewStatusCheck(body.ClientName)
		if err := s.store.InsertStatusCheck(check); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, check)
	case http.MethodGet:
		checks, err := s.store.ListStatusChecks()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, checks)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type analysisRequest struct {
	APIKey      string   `json:"api_key"`
	TherapyArea string   `json:"therapy_area"`
	ProductName string   `json:"product_name"`
	AnalysisID  string   `json:"analysis_id"`
	Scenarios   []string `json:"scenarios"`
}

func decodeAnalysisRequest(w http.ResponseWriter, r *http.Request) (analysisRequest, bool) {
	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	if req.APIKey == "" {
		writeError(w, http.StatusBadRequest, "api_key is required")
		return req, false
	}
	if req.TherapyArea == "" {
		writeError(w, http.StatusBadRequest, "therapy_area is required")
		return req, false
	}
	return req, true
}

// handleAnalyzeTherapy runs the full first-pass analysis: five-section
// therapy breakdown, competitive landscape, regulatory intelligence, risk
// assessment, plus a best-effort trials lookup.
func (s *Server) handleAnalyzeTherapy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	req, ok := decodeAnalysisRequest(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	sections, err := s.generator.TherapySections(ctx, req.APIKey, req.TherapyArea, req.ProductName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	analysis := research.NewTherapyAreaAnalysis(req.TherapyArea, req.ProductName, sections)
	analysis.CompetitiveLandscape = s.generator.CompetitiveAnalysis(ctx, req.APIKey, req.TherapyArea)
	analysis.RegulatoryIntelligence = s.generator.RegulatoryIntelligence(ctx, req.APIKey, req.TherapyArea)
	analysis.RiskAssessment = s.generator.RiskAssessment(ctx, req.APIKey, req.TherapyArea)
	analysis.ClinicalTrials = s.searchTrials(ctx, req.TherapyArea, 10)

	if err := s.store.InsertAnalysis(analysis); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "completed",
		"analysis": analysis,
	})
}

func (s *Server) handleGenerateFunnel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	req, ok := decodeAnalysisRequest(w, r)
	if !ok {
		return
	}
	if req.AnalysisID == "" {
		writeError(w, http.StatusBadRequest, "analysis_id is required")
		return
	}
	ctx := r.Context()

	analysis, err := s.store.GetAnalysis(req.AnalysisID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	payload, err := s.generator.FunnelPayload(ctx, req.APIKey, req.TherapyArea, analysis)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	funnel := research.NewPatientFlowFunnel(req.TherapyArea, analysis.ID, payload)
	funnel.ScenarioModels = s.generator.ScenarioModels(ctx, req.APIKey, req.TherapyArea, defaultScenarios)
	funnel.Visualization = s.visualizationFor(analysis, funnel)

	if err := s.store.InsertFunnel(funnel); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "completed",
		"funnel": funnel,
	})
}

// visualizationFor bundles every chart spec the frontend can draw for an
// analysis and its funnel. Absent data yields absent keys, not empty charts.
func (s *Server) visualizationFor(analysis *research.TherapyAreaAnalysis, funnel *research.PatientFlowFunnel) map[string]any {
	viz := map[string]any{}
	if len(funnel.FunnelStages) > 0 {
		viz["funnel"] = charts.Funnel(funnel.FunnelStages)
	}
	if cl := analysis.CompetitiveLandscape; cl != nil {
		if spec := charts.MarketShare(cl.Competitors); spec != nil {
			viz["market_share"] = spec
		}
	}
	models := funnel.ScenarioModels
	if len(models) == 0 {
		models = analysis.ScenarioModels
	}
	if spec := charts.ScenarioComparison(models); spec != nil {
		viz["scenarios"] = spec
	}
	return viz
}

func (s *Server) handleCompetitiveAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	req, ok := decodeAnalysisRequest(w, r)
	if !ok {
		return
	}
	if req.AnalysisID == "" {
		writeError(w, http.StatusBadRequest, "analysis_id is required")
		return
	}
	ctx := r.Context()

	analysis, err := s.store.GetAnalysis(req.AnalysisID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	analysis.CompetitiveLandscape = s.generator.CompetitiveAnalysis(ctx, req.APIKey, req.TherapyArea)
	analysis.ClinicalTrials = s.searchTrials(ctx, req.TherapyArea, 15)
	analysis.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateAnalysis(analysis); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":                "completed",
		"competitive_landscape": analysis.CompetitiveLandscape,
		"clinical_trials_count": len(analysis.ClinicalTrials),
		"updated_at":            analysis.UpdatedAt,
	})
}

var defaultScenarios = []string{"optimistic", "realistic", "pessimistic"}

func (s *Server) handleScenarioModeling(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	req, ok := decodeAnalysisRequest(w, r)
	if !ok {
		return
	}
	if req.AnalysisID == "" {
		writeError(w, http.StatusBadRequest, "analysis_id is required")
		return
	}
	scenarios := req.Scenarios
	if len(scenarios) == 0 {
		scenarios = defaultScenarios
	}
	ctx := r.Context()

	analysis, err := s.store.GetAnalysis(req.AnalysisID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	models := s.generator.ScenarioModels(ctx, req.APIKey, req.TherapyArea, scenarios)
	analysis.ScenarioModels = models
	analysis.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateAnalysis(analysis); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "completed",
		"scenario_models": models,
		"visualization":   charts.ScenarioComparison(models),
		"updated_at":      analysis.UpdatedAt,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		AnalysisID string `json:"analysis_id"`
		ExportType string `json:"export_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AnalysisID == "" {
		writeError(w, http.StatusBadRequest, "analysis_id is required")
		return
	}

	analysis, err := s.store.GetAnalysis(req.AnalysisID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	funnel, err := s.store.GetFunnelByAnalysis(req.AnalysisID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var (
		data     []byte
		filename string
	)
	switch req.ExportType {
	case "pdf":
		md := export.BuildReportMarkdown(analysis, funnel)
		data, err = s.pdf.Render(r.Context(), md)
		filename = export.PDFFilename(analysis.TherapyArea)
	case "excel":
		data, err = export.BuildExcelWorkbook(analysis, funnel)
		filename = export.ExcelFilename(analysis.TherapyArea)
	default:
		writeError(w, http.StatusBadRequest, "export_type must be 'pdf' or 'excel'")
		return
	}
	if err != nil {
		log.Printf("export %s failed: %v", req.ExportType, err)
		writeError(w, http.StatusBadRequest, "export failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "completed",
		"export_type": req.ExportType,
		"data":        base64.StdEncoding.EncodeToString(data),
		"filename":    filename,
	})
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	analyses, err := s.store.ListAnalyses(50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": analyses})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/analysis/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "analysis id is required")
		return
	}
	analysis, err := s.store.GetAnalysis(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	resp := map[string]any{"analysis": analysis}
	if funnel, err := s.store.GetFunnelByAnalysis(id); err == nil {
		resp["funnel"] = funnel
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetFunnel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	analysisID := strings.TrimPrefix(r.URL.Path, "/api/funnels/")
	if analysisID == "" {
		writeError(w, http.StatusBadRequest, "analysis id is required")
		return
	}
	funnel, err := s.store.GetFunnelByAnalysis(analysisID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Funnel not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, funnel)
}

func (s *Server) handleSearchTrials(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	therapyArea := r.URL.Query().Get("therapy_area")
	if therapyArea == "" {
		writeError(w, http.StatusBadRequest, "therapy_area is required")
		return
	}
	studies, err := s.trials.Search(r.Context(), therapyArea)
	if err != nil {
		log.Printf("trials search failed: %v", err)
		studies = nil
	}
	if studies == nil {
		studies = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"therapy_area": therapyArea,
		"studies":      studies,
		"count":        len(studies),
	})
}

// searchTrials is the best-effort registry lookup used when assembling
// analyses: failures are logged and produce an empty slice.
func (s *Server) searchTrials(ctx context.Context, therapyArea string, limit int) []map[string]any {
	studies, err := s.trials.Search(ctx, therapyArea)
	if err != nil {
		log.Printf("trials search failed: %v", err)
		return nil
	}
	if len(studies) > limit {
		studies = studies[:limit]
	}
	return studies
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Analysis not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
