package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/joelkehle/pharma-forecast/internal/research"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestAnalysisRoundTrip(t *testing.T) {
	st := openTestStore(t)

	analysis := research.NewTherapyAreaAnalysis("NSCLC", "drugX", research.TherapySections{
		DiseaseSummary: "summary",
		Biomarkers:     "EGFR",
	})
	if err := st.InsertAnalysis(analysis); err != nil {
		t.Fatal(err)
	}

	got, err := st.GetAnalysis(analysis.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TherapyArea != "NSCLC" || got.ProductName != "drugX" {
		t.Fatalf("got %+v", got)
	}
	if got.Biomarkers != "EGFR" {
		t.Fatalf("biomarkers = %q", got.Biomarkers)
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	st := openTestStore(t)
	if _, err := st.GetAnalysis("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestUpdateAnalysis(t *testing.T) {
	st := openTestStore(t)

	analysis := research.NewTherapyAreaAnalysis("NSCLC", "", research.TherapySections{})
	if err := st.InsertAnalysis(analysis); err != nil {
		t.Fatal(err)
	}

	analysis.ScenarioModels = map[string]research.ScenarioModel{
		"realistic": {PeakSales: 900},
	}
	analysis.UpdatedAt = time.Now().UTC()
	if err := st.UpdateAnalysis(analysis); err != nil {
		t.Fatal(err)
	}

	got, err := st.GetAnalysis(analysis.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ScenarioModels["realistic"].PeakSales != 900 {
		t.Fatalf("scenario models = %+v", got.ScenarioModels)
	}
}

func TestUpdateAnalysisNotFound(t *testing.T) {
	st := openTestStore(t)
	analysis := research.NewTherapyAreaAnalysis("NSCLC", "", research.TherapySections{})
	if err := st.UpdateAnalysis(analysis); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestListAnalysesNewestFirst(t *testing.T) {
	st := openTestStore(t)

	first := research.NewTherapyAreaAnalysis("First", "", research.TherapySections{})
	first.CreatedAt = time.Now().UTC().Add(-time.Hour)
	second := research.NewTherapyAreaAnalysis("Second", "", research.TherapySections{})

	if err := st.InsertAnalysis(first); err != nil {
		t.Fatal(err)
	}
	if err := st.InsertAnalysis(second); err != nil {
		t.Fatal(err)
	}

	got, err := st.ListAnalyses(50)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].TherapyArea != "Second" {
		t.Fatalf("order = %q, %q", got[0].TherapyArea, got[1].TherapyArea)
	}
}

func TestListAnalysesLimit(t *testing.T) {
	st := openTestStore(t)
	for i := 0; i < 3; i++ {
		a := research.NewTherapyAreaAnalysis("area", "", research.TherapySections{})
		a.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		if err := st.InsertAnalysis(a); err != nil {
			t.Fatal(err)
		}
	}
	got, err := st.ListAnalyses(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
}

func TestFunnelLatestByAnalysis(t *testing.T) {
	st := openTestStore(t)

	older := research.NewPatientFlowFunnel("NSCLC", "analysis-1", research.FunnelPayload{
		TotalAddressablePopulation: "old",
	})
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := research.NewPatientFlowFunnel("NSCLC", "analysis-1", research.FunnelPayload{
		TotalAddressablePopulation: "new",
	})

	if err := st.InsertFunnel(older); err != nil {
		t.Fatal(err)
	}
	if err := st.InsertFunnel(newer); err != nil {
		t.Fatal(err)
	}

	got, err := st.GetFunnelByAnalysis("analysis-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalAddressablePopulation != "new" {
		t.Fatalf("got %q", got.TotalAddressablePopulation)
	}
}

func TestFunnelNotFound(t *testing.T) {
	st := openTestStore(t)
	if _, err := st.GetFunnelByAnalysis("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestStatusChecks(t *testing.T) {
	st := openTestStore(t)

	first := research.NewStatusCheck("client-a")
	first.Timestamp = time.Now().UTC().Add(-time.Minute)
	second := research.NewStatusCheck("client-b")

	if err := st.InsertStatusCheck(first); err != nil {
		t.Fatal(err)
	}
	if err := st.InsertStatusCheck(second); err != nil {
		t.Fatal(err)
	}

	got, err := st.ListStatusChecks()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].ClientName != "client-a" {
		t.Fatalf("order = %q, %q", got[0].ClientName, got[1].ClientName)
	}
}
