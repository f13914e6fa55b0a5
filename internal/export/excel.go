package export

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/joelkehle/pharma-forecast/internal/research"
)

var workbookYears = []string{"2024", "2025", "2026", "2027", "2028", "2029"}

// BuildExcelWorkbook produces the three-sheet forecasting workbook: summary
// text, the patient-flow funnel, and scenario projections by year.
func BuildExcelWorkbook(analysis *research.TherapyAreaAnalysis, funnel *research.PatientFlowFunnel) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Analysis Summary"
	f.SetSheetName("Sheet1", summarySheet)

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("workbook style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("workbook style: %w", err)
	}

	f.SetCellValue(summarySheet, "A1", "Therapy Area Analysis: "+analysis.TherapyArea)
	f.SetCellStyle(summarySheet, "A1", "A1", titleStyle)

	summaryRows := []struct {
		label string
		value string
	}{
		{"Disease Summary", truncate(analysis.DiseaseSummary, 500)},
		{"Key Biomarkers", truncate(analysis.Biomarkers, 300)},
		{"Treatment Algorithm", truncate(analysis.TreatmentAlgorithm, 300)},
	}
	row := 3
	for _, r := range summaryRows {
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		valueCell, _ := excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(summarySheet, labelCell, r.label)
		f.SetCellStyle(summarySheet, labelCell, labelCell, headerStyle)
		f.SetCellValue(summarySheet, valueCell, r.value)
		row += 2
	}

	const funnelSheet = "Patient Flow Funnel"
	if _, err := f.NewSheet(funnelSheet); err != nil {
		return nil, fmt.Errorf("workbook sheet: %w", err)
	}
	for col, header := range []string{"Stage", "Percentage", "Description"} {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(funnelSheet, cell, header)
		f.SetCellStyle(funnelSheet, cell, cell, headerStyle)
	}
	if funnel != nil {
		for i, stage := range funnel.FunnelStages {
			stageCell, _ := excelize.CoordinatesToCellName(1, i+2)
			pctCell, _ := excelize.CoordinatesToCellName(2, i+2)
			descCell, _ := excelize.CoordinatesToCellName(3, i+2)
			f.SetCellValue(funnelSheet, stageCell, stage.Stage)
			f.SetCellValue(funnelSheet, pctCell, stage.Percentage)
			f.SetCellValue(funnelSheet, descCell, stage.Description)
		}
	}

	const scenarioSheet = "Scenario Models"
	if _, err := f.NewSheet(scenarioSheet); err != nil {
		return nil, fmt.Errorf("workbook sheet: %w", err)
	}
	f.SetCellValue(scenarioSheet, "A1", "Scenario")
	f.SetCellStyle(scenarioSheet, "A1", "A1", headerStyle)
	for i, year := range workbookYears {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		f.SetCellValue(scenarioSheet, cell, year)
		f.SetCellStyle(scenarioSheet, cell, cell, headerStyle)
	}
	if analysis.ScenarioModels != nil {
		names := make([]string, 0, len(analysis.ScenarioModels))
		for name := range analysis.ScenarioModels {
			names = append(names, name)
		}
		sort.Strings(names)
		for i, name := range names {
			nameCell, _ := excelize.CoordinatesToCellName(1, i+2)
			f.SetCellValue(scenarioSheet, nameCell, name)
			projections := analysis.ScenarioModels[name].Projections
			if len(projections) > len(workbookYears) {
				projections = projections[:len(workbookYears)]
			}
			for j, v := range projections {
				cell, _ := excelize.CoordinatesToCellName(j+2, i+2)
				f.SetCellValue(scenarioSheet, cell, v)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
