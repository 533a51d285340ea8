package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
)

// HistoryXLSX renders a user's analysis history as a spreadsheet, one row
// per saved report.
func HistoryXLSX(entries []domain.HistoryEntry) ([]byte, error) {
	const sheet = "History"

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"Date", "Course", "Success Probability", "Syllabus Coverage", "Topics", "High Risk Topics"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for row, entry := range entries {
		values := []any{
			entry.CreatedAt.Format("2006-01-02 15:04"),
			entry.CourseName,
			entry.Report.SuccessProbability,
			entry.Report.SyllabusCoverage,
			len(entry.Report.Topics),
			countHighRisk(entry.Report),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "B", 30)
	_ = f.SetColWidth(sheet, "C", "D", 20)
	_ = f.SetColWidth(sheet, "E", "F", 16)

	var buf *bytes.Buffer
	buf, err = f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func countHighRisk(report *domain.AnalysisReport) int {
	n := 0
	for _, t := range report.Topics {
		if t.RiskLevel == domain.RiskHigh {
			n++
		}
	}
	return n
}
