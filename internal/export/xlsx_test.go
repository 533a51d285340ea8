package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
)

func TestHistoryXLSX(t *testing.T) {
	entries := []domain.HistoryEntry{
		{
			ID:         "h1",
			UserID:     "u1",
			CourseName: "Operating Systems",
			Report: &domain.AnalysisReport{
				SuccessProbability: 70,
				SyllabusCoverage:   85,
				Topics: []domain.Topic{
					{Name: "Deadlocks", RiskLevel: domain.RiskHigh},
					{Name: "Paging", RiskLevel: domain.RiskLow},
				},
			},
			CreatedAt: time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC),
		},
	}

	data, err := HistoryXLSX(entries)
	if err != nil {
		t.Fatalf("HistoryXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	course, err := f.GetCellValue("History", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if course != "Operating Systems" {
		t.Errorf("B2 = %q, want course name", course)
	}
	highRisk, _ := f.GetCellValue("History", "F2")
	if highRisk != "1" {
		t.Errorf("F2 = %q, want 1 high-risk topic", highRisk)
	}
}

func TestHistoryXLSXEmpty(t *testing.T) {
	data, err := HistoryXLSX(nil)
	if err != nil {
		t.Fatalf("HistoryXLSX: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected workbook bytes")
	}
}
