// Package report renders analyzed calls into an Excel scorecard workbook
// for sharing outside the service.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"call-coach-go/internal/types"
)

const sheetName = "Scorecard"

var headers = []string{
	"Call ID", "Overall", "Opening", "Discovery", "Objection Handling",
	"Clarity", "Closing", "Turns", "Rep Words", "Objections", "Questions", "Scored At",
}

// WriteScorecard writes one row per call score to an xlsx workbook at path.
func WriteScorecard(path string, scores []types.CallScore) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, s := range scores {
		row := []interface{}{
			s.CallID,
			s.OverallScore,
			categoryScore(s, types.CategoryOpening),
			categoryScore(s, types.CategoryDiscovery),
			categoryScore(s, types.CategoryObjectionHandling),
			categoryScore(s, types.CategoryClarity),
			categoryScore(s, types.CategoryClosing),
			s.Metadata.TurnCount,
			s.Metadata.RepWordCount,
			s.Metadata.ObjectionCount,
			s.Metadata.QuestionCount,
			s.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", i+2, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func categoryScore(s types.CallScore, cat types.Category) float64 {
	for _, cs := range s.CategoryScores {
		if cs.Category == cat {
			return cs.Score
		}
	}
	return 0
}
