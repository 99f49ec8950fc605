package report_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"call-coach-go/internal/report"
	"call-coach-go/internal/types"
)

func TestWriteScorecard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scorecard.xlsx")

	scores := []types.CallScore{
		{
			CallID:       "call-1",
			OverallScore: 7.4,
			CategoryScores: []types.CategoryScore{
				{Category: types.CategoryOpening, Score: 8},
				{Category: types.CategoryClosing, Score: 6},
			},
			Metadata:  types.ScoreMetadata{TurnCount: 14, RepWordCount: 420, ObjectionCount: 2, QuestionCount: 5},
			CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		},
		{CallID: "call-2", OverallScore: 4.1},
	}

	require.NoError(t, report.WriteScorecard(path, scores))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Scorecard")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Call ID", rows[0][0])
	assert.Equal(t, "Overall", rows[0][1])

	assert.Equal(t, "call-1", rows[1][0])
	assert.Equal(t, "7.4", rows[1][1])
	assert.Equal(t, "8", rows[1][2])
	assert.Equal(t, "call-2", rows[2][0])
}

func TestWriteScorecardEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, report.WriteScorecard(path, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Scorecard")
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}
