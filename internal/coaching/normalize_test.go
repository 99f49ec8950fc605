package coaching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFullPayload(t *testing.T) {
	analysis, confidence, err := Normalize([]byte(analysisBody))
	require.NoError(t, err)

	assert.Equal(t, []string{"clear value proposition"}, analysis.Strengths)
	assert.Equal(t, []string{"ask more open questions"}, analysis.ImprovementAreas)
	require.Len(t, analysis.SpecificExamples, 1)
	assert.Equal(t, "We help teams save time.", analysis.SpecificExamples[0].Quote)
	assert.Equal(t, "discovery", analysis.RecommendedPractice.FocusArea)
	assert.Equal(t, []string{"question ladder"}, analysis.RecommendedPractice.Exercises)
	assert.Equal(t, "solid", analysis.CategoryFeedback["opening"])
	assert.InDelta(t, 0.92, confidence, 1e-9)
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	analysis, confidence, err := Normalize([]byte(`{}`))
	require.NoError(t, err)

	// Missing keys become empty, never nil, so JSON consumers see [] and {}.
	assert.NotNil(t, analysis.Strengths)
	assert.Empty(t, analysis.Strengths)
	assert.NotNil(t, analysis.ImprovementAreas)
	assert.NotNil(t, analysis.SpecificExamples)
	assert.NotNil(t, analysis.SuggestedPhrases)
	assert.NotNil(t, analysis.CategoryFeedback)
	assert.NotNil(t, analysis.RecommendedPractice.Scenarios)
	assert.NotNil(t, analysis.RecommendedPractice.Exercises)
	assert.InDelta(t, 0.8, confidence, 1e-9)
}

func TestNormalizeZeroConfidenceIsRespected(t *testing.T) {
	_, confidence, err := Normalize([]byte(`{"confidence_score": 0}`))
	require.NoError(t, err)
	// An explicit zero is the model's answer, not a missing field.
	assert.Zero(t, confidence)
}

func TestNormalizeMalformedJSON(t *testing.T) {
	_, _, err := Normalize([]byte(`{"strengths": [`))
	assert.Error(t, err)
}
