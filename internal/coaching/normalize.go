package coaching

import (
	"encoding/json"

	"call-coach-go/internal/types"
)

// defaultConfidence is applied when the model omits confidence_score.
const defaultConfidence = 0.8

// Normalize parses a model-produced analysis body and applies schema
// defaults: any missing top-level key becomes an empty array/object so
// consumers never see null fields. Malformed JSON is an error; the caller
// decides whether to retry.
func Normalize(data []byte) (types.CoachingAnalysis, float64, error) {
	var raw struct {
		Strengths        []string                `json:"strengths"`
		ImprovementAreas []string                `json:"improvement_areas"`
		SpecificExamples []types.SpecificExample `json:"specific_examples"`
		RecommendedPractice struct {
			FocusArea string   `json:"focus_area"`
			Reason    string   `json:"reason"`
			Scenarios []string `json:"scenarios"`
			Exercises []string `json:"exercises"`
		} `json:"recommended_practice"`
		SuggestedPhrases []string          `json:"suggested_phrases"`
		CategoryFeedback map[string]string `json:"category_feedback"`
		ConfidenceScore  *float64          `json:"confidence_score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.CoachingAnalysis{}, 0, err
	}

	analysis := types.CoachingAnalysis{
		Strengths:        emptyIfNil(raw.Strengths),
		ImprovementAreas: emptyIfNil(raw.ImprovementAreas),
		SpecificExamples: raw.SpecificExamples,
		RecommendedPractice: types.RecommendedPractice{
			FocusArea: raw.RecommendedPractice.FocusArea,
			Reason:    raw.RecommendedPractice.Reason,
			Scenarios: emptyIfNil(raw.RecommendedPractice.Scenarios),
			Exercises: emptyIfNil(raw.RecommendedPractice.Exercises),
		},
		SuggestedPhrases: emptyIfNil(raw.SuggestedPhrases),
		CategoryFeedback: raw.CategoryFeedback,
	}
	if analysis.SpecificExamples == nil {
		analysis.SpecificExamples = []types.SpecificExample{}
	}
	if analysis.CategoryFeedback == nil {
		analysis.CategoryFeedback = map[string]string{}
	}

	confidence := defaultConfidence
	if raw.ConfidenceScore != nil {
		confidence = *raw.ConfidenceScore
	}
	return analysis, confidence, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
