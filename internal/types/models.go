package types

import "time"

// --------------------------------------------
// Transcript input contract
// --------------------------------------------

// Speaker identifies who produced a transcript turn.
type Speaker string

const (
	SpeakerRep      Speaker = "rep"
	SpeakerProspect Speaker = "prospect"
)

// TranscriptEntry is one turn of the recorded call. The upstream recorder
// uses role "user" for the sales rep and "agent" for the simulated
// prospect; that naming is an externally imposed contract.
type TranscriptEntry struct {
	Role      string `json:"role"` // "user" | "agent"
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Speaker maps the wire role onto the domain speaker.
func (e TranscriptEntry) Speaker() Speaker {
	if e.Role == "agent" {
		return SpeakerProspect
	}
	return SpeakerRep
}

// --------------------------------------------
// Derived signals
// --------------------------------------------

// QuestionQuality classifies the rep's question mix.
type QuestionQuality string

const (
	QuestionQualityGood QuestionQuality = "good"
	QuestionQualityWeak QuestionQuality = "weak"
	QuestionQualityNone QuestionQuality = "none"
)

// ObjectionCategory buckets prospect resistance.
type ObjectionCategory string

const (
	ObjectionPrice     ObjectionCategory = "price"
	ObjectionTime      ObjectionCategory = "time"
	ObjectionAuthority ObjectionCategory = "authority"
	ObjectionNeed      ObjectionCategory = "need"
	ObjectionTrust     ObjectionCategory = "trust"
	ObjectionOther     ObjectionCategory = "other"
)

// ExtractedQuestion is one question sentence pulled from a rep turn.
type ExtractedQuestion struct {
	Text string `json:"text"`
	Open bool   `json:"open"`
}

// ObjectionOccurrence pairs a prospect objection with the rep's response.
type ObjectionOccurrence struct {
	ProspectText string            `json:"prospect_text"`
	RepResponse  string            `json:"rep_response"`
	Category     ObjectionCategory `json:"category"`
	Handled      bool              `json:"handled"`
}

// TranscriptSignals is the read-only bundle of deterministic features
// derived from a transcript. Same input always yields the same bundle.
type TranscriptSignals struct {
	OpeningText       string                `json:"opening_text"`
	ClosingText       string                `json:"closing_text"`
	HasGreeting       bool                  `json:"has_greeting"`
	HasValueProp      bool                  `json:"has_value_prop"`
	OpeningWordCount  int                   `json:"opening_word_count"`
	ClosingWordCount  int                   `json:"closing_word_count"`
	Questions         []ExtractedQuestion   `json:"questions"`
	QuestionQuality   QuestionQuality       `json:"question_quality"`
	ListeningRatio    float64               `json:"listening_ratio"`
	Objections        []ObjectionOccurrence `json:"objections"`
	FillerCount       int                   `json:"filler_count"`
	AvgRepTurnWords   float64               `json:"avg_rep_turn_words"`
	MaxRepTurnWords   int                   `json:"max_rep_turn_words"`
	HasCallToAction   bool                  `json:"has_call_to_action"`
	HasNextSteps      bool                  `json:"has_next_steps"`
	RepTurnCount      int                   `json:"rep_turn_count"`
	ProspectTurnCount int                   `json:"prospect_turn_count"`
	RepWordCount      int                   `json:"rep_word_count"`
	ProspectWordCount int                   `json:"prospect_word_count"`
}

// --------------------------------------------
// Scoring output
// --------------------------------------------

// Category names the five evaluation dimensions.
type Category string

const (
	CategoryOpening           Category = "opening"
	CategoryDiscovery         Category = "discovery"
	CategoryObjectionHandling Category = "objection_handling"
	CategoryClarity           Category = "clarity"
	CategoryClosing           Category = "closing"
)

// CategoryFeedback carries the qualitative side of one category score.
type CategoryFeedback struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// CategoryScore is one 0-10 dimension with its explainability trail.
type CategoryScore struct {
	Category Category         `json:"category"`
	Score    float64          `json:"score"`
	MaxScore float64          `json:"max_score"`
	Signals  []string         `json:"signals"`
	Feedback CategoryFeedback `json:"feedback"`
}

// ScoreMetadata summarizes the raw counts behind a CallScore.
type ScoreMetadata struct {
	TurnCount      int `json:"turn_count"`
	RepWordCount   int `json:"rep_word_count"`
	ObjectionCount int `json:"objection_count"`
	QuestionCount  int `json:"question_count"`
}

// CallScore is the full scored result for one call. One row per call;
// re-scoring overwrites via upsert.
type CallScore struct {
	CallID         string          `json:"call_id"`
	OverallScore   float64         `json:"overall_score"`
	CategoryScores []CategoryScore `json:"category_scores"`
	Metadata       ScoreMetadata   `json:"metadata"`
	CreatedAt      time.Time       `json:"created_at"`
}

// --------------------------------------------
// Voice analytics
// --------------------------------------------

// EnergyLevel is a coarse text-derived energy estimate.
type EnergyLevel string

const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
)

// VoiceAnalytics holds duration- and text-derived speech metrics. These are
// approximations, not real audio-signal measurements.
type VoiceAnalytics struct {
	CallID            string      `json:"call_id"`
	WordsPerMinute    float64     `json:"words_per_minute"`
	PaceVariability   float64     `json:"pace_variability"`
	FillerCount       int         `json:"filler_count"`
	FillerRate        float64     `json:"filler_rate"`
	TurnCount         int         `json:"turn_count"`
	AvgTurnWords      float64     `json:"avg_turn_words"`
	LongestTurnWords  int         `json:"longest_turn_words"`
	EnergyLevel       EnergyLevel `json:"energy_level"`
	ToneConsistency   float64     `json:"tone_consistency"`
	RepTalkSeconds    float64     `json:"rep_talk_seconds"`
	ProspectTalkSecs  float64     `json:"prospect_talk_seconds"`
	ListeningRatio    float64     `json:"listening_ratio"`
	QuestionCount     int         `json:"question_count"`
	QuestionQuality   float64     `json:"question_quality"`
	CreatedAt         time.Time   `json:"created_at"`
}

// --------------------------------------------
// Coaching analysis
// --------------------------------------------

// SpecificExample is one quoted moment with the coach's read on it.
type SpecificExample struct {
	Quote    string `json:"quote"`
	Analysis string `json:"analysis"`
	Rating   string `json:"rating"`
}

// RecommendedPractice is the drill plan suggested by the coach.
type RecommendedPractice struct {
	FocusArea string   `json:"focus_area"`
	Reason    string   `json:"reason"`
	Scenarios []string `json:"scenarios"`
	Exercises []string `json:"exercises"`
}

// AIMetadata records provenance of a generated analysis.
type AIMetadata struct {
	Model            string  `json:"model"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
	ConfidenceScore  float64 `json:"confidence_score"`
	TokensUsed       int     `json:"tokens_used"`
}

// CoachingAnalysis is the structured qualitative feedback for one call.
// Fields are never nil after normalization: missing model output keys
// default to empty arrays/objects.
type CoachingAnalysis struct {
	Strengths           []string            `json:"strengths"`
	ImprovementAreas    []string            `json:"improvement_areas"`
	SpecificExamples    []SpecificExample   `json:"specific_examples"`
	RecommendedPractice RecommendedPractice `json:"recommended_practice"`
	SuggestedPhrases    []string            `json:"suggested_phrases"`
	CategoryFeedback    map[string]string   `json:"category_feedback"`
	AIMetadata          AIMetadata          `json:"ai_metadata"`
}

// --------------------------------------------
// Objection library (read-only here)
// --------------------------------------------

// ObjectionLibraryEntry is a canonical objection owned by out-of-scope
// tooling; this core only reads and matches against it.
type ObjectionLibraryEntry struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Category           ObjectionCategory `json:"category"`
	Industry           string            `json:"industry"`
	Description        string            `json:"description"`
	HandlingStrategies []string          `json:"handling_strategies"`
}
