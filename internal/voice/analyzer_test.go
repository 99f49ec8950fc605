package voice_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"call-coach-go/internal/types"
	"call-coach-go/internal/voice"
)

func repWords(n int) types.TranscriptEntry {
	return types.TranscriptEntry{Role: "user", Text: strings.TrimSpace(strings.Repeat("word ", n))}
}

func prospectWords(n int) types.TranscriptEntry {
	return types.TranscriptEntry{Role: "agent", Text: strings.TrimSpace(strings.Repeat("reply ", n))}
}

func TestAnalyzeEmptyTranscript(t *testing.T) {
	va := voice.Analyze("call-1", nil, 2*time.Minute)

	assert.Equal(t, "call-1", va.CallID)
	assert.Zero(t, va.TurnCount)
	assert.Zero(t, va.WordsPerMinute)
	assert.Zero(t, va.FillerCount)
	assert.Zero(t, va.QuestionCount)
	assert.Equal(t, types.EnergyLow, va.EnergyLevel)
}

func TestAnalyzeTalkTimeSplit(t *testing.T) {
	entries := []types.TranscriptEntry{repWords(20), prospectWords(10)}
	va := voice.Analyze("call-2", entries, 5*time.Minute)

	// 40% of the call each, regardless of word counts.
	assert.InDelta(t, 120.0, va.RepTalkSeconds, 1e-9)
	assert.InDelta(t, 120.0, va.ProspectTalkSecs, 1e-9)
}

func TestAnalyzeSlowEvenCall(t *testing.T) {
	entries := []types.TranscriptEntry{
		repWords(20),
		prospectWords(30),
		repWords(20),
		repWords(20),
	}
	va := voice.Analyze("call-3", entries, 5*time.Minute)

	// 60 rep words over 2 estimated talk minutes.
	assert.InDelta(t, 30.0, va.WordsPerMinute, 1e-9)
	assert.Equal(t, types.EnergyLow, va.EnergyLevel)
	assert.InDelta(t, 0.5, va.ListeningRatio, 1e-9)
	assert.Equal(t, 3, va.TurnCount)
	assert.Equal(t, 20, va.LongestTurnWords)
	assert.InDelta(t, 20.0, va.AvgTurnWords, 1e-9)

	// Identical turn lengths: no pace spread, perfectly consistent tone.
	assert.InDelta(t, 0.0, va.PaceVariability, 1e-9)
	assert.InDelta(t, 1.0, va.ToneConsistency, 1e-9)
}

func TestAnalyzeHighEnergy(t *testing.T) {
	entries := []types.TranscriptEntry{repWords(40), repWords(40)}
	va := voice.Analyze("call-4", entries, time.Minute)

	// 80 words over 0.4 estimated talk minutes is 200 WPM.
	assert.InDelta(t, 200.0, va.WordsPerMinute, 1e-9)
	assert.Equal(t, types.EnergyHigh, va.EnergyLevel)
}

func TestAnalyzeUnevenTurnsLowerToneConsistency(t *testing.T) {
	even := voice.Analyze("call-5", []types.TranscriptEntry{
		repWords(20), repWords(20), repWords(20),
	}, 5*time.Minute)
	uneven := voice.Analyze("call-5", []types.TranscriptEntry{
		repWords(2), repWords(55), repWords(3),
	}, 5*time.Minute)

	assert.Greater(t, even.ToneConsistency, uneven.ToneConsistency)
	assert.Greater(t, uneven.PaceVariability, even.PaceVariability)
}

func TestAnalyzeQuestionMetrics(t *testing.T) {
	entries := []types.TranscriptEntry{
		{Role: "user", Text: "What is slowing your team down? Do you track that today?"},
		{Role: "agent", Text: "Is this the right plan for us?"},
	}
	va := voice.Analyze("call-6", entries, 5*time.Minute)

	// Prospect questions never count.
	assert.Equal(t, 2, va.QuestionCount)
	// One open (10) and one closed (4) average to 7.
	assert.InDelta(t, 7.0, va.QuestionQuality, 1e-9)
}

func TestAnalyzeAllOpenQuestionsScoreTen(t *testing.T) {
	entries := []types.TranscriptEntry{
		{Role: "user", Text: "What matters most to you here? How did you land on that?"},
	}
	va := voice.Analyze("call-7", entries, 5*time.Minute)

	assert.Equal(t, 2, va.QuestionCount)
	assert.InDelta(t, 10.0, va.QuestionQuality, 1e-9)
}

func TestAnalyzeFillerRate(t *testing.T) {
	entries := []types.TranscriptEntry{
		{Role: "user", Text: "Um, we basically automate the, um, boring parts."},
		{Role: "agent", Text: "Um, okay."},
	}
	va := voice.Analyze("call-8", entries, 5*time.Minute)

	// Only rep fillers count: um, basically, um.
	assert.Equal(t, 3, va.FillerCount)
	assert.InDelta(t, 3.0/8.0, va.FillerRate, 1e-9)
}

func TestAnalyzeDeterministic(t *testing.T) {
	entries := []types.TranscriptEntry{
		repWords(12),
		prospectWords(9),
		{Role: "user", Text: "What would success look like for you?"},
	}
	first := voice.Analyze("call-9", entries, 3*time.Minute)
	second := voice.Analyze("call-9", entries, 3*time.Minute)
	assert.Equal(t, first, second)
}
