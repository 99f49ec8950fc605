// Package voice computes speech-pattern metrics from a transcript and the
// call duration. All metrics are text- and duration-derived approximations;
// nothing here inspects real audio.
package voice

import (
	"math"
	"strings"
	"time"

	"call-coach-go/internal/parser"
	"call-coach-go/internal/types"
)

// Per-speaker talk time is estimated as a fixed 40%/40% share of total
// duration with 20% silence. Per-turn timestamps are ignored even when the
// transcript carries them; timing in the input contract is optional and
// unreliable, so the heuristic split is applied uniformly.
const talkShare = 0.4

// Energy banding thresholds.
const (
	highEnergyWPM      = 160.0
	highEnergyTurnLen  = 30.0
	lowEnergyWPM       = 120.0
	lowEnergyTurnLen   = 15.0
)

// Question-shape weights for the 0-10 quality score.
const (
	openQuestionWeight      = 10.0
	discoveryQuestionWeight = 8.0
	closedQuestionWeight    = 4.0
)

// Analyze derives VoiceAnalytics for one call. Deterministic given the
// fixed heuristics.
func Analyze(callID string, entries []types.TranscriptEntry, duration time.Duration) types.VoiceAnalytics {
	va := types.VoiceAnalytics{CallID: callID, EnergyLevel: types.EnergyMedium}

	var repTurnWords []int
	repWords, prospectWords := 0, 0
	for _, e := range entries {
		w := len(strings.Fields(e.Text))
		if e.Speaker() == types.SpeakerRep {
			repTurnWords = append(repTurnWords, w)
			repWords += w
		} else {
			prospectWords += w
		}
	}

	va.TurnCount = len(repTurnWords)
	va.RepTalkSeconds = duration.Seconds() * talkShare
	va.ProspectTalkSecs = duration.Seconds() * talkShare

	if repWords > 0 {
		va.ListeningRatio = float64(prospectWords) / float64(repWords)
		va.FillerCount = countFillers(entries)
		va.FillerRate = float64(va.FillerCount) / float64(repWords)
	}

	if va.TurnCount > 0 {
		longest := 0
		for _, w := range repTurnWords {
			if w > longest {
				longest = w
			}
		}
		va.LongestTurnWords = longest
		va.AvgTurnWords = float64(repWords) / float64(va.TurnCount)
	}

	if talkMinutes := va.RepTalkSeconds / 60; talkMinutes > 0 {
		va.WordsPerMinute = float64(repWords) / talkMinutes
		va.PaceVariability = paceVariability(repTurnWords, va.RepTalkSeconds)
	}

	va.EnergyLevel = energyLevel(va.WordsPerMinute, va.AvgTurnWords)
	va.ToneConsistency = toneConsistency(repTurnWords)
	va.QuestionCount, va.QuestionQuality = questionMetrics(entries)

	return va
}

// paceVariability is the standard deviation of per-turn estimated WPM,
// with each turn assigned an equal slice of the estimated talk time.
func paceVariability(turnWords []int, talkSeconds float64) float64 {
	if len(turnWords) < 2 || talkSeconds <= 0 {
		return 0
	}
	perTurnMinutes := talkSeconds / float64(len(turnWords)) / 60
	wpms := make([]float64, len(turnWords))
	for i, w := range turnWords {
		wpms[i] = float64(w) / perTurnMinutes
	}
	return stddev(wpms)
}

func energyLevel(wpm, avgTurnWords float64) types.EnergyLevel {
	switch {
	case wpm > highEnergyWPM && avgTurnWords > highEnergyTurnLen:
		return types.EnergyHigh
	case wpm < lowEnergyWPM || avgTurnWords < lowEnergyTurnLen:
		return types.EnergyLow
	default:
		return types.EnergyMedium
	}
}

// toneConsistency maps the coefficient of variation of turn lengths onto
// [0,1]: perfectly even turns score 1, erratic turns approach 0.
func toneConsistency(turnWords []int) float64 {
	if len(turnWords) == 0 {
		return 0
	}
	vals := make([]float64, len(turnWords))
	var sum float64
	for i, w := range turnWords {
		vals[i] = float64(w)
		sum += vals[i]
	}
	mean := sum / float64(len(vals))
	if mean == 0 {
		return 0
	}
	cv := stddev(vals) / mean
	return 1 - math.Min(math.Max(cv, 0), 1)
}

// questionMetrics counts rep question sentences and scores their mix:
// open questions weigh 10, discovery-probing shapes 8, closed 4, averaged
// onto the 0-10 quality scale.
func questionMetrics(entries []types.TranscriptEntry) (int, float64) {
	count := 0
	var weightSum float64
	for _, e := range entries {
		if e.Speaker() != types.SpeakerRep {
			continue
		}
		for _, s := range parser.Sentences(e.Text) {
			kind, ok := parser.QuestionShape(s)
			if !ok {
				continue
			}
			count++
			switch kind {
			case parser.QuestionOpen:
				weightSum += openQuestionWeight
			case parser.QuestionDiscovery:
				weightSum += discoveryQuestionWeight
			default:
				weightSum += closedQuestionWeight
			}
		}
	}
	if count == 0 {
		return 0, 0
	}
	return count, weightSum / float64(count)
}

func countFillers(entries []types.TranscriptEntry) int {
	n := 0
	for _, e := range entries {
		if e.Speaker() == types.SpeakerRep {
			n += parser.CountFillers(e.Text)
		}
	}
	return n
}

func stddev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	var sq float64
	for _, v := range vals {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(vals)))
}
