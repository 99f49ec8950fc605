// Package parser turns a raw call transcript into the deterministic signal
// bundle consumed by scoring and objection matching. Parsing is a pure
// function of the transcript: no clock, no randomness, no I/O, and it never
// fails — degenerate input yields a zeroed bundle.
package parser

import (
	"strings"

	"call-coach-go/internal/types"
)

const (
	// Opening and closing windows are the first / last rep turns considered
	// for greeting, value-prop, CTA and next-step detection. On short calls
	// the windows may overlap or be empty.
	windowTurns = 3

	// minHandledResponseWords is the floor for a rep response to count as
	// actually handling an objection.
	minHandledResponseWords = 15

	// goodOpenRatio is the share of open-ended questions required for the
	// "good" quality label.
	goodOpenRatio = 0.6
)

// Parse derives TranscriptSignals from an ordered transcript.
func Parse(entries []types.TranscriptEntry) types.TranscriptSignals {
	sig := types.TranscriptSignals{QuestionQuality: types.QuestionQualityNone}
	if len(entries) == 0 {
		return sig
	}

	var repTurns, prospectTurns []types.TranscriptEntry
	for _, e := range entries {
		if e.Speaker() == types.SpeakerRep {
			repTurns = append(repTurns, e)
		} else {
			prospectTurns = append(prospectTurns, e)
		}
	}

	sig.RepTurnCount = len(repTurns)
	sig.ProspectTurnCount = len(prospectTurns)

	// Opening / closing windows.
	opening := repTurns[:min(windowTurns, len(repTurns))]
	closing := repTurns[max(0, len(repTurns)-windowTurns):]
	sig.OpeningText = joinTurns(opening)
	sig.ClosingText = joinTurns(closing)
	sig.OpeningWordCount = wordCount(sig.OpeningText)
	sig.ClosingWordCount = wordCount(sig.ClosingText)

	sig.HasGreeting = anyMatch(greetingPatterns, sig.OpeningText)
	sig.HasValueProp = anyMatch(valuePropPatterns, sig.OpeningText)
	sig.HasCallToAction = anyMatch(ctaPatterns, sig.ClosingText)
	sig.HasNextSteps = anyMatch(nextStepsPatterns, sig.ClosingText)

	// Questions, fillers and turn-length stats over rep turns.
	maxWords := 0
	totalRepWords := 0
	for _, t := range repTurns {
		w := wordCount(t.Text)
		totalRepWords += w
		if w > maxWords {
			maxWords = w
		}
		sig.FillerCount += len(fillerRe.FindAllString(t.Text, -1))
		for _, s := range splitSentences(t.Text) {
			if q, isQuestion := classifyQuestion(s); isQuestion {
				sig.Questions = append(sig.Questions, q)
			}
		}
	}
	sig.RepWordCount = totalRepWords
	sig.MaxRepTurnWords = maxWords
	if len(repTurns) > 0 {
		sig.AvgRepTurnWords = float64(totalRepWords) / float64(len(repTurns))
	}
	sig.QuestionQuality = questionQuality(sig.Questions)

	for _, t := range prospectTurns {
		sig.ProspectWordCount += wordCount(t.Text)
	}
	if totalRepWords > 0 {
		sig.ListeningRatio = float64(sig.ProspectWordCount) / float64(totalRepWords)
	}

	sig.Objections = detectObjections(entries)

	return sig
}

// classifyQuestion reports whether a sentence is a question and, if so,
// whether it is open-ended. Open-class patterns take priority when a
// sentence matches both open and closed shapes.
func classifyQuestion(sentence string) (types.ExtractedQuestion, bool) {
	s := strings.TrimSpace(sentence)
	if s == "" {
		return types.ExtractedQuestion{}, false
	}
	if anyMatch(openQuestionPatterns, s) {
		return types.ExtractedQuestion{Text: s, Open: true}, true
	}
	if strings.HasSuffix(s, "?") || anyMatch(closedQuestionPatterns, s) {
		return types.ExtractedQuestion{Text: s, Open: false}, true
	}
	return types.ExtractedQuestion{}, false
}

func questionQuality(questions []types.ExtractedQuestion) types.QuestionQuality {
	if len(questions) == 0 {
		return types.QuestionQualityNone
	}
	open := 0
	for _, q := range questions {
		if q.Open {
			open++
		}
	}
	if float64(open)/float64(len(questions)) >= goodOpenRatio {
		return types.QuestionQualityGood
	}
	return types.QuestionQualityWeak
}

// detectObjections walks prospect turns in transcript order. Categories are
// tested in the fixed order declared in objectionPatterns and the first
// matching category wins, so a turn contributes at most one occurrence.
func detectObjections(entries []types.TranscriptEntry) []types.ObjectionOccurrence {
	var out []types.ObjectionOccurrence
	for i, e := range entries {
		if e.Speaker() != types.SpeakerProspect {
			continue
		}
		cat, ok := matchObjectionCategory(e.Text)
		if !ok {
			continue
		}
		occ := types.ObjectionOccurrence{ProspectText: e.Text, Category: cat}
		if resp, found := nextRepTurn(entries, i+1); found {
			occ.RepResponse = resp
			occ.Handled = isHandled(resp)
		}
		out = append(out, occ)
	}
	return out
}

func matchObjectionCategory(text string) (types.ObjectionCategory, bool) {
	for _, group := range objectionPatterns {
		if anyMatch(group.patterns, text) {
			return group.category, true
		}
	}
	return "", false
}

func nextRepTurn(entries []types.TranscriptEntry, from int) (string, bool) {
	for i := from; i < len(entries); i++ {
		if entries[i].Speaker() == types.SpeakerRep {
			return entries[i].Text, true
		}
	}
	return "", false
}

// isHandled requires a substantive response: at least
// minHandledResponseWords words and not a bare acknowledgment.
func isHandled(response string) bool {
	norm := strings.ToLower(strings.Trim(strings.TrimSpace(response), ".!,"))
	if bareAcknowledgments[norm] {
		return false
	}
	return wordCount(response) >= minHandledResponseWords
}

// splitSentences breaks a turn on terminal punctuation, keeping the
// terminator attached so question marks survive classification.
func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '?' || r == '!' {
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}

func joinTurns(turns []types.TranscriptEntry) string {
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
