package coaching

import (
	"encoding/json"
	"fmt"
	"strings"

	"call-coach-go/internal/types"
)

func systemPrompt(persona string) string {
	who := "an expert sales coach"
	if persona != "" {
		who = fmt.Sprintf("an expert sales coach reviewing a practice call against a %q prospect persona", persona)
	}
	return fmt.Sprintf(`You are %s. You review practice sales calls and give
specific, encouraging, actionable feedback grounded only in the transcript
and scores you are given. Quote the rep's actual words when citing examples.
Never invent moments that did not happen in the transcript.

Return ONLY valid JSON matching this schema, no commentary, no markdown
fences:
{
  "strengths": [],
  "improvement_areas": [],
  "specific_examples": [{"quote": "", "analysis": "", "rating": ""}],
  "recommended_practice": {"focus_area": "", "reason": "", "scenarios": [], "exercises": []},
  "suggested_phrases": [],
  "category_feedback": {"opening": "", "discovery": "", "objection_handling": "", "clarity": "", "closing": ""},
  "confidence_score": 0.0
}`, who)
}

func userPrompt(entries []types.TranscriptEntry, score types.CallScore) string {
	var transcript strings.Builder
	for _, e := range entries {
		speaker := "REP"
		if e.Speaker() == types.SpeakerProspect {
			speaker = "PROSPECT"
		}
		fmt.Fprintf(&transcript, "%s: %s\n", speaker, e.Text)
	}

	breakdown, _ := json.MarshalIndent(score.CategoryScores, "", "  ")
	meta, _ := json.MarshalIndent(score.Metadata, "", "  ")

	return fmt.Sprintf(`Review this practice sales call.

OVERALL SCORE: %.1f / 10

CATEGORY BREAKDOWN:
%s

CALL METADATA:
%s

TRANSCRIPT:
%s

Ground every piece of feedback in the transcript and the score breakdown.
Return ONLY the JSON object described in the system message.`,
		score.OverallScore, breakdown, meta, transcript.String())
}

// extractJSON finds the first balanced JSON object in a string, stripping
// common markdown fences first. LLMs wrap output in fences often enough
// that this salvage pass is worth it.
func extractJSON(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, fence := range []string{"```json", "```", "`json", "`"} {
		s = strings.ReplaceAll(s, fence, "")
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}
	return ""
}
