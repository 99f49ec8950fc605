package parser

import "strings"

// QuestionKind distinguishes the question shapes used by voice analytics,
// which weighs open, discovery-probing and closed questions differently.
type QuestionKind int

const (
	QuestionClosed QuestionKind = iota
	QuestionDiscovery
	QuestionOpen
)

// Sentences splits a turn into sentences the same way signal extraction
// does, so both consumers see the same units.
func Sentences(text string) []string {
	return splitSentences(text)
}

// QuestionShape classifies a sentence against the question pattern tables.
// Priority: open, then discovery-probing, then closed.
func QuestionShape(sentence string) (QuestionKind, bool) {
	s := strings.TrimSpace(sentence)
	if s == "" {
		return QuestionClosed, false
	}
	if anyMatch(openQuestionPatterns, s) {
		return QuestionOpen, true
	}
	if anyMatch(discoveryQuestionPatterns, s) {
		return QuestionDiscovery, true
	}
	if strings.HasSuffix(s, "?") || anyMatch(closedQuestionPatterns, s) {
		return QuestionClosed, true
	}
	return QuestionClosed, false
}

// CountFillers counts filler-word occurrences (not unique terms) in a
// piece of rep text using the fixed vocabulary.
func CountFillers(text string) int {
	return len(fillerRe.FindAllString(text, -1))
}
