// Package scoring converts a transcript signal bundle into the five
// category scores and the weighted overall score. Every point awarded or
// deducted leaves a human-readable entry in the category's signal trail so
// the score stays explainable.
package scoring

import (
	"math"
	"time"

	"call-coach-go/internal/types"
)

const maxCategoryScore = 10.0

// Category weights for the overall score. Objection handling and the two
// funnel-critical stages carry the most weight.
var categoryWeights = map[types.Category]float64{
	types.CategoryOpening:           1.0,
	types.CategoryDiscovery:         1.5,
	types.CategoryObjectionHandling: 2.0,
	types.CategoryClarity:           1.0,
	types.CategoryClosing:           1.5,
}

// Short-call guard thresholds. Calls below either are not scored at all so
// aborted sessions never earn points.
const (
	minScorableDuration = 30 * time.Second
	minScorableTurns    = 4
)

const tooShortSignal = "call too short to score"

// ScoreCall produces the CallScore for one call. It is pure: the same
// signals and duration always yield the same result.
func ScoreCall(callID string, sig types.TranscriptSignals, duration time.Duration) types.CallScore {
	score := types.CallScore{
		CallID: callID,
		Metadata: types.ScoreMetadata{
			TurnCount:      sig.RepTurnCount + sig.ProspectTurnCount,
			RepWordCount:   sig.RepWordCount,
			ObjectionCount: len(sig.Objections),
			QuestionCount:  len(sig.Questions),
		},
	}

	if duration < minScorableDuration || score.Metadata.TurnCount < minScorableTurns {
		for _, cat := range orderedCategories() {
			score.CategoryScores = append(score.CategoryScores, zeroed(cat))
		}
		return score
	}

	score.CategoryScores = []types.CategoryScore{
		scoreOpening(sig),
		scoreDiscovery(sig),
		scoreObjectionHandling(sig),
		scoreClarity(sig),
		scoreClosing(sig),
	}
	score.OverallScore = weightedOverall(score.CategoryScores)
	return score
}

func orderedCategories() []types.Category {
	return []types.Category{
		types.CategoryOpening,
		types.CategoryDiscovery,
		types.CategoryObjectionHandling,
		types.CategoryClarity,
		types.CategoryClosing,
	}
}

func zeroed(cat types.Category) types.CategoryScore {
	return types.CategoryScore{
		Category: cat,
		MaxScore: maxCategoryScore,
		Signals:  []string{tooShortSignal},
		Feedback: types.CategoryFeedback{
			Strengths:    []string{},
			Improvements: []string{"complete a full practice call to receive a score"},
		},
	}
}

func scoreOpening(sig types.TranscriptSignals) types.CategoryScore {
	b := newBuilder(types.CategoryOpening)

	if sig.HasGreeting {
		b.add(2, "greeting detected")
		b.strength("opened with a proper greeting")
	} else {
		b.note("no greeting detected")
		b.improve("start with a clear greeting")
	}

	if sig.HasValueProp {
		b.add(3, "value proposition detected")
		b.strength("stated a value proposition early")
	} else {
		b.note("no value proposition detected")
		b.improve("lead with what your product does for the prospect")
	}

	switch wc := sig.OpeningWordCount; {
	case wc >= 30 && wc <= 60:
		b.add(5, "opening length ideal")
		b.strength("opening was concise and complete")
	case wc >= 20 && wc <= 80:
		b.add(3, "opening length acceptable")
	case wc < 20:
		b.add(1, "opening length outside acceptable range")
		b.improve("opening was too brief to establish context")
	default:
		b.add(1, "opening length outside acceptable range")
		b.improve("opening was too verbose; tighten it up")
	}

	return b.done()
}

func scoreDiscovery(sig types.TranscriptSignals) types.CategoryScore {
	b := newBuilder(types.CategoryDiscovery)

	switch n := len(sig.Questions); {
	case n >= 5:
		b.add(5, "asked 5+ questions")
		b.strength("strong question volume")
	case n >= 3:
		b.add(3, "asked 3-4 questions")
	case n >= 1:
		b.add(1, "asked only 1-2 questions")
		b.improve("ask more discovery questions")
	default:
		b.note("no questions asked")
		b.improve("discovery requires asking questions")
	}

	switch sig.QuestionQuality {
	case types.QuestionQualityGood:
		b.add(3, "question quality good (mostly open-ended)")
		b.strength("favored open-ended questions")
	case types.QuestionQualityWeak:
		b.add(1, "question quality weak (mostly closed-ended)")
		b.improve("reframe closed questions as open-ended ones")
	default:
		b.note("question quality: none")
	}

	switch r := sig.ListeningRatio; {
	case r >= 0.4 && r <= 0.7:
		b.add(2, "listening ratio excellent")
		b.strength("healthy talk-time balance")
	case r < 0.4:
		b.add(1, "listening ratio low: prospect talked too much")
		b.improve("guide the conversation instead of ceding it")
	default:
		b.note("listening ratio high: rep talked too much")
		b.improve("talk less, let the prospect speak")
	}

	return b.done()
}

func scoreObjectionHandling(sig types.TranscriptSignals) types.CategoryScore {
	b := newBuilder(types.CategoryObjectionHandling)

	// No objections is neutral: neither penalized nor rewarded, so the
	// category gets a fixed 7 with no improvement feedback.
	if len(sig.Objections) == 0 {
		b.add(7, "no objections encountered")
		return b.done()
	}

	handled := 0
	cats := map[types.ObjectionCategory]bool{}
	for _, o := range sig.Objections {
		if o.Handled {
			handled++
		}
		cats[o.Category] = true
	}
	rate := float64(handled) / float64(len(sig.Objections))

	switch {
	case rate >= 0.8:
		b.add(7, "handled most objections substantively")
		b.strength("responded to objections with substance")
	case rate >= 0.5:
		b.add(4, "handled some objections substantively")
		b.improve("answer every objection with a substantive response")
	default:
		b.add(1, "most objections went unhandled")
		b.improve("acknowledging an objection is not handling it")
	}

	switch n := len(cats); {
	case n >= 3:
		b.add(3, "navigated 3+ objection categories")
	case n == 2:
		b.add(2, "navigated 2 objection categories")
	default:
		b.add(1, "single objection category encountered")
	}

	return b.done()
}

// scoreClarity starts at 10 and only deducts.
func scoreClarity(sig types.TranscriptSignals) types.CategoryScore {
	b := newBuilder(types.CategoryClarity)
	b.add(maxCategoryScore, "clarity starts at 10")

	fillerRate := 0.0
	if sig.RepWordCount > 0 {
		fillerRate = float64(sig.FillerCount) / float64(sig.RepWordCount)
	}
	switch {
	case fillerRate <= 0.02:
		b.note("filler rate minimal")
		b.strength("clean delivery with few filler words")
	case fillerRate <= 0.05:
		b.deduct(1, "noticeable filler words")
	case fillerRate <= 0.10:
		b.deduct(2, "frequent filler words")
		b.improve("reduce filler words (um, uh, like)")
	default:
		b.deduct(4, "excessive filler words")
		b.improve("reduce filler words (um, uh, like)")
	}

	switch avg := sig.AvgRepTurnWords; {
	case avg <= 40:
		b.note("average turn length good")
	case avg <= 60:
		b.deduct(1, "average turn length long")
	default:
		b.deduct(3, "average turn length excessive")
		b.improve("keep answers shorter; pause for the prospect")
	}

	switch longest := sig.MaxRepTurnWords; {
	case longest <= 80:
		b.note("longest turn within bounds")
	case longest <= 120:
		b.deduct(1, "one or more long monologues")
	default:
		b.deduct(3, "extended monologue detected")
		b.improve("break up long monologues with check-in questions")
	}

	return b.done()
}

func scoreClosing(sig types.TranscriptSignals) types.CategoryScore {
	b := newBuilder(types.CategoryClosing)

	if sig.HasCallToAction {
		b.add(5, "call to action present")
		b.strength("closed with a clear call to action")
	} else {
		b.note("no call to action detected")
		b.improve("always close with a concrete ask")
	}

	if sig.HasNextSteps {
		b.add(3, "next steps defined")
		b.strength("defined concrete next steps")
	} else {
		b.note("no next steps detected")
		b.improve("agree on next steps before hanging up")
	}

	switch wc := sig.ClosingWordCount; {
	case wc >= 20 && wc <= 50:
		b.add(2, "closing length ideal")
	case wc < 20:
		b.add(1, "closing too brief")
		b.improve("closing was too brief")
	default:
		b.note("closing too long")
		b.improve("closing ran too long; end decisively")
	}

	return b.done()
}

// weightedOverall combines category scores using the fixed weights and
// rounds to one decimal.
func weightedOverall(scores []types.CategoryScore) float64 {
	var sum, weightSum float64
	for _, cs := range scores {
		w := categoryWeights[cs.Category]
		sum += cs.Score * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return math.Round(sum/weightSum*10) / 10
}
