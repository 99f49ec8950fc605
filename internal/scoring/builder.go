package scoring

import "call-coach-go/internal/types"

// scoreBuilder accumulates points, the signal trail and feedback for one
// category, clamping the final score to [0, maxScore].
type scoreBuilder struct {
	cs types.CategoryScore
}

func newBuilder(cat types.Category) *scoreBuilder {
	return &scoreBuilder{cs: types.CategoryScore{
		Category: cat,
		MaxScore: maxCategoryScore,
		Signals:  []string{},
		Feedback: types.CategoryFeedback{Strengths: []string{}, Improvements: []string{}},
	}}
}

func (b *scoreBuilder) add(points float64, signal string) {
	b.cs.Score += points
	b.cs.Signals = append(b.cs.Signals, signal)
}

func (b *scoreBuilder) deduct(points float64, signal string) {
	b.cs.Score -= points
	b.cs.Signals = append(b.cs.Signals, signal)
}

// note records a signal without moving the score.
func (b *scoreBuilder) note(signal string) {
	b.cs.Signals = append(b.cs.Signals, signal)
}

func (b *scoreBuilder) strength(s string) {
	b.cs.Feedback.Strengths = append(b.cs.Feedback.Strengths, s)
}

func (b *scoreBuilder) improve(s string) {
	b.cs.Feedback.Improvements = append(b.cs.Feedback.Improvements, s)
}

func (b *scoreBuilder) done() types.CategoryScore {
	if b.cs.Score < 0 {
		b.cs.Score = 0
	}
	if b.cs.Score > b.cs.MaxScore {
		b.cs.Score = b.cs.MaxScore
	}
	return b.cs
}
