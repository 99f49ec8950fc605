package parser

import (
	"regexp"

	"call-coach-go/internal/types"
)

// Classification here is regex-table driven: every detector is an ordered
// list of (label, matcher) pairs evaluated top to bottom, and the first
// match wins. That priority order is policy, not an iteration accident.

type pattern struct {
	label string
	re    *regexp.Regexp
}

var greetingPatterns = []pattern{
	{"hi", regexp.MustCompile(`(?i)\b(hi|hey|hello)\b`)},
	{"good-part-of-day", regexp.MustCompile(`(?i)\bgood (morning|afternoon|evening)\b`)},
	{"thanks-for-time", regexp.MustCompile(`(?i)\bthanks? (so much )?for (taking|joining|making|your)\b`)},
	{"how-are-you", regexp.MustCompile(`(?i)\bhow (are|is) (you|everything|it going)\b`)},
}

var valuePropPatterns = []pattern{
	{"we-help", regexp.MustCompile(`(?i)\bwe (help|enable|allow|let)\b`)},
	{"our-product", regexp.MustCompile(`(?i)\bour (product|platform|solution|tool|service|software)\b`)},
	{"save-metric", regexp.MustCompile(`(?i)\b(save|saves|saving)\b.*\b(time|money|hours|costs?)\b`)},
	{"improve-metric", regexp.MustCompile(`(?i)\b(increase|improve|boost|reduce|cut|grow)\b.*\b(revenue|sales|productivity|efficiency|costs?|churn)\b`)},
	{"work-with", regexp.MustCompile(`(?i)\bwe work with\b`)},
}

// Open-ended patterns take priority over closed-ended ones when a sentence
// matches both.
var openQuestionPatterns = []pattern{
	{"wh-lead", regexp.MustCompile(`(?i)^(what|why|how|when|where|who|which)\b`)},
	{"tell-me", regexp.MustCompile(`(?i)^(tell me|walk me through|describe|help me understand)\b`)},
}

var closedQuestionPatterns = []pattern{
	{"yes-no-lead", regexp.MustCompile(`(?i)^(do|does|did|is|are|was|were|can|could|would|will|have|has|had|should|shall|may|am)\b`)},
}

// Probing-but-closed shapes used only by voice analytics question scoring.
var discoveryQuestionPatterns = []pattern{
	{"anything-else", regexp.MustCompile(`(?i)\b(anything else|what else)\b`)},
	{"could-you-share", regexp.MustCompile(`(?i)^(could|can|would) you (share|explain|expand|elaborate)\b`)},
}

// Objection categories are tested in this fixed order; a prospect turn
// contributes at most one occurrence, in the first category that matches.
var objectionPatterns = []struct {
	category types.ObjectionCategory
	patterns []pattern
}{
	{types.ObjectionPrice, []pattern{
		{"expensive", regexp.MustCompile(`(?i)\b(too )?(expensive|pricey|costly)\b`)},
		{"cost", regexp.MustCompile(`(?i)\b(cost|price|pricing|budget)\b`)},
		{"afford", regexp.MustCompile(`(?i)\b(can'?t|cannot) afford\b`)},
		{"cheaper", regexp.MustCompile(`(?i)\bcheaper\b`)},
	}},
	{types.ObjectionTime, []pattern{
		{"busy", regexp.MustCompile(`(?i)\b(too busy|no time|don'?t have time|bad time)\b`)},
		{"later", regexp.MustCompile(`(?i)\b(call (me )?back|next (quarter|year)|not right now|circle back)\b`)},
		{"timing", regexp.MustCompile(`(?i)\btiming\b`)},
	}},
	{types.ObjectionAuthority, []pattern{
		{"decision-maker", regexp.MustCompile(`(?i)\b(not (the|my) (decision|call)|decision.?maker)\b`)},
		{"ask-boss", regexp.MustCompile(`(?i)\b(check with|ask|talk to|run (it|this) by) (my|the|our) (boss|manager|team|director|cfo|ceo)\b`)},
		{"approval", regexp.MustCompile(`(?i)\b(approval|sign.?off)\b`)},
	}},
	{types.ObjectionNeed, []pattern{
		{"no-need", regexp.MustCompile(`(?i)\b(don'?t|do not) (need|see the (need|point|value))\b`)},
		{"happy-with", regexp.MustCompile(`(?i)\b(happy|fine|good|all set) with (what|our|the) (we have|current|existing)?\b`)},
		{"already-have", regexp.MustCompile(`(?i)\b(already (have|use|using)|existing (solution|vendor|tool))\b`)},
	}},
	{types.ObjectionTrust, []pattern{
		{"never-heard", regexp.MustCompile(`(?i)\b(never heard of|don'?t know) (you|your company)\b`)},
		{"skeptical", regexp.MustCompile(`(?i)\b(skeptical|not sure i (trust|believe)|sounds too good)\b`)},
		{"proof", regexp.MustCompile(`(?i)\b(references|case stud(y|ies)|proof|guarantee)\b`)},
	}},
}

var ctaPatterns = []pattern{
	{"schedule", regexp.MustCompile(`(?i)\b(schedule|book|set up|put .{0,20}on the calendar)\b`)},
	{"demo-trial", regexp.MustCompile(`(?i)\b(demo|trial|pilot)\b`)},
	{"send-over", regexp.MustCompile(`(?i)\b(send (you|over)|share) (a|the|some)? ?(proposal|contract|pricing|deck|details)\b`)},
	{"next-meeting", regexp.MustCompile(`(?i)\b(meet|call|talk|connect) (again |back )?(next|this) (week|month|monday|tuesday|wednesday|thursday|friday)\b`)},
}

var nextStepsPatterns = []pattern{
	{"next-steps", regexp.MustCompile(`(?i)\bnext steps?\b`)},
	{"follow-up", regexp.MustCompile(`(?i)\b(follow(ing)? up|touch base|circle back)\b`)},
	{"i-will-send", regexp.MustCompile(`(?i)\bi'?ll (send|share|email|forward)\b`)},
	{"invite", regexp.MustCompile(`(?i)\b(calendar invite|meeting invite)\b`)},
}

// fillerRe matches the fixed filler vocabulary on word boundaries.
// Multi-word fillers come first so they win over their single-word prefixes.
var fillerRe = regexp.MustCompile(`(?i)\b(you know|i mean|sort of|kind of|um|uh|er|ah|like|basically|actually|literally)\b`)

// bareAcknowledgments is the closed list of responses that do not count as
// handling an objection regardless of anything else said.
var bareAcknowledgments = map[string]bool{
	"okay":         true,
	"i understand": true,
	"i see":        true,
	"got it":       true,
	"makes sense":  true,
}

func anyMatch(ps []pattern, text string) bool {
	for _, p := range ps {
		if p.re.MatchString(text) {
			return true
		}
	}
	return false
}
