package pipeline_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-coach-go/internal/coaching"
	"call-coach-go/internal/health"
	"call-coach-go/internal/metrics"
	"call-coach-go/internal/objection"
	"call-coach-go/internal/pipeline"
	"call-coach-go/internal/resilience"
	"call-coach-go/internal/store"
	"call-coach-go/internal/types"
)

func testLogger() *logrus.Entry {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return logrus.NewEntry(base)
}

func newTestPipeline(t *testing.T, coachConfig coaching.Config, breakerConfig resilience.Config) (*pipeline.Pipeline, *store.Store) {
	t.Helper()
	log := testLogger()

	st, err := store.Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	coach := coaching.NewAnalyzer(coachConfig, log)
	rm := resilience.NewManager(log, breakerConfig)
	monitor := health.NewMonitor(st, nil, log)
	m := metrics.New(prometheus.NewRegistry())
	matcher := objection.NewMatcher(st, log)

	return pipeline.New(st, matcher, coach, rm, monitor, m, log), st
}

func sampleTranscript() []types.TranscriptEntry {
	return []types.TranscriptEntry{
		{Role: "user", Text: "Hi there, thanks for taking the call. We help teams save 10 hours a week."},
		{Role: "agent", Text: "Alright, I have a few minutes."},
		{Role: "user", Text: "What does your current reporting process look like?"},
		{Role: "agent", Text: "Honestly it sounds too expensive for a team our size."},
		{Role: "user", Text: "I hear you on budget, and most teams find the time savings cover the cost within the first quarter of usage."},
		{Role: "agent", Text: "That could work."},
		{Role: "user", Text: "Let's schedule a demo next week and I'll send over the proposal so we can agree on next steps."},
	}
}

const llmResponse = `{
	"choices": [{"message": {"content": "{\"strengths\": [\"good opener\"], \"improvement_areas\": [], \"confidence_score\": 0.9}"}}],
	"model": "gpt-4o-mini",
	"usage": {"total_tokens": 150}
}`

func TestAnalyzeCallPersistsEverything(t *testing.T) {
	p, st := newTestPipeline(t, coaching.Config{}, resilience.DefaultConfig())
	ctx := context.Background()

	res, err := p.AnalyzeCall(ctx, pipeline.AnalyzeRequest{
		CallID:          "call-1",
		DurationSeconds: 300,
		Transcript:      sampleTranscript(),
	})
	require.NoError(t, err)

	assert.Equal(t, "call-1", res.CallID)
	assert.Greater(t, res.Score.OverallScore, 0.0)
	assert.NotEmpty(t, res.Signals.Questions)
	require.Len(t, res.Signals.Objections, 1)
	assert.Equal(t, types.ObjectionPrice, res.Signals.Objections[0].Category)

	stored, err := st.GetCallScore(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, res.Score.OverallScore, stored.OverallScore)

	va, err := st.GetVoiceAnalytics(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, "call-1", va.CallID)
}

func TestAnalyzeCallRerunOverwrites(t *testing.T) {
	p, st := newTestPipeline(t, coaching.Config{}, resilience.DefaultConfig())
	ctx := context.Background()

	req := pipeline.AnalyzeRequest{CallID: "call-1", DurationSeconds: 300, Transcript: sampleTranscript()}
	_, err := p.AnalyzeCall(ctx, req)
	require.NoError(t, err)
	_, err = p.AnalyzeCall(ctx, req)
	require.NoError(t, err)

	scores, err := st.ListCallScores(ctx)
	require.NoError(t, err)
	assert.Len(t, scores, 1)

	// Objection enrichment stays idempotent across reruns.
	n, err := st.CountObjectionOccurrences(ctx, "call-1")
	require.NoError(t, err)
	assert.LessOrEqual(t, n, 1)
}

func TestAnalyzeCallShortCall(t *testing.T) {
	p, _ := newTestPipeline(t, coaching.Config{}, resilience.DefaultConfig())

	res, err := p.AnalyzeCall(context.Background(), pipeline.AnalyzeRequest{
		CallID:          "call-short",
		DurationSeconds: 5,
		Transcript:      sampleTranscript(),
	})
	require.NoError(t, err)
	assert.Zero(t, res.Score.OverallScore)
}

func TestCoachUnconfiguredFailsFast(t *testing.T) {
	p, _ := newTestPipeline(t, coaching.Config{}, resilience.DefaultConfig())

	_, err := p.Coach(context.Background(), "call-1", sampleTranscript(), "")
	require.ErrorIs(t, err, coaching.ErrNotConfigured)

	reason, ok := pipeline.Unavailable(err)
	assert.True(t, ok)
	assert.Equal(t, "coaching is not configured", reason)
}

func TestCoachUnscoredCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, llmResponse)
	}))
	defer srv.Close()

	p, _ := newTestPipeline(t, coaching.Config{GatewayURL: srv.URL, APIKey: "secret-key"}, resilience.DefaultConfig())

	_, err := p.Coach(context.Background(), "never-analyzed", sampleTranscript(), "")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, ok := pipeline.Unavailable(err)
	assert.False(t, ok)
}

func TestCoachSuccessPersistsAnalysis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, llmResponse)
	}))
	defer srv.Close()

	p, st := newTestPipeline(t, coaching.Config{GatewayURL: srv.URL, APIKey: "secret-key"}, resilience.DefaultConfig())
	ctx := context.Background()

	_, err := p.AnalyzeCall(ctx, pipeline.AnalyzeRequest{CallID: "call-1", DurationSeconds: 300, Transcript: sampleTranscript()})
	require.NoError(t, err)

	analysis, err := p.Coach(ctx, "call-1", sampleTranscript(), "skeptical CFO")
	require.NoError(t, err)
	assert.Equal(t, []string{"good opener"}, analysis.Strengths)
	assert.Equal(t, "gpt-4o-mini", analysis.AIMetadata.Model)

	stored, err := st.GetCoachingAnalysis(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, analysis.Strengths, stored.Strengths)
}

func TestCoachBreakerOpensAfterFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p, _ := newTestPipeline(t,
		coaching.Config{GatewayURL: srv.URL, APIKey: "bad-credential", MaxRetry: time.Second},
		resilience.Config{FailureThreshold: 1, ResetTimeout: time.Minute})
	ctx := context.Background()

	_, err := p.AnalyzeCall(ctx, pipeline.AnalyzeRequest{CallID: "call-1", DurationSeconds: 300, Transcript: sampleTranscript()})
	require.NoError(t, err)

	// First attempt hits the gateway and fails, opening the breaker.
	_, err = p.Coach(ctx, "call-1", sampleTranscript(), "")
	require.Error(t, err)
	_, ok := pipeline.Unavailable(err)
	assert.False(t, ok)

	// Second attempt is rejected by the open breaker without a network call.
	_, err = p.Coach(ctx, "call-1", sampleTranscript(), "")
	require.Error(t, err)
	assert.True(t, resilience.IsCircuitOpen(err))

	reason, ok := pipeline.Unavailable(err)
	assert.True(t, ok)
	assert.Equal(t, "coaching is temporarily unavailable", reason)
}

func TestUnavailableIgnoresOtherErrors(t *testing.T) {
	_, ok := pipeline.Unavailable(errors.New("boom"))
	assert.False(t, ok)
}
