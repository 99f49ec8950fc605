// Package pipeline wires the analysis stages together: parse, score,
// persist, enrich, and on-demand coaching through the circuit breaker.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"call-coach-go/internal/coaching"
	"call-coach-go/internal/health"
	"call-coach-go/internal/metrics"
	"call-coach-go/internal/objection"
	"call-coach-go/internal/parser"
	"call-coach-go/internal/resilience"
	"call-coach-go/internal/scoring"
	"call-coach-go/internal/store"
	"call-coach-go/internal/types"
	"call-coach-go/internal/voice"
)

// llmBreakerName is the circuit breaker guarding the coaching gateway.
const llmBreakerName = "llm-gateway"

// Pipeline owns the per-call analysis flow.
type Pipeline struct {
	store      *store.Store
	matcher    *objection.Matcher
	coach      *coaching.Analyzer
	resilience *resilience.Manager
	monitor    *health.Monitor
	metrics    *metrics.Metrics
	logger     *logrus.Entry
}

// New assembles a Pipeline from its collaborators.
func New(s *store.Store, matcher *objection.Matcher, coach *coaching.Analyzer, rm *resilience.Manager, monitor *health.Monitor, m *metrics.Metrics, logger *logrus.Entry) *Pipeline {
	return &Pipeline{
		store:      s,
		matcher:    matcher,
		coach:      coach,
		resilience: rm,
		monitor:    monitor,
		metrics:    m,
		logger:     logger.WithField("component", "pipeline"),
	}
}

// AnalyzeRequest is one call to analyze.
type AnalyzeRequest struct {
	CallID          string                  `json:"call_id"`
	DurationSeconds float64                 `json:"duration_seconds"`
	Transcript      []types.TranscriptEntry `json:"transcript"`
}

// AnalyzeResult is the synchronous analysis output.
type AnalyzeResult struct {
	CallID     string                  `json:"call_id"`
	Score      types.CallScore         `json:"score"`
	Voice      types.VoiceAnalytics    `json:"voice_analytics"`
	Signals    types.TranscriptSignals `json:"signals"`
	DurationMs int64                   `json:"duration_ms"`
}

// AnalyzeCall runs the deterministic pipeline for one call: parse, score,
// voice analytics, persistence, and objection-library enrichment. Score and
// voice-analytics writes are critical and propagate; objection matching is
// best effort.
func (p *Pipeline) AnalyzeCall(ctx context.Context, req AnalyzeRequest) (AnalyzeResult, error) {
	start := time.Now()
	duration := time.Duration(req.DurationSeconds * float64(time.Second))
	log := p.logger.WithField("call_id", req.CallID)

	sig := parser.Parse(req.Transcript)

	score := scoring.ScoreCall(req.CallID, sig, duration)
	score.CreatedAt = time.Now().UTC()
	if err := p.store.UpsertCallScore(ctx, score); err != nil {
		p.metrics.PersistenceErrors.WithLabelValues("call_scores").Inc()
		p.monitor.RecordError("pipeline", err)
		return AnalyzeResult{}, fmt.Errorf("persist call score: %w", err)
	}

	va := voice.Analyze(req.CallID, req.Transcript, duration)
	va.CreatedAt = score.CreatedAt
	if err := p.store.UpsertVoiceAnalytics(ctx, va); err != nil {
		p.metrics.PersistenceErrors.WithLabelValues("voice_analytics").Inc()
		p.monitor.RecordError("pipeline", err)
		return AnalyzeResult{}, fmt.Errorf("persist voice analytics: %w", err)
	}

	// Enrichment only; never fails the pipeline.
	p.matcher.Match(ctx, req.CallID, sig.Objections)

	p.metrics.CallsAnalyzed.Inc()
	p.metrics.ScoringDuration.Observe(time.Since(start).Seconds())

	log.WithFields(logrus.Fields{
		"overall_score": score.OverallScore,
		"objections":    len(sig.Objections),
		"duration_ms":   time.Since(start).Milliseconds(),
	}).Info("call analyzed")

	return AnalyzeResult{
		CallID:     req.CallID,
		Score:      score,
		Voice:      va,
		Signals:    sig,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

// Coach generates and persists the qualitative coaching analysis for an
// already-scored call. The LLM call runs under the gateway circuit
// breaker; an unconfigured gateway fails fast before any network or
// breaker involvement so callers can render "coaching unavailable".
func (p *Pipeline) Coach(ctx context.Context, callID string, entries []types.TranscriptEntry, persona string) (types.CoachingAnalysis, error) {
	if !p.coach.Configured() {
		p.metrics.CoachingRequests.WithLabelValues("unconfigured").Inc()
		return types.CoachingAnalysis{}, coaching.ErrNotConfigured
	}

	score, err := p.store.GetCallScore(ctx, callID)
	if err != nil {
		return types.CoachingAnalysis{}, err
	}

	var analysis types.CoachingAnalysis
	err = p.resilience.Execute(ctx, llmBreakerName, func(ctx context.Context) error {
		var innerErr error
		analysis, innerErr = p.coach.Analyze(ctx, entries, score, persona)
		return innerErr
	})
	if err != nil {
		if resilience.IsCircuitOpen(err) {
			p.metrics.BreakerRejections.Inc()
			p.metrics.CoachingRequests.WithLabelValues("rejected").Inc()
		} else {
			p.metrics.CoachingRequests.WithLabelValues("error").Inc()
			p.monitor.RecordError("coaching", err)
		}
		return types.CoachingAnalysis{}, err
	}

	if err := p.store.UpsertCoachingAnalysis(ctx, callID, analysis); err != nil {
		p.metrics.PersistenceErrors.WithLabelValues("coaching_analyses").Inc()
		p.monitor.RecordError("pipeline", err)
		return types.CoachingAnalysis{}, fmt.Errorf("persist coaching analysis: %w", err)
	}

	p.metrics.CoachingRequests.WithLabelValues("ok").Inc()
	return analysis, nil
}

// Unavailable reports whether err represents a first-class "coaching not
// available" state, as opposed to a runtime error.
func Unavailable(err error) (string, bool) {
	switch {
	case errors.Is(err, coaching.ErrNotConfigured):
		return "coaching is not configured", true
	case resilience.IsCircuitOpen(err):
		return "coaching is temporarily unavailable", true
	default:
		return "", false
	}
}
