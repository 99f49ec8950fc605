// Package coaching generates structured qualitative feedback for a scored
// call by prompting a chat-completion LLM gateway. The network call and the
// schema normalization are deliberately separate so the normalizer can be
// unit-tested against canned response bodies.
package coaching

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"call-coach-go/internal/types"
)

// ErrNotConfigured is the configuration-class failure: the gateway
// credential is absent, no network call was attempted, and retrying will
// not help. Callers surface this as "coaching unavailable" rather than a
// runtime error.
var ErrNotConfigured = errors.New("llm gateway not configured")

// Config carries the gateway settings, read from the environment in main.
type Config struct {
	GatewayURL string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetry   time.Duration
}

// Analyzer issues coaching requests against the configured gateway.
type Analyzer struct {
	config Config
	client *http.Client
	logger *logrus.Entry
}

// NewAnalyzer builds an Analyzer. An empty credential is legal here; the
// configuration check happens per call so health checks can still inspect
// the config shape.
func NewAnalyzer(config Config, logger *logrus.Entry) *Analyzer {
	if config.Timeout <= 0 {
		config.Timeout = 25 * time.Second
	}
	if config.MaxRetry <= 0 {
		config.MaxRetry = 45 * time.Second
	}
	return &Analyzer{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.WithField("component", "coaching"),
	}
}

// Configured reports whether the gateway credential is present.
func (a *Analyzer) Configured() bool {
	return a.config.GatewayURL != "" && a.config.APIKey != ""
}

// Analyze runs exactly one coaching analysis for a scored call. The context
// bounds the whole exchange; cancellation discards the in-flight request
// with no partial result.
func (a *Analyzer) Analyze(ctx context.Context, entries []types.TranscriptEntry, score types.CallScore, persona string) (types.CoachingAnalysis, error) {
	if !a.Configured() {
		return types.CoachingAnalysis{}, ErrNotConfigured
	}

	start := time.Now()
	log := a.logger.WithField("call_id", score.CallID)

	payload := map[string]any{
		"model": a.config.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt(persona)},
			{"role": "user", "content": userPrompt(entries, score)},
		},
		"temperature":     0.0,
		"response_format": map[string]string{"type": "json_object"},
	}
	body, _ := json.Marshal(payload)

	var analysis types.CoachingAnalysis
	var lastErr error

	op := func() error {
		reqCtx := ctx
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			reqCtx, cancel = context.WithTimeout(ctx, a.config.Timeout)
			defer cancel()
		}

		req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.config.GatewayURL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+a.config.APIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := a.client.Do(req)
		if err != nil {
			lastErr = err
			log.WithError(err).Warn("llm request failed")
			return err
		}
		defer resp.Body.Close()

		raw, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("llm server error: status %d", resp.StatusCode)
			return lastErr
		}
		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("llm client error: status %d", resp.StatusCode)
			return backoff.Permanent(lastErr)
		}

		envelope, err := parseEnvelope(raw)
		if err != nil {
			lastErr = err
			return lastErr
		}

		normalized, confidence, err := Normalize([]byte(envelope.content))
		if err != nil {
			lastErr = fmt.Errorf("llm returned unparseable analysis: %w", err)
			return lastErr
		}

		analysis = normalized
		analysis.AIMetadata = types.AIMetadata{
			Model:            envelope.model,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			ConfidenceScore:  confidence,
			TokensUsed:       envelope.tokensUsed,
		}
		if analysis.AIMetadata.Model == "" {
			analysis.AIMetadata.Model = a.config.Model
		}
		lastErr = nil
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = a.config.MaxRetry
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return types.CoachingAnalysis{}, fmt.Errorf("coaching analysis failed: %w", lastErr)
	}

	log.WithField("processing_ms", analysis.AIMetadata.ProcessingTimeMs).Info("coaching analysis generated")
	return analysis, nil
}

// responseEnvelope is the OpenAI-style completion wrapper.
type responseEnvelope struct {
	content    string
	model      string
	tokensUsed int
}

func parseEnvelope(raw []byte) (responseEnvelope, error) {
	var parsed struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || len(parsed.Choices) == 0 {
		// Some gateways return the JSON analysis bare, without the
		// chat-completion wrapper.
		if salvaged := extractJSON(string(raw)); salvaged != "" {
			return responseEnvelope{content: salvaged}, nil
		}
		return responseEnvelope{}, fmt.Errorf("no JSON found in llm response")
	}
	content := extractJSON(parsed.Choices[0].Message.Content)
	if content == "" {
		return responseEnvelope{}, fmt.Errorf("no JSON found in llm response content")
	}
	return responseEnvelope{
		content:    content,
		model:      parsed.Model,
		tokensUsed: parsed.Usage.TotalTokens,
	}, nil
}
