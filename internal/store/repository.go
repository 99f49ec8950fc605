package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"call-coach-go/internal/types"
)

// UpsertCallScore writes the score for a call, overwriting any previous
// scoring of the same call.
func (s *Store) UpsertCallScore(ctx context.Context, score types.CallScore) error {
	categories, err := json.Marshal(score.CategoryScores)
	if err != nil {
		return fmt.Errorf("marshal category scores: %w", err)
	}
	metadata, err := json.Marshal(score.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	createdAt := score.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO call_scores (call_id, overall_score, category_scores, metadata, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(call_id) DO UPDATE SET
			overall_score = excluded.overall_score,
			category_scores = excluded.category_scores,
			metadata = excluded.metadata,
			created_at = excluded.created_at`,
		score.CallID, score.OverallScore, string(categories), string(metadata), createdAt)
	if err != nil {
		s.logger.WithError(err).WithField("call_id", score.CallID).Error("failed to upsert call score")
		return fmt.Errorf("upsert call score: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"call_id":       score.CallID,
		"overall_score": score.OverallScore,
	}).Info("call score saved")
	return nil
}

// GetCallScore loads the score for a call, or ErrNotFound.
func (s *Store) GetCallScore(ctx context.Context, callID string) (types.CallScore, error) {
	var (
		score      types.CallScore
		categories string
		metadata   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT call_id, overall_score, category_scores, metadata, created_at
		FROM call_scores WHERE call_id = ?`, callID).
		Scan(&score.CallID, &score.OverallScore, &categories, &metadata, &score.CreatedAt)
	if err == sql.ErrNoRows {
		return types.CallScore{}, ErrNotFound
	}
	if err != nil {
		return types.CallScore{}, fmt.Errorf("get call score: %w", err)
	}
	if err := json.Unmarshal([]byte(categories), &score.CategoryScores); err != nil {
		return types.CallScore{}, fmt.Errorf("decode category scores: %w", err)
	}
	if err := json.Unmarshal([]byte(metadata), &score.Metadata); err != nil {
		return types.CallScore{}, fmt.Errorf("decode metadata: %w", err)
	}
	return score, nil
}

// ListCallScores returns all stored scores, oldest first.
func (s *Store) ListCallScores(ctx context.Context) ([]types.CallScore, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT call_id, overall_score, category_scores, metadata, created_at
		FROM call_scores ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list call scores: %w", err)
	}
	defer rows.Close()

	var out []types.CallScore
	for rows.Next() {
		var (
			score      types.CallScore
			categories string
			metadata   string
		)
		if err := rows.Scan(&score.CallID, &score.OverallScore, &categories, &metadata, &score.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan call score: %w", err)
		}
		if err := json.Unmarshal([]byte(categories), &score.CategoryScores); err != nil {
			return nil, fmt.Errorf("decode category scores: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &score.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		out = append(out, score)
	}
	return out, rows.Err()
}

// UpsertVoiceAnalytics writes the voice metrics row for a call.
func (s *Store) UpsertVoiceAnalytics(ctx context.Context, va types.VoiceAnalytics) error {
	payload, err := json.Marshal(va)
	if err != nil {
		return fmt.Errorf("marshal voice analytics: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO voice_analytics (call_id, payload, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(call_id) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at`,
		va.CallID, string(payload), time.Now().UTC())
	if err != nil {
		s.logger.WithError(err).WithField("call_id", va.CallID).Error("failed to upsert voice analytics")
		return fmt.Errorf("upsert voice analytics: %w", err)
	}
	return nil
}

// GetVoiceAnalytics loads the voice metrics for a call, or ErrNotFound.
func (s *Store) GetVoiceAnalytics(ctx context.Context, callID string) (types.VoiceAnalytics, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM voice_analytics WHERE call_id = ?`, callID).Scan(&payload)
	if err == sql.ErrNoRows {
		return types.VoiceAnalytics{}, ErrNotFound
	}
	if err != nil {
		return types.VoiceAnalytics{}, fmt.Errorf("get voice analytics: %w", err)
	}
	var va types.VoiceAnalytics
	if err := json.Unmarshal([]byte(payload), &va); err != nil {
		return types.VoiceAnalytics{}, fmt.Errorf("decode voice analytics: %w", err)
	}
	return va, nil
}

// UpsertCoachingAnalysis writes the coaching row for a call; re-analysis
// overwrites.
func (s *Store) UpsertCoachingAnalysis(ctx context.Context, callID string, analysis types.CoachingAnalysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshal coaching analysis: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO coaching_analyses (call_id, payload, model, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(call_id) DO UPDATE SET
			payload = excluded.payload,
			model = excluded.model,
			created_at = excluded.created_at`,
		callID, string(payload), analysis.AIMetadata.Model, time.Now().UTC())
	if err != nil {
		s.logger.WithError(err).WithField("call_id", callID).Error("failed to upsert coaching analysis")
		return fmt.Errorf("upsert coaching analysis: %w", err)
	}
	return nil
}

// GetCoachingAnalysis loads the coaching row for a call, or ErrNotFound.
func (s *Store) GetCoachingAnalysis(ctx context.Context, callID string) (types.CoachingAnalysis, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM coaching_analyses WHERE call_id = ?`, callID).Scan(&payload)
	if err == sql.ErrNoRows {
		return types.CoachingAnalysis{}, ErrNotFound
	}
	if err != nil {
		return types.CoachingAnalysis{}, fmt.Errorf("get coaching analysis: %w", err)
	}
	var analysis types.CoachingAnalysis
	if err := json.Unmarshal([]byte(payload), &analysis); err != nil {
		return types.CoachingAnalysis{}, fmt.Errorf("decode coaching analysis: %w", err)
	}
	return analysis, nil
}

// RecordObjectionOccurrence inserts one matched occurrence keyed by
// (call_id, objection_id). Conflicts are a no-op, so re-running the
// matcher for a call never duplicates rows.
func (s *Store) RecordObjectionOccurrence(ctx context.Context, callID, objectionID string, occ types.ObjectionOccurrence) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO objection_occurrences
			(call_id, objection_id, prospect_text, rep_response, category, handled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(call_id, objection_id) DO NOTHING`,
		callID, objectionID, occ.ProspectText, occ.RepResponse, string(occ.Category), occ.Handled, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record objection occurrence: %w", err)
	}
	return nil
}

// CountObjectionOccurrences returns the number of occurrence rows for a
// call.
func (s *Store) CountObjectionOccurrences(ctx context.Context, callID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM objection_occurrences WHERE call_id = ?`, callID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count objection occurrences: %w", err)
	}
	return n, nil
}

// ListObjectionLibrary loads the canonical objection taxonomy. The table's
// content is seeded by out-of-scope tooling; this core only reads it.
func (s *Store) ListObjectionLibrary(ctx context.Context) ([]types.ObjectionLibraryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, industry, description, handling_strategies
		FROM objection_library ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list objection library: %w", err)
	}
	defer rows.Close()

	var out []types.ObjectionLibraryEntry
	for rows.Next() {
		var (
			entry      types.ObjectionLibraryEntry
			category   string
			strategies string
		)
		if err := rows.Scan(&entry.ID, &entry.Name, &category, &entry.Industry, &entry.Description, &strategies); err != nil {
			return nil, fmt.Errorf("scan library entry: %w", err)
		}
		entry.Category = types.ObjectionCategory(category)
		if err := json.Unmarshal([]byte(strategies), &entry.HandlingStrategies); err != nil {
			entry.HandlingStrategies = nil
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// SeedObjectionLibrary inserts library entries, skipping existing IDs.
// Intended for operational seeding tools and tests, not the analysis path.
func (s *Store) SeedObjectionLibrary(ctx context.Context, entries []types.ObjectionLibraryEntry) error {
	for _, e := range entries {
		strategies, err := json.Marshal(e.HandlingStrategies)
		if err != nil {
			return fmt.Errorf("marshal strategies: %w", err)
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO objection_library (id, name, category, industry, description, handling_strategies)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING`,
			e.ID, e.Name, string(e.Category), e.Industry, e.Description, string(strategies))
		if err != nil {
			return fmt.Errorf("seed library entry %s: %w", e.ID, err)
		}
	}
	return nil
}
