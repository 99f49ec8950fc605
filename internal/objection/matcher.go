// Package objection links detected objections to the canonical objection
// library and persists one occurrence row per match. This is non-critical
// enrichment: every failure is logged and swallowed so it can never break
// the scoring pipeline.
package objection

import (
	"context"

	"github.com/sirupsen/logrus"

	"call-coach-go/internal/store"
	"call-coach-go/internal/types"
)

// Matcher matches detected objections against the library.
type Matcher struct {
	store  *store.Store
	logger *logrus.Entry
}

// NewMatcher builds a Matcher over the given store.
func NewMatcher(s *store.Store, logger *logrus.Entry) *Matcher {
	return &Matcher{store: s, logger: logger.WithField("component", "objection-matcher")}
}

// Match selects a library entry for each detected objection and records the
// occurrence. Selection is the first library entry in the objection's
// category — a placeholder policy, not semantic similarity. Writes are
// keyed by (call_id, objection_id) with conflict-no-op, so repeated
// invocation for the same call is idempotent.
func (m *Matcher) Match(ctx context.Context, callID string, objections []types.ObjectionOccurrence) {
	if len(objections) == 0 {
		return
	}
	log := m.logger.WithField("call_id", callID)

	entries, err := m.store.ListObjectionLibrary(ctx)
	if err != nil {
		log.WithError(err).Warn("objection library read failed, skipping matching")
		return
	}

	byCategory := make(map[types.ObjectionCategory]types.ObjectionLibraryEntry)
	for _, e := range entries {
		if _, seen := byCategory[e.Category]; !seen {
			byCategory[e.Category] = e
		}
	}

	matched := 0
	for _, occ := range objections {
		entry, ok := byCategory[occ.Category]
		if !ok {
			continue
		}
		if err := m.store.RecordObjectionOccurrence(ctx, callID, entry.ID, occ); err != nil {
			log.WithError(err).WithField("objection_id", entry.ID).Warn("failed to record objection occurrence")
			continue
		}
		matched++
	}

	log.WithFields(logrus.Fields{
		"detected": len(objections),
		"matched":  matched,
	}).Info("objection matching finished")
}
