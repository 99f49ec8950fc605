package objection_test

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-coach-go/internal/objection"
	"call-coach-go/internal/store"
	"call-coach-go/internal/types"
)

func testMatcher(t *testing.T) (*objection.Matcher, *store.Store) {
	t.Helper()
	base := logrus.New()
	base.SetOutput(io.Discard)
	log := logrus.NewEntry(base)

	st, err := store.Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return objection.NewMatcher(st, log), st
}

func seedLibrary(t *testing.T, st *store.Store) {
	t.Helper()
	require.NoError(t, st.SeedObjectionLibrary(context.Background(), []types.ObjectionLibraryEntry{
		{ID: "lib-price-1", Name: "Too expensive", Category: types.ObjectionPrice},
		{ID: "lib-price-2", Name: "No budget left", Category: types.ObjectionPrice},
		{ID: "lib-time-1", Name: "Bad timing", Category: types.ObjectionTime},
	}))
}

func TestMatchRecordsOccurrences(t *testing.T) {
	m, st := testMatcher(t)
	seedLibrary(t, st)
	ctx := context.Background()

	m.Match(ctx, "call-1", []types.ObjectionOccurrence{
		{Category: types.ObjectionPrice, ProspectText: "too expensive", Handled: true},
		{Category: types.ObjectionTime, ProspectText: "not right now"},
	})

	n, err := st.CountObjectionOccurrences(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMatchIsIdempotentPerCall(t *testing.T) {
	m, st := testMatcher(t)
	seedLibrary(t, st)
	ctx := context.Background()

	objections := []types.ObjectionOccurrence{
		{Category: types.ObjectionPrice, ProspectText: "too expensive"},
	}
	m.Match(ctx, "call-1", objections)
	m.Match(ctx, "call-1", objections)

	n, err := st.CountObjectionOccurrences(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMatchSkipsUnknownCategory(t *testing.T) {
	m, st := testMatcher(t)
	seedLibrary(t, st)
	ctx := context.Background()

	// The library has no trust entries, so nothing is recorded.
	m.Match(ctx, "call-1", []types.ObjectionOccurrence{
		{Category: types.ObjectionTrust, ProspectText: "never heard of you"},
	})

	n, err := st.CountObjectionOccurrences(ctx, "call-1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMatchEmptyLibraryDoesNotFail(t *testing.T) {
	m, st := testMatcher(t)
	ctx := context.Background()

	m.Match(ctx, "call-1", []types.ObjectionOccurrence{
		{Category: types.ObjectionPrice, ProspectText: "too expensive"},
	})

	n, err := st.CountObjectionOccurrences(ctx, "call-1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
