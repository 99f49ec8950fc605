package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return logrus.NewEntry(base)
}

// stubPinger fakes the database probe with a fixed latency and error.
type stubPinger struct {
	latency time.Duration
	err     error
}

func (p stubPinger) Ping(ctx context.Context) (time.Duration, error) {
	return p.latency, p.err
}

func TestStatusHealthy(t *testing.T) {
	m := NewMonitor(stubPinger{latency: 5 * time.Millisecond}, []Credential{
		{Name: "llm_api_key", Value: "sk-long-enough-credential"},
	}, testLogger())

	snap := m.Status(context.Background())

	assert.Equal(t, OverallHealthy, snap.Status)
	assert.Equal(t, StatusUp, snap.Checks["database"].Status)
	assert.Equal(t, StatusUp, snap.Checks["credential_llm_api_key"].Status)
	assert.Empty(t, snap.RecentErrors)
	assert.NotEmpty(t, snap.Uptime)
}

func TestDatabaseLatencyBands(t *testing.T) {
	cases := []struct {
		latency time.Duration
		want    string
	}{
		{100 * time.Millisecond, StatusUp},
		{250 * time.Millisecond, StatusUp},
		{500 * time.Millisecond, StatusDegraded},
		{2 * time.Second, StatusDown},
	}
	for _, tc := range cases {
		t.Run(tc.latency.String(), func(t *testing.T) {
			m := NewMonitor(stubPinger{latency: tc.latency}, nil, testLogger())
			snap := m.Status(context.Background())
			assert.Equal(t, tc.want, snap.Checks["database"].Status)
		})
	}
}

func TestDatabaseDownMakesServiceUnhealthy(t *testing.T) {
	m := NewMonitor(stubPinger{err: errors.New("connection refused")}, nil, testLogger())

	snap := m.Status(context.Background())

	assert.Equal(t, OverallUnhealthy, snap.Status)
	assert.Equal(t, StatusDown, snap.Checks["database"].Status)
	// Ping failures land in the error ring.
	require.NotEmpty(t, snap.RecentErrors)
	assert.Equal(t, "database", snap.RecentErrors[0].Component)
}

func TestMissingDatabaseIsDown(t *testing.T) {
	m := NewMonitor(nil, nil, testLogger())
	snap := m.Status(context.Background())
	assert.Equal(t, OverallUnhealthy, snap.Status)
}

func TestCredentialShapeCheck(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  string
	}{
		{"missing", "", StatusDown},
		{"too short", "abc", StatusDegraded},
		{"plausible", "sk-abcdef123456", StatusUp},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := checkCredential(Credential{Name: "llm_api_key", Value: tc.value})
			assert.Equal(t, tc.want, got.Status)
		})
	}
}

func TestDegradedCredentialDegradesService(t *testing.T) {
	m := NewMonitor(stubPinger{latency: time.Millisecond}, []Credential{
		{Name: "llm_api_key", Value: "abc"},
	}, testLogger())

	snap := m.Status(context.Background())
	assert.Equal(t, OverallDegraded, snap.Status)
}

func TestRecentErrorsNewestFirstCapped(t *testing.T) {
	m := NewMonitor(stubPinger{latency: time.Millisecond}, nil, testLogger())

	for i := 0; i < 25; i++ {
		m.RecordError("pipeline", fmt.Errorf("failure %d", i))
	}

	errs := m.recentErrors()
	require.Len(t, errs, snapshotErrors)
	assert.Equal(t, "failure 24", errs[0].Message)
	assert.Equal(t, "failure 15", errs[len(errs)-1].Message)
}

func TestRecordErrorIgnoresNil(t *testing.T) {
	m := NewMonitor(stubPinger{latency: time.Millisecond}, nil, testLogger())
	m.RecordError("pipeline", nil)
	assert.Empty(t, m.recentErrors())
}

func TestErrorRingWrapsAround(t *testing.T) {
	m := NewMonitor(stubPinger{latency: time.Millisecond}, nil, testLogger())

	for i := 0; i < ringCapacity+7; i++ {
		m.RecordError("pipeline", fmt.Errorf("failure %d", i))
	}

	errs := m.recentErrors()
	require.Len(t, errs, snapshotErrors)
	assert.Equal(t, fmt.Sprintf("failure %d", ringCapacity+6), errs[0].Message)
}
