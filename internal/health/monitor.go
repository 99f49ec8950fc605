// Package health aggregates liveness and configuration checks over the
// service's external dependencies into a single status snapshot.
package health

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Check statuses.
const (
	StatusUp       = "up"
	StatusDegraded = "degraded"
	StatusDown     = "down"
)

// Overall statuses.
const (
	OverallHealthy   = "healthy"
	OverallDegraded  = "degraded"
	OverallUnhealthy = "unhealthy"
)

// Database latency bands.
const (
	dbUpLatency       = 250 * time.Millisecond
	dbDegradedLatency = time.Second
)

// Memory headroom bands: allocated heap as a percentage of the heap the
// runtime has claimed from the OS.
const (
	memDegradedPercent = 80.0
	memDownPercent     = 95.0
)

// Sensible plausibility floor for gateway credentials.
const minCredentialLength = 8

// CheckResult is one dependency check.
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Snapshot is the read-only health payload for the operational endpoint.
type Snapshot struct {
	Status       string                 `json:"status"`
	Timestamp    string                 `json:"timestamp"`
	Uptime       string                 `json:"uptime"`
	Checks       map[string]CheckResult `json:"checks"`
	RecentErrors []RecordedError        `json:"recent_errors"`
}

// RecordedError is one entry in the error ring.
type RecordedError struct {
	Component string `json:"component"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Pinger is the database round-trip probe.
type Pinger interface {
	Ping(ctx context.Context) (time.Duration, error)
}

// Credential names one external API credential to shape-check. The check is
// configuration-only; no live call is made.
type Credential struct {
	Name  string
	Value string
}

// Monitor runs the checks and keeps a bounded ring of recent errors.
type Monitor struct {
	db          Pinger
	credentials []Credential
	logger      *logrus.Entry
	startedAt   time.Time

	mu     sync.Mutex
	ring   []RecordedError
	ringAt int
	ringN  int
}

// ringCapacity bounds the stored errors; snapshots expose the last
// snapshotErrors of them.
const (
	ringCapacity   = 100
	snapshotErrors = 10
)

// NewMonitor builds a Monitor over the database probe and credential list.
func NewMonitor(db Pinger, credentials []Credential, logger *logrus.Entry) *Monitor {
	return &Monitor{
		db:          db,
		credentials: credentials,
		logger:      logger.WithField("component", "health"),
		startedAt:   time.Now(),
		ring:        make([]RecordedError, ringCapacity),
	}
}

// RecordError appends an error to the ring. Safe for concurrent use from
// any component.
func (m *Monitor) RecordError(component string, err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ring[m.ringAt] = RecordedError{
		Component: component,
		Message:   err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	m.ringAt = (m.ringAt + 1) % ringCapacity
	if m.ringN < ringCapacity {
		m.ringN++
	}
}

// Status runs all checks and returns the aggregate snapshot. Database down
// makes the service unhealthy; any other down or degraded check degrades
// it.
func (m *Monitor) Status(ctx context.Context) Snapshot {
	checks := map[string]CheckResult{
		"database": m.checkDatabase(ctx),
		"memory":   m.checkMemory(),
	}
	for _, cred := range m.credentials {
		checks["credential_"+cred.Name] = checkCredential(cred)
	}

	overall := OverallHealthy
	for name, c := range checks {
		if name == "database" && c.Status == StatusDown {
			overall = OverallUnhealthy
			break
		}
		if c.Status != StatusUp {
			overall = OverallDegraded
		}
	}

	return Snapshot{
		Status:       overall,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Uptime:       time.Since(m.startedAt).Round(time.Second).String(),
		Checks:       checks,
		RecentErrors: m.recentErrors(),
	}
}

func (m *Monitor) checkDatabase(ctx context.Context) CheckResult {
	if m.db == nil {
		return CheckResult{Status: StatusDown, Message: "database not configured"}
	}
	latency, err := m.db.Ping(ctx)
	if err != nil {
		m.RecordError("database", err)
		return CheckResult{Status: StatusDown, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	switch {
	case latency <= dbUpLatency:
		return CheckResult{Status: StatusUp, Message: fmt.Sprintf("ping %s", latency.Round(time.Millisecond))}
	case latency <= dbDegradedLatency:
		return CheckResult{Status: StatusDegraded, Message: fmt.Sprintf("slow ping %s", latency.Round(time.Millisecond))}
	default:
		return CheckResult{Status: StatusDown, Message: fmt.Sprintf("ping too slow: %s", latency.Round(time.Millisecond))}
	}
}

func checkCredential(cred Credential) CheckResult {
	switch {
	case cred.Value == "":
		return CheckResult{Status: StatusDown, Message: cred.Name + " is not set"}
	case len(cred.Value) < minCredentialLength:
		return CheckResult{Status: StatusDegraded, Message: cred.Name + " looks malformed"}
	default:
		return CheckResult{Status: StatusUp}
	}
}

func (m *Monitor) checkMemory() CheckResult {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.HeapSys == 0 {
		return CheckResult{Status: StatusUp}
	}
	pct := float64(ms.HeapAlloc) / float64(ms.HeapSys) * 100
	msg := fmt.Sprintf("heap %.0f%% used (%d MB)", pct, ms.HeapAlloc/1024/1024)
	switch {
	case pct >= memDownPercent:
		return CheckResult{Status: StatusDown, Message: msg}
	case pct >= memDegradedPercent:
		return CheckResult{Status: StatusDegraded, Message: msg}
	default:
		return CheckResult{Status: StatusUp, Message: msg}
	}
}

// recentErrors returns the newest entries, newest first, capped at
// snapshotErrors.
func (m *Monitor) recentErrors() []RecordedError {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.ringN
	if n > snapshotErrors {
		n = snapshotErrors
	}
	out := make([]RecordedError, 0, n)
	for i := 1; i <= n; i++ {
		idx := (m.ringAt - i + ringCapacity) % ringCapacity
		out = append(out, m.ring[idx])
	}
	return out
}
