package observability

import (
	"sync/atomic"
	"time"
)

// SweepMetrics keeps in-process counters for the retention worker's /readyz report.
type SweepMetrics struct {
	runs    atomic.Uint64
	failed  atomic.Uint64
	deleted atomic.Uint64
	skipped atomic.Uint64

	// duration stats (nanoseconds)
	durationCount atomic.Uint64
	durationTotal atomic.Int64
	durationMax   atomic.Int64
	lastRunUnix   atomic.Int64
}

func NewSweepMetrics() *SweepMetrics {
	return &SweepMetrics{}
}

func (m *SweepMetrics) IncRuns() {
	m.runs.Add(1)
	m.lastRunUnix.Store(time.Now().Unix())
}

func (m *SweepMetrics) IncFailed() {
	m.failed.Add(1)
}

func (m *SweepMetrics) AddDeleted(n int) {
	m.deleted.Add(uint64(n))
}

func (m *SweepMetrics) AddSkipped(n int) {
	m.skipped.Add(uint64(n))
}

func (m *SweepMetrics) ObserveDuration(d time.Duration) {
	ns := d.Nanoseconds()
	m.durationCount.Add(1)
	m.durationTotal.Add(ns)

	// max update

	for {
		curr := m.durationMax.Load()

		if ns <= curr {
			return
		}

		if m.durationMax.CompareAndSwap(curr, ns) {
			return
		}
	}
}

type SweepMetricsSnapshot struct {
	Runs            uint64        `json:"runs"`
	Failed          uint64        `json:"failed"`
	Deleted         uint64        `json:"deleted"`
	Skipped         uint64        `json:"skipped"`
	AverageDuration time.Duration `json:"averageDurationNs"`
	MaxDuration     time.Duration `json:"maxDurationNs"`
	LastRun         *time.Time    `json:"lastRun,omitempty"`
}

func (m *SweepMetrics) Snapshot() SweepMetricsSnapshot {
	count := m.durationCount.Load()
	total := m.durationTotal.Load()

	var avg time.Duration

	if count > 0 {
		avg = time.Duration(total / int64(count))
	}

	snap := SweepMetricsSnapshot{
		Runs:            m.runs.Load(),
		Failed:          m.failed.Load(),
		Deleted:         m.deleted.Load(),
		Skipped:         m.skipped.Load(),
		AverageDuration: avg,
		MaxDuration:     time.Duration(m.durationMax.Load()),
	}

	if last := m.lastRunUnix.Load(); last > 0 {
		t := time.Unix(last, 0).UTC()
		snap.LastRun = &t
	}

	return snap
}
