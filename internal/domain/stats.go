package domain

import "time"

// SourceStats breaks one run's counters down by source and strategy.
type SourceStats struct {
	Collected  int
	Errors     int
	ByStrategy map[string]int
}

// RunStats aggregates counters for one orchestration run. Created at run
// start, finalized at run end, never persisted as domain data.
type RunStats struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	Collected  int
	Processed  int
	Skipped    int
	Duplicates int
	Invalid    int
	Rejected   int
	Errors     int
	Saved      int

	BySource     map[string]*SourceStats
	QualityScore int
}

// NewRunStats initializes the counters for a fresh run.
func NewRunStats(runID string, start time.Time) *RunStats {
	return &RunStats{
		RunID:     runID,
		StartedAt: start,
		BySource:  map[string]*SourceStats{},
	}
}

// Source returns the per-source bucket, creating it on first use.
func (s *RunStats) Source(name string) *SourceStats {
	st, ok := s.BySource[name]
	if !ok {
		st = &SourceStats{ByStrategy: map[string]int{}}
		s.BySource[name] = st
	}
	return st
}

// Duration is the wall time of the run.
func (s *RunStats) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Throughput is items processed per second, zero for an instant run.
func (s *RunStats) Throughput() float64 {
	d := s.Duration().Seconds()
	if d <= 0 {
		return 0
	}
	return float64(s.Processed) / d
}
