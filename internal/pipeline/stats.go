package pipeline

import (
	"sort"
	"sync"
	"time"
)

// BuildSample is the timing of one finished build.
type BuildSample struct {
	Format string                   // "md" when nothing was exported
	Total  time.Duration            // Wall time of the whole job
	Phases map[string]time.Duration // Time spent in each phase that ran

	// FailedPhase is the phase the build stopped in, empty on success.
	FailedPhase string
}

type sample struct {
	timestamp   time.Time
	totalMs     int64
	format      string
	failedPhase string
	phasesMs    map[string]int64
}

// LatencySummary aggregates the durations of one slice of builds.
type LatencySummary struct {
	Count int     `json:"count"`
	MaxMs int64   `json:"max_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
}

// StatsSnapshot is a point-in-time aggregate of recent builds.
type StatsSnapshot struct {
	Count  int     `json:"count"`
	Failed int     `json:"failed"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`

	FailedByPhase map[string]int            `json:"failed_by_phase"`
	Formats       map[string]LatencySummary `json:"formats"`
	Phases        map[string]LatencySummary `json:"phases"`
}

// BuildStats tracks recent builds within a rolling window.
type BuildStats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewBuildStats(maxAge time.Duration) *BuildStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &BuildStats{
		samples: make([]sample, 0, 64),
		maxAge:  maxAge,
	}
}

func (s *BuildStats) Record(b BuildSample) {
	format := b.Format
	if format == "" {
		format = "md"
	}
	phases := make(map[string]int64, len(b.Phases))
	for name, d := range b.Phases {
		phases[name] = clampMs(d)
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{
		timestamp:   now,
		totalMs:     clampMs(b.Total),
		format:      format,
		failedPhase: b.FailedPhase,
		phasesMs:    phases,
	})
}

func (s *BuildStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	snap := StatsSnapshot{
		FailedByPhase: map[string]int{},
		Formats:       map[string]LatencySummary{},
		Phases:        map[string]LatencySummary{},
	}
	if len(s.samples) == 0 {
		return snap
	}

	totals := make([]int64, 0, len(s.samples))
	byFormat := map[string][]int64{}
	byPhase := map[string][]int64{}
	var sum int64
	for _, sm := range s.samples {
		totals = append(totals, sm.totalMs)
		sum += sm.totalMs
		byFormat[sm.format] = append(byFormat[sm.format], sm.totalMs)
		for name, ms := range sm.phasesMs {
			byPhase[name] = append(byPhase[name], ms)
		}
		if sm.failedPhase != "" {
			snap.Failed++
			snap.FailedByPhase[sm.failedPhase]++
		}
	}
	sortMs(totals)

	snap.Count = len(totals)
	snap.MinMs = totals[0]
	snap.MaxMs = totals[len(totals)-1]
	snap.AvgMs = float64(sum) / float64(len(totals))
	snap.P50Ms = percentile(totals, 50)
	snap.P95Ms = percentile(totals, 95)
	snap.P99Ms = percentile(totals, 99)
	for format, values := range byFormat {
		snap.Formats[format] = summarize(values)
	}
	for name, values := range byPhase {
		snap.Phases[name] = summarize(values)
	}
	return snap
}

func (s *BuildStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

func summarize(values []int64) LatencySummary {
	sortMs(values)
	return LatencySummary{
		Count: len(values),
		MaxMs: values[len(values)-1],
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
	}
}

func sortMs(values []int64) {
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
}

func clampMs(d time.Duration) int64 {
	return max(d.Milliseconds(), 0)
}

// percentile interpolates linearly between closest ranks.
func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
