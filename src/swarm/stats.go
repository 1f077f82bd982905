package swarm

import (
	"sort"

	"github.com/arvidn/peer-ordering/src/common"
)

// TickCounters are the event tallies of a single tick.
type TickCounters struct {
	Tick         int `json:"tick"`
	Attempts     int `json:"attempts"`
	Rejects      int `json:"rejects"`
	Replacements int `json:"replacements"`
}

// RampRow summarizes the startup-degree distribution of one age bucket: the
// established-connection counts of all peers sampled at the same age since
// joining.
type RampRow struct {
	Bucket  int `json:"bucket"`
	Samples int `json:"samples"`
	Min     int `json:"min"`
	Max     int `json:"max"`

	// Percentiles holds the 10th through 90th percentiles, in steps of 10.
	Percentiles [9]float64 `json:"percentiles"`
}

// Stats accumulates per-tick counters and the age-bucketed startup-degree
// samples. Counters reset at the start of each tick and are appended to the
// series at the end of it.
type Stats struct {
	attempts     int
	rejects      int
	replacements int

	series []TickCounters

	// ramp[age] holds the established degrees of every peer that has been
	// sampled at that age since joining.
	ramp map[int][]int
}

// NewStats creates an empty collector.
func NewStats() *Stats {
	return &Stats{
		ramp: make(map[int][]int),
	}
}

// BeginTick resets the per-tick counters.
func (st *Stats) BeginTick() {
	st.attempts = 0
	st.rejects = 0
	st.replacements = 0
}

// EndTick appends the current counters to the time series.
func (st *Stats) EndTick(tick int) {
	st.series = append(st.series, TickCounters{
		Tick:         tick,
		Attempts:     st.attempts,
		Rejects:      st.rejects,
		Replacements: st.replacements,
	})
}

// CountAttempt records one issued connection attempt.
func (st *Stats) CountAttempt() { st.attempts++ }

// CountReject records one rejected connection attempt.
func (st *Stats) CountReject() { st.rejects++ }

// CountReplacement records one connection preempted in favour of a higher
// ranking dialer.
func (st *Stats) CountReplacement() { st.replacements++ }

// Current returns the counters accumulated so far in the running tick.
func (st *Stats) Current() (attempts, rejects, replacements int) {
	return st.attempts, st.rejects, st.replacements
}

// SampleRamp records that a peer had the given established degree at the
// given age since joining.
func (st *Stats) SampleRamp(age, degree int) {
	st.ramp[age] = append(st.ramp[age], degree)
}

// Series returns the per-tick counter history.
func (st *Stats) Series() []TickCounters {
	return st.series
}

// RampTable returns one row per age bucket, in ascending bucket order, with
// min, max and the 10th..90th percentiles of the sampled degrees.
func (st *Stats) RampTable() []RampRow {
	buckets := make([]int, 0, len(st.ramp))
	for b := range st.ramp {
		buckets = append(buckets, b)
	}
	sort.Ints(buckets)

	rows := make([]RampRow, 0, len(buckets))
	for _, b := range buckets {
		samples := st.ramp[b]

		row := RampRow{
			Bucket:  b,
			Samples: len(samples),
		}

		min, _ := common.Percentile(samples, 0)
		max, _ := common.Percentile(samples, 1)
		row.Min = int(min)
		row.Max = int(max)

		for i := 0; i < 9; i++ {
			p, _ := common.Percentile(samples, float64(i+1)/10)
			row.Percentiles[i] = p
		}

		rows = append(rows, row)
	}

	return rows
}
