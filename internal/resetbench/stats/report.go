package stats

import (
	"math"
	"time"

	"golang.org/x/exp/slices"
)

// Report is the latency summary over every sample collected in a run.
type Report struct {
	Count             int           `json:"count"`
	P50               time.Duration `json:"p50"`
	P90               time.Duration `json:"p90"`
	P99               time.Duration `json:"p99"`
	Min               time.Duration `json:"min"`
	Max               time.Duration `json:"max"`
	Average           time.Duration `json:"average"`
	StandardDeviation time.Duration `json:"standardDeviation"`
}

// NewReport computes a Report over durations. The input is not modified.
// An empty input yields a zero Report for which HasData is false.
func NewReport(durations []time.Duration) *Report {
	if len(durations) == 0 {
		return &Report{}
	}
	sorted := slices.Clone(durations)
	slices.Sort(sorted)

	// Errors are impossible here, sorted is non-empty and the percentiles are constants in range.
	p50, _ := Percentile(sorted, 50)
	p90, _ := Percentile(sorted, 90)
	p99, _ := Percentile(sorted, 99)

	return &Report{
		Count:             len(sorted),
		P50:               p50,
		P90:               p90,
		P99:               p99,
		Min:               sorted[0],
		Max:               sorted[len(sorted)-1],
		Average:           time.Duration(avg(sorted)),
		StandardDeviation: time.Duration(standardDeviation(sorted)),
	}
}

func (r *Report) HasData() bool {
	return r.Count > 0
}

func sum(input []time.Duration) float64 {
	var s float64
	for _, d := range input {
		s += float64(d)
	}
	return s
}

func avg(input []time.Duration) float64 {
	if len(input) == 0 {
		return 0
	}
	return sum(input) / float64(len(input))
}

// variance is the sample variance; it is zero for fewer than two values.
func variance(input []time.Duration) float64 {
	if len(input) < 2 {
		return 0
	}
	mean := avg(input)
	var total float64
	for _, d := range input {
		total += math.Pow(float64(d)-mean, 2)
	}
	return total / float64(len(input)-1)
}

func standardDeviation(input []time.Duration) float64 {
	return math.Sqrt(variance(input))
}
