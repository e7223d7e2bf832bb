package stats

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// ErrNoData is returned when a percentile is requested over an empty sample set.
var ErrNoData = errors.New("no data")

// Percentile returns the nearest-rank percentile p of sorted, which must be in ascending order.
// The rank is ceil(len(sorted) * p / 100), clamped to [1, len(sorted)], and is 1-indexed.
func Percentile(sorted []time.Duration, p float64) (time.Duration, error) {
	if len(sorted) == 0 {
		return 0, ErrNoData
	}
	if p <= 0 || p > 100 || math.IsNaN(p) {
		return 0, errors.Errorf("percentile %v is outside (0, 100]", p)
	}
	rank := int(math.Ceil(float64(len(sorted)) * p / 100))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1], nil
}
