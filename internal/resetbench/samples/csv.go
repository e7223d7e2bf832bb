package samples

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var csvHeader = []string{"job_name", "node", "batch", "outcome", "start_time", "completion_time", "duration_seconds"}

// WriteCSV writes one row per sample, preceded by a header row.
// Times are RFC3339 in UTC and durations are in seconds.
func WriteCSV(out io.Writer, samples []Sample) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return errors.WithStack(err)
	}
	for _, s := range samples {
		row := []string{
			s.JobName,
			s.Node,
			strconv.Itoa(s.Batch),
			string(s.Outcome),
			s.StartTime.UTC().Format(time.RFC3339),
			s.CompletionTime.UTC().Format(time.RFC3339),
			strconv.FormatFloat(s.Duration().Seconds(), 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return errors.WithStack(err)
		}
	}
	w.Flush()
	return errors.WithStack(w.Error())
}
