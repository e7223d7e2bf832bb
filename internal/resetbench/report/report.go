package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/G-Research/resetbench/internal/resetbench/samples"
	"github.com/G-Research/resetbench/internal/resetbench/stats"
)

const (
	SamplesFileName = "samples.csv"
	SummaryFileName = "summary.yaml"
)

// LatencySummary is a stats.Report expressed in seconds.
type LatencySummary struct {
	Count                    int     `json:"count"`
	P50Seconds               float64 `json:"p50Seconds"`
	P90Seconds               float64 `json:"p90Seconds"`
	P99Seconds               float64 `json:"p99Seconds"`
	MinSeconds               float64 `json:"minSeconds"`
	MaxSeconds               float64 `json:"maxSeconds"`
	AverageSeconds           float64 `json:"averageSeconds"`
	StandardDeviationSeconds float64 `json:"standardDeviationSeconds"`
}

func NewLatencySummary(r *stats.Report) *LatencySummary {
	return &LatencySummary{
		Count:                    r.Count,
		P50Seconds:               r.P50.Seconds(),
		P90Seconds:               r.P90.Seconds(),
		P99Seconds:               r.P99.Seconds(),
		MinSeconds:               r.Min.Seconds(),
		MaxSeconds:               r.Max.Seconds(),
		AverageSeconds:           r.Average.Seconds(),
		StandardDeviationSeconds: r.StandardDeviation.Seconds(),
	}
}

// RunSummary describes a finished run.
type RunSummary struct {
	RunId             string          `json:"runId"`
	Namespace         string          `json:"namespace"`
	NodeSelector      string          `json:"nodeSelector"`
	Nodes             int             `json:"nodes"`
	TargetRuns        int             `json:"targetRuns"`
	Batches           int             `json:"batches"`
	BatchesCompleted  int             `json:"batchesCompleted"`
	JobsCreated       int             `json:"jobsCreated"`
	Started           time.Time       `json:"started"`
	Finished          time.Time       `json:"finished"`
	TerminationReason string          `json:"terminationReason,omitempty"`
	Latency           *LatencySummary `json:"latency"`

	report *stats.Report
}

func NewRunSummary(r *stats.Report) *RunSummary {
	return &RunSummary{
		Latency: NewLatencySummary(r),
		report:  r,
	}
}

type Formatter func(summary *RunSummary) ([]byte, error)

func YamlFormatter(summary *RunSummary) ([]byte, error) {
	out, err := yaml.Marshal(summary)
	return out, errors.WithStack(err)
}

func JsonFormatter(summary *RunSummary) ([]byte, error) {
	out, err := json.MarshalIndent(summary, "", "  ")
	return out, errors.WithStack(err)
}

func (s *RunSummary) Generate(formatter Formatter) ([]byte, error) {
	if formatter == nil {
		formatter = YamlFormatter
	}
	return formatter(s)
}

// Print writes the human readable summary: the number of samples and the P50, P90 and P99 latencies.
func (s *RunSummary) Print(out io.Writer) {
	_, _ = fmt.Fprintf(out, "\n======= SUMMARY =======\n")
	_, _ = fmt.Fprintf(out, "Run %s: %d jobs in %d of %d batches across %d nodes\n",
		s.RunId, s.JobsCreated, s.BatchesCompleted, s.Batches, s.Nodes)
	if s.TerminationReason != "" {
		_, _ = fmt.Fprintf(out, "Terminated early: %s\n", s.TerminationReason)
	}
	if s.report == nil || !s.report.HasData() {
		_, _ = fmt.Fprintf(out, "No data: 0 runs produced a sample\n")
		return
	}
	w := tabwriter.NewWriter(out, 1, 1, 1, ' ', 0)
	_, _ = fmt.Fprintf(w, "Runs:\t%d\n", s.report.Count)
	_, _ = fmt.Fprintf(w, "P50:\t%s\n", s.report.P50)
	_, _ = fmt.Fprintf(w, "P90:\t%s\n", s.report.P90)
	_, _ = fmt.Fprintf(w, "P99:\t%s\n", s.report.P99)
	_ = w.Flush()
}

// WriteRunDirectory writes the samples and summary of a run into <directory>/<runId>, creating it if needed,
// and returns the path of the run directory.
func WriteRunDirectory(directory string, summary *RunSummary, runSamples []samples.Sample) (string, error) {
	runDirectory := filepath.Join(directory, summary.RunId)
	if err := os.MkdirAll(runDirectory, 0o755); err != nil {
		return "", errors.WithStack(err)
	}

	samplesFile, err := os.Create(filepath.Join(runDirectory, SamplesFileName))
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer samplesFile.Close()
	if err := samples.WriteCSV(samplesFile, runSamples); err != nil {
		return "", errors.WithMessagef(err, "writing %s", samplesFile.Name())
	}
	if err := samplesFile.Close(); err != nil {
		return "", errors.WithStack(err)
	}

	content, err := summary.Generate(YamlFormatter)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDirectory, SummaryFileName), content, 0o644); err != nil {
		return "", errors.WithStack(err)
	}
	return runDirectory, nil
}
