package poller

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"k8s.io/utils/clock"

	"github.com/G-Research/resetbench/internal/resetbench/metrics"
	"github.com/G-Research/resetbench/internal/resetbench/samples"
)

const (
	anomalyMissing         = "missing"
	anomalyNoTimestamps    = "missing_timestamps"
	anomalyInvalidInterval = "invalid_interval"
)

// TrackedJob is a job of the current batch together with its last observed state.
type TrackedJob struct {
	Name  string
	Node  string
	Batch int
	State JobState
}

// ErrBatchTimeout is returned when a batch is still incomplete after the configured maximum wait.
type ErrBatchTimeout struct {
	Batch      int
	Waited     time.Duration
	Unfinished []string
}

func (err *ErrBatchTimeout) Error() string {
	return fmt.Sprintf("batch %d incomplete after %s; unfinished jobs: %s", err.Batch, err.Waited, strings.Join(err.Unfinished, ", "))
}

// Poller waits for every job of a batch to reach a terminal state, recording a sample for each
// job that finishes with valid timestamps.
type Poller struct {
	source   JobStatusSource
	store    *samples.Store
	metrics  *metrics.Metrics
	clock    clock.Clock
	interval time.Duration
	maxWait  time.Duration
}

func New(
	source JobStatusSource,
	store *samples.Store,
	m *metrics.Metrics,
	clk clock.Clock,
	interval time.Duration,
	maxWait time.Duration,
) *Poller {
	return &Poller{
		source:   source,
		store:    store,
		metrics:  m,
		clock:    clk,
		interval: interval,
		maxWait:  maxWait,
	}
}

// AwaitBatch polls jobs until all of them are terminal.
// Each round queries every job not yet terminal exactly once; terminal jobs are never queried again.
// A failed query leaves the job's state unchanged until the next round.
// With a maximum wait of zero, AwaitBatch returns only once the batch completes or ctx is done.
func (p *Poller) AwaitBatch(ctx context.Context, batch int, jobs []*TrackedJob) error {
	start := p.clock.Now()
	logger := log.WithField("batch", batch)
	for {
		p.pollRound(ctx, jobs)

		counts := countStates(jobs)
		p.metrics.RecordJobStates(counts)
		if isComplete(jobs) {
			p.metrics.RecordBatchCompleted()
			logger.Infof("batch complete: %s", formatCounts(counts))
			return nil
		}
		logger.Infof("waiting for batch: %d running, %d pending", counts[Running.String()], counts[Pending.String()]+counts[Unknown.String()])

		waited := p.clock.Since(start)
		if p.maxWait > 0 && waited >= p.maxWait {
			return errors.WithStack(&ErrBatchTimeout{
				Batch:      batch,
				Waited:     waited,
				Unfinished: unfinished(jobs),
			})
		}

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "waiting for batch %d", batch)
		case <-p.clock.After(p.interval):
		}
	}
}

func (p *Poller) pollRound(ctx context.Context, jobs []*TrackedJob) {
	p.metrics.RecordPollRound()
	for _, job := range jobs {
		if job.State.IsTerminal() {
			continue
		}
		logger := log.WithFields(log.Fields{"job": job.Name, "node": job.Node, "batch": job.Batch})

		status, err := p.source.GetJobStatus(ctx, job.Name)
		if errors.Is(err, ErrJobNotFound) {
			logger.Warn("job no longer exists; marking it done without a sample")
			job.State = Missing
			p.metrics.RecordAnomaly(anomalyMissing)
			continue
		} else if err != nil {
			logger.WithError(err).Warn("failed to get job status; retrying next round")
			continue
		}

		previous := job.State
		job.State = nextState(status)
		if job.State != previous {
			logger.Debugf("job %s -> %s", previous, job.State)
		}
		if job.State.IsTerminal() {
			p.record(logger, job, status)
		}
	}
}

func (p *Poller) record(logger *log.Entry, job *TrackedJob, status *JobStatus) {
	if status.StartTime == nil || status.CompletionTime == nil {
		logger.Warnf("job %s without start or completion time; no sample recorded", job.State)
		p.metrics.RecordAnomaly(anomalyNoTimestamps)
		return
	}
	outcome := samples.OutcomeSucceeded
	if job.State == Failed {
		outcome = samples.OutcomeFailed
	}
	sample := samples.Sample{
		JobName:        job.Name,
		Node:           job.Node,
		Batch:          job.Batch,
		Outcome:        outcome,
		StartTime:      *status.StartTime,
		CompletionTime: *status.CompletionTime,
	}
	if err := p.store.Append(sample); err != nil {
		logger.WithError(err).Warn("sample not recorded")
		p.metrics.RecordAnomaly(anomalyInvalidInterval)
		return
	}
	p.metrics.RecordResetDuration(string(outcome), sample.Duration())
	logger.Infof("job %s after %s", job.State, sample.Duration())
}

func isComplete(jobs []*TrackedJob) bool {
	for _, job := range jobs {
		if !job.State.IsTerminal() {
			return false
		}
	}
	return true
}

func countStates(jobs []*TrackedJob) map[string]int {
	counts := map[string]int{}
	for _, state := range []JobState{Unknown, Pending, Running, Succeeded, Failed, Missing} {
		counts[state.String()] = 0
	}
	for _, job := range jobs {
		counts[job.State.String()]++
	}
	return counts
}

func formatCounts(counts map[string]int) string {
	states := maps.Keys(counts)
	sort.Strings(states)
	parts := make([]string, 0, len(states))
	for _, state := range states {
		if counts[state] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[state], state))
		}
	}
	return strings.Join(parts, ", ")
}

func unfinished(jobs []*TrackedJob) []string {
	var names []string
	for _, job := range jobs {
		if !job.State.IsTerminal() {
			names = append(names, job.Name)
		}
	}
	return names
}
