package scheduler

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/G-Research/resetbench/internal/common/benchmarkerrors"
	"github.com/G-Research/resetbench/internal/resetbench/launcher"
	"github.com/G-Research/resetbench/internal/resetbench/metrics"
	"github.com/G-Research/resetbench/internal/resetbench/nodes"
	"github.com/G-Research/resetbench/internal/resetbench/poller"
)

// BatchAwaiter blocks until every job of a batch is terminal.
type BatchAwaiter interface {
	AwaitBatch(ctx context.Context, batch int, jobs []*poller.TrackedJob) error
}

// Result describes how far a run got. It is returned alongside any error.
type Result struct {
	RunId            string
	Nodes            int
	Batches          int
	BatchesCompleted int
	JobsCreated      int
}

// NumBatches returns the number of batches of one job per node needed to run at least targetRuns jobs.
func NumBatches(targetRuns int, nodeCount int) int {
	if targetRuns <= 0 || nodeCount <= 0 {
		return 0
	}
	return (targetRuns + nodeCount - 1) / nodeCount
}

// Scheduler runs batches of reset jobs, one job per node per batch, strictly one batch after another.
type Scheduler struct {
	launcher          launcher.JobLauncher
	awaiter           BatchAwaiter
	metrics           *metrics.Metrics
	runId             string
	targetRuns        int
	launchParallelism int
}

func New(
	jobLauncher launcher.JobLauncher,
	awaiter BatchAwaiter,
	m *metrics.Metrics,
	runId string,
	targetRuns int,
	launchParallelism int,
) *Scheduler {
	if launchParallelism < 1 {
		launchParallelism = 1
	}
	return &Scheduler{
		launcher:          jobLauncher,
		awaiter:           awaiter,
		metrics:           m,
		runId:             runId,
		targetRuns:        targetRuns,
		launchParallelism: launchParallelism,
	}
}

// Run launches and awaits every batch. Batch n+1 is launched only once every job of batch n is terminal.
// A submission error aborts the run; jobs already created are left in place.
func (s *Scheduler) Run(ctx context.Context, nodeNames []string) (*Result, error) {
	result := &Result{RunId: s.runId, Nodes: len(nodeNames)}
	if len(nodeNames) == 0 {
		return result, errors.WithStack(nodes.ErrNoNodes)
	}
	if s.targetRuns <= 0 {
		return result, errors.WithStack(&benchmarkerrors.ErrInvalidArgument{
			Name:    "targetRuns",
			Value:   s.targetRuns,
			Message: "must be positive",
		})
	}

	result.Batches = NumBatches(s.targetRuns, len(nodeNames))
	log.WithField("runId", s.runId).Infof(
		"running %d batches of %d jobs to reach %d resets", result.Batches, len(nodeNames), s.targetRuns)

	for batch := 1; batch <= result.Batches; batch++ {
		jobs, err := s.launchBatch(ctx, batch, nodeNames)
		result.JobsCreated += countLaunched(jobs)
		if err != nil {
			return result, err
		}
		log.WithFields(log.Fields{"runId": s.runId, "batch": batch}).Infof("launched %d jobs", len(jobs))

		if err := s.awaiter.AwaitBatch(ctx, batch, jobs); err != nil {
			return result, err
		}
		result.BatchesCompleted++
	}
	return result, nil
}

// launchBatch creates one job per node. Creation order across nodes is not defined.
// The returned slice is ordered like nodeNames; entries whose launch did not succeed are nil.
func (s *Scheduler) launchBatch(ctx context.Context, batch int, nodeNames []string) ([]*poller.TrackedJob, error) {
	jobs := make([]*poller.TrackedJob, len(nodeNames))
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.launchParallelism)
	for i, node := range nodeNames {
		i, node := i, node
		g.Go(func() error {
			// Skip the remaining nodes once a launch has failed.
			if err := groupCtx.Err(); err != nil {
				return err
			}
			name, err := s.launcher.Launch(groupCtx, node, s.runId, batch)
			if err != nil {
				return err
			}
			s.metrics.RecordJobCreated()
			jobs[i] = &poller.TrackedJob{
				Name:  name,
				Node:  node,
				Batch: batch,
				State: poller.Unknown,
			}
			return nil
		})
	}
	err := g.Wait()
	return jobs, err
}

func countLaunched(jobs []*poller.TrackedJob) int {
	count := 0
	for _, job := range jobs {
		if job != nil {
			count++
		}
	}
	return count
}
