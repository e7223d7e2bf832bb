package resetbench

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"k8s.io/client-go/kubernetes"
	"k8s.io/utils/clock"

	"github.com/G-Research/resetbench/internal/resetbench/build"
	"github.com/G-Research/resetbench/internal/resetbench/cleanup"
	"github.com/G-Research/resetbench/internal/resetbench/cluster"
	"github.com/G-Research/resetbench/internal/resetbench/configuration"
	"github.com/G-Research/resetbench/internal/resetbench/jobspec"
	"github.com/G-Research/resetbench/internal/resetbench/launcher"
	"github.com/G-Research/resetbench/internal/resetbench/metrics"
	"github.com/G-Research/resetbench/internal/resetbench/nodes"
	"github.com/G-Research/resetbench/internal/resetbench/poller"
	"github.com/G-Research/resetbench/internal/resetbench/report"
	"github.com/G-Research/resetbench/internal/resetbench/samples"
	"github.com/G-Research/resetbench/internal/resetbench/scheduler"
	"github.com/G-Research/resetbench/internal/resetbench/stats"
)

type App struct {
	// Parameters passed to the CLI by the user.
	Params *configuration.BenchmarkConfiguration
	// Out is used to write the output. Defaults to standard out,
	// but can be overridden in tests to make assertions on the applications's output.
	Out io.Writer
	// Clock used for run ids and polling. Tests can use a fake clock.
	Clock clock.Clock
	// KubernetesClient, when set, is used instead of a client built from Params.Kubernetes.
	KubernetesClient kubernetes.Interface
	// ExitHook is run once the benchmark ends. Defaults to a no-op, or to printing the
	// cleanup selector if Params.Output.LogCleanupSelector is set.
	ExitHook cleanup.ExitHook
}

// New instantiates an App with default parameters, writing to standard out.
func New() *App {
	return &App{
		Params: &configuration.BenchmarkConfiguration{},
		Out:    os.Stdout,
		Clock:  clock.RealClock{},
	}
}

// Version prints build information (e.g., current git commit) to the app output.
func (a *App) Version() error {
	w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "Version:\t%s\n", build.ReleaseVersion)
	fmt.Fprintf(w, "Commit:\t%s\n", build.GitCommit)
	fmt.Fprintf(w, "Go version:\t%s\n", build.GoVersion)
	fmt.Fprintf(w, "Built:\t%s\n", build.BuildTime)
	return nil
}

// Run discovers the benchmark nodes, runs every batch and writes the samples and summary of the run.
// Configuration problems, an empty node set and submission failures are returned as errors;
// collecting no samples is not an error.
func (a *App) Run(ctx context.Context) error {
	config := a.Params
	if err := config.Validate(); err != nil {
		return err
	}
	template, err := jobspec.LoadTemplate(config.Job.TemplatePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(config.Output.Directory, 0o755); err != nil {
		return errors.WithStack(err)
	}
	client := a.KubernetesClient
	if client == nil {
		client, err = cluster.CreateKubernetesClient(&config.Kubernetes)
		if err != nil {
			return err
		}
	}

	runId := config.RunId
	if runId == "" {
		runId = jobspec.NewRunId(a.Clock)
	}
	logger := log.WithField("runId", runId)

	discoverer := nodes.NewKubernetesDiscoverer(client, config.Nodes.Selector, config.Nodes.Names, config.Nodes.SkipUnschedulable)
	nodeNames, err := discoverer.Discover(ctx)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	store := samples.NewStore()
	jobLauncher := launcher.NewKubernetesJobLauncher(client, config.Kubernetes.Namespace, template, config.Job.NamePrefix, config.Job.Threshold)
	jobPoller := poller.New(
		poller.NewKubernetesJobStatusSource(client, config.Kubernetes.Namespace),
		store,
		m,
		a.Clock,
		config.Polling.Interval,
		config.Polling.MaxWait,
	)
	benchmark := scheduler.New(jobLauncher, jobPoller, m, runId, config.TargetRuns, config.Job.LaunchParallelism)

	defer func() {
		if err := a.exitHook().OnExit(context.Background(), runId, config.Kubernetes.Namespace); err != nil {
			logger.WithError(err).Warn("exit hook failed")
		}
	}()

	started := a.Clock.Now()
	result, runErr := benchmark.Run(ctx, nodeNames)
	if runErr != nil {
		logger.WithError(runErr).Error("benchmark terminated early")
	}

	summary := report.NewRunSummary(stats.NewReport(store.Durations()))
	summary.RunId = runId
	summary.Namespace = config.Kubernetes.Namespace
	summary.NodeSelector = config.Nodes.Selector
	summary.Nodes = result.Nodes
	summary.TargetRuns = config.TargetRuns
	summary.Batches = result.Batches
	summary.BatchesCompleted = result.BatchesCompleted
	summary.JobsCreated = result.JobsCreated
	summary.Started = started
	summary.Finished = a.Clock.Now()
	if runErr != nil {
		summary.TerminationReason = runErr.Error()
	}

	runDirectory, err := report.WriteRunDirectory(config.Output.Directory, summary, store.Samples())
	if err != nil {
		logger.WithError(err).Error("failed to write run output")
	} else {
		logger.Infof("wrote samples and summary to %s", runDirectory)
	}
	summary.Print(a.Out)

	if config.Metrics.PushGatewayUrl != "" {
		if err := m.Push(config.Metrics.PushGatewayUrl, config.Metrics.JobName, runId, prometheus.DefaultGatherer); err != nil {
			logger.WithError(err).Warn("failed to push metrics")
		}
	}

	if runErr != nil {
		return runErr
	}
	return err
}

func (a *App) exitHook() cleanup.ExitHook {
	if a.ExitHook != nil {
		return a.ExitHook
	}
	if a.Params.Output.LogCleanupSelector {
		return cleanup.SelectorHook{Out: a.Out}
	}
	return cleanup.NoopHook{}
}
