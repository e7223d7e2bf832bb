package configuration

import "time"

// NoTimeout disables the per-batch wait limit; a batch is then awaited until every job is terminal.
const NoTimeout time.Duration = 0

const (
	DefaultPollInterval = 10 * time.Second
	DefaultNamePrefix   = "gpu-reset"
)

type KubernetesConfiguration struct {
	// Use the in-cluster service account rather than a kubeconfig.
	InClusterDeployment bool
	// Path to a kubeconfig; the default loading rules are used when empty.
	ConfigLocation string
	Namespace      string
	QPS            float32
	Burst          int
}

type NodeConfiguration struct {
	// Label selector used to discover benchmark nodes, e.g. "nvidia.com/gpu.present=true".
	Selector string
	// Optional allow-list intersected with the discovered nodes.
	Names []string
	// Exclude nodes with spec.unschedulable set.
	SkipUnschedulable bool
}

type JobConfiguration struct {
	// Path to the job manifest template.
	TemplatePath string
	// Prefix of every generated job name.
	NamePrefix string
	// Reset threshold substituted into the template.
	Threshold string
	// Number of jobs created concurrently within a batch.
	LaunchParallelism int
}

type PollingConfiguration struct {
	Interval time.Duration
	// Maximum time to wait for a single batch. NoTimeout waits forever.
	MaxWait time.Duration
}

type OutputConfiguration struct {
	// Directory under which a per-run directory is created.
	Directory string
	// Print the label selector of the run's jobs on exit.
	LogCleanupSelector bool
}

type MetricsConfiguration struct {
	// Pushgateway url metrics are pushed to once the run finishes. Disabled when empty.
	PushGatewayUrl string
	JobName        string
}

type BenchmarkConfiguration struct {
	// Total number of resets to run across all nodes.
	TargetRuns int
	// Overrides the generated run id when set.
	RunId      string
	LogLevel   string
	Kubernetes KubernetesConfiguration
	Nodes      NodeConfiguration
	Job        JobConfiguration
	Polling    PollingConfiguration
	Output     OutputConfiguration
	Metrics    MetricsConfiguration
}
