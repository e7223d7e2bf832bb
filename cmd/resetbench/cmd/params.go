package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/G-Research/resetbench/internal/common"
	"github.com/G-Research/resetbench/internal/resetbench"
	"github.com/G-Research/resetbench/internal/resetbench/configuration"
)

// flagKeys maps each command line flag onto the configuration key it sets.
var flagKeys = map[string]string{
	"targetRuns":        "targetRuns",
	"runId":             "runId",
	"logLevel":          "logLevel",
	"inCluster":         "kubernetes.inClusterDeployment",
	"kubeconfig":        "kubernetes.configLocation",
	"namespace":         "kubernetes.namespace",
	"qps":               "kubernetes.qps",
	"burst":             "kubernetes.burst",
	"selector":          "nodes.selector",
	"nodes":             "nodes.names",
	"skipUnschedulable": "nodes.skipUnschedulable",
	"template":          "job.templatePath",
	"namePrefix":        "job.namePrefix",
	"threshold":         "job.threshold",
	"parallelism":       "job.launchParallelism",
	"pollInterval":      "polling.interval",
	"maxWait":           "polling.maxWait",
	"outputDir":         "output.directory",
	"printCleanup":      "output.logCleanupSelector",
	"pushGateway":       "metrics.pushGatewayUrl",
}

func addBenchmarkFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Int("targetRuns", 10, "Total number of resets to run across all nodes.")
	flags.String("runId", "", "Identifier of this run; generated from the current time when empty.")
	flags.String("logLevel", "info", "Log level, e.g., 'debug' or 'warn'.")
	flags.Bool("inCluster", false, "Use the in-cluster service account to talk to Kubernetes.")
	flags.String("kubeconfig", "", "Path to a kubeconfig; the default loading rules apply when empty.")
	flags.String("namespace", "default", "Namespace reset jobs are created in.")
	flags.Float32("qps", 20, "Maximum Kubernetes API requests per second.")
	flags.Int("burst", 40, "Maximum burst of Kubernetes API requests.")
	flags.String("selector", "nvidia.com/gpu.present=true", "Label selector of the nodes to benchmark.")
	flags.StringSlice("nodes", nil, "Only benchmark these nodes, among those matching the selector.")
	flags.Bool("skipUnschedulable", true, "Skip cordoned nodes.")
	flags.String("template", "", "Path to the reset job manifest template.")
	flags.String("namePrefix", configuration.DefaultNamePrefix, "Prefix of every job name.")
	flags.String("threshold", "", "Reset threshold substituted into the job template.")
	flags.Int("parallelism", 1, "Number of jobs created concurrently within a batch.")
	flags.Duration("pollInterval", configuration.DefaultPollInterval, "Time between job status checks.")
	flags.Duration("maxWait", configuration.NoTimeout, "Maximum time to wait for a batch; 0 waits forever.")
	flags.String("outputDir", "resetbench-results", "Directory the per-run results directory is created in.")
	flags.Bool("printCleanup", false, "Print the command to delete this run's jobs on exit.")
	flags.String("pushGateway", "", "Prometheus Pushgateway url metrics are pushed to at the end of the run.")
}

// initParams loads the configuration into app.Params. Flags take precedence over
// environment variables, which take precedence over the config file.
func initParams(cmd *cobra.Command, app *resetbench.App) error {
	v := viper.New()
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	params, err := configuration.Load(v, configFile)
	if err != nil {
		return err
	}
	app.Params = params
	// An invalid level is reported when the configuration is validated.
	_ = common.SetLogLevel(params.LogLevel)
	return nil
}
