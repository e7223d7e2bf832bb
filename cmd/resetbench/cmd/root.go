package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/G-Research/resetbench/internal/resetbench"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resetbench",
		Short: "resetbench benchmarks GPU resets by running reset jobs on every selected node.",
		Long: `resetbench benchmarks GPU resets by running reset jobs on every selected node.

Jobs are run in batches of one job per node until the target number of resets is reached.
The duration of every job is written to <outputDir>/<runId>/samples.csv and P50/P90/P99
latencies are printed once all batches are done.

Persistent config can be saved in a config file so it doesn't have to be specified every command.

Example structure:
targetRuns: 100
kubernetes:
  namespace: gpu-benchmarks
job:
  templatePath: ./reset-job.yaml
  threshold: "3"

The location of this file can be passed in using the --config argument.
If not provided, $HOME/.resetbench.yaml is used.
Every setting can also be provided as an environment variable, e.g., RESETBENCH_KUBERNETES_NAMESPACE.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Config file (default is $HOME/.resetbench.yaml).")

	cmd.AddCommand(
		versionCmd(resetbench.New()),
		runCmd(resetbench.New()),
	)

	return cmd
}

// Print version info and exit.
func versionCmd(app *resetbench.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Out = cmd.OutOrStdout()
			return app.Version()
		},
	}
	return cmd
}

// Run batches of reset jobs and wait for those jobs to finish.
// Prints latency percentiles on exit.
func runCmd(app *resetbench.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the reset benchmark against the nodes matching the node selector.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			app.Out = cmd.OutOrStdout()
			return initParams(cmd, app)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Create a context that is cancelled on SIGINT/SIGTERM.
			// Samples collected so far are still written when the run is interrupted.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			stopSignal := make(chan os.Signal, 1)
			signal.Notify(stopSignal, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(stopSignal)
			go func() {
				select {
				case <-ctx.Done():
					return
				case <-stopSignal:
					cancel()
				}
			}()

			return app.Run(ctx)
		},
	}

	addBenchmarkFlags(cmd)

	return cmd
}
