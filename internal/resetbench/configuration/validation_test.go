package configuration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G-Research/resetbench/internal/common/benchmarkerrors"
)

func validConfig(t *testing.T) BenchmarkConfiguration {
	templatePath := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(templatePath, []byte("kind: Job\n"), 0o644))
	return BenchmarkConfiguration{
		TargetRuns: 7,
		LogLevel:   "info",
		Kubernetes: KubernetesConfiguration{Namespace: "default"},
		Nodes:      NodeConfiguration{Selector: "nvidia.com/gpu.present=true"},
		Job: JobConfiguration{
			TemplatePath:      templatePath,
			NamePrefix:        DefaultNamePrefix,
			Threshold:         "3",
			LaunchParallelism: 1,
		},
		Polling: PollingConfiguration{Interval: DefaultPollInterval, MaxWait: NoTimeout},
		Output:  OutputConfiguration{Directory: t.TempDir()},
	}
}

func TestValidate_Valid(t *testing.T) {
	config := validConfig(t)
	assert.NoError(t, config.Validate())
}

func TestValidate_EmptySelectorMatchesEverything(t *testing.T) {
	config := validConfig(t)
	config.Nodes.Selector = ""
	assert.NoError(t, config.Validate())
}

func TestValidate_InvalidFields(t *testing.T) {
	tests := map[string]struct {
		mutate func(c *BenchmarkConfiguration)
		field  string
	}{
		"zero target runs":     {func(c *BenchmarkConfiguration) { c.TargetRuns = 0 }, "targetRuns"},
		"bad log level":        {func(c *BenchmarkConfiguration) { c.LogLevel = "loud" }, "logLevel"},
		"bad run id":           {func(c *BenchmarkConfiguration) { c.RunId = "Not_Valid" }, "runId"},
		"no namespace":         {func(c *BenchmarkConfiguration) { c.Kubernetes.Namespace = "" }, "kubernetes.namespace"},
		"bad selector":         {func(c *BenchmarkConfiguration) { c.Nodes.Selector = "a in (b" }, "nodes.selector"},
		"bad prefix":           {func(c *BenchmarkConfiguration) { c.Job.NamePrefix = "GPU reset" }, "job.namePrefix"},
		"prefix too long":      {func(c *BenchmarkConfiguration) { c.Job.NamePrefix = strings.Repeat("p", 50) }, "job.namePrefix"},
		"zero parallelism":     {func(c *BenchmarkConfiguration) { c.Job.LaunchParallelism = 0 }, "job.launchParallelism"},
		"no template":          {func(c *BenchmarkConfiguration) { c.Job.TemplatePath = "" }, "job.templatePath"},
		"zero interval":        {func(c *BenchmarkConfiguration) { c.Polling.Interval = 0 }, "polling.interval"},
		"negative max wait":    {func(c *BenchmarkConfiguration) { c.Polling.MaxWait = -time.Second }, "polling.maxWait"},
		"no output directory":  {func(c *BenchmarkConfiguration) { c.Output.Directory = "" }, "output.directory"},
		"template a directory": {func(c *BenchmarkConfiguration) { c.Job.TemplatePath = os.TempDir() }, "job.templatePath"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			config := validConfig(t)
			tc.mutate(&config)

			err := config.Validate()
			require.Error(t, err)
			var invalid *benchmarkerrors.ErrInvalidArgument
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tc.field, invalid.Name)
			assert.Equal(t, benchmarkerrors.ExitCodeInvalidArgument, benchmarkerrors.ExitCodeFromError(err))
		})
	}
}

func TestValidate_MissingTemplate(t *testing.T) {
	config := validConfig(t)
	config.Job.TemplatePath = filepath.Join(t.TempDir(), "missing.yaml")

	err := config.Validate()
	var notFound *benchmarkerrors.ErrNotFound
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "job template", notFound.Type)
	assert.Equal(t, benchmarkerrors.ExitCodeNotFound, benchmarkerrors.ExitCodeFromError(err))
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	config := validConfig(t)
	config.TargetRuns = -1
	config.Kubernetes.Namespace = ""
	config.Polling.Interval = 0

	err := config.Validate()
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 3)
}

func TestValidate_NamePrefixLength(t *testing.T) {
	config := validConfig(t)
	config.TargetRuns = 100
	// 1 + 8 + 2 + 3 + 1 + 8 characters are taken by the run id, batch and node hash.
	config.Job.NamePrefix = strings.Repeat("p", 40)
	assert.NoError(t, config.Validate())

	config.Job.NamePrefix = strings.Repeat("p", 41)
	assert.Error(t, config.Validate())

	config.RunId = "r1"
	assert.NoError(t, config.Validate())
}
