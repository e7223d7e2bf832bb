package configuration

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/G-Research/resetbench/internal/common/benchmarkerrors"
	"github.com/G-Research/resetbench/internal/resetbench/jobspec"
)

// Validate checks the configuration before any job is created and returns every problem found.
func (config *BenchmarkConfiguration) Validate() error {
	var result *multierror.Error

	if config.TargetRuns <= 0 {
		result = multierror.Append(result, &benchmarkerrors.ErrInvalidArgument{
			Name:    "targetRuns",
			Value:   config.TargetRuns,
			Message: "must be positive",
		})
	}
	if _, err := log.ParseLevel(config.LogLevel); err != nil {
		result = multierror.Append(result, &benchmarkerrors.ErrInvalidArgument{
			Name:    "logLevel",
			Value:   config.LogLevel,
			Message: err.Error(),
		})
	}
	if config.RunId != "" {
		if msgs := validation.IsDNS1123Label(config.RunId); len(msgs) > 0 {
			result = multierror.Append(result, &benchmarkerrors.ErrInvalidArgument{
				Name:    "runId",
				Value:   config.RunId,
				Message: msgs[0],
			})
		}
	}
	if config.Kubernetes.Namespace == "" {
		result = multierror.Append(result, &benchmarkerrors.ErrInvalidArgument{
			Name:    "kubernetes.namespace",
			Value:   config.Kubernetes.Namespace,
			Message: "not provided",
		})
	}
	if _, err := labels.Parse(config.Nodes.Selector); err != nil {
		result = multierror.Append(result, &benchmarkerrors.ErrInvalidArgument{
			Name:    "nodes.selector",
			Value:   config.Nodes.Selector,
			Message: err.Error(),
		})
	}
	if msgs := validation.IsDNS1123Label(config.Job.NamePrefix); len(msgs) > 0 {
		result = multierror.Append(result, &benchmarkerrors.ErrInvalidArgument{
			Name:    "job.namePrefix",
			Value:   config.Job.NamePrefix,
			Message: msgs[0],
		})
	} else if config.TargetRuns > 0 && !jobspec.NameFits(config.Job.NamePrefix, config.runIdForNaming(), config.TargetRuns) {
		result = multierror.Append(result, &benchmarkerrors.ErrInvalidArgument{
			Name:    "job.namePrefix",
			Value:   config.Job.NamePrefix,
			Message: fmt.Sprintf("too long: job names of run %q must fit in %d characters", config.runIdForNaming(), validation.DNS1123LabelMaxLength),
		})
	}
	if config.Job.LaunchParallelism <= 0 {
		result = multierror.Append(result, &benchmarkerrors.ErrInvalidArgument{
			Name:    "job.launchParallelism",
			Value:   config.Job.LaunchParallelism,
			Message: "must be positive",
		})
	}
	if err := validateTemplatePath(config.Job.TemplatePath); err != nil {
		result = multierror.Append(result, err)
	}
	if config.Polling.Interval <= 0 {
		result = multierror.Append(result, &benchmarkerrors.ErrInvalidArgument{
			Name:    "polling.interval",
			Value:   config.Polling.Interval,
			Message: "must be positive",
		})
	}
	if config.Polling.MaxWait < 0 {
		result = multierror.Append(result, &benchmarkerrors.ErrInvalidArgument{
			Name:    "polling.maxWait",
			Value:   config.Polling.MaxWait,
			Message: "must not be negative",
		})
	}
	if config.Output.Directory == "" {
		result = multierror.Append(result, &benchmarkerrors.ErrInvalidArgument{
			Name:    "output.directory",
			Value:   config.Output.Directory,
			Message: "not provided",
		})
	}
	return result.ErrorOrNil()
}

// runIdForNaming stands in for a generated run id, which is not known until the run starts.
func (config *BenchmarkConfiguration) runIdForNaming() string {
	if config.RunId != "" {
		return config.RunId
	}
	return strings.Repeat("x", jobspec.GeneratedRunIdLength)
}

func validateTemplatePath(path string) error {
	if path == "" {
		return &benchmarkerrors.ErrInvalidArgument{
			Name:    "job.templatePath",
			Value:   path,
			Message: "not provided",
		}
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return errors.WithStack(&benchmarkerrors.ErrNotFound{
			Type:  "job template",
			Value: path,
		})
	} else if err != nil {
		return errors.WithStack(err)
	}
	if info.IsDir() {
		return &benchmarkerrors.ErrInvalidArgument{
			Name:    "job.templatePath",
			Value:   path,
			Message: "is a directory",
		}
	}
	return nil
}
