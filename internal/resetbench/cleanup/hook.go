package cleanup

import (
	"context"
	"fmt"
	"io"

	"k8s.io/apimachinery/pkg/labels"

	"github.com/G-Research/resetbench/internal/resetbench/launcher"
)

// ExitHook is invoked once when a run ends, whether or not it succeeded.
// Jobs created by the run are never deleted by resetbench itself.
type ExitHook interface {
	OnExit(ctx context.Context, runId string, namespace string) error
}

type NoopHook struct{}

func (NoopHook) OnExit(context.Context, string, string) error {
	return nil
}

// SelectorHook prints the command an operator can use to delete the jobs of a run.
type SelectorHook struct {
	Out io.Writer
}

func (h SelectorHook) OnExit(_ context.Context, runId string, namespace string) error {
	_, err := fmt.Fprintf(h.Out, "\nJobs of this run can be removed with:\n\tkubectl delete jobs -n %s -l %s\n", namespace, RunSelector(runId))
	return err
}

// RunSelector selects every job created by the run runId.
func RunSelector(runId string) string {
	return labels.SelectorFromSet(labels.Set{launcher.RunIdLabel: runId}).String()
}
