package cleanup

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSelector(t *testing.T) {
	assert.Equal(t, "resetbench.io/run-id=l8pv3pc0", RunSelector("l8pv3pc0"))
}

func TestSelectorHook(t *testing.T) {
	out := &bytes.Buffer{}
	err := SelectorHook{Out: out}.OnExit(context.Background(), "l8pv3pc0", "gpu-benchmarks")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "kubectl delete jobs -n gpu-benchmarks -l resetbench.io/run-id=l8pv3pc0")
}

func TestNoopHook(t *testing.T) {
	assert.NoError(t, NoopHook{}.OnExit(context.Background(), "run", "default"))
}
