package cluster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G-Research/resetbench/internal/common/benchmarkerrors"
	"github.com/G-Research/resetbench/internal/resetbench/configuration"
)

const kubeconfig = `apiVersion: v1
kind: Config
clusters:
  - name: test
    cluster:
      server: https://127.0.0.1:6443
contexts:
  - name: test
    context:
      cluster: test
      user: test
current-context: test
users:
  - name: test
    user:
      token: abc
`

func TestCreateKubernetesClient_FromKubeconfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(kubeconfig), 0o600))

	client, err := CreateKubernetesClient(&configuration.KubernetesConfiguration{
		ConfigLocation: path,
		QPS:            10,
		Burst:          20,
	})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestCreateKubernetesClient_InvalidRateLimits(t *testing.T) {
	tests := map[string]configuration.KubernetesConfiguration{
		"zero qps":   {QPS: 0, Burst: 10},
		"zero burst": {QPS: 10, Burst: 0},
	}
	for name, config := range tests {
		t.Run(name, func(t *testing.T) {
			config := config
			_, err := CreateKubernetesClient(&config)
			var invalid *benchmarkerrors.ErrInvalidArgument
			assert.True(t, errors.As(err, &invalid))
		})
	}
}

func TestCreateKubernetesClient_MissingKubeconfig(t *testing.T) {
	_, err := CreateKubernetesClient(&configuration.KubernetesConfiguration{
		ConfigLocation: filepath.Join(t.TempDir(), "missing"),
		QPS:            10,
		Burst:          20,
	})
	assert.Error(t, err)
}
