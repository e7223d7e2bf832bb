package jobspec

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	v1 "k8s.io/api/core/v1"

	"github.com/G-Research/resetbench/internal/common/benchmarkerrors"
)

var defaultParameters = Parameters{
	NodeName:   "gpu-node-1",
	Threshold:  "3",
	NamePrefix: "gpu-reset",
	RunId:      "l9a2k3",
	Batch:      1,
}

func TestLoadTemplate_Render(t *testing.T) {
	tmpl, err := LoadTemplate(filepath.Join("testdata", "job.yaml"))
	require.NoError(t, err)

	job, err := tmpl.Render(defaultParameters)
	require.NoError(t, err)

	assert.Equal(t, "Job", job.Kind)
	assert.Equal(t, "gpu-reset-", job.GenerateName)
	assert.Equal(t, v1.RestartPolicyNever, job.Spec.Template.Spec.RestartPolicy)
	container := job.Spec.Template.Spec.Containers[0]
	assert.Equal(t, []string{"nvidia-smi --gpu-reset --threshold=3 && echo reset gpu-node-1"}, container.Args)
	assert.Equal(t, []v1.EnvVar{
		{Name: "RESET_THRESHOLD", Value: "3"},
		{Name: "TARGET_NODE", Value: "gpu-node-1"},
	}, container.Env)
}

func TestLoadTemplate_DeploymentExampleDoesNotRetry(t *testing.T) {
	tmpl, err := LoadTemplate(filepath.Join("..", "..", "..", "deployment", "reset-job.yaml"))
	require.NoError(t, err)

	job, err := tmpl.Render(defaultParameters)
	require.NoError(t, err)
	require.NotNil(t, job.Spec.BackoffLimit)
	assert.Equal(t, int32(0), *job.Spec.BackoffLimit)
	assert.Equal(t, v1.RestartPolicyNever, job.Spec.Template.Spec.RestartPolicy)
}

func TestLoadTemplate_Missing(t *testing.T) {
	_, err := LoadTemplate(filepath.Join("testdata", "does-not-exist.yaml"))
	var notFound *benchmarkerrors.ErrNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestParseTemplate_Malformed(t *testing.T) {
	_, err := ParseTemplate("bad", "metadata:\n  name: {{ .NodeName \n")
	var invalid *benchmarkerrors.ErrInvalidArgument
	assert.True(t, errors.As(err, &invalid))
}

func TestRender_UnknownParameter(t *testing.T) {
	tmpl, err := ParseTemplate("unknown", "metadata:\n  name: {{ .Missing }}\n")
	require.NoError(t, err)
	_, err = tmpl.Render(defaultParameters)
	assert.Error(t, err)
}

func TestRender_NotAJob(t *testing.T) {
	tmpl, err := ParseTemplate("pod", "kind: Pod\nspec:\n  template:\n    spec:\n      containers:\n        - name: a\n")
	require.NoError(t, err)
	_, err = tmpl.Render(defaultParameters)
	assert.Error(t, err)
}

func TestRender_NoContainers(t *testing.T) {
	tmpl, err := ParseTemplate("empty", "kind: Job\nmetadata:\n  name: {{ .NodeName }}\n")
	require.NoError(t, err)
	_, err = tmpl.Render(defaultParameters)
	assert.Error(t, err)
}

func TestRender_Json(t *testing.T) {
	tmpl, err := ParseTemplate("json", `{"kind":"Job","spec":{"template":{"spec":{"nodeName":"{{ .NodeName }}","containers":[{"name":"reset"}]}}}}`)
	require.NoError(t, err)
	job, err := tmpl.Render(defaultParameters)
	require.NoError(t, err)
	assert.Equal(t, "gpu-node-1", job.Spec.Template.Spec.NodeName)
}
