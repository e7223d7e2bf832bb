package nodes

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	clientTesting "k8s.io/client-go/testing"

	"github.com/G-Research/resetbench/internal/common/benchmarkerrors"
)

const gpuSelector = "nvidia.com/gpu.present=true"

func createNode(name string, gpu bool, unschedulable bool) *v1.Node {
	labels := map[string]string{}
	if gpu {
		labels["nvidia.com/gpu.present"] = "true"
	}
	return &v1.Node{
		ObjectMeta: metav1.ObjectMeta{
			Name:   name,
			Labels: labels,
		},
		Spec: v1.NodeSpec{
			Unschedulable: unschedulable,
		},
	}
}

func fakeCluster() *fake.Clientset {
	return fake.NewSimpleClientset(
		createNode("gpu-2", true, false),
		createNode("gpu-1", true, false),
		createNode("gpu-3", true, true),
		createNode("cpu-1", false, false),
	)
}

func TestDiscover_BySelector(t *testing.T) {
	discoverer := NewKubernetesDiscoverer(fakeCluster(), gpuSelector, nil, false)

	nodes, err := discoverer.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gpu-1", "gpu-2", "gpu-3"}, nodes)
}

func TestDiscover_SkipUnschedulable(t *testing.T) {
	discoverer := NewKubernetesDiscoverer(fakeCluster(), gpuSelector, nil, true)

	nodes, err := discoverer.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gpu-1", "gpu-2"}, nodes)
}

func TestDiscover_AllowList(t *testing.T) {
	discoverer := NewKubernetesDiscoverer(fakeCluster(), gpuSelector, []string{"gpu-2", "cpu-1"}, false)

	nodes, err := discoverer.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gpu-2"}, nodes)
}

func TestDiscover_NoNodes(t *testing.T) {
	discoverer := NewKubernetesDiscoverer(fakeCluster(), "nvidia.com/gpu.product=H100", nil, false)

	_, err := discoverer.Discover(context.Background())
	assert.ErrorIs(t, err, ErrNoNodes)
	var notFound *benchmarkerrors.ErrNotFound
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, benchmarkerrors.ExitCodeNotFound, benchmarkerrors.ExitCodeFromError(err))
}

func TestDiscover_NoNodesHasStackFromCaller(t *testing.T) {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	discoverer := NewKubernetesDiscoverer(fakeCluster(), "nvidia.com/gpu.product=H100", nil, false)

	_, err := discoverer.Discover(context.Background())

	var withStack stackTracer
	require.True(t, errors.As(err, &withStack))
	assert.Contains(t, fmt.Sprintf("%+v", withStack.StackTrace()), "Discover")
	_, sentinelHasStack := error(ErrNoNodes).(stackTracer)
	assert.False(t, sentinelHasStack)
}

func TestDiscover_ListFails(t *testing.T) {
	client := fakeCluster()
	client.Fake.PrependReactor("list", "nodes", func(action clientTesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("forbidden")
	})
	discoverer := NewKubernetesDiscoverer(client, gpuSelector, nil, false)

	_, err := discoverer.Discover(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoNodes)
}

func TestFilterNodes(t *testing.T) {
	node1 := createNode("node1", true, false)
	node2 := createNode("node2", true, false)

	result := FilterNodes([]*v1.Node{node1, node2}, func(node *v1.Node) bool {
		return node.Name == "node1"
	})

	assert.Equal(t, []*v1.Node{node1}, result)
}

func TestFilterNodes_WhenNoNodesMatchFilter(t *testing.T) {
	node1 := createNode("node1", true, false)

	result := FilterNodes([]*v1.Node{node1}, func(node *v1.Node) bool {
		return false
	})

	assert.Empty(t, result)
}
