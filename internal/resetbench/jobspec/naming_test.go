package jobspec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/apimachinery/pkg/util/validation"
)

func TestJobName(t *testing.T) {
	name := JobName("gpu-reset", JobKey{RunId: "l9a2k3", Batch: 2, Node: "gpu-node-1"})
	assert.Equal(t, "gpu-reset-l9a2k3-b2-gpu-node-1-"+NodeHash("gpu-node-1"), name)
	assert.Empty(t, validation.IsDNS1123Label(name))
}

func TestJobName_Deterministic(t *testing.T) {
	key := JobKey{RunId: "l9a2k3", Batch: 3, Node: "ip-10-0-0-1.ec2.internal"}
	assert.Equal(t, JobName("gpu-reset", key), JobName("gpu-reset", key))
}

func TestJobName_Distinct(t *testing.T) {
	keys := []JobKey{
		{RunId: "run1", Batch: 1, Node: "node-a"},
		{RunId: "run1", Batch: 2, Node: "node-a"},
		{RunId: "run1", Batch: 1, Node: "node-b"},
		{RunId: "run2", Batch: 1, Node: "node-a"},
		{RunId: "run1", Batch: 11, Node: "node-a"},
		// These sanitise to the same text and are told apart by the hash.
		{RunId: "run1", Batch: 1, Node: "node.a"},
		{RunId: "run1", Batch: 1, Node: "NODE-A"},
	}
	seen := map[string]JobKey{}
	for _, key := range keys {
		name := JobName("gpu-reset", key)
		previous, exists := seen[name]
		assert.False(t, exists, "%v and %v both encode to %s", previous, key, name)
		seen[name] = key
	}
}

func TestJobName_LongNodeNameIsTruncated(t *testing.T) {
	node := "very-long-node-name-" + strings.Repeat("x", 80) + ".cluster.example.com"
	name := JobName("gpu-reset", JobKey{RunId: "l9a2k3", Batch: 120, Node: node})

	assert.LessOrEqual(t, len(name), validation.DNS1123LabelMaxLength)
	assert.Empty(t, validation.IsDNS1123Label(name))
	assert.True(t, strings.HasPrefix(name, "gpu-reset-l9a2k3-b120-very-long-node-name-"))
	assert.True(t, strings.HasSuffix(name, "-"+NodeHash(node)))
}

func TestJobName_NodeWithNoLabelCharacters(t *testing.T) {
	name := JobName("gpu-reset", JobKey{RunId: "r", Batch: 1, Node: "___"})
	assert.Equal(t, "gpu-reset-r-b1-"+NodeHash("___"), name)
	assert.Empty(t, validation.IsDNS1123Label(name))
}

func TestJobName_LongPrefixIsShortened(t *testing.T) {
	prefix := strings.Repeat("p", 50)
	key := JobKey{RunId: "l8pv3pc0", Batch: 7, Node: "gpu-node-1"}

	name := JobName(prefix, key)

	assert.Len(t, name, validation.DNS1123LabelMaxLength)
	assert.Empty(t, validation.IsDNS1123Label(name))
	assert.True(t, strings.HasSuffix(name, "-l8pv3pc0-b7-"+NodeHash("gpu-node-1")))
	assert.NotEqual(t, name, JobName(prefix, JobKey{RunId: "l8pv3pc0", Batch: 7, Node: "gpu-node-2"}))
}

func TestJobName_ShortenedPrefixDoesNotEndInDash(t *testing.T) {
	prefix := strings.Repeat("p", 41) + "-" + strings.Repeat("q", 10)
	name := JobName(prefix, JobKey{RunId: "l8pv3pc0", Batch: 1, Node: "n"})

	assert.Equal(t, strings.Repeat("p", 41)+"-l8pv3pc0-b1-"+NodeHash("n"), name)
	assert.Empty(t, validation.IsDNS1123Label(name))
}

func TestNameFits(t *testing.T) {
	assert.True(t, NameFits("gpu-reset", "l8pv3pc0", 1000))
	assert.True(t, NameFits(strings.Repeat("p", 40), "l8pv3pc0", 999))
	assert.False(t, NameFits(strings.Repeat("p", 40), "l8pv3pc0", 1000))
	assert.False(t, NameFits(strings.Repeat("p", 50), "l8pv3pc0", 1))
}

func TestNodeHash(t *testing.T) {
	assert.Len(t, NodeHash("gpu-node-1"), 8)
	assert.NotEqual(t, NodeHash("node.a"), NodeHash("node-a"))
}
