package jobspec

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

// JobKey identifies one job of a run: the job launched on Node in Batch.
type JobKey struct {
	RunId string
	Batch int
	Node  string
}

const nodeHashLength = 8

// NodeHash is the 8 hex digit FNV-1a hash of a node name.
// It is used in job names and labels where the node name itself may not fit.
func NodeHash(node string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(node))
	return fmt.Sprintf("%08x", h.Sum32())
}

// JobName encodes key into a DNS-1123 label of at most 63 characters:
//
//	<prefix>-<runId>-b<batch>-<node>-<nodeHash>
//
// where <node> is the node name reduced to label characters and shortened to fit.
// The hash disambiguates node names that reduce to the same text.
// Should prefix, runId and batch alone not fit, the prefix is shortened and <node> is left out.
func JobName(prefix string, key JobKey) string {
	run := "-" + key.RunId + "-b" + strconv.Itoa(key.Batch)
	tail := "-" + NodeHash(key.Node)
	if excess := len(prefix) + len(run) + len(tail) - validation.DNS1123LabelMaxLength; excess > 0 {
		prefix = shorten(prefix, len(prefix)-excess)
	}
	room := validation.DNS1123LabelMaxLength - len(prefix) - len(run) - len("-") - len(tail)
	node := shorten(sanitise(key.Node), room)
	if node == "" {
		return prefix + run + tail
	}
	return prefix + run + "-" + node + tail
}

// NameFits reports whether every job name of a run with the given prefix and runId, up to batch maxBatch,
// can be encoded without shortening the prefix.
func NameFits(prefix string, runId string, maxBatch int) bool {
	fixed := len(prefix) + len("-") + len(runId) + len("-b") + len(strconv.Itoa(maxBatch)) + len("-") + nodeHashLength
	return fixed <= validation.DNS1123LabelMaxLength
}

// shorten cuts s to at most n characters without leaving a trailing '-'.
func shorten(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) > n {
		s = s[:n]
	}
	return strings.TrimRight(s, "-")
}

// sanitise lower-cases s and replaces every character outside [a-z0-9-] with '-'.
func sanitise(s string) string {
	b := strings.Builder{}
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
