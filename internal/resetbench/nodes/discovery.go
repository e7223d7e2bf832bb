package nodes

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/G-Research/resetbench/internal/common/benchmarkerrors"
)

// ErrNoNodes is returned when discovery finds no node to benchmark.
// It carries no stack trace; wrap it with errors.WithStack where it is returned.
var ErrNoNodes = &benchmarkerrors.ErrNotFound{
	Type:    "node",
	Value:   "",
	Message: "no nodes match the node selector",
}

type Discoverer interface {
	Discover(ctx context.Context) ([]string, error)
}

// KubernetesDiscoverer lists the nodes matching a label selector.
type KubernetesDiscoverer struct {
	client            kubernetes.Interface
	selector          string
	allowList         []string
	skipUnschedulable bool
}

func NewKubernetesDiscoverer(client kubernetes.Interface, selector string, allowList []string, skipUnschedulable bool) *KubernetesDiscoverer {
	return &KubernetesDiscoverer{
		client:            client,
		selector:          selector,
		allowList:         allowList,
		skipUnschedulable: skipUnschedulable,
	}
}

// Discover returns the sorted names of the benchmark nodes, or ErrNoNodes if there are none.
func (d *KubernetesDiscoverer) Discover(ctx context.Context) ([]string, error) {
	nodeList, err := d.client.CoreV1().Nodes().List(ctx, metav1.ListOptions{LabelSelector: d.selector})
	if err != nil {
		return nil, errors.Wrapf(err, "listing nodes matching %q", d.selector)
	}

	nodes := make([]*v1.Node, 0, len(nodeList.Items))
	for i := range nodeList.Items {
		nodes = append(nodes, &nodeList.Items[i])
	}
	nodes = FilterNodes(nodes, func(node *v1.Node) bool {
		if d.skipUnschedulable && node.Spec.Unschedulable {
			log.WithField("node", node.Name).Info("skipping unschedulable node")
			return false
		}
		return len(d.allowList) == 0 || slices.Contains(d.allowList, node.Name)
	})

	names := make([]string, 0, len(nodes))
	for _, node := range nodes {
		names = append(names, node.Name)
	}
	slices.Sort(names)

	if len(names) == 0 {
		return nil, errors.WithStack(ErrNoNodes)
	}
	log.Infof("discovered %d nodes matching %q", len(names), d.selector)
	return names, nil
}

func FilterNodes(nodes []*v1.Node, filter func(node *v1.Node) bool) []*v1.Node {
	filtered := make([]*v1.Node, 0, len(nodes))

	for _, node := range nodes {
		if filter(node) {
			filtered = append(filtered, node)
		}
	}

	return filtered
}
