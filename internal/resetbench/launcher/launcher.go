package launcher

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/component-helpers/scheduling/corev1/nodeaffinity"

	"github.com/G-Research/resetbench/internal/resetbench/jobspec"
)

const (
	RunIdLabel    = "resetbench.io/run-id"
	BatchLabel    = "resetbench.io/batch"
	NodeHashLabel = "resetbench.io/node"
	HostnameLabel = "kubernetes.io/hostname"
)

// SubmissionError is returned when a job for Node in Batch could not be rendered or created.
type SubmissionError struct {
	Node  string
	Batch int
	Cause error
}

func (err *SubmissionError) Error() string {
	return fmt.Sprintf("submitting reset job for node %s in batch %d: %s", err.Node, err.Batch, err.Cause)
}

func (err *SubmissionError) Unwrap() error {
	return err.Cause
}

type JobLauncher interface {
	Launch(ctx context.Context, node string, runId string, batch int) (string, error)
}

// KubernetesJobLauncher renders the job template for a node and creates it as a batch/v1 Job.
type KubernetesJobLauncher struct {
	client     kubernetes.Interface
	namespace  string
	template   *jobspec.Template
	namePrefix string
	threshold  string
}

func NewKubernetesJobLauncher(
	client kubernetes.Interface,
	namespace string,
	template *jobspec.Template,
	namePrefix string,
	threshold string,
) *KubernetesJobLauncher {
	return &KubernetesJobLauncher{
		client:     client,
		namespace:  namespace,
		template:   template,
		namePrefix: namePrefix,
		threshold:  threshold,
	}
}

// Launch creates exactly one job targeting node and returns its name.
// The name is derived from runId, batch and node, so it is unique across runs and batches.
func (l *KubernetesJobLauncher) Launch(ctx context.Context, node string, runId string, batch int) (string, error) {
	key := jobspec.JobKey{RunId: runId, Batch: batch, Node: node}
	name := jobspec.JobName(l.namePrefix, key)

	job, err := l.template.Render(jobspec.Parameters{
		NodeName:   node,
		Threshold:  l.threshold,
		NamePrefix: l.namePrefix,
		RunId:      runId,
		Batch:      batch,
	})
	if err != nil {
		return "", errors.WithStack(&SubmissionError{Node: node, Batch: batch, Cause: err})
	}

	job.Name = name
	job.GenerateName = ""
	job.Namespace = l.namespace
	if job.Labels == nil {
		job.Labels = map[string]string{}
	}
	job.Labels[RunIdLabel] = runId
	job.Labels[BatchLabel] = strconv.Itoa(batch)
	job.Labels[NodeHashLabel] = jobspec.NodeHash(node)

	if err := l.pinToNode(ctx, &job.Spec.Template.Spec, node); err != nil {
		return "", errors.WithStack(&SubmissionError{Node: node, Batch: batch, Cause: err})
	}

	_, err = l.client.BatchV1().Jobs(l.namespace).Create(ctx, job, metav1.CreateOptions{})
	if err != nil {
		return "", errors.WithStack(&SubmissionError{Node: node, Batch: batch, Cause: err})
	}
	log.WithFields(log.Fields{
		"job":   name,
		"node":  node,
		"batch": batch,
	}).Debug("created reset job")
	return name, nil
}

// pinToNode makes sure the pod can only be scheduled on node.
// A template without placement gets a hostname selector; placement from the template is kept
// but must select node, since a job running elsewhere would be sampled against the wrong node.
func (l *KubernetesJobLauncher) pinToNode(ctx context.Context, podSpec *v1.PodSpec, node string) error {
	if podSpec.NodeName == "" && len(podSpec.NodeSelector) == 0 && podSpec.Affinity == nil {
		podSpec.NodeSelector = map[string]string{HostnameLabel: node}
		return nil
	}
	if podSpec.NodeName != "" {
		if podSpec.NodeName != node {
			return errors.Errorf("template sets nodeName %s", podSpec.NodeName)
		}
		return nil
	}

	target, err := l.client.CoreV1().Nodes().Get(ctx, node, metav1.GetOptions{})
	if err != nil {
		return errors.WithStack(err)
	}
	matches, err := nodeaffinity.GetRequiredNodeAffinity(&v1.Pod{Spec: *podSpec}).Match(target)
	if err != nil {
		return errors.Wrap(err, "invalid node affinity in template")
	}
	if !matches {
		return errors.Errorf("template node selector and affinity do not select node %s", node)
	}
	return nil
}
