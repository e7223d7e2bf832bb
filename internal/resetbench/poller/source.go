package poller

import (
	"context"
	"time"

	"github.com/pkg/errors"
	batchv1 "k8s.io/api/batch/v1"
	v1 "k8s.io/api/core/v1"
	k8s_errors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// ErrJobNotFound is returned by a JobStatusSource when the job does not exist.
var ErrJobNotFound = errors.New("job not found")

// JobStatus is the subset of a job's status the poller needs.
// StartTime and CompletionTime are nil when not reported.
type JobStatus struct {
	Succeeded      int32
	Failed         int32
	Active         int32
	StartTime      *time.Time
	CompletionTime *time.Time
}

type JobStatusSource interface {
	GetJobStatus(ctx context.Context, name string) (*JobStatus, error)
}

// KubernetesJobStatusSource reads batch/v1 job status from the Kubernetes API.
type KubernetesJobStatusSource struct {
	client    kubernetes.Interface
	namespace string
}

func NewKubernetesJobStatusSource(client kubernetes.Interface, namespace string) *KubernetesJobStatusSource {
	return &KubernetesJobStatusSource{
		client:    client,
		namespace: namespace,
	}
}

func (s *KubernetesJobStatusSource) GetJobStatus(ctx context.Context, name string) (*JobStatus, error) {
	job, err := s.client.BatchV1().Jobs(s.namespace).Get(ctx, name, metav1.GetOptions{})
	if k8s_errors.IsNotFound(err) {
		return nil, errors.WithMessagef(ErrJobNotFound, "job %s in namespace %s", name, s.namespace)
	} else if err != nil {
		return nil, errors.WithStack(err)
	}
	status := &JobStatus{
		Succeeded:      job.Status.Succeeded,
		Failed:         job.Status.Failed,
		Active:         job.Status.Active,
		StartTime:      toTime(job.Status.StartTime),
		CompletionTime: toTime(job.Status.CompletionTime),
	}
	// The job controller only sets completionTime on success; a failed job records when it failed on its condition.
	if status.CompletionTime == nil && status.Succeeded == 0 {
		status.CompletionTime = failedAt(job)
	}
	return status, nil
}

func failedAt(job *batchv1.Job) *time.Time {
	for _, condition := range job.Status.Conditions {
		if condition.Type == batchv1.JobFailed && condition.Status == v1.ConditionTrue {
			return toTime(&condition.LastTransitionTime)
		}
	}
	return nil
}

func toTime(t *metav1.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}
