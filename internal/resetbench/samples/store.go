package samples

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Sample is the timing record of one job that reached a terminal state with valid timestamps.
type Sample struct {
	JobName        string
	Node           string
	Batch          int
	Outcome        Outcome
	StartTime      time.Time
	CompletionTime time.Time
}

func (s Sample) Duration() time.Duration {
	return s.CompletionTime.Sub(s.StartTime)
}

// ErrDuplicateSample is returned when a second sample is appended for the same job.
var ErrDuplicateSample = errors.New("sample already recorded for job")

// Store is an append-only table of samples keyed by job name.
// It is safe for concurrent use.
type Store struct {
	samples []Sample
	seen    map[string]bool
	mu      sync.Mutex
}

func NewStore() *Store {
	return &Store{
		seen: make(map[string]bool),
	}
}

// Append records s. It rejects samples with a negative duration and samples for jobs already recorded;
// in both cases the store is left unchanged.
func (store *Store) Append(s Sample) error {
	if s.JobName == "" {
		return errors.New("sample has no job name")
	}
	if s.Duration() < 0 {
		return errors.Errorf("sample for job %s completes at %s before it starts at %s", s.JobName, s.CompletionTime, s.StartTime)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.seen[s.JobName] {
		return errors.WithMessagef(ErrDuplicateSample, "job %s", s.JobName)
	}
	store.seen[s.JobName] = true
	store.samples = append(store.samples, s)
	return nil
}

func (store *Store) Contains(jobName string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.seen[jobName]
}

func (store *Store) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.samples)
}

// Samples returns a copy of all samples in append order.
func (store *Store) Samples() []Sample {
	store.mu.Lock()
	defer store.mu.Unlock()
	out := make([]Sample, len(store.samples))
	copy(out, store.samples)
	return out
}

// Durations returns the duration of every sample in append order.
func (store *Store) Durations() []time.Duration {
	store.mu.Lock()
	defer store.mu.Unlock()
	out := make([]time.Duration, 0, len(store.samples))
	for _, s := range store.samples {
		out = append(out, s.Duration())
	}
	return out
}
