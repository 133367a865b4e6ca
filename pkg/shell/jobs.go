package shell

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrNoSuchJob indicates a job ID that is not in the table.
var ErrNoSuchJob = errors.New("shell: no such job")

// Job is one background command. Its goroutine calls into the same store and
// adapter the foreground uses; the store's locking makes that safe.
type Job struct {
	ID      int
	Desc    string
	Started time.Time

	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	output string
	err    error
}

// Done reports whether the job has finished.
func (j *Job) Done() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// Result returns the job's output and error once it has finished.
func (j *Job) Result() (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.output, j.err
}

// JobTable tracks background jobs for one session.
type JobTable struct {
	mu     sync.Mutex
	nextID int
	jobs   map[int]*Job
}

// NewJobTable returns an empty table.
func NewJobTable() *JobTable {
	return &JobTable{nextID: 1, jobs: make(map[int]*Job)}
}

// Run starts fn on its own goroutine under a cancellable child of parent.
// A non-zero timeout bounds the job's lifetime.
func (t *JobTable) Run(parent context.Context, desc string, timeout time.Duration, fn func(context.Context) (string, error)) *Job {
	var ctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	t.mu.Lock()
	job := &Job{
		ID:      t.nextID,
		Desc:    desc,
		Started: time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	t.nextID++
	t.jobs[job.ID] = job
	t.mu.Unlock()

	go func() {
		defer cancel()
		output, err := fn(ctx)
		job.mu.Lock()
		job.output = output
		job.err = err
		job.mu.Unlock()
		close(job.done)
	}()

	return job
}

// Kill cancels a running job. The job stays in the table until reaped so the
// operator can still collect its (partial) outcome.
func (t *JobTable) Kill(id int) error {
	t.mu.Lock()
	job, ok := t.jobs[id]
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoSuchJob, id)
	}
	job.cancel()
	return nil
}

// Snapshot returns all tracked jobs in ID order.
func (t *JobTable) Snapshot() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	jobs := make([]*Job, 0, len(t.jobs))
	for _, j := range t.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].ID < jobs[k].ID })
	return jobs
}

// Reap removes finished jobs from the table and returns them in ID order.
func (t *JobTable) Reap() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	var finished []*Job
	for id, j := range t.jobs {
		if j.Done() {
			finished = append(finished, j)
			delete(t.jobs, id)
		}
	}
	sort.Slice(finished, func(i, k int) bool { return finished[i].ID < finished[k].ID })
	return finished
}

// CancelAll cancels every tracked job; used at session teardown.
func (t *JobTable) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, j := range t.jobs {
		j.cancel()
	}
}
