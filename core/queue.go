package core

import "sync"

const (
	defaultQueueCap     = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// Job is a bound unit of pool work: the render steps for one task,
// captured as a closure by the engine when the task is submitted.
type Job func()

// JobQueue is the FIFO queue shared by pool workers. Dequeue order is
// submission order for every job that is actually dequeued.
type JobQueue struct {
	mu   sync.Mutex
	jobs []Job
}

// NewJobQueue creates an empty queue.
func NewJobQueue() *JobQueue {
	return &JobQueue{
		jobs: make([]Job, 0, defaultQueueCap),
	}
}

// Push appends a job to the tail of the queue.
func (q *JobQueue) Push(j Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, j)
}

// Pop removes and returns the head of the queue.
func (q *JobQueue) Pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) == 0 {
		return nil, false
	}

	job := q.jobs[0]
	// Zero out the element in the underlying array to prevent memory leak
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	q.maybeCompactLocked()

	return job, true
}

// maybeCompactLocked reallocates the backing array once the live window
// has drifted far from its start, so a long-lived queue does not pin the
// memory of every job it ever held.
func (q *JobQueue) maybeCompactLocked() {
	n := len(q.jobs)
	c := cap(q.jobs)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.jobs = make([]Job, 0, defaultQueueCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	newCap := max(max(c/2, defaultQueueCap), n)

	newSlice := make([]Job, n, newCap)
	copy(newSlice, q.jobs)
	q.jobs = newSlice
}

// Len returns the number of queued jobs.
func (q *JobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// IsEmpty reports whether the queue holds no jobs.
func (q *JobQueue) IsEmpty() bool {
	return q.Len() == 0
}

// Clear drops all queued jobs and releases their references. It returns
// how many jobs were abandoned.
func (q *JobQueue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.jobs)
	q.jobs = make([]Job, 0, defaultQueueCap)
	return n
}
