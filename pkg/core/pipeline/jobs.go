package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus describes where a background run is in its lifecycle.
type JobStatus string

const (
	StatusQueued   JobStatus = "queued"
	StatusRunning  JobStatus = "running"
	StatusComplete JobStatus = "complete"
	StatusFailed   JobStatus = "failed"
)

// jobTimeout caps one background run; a stuck provider cannot pin a
// goroutine forever.
const jobTimeout = 10 * time.Minute

// Job is one background analysis run. Outcome is set once the run finishes
// and is excluded from status payloads; clients fetch the report separately.
type Job struct {
	ID        string    `json:"id"`
	Ticker    string    `json:"ticker"`
	Status    JobStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Outcome   *Outcome  `json:"-"`
}

// Runner runs one analysis. *Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, ticker string) (*Outcome, error)
}

// JobManager is a singleton that tracks all background analysis runs.
type JobManager struct {
	jobs map[string]*Job
	mu   sync.RWMutex
}

var (
	jobManager *JobManager
	jobOnce    sync.Once
)

// GetJobManager returns the singleton instance of JobManager.
func GetJobManager() *JobManager {
	jobOnce.Do(func() {
		jobManager = newJobManager()
		// Start background cleanup routine
		go jobManager.cleanupLoop()
	})
	return jobManager
}

func newJobManager() *JobManager {
	return &JobManager{jobs: make(map[string]*Job)}
}

// StartJob queues one run in a background goroutine and returns its ID.
func (m *JobManager) StartJob(runner Runner, ticker string) string {
	now := time.Now().UTC()
	job := &Job{
		ID:        uuid.New().String(),
		Ticker:    strings.ToUpper(strings.TrimSpace(ticker)),
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	go m.runJob(job.ID, runner, job.Ticker)
	return job.ID
}

func (m *JobManager) runJob(id string, runner Runner, ticker string) {
	// Separate context: the job outlives the request that queued it.
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	m.update(id, func(j *Job) { j.Status = StatusRunning })

	outcome, err := runner.Run(ctx, ticker)
	if err != nil {
		m.update(id, func(j *Job) {
			j.Status = StatusFailed
			j.Error = err.Error()
			j.Outcome = outcome
		})
		return
	}
	m.update(id, func(j *Job) {
		j.Status = StatusComplete
		j.Outcome = outcome
	})
}

func (m *JobManager) update(id string, fn func(*Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		fn(job)
		job.UpdatedAt = time.Now().UTC()
	}
}

// GetJob returns a snapshot of one job.
func (m *JobManager) GetJob(id string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

// ActiveJobs returns snapshots of jobs that have not finished.
func (m *JobManager) ActiveJobs() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var active []*Job
	for _, job := range m.jobs {
		if job.Status == StatusQueued || job.Status == StatusRunning {
			snapshot := *job
			active = append(active, &snapshot)
		}
	}
	return active
}

// cleanupLoop removes finished jobs older than 24 hours.
func (m *JobManager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	for range ticker.C {
		m.prune(24 * time.Hour)
	}
}

func (m *JobManager) prune(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, job := range m.jobs {
		finished := job.Status == StatusComplete || job.Status == StatusFailed
		if finished && time.Since(job.UpdatedAt) > maxAge {
			delete(m.jobs, id)
		}
	}
}
