package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/wdtable/internal/snapshot"
	"golang.org/x/sync/errgroup"
)

// JobStatus represents the state of a background job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// refreshTimeout bounds a background refresh; the nuclide queries are slow.
const refreshTimeout = 10 * time.Minute

// Sink persists a fetched snapshot.
type Sink interface {
	Save(ctx context.Context, f *snapshot.File) error
}

// Fetch loads the elements and nuclides of lang concurrently.
func Fetch(ctx context.Context, elements ElementSource, nuclides NuclideSource, lang string) (*snapshot.File, error) {
	return fetch(ctx, elements, nuclides, lang, func() {})
}

// fetch is Fetch with a callback run after each completed load.
func fetch(ctx context.Context, elements ElementSource, nuclides NuclideSource, lang string, step func()) (*snapshot.File, error) {
	f := &snapshot.File{Lang: lang}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := elements.Elements(ctx, lang)
		if err != nil {
			return fmt.Errorf("fetch elements: %w", err)
		}
		f.Elements = records
		step()
		return nil
	})
	g.Go(func() error {
		records, err := nuclides.Nuclides(ctx, lang)
		if err != nil {
			return fmt.Errorf("fetch nuclides: %w", err)
		}
		f.Nuclides = records
		step()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	f.FetchedAt = time.Now().UTC()
	return f, nil
}

// refreshSteps counts the element load, the nuclide load and the save.
const refreshSteps = 3

// Job represents a snapshot refresh.
type Job struct {
	ID          string     `json:"id"`
	Lang        string     `json:"lang"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	Total       int        `json:"total"`
	Elements    int        `json:"elements"`
	Nuclides    int        `json:"nuclides"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	mu sync.RWMutex
}

// Snapshot returns a thread-safe copy of job state.
func (j *Job) Snapshot() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return &Job{
		ID:          j.ID,
		Lang:        j.Lang,
		Status:      j.Status,
		Progress:    j.Progress,
		Total:       j.Total,
		Elements:    j.Elements,
		Nuclides:    j.Nuclides,
		Error:       j.Error,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}

// Done reports whether the job has completed or failed.
func (j *Job) Done() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// JobManager refreshes stored snapshots from upstream sources and tracks
// the refresh jobs.
type JobManager struct {
	jobs     map[string]*Job
	mu       sync.RWMutex
	elements ElementSource
	nuclides NuclideSource
	sink     Sink

	// Purge, if set, runs before every refresh to drop cached upstream data.
	Purge func()
}

// NewJobManager creates a job manager fetching from elements and nuclides
// and saving into sink.
func NewJobManager(elements ElementSource, nuclides NuclideSource, sink Sink) *JobManager {
	return &JobManager{
		jobs:     make(map[string]*Job),
		elements: elements,
		nuclides: nuclides,
		sink:     sink,
	}
}

// Refresh fetches the records of lang and saves them, blocking until done.
// The returned job is also listed by ListJobs.
func (m *JobManager) Refresh(ctx context.Context, lang string) (*Job, error) {
	job := newJob(lang)
	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	err := m.run(ctx, job)
	return job.Snapshot(), err
}

// StartRefresh runs a refresh of lang in the background. A refresh already
// in flight for lang is returned instead of starting another one.
func (m *JobManager) StartRefresh(lang string) *Job {
	m.mu.Lock()
	for _, job := range m.jobs {
		if job.Lang == lang && !job.Done() {
			m.mu.Unlock()
			slog.Debug("refresh already running", "job_id", job.ID, "lang", lang)
			return job
		}
	}
	job := newJob(lang)
	m.jobs[job.ID] = job
	m.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("refresh goroutine panicked", "job_id", job.ID, "panic", r)
				m.fail(job, fmt.Errorf("internal panic: %v", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		_ = m.run(ctx, job)
	}()

	return job
}

func newJob(lang string) *Job {
	job := &Job{
		ID:        uuid.New().String()[:8], // Short ID for convenience
		Lang:      lang,
		Status:    JobStatusPending,
		Total:     refreshSteps,
		StartedAt: time.Now(),
	}
	slog.Info("job created", "job_id", job.ID, "lang", lang)
	return job
}

// run executes a refresh and records its outcome on job.
func (m *JobManager) run(ctx context.Context, job *Job) error {
	m.setRunning(job)
	if m.Purge != nil {
		m.Purge()
	}

	f, err := fetch(ctx, m.elements, m.nuclides, job.Lang, func() { m.step(job) })
	if err != nil {
		m.fail(job, err)
		return err
	}

	if err := m.sink.Save(ctx, f); err != nil {
		err = fmt.Errorf("save snapshot: %w", err)
		m.fail(job, err)
		return err
	}
	m.step(job)

	m.complete(job, len(f.Elements), len(f.Nuclides))
	return nil
}

// GetJob retrieves a job by ID.
func (m *JobManager) GetJob(id string) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// ListJobs returns all jobs, most recent first.
func (m *JobManager) ListJobs() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}

	// Sort by start time descending (most recent first)
	slices.SortFunc(jobs, func(a, b *Job) int {
		return b.StartedAt.Compare(a.StartedAt)
	})

	return jobs
}

func (m *JobManager) setRunning(job *Job) {
	job.mu.Lock()
	job.Status = JobStatusRunning
	job.mu.Unlock()
}

func (m *JobManager) step(job *Job) {
	job.mu.Lock()
	job.Progress++
	job.mu.Unlock()
}

func (m *JobManager) complete(job *Job, elements, nuclides int) {
	job.mu.Lock()
	job.Status = JobStatusCompleted
	job.Elements = elements
	job.Nuclides = nuclides
	now := time.Now()
	job.CompletedAt = &now
	job.mu.Unlock()

	slog.Info("job completed", "job_id", job.ID, "lang", job.Lang, "elements", elements, "nuclides", nuclides)
}

func (m *JobManager) fail(job *Job, err error) {
	job.mu.Lock()
	job.Status = JobStatusFailed
	job.Error = err.Error()
	now := time.Now()
	job.CompletedAt = &now
	job.mu.Unlock()

	slog.Error("job failed", "job_id", job.ID, "lang", job.Lang, "error", err)
}
