package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/bookbind/internal/export"
	"github.com/google/uuid"
)

// JobStatus represents the state of a build job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusValidating JobStatus = "validating"
	StatusAssembling JobStatus = "assembling"
	StatusExporting  JobStatus = "exporting"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions will happen.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Request describes what a build job should produce.
type Request struct {
	// Format additionally exports the combined book. Empty means Markdown only.
	Format export.Format `json:"format,omitempty"`

	// Strict fails the job when validation fails, not only on missing files.
	Strict bool `json:"strict,omitempty"`
}

// Result is filled in as the build progresses.
type Result struct {
	OutputPath     string   `json:"output_path,omitempty"`
	ExportPath     string   `json:"export_path,omitempty"`
	SHA256         string   `json:"sha256,omitempty"`
	Bytes          int      `json:"bytes"`
	Chapters       int      `json:"chapters"`
	Words          int      `json:"words"`
	ReadingMinutes int      `json:"reading_minutes"`
	Missing        []string `json:"missing"`
	Empty          []string `json:"empty"`
}

// Job tracks the state of a single book build.
type Job struct {
	mu sync.Mutex

	ID      string
	Request Request

	Status JobStatus
	Phase  string
	Result Result

	CreatedAt time.Time
	UpdatedAt time.Time

	errors []string
}

// NewJob returns a queued job with a fresh ID.
func NewJob(req Request) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Request:   req,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of retained jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs. Jobs still in flight are kept regardless of
// age.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Terminal() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// UpdateResult applies fn to the job's result under the job lock.
func (j *Job) UpdateResult(fn func(*Result)) {
	j.mu.Lock()
	defer j.mu.Unlock()
	fn(&j.Result)
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Request   Request   `json:"request"`
	Result    Result    `json:"result"`
	Errors    []string  `json:"errors"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	res := j.Result
	res.Missing = append([]string{}, j.Result.Missing...)
	res.Empty = append([]string{}, j.Result.Empty...)
	return JobSnapshot{
		ID:        j.ID,
		Status:    j.Status,
		Phase:     j.Phase,
		Request:   j.Request,
		Result:    res,
		Errors:    append([]string{}, j.errors...),
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
