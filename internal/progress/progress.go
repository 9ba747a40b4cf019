// =============================================================================
// Survey Address Converter - Run Progress
// =============================================================================
//
// This package tracks the progress of conversion runs. Each run has its own
// id, its own last-known state and its own subscribers, so concurrent runs
// never see each other's updates. Finished runs leave a Result in the Store,
// which hands it out exactly once.
//
// FLOW:
//   1. Registry.Start creates a Run with a fresh id
//   2. The converter calls Run.Report as it advances
//   3. Subscribers (SSE, CLI progress bar) receive every distinct state
//   4. Run.Finish stores the Result and closes every subscription
//
// =============================================================================

package progress

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// STATUS AND UPDATES
// =============================================================================

// Status is the lifecycle state carried by an Update.
type Status string

const (
	StatusConnected  Status = "connected"
	StatusProcessing Status = "processing"
	StatusWaiting    Status = "waiting"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Terminal reports whether no update can follow this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Update is one progress state.
type Update struct {
	Message  string `json:"message"`
	Progress int    `json:"progress"`
	Current  int    `json:"current,omitempty"`
	Total    int    `json:"total,omitempty"`
	Status   Status `json:"status"`
}

// merge overlays the non-zero fields of next onto u.
func (u Update) merge(next Update) Update {
	if next.Message != "" {
		u.Message = next.Message
	}
	if next.Progress != 0 {
		u.Progress = next.Progress
	}
	if next.Current != 0 {
		u.Current = next.Current
	}
	if next.Total != 0 {
		u.Total = next.Total
	}
	if next.Status != "" {
		u.Status = next.Status
	}
	return u
}

// Reporter receives progress updates.
type Reporter interface {
	Report(Update)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Update)

// Report calls f(u).
func (f ReporterFunc) Report(u Update) { f(u) }

// Nop discards every update.
var Nop Reporter = ReporterFunc(func(Update) {})

// =============================================================================
// RESULTS
// =============================================================================

// Result is the outcome of a finished run.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	// Mode is "csv" or "xml".
	Mode string `json:"mode,omitempty"`

	// File is the name of the produced file inside the download directory.
	File string `json:"file,omitempty"`

	// Rows is the number of rows written.
	Rows int `json:"rows"`

	// Summary holds row counts per validation label and other totals.
	Summary map[string]int `json:"summary,omitempty"`

	Error string `json:"error,omitempty"`
}

// Store keeps finished results until they are read.
type Store struct {
	mu      sync.Mutex
	results map[string]Result
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{results: make(map[string]Result)}
}

// Put stores the result of a run, replacing any previous one.
func (s *Store) Put(id string, r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[id] = r
}

// Take returns the result of a run and removes it. The second call for the
// same id reports false.
func (s *Store) Take(id string) (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[id]
	if ok {
		delete(s.results, id)
	}
	return r, ok
}

// Len returns the number of results waiting to be read.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry creates and finds runs.
type Registry struct {
	mu    sync.RWMutex
	runs  map[string]*Run
	store *Store
}

// NewRegistry returns an empty registry with its own result store.
func NewRegistry() *Registry {
	return &Registry{
		runs:  make(map[string]*Run),
		store: NewStore(),
	}
}

// Start creates a run with a new id.
func (r *Registry) Start() *Run {
	run := newRun(uuid.NewString(), r.store)

	r.mu.Lock()
	r.runs[run.id] = run
	r.mu.Unlock()

	return run
}

// Get finds a run by id.
func (r *Registry) Get(id string) (*Run, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	return run, ok
}

// Take returns the result of a finished run and forgets the run.
func (r *Registry) Take(id string) (Result, bool) {
	res, ok := r.store.Take(id)
	if ok {
		r.mu.Lock()
		delete(r.runs, id)
		r.mu.Unlock()
	}
	return res, ok
}

// Evict forgets runs that finished more than age ago, together with their
// unread results, and returns how many were removed. Runs still in progress
// are kept.
func (r *Registry) Evict(age time.Duration) int {
	cutoff := time.Now().Add(-age)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, run := range r.runs {
		if !run.finishedBefore(cutoff) {
			continue
		}
		delete(r.runs, id)
		r.store.Take(id)
		removed++
	}
	return removed
}

// Store returns the result store.
func (r *Registry) Store() *Store {
	return r.store
}
