package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teachkit/packgen/internal/logger"
)

// Domain errors for job lookups and transitions.
var (
	ErrNotFound = errors.New("job not found")
	ErrTerminal = errors.New("job is in a terminal state")
)

// StoreConfig holds job store settings.
type StoreConfig struct {
	// Retention is how long terminal jobs are kept before the janitor
	// evicts them.
	Retention time.Duration

	// SweepInterval is how often the janitor runs.
	SweepInterval time.Duration
}

// DefaultStoreConfig returns the default retention settings.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Retention:     24 * time.Hour,
		SweepInterval: 10 * time.Minute,
	}
}

// Archiver receives terminal jobs for persistence before and eviction.
// Implemented by the database store; nil disables archiving.
type Archiver interface {
	ArchiveJob(ctx context.Context, j Job) error
}

// Store is the process-wide job registry. One mutex guards every record:
// multiple group workers report progress concurrently into the same job.
// Created at service start; terminal entries are evicted after the
// retention window.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*Job

	cfg      StoreConfig
	log      *logger.Logger
	archiver Archiver
	now      func() time.Time
}

// NewStore creates a job store. archiver may be nil.
func NewStore(cfg StoreConfig, log *logger.Logger, archiver Archiver) *Store {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultStoreConfig().Retention
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultStoreConfig().SweepInterval
	}
	return &Store{
		jobs:     make(map[string]*Job),
		cfg:      cfg,
		log:      log,
		archiver: archiver,
		now:      time.Now,
	}
}

// Create registers a new pending job and returns its ID.
func (s *Store) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.jobs[id] = &Job{
		ID:        id,
		Status:    StatusPending,
		Groups:    make(map[string]GroupState),
		Renders:   make(map[string]RenderState),
		CreatedAt: s.now(),
	}
	return id
}

// Get returns a snapshot of the job. The snapshot's maps are copies; the
// result payload is immutable once attached (updates swap the pointer).
func (s *Store) Get(id string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	snap := *j
	snap.Groups = maps.Clone(j.Groups)
	snap.Renders = maps.Clone(j.Renders)
	return snap, nil
}

// SetStatus transitions the job, recording a progress message. Moving out
// of a terminal state is refused.
func (s *Store) SetStatus(id string, status Status, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if j.Status.Terminal() {
		return fmt.Errorf("%w: cannot move %s from %s to %s", ErrTerminal, id, j.Status, status)
	}

	j.Status = status
	j.Message = message
	if status.Terminal() {
		j.CompletedAt = s.now()
	}
	return nil
}

// SetMessage updates the progress message without changing status.
func (s *Store) SetMessage(id, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if j.Status.Terminal() {
		return nil
	}
	j.Message = message
	return nil
}

// SetGroupState records one group's sub-status.
func (s *Store) SetGroupState(id, groupID string, state GroupState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if j.Groups == nil {
		j.Groups = make(map[string]GroupState)
	}
	j.Groups[groupID] = state
	return nil
}

// SetRenderState records one nested render job's state.
func (s *Store) SetRenderState(id string, state RenderState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if j.Renders == nil {
		j.Renders = make(map[string]RenderState)
	}
	j.Renders[state.RenderID] = state
	return nil
}

// Complete attaches the result and moves the job to its final status.
func (s *Store) Complete(id string, result *Result, status Status, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if j.Status.Terminal() {
		return fmt.Errorf("%w: cannot complete %s from %s", ErrTerminal, id, j.Status)
	}

	j.Result = result
	j.Status = status
	j.Message = message
	j.CompletedAt = s.now()
	return nil
}

// Fail moves the job to failed with the given error detail. The raw
// upstream error text is preserved, never dropped.
func (s *Store) Fail(id string, runErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if j.Status.Terminal() {
		return fmt.Errorf("%w: cannot fail %s from %s", ErrTerminal, id, j.Status)
	}

	j.Status = StatusFailed
	j.Error = runErr.Error()
	j.Message = "run failed"
	j.CompletedAt = s.now()
	return nil
}

// UpdateResult applies fn to a deep copy of the job's result and swaps
// the pointer in, so snapshots handed out by Get stay stable. Used by
// render callbacks to attach asset references.
func (s *Store) UpdateResult(id string, fn func(*Result)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if j.Result == nil {
		return fmt.Errorf("job %s has no result to update", id)
	}

	clone, err := cloneResult(j.Result)
	if err != nil {
		return fmt.Errorf("clone result for %s: %w", id, err)
	}
	fn(clone)
	j.Result = clone
	return nil
}

// RunJanitor evicts terminal jobs older than the retention window until
// the context is canceled. Started at service boot.
func (s *Store) RunJanitor(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Store) sweep(ctx context.Context) {
	cutoff := s.now().Add(-s.cfg.Retention)

	s.mu.Lock()
	var expired []*Job
	for id, j := range s.jobs {
		if j.Status.Terminal() && j.CompletedAt.Before(cutoff) {
			expired = append(expired, j)
			delete(s.jobs, id)
		}
	}
	s.mu.Unlock()

	for _, j := range expired {
		if s.archiver != nil {
			if err := s.archiver.ArchiveJob(ctx, *j); err != nil {
				s.log.Warn("failed to archive evicted job", "job_id", j.ID, "error", err)
			}
		}
		s.log.Info("evicted terminal job", "job_id", j.ID, "status", j.Status)
	}
}

// Len returns the number of live jobs.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func cloneResult(r *Result) (*Result, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var clone Result
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}
