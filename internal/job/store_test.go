package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(DefaultStoreConfig(), nil, nil)
}

func TestCreateStartsPending(t *testing.T) {
	s := newTestStore()
	id := s.Create()
	require.NotEmpty(t, id)

	j, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, j.Status)
	assert.False(t, j.CreatedAt.IsZero())
	assert.True(t, j.CompletedAt.IsZero())
}

func TestGetUnknownJob(t *testing.T) {
	s := newTestStore()
	_, err := s.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatusTransitions(t *testing.T) {
	s := newTestStore()
	id := s.Create()

	require.NoError(t, s.SetStatus(id, StatusProcessing, "extracting skill graph"))
	j, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, j.Status)
	assert.Equal(t, "extracting skill graph", j.Message)

	require.NoError(t, s.Complete(id, &Result{}, StatusCompleted, "done"))
	j, err = s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, j.Status)
	assert.False(t, j.CompletedAt.IsZero())
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	terminal := []struct {
		name   string
		finish func(s *Store, id string) error
	}{
		{"completed", func(s *Store, id string) error {
			return s.Complete(id, &Result{}, StatusCompleted, "done")
		}},
		{"completed_with_errors", func(s *Store, id string) error {
			return s.Complete(id, &Result{}, StatusCompletedWithErrors, "partial")
		}},
		{"failed", func(s *Store, id string) error {
			return s.Fail(id, errors.New("boom"))
		}},
	}

	for _, tc := range terminal {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore()
			id := s.Create()
			require.NoError(t, tc.finish(s, id))

			assert.ErrorIs(t, s.SetStatus(id, StatusProcessing, "again"), ErrTerminal)
			assert.ErrorIs(t, s.Complete(id, &Result{}, StatusCompleted, "again"), ErrTerminal)
			assert.ErrorIs(t, s.Fail(id, errors.New("again")), ErrTerminal)
		})
	}
}

func TestFailRecordsError(t *testing.T) {
	s := newTestStore()
	id := s.Create()

	require.NoError(t, s.Fail(id, errors.New("provider timeout")))
	j, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, j.Status)
	assert.Equal(t, "provider timeout", j.Error)
	assert.False(t, j.CompletedAt.IsZero())
}

func TestGroupAndRenderState(t *testing.T) {
	s := newTestStore()
	id := s.Create()

	require.NoError(t, s.SetGroupState(id, "group-1", GroupState{Status: StatusProcessing, Message: "drafting quiz"}))
	require.NoError(t, s.SetRenderState(id, RenderState{RenderID: "r-1", GroupID: "group-1", Kind: "slides", Status: "queued"}))

	j, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, j.Groups["group-1"].Status)
	assert.Equal(t, "queued", j.Renders["r-1"].Status)

	// The snapshot's maps are copies; mutating them must not leak back.
	j.Groups["group-1"] = GroupState{Status: StatusFailed}
	fresh, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, fresh.Groups["group-1"].Status)
}

func TestUpdateResultSwapsPointer(t *testing.T) {
	s := newTestStore()
	id := s.Create()
	require.NoError(t, s.Complete(id, &Result{Warnings: []string{"a"}}, StatusCompleted, "done"))

	before, err := s.Get(id)
	require.NoError(t, err)

	require.NoError(t, s.UpdateResult(id, func(r *Result) {
		r.Warnings = append(r.Warnings, "b")
	}))

	after, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, before.Result.Warnings)
	assert.Equal(t, []string{"a", "b"}, after.Result.Warnings)
}

func TestUpdateResultWithoutResult(t *testing.T) {
	s := newTestStore()
	id := s.Create()
	assert.Error(t, s.UpdateResult(id, func(*Result) {}))
}

type captureArchiver struct {
	jobs []Job
}

func (c *captureArchiver) ArchiveJob(_ context.Context, j Job) error {
	c.jobs = append(c.jobs, j)
	return nil
}

func TestJanitorEvictsExpiredTerminalJobs(t *testing.T) {
	arch := &captureArchiver{}
	s := NewStore(StoreConfig{Retention: time.Hour, SweepInterval: time.Minute}, nil, arch)

	now := time.Now()
	s.now = func() time.Time { return now }

	done := s.Create()
	require.NoError(t, s.Complete(done, &Result{}, StatusCompleted, "done"))
	live := s.Create()
	require.NoError(t, s.SetStatus(live, StatusProcessing, "working"))

	// Within retention: nothing evicted.
	s.sweep(context.Background())
	assert.Equal(t, 2, s.Len())

	// Past retention: only the terminal job goes.
	s.now = func() time.Time { return now.Add(2 * time.Hour) }
	s.sweep(context.Background())
	assert.Equal(t, 1, s.Len())
	_, err := s.Get(done)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(live)
	assert.NoError(t, err)

	require.Len(t, arch.jobs, 1)
	assert.Equal(t, done, arch.jobs[0].ID)
}
