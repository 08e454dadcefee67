package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teachkit/packgen/internal/drafter"
	"github.com/teachkit/packgen/internal/job"
	"github.com/teachkit/packgen/internal/pack"
)

func newJobWithPack(t *testing.T, store *job.Store) string {
	t.Helper()
	id := store.Create()
	result := &job.Result{
		Packs: []pack.TeachingPack{{
			GroupID: "group-1",
			Slides:  []pack.Slide{{Title: "Fractions", Body: "Halves and quarters."}},
			Video:   &pack.VideoScript{Title: "Fractions", Narration: "Start with a pizza."},
		}},
	}
	require.NoError(t, store.Complete(id, result, job.StatusCompleted, "done"))
	return id
}

func fastConfig() Config {
	return Config{PollInterval: time.Millisecond, PollTimeout: time.Second}
}

func waitForRender(t *testing.T, store *job.Store, jobID, renderID string, want Status) job.RenderState {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		j, err := store.Get(jobID)
		require.NoError(t, err)
		if st, ok := j.Renders[renderID]; ok && st.Status == string(want) {
			return st
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("render %s never reached %s", renderID, want)
	return job.RenderState{}
}

func TestSubmitAndAttachAsset(t *testing.T) {
	store := job.NewStore(job.DefaultStoreConfig(), nil, nil)
	jobID := newJobWithPack(t, store)

	client := NewMockClient()
	client.PollsUntilDone = 2
	svc := NewService(client, store, fastConfig(), nil)

	renderID, err := svc.Submit(context.Background(), jobID, "group-1", drafter.KindSlides, []pack.Slide{})
	require.NoError(t, err)

	st := waitForRender(t, store, jobID, renderID, StatusDone)
	assert.NotEmpty(t, st.AssetURL)

	j, err := store.Get(jobID)
	require.NoError(t, err)
	assert.Equal(t, st.AssetURL, j.Result.Packs[0].Assets.SlidesURL)
	assert.Empty(t, j.Result.Packs[0].Assets.VideoURL)
}

func TestVideoRenderFillsVideoURL(t *testing.T) {
	store := job.NewStore(job.DefaultStoreConfig(), nil, nil)
	jobID := newJobWithPack(t, store)

	svc := NewService(NewMockClient(), store, fastConfig(), nil)
	renderID, err := svc.Submit(context.Background(), jobID, "group-1", drafter.KindVideo, &pack.VideoScript{})
	require.NoError(t, err)

	waitForRender(t, store, jobID, renderID, StatusDone)
	j, err := store.Get(jobID)
	require.NoError(t, err)
	assert.NotEmpty(t, j.Result.Packs[0].Assets.VideoURL)
	assert.Empty(t, j.Result.Packs[0].Assets.SlidesURL)
}

func TestFailedRenderKeepsError(t *testing.T) {
	store := job.NewStore(job.DefaultStoreConfig(), nil, nil)
	jobID := newJobWithPack(t, store)

	client := NewMockClient()
	client.FailRender = "template error"
	svc := NewService(client, store, fastConfig(), nil)

	renderID, err := svc.Submit(context.Background(), jobID, "group-1", drafter.KindSlides, nil)
	require.NoError(t, err)

	st := waitForRender(t, store, jobID, renderID, StatusFailed)
	assert.Equal(t, "template error", st.Error)

	// A failed render must not touch the asset refs.
	j, err := store.Get(jobID)
	require.NoError(t, err)
	assert.Empty(t, j.Result.Packs[0].Assets.SlidesURL)
}

func TestSubmitRejectsInlineKinds(t *testing.T) {
	store := job.NewStore(job.DefaultStoreConfig(), nil, nil)
	svc := NewService(NewMockClient(), store, fastConfig(), nil)

	_, err := svc.Submit(context.Background(), "job", "group-1", drafter.KindQuiz, nil)
	assert.ErrorContains(t, err, "not renderable")
}

func TestSubmitPropagatesBackendError(t *testing.T) {
	store := job.NewStore(job.DefaultStoreConfig(), nil, nil)
	jobID := newJobWithPack(t, store)

	client := NewMockClient()
	client.FailSubmit = errors.New("backend unavailable")
	svc := NewService(client, store, fastConfig(), nil)

	_, err := svc.Submit(context.Background(), jobID, "group-1", drafter.KindSlides, nil)
	assert.ErrorContains(t, err, "backend unavailable")
}

func TestPayloadFor(t *testing.T) {
	p := &pack.TeachingPack{
		GroupID: "group-1",
		Slides:  []pack.Slide{{Title: "A"}},
	}

	payload, err := PayloadFor(p, drafter.KindSlides)
	require.NoError(t, err)
	assert.Len(t, payload.([]pack.Slide), 1)

	_, err = PayloadFor(p, drafter.KindVideo)
	assert.ErrorContains(t, err, "no video script")

	_, err = PayloadFor(p, drafter.KindQuiz)
	assert.ErrorContains(t, err, "not renderable")
}
