package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teachkit/packgen/internal/job"
	"github.com/teachkit/packgen/internal/llm"
	"github.com/teachkit/packgen/internal/logger"
	"github.com/teachkit/packgen/internal/pipeline"
	"github.com/teachkit/packgen/internal/render"
)

type stubProvider struct {
	mu        sync.Mutex
	responses map[string]json.RawMessage
}

func (p *stubProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	content, ok := p.responses[llm.PurposeFrom(ctx)]
	if !ok {
		return nil, fmt.Errorf("no stub for purpose %q", llm.PurposeFrom(ctx))
	}
	return &llm.Response{Content: content, Model: "mock", StopReason: "end"}, nil
}

func (p *stubProvider) ModelID() string { return "mock" }

func (p *stubProvider) set(purpose string, content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses[purpose] = json.RawMessage(content)
}

func stubResponses() map[string]json.RawMessage {
	return map[string]json.RawMessage{
		"skill-extract": json.RawMessage(`{"skills":[
			{"id":"s1","name":"Photosynthesis","description":"How plants turn light into energy.","difficulty":2,"source_concepts":["photosynthesis"]},
			{"id":"s2","name":"Chloroplasts","description":"Where photosynthesis happens. Identify cell structures.","difficulty":3,"prerequisites":["s1"],"source_concepts":["chloroplasts"]},
			{"id":"s3","name":"Light reactions","description":"The light-dependent reactions.","difficulty":4,"prerequisites":["s2"],"source_concepts":["light reactions"]}
		]}`),
		"diagnostic": json.RawMessage(`{"instructions":"Work alone.","questions":[
			{"id":"d1","skill_id":"s1","text":"What gas do plants absorb?","answer_key":"carbon dioxide","difficulty":2,"time_estimate_mins":2}
		]}`),
		"group-label": json.RawMessage(`{"learning_style":"hands-on","rationale":"Lab work suits this group."}`),
		"pack-plan":   json.RawMessage(`{"focus_area":"Photosynthesis basics","strategy":"Concrete demonstrations first.","skill_gaps":["s1"],"activities":["leaf experiment"]}`),
		"draft-slides": json.RawMessage(`{"slides":[
			{"title":"Photosynthesis","body":"Plants make food from light."},
			{"title":"Inputs","body":"Water and carbon dioxide go in."},
			{"title":"Outputs","body":"Oxygen and glucose come out."},
			{"title":"Recap","body":"Photosynthesis feeds the plant."}
		]}`),
		"draft-quiz": json.RawMessage(`{"questions":[
			{"id":"q1","skill_id":"s1","text":"What do plants release?","options":["oxygen","nitrogen"],"correct_answer":"oxygen","difficulty":2},
			{"id":"q2","skill_id":"s1","text":"What powers photosynthesis?","options":["light","sound"],"correct_answer":"light","difficulty":2},
			{"id":"q3","skill_id":"s1","text":"Where does it happen?","options":["leaves","roots"],"correct_answer":"leaves","difficulty":3}
		]}`),
		"draft-practice": json.RawMessage(`{"exercises":[
			{"id":"e1","skill_id":"s1","title":"Label the diagram","instructions":"Fill in the blanks.","problems":["Input gas?","Output gas?"],"answer_key":["carbon dioxide","oxygen"]}
		]}`),
		"draft-video": json.RawMessage(`{"title":"Photosynthesis","narration":"Follow a photon into a leaf.","visual_description":"Animated leaf cross-section."}`),
	}
}

func lessonBody() map[string]any {
	return map[string]any{
		"title":               "Photosynthesis",
		"subject":             "science",
		"grade_level":         6,
		"key_concepts":        []string{"photosynthesis", "chloroplasts", "light reactions"},
		"learning_objectives": []string{"identify cell structures"},
		"difficulty_level":    "beginner",
	}
}

type testEnv struct {
	router   *gin.Engine
	jobs     *job.Store
	provider *stubProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider := &stubProvider{responses: stubResponses()}
	jobs := job.NewStore(job.DefaultStoreConfig(), nil, nil)

	pcfg := pipeline.DefaultConfig()
	pcfg.RetryDelay = time.Millisecond
	orch := pipeline.New(provider, jobs, pcfg, nil)

	renderSvc := render.NewService(render.NewMockClient(), jobs,
		render.Config{PollInterval: time.Millisecond, PollTimeout: time.Second}, nil)

	log := logger.Nop()
	router := NewRouter(RouterConfig{
		PackHandler: NewPackHandler(log, orch, jobs, renderSvc),
	})
	return &testEnv{router: router, jobs: jobs, provider: provider}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// runJob generates a pack set and waits for the job to finish.
func (e *testEnv) runJob(t *testing.T) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/packs/generate", map[string]any{
		"lesson":      lessonBody(),
		"group_count": 2,
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var resp struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.JobID)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		j, err := e.jobs.Get(resp.JobID)
		require.NoError(t, err)
		if j.Status.Terminal() {
			require.Equal(t, job.StatusCompleted, j.Status, "job error: %s", j.Error)
			return resp.JobID
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("job never finished")
	return ""
}

func TestHealthCheck(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodGet, "/healthcheck", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestGenerateAndPollJob(t *testing.T) {
	e := newTestEnv(t)
	id := e.runJob(t)

	w := e.do(t, http.MethodGet, "/api/jobs/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var j job.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &j))
	assert.Equal(t, job.StatusCompleted, j.Status)
	require.NotNil(t, j.Result)
	assert.Len(t, j.Result.Packs, 2)
	assert.Len(t, j.Groups, 2)
}

func TestGenerateRejectsInvalidLesson(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodPost, "/api/packs/generate", map[string]any{
		"lesson": map[string]any{"title": ""},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "invalid_lesson", envelope.Error.Code)
}

func TestGetJobNotFound(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodGet, "/api/jobs/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEvaluateEndpoint(t *testing.T) {
	e := newTestEnv(t)
	id := e.runJob(t)

	w := e.do(t, http.MethodPost, "/api/packs/evaluate", map[string]any{
		"job_id": id,
		"ground_truth": map[string]any{
			"key_concepts": []string{"photosynthesis"},
			"skills":       []string{"s1"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rec struct {
		Aggregate struct {
			Overall float64 `json:"overall"`
		} `json:"aggregate"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.GreaterOrEqual(t, rec.Aggregate.Overall, 0.0)
	assert.LessOrEqual(t, rec.Aggregate.Overall, 1.0)
}

func TestEvaluateRejectsEmptyTruth(t *testing.T) {
	e := newTestEnv(t)
	id := e.runJob(t)

	w := e.do(t, http.MethodPost, "/api/packs/evaluate", map[string]any{
		"job_id":       id,
		"ground_truth": map[string]any{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRedraftEndpoint(t *testing.T) {
	e := newTestEnv(t)
	id := e.runJob(t)

	e.provider.set("draft-quiz", `{"questions":[
		{"id":"new1","skill_id":"s1","text":"Name the pigment.","options":["chlorophyll","keratin"],"correct_answer":"chlorophyll","difficulty":2}
	]}`)

	w := e.do(t, http.MethodPost, "/api/packs/"+id+"/groups/group-1/draft", map[string]any{"kind": "quiz"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var p struct {
		Quiz []struct {
			ID string `json:"id"`
		} `json:"quiz"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Len(t, p.Quiz, 1)
	assert.Equal(t, "new1", p.Quiz[0].ID)
}

func TestRedraftRejectsUnknownKind(t *testing.T) {
	e := newTestEnv(t)
	id := e.runJob(t)
	w := e.do(t, http.MethodPost, "/api/packs/"+id+"/groups/group-1/draft", map[string]any{"kind": "poster"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRenderEndpoint(t *testing.T) {
	e := newTestEnv(t)
	id := e.runJob(t)

	w := e.do(t, http.MethodPost, "/api/packs/"+id+"/groups/group-1/render", map[string]any{"kind": "slides"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		RenderID string `json:"render_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.RenderID)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		j, err := e.jobs.Get(id)
		require.NoError(t, err)
		if st, ok := j.Renders[resp.RenderID]; ok && st.Status == string(render.StatusDone) {
			assert.NotEmpty(t, st.AssetURL)
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("render never finished")
}

func TestRenderRejectsInlineKind(t *testing.T) {
	e := newTestEnv(t)
	id := e.runJob(t)
	w := e.do(t, http.MethodPost, "/api/packs/"+id+"/groups/group-1/render", map[string]any{"kind": "quiz"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
