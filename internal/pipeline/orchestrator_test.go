package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teachkit/packgen/internal/drafter"
	"github.com/teachkit/packgen/internal/eval"
	"github.com/teachkit/packgen/internal/job"
	"github.com/teachkit/packgen/internal/lesson"
	"github.com/teachkit/packgen/internal/llm"
	"github.com/teachkit/packgen/internal/roster"
)

// routeProvider returns canned content keyed by purpose label, with an
// optional failure budget per purpose. Safe for concurrent use.
type routeProvider struct {
	mu        sync.Mutex
	responses map[string]json.RawMessage
	failures  map[string]int
	calls     int
}

func (p *routeProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	purpose := llm.PurposeFrom(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++

	if p.failures[purpose] != 0 {
		if p.failures[purpose] > 0 {
			p.failures[purpose]--
		}
		return nil, fmt.Errorf("canned failure for %s", purpose)
	}
	content, ok := p.responses[purpose]
	if !ok {
		return nil, fmt.Errorf("no canned response for purpose %q", purpose)
	}
	return &llm.Response{Content: content, Model: "mock", StopReason: "end"}, nil
}

func (p *routeProvider) ModelID() string { return "mock" }

// failAlways marks a purpose as permanently failing.
const failAlways = -1

func cannedResponses() map[string]json.RawMessage {
	return map[string]json.RawMessage{
		"skill-extract": json.RawMessage(`{"skills":[
			{"id":"s1","name":"Fractions","description":"Compare fractions with unlike denominators.","difficulty":2,"prerequisites":[],"source_concepts":["fractions"]},
			{"id":"s2","name":"Decimals","description":"Convert between fractions and decimals.","difficulty":3,"prerequisites":["s1"],"source_concepts":["decimals"]},
			{"id":"s3","name":"Percentages","description":"Express quantities as percentages.","difficulty":4,"prerequisites":["s2"],"source_concepts":["percentages"]}
		]}`),
		"diagnostic": json.RawMessage(`{"instructions":"Answer every question.","questions":[
			{"id":"q1","skill_id":"s1","text":"Which is larger, 2/3 or 3/5?","answer_key":"2/3","difficulty":2,"time_estimate_mins":3},
			{"id":"q2","skill_id":"s2","text":"Write 3/4 as a decimal.","answer_key":"0.75","difficulty":3,"time_estimate_mins":2}
		]}`),
		"group-label": json.RawMessage(`{"learning_style":"visual","rationale":"Members respond well to diagrams."}`),
		"pack-plan": json.RawMessage(`{"focus_area":"Fractions fundamentals","strategy":"Worked examples before independent practice.","skill_gaps":["s1"],"activities":["warm-up","pair work"]}`),
		"draft-slides": json.RawMessage(`{"slides":[
			{"title":"Fractions","body":"A fraction names part of a whole."},
			{"title":"Comparing fractions","body":"Use common denominators to compare."},
			{"title":"Decimals","body":"Decimals are another way to write fractions."},
			{"title":"Practice","body":"Try comparing 2/3 and 3/5."}
		]}`),
		"draft-quiz": json.RawMessage(`{"questions":[
			{"id":"k1","skill_id":"s1","text":"Which is larger, 1/2 or 1/3?","options":["1/2","1/3","equal"],"correct_answer":"1/2","difficulty":2,"hint":"Same numerator.","explanation":"Halves are bigger than thirds."},
			{"id":"k2","skill_id":"s1","text":"Which equals 2/4?","options":["1/2","1/3","3/4"],"correct_answer":"1/2","difficulty":2,"hint":"Simplify.","explanation":"2/4 simplifies to 1/2."},
			{"id":"k3","skill_id":"s1","text":"Which is smallest?","options":["1/2","1/4","1/3"],"correct_answer":"1/4","difficulty":3,"hint":"Bigger denominator.","explanation":"Quarters are smallest here."}
		]}`),
		"draft-practice": json.RawMessage(`{"exercises":[
			{"id":"e1","skill_id":"s1","title":"Comparing fractions","instructions":"Circle the larger fraction.","problems":["1/2 vs 1/3","2/5 vs 3/5"],"answer_key":["1/2","3/5"]}
		]}`),
		"draft-video": json.RawMessage(`{"title":"Fractions in two minutes","narration":"Start with a pizza cut into equal slices.","visual_description":"Animated pizza slices."}`),
	}
}

func testLesson() lesson.Summary {
	return lesson.Summary{
		Title:       "Comparing Fractions",
		Subject:     "math",
		GradeLevel:  4,
		KeyConcepts: []string{"fractions", "decimals", "percentages"},
		Objectives:  []string{"compare fractions"},
		Difficulty:  "beginner",
	}
}

func testStudents() []roster.StudentRecord {
	students := make([]roster.StudentRecord, 6)
	for i := range students {
		level := float64(i) / 5
		students[i] = roster.StudentRecord{
			ID:   fmt.Sprintf("student-%d", i+1),
			Name: fmt.Sprintf("Student %d", i+1),
			Scores: map[string]float64{
				"s1": 0.2 + 0.7*level,
				"s2": 0.1 + 0.7*level,
				"s3": 0.1 + 0.6*level,
			},
		}
	}
	return students
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Concurrency = 2
	cfg.StageTimeout = 5 * time.Second
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func newTestOrchestrator(provider llm.Provider) (*Orchestrator, *job.Store) {
	jobs := job.NewStore(job.DefaultStoreConfig(), nil, nil)
	return New(provider, jobs, testConfig(), nil), jobs
}

func TestRunProducesCompletePacks(t *testing.T) {
	provider := &routeProvider{responses: cannedResponses()}
	o, _ := newTestOrchestrator(provider)

	j, err := o.Run(context.Background(), Request{
		Lesson:     testLesson(),
		Students:   testStudents(),
		GroupCount: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, job.StatusCompleted, j.Status)
	require.NotNil(t, j.Result)
	assert.Equal(t, 3, j.Result.Graph.Len())
	assert.Len(t, j.Result.Diagnostic.Questions, 2)
	require.Len(t, j.Result.Profiles, 3)
	require.Len(t, j.Result.Packs, 3)

	for _, p := range j.Result.Packs {
		assert.NotEmpty(t, p.Slides, "group %s slides", p.GroupID)
		assert.Len(t, p.Quiz, 3, "group %s quiz", p.GroupID)
		assert.NotEmpty(t, p.Practice, "group %s practice", p.GroupID)
		require.NotNil(t, p.Video, "group %s video", p.GroupID)
		require.NotNil(t, p.Verification, "group %s verification", p.GroupID)
		assert.True(t, p.Verification.QuizValid)
		assert.Empty(t, p.Errors)
	}

	// Labels came from the model, mastery levels did not move.
	for _, prof := range j.Result.Profiles {
		assert.Equal(t, "visual", prof.LearningStyle)
	}

	for gid, state := range j.Groups {
		assert.Equal(t, job.StatusCompleted, state.Status, "group %s", gid)
	}
}

func TestRunDegradesWhenOneDrafterFails(t *testing.T) {
	provider := &routeProvider{
		responses: cannedResponses(),
		failures:  map[string]int{"draft-video": failAlways},
	}
	o, _ := newTestOrchestrator(provider)

	j, err := o.Run(context.Background(), Request{
		Lesson:     testLesson(),
		Students:   testStudents(),
		GroupCount: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, job.StatusCompletedWithErrors, j.Status)
	require.NotNil(t, j.Result)
	for _, p := range j.Result.Packs {
		assert.Nil(t, p.Video)
		assert.NotEmpty(t, p.Slides, "other assets survive")
		require.NotEmpty(t, p.Errors)
		assert.Contains(t, p.Errors[0], "video")
	}
	assert.NotEmpty(t, j.Result.Warnings)
}

func TestRunFailsWhenExtractionFails(t *testing.T) {
	provider := &routeProvider{
		responses: cannedResponses(),
		failures:  map[string]int{"skill-extract": failAlways},
	}
	o, _ := newTestOrchestrator(provider)

	j, err := o.Run(context.Background(), Request{Lesson: testLesson(), Students: testStudents()})
	require.NoError(t, err)

	assert.Equal(t, job.StatusFailed, j.Status)
	assert.Contains(t, j.Error, "skill extraction")
	assert.Nil(t, j.Result)
}

func TestGroupStageRetriesWithinBudget(t *testing.T) {
	// Two failures fit the default budget of two retries.
	provider := &routeProvider{
		responses: cannedResponses(),
		failures:  map[string]int{"pack-plan": 2},
	}
	o, _ := newTestOrchestrator(provider)

	j, err := o.Run(context.Background(), Request{
		Lesson:     testLesson(),
		Students:   testStudents(),
		GroupCount: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, j.Status)
}

func TestRunFailsWhenEveryGroupFails(t *testing.T) {
	provider := &routeProvider{
		responses: cannedResponses(),
		failures:  map[string]int{"pack-plan": failAlways},
	}
	o, _ := newTestOrchestrator(provider)

	j, err := o.Run(context.Background(), Request{
		Lesson:     testLesson(),
		Students:   testStudents(),
		GroupCount: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, j.Status)
	assert.Contains(t, j.Error, "group pipelines failed")
}

func TestLabelFailureKeepsDefaults(t *testing.T) {
	provider := &routeProvider{
		responses: cannedResponses(),
		failures:  map[string]int{"group-label": failAlways},
	}
	o, _ := newTestOrchestrator(provider)

	j, err := o.Run(context.Background(), Request{
		Lesson:     testLesson(),
		Students:   testStudents(),
		GroupCount: 2,
	})
	require.NoError(t, err)

	// Labeling is isolated: the run still completes cleanly.
	assert.Equal(t, job.StatusCompleted, j.Status)
	for _, prof := range j.Result.Profiles {
		assert.Equal(t, "mixed", prof.LearningStyle)
		assert.NotEmpty(t, prof.Rationale)
	}
	assert.NotEmpty(t, j.Result.Warnings)
}

func TestSyntheticRosterWhenNoStudents(t *testing.T) {
	provider := &routeProvider{responses: cannedResponses()}
	o, _ := newTestOrchestrator(provider)

	j, err := o.Run(context.Background(), Request{Lesson: testLesson(), GroupCount: 3})
	require.NoError(t, err)

	assert.Equal(t, job.StatusCompleted, j.Status)
	require.Len(t, j.Result.Profiles, 3)

	total := 0
	for _, prof := range j.Result.Profiles {
		total += len(prof.Members)
	}
	assert.Equal(t, DefaultConfig().DefaultClassSize, total)
	assert.NotEmpty(t, j.Result.Warnings)
}

func TestEvaluationAttachedWithGroundTruth(t *testing.T) {
	provider := &routeProvider{responses: cannedResponses()}
	o, _ := newTestOrchestrator(provider)

	truth := &eval.GroundTruth{
		KeyConcepts:     []string{"fractions", "decimals"},
		Skills:          []string{"s1", "s2"},
		ExpectedAnswers: map[string]string{"which is larger, 1/2 or 1/3?": "1/2"},
	}

	j, err := o.Run(context.Background(), Request{
		Lesson:     testLesson(),
		Students:   testStudents(),
		GroupCount: 2,
		Truth:      truth,
	})
	require.NoError(t, err)

	require.NotNil(t, j.Result.Evaluation)
	agg := j.Result.Evaluation.Aggregate
	assert.GreaterOrEqual(t, agg.Overall, 0.0)
	assert.LessOrEqual(t, agg.Overall, 1.0)
	assert.Len(t, j.Result.Evaluation.Groups, 2)
}

func TestStartRunsInBackground(t *testing.T) {
	provider := &routeProvider{responses: cannedResponses()}
	o, jobs := newTestOrchestrator(provider)

	id := o.Start(context.Background(), Request{
		Lesson:     testLesson(),
		Students:   testStudents(),
		GroupCount: 2,
	})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		j, err := jobs.Get(id)
		require.NoError(t, err)
		if j.Status.Terminal() {
			assert.Equal(t, job.StatusCompleted, j.Status)
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal state")
}

func TestRedraftReplacesSingleAsset(t *testing.T) {
	provider := &routeProvider{responses: cannedResponses()}
	o, jobs := newTestOrchestrator(provider)

	j, err := o.Run(context.Background(), Request{
		Lesson:     testLesson(),
		Students:   testStudents(),
		GroupCount: 1,
	})
	require.NoError(t, err)
	require.Equal(t, job.StatusCompleted, j.Status)

	gid := j.Result.Packs[0].GroupID
	originalSlides := j.Result.Packs[0].Slides

	provider.mu.Lock()
	provider.responses["draft-quiz"] = json.RawMessage(`{"questions":[
		{"id":"n1","skill_id":"s1","text":"Which equals 1/2?","options":["2/4","1/3"],"correct_answer":"2/4","difficulty":2}
	]}`)
	provider.mu.Unlock()

	updated, err := o.RedraftGroup(context.Background(), j.ID, gid, drafter.KindQuiz)
	require.NoError(t, err)
	require.Len(t, updated.Quiz, 1)
	assert.Equal(t, "n1", updated.Quiz[0].ID)
	assert.Equal(t, originalSlides, updated.Slides)

	fresh, err := jobs.Get(j.ID)
	require.NoError(t, err)
	assert.Len(t, fresh.Result.Packs[0].Quiz, 1)
}

func TestRedraftUnknownGroup(t *testing.T) {
	provider := &routeProvider{responses: cannedResponses()}
	o, _ := newTestOrchestrator(provider)

	j, err := o.Run(context.Background(), Request{
		Lesson:     testLesson(),
		Students:   testStudents(),
		GroupCount: 1,
	})
	require.NoError(t, err)

	_, err = o.RedraftGroup(context.Background(), j.ID, "group-99", drafter.KindQuiz)
	assert.ErrorContains(t, err, "no group")
}

func TestInvalidLessonFailsFast(t *testing.T) {
	provider := &routeProvider{responses: cannedResponses()}
	o, _ := newTestOrchestrator(provider)

	j, err := o.Run(context.Background(), Request{Lesson: lesson.Summary{}})
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, j.Status)
	assert.Contains(t, j.Error, "invalid lesson summary")
	assert.Zero(t, provider.callCount())
}

func (p *routeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
