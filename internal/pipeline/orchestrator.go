package pipeline

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teachkit/packgen/internal/diagnostic"
	"github.com/teachkit/packgen/internal/drafter"
	"github.com/teachkit/packgen/internal/eval"
	"github.com/teachkit/packgen/internal/grouping"
	"github.com/teachkit/packgen/internal/job"
	"github.com/teachkit/packgen/internal/lesson"
	"github.com/teachkit/packgen/internal/llm"
	"github.com/teachkit/packgen/internal/logger"
	"github.com/teachkit/packgen/internal/pack"
	"github.com/teachkit/packgen/internal/packplan"
	"github.com/teachkit/packgen/internal/roster"
	"github.com/teachkit/packgen/internal/skillmap"
	"github.com/teachkit/packgen/internal/verify"
)

// Request is one generation run: a lesson summary plus the class it is
// being prepared for. Students may be empty, in which case a synthetic
// roster stands in and partitioning degrades to round-robin levels.
type Request struct {
	Lesson     lesson.Summary
	Students   []roster.StudentRecord
	GroupCount int
	Truth      *eval.GroundTruth
}

// Orchestrator drives a full generation run: skill graph, diagnostic,
// grouping, then one content pipeline per group fanned out under a
// concurrency limit. Lesson-scoped stages are fail-fast; group-scoped
// stages get a retry budget and their failures degrade the run instead
// of aborting it.
type Orchestrator struct {
	jobs *job.Store
	cfg  Config
	log  *logger.Logger

	extractor *skillmap.Extractor
	builder   *diagnostic.Builder
	profiler  *grouping.Profiler
	labeler   *grouping.Labeler
	planner   *packplan.Planner
	drafters  drafter.Registry
	verifyCfg verify.Config
}

// New creates an orchestrator with stage services built on the given
// provider.
func New(provider llm.Provider, jobs *job.Store, cfg Config, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	cfg = cfg.withDefaults()
	gcfg := grouping.DefaultConfig()
	gcfg.Cuts = cfg.Cuts
	return &Orchestrator{
		jobs:      jobs,
		cfg:       cfg,
		log:       log,
		extractor: skillmap.NewExtractor(provider, skillmap.DefaultConfig()),
		builder:   diagnostic.NewBuilder(provider, diagnostic.DefaultConfig(), log),
		profiler:  grouping.NewProfiler(gcfg, log),
		labeler:   grouping.NewLabeler(provider, gcfg),
		planner:   packplan.NewPlanner(provider, packplan.DefaultConfig()),
		drafters:  drafter.NewRegistry(provider, drafter.DefaultConfig()),
		verifyCfg: verify.DefaultConfig(),
	}
}

// Start creates a job and runs the pipeline in the background. The run
// outlives the caller's request context.
func (o *Orchestrator) Start(ctx context.Context, req Request) string {
	id := o.jobs.Create()
	go o.run(context.WithoutCancel(ctx), id, req)
	return id
}

// Run executes the pipeline synchronously and returns the finished job.
func (o *Orchestrator) Run(ctx context.Context, req Request) (job.Job, error) {
	id := o.jobs.Create()
	o.run(ctx, id, req)
	return o.jobs.Get(id)
}

func (o *Orchestrator) run(ctx context.Context, jobID string, req Request) {
	if err := o.jobs.SetStatus(jobID, job.StatusProcessing, "validating lesson summary"); err != nil {
		o.log.Error("failed to start job", "job_id", jobID, "error", err)
		return
	}

	result, status, message, runErr := o.execute(ctx, jobID, req)
	if runErr != nil {
		o.log.Warn("generation run failed", "job_id", jobID, "error", runErr)
		if err := o.jobs.Fail(jobID, runErr); err != nil {
			o.log.Error("failed to record job failure", "job_id", jobID, "error", err)
		}
		return
	}

	if err := o.jobs.Complete(jobID, result, status, message); err != nil {
		o.log.Error("failed to record job completion", "job_id", jobID, "error", err)
	}
}

// execute runs every stage. A non-nil error means the whole run failed;
// otherwise the returned status distinguishes clean from degraded runs.
func (o *Orchestrator) execute(ctx context.Context, jobID string, req Request) (*job.Result, job.Status, string, error) {
	if err := req.Lesson.Validate(); err != nil {
		return nil, "", "", fmt.Errorf("invalid lesson summary: %w", err)
	}

	groupCount := req.GroupCount
	if groupCount <= 0 {
		groupCount = o.cfg.DefaultGroupCount
	}

	var (
		warnMu   sync.Mutex
		warnings []string
	)
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		o.log.Warn(msg, "job_id", jobID)
		warnMu.Lock()
		warnings = append(warnings, msg)
		warnMu.Unlock()
	}

	// Lesson-scoped stages run in sequence and fail fast.
	o.progress(jobID, "extracting skill graph")
	graph, err := lessonStage(ctx, o.cfg.StageTimeout, func(ctx context.Context) (*skillmap.Graph, error) {
		return o.extractor.Extract(ctx, req.Lesson)
	})
	if err != nil {
		return nil, "", "", fmt.Errorf("skill extraction failed: %w", err)
	}

	o.progress(jobID, "building diagnostic")
	diag, err := lessonStage(ctx, o.cfg.StageTimeout, func(ctx context.Context) (*diagnostic.Diagnostic, error) {
		return o.builder.Build(ctx, graph)
	})
	if err != nil {
		return nil, "", "", fmt.Errorf("diagnostic build failed: %w", err)
	}

	students := req.Students
	if len(students) == 0 {
		students = roster.Synthetic(o.cfg.DefaultClassSize, skillIDs(graph), rosterSeed(req.Lesson))
		warn("no student records supplied, using a synthetic roster of %d", len(students))
	}

	o.progress(jobID, "partitioning students into groups")
	profiles, degraded, err := o.profiler.Partition(students, graph, groupCount)
	if err != nil {
		return nil, "", "", fmt.Errorf("partition failed: %w", err)
	}
	if degraded {
		warn("requested %d groups but roster supports only %d", groupCount, len(profiles))
	}

	result := &job.Result{
		Lesson:     req.Lesson,
		Graph:      graph,
		Diagnostic: diag,
		Profiles:   profiles,
		Plans:      make([]packplan.PackPlan, len(profiles)),
		Packs:      make([]pack.TeachingPack, len(profiles)),
	}

	// Group fan-out. Workers never return errors: a failed group is
	// recorded on its pack and the rest keep going.
	o.progress(jobID, fmt.Sprintf("generating packs for %d groups", len(profiles)))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Concurrency)
	for i := range profiles {
		g.Go(func() error {
			o.runGroup(gctx, jobID, graph, &profiles[i], &result.Plans[i], &result.Packs[i], warn)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	partial := 0
	for i := range result.Packs {
		if result.Packs[i].Failed() {
			failed++
		} else if len(result.Packs[i].Errors) > 0 {
			partial++
		}
	}
	if failed == len(result.Packs) {
		return nil, "", "", fmt.Errorf("all %d group pipelines failed", failed)
	}

	if req.Truth != nil && !req.Truth.Empty() {
		o.progress(jobID, "evaluating generated packs")
		rec, err := eval.Evaluate(eval.Input{
			Packs:    scorablePacks(result.Packs),
			Profiles: result.Profiles,
			Graph:    graph,
			Truth:    *req.Truth,
		})
		if err != nil {
			warn("evaluation skipped: %v", err)
		} else {
			result.Evaluation = &rec
		}
	}

	result.Warnings = warnings

	if failed > 0 || partial > 0 {
		msg := fmt.Sprintf("finished with %d failed and %d partial groups out of %d",
			failed, partial, len(result.Packs))
		return result, job.StatusCompletedWithErrors, msg, nil
	}
	return result, job.StatusCompleted, fmt.Sprintf("generated %d packs", len(result.Packs)), nil
}

// runGroup runs label, plan, draft, verify for one group.
func (o *Orchestrator) runGroup(ctx context.Context, jobID string, graph *skillmap.Graph, profile *grouping.GroupProfile, planOut *packplan.PackPlan, packOut *pack.TeachingPack, warn func(string, ...any)) {
	gid := profile.GroupID
	packOut.GroupID = gid
	o.setGroupState(jobID, gid, job.StatusProcessing, "labeling")

	// Labeling is isolated: the deterministic defaults survive a
	// failure and the group carries on.
	err := o.groupStage(ctx, func(ctx context.Context) error {
		return o.labeler.Label(ctx, profile, graph)
	})
	if err != nil {
		warn("group %s: labeling failed, keeping defaults: %v", gid, err)
	}

	o.setGroupState(jobID, gid, job.StatusProcessing, "planning")
	var plan *packplan.PackPlan
	err = o.groupStage(ctx, func(ctx context.Context) error {
		var perr error
		plan, perr = o.planner.Plan(ctx, *profile, graph)
		return perr
	})
	if err != nil {
		msg := fmt.Sprintf("planning failed: %v", err)
		packOut.Errors = append(packOut.Errors, msg)
		warn("group %s: %s", gid, msg)
		o.setGroupState(jobID, gid, job.StatusFailed, msg)
		return
	}
	*planOut = *plan

	in := drafter.Input{Plan: plan, Graph: graph, Profile: *profile}
	for _, kind := range drafter.AllKinds() {
		o.setGroupState(jobID, gid, job.StatusProcessing, fmt.Sprintf("drafting %s", kind))
		err := o.groupStage(ctx, func(ctx context.Context) error {
			return o.drafters.Draft(ctx, kind, in, packOut)
		})
		if err != nil {
			msg := fmt.Sprintf("%s draft failed: %v", kind, err)
			packOut.Errors = append(packOut.Errors, msg)
			warn("group %s: %s", gid, msg)
		}
	}

	if packOut.Failed() {
		o.setGroupState(jobID, gid, job.StatusFailed, "all drafts failed")
		return
	}

	v := verify.Verify(packOut, *profile, plan, graph, o.verifyCfg)
	packOut.Verification = &v

	if len(packOut.Errors) > 0 {
		o.setGroupState(jobID, gid, job.StatusCompletedWithErrors, "finished with partial content")
		return
	}
	o.setGroupState(jobID, gid, job.StatusCompleted, "done")
}

// lessonStage runs fn once under the stage timeout. No retry: a failed
// lesson-scoped stage fails the whole run.
func lessonStage[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

// groupStage runs fn under the stage timeout with the retry budget.
func (o *Orchestrator) groupStage(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= o.cfg.StageRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.cfg.RetryDelay):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeout)
		lastErr = fn(attemptCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", o.cfg.StageRetries+1, lastErr)
}

func (o *Orchestrator) progress(jobID, message string) {
	if err := o.jobs.SetMessage(jobID, message); err != nil {
		o.log.Warn("failed to record progress", "job_id", jobID, "error", err)
	}
}

func (o *Orchestrator) setGroupState(jobID, groupID string, status job.Status, message string) {
	state := job.GroupState{Status: status, Message: message}
	if status == job.StatusFailed {
		state.Error = message
	}
	if err := o.jobs.SetGroupState(jobID, groupID, state); err != nil {
		o.log.Warn("failed to record group state", "job_id", jobID, "group_id", groupID, "error", err)
	}
}

func skillIDs(g *skillmap.Graph) []string {
	skills := g.Skills()
	ids := make([]string, len(skills))
	for i, s := range skills {
		ids[i] = s.ID
	}
	return ids
}

// rosterSeed derives a stable seed from the lesson so repeated runs on
// the same summary synthesize the same class.
func rosterSeed(sum lesson.Summary) int64 {
	h := fnv.New64a()
	h.Write([]byte(sum.Title))
	h.Write([]byte(sum.Subject))
	return int64(h.Sum64())
}

// scorablePacks filters out groups whose pipeline produced nothing.
func scorablePacks(packs []pack.TeachingPack) []pack.TeachingPack {
	out := make([]pack.TeachingPack, 0, len(packs))
	for i := range packs {
		if !packs[i].Failed() {
			out = append(out, packs[i])
		}
	}
	return out
}
