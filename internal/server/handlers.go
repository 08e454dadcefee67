package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teachkit/packgen/internal/drafter"
	"github.com/teachkit/packgen/internal/eval"
	"github.com/teachkit/packgen/internal/job"
	"github.com/teachkit/packgen/internal/lesson"
	"github.com/teachkit/packgen/internal/logger"
	"github.com/teachkit/packgen/internal/pipeline"
	"github.com/teachkit/packgen/internal/render"
	"github.com/teachkit/packgen/internal/roster"
)

// PackHandler serves the pack generation API.
type PackHandler struct {
	log       *logger.Logger
	orch      *pipeline.Orchestrator
	jobs      *job.Store
	renderSvc *render.Service
}

// NewPackHandler creates the handler.
func NewPackHandler(log *logger.Logger, orch *pipeline.Orchestrator, jobs *job.Store, renderSvc *render.Service) *PackHandler {
	return &PackHandler{
		log:       log.With("handler", "PackHandler"),
		orch:      orch,
		jobs:      jobs,
		renderSvc: renderSvc,
	}
}

type generateRequest struct {
	Lesson      lesson.Summary         `json:"lesson"`
	Students    []roster.StudentRecord `json:"students,omitempty"`
	GroupCount  int                    `json:"group_count,omitempty"`
	GroundTruth *eval.GroundTruth      `json:"ground_truth,omitempty"`
}

type generateResponse struct {
	JobID  string     `json:"job_id"`
	Status job.Status `json:"status"`
}

// POST /api/packs/generate
// Accepts a lesson summary and roster, starts an async generation run.
func (h *PackHandler) GeneratePacks(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := req.Lesson.Validate(); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_lesson", err)
		return
	}

	id := h.orch.Start(c.Request.Context(), pipeline.Request{
		Lesson:     req.Lesson,
		Students:   req.Students,
		GroupCount: req.GroupCount,
		Truth:      req.GroundTruth,
	})

	h.log.Info("generation job started", "job_id", id, "lesson", req.Lesson.Title)
	c.JSON(http.StatusAccepted, generateResponse{JobID: id, Status: job.StatusPending})
}

// GET /api/jobs/:id
// Returns the job with group states, render states and, once terminal,
// the full result.
func (h *PackHandler) GetJob(c *gin.Context) {
	j, err := h.jobs.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "job_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "job_lookup_failed", err)
		return
	}
	RespondOK(c, j)
}

type evaluateRequest struct {
	JobID       string           `json:"job_id"`
	GroundTruth eval.GroundTruth `json:"ground_truth"`
}

// POST /api/packs/evaluate
// Scores a finished job's packs against a ground truth.
func (h *PackHandler) EvaluatePacks(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.GroundTruth.Empty() {
		RespondError(c, http.StatusBadRequest, "empty_ground_truth",
			errors.New("ground_truth must name at least one concept, skill or answer"))
		return
	}

	j, err := h.jobs.Get(req.JobID)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "job_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "job_lookup_failed", err)
		return
	}
	if j.Result == nil {
		RespondError(c, http.StatusConflict, "job_not_finished",
			errors.New("job has no result to evaluate yet"))
		return
	}

	rec, err := eval.Evaluate(eval.Input{
		Packs:    j.Result.Packs,
		Profiles: j.Result.Profiles,
		Graph:    j.Result.Graph,
		Truth:    req.GroundTruth,
	})
	if err != nil {
		RespondError(c, http.StatusUnprocessableEntity, "evaluation_failed", err)
		return
	}
	RespondOK(c, rec)
}

type assetRequest struct {
	Kind string `json:"kind"`
}

// POST /api/packs/:job_id/groups/:group_id/draft
// Regenerates a single asset of one group's pack.
func (h *PackHandler) RedraftAsset(c *gin.Context) {
	var req assetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	kind, err := drafter.ParseKind(req.Kind)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_kind", err)
		return
	}

	updated, err := h.orch.RedraftGroup(c.Request.Context(), c.Param("job_id"), c.Param("group_id"), kind)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "job_not_found", err)
			return
		}
		RespondError(c, http.StatusUnprocessableEntity, "redraft_failed", err)
		return
	}
	RespondOK(c, updated)
}

type renderResponse struct {
	RenderID string `json:"render_id"`
}

// POST /api/packs/:job_id/groups/:group_id/render
// Submits one drafted asset to the rendering backend.
func (h *PackHandler) RenderAsset(c *gin.Context) {
	var req assetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	kind, err := drafter.ParseKind(req.Kind)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_kind", err)
		return
	}

	jobID, groupID := c.Param("job_id"), c.Param("group_id")
	j, err := h.jobs.Get(jobID)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "job_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "job_lookup_failed", err)
		return
	}
	if j.Result == nil {
		RespondError(c, http.StatusConflict, "job_not_finished",
			errors.New("job has no drafted packs to render yet"))
		return
	}

	var payload any
	found := false
	for i := range j.Result.Packs {
		if j.Result.Packs[i].GroupID == groupID {
			payload, err = render.PayloadFor(&j.Result.Packs[i], kind)
			found = true
			break
		}
	}
	if !found {
		RespondError(c, http.StatusNotFound, "group_not_found",
			errors.New("no pack for group "+groupID))
		return
	}
	if err != nil {
		RespondError(c, http.StatusUnprocessableEntity, "not_renderable", err)
		return
	}

	renderID, err := h.renderSvc.Submit(c.Request.Context(), jobID, groupID, kind, payload)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "render_submit_failed", err)
		return
	}
	RespondOK(c, renderResponse{RenderID: renderID})
}
