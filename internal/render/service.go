package render

import (
	"context"
	"fmt"
	"time"

	"github.com/teachkit/packgen/internal/drafter"
	"github.com/teachkit/packgen/internal/job"
	"github.com/teachkit/packgen/internal/logger"
	"github.com/teachkit/packgen/internal/pack"
)

// Config holds render service settings.
type Config struct {
	// PollInterval is the delay between status checks.
	PollInterval time.Duration

	// PollTimeout bounds how long a single render is watched before it
	// is recorded as failed.
	PollTimeout time.Duration
}

// DefaultConfig returns the default polling settings.
func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
		PollTimeout:  10 * time.Minute,
	}
}

// Service submits drafted assets to the rendering backend and watches
// each submission until it resolves, recording progress on the owning
// job. Render state is tracked flat on the job itself so a single status
// read answers both "is the job done" and "where are the assets".
type Service struct {
	client Client
	jobs   *job.Store
	cfg    Config
	log    *logger.Logger
}

// NewService creates a render service.
func NewService(client Client, jobs *job.Store, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultConfig().PollTimeout
	}
	return &Service{client: client, jobs: jobs, cfg: cfg, log: log}
}

// Renderable reports whether an asset kind produces a hosted artifact.
// Quizzes and practice sets stay inline in the pack payload.
func Renderable(kind drafter.Kind) bool {
	return kind == drafter.KindSlides || kind == drafter.KindVideo
}

// Submit sends one asset to the backend and starts a watcher goroutine.
// The returned render ID identifies the submission on the job record.
// The watcher outlives the caller's request context.
func (s *Service) Submit(ctx context.Context, jobID, groupID string, kind drafter.Kind, payload any) (string, error) {
	if !Renderable(kind) {
		return "", fmt.Errorf("asset kind %q is not renderable", kind)
	}

	renderID, err := s.client.Submit(ctx, Request{GroupID: groupID, Kind: string(kind), Payload: payload})
	if err != nil {
		return "", fmt.Errorf("failed to submit %s render for %s: %w", kind, groupID, err)
	}

	state := job.RenderState{
		RenderID: renderID,
		GroupID:  groupID,
		Kind:     string(kind),
		Status:   string(StatusQueued),
	}
	if err := s.jobs.SetRenderState(jobID, state); err != nil {
		return "", err
	}

	go s.watch(context.WithoutCancel(ctx), jobID, state)
	return renderID, nil
}

func (s *Service) watch(ctx context.Context, jobID string, state job.RenderState) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PollTimeout)
	defer cancel()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			state.Status = string(StatusFailed)
			state.Error = fmt.Sprintf("render timed out after %s", s.cfg.PollTimeout)
			s.record(jobID, state)
			return
		case <-ticker.C:
			res, err := s.client.Poll(ctx, state.RenderID)
			if err != nil {
				s.log.Warn("render poll failed", "render_id", state.RenderID, "error", err)
				continue
			}

			state.Status = string(res.Status)
			state.AssetURL = res.AssetURL
			state.Error = res.Error
			s.record(jobID, state)

			if res.Status.Terminal() {
				if res.Status == StatusDone {
					s.attachAsset(jobID, state)
				}
				return
			}
		}
	}
}

func (s *Service) record(jobID string, state job.RenderState) {
	if err := s.jobs.SetRenderState(jobID, state); err != nil {
		s.log.Warn("failed to record render state", "job_id", jobID, "render_id", state.RenderID, "error", err)
	}
}

// attachAsset writes the finished asset URL onto the group's pack.
func (s *Service) attachAsset(jobID string, state job.RenderState) {
	err := s.jobs.UpdateResult(jobID, func(r *job.Result) {
		for i := range r.Packs {
			if r.Packs[i].GroupID != state.GroupID {
				continue
			}
			switch drafter.Kind(state.Kind) {
			case drafter.KindSlides:
				r.Packs[i].Assets.SlidesURL = state.AssetURL
			case drafter.KindVideo:
				r.Packs[i].Assets.VideoURL = state.AssetURL
			}
			return
		}
	})
	if err != nil {
		s.log.Warn("failed to attach rendered asset", "job_id", jobID, "render_id", state.RenderID, "error", err)
	}
}

// PayloadFor picks the drafted content to send for a renderable kind.
func PayloadFor(p *pack.TeachingPack, kind drafter.Kind) (any, error) {
	switch kind {
	case drafter.KindSlides:
		if len(p.Slides) == 0 {
			return nil, fmt.Errorf("pack for %s has no slides to render", p.GroupID)
		}
		return p.Slides, nil
	case drafter.KindVideo:
		if p.Video == nil {
			return nil, fmt.Errorf("pack for %s has no video script to render", p.GroupID)
		}
		return p.Video, nil
	default:
		return nil, fmt.Errorf("asset kind %q is not renderable", kind)
	}
}
