package pipeline

import (
	"context"
	"fmt"

	"github.com/teachkit/packgen/internal/drafter"
	"github.com/teachkit/packgen/internal/grouping"
	"github.com/teachkit/packgen/internal/job"
	"github.com/teachkit/packgen/internal/pack"
	"github.com/teachkit/packgen/internal/packplan"
	"github.com/teachkit/packgen/internal/verify"
)

// RedraftGroup regenerates a single asset of one group's pack on a
// finished job. Only the named asset changes; the rest of the pack is
// carried over untouched and the verification report is recomputed.
func (o *Orchestrator) RedraftGroup(ctx context.Context, jobID, groupID string, kind drafter.Kind) (*pack.TeachingPack, error) {
	j, err := o.jobs.Get(jobID)
	if err != nil {
		return nil, err
	}
	if j.Result == nil {
		return nil, fmt.Errorf("job %s has no result yet", jobID)
	}

	idx := -1
	for i := range j.Result.Packs {
		if j.Result.Packs[i].GroupID == groupID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("job %s has no group %s", jobID, groupID)
	}

	prof, ok := findProfile(j.Result, groupID)
	if !ok {
		return nil, fmt.Errorf("job %s has no profile for group %s", jobID, groupID)
	}
	plan, ok := findPlan(j.Result, groupID)
	if !ok {
		return nil, fmt.Errorf("job %s has no plan for group %s, cannot redraft", jobID, groupID)
	}

	// Draft outside the store lock; the prior pack guides the revision.
	prior := j.Result.Packs[idx]
	updated := prior
	in := drafter.Input{Plan: &plan, Graph: j.Result.Graph, Profile: prof, Prior: &prior}

	err = o.groupStage(ctx, func(ctx context.Context) error {
		return o.drafters.Draft(ctx, kind, in, &updated)
	})
	if err != nil {
		return nil, fmt.Errorf("redraft %s for group %s: %w", kind, groupID, err)
	}

	v := verify.Verify(&updated, prof, &plan, j.Result.Graph, o.verifyCfg)
	updated.Verification = &v

	err = o.jobs.UpdateResult(jobID, func(r *job.Result) {
		for i := range r.Packs {
			if r.Packs[i].GroupID == groupID {
				// Keep asset refs attached by renders since the snapshot.
				updated.Assets = r.Packs[i].Assets
				r.Packs[i] = updated
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func findProfile(r *job.Result, groupID string) (grouping.GroupProfile, bool) {
	for _, p := range r.Profiles {
		if p.GroupID == groupID {
			return p, true
		}
	}
	return grouping.GroupProfile{}, false
}

func findPlan(r *job.Result, groupID string) (packplan.PackPlan, bool) {
	for _, p := range r.Plans {
		if p.GroupID == groupID {
			return p, true
		}
	}
	return packplan.PackPlan{}, false
}
