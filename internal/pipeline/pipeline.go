// Package pipeline generates a validated, time-bounded 12-week learning
// roadmap from resume text and a target role. It chains schema-enforced
// generative calls (profile extraction, candidate planning, finalization)
// with deterministic stages (gap analysis, critic selection, constraint
// enforcement) so untrusted model output never reaches the caller
// unvalidated.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/devclimb/roadmapworker/internal/catalog"
)

// Pipeline wires the stages together. All state is request-scoped; the
// catalogs are read-only and loaded before the pipeline runs.
type Pipeline struct {
	cfg      *Config
	catalogs *catalog.Catalog

	extractor *ProfileExtractor
	analyzer  *GapAnalyzer
	planner   *PlannerAgent
	critic    *CriticAgent
	oracle    *ConstraintOracle
	finalizer *Finalizer
}

// New builds a pipeline from one config, one generator, and the loaded
// catalogs.
func New(cfg *Config, gen Generator, catalogs *catalog.Catalog) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		catalogs:  catalogs,
		extractor: NewProfileExtractor(cfg, gen, catalogs),
		analyzer:  NewGapAnalyzer(cfg),
		planner:   NewPlannerAgent(cfg, gen, catalogs),
		critic:    NewCriticAgent(cfg, catalogs),
		oracle:    NewConstraintOracle(cfg, catalogs),
		finalizer: NewFinalizer(cfg, gen),
	}
}

// Result carries the final plan plus everything observability wants: the
// extracted profile, the gap list, candidate scores, and the oracle's
// repair log.
type Result struct {
	Plan    LearningPlan `json:"plan"`
	Profile UserProfile  `json:"profile"`
	Gaps    []Gap        `json:"gaps"`
	Scores  []PlanScore  `json:"scores,omitempty"`
	Repairs []Repair     `json:"repairs,omitempty"`
}

// Run executes the pipeline end to end. Cancelling ctx propagates into
// every in-flight generative call.
func (p *Pipeline) Run(ctx context.Context, resumeText, targetRole, userID string) (*Result, error) {
	role, err := p.catalogs.Role(targetRole)
	if err != nil {
		return nil, err
	}

	log.Printf("building profile for user %s", userID)
	profile, err := p.extractor.Extract(ctx, resumeText, userID)
	if err != nil {
		return nil, fmt.Errorf("profile extraction: %w", err)
	}

	gaps := p.analyzer.Analyze(profile, role)
	log.Printf("found %d skill gaps for role %q", len(gaps), targetRole)

	candidates, err := p.planner.GenerateCandidates(ctx, profile, gaps, targetRole)
	if err != nil {
		return nil, fmt.Errorf("plan generation: %w", err)
	}
	log.Printf("generated %d candidate plans", len(candidates))

	best, scores, err := p.critic.Select(candidates, profile, gaps, role)
	if err != nil {
		return nil, fmt.Errorf("plan selection: %w", err)
	}

	repaired, repairs, err := p.oracle.Enforce(best, profile, gaps)
	if err != nil {
		return nil, fmt.Errorf("constraint enforcement: %w", err)
	}
	if len(repairs) > 0 {
		log.Printf("oracle applied %d repairs", len(repairs))
	}

	final := p.finalizer.Personalize(ctx, repaired, profile)

	if err := p.sanityCheck(final); err != nil {
		return nil, fmt.Errorf("final plan sanity check: %w", err)
	}

	return &Result{
		Plan:    final,
		Profile: profile,
		Gaps:    gaps,
		Scores:  scores,
		Repairs: repairs,
	}, nil
}

// sanityCheck is the only validation that runs after the finalizer, and it
// is non-structural: week count, contiguous indices, checkpoint presence.
func (p *Pipeline) sanityCheck(plan LearningPlan) error {
	if len(plan.Weeks) != p.cfg.MaxWeeks {
		return fmt.Errorf("plan has %d weeks, want %d", len(plan.Weeks), p.cfg.MaxWeeks)
	}
	seen := map[int]bool{}
	for _, week := range plan.Weeks {
		if week.WeekIndex < 1 || week.WeekIndex > p.cfg.MaxWeeks || seen[week.WeekIndex] {
			return fmt.Errorf("bad week_index %d", week.WeekIndex)
		}
		seen[week.WeekIndex] = true
	}
	for _, week := range checkpointWeeks {
		if week > p.cfg.MaxWeeks {
			continue
		}
		if _, ok := plan.Checkpoints[week]; !ok {
			return fmt.Errorf("missing checkpoint at week %d", week)
		}
	}
	return nil
}
