package pipeline

import (
	"context"
	"log"
	"sync"

	"github.com/devclimb/roadmapworker/internal/catalog"
)

// Candidate generation strategies, one per slot.
var strategies = []string{"fundamentals_first", "project_driven", "balanced"}

// PlannerAgent generates N candidate plans concurrently, each seeded with a
// distinct strategy. Partial failure is tolerated as long as at least one
// candidate survives.
type PlannerAgent struct {
	cfg      *Config
	gen      Generator
	catalogs *catalog.Catalog
}

func NewPlannerAgent(cfg *Config, gen Generator, catalogs *catalog.Catalog) *PlannerAgent {
	return &PlannerAgent{cfg: cfg, gen: gen, catalogs: catalogs}
}

// planCandidate binds a generated plan to the bounds it must satisfy.
type planCandidate struct {
	LearningPlan
	cfg         *Config
	whitelisted func(string) bool
}

func (p *planCandidate) Validate() error {
	return p.LearningPlan.validateStructure(p.cfg, p.whitelisted)
}

// GenerateCandidates issues the candidate calls in parallel, each writing
// into its own slot, and joins before returning. If every call fails the
// first error is propagated; there is no deterministic full-plan fallback.
func (p *PlannerAgent) GenerateCandidates(ctx context.Context, profile UserProfile, gaps []Gap, roleName string) ([]LearningPlan, error) {
	n := p.cfg.CandidateCount
	if n < 1 {
		n = 1
	}

	resourceIDs := p.catalogs.ResourceIDs()
	gapResources := make(map[string][]string, len(gaps))
	for _, gap := range gaps {
		gapResources[gap.Skill] = p.catalogs.Search(gap.Skill)
	}

	slots := make([]*LearningPlan, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		strategy := strategies[i%len(strategies)]
		go func(slot int, strategy string) {
			defer wg.Done()
			cand := planCandidate{cfg: p.cfg, whitelisted: p.catalogs.HasResource}
			prompt := planPrompt(strategy, profile, gaps, roleName, resourceIDs, gapResources, p.cfg)
			if err := p.gen.Generate(ctx, prompt, &cand); err != nil {
				errs[slot] = err
				return
			}
			plan := cand.LearningPlan
			plan.Role = roleName
			plan.Strategy = strategy
			plan.sortWeeks()
			slots[slot] = &plan
		}(i, strategy)
	}
	wg.Wait()

	var plans []LearningPlan
	for i, plan := range slots {
		if plan == nil {
			log.Printf("candidate %d (%s) failed: %v", i, strategies[i%len(strategies)], errs[i])
			continue
		}
		plans = append(plans, *plan)
	}

	if len(plans) == 0 {
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}
	return plans, nil
}
