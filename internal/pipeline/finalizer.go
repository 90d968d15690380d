package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Finalizer adds personalized coaching tips and checkpoint reflections via
// one last generative call. It never lets that call touch structure: any
// drift in weeks, task text, or resource references discards the generated
// output and keeps the plan as the oracle left it.
type Finalizer struct {
	cfg *Config
	gen Generator
}

func NewFinalizer(cfg *Config, gen Generator) *Finalizer {
	return &Finalizer{cfg: cfg, gen: gen}
}

// coachingResponse is the response contract for the personalization call:
// the full plan echoed back with rewritten tips and checkpoints.
type coachingResponse struct {
	LearningPlan
}

func (c *coachingResponse) Validate() error {
	if len(c.CoachingTips) == 0 {
		return fmt.Errorf("coaching_tips must not be empty")
	}
	for _, week := range checkpointWeeks {
		milestone, ok := c.Checkpoints[week]
		if !ok || strings.TrimSpace(milestone) == "" {
			return fmt.Errorf("missing checkpoint milestone at week %d", week)
		}
	}
	return nil
}

// Personalize returns the plan with coaching tips and checkpoints
// rewritten. Generation failure keeps the plan untouched; structural drift
// keeps the structure and resets coaching tips to empty rather than
// propagating corrupted content.
func (f *Finalizer) Personalize(ctx context.Context, plan LearningPlan, profile UserProfile) LearningPlan {
	var out coachingResponse
	if err := f.gen.Generate(ctx, coachingPrompt(plan, profile, f.cfg.MaxWeeks), &out); err != nil {
		log.Printf("finalizer generation failed, keeping plan as-is: %v", err)
		return plan
	}
	out.sortWeeks()

	if drifted, what := structuralDrift(plan, out.LearningPlan); drifted {
		log.Printf("finalizer output altered plan structure (%s), discarding it", what)
		plan.CoachingTips = []string{}
		return plan
	}

	plan.CoachingTips = out.CoachingTips
	plan.Checkpoints = out.Checkpoints
	return plan
}

// structuralDrift compares the structural fields of the two plans: week
// count and indices, task counts, task descriptions, and resource
// references. Coaching tips and checkpoints are expected to differ.
func structuralDrift(before, after LearningPlan) (bool, string) {
	if len(before.Weeks) != len(after.Weeks) {
		return true, fmt.Sprintf("week count %d -> %d", len(before.Weeks), len(after.Weeks))
	}
	for i := range before.Weeks {
		b, a := before.Weeks[i], after.Weeks[i]
		if b.WeekIndex != a.WeekIndex {
			return true, fmt.Sprintf("week_index %d -> %d", b.WeekIndex, a.WeekIndex)
		}
		if len(b.Daily) != len(a.Daily) {
			return true, fmt.Sprintf("week %d task count %d -> %d", b.WeekIndex, len(b.Daily), len(a.Daily))
		}
		for j := range b.Daily {
			bt, at := b.Daily[j], a.Daily[j]
			if bt.Description != at.Description {
				return true, fmt.Sprintf("week %d day %d description changed", b.WeekIndex, bt.DayNumber)
			}
			if !equalStrings(bt.ResourceIDs, at.ResourceIDs) {
				return true, fmt.Sprintf("week %d day %d resource references changed", b.WeekIndex, bt.DayNumber)
			}
		}
	}
	return false, ""
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
