package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/devclimb/roadmapworker/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator answers each call by response type, which is how the
// real pipeline distinguishes its three generative stages.
func scriptedGenerator(planForSlot func() LearningPlan, finalizerErr bool) *fakeGenerator {
	return &fakeGenerator{fn: func(ctx context.Context, prompt string, out Schema) error {
		switch v := out.(type) {
		case *profileExtraction:
			*v = profileExtraction{
				YearsTotal:             2,
				Skills:                 map[string]int{"JavaScript": 3, "React": 2},
				TimeBudgetHoursPerWeek: 10,
				LearningStyle:          "mixed",
			}
			return nil
		case *planCandidate:
			v.LearningPlan = planForSlot()
			return nil
		case *coachingResponse:
			if finalizerErr {
				return &GenerationError{Reason: ReasonUpstreamFailure, Attempts: 3}
			}
			v.LearningPlan = clonePlan(planForSlot())
			v.CoachingTips = []string{"personalized tip"}
			v.Checkpoints = map[int]string{4: "reflect", 8: "reflect", 12: "reflect"}
			return nil
		}
		return nil
	}}
}

func runPipeline(t *testing.T, gen Generator) (*Result, *Config, *catalog.Catalog) {
	t.Helper()
	cfg := testConfig()
	catalogs := testCatalog(t)
	p := New(cfg, gen, catalogs)

	result, err := p.Run(context.Background(), "resume text", "Frontend Developer", "user_001")
	require.NoError(t, err)
	return result, cfg, catalogs
}

func TestRunEndToEnd(t *testing.T) {
	gen := scriptedGenerator(func() LearningPlan { return makePlan(60, "js_course") }, true)
	result, cfg, catalogs := runPipeline(t, gen)

	plan := result.Plan
	require.Len(t, plan.Weeks, cfg.MaxWeeks)

	indices := map[int]bool{}
	for _, week := range plan.Weeks {
		indices[week.WeekIndex] = true

		assert.LessOrEqual(t, week.LongSessionCount(cfg.LongSessionThreshold), cfg.MaxLongSessionsPerWeek)
		assert.LessOrEqual(t, week.TotalMinutes(), result.Profile.TimeBudgetHoursPerWeek*60)
		for _, task := range week.Daily {
			for _, id := range task.ResourceIDs {
				assert.True(t, catalogs.HasResource(id))
			}
			assert.NotEmpty(t, task.VerificationMethod)
		}
	}
	for w := 1; w <= cfg.MaxWeeks; w++ {
		assert.True(t, indices[w], "missing week %d", w)
	}
	for _, w := range []int{4, 8, 12} {
		assert.Contains(t, plan.Checkpoints, w)
	}

	// gap order follows the role prerequisites
	require.Len(t, result.Gaps, 3)
	assert.Equal(t, "JavaScript", result.Gaps[0].Skill)
	assert.Equal(t, "React", result.Gaps[1].Skill)
	assert.Equal(t, "HTML", result.Gaps[2].Skill)

	assert.Empty(t, result.Repairs)
}

func TestRunAppliesRepairsOverBudget(t *testing.T) {
	// 5 x 140 = 700 minutes per week against a 600 minute budget
	gen := scriptedGenerator(func() LearningPlan { return makePlan(140, "js_course") }, true)
	result, cfg, _ := runPipeline(t, gen)

	assert.NotEmpty(t, result.Repairs)
	for _, week := range result.Plan.Weeks {
		assert.LessOrEqual(t, week.TotalMinutes(), result.Profile.TimeBudgetHoursPerWeek*60)
	}
	require.Len(t, result.Plan.Weeks, cfg.MaxWeeks)
}

func TestRunSurvivesPartialCandidateFailure(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	gen := &fakeGenerator{fn: func(ctx context.Context, prompt string, out Schema) error {
		switch v := out.(type) {
		case *profileExtraction:
			*v = profileExtraction{
				Skills:                 map[string]int{"JavaScript": 3},
				TimeBudgetHoursPerWeek: 10,
				LearningStyle:          "mixed",
			}
			return nil
		case *planCandidate:
			mu.Lock()
			calls++
			failing := calls > 1
			mu.Unlock()
			if failing {
				return &GenerationError{Reason: ReasonUpstreamFailure, Attempts: 3}
			}
			v.LearningPlan = makePlan(60, "js_course")
			return nil
		case *coachingResponse:
			return &GenerationError{Reason: ReasonUpstreamFailure, Attempts: 3}
		}
		return nil
	}}

	result, _, _ := runPipeline(t, gen)
	// single surviving candidate is selected without scoring
	assert.Nil(t, result.Scores)
	assert.Len(t, result.Plan.Weeks, 12)
}

func TestRunFailsWhenAllCandidatesFail(t *testing.T) {
	gen := &fakeGenerator{fn: func(ctx context.Context, prompt string, out Schema) error {
		if v, ok := out.(*profileExtraction); ok {
			*v = profileExtraction{
				Skills:                 map[string]int{"JavaScript": 3},
				TimeBudgetHoursPerWeek: 10,
				LearningStyle:          "mixed",
			}
			return nil
		}
		return &GenerationError{Reason: ReasonTimeout, Attempts: 3}
	}}

	p := New(testConfig(), gen, testCatalog(t))
	_, err := p.Run(context.Background(), "resume", "Frontend Developer", "user_001")
	require.Error(t, err)
	assert.True(t, IsGenerationError(err))
}

func TestRunUnknownRole(t *testing.T) {
	gen := scriptedGenerator(func() LearningPlan { return makePlan(60, "js_course") }, true)
	p := New(testConfig(), gen, testCatalog(t))

	_, err := p.Run(context.Background(), "resume", "Astronaut", "user_001")
	var lookupErr *catalog.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "role", lookupErr.Kind)
}

func TestRunExtractionFailureIsNotFatal(t *testing.T) {
	gen := &fakeGenerator{fn: func(ctx context.Context, prompt string, out Schema) error {
		switch v := out.(type) {
		case *profileExtraction:
			return &GenerationError{Reason: ReasonSchemaInvalid, Attempts: 3}
		case *planCandidate:
			v.LearningPlan = makePlan(60, "js_course")
			return nil
		case *coachingResponse:
			return &GenerationError{Reason: ReasonUpstreamFailure, Attempts: 3}
		}
		return nil
	}}

	result, _, _ := runPipeline(t, gen)
	// heuristic fallback profile drives the rest of the run
	assert.Equal(t, StyleMixed, result.Profile.LearningStyle)
	assert.Equal(t, 10, result.Profile.TimeBudgetHoursPerWeek)
	assert.Len(t, result.Plan.Weeks, 12)
}

func TestRunFinalizerSuccessAppliesTips(t *testing.T) {
	gen := scriptedGenerator(func() LearningPlan { return makePlan(60, "js_course") }, false)
	result, _, _ := runPipeline(t, gen)
	assert.Equal(t, []string{"personalized tip"}, result.Plan.CoachingTips)
	assert.Equal(t, "reflect", result.Plan.Checkpoints[4])
}
