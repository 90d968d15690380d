package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMilestoneWeeksFollowConfig(t *testing.T) {
	assert.Equal(t, "4, 8 and 12", milestoneWeeks(12))
	assert.Equal(t, "4 and 8", milestoneWeeks(8))
	assert.Equal(t, "4", milestoneWeeks(5))
}

func TestPlanPromptCheckpointsFollowMaxWeeks(t *testing.T) {
	cfg := testConfig()
	cfg.MaxWeeks = 8

	prompt := planPrompt("balanced", testProfile(), nil, "Frontend Developer", nil, nil, cfg)
	assert.Contains(t, prompt, "Checkpoints at weeks 4 and 8")
	assert.Contains(t, prompt, `"checkpoints": {"4": string, "8": string}`)
	assert.NotContains(t, prompt, `"12": string`)

	prompt = planPrompt("balanced", testProfile(), nil, "Frontend Developer", nil, nil, testConfig())
	assert.Contains(t, prompt, "Checkpoints at weeks 4, 8 and 12")
	assert.Contains(t, prompt, `"checkpoints": {"4": string, "8": string, "12": string}`)
}

func TestCoachingPromptCheckpointsFollowMaxWeeks(t *testing.T) {
	prompt := coachingPrompt(makePlan(60, "js_course"), testProfile(), 8)
	assert.Contains(t, prompt, "checkpoint milestones at weeks 4 and 8")
}
