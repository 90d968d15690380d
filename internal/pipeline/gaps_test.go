package pipeline

import (
	"testing"

	"github.com/devclimb/roadmapworker/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeOrdersByPrerequisites(t *testing.T) {
	analyzer := NewGapAnalyzer(testConfig())

	role := catalog.Role{
		Skills:        map[string]int{"JavaScript": 5, "React": 4, "HTML": 4},
		Prerequisites: []string{"JavaScript", "React", "HTML"},
	}
	profile := UserProfile{
		UserID:                 "u1",
		Skills:                 map[string]int{"JavaScript": 3, "React": 2},
		TimeBudgetHoursPerWeek: 10,
		LearningStyle:          StyleMixed,
	}

	gaps := analyzer.Analyze(profile, role)
	require.Len(t, gaps, 3)

	assert.Equal(t, "JavaScript", gaps[0].Skill)
	assert.Equal(t, 2, gaps[0].Delta())
	assert.Equal(t, "React", gaps[1].Skill)
	assert.Equal(t, 2, gaps[1].Delta())
	assert.Equal(t, "HTML", gaps[2].Skill)
	assert.Equal(t, 4, gaps[2].Delta())
	assert.Equal(t, 0, gaps[2].CurrentLevel)

	// priority is descending and dense
	assert.Equal(t, 3, gaps[0].Priority)
	assert.Equal(t, 2, gaps[1].Priority)
	assert.Equal(t, 1, gaps[2].Priority)
}

func TestAnalyzeSkipsSatisfiedSkills(t *testing.T) {
	analyzer := NewGapAnalyzer(testConfig())

	role := catalog.Role{
		Skills: map[string]int{"Git": 3, "SQL": 4},
	}
	profile := UserProfile{
		Skills:                 map[string]int{"Git": 4, "SQL": 2},
		TimeBudgetHoursPerWeek: 5,
		LearningStyle:          StyleMixed,
	}

	gaps := analyzer.Analyze(profile, role)
	require.Len(t, gaps, 1)
	assert.Equal(t, "SQL", gaps[0].Skill)
}

func TestAnalyzeTieBreaks(t *testing.T) {
	analyzer := NewGapAnalyzer(testConfig())

	// No prerequisites: larger delta first, then lexical order.
	role := catalog.Role{
		Skills: map[string]int{"Docker": 3, "Testing": 3, "Security": 4},
	}
	profile := UserProfile{
		Skills:                 map[string]int{},
		TimeBudgetHoursPerWeek: 8,
		LearningStyle:          StyleMixed,
	}

	gaps := analyzer.Analyze(profile, role)
	require.Len(t, gaps, 3)
	assert.Equal(t, "Security", gaps[0].Skill) // delta 4
	assert.Equal(t, "Docker", gaps[1].Skill)   // delta 3, before Testing lexically
	assert.Equal(t, "Testing", gaps[2].Skill)
}

func TestAnalyzeEstimatedHours(t *testing.T) {
	cfg := testConfig()
	cfg.HoursPerLevel = 7
	analyzer := NewGapAnalyzer(cfg)

	role := catalog.Role{Skills: map[string]int{"SQL": 4}}
	profile := UserProfile{Skills: map[string]int{"SQL": 1}, TimeBudgetHoursPerWeek: 10, LearningStyle: StyleMixed}

	gaps := analyzer.Analyze(profile, role)
	require.Len(t, gaps, 1)
	assert.Equal(t, 21, gaps[0].EstimatedHours)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	analyzer := NewGapAnalyzer(testConfig())

	role := catalog.Role{
		Skills:        map[string]int{"A": 3, "B": 3, "C": 5, "D": 2, "E": 4},
		Prerequisites: []string{"C", "A"},
	}
	profile := UserProfile{Skills: map[string]int{"C": 1}, TimeBudgetHoursPerWeek: 10, LearningStyle: StyleMixed}

	first := analyzer.Analyze(profile, role)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, analyzer.Analyze(profile, role))
	}
}
