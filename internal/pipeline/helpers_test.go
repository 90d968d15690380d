package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/devclimb/roadmapworker/internal/catalog"
	"github.com/stretchr/testify/require"
)

// fakeGenerator lets tests script the generative side of the pipeline.
type fakeGenerator struct {
	fn func(ctx context.Context, prompt string, out Schema) error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, out Schema) error {
	return f.fn(ctx, prompt, out)
}

func testConfig() *Config {
	return &Config{
		Model:       "test-model",
		MaxRetries:  3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    10 * time.Millisecond,
		CallTimeout: time.Second,

		MaxWeeks:        12,
		MinDailyTasks:   5,
		MaxDailyTasks:   7,
		MinDailyMinutes: 15,
		MaxDailyMinutes: 240,

		LongSessionThreshold:   120,
		MaxLongSessionsPerWeek: 2,

		HoursPerLevel:  10,
		CandidateCount: 3,
		Weights: CriticWeights{
			Coverage:        1,
			Feasibility:     1,
			Measurability:   1,
			PortfolioImpact: 1,
			StyleFit:        1,
		},
	}
}

const testRolesJSON = `{
  "Frontend Developer": {
    "skills": {"JavaScript": 5, "React": 4, "HTML": 4},
    "prerequisites": ["JavaScript", "React", "HTML"],
    "assessments": ["Portfolio Website", "React App"]
  }
}`

const testResourcesJSON = `{
  "js_course": {
    "title": "JavaScript Course",
    "url": "https://example.com/js",
    "type": "tutorial",
    "skills": ["JavaScript"],
    "difficulty": 2,
    "estimated_hours": 20
  },
  "react_docs": {
    "title": "React Docs",
    "url": "https://example.com/react",
    "type": "documentation",
    "skills": ["React", "JavaScript"],
    "difficulty": 3,
    "estimated_hours": 15
  },
  "html_video": {
    "title": "HTML Crash Course",
    "url": "https://example.com/html",
    "type": "video",
    "skills": ["HTML"],
    "difficulty": 1,
    "estimated_hours": 5
  }
}`

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "roles.json"), []byte(testRolesJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resources.json"), []byte(testResourcesJSON), 0o644))
	c, err := catalog.Load(dir)
	require.NoError(t, err)
	return c
}

func testRole(t *testing.T, c *catalog.Catalog) catalog.Role {
	t.Helper()
	role, err := c.Role("Frontend Developer")
	require.NoError(t, err)
	return role
}

func testProfile() UserProfile {
	return UserProfile{
		UserID:                 "user_001",
		YearsTotal:             2,
		Skills:                 map[string]int{"JavaScript": 3, "React": 2},
		TimeBudgetHoursPerWeek: 10,
		LearningStyle:          StyleMixed,
	}
}

// makePlan builds a structurally valid 12-week plan where every week has 5
// tasks of minutes each, all referencing resourceID.
func makePlan(minutes int, resourceID string) LearningPlan {
	plan := LearningPlan{
		Role:         "Frontend Developer",
		CoachingTips: []string{"stay consistent", "practice daily", "build projects"},
		Checkpoints: map[int]string{
			4:  "First milestone",
			8:  "Midpoint check",
			12: "Final assessment",
		},
	}
	for w := 1; w <= 12; w++ {
		week := WeeklyPlan{
			WeekIndex:   w,
			Theme:       fmt.Sprintf("Week %d fundamentals", w),
			Goals:       []string{fmt.Sprintf("finish week %d material", w)},
			Deliverable: fmt.Sprintf("week %d exercises", w),
		}
		for d := 1; d <= 5; d++ {
			task := DailyTask{
				DayNumber:          d,
				Description:        fmt.Sprintf("study session %d.%d", w, d),
				VerificationMethod: "complete exercises and take notes",
				EstimatedMinutes:   minutes,
			}
			if resourceID != "" {
				task.ResourceIDs = []string{resourceID}
			}
			week.Daily = append(week.Daily, task)
		}
		plan.Weeks = append(plan.Weeks, week)
	}
	return plan
}
