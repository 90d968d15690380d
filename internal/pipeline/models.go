package pipeline

import (
	"fmt"
	"sort"
)

// LearningStyle is the user's preferred way of learning.
type LearningStyle string

const (
	StyleVisual  LearningStyle = "visual"
	StyleHandsOn LearningStyle = "hands-on"
	StyleReading LearningStyle = "reading"
	StyleMixed   LearningStyle = "mixed"
)

// Valid reports whether the style is one of the known enum values.
func (s LearningStyle) Valid() bool {
	switch s {
	case StyleVisual, StyleHandsOn, StyleReading, StyleMixed:
		return true
	}
	return false
}

// UserProfile is the structured view of a resume. Built once per run and
// immutable afterwards.
type UserProfile struct {
	UserID                 string         `json:"user_id"`
	YearsTotal             float64        `json:"years_total"`
	Skills                 map[string]int `json:"skills"`
	Projects               []string       `json:"projects,omitempty"`
	Certifications         []string       `json:"certifications,omitempty"`
	Repos                  []string       `json:"repos,omitempty"`
	TimeBudgetHoursPerWeek int            `json:"time_budget_hours_per_week"`
	LearningStyle          LearningStyle  `json:"learning_style"`
}

// Validate checks the profile invariants.
func (p *UserProfile) Validate() error {
	if p.YearsTotal < 0 {
		return fmt.Errorf("years_total must be >= 0, got %v", p.YearsTotal)
	}
	if p.TimeBudgetHoursPerWeek <= 0 {
		return fmt.Errorf("time_budget_hours_per_week must be > 0, got %d", p.TimeBudgetHoursPerWeek)
	}
	for skill, level := range p.Skills {
		if level < 1 || level > 5 {
			return fmt.Errorf("skill %q has proficiency %d, want 1-5", skill, level)
		}
	}
	if !p.LearningStyle.Valid() {
		return fmt.Errorf("unknown learning_style %q", p.LearningStyle)
	}
	return nil
}

// Gap is one skill deficiency between the profile and the target role.
type Gap struct {
	Skill          string `json:"skill"`
	CurrentLevel   int    `json:"current_level"`
	TargetLevel    int    `json:"target_level"`
	Priority       int    `json:"priority"`
	EstimatedHours int    `json:"estimated_hours"`
}

// Delta is the proficiency distance still to close.
func (g Gap) Delta() int { return g.TargetLevel - g.CurrentLevel }

// DailyTask is a single study session inside a week.
type DailyTask struct {
	DayNumber          int      `json:"day_number"`
	Description        string   `json:"description"`
	VerificationMethod string   `json:"verification_method"`
	EstimatedMinutes   int      `json:"estimated_minutes"`
	ResourceIDs        []string `json:"resource_ids,omitempty"`
}

// WeeklyPlan is one week of the roadmap.
type WeeklyPlan struct {
	WeekIndex   int         `json:"week_index"`
	Theme       string      `json:"theme"`
	Goals       []string    `json:"goals"`
	Deliverable string      `json:"deliverable"`
	Daily       []DailyTask `json:"daily"`
}

// TotalMinutes sums the estimated minutes across the week's tasks.
func (w *WeeklyPlan) TotalMinutes() int {
	total := 0
	for _, task := range w.Daily {
		total += task.EstimatedMinutes
	}
	return total
}

// LongSessionCount counts tasks longer than threshold minutes.
func (w *WeeklyPlan) LongSessionCount(threshold int) int {
	count := 0
	for _, task := range w.Daily {
		if task.EstimatedMinutes > threshold {
			count++
		}
	}
	return count
}

// checkpointWeeks are the weeks that must carry a milestone.
var checkpointWeeks = []int{4, 8, 12}

// LearningPlan is the 12-week roadmap. Produced as one of N candidates by
// the planner, selected by the critic, repaired by the oracle, annotated by
// the finalizer.
type LearningPlan struct {
	Role         string         `json:"role"`
	Strategy     string         `json:"strategy,omitempty"`
	Weeks        []WeeklyPlan   `json:"weeks"`
	CoachingTips []string       `json:"coaching_tips"`
	Checkpoints  map[int]string `json:"checkpoints"`
}

// validateStructure checks the structural contract a freshly generated plan
// must satisfy: exactly cfg.MaxWeeks weeks with contiguous indices, 5-7
// daily tasks per week inside the minute bounds, non-empty verification on
// every task, and only whitelisted resource references.
func (p *LearningPlan) validateStructure(cfg *Config, whitelisted func(string) bool) error {
	if len(p.Weeks) != cfg.MaxWeeks {
		return fmt.Errorf("plan has %d weeks, want exactly %d", len(p.Weeks), cfg.MaxWeeks)
	}
	seen := make(map[int]bool, len(p.Weeks))
	for _, week := range p.Weeks {
		if week.WeekIndex < 1 || week.WeekIndex > cfg.MaxWeeks {
			return fmt.Errorf("week_index %d out of range 1-%d", week.WeekIndex, cfg.MaxWeeks)
		}
		if seen[week.WeekIndex] {
			return fmt.Errorf("duplicate week_index %d", week.WeekIndex)
		}
		seen[week.WeekIndex] = true
		if week.Theme == "" {
			return fmt.Errorf("week %d has no theme", week.WeekIndex)
		}
		if len(week.Goals) == 0 {
			return fmt.Errorf("week %d has no goals", week.WeekIndex)
		}
		if week.Deliverable == "" {
			return fmt.Errorf("week %d has no deliverable", week.WeekIndex)
		}
		if len(week.Daily) < cfg.MinDailyTasks || len(week.Daily) > cfg.MaxDailyTasks {
			return fmt.Errorf("week %d has %d daily tasks, want %d-%d",
				week.WeekIndex, len(week.Daily), cfg.MinDailyTasks, cfg.MaxDailyTasks)
		}
		for _, task := range week.Daily {
			if task.Description == "" {
				return fmt.Errorf("week %d day %d has no description", week.WeekIndex, task.DayNumber)
			}
			if task.VerificationMethod == "" {
				return fmt.Errorf("week %d day %d has no verification_method", week.WeekIndex, task.DayNumber)
			}
			if task.EstimatedMinutes < cfg.MinDailyMinutes || task.EstimatedMinutes > cfg.MaxDailyMinutes {
				return fmt.Errorf("week %d day %d estimated_minutes %d out of range %d-%d",
					week.WeekIndex, task.DayNumber, task.EstimatedMinutes, cfg.MinDailyMinutes, cfg.MaxDailyMinutes)
			}
			for _, id := range task.ResourceIDs {
				if !whitelisted(id) {
					return fmt.Errorf("week %d day %d references unknown resource %q", week.WeekIndex, task.DayNumber, id)
				}
			}
		}
	}
	for _, week := range checkpointWeeks {
		if week > cfg.MaxWeeks {
			continue
		}
		if _, ok := p.Checkpoints[week]; !ok {
			return fmt.Errorf("missing checkpoint at week %d", week)
		}
	}
	return nil
}

// sortWeeks orders the weeks by index so downstream stages can walk them
// front to back.
func (p *LearningPlan) sortWeeks() {
	sort.Slice(p.Weeks, func(i, j int) bool {
		return p.Weeks[i].WeekIndex < p.Weeks[j].WeekIndex
	})
}
