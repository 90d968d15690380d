package pipeline

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// milestoneWeeks renders the checkpoint weeks that fit inside maxWeeks for
// prompt text, e.g. "4, 8 and 12".
func milestoneWeeks(maxWeeks int) string {
	var parts []string
	for _, w := range checkpointWeeks {
		if w <= maxWeeks {
			parts = append(parts, strconv.Itoa(w))
		}
	}
	if len(parts) <= 1 {
		return strings.Join(parts, "")
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

// milestoneShape renders the checkpoints object for the JSON shape block.
func milestoneShape(maxWeeks int) string {
	var parts []string
	for _, w := range checkpointWeeks {
		if w <= maxWeeks {
			parts = append(parts, fmt.Sprintf("%q: string", strconv.Itoa(w)))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

const jsonOnlyInstruction = `
	You are a precise AI career assistant that responds ONLY with valid JSON.
Every request describes the exact JSON shape expected. Ensure all required
fields are present and valid.
Do not include explanations, markdown, or text before or after the JSON.
Your response must be a single JSON object.
	`

func extractionPrompt(resumeText string) string {
	return fmt.Sprintf(`
Analyze this resume and extract a structured user profile.

Resume:
%s

Extract:
- Years of total experience (estimate if not explicit)
- Skills with proficiency levels (1=beginner, 2=novice, 3=intermediate, 4=advanced, 5=expert)
- Projects mentioned
- Certifications
- GitHub/repository links
- Estimate weekly time budget for learning (default: 10 hours)
- Learning style preference (visual/hands-on/reading/mixed, default: mixed)

Be conservative with skill levels. Most people are 2-3 level.
Omit skills you cannot name with confidence rather than guessing.

Return a JSON object in this format:

{
  "years_total": number,
  "skills": {"skill name": number},
  "projects": [string],
  "certifications": [string],
  "repos": [string],
  "time_budget_hours_per_week": number,
  "learning_style": "visual"|"hands-on"|"reading"|"mixed"
}
`, resumeText)
}

func planPrompt(strategy string, profile UserProfile, gaps []Gap, roleName string, resourceIDs []string, gapResources map[string][]string, cfg *Config) string {
	skillsJSON, _ := json.MarshalIndent(profile.Skills, "", "  ")
	gapsJSON, _ := json.MarshalIndent(gaps, "", "  ")
	resourcesJSON, _ := json.Marshal(resourceIDs)
	suggestionsJSON, _ := json.MarshalIndent(gapResources, "", "  ")

	return fmt.Sprintf(`
Create a %d-week learning plan for transitioning to: %s

Approach: %s
- fundamentals_first: Start with theory and basics, build up gradually
- project_driven: Learn through building projects, theory as needed
- balanced: Mix of theory and practical application

User Profile:
- Years of experience: %v
- Current skills: %s
- Time budget: %d hours/week
- Learning style: %s
- Projects: %s
- Certifications: %s

Skill Gaps to Address (ordered by priority):
%s

Available Resources (use ONLY these IDs, never invent your own):
%s

Suggested resources per skill:
%s

Requirements:
- Exactly %d weekly plans with week_index values 1 through %d
- Each week has %d-%d daily tasks (%d-%d minutes each)
- Every task has a non-empty verification_method describing how to verify completion
- Task resource_ids must come from the available resource list
- Include a measurable deliverable per week
- Progressive difficulty
- Checkpoints at weeks %s
- 3-10 coaching tips

Focus on the %s approach while ensuring comprehensive coverage.

Return a JSON object in this format:

{
  "role": string,
  "weeks": [
    {
      "week_index": number,
      "theme": string,
      "goals": [string],
      "deliverable": string,
      "daily": [
        {
          "day_number": number,
          "description": string,
          "verification_method": string,
          "estimated_minutes": number,
          "resource_ids": [string]
        }
      ]
    }
  ],
  "coaching_tips": [string],
  "checkpoints": %s
}
`,
		cfg.MaxWeeks, roleName,
		strategy,
		profile.YearsTotal, skillsJSON, profile.TimeBudgetHoursPerWeek, profile.LearningStyle,
		strings.Join(profile.Projects, "; "), strings.Join(profile.Certifications, "; "),
		gapsJSON,
		resourcesJSON,
		suggestionsJSON,
		cfg.MaxWeeks, cfg.MaxWeeks,
		cfg.MinDailyTasks, cfg.MaxDailyTasks, cfg.MinDailyMinutes, cfg.MaxDailyMinutes,
		milestoneWeeks(cfg.MaxWeeks),
		strategy,
		milestoneShape(cfg.MaxWeeks))
}

func coachingPrompt(plan LearningPlan, profile UserProfile, maxWeeks int) string {
	planJSON, _ := json.MarshalIndent(plan, "", "  ")

	return fmt.Sprintf(`
Enhance this learning plan with personalized coaching tips and reflective
checkpoint milestones.

User Context:
- Experience level: %v years
- Learning style: %s
- Time commitment: %d hours/week

Plan:
%s

Rewrite coaching_tips as 5-8 personalized tips that:
1. Reference specific weeks/tasks in the plan
2. Address common challenges for this transition
3. Provide motivation and mindset guidance
4. Include reflection prompts
5. Are encouraging but realistic

Rewrite the checkpoint milestones at weeks %s as reflection prompts tied
to what the plan covers by then.

Do NOT alter skills, resources, weeks, or task structure. Return the full
plan JSON with the same weeks and tasks, changing only coaching_tips and
checkpoints.
`, profile.YearsTotal, profile.LearningStyle, profile.TimeBudgetHoursPerWeek, planJSON,
		milestoneWeeks(maxWeeks))
}
