package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/devclimb/roadmapworker/internal/catalog"
)

// Repair records one mutation the oracle made to bring a plan into
// compliance. The full log is returned alongside the plan so no drop or
// trim happens silently.
type Repair struct {
	WeekIndex int    `json:"week_index"`
	Rule      string `json:"rule"`
	Action    string `json:"action"`
	Detail    string `json:"detail"`
}

// ConstraintOracle deterministically validates and repairs the selected
// plan against the hard business rules. It never calls the model; if a
// violation cannot be repaired by trimming or redistribution it fails with
// a ConstraintViolation.
type ConstraintOracle struct {
	cfg      *Config
	catalogs *catalog.Catalog
}

func NewConstraintOracle(cfg *Config, catalogs *catalog.Catalog) *ConstraintOracle {
	return &ConstraintOracle{cfg: cfg, catalogs: catalogs}
}

// Enforce walks each week in order:
//  1. drop tasks referencing non-whitelisted resources
//  2. reject any kept task lacking a verification method (not repairable)
//  3. cap long sessions per week by redistributing excess minutes
//  4. trim lowest-priority tasks until the week fits the time budget
func (o *ConstraintOracle) Enforce(plan LearningPlan, profile UserProfile, gaps []Gap) (LearningPlan, []Repair, error) {
	plan = clonePlan(plan)
	priorities := skillPriorities(gaps)
	budget := profile.TimeBudgetHoursPerWeek * 60

	var repairs []Repair
	for i := range plan.Weeks {
		week := &plan.Weeks[i]

		repairs = append(repairs, o.dropNonWhitelisted(week)...)

		for _, task := range week.Daily {
			if strings.TrimSpace(task.VerificationMethod) == "" {
				return plan, repairs, &ConstraintViolation{
					WeekIndex: week.WeekIndex,
					Rule:      RuleVerificationMethod,
					Detail:    fmt.Sprintf("day %d task has no verification method", task.DayNumber),
				}
			}
		}

		longRepairs, err := o.capLongSessions(week)
		repairs = append(repairs, longRepairs...)
		if err != nil {
			return plan, repairs, err
		}

		trimRepairs, err := o.trimToBudget(week, budget, priorities)
		repairs = append(repairs, trimRepairs...)
		if err != nil {
			return plan, repairs, err
		}
	}
	return plan, repairs, nil
}

// dropNonWhitelisted removes tasks that reference resources outside the
// catalog. Dropping beats keeping a hallucinated link.
func (o *ConstraintOracle) dropNonWhitelisted(week *WeeklyPlan) []Repair {
	var repairs []Repair
	kept := week.Daily[:0]
	for _, task := range week.Daily {
		bad := ""
		for _, id := range task.ResourceIDs {
			if !o.catalogs.HasResource(id) {
				bad = id
				break
			}
		}
		if bad != "" {
			repairs = append(repairs, Repair{
				WeekIndex: week.WeekIndex,
				Rule:      RuleResourceWhitelist,
				Action:    "dropped_task",
				Detail:    fmt.Sprintf("day %d references unknown resource %q", task.DayNumber, bad),
			})
			continue
		}
		kept = append(kept, task)
	}
	week.Daily = kept
	return repairs
}

// capLongSessions keeps at most MaxLongSessionsPerWeek tasks over the long
// session threshold. The longest ones stay long; excess minutes on the
// rest are poured into the week's shorter tasks up to the threshold. If
// minutes are left over the plan is not compliant.
func (o *ConstraintOracle) capLongSessions(week *WeeklyPlan) ([]Repair, error) {
	threshold := o.cfg.LongSessionThreshold
	cap := o.cfg.MaxLongSessionsPerWeek

	var long []int
	for i, task := range week.Daily {
		if task.EstimatedMinutes > threshold {
			long = append(long, i)
		}
	}
	if len(long) <= cap {
		return nil, nil
	}

	// Longest sessions keep their slot; ties resolve to the earlier day.
	sort.SliceStable(long, func(a, b int) bool {
		return week.Daily[long[a]].EstimatedMinutes > week.Daily[long[b]].EstimatedMinutes
	})

	var repairs []Repair
	for _, idx := range long[cap:] {
		task := &week.Daily[idx]
		excess := task.EstimatedMinutes - threshold
		task.EstimatedMinutes = threshold

		moved := o.redistribute(week, excess, threshold)
		if moved < excess {
			return repairs, &ConstraintViolation{
				WeekIndex: week.WeekIndex,
				Rule:      RuleLongSessions,
				Detail:    fmt.Sprintf("cannot redistribute %d excess minutes from day %d", excess-moved, task.DayNumber),
			}
		}
		repairs = append(repairs, Repair{
			WeekIndex: week.WeekIndex,
			Rule:      RuleLongSessions,
			Action:    "redistributed_minutes",
			Detail:    fmt.Sprintf("moved %d minutes off day %d to cap long sessions at %d", excess, task.DayNumber, cap),
		})
	}
	return repairs, nil
}

// redistribute pours minutes into the shortest tasks first, never pushing
// any of them over the long-session threshold. Returns how many minutes
// found a home.
func (o *ConstraintOracle) redistribute(week *WeeklyPlan, minutes, threshold int) int {
	order := make([]int, 0, len(week.Daily))
	for i, task := range week.Daily {
		if task.EstimatedMinutes < threshold {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return week.Daily[order[a]].EstimatedMinutes < week.Daily[order[b]].EstimatedMinutes
	})

	moved := 0
	for _, idx := range order {
		if moved >= minutes {
			break
		}
		room := threshold - week.Daily[idx].EstimatedMinutes
		if room <= 0 {
			continue
		}
		take := minutes - moved
		if take > room {
			take = room
		}
		week.Daily[idx].EstimatedMinutes += take
		moved += take
	}
	return moved
}

// trimToBudget drops the lowest-priority tasks until the week fits inside
// the weekly minute budget. A task's priority is the highest gap priority
// among the skills its resources are tagged with; resource-less tasks trim
// first, ties trim the later day first.
func (o *ConstraintOracle) trimToBudget(week *WeeklyPlan, budget int, priorities map[string]int) ([]Repair, error) {
	var repairs []Repair
	for week.TotalMinutes() > budget {
		if len(week.Daily) == 0 {
			break
		}
		drop := 0
		dropPriority := o.taskPriority(week.Daily[0], priorities)
		for i := 1; i < len(week.Daily); i++ {
			p := o.taskPriority(week.Daily[i], priorities)
			if p < dropPriority || (p == dropPriority && week.Daily[i].DayNumber >= week.Daily[drop].DayNumber) {
				drop = i
				dropPriority = p
			}
		}
		task := week.Daily[drop]
		week.Daily = append(week.Daily[:drop], week.Daily[drop+1:]...)
		repairs = append(repairs, Repair{
			WeekIndex: week.WeekIndex,
			Rule:      RuleTimeBudget,
			Action:    "trimmed_task",
			Detail:    fmt.Sprintf("dropped day %d (%d min, priority %d) to fit %d min budget", task.DayNumber, task.EstimatedMinutes, dropPriority, budget),
		})
	}
	if len(week.Daily) == 0 {
		return repairs, &ConstraintViolation{
			WeekIndex: week.WeekIndex,
			Rule:      RuleTimeBudget,
			Detail:    fmt.Sprintf("budget of %d minutes cannot fit any task", budget),
		}
	}
	return repairs, nil
}

func (o *ConstraintOracle) taskPriority(task DailyTask, priorities map[string]int) int {
	best := 0
	for _, id := range task.ResourceIDs {
		res, err := o.catalogs.Resource(id)
		if err != nil {
			continue
		}
		for _, skill := range res.Skills {
			if p := priorities[skill]; p > best {
				best = p
			}
		}
	}
	return best
}

func skillPriorities(gaps []Gap) map[string]int {
	m := make(map[string]int, len(gaps))
	for _, gap := range gaps {
		m[gap.Skill] = gap.Priority
	}
	return m
}

// clonePlan deep-copies the week and task slices so repairs never alias
// the caller's candidate list.
func clonePlan(plan LearningPlan) LearningPlan {
	weeks := make([]WeeklyPlan, len(plan.Weeks))
	copy(weeks, plan.Weeks)
	for i := range weeks {
		daily := make([]DailyTask, len(weeks[i].Daily))
		copy(daily, weeks[i].Daily)
		weeks[i].Daily = daily
	}
	plan.Weeks = weeks
	return plan
}
