package pipeline

import (
	"sort"

	"github.com/devclimb/roadmapworker/internal/catalog"
)

// GapAnalyzer diffs a profile against a role definition. Pure function, no
// generative calls: the same inputs always produce the same ordered list.
type GapAnalyzer struct {
	cfg *Config
}

func NewGapAnalyzer(cfg *Config) *GapAnalyzer {
	return &GapAnalyzer{cfg: cfg}
}

// Analyze returns one Gap for every role skill the profile falls short on,
// ordered by priority descending. Ordering: skills listed earlier in the
// role prerequisites come first, ties go to the larger delta, remaining
// ties to lexical skill order.
func (a *GapAnalyzer) Analyze(profile UserProfile, role catalog.Role) []Gap {
	prereqRank := make(map[string]int, len(role.Prerequisites))
	for i, skill := range role.Prerequisites {
		prereqRank[skill] = i
	}
	// Skills not listed as prerequisites sort after all that are.
	unranked := len(role.Prerequisites)

	var gaps []Gap
	for skill, target := range role.Skills {
		current := profile.Skills[skill]
		if target-current <= 0 {
			continue
		}
		gaps = append(gaps, Gap{
			Skill:          skill,
			CurrentLevel:   current,
			TargetLevel:    target,
			EstimatedHours: a.cfg.HoursPerLevel * (target - current),
		})
	}

	sort.Slice(gaps, func(i, j int) bool {
		ri, rj := rankOf(prereqRank, unranked, gaps[i].Skill), rankOf(prereqRank, unranked, gaps[j].Skill)
		if ri != rj {
			return ri < rj
		}
		if gaps[i].Delta() != gaps[j].Delta() {
			return gaps[i].Delta() > gaps[j].Delta()
		}
		return gaps[i].Skill < gaps[j].Skill
	})

	for i := range gaps {
		gaps[i].Priority = len(gaps) - i
	}
	return gaps
}

func rankOf(ranks map[string]int, unranked int, skill string) int {
	if r, ok := ranks[skill]; ok {
		return r
	}
	return unranked
}
