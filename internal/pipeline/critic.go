package pipeline

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/devclimb/roadmapworker/internal/catalog"
)

// PlanScore holds the five critic criteria for one candidate, each 0-5,
// plus the weighted total.
type PlanScore struct {
	Coverage        float64 `json:"coverage"`
	Feasibility     float64 `json:"feasibility"`
	Measurability   float64 `json:"measurability"`
	PortfolioImpact float64 `json:"portfolio_impact"`
	StyleFit        float64 `json:"learning_style_fit"`
	Total           float64 `json:"total"`
}

// CriticAgent scores candidates and picks the best one. Scoring is a pure
// function over already-generated content; it never calls the model.
type CriticAgent struct {
	cfg      *Config
	catalogs *catalog.Catalog
}

func NewCriticAgent(cfg *Config, catalogs *catalog.Catalog) *CriticAgent {
	return &CriticAgent{cfg: cfg, catalogs: catalogs}
}

// Select returns the highest-scoring candidate. Ties prefer higher
// feasibility, then coverage, then the earlier-generated candidate. A
// single-element list is returned as-is without scoring.
func (c *CriticAgent) Select(candidates []LearningPlan, profile UserProfile, gaps []Gap, role catalog.Role) (LearningPlan, []PlanScore, error) {
	if len(candidates) == 0 {
		return LearningPlan{}, nil, fmt.Errorf("no candidate plans to evaluate")
	}
	if len(candidates) == 1 {
		return candidates[0], nil, nil
	}

	scores := make([]PlanScore, len(candidates))
	best := 0
	for i, plan := range candidates {
		scores[i] = c.score(plan, profile, gaps, role)
		if i > 0 && beats(scores[i], scores[best]) {
			best = i
		}
	}
	return candidates[best], scores, nil
}

// beats reports whether a outranks b under the tie-break rules. Strict
// comparisons keep the earlier candidate on exact ties.
func beats(a, b PlanScore) bool {
	if a.Total != b.Total {
		return a.Total > b.Total
	}
	if a.Feasibility != b.Feasibility {
		return a.Feasibility > b.Feasibility
	}
	return a.Coverage > b.Coverage
}

func (c *CriticAgent) score(plan LearningPlan, profile UserProfile, gaps []Gap, role catalog.Role) PlanScore {
	s := PlanScore{
		Coverage:        c.scoreCoverage(plan, gaps),
		Feasibility:     scoreFeasibility(plan, profile),
		Measurability:   scoreMeasurability(plan),
		PortfolioImpact: scorePortfolio(plan, role),
		StyleFit:        c.scoreStyleFit(plan, profile),
	}
	w := c.cfg.Weights
	s.Total = w.Coverage*s.Coverage +
		w.Feasibility*s.Feasibility +
		w.Measurability*s.Measurability +
		w.PortfolioImpact*s.PortfolioImpact +
		w.StyleFit*s.StyleFit
	return s
}

// scoreCoverage: fraction of gaps the plan addresses, either by naming the
// skill in a theme/goal/task or by referencing a resource tagged with it.
func (c *CriticAgent) scoreCoverage(plan LearningPlan, gaps []Gap) float64 {
	if len(gaps) == 0 {
		return 5
	}
	addressed := 0
	for _, gap := range gaps {
		if c.addressesSkill(plan, gap.Skill) {
			addressed++
		}
	}
	return 5 * float64(addressed) / float64(len(gaps))
}

func (c *CriticAgent) addressesSkill(plan LearningPlan, skill string) bool {
	for _, week := range plan.Weeks {
		if containsWord(week.Theme, skill) {
			return true
		}
		for _, goal := range week.Goals {
			if containsWord(goal, skill) {
				return true
			}
		}
		for _, task := range week.Daily {
			if containsWord(task.Description, skill) {
				return true
			}
			for _, id := range task.ResourceIDs {
				res, err := c.catalogs.Resource(id)
				if err != nil {
					continue
				}
				for _, tag := range res.Skills {
					if strings.EqualFold(tag, skill) {
						return true
					}
				}
			}
		}
	}
	return false
}

// scoreFeasibility penalizes weeks that overflow the weekly time budget,
// proportionally to the average overflow.
func scoreFeasibility(plan LearningPlan, profile UserProfile) float64 {
	if len(plan.Weeks) == 0 {
		return 0
	}
	budget := float64(profile.TimeBudgetHoursPerWeek * 60)
	overflow := 0.0
	for _, week := range plan.Weeks {
		ratio := float64(week.TotalMinutes()) / budget
		if ratio > 1 {
			overflow += ratio - 1
		}
	}
	score := 5 * (1 - overflow/float64(len(plan.Weeks)))
	if score < 0 {
		return 0
	}
	return score
}

// scoreMeasurability: fraction of daily tasks with a verification method.
func scoreMeasurability(plan LearningPlan) float64 {
	total, verified := 0, 0
	for _, week := range plan.Weeks {
		for _, task := range week.Daily {
			total++
			if strings.TrimSpace(task.VerificationMethod) != "" {
				verified++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return 5 * float64(verified) / float64(total)
}

// scorePortfolio: fraction of the role's assessments referenced by weekly
// deliverables. Roles without assessments fall back to deliverable presence.
func scorePortfolio(plan LearningPlan, role catalog.Role) float64 {
	if len(role.Assessments) == 0 {
		withDeliverable := 0
		for _, week := range plan.Weeks {
			if strings.TrimSpace(week.Deliverable) != "" {
				withDeliverable++
			}
		}
		if len(plan.Weeks) == 0 {
			return 0
		}
		return 5 * float64(withDeliverable) / float64(len(plan.Weeks))
	}
	hit := 0
	for _, assessment := range role.Assessments {
		for _, week := range plan.Weeks {
			if containsWord(week.Deliverable, assessment) {
				hit++
				break
			}
		}
	}
	return 5 * float64(hit) / float64(len(role.Assessments))
}

// Resource types considered a fit per learning style.
var styleTypes = map[LearningStyle]map[string]bool{
	StyleVisual:  {"video": true, "course": true},
	StyleReading: {"documentation": true, "book": true, "guide": true},
	StyleHandsOn: {"tutorial": true, "project": true, "course": true},
}

// scoreStyleFit: fraction of resource-backed tasks whose resource types
// match the user's learning style. Mixed matches everything; plans with no
// resource references get a neutral midpoint.
func (c *CriticAgent) scoreStyleFit(plan LearningPlan, profile UserProfile) float64 {
	if profile.LearningStyle == StyleMixed {
		return 5
	}
	types := styleTypes[profile.LearningStyle]
	total, fit := 0, 0
	for _, week := range plan.Weeks {
		for _, task := range week.Daily {
			if len(task.ResourceIDs) == 0 {
				continue
			}
			total++
			for _, id := range task.ResourceIDs {
				res, err := c.catalogs.Resource(id)
				if err == nil && types[res.Type] {
					fit++
					break
				}
			}
		}
	}
	if total == 0 {
		return 2.5
	}
	return 5 * float64(fit) / float64(total)
}

// containsWord reports whether needle occurs in haystack as a whole word,
// case-insensitively. Matches embedded in a longer word do not count, so
// "React" is not credited for "reaction".
func containsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	h := strings.ToLower(haystack)
	n := strings.ToLower(needle)
	for start := 0; ; start++ {
		i := strings.Index(h[start:], n)
		if i < 0 {
			return false
		}
		start += i
		end := start + len(n)
		before, _ := utf8.DecodeLastRuneInString(h[:start])
		after, _ := utf8.DecodeRuneInString(h[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
