package pipeline

import (
	"context"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/devclimb/roadmapworker/internal/catalog"
)

// ProfileExtractor turns resume text into a UserProfile. Generation failure
// is never fatal here: it falls back to a deterministic keyword extractor
// that produces a conservative profile.
type ProfileExtractor struct {
	cfg      *Config
	gen      Generator
	catalogs *catalog.Catalog
}

func NewProfileExtractor(cfg *Config, gen Generator, catalogs *catalog.Catalog) *ProfileExtractor {
	return &ProfileExtractor{cfg: cfg, gen: gen, catalogs: catalogs}
}

// profileExtraction is the response contract for the extraction call.
type profileExtraction struct {
	YearsTotal             float64        `json:"years_total"`
	Skills                 map[string]int `json:"skills"`
	Projects               []string       `json:"projects"`
	Certifications         []string       `json:"certifications"`
	Repos                  []string       `json:"repos"`
	TimeBudgetHoursPerWeek int            `json:"time_budget_hours_per_week"`
	LearningStyle          string         `json:"learning_style"`
}

func (e *profileExtraction) Validate() error {
	// Deliberately loose: proficiency levels and the learning style are
	// clamped/normalized afterwards rather than rejected, so only
	// contradictions worth a re-prompt fail here.
	if e.YearsTotal < 0 {
		return errNegativeYears
	}
	return nil
}

var errNegativeYears = &fieldError{"years_total must not be negative"}

type fieldError struct{ msg string }

func (e *fieldError) Error() string { return e.msg }

// Extract runs the schema-enforced extraction call, falling back to the
// heuristic extractor on GenerationError.
func (x *ProfileExtractor) Extract(ctx context.Context, resumeText, userID string) (UserProfile, error) {
	var ext profileExtraction
	if err := x.gen.Generate(ctx, extractionPrompt(resumeText), &ext); err != nil {
		if ctx.Err() != nil {
			return UserProfile{}, err
		}
		log.Printf("profile extraction failed, using heuristic fallback. err: %v", err)
		return x.fallback(resumeText, userID), nil
	}
	return ext.toProfile(userID), nil
}

// toProfile clamps and normalizes the model output into a valid profile.
func (e *profileExtraction) toProfile(userID string) UserProfile {
	skills := make(map[string]int, len(e.Skills))
	for name, level := range e.Skills {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if level < 1 {
			level = 1
		}
		if level > 5 {
			level = 5
		}
		skills[name] = level
	}

	budget := e.TimeBudgetHoursPerWeek
	if budget <= 0 {
		budget = 10
	}

	years := e.YearsTotal
	if years < 0 {
		years = 0
	}

	return UserProfile{
		UserID:                 userID,
		YearsTotal:             years,
		Skills:                 skills,
		Projects:               e.Projects,
		Certifications:         e.Certifications,
		Repos:                  e.Repos,
		TimeBudgetHoursPerWeek: budget,
		LearningStyle:          normalizeStyle(e.LearningStyle),
	}
}

func normalizeStyle(raw string) LearningStyle {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "visual", "video":
		return StyleVisual
	case "hands-on", "hands_on", "project", "practical":
		return StyleHandsOn
	case "reading", "text":
		return StyleReading
	default:
		return StyleMixed
	}
}

var yearsPattern = regexp.MustCompile(`(?i)(\d{1,2})\+?\s*years?`)

// fallback is the deterministic extractor: scan the resume against the
// catalog skill dictionary and assume a conservative level 2 for every hit.
func (x *ProfileExtractor) fallback(resumeText, userID string) UserProfile {
	skills := map[string]int{}
	for _, skill := range x.catalogs.SkillNames() {
		if containsWord(resumeText, skill) {
			skills[skill] = 2
		}
	}

	years := 0.0
	if m := yearsPattern.FindStringSubmatch(resumeText); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			years = float64(n)
		}
	}

	return UserProfile{
		UserID:                 userID,
		YearsTotal:             years,
		Skills:                 skills,
		TimeBudgetHoursPerWeek: 10,
		LearningStyle:          StyleMixed,
	}
}
