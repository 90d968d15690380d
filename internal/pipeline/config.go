package pipeline

import (
	"os"
	"strconv"
	"time"
)

// CriticWeights scale the five critic criteria. All 1.0 keeps the plain
// unweighted 0-25 sum; deployments can tune them without a rebuild.
type CriticWeights struct {
	Coverage        float64
	Feasibility     float64
	Measurability   float64
	PortfolioImpact float64
	StyleFit        float64
}

// Config carries every tunable the pipeline components need. It is built
// once in main and passed by reference into each constructor; no component
// reads the environment on its own.
type Config struct {
	Model       string
	MaxRetries  int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	CallTimeout time.Duration

	MaxWeeks        int
	MinDailyTasks   int
	MaxDailyTasks   int
	MinDailyMinutes int
	MaxDailyMinutes int

	LongSessionThreshold   int
	MaxLongSessionsPerWeek int

	// Hours of study estimated per proficiency point of gap.
	HoursPerLevel int

	CandidateCount int
	Weights        CriticWeights

	DataDir string
}

// LoadConfig reads the recognized environment options, falling back to the
// defaults below for anything unset.
func LoadConfig() *Config {
	return &Config{
		Model:       envString("GEMINI_MODEL", "gemini-2.5-pro"),
		MaxRetries:  envInt("GEN_MAX_RETRIES", 3),
		BaseDelay:   time.Duration(envInt("GEN_BASE_DELAY_MS", 500)) * time.Millisecond,
		MaxDelay:    time.Duration(envInt("GEN_MAX_DELAY_MS", 8000)) * time.Millisecond,
		CallTimeout: time.Duration(envInt("GEN_TIMEOUT_SECONDS", 120)) * time.Second,

		MaxWeeks:        envInt("MAX_WEEKS", 12),
		MinDailyTasks:   envInt("MIN_DAILY_TASKS", 5),
		MaxDailyTasks:   envInt("MAX_DAILY_TASKS", 7),
		MinDailyMinutes: envInt("MIN_DAILY_MINUTES", 15),
		MaxDailyMinutes: envInt("MAX_DAILY_MINUTES", 240),

		LongSessionThreshold:   envInt("LONG_SESSION_THRESHOLD", 120),
		MaxLongSessionsPerWeek: envInt("MAX_LONG_SESSIONS_PER_WEEK", 2),

		HoursPerLevel: envInt("HOURS_PER_LEVEL", 10),

		CandidateCount: envInt("PLAN_CANDIDATES", 3),
		Weights: CriticWeights{
			Coverage:        1.0,
			Feasibility:     1.0,
			Measurability:   1.0,
			PortfolioImpact: 1.0,
			StyleFit:        1.0,
		},

		DataDir: envString("DATA_DIR", "data"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
