package model

// ================ Config ================

// SessionConfig governs conversation persistence and stage gating.
type SessionConfig struct {
	TTL     string `envconfig:"SESSION_TTL" default:"30m"`
	Counsel struct {
		// MinAssistantTurns is how many counselor replies a session
		// collects before the analysis stage runs automatically.
		MinAssistantTurns int `envconfig:"SESSION_MIN_ASSISTANT_TURNS" default:"5"`
		// ContextMaxTurns bounds how much history feeds each model call.
		ContextMaxTurns int `envconfig:"SESSION_CONTEXT_MAX_TURNS" default:"20"`
	}
	Tools struct {
		MaxCalls int `envconfig:"SESSION_TOOL_MAX_CALLS" default:"10"`
	}
}

type CounselorModelConfig struct {
	Model       string  `envconfig:"COUNSELOR_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"COUNSELOR_MAX_TOKENS" default:"1000"`
	Temperature float32 `envconfig:"COUNSELOR_TEMPERATURE" default:"0.6"`
}

type AnalysisModelConfig struct {
	Model       string  `envconfig:"ANALYSIS_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"ANALYSIS_MAX_TOKENS" default:"4000"`
	Temperature float32 `envconfig:"ANALYSIS_TEMPERATURE" default:"0.2"`
}

// RankingConfig carries the re-ranking weights and search fan-out limits.
// The weights are caller contract, not validated to sum to 1.0.
type RankingConfig struct {
	RecencyWeight   float64 `envconfig:"RANKING_RECENCY_WEIGHT" default:"0.4"`
	RelevanceWeight float64 `envconfig:"RANKING_RELEVANCE_WEIGHT" default:"0.4"`
	GenreWeight     float64 `envconfig:"RANKING_GENRE_WEIGHT" default:"0.2"`
	HalfLifeYears   float64 `envconfig:"RANKING_HALF_LIFE_YEARS" default:"3.0"`
	MaxResults      int     `envconfig:"RANKING_MAX_RESULTS" default:"5"`
	MaxKeywords     int     `envconfig:"RANKING_MAX_KEYWORDS" default:"5"`
	PerKeyword      int     `envconfig:"RANKING_RESULTS_PER_KEYWORD" default:"5"`
	// TaxonomyPath optionally points at a YAML genre keyword table
	// replacing the built-in one.
	TaxonomyPath string `envconfig:"RANKING_GENRE_TAXONOMY_PATH"`
}
