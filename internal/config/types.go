package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Slack         SlackConfig
	Turso         TursoConfig
	ProjectID     string
	Tournament    TournamentConfig
	Scoring       ScoringConfig
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// TournamentConfig holds the scheduling knobs.
type TournamentConfig struct {
	// CourtCount is the size of the fixed court pool.
	CourtCount int
	// MaxPendingPerCourt caps how many matches one generation pass may
	// queue per court.
	MaxPendingPerCourt int
	// PartnerRepeatCap is how many times a pair may partner before the
	// generator avoids the pairing. Relaxed incrementally when no
	// candidate passes.
	PartnerRepeatCap int
	// RandomSeed seeds the generator's tie-breaking. Zero seeds from the
	// clock.
	RandomSeed int64
}

// ScoringConfig holds the award constants.
type ScoringConfig struct {
	WinPoints          float64
	LossPoints         float64
	BonusPerPointDiff  float64
	MaxBonusPoints     float64
	MinWinningScore    int
	MinWinMargin       int
	MinGamesForRanking int
}
