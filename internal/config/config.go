package config

import (
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: "./migrations",
		Port:          getEnv("PORT"),
		Slack: SlackConfig{
			Token:     getEnv("SLACK_BOT_TOKEN"),
			ChannelID: getEnv("SLACK_CHANNEL_ID"),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL"),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN"),
		},
		ProjectID:  getEnv("GCP_PROJECT"),
		Tournament: TournamentDefaults(),
		Scoring:    ScoringDefaults(),
	}

	cfg.Tournament.CourtCount = getEnvInt("COURT_COUNT", cfg.Tournament.CourtCount)
	cfg.Tournament.MaxPendingPerCourt = getEnvInt("MAX_PENDING_PER_COURT", cfg.Tournament.MaxPendingPerCourt)
	cfg.Tournament.PartnerRepeatCap = getEnvInt("PARTNER_REPEAT_CAP", cfg.Tournament.PartnerRepeatCap)
	cfg.Tournament.RandomSeed = int64(getEnvInt("RANDOM_SEED", 0))
	cfg.Scoring.MinGamesForRanking = getEnvInt("MIN_GAMES_FOR_RANKING", cfg.Scoring.MinGamesForRanking)

	return cfg
}

// TournamentDefaults returns the default scheduling knobs.
func TournamentDefaults() TournamentConfig {
	return TournamentConfig{
		CourtCount:         6,
		MaxPendingPerCourt: 3,
		PartnerRepeatCap:   2,
	}
}

// ScoringDefaults returns the default award constants: win 2, loss 1,
// 0.1 bonus per point of score difference capped at 1.0, rally scoring to
// 11 win by 2.
func ScoringDefaults() ScoringConfig {
	return ScoringConfig{
		WinPoints:          2,
		LossPoints:         1,
		BonusPerPointDiff:  0.1,
		MaxBonusPoints:     1.0,
		MinWinningScore:    11,
		MinWinMargin:       2,
		MinGamesForRanking: 3,
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Warn("Invalid integer env var, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return n
}
