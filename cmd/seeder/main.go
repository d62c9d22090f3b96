package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/lindqvist/court-circuit/internal/database"
	"github.com/lindqvist/court-circuit/internal/store"
	"github.com/lindqvist/court-circuit/internal/tournament"
)

const historicMatches = 20

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":        "circuit.db",
		"MIGRATIONS_DIR": "migrations",
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	// Optional: seeding a remote Turso database instead of a local file.
	config["TURSO_PRIMARY_URL"] = os.Getenv("TURSO_PRIMARY_URL")
	config["TURSO_AUTH_TOKEN"] = os.Getenv("TURSO_AUTH_TOKEN")
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"], cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	st := store.New(db)

	players := roster()
	if err := st.ReplacePlayers(players); err != nil {
		log.Fatalf("Failed to seed players: %s", err)
	}
	log.Info("Seeded roster", "players", len(players))

	matches := historic(players)
	if err := st.ReplaceMatches(matches); err != nil {
		log.Fatalf("Failed to seed matches: %s", err)
	}
	log.Info("Seeded historic matches", "matches", len(matches))
}

func roster() []tournament.Player {
	names := map[string]tournament.Gender{
		"Mads":      "M",
		"Jonas":     "M",
		"Frederik":  "M",
		"Oliver":    "M",
		"Emil":      "M",
		"Magnus":    "M",
		"Sebastian": "M",
		"Tobias":    "M",
		"Sofie":     "F",
		"Ida":       "F",
		"Clara":     "F",
		"Freja":     "F",
	}
	players := make([]tournament.Player, 0, len(names))
	for name, gender := range names {
		players = append(players, tournament.Player{
			Name:   name,
			Status: tournament.PlayerActive,
			Gender: gender,
		})
	}
	return players
}

// historic builds a batch of plausible completed matches spread over the
// past weeks, so the scheduler has interaction history to work with.
func historic(players []tournament.Player) []tournament.Match {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var matches []tournament.Match

	for i := 1; i <= historicMatches; i++ {
		rng.Shuffle(len(players), func(a, b int) {
			players[a], players[b] = players[b], players[a]
		})

		end := time.Now().Add(-time.Duration(historicMatches-i) * 26 * time.Hour)
		start := end.Add(-45 * time.Minute)
		winScore := 11 + rng.Intn(5)
		loseScore := rng.Intn(winScore - 1)

		m := tournament.Match{
			ID:         tournament.FormatMatchID(i),
			Team1:      [2]string{players[0].Name, players[1].Name},
			Team2:      [2]string{players[2].Name, players[3].Name},
			StartTime:  &start,
			EndTime:    &end,
			Team1Score: &winScore,
			Team2Score: &loseScore,
			Status:     tournament.StatusCompleted,
		}
		m.Type = tournament.DeriveMatchType([4]tournament.Gender{
			players[0].Gender, players[1].Gender, players[2].Gender, players[3].Gender,
		})
		matches = append(matches, m)
	}
	return matches
}
