package generator

import (
	"math/rand"
	"testing"
	"time"

	"github.com/lindqvist/court-circuit/internal/config"
	"github.com/lindqvist/court-circuit/internal/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func ts(minutesAgo int) *time.Time {
	t := testNow.Add(-time.Duration(minutesAgo) * time.Minute)
	return &t
}

func testGenerator(t *testing.T) *Generator {
	t.Helper()
	cfg := config.TournamentDefaults()
	return New(cfg, rand.New(rand.NewSource(1)))
}

func player(name string, g tournament.Gender) tournament.Player {
	return tournament.Player{Name: name, Status: tournament.PlayerActive, Gender: g}
}

func completed(id string, team1, team2 [2]string, endedMinutesAgo int) tournament.Match {
	return tournament.Match{
		ID:      id,
		Team1:   team1,
		Team2:   team2,
		Status:  tournament.StatusCompleted,
		Type:    tournament.MatchTypeMens,
		EndTime: ts(endedMinutesAgo),
	}
}

func TestGenerateMensBatch(t *testing.T) {
	g := testGenerator(t)
	players := []tournament.Player{
		player("Alan", "M"), player("Ben", "M"), player("Carl", "M"), player("Dan", "M"),
		player("Erik", "M"), player("Finn", "M"), player("Gus", "M"), player("Hal", "M"),
	}

	batch := g.Generate(players, nil, 2, testNow)
	require.Len(t, batch, 2)

	seen := map[string]bool{}
	for i, m := range batch {
		assert.Equal(t, tournament.StatusPending, m.Status)
		assert.Equal(t, tournament.MatchTypeMens, m.Type)
		assert.Nil(t, m.Court)
		assert.Equal(t, tournament.FormatMatchID(i+1), m.ID)
		for _, p := range m.Players() {
			assert.False(t, seen[p], "player %s reused within batch", p)
			seen[p] = true
		}
	}
}

func TestGeneratePrefersMixedForNewPlayers(t *testing.T) {
	g := testGenerator(t)
	players := []tournament.Player{
		player("Alan", "M"), player("Ben", "M"),
		player("Cara", "F"), player("Dana", "F"),
	}

	batch := g.Generate(players, nil, 1, testNow)
	require.Len(t, batch, 1)

	m := batch[0]
	assert.Equal(t, tournament.MatchTypeMixed, m.Type)
	for _, team := range [][2]string{m.Team1, m.Team2} {
		males := 0
		for _, p := range team {
			if p == "Alan" || p == "Ben" {
				males++
			}
		}
		assert.Equal(t, 1, males, "mixed team %v should pair one man with one woman", team)
	}
}

func TestGenerateSkipsBusyPlayers(t *testing.T) {
	g := testGenerator(t)
	players := []tournament.Player{
		player("Alan", "M"), player("Ben", "M"), player("Carl", "M"), player("Dan", "M"),
		player("Erik", "M"), player("Finn", "M"), player("Gus", "M"), player("Hal", "M"),
	}
	court := 1
	active := tournament.Match{
		ID:     "M1",
		Court:  &court,
		Team1:  [2]string{"Alan", "Ben"},
		Team2:  [2]string{"Carl", "Dan"},
		Status: tournament.StatusScheduled,
		Type:   tournament.MatchTypeMens,
	}

	batch := g.Generate(players, []tournament.Match{active}, 2, testNow)
	require.Len(t, batch, 1)

	for _, p := range batch[0].Players() {
		assert.NotContains(t, []string{"Alan", "Ben", "Carl", "Dan"}, p)
	}
}

func TestGenerateSuppressesFreshCombination(t *testing.T) {
	g := testGenerator(t)
	players := []tournament.Player{
		player("Alan", "M"), player("Ben", "M"), player("Carl", "M"), player("Dan", "M"),
	}
	recent := completed("M1", [2]string{"Alan", "Ben"}, [2]string{"Carl", "Dan"}, 10)

	batch := g.Generate(players, []tournament.Match{recent}, 1, testNow)
	assert.Empty(t, batch, "only possible combination just played and should be suppressed")
}

func TestGenerateAllowsStaleCombination(t *testing.T) {
	g := testGenerator(t)
	players := []tournament.Player{
		player("Alan", "M"), player("Ben", "M"), player("Carl", "M"), player("Dan", "M"),
	}
	matches := []tournament.Match{
		completed("M1", [2]string{"Alan", "Ben"}, [2]string{"Carl", "Dan"}, 180),
		// Enough later completions to churn the combination stale.
		completed("M2", [2]string{"Erik", "Finn"}, [2]string{"Gus", "Hal"}, 150),
		completed("M3", [2]string{"Erik", "Gus"}, [2]string{"Finn", "Hal"}, 120),
		completed("M4", [2]string{"Erik", "Hal"}, [2]string{"Finn", "Gus"}, 90),
		completed("M5", [2]string{"Erik", "Finn"}, [2]string{"Hal", "Gus"}, 60),
	}

	batch := g.Generate(players, matches, 1, testNow)
	require.Len(t, batch, 1)
	assert.Equal(t, "M6", batch[0].ID)
}

func TestGenerateIDsSkipCancelled(t *testing.T) {
	g := testGenerator(t)
	players := []tournament.Player{
		player("Alan", "M"), player("Ben", "M"), player("Carl", "M"), player("Dan", "M"),
	}
	cancelled := tournament.Match{
		ID:     "M7",
		Team1:  [2]string{"Erik", "Finn"},
		Team2:  [2]string{"Gus", "Hal"},
		Status: tournament.StatusCancelled,
		Type:   tournament.MatchTypeMens,
	}

	batch := g.Generate(players, []tournament.Match{cancelled}, 1, testNow)
	require.Len(t, batch, 1)
	assert.Equal(t, "M8", batch[0].ID)
}

func TestGeneratePicksLeastPlayedPool(t *testing.T) {
	g := testGenerator(t)
	players := []tournament.Player{
		player("Alan", "M"), player("Ben", "M"), player("Carl", "M"), player("Dan", "M"),
		player("Erik", "M"), player("Finn", "M"), player("Gus", "M"), player("Hal", "M"),
	}
	// Erik..Hal have played several games; Alan..Dan none.
	var matches []tournament.Match
	id := 1
	for i := 0; i < 5; i++ {
		matches = append(matches, completed(tournament.FormatMatchID(id), [2]string{"Erik", "Finn"}, [2]string{"Gus", "Hal"}, 300-i*30))
		id++
	}

	batch := g.Generate(players, matches, 1, testNow)
	require.Len(t, batch, 1)
	got := batch[0].Players()
	assert.ElementsMatch(t, []string{"Alan", "Ben", "Carl", "Dan"}, got[:])
}

func TestGenerateRelaxesPartnerCap(t *testing.T) {
	g := testGenerator(t)
	players := []tournament.Player{
		player("Alan", "M"), player("Ben", "M"), player("Carl", "M"), player("Dan", "M"),
	}
	// Alan has partnered each of the others at the cap already, so every
	// team split is blocked until the cap relaxes.
	var matches []tournament.Match
	id := 1
	for _, partner := range []string{"Ben", "Carl", "Dan"} {
		for i := 0; i < 2; i++ {
			matches = append(matches, completed(tournament.FormatMatchID(id), [2]string{"Alan", partner}, [2]string{"Erik", "Finn"}, 400-id*10))
			id++
		}
	}

	batch := g.Generate(players, matches, 1, testNow)
	require.Len(t, batch, 1)
	got := batch[0].Players()
	assert.ElementsMatch(t, []string{"Alan", "Ben", "Carl", "Dan"}, got[:])
}
