package allocator

import (
	"testing"
	"time"

	"github.com/lindqvist/court-circuit/internal/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func pending(id string, team1, team2 [2]string) tournament.Match {
	return tournament.Match{
		ID:     id,
		Team1:  team1,
		Team2:  team2,
		Status: tournament.StatusPending,
		Type:   tournament.MatchTypeMens,
	}
}

func onCourt(id string, court int, status tournament.MatchStatus, team1, team2 [2]string) tournament.Match {
	start := testNow.Add(-30 * time.Minute)
	return tournament.Match{
		ID:        id,
		Court:     &court,
		Team1:     team1,
		Team2:     team2,
		Status:    status,
		Type:      tournament.MatchTypeMens,
		StartTime: &start,
	}
}

func TestAssignCourtsFillsFreeCourtsInOrder(t *testing.T) {
	a := New(2)
	matches := []tournament.Match{
		pending("M1", [2]string{"Alan", "Ben"}, [2]string{"Carl", "Dan"}),
		pending("M2", [2]string{"Erik", "Finn"}, [2]string{"Gus", "Hal"}),
		pending("M3", [2]string{"Ivan", "Jon"}, [2]string{"Kurt", "Len"}),
	}

	promoted := a.AssignCourts(matches, testNow)
	assert.Equal(t, []string{"M1", "M2"}, promoted)

	require.NotNil(t, matches[0].Court)
	assert.Equal(t, 1, *matches[0].Court)
	assert.Equal(t, tournament.StatusScheduled, matches[0].Status)
	require.NotNil(t, matches[0].StartTime)
	assert.Equal(t, testNow, *matches[0].StartTime)

	require.NotNil(t, matches[1].Court)
	assert.Equal(t, 2, *matches[1].Court)

	assert.Equal(t, tournament.StatusPending, matches[2].Status, "no court left for M3")
	assert.Nil(t, matches[2].Court)
}

func TestAssignCourtsOrdersNumerically(t *testing.T) {
	a := New(1)
	matches := []tournament.Match{
		pending("M10", [2]string{"Alan", "Ben"}, [2]string{"Carl", "Dan"}),
		pending("M2", [2]string{"Erik", "Finn"}, [2]string{"Gus", "Hal"}),
	}

	promoted := a.AssignCourts(matches, testNow)
	assert.Equal(t, []string{"M2"}, promoted, "M2 predates M10 despite lexical order")
}

func TestAssignCourtsSkipsBusyPlayers(t *testing.T) {
	a := New(3)
	matches := []tournament.Match{
		onCourt("M1", 1, tournament.StatusInProgress, [2]string{"Alan", "Ben"}, [2]string{"Carl", "Dan"}),
		pending("M2", [2]string{"Alan", "Erik"}, [2]string{"Finn", "Gus"}),
		pending("M3", [2]string{"Hal", "Ivan"}, [2]string{"Jon", "Kurt"}),
	}

	promoted := a.AssignCourts(matches, testNow)
	assert.Equal(t, []string{"M3"}, promoted, "M2 blocked by Alan already playing")
	require.NotNil(t, matches[2].Court)
	assert.Equal(t, 2, *matches[2].Court, "court 1 occupied by the running match")
}

func TestAssignCourtsBusySetGrowsPerPromotion(t *testing.T) {
	a := New(2)
	matches := []tournament.Match{
		pending("M1", [2]string{"Alan", "Ben"}, [2]string{"Carl", "Dan"}),
		pending("M2", [2]string{"Alan", "Erik"}, [2]string{"Finn", "Gus"}),
	}

	promoted := a.AssignCourts(matches, testNow)
	assert.Equal(t, []string{"M1"}, promoted, "M2 shares Alan with the match just promoted")
	assert.Equal(t, tournament.StatusPending, matches[1].Status)
}

func TestStartMatch(t *testing.T) {
	a := New(2)
	matches := []tournament.Match{
		onCourt("M1", 1, tournament.StatusScheduled, [2]string{"Alan", "Ben"}, [2]string{"Carl", "Dan"}),
	}

	require.NoError(t, a.StartMatch(matches, "M1"))
	assert.Equal(t, tournament.StatusInProgress, matches[0].Status)

	err := a.StartMatch(matches, "M1")
	var verr *tournament.ValidationError
	assert.ErrorAs(t, err, &verr, "starting twice should fail")

	err = a.StartMatch(matches, "M99")
	var nferr *tournament.NotFoundError
	assert.ErrorAs(t, err, &nferr)
}

func TestCancelFreesCourtForBackfill(t *testing.T) {
	a := New(1)
	matches := []tournament.Match{
		onCourt("M1", 1, tournament.StatusScheduled, [2]string{"Alan", "Ben"}, [2]string{"Carl", "Dan"}),
		pending("M2", [2]string{"Erik", "Finn"}, [2]string{"Gus", "Hal"}),
	}

	require.NoError(t, a.Cancel(matches, "M1"))
	assert.Equal(t, tournament.StatusCancelled, matches[0].Status)
	assert.Nil(t, matches[0].Court)

	promoted := a.AssignCourts(matches, testNow)
	assert.Equal(t, []string{"M2"}, promoted)
	require.NotNil(t, matches[1].Court)
	assert.Equal(t, 1, *matches[1].Court)
}

func TestCancelTerminalMatch(t *testing.T) {
	a := New(1)
	matches := []tournament.Match{
		{ID: "M1", Team1: [2]string{"Alan", "Ben"}, Team2: [2]string{"Carl", "Dan"}, Status: tournament.StatusCompleted},
	}

	err := a.Cancel(matches, "M1")
	var verr *tournament.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCancelMatchesForPlayer(t *testing.T) {
	a := New(2)
	matches := []tournament.Match{
		pending("M1", [2]string{"Alan", "Ben"}, [2]string{"Carl", "Dan"}),
		onCourt("M2", 1, tournament.StatusScheduled, [2]string{"Alan", "Erik"}, [2]string{"Finn", "Gus"}),
		{ID: "M3", Team1: [2]string{"Alan", "Hal"}, Team2: [2]string{"Ivan", "Jon"}, Status: tournament.StatusCompleted},
		pending("M4", [2]string{"Kurt", "Len"}, [2]string{"Ivan", "Jon"}),
	}

	cancelled := a.CancelMatchesFor(matches, "Alan")
	assert.ElementsMatch(t, []string{"M1", "M2"}, cancelled)
	assert.Equal(t, tournament.StatusCompleted, matches[2].Status, "completed matches untouched")
	assert.Equal(t, tournament.StatusPending, matches[3].Status)
}
