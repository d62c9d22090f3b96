package tournament_test

import (
	"errors"
	"testing"

	"github.com/lindqvist/court-circuit/internal/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveMatchType(t *testing.T) {
	m := tournament.GenderMale
	f := tournament.GenderFemale

	assert.Equal(t, tournament.MatchTypeMens, tournament.DeriveMatchType([4]tournament.Gender{m, m, m, m}))
	assert.Equal(t, tournament.MatchTypeWomens, tournament.DeriveMatchType([4]tournament.Gender{f, f, f, f}))
	assert.Equal(t, tournament.MatchTypeMixed, tournament.DeriveMatchType([4]tournament.Gender{m, f, m, f}))
	assert.Equal(t, tournament.MatchTypeMixed, tournament.DeriveMatchType([4]tournament.Gender{m, m, m, f}))
}

func TestMatchIDRoundTrip(t *testing.T) {
	id := tournament.FormatMatchID(42)
	assert.Equal(t, "M42", id)

	n, err := tournament.ParseMatchID(id)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = tournament.ParseMatchID("42")
	assert.Error(t, err)
	_, err = tournament.ParseMatchID("Mbad")
	assert.Error(t, err)
}

func TestCombinationKeyIgnoresOrder(t *testing.T) {
	a := tournament.Match{Team1: [2]string{"Alice", "Bob"}, Team2: [2]string{"Carol", "Dave"}}
	b := tournament.Match{Team1: [2]string{"Dave", "Carol"}, Team2: [2]string{"Bob", "Alice"}}
	c := tournament.Match{Team1: [2]string{"Alice", "Bob"}, Team2: [2]string{"Carol", "Erin"}}

	assert.Equal(t, a.CombinationKey(), b.CombinationKey())
	assert.NotEqual(t, a.CombinationKey(), c.CombinationKey())
}

func TestMatchStateHelpers(t *testing.T) {
	m := tournament.Match{Status: tournament.StatusScheduled, Team1: [2]string{"A", "B"}, Team2: [2]string{"C", "D"}}
	assert.True(t, m.IsActive())
	assert.False(t, m.IsTerminal())
	assert.True(t, m.HasPlayer("C"))
	assert.False(t, m.HasPlayer("E"))

	m.Status = tournament.StatusCompleted
	assert.False(t, m.IsActive())
	assert.True(t, m.IsTerminal())
}

func TestErrorTaxonomy(t *testing.T) {
	var vErr *tournament.ValidationError
	err := tournament.NewValidationError("scores must differ")
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Error(), "scores must differ")

	var nfErr *tournament.NotFoundError
	err = &tournament.NotFoundError{Kind: "match", ID: "M9"}
	require.True(t, errors.As(err, &nfErr))
	assert.Contains(t, err.Error(), "M9")

	inner := errors.New("disk gone")
	var ioErr *tournament.StoreIOError
	err = &tournament.StoreIOError{Op: "ReplaceMatches", Err: inner}
	require.True(t, errors.As(err, &ioErr))
	assert.True(t, errors.Is(err, inner))
}
