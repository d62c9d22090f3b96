package store

import "github.com/lindqvist/court-circuit/internal/tournament"

// TournamentStore is the persistence boundary for the scheduler. The
// backing row store only supports whole-table reads and whole-table
// replaces, so every mutation writes back a full row set.
type TournamentStore interface {
	LoadPlayers() ([]tournament.Player, error)
	ReplacePlayers(players []tournament.Player) error
	LoadMatches() ([]tournament.Match, error)
	ReplaceMatches(matches []tournament.Match) error
	Clear() error
}
