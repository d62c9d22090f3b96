package store

import (
	"sync"

	"github.com/lindqvist/court-circuit/internal/tournament"
)

// Mock is an in-memory TournamentStore for testing. It is safe for
// concurrent use.
type Mock struct {
	mu      sync.Mutex
	players []tournament.Player
	matches []tournament.Match

	// Spies allow tests to inject failures.
	LoadPlayersFunc    func() ([]tournament.Player, error)
	ReplacePlayersFunc func(players []tournament.Player) error
	LoadMatchesFunc    func() ([]tournament.Match, error)
	ReplaceMatchesFunc func(matches []tournament.Match) error

	// Call counters
	ReplacePlayersCalls int
	ReplaceMatchesCalls int
}

// NewMock creates a new in-memory store mock.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) LoadPlayers() ([]tournament.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadPlayersFunc != nil {
		return m.LoadPlayersFunc()
	}
	out := make([]tournament.Player, len(m.players))
	copy(out, m.players)
	return out, nil
}

func (m *Mock) ReplacePlayers(players []tournament.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplacePlayersCalls++
	if m.ReplacePlayersFunc != nil {
		return m.ReplacePlayersFunc(players)
	}
	m.players = make([]tournament.Player, len(players))
	copy(m.players, players)
	return nil
}

func (m *Mock) LoadMatches() ([]tournament.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadMatchesFunc != nil {
		return m.LoadMatchesFunc()
	}
	out := make([]tournament.Match, len(m.matches))
	copy(out, m.matches)
	return out, nil
}

func (m *Mock) ReplaceMatches(matches []tournament.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplaceMatchesCalls++
	if m.ReplaceMatchesFunc != nil {
		return m.ReplaceMatchesFunc(matches)
	}
	m.matches = make([]tournament.Match, len(matches))
	copy(m.matches, matches)
	return nil
}

func (m *Mock) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players = nil
	m.matches = nil
	return nil
}

// Seed replaces the mock contents without going through the spies.
func (m *Mock) Seed(players []tournament.Player, matches []tournament.Match) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players = append([]tournament.Player(nil), players...)
	m.matches = append([]tournament.Match(nil), matches...)
}
