package notifier

import (
	"sync"

	"github.com/lindqvist/court-circuit/internal/tournament"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendCourtCallCalls             []*tournament.Match
	SendResultNotificationCalls    []*tournament.Match
	SendLeaderboardCalls           [][]tournament.Player
	FormatLeaderboardResponseCalls [][]tournament.Player

	// Spies
	SendCourtCallFunc             func(match *tournament.Match, dryRun bool) error
	SendResultNotificationFunc    func(match *tournament.Match, dryRun bool) error
	SendLeaderboardFunc           func(players []tournament.Player, dryRun bool) error
	FormatLeaderboardResponseFunc func(players []tournament.Player) (any, error)
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendCourtCallCalls = nil
	m.SendResultNotificationCalls = nil
	m.SendLeaderboardCalls = nil
	m.FormatLeaderboardResponseCalls = nil
}

func (m *Mock) SendCourtCall(match *tournament.Match, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendCourtCallCalls = append(m.SendCourtCallCalls, match)
	if m.SendCourtCallFunc != nil {
		return m.SendCourtCallFunc(match, dryRun)
	}
	return nil
}

func (m *Mock) SendResultNotification(match *tournament.Match, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, match)
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(match, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(players []tournament.Player, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, players)
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(players, dryRun)
	}
	return nil
}

func (m *Mock) FormatLeaderboardResponse(players []tournament.Player) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FormatLeaderboardResponseCalls = append(m.FormatLeaderboardResponseCalls, players)
	if m.FormatLeaderboardResponseFunc != nil {
		return m.FormatLeaderboardResponseFunc(players)
	}
	return "formatted_leaderboard", nil
}
