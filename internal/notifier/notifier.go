package notifier

import (
	"github.com/lindqvist/court-circuit/internal/tournament"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For matches promoted onto a court
	SendCourtCall(match *tournament.Match, dryRun bool) error
	// For recorded results
	SendResultNotification(match *tournament.Match, dryRun bool) error
	// For standings on demand
	SendLeaderboard(players []tournament.Player, dryRun bool) error

	// For formatting responses without posting
	FormatLeaderboardResponse(players []tournament.Player) (any, error)
}
