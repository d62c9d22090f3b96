package tournament

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PlayerStatus defines whether a player is part of the active pool.
type PlayerStatus string

const (
	PlayerActive   PlayerStatus = "Active"
	PlayerInactive PlayerStatus = "Inactive"
)

// Gender of a player, used to derive the match type.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// MatchStatus defines the lifecycle state of a match.
type MatchStatus string

const (
	StatusPending    MatchStatus = "Pending"
	StatusScheduled  MatchStatus = "Scheduled"
	StatusInProgress MatchStatus = "In Progress"
	StatusCompleted  MatchStatus = "Completed"
	StatusCancelled  MatchStatus = "Cancelled"
)

// MatchType is derived from the genders of the four participants.
type MatchType string

const (
	MatchTypeMens   MatchType = "Mens"
	MatchTypeWomens MatchType = "Womens"
	MatchTypeMixed  MatchType = "Mixed"
)

// Player represents a tournament participant. The name is the key.
type Player struct {
	Name          string       `json:"name"`
	Status        PlayerStatus `json:"status"`
	Gender        Gender       `json:"gender"`
	TotalPoints   float64      `json:"total_points"`
	GamesPlayed   int          `json:"games_played"`
	CheckInTime   *time.Time   `json:"check_in_time,omitempty"`
	LastMatchTime *time.Time   `json:"last_match_time,omitempty"`
	AvgPoints     float64      `json:"avg_points"`
}

// Match represents a single doubles match. Team1 and Team2 hold the player
// names; all four are pairwise distinct.
type Match struct {
	ID         string      `json:"id"`
	Court      *int        `json:"court,omitempty"`
	Team1      [2]string   `json:"team1"`
	Team2      [2]string   `json:"team2"`
	StartTime  *time.Time  `json:"start_time,omitempty"`
	EndTime    *time.Time  `json:"end_time,omitempty"`
	Team1Score *int        `json:"team1_score,omitempty"`
	Team2Score *int        `json:"team2_score,omitempty"`
	Status     MatchStatus `json:"status"`
	Type       MatchType   `json:"type"`
}

// Players returns all four participants in a fixed order.
func (m *Match) Players() [4]string {
	return [4]string{m.Team1[0], m.Team1[1], m.Team2[0], m.Team2[1]}
}

// HasPlayer reports whether the named player participates in the match.
func (m *Match) HasPlayer(name string) bool {
	for _, p := range m.Players() {
		if p == name {
			return true
		}
	}
	return false
}

// IsActive reports whether the match occupies a court for allocation
// purposes. Scheduled and In Progress are allocation-equivalent.
func (m *Match) IsActive() bool {
	return m.Status == StatusScheduled || m.Status == StatusInProgress
}

// IsTerminal reports whether the match has reached a final state. Terminal
// matches must never be mutated again.
func (m *Match) IsTerminal() bool {
	return m.Status == StatusCompleted || m.Status == StatusCancelled
}

// CombinationKey returns a canonical key for the 4-player set, independent
// of team assignment and ordering. Used for duplicate suppression.
func (m *Match) CombinationKey() string {
	return CombinationKey(m.Players())
}

// CombinationKey builds the canonical key for an arbitrary set of four
// player names.
func CombinationKey(players [4]string) string {
	names := players[:]
	sorted := make([]string, len(names))
	copy(sorted, names)
	for i := 0; i < len(sorted)-1; i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j] < sorted[i] {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	return strings.Join(sorted, "|")
}

// DeriveMatchType computes the match type from the genders of the four
// participants: all male is Mens, all female is Womens, anything else Mixed.
func DeriveMatchType(genders [4]Gender) MatchType {
	males := 0
	for _, g := range genders {
		if g == GenderMale {
			males++
		}
	}
	switch males {
	case 4:
		return MatchTypeMens
	case 0:
		return MatchTypeWomens
	default:
		return MatchTypeMixed
	}
}

// FormatMatchID renders the canonical M<int> match id.
func FormatMatchID(n int) string {
	return fmt.Sprintf("M%d", n)
}

// ParseMatchID extracts the numeric part of an M<int> match id.
func ParseMatchID(id string) (int, error) {
	if !strings.HasPrefix(id, "M") {
		return 0, fmt.Errorf("malformed match id %q", id)
	}
	n, err := strconv.Atoi(id[1:])
	if err != nil {
		return 0, fmt.Errorf("malformed match id %q: %w", id, err)
	}
	return n, nil
}

// ValidPlayerStatus reports whether s is a known player status.
func ValidPlayerStatus(s PlayerStatus) bool {
	return s == PlayerActive || s == PlayerInactive
}

// ValidMatchStatus reports whether s is a known match status.
func ValidMatchStatus(s MatchStatus) bool {
	switch s {
	case StatusPending, StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ValidMatchType reports whether t is a known match type.
func ValidMatchType(t MatchType) bool {
	return t == MatchTypeMens || t == MatchTypeWomens || t == MatchTypeMixed
}

// ValidGender reports whether g is a known gender marker.
func ValidGender(g Gender) bool {
	return g == GenderMale || g == GenderFemale
}
