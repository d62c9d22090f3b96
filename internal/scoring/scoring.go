// Package scoring validates submitted results and awards points.
package scoring

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lindqvist/court-circuit/internal/config"
	"github.com/lindqvist/court-circuit/internal/tournament"
)

// Engine applies a submitted result to a match and its four players. Both
// slices are mutated in place; persistence is the caller's concern.
type Engine struct {
	cfg config.ScoringConfig
}

func New(cfg config.ScoringConfig) *Engine {
	return &Engine{cfg: cfg}
}

// RecordResult completes the match with the given scores and credits
// points to all four players. Results land exactly once: a match already
// in a terminal state rejects further submissions.
func (e *Engine) RecordResult(matches []tournament.Match, players []tournament.Player, id string, team1Score, team2Score int, now time.Time) error {
	var m *tournament.Match
	for i := range matches {
		if matches[i].ID == id {
			m = &matches[i]
			break
		}
	}
	if m == nil {
		return &tournament.NotFoundError{Kind: "match", ID: id}
	}
	if m.IsTerminal() {
		return &tournament.ConflictError{Reason: fmt.Sprintf("match %s is already %s, result not recorded", id, m.Status)}
	}
	if m.Status == tournament.StatusPending {
		return tournament.NewValidationError("match %s has not been scheduled yet", id)
	}
	if err := e.validateScores(team1Score, team2Score); err != nil {
		return err
	}

	byName := make(map[string]*tournament.Player, len(players))
	for i := range players {
		byName[players[i].Name] = &players[i]
	}
	for _, name := range m.Players() {
		if _, ok := byName[name]; !ok {
			// The match row and roster disagree; refuse to guess.
			return tournament.NewConsistencyError("match %s references unknown player %q", id, name)
		}
	}

	s1, s2 := team1Score, team2Score
	m.Team1Score = &s1
	m.Team2Score = &s2
	m.Status = tournament.StatusCompleted
	m.EndTime = &now

	winners, losers := m.Team1, m.Team2
	if team2Score > team1Score {
		winners, losers = m.Team2, m.Team1
	}

	diff := team1Score - team2Score
	if diff < 0 {
		diff = -diff
	}
	bonus := float64(diff) * e.cfg.BonusPerPointDiff
	if bonus > e.cfg.MaxBonusPoints {
		bonus = e.cfg.MaxBonusPoints
	}

	for _, name := range winners {
		credit(byName[name], e.cfg.WinPoints+bonus, now)
	}
	for _, name := range losers {
		credit(byName[name], e.cfg.LossPoints+bonus, now)
	}

	log.Info("Result recorded", "matchID", id, "score", fmt.Sprintf("%d-%d", team1Score, team2Score),
		"winners", winners, "bonus", bonus)
	return nil
}

func (e *Engine) validateScores(s1, s2 int) error {
	if s1 < 0 || s2 < 0 {
		return tournament.NewValidationError("scores must be non-negative")
	}
	if s1 == s2 {
		return tournament.NewValidationError("matches cannot end in a draw")
	}
	winning, margin := s1, s1-s2
	if s2 > s1 {
		winning, margin = s2, s2-s1
	}
	if winning < e.cfg.MinWinningScore {
		return tournament.NewValidationError("winning score %d is below the %d-point game", winning, e.cfg.MinWinningScore)
	}
	if margin < e.cfg.MinWinMargin {
		return tournament.NewValidationError("winning margin must be at least %d", e.cfg.MinWinMargin)
	}
	return nil
}

func credit(p *tournament.Player, points float64, now time.Time) {
	p.TotalPoints += points
	p.GamesPlayed++
	p.LastMatchTime = &now
	p.AvgPoints = p.TotalPoints / float64(p.GamesPlayed)
}
