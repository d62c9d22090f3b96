package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/lindqvist/court-circuit/internal/tournament"
)

// store handles all database operations for the tournament tables.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// retryAttempts bounds how often a transient store failure is retried
// before it surfaces as a StoreIOError.
const retryAttempts = 3

// New creates a new TournamentStore backed by the given database.
func New(db *sql.DB) TournamentStore {
	return &store{db: db}
}

// withRetry runs fn with bounded exponential backoff. Consistency
// violations are permanent and never retried.
func withRetry(op string, fn func() error) error {
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(50*time.Millisecond),
		backoff.WithMaxInterval(500*time.Millisecond),
	), retryAttempts-1)

	err := backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		var cErr *tournament.ConsistencyError
		if errors.As(err, &cErr) {
			return backoff.Permanent(err)
		}
		log.Warn("Store operation failed, retrying", "op", op, "error", err)
		return err
	}, policy)
	if err == nil {
		return nil
	}
	var cErr *tournament.ConsistencyError
	if errors.As(err, &cErr) {
		return err
	}
	return &tournament.StoreIOError{Op: op, Err: err}
}

func (s *store) LoadPlayers() ([]tournament.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var players []tournament.Player
	err := withRetry("LoadPlayers", func() error {
		rows, err := s.db.Query(`
			SELECT name, status, gender, total_points, games_played, check_in_time, last_match_time, avg_points
			FROM players ORDER BY name
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		players = players[:0]
		seen := make(map[string]bool)
		for rows.Next() {
			p, err := scanPlayer(rows)
			if err != nil {
				return err
			}
			if seen[p.Name] {
				return tournament.NewConsistencyError("duplicate player row %q", p.Name)
			}
			seen[p.Name] = true
			players = append(players, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return players, nil
}

func (s *store) ReplacePlayers(players []tournament.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return withRetry("ReplacePlayers", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.Exec("DELETE FROM players"); err != nil {
			return err
		}
		stmt, err := tx.Prepare(`
			INSERT INTO players (name, status, gender, total_points, games_played, check_in_time, last_match_time, avg_points)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, p := range players {
			_, err := stmt.Exec(p.Name, string(p.Status), string(p.Gender), p.TotalPoints, p.GamesPlayed,
				unixOrNil(p.CheckInTime), unixOrNil(p.LastMatchTime), p.AvgPoints)
			if err != nil {
				return fmt.Errorf("failed to insert player %q: %w", p.Name, err)
			}
		}
		return tx.Commit()
	})
}

func (s *store) LoadMatches() ([]tournament.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []tournament.Match
	err := withRetry("LoadMatches", func() error {
		rows, err := s.db.Query(`
			SELECT id, court_number, team1_player1, team1_player2, team2_player1, team2_player2,
				   start_time, end_time, team1_score, team2_score, match_status, match_type
			FROM matches
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		matches = matches[:0]
		seen := make(map[string]bool)
		for rows.Next() {
			m, err := scanMatch(rows)
			if err != nil {
				return err
			}
			if seen[m.ID] {
				return tournament.NewConsistencyError("duplicate match row %q", m.ID)
			}
			seen[m.ID] = true
			matches = append(matches, m)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		// M<int> ids sort numerically, not lexically.
		sort.Slice(matches, func(i, j int) bool {
			a, _ := tournament.ParseMatchID(matches[i].ID)
			b, _ := tournament.ParseMatchID(matches[j].ID)
			return a < b
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *store) ReplaceMatches(matches []tournament.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return withRetry("ReplaceMatches", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.Exec("DELETE FROM matches"); err != nil {
			return err
		}
		stmt, err := tx.Prepare(`
			INSERT INTO matches (id, court_number, team1_player1, team1_player2, team2_player1, team2_player2,
				start_time, end_time, team1_score, team2_score, match_status, match_type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, m := range matches {
			_, err := stmt.Exec(m.ID, intOrNil(m.Court), m.Team1[0], m.Team1[1], m.Team2[0], m.Team2[1],
				unixOrNil(m.StartTime), unixOrNil(m.EndTime), intOrNil(m.Team1Score), intOrNil(m.Team2Score),
				string(m.Status), string(m.Type))
			if err != nil {
				return fmt.Errorf("failed to insert match %q: %w", m.ID, err)
			}
		}
		return tx.Commit()
	})
}

func (s *store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return withRetry("Clear", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()
		if _, err := tx.Exec("DELETE FROM matches"); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM players"); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// scanPlayer validates a stored player row. Malformed rows surface as
// ConsistencyError rather than being silently repaired.
func scanPlayer(scanner interface{ Scan(...any) error }) (tournament.Player, error) {
	var p tournament.Player
	var status, gender string
	var checkIn, lastMatch sql.NullInt64

	err := scanner.Scan(&p.Name, &status, &gender, &p.TotalPoints, &p.GamesPlayed, &checkIn, &lastMatch, &p.AvgPoints)
	if err != nil {
		return p, err
	}
	if strings.TrimSpace(p.Name) == "" {
		return p, tournament.NewConsistencyError("player row with empty name")
	}
	p.Status = tournament.PlayerStatus(status)
	if !tournament.ValidPlayerStatus(p.Status) {
		return p, tournament.NewConsistencyError("player %q has unknown status %q", p.Name, status)
	}
	p.Gender = tournament.Gender(gender)
	if !tournament.ValidGender(p.Gender) {
		return p, tournament.NewConsistencyError("player %q has unknown gender %q", p.Name, gender)
	}
	if p.GamesPlayed < 0 {
		return p, tournament.NewConsistencyError("player %q has negative games played", p.Name)
	}
	p.CheckInTime = timeOrNil(checkIn)
	p.LastMatchTime = timeOrNil(lastMatch)
	return p, nil
}

// scanMatch validates a stored match row.
func scanMatch(scanner interface{ Scan(...any) error }) (tournament.Match, error) {
	var m tournament.Match
	var court, t1Score, t2Score sql.NullInt64
	var start, end sql.NullInt64
	var status, matchType string

	err := scanner.Scan(&m.ID, &court, &m.Team1[0], &m.Team1[1], &m.Team2[0], &m.Team2[1],
		&start, &end, &t1Score, &t2Score, &status, &matchType)
	if err != nil {
		return m, err
	}
	if _, err := tournament.ParseMatchID(m.ID); err != nil {
		return m, tournament.NewConsistencyError("malformed match id %q", m.ID)
	}
	m.Status = tournament.MatchStatus(status)
	if !tournament.ValidMatchStatus(m.Status) {
		return m, tournament.NewConsistencyError("match %q has unknown status %q", m.ID, status)
	}
	m.Type = tournament.MatchType(matchType)
	if !tournament.ValidMatchType(m.Type) {
		return m, tournament.NewConsistencyError("match %q has unknown type %q", m.ID, matchType)
	}
	if (t1Score.Valid && t1Score.Int64 < 0) || (t2Score.Valid && t2Score.Int64 < 0) {
		return m, tournament.NewConsistencyError("match %q has negative score", m.ID)
	}
	players := make(map[string]bool)
	for _, name := range m.Players() {
		if strings.TrimSpace(name) == "" {
			return m, tournament.NewConsistencyError("match %q has empty player slot", m.ID)
		}
		if players[name] {
			return m, tournament.NewConsistencyError("match %q lists player %q twice", m.ID, name)
		}
		players[name] = true
	}
	m.Court = int64OrNil(court)
	m.Team1Score = int64OrNil(t1Score)
	m.Team2Score = int64OrNil(t2Score)
	m.StartTime = timeOrNil(start)
	m.EndTime = timeOrNil(end)
	return m, nil
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func intOrNil(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func timeOrNil(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(n.Int64, 0)
	return &t
}

func int64OrNil(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
