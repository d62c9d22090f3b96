// Package allocator promotes Pending matches onto free courts and handles
// match lifecycle transitions that free courts back up.
package allocator

import (
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lindqvist/court-circuit/internal/tournament"
)

// Allocator assigns courts 1..CourtCount. It mutates the match slice it is
// given; persistence is the caller's concern.
type Allocator struct {
	courtCount int
}

func New(courtCount int) *Allocator {
	return &Allocator{courtCount: courtCount}
}

// AssignCourts fills every free court with the oldest Pending match whose
// players are all off court, in ascending court order. Returns the IDs of
// the matches promoted to Scheduled.
func (a *Allocator) AssignCourts(matches []tournament.Match, now time.Time) []string {
	occupied := make(map[int]bool)
	busy := make(map[string]bool)
	for _, m := range matches {
		if !m.IsActive() {
			continue
		}
		if m.Court != nil {
			occupied[*m.Court] = true
		}
		for _, p := range m.Players() {
			busy[p] = true
		}
	}

	var free []int
	for c := 1; c <= a.courtCount; c++ {
		if !occupied[c] {
			free = append(free, c)
		}
	}
	if len(free) == 0 {
		return nil
	}

	pending := pendingIndexes(matches)

	var promoted []string
	for _, court := range free {
		idx := -1
		for _, i := range pending {
			if matches[i].Status != tournament.StatusPending {
				continue
			}
			if anyBusy(matches[i], busy) {
				continue
			}
			idx = i
			break
		}
		if idx < 0 {
			break
		}

		c := court
		start := now
		matches[idx].Court = &c
		matches[idx].StartTime = &start
		matches[idx].Status = tournament.StatusScheduled
		for _, p := range matches[idx].Players() {
			busy[p] = true
		}
		promoted = append(promoted, matches[idx].ID)
		log.Info("Match scheduled", "matchID", matches[idx].ID, "court", c)
	}
	return promoted
}

// StartMatch moves a Scheduled match to In Progress.
func (a *Allocator) StartMatch(matches []tournament.Match, id string) error {
	m := find(matches, id)
	if m == nil {
		return &tournament.NotFoundError{Kind: "match", ID: id}
	}
	if m.Status != tournament.StatusScheduled {
		return tournament.NewValidationError("match %s is %s, only Scheduled matches can start", id, m.Status)
	}
	m.Status = tournament.StatusInProgress
	log.Info("Match started", "matchID", id)
	return nil
}

// Cancel marks a match Cancelled. Cancelling an active match frees its
// court; the caller should follow up with AssignCourts to backfill.
func (a *Allocator) Cancel(matches []tournament.Match, id string) error {
	m := find(matches, id)
	if m == nil {
		return &tournament.NotFoundError{Kind: "match", ID: id}
	}
	if m.IsTerminal() {
		return tournament.NewValidationError("match %s is already %s", id, m.Status)
	}
	m.Status = tournament.StatusCancelled
	m.Court = nil
	log.Info("Match cancelled", "matchID", id)
	return nil
}

// CancelMatchesFor cancels every non-terminal match involving the player
// and returns the cancelled IDs. Used when a player goes inactive.
func (a *Allocator) CancelMatchesFor(matches []tournament.Match, player string) []string {
	var cancelled []string
	for i := range matches {
		m := &matches[i]
		if m.IsTerminal() || !m.HasPlayer(player) {
			continue
		}
		m.Status = tournament.StatusCancelled
		m.Court = nil
		cancelled = append(cancelled, m.ID)
	}
	if len(cancelled) > 0 {
		log.Info("Cancelled matches for inactive player", "player", player, "matchIDs", cancelled)
	}
	return cancelled
}

// pendingIndexes returns the Pending matches in ascending numeric ID order
// so older matches are promoted first.
func pendingIndexes(matches []tournament.Match) []int {
	var out []int
	for i, m := range matches {
		if m.Status == tournament.StatusPending {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		an, aerr := tournament.ParseMatchID(matches[out[a]].ID)
		bn, berr := tournament.ParseMatchID(matches[out[b]].ID)
		if aerr != nil || berr != nil {
			return matches[out[a]].ID < matches[out[b]].ID
		}
		return an < bn
	})
	return out
}

func anyBusy(m tournament.Match, busy map[string]bool) bool {
	for _, p := range m.Players() {
		if busy[p] {
			return true
		}
	}
	return false
}

func find(matches []tournament.Match, id string) *tournament.Match {
	for i := range matches {
		if matches[i].ID == id {
			return &matches[i]
		}
	}
	return nil
}
