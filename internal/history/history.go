// Package history derives per-player interaction data from the match
// table: games played, partner/opponent adjacency, wait times, and the
// freshness of previously-seen 4-player combinations. It is a pure
// read-side derivation and must be rebuilt whenever the match table
// changes.
package history

import (
	"time"

	"github.com/lindqvist/court-circuit/internal/tournament"
)

// WaitForever is the wait time reported for players who have not finished
// a match yet. It dominates every real wait so fresh players are scheduled
// first.
const WaitForever = 100_000 * time.Hour

// Staleness weights: elapsed time saturates at 2 hours, completed-match
// churn saturates at 4 matches. Combinations below FreshnessThreshold are
// considered too fresh to repeat.
const (
	stalenessTimeWeight    = 0.3
	stalenessTimeCapHours  = 2.0
	stalenessChurnWeight   = 0.7
	stalenessChurnCap      = 4.0
	FreshnessThreshold     = 0.7
	recencyWeightBase      = 0.5
	recencyWeightSpan      = 0.5
)

// Policy controls which match statuses count toward gamesPlayed. Cancelled
// matches never count.
type Policy struct {
	CountPending    bool
	CountScheduled  bool
	CountInProgress bool
	CountCompleted  bool
}

// DefaultPolicy counts every non-cancelled match: a queued game is a
// promised game for fairness purposes.
func DefaultPolicy() Policy {
	return Policy{CountPending: true, CountScheduled: true, CountInProgress: true, CountCompleted: true}
}

func (p Policy) counts(status tournament.MatchStatus) bool {
	switch status {
	case tournament.StatusPending:
		return p.CountPending
	case tournament.StatusScheduled:
		return p.CountScheduled
	case tournament.StatusInProgress:
		return p.CountInProgress
	case tournament.StatusCompleted:
		return p.CountCompleted
	}
	return false
}

type comboRecord struct {
	lastIndex int
	lastSeen  time.Time
}

// History holds the derived interaction data, keyed by player name.
type History struct {
	GamesPlayed    map[string]int
	PartnerWeight  map[string]map[string]float64
	OpponentWeight map[string]map[string]float64
	PartnerCount   map[string]map[string]int
	WaitTime       map[string]time.Duration
	Busy           map[string]bool

	combos         map[string]comboRecord
	completedOrder []int // table indexes of completed matches, ascending
	now            time.Time
}

// Build derives a History from the full match table. Matches are assumed
// to be in ascending match-id order; older matches receive a lower recency
// weight when counting partner/opponent repetitions.
func Build(matches []tournament.Match, now time.Time, policy Policy) *History {
	h := &History{
		GamesPlayed:    make(map[string]int),
		PartnerWeight:  make(map[string]map[string]float64),
		OpponentWeight: make(map[string]map[string]float64),
		PartnerCount:   make(map[string]map[string]int),
		WaitTime:       make(map[string]time.Duration),
		Busy:           make(map[string]bool),
		combos:         make(map[string]comboRecord),
		now:            now,
	}

	lastEnd := make(map[string]time.Time)
	total := len(matches)
	for i, m := range matches {
		if m.Status == tournament.StatusCancelled {
			continue
		}

		if policy.counts(m.Status) {
			for _, p := range m.Players() {
				h.GamesPlayed[p]++
			}
		}

		if m.IsActive() {
			for _, p := range m.Players() {
				h.Busy[p] = true
			}
		}

		// Recent matches weigh more when penalizing repeats.
		weight := recencyWeightBase + recencyWeightSpan*float64(i+1)/float64(total)
		h.addPair(h.PartnerWeight, m.Team1[0], m.Team1[1], weight)
		h.addPair(h.PartnerWeight, m.Team2[0], m.Team2[1], weight)
		h.countPair(m.Team1[0], m.Team1[1])
		h.countPair(m.Team2[0], m.Team2[1])
		for _, a := range m.Team1 {
			for _, b := range m.Team2 {
				h.addPair(h.OpponentWeight, a, b, weight)
			}
		}

		if m.EndTime != nil {
			for _, p := range m.Players() {
				if m.EndTime.After(lastEnd[p]) {
					lastEnd[p] = *m.EndTime
				}
			}
		}

		seen := now
		if m.EndTime != nil {
			seen = *m.EndTime
		} else if m.StartTime != nil {
			seen = *m.StartTime
		}
		key := m.CombinationKey()
		if rec, ok := h.combos[key]; !ok || i > rec.lastIndex {
			h.combos[key] = comboRecord{lastIndex: i, lastSeen: seen}
		}

		if m.Status == tournament.StatusCompleted {
			h.completedOrder = append(h.completedOrder, i)
		}
	}

	for p, end := range lastEnd {
		h.WaitTime[p] = now.Sub(end)
	}
	return h
}

// Wait returns the time the player has been waiting since their last
// match ended, or WaitForever if they have none.
func (h *History) Wait(player string) time.Duration {
	if w, ok := h.WaitTime[player]; ok {
		return w
	}
	return WaitForever
}

// PartnerRepeats returns how often the two players have been on the same
// team, ignoring recency weighting. Used for the hard repeat cap.
func (h *History) PartnerRepeats(a, b string) int {
	if inner, ok := h.PartnerCount[a]; ok {
		return inner[b]
	}
	return 0
}

// Staleness scores a 4-player combination in [0,1]. 1 means the
// combination has never been seen (or is long stale) and is free to
// repeat; values below FreshnessThreshold mean the combination is too
// fresh and must be suppressed.
func (h *History) Staleness(players [4]string) float64 {
	rec, ok := h.combos[tournament.CombinationKey(players)]
	if !ok {
		return 1.0
	}

	hours := h.now.Sub(rec.lastSeen).Hours()
	if hours < 0 {
		hours = 0
	}
	timePart := hours / stalenessTimeCapHours
	if timePart > 1 {
		timePart = 1
	}

	completedSince := 0
	for _, idx := range h.completedOrder {
		if idx > rec.lastIndex {
			completedSince++
		}
	}
	churnPart := float64(completedSince) / stalenessChurnCap
	if churnPart > 1 {
		churnPart = 1
	}

	return stalenessTimeWeight*timePart + stalenessChurnWeight*churnPart
}

// IsFresh reports whether the combination is still too fresh to be
// offered again.
func (h *History) IsFresh(players [4]string) bool {
	return h.Staleness(players) < FreshnessThreshold
}

func (h *History) addPair(m map[string]map[string]float64, a, b string, w float64) {
	if m[a] == nil {
		m[a] = make(map[string]float64)
	}
	if m[b] == nil {
		m[b] = make(map[string]float64)
	}
	m[a][b] += w
	m[b][a] += w
}

func (h *History) countPair(a, b string) {
	if h.PartnerCount[a] == nil {
		h.PartnerCount[a] = make(map[string]int)
	}
	if h.PartnerCount[b] == nil {
		h.PartnerCount[b] = make(map[string]int)
	}
	h.PartnerCount[a][b]++
	h.PartnerCount[b][a]++
}
