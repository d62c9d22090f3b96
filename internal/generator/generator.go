// Package generator produces batches of Pending matches from the active
// player pool, balancing games-played fairness, partner/opponent
// repetition, wait time, and match-type distribution.
package generator

import (
	"math/rand"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lindqvist/court-circuit/internal/config"
	"github.com/lindqvist/court-circuit/internal/history"
	"github.com/lindqvist/court-circuit/internal/tournament"
)

// Combination scoring weights. Wait time dominates, then games-played
// balance, then repeat penalties, with staleness as a final tiebreak.
const (
	waitWeight      = 3.0
	gamesWeight     = 2.0
	partnerPenalty  = 3.0
	opponentPenalty = 2.0
	stalenessBonus  = 1.0
	scoreEpsilon    = 1e-9
)

// mixedRatioTarget is the share of a player's games that should be mixed
// doubles. Generation steers each gender toward it.
const mixedRatioTarget = 0.5

// Generator builds Pending matches. The RNG is injected so tests can make
// tie-breaking deterministic.
type Generator struct {
	cfg config.TournamentConfig
	rng *rand.Rand
}

// New creates a Generator. A nil rng falls back to a clock-seeded source.
func New(cfg config.TournamentConfig, rng *rand.Rand) *Generator {
	if rng == nil {
		seed := cfg.RandomSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	return &Generator{cfg: cfg, rng: rng}
}

// Generate produces up to desired new Pending matches for the given active
// players, without reusing a player within the batch and without
// re-offering combinations that are still fresh. An empty batch is not an
// error; it means no valid match could be formed.
func (g *Generator) Generate(players []tournament.Player, matches []tournament.Match, desired int, now time.Time) []tournament.Match {
	if desired <= 0 {
		return nil
	}

	batchID := uuid.NewString()
	h := history.Build(matches, now, history.DefaultPolicy())
	typeCounts := countPlayerTypes(matches)

	gender := make(map[string]tournament.Gender, len(players))
	var available []string
	for _, p := range players {
		if p.Status != tournament.PlayerActive {
			continue
		}
		if h.Busy[p.Name] {
			continue
		}
		if _, dup := gender[p.Name]; dup {
			continue
		}
		gender[p.Name] = p.Gender
		available = append(available, p.Name)
	}
	sort.Strings(available)

	nextID := nextMatchID(matches)
	var batch []tournament.Match

	for len(batch) < desired {
		var males, females []string
		for _, name := range available {
			if gender[name] == tournament.GenderMale {
				males = append(males, name)
			} else {
				females = append(females, name)
			}
		}

		matchType, ok := g.pickMatchType(males, females, typeCounts)
		if !ok {
			break
		}

		combo, teams, found := g.bestCombination(matchType, males, females, h)
		if !found {
			// This type produced nothing (all combinations fresh or
			// blocked); drop it from consideration by removing nothing and
			// trying the remaining feasible types once each.
			if combo, teams, found = g.anyOtherType(matchType, males, females, h, typeCounts); !found {
				break
			}
		}

		m := tournament.Match{
			ID:     tournament.FormatMatchID(nextID),
			Team1:  teams[0],
			Team2:  teams[1],
			Status: tournament.StatusPending,
			Type:   deriveType(combo, gender),
		}
		nextID++
		batch = append(batch, m)

		used := make(map[string]bool, 4)
		for _, p := range combo {
			used[p] = true
			typeCounts.add(p, m.Type)
		}
		filtered := available[:0]
		for _, name := range available {
			if !used[name] {
				filtered = append(filtered, name)
			}
		}
		available = filtered

		log.Debug("Generated match", "batch", batchID, "matchID", m.ID, "type", m.Type,
			"team1", m.Team1, "team2", m.Team2)
	}

	if len(batch) == 0 {
		log.Info("No valid match could be formed", "batch", batchID, "available", len(available))
	} else {
		log.Info("Generated match batch", "batch", batchID, "count", len(batch))
	}
	return batch
}

// pickMatchType chooses the match type for the next match, steering each
// gender's mixed share toward the target before falling back to whatever
// is feasible.
func (g *Generator) pickMatchType(males, females []string, counts playerTypeCounts) (tournament.MatchType, bool) {
	maleRatio := counts.mixedRatio(males)
	femaleRatio := counts.mixedRatio(females)

	var preferred []tournament.MatchType
	if len(males) >= 4 && maleRatio > mixedRatioTarget {
		preferred = append(preferred, tournament.MatchTypeMens)
	}
	if len(females) >= 4 && femaleRatio > mixedRatioTarget {
		preferred = append(preferred, tournament.MatchTypeWomens)
	}
	if len(males) >= 2 && len(females) >= 2 && (maleRatio < mixedRatioTarget || femaleRatio < mixedRatioTarget) {
		preferred = append(preferred, tournament.MatchTypeMixed)
	}

	if len(preferred) == 0 {
		if len(males) >= 4 {
			preferred = append(preferred, tournament.MatchTypeMens)
		}
		if len(females) >= 4 {
			preferred = append(preferred, tournament.MatchTypeWomens)
		}
		if len(males) >= 2 && len(females) >= 2 {
			preferred = append(preferred, tournament.MatchTypeMixed)
		}
	}
	if len(preferred) == 0 {
		return "", false
	}
	return preferred[g.rng.Intn(len(preferred))], true
}

// anyOtherType retries the remaining feasible match types after the chosen
// one produced no candidate.
func (g *Generator) anyOtherType(tried tournament.MatchType, males, females []string, h *history.History, counts playerTypeCounts) ([4]string, [2][2]string, bool) {
	for _, mt := range []tournament.MatchType{tournament.MatchTypeMens, tournament.MatchTypeWomens, tournament.MatchTypeMixed} {
		if mt == tried {
			continue
		}
		switch mt {
		case tournament.MatchTypeMens:
			if len(males) < 4 {
				continue
			}
		case tournament.MatchTypeWomens:
			if len(females) < 4 {
				continue
			}
		case tournament.MatchTypeMixed:
			if len(males) < 2 || len(females) < 2 {
				continue
			}
		}
		if combo, teams, ok := g.bestCombination(mt, males, females, h); ok {
			return combo, teams, true
		}
	}
	return [4]string{}, [2][2]string{}, false
}

// bestCombination evaluates candidate 4-player combinations for the given
// type and returns the highest scoring one together with its team split.
// The partner-repeat cap is relaxed incrementally when it eliminates every
// candidate.
func (g *Generator) bestCombination(mt tournament.MatchType, males, females []string, h *history.History) ([4]string, [2][2]string, bool) {
	repeatCap := g.cfg.PartnerRepeatCap
	if repeatCap <= 0 {
		repeatCap = 2
	}
	// Relaxing beyond the pool size cannot unblock anything new.
	maxCap := repeatCap + len(males) + len(females)

	for ; repeatCap <= maxCap; repeatCap++ {
		combos := g.candidates(mt, males, females, h, repeatCap)
		if len(combos) == 0 {
			continue
		}

		bestScore := 0.0
		var best [][4]string
		for _, c := range combos {
			score := g.scoreCombination(c, h)
			switch {
			case len(best) == 0 || score > bestScore+scoreEpsilon:
				best = best[:0]
				best = append(best, c)
				bestScore = score
			case score > bestScore-scoreEpsilon:
				best = append(best, c)
			}
		}
		combo := best[g.rng.Intn(len(best))]
		return combo, g.splitTeams(mt, combo, h), true
	}
	return [4]string{}, [2][2]string{}, false
}

// candidates enumerates combinations from the least-games-played half of
// each pool, filtering out fresh duplicates and pairs over the partner cap.
func (g *Generator) candidates(mt tournament.MatchType, males, females []string, h *history.History, repeatCap int) [][4]string {
	var combos [][4]string
	switch mt {
	case tournament.MatchTypeMens:
		for _, c := range chooseFour(leastPlayedHalf(males, h, 4)) {
			combos = append(combos, c)
		}
	case tournament.MatchTypeWomens:
		for _, c := range chooseFour(leastPlayedHalf(females, h, 4)) {
			combos = append(combos, c)
		}
	case tournament.MatchTypeMixed:
		mPool := leastPlayedHalf(males, h, 2)
		fPool := leastPlayedHalf(females, h, 2)
		for _, mp := range chooseTwo(mPool) {
			for _, fp := range chooseTwo(fPool) {
				combos = append(combos, [4]string{mp[0], mp[1], fp[0], fp[1]})
			}
		}
	}

	var valid [][4]string
	for _, c := range combos {
		if h.IsFresh(c) {
			continue
		}
		if g.violatesRepeatCap(mt, c, h, repeatCap) {
			continue
		}
		valid = append(valid, c)
	}
	return valid
}

// violatesRepeatCap reports whether every legal team split of the
// combination would exceed the partner-repeat cap.
func (g *Generator) violatesRepeatCap(mt tournament.MatchType, c [4]string, h *history.History, repeatCap int) bool {
	for _, split := range teamSplits(mt, c) {
		if h.PartnerRepeats(split[0][0], split[0][1]) < repeatCap && h.PartnerRepeats(split[1][0], split[1][1]) < repeatCap {
			return false
		}
	}
	return true
}

// splitTeams picks the legal team split with the least partner repetition.
func (g *Generator) splitTeams(mt tournament.MatchType, c [4]string, h *history.History) [2][2]string {
	splits := teamSplits(mt, c)
	best := splits[0]
	bestWeight := splitWeight(best, h)
	for _, s := range splits[1:] {
		if w := splitWeight(s, h); w < bestWeight {
			best, bestWeight = s, w
		}
	}
	return best
}

func splitWeight(s [2][2]string, h *history.History) float64 {
	return h.PartnerWeight[s[0][0]][s[0][1]] + h.PartnerWeight[s[1][0]][s[1][1]]
}

// teamSplits returns the legal team assignments for a combination. Mixed
// matches must pair one man with one woman per team; the combination is
// ordered male, male, female, female there.
func teamSplits(mt tournament.MatchType, c [4]string) [][2][2]string {
	if mt == tournament.MatchTypeMixed {
		return [][2][2]string{
			{{c[0], c[2]}, {c[1], c[3]}},
			{{c[0], c[3]}, {c[1], c[2]}},
		}
	}
	return [][2][2]string{
		{{c[0], c[1]}, {c[2], c[3]}},
		{{c[0], c[2]}, {c[1], c[3]}},
		{{c[0], c[3]}, {c[1], c[2]}},
	}
}

// scoreCombination implements the selection objective: prioritize long
// waits, penalize games-played imbalance and repeated pairings.
func (g *Generator) scoreCombination(c [4]string, h *history.History) float64 {
	maxWait := 0.0
	maxGames := 0
	for _, p := range c {
		if w := h.Wait(p).Hours(); w > maxWait {
			maxWait = w
		}
		if gp := h.GamesPlayed[p]; gp > maxGames {
			maxGames = gp
		}
	}

	score := waitWeight*maxWait - gamesWeight*float64(maxGames)
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			score -= partnerPenalty * h.PartnerWeight[c[i]][c[j]]
			score -= opponentPenalty * h.OpponentWeight[c[i]][c[j]]
		}
	}
	// Staleness above the threshold slightly favors combinations that have
	// rested the longest.
	score += stalenessBonus * h.Staleness(c)
	return score
}

// leastPlayedHalf restricts a pool to its least-games-played half (but at
// least minSize) to keep the combinatorial search bounded.
func leastPlayedHalf(pool []string, h *history.History, minSize int) []string {
	sorted := make([]string, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		return h.GamesPlayed[sorted[i]] < h.GamesPlayed[sorted[j]]
	})

	keep := (len(sorted) + 1) / 2
	if keep < minSize {
		keep = minSize
	}
	if keep > len(sorted) {
		keep = len(sorted)
	}
	return sorted[:keep]
}

func chooseFour(pool []string) [][4]string {
	var out [][4]string
	n := len(pool)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			for c := b + 1; c < n; c++ {
				for d := c + 1; d < n; d++ {
					out = append(out, [4]string{pool[a], pool[b], pool[c], pool[d]})
				}
			}
		}
	}
	return out
}

func chooseTwo(pool []string) [][2]string {
	var out [][2]string
	for a := 0; a < len(pool); a++ {
		for b := a + 1; b < len(pool); b++ {
			out = append(out, [2]string{pool[a], pool[b]})
		}
	}
	return out
}

// nextMatchID finds the next free M<int>, counting Cancelled rows so ids
// stay monotonic and unique across the whole table.
func nextMatchID(matches []tournament.Match) int {
	max := 0
	for _, m := range matches {
		if n, err := tournament.ParseMatchID(m.ID); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

func deriveType(c [4]string, gender map[string]tournament.Gender) tournament.MatchType {
	return tournament.DeriveMatchType([4]tournament.Gender{gender[c[0]], gender[c[1]], gender[c[2]], gender[c[3]]})
}

// playerTypeCounts tracks how many matches of each type a player appears
// in, used to balance the mixed-doubles share.
type playerTypeCounts map[string]map[tournament.MatchType]int

func countPlayerTypes(matches []tournament.Match) playerTypeCounts {
	counts := make(playerTypeCounts)
	for _, m := range matches {
		if m.Status == tournament.StatusCancelled {
			continue
		}
		for _, p := range m.Players() {
			counts.add(p, m.Type)
		}
	}
	return counts
}

func (c playerTypeCounts) add(player string, mt tournament.MatchType) {
	if c[player] == nil {
		c[player] = make(map[tournament.MatchType]int)
	}
	c[player][mt]++
}

// mixedRatio returns the pool's share of mixed games. Above the target the
// pool is due for same-gender play, below it for mixed.
func (c playerTypeCounts) mixedRatio(pool []string) float64 {
	same, mixed := 0, 0
	for _, p := range pool {
		for mt, n := range c[p] {
			if mt == tournament.MatchTypeMixed {
				mixed += n
			} else {
				same += n
			}
		}
	}
	if same+mixed == 0 {
		return 0
	}
	return float64(mixed) / float64(same+mixed)
}
