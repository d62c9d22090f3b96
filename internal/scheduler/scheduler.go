// Package scheduler coordinates the tournament: it is the single writer in
// front of the row store and composes generation, court allocation and
// scoring into atomic load-compute-replace operations.
package scheduler

import (
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lindqvist/court-circuit/internal/allocator"
	"github.com/lindqvist/court-circuit/internal/config"
	"github.com/lindqvist/court-circuit/internal/generator"
	"github.com/lindqvist/court-circuit/internal/metrics"
	"github.com/lindqvist/court-circuit/internal/notifier"
	"github.com/lindqvist/court-circuit/internal/pubsub"
	"github.com/lindqvist/court-circuit/internal/scoring"
	"github.com/lindqvist/court-circuit/internal/store"
	"github.com/lindqvist/court-circuit/internal/tournament"
)

// Coordinator serializes every operation behind one mutex. All state lives
// in the store; each operation loads the tables it needs, computes the new
// row sets in memory, replaces them, and only then fires side effects.
type Coordinator struct {
	mu        sync.Mutex
	store     store.TournamentStore
	generator *generator.Generator
	allocator *allocator.Allocator
	scoring   *scoring.Engine
	notifier  notifier.Notifier
	pubsub    pubsub.PubSubClient
	metrics   metrics.Metrics
	cfg       config.TournamentConfig
	scoreCfg  config.ScoringConfig
	now       func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

func New(
	st store.TournamentStore,
	gen *generator.Generator,
	alloc *allocator.Allocator,
	eng *scoring.Engine,
	ntf notifier.Notifier,
	ps pubsub.PubSubClient,
	m metrics.Metrics,
	cfg config.TournamentConfig,
	scoreCfg config.ScoringConfig,
	opts ...Option,
) *Coordinator {
	c := &Coordinator{
		store:     st,
		generator: gen,
		allocator: alloc,
		scoring:   eng,
		notifier:  ntf,
		pubsub:    ps,
		metrics:   m,
		cfg:       cfg,
		scoreCfg:  scoreCfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateMatches produces up to desired new Pending matches. When
// activePlayers is non-empty, generation is restricted to that subset of
// the roster; every name must exist. A desired value <= 0 fills the
// pending queue up to its cap.
func (c *Coordinator) GenerateMatches(activePlayers []string, desired int) ([]tournament.Match, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	players, matches, err := c.load()
	if err != nil {
		return nil, err
	}

	pool := players
	if len(activePlayers) > 0 {
		byName := make(map[string]tournament.Player, len(players))
		for _, p := range players {
			byName[p.Name] = p
		}
		pool = make([]tournament.Player, 0, len(activePlayers))
		for _, name := range activePlayers {
			p, ok := byName[name]
			if !ok {
				return nil, &tournament.NotFoundError{Kind: "player", ID: name}
			}
			pool = append(pool, p)
		}
	}

	pending := 0
	for _, m := range matches {
		if m.Status == tournament.StatusPending {
			pending++
		}
	}
	capacity := c.cfg.MaxPendingPerCourt*c.cfg.CourtCount - pending
	if capacity <= 0 {
		log.Info("Pending queue full, nothing generated", "pending", pending)
		return nil, nil
	}
	if desired <= 0 || desired > capacity {
		desired = capacity
	}

	start := c.now()
	batch := c.generator.Generate(pool, matches, desired, start)
	c.metrics.ObserveGenerationDuration(time.Since(start).Seconds())
	if len(batch) == 0 {
		return nil, nil
	}

	if err := c.store.ReplaceMatches(append(matches, batch...)); err != nil {
		return nil, err
	}

	for _, m := range batch {
		c.metrics.IncMatchesGenerated()
		c.publishMatch(pubsub.EventMatchGenerated, m)
	}
	return batch, nil
}

// AssignCourts promotes Pending matches onto free courts and announces
// each court call.
func (c *Coordinator) AssignCourts(dryRun bool) ([]tournament.Match, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	matches, err := c.store.LoadMatches()
	if err != nil {
		return nil, err
	}

	promoted := c.allocator.AssignCourts(matches, c.now())
	if len(promoted) == 0 {
		return nil, nil
	}
	if err := c.store.ReplaceMatches(matches); err != nil {
		return nil, err
	}

	return c.announcePromotions(matches, promoted, dryRun), nil
}

// StartMatch moves a Scheduled match to In Progress.
func (c *Coordinator) StartMatch(id string) (*tournament.Match, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	matches, err := c.store.LoadMatches()
	if err != nil {
		return nil, err
	}
	if err := c.allocator.StartMatch(matches, id); err != nil {
		return nil, err
	}
	if err := c.store.ReplaceMatches(matches); err != nil {
		return nil, err
	}

	m := findMatch(matches, id)
	c.publishMatch(pubsub.EventMatchStarted, *m)
	return m, nil
}

// RecordScore completes a match with the submitted result, credits points,
// and backfills the freed court from the pending queue.
func (c *Coordinator) RecordScore(id string, team1Score, team2Score int, dryRun bool) (*tournament.Match, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	players, matches, err := c.load()
	if err != nil {
		return nil, err
	}
	if err := c.scoring.RecordResult(matches, players, id, team1Score, team2Score, c.now()); err != nil {
		return nil, err
	}
	promoted := c.allocator.AssignCourts(matches, c.now())

	// Matches first: a failed replace here aborts before the players
	// table is touched.
	if err := c.store.ReplaceMatches(matches); err != nil {
		return nil, err
	}
	if err := c.store.ReplacePlayers(players); err != nil {
		return nil, err
	}

	m := findMatch(matches, id)
	c.metrics.IncResultsRecorded()
	c.publishMatch(pubsub.EventMatchCompleted, *m)
	if err := c.notifier.SendResultNotification(m, dryRun); err != nil {
		log.Error("Failed to send result notification", "matchID", id, "error", err)
	}
	c.announcePromotions(matches, promoted, dryRun)
	return m, nil
}

// CancelMatch cancels a match; cancelling one that held a court backfills
// the court from the pending queue.
func (c *Coordinator) CancelMatch(id string, dryRun bool) ([]tournament.Match, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	matches, err := c.store.LoadMatches()
	if err != nil {
		return nil, err
	}
	if err := c.allocator.Cancel(matches, id); err != nil {
		return nil, err
	}
	promoted := c.allocator.AssignCourts(matches, c.now())
	if err := c.store.ReplaceMatches(matches); err != nil {
		return nil, err
	}

	c.publishMatch(pubsub.EventMatchCancelled, *findMatch(matches, id))
	return c.announcePromotions(matches, promoted, dryRun), nil
}

// SetPlayerStatus updates a player's status. Marking a player Inactive
// cancels all their non-terminal matches and backfills any freed courts.
// Returns the cancelled match IDs.
func (c *Coordinator) SetPlayerStatus(name string, status tournament.PlayerStatus, dryRun bool) ([]string, error) {
	if !tournament.ValidPlayerStatus(status) {
		return nil, tournament.NewValidationError("unknown player status %q", status)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	players, matches, err := c.load()
	if err != nil {
		return nil, err
	}
	p := findPlayer(players, name)
	if p == nil {
		return nil, &tournament.NotFoundError{Kind: "player", ID: name}
	}
	p.Status = status

	var cancelled, promoted []string
	if status == tournament.PlayerInactive {
		cancelled = c.allocator.CancelMatchesFor(matches, name)
		promoted = c.allocator.AssignCourts(matches, c.now())
		if len(cancelled) > 0 || len(promoted) > 0 {
			if err := c.store.ReplaceMatches(matches); err != nil {
				return nil, err
			}
		}
	}
	if err := c.store.ReplacePlayers(players); err != nil {
		return nil, err
	}

	if status == tournament.PlayerInactive {
		c.publish(pubsub.EventPlayerDeactivated, pubsub.PlayerEvent{Event: pubsub.EventPlayerDeactivated, Name: name})
		c.announcePromotions(matches, promoted, dryRun)
	}
	return cancelled, nil
}

// AddPlayer registers a new player on the roster.
func (c *Coordinator) AddPlayer(name string, gender tournament.Gender) (*tournament.Player, error) {
	if name == "" {
		return nil, tournament.NewValidationError("player name must not be empty")
	}
	if !tournament.ValidGender(gender) {
		return nil, tournament.NewValidationError("unknown gender %q", gender)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	players, err := c.store.LoadPlayers()
	if err != nil {
		return nil, err
	}
	if findPlayer(players, name) != nil {
		return nil, tournament.NewValidationError("player %q already exists", name)
	}

	players = append(players, tournament.Player{
		Name:   name,
		Status: tournament.PlayerActive,
		Gender: gender,
	})
	if err := c.store.ReplacePlayers(players); err != nil {
		return nil, err
	}
	log.Info("Player added", "player", name, "gender", gender)
	return &players[len(players)-1], nil
}

// CheckInPlayer stamps the player's arrival and activates them.
func (c *Coordinator) CheckInPlayer(name string) (*tournament.Player, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	players, err := c.store.LoadPlayers()
	if err != nil {
		return nil, err
	}
	p := findPlayer(players, name)
	if p == nil {
		return nil, &tournament.NotFoundError{Kind: "player", ID: name}
	}

	now := c.now()
	p.CheckInTime = &now
	p.Status = tournament.PlayerActive
	if err := c.store.ReplacePlayers(players); err != nil {
		return nil, err
	}
	log.Info("Player checked in", "player", name)
	return p, nil
}

// GetLeaderboard returns the roster in standings order: players with at
// least MinGamesForRanking games ranked by total points, the rest listed
// after them.
func (c *Coordinator) GetLeaderboard() ([]tournament.Player, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	players, err := c.store.LoadPlayers()
	if err != nil {
		return nil, err
	}

	threshold := c.scoreCfg.MinGamesForRanking
	sort.SliceStable(players, func(i, j int) bool {
		ri, rj := players[i].GamesPlayed >= threshold, players[j].GamesPlayed >= threshold
		if ri != rj {
			return ri
		}
		if players[i].TotalPoints != players[j].TotalPoints {
			return players[i].TotalPoints > players[j].TotalPoints
		}
		return players[i].Name < players[j].Name
	})
	return players, nil
}

// AnnounceLeaderboard posts the current standings to the notifier.
func (c *Coordinator) AnnounceLeaderboard(dryRun bool) error {
	standings, err := c.GetLeaderboard()
	if err != nil {
		return err
	}
	return c.notifier.SendLeaderboard(standings, dryRun)
}

// GetPlayers returns the full roster.
func (c *Coordinator) GetPlayers() ([]tournament.Player, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.LoadPlayers()
}

// GetMatches returns all matches.
func (c *Coordinator) GetMatches() ([]tournament.Match, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.LoadMatches()
}

// GetPlayerHistory returns every match the player appears in.
func (c *Coordinator) GetPlayerHistory(name string) ([]tournament.Match, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	players, matches, err := c.load()
	if err != nil {
		return nil, err
	}
	if findPlayer(players, name) == nil {
		return nil, &tournament.NotFoundError{Kind: "player", ID: name}
	}

	var history []tournament.Match
	for _, m := range matches {
		if m.HasPlayer(name) {
			history = append(history, m)
		}
	}
	return history, nil
}

// Clear wipes both tables. Destructive; exposed for resets between
// sessions.
func (c *Coordinator) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Clear()
}

func (c *Coordinator) load() ([]tournament.Player, []tournament.Match, error) {
	players, err := c.store.LoadPlayers()
	if err != nil {
		return nil, nil, err
	}
	matches, err := c.store.LoadMatches()
	if err != nil {
		return nil, nil, err
	}
	return players, matches, nil
}

// announcePromotions sends a court call per newly scheduled match and
// returns the promoted matches.
func (c *Coordinator) announcePromotions(matches []tournament.Match, promoted []string, dryRun bool) []tournament.Match {
	var out []tournament.Match
	for _, id := range promoted {
		m := findMatch(matches, id)
		if m == nil {
			continue
		}
		out = append(out, *m)
		c.metrics.IncCourtAssignments()
		c.publishMatch(pubsub.EventMatchScheduled, *m)
		if err := c.notifier.SendCourtCall(m, dryRun); err != nil {
			log.Error("Failed to send court call", "matchID", id, "error", err)
		}
	}
	return out
}

// Side-effect publishing happens after the store replace; failures are
// logged, never surfaced to the caller.
func (c *Coordinator) publishMatch(event pubsub.EventType, m tournament.Match) {
	c.publish(event, pubsub.MatchEvent{
		Event:   event,
		MatchID: m.ID,
		Court:   m.Court,
		Players: m.Players(),
	})
}

func (c *Coordinator) publish(event pubsub.EventType, payload any) {
	if c.pubsub == nil {
		return
	}
	if err := c.pubsub.SendMessage(string(event), payload); err != nil {
		log.Error("Failed to publish event", "event", event, "error", err)
	}
}

func findMatch(matches []tournament.Match, id string) *tournament.Match {
	for i := range matches {
		if matches[i].ID == id {
			return &matches[i]
		}
	}
	return nil
}

func findPlayer(players []tournament.Player, name string) *tournament.Player {
	for i := range players {
		if players[i].Name == name {
			return &players[i]
		}
	}
	return nil
}
