package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lindqvist/court-circuit/internal/pubsub"
	"github.com/lindqvist/court-circuit/internal/tournament"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear entire store")
		if err := s.Coordinator.Clear(); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

func (s *Server) ListMembersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Coordinator.GetPlayers()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Coordinator.GetMatches()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, matches)
	}
}

// GenerateMatchesHandler creates new pending matches. Optional parameters:
// count (how many), players (comma-separated subset of the roster).
func (s *Server) GenerateMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := 0
		if countStr := r.URL.Query().Get("count"); countStr != "" {
			parsed, err := strconv.Atoi(countStr)
			if err != nil {
				writeError(w, tournament.NewValidationError("invalid count %q", countStr))
				return
			}
			count = parsed
		}

		var activePlayers []string
		if playersStr := r.URL.Query().Get("players"); playersStr != "" {
			activePlayers = strings.Split(playersStr, ",")
		}

		batch, err := s.Coordinator.GenerateMatches(activePlayers, count)
		if err != nil {
			writeError(w, err)
			return
		}
		if batch == nil {
			batch = []tournament.Match{}
		}
		writeJSON(w, http.StatusOK, batch)
	}
}

func (s *Server) AssignCourtsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promoted, err := s.Coordinator.AssignCourts(isDryRunFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		if promoted == nil {
			promoted = []tournament.Match{}
		}
		writeJSON(w, http.StatusOK, promoted)
	}
}

func (s *Server) StartMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			writeError(w, tournament.NewValidationError("matchID is required"))
			return
		}
		m, err := s.Coordinator.StartMatch(matchID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) RecordScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			writeError(w, tournament.NewValidationError("matchID is required"))
			return
		}
		team1, err := strconv.Atoi(r.URL.Query().Get("team1"))
		if err != nil {
			writeError(w, tournament.NewValidationError("team1 must be an integer"))
			return
		}
		team2, err := strconv.Atoi(r.URL.Query().Get("team2"))
		if err != nil {
			writeError(w, tournament.NewValidationError("team2 must be an integer"))
			return
		}

		m, err := s.Coordinator.RecordScore(matchID, team1, team2, isDryRunFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) CancelMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			writeError(w, tournament.NewValidationError("matchID is required"))
			return
		}
		backfilled, err := s.Coordinator.CancelMatch(matchID, isDryRunFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		if backfilled == nil {
			backfilled = []tournament.Match{}
		}
		writeJSON(w, http.StatusOK, backfilled)
	}
}

func (s *Server) PlayerStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			writeError(w, tournament.NewValidationError("name is required"))
			return
		}
		status := tournament.PlayerStatus(r.URL.Query().Get("status"))

		cancelled, err := s.Coordinator.SetPlayerStatus(name, status, isDryRunFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		if cancelled == nil {
			cancelled = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"player":           name,
			"status":           status,
			"cancelledMatches": cancelled,
		})
	}
}

func (s *Server) CheckInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			writeError(w, tournament.NewValidationError("name is required"))
			return
		}
		p, err := s.Coordinator.CheckInPlayer(name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) AddPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		gender := tournament.Gender(r.URL.Query().Get("gender"))

		p, err := s.Coordinator.AddPlayer(name, gender)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

// LeaderboardHandler returns the standings; announce=true also posts them
// to the notification channel.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		standings, err := s.Coordinator.GetLeaderboard()
		if err != nil {
			writeError(w, err)
			return
		}
		if r.URL.Query().Get("announce") == "true" {
			if err := s.Coordinator.AnnounceLeaderboard(isDryRunFromContext(r)); err != nil {
				log.Error("Failed to announce leaderboard", "error", err)
			}
		}
		writeJSON(w, http.StatusOK, standings)
	}
}

// LeaderboardCommandHandler responds to the /leaderboard Slack command with
// the formatted standings instead of posting them to the channel.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		standings, err := s.Coordinator.GetLeaderboard()
		if err != nil {
			writeError(w, err)
			return
		}
		msg, err := s.Notifier.FormatLeaderboardResponse(standings)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

// RosterEventHandler consumes push-delivered roster events, e.g. a
// membership system deactivating a player.
func (s *Server) RosterEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received roster event message", "body", string(bodyBytes))
		// Define a small struct to decode the incoming JSON's `data` field
		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"` // base64-encoded message payload
			} `json:"message"`
		}

		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		// Decode base64 to raw MessagePack bytes
		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var event pubsub.PlayerEvent
		if err := s.PubSub.ProcessMessage(rawData, &event); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		if event.Event != pubsub.EventPlayerDeactivated {
			log.Debug("Ignoring roster event", "event", event.Event)
			w.Write([]byte("OK"))
			return
		}

		if _, err := s.Coordinator.SetPlayerStatus(event.Name, tournament.PlayerInactive, isDryRunFromContext(r)); err != nil {
			writeError(w, err)
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) PlayerHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			writeError(w, tournament.NewValidationError("name is required"))
			return
		}
		history, err := s.Coordinator.GetPlayerHistory(name)
		if err != nil {
			writeError(w, err)
			return
		}
		if history == nil {
			history = []tournament.Match{}
		}
		writeJSON(w, http.StatusOK, history)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// writeError maps the domain error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		validationErr  *tournament.ValidationError
		notFoundErr    *tournament.NotFoundError
		conflictErr    *tournament.ConflictError
		storeErr       *tournament.StoreIOError
		consistencyErr *tournament.ConsistencyError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
	case errors.As(err, &conflictErr):
		status = http.StatusConflict
	case errors.As(err, &storeErr):
		status = http.StatusServiceUnavailable
	case errors.As(err, &consistencyErr):
		status = http.StatusInternalServerError
	}

	if status >= 500 {
		log.Error("Request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
