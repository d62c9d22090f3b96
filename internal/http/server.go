package http

import (
	"net/http"

	"github.com/lindqvist/court-circuit/internal/config"
	"github.com/lindqvist/court-circuit/internal/metrics"
	"github.com/lindqvist/court-circuit/internal/notifier"
	"github.com/lindqvist/court-circuit/internal/pubsub"
	"github.com/lindqvist/court-circuit/internal/scheduler"
)

func NewServer(coordinator *scheduler.Coordinator, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsubClient pubsub.PubSubClient) *Server {
	server := &Server{
		Coordinator:    coordinator,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		PubSub:         pubsubClient,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/members", Chain(s.ListMembersHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/generate", Chain(s.GenerateMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/assign", Chain(s.AssignCourtsHandler(), paramsMiddleware))
	s.Router.Handle("/start", Chain(s.StartMatchHandler(), paramsMiddleware))
	s.Router.Handle("/score", Chain(s.RecordScoreHandler(), paramsMiddleware))
	s.Router.Handle("/cancel", Chain(s.CancelMatchHandler(), paramsMiddleware))
	s.Router.Handle("/player-status", Chain(s.PlayerStatusHandler(), paramsMiddleware))
	s.Router.Handle("/check-in", Chain(s.CheckInHandler(), paramsMiddleware))
	s.Router.Handle("/add-player", Chain(s.AddPlayerHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/player-history", Chain(s.PlayerHistoryHandler(), paramsMiddleware))
	s.Router.Handle("/roster-event", Chain(s.RosterEventHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
