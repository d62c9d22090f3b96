package http

import (
	"net/http"

	"github.com/lindqvist/court-circuit/internal/config"
	"github.com/lindqvist/court-circuit/internal/metrics"
	"github.com/lindqvist/court-circuit/internal/notifier"
	"github.com/lindqvist/court-circuit/internal/pubsub"
	"github.com/lindqvist/court-circuit/internal/scheduler"
)

type Server struct {
	Coordinator    *scheduler.Coordinator
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	PubSub         pubsub.PubSubClient
	Router         *http.ServeMux
}
