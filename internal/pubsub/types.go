package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventMatchGenerated    EventType = "match.generated"
	EventMatchScheduled    EventType = "match.scheduled"
	EventMatchStarted      EventType = "match.started"
	EventMatchCompleted    EventType = "match.completed"
	EventMatchCancelled    EventType = "match.cancelled"
	EventPlayerDeactivated EventType = "player.deactivated"
)

// MatchEvent is the payload published for match lifecycle events.
type MatchEvent struct {
	Event   EventType `msgpack:"event"`
	MatchID string    `msgpack:"match_id"`
	Court   *int      `msgpack:"court,omitempty"`
	Players [4]string `msgpack:"players"`
}

// PlayerEvent is the payload published for roster events.
type PlayerEvent struct {
	Event EventType `msgpack:"event"`
	Name  string    `msgpack:"name"`
}
