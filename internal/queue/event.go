// Package queue defines the message payloads the service fans out and the
// publisher/consumer machinery that moves them.
package queue

import "github.com/musicroom/musicroom/internal/model"

// Bus event names on the "push" channel.
const (
	EventJoined  = "joined"
	EventPlaying = "playing"
)

// RoomEvent is the notification fanned out to room listeners over the bus.
// Consumers treat it as a hint and re-fetch authoritative state from the
// room entity.
type RoomEvent struct {
	Room string `json:"room"`
	Name string `json:"name"`
	Data any    `json:"data"`
}

// JoinedData is the payload of a "joined" event.
type JoinedData struct {
	Name string `json:"name"`
}

// TransitionEvent is the durable audit record published when a room commits
// a new current song.
type TransitionEvent struct {
	Room       string     `json:"room"`
	Song       model.Song `json:"song"`
	Score      int        `json:"score"`
	HasScore   bool       `json:"has_score"`
	OccurredAt string     `json:"occurred_at"`
}
