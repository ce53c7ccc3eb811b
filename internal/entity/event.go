package entity

import "time"

const (
	TopicRooms = "rooms"
	TopicGames = "games"
)

const (
	EventRoomCreated  = "room.created"
	EventRoomJoined   = "room.joined"
	EventRoomLeft     = "room.left"
	EventRoomPromoted = "room.promoted"

	EventGameCreated  = "game.created"
	EventMoveAccepted = "game.move_accepted"
	EventGameFinished = "game.finished"
)

// Event announces a committed mutation to anyone listening on its channel.
type Event struct {
	Topic    string    `json:"topic"`
	Type     string    `json:"type"`
	EntityID string    `json:"entity_id"`
	ActorID  string    `json:"actor_id,omitempty"`
	At       time.Time `json:"at"`
}

func (that *Event) Channel() string {
	return that.Topic + ":" + that.EntityID
}
