package lifecycle

import (
	"context"

	"blast-arena/server/logging"
)

const (
	// EventRoomCreated is emitted when the directory opens a new room.
	EventRoomCreated logging.EventType = "lifecycle.room_created"
	// EventRoomClosed is emitted when the last player leaves and the room is torn down.
	EventRoomClosed logging.EventType = "lifecycle.room_closed"
	// EventPlayerJoined is emitted when a player joins a room.
	EventPlayerJoined logging.EventType = "lifecycle.player_joined"
	// EventPlayerLeft is emitted when a player leaves or disconnects.
	EventPlayerLeft logging.EventType = "lifecycle.player_left"
	// EventGameStarted is emitted when the host starts the match.
	EventGameStarted logging.EventType = "lifecycle.game_started"
	// EventGameEnded is emitted when the duration budget elapses.
	EventGameEnded logging.EventType = "lifecycle.game_ended"
	// EventRoomFault is emitted when a room tick panics and is isolated.
	EventRoomFault logging.EventType = "lifecycle.room_fault"
)

// PlayerJoinedPayload captures spawn metadata for a new player.
type PlayerJoinedPayload struct {
	Name      string  `json:"name"`
	Archetype int     `json:"archetype"`
	SpawnX    float64 `json:"spawnX"`
	SpawnY    float64 `json:"spawnY"`
}

// PlayerLeftPayload captures why a player left and who hosts now.
type PlayerLeftPayload struct {
	Reason  string `json:"reason"`
	NewHost string `json:"newHost,omitempty"`
}

// GameEndedPayload carries the final standings summary.
type GameEndedPayload struct {
	Players int    `json:"players"`
	Winner  string `json:"winner,omitempty"`
}

func emit(ctx context.Context, pub logging.Publisher, eventType logging.EventType, tick uint64, actor logging.EntityRef, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

// RoomCreated publishes a room creation event.
func RoomCreated(ctx context.Context, pub logging.Publisher, room string) {
	emit(ctx, pub, EventRoomCreated, 0, logging.EntityRef{ID: room, Kind: logging.EntityKindRoom}, nil)
}

// RoomClosed publishes a room teardown event.
func RoomClosed(ctx context.Context, pub logging.Publisher, room string) {
	emit(ctx, pub, EventRoomClosed, 0, logging.EntityRef{ID: room, Kind: logging.EntityKindRoom}, nil)
}

// PlayerJoined publishes a player join event.
func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerJoinedPayload) {
	emit(ctx, pub, EventPlayerJoined, tick, actor, payload)
}

// PlayerLeft publishes a player departure event.
func PlayerLeft(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerLeftPayload) {
	emit(ctx, pub, EventPlayerLeft, tick, actor, payload)
}

// GameStarted publishes a match start event.
func GameStarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	emit(ctx, pub, EventGameStarted, tick, actor, nil)
}

// GameEnded publishes a match end event.
func GameEnded(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload GameEndedPayload) {
	emit(ctx, pub, EventGameEnded, tick, actor, payload)
}

// RoomFault publishes an isolated room failure.
func RoomFault(ctx context.Context, pub logging.Publisher, tick uint64, room string, detail string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRoomFault,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: room, Kind: logging.EntityKindRoom},
		Severity: logging.SeverityError,
		Category: logging.CategorySystem,
		Payload:  map[string]any{"detail": detail},
	})
}
