package proto

import (
	"encoding/json"
	"fmt"

	"blast-arena/server/internal/directory"
	"blast-arena/server/internal/sim"
)

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 1

	// Outbound frame type identifiers.
	typeRoomJoined   = "roomJoined"
	typeRoomUpdate   = "roomUpdate"
	typeRoomsList    = "roomsList"
	typeGameStarted  = "gameStarted"
	typeState        = "state"
	typeGameEnded    = "gameEnded"
	typePlayerKilled = "playerKilled"
	typeCameraShake  = "cameraShake"
	typeError        = "error"
)

// Client message type identifiers.
const (
	TypeCreateRoom = "createRoom"
	TypeJoinRoom   = "joinRoom"
	TypeStartGame  = "startGame"
	TypeMove       = "move"
	TypeShoot      = "shoot"
	TypeSkill      = "skill"
	TypePickup     = "pickup"
	TypeGetRooms   = "getRooms"
	TypeLeave      = "leave"
)

// ClientMessage captures an inbound websocket message. It is a flat union of
// every client frame; Type decides which fields are meaningful.
type ClientMessage struct {
	Ver       int     `json:"ver,omitempty"`
	Type      string  `json:"type"`
	RoomID    string  `json:"roomId,omitempty"`
	Name      string  `json:"name,omitempty"`
	Archetype int     `json:"characterType,omitempty"`
	Angle     float64 `json:"angle,omitempty"`
	Magnitude float64 `json:"magnitude,omitempty"`
	Special   bool    `json:"special,omitempty"`
	ItemID    string  `json:"itemId,omitempty"`
}

// DecodeClientMessage converts a raw websocket payload into a structured
// message, rejecting unsupported protocol revisions.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported client protocol version %d", msg.Ver)
	}
	if msg.Type == "" {
		return msg, fmt.Errorf("missing message type")
	}
	return msg, nil
}

// RoomCommand converts a gameplay message into a room-scoped action. Returns
// false for lobby messages the session loop handles itself.
func RoomCommand(msg ClientMessage) (func(room *sim.Room, playerID string), bool) {
	switch msg.Type {
	case TypeMove:
		return func(room *sim.Room, playerID string) {
			room.SetIntent(playerID, msg.Angle, msg.Magnitude)
		}, true
	case TypeShoot:
		special := msg.Special
		return func(room *sim.Room, playerID string) {
			room.QueueShoot(playerID, special)
		}, true
	case TypeSkill:
		return func(room *sim.Room, playerID string) {
			room.QueueShoot(playerID, true)
		}, true
	case TypePickup:
		itemID := msg.ItemID
		return func(room *sim.Room, playerID string) {
			room.QueuePickup(playerID, itemID)
		}, true
	default:
		return nil, false
	}
}

// RoomJoinedV1 confirms a create or join request.
type RoomJoinedV1 struct {
	Ver      int    `json:"ver"`
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	IsHost   bool   `json:"isHost"`
}

// EncodeRoomJoinedV1 renders a versioned join confirmation.
func EncodeRoomJoinedV1(roomID, playerID string, isHost bool) ([]byte, error) {
	return json.Marshal(RoomJoinedV1{Ver: Version, Type: typeRoomJoined, RoomID: roomID, PlayerID: playerID, IsHost: isHost})
}

// RoomUpdateV1 carries the lobby roster and current host.
type RoomUpdateV1 struct {
	Ver     int               `json:"ver"`
	Type    string            `json:"type"`
	RoomID  string            `json:"roomId"`
	Players []sim.RosterEntry `json:"players"`
	HostID  string            `json:"hostId"`
}

// EncodeRoomUpdateV1 renders a versioned roster update.
func EncodeRoomUpdateV1(roomID string, players []sim.RosterEntry, hostID string) ([]byte, error) {
	if players == nil {
		players = []sim.RosterEntry{}
	}
	return json.Marshal(RoomUpdateV1{Ver: Version, Type: typeRoomUpdate, RoomID: roomID, Players: players, HostID: hostID})
}

// RoomsListV1 carries the joinable rooms for the lobby browser.
type RoomsListV1 struct {
	Ver   int                     `json:"ver"`
	Type  string                  `json:"type"`
	Rooms []directory.RoomSummary `json:"rooms"`
}

// EncodeRoomsListV1 renders a versioned rooms list.
func EncodeRoomsListV1(rooms []directory.RoomSummary) ([]byte, error) {
	if rooms == nil {
		rooms = []directory.RoomSummary{}
	}
	return json.Marshal(RoomsListV1{Ver: Version, Type: typeRoomsList, Rooms: rooms})
}

// GameStartedV1 announces the waiting-to-playing transition.
type GameStartedV1 struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

// EncodeGameStartedV1 renders a versioned game start frame.
func EncodeGameStartedV1(roomID string) ([]byte, error) {
	return json.Marshal(GameStartedV1{Ver: Version, Type: typeGameStarted, RoomID: roomID})
}

// StateV1 wraps the per-tick world snapshot.
type StateV1 struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	sim.Snapshot
}

// EncodeStateV1 renders a versioned snapshot frame.
func EncodeStateV1(snap sim.Snapshot) ([]byte, error) {
	return json.Marshal(StateV1{Ver: Version, Type: typeState, Snapshot: snap})
}

// GameEndedV1 carries the final standings.
type GameEndedV1 struct {
	Ver      int           `json:"ver"`
	Type     string        `json:"type"`
	RoomID   string        `json:"roomId"`
	Rankings []sim.Ranking `json:"rankings"`
}

// EncodeGameEndedV1 renders a versioned standings frame.
func EncodeGameEndedV1(roomID string, rankings []sim.Ranking) ([]byte, error) {
	if rankings == nil {
		rankings = []sim.Ranking{}
	}
	return json.Marshal(GameEndedV1{Ver: Version, Type: typeGameEnded, RoomID: roomID, Rankings: rankings})
}

// PlayerKilledV1 announces an elimination to the whole room.
type PlayerKilledV1 struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	sim.KillNotice
}

// EncodePlayerKilledV1 renders a versioned kill notification.
func EncodePlayerKilledV1(notice sim.KillNotice) ([]byte, error) {
	return json.Marshal(PlayerKilledV1{Ver: Version, Type: typePlayerKilled, KillNotice: notice})
}

// CameraShakeV1 asks clients to rattle the viewport.
type CameraShakeV1 struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	sim.Shake
}

// EncodeCameraShakeV1 renders a versioned camera shake signal.
func EncodeCameraShakeV1(shake sim.Shake) ([]byte, error) {
	return json.Marshal(CameraShakeV1{Ver: Version, Type: typeCameraShake, Shake: shake})
}

// ErrorV1 surfaces a rejected request to the offending client only.
type ErrorV1 struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Op     string `json:"op"`
	Reason string `json:"reason"`
}

// EncodeErrorV1 renders a versioned rejection frame.
func EncodeErrorV1(op, reason string) ([]byte, error) {
	return json.Marshal(ErrorV1{Ver: Version, Type: typeError, Op: op, Reason: reason})
}
