package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"blast-arena/server/internal/directory"
	"blast-arena/server/internal/net/proto"
	"blast-arena/server/internal/sim"
)

const maxMessageBytes = 4096

// session is one websocket connection. A session belongs to at most one room
// at a time; gameplay messages before a join are silently dropped.
type session struct {
	gateway *Gateway
	conn    *websocket.Conn

	writeMu sync.Mutex

	mu       sync.Mutex
	playerID string
	room     *sim.Room
	closed   bool
}

func newSession(g *Gateway, conn *websocket.Conn) *session {
	return &session{gateway: g, conn: conn}
}

// write sends one frame under the per-connection write lock with a deadline,
// so a stalled client cannot wedge the fan-out.
func (s *session) write(payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.gateway.writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *session) sendError(op, reason string) {
	payload, err := proto.EncodeErrorV1(op, reason)
	if err != nil {
		return
	}
	_ = s.write(payload)
}

func (s *session) readLoop() {
	defer s.disconnect()
	s.conn.SetReadLimit(maxMessageBytes)
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			s.sendError("decode", err.Error())
			continue
		}
		s.handle(msg)
	}
}

func (s *session) handle(msg proto.ClientMessage) {
	switch msg.Type {
	case proto.TypeCreateRoom:
		s.handleCreate(msg)
	case proto.TypeJoinRoom:
		s.handleJoin(msg)
	case proto.TypeGetRooms:
		s.handleGetRooms()
	case proto.TypeStartGame:
		s.handleStart()
	case proto.TypeLeave:
		s.leaveRoom()
	default:
		action, ok := proto.RoomCommand(msg)
		if !ok {
			s.sendError(msg.Type, "unknown message type")
			return
		}
		s.mu.Lock()
		room, playerID := s.room, s.playerID
		s.mu.Unlock()
		if room == nil {
			return
		}
		action(room, playerID)
	}
}

func (s *session) handleCreate(msg proto.ClientMessage) {
	dir := s.gateway.directory()
	if dir == nil {
		s.sendError(proto.TypeCreateRoom, "server not ready")
		return
	}
	if s.currentRoom() != nil {
		s.sendError(proto.TypeCreateRoom, "already in a room")
		return
	}
	room, err := dir.CreateRoom()
	if err != nil {
		s.sendError(proto.TypeCreateRoom, err.Error())
		return
	}
	playerID := directory.NewPlayerID()
	if err := room.Join(playerID, msg.Name, msg.Archetype); err != nil {
		room.Close()
		s.sendError(proto.TypeCreateRoom, err.Error())
		return
	}
	s.attach(room, playerID)
	payload, encErr := proto.EncodeRoomJoinedV1(room.Code, playerID, true)
	if encErr == nil {
		_ = s.write(payload)
	}
	s.sendRoster(room)
}

func (s *session) handleJoin(msg proto.ClientMessage) {
	dir := s.gateway.directory()
	if dir == nil {
		s.sendError(proto.TypeJoinRoom, "server not ready")
		return
	}
	if s.currentRoom() != nil {
		s.sendError(proto.TypeJoinRoom, "already in a room")
		return
	}
	playerID, room, err := dir.Join(msg.RoomID, msg.Name, msg.Archetype)
	if err != nil {
		s.sendError(proto.TypeJoinRoom, err.Error())
		return
	}
	s.attach(room, playerID)
	payload, encErr := proto.EncodeRoomJoinedV1(room.Code, playerID, room.HostID() == playerID)
	if encErr == nil {
		_ = s.write(payload)
	}
	s.sendRoster(room)
}

func (s *session) handleGetRooms() {
	dir := s.gateway.directory()
	if dir == nil {
		s.sendError(proto.TypeGetRooms, "server not ready")
		return
	}
	payload, err := proto.EncodeRoomsListV1(dir.List())
	if err != nil {
		return
	}
	_ = s.write(payload)
}

func (s *session) handleStart() {
	s.mu.Lock()
	room, playerID := s.room, s.playerID
	s.mu.Unlock()
	if room == nil {
		s.sendError(proto.TypeStartGame, "not in a room")
		return
	}
	if err := room.StartGame(playerID); err != nil {
		s.sendError(proto.TypeStartGame, err.Error())
	}
}

// sendRoster replays the current roster to this session only. Join broadcasts
// the roster before the session is subscribed, so the joining client gets its
// copy here instead of waiting for the next membership change.
func (s *session) sendRoster(room *sim.Room) {
	players, hostID := room.Roster()
	payload, err := proto.EncodeRoomUpdateV1(room.Code, players, hostID)
	if err != nil {
		return
	}
	_ = s.write(payload)
}

func (s *session) attach(room *sim.Room, playerID string) {
	s.mu.Lock()
	s.room = room
	s.playerID = playerID
	s.mu.Unlock()
	s.gateway.register(room.Code, s)
}

func (s *session) currentRoom() *sim.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// leaveRoom detaches the session from its room, removing the player from
// the simulation. Safe to call twice.
func (s *session) leaveRoom() {
	s.mu.Lock()
	room, playerID := s.room, s.playerID
	s.room = nil
	s.playerID = ""
	s.mu.Unlock()
	if room == nil {
		return
	}
	s.gateway.unregister(room.Code, s)
	room.Leave(playerID)
}

// disconnect tears the session down: the player leaves their room and the
// connection closes. Invoked on read failure, write failure, and leave.
func (s *session) disconnect() {
	s.mu.Lock()
	alreadyClosed := s.closed
	s.closed = true
	s.mu.Unlock()
	if alreadyClosed {
		return
	}
	s.leaveRoom()
	_ = s.conn.Close()
}
