package directory

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"blast-arena/server/internal/game"
	"blast-arena/server/internal/sim"
	"blast-arena/server/logging"
	"blast-arena/server/logging/lifecycle"
)

// Room codes skip I/O/0/1 so a code read aloud is unambiguous.
const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const codeLength = 6

// ErrRoomNotFound is returned for joins against unknown or torn-down codes.
var ErrRoomNotFound = errors.New("room not found")

// Config carries the shared dependencies every created room inherits.
type Config struct {
	Tuning      game.Tuning
	TickRate    int
	Seed        int64
	Clock       logging.Clock
	Publisher   logging.Publisher
	Broadcaster sim.Broadcaster
}

// Directory owns the live room registry. It is the only shared mutable state
// in the process, passed explicitly to the gateway; each registered room
// keeps its own lock and its own goroutine.
type Directory struct {
	mu    sync.Mutex
	rooms map[string]*sim.Room
	cfg   Config
}

// RoomSummary is one row of the public rooms list.
type RoomSummary struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
}

// New builds an empty directory.
func New(cfg Config) *Directory {
	if cfg.Clock == nil {
		cfg.Clock = logging.SystemClock{}
	}
	if cfg.Publisher == nil {
		cfg.Publisher = logging.NopPublisher()
	}
	if cfg.Broadcaster == nil {
		cfg.Broadcaster = sim.NopBroadcaster()
	}
	return &Directory{rooms: make(map[string]*sim.Room), cfg: cfg}
}

// NewPlayerID mints a connection-scoped player identity.
func NewPlayerID() string {
	return "p_" + uuid.New().String()[:8]
}

// CreateRoom registers a new waiting room under a fresh code and starts its
// tick goroutine. The room deregisters itself when it closes.
func (d *Directory) CreateRoom() (*sim.Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var code string
	for attempt := 0; ; attempt++ {
		if attempt >= 16 {
			return nil, fmt.Errorf("could not allocate a unique room code")
		}
		candidate, err := newCode()
		if err != nil {
			return nil, fmt.Errorf("generate room code: %w", err)
		}
		if _, taken := d.rooms[candidate]; !taken {
			code = candidate
			break
		}
	}

	room := sim.NewRoom(code, sim.RoomConfig{
		Tuning:      d.cfg.Tuning,
		TickRate:    d.cfg.TickRate,
		Seed:        d.cfg.Seed,
		Clock:       d.cfg.Clock,
		Publisher:   d.cfg.Publisher,
		Broadcaster: d.cfg.Broadcaster,
		OnClosed:    d.remove,
	})
	d.rooms[code] = room
	go room.Run()

	lifecycle.RoomCreated(context.Background(), d.cfg.Publisher, code)
	return room, nil
}

// Room looks up a live room by code.
func (d *Directory) Room(code string) (*sim.Room, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	room, ok := d.rooms[code]
	return room, ok
}

// Join adds a named player to the room with the given code.
func (d *Directory) Join(code, name string, archetypeID int) (string, *sim.Room, error) {
	room, ok := d.Room(code)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}
	playerID := NewPlayerID()
	if err := room.Join(playerID, name, archetypeID); err != nil {
		return "", nil, err
	}
	return playerID, room, nil
}

// List returns the joinable rooms: still waiting and not at capacity. Full
// or in-progress rooms are invisible to the lobby.
func (d *Directory) List() []RoomSummary {
	d.mu.Lock()
	rooms := make([]*sim.Room, 0, len(d.rooms))
	for _, room := range d.rooms {
		rooms = append(rooms, room)
	}
	d.mu.Unlock()

	summaries := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		if !room.Joinable() {
			continue
		}
		summaries = append(summaries, RoomSummary{
			ID:          room.Code,
			PlayerCount: room.PlayerCount(),
			MaxPlayers:  d.cfg.Tuning.Normalized().MaxPlayers,
		})
	}
	return summaries
}

// Count reports the number of live rooms.
func (d *Directory) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rooms)
}

// Close tears down every live room.
func (d *Directory) Close() {
	d.mu.Lock()
	rooms := make([]*sim.Room, 0, len(d.rooms))
	for _, room := range d.rooms {
		rooms = append(rooms, room)
	}
	d.mu.Unlock()

	for _, room := range rooms {
		room.Close()
	}
}

// remove deregisters a closed room. Invoked from the room's OnClosed hook
// with no room lock held.
func (d *Directory) remove(code string) {
	d.mu.Lock()
	delete(d.rooms, code)
	d.mu.Unlock()
}

func newCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := make([]byte, codeLength)
	for i, b := range buf {
		code[i] = codeChars[int(b)%len(codeChars)]
	}
	return string(code), nil
}
