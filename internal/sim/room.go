package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"blast-arena/server/internal/game"
	"blast-arena/server/logging"
	"blast-arena/server/logging/lifecycle"
)

// Phase is the room lifecycle state.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

var (
	ErrRoomFull         = errors.New("room is full")
	ErrAlreadyStarted   = errors.New("game already started")
	ErrRoomFinished     = errors.New("room is finished")
	ErrNotHost          = errors.New("only the host can start the game")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrUnknownArchetype = errors.New("unknown archetype")
	ErrUnknownPlayer    = errors.New("unknown player")
)

// RoomConfig carries everything a room needs injected at creation.
type RoomConfig struct {
	Tuning      game.Tuning
	TickRate    int
	CatchupMax  int
	Seed        int64
	Clock       logging.Clock
	Publisher   logging.Publisher
	Broadcaster Broadcaster
	// OnClosed runs once when the room reaches its terminal state, after
	// the lock is released. The directory uses it to deregister the code.
	OnClosed func(code string)
}

// Room is one isolated match: it owns its entities outright and mutates them
// only under its own lock, one atomic pass per tick. Nothing in a room is
// shared with a sibling room.
type Room struct {
	Code string

	mu          sync.Mutex
	phase       Phase
	hostID      string
	tuning      game.Tuning
	tickRate    int
	catchupMax  int
	rng         *rand.Rand
	clock       logging.Clock
	pub         logging.Publisher
	broadcaster Broadcaster
	onClosed    func(code string)

	players    map[string]*game.Player
	archetypes map[string]game.Archetype
	order      []string

	projectiles []*game.Projectile
	pickups     []*game.Pickup
	bosses      []*game.Boss

	tick            uint64
	startedAt       time.Time
	lastPickupSpawn time.Time
	lastBossSpawn   time.Time
	nextEntity      uint64

	pending     []Command
	pendingKeys map[string]int
	scheduled   []scheduledEffect
	boostSeq    map[string]uint64

	// Broadcast output buffered during the locked pass and emitted once the
	// lock is released.
	killEvents  []KillNotice
	shakeEvents []Shake

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRoom builds a waiting room. Seed zero picks a time-based seed; tests
// pass a fixed one for reproducible rolls.
func NewRoom(code string, cfg RoomConfig) *Room {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 30
	}
	if cfg.CatchupMax <= 0 {
		cfg.CatchupMax = 3
	}
	if cfg.Clock == nil {
		cfg.Clock = logging.SystemClock{}
	}
	if cfg.Publisher == nil {
		cfg.Publisher = logging.NopPublisher()
	}
	if cfg.Broadcaster == nil {
		cfg.Broadcaster = NopBroadcaster()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = cfg.Clock.Now().UnixNano()
	}
	return &Room{
		Code:        code,
		phase:       PhaseWaiting,
		tuning:      cfg.Tuning.Normalized(),
		tickRate:    cfg.TickRate,
		catchupMax:  cfg.CatchupMax,
		rng:         rand.New(rand.NewSource(seed)),
		clock:       cfg.Clock,
		pub:         logging.WithRoom(cfg.Publisher, code),
		broadcaster: cfg.Broadcaster,
		onClosed:    cfg.OnClosed,
		players:     make(map[string]*game.Player),
		archetypes:  make(map[string]game.Archetype),
		pendingKeys: make(map[string]int),
		boostSeq:    make(map[string]uint64),
		stop:        make(chan struct{}),
	}
}

// Phase returns the current lifecycle state.
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// HostID returns the current host.
func (r *Room) HostID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

// PlayerCount returns the number of joined players.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Roster returns the current players in join order and the current host.
func (r *Room) Roster() ([]RosterEntry, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosterLocked(), r.hostID
}

// Joinable reports whether the room appears in the public rooms list: still
// waiting and not at capacity.
func (r *Room) Joinable() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase == PhaseWaiting && len(r.players) < r.tuning.MaxPlayers
}

// Join adds a player with the chosen kit at a random spawn point. The first
// player to join becomes host. Joining a full or already-running room is
// rejected without touching room state.
func (r *Room) Join(playerID, name string, archetypeID int) error {
	arch, ok := game.ArchetypeByID(archetypeID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownArchetype, archetypeID)
	}

	r.mu.Lock()
	switch r.phase {
	case PhasePlaying:
		r.mu.Unlock()
		return ErrAlreadyStarted
	case PhaseFinished:
		r.mu.Unlock()
		return ErrRoomFinished
	}
	if len(r.players) >= r.tuning.MaxPlayers {
		r.mu.Unlock()
		return ErrRoomFull
	}

	x, y := r.randomSpawnLocked()
	p := game.NewPlayer(playerID, name, arch, x, y)
	r.players[playerID] = p
	r.archetypes[playerID] = arch
	r.order = append(r.order, playerID)
	if r.hostID == "" {
		r.hostID = playerID
	}
	roster := r.rosterLocked()
	hostID := r.hostID
	tick := r.tick
	r.mu.Unlock()

	r.broadcaster.RoomUpdate(r.Code, roster, hostID)
	lifecycle.PlayerJoined(context.Background(), r.pub, tick,
		logging.EntityRef{ID: playerID, Kind: logging.EntityKindPlayer},
		lifecycle.PlayerJoinedPayload{Name: name, Archetype: archetypeID, SpawnX: x, SpawnY: y})
	return nil
}

// Leave removes a player at any phase: their pending commands and deferred
// effects are dropped, the host role migrates to the oldest remaining player
// by join order, and the room tears itself down when it empties.
func (r *Room) Leave(playerID string) {
	r.mu.Lock()
	if _, ok := r.players[playerID]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.players, playerID)
	delete(r.archetypes, playerID)
	delete(r.boostSeq, playerID)
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.dropCommandsLocked(playerID)
	r.dropScheduledLocked(playerID)

	var newHost string
	if r.hostID == playerID {
		r.hostID = ""
		if len(r.order) > 0 {
			r.hostID = r.order[0]
			newHost = r.hostID
		}
	}

	empty := len(r.players) == 0
	if empty && r.phase != PhaseFinished {
		r.phase = PhaseFinished
	}
	roster := r.rosterLocked()
	hostID := r.hostID
	tick := r.tick
	r.mu.Unlock()

	lifecycle.PlayerLeft(context.Background(), r.pub, tick,
		logging.EntityRef{ID: playerID, Kind: logging.EntityKindPlayer},
		lifecycle.PlayerLeftPayload{Reason: "left", NewHost: newHost})

	if empty {
		r.closeRoom()
		return
	}
	r.broadcaster.RoomUpdate(r.Code, roster, hostID)
}

// StartGame moves the room into the playing phase. Host-only; requires the
// configured minimum player count; starting twice is rejected.
func (r *Room) StartGame(playerID string) error {
	r.mu.Lock()
	if r.phase == PhasePlaying {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	if r.phase == PhaseFinished {
		r.mu.Unlock()
		return ErrRoomFinished
	}
	if playerID != r.hostID {
		r.mu.Unlock()
		return ErrNotHost
	}
	if len(r.players) < r.tuning.MinPlayers {
		r.mu.Unlock()
		return ErrNotEnoughPlayers
	}
	now := r.clock.Now()
	r.phase = PhasePlaying
	r.startedAt = now
	r.lastPickupSpawn = now
	r.lastBossSpawn = now
	tick := r.tick
	r.mu.Unlock()

	r.broadcaster.GameStarted(r.Code)
	lifecycle.GameStarted(context.Background(), r.pub, tick,
		logging.EntityRef{ID: r.Code, Kind: logging.EntityKindRoom})
	return nil
}

// Run drives the fixed-timestep loop until the room closes. Delta is
// normalized to ticks and clamped to the catch-up budget so a scheduler
// stall never teleports entities.
func (r *Room) Run() {
	interval := time.Second / time.Duration(r.tickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := r.clock.Now()
	maxDt := float64(r.catchupMax)
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			now := r.clock.Now()
			dt := now.Sub(last).Seconds() * float64(r.tickRate)
			if dt <= 0 {
				dt = 1
			} else if dt > maxDt {
				dt = maxDt
			}
			last = now
			r.step(now, dt)
		}
	}
}

// step runs one tick pass with panic isolation: a fault inside this room's
// tick ends this room only and never reaches a sibling room or the gateway.
func (r *Room) step(now time.Time, dt float64) {
	defer func() {
		if rec := recover(); rec != nil {
			lifecycle.RoomFault(context.Background(), r.pub, r.tick, r.Code, fmt.Sprint(rec))
			r.mu.Lock()
			r.phase = PhaseFinished
			rankings := r.rankingsLocked()
			r.mu.Unlock()
			r.broadcaster.GameEnded(r.Code, rankings)
			r.closeRoom()
		}
	}()
	r.Advance(now, dt)
}

// Close tears the room down regardless of phase.
func (r *Room) Close() {
	r.mu.Lock()
	r.phase = PhaseFinished
	r.mu.Unlock()
	r.closeRoom()
}

func (r *Room) closeRoom() {
	r.stopOnce.Do(func() {
		close(r.stop)
		lifecycle.RoomClosed(context.Background(), r.pub, r.Code)
		if r.onClosed != nil {
			r.onClosed(r.Code)
		}
	})
}
