package ws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"blast-arena/server/internal/directory"
	"blast-arena/server/internal/net/proto"
	"blast-arena/server/internal/sim"
	"blast-arena/server/logging"
)

const defaultWriteTimeout = 5 * time.Second

// Gateway upgrades websocket connections, routes client messages into rooms,
// and fans room output back out to every subscribed session. It implements
// sim.Broadcaster, so rooms stay ignorant of the transport.
type Gateway struct {
	pub          logging.Publisher
	upgrader     websocket.Upgrader
	writeTimeout time.Duration

	mu       sync.Mutex
	dir      *directory.Directory
	sessions map[string]map[*session]struct{}
}

// NewGateway builds a gateway. Bind must be called with the room directory
// before the first connection arrives.
func NewGateway(pub logging.Publisher) *Gateway {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Gateway{
		pub: pub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		writeTimeout: defaultWriteTimeout,
		sessions:     make(map[string]map[*session]struct{}),
	}
}

// Bind attaches the room directory. Separate from construction because the
// directory needs the gateway as its broadcaster first.
func (g *Gateway) Bind(dir *directory.Directory) {
	g.mu.Lock()
	g.dir = dir
	g.mu.Unlock()
}

func (g *Gateway) directory() *directory.Directory {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dir
}

// ServeHTTP upgrades the connection and hands it a session loop.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	s := newSession(g, conn)
	go s.readLoop()
}

func (g *Gateway) register(code string, s *session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set, ok := g.sessions[code]
	if !ok {
		set = make(map[*session]struct{})
		g.sessions[code] = set
	}
	set[s] = struct{}{}
}

func (g *Gateway) unregister(code string, s *session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set, ok := g.sessions[code]
	if !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(g.sessions, code)
	}
}

// fanout delivers one encoded frame to every session in the room. A failed
// write disconnects that session only; the room never sees the error.
func (g *Gateway) fanout(code string, payload []byte) {
	g.mu.Lock()
	targets := make([]*session, 0, len(g.sessions[code]))
	for s := range g.sessions[code] {
		targets = append(targets, s)
	}
	g.mu.Unlock()

	for _, s := range targets {
		if err := s.write(payload); err != nil {
			// disconnect re-enters the room and fans out the resulting
			// roster update, so it must not run inline here.
			go s.disconnect()
		}
	}
}

func (g *Gateway) broadcast(code string, payload []byte, err error) {
	if err != nil {
		log.Printf("encode broadcast frame for room %s: %v", code, err)
		return
	}
	g.fanout(code, payload)
}

// RoomUpdate implements sim.Broadcaster.
func (g *Gateway) RoomUpdate(code string, players []sim.RosterEntry, hostID string) {
	payload, err := proto.EncodeRoomUpdateV1(code, players, hostID)
	g.broadcast(code, payload, err)
}

// GameStarted implements sim.Broadcaster.
func (g *Gateway) GameStarted(code string) {
	payload, err := proto.EncodeGameStartedV1(code)
	g.broadcast(code, payload, err)
}

// Snapshot implements sim.Broadcaster.
func (g *Gateway) Snapshot(code string, snap sim.Snapshot) {
	payload, err := proto.EncodeStateV1(snap)
	g.broadcast(code, payload, err)
}

// GameEnded implements sim.Broadcaster.
func (g *Gateway) GameEnded(code string, rankings []sim.Ranking) {
	payload, err := proto.EncodeGameEndedV1(code, rankings)
	g.broadcast(code, payload, err)
}

// PlayerKilled implements sim.Broadcaster.
func (g *Gateway) PlayerKilled(code string, notice sim.KillNotice) {
	payload, err := proto.EncodePlayerKilledV1(notice)
	g.broadcast(code, payload, err)
}

// CameraShake implements sim.Broadcaster.
func (g *Gateway) CameraShake(code string, shake sim.Shake) {
	payload, err := proto.EncodeCameraShakeV1(shake)
	g.broadcast(code, payload, err)
}

var _ sim.Broadcaster = (*Gateway)(nil)
