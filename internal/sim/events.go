package sim

// RosterEntry is the lobby-facing view of a player, broadcast in room
// updates before and during a match.
type RosterEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ArchetypeID int    `json:"characterType"`
}

// KillNotice names both sides of a confirmed elimination.
type KillNotice struct {
	KillerID   string `json:"killerId"`
	KillerName string `json:"killerName"`
	VictimID   string `json:"victimId"`
	VictimName string `json:"victimName"`
	Cause      string `json:"cause"`
}

// Shake asks clients to rattle the camera.
type Shake struct {
	Intensity  float64 `json:"intensity"`
	DurationMs int     `json:"durationMs"`
}

// Broadcaster receives room output for fan-out to connected clients. The
// gateway implements it. Rooms emit only after releasing the room lock, so
// a slow subscriber delays the broadcast of a pass, never the pass itself.
type Broadcaster interface {
	RoomUpdate(code string, players []RosterEntry, hostID string)
	GameStarted(code string)
	Snapshot(code string, snap Snapshot)
	GameEnded(code string, rankings []Ranking)
	PlayerKilled(code string, notice KillNotice)
	CameraShake(code string, shake Shake)
}

type nopBroadcaster struct{}

func (nopBroadcaster) RoomUpdate(string, []RosterEntry, string) {}
func (nopBroadcaster) GameStarted(string)                       {}
func (nopBroadcaster) Snapshot(string, Snapshot)                {}
func (nopBroadcaster) GameEnded(string, []Ranking)              {}
func (nopBroadcaster) PlayerKilled(string, KillNotice)          {}
func (nopBroadcaster) CameraShake(string, Shake)                {}

// NopBroadcaster returns a broadcaster that discards everything.
func NopBroadcaster() Broadcaster {
	return nopBroadcaster{}
}
