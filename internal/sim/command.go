package sim

import "blast-arena/server/internal/game"

// CommandType enumerates the queued player actions drained once per tick.
type CommandType string

const (
	CommandShoot  CommandType = "shoot"
	CommandPickup CommandType = "pickup"
)

// Command is one queued player action. Movement intent is not a command: it
// is last-writer-wins state applied immediately by SetIntent.
type Command struct {
	PlayerID string
	Type     CommandType
	Special  bool
	ItemID   string
}

// SetIntent records the latest joystick vector for a player. Magnitude is
// clamped here so the resolver can trust its input. Unknown players are a
// silent no-op; the client may race its own disconnect.
func (r *Room) SetIntent(playerID string, angle, magnitude float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok {
		return
	}
	p.Intent = game.MoveIntent{Angle: angle, Magnitude: game.Clamp(magnitude, 0, 1)}
}

// QueueShoot stages a fire command for the next tick. At most one shoot
// command per player survives per tick, so duplicate client messages cannot
// double-fire; a special request wins over a queued normal one.
func (r *Room) QueueShoot(playerID string, special bool) {
	r.queueCommand(Command{PlayerID: playerID, Type: CommandShoot, Special: special})
}

// QueuePickup stages an explicit pickup claim. The overlap sweep usually
// grants items first; the claim path only matters for items sitting exactly
// on the radius boundary client-side.
func (r *Room) QueuePickup(playerID, itemID string) {
	r.queueCommand(Command{PlayerID: playerID, Type: CommandPickup, ItemID: itemID})
}

func (r *Room) queueCommand(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[cmd.PlayerID]; !ok {
		return
	}
	key := cmd.PlayerID + "/" + string(cmd.Type)
	if idx, ok := r.pendingKeys[key]; ok {
		if cmd.Type == CommandShoot && cmd.Special {
			r.pending[idx] = cmd
		}
		return
	}
	r.pendingKeys[key] = len(r.pending)
	r.pending = append(r.pending, cmd)
}

// drainCommandsLocked empties the staged queue for this tick.
func (r *Room) drainCommandsLocked() []Command {
	if len(r.pending) == 0 {
		return nil
	}
	commands := r.pending
	r.pending = nil
	r.pendingKeys = make(map[string]int)
	return commands
}

// dropCommandsLocked removes staged commands for a departed player.
func (r *Room) dropCommandsLocked(playerID string) {
	if len(r.pending) == 0 {
		return
	}
	kept := r.pending[:0]
	for _, cmd := range r.pending {
		if cmd.PlayerID == playerID {
			continue
		}
		kept = append(kept, cmd)
	}
	r.pending = kept
	r.pendingKeys = make(map[string]int)
	for i, cmd := range r.pending {
		r.pendingKeys[cmd.PlayerID+"/"+string(cmd.Type)] = i
	}
}
