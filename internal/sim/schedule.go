package sim

import "time"

// effectKind enumerates the time-deferred room effects.
type effectKind string

const (
	effectRespawn     effectKind = "respawn"
	effectSpeedExpiry effectKind = "speed-expiry"
)

// scheduledEffect is a deferred action checked against the tick clock. It is
// revalidated at apply time: the player may have left, or a newer speed
// boost may have superseded this one, in which case it is dropped silently.
type scheduledEffect struct {
	kind     effectKind
	playerID string
	at       time.Time
	boostSeq uint64
}

func (r *Room) scheduleLocked(kind effectKind, playerID string, at time.Time, boostSeq uint64) {
	r.scheduled = append(r.scheduled, scheduledEffect{kind: kind, playerID: playerID, at: at, boostSeq: boostSeq})
}

// dropScheduledLocked cancels every deferred effect for a departed player.
func (r *Room) dropScheduledLocked(playerID string) {
	kept := r.scheduled[:0]
	for _, eff := range r.scheduled {
		if eff.playerID == playerID {
			continue
		}
		kept = append(kept, eff)
	}
	r.scheduled = kept
}

// applyScheduledLocked fires every due effect. Runs at the top of each tick
// so deferred actions share the simulation clock instead of free-running
// timers.
func (r *Room) applyScheduledLocked(now time.Time) {
	if len(r.scheduled) == 0 {
		return
	}
	kept := r.scheduled[:0]
	for _, eff := range r.scheduled {
		if now.Before(eff.at) {
			kept = append(kept, eff)
			continue
		}
		p, ok := r.players[eff.playerID]
		if !ok {
			continue
		}
		switch eff.kind {
		case effectRespawn:
			x, y := r.randomSpawnLocked()
			p.X = x
			p.Y = y
			p.VX = 0
			p.VY = 0
			p.ClearStatuses()
		case effectSpeedExpiry:
			if r.boostSeq[eff.playerID] != eff.boostSeq {
				continue
			}
			p.SpeedBoost = 1
		}
	}
	r.scheduled = kept
}
