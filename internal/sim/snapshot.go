package sim

import (
	"sort"
	"time"

	"blast-arena/server/internal/game"
)

// Snapshot is the full authoritative world state broadcast once per tick.
// Everything a client renders is in here; clients keep no derived state the
// server does not resend.
type Snapshot struct {
	Tick            uint64            `json:"tick"`
	Players         []game.Player     `json:"players"`
	Projectiles     []game.Projectile `json:"projectiles"`
	Pickups         []game.Pickup     `json:"pickups"`
	Bosses          []game.Boss       `json:"bosses"`
	TimeRemainingMs int64             `json:"timeRemainingMs"`
}

// Ranking is one row of the final standings.
type Ranking struct {
	Rank   int    `json:"rank"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Kills  int    `json:"kills"`
	Deaths int    `json:"deaths"`
}

// snapshotLocked copies the live collections into value form. Players are
// emitted in join order so the payload is stable across ticks. Status
// effects get their remaining lifetime stamped in milliseconds since the
// absolute expiry is meaningless to a client on its own clock.
func (r *Room) snapshotLocked(now time.Time) Snapshot {
	snap := Snapshot{
		Tick:        r.tick,
		Players:     make([]game.Player, 0, len(r.players)),
		Projectiles: make([]game.Projectile, 0, len(r.projectiles)),
		Pickups:     make([]game.Pickup, 0, len(r.pickups)),
		Bosses:      make([]game.Boss, 0, len(r.bosses)),
	}
	for _, id := range r.order {
		p, ok := r.players[id]
		if !ok {
			continue
		}
		copied := *p
		copied.Effects = make([]game.StatusEffect, len(p.Effects))
		for i, eff := range p.Effects {
			eff.ExpiresIn = eff.ExpiresAt.Sub(now).Milliseconds()
			if eff.ExpiresIn < 0 {
				eff.ExpiresIn = 0
			}
			copied.Effects[i] = eff
		}
		snap.Players = append(snap.Players, copied)
	}
	for _, pr := range r.projectiles {
		snap.Projectiles = append(snap.Projectiles, *pr)
	}
	for _, pk := range r.pickups {
		snap.Pickups = append(snap.Pickups, *pk)
	}
	for _, b := range r.bosses {
		snap.Bosses = append(snap.Bosses, *b)
	}
	if r.phase == PhasePlaying {
		remaining := r.tuning.GameDuration - now.Sub(r.startedAt)
		if remaining < 0 {
			remaining = 0
		}
		snap.TimeRemainingMs = remaining.Milliseconds()
	}
	return snap
}

// rankingsLocked sorts the final standings by kills descending, deaths
// ascending, name as the stable tiebreak.
func (r *Room) rankingsLocked() []Ranking {
	rankings := make([]Ranking, 0, len(r.players))
	for _, id := range r.order {
		p, ok := r.players[id]
		if !ok {
			continue
		}
		rankings = append(rankings, Ranking{ID: p.ID, Name: p.Name, Kills: p.Kills, Deaths: p.Deaths})
	}
	sort.SliceStable(rankings, func(i, j int) bool {
		if rankings[i].Kills != rankings[j].Kills {
			return rankings[i].Kills > rankings[j].Kills
		}
		if rankings[i].Deaths != rankings[j].Deaths {
			return rankings[i].Deaths < rankings[j].Deaths
		}
		return rankings[i].Name < rankings[j].Name
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	return rankings
}

// rosterLocked builds the lobby view broadcast with room updates.
func (r *Room) rosterLocked() []RosterEntry {
	roster := make([]RosterEntry, 0, len(r.players))
	for _, id := range r.order {
		p, ok := r.players[id]
		if !ok {
			continue
		}
		roster = append(roster, RosterEntry{ID: p.ID, Name: p.Name, ArchetypeID: p.ArchetypeID})
	}
	return roster
}
