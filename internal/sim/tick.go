package sim

import (
	"context"
	"math"
	"time"

	"blast-arena/server/internal/game"
	"blast-arena/server/logging"
	combatlog "blast-arena/server/logging/combat"
	"blast-arena/server/logging/lifecycle"
)

// tickOutput is everything one pass produces for broadcast once the room
// lock is back off.
type tickOutput struct {
	snap     Snapshot
	kills    []KillNotice
	shakes   []Shake
	rankings []Ranking
	tick     uint64
	players  int
	ended    bool
}

// Advance runs one atomic simulation pass and then broadcasts its output.
// dt is measured in ticks. The pass itself holds the room lock, so no input
// command can interleave with it; broadcasts wait for the lock to be
// released, so a slow client never stalls the simulation.
func (r *Room) Advance(now time.Time, dt float64) {
	out, ok := r.advanceLocked(now, dt)
	if !ok {
		return
	}

	for _, notice := range out.kills {
		r.broadcaster.PlayerKilled(r.Code, notice)
	}
	for _, shake := range out.shakes {
		r.broadcaster.CameraShake(r.Code, shake)
	}
	r.broadcaster.Snapshot(r.Code, out.snap)
	if out.ended {
		r.broadcaster.GameEnded(r.Code, out.rankings)
		winner := ""
		if len(out.rankings) > 0 {
			winner = out.rankings[0].Name
		}
		lifecycle.GameEnded(context.Background(), r.pub, out.tick,
			logging.EntityRef{ID: r.Code, Kind: logging.EntityKindRoom},
			lifecycle.GameEndedPayload{Players: out.players, Winner: winner})
		r.closeRoom()
	}
}

// advanceLocked is the locked portion of the pass. The deferred unlock also
// runs on a panic mid-pass; the recovery in step relies on the lock being
// free when it takes over.
func (r *Room) advanceLocked(now time.Time, dt float64) (tickOutput, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhasePlaying {
		return tickOutput{}, false
	}
	r.tick++

	commands := r.drainCommandsLocked()
	r.applyScheduledLocked(now)
	r.applyCommandsLocked(commands, now)
	r.sweepStatusesLocked(now)

	for _, id := range r.order {
		p := r.players[id]
		game.ResolveMovement(p, r.archetypes[id], r.tuning, now, dt)
	}
	for _, b := range r.bosses {
		r.moveBossLocked(b, now, dt)
	}

	r.runSpawnersLocked(now)

	for _, b := range r.bosses {
		if now.Sub(b.LastAttack) >= r.tuning.BossAttackInterval {
			r.bossVolleyLocked(b, now)
		}
	}

	r.updateProjectilesLocked(now, dt)
	r.sweepPickupsLocked(now)

	for _, b := range append([]*game.Boss(nil), r.bosses...) {
		if b.Health <= 0 {
			r.bossDeathLocked(b, now)
		}
	}

	r.expirePickupsLocked(now)

	ended := now.Sub(r.startedAt) >= r.tuning.GameDuration
	var rankings []Ranking
	if ended {
		r.phase = PhaseFinished
		rankings = r.rankingsLocked()
	}

	out := tickOutput{
		snap:     r.snapshotLocked(now),
		kills:    r.killEvents,
		shakes:   r.shakeEvents,
		rankings: rankings,
		tick:     r.tick,
		players:  len(r.players),
		ended:    ended,
	}
	r.killEvents = nil
	r.shakeEvents = nil
	return out, true
}

// applyCommandsLocked replays the commands staged since the previous tick.
// Fire-rate, stun, and cooldown gating all happen inside TryFire, so a
// rejected shot is simply absent from this tick's projectile list.
func (r *Room) applyCommandsLocked(commands []Command, now time.Time) {
	for _, cmd := range commands {
		p, ok := r.players[cmd.PlayerID]
		if !ok {
			continue
		}
		switch cmd.Type {
		case CommandShoot:
			arch := r.archetypes[cmd.PlayerID]
			pr, fired := game.TryFire(p, arch, r.tuning, now, cmd.Special, r.rng.Float64)
			if !fired {
				continue
			}
			pr.ID = r.nextIDLocked("shot")
			copied := pr
			r.projectiles = append(r.projectiles, &copied)
		case CommandPickup:
			r.claimPickupLocked(p, cmd.ItemID, now)
		}
	}
}

// claimPickupLocked grants an explicitly claimed item if it still exists and
// the claimant really is in range. Stale ids are a silent no-op.
func (r *Room) claimPickupLocked(p *game.Player, itemID string, now time.Time) {
	for _, pk := range r.pickups {
		if pk.ID != itemID {
			continue
		}
		if !game.WithinRadius(pk.X, pk.Y, p.X, p.Y, r.tuning.PickupRadius) {
			return
		}
		r.applyPickupLocked(p, pk, now)
		r.removePickupLocked(pk)
		return
	}
}

// sweepStatusesLocked drops expired effects and applies poison
// damage-over-time at its sub-interval, credited to the original poisoner.
func (r *Room) sweepStatusesLocked(now time.Time) {
	for _, id := range append([]string(nil), r.order...) {
		p, ok := r.players[id]
		if !ok {
			continue
		}
		for i := range p.Effects {
			eff := &p.Effects[i]
			if eff.Kind != game.StatusPoisoned || now.Before(eff.NextTick) || !now.Before(eff.ExpiresAt) {
				continue
			}
			p.Health = math.Max(0, p.Health-r.tuning.PoisonTickDamage)
			eff.NextTick = now.Add(r.tuning.PoisonTickInterval)
			if p.Health <= 0 {
				// killLocked clears the effect list; the index loop
				// must not touch it again.
				r.killLocked(p, eff.SourceID, "poison", now)
				break
			}
		}
		p.ExpireStatuses(now)
	}
}

func (r *Room) runSpawnersLocked(now time.Time) {
	if now.Sub(r.lastPickupSpawn) >= r.tuning.PickupSpawnInterval {
		r.spawnPickupLocked(now)
		r.lastPickupSpawn = now
	}
	// One encounter at a time: the interval restarts after the previous
	// boss dies or despawns.
	if len(r.bosses) == 0 && now.Sub(r.lastBossSpawn) >= r.tuning.BossSpawnInterval {
		r.spawnBossLocked(now)
		r.lastBossSpawn = now
	}
}

// updateProjectilesLocked advances every live shot. Impacting projectiles
// only count down their linger window and never re-collide. First detected
// collision wins: the projectile freezes in place and resolution runs once.
func (r *Room) updateProjectilesLocked(now time.Time, dt float64) {
	tn := r.tuning
	kept := r.projectiles[:0]
	for _, pr := range r.projectiles {
		if pr.Impacting {
			pr.ImpactFrame++
			if pr.ImpactFrame < tn.ImpactLingerTicks {
				kept = append(kept, pr)
			}
			continue
		}

		pr.X += pr.VX * dt
		pr.Y += pr.VY * dt
		if pr.X < 0 || pr.X > tn.WorldWidth || pr.Y < 0 || pr.Y > tn.WorldHeight {
			continue
		}

		if r.collideProjectileLocked(pr, now) {
			pr.Impacting = true
			pr.ImpactFrame = 0
			pr.VX = 0
			pr.VY = 0
		}
		kept = append(kept, pr)
	}
	r.projectiles = kept
}

// collideProjectileLocked tests one shot against its valid targets: boss
// shots hit any player, player shots hit everyone but the shooter and then
// any boss. Returns whether the shot impacted.
func (r *Room) collideProjectileLocked(pr *game.Projectile, now time.Time) bool {
	for _, id := range r.order {
		target, ok := r.players[id]
		if !ok {
			continue
		}
		if !pr.FromBoss && target.ID == pr.OwnerID {
			continue
		}
		arch, ok := r.archetypes[id]
		if !ok {
			continue
		}
		if !game.WithinRadius(pr.X, pr.Y, target.X, target.Y, arch.Radius()) {
			continue
		}

		result := game.ResolveHit(pr, target, r.tuning, now)
		combatlog.Hit(context.Background(), r.pub, r.tick,
			logging.EntityRef{ID: pr.OwnerID, Kind: hitOwnerKind(pr)},
			logging.EntityRef{ID: target.ID, Kind: logging.EntityKindPlayer},
			combatlog.HitPayload{Damage: result.HealthDamage, Absorbed: result.Absorbed, Element: string(pr.Element), Special: pr.Special})
		if result.Died {
			r.killLocked(target, pr.OwnerID, "shot", now)
		}
		return true
	}

	if !pr.FromBoss {
		for _, b := range r.bosses {
			if b.Health <= 0 {
				continue
			}
			if !game.WithinRadius(pr.X, pr.Y, b.X, b.Y, b.Radius()) {
				continue
			}
			game.ResolveBossHit(pr, b, r.tuning)
			return true
		}
	}
	return false
}

func hitOwnerKind(pr *game.Projectile) logging.EntityKind {
	if pr.FromBoss {
		return logging.EntityKindBoss
	}
	return logging.EntityKindPlayer
}

// killLocked books a death: resolver accounting, kill notification, respawn
// scheduled at the fixed delay. The respawn is revalidated at apply time so
// a player who disconnects during the delay is never resurrected.
func (r *Room) killLocked(victim *game.Player, attackerID, cause string, now time.Time) {
	attacker := r.players[attackerID]
	game.ResolveDeath(victim, attacker)
	victim.ClearStatuses()
	r.scheduleLocked(effectRespawn, victim.ID, now.Add(r.tuning.RespawnDelay), 0)

	notice := KillNotice{VictimID: victim.ID, VictimName: victim.Name, Cause: cause}
	if attacker != nil {
		notice.KillerID = attacker.ID
		notice.KillerName = attacker.Name
	} else {
		notice.KillerID = attackerID
	}
	r.killEvents = append(r.killEvents, notice)
	combatlog.Kill(context.Background(), r.pub, r.tick,
		logging.EntityRef{ID: attackerID, Kind: logging.EntityKindPlayer},
		combatlog.KillPayload{Victim: victim.ID, Cause: cause})
}

// sweepPickupsLocked grants every pickup overlapping a player. First player
// in join order wins a contested item.
func (r *Room) sweepPickupsLocked(now time.Time) {
	if len(r.pickups) == 0 {
		return
	}
	kept := r.pickups[:0]
	for _, pk := range r.pickups {
		claimed := false
		for _, id := range r.order {
			p, ok := r.players[id]
			if !ok {
				continue
			}
			if game.WithinRadius(pk.X, pk.Y, p.X, p.Y, r.tuning.PickupRadius) {
				r.applyPickupLocked(p, pk, now)
				claimed = true
				break
			}
		}
		if !claimed {
			kept = append(kept, pk)
		}
	}
	r.pickups = kept
}

func (r *Room) expirePickupsLocked(now time.Time) {
	kept := r.pickups[:0]
	for _, pk := range r.pickups {
		if now.Before(pk.ExpiresAt) {
			kept = append(kept, pk)
		}
	}
	r.pickups = kept
}
