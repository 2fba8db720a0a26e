package sim

import (
	"context"
	"time"

	"blast-arena/server/internal/game"
	"blast-arena/server/logging"
	combatlog "blast-arena/server/logging/combat"
)

// Camera shake envelopes for the boss encounter beats.
var (
	shakeBossSpawn  = Shake{Intensity: 15, DurationMs: 800}
	shakeBossVolley = Shake{Intensity: 10, DurationMs: 500}
	shakeBossDeath  = Shake{Intensity: 20, DurationMs: 1000}
)

// spawnBossLocked drops a fresh boss at a random wander point and announces
// it with a camera shake.
func (r *Room) spawnBossLocked(now time.Time) {
	tn := r.tuning
	boss := &game.Boss{
		ID:        r.nextIDLocked("boss"),
		Health:    tn.BossHealth,
		MaxHealth: tn.BossHealth,
		Size:      tn.BossSize,
	}
	boss.X, boss.Y = r.randomBossPointLocked()
	boss.TargetX, boss.TargetY = r.randomBossPointLocked()
	boss.RetargetAt = r.nextRetargetLocked(now)
	boss.LastAttack = now
	r.bosses = append(r.bosses, boss)

	r.shakeEvents = append(r.shakeEvents, shakeBossSpawn)
	combatlog.BossSpawned(context.Background(), r.pub, r.tick, logging.EntityRef{ID: boss.ID, Kind: logging.EntityKindBoss})
}

func (r *Room) randomBossPointLocked() (float64, float64) {
	tn := r.tuning
	inset := tn.BossBoundsInset
	x := inset + r.rng.Float64()*(tn.WorldWidth-2*inset)
	y := inset + r.rng.Float64()*(tn.WorldHeight-2*inset)
	return x, y
}

func (r *Room) nextRetargetLocked(now time.Time) time.Time {
	tn := r.tuning
	span := tn.BossRetargetMax - tn.BossRetargetMin
	delay := tn.BossRetargetMin
	if span > 0 {
		delay += time.Duration(r.rng.Int63n(int64(span)))
	}
	return now.Add(delay)
}

// moveBossLocked advances the wander: steer at cruise speed toward the
// current target, bleed velocity off near arrival, and pick a new target
// once the retarget timer lapses or the boss gets there.
func (r *Room) moveBossLocked(b *game.Boss, now time.Time, dt float64) {
	tn := r.tuning
	dist := game.Distance(b.X, b.Y, b.TargetX, b.TargetY)
	if !now.Before(b.RetargetAt) || dist < tn.BossSpeed {
		b.TargetX, b.TargetY = r.randomBossPointLocked()
		b.RetargetAt = r.nextRetargetLocked(now)
		dist = game.Distance(b.X, b.Y, b.TargetX, b.TargetY)
	}

	// Decelerate inside two body lengths so the boss settles instead of
	// orbiting its target.
	if dist > b.Size*2 {
		b.VX = (b.TargetX - b.X) / dist * tn.BossSpeed
		b.VY = (b.TargetY - b.Y) / dist * tn.BossSpeed
	} else if dist > 0 {
		scale := dist / (b.Size * 2)
		b.VX = (b.TargetX - b.X) / dist * tn.BossSpeed * scale
		b.VY = (b.TargetY - b.Y) / dist * tn.BossSpeed * scale
	} else {
		b.VX = 0
		b.VY = 0
	}

	b.X += b.VX * dt
	b.Y += b.VY * dt
	inset := tn.BossBoundsInset
	b.X = game.Clamp(b.X, inset, tn.WorldWidth-inset)
	b.Y = game.Clamp(b.Y, inset, tn.WorldHeight-inset)
}

// Compass unit vectors for the volley pattern.
var volleyDirections = [][2]float64{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

// bossVolleyLocked fires the attack pattern: every compass direction gets a
// bullet and a faster laser, and observers get a camera shake.
func (r *Room) bossVolleyLocked(b *game.Boss, now time.Time) {
	tn := r.tuning
	for _, dir := range volleyDirections {
		r.projectiles = append(r.projectiles, &game.Projectile{
			ID:       r.nextIDLocked("shot"),
			OwnerID:  b.ID,
			Kind:     game.ProjectileBoss,
			X:        b.X,
			Y:        b.Y,
			VX:       dir[0] * tn.BossBulletSpeed,
			VY:       dir[1] * tn.BossBulletSpeed,
			Damage:   tn.BossBulletDamage,
			FromBoss: true,
		})
		r.projectiles = append(r.projectiles, &game.Projectile{
			ID:       r.nextIDLocked("shot"),
			OwnerID:  b.ID,
			Kind:     game.ProjectileLaser,
			X:        b.X,
			Y:        b.Y,
			VX:       dir[0] * tn.BossLaserSpeed,
			VY:       dir[1] * tn.BossLaserSpeed,
			Damage:   tn.BossLaserDamage,
			FromBoss: true,
		})
	}
	b.LastAttack = now
	r.shakeEvents = append(r.shakeEvents, shakeBossVolley)
}

// bossDeathLocked removes a destroyed boss, bursts its loot ring, credits
// the last hitter with the kill bonus, and signals the strong shake.
func (r *Room) bossDeathLocked(b *game.Boss, now time.Time) {
	loot := r.lootBurstLocked(b, now)
	if killer, ok := r.players[b.LastHitBy]; ok {
		killer.Kills += r.tuning.BossKillBonus
	}
	for i, alive := range r.bosses {
		if alive == b {
			r.bosses = append(r.bosses[:i], r.bosses[i+1:]...)
			break
		}
	}
	r.shakeEvents = append(r.shakeEvents, shakeBossDeath)
	combatlog.BossDefeated(context.Background(), r.pub, r.tick,
		logging.EntityRef{ID: b.ID, Kind: logging.EntityKindBoss},
		combatlog.BossDefeatedPayload{KilledBy: b.LastHitBy, Loot: loot})
}
