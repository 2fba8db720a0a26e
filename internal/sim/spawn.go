package sim

import (
	"fmt"
	"math"
	"time"

	"blast-arena/server/internal/game"
)

// randomSpawnLocked picks a player position inside the spawn inset.
func (r *Room) randomSpawnLocked() (float64, float64) {
	tn := r.tuning
	x := tn.SpawnInset + r.rng.Float64()*(tn.WorldWidth-2*tn.SpawnInset)
	y := tn.SpawnInset + r.rng.Float64()*(tn.WorldHeight-2*tn.SpawnInset)
	return x, y
}

func (r *Room) nextIDLocked(prefix string) string {
	r.nextEntity++
	return fmt.Sprintf("%s-%d", prefix, r.nextEntity)
}

// spawnPickupLocked drops one pickup of a uniformly random kind at a random
// in-bounds position.
func (r *Room) spawnPickupLocked(now time.Time) {
	x, y := r.randomSpawnLocked()
	kind := game.PickupKinds[r.rng.Intn(len(game.PickupKinds))]
	r.pickups = append(r.pickups, &game.Pickup{
		ID:        r.nextIDLocked("item"),
		Kind:      kind,
		X:         x,
		Y:         y,
		SpawnedAt: now,
		ExpiresAt: now.Add(r.tuning.PickupTTL),
	})
}

// lootBurstLocked rings boss loot around the boss's final position. Loot
// expires faster than spawner drops so a dead boss does not carpet the arena.
func (r *Room) lootBurstLocked(boss *game.Boss, now time.Time) int {
	tn := r.tuning
	count := tn.BossLootMin
	if span := tn.BossLootMax - tn.BossLootMin; span > 0 {
		count += r.rng.Intn(span + 1)
	}
	for i := 0; i < count; i++ {
		angle := 2 * math.Pi * float64(i) / float64(count)
		radius := tn.BossLootRadiusMin + r.rng.Float64()*(tn.BossLootRadiusMax-tn.BossLootRadiusMin)
		kind := game.PickupKinds[r.rng.Intn(len(game.PickupKinds))]
		r.pickups = append(r.pickups, &game.Pickup{
			ID:        r.nextIDLocked("item"),
			Kind:      kind,
			X:         game.Clamp(boss.X+math.Cos(angle)*radius, 0, tn.WorldWidth),
			Y:         game.Clamp(boss.Y+math.Sin(angle)*radius, 0, tn.WorldHeight),
			BossLoot:  true,
			SpawnedAt: now,
			ExpiresAt: now.Add(tn.BossLootTTL),
		})
	}
	return count
}

// applyPickupLocked grants a ground item to the player and removes nothing;
// the caller owns removal. Heal and armor cap at the kit maxima; speed sets
// the boost multiplier and schedules its expiry, superseding any earlier
// boost still pending.
func (r *Room) applyPickupLocked(p *game.Player, pk *game.Pickup, now time.Time) {
	tn := r.tuning
	switch pk.Kind {
	case game.PickupHealth:
		p.Health = math.Min(p.MaxHealth, p.Health+tn.HealAmount)
	case game.PickupArmor:
		p.Armor = math.Min(p.MaxArmor, p.Armor+tn.ArmorAmount)
	case game.PickupSpeed:
		p.SpeedBoost = tn.SpeedBoostFactor
		r.boostSeq[p.ID]++
		r.scheduleLocked(effectSpeedExpiry, p.ID, now.Add(tn.SpeedBoostDuration), r.boostSeq[p.ID])
	}
}

// removePickupLocked deletes one pickup by identity.
func (r *Room) removePickupLocked(target *game.Pickup) {
	for i, pk := range r.pickups {
		if pk == target {
			r.pickups = append(r.pickups[:i], r.pickups[i+1:]...)
			return
		}
	}
}
