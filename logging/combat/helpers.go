package combat

import (
	"context"

	"blast-arena/server/logging"
)

const (
	// EventHit is emitted when a projectile damages a player or the boss.
	EventHit logging.EventType = "combat.hit"
	// EventKill is emitted when a player dies.
	EventKill logging.EventType = "combat.kill"
	// EventBossSpawned is emitted when a boss enters the arena.
	EventBossSpawned logging.EventType = "combat.boss_spawned"
	// EventBossDefeated is emitted when a boss is destroyed.
	EventBossDefeated logging.EventType = "combat.boss_defeated"
)

// HitPayload describes a resolved projectile impact.
type HitPayload struct {
	Damage   float64 `json:"damage"`
	Absorbed float64 `json:"absorbed"`
	Element  string  `json:"element,omitempty"`
	Special  bool    `json:"special,omitempty"`
}

// KillPayload describes a confirmed elimination.
type KillPayload struct {
	Victim string `json:"victim"`
	Cause  string `json:"cause"`
}

// BossDefeatedPayload credits the killing blow and loot burst.
type BossDefeatedPayload struct {
	KilledBy string `json:"killedBy"`
	Loot     int    `json:"loot"`
}

func emit(ctx context.Context, pub logging.Publisher, eventType logging.EventType, tick uint64, actor logging.EntityRef, targets []logging.EntityRef, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Targets:  targets,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// Hit publishes a projectile impact event.
func Hit(ctx context.Context, pub logging.Publisher, tick uint64, attacker, target logging.EntityRef, payload HitPayload) {
	emit(ctx, pub, EventHit, tick, attacker, []logging.EntityRef{target}, payload)
}

// Kill publishes an elimination event.
func Kill(ctx context.Context, pub logging.Publisher, tick uint64, attacker logging.EntityRef, payload KillPayload) {
	emit(ctx, pub, EventKill, tick, attacker, nil, payload)
}

// BossSpawned publishes a boss arrival event.
func BossSpawned(ctx context.Context, pub logging.Publisher, tick uint64, boss logging.EntityRef) {
	emit(ctx, pub, EventBossSpawned, tick, boss, nil, nil)
}

// BossDefeated publishes a boss death event.
func BossDefeated(ctx context.Context, pub logging.Publisher, tick uint64, boss logging.EntityRef, payload BossDefeatedPayload) {
	emit(ctx, pub, EventBossDefeated, tick, boss, nil, payload)
}
