package game

import "time"

// MoveIntent is the latest joystick vector reported by a client. Magnitude is
// clamped to [0, 1] before it reaches the resolver.
type MoveIntent struct {
	Angle     float64
	Magnitude float64
}

// Player is the authoritative per-player record owned by exactly one room.
// Fields tagged "-" are server-side bookkeeping that never leaves the process.
type Player struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ArchetypeID int            `json:"characterType"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	VX          float64        `json:"vx"`
	VY          float64        `json:"vy"`
	FacingLeft  bool           `json:"facingLeft"`
	Health      float64        `json:"health"`
	MaxHealth   float64        `json:"maxHealth"`
	Armor       float64        `json:"armor"`
	MaxArmor    float64        `json:"maxArmor"`
	Kills       int            `json:"kills"`
	Deaths      int            `json:"deaths"`
	Effects     []StatusEffect `json:"statusEffects"`

	Intent     MoveIntent `json:"-"`
	SpeedBoost float64    `json:"-"`
	LastShot   time.Time  `json:"-"`
	LastSkill  time.Time  `json:"-"`
}

// NewPlayer builds a player with full health and the kit's armor ceiling.
func NewPlayer(id, name string, arch Archetype, x, y float64) *Player {
	return &Player{
		ID:          id,
		Name:        name,
		ArchetypeID: arch.ID,
		X:           x,
		Y:           y,
		Health:      arch.MaxHealth,
		MaxHealth:   arch.MaxHealth,
		MaxArmor:    arch.MaxArmor,
		Effects:     make([]StatusEffect, 0),
		SpeedBoost:  1,
	}
}

// ProjectileKind distinguishes the rendering species of a projectile.
type ProjectileKind string

const (
	ProjectilePlayer ProjectileKind = "player"
	ProjectileBoss   ProjectileKind = "boss"
	ProjectileLaser  ProjectileKind = "laser"
)

// Projectile is a live shot. Damage is the flat base amount; elemental and
// special multipliers are applied at hit resolution time.
type Projectile struct {
	ID          string         `json:"id"`
	OwnerID     string         `json:"ownerId"`
	Kind        ProjectileKind `json:"kind"`
	ArchetypeID int            `json:"characterType"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	VX          float64        `json:"vx"`
	VY          float64        `json:"vy"`
	Damage      float64        `json:"damage"`
	Element     SkillType      `json:"element,omitempty"`
	Special     bool           `json:"special,omitempty"`
	Impacting   bool           `json:"impacting"`
	ImpactFrame int            `json:"impactFrame"`
	FromBoss    bool           `json:"fromBoss,omitempty"`
}

// PickupKind enumerates what a ground item grants on contact.
type PickupKind string

const (
	PickupHealth PickupKind = "health"
	PickupArmor  PickupKind = "armor"
	PickupSpeed  PickupKind = "speed"
)

// PickupKinds lists the spawnable kinds in roll order.
var PickupKinds = []PickupKind{PickupHealth, PickupArmor, PickupSpeed}

// Pickup is a ground item. Boss loot carries a shorter expiry than the
// periodic spawner's drops.
type Pickup struct {
	ID        string     `json:"id"`
	Kind      PickupKind `json:"kind"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	BossLoot  bool       `json:"bossLoot,omitempty"`
	SpawnedAt time.Time  `json:"-"`
	ExpiresAt time.Time  `json:"-"`
}

// Boss is the periodic high-health encounter. It wanders between random
// target points and fires volleys on a fixed interval.
type Boss struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VX        float64 `json:"vx"`
	VY        float64 `json:"vy"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
	Size      float64 `json:"size"`

	TargetX    float64   `json:"-"`
	TargetY    float64   `json:"-"`
	RetargetAt time.Time `json:"-"`
	LastAttack time.Time `json:"-"`
	LastHitBy  string    `json:"-"`
}

// Radius returns the boss collision radius.
func (b *Boss) Radius() float64 {
	return b.Size / 2
}
