package game

import "time"

// Tuning collects every gameplay constant the simulation reads. Speeds are in
// world units per tick; durations are wall-clock. Rooms copy a normalized
// Tuning at creation, so changing defaults never affects a running match.
type Tuning struct {
	WorldWidth  float64 `json:"worldWidth"`
	WorldHeight float64 `json:"worldHeight"`
	MaxPlayers  int     `json:"maxPlayers"`
	MinPlayers  int     `json:"minPlayers"`
	SpawnInset  float64 `json:"spawnInset"`

	GameDuration        time.Duration `json:"-"`
	RespawnDelay        time.Duration `json:"-"`
	PickupSpawnInterval time.Duration `json:"-"`
	BossSpawnInterval   time.Duration `json:"-"`

	// Movement.
	Friction    float64 `json:"friction"`
	StopEpsilon float64 `json:"stopEpsilon"`

	// Firing.
	ProjectileSpeed   float64 `json:"projectileSpeed"`
	MuzzleOffset      float64 `json:"muzzleOffset"`
	ImpactLingerTicks int     `json:"impactLingerTicks"`

	// Damage resolution.
	ArmorAbsorb           float64       `json:"armorAbsorb"`
	FireMultiplier        float64       `json:"fireMultiplier"`
	SpecialFireMultiplier float64       `json:"specialFireMultiplier"`
	SpecialMultiplier     float64       `json:"specialMultiplier"`
	StatusDuration        time.Duration `json:"-"`
	SpecialStatusDuration time.Duration `json:"-"`
	PoisonTickDamage      float64       `json:"poisonTickDamage"`
	PoisonTickInterval    time.Duration `json:"-"`

	// Pickups.
	PickupRadius       float64       `json:"pickupRadius"`
	HealAmount         float64       `json:"healAmount"`
	ArmorAmount        float64       `json:"armorAmount"`
	SpeedBoostFactor   float64       `json:"speedBoostFactor"`
	SpeedBoostDuration time.Duration `json:"-"`
	PickupTTL          time.Duration `json:"-"`
	BossLootTTL        time.Duration `json:"-"`

	// Boss encounter.
	BossHealth         float64       `json:"bossHealth"`
	BossSize           float64       `json:"bossSize"`
	BossSpeed          float64       `json:"bossSpeed"`
	BossBoundsInset    float64       `json:"bossBoundsInset"`
	BossAttackInterval time.Duration `json:"-"`
	BossRetargetMin    time.Duration `json:"-"`
	BossRetargetMax    time.Duration `json:"-"`
	BossBulletSpeed    float64       `json:"bossBulletSpeed"`
	BossBulletDamage   float64       `json:"bossBulletDamage"`
	BossLaserSpeed     float64       `json:"bossLaserSpeed"`
	BossLaserDamage    float64       `json:"bossLaserDamage"`
	BossKillBonus      int           `json:"bossKillBonus"`
	BossLootMin        int           `json:"bossLootMin"`
	BossLootMax        int           `json:"bossLootMax"`
	BossLootRadiusMin  float64       `json:"bossLootRadiusMin"`
	BossLootRadiusMax  float64       `json:"bossLootRadiusMax"`
}

// DefaultTuning returns the shipped configuration.
func DefaultTuning() Tuning {
	return Tuning{
		WorldWidth:  3000,
		WorldHeight: 2000,
		MaxPlayers:  8,
		MinPlayers:  2,
		SpawnInset:  100,

		GameDuration:        10 * time.Minute,
		RespawnDelay:        3 * time.Second,
		PickupSpawnInterval: 10 * time.Second,
		BossSpawnInterval:   2 * time.Minute,

		Friction:    0.85,
		StopEpsilon: 0.1,

		ProjectileSpeed:   12,
		MuzzleOffset:      30,
		ImpactLingerTicks: 15,

		ArmorAbsorb:           0.7,
		FireMultiplier:        2,
		SpecialFireMultiplier: 3,
		SpecialMultiplier:     1.5,
		StatusDuration:        2 * time.Second,
		SpecialStatusDuration: 3 * time.Second,
		PoisonTickDamage:      5,
		PoisonTickInterval:    500 * time.Millisecond,

		PickupRadius:       40,
		HealAmount:         30,
		ArmorAmount:        25,
		SpeedBoostFactor:   1.5,
		SpeedBoostDuration: 10 * time.Second,
		PickupTTL:          30 * time.Second,
		BossLootTTL:        5 * time.Second,

		BossHealth:         2200,
		BossSize:           120,
		BossSpeed:          2,
		BossBoundsInset:    100,
		BossAttackInterval: 5 * time.Second,
		BossRetargetMin:    3 * time.Second,
		BossRetargetMax:    8 * time.Second,
		BossBulletSpeed:    10,
		BossBulletDamage:   30,
		BossLaserSpeed:     15,
		BossLaserDamage:    45,
		BossKillBonus:      5,
		BossLootMin:        8,
		BossLootMax:        12,
		BossLootRadiusMin:  60,
		BossLootRadiusMax:  100,
	}
}

// Normalized clamps nonsensical values back to usable ones so a partially
// populated Tuning cannot wedge a room.
func (t Tuning) Normalized() Tuning {
	n := t
	def := DefaultTuning()
	if n.WorldWidth <= 0 {
		n.WorldWidth = def.WorldWidth
	}
	if n.WorldHeight <= 0 {
		n.WorldHeight = def.WorldHeight
	}
	if n.MaxPlayers <= 0 {
		n.MaxPlayers = def.MaxPlayers
	}
	if n.MinPlayers < 2 {
		n.MinPlayers = def.MinPlayers
	}
	if n.GameDuration <= 0 {
		n.GameDuration = def.GameDuration
	}
	if n.RespawnDelay <= 0 {
		n.RespawnDelay = def.RespawnDelay
	}
	if n.Friction <= 0 || n.Friction >= 1 {
		n.Friction = def.Friction
	}
	if n.StopEpsilon <= 0 {
		n.StopEpsilon = def.StopEpsilon
	}
	if n.ArmorAbsorb < 0 || n.ArmorAbsorb > 1 {
		n.ArmorAbsorb = def.ArmorAbsorb
	}
	if n.ImpactLingerTicks <= 0 {
		n.ImpactLingerTicks = def.ImpactLingerTicks
	}
	if n.BossLootMax < n.BossLootMin {
		n.BossLootMax = n.BossLootMin
	}
	if n.BossRetargetMax < n.BossRetargetMin {
		n.BossRetargetMax = n.BossRetargetMin
	}
	return n
}
