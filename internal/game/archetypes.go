package game

import "time"

// SkillType identifies the elemental tag an archetype's skill applies.
type SkillType string

const (
	SkillPoison   SkillType = "poison"
	SkillElectric SkillType = "electric"
	SkillFire     SkillType = "fire"
	SkillIce      SkillType = "ice"
)

// Archetype bundles the fixed kit a player picks at join time. Speed is in
// world units per tick; Size is the sprite diameter used for collision.
type Archetype struct {
	ID            int           `json:"id"`
	Name          string        `json:"name"`
	Speed         float64       `json:"speed"`
	Damage        float64       `json:"damage"`
	FireRate      time.Duration `json:"-"`
	Size          float64       `json:"size"`
	MaxHealth     float64       `json:"maxHealth"`
	MaxArmor      float64       `json:"maxArmor"`
	SkillType     SkillType     `json:"skillType"`
	SkillChance   float64       `json:"skillChance"`
	SkillCooldown time.Duration `json:"-"`
}

// Radius returns the collision radius used by the circular overlap tests.
func (a Archetype) Radius() float64 {
	return a.Size / 2
}

var archetypes = []Archetype{
	{
		ID:            0,
		Name:          "venom",
		Speed:         11,
		Damage:        22,
		FireRate:      400 * time.Millisecond,
		Size:          60,
		MaxHealth:     110,
		MaxArmor:      50,
		SkillType:     SkillPoison,
		SkillChance:   0.15,
		SkillCooldown: 20 * time.Second,
	},
	{
		ID:            1,
		Name:          "volt",
		Speed:         13,
		Damage:        18,
		FireRate:      300 * time.Millisecond,
		Size:          70,
		MaxHealth:     95,
		MaxArmor:      50,
		SkillType:     SkillElectric,
		SkillChance:   0.20,
		SkillCooldown: 20 * time.Second,
	},
	{
		ID:            2,
		Name:          "ember",
		Speed:         9,
		Damage:        28,
		FireRate:      600 * time.Millisecond,
		Size:          65,
		MaxHealth:     125,
		MaxArmor:      50,
		SkillType:     SkillFire,
		SkillChance:   0.10,
		SkillCooldown: 20 * time.Second,
	},
	{
		ID:            3,
		Name:          "frost",
		Speed:         11.6,
		Damage:        24,
		FireRate:      450 * time.Millisecond,
		Size:          65,
		MaxHealth:     105,
		MaxArmor:      50,
		SkillType:     SkillIce,
		SkillChance:   0.18,
		SkillCooldown: 20 * time.Second,
	},
}

// ArchetypeCount reports how many kits are selectable.
func ArchetypeCount() int {
	return len(archetypes)
}

// ArchetypeByID returns the kit for the given index.
func ArchetypeByID(id int) (Archetype, bool) {
	if id < 0 || id >= len(archetypes) {
		return Archetype{}, false
	}
	return archetypes[id], true
}
