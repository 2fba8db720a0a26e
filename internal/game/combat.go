package game

import (
	"math"
	"time"
)

// ResolveMovement advances one player by dt ticks. A frozen player is pinned
// in place. With no joystick intent, velocity decays by exponential friction
// and snaps to zero below the stop epsilon so idle players do not drift.
func ResolveMovement(p *Player, arch Archetype, tn Tuning, now time.Time, dt float64) {
	if p == nil || dt <= 0 {
		return
	}
	if p.HasStatus(StatusFrozen, now) {
		p.VX = 0
		p.VY = 0
		return
	}

	if p.Intent.Magnitude > 0 {
		mag := Clamp(p.Intent.Magnitude, 0, 1)
		boost := p.SpeedBoost
		if boost <= 0 {
			boost = 1
		}
		speed := arch.Speed * boost
		p.VX = math.Cos(p.Intent.Angle) * mag * speed
		p.VY = math.Sin(p.Intent.Angle) * mag * speed

		if p.VX < -0.5 {
			p.FacingLeft = true
		} else if p.VX > 0.5 {
			p.FacingLeft = false
		}
	} else {
		decay := math.Pow(tn.Friction, dt)
		p.VX *= decay
		p.VY *= decay
		if math.Abs(p.VX) < tn.StopEpsilon {
			p.VX = 0
		}
		if math.Abs(p.VY) < tn.StopEpsilon {
			p.VY = 0
		}
	}

	p.X += p.VX * dt
	p.Y += p.VY * dt

	half := arch.Radius()
	p.X = Clamp(p.X, half, tn.WorldWidth-half)
	p.Y = Clamp(p.Y, half, tn.WorldHeight-half)
}

// TryFire attempts a shot at now. It is a no-op while stunned, before the
// fire-rate interval has elapsed, or (for special shots) while the skill is
// on cooldown. Cooldown timestamps move only on success.
//
// Elemental tagging follows two distinct paths: a special shot always
// carries the archetype's skill element and consumes the skill cooldown; a
// normal shot rolls the archetype's skill chance, and only once the cooldown
// has elapsed. roll supplies the [0,1) random sample so callers stay
// deterministic in tests.
func TryFire(p *Player, arch Archetype, tn Tuning, now time.Time, special bool, roll func() float64) (Projectile, bool) {
	if p == nil {
		return Projectile{}, false
	}
	if p.HasStatus(StatusStunned, now) {
		return Projectile{}, false
	}
	if !p.LastShot.IsZero() && now.Sub(p.LastShot) < arch.FireRate {
		return Projectile{}, false
	}

	skillReady := p.LastSkill.IsZero() || now.Sub(p.LastSkill) >= arch.SkillCooldown

	var element SkillType
	if special {
		if !skillReady {
			return Projectile{}, false
		}
		element = arch.SkillType
		p.LastSkill = now
	} else if skillReady && roll != nil && roll() < arch.SkillChance {
		element = arch.SkillType
		p.LastSkill = now
	}

	p.LastShot = now

	dir := 1.0
	if p.FacingLeft {
		dir = -1
	}
	return Projectile{
		OwnerID:     p.ID,
		Kind:        ProjectilePlayer,
		ArchetypeID: arch.ID,
		X:           p.X + dir*tn.MuzzleOffset,
		Y:           p.Y,
		VX:          dir * tn.ProjectileSpeed,
		Damage:      arch.Damage,
		Element:     element,
		Special:     special,
	}, true
}

// HitResult reports what a projectile impact did to its target.
type HitResult struct {
	HealthDamage float64
	Absorbed     float64
	Status       StatusKind
	Died         bool
}

// HitMultiplier returns the damage multiplier for the projectile's elemental
// tag. Fire doubles normal hits and applies the configured special
// multiplier on skill shots; other elements only scale special hits.
func HitMultiplier(element SkillType, special bool, tn Tuning) float64 {
	switch {
	case element == SkillFire && special:
		return tn.SpecialFireMultiplier
	case element == SkillFire:
		return tn.FireMultiplier
	case element != "" && special:
		return tn.SpecialMultiplier
	default:
		return 1
	}
}

// ResolveHit applies a projectile impact to a player: elemental multiplier,
// armor mitigation capped at current armor, then health reduction floored at
// zero, then status application for non-fire elements. Returns whether the
// target died from this hit.
func ResolveHit(pr *Projectile, target *Player, tn Tuning, now time.Time) HitResult {
	result := HitResult{}
	if pr == nil || target == nil {
		return result
	}

	damage := pr.Damage * HitMultiplier(pr.Element, pr.Special, tn)

	if target.Armor > 0 {
		absorbed := math.Min(target.Armor, damage*tn.ArmorAbsorb)
		target.Armor -= absorbed
		damage -= absorbed
		result.Absorbed = absorbed
	}

	target.Health = math.Max(0, target.Health-damage)
	result.HealthDamage = damage

	if kind, ok := StatusForElement(pr.Element); ok {
		duration := tn.StatusDuration
		if pr.Special {
			duration = tn.SpecialStatusDuration
		}
		ApplyStatus(target, kind, pr.OwnerID, duration, tn.PoisonTickInterval, now)
		result.Status = kind
	}

	result.Died = target.Health <= 0
	return result
}

// ResolveBossHit applies a player projectile to a boss. Bosses have no armor
// and shrug off status effects; only the damage multiplier applies. Returns
// whether the boss was destroyed.
func ResolveBossHit(pr *Projectile, boss *Boss, tn Tuning) bool {
	if pr == nil || boss == nil {
		return false
	}
	boss.Health -= pr.Damage * HitMultiplier(pr.Element, pr.Special, tn)
	boss.LastHitBy = pr.OwnerID
	return boss.Health <= 0
}

// ResolveDeath books a lethal hit: victim deaths increment, the attacker is
// credited unless it was self-inflicted, and the victim's pools reset so the
// record never leaves the health invariant. Position re-randomization and
// status clearing belong to the deferred respawn, which the room schedules.
func ResolveDeath(victim, attacker *Player) {
	if victim == nil {
		return
	}
	victim.Deaths++
	if attacker != nil && attacker.ID != victim.ID {
		attacker.Kills++
	}
	victim.Health = victim.MaxHealth
	victim.Armor = 0
}
