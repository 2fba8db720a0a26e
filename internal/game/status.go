package game

import "time"

// StatusKind identifies a timed status modifier on a player.
type StatusKind string

const (
	StatusPoisoned StatusKind = "poisoned"
	StatusStunned  StatusKind = "stunned"
	StatusFrozen   StatusKind = "frozen"
)

// StatusEffect is a timed modifier attached to exactly one player. SourceID
// keeps crediting the original attacker for poison ticks. NextTick schedules
// the damage-over-time sub-interval and is only meaningful for poison.
type StatusEffect struct {
	Kind      StatusKind `json:"kind"`
	ExpiresIn int64      `json:"expiresInMs"`
	ExpiresAt time.Time  `json:"-"`
	SourceID  string     `json:"-"`
	NextTick  time.Time  `json:"-"`
}

// StatusForElement maps an elemental tag to the status it inflicts. Fire has
// no status; it multiplies damage instead.
func StatusForElement(element SkillType) (StatusKind, bool) {
	switch element {
	case SkillPoison:
		return StatusPoisoned, true
	case SkillElectric:
		return StatusStunned, true
	case SkillIce:
		return StatusFrozen, true
	default:
		return "", false
	}
}

// ApplyStatus attaches the effect to the player, refreshing expiry and source
// attribution if one of the same kind is already active. Duration never
// stacks.
func ApplyStatus(p *Player, kind StatusKind, sourceID string, duration, tickInterval time.Duration, now time.Time) {
	if p == nil || kind == "" || duration <= 0 {
		return
	}
	expires := now.Add(duration)
	for i := range p.Effects {
		if p.Effects[i].Kind != kind {
			continue
		}
		p.Effects[i].ExpiresAt = expires
		p.Effects[i].SourceID = sourceID
		return
	}
	eff := StatusEffect{Kind: kind, ExpiresAt: expires, SourceID: sourceID}
	if kind == StatusPoisoned && tickInterval > 0 {
		eff.NextTick = now.Add(tickInterval)
	}
	p.Effects = append(p.Effects, eff)
}

// HasStatus reports whether an effect of the given kind is active at now.
func (p *Player) HasStatus(kind StatusKind, now time.Time) bool {
	for i := range p.Effects {
		if p.Effects[i].Kind == kind && now.Before(p.Effects[i].ExpiresAt) {
			return true
		}
	}
	return false
}

// ExpireStatuses drops effects whose expiry has passed. It keeps the slice
// allocation when nothing expired.
func (p *Player) ExpireStatuses(now time.Time) {
	kept := p.Effects[:0]
	for _, eff := range p.Effects {
		if now.Before(eff.ExpiresAt) {
			kept = append(kept, eff)
		}
	}
	p.Effects = kept
}

// ClearStatuses removes every active effect, e.g. on respawn.
func (p *Player) ClearStatuses() {
	p.Effects = p.Effects[:0]
}
