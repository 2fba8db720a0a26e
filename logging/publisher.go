package logging

import (
	"context"
	"time"
)

type EventType string

type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

type EntityKind string

const (
	EntityKindUnknown    EntityKind = "unknown"
	EntityKindPlayer     EntityKind = "player"
	EntityKindBoss       EntityKind = "boss"
	EntityKindProjectile EntityKind = "projectile"
	EntityKindPickup     EntityKind = "pickup"
	EntityKindRoom       EntityKind = "room"
)

// Event is the structured record every gameplay and lifecycle log becomes.
// Tick is the room simulation tick at publish time.
type Event struct {
	Type     EventType      `json:"type"`
	Tick     uint64         `json:"tick"`
	Time     time.Time      `json:"time"`
	Room     string         `json:"room,omitempty"`
	Actor    EntityRef      `json:"actor"`
	Targets  []EntityRef    `json:"targets,omitempty"`
	Severity Severity       `json:"severity"`
	Category string         `json:"category,omitempty"`
	Payload  any            `json:"payload,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

type EntityRef struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"kind"`
}

const (
	CategoryLifecycle = "lifecycle"
	CategoryCombat    = "combat"
	CategorySystem    = "system"
)

type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type PublisherFunc func(ctx context.Context, event Event)

func (f PublisherFunc) Publish(ctx context.Context, event Event) {
	if f == nil {
		return
	}
	f(ctx, event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}

// NopPublisher returns a publisher that discards everything. Tests and
// detached rooms use it instead of nil checks at every call site.
func NopPublisher() Publisher {
	return nopPublisher{}
}

// WithRoom returns a publisher that stamps the room code onto every event
// that does not already carry one.
func WithRoom(p Publisher, room string) Publisher {
	if p == nil {
		return NopPublisher()
	}
	if room == "" {
		return p
	}
	return PublisherFunc(func(ctx context.Context, event Event) {
		if event.Room == "" {
			event.Room = room
		}
		p.Publish(ctx, event)
	})
}
