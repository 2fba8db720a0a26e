package sim

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"blast-arena/server/internal/game"
)

const testTickInterval = time.Second / 30

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type recordingBroadcaster struct {
	mu        sync.Mutex
	snapshots []Snapshot
	kills     []KillNotice
	shakes    []Shake
	rankings  [][]Ranking
	started   int
	updates   int
}

func (b *recordingBroadcaster) RoomUpdate(string, []RosterEntry, string) {
	b.mu.Lock()
	b.updates++
	b.mu.Unlock()
}

func (b *recordingBroadcaster) GameStarted(string) {
	b.mu.Lock()
	b.started++
	b.mu.Unlock()
}

func (b *recordingBroadcaster) Snapshot(_ string, snap Snapshot) {
	b.mu.Lock()
	b.snapshots = append(b.snapshots, snap)
	b.mu.Unlock()
}

func (b *recordingBroadcaster) GameEnded(_ string, rankings []Ranking) {
	b.mu.Lock()
	b.rankings = append(b.rankings, rankings)
	b.mu.Unlock()
}

func (b *recordingBroadcaster) PlayerKilled(_ string, notice KillNotice) {
	b.mu.Lock()
	b.kills = append(b.kills, notice)
	b.mu.Unlock()
}

func (b *recordingBroadcaster) CameraShake(_ string, shake Shake) {
	b.mu.Lock()
	b.shakes = append(b.shakes, shake)
	b.mu.Unlock()
}

func (b *recordingBroadcaster) latest(t *testing.T) Snapshot {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.snapshots) == 0 {
		t.Fatalf("no snapshot was broadcast")
	}
	return b.snapshots[len(b.snapshots)-1]
}

func newTestRoom(t *testing.T) (*Room, *fakeClock, *recordingBroadcaster) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	rec := &recordingBroadcaster{}
	room := NewRoom("ROOM42", RoomConfig{
		Tuning:      game.DefaultTuning(),
		Seed:        1,
		Clock:       clock,
		Broadcaster: rec,
	})
	return room, clock, rec
}

func startedRoom(t *testing.T) (*Room, *fakeClock, *recordingBroadcaster) {
	t.Helper()
	room, clock, rec := newTestRoom(t)
	if err := room.Join("p1", "alice", 0); err != nil {
		t.Fatalf("join p1: %v", err)
	}
	if err := room.Join("p2", "bob", 0); err != nil {
		t.Fatalf("join p2: %v", err)
	}
	if err := room.StartGame("p1"); err != nil {
		t.Fatalf("start game: %v", err)
	}
	return room, clock, rec
}

// place pins two players at known positions and disarms p1's skill proc so
// a normal shot stays untagged.
func place(room *Room, now time.Time) {
	room.mu.Lock()
	p1 := room.players["p1"]
	p1.X, p1.Y = 500, 500
	p1.FacingLeft = false
	p1.LastSkill = now
	p2 := room.players["p2"]
	p2.X, p2.Y = 560, 500
	p2.LastSkill = now
	room.mu.Unlock()
}

func advance(room *Room, clock *fakeClock, steps int) {
	for i := 0; i < steps; i++ {
		clock.set(clock.Now().Add(testTickInterval))
		room.Advance(clock.Now(), 1)
	}
}

func TestShotImpactAndLinger(t *testing.T) {
	room, clock, rec := startedRoom(t)
	place(room, clock.Now())

	room.QueueShoot("p1", false)
	advance(room, clock, 1)

	snap := rec.latest(t)
	if len(snap.Projectiles) != 1 {
		t.Fatalf("expected 1 projectile, got %d", len(snap.Projectiles))
	}
	pr := snap.Projectiles[0]
	if !pr.Impacting {
		t.Fatalf("projectile at the target should be impacting")
	}
	if pr.VX != 0 || pr.VY != 0 {
		t.Fatalf("impacting projectile velocity should be zeroed")
	}
	var victim game.Player
	for _, p := range snap.Players {
		if p.ID == "p2" {
			victim = p
		}
	}
	if victim.Health != victim.MaxHealth-22 {
		t.Fatalf("expected victim health %.0f, got %.1f", victim.MaxHealth-22, victim.Health)
	}

	lingered := room.tuning.ImpactLingerTicks
	advance(room, clock, lingered-1)
	if snap = rec.latest(t); len(snap.Projectiles) != 1 {
		t.Fatalf("projectile should linger for %d ticks, gone after %d", lingered, lingered-1)
	}
	advance(room, clock, 1)
	if snap = rec.latest(t); len(snap.Projectiles) != 0 {
		t.Fatalf("projectile should be removed after the linger window")
	}

	for _, p := range rec.latest(t).Players {
		if p.ID == "p2" && p.Health != p.MaxHealth-22 {
			t.Fatalf("impacting projectile must not re-collide, health %.1f", p.Health)
		}
	}
}

func TestOutOfBoundsProjectileRemoved(t *testing.T) {
	room, clock, rec := startedRoom(t)
	now := clock.Now()
	place(room, now)
	room.mu.Lock()
	p1 := room.players["p1"]
	p1.X = room.tuning.WorldWidth - 35
	room.players["p2"].Y = 1500
	room.mu.Unlock()

	room.QueueShoot("p1", false)
	advance(room, clock, 1)
	if snap := rec.latest(t); len(snap.Projectiles) != 0 {
		t.Fatalf("projectile leaving the world should be removed same tick, got %d", len(snap.Projectiles))
	}
}

func TestKillBookkeepingAndNotification(t *testing.T) {
	room, clock, rec := startedRoom(t)
	place(room, clock.Now())
	room.mu.Lock()
	room.players["p2"].Health = 20
	room.mu.Unlock()

	room.QueueShoot("p1", false)
	advance(room, clock, 1)

	snap := rec.latest(t)
	for _, p := range snap.Players {
		switch p.ID {
		case "p1":
			if p.Kills != 1 {
				t.Fatalf("expected attacker credited 1 kill, got %d", p.Kills)
			}
		case "p2":
			if p.Deaths != 1 {
				t.Fatalf("expected victim 1 death, got %d", p.Deaths)
			}
			if p.Health != p.MaxHealth {
				t.Fatalf("expected victim health reset, got %.1f", p.Health)
			}
			if p.Armor != 0 {
				t.Fatalf("expected victim armor zeroed, got %.1f", p.Armor)
			}
		}
	}
	rec.mu.Lock()
	kills := len(rec.kills)
	var notice KillNotice
	if kills > 0 {
		notice = rec.kills[0]
	}
	rec.mu.Unlock()
	if kills != 1 {
		t.Fatalf("expected 1 kill notification, got %d", kills)
	}
	if notice.KillerID != "p1" || notice.VictimID != "p2" {
		t.Fatalf("unexpected notice %+v", notice)
	}
}

func TestRespawnRelocatesVictim(t *testing.T) {
	room, clock, _ := startedRoom(t)
	place(room, clock.Now())
	room.mu.Lock()
	room.players["p2"].Health = 10
	room.mu.Unlock()

	room.QueueShoot("p1", false)
	advance(room, clock, 1)

	// Before the delay elapses the victim stays where they fell.
	advance(room, clock, 2)
	room.mu.Lock()
	x, y := room.players["p2"].X, room.players["p2"].Y
	room.mu.Unlock()
	if x != 560 || y != 500 {
		t.Fatalf("victim moved before the respawn delay: (%.1f, %.1f)", x, y)
	}

	steps := int(room.tuning.RespawnDelay/testTickInterval) + 2
	advance(room, clock, steps)
	room.mu.Lock()
	p2 := room.players["p2"]
	moved := p2.X != 560 || p2.Y != 500
	effects := len(p2.Effects)
	room.mu.Unlock()
	if !moved {
		t.Fatalf("victim should respawn at a new position")
	}
	if effects != 0 {
		t.Fatalf("respawn should clear status effects, got %d", effects)
	}
}

func TestRespawnNotAppliedAfterDisconnect(t *testing.T) {
	room, clock, _ := startedRoom(t)
	place(room, clock.Now())
	room.mu.Lock()
	room.players["p2"].Health = 10
	room.mu.Unlock()

	room.QueueShoot("p1", false)
	advance(room, clock, 1)

	room.Leave("p2")

	steps := int(room.tuning.RespawnDelay/testTickInterval) + 2
	advance(room, clock, steps)

	room.mu.Lock()
	_, present := room.players["p2"]
	pending := len(room.scheduled)
	room.mu.Unlock()
	if present {
		t.Fatalf("departed player must stay absent")
	}
	if pending != 0 {
		t.Fatalf("deferred effects for a departed player must be dropped, %d left", pending)
	}
}

func TestPoisonTicksAndKillCredit(t *testing.T) {
	room, clock, _ := startedRoom(t)
	now := clock.Now()
	place(room, now)
	room.mu.Lock()
	p2 := room.players["p2"]
	p2.Health = 8
	p2.Effects = append(p2.Effects, game.StatusEffect{
		Kind:      game.StatusPoisoned,
		ExpiresAt: now.Add(room.tuning.StatusDuration),
		SourceID:  "p1",
		NextTick:  now,
	})
	room.mu.Unlock()

	advance(room, clock, 1)
	room.mu.Lock()
	health := room.players["p2"].Health
	room.mu.Unlock()
	if health != 3 {
		t.Fatalf("expected one poison tick of %.0f damage, health %.1f", room.tuning.PoisonTickDamage, health)
	}

	// The next tick lands after the sub-interval, not every frame.
	advance(room, clock, 1)
	room.mu.Lock()
	health = room.players["p2"].Health
	room.mu.Unlock()
	if health != 3 {
		t.Fatalf("poison must wait out its sub-interval, health %.1f", health)
	}

	steps := int(room.tuning.PoisonTickInterval/testTickInterval) + 1
	advance(room, clock, steps)
	room.mu.Lock()
	kills := room.players["p1"].Kills
	deaths := room.players["p2"].Deaths
	room.mu.Unlock()
	if deaths != 1 {
		t.Fatalf("expected poison to finish the victim, deaths %d", deaths)
	}
	if kills != 1 {
		t.Fatalf("poison kill must credit the original poisoner, kills %d", kills)
	}
}

func TestPickupGrantsAndCaps(t *testing.T) {
	room, clock, rec := startedRoom(t)
	now := clock.Now()
	place(room, now)
	room.mu.Lock()
	p1 := room.players["p1"]
	p1.Health = 100
	room.pickups = append(room.pickups, &game.Pickup{
		ID: "item-h", Kind: game.PickupHealth, X: p1.X, Y: p1.Y,
		SpawnedAt: now, ExpiresAt: now.Add(room.tuning.PickupTTL),
	})
	room.mu.Unlock()

	advance(room, clock, 1)

	room.mu.Lock()
	health := room.players["p1"].Health
	room.mu.Unlock()
	if health != 110 {
		t.Fatalf("heal must cap at max health, got %.1f", health)
	}
	if snap := rec.latest(t); len(snap.Pickups) != 0 {
		t.Fatalf("claimed pickup should be removed, %d left", len(snap.Pickups))
	}
}

func TestSpeedBoostExpiresOnSchedule(t *testing.T) {
	room, clock, _ := startedRoom(t)
	now := clock.Now()
	place(room, now)
	room.mu.Lock()
	p1 := room.players["p1"]
	room.pickups = append(room.pickups, &game.Pickup{
		ID: "item-s", Kind: game.PickupSpeed, X: p1.X, Y: p1.Y,
		SpawnedAt: now, ExpiresAt: now.Add(room.tuning.PickupTTL),
	})
	room.mu.Unlock()

	advance(room, clock, 1)
	room.mu.Lock()
	boost := room.players["p1"].SpeedBoost
	room.mu.Unlock()
	if boost != room.tuning.SpeedBoostFactor {
		t.Fatalf("expected boost %.1f, got %.1f", room.tuning.SpeedBoostFactor, boost)
	}

	steps := int(room.tuning.SpeedBoostDuration/testTickInterval) + 2
	advance(room, clock, steps)
	room.mu.Lock()
	boost = room.players["p1"].SpeedBoost
	room.mu.Unlock()
	if boost != 1 {
		t.Fatalf("boost should expire back to 1, got %.1f", boost)
	}
}

func TestNewerSpeedBoostSupersedesPendingExpiry(t *testing.T) {
	room, clock, _ := startedRoom(t)
	now := clock.Now()
	place(room, now)

	room.mu.Lock()
	p1 := room.players["p1"]
	pk := &game.Pickup{ID: "item-s1", Kind: game.PickupSpeed}
	room.applyPickupLocked(p1, pk, now)
	halfway := now.Add(room.tuning.SpeedBoostDuration / 2)
	room.applyPickupLocked(p1, pk, halfway)
	room.mu.Unlock()

	// Past the first boost's expiry but inside the second's window.
	clock.set(now.Add(room.tuning.SpeedBoostDuration + time.Second))
	room.Advance(clock.Now(), 1)
	room.mu.Lock()
	boost := room.players["p1"].SpeedBoost
	room.mu.Unlock()
	if boost != room.tuning.SpeedBoostFactor {
		t.Fatalf("stale expiry must not clear a refreshed boost, got %.1f", boost)
	}
}

func TestBossSpawnAndVolley(t *testing.T) {
	room, clock, rec := startedRoom(t)
	place(room, clock.Now())

	clock.set(clock.Now().Add(room.tuning.BossSpawnInterval + time.Second))
	room.Advance(clock.Now(), 1)

	snap := rec.latest(t)
	if len(snap.Bosses) != 1 {
		t.Fatalf("expected a boss after the spawn interval, got %d", len(snap.Bosses))
	}
	rec.mu.Lock()
	spawned := len(rec.shakes) > 0 && rec.shakes[0] == shakeBossSpawn
	rec.mu.Unlock()
	if !spawned {
		t.Fatalf("boss spawn should signal its camera shake")
	}

	clock.set(clock.Now().Add(room.tuning.BossAttackInterval + time.Second))
	room.Advance(clock.Now(), 1)

	snap = rec.latest(t)
	if len(snap.Projectiles) != 2*len(volleyDirections) {
		t.Fatalf("expected %d volley projectiles, got %d", 2*len(volleyDirections), len(snap.Projectiles))
	}
	for _, pr := range snap.Projectiles {
		if !pr.FromBoss {
			t.Fatalf("volley projectile missing boss flag: %+v", pr)
		}
	}
}

func TestBossDefeatLootBurst(t *testing.T) {
	room, clock, rec := startedRoom(t)
	now := clock.Now()
	place(room, now)

	room.mu.Lock()
	boss := &game.Boss{
		ID: "boss-1", X: 1500, Y: 1000,
		Health: -1, MaxHealth: room.tuning.BossHealth,
		Size: room.tuning.BossSize, LastHitBy: "p1",
		LastAttack: now, RetargetAt: now.Add(time.Hour),
		TargetX: 1500, TargetY: 1000,
	}
	room.bosses = append(room.bosses, boss)
	room.mu.Unlock()

	advance(room, clock, 1)

	snap := rec.latest(t)
	if len(snap.Bosses) != 0 {
		t.Fatalf("defeated boss should be removed")
	}
	tn := room.tuning
	if len(snap.Pickups) < tn.BossLootMin || len(snap.Pickups) > tn.BossLootMax {
		t.Fatalf("loot count %d outside [%d, %d]", len(snap.Pickups), tn.BossLootMin, tn.BossLootMax)
	}
	for _, pk := range snap.Pickups {
		if !pk.BossLoot {
			t.Fatalf("loot item missing boss flag: %+v", pk)
		}
		// The boss drifts up to one movement step before death resolves.
		if d := game.Distance(pk.X, pk.Y, 1500, 1000); d > tn.BossLootRadiusMax+tn.BossSpeed+1 {
			t.Fatalf("loot item %.1f away from the boss, max %.1f", d, tn.BossLootRadiusMax)
		}
	}
	for _, p := range snap.Players {
		if p.ID == "p1" && p.Kills != tn.BossKillBonus {
			t.Fatalf("expected last hitter credited %d kills, got %d", tn.BossKillBonus, p.Kills)
		}
	}

	// Loot expires on the short clock.
	clock.set(clock.Now().Add(tn.BossLootTTL + time.Second))
	room.Advance(clock.Now(), 1)
	if snap = rec.latest(t); len(snap.Pickups) != 0 {
		t.Fatalf("boss loot should expire quickly, %d left", len(snap.Pickups))
	}
}

func TestGameEndsWithSortedRankings(t *testing.T) {
	room, clock, rec := startedRoom(t)
	room.mu.Lock()
	room.players["p1"].Kills = 2
	room.players["p1"].Deaths = 5
	room.players["p2"].Kills = 2
	room.players["p2"].Deaths = 1
	room.mu.Unlock()

	clock.set(clock.Now().Add(room.tuning.GameDuration + time.Second))
	room.Advance(clock.Now(), 1)

	if room.Phase() != PhaseFinished {
		t.Fatalf("expected the room to finish, phase %q", room.Phase())
	}
	rec.mu.Lock()
	if len(rec.rankings) != 1 {
		rec.mu.Unlock()
		t.Fatalf("expected one game-ended broadcast")
	}
	rankings := rec.rankings[0]
	rec.mu.Unlock()
	if len(rankings) != 2 {
		t.Fatalf("expected 2 ranking rows, got %d", len(rankings))
	}
	if rankings[0].ID != "p2" || rankings[0].Rank != 1 {
		t.Fatalf("equal kills must tie-break on fewer deaths, got %+v", rankings[0])
	}

	// Finished is terminal: further ticks do nothing.
	before := len(rec.snapshots)
	advance(room, clock, 3)
	rec.mu.Lock()
	after := len(rec.snapshots)
	rec.mu.Unlock()
	if after != before {
		t.Fatalf("a finished room must not keep broadcasting")
	}
}

func TestStartGameGating(t *testing.T) {
	room, _, rec := newTestRoom(t)
	if err := room.Join("p1", "alice", 0); err != nil {
		t.Fatalf("join p1: %v", err)
	}

	if err := room.StartGame("p1"); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("expected ErrNotEnoughPlayers, got %v", err)
	}

	if err := room.Join("p2", "bob", 1); err != nil {
		t.Fatalf("join p2: %v", err)
	}
	if err := room.StartGame("p2"); !errors.Is(err, ErrNotHost) {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
	if err := room.StartGame("p1"); err != nil {
		t.Fatalf("host start should succeed: %v", err)
	}
	if err := room.StartGame("p1"); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
	if err := room.Join("p3", "carol", 0); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("join after start: expected ErrAlreadyStarted, got %v", err)
	}
	rec.mu.Lock()
	started := rec.started
	rec.mu.Unlock()
	if started != 1 {
		t.Fatalf("expected exactly one game-started broadcast, got %d", started)
	}
}

func TestJoinRejectsFullRoomWithoutSideEffects(t *testing.T) {
	room, _, _ := newTestRoom(t)
	for i := 0; i < room.tuning.MaxPlayers; i++ {
		id := fmt.Sprintf("p%d", i)
		if err := room.Join(id, id, i%game.ArchetypeCount()); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	if err := room.Join("late", "late", 0); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	if room.PlayerCount() != room.tuning.MaxPlayers {
		t.Fatalf("rejected join must not change the roster")
	}
}

func TestJoinRejectsUnknownArchetype(t *testing.T) {
	room, _, _ := newTestRoom(t)
	if err := room.Join("p1", "alice", game.ArchetypeCount()); !errors.Is(err, ErrUnknownArchetype) {
		t.Fatalf("expected ErrUnknownArchetype, got %v", err)
	}
}

func TestHostMigratesToOldestPlayer(t *testing.T) {
	room, _, _ := newTestRoom(t)
	for _, id := range []string{"p1", "p2", "p3"} {
		if err := room.Join(id, id, 0); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	if room.HostID() != "p1" {
		t.Fatalf("first joiner should host, got %q", room.HostID())
	}

	room.Leave("p1")
	if room.HostID() != "p2" {
		t.Fatalf("host should migrate by join order, got %q", room.HostID())
	}
}

func TestRoomClosesWhenLastPlayerLeaves(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	closed := make(chan string, 1)
	room := NewRoom("ROOM43", RoomConfig{
		Tuning: game.DefaultTuning(),
		Seed:   1,
		Clock:  clock,
		OnClosed: func(code string) {
			closed <- code
		},
	})
	if err := room.Join("p1", "alice", 0); err != nil {
		t.Fatalf("join: %v", err)
	}
	room.Leave("p1")

	select {
	case code := <-closed:
		if code != "ROOM43" {
			t.Fatalf("unexpected closed code %q", code)
		}
	default:
		t.Fatalf("empty room should invoke OnClosed")
	}
	if room.Phase() != PhaseFinished {
		t.Fatalf("empty room should finish, phase %q", room.Phase())
	}
}

func TestDuplicateShootCommandsCollapse(t *testing.T) {
	room, _, _ := startedRoom(t)
	room.QueueShoot("p1", false)
	room.QueueShoot("p1", false)
	room.QueueShoot("p1", true)
	room.QueueShoot("p2", false)

	room.mu.Lock()
	pending := len(room.pending)
	var p1Special bool
	for _, cmd := range room.pending {
		if cmd.PlayerID == "p1" && cmd.Type == CommandShoot {
			p1Special = cmd.Special
		}
	}
	room.mu.Unlock()

	if pending != 2 {
		t.Fatalf("expected one staged shoot per player, got %d commands", pending)
	}
	if !p1Special {
		t.Fatalf("a special request should replace the queued normal shot")
	}
}

func TestStalePickupClaimIsNoOp(t *testing.T) {
	room, clock, _ := startedRoom(t)
	place(room, clock.Now())
	room.QueuePickup("p1", "item-gone")
	advance(room, clock, 1)
	// Nothing to assert beyond the absence of a panic and an unchanged world.
	room.mu.Lock()
	pickups := len(room.pickups)
	room.mu.Unlock()
	if pickups != 0 {
		t.Fatalf("claiming a stale id must not create items")
	}
}

func TestSnapshotStampsRemainingStatusTime(t *testing.T) {
	room, clock, rec := startedRoom(t)
	now := clock.Now()
	place(room, now)
	room.mu.Lock()
	p2 := room.players["p2"]
	p2.Effects = append(p2.Effects, game.StatusEffect{
		Kind:      game.StatusFrozen,
		ExpiresAt: now.Add(2 * time.Second),
		SourceID:  "p1",
	})
	room.mu.Unlock()

	advance(room, clock, 1)
	snap := rec.latest(t)
	for _, p := range snap.Players {
		if p.ID != "p2" {
			continue
		}
		if len(p.Effects) != 1 {
			t.Fatalf("expected 1 effect in the snapshot, got %d", len(p.Effects))
		}
		if p.Effects[0].ExpiresIn <= 0 || p.Effects[0].ExpiresIn > 2000 {
			t.Fatalf("remaining time should be within (0, 2000] ms, got %d", p.Effects[0].ExpiresIn)
		}
	}
}

func TestTickFaultFinishesRoomWithoutWedgingIt(t *testing.T) {
	room, clock, rec := startedRoom(t)
	closed := make(chan string, 1)
	room.onClosed = func(code string) { closed <- code }

	// A nil boss makes the movement phase panic mid-pass.
	room.mu.Lock()
	room.bosses = append(room.bosses, nil)
	room.mu.Unlock()

	done := make(chan struct{})
	go func() {
		clock.set(clock.Now().Add(testTickInterval))
		room.step(clock.Now(), 1)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("faulting tick never returned")
	}

	if got := room.Phase(); got != PhaseFinished {
		t.Fatalf("phase after fault = %q, want %q", got, PhaseFinished)
	}
	select {
	case code := <-closed:
		if code != room.Code {
			t.Fatalf("closed room %q, want %q", code, room.Code)
		}
	case <-time.After(time.Second):
		t.Fatalf("room was never deregistered after the fault")
	}

	rec.mu.Lock()
	endings := append([][]Ranking(nil), rec.rankings...)
	rec.mu.Unlock()
	if len(endings) != 1 {
		t.Fatalf("expected one final standings broadcast, got %d", len(endings))
	}
	if len(endings[0]) != 2 {
		t.Fatalf("expected standings for both players, got %d", len(endings[0]))
	}
}

// reentrantBroadcaster calls back into the room from the notification
// methods. Safe only if the room emits them with its lock released.
type reentrantBroadcaster struct {
	recordingBroadcaster
	room *Room
}

func (b *reentrantBroadcaster) PlayerKilled(code string, notice KillNotice) {
	b.room.PlayerCount()
	b.recordingBroadcaster.PlayerKilled(code, notice)
}

func (b *reentrantBroadcaster) CameraShake(code string, shake Shake) {
	b.room.PlayerCount()
	b.recordingBroadcaster.CameraShake(code, shake)
}

func TestKillAndShakeBroadcastsRunAfterThePass(t *testing.T) {
	room, clock, _ := startedRoom(t)
	reb := &reentrantBroadcaster{room: room}
	room.broadcaster = reb
	place(room, clock.Now())

	room.mu.Lock()
	room.players["p2"].Health = 1
	room.lastBossSpawn = clock.Now().Add(-room.tuning.BossSpawnInterval)
	room.mu.Unlock()

	room.QueueShoot("p1", false)

	done := make(chan struct{})
	go func() {
		advance(room, clock, 1)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("tick pass blocked on its own broadcasts")
	}

	reb.mu.Lock()
	kills := len(reb.kills)
	shakes := append([]Shake(nil), reb.shakes...)
	reb.mu.Unlock()
	if kills != 1 {
		t.Fatalf("expected 1 kill notification, got %d", kills)
	}
	if len(shakes) != 1 || shakes[0] != shakeBossSpawn {
		t.Fatalf("expected the boss spawn shake, got %v", shakes)
	}
}
