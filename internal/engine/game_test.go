package engine

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/td-sync/internal/terrain"
)

// field is a 100x40 strip. Team 1 holds the left half, team 2 the right half; a
// single 20x20 tower closes half of the strip's height.
func field(t *testing.T) *terrain.Grid {
	t.Helper()
	l := terrain.Layout{
		Width: 100, Height: 40, InitialLives: 20, InitialGold: 100,
		Teams: []terrain.TeamLayout{
			{
				ID: 1, Name: "Left",
				SpawnZones:  []terrain.Rect{{X: 0, Y: 0, W: 10, H: 10}},
				ArrivalZone: terrain.Rect{X: 0, Y: 30, W: 10, H: 10},
				Slots: []terrain.SlotLayout{
					{ID: 1, Zone: terrain.Rect{X: 10, Y: 0, W: 40, H: 40}},
					{ID: 2, Zone: terrain.Rect{X: 10, Y: 0, W: 40, H: 40}},
				},
			},
			{
				ID: 2, Name: "Right",
				SpawnZones:  []terrain.Rect{{X: 90, Y: 0, W: 10, H: 10}},
				ArrivalZone: terrain.Rect{X: 90, Y: 30, W: 10, H: 10},
				Slots: []terrain.SlotLayout{
					{ID: 3, Zone: terrain.Rect{X: 50, Y: 0, W: 40, H: 40}},
					{ID: 4, Zone: terrain.Rect{X: 50, Y: 0, W: 40, H: 40}},
				},
			},
		},
	}
	g, err := terrain.NewGrid("field", l, 10, nil)
	require.NoError(t, err)
	return g
}

func newGame(t *testing.T, opts Options) *Game {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}
	return New(ctx, field(t), opts)
}

func join(t *testing.T, g *Game, name string) Player {
	t.Helper()
	p, err := g.AddPlayer(name)
	require.NoError(t, err)
	return p
}

// started returns a started game with one player on each team.
func started(t *testing.T, opts Options) (*Game, Player, Player) {
	t.Helper()
	g := newGame(t, opts)
	a, b := join(t, g, "alice"), join(t, g, "bob")
	require.NoError(t, g.Start(a.ID))
	return g, a, b
}

func addCreature(g *Game, target TeamID, pos terrain.Point, path []terrain.Point, health int) CreatureID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextCreature++
	c := &Creature{
		ID: g.nextCreature, Type: CreatureGrunt, Pos: pos,
		Health: health, MaxHealth: health, Speed: 10, Bounty: 5,
		Target: target, Path: path, State: CreatureSpawned,
	}
	g.creatures[c.ID] = c
	g.live = append(g.live, c)
	return c.ID
}

// drain collects events until none arrive for quiet.
func drain(g *Game, quiet time.Duration) []Event {
	var out []Event
	for {
		select {
		case e := <-g.Events():
			out = append(out, e)
		case <-time.After(quiet):
			return out
		}
	}
}

func count(evts []Event, typ EventType) int {
	n := 0
	for _, e := range evts {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestAddPlayerSeatsLeastLoadedTeam(t *testing.T) {
	g := newGame(t, Options{})

	a := join(t, g, "alice")
	b := join(t, g, "bob")
	c := join(t, g, "carol")

	assert.Equal(t, TeamID(1), a.Team)
	assert.Equal(t, TeamID(2), b.Team)
	assert.Equal(t, TeamID(1), c.Team)
	assert.Equal(t, SlotID(2), c.Slot)
	assert.True(t, a.Creator)
	assert.False(t, b.Creator)
	assert.Equal(t, 100, a.Gold)

	join(t, g, "dave")
	_, err := g.AddPlayer("erin")
	require.ErrorIs(t, err, ErrNoSlot)
}

func TestAddPlayerAfterStart(t *testing.T) {
	cases := []struct {
		name    string
		late    bool
		wantErr error
	}{
		{name: "late join refused", wantErr: ErrMatchInProgress},
		{name: "late join allowed", late: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, _, _ := started(t, Options{AllowLateJoin: tc.late})
			_, err := g.AddPlayer("carol")
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAddPlayerRejectsBlankName(t *testing.T) {
	g := newGame(t, Options{})
	_, err := g.AddPlayer(" \t\n")
	require.ErrorIs(t, err, ErrInvalidName)
}

func TestPlaceTower(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(g *Game, p Player)
		typ     TowerType
		x, y    int
		wantErr error
	}{
		{name: "legal archer", typ: TowerArcher, x: 20, y: 0},
		{name: "fire tower costs more than starting gold", typ: TowerFire, x: 20, y: 0, wantErr: ErrInsufficientFunds},
		{name: "outside own slot", typ: TowerArcher, x: 60, y: 0, wantErr: ErrZoneInaccessible},
		{name: "over a spawn zone", typ: TowerArcher, x: 0, y: 0, wantErr: ErrZoneInaccessible},
		{name: "unknown type", typ: TowerType(99), x: 20, y: 0, wantErr: ErrUnknownTowerType},
		{
			name: "overlapping tower",
			setup: func(g *Game, p Player) {
				_, err := g.PlaceTower(p.ID, TowerArcher, 20, 0)
				require.NoError(t, err)
			},
			typ: TowerArcher, x: 30, y: 10, wantErr: ErrZoneInaccessible,
		},
		{
			name: "closing the strip",
			setup: func(g *Game, p Player) {
				_, err := g.PlaceTower(p.ID, TowerArcher, 20, 0)
				require.NoError(t, err)
			},
			typ: TowerArcher, x: 20, y: 20, wantErr: ErrPathBlocked,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGame(t, Options{})
			p := join(t, g, "alice")
			if tc.setup != nil {
				tc.setup(g, p)
			}
			before, _ := g.Player(p.ID)
			towers := len(g.Snapshot().Towers)

			tw, err := g.PlaceTower(p.ID, tc.typ, tc.x, tc.y)
			after, _ := g.Player(p.ID)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, before.Gold, after.Gold, "no debit on failure")
				assert.Len(t, g.Snapshot().Towers, towers, "no tower on failure")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, p.ID, tw.Owner)
			assert.Equal(t, terrain.Point{X: tc.x, Y: tc.y}, tw.Pos)
			assert.Equal(t, before.Gold-TowerPrice(tc.typ), after.Gold)
		})
	}
}

func TestPlaceTowerUnknownPlayer(t *testing.T) {
	g := newGame(t, Options{})
	_, err := g.PlaceTower(42, TowerArcher, 20, 0)
	require.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestInsufficientFundsExample(t *testing.T) {
	g := newGame(t, Options{})
	p := join(t, g, "alice")

	_, err := g.PlaceTower(p.ID, TowerFire, 20, 0)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	after, _ := g.Player(p.ID)
	assert.Equal(t, 100, after.Gold)
	assert.Empty(t, g.Snapshot().Towers)
}

func TestGoldAccountingIsExact(t *testing.T) {
	g := newGame(t, Options{})
	p := join(t, g, "alice")
	debits, credits := 0, 0

	tw, err := g.PlaceTower(p.ID, TowerArcher, 20, 0)
	require.NoError(t, err)
	debits += TowerPrice(TowerArcher)

	cost := tw.Price
	tw, err = g.UpgradeTower(p.ID, tw.ID)
	require.NoError(t, err)
	debits += cost
	assert.Equal(t, 2, tw.Level)
	assert.Equal(t, 100, tw.Invested)

	_, err = g.UpgradeTower(p.ID, tw.ID)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	refund, err := g.SellTower(p.ID, tw.ID)
	require.NoError(t, err)
	credits += refund
	assert.Equal(t, 50, refund)

	got, _ := g.Player(p.ID)
	assert.GreaterOrEqual(t, got.Gold, 0)
	assert.Equal(t, 100-debits+credits, got.Gold)
}

func TestUpgradeTower(t *testing.T) {
	cases := []struct {
		name    string
		run     func(g *Game, owner, other Player, tw Tower) error
		wantErr error
	}{
		{
			name: "unknown tower",
			run: func(g *Game, owner, _ Player, _ Tower) error {
				_, err := g.UpgradeTower(owner.ID, 999)
				return err
			},
			wantErr: ErrTowerUnknown,
		},
		{
			name: "not the owner",
			run: func(g *Game, _, other Player, tw Tower) error {
				_, err := g.UpgradeTower(other.ID, tw.ID)
				return err
			},
			wantErr: ErrUnauthorized,
		},
		{
			name: "max level",
			run: func(g *Game, owner, _ Player, tw Tower) error {
				g.mu.Lock()
				g.towers[tw.ID].Level = towerSpecs[tw.Type].MaxLevel
				g.mu.Unlock()
				_, err := g.UpgradeTower(owner.ID, tw.ID)
				return err
			},
			wantErr: ErrMaxLevel,
		},
		{
			name: "applies the next level curve",
			run: func(g *Game, owner, _ Player, tw Tower) error {
				up, err := g.UpgradeTower(owner.ID, tw.ID)
				if err != nil {
					return err
				}
				assert.Greater(t, up.Damage, tw.Damage)
				assert.Greater(t, up.Range, tw.Range)
				assert.Equal(t, tw.Price*2, up.Price)
				return nil
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGame(t, Options{})
			owner, other := join(t, g, "alice"), join(t, g, "bob")
			tw, err := g.PlaceTower(owner.ID, TowerArcher, 20, 0)
			require.NoError(t, err)

			err = tc.run(g, owner, other, tw)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConcurrentUpgradesOnlyOneSucceeds(t *testing.T) {
	g := newGame(t, Options{})
	p := join(t, g, "alice")
	tw, err := g.PlaceTower(p.ID, TowerArcher, 20, 0)
	require.NoError(t, err)
	// 50 gold left: exactly one 50 gold upgrade is affordable.

	var ok, poor atomic.Int32
	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.UpgradeTower(p.ID, tw.ID)
			switch {
			case err == nil:
				ok.Add(1)
			case assert.ErrorIs(t, err, ErrInsufficientFunds):
				poor.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(1), poor.Load())
	got, _ := g.Player(p.ID)
	assert.Equal(t, 0, got.Gold)
	up, _ := g.Tower(tw.ID)
	assert.Equal(t, 2, up.Level)
}

func TestSellTowerByStrangerIsRefused(t *testing.T) {
	g := newGame(t, Options{})
	owner, other := join(t, g, "alice"), join(t, g, "bob")
	tw, err := g.PlaceTower(owner.ID, TowerArcher, 20, 0)
	require.NoError(t, err)

	_, err = g.SellTower(other.ID, tw.ID)
	require.ErrorIs(t, err, ErrUnauthorized)
	_, ok := g.Tower(tw.ID)
	assert.True(t, ok)

	_, err = g.SellTower(owner.ID, 999)
	require.ErrorIs(t, err, ErrTowerUnknown)
}

func TestLaunchWave(t *testing.T) {
	cases := []struct {
		name    string
		start   bool
		typ     CreatureType
		count   int
		wantErr error
	}{
		{name: "before start", typ: CreatureGrunt, count: 1, wantErr: ErrMatchNotStarted},
		{name: "unknown creature", start: true, typ: CreatureType(9), count: 1, wantErr: ErrUnknownCreatureType},
		{name: "zero creatures", start: true, typ: CreatureGrunt, count: 0, wantErr: ErrInvalidCount},
		{name: "too expensive", start: true, typ: CreatureBrute, count: 7, wantErr: ErrInsufficientFunds},
		{name: "affordable", start: true, typ: CreatureGrunt, count: 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGame(t, Options{})
			a, _ := join(t, g, "alice"), join(t, g, "bob")
			if tc.start {
				require.NoError(t, g.Start(a.ID))
			}
			w, err := g.LaunchWave(a.ID, tc.typ, tc.count)
			got, _ := g.Player(a.ID)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, 100, got.Gold)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TeamID(2), w.Target)
			assert.Equal(t, 100-tc.count*CreatureCost(tc.typ), got.Gold)
		})
	}
}

func TestWaveReleasesAtCadence(t *testing.T) {
	cadence := 500 * time.Millisecond
	g, a, _ := started(t, Options{WaveCadence: cadence})
	_, err := g.LaunchWave(a.ID, CreatureGrunt, 3)
	require.NoError(t, err)

	g.Step(time.Millisecond)
	require.Len(t, g.CreatureStates(), 1)
	g.Step(cadence / 2)
	require.Len(t, g.CreatureStates(), 1)
	g.Step(cadence / 2)
	require.Len(t, g.CreatureStates(), 2)
	g.Step(cadence)
	cs := g.CreatureStates()
	require.Len(t, cs, 3)

	right, _ := g.Team(2)
	for _, c := range cs {
		assert.Equal(t, TeamID(2), c.Target)
		assert.True(t, right.Arrival.Contains(c.Path[len(c.Path)-1]), "path ends in the opponent arrival zone")
		assert.NotEqual(t, CreatureDead, c.State)
	}
}

func TestWaveTargetPolicy(t *testing.T) {
	cases := []struct {
		name   string
		policy TargetPolicy
		want   TeamID
	}{
		{name: "next opponent", policy: TargetNextOpponent, want: 2},
		{name: "self", policy: TargetSelf, want: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, a, _ := started(t, Options{Target: tc.policy})
			w, err := g.LaunchWave(a.ID, CreatureGrunt, 1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, w.Target)
		})
	}
}

func TestWaveNeedsAnOpponent(t *testing.T) {
	g := newGame(t, Options{})
	a := join(t, g, "alice")
	require.NoError(t, g.Start(a.ID))
	_, err := g.LaunchWave(a.ID, CreatureGrunt, 1)
	require.ErrorIs(t, err, ErrNoTarget)
}

func TestCreatureDiesOnce(t *testing.T) {
	g, a, _ := started(t, Options{})
	id := addCreature(g, 2, terrain.Point{X: 50, Y: 5}, []terrain.Point{{X: 95, Y: 35}}, 30)

	var kills atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.ApplyDamage(id, 30, a.ID) {
				kills.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), kills.Load())
	got, _ := g.Player(a.ID)
	assert.Equal(t, 105, got.Gold, "bounty credited once")
	assert.Equal(t, 5, got.Score)
	_, alive := g.Creature(id)
	assert.False(t, alive)
	assert.Equal(t, 1, count(drain(g, 50*time.Millisecond), EvtCreatureKilled))
}

func TestApplyDamageHurtsWithoutKilling(t *testing.T) {
	g, a, _ := started(t, Options{})
	id := addCreature(g, 2, terrain.Point{X: 50, Y: 5}, []terrain.Point{{X: 95, Y: 35}}, 30)

	assert.False(t, g.ApplyDamage(id, 10, a.ID))
	c, ok := g.Creature(id)
	require.True(t, ok)
	assert.Equal(t, 20, c.Health)
	assert.False(t, g.ApplyDamage(id, -5, a.ID))
	c, _ = g.Creature(id)
	assert.Equal(t, 20, c.Health)
}

func TestArrivalsClampLives(t *testing.T) {
	g, _, _ := started(t, Options{})
	home := terrain.Point{X: 5, Y: 35}

	for i := 1; i <= 20; i++ {
		addCreature(g, 1, home, []terrain.Point{home}, 10)
		g.Step(100 * time.Millisecond)
		left, _ := g.Team(1)
		require.Equal(t, 20-i, left.Lives)
	}
	left, _ := g.Team(1)
	assert.True(t, left.Defeated())
	assert.Equal(t, MatchOver, g.State())

	id := addCreature(g, 1, home, []terrain.Point{home}, 10)
	g.mu.Lock()
	g.arrive(g.creatures[id])
	g.mu.Unlock()
	left, _ = g.Team(1)
	assert.Equal(t, 0, left.Lives)
}

func TestMatchOverReportsWinner(t *testing.T) {
	var got Summary
	done := make(chan struct{})
	g, _, _ := started(t, Options{OnFinish: func(s Summary) { got = s; close(done) }})
	home := terrain.Point{X: 5, Y: 35}
	for range 20 {
		addCreature(g, 1, home, []terrain.Point{home}, 10)
	}
	g.Step(100 * time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("OnFinish not called")
	}
	assert.Equal(t, TeamID(2), got.Winner)
	assert.Equal(t, g.ID(), got.MatchID)
	assert.Len(t, got.Players, 2)
}

func TestMatchEndsWhenATeamEmpties(t *testing.T) {
	var got Summary
	done := make(chan struct{})
	g, a, b := started(t, Options{OnFinish: func(s Summary) { got = s; close(done) }})

	require.NoError(t, g.RemovePlayer(b.ID))
	g.Step(50 * time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("match still %s with one team left", g.State())
	}
	assert.Equal(t, MatchOver, g.State())
	assert.Equal(t, a.Team, got.Winner)

	_, err := g.LaunchWave(a.ID, CreatureGrunt, 1)
	assert.ErrorIs(t, err, ErrMatchNotStarted)
}

func TestMovementIsUnitSteps(t *testing.T) {
	g, _, _ := started(t, Options{})
	id := addCreature(g, 2, terrain.Point{X: 50, Y: 5}, []terrain.Point{{X: 60, Y: 5}, {X: 60, Y: 35}}, 10)

	g.Step(100 * time.Millisecond)
	c, _ := g.Creature(id)
	assert.Equal(t, terrain.Point{X: 51, Y: 5}, c.Pos)
	assert.Equal(t, CreatureMoving, c.State)

	g.Step(900 * time.Millisecond)
	c, _ = g.Creature(id)
	assert.Equal(t, terrain.Point{X: 60, Y: 5}, c.Pos)
	assert.Equal(t, 1, c.Cursor)

	g.Step(300 * time.Millisecond)
	c, _ = g.Creature(id)
	assert.Equal(t, terrain.Point{X: 60, Y: 8}, c.Pos, "one axis per step")
}

func TestTowerShootsEnemiesInRange(t *testing.T) {
	g, _, b := started(t, Options{})
	tw, err := g.PlaceTower(b.ID, TowerArcher, 60, 0)
	require.NoError(t, err)
	id := addCreature(g, 2, terrain.Point{X: 70, Y: 15}, []terrain.Point{{X: 70, Y: 15}, {X: 95, Y: 35}}, 6)

	g.Step(10 * time.Millisecond)
	c, ok := g.Creature(id)
	require.True(t, ok)
	assert.Equal(t, 6-int(tw.Damage), c.Health)

	g.Step(time.Second / time.Duration(tw.Rate))
	_, ok = g.Creature(id)
	assert.False(t, ok, "second shot kills")
	got, _ := g.Player(b.ID)
	assert.Equal(t, 100-tw.Invested+5, got.Gold)
}

func TestRemovePlayerIsIdempotent(t *testing.T) {
	g, a, b := started(t, Options{})
	drain(g, 50*time.Millisecond)

	require.NoError(t, g.RemovePlayer(b.ID))
	require.ErrorIs(t, g.RemovePlayer(b.ID), ErrUnknownPlayer)

	evts := drain(g, 50*time.Millisecond)
	assert.Equal(t, 1, count(evts, EvtRoster))
	assert.Equal(t, 1, count(evts, EvtPlayerLeft))
	roster := g.Snapshot().Players
	require.Len(t, roster, 1)
	assert.Equal(t, a.ID, roster[0].ID)

	_, err := g.PlaceTower(b.ID, TowerArcher, 60, 0)
	require.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestRemoveCreatorPromotesNextPlayer(t *testing.T) {
	g := newGame(t, Options{})
	a, b := join(t, g, "alice"), join(t, g, "bob")
	require.NoError(t, g.RemovePlayer(a.ID))

	require.ErrorIs(t, g.Start(a.ID), ErrUnknownPlayer)
	require.NoError(t, g.Start(b.ID))
}

func TestChangeTeam(t *testing.T) {
	g := newGame(t, Options{})
	a := join(t, g, "alice")

	require.NoError(t, g.ChangeTeam(a.ID, 2))
	got, _ := g.Player(a.ID)
	assert.Equal(t, TeamID(2), got.Team)
	assert.Equal(t, SlotID(3), got.Slot)
	left, _ := g.Team(1)
	assert.Equal(t, 0, left.Seated())

	join(t, g, "bob")
	join(t, g, "carol")
	err := g.ChangeTeam(a.ID, 1)
	require.ErrorIs(t, err, ErrNoSlot)
	got, _ = g.Player(a.ID)
	assert.Equal(t, TeamID(2), got.Team, "failed change keeps the seat")

	require.ErrorIs(t, g.ChangeTeam(a.ID, 7), ErrUnknownTeam)
	require.ErrorIs(t, g.ChangeTeam(99, 1), ErrUnknownPlayer)
}

func TestStartOnlyByCreator(t *testing.T) {
	g := newGame(t, Options{})
	a, b := join(t, g, "alice"), join(t, g, "bob")

	require.ErrorIs(t, g.Start(b.ID), ErrUnauthorized)
	require.NoError(t, g.Start(a.ID))
	require.ErrorIs(t, g.Start(a.ID), ErrMatchInProgress)
	require.ErrorIs(t, g.ChangeTeam(b.ID, 1), ErrMatchInProgress)

	g.Stop()
	assert.Equal(t, MatchStopped, g.State())
	_, err := g.LaunchWave(a.ID, CreatureGrunt, 1)
	require.ErrorIs(t, err, ErrMatchNotStarted)
}

func TestApplyRoutesCommands(t *testing.T) {
	g := newGame(t, Options{})
	a := join(t, g, "alice")

	res, err := g.Apply(Command{Type: CmdPlaceTower, Player: a.ID, TowerType: TowerArcher, X: 20, Y: 0})
	require.NoError(t, err)
	assert.Equal(t, TowerID(1), res.Tower.ID)

	res, err = g.Apply(Command{Type: CmdSellTower, Player: a.ID, Tower: res.Tower.ID})
	require.NoError(t, err)
	assert.Equal(t, 25, res.Refund)

	_, err = g.Apply(Command{Type: "Teleport"})
	require.ErrorIs(t, err, ErrUnsupportedCommand)
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{in: "  alice  ", want: "alice"},
		{in: "ｂｏｂ", want: "bob"},
		{in: "car\x00ol\n", want: "carol"},
		{in: "two   words", want: "two words"},
		{in: "abcdefghijklmnopqrstuvwxyz", want: "abcdefghijklmnopqrstuvwx"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeName(tc.in))
		})
	}
}
