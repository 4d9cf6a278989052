// Package engine is the authoritative game model. Every operation on Game is a
// check-then-mutate under one lock; changes are published as Events.
package engine

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/td-sync/internal/terrain"
)

var ErrInsufficientFunds = errors.New("insufficient funds")
var ErrZoneInaccessible = errors.New("zone inaccessible")
var ErrPathBlocked = errors.New("path blocked")
var ErrUnknownPlayer = errors.New("unknown player")
var ErrNoSlot = errors.New("no slot available")
var ErrUnauthorized = errors.New("unauthorized")
var ErrTowerUnknown = errors.New("tower unknown")
var ErrMaxLevel = errors.New("max level reached")
var ErrMatchInProgress = errors.New("match in progress")
var ErrMatchNotStarted = errors.New("match not started")
var ErrMatchOver = errors.New("match over")
var ErrUnknownTowerType = errors.New("unknown tower type")
var ErrUnknownCreatureType = errors.New("unknown creature type")
var ErrUnknownTeam = errors.New("unknown team")
var ErrInvalidCount = errors.New("invalid creature count")
var ErrInvalidName = errors.New("invalid player name")
var ErrNoTarget = errors.New("no team to attack")

// TargetPolicy picks the team a launched wave attacks.
type TargetPolicy int

const (
	// TargetNextOpponent sends the wave to the next team in order that still has
	// players and lives.
	TargetNextOpponent TargetPolicy = iota
	// TargetSelf runs the wave against the requester's own arrival zone.
	TargetSelf
)

type Options struct {
	Logger        *zap.Logger
	Rand          *rand.Rand
	WaveCadence   time.Duration
	Target        TargetPolicy
	AllowLateJoin bool
	// OnFinish is called once, outside the lock, when the match is decided.
	OnFinish func(Summary)
}

type Game struct {
	mu sync.Mutex

	id      string
	oracle  terrain.Oracle
	log     *zap.Logger
	rng     *rand.Rand
	opts    Options
	events  *queue
	state   MatchState
	creator PlayerID

	players   map[PlayerID]*Player
	teams     []*Team
	towers    map[TowerID]*Tower
	creatures map[CreatureID]*Creature
	live      []*Creature // spawn order
	waves     []*Wave

	contenders []TeamID
	startedAt  time.Time

	nextPlayer   PlayerID
	nextTower    TowerID
	nextCreature CreatureID
	nextWave     WaveID
}

// New builds a game on the given terrain. Events are delivered until ctx is done.
func New(ctx context.Context, oracle terrain.Oracle, opts Options) *Game {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.WaveCadence <= 0 {
		opts.WaveCadence = 500 * time.Millisecond
	}

	g := &Game{
		id:        uuid.NewString(),
		oracle:    oracle,
		rng:       opts.Rand,
		opts:      opts,
		events:    newQueue(),
		state:     MatchInitialized,
		players:   make(map[PlayerID]*Player),
		towers:    make(map[TowerID]*Tower),
		creatures: make(map[CreatureID]*Creature),
	}
	g.log = opts.Logger.Named("engine").With(zap.String("match", g.id))

	l := oracle.Layout()
	for _, tl := range l.Teams {
		t := &Team{
			ID:           TeamID(tl.ID),
			Name:         tl.Name,
			Color:        tl.Color,
			Lives:        l.InitialLives,
			InitialLives: l.InitialLives,
			Spawns:       slices.Clone(tl.SpawnZones),
			Arrival:      tl.ArrivalZone,
		}
		for _, sl := range tl.Slots {
			t.Slots = append(t.Slots, Slot{ID: SlotID(sl.ID), Team: t.ID, Zone: sl.Zone})
		}
		g.teams = append(g.teams, t)
	}
	g.refreshPathLengths()

	go g.events.run(ctx)
	return g
}

func (g *Game) ID() string           { return g.id }
func (g *Game) Terrain() string      { return g.oracle.Name() }
func (g *Game) Events() <-chan Event { return g.events.out }
func (g *Game) emit(evts ...Event)   { g.events.push(evts...) }
func (g *Game) Logger() *zap.Logger  { return g.log }
func (g *Game) Policy() TargetPolicy { return g.opts.Target }

// AddPlayer creates a player and seats it in the least loaded team that has a free slot.
func (g *Game) AddPlayer(name string) (Player, error) {
	name = NormalizeName(name)
	if name == "" {
		return Player{}, ErrInvalidName
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case MatchStarted:
		if !g.opts.AllowLateJoin {
			return Player{}, ErrMatchInProgress
		}
	case MatchOver, MatchStopped:
		return Player{}, ErrMatchOver
	}

	slot := g.leastLoadedSlot()
	if slot == nil {
		return Player{}, ErrNoSlot
	}

	g.nextPlayer++
	p := &Player{
		ID:     g.nextPlayer,
		Name:   name,
		Gold:   g.oracle.Layout().InitialGold,
		Online: true,
	}
	if g.creator == 0 {
		g.creator = p.ID
		p.Creator = true
	}
	g.players[p.ID] = p
	g.seat(p, slot)

	g.log.Info("player joined",
		zap.Int("player", int(p.ID)), zap.String("name", p.Name),
		zap.Int("team", int(p.Team)), zap.Int("slot", int(p.Slot)))
	g.emit(Event{Type: EvtPlayerJoined, Player: *p}, Event{Type: EvtRoster, Roster: g.roster()})
	return *p, nil
}

// RemovePlayer vacates the player's slot. Before the match starts the player is
// forgotten; afterwards it stays known but offline so its towers keep an owner.
// Removing an absent or offline player is a no-op returning ErrUnknownPlayer.
func (g *Game) RemovePlayer(id PlayerID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[id]
	if !ok || !p.Online {
		return ErrUnknownPlayer
	}
	p.Online = false
	g.vacate(p)
	if g.state == MatchInitialized {
		delete(g.players, id)
	}
	if p.Creator {
		p.Creator = false
		g.creator = 0
		g.promoteCreator()
	}

	g.log.Info("player left", zap.Int("player", int(id)), zap.Stringer("match_state", g.state))
	g.emit(Event{Type: EvtPlayerLeft, Player: *p}, Event{Type: EvtRoster, Roster: g.roster()})
	return nil
}

func (g *Game) ChangeTeam(pid PlayerID, tid TeamID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.online(pid)
	if err != nil {
		return err
	}
	if g.state != MatchInitialized {
		return ErrMatchInProgress
	}
	t := g.team(tid)
	if t == nil {
		return ErrUnknownTeam
	}
	if p.Team == tid {
		return nil
	}
	i := slices.IndexFunc(t.Slots, func(s Slot) bool { return s.Player == 0 })
	if i < 0 {
		return ErrNoSlot
	}
	g.seat(p, &t.Slots[i])
	g.emit(Event{Type: EvtRoster, Roster: g.roster()})
	return nil
}

// Start moves the match to started. Only the creator, or AdminID, may start it.
func (g *Game) Start(pid PlayerID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if pid != AdminID {
		p, err := g.online(pid)
		if err != nil {
			return err
		}
		if !p.Creator {
			return ErrUnauthorized
		}
	}
	switch g.state {
	case MatchStarted:
		return ErrMatchInProgress
	case MatchOver, MatchStopped:
		return ErrMatchOver
	}

	g.contenders = g.contenders[:0]
	for _, t := range g.teams {
		if t.Seated() > 0 {
			g.contenders = append(g.contenders, t.ID)
		}
	}
	g.state = MatchStarted
	g.startedAt = time.Now()
	g.log.Info("match started", zap.Int("teams", len(g.contenders)))
	g.emit(Event{Type: EvtMatchState, Match: MatchStarted})
	return nil
}

// Stop ends the match abruptly. Stopping a finished match does nothing.
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == MatchOver || g.state == MatchStopped {
		return
	}
	g.state = MatchStopped
	g.waves = nil
	g.log.Info("match stopped")
	g.emit(Event{Type: EvtMatchState, Match: MatchStopped})
}

func (g *Game) State() MatchState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Game) Player(id PlayerID) (Player, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

func (g *Game) Team(id TeamID) (Team, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t := g.team(id)
	if t == nil {
		return Team{}, false
	}
	return g.teamCopy(t), true
}

func (g *Game) Snapshot() View {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := View{
		MatchID: g.id,
		State:   g.state,
		Terrain: g.oracle.Name(),
		Players: g.roster(),
	}
	for _, t := range g.teams {
		v.Teams = append(v.Teams, g.teamCopy(t))
	}
	for _, t := range g.towers {
		v.Towers = append(v.Towers, *t)
	}
	slices.SortFunc(v.Towers, func(a, b Tower) int { return int(a.ID - b.ID) })
	v.Creatures = g.activeCreatures()
	return v
}

// CreatureStates copies every live creature, in spawn order.
func (g *Game) CreatureStates() []Creature {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.activeCreatures()
}

// The helpers below expect g.mu to be held.

func (g *Game) online(id PlayerID) (*Player, error) {
	p, ok := g.players[id]
	if !ok || !p.Online {
		return nil, ErrUnknownPlayer
	}
	return p, nil
}

func (g *Game) team(id TeamID) *Team {
	for _, t := range g.teams {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (g *Game) slot(t *Team, id SlotID) *Slot {
	for i := range t.Slots {
		if t.Slots[i].ID == id {
			return &t.Slots[i]
		}
	}
	return nil
}

func (g *Game) leastLoadedSlot() *Slot {
	var best *Team
	for _, t := range g.teams {
		if t.Seated() == len(t.Slots) {
			continue
		}
		if best == nil || t.Seated() < best.Seated() {
			best = t
		}
	}
	if best == nil {
		return nil
	}
	i := slices.IndexFunc(best.Slots, func(s Slot) bool { return s.Player == 0 })
	return &best.Slots[i]
}

// seat moves p into s, vacating its previous slot first.
func (g *Game) seat(p *Player, s *Slot) {
	g.vacate(p)
	s.Player = p.ID
	p.Team = s.Team
	p.Slot = s.ID
}

func (g *Game) vacate(p *Player) {
	if t := g.team(p.Team); t != nil {
		if s := g.slot(t, p.Slot); s != nil && s.Player == p.ID {
			s.Player = 0
		}
	}
	p.Slot = 0
	if p.Online {
		p.Team = 0
	}
}

func (g *Game) promoteCreator() {
	var next *Player
	for _, p := range g.players {
		if p.Online && (next == nil || p.ID < next.ID) {
			next = p
		}
	}
	if next != nil {
		next.Creator = true
		g.creator = next.ID
	}
}

func (g *Game) roster() []Player {
	out := make([]Player, 0, len(g.players))
	for _, p := range g.players {
		if p.Online {
			out = append(out, *p)
		}
	}
	slices.SortFunc(out, func(a, b Player) int { return int(a.ID - b.ID) })
	return out
}

func (g *Game) teamCopy(t *Team) Team {
	c := *t
	c.Spawns = slices.Clone(t.Spawns)
	c.Slots = slices.Clone(t.Slots)
	c.Score = 0
	for _, p := range g.players {
		if p.Team == t.ID {
			c.Score += p.Score
		}
	}
	return c
}

func (g *Game) activeCreatures() []Creature {
	out := make([]Creature, 0, len(g.live))
	for _, c := range g.live {
		if !c.State.Terminal() {
			out = append(out, *c)
		}
	}
	return out
}
