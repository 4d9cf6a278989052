package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/td-sync/internal/terrain"
)

// LaunchWave debits count creatures of type typ and queues them for release at the
// wave cadence from one of the requester's spawn zones.
func (g *Game) LaunchWave(pid PlayerID, typ CreatureType, count int) (Wave, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.online(pid)
	if err != nil {
		return Wave{}, err
	}
	if g.state != MatchStarted {
		return Wave{}, ErrMatchNotStarted
	}
	spec, ok := creatureSpecs[typ]
	if !ok {
		return Wave{}, ErrUnknownCreatureType
	}
	if count < 1 || count > MaxWave {
		return Wave{}, ErrInvalidCount
	}
	own := g.team(p.Team)
	if own == nil {
		return Wave{}, ErrUnknownPlayer
	}
	target := g.targetFor(own)
	if target == nil {
		return Wave{}, ErrNoTarget
	}
	cost := count * spec.Cost
	if p.Gold < cost {
		return Wave{}, ErrInsufficientFunds
	}

	p.Gold -= cost
	g.nextWave++
	w := &Wave{
		ID:       g.nextWave,
		Sender:   p.ID,
		Target:   target.ID,
		Creature: typ,
		Count:    count,
		Cadence:  g.opts.WaveCadence,
		spawn:    own.Spawns[g.rng.Intn(len(own.Spawns))],
		timer:    g.opts.WaveCadence,
	}
	g.waves = append(g.waves, w)

	g.log.Debug("wave launched",
		zap.Int("player", int(p.ID)), zap.Int("target", int(target.ID)),
		zap.String("creature", spec.Name), zap.Int("count", count))
	g.emit(Event{Type: EvtPlayerState, Player: *p})
	return *w, nil
}

func (g *Game) targetFor(own *Team) *Team {
	if g.opts.Target == TargetSelf {
		return own
	}
	i := 0
	for i < len(g.teams) && g.teams[i] != own {
		i++
	}
	for k := 1; k < len(g.teams); k++ {
		t := g.teams[(i+k)%len(g.teams)]
		if t.Seated() > 0 && !t.Defeated() {
			return t
		}
	}
	return nil
}

// releaseWaves spawns the creatures whose cadence has elapsed.
func (g *Game) releaseWaves(dt time.Duration) {
	kept := g.waves[:0]
	for _, w := range g.waves {
		w.timer += dt
		for w.timer >= w.Cadence && w.Released < w.Count {
			w.timer -= w.Cadence
			w.Released++
			g.spawn(w)
		}
		if w.Released < w.Count {
			kept = append(kept, w)
		}
	}
	g.waves = kept
}

func (g *Game) spawn(w *Wave) {
	spec := creatureSpecs[w.Creature]
	target := g.team(w.Target)
	pos := terrain.Point{
		X: w.spawn.X + g.rng.Intn(w.spawn.W),
		Y: w.spawn.Y + g.rng.Intn(w.spawn.H),
	}
	path, err := g.oracle.ShortestPath(terrain.At(pos), target.Arrival, g.footprints())
	if err != nil {
		g.log.Warn("creature has no route", zap.Int("wave", int(w.ID)), zap.Error(err))
		return
	}

	g.nextCreature++
	c := &Creature{
		ID:        g.nextCreature,
		Type:      w.Creature,
		Pos:       pos,
		Health:    spec.Health,
		MaxHealth: spec.Health,
		Speed:     spec.Speed,
		Bounty:    spec.Bounty,
		Sender:    w.Sender,
		Target:    w.Target,
		Path:      path,
		State:     CreatureSpawned,
	}
	g.creatures[c.ID] = c
	g.live = append(g.live, c)
	g.emit(Event{Type: EvtCreatureAdded, Creature: *c})
}
