package engine

import (
	"context"
	"math"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/td-sync/internal/terrain"
)

// Run advances the simulation every tick until ctx is done.
func (g *Game) Run(ctx context.Context, tick time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			g.Step(tick)
		}
	}
}

// Step advances the match by dt: waves release, creatures walk, towers fire.
// It does nothing unless the match is started.
func (g *Game) Step(dt time.Duration) {
	sum, over := g.advance(dt)
	if over && g.opts.OnFinish != nil {
		g.opts.OnFinish(sum)
	}
}

func (g *Game) advance(dt time.Duration) (Summary, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != MatchStarted {
		return Summary{}, false
	}
	g.releaseWaves(dt)
	for _, c := range g.live {
		g.move(c, dt)
	}
	g.fire(dt)
	g.reap()
	return g.checkOver()
}

// ApplyDamage hurts a live creature on behalf of attacker. It reports whether this
// call killed it; later hits on a dead creature are ignored.
func (g *Game) ApplyDamage(id CreatureID, amount int, attacker PlayerID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.creatures[id]
	if !ok {
		return false
	}
	return g.damage(c, amount, attacker)
}

func (g *Game) Creature(id CreatureID) (Creature, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.creatures[id]
	if !ok {
		return Creature{}, false
	}
	return *c, true
}

// move spends the time c has accumulated on unit steps, one per 1/speed seconds.
func (g *Game) move(c *Creature, dt time.Duration) {
	if c.State.Terminal() || c.Speed <= 0 {
		return
	}
	c.State = CreatureMoving
	delay := time.Second / time.Duration(c.Speed)
	c.acc += dt
	for c.acc >= delay {
		c.acc -= delay
		if g.step(c) {
			return
		}
	}
}

// step moves c one unit towards its current waypoint along the axis with the longer
// remaining distance. It reports whether c reached the end of its path.
func (g *Game) step(c *Creature) bool {
	for c.Cursor < len(c.Path) && c.Pos == c.Path[c.Cursor] {
		c.Cursor++
	}
	if c.Cursor >= len(c.Path) {
		g.arrive(c)
		return true
	}

	wp := c.Path[c.Cursor]
	dx, dy := wp.X-c.Pos.X, wp.Y-c.Pos.Y
	if abs(dx) >= abs(dy) {
		c.Pos.X += sign(dx)
		c.Angle = math.Atan2(0, float64(sign(dx)))
	} else {
		c.Pos.Y += sign(dy)
		c.Angle = math.Atan2(float64(sign(dy)), 0)
	}
	if c.Pos == wp {
		c.Cursor++
		if c.Cursor == len(c.Path) {
			g.arrive(c)
			return true
		}
	}
	return false
}

func (g *Game) arrive(c *Creature) {
	c.State = CreatureArrived
	delete(g.creatures, c.ID)

	t := g.team(c.Target)
	if t == nil {
		return
	}
	wasDefeated := t.Defeated()
	if t.Lives > 0 {
		t.Lives--
	}
	if t.Defeated() && !wasDefeated {
		g.log.Info("team defeated", zap.Int("team", int(t.ID)))
	}
	g.emit(Event{Type: EvtCreatureArrived, Creature: *c, Team: g.teamCopy(t)},
		Event{Type: EvtTeamState, Team: g.teamCopy(t)})
}

// fire lets every tower whose cooldown has elapsed shoot the nearest enemy creature
// in range.
func (g *Game) fire(dt time.Duration) {
	ids := make([]TowerID, 0, len(g.towers))
	for id := range g.towers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		t := g.towers[id]
		if t.cooldown > 0 {
			t.cooldown -= dt
			if t.cooldown > 0 {
				continue
			}
		}
		c := g.nearest(t)
		if c == nil {
			t.cooldown = 0
			continue
		}
		g.damage(c, int(math.Round(t.Damage)), t.Owner)
		if t.Rate > 0 {
			t.cooldown = time.Duration(float64(time.Second) / t.Rate)
		}
	}
}

func (g *Game) nearest(t *Tower) *Creature {
	center := t.Center()
	var best *Creature
	bestDist := math.Inf(1)
	for _, c := range g.live {
		if c.State.Terminal() || c.Target != t.Team {
			continue
		}
		d := dist(center, c.Pos)
		if d <= t.Range && d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// damage applies amount to c. The first hit that takes health to zero marks c dead
// and credits the bounty; any later hit finds it terminal and returns false.
func (g *Game) damage(c *Creature, amount int, attacker PlayerID) bool {
	if c.State.Terminal() || amount <= 0 {
		return false
	}
	c.Health = max(c.Health-amount, 0)
	if c.Health > 0 {
		g.emit(Event{Type: EvtCreatureHurt, Creature: *c})
		return false
	}

	c.State = CreatureDead
	delete(g.creatures, c.ID)
	g.emit(Event{Type: EvtCreatureKilled, Creature: *c, Killer: attacker})
	if p, ok := g.players[attacker]; ok {
		p.Gold += c.Bounty
		p.Score += c.Bounty
		g.emit(Event{Type: EvtPlayerState, Player: *p})
	}
	return true
}

// reap drops terminal creatures from the live list.
func (g *Game) reap() {
	g.live = slices.DeleteFunc(g.live, func(c *Creature) bool { return c.State.Terminal() })
}

// checkOver ends the match when at most one contending team is still standing, or
// when a lone team has lost all its lives. A team whose players have all left no
// longer stands.
func (g *Game) checkOver() (Summary, bool) {
	var standing []TeamID
	for _, id := range g.contenders {
		if t := g.team(id); t != nil && t.Seated() > 0 && !t.Defeated() {
			standing = append(standing, id)
		}
	}
	switch {
	case len(g.contenders) == 0:
		return Summary{}, false
	case len(g.contenders) == 1 && len(standing) == 1:
		return Summary{}, false
	case len(g.contenders) > 1 && len(standing) > 1:
		return Summary{}, false
	}

	var winner TeamID
	if len(standing) == 1 && len(g.contenders) > 1 {
		winner = standing[0]
	}
	g.state = MatchOver
	g.waves = nil
	g.log.Info("match over", zap.Int("winner", int(winner)))
	g.emit(Event{Type: EvtMatchState, Match: MatchOver, Winner: winner})

	sum := Summary{
		MatchID:   g.id,
		Terrain:   g.oracle.Name(),
		StartedAt: g.startedAt,
		EndedAt:   time.Now(),
		Winner:    winner,
	}
	for _, t := range g.teams {
		sum.Teams = append(sum.Teams, g.teamCopy(t))
	}
	for _, p := range g.players {
		sum.Players = append(sum.Players, *p)
	}
	slices.SortFunc(sum.Players, func(a, b Player) int { return int(a.ID - b.ID) })
	return sum, true
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func dist(a, b terrain.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}
