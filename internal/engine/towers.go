package engine

import (
	"errors"

	"go.uber.org/zap"

	"github.com/DoyleJ11/td-sync/internal/terrain"
)

// PlaceTower builds a tower of type typ with its top-left corner at (x, y).
// Nothing is mutated unless every check passes.
func (g *Game) PlaceTower(pid PlayerID, typ TowerType, x, y int) (Tower, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.online(pid)
	if err != nil {
		return Tower{}, err
	}
	if g.state == MatchOver || g.state == MatchStopped {
		return Tower{}, ErrMatchOver
	}
	spec, ok := towerSpecs[typ]
	if !ok {
		return Tower{}, ErrUnknownTowerType
	}

	fp := terrain.Rect{X: x, Y: y, W: spec.Size, H: spec.Size}
	if !g.canBuild(p, fp) {
		return Tower{}, ErrZoneInaccessible
	}
	if p.Gold < spec.Price {
		return Tower{}, ErrInsufficientFunds
	}
	if err := g.checkRoutes(append(g.footprints(), fp)); err != nil {
		return Tower{}, err
	}

	p.Gold -= spec.Price
	g.nextTower++
	t := &Tower{
		ID:       g.nextTower,
		Type:     typ,
		Owner:    p.ID,
		Team:     p.Team,
		Pos:      terrain.Point{X: x, Y: y},
		Size:     spec.Size,
		Level:    1,
		Price:    spec.Price,
		Invested: spec.Price,
		Damage:   spec.Damage,
		Range:    spec.Range,
		Rate:     spec.Rate,
	}
	g.towers[t.ID] = t

	g.log.Debug("tower placed",
		zap.Int("tower", int(t.ID)), zap.Int("player", int(p.ID)), zap.String("type", spec.Name),
		zap.Int("x", x), zap.Int("y", y))
	g.emit(Event{Type: EvtTowerAdded, Tower: *t}, Event{Type: EvtPlayerState, Player: *p})
	g.fieldChanged()
	return *t, nil
}

func (g *Game) UpgradeTower(pid PlayerID, tid TowerID) (Tower, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.online(pid)
	if err != nil {
		return Tower{}, err
	}
	t, ok := g.towers[tid]
	if !ok {
		return Tower{}, ErrTowerUnknown
	}
	if t.Owner != p.ID {
		return Tower{}, ErrUnauthorized
	}
	spec := towerSpecs[t.Type]
	if t.Level >= spec.MaxLevel {
		return Tower{}, ErrMaxLevel
	}
	if p.Gold < t.Price {
		return Tower{}, ErrInsufficientFunds
	}

	p.Gold -= t.Price
	spec.upgrade(t)
	t.Level++

	g.emit(Event{Type: EvtTowerUpgraded, Tower: *t}, Event{Type: EvtPlayerState, Player: *p})
	return *t, nil
}

// SellTower removes the tower and credits its owner with the refund.
func (g *Game) SellTower(pid PlayerID, tid TowerID) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.online(pid)
	if err != nil {
		return 0, err
	}
	t, ok := g.towers[tid]
	if !ok {
		return 0, ErrTowerUnknown
	}
	if t.Owner != p.ID {
		return 0, ErrUnauthorized
	}

	r := refund(t)
	p.Gold += r
	delete(g.towers, tid)

	g.emit(Event{Type: EvtTowerRemoved, Tower: *t}, Event{Type: EvtPlayerState, Player: *p})
	g.fieldChanged()
	return r, nil
}

func (g *Game) Tower(id TowerID) (Tower, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.towers[id]
	if !ok {
		return Tower{}, false
	}
	return *t, true
}

func (g *Game) canBuild(p *Player, fp terrain.Rect) bool {
	t := g.team(p.Team)
	if t == nil {
		return false
	}
	s := g.slot(t, p.Slot)
	if s == nil || !s.Zone.ContainsRect(fp) || !g.oracle.Buildable(fp) {
		return false
	}
	for _, other := range g.towers {
		if other.Footprint().Intersects(fp) {
			return false
		}
	}
	return true
}

func (g *Game) footprints() []terrain.Rect {
	out := make([]terrain.Rect, 0, len(g.towers))
	for _, t := range g.towers {
		out = append(out, t.Footprint())
	}
	return out
}

type route struct {
	from terrain.Rect
	to   *Team
}

// routes lists every spawn to arrival pair a wave may use under the target policy.
func (g *Game) routes() []route {
	var out []route
	for _, src := range g.teams {
		for _, dst := range g.teams {
			if (g.opts.Target == TargetSelf) != (src == dst) {
				continue
			}
			for _, z := range src.Spawns {
				out = append(out, route{from: z, to: dst})
			}
		}
	}
	return out
}

func (g *Game) checkRoutes(blocked []terrain.Rect) error {
	for _, r := range g.routes() {
		if _, err := g.oracle.ShortestPath(r.from, r.to.Arrival, blocked); err != nil {
			if errors.Is(err, terrain.ErrNoPath) {
				return ErrPathBlocked
			}
			return err
		}
	}
	return nil
}

// fieldChanged recomputes path lengths and gives live creatures the new shortest
// route from where they stand.
func (g *Game) fieldChanged() {
	g.refreshPathLengths()
	blocked := g.footprints()
	for _, c := range g.live {
		if c.State.Terminal() {
			continue
		}
		t := g.team(c.Target)
		path, err := g.oracle.ShortestPath(terrain.At(c.Pos), t.Arrival, blocked)
		if err != nil {
			g.log.Debug("creature keeps its path", zap.Int("creature", int(c.ID)), zap.Error(err))
			continue
		}
		c.Path, c.Cursor = path, 0
	}
}

func (g *Game) refreshPathLengths() {
	blocked := g.footprints()
	best := map[TeamID]int{}
	for _, r := range g.routes() {
		path, err := g.oracle.ShortestPath(r.from, r.to.Arrival, blocked)
		if err != nil {
			continue
		}
		n := pathLength(r.from.Center(), path)
		if cur, ok := best[r.to.ID]; !ok || n < cur {
			best[r.to.ID] = n
		}
	}
	for _, t := range g.teams {
		if n := best[t.ID]; n != t.PathLength {
			t.PathLength = n
			g.emit(Event{Type: EvtTeamState, Team: g.teamCopy(t)})
		}
	}
}

func pathLength(from terrain.Point, path []terrain.Point) int {
	n, cur := 0, from
	for _, p := range path {
		n += abs(p.X-cur.X) + abs(p.Y-cur.Y)
		cur = p
	}
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
