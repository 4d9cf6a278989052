package terrain

import (
	"errors"
	"fmt"
)

// Grid is an Oracle over square cells. A cell is walkable unless a wall or a blocked
// rectangle overlaps it.
type Grid struct {
	name   string
	layout Layout
	cell   int
	cols   int
	rows   int
	walls  []bool
	zones  []Rect // spawn and arrival zones, never buildable
}

func NewGrid(name string, l Layout, cellSize int, walls []Rect) (*Grid, error) {
	if err := validate(l); err != nil {
		return nil, fmt.Errorf("terrain %q: %w", name, err)
	}
	if cellSize <= 0 {
		return nil, errors.New("terrain cell size must be positive")
	}
	g := &Grid{
		name:   name,
		layout: l,
		cell:   cellSize,
		cols:   (l.Width + cellSize - 1) / cellSize,
		rows:   (l.Height + cellSize - 1) / cellSize,
	}
	g.walls = make([]bool, g.cols*g.rows)
	for i := range g.walls {
		c := g.cellRect(i)
		for _, w := range walls {
			if c.Intersects(w) {
				g.walls[i] = true
				break
			}
		}
	}
	for _, t := range l.Teams {
		g.zones = append(g.zones, t.SpawnZones...)
		g.zones = append(g.zones, t.ArrivalZone)
	}
	return g, nil
}

func (g *Grid) Name() string   { return g.name }
func (g *Grid) Layout() Layout { return g.layout }

func (g *Grid) Buildable(r Rect) bool {
	if r.Empty() || !(Rect{W: g.layout.Width, H: g.layout.Height}).ContainsRect(r) {
		return false
	}
	for _, z := range g.zones {
		if z.Intersects(r) {
			return false
		}
	}
	for i, wall := range g.walls {
		if wall && g.cellRect(i).Intersects(r) {
			return false
		}
	}
	return true
}

func (g *Grid) ShortestPath(from, to Rect, blocked []Rect) ([]Point, error) {
	start, ok := g.index(from.Center())
	if !ok {
		return nil, ErrNoPath
	}
	free := func(i int) bool {
		if g.walls[i] {
			return false
		}
		c := g.cellRect(i)
		for _, b := range blocked {
			if c.Intersects(b) {
				return false
			}
		}
		return true
	}
	if !free(start) {
		return nil, ErrNoPath
	}

	prev := make([]int, len(g.walls))
	for i := range prev {
		prev[i] = -1
	}
	prev[start] = start
	queue := []int{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if g.cellRect(cur).Intersects(to) {
			return g.trace(prev, cur), nil
		}
		for _, n := range g.neighbours(cur) {
			if prev[n] != -1 || !free(n) {
				continue
			}
			prev[n] = cur
			queue = append(queue, n)
		}
	}
	return nil, ErrNoPath
}

// trace walks prev back from end and returns the turning points, end included.
func (g *Grid) trace(prev []int, end int) []Point {
	var cells []int
	for i := end; ; i = prev[i] {
		cells = append(cells, i)
		if prev[i] == i {
			break
		}
	}
	pts := make([]Point, 0, len(cells))
	for i := len(cells) - 1; i >= 0; i-- {
		p := g.cellRect(cells[i]).Center()
		if n := len(pts); n >= 2 && collinear(pts[n-2], pts[n-1], p) {
			pts[n-1] = p
			continue
		}
		pts = append(pts, p)
	}
	return pts
}

func collinear(a, b, c Point) bool {
	return (a.X == b.X && b.X == c.X) || (a.Y == b.Y && b.Y == c.Y)
}

func (g *Grid) neighbours(i int) []int {
	col, row := i%g.cols, i/g.cols
	out := make([]int, 0, 4)
	if col > 0 {
		out = append(out, i-1)
	}
	if col < g.cols-1 {
		out = append(out, i+1)
	}
	if row > 0 {
		out = append(out, i-g.cols)
	}
	if row < g.rows-1 {
		out = append(out, i+g.cols)
	}
	return out
}

func (g *Grid) index(p Point) (int, bool) {
	if p.X < 0 || p.Y < 0 || p.X >= g.layout.Width || p.Y >= g.layout.Height {
		return 0, false
	}
	return (p.Y/g.cell)*g.cols + p.X/g.cell, true
}

func (g *Grid) cellRect(i int) Rect {
	return Rect{X: (i % g.cols) * g.cell, Y: (i / g.cols) * g.cell, W: g.cell, H: g.cell}
}
