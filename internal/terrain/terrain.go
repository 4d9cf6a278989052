// Package terrain provides the walkable-path oracle the game consumes: team layout,
// buildable zones and shortest routes between zones given the current towers.
package terrain

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrNoPath = errors.New("no path")
var ErrInvalidTerrain = errors.New("invalid terrain")
var ErrUnknownTerrain = errors.New("unknown terrain")

type Oracle interface {
	Name() string
	Layout() Layout
	// Buildable reports whether a tower footprint may sit on r, ignoring towers.
	Buildable(r Rect) bool
	// ShortestPath returns waypoints from the centre of from into to, avoiding blocked.
	ShortestPath(from, to Rect, blocked []Rect) ([]Point, error)
}

type Layout struct {
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	InitialLives int          `json:"initial_lives"`
	InitialGold  int          `json:"initial_gold"`
	Teams        []TeamLayout `json:"teams"`
}

type TeamLayout struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Color       string       `json:"color"`
	SpawnZones  []Rect       `json:"spawn_zones"`
	ArrivalZone Rect         `json:"arrival_zone"`
	Slots       []SlotLayout `json:"slots"`
}

type SlotLayout struct {
	ID   int  `json:"id"`
	Zone Rect `json:"zone"`
}

// file is the on-disk form of a terrain.
type file struct {
	Layout
	CellSize int    `json:"cell_size"`
	Walls    []Rect `json:"walls"`
}

// Load returns the terrain called name, looking for <dir>/<name>.json first and then
// at the built-in terrains.
func Load(dir, name string) (*Grid, error) {
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, name+".json"))
		switch {
		case err == nil:
			var f file
			if err := json.Unmarshal(data, &f); err != nil {
				return nil, fmt.Errorf("terrain %q: %w", name, err)
			}
			return NewGrid(name, f.Layout, f.CellSize, f.Walls)
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("terrain %q: %w", name, err)
		}
	}
	build, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTerrain, name)
	}
	return build()
}

func validate(l Layout) error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("%w: no area", ErrInvalidTerrain)
	}
	if len(l.Teams) == 0 {
		return fmt.Errorf("%w: no teams", ErrInvalidTerrain)
	}
	seen := map[int]bool{}
	for _, t := range l.Teams {
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate team id %d", ErrInvalidTerrain, t.ID)
		}
		seen[t.ID] = true
		if len(t.SpawnZones) == 0 || t.ArrivalZone.Empty() {
			return fmt.Errorf("%w: team %d needs a spawn zone and an arrival zone", ErrInvalidTerrain, t.ID)
		}
		// Creatures spawn at a random point inside a spawn zone.
		for _, z := range t.SpawnZones {
			if z.Empty() {
				return fmt.Errorf("%w: team %d has an empty spawn zone", ErrInvalidTerrain, t.ID)
			}
		}
	}
	return nil
}
