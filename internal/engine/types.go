package engine

import (
	"time"

	"github.com/DoyleJ11/td-sync/internal/terrain"
)

type (
	PlayerID   int
	TeamID     int
	SlotID     int
	TowerID    int
	CreatureID int
	WaveID     int
)

// AdminID starts or stops a match on behalf of the operator rather than a player.
const AdminID PlayerID = -1

type MatchState int

const (
	MatchInitialized MatchState = iota + 1
	MatchStarted
	MatchOver
	MatchStopped
)

func (s MatchState) String() string {
	switch s {
	case MatchInitialized:
		return "initialized"
	case MatchStarted:
		return "started"
	case MatchOver:
		return "over"
	case MatchStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type Player struct {
	ID      PlayerID
	Name    string
	Team    TeamID // 0 until seated
	Slot    SlotID
	Gold    int
	Score   int
	Online  bool
	Creator bool
}

type Slot struct {
	ID     SlotID
	Team   TeamID
	Zone   terrain.Rect
	Player PlayerID // 0 when free
}

type Team struct {
	ID           TeamID
	Name         string
	Color        string
	Lives        int
	InitialLives int
	Score        int // sum of member scores, filled on copy
	Spawns       []terrain.Rect
	Arrival      terrain.Rect
	Slots        []Slot
	PathLength   int
}

func (t Team) Defeated() bool { return t.Lives <= 0 }

func (t Team) Seated() int {
	n := 0
	for _, s := range t.Slots {
		if s.Player != 0 {
			n++
		}
	}
	return n
}

type Tower struct {
	ID       TowerID
	Type     TowerType
	Owner    PlayerID
	Team     TeamID
	Pos      terrain.Point // top-left corner of the footprint
	Size     int
	Level    int
	Price    int // cost of the next upgrade
	Invested int
	Damage   float64
	Range    float64
	Rate     float64 // shots per second

	cooldown time.Duration
}

func (t Tower) Footprint() terrain.Rect {
	return terrain.Rect{X: t.Pos.X, Y: t.Pos.Y, W: t.Size, H: t.Size}
}

func (t Tower) Center() terrain.Point { return t.Footprint().Center() }

type CreatureState int

const (
	CreatureSpawned CreatureState = iota + 1
	CreatureMoving
	CreatureArrived
	CreatureDead
)

func (s CreatureState) Terminal() bool { return s == CreatureArrived || s == CreatureDead }

type Creature struct {
	ID        CreatureID
	Type      CreatureType
	Pos       terrain.Point
	Health    int
	MaxHealth int
	Speed     int // unit steps per second
	Bounty    int
	Angle     float64 // radians, direction of the last step
	Sender    PlayerID
	Target    TeamID
	Path      []terrain.Point
	Cursor    int
	State     CreatureState

	acc time.Duration
}

type Wave struct {
	ID       WaveID
	Sender   PlayerID
	Target   TeamID
	Creature CreatureType
	Count    int
	Released int
	Cadence  time.Duration

	spawn terrain.Rect
	timer time.Duration
}

// View is a consistent copy of the whole model.
type View struct {
	MatchID   string
	State     MatchState
	Terrain   string
	Players   []Player
	Teams     []Team
	Towers    []Tower
	Creatures []Creature
}

type Summary struct {
	MatchID   string
	Terrain   string
	StartedAt time.Time
	EndedAt   time.Time
	Winner    TeamID // 0 when nobody is left standing
	Teams     []Team
	Players   []Player
}
