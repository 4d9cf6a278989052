package engine

import "errors"

var ErrUnsupportedCommand = errors.New("unsupported command")

type CommandType string

const (
	CmdPlaceTower   CommandType = "PlaceTower"
	CmdUpgradeTower CommandType = "UpgradeTower"
	CmdSellTower    CommandType = "SellTower"
	CmdLaunchWave   CommandType = "LaunchWave"
	CmdChangeTeam   CommandType = "ChangeTeam"
	CmdStartMatch   CommandType = "StartMatch"
)

type Command struct {
	Type      CommandType
	Player    PlayerID
	Tower     TowerID
	TowerType TowerType
	X, Y      int
	Creature  CreatureType
	Count     int
	Team      TeamID
}

// Result carries whatever the command produced; only the field matching the
// command type is set.
type Result struct {
	Tower  Tower
	Wave   Wave
	Refund int
}

// Apply routes cmd to the matching operation.
func (g *Game) Apply(cmd Command) (Result, error) {
	switch cmd.Type {
	case CmdPlaceTower:
		t, err := g.PlaceTower(cmd.Player, cmd.TowerType, cmd.X, cmd.Y)
		return Result{Tower: t}, err
	case CmdUpgradeTower:
		t, err := g.UpgradeTower(cmd.Player, cmd.Tower)
		return Result{Tower: t}, err
	case CmdSellTower:
		r, err := g.SellTower(cmd.Player, cmd.Tower)
		return Result{Refund: r}, err
	case CmdLaunchWave:
		w, err := g.LaunchWave(cmd.Player, cmd.Creature, cmd.Count)
		return Result{Wave: w}, err
	case CmdChangeTeam:
		return Result{}, g.ChangeTeam(cmd.Player, cmd.Team)
	case CmdStartMatch:
		return Result{}, g.Start(cmd.Player)
	default:
		return Result{}, ErrUnsupportedCommand
	}
}
