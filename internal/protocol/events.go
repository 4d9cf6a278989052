package protocol

import "github.com/DoyleJ11/td-sync/internal/engine"

// FromEvent converts a domain event into the message broadcast for it. Events that
// are not broadcast return false.
func FromEvent(e engine.Event) (Message, bool) {
	switch e.Type {
	case engine.EvtRoster:
		return RosterOf(e.Roster), true
	case engine.EvtPlayerState:
		return PlayerStateOf(e.Player), true
	case engine.EvtPlayerLeft:
		return PlayerLeft{PlayerID: e.Player.ID, Name: e.Player.Name}, true
	case engine.EvtTeamState:
		return TeamStateOf(e.Team), true
	case engine.EvtTowerAdded:
		return TowerAdded{TowerInfo: TowerInfoOf(e.Tower)}, true
	case engine.EvtTowerUpgraded:
		return TowerUpgraded{TowerInfo: TowerInfoOf(e.Tower)}, true
	case engine.EvtTowerRemoved:
		return TowerRemoved{TowerID: e.Tower.ID, OwnerID: e.Tower.Owner}, true
	case engine.EvtCreatureAdded:
		return CreatureAddedOf(e.Creature), true
	case engine.EvtCreatureKilled:
		return CreatureRemoved{CreatureID: e.Creature.ID, KillerID: e.Killer}, true
	case engine.EvtCreatureArrived:
		return CreatureArrived{CreatureID: e.Creature.ID, TeamID: e.Team.ID, Lives: e.Team.Lives}, true
	case engine.EvtMatchState:
		return MatchState{State: e.Match, WinnerID: e.Winner}, true
	default:
		// PlayerJoined is covered by the roster that follows it; hurt creatures show
		// up in the periodic creature states.
		return nil, false
	}
}

func PlayerStateOf(p engine.Player) PlayerState {
	return PlayerState{
		PlayerID: p.ID,
		Name:     p.Name,
		TeamID:   p.Team,
		SlotID:   p.Slot,
		Gold:     p.Gold,
		Score:    p.Score,
		Online:   p.Online,
		Creator:  p.Creator,
	}
}

func RosterOf(ps []engine.Player) PlayersState {
	out := PlayersState{Players: make([]PlayerState, 0, len(ps))}
	for _, p := range ps {
		out.Players = append(out.Players, PlayerStateOf(p))
	}
	return out
}

func TeamStateOf(t engine.Team) TeamState {
	return TeamState{
		TeamID:     t.ID,
		Name:       t.Name,
		Color:      t.Color,
		Lives:      t.Lives,
		Score:      t.Score,
		Defeated:   t.Defeated(),
		PathLength: t.PathLength,
	}
}

func TowerInfoOf(t engine.Tower) TowerInfo {
	return TowerInfo{
		TowerID:   t.ID,
		TowerType: t.Type,
		X:         t.Pos.X,
		Y:         t.Pos.Y,
		Size:      t.Size,
		OwnerID:   t.Owner,
		TeamID:    t.Team,
		Level:     t.Level,
		Price:     t.Price,
		Invested:  t.Invested,
		Damage:    t.Damage,
		Range:     t.Range,
		Rate:      t.Rate,
	}
}

func CreatureAddedOf(c engine.Creature) CreatureAdded {
	return CreatureAdded{
		CreatureID:   c.ID,
		CreatureType: c.Type,
		X:            c.Pos.X,
		Y:            c.Pos.Y,
		Health:       c.Health,
		MaxHealth:    c.MaxHealth,
		Speed:        c.Speed,
		Bounty:       c.Bounty,
		SenderID:     c.Sender,
		TeamID:       c.Target,
	}
}

func CreatureStateOf(c engine.Creature) CreatureState {
	return CreatureState{
		CreatureID: c.ID,
		X:          c.Pos.X,
		Y:          c.Pos.Y,
		Health:     c.Health,
		Angle:      c.Angle,
	}
}
