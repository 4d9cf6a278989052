package client

import (
	"maps"
	"sync"

	"go.uber.org/zap"

	"github.com/DoyleJ11/td-sync/internal/engine"
	"github.com/DoyleJ11/td-sync/internal/protocol"
)

// Creature is a mirrored creature: what was announced when it spawned, patched by
// every state broadcast since.
type Creature struct {
	protocol.CreatureAdded
	Angle float64
}

// Mirror is the client's copy of the match, built only from broadcasts.
type Mirror struct {
	State     engine.MatchState
	Winner    engine.TeamID
	Players   map[engine.PlayerID]protocol.PlayerState
	Teams     map[engine.TeamID]protocol.TeamState
	Towers    map[engine.TowerID]protocol.TowerInfo
	Creatures map[engine.CreatureID]Creature
}

func newMirror() Mirror {
	return Mirror{
		Players:   make(map[engine.PlayerID]protocol.PlayerState),
		Teams:     make(map[engine.TeamID]protocol.TeamState),
		Towers:    make(map[engine.TowerID]protocol.TowerInfo),
		Creatures: make(map[engine.CreatureID]Creature),
	}
}

func (m Mirror) clone() Mirror {
	return Mirror{
		State:     m.State,
		Winner:    m.Winner,
		Players:   maps.Clone(m.Players),
		Teams:     maps.Clone(m.Teams),
		Towers:    maps.Clone(m.Towers),
		Creatures: maps.Clone(m.Creatures),
	}
}

// Reflector applies broadcasts to a Mirror. It only consumes; it never writes to
// the server.
type Reflector struct {
	mu     sync.RWMutex
	m      Mirror
	log    *zap.Logger
	notify func(protocol.Message)
}

// NewReflector returns an empty mirror. notify, when set, receives every applied
// message except the periodic creature states.
func NewReflector(log *zap.Logger, notify func(protocol.Message)) *Reflector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reflector{m: newMirror(), log: log.Named("reflector"), notify: notify}
}

func (r *Reflector) Snapshot() Mirror {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.m.clone()
}

// Apply folds one broadcast into the mirror. Only envelopes that do not unmarshal
// into their own type return an error; patches for ids the mirror does not hold
// are logged and skipped.
func (r *Reflector) Apply(env protocol.Envelope) error {
	msg, err := r.decode(env)
	if err != nil || msg == nil {
		return err
	}

	r.mu.Lock()
	r.apply(msg)
	r.mu.Unlock()

	if _, periodic := msg.(protocol.CreatureState); !periodic && r.notify != nil {
		r.notify(msg)
	}
	return nil
}

func (r *Reflector) decode(env protocol.Envelope) (protocol.Message, error) {
	switch env.Type {
	case protocol.TypePlayersState:
		return as[protocol.PlayersState](env)
	case protocol.TypePlayerState:
		return as[protocol.PlayerState](env)
	case protocol.TypePlayerLeft:
		return as[protocol.PlayerLeft](env)
	case protocol.TypeTeamState:
		return as[protocol.TeamState](env)
	case protocol.TypeTowerAdded:
		return as[protocol.TowerAdded](env)
	case protocol.TypeTowerUpgraded:
		return as[protocol.TowerUpgraded](env)
	case protocol.TypeTowerRemoved:
		return as[protocol.TowerRemoved](env)
	case protocol.TypeCreatureAdded:
		return as[protocol.CreatureAdded](env)
	case protocol.TypeCreatureState:
		return as[protocol.CreatureState](env)
	case protocol.TypeCreatureRemoved:
		return as[protocol.CreatureRemoved](env)
	case protocol.TypeCreatureArrived:
		return as[protocol.CreatureArrived](env)
	case protocol.TypeMatchState:
		return as[protocol.MatchState](env)
	case protocol.TypeChat:
		return as[protocol.Chat](env)
	default:
		r.log.Warn("unexpected broadcast", zap.Stringer("type", env.Type))
		return nil, nil
	}
}

func as[T protocol.Message](env protocol.Envelope) (protocol.Message, error) {
	m, err := protocol.As[T](env)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Reflector) apply(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.PlayersState:
		clear(r.m.Players)
		for _, p := range m.Players {
			r.m.Players[p.PlayerID] = p
		}

	case protocol.PlayerState:
		if _, ok := r.m.Players[m.PlayerID]; !ok {
			r.stale("player", int(m.PlayerID))
			return
		}
		r.m.Players[m.PlayerID] = m

	case protocol.PlayerLeft:
		// The roster that follows drops or marks the player.
		if p, ok := r.m.Players[m.PlayerID]; ok {
			p.Online = false
			r.m.Players[m.PlayerID] = p
		}

	case protocol.TeamState:
		r.m.Teams[m.TeamID] = m

	case protocol.TowerAdded:
		r.m.Towers[m.TowerID] = m.TowerInfo

	case protocol.TowerUpgraded:
		if _, ok := r.m.Towers[m.TowerID]; !ok {
			r.stale("tower", int(m.TowerID))
			return
		}
		r.m.Towers[m.TowerID] = m.TowerInfo

	case protocol.TowerRemoved:
		if _, ok := r.m.Towers[m.TowerID]; !ok {
			r.stale("tower", int(m.TowerID))
			return
		}
		delete(r.m.Towers, m.TowerID)

	case protocol.CreatureAdded:
		r.m.Creatures[m.CreatureID] = Creature{CreatureAdded: m}

	case protocol.CreatureState:
		c, ok := r.m.Creatures[m.CreatureID]
		if !ok {
			r.stale("creature", int(m.CreatureID))
			return
		}
		c.X, c.Y, c.Health, c.Angle = m.X, m.Y, m.Health, m.Angle
		r.m.Creatures[m.CreatureID] = c

	case protocol.CreatureRemoved:
		if _, ok := r.m.Creatures[m.CreatureID]; !ok {
			r.stale("creature", int(m.CreatureID))
			return
		}
		delete(r.m.Creatures, m.CreatureID)

	case protocol.CreatureArrived:
		delete(r.m.Creatures, m.CreatureID)
		if t, ok := r.m.Teams[m.TeamID]; ok {
			t.Lives = m.Lives
			r.m.Teams[m.TeamID] = t
		}

	case protocol.MatchState:
		r.m.State = m.State
		r.m.Winner = m.WinnerID
	}
}

func (r *Reflector) stale(kind string, id int) {
	r.log.Debug("patch for unknown id ignored", zap.String("kind", kind), zap.Int("id", id))
}
