package session

import (
	"errors"

	"go.uber.org/zap"

	"github.com/DoyleJ11/td-sync/internal/engine"
	"github.com/DoyleJ11/td-sync/internal/hub"
	"github.com/DoyleJ11/td-sync/internal/protocol"
)

// dispatch turns one request line into exactly one reply. Panics below it become
// ERROR replies so the connection keeps its one-reply-per-request rhythm.
func (s *Server) dispatch(pid engine.PlayerID, line []byte, log *zap.Logger) (reply protocol.Reply) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("dispatch panicked", zap.Any("panic", r), zap.Stack("stack"))
			reply.Status = protocol.StatusError
		}
	}()

	env, err := protocol.Decode(line)
	if err != nil {
		log.Warn("decode request", zap.ByteString("line", line), zap.Error(err))
		return protocol.Reply{Status: protocol.StatusError}
	}
	reply.Request = env.Type

	if env.Type == protocol.TypeChat {
		reply.Status = s.chat(pid, env)
		return reply
	}

	cmd, err := toEngineCommand(pid, env)
	if err != nil {
		log.Warn("unsupported request", zap.Stringer("type", env.Type), zap.Error(err))
		reply.Status = protocol.StatusError
		return reply
	}

	res, err := s.game.Apply(cmd)
	reply.Status = protocol.StatusOf(err)
	if err != nil {
		log.Debug("request refused", zap.Stringer("type", env.Type), zap.Error(err))
		return reply
	}
	switch cmd.Type {
	case engine.CmdPlaceTower, engine.CmdUpgradeTower:
		reply.TowerID = res.Tower.ID
	case engine.CmdSellTower:
		reply.TowerID = cmd.Tower
		reply.Refund = res.Refund
	}
	return reply
}

var errNotARequest = errors.New("not a request")

func toEngineCommand(pid engine.PlayerID, env protocol.Envelope) (engine.Command, error) {
	cmd := engine.Command{Player: pid}
	switch env.Type {
	case protocol.TypeTowerAdd:
		m, err := protocol.As[protocol.TowerAdd](env)
		if err != nil {
			return cmd, err
		}
		cmd.Type, cmd.TowerType, cmd.X, cmd.Y = engine.CmdPlaceTower, m.TowerType, m.X, m.Y
	case protocol.TypeTowerUpgrade:
		m, err := protocol.As[protocol.TowerUpgrade](env)
		if err != nil {
			return cmd, err
		}
		cmd.Type, cmd.Tower = engine.CmdUpgradeTower, m.TowerID
	case protocol.TypeTowerSell:
		m, err := protocol.As[protocol.TowerSell](env)
		if err != nil {
			return cmd, err
		}
		cmd.Type, cmd.Tower = engine.CmdSellTower, m.TowerID
	case protocol.TypeWaveRequest:
		m, err := protocol.As[protocol.WaveRequest](env)
		if err != nil {
			return cmd, err
		}
		cmd.Type, cmd.Creature, cmd.Count = engine.CmdLaunchWave, m.CreatureType, m.Count
	case protocol.TypeTeamChange:
		m, err := protocol.As[protocol.TeamChange](env)
		if err != nil {
			return cmd, err
		}
		cmd.Type, cmd.Team = engine.CmdChangeTeam, m.TeamID
	case protocol.TypeMatchStart:
		cmd.Type = engine.CmdStartMatch
	default:
		return cmd, errNotARequest
	}
	return cmd, nil
}

// chat forwards a message on the broadcast channel, to everyone or to one player.
func (s *Server) chat(pid engine.PlayerID, env protocol.Envelope) protocol.Status {
	m, err := protocol.As[protocol.Chat](env)
	if err != nil {
		return protocol.StatusError
	}
	from, ok := s.game.Player(pid)
	if !ok {
		return protocol.StatusUnknownPlayer
	}
	out := protocol.Chat{Message: m.Message, PlayerID: pid, Name: from.Name}

	if m.TargetID == 0 {
		s.toHub(hub.Publish{Msg: out})
		return protocol.StatusOK
	}
	if to, ok := s.game.Player(m.TargetID); !ok || !to.Online {
		return protocol.StatusUnknownPlayer
	}
	out.TargetID = m.TargetID
	s.toHub(hub.Direct{PlayerID: m.TargetID, Msg: out})
	return protocol.StatusOK
}
