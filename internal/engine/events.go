package engine

import (
	"context"
	"sync"
)

type EventType string

const (
	EvtPlayerJoined    EventType = "PlayerJoined"
	EvtPlayerLeft      EventType = "PlayerLeft"
	EvtRoster          EventType = "Roster"
	EvtPlayerState     EventType = "PlayerState"
	EvtTeamState       EventType = "TeamState"
	EvtTowerAdded      EventType = "TowerAdded"
	EvtTowerUpgraded   EventType = "TowerUpgraded"
	EvtTowerRemoved    EventType = "TowerRemoved"
	EvtCreatureAdded   EventType = "CreatureAdded"
	EvtCreatureHurt    EventType = "CreatureHurt"
	EvtCreatureKilled  EventType = "CreatureKilled"
	EvtCreatureArrived EventType = "CreatureArrived"
	EvtMatchState      EventType = "MatchState"
)

/*
	PlaceTower   -> TowerAdded, PlayerState (+ TeamState when a path length changes)
	UpgradeTower -> TowerUpgraded, PlayerState
	SellTower    -> TowerRemoved, PlayerState
	LaunchWave   -> PlayerState, then CreatureAdded per release
	AddPlayer    -> PlayerJoined, Roster
	RemovePlayer -> PlayerLeft, Roster
	ChangeTeam   -> Roster
	Step         -> CreatureHurt / CreatureKilled + PlayerState / CreatureArrived + TeamState,
	                MatchState(over)
*/

// Event is a copy of the state that changed; it never aliases the model.
type Event struct {
	Type     EventType
	Player   Player
	Roster   []Player
	Team     Team
	Tower    Tower
	Creature Creature
	Killer   PlayerID
	Match    MatchState
	Winner   TeamID
}

// queue is an unbounded FIFO between the game lock and the consumer. push never
// blocks, so events can be recorded while the lock is held without stalling on a
// slow reader.
type queue struct {
	mu     sync.Mutex
	items  []Event
	signal chan struct{}
	out    chan Event
}

func newQueue() *queue {
	return &queue{
		signal: make(chan struct{}, 1),
		out:    make(chan Event, 64),
	}
}

func (q *queue) push(evts ...Event) {
	if len(evts) == 0 {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, evts...)
	q.mu.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *queue) run(ctx context.Context) {
	defer close(q.out)
	for {
		q.mu.Lock()
		batch := q.items
		q.items = nil
		q.mu.Unlock()

		for _, e := range batch {
			select {
			case q.out <- e:
			case <-ctx.Done():
				return
			}
		}
		if len(batch) > 0 {
			continue
		}

		select {
		case <-q.signal:
		case <-ctx.Done():
			return
		}
	}
}
