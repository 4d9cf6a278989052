// Package hub fans game events out to every connected client's broadcast channel.
package hub

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/td-sync/internal/engine"
	"github.com/DoyleJ11/td-sync/internal/protocol"
)

var ErrSlowClient = errors.New("client outbox full")

// Conn is the write side of one client's broadcast channel.
type Conn interface {
	Send(b []byte) error
	Close() error
}

// Source is the game as seen by the hub.
type Source interface {
	Events() <-chan engine.Event
	CreatureStates() []engine.Creature
	Snapshot() engine.View
}

type Msg interface{ isHubMsg() }

// Attach registers a client and sends it the current state. PlayerID is zero for
// spectators.
type Attach struct {
	ClientID string
	PlayerID engine.PlayerID
	Conn     Conn
}

// Detach drops a client. Detaching an unknown client does nothing.
type Detach struct {
	ClientID string
	Err      error
}

// Publish sends a message to every client.
type Publish struct {
	Msg protocol.Message
}

// Direct sends a message to the clients of one player.
type Direct struct {
	PlayerID engine.PlayerID
	Msg      protocol.Message
}

type GetView struct {
	Reply chan View
}

type Shutdown struct{}

func (Attach) isHubMsg()   {}
func (Detach) isHubMsg()   {}
func (Publish) isHubMsg()  {}
func (Direct) isHubMsg()   {}
func (GetView) isHubMsg()  {}
func (Shutdown) isHubMsg() {}

type View struct {
	Clients int
	Players []engine.PlayerID
}

type Options struct {
	// Refresh is the creature-state broadcast interval.
	Refresh time.Duration
	// Outbox is the number of encoded messages buffered per client.
	Outbox int
	Logger *zap.Logger
	// OnEvict is called, on its own goroutine, for every player whose channel failed.
	OnEvict func(engine.PlayerID)
}

type client struct {
	id     string
	player engine.PlayerID
	conn   Conn
	out    chan []byte
}

type Hub struct {
	inbox   chan Msg
	src     Source
	opts    Options
	log     *zap.Logger
	clients map[string]*client
	running bool
	writers sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, src Source, opts Options) *Hub {
	if opts.Refresh <= 0 {
		opts.Refresh = 100 * time.Millisecond
	}
	if opts.Outbox <= 0 {
		opts.Outbox = 256
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)

	h := &Hub{
		inbox:   make(chan Msg, 64),
		src:     src,
		opts:    opts,
		log:     opts.Logger.Named("hub"),
		clients: make(map[string]*client),
		running: src.Snapshot().State == engine.MatchStarted,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- Msg { return h.inbox }

// Done is closed once the hub has shut down.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

// Close shuts the hub down after everything already in its inbox, then waits for
// the writers to flush what was queued and close their connections.
func (h *Hub) Close() {
	select {
	case h.inbox <- Shutdown{}:
	case <-h.ctx.Done():
	}
	<-h.ctx.Done()
	h.writers.Wait()
}

func (h *Hub) loop() {
	ticker := time.NewTicker(h.opts.Refresh)
	defer ticker.Stop()
	events := h.src.Events()

	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case e, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			h.onEvent(e)

		case <-ticker.C:
			if h.running {
				for _, c := range h.src.CreatureStates() {
					h.broadcast(protocol.CreatureStateOf(c))
				}
			}

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Attach:
				h.attach(msg)

			case Detach:
				if c, ok := h.clients[msg.ClientID]; ok {
					h.evict(c, msg.Err)
				}

			case Publish:
				h.broadcast(msg.Msg)

			case Direct:
				h.direct(msg.PlayerID, msg.Msg)

			case GetView:
				v := View{Clients: len(h.clients)}
				for _, c := range h.clients {
					if c.player != 0 {
						v.Players = append(v.Players, c.player)
					}
				}
				msg.Reply <- v

			case Shutdown:
				h.shutdown()
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) onEvent(e engine.Event) {
	if e.Type == engine.EvtMatchState {
		h.running = e.Match == engine.MatchStarted
	}
	if m, ok := protocol.FromEvent(e); ok {
		h.broadcast(m)
	}
}

func (h *Hub) attach(msg Attach) {
	if old, ok := h.clients[msg.ClientID]; ok {
		h.evict(old, errors.New("replaced"))
	}
	c := &client{
		id:     msg.ClientID,
		player: msg.PlayerID,
		conn:   msg.Conn,
		out:    make(chan []byte, h.opts.Outbox),
	}
	h.clients[c.id] = c
	h.writers.Add(1)
	go h.write(c)

	v := h.src.Snapshot()
	catchUp := []protocol.Message{
		protocol.MatchState{State: v.State},
		protocol.RosterOf(v.Players),
	}
	for _, t := range v.Teams {
		catchUp = append(catchUp, protocol.TeamStateOf(t))
	}
	for _, t := range v.Towers {
		catchUp = append(catchUp, protocol.TowerAdded{TowerInfo: protocol.TowerInfoOf(t)})
	}
	for _, cr := range v.Creatures {
		catchUp = append(catchUp, protocol.CreatureAddedOf(cr))
	}
	for _, m := range catchUp {
		b, err := protocol.Encode(m)
		if err != nil {
			h.log.Error("encode catch-up", zap.Error(err))
			continue
		}
		if !h.enqueue(c, b) {
			return
		}
	}
	h.log.Info("client attached", zap.String("client", c.id), zap.Int("player", int(c.player)))
}

func (h *Hub) broadcast(m protocol.Message) {
	b, err := protocol.Encode(m)
	if err != nil {
		h.log.Error("encode broadcast", zap.Stringer("type", m.MessageType()), zap.Error(err))
		return
	}
	for _, c := range h.clients {
		h.enqueue(c, b)
	}
}

func (h *Hub) direct(pid engine.PlayerID, m protocol.Message) {
	b, err := protocol.Encode(m)
	if err != nil {
		h.log.Error("encode direct", zap.Stringer("type", m.MessageType()), zap.Error(err))
		return
	}
	for _, c := range h.clients {
		if c.player == pid {
			h.enqueue(c, b)
		}
	}
}

// enqueue hands b to the client's writer without waiting. A client that has fallen
// a full outbox behind is evicted.
func (h *Hub) enqueue(c *client, b []byte) bool {
	select {
	case c.out <- b:
		return true
	default:
		h.evict(c, ErrSlowClient)
		return false
	}
}

func (h *Hub) evict(c *client, reason error) {
	delete(h.clients, c.id)
	close(c.out)
	h.log.Info("client evicted", zap.String("client", c.id), zap.Int("player", int(c.player)), zap.Error(reason))
	if c.player != 0 && h.opts.OnEvict != nil {
		go h.opts.OnEvict(c.player)
	}
}

// write drains c.out into the connection. On the first failure it asks the loop to
// evict c, then discards whatever is still queued.
func (h *Hub) write(c *client) {
	defer h.writers.Done()
	defer c.conn.Close()
	for b := range c.out {
		if err := c.conn.Send(b); err != nil {
			select {
			case h.inbox <- Detach{ClientID: c.id, Err: err}:
			case <-h.ctx.Done():
			}
			for range c.out {
			}
			return
		}
	}
}

func (h *Hub) shutdown() {
	for id, c := range h.clients {
		close(c.out)
		delete(h.clients, id)
	}
}
