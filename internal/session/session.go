// Package session runs the two TCP channels of a match: the request channel, where
// each client sends requests and reads one reply per request, and the broadcast
// channel, where the hub pushes game events.
package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/td-sync/internal/engine"
	"github.com/DoyleJ11/td-sync/internal/hub"
	"github.com/DoyleJ11/td-sync/internal/protocol"
)

var ErrBadSubscribe = errors.New("subscribe rejected")

type Options struct {
	// AdvertisedPort is the broadcast port sent in PlayerInit. Zero means the port
	// of the broadcast listener.
	AdvertisedPort   int
	Refresh          time.Duration
	Outbox           int
	WriteTimeout     time.Duration
	HandshakeTimeout time.Duration
	Logger           *zap.Logger
}

type player struct {
	id       engine.PlayerID
	token    string
	req      net.Conn
	attached bool
}

type Server struct {
	game *engine.Game
	hub  *hub.Hub
	opts Options
	log  *zap.Logger

	mu      sync.Mutex
	players map[engine.PlayerID]*player
	port    int
	conns   sync.WaitGroup
}

// New wires a session server to the game. The hub it owns outlives the context
// passed to Serve so the stop notification still goes out on shutdown.
func New(game *engine.Game, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 2 * time.Second
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = 5 * time.Second
	}
	s := &Server{
		game:    game,
		opts:    opts,
		log:     opts.Logger.Named("session"),
		players: make(map[engine.PlayerID]*player),
	}
	s.hub = hub.New(context.Background(), game, hub.Options{
		Refresh: opts.Refresh,
		Outbox:  opts.Outbox,
		Logger:  opts.Logger,
		OnEvict: s.Evict,
	})
	return s
}

// Hub is the fan-out the spectator feed attaches to.
func (s *Server) Hub() *hub.Hub { return s.hub }

// Serve accepts on both listeners until ctx is done or a listener fails, then
// stops the match and closes every connection.
func (s *Server) Serve(ctx context.Context, reqLn, bcastLn net.Listener) error {
	s.mu.Lock()
	s.port = s.opts.AdvertisedPort
	if s.port == 0 {
		if a, ok := bcastLn.Addr().(*net.TCPAddr); ok {
			s.port = a.Port
		}
	}
	s.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.accept(ctx, reqLn, s.handleRequests) })
	g.Go(func() error { return s.accept(ctx, bcastLn, s.handleBroadcast) })
	g.Go(func() error {
		<-ctx.Done()
		return multierr.Combine(ignoreClosed(reqLn.Close()), ignoreClosed(bcastLn.Close()))
	})
	s.log.Info("serving",
		zap.Stringer("requests", reqLn.Addr()),
		zap.Stringer("broadcast", bcastLn.Addr()),
		zap.String("match", s.game.ID()))

	err := g.Wait()
	return multierr.Append(err, s.shutdown())
}

func (s *Server) accept(ctx context.Context, ln net.Listener, handle func(net.Conn)) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept on %s: %w", ln.Addr(), err)
		}
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			handle(conn)
		}()
	}
}

// handleRequests owns one request connection: handshake, then one reply per
// request in arrival order until the connection drops.
func (s *Server) handleRequests(conn net.Conn) {
	defer conn.Close()
	log := s.log.With(zap.Stringer("remote", conn.RemoteAddr()))
	r := protocol.NewReader(conn)

	_ = conn.SetReadDeadline(time.Now().Add(s.opts.HandshakeTimeout))
	p, ok := s.handshake(r, conn, log)
	if !ok {
		return
	}
	_ = conn.SetReadDeadline(time.Time{})
	defer s.Evict(p.id)
	log = log.With(zap.Int("player", int(p.id)))

	for {
		line, err := r.Next()
		if err != nil {
			if !isClosed(err) {
				log.Info("request channel closed", zap.Error(err))
			}
			return
		}
		reply := s.dispatch(p.id, line, log)
		if err := s.send(conn, reply); err != nil {
			log.Info("reply failed", zap.Error(err))
			return
		}
	}
}

func (s *Server) handshake(r *protocol.Reader, conn net.Conn, log *zap.Logger) (*player, bool) {
	fail := func(st protocol.Status) {
		_ = s.send(conn, protocol.PlayerInit{Status: st, Version: protocol.Version})
	}

	line, err := r.Next()
	if err != nil {
		log.Info("no hello", zap.Error(err))
		return nil, false
	}
	env, err := protocol.Decode(line)
	if err != nil {
		log.Warn("decode hello", zap.Error(err))
		fail(protocol.StatusError)
		return nil, false
	}
	hello, err := protocol.As[protocol.Hello](env)
	if err != nil {
		log.Warn("expected hello", zap.Stringer("type", env.Type))
		fail(protocol.StatusError)
		return nil, false
	}

	pl, err := s.game.AddPlayer(hello.Name)
	if err != nil {
		log.Info("join refused", zap.String("name", hello.Name), zap.Error(err))
		fail(protocol.StatusOf(err))
		return nil, false
	}

	p := &player{id: pl.ID, token: uuid.NewString(), req: conn}
	s.mu.Lock()
	s.players[p.id] = p
	port := s.port
	s.mu.Unlock()

	init := protocol.PlayerInit{
		Status:   protocol.StatusOK,
		PlayerID: pl.ID,
		TeamID:   pl.Team,
		SlotID:   pl.Slot,
		MatchID:  s.game.ID(),
		Terrain:  s.game.Terrain(),
		Version:  protocol.Version,
		Port:     port,
		Token:    p.token,
	}
	if err := s.send(conn, init); err != nil {
		log.Info("player init failed", zap.Error(err))
		s.Evict(p.id)
		return nil, false
	}
	log.Info("player joined", zap.Int("player", int(pl.ID)), zap.String("name", pl.Name))
	return p, true
}

// handleBroadcast waits for Subscribe, hands the connection to the hub and then
// only watches for the peer going away.
func (s *Server) handleBroadcast(conn net.Conn) {
	log := s.log.With(zap.Stringer("remote", conn.RemoteAddr()))
	r := protocol.NewReader(conn)

	_ = conn.SetReadDeadline(time.Now().Add(s.opts.HandshakeTimeout))
	pid, err := s.subscribe(r, conn)
	if err != nil {
		log.Warn("subscribe", zap.Error(err))
		_ = conn.Close()
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	// Nothing else is expected on this channel.
	for {
		if _, err := r.Next(); err != nil {
			break
		}
	}
	s.Evict(pid)
}

func (s *Server) subscribe(r *protocol.Reader, conn net.Conn) (engine.PlayerID, error) {
	line, err := r.Next()
	if err != nil {
		return 0, err
	}
	env, err := protocol.Decode(line)
	if err != nil {
		return 0, err
	}
	sub, err := protocol.As[protocol.Subscribe](env)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[sub.PlayerID]
	if !ok || p.attached || subtle.ConstantTimeCompare([]byte(p.token), []byte(sub.Token)) != 1 {
		return 0, fmt.Errorf("%w: player %d", ErrBadSubscribe, sub.PlayerID)
	}
	// Attach under the lock so a concurrent Evict cannot detach before this lands.
	if !s.toHub(hub.Attach{
		ClientID: clientID(p.id),
		PlayerID: p.id,
		Conn:     lineConn{c: conn, timeout: s.opts.WriteTimeout},
	}) {
		return 0, fmt.Errorf("%w: shutting down", ErrBadSubscribe)
	}
	p.attached = true
	return p.id, nil
}

// Evict drops a player from the session: its request channel is closed, its
// broadcast channel detached and the player removed from the game. Evicting a
// player twice does nothing.
func (s *Server) Evict(pid engine.PlayerID) {
	s.mu.Lock()
	p, ok := s.players[pid]
	if ok {
		delete(s.players, pid)
		if p.attached {
			s.toHub(hub.Detach{ClientID: clientID(pid)})
		}
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	_ = p.req.Close()
	if err := s.game.RemovePlayer(pid); err != nil && !errors.Is(err, engine.ErrUnknownPlayer) {
		s.log.Error("remove player", zap.Int("player", int(pid)), zap.Error(err))
	}
	s.log.Info("player evicted", zap.Int("player", int(pid)))
}

// Players lists the ids with an open request channel.
func (s *Server) Players() []engine.PlayerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]engine.PlayerID, 0, len(s.players))
	for id := range s.players {
		out = append(out, id)
	}
	return out
}

func (s *Server) shutdown() error {
	s.game.Stop()
	s.toHub(hub.Publish{Msg: protocol.MatchState{State: engine.MatchStopped}})
	s.hub.Close()

	s.mu.Lock()
	var errs error
	for _, p := range s.players {
		errs = multierr.Append(errs, ignoreClosed(p.req.Close()))
	}
	s.mu.Unlock()

	s.conns.Wait()
	s.log.Info("session closed", zap.Error(errs))
	return errs
}

func (s *Server) toHub(m hub.Msg) bool {
	select {
	case s.hub.Inbox() <- m:
		return true
	case <-s.hub.Done():
		return false
	}
}

func (s *Server) send(conn net.Conn, m protocol.Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	return protocol.Send(conn, m)
}

func clientID(pid engine.PlayerID) string { return fmt.Sprintf("player-%d", pid) }

// lineConn is a broadcast connection as the hub sees it.
type lineConn struct {
	c       net.Conn
	timeout time.Duration
}

func (l lineConn) Send(b []byte) error {
	_ = l.c.SetWriteDeadline(time.Now().Add(l.timeout))
	return protocol.WriteLine(l.c, b)
}

func (l lineConn) Close() error { return ignoreClosed(l.c.Close()) }

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF)
}

func ignoreClosed(err error) error {
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
