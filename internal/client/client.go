// Package client joins a match over the two-channel protocol, sends requests one at
// a time and keeps a mirror of the match up to date from the broadcast channel.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/td-sync/internal/engine"
	"github.com/DoyleJ11/td-sync/internal/protocol"
)

var ErrJoinRefused = errors.New("join refused")
var ErrReplyMismatch = errors.New("reply does not answer the request")

// ErrChannelBroken is returned by every request after the request channel failed
// once; nothing more is sent on it.
var ErrChannelBroken = errors.New("request channel broken")

type options struct {
	notify  func(protocol.Message)
	timeout time.Duration
}

type Option func(*options)

// WithNotify registers a callback for every broadcast the mirror applies. It runs
// on the broadcast reader goroutine.
func WithNotify(fn func(protocol.Message)) Option {
	return func(o *options) { o.notify = fn }
}

// WithTimeout bounds each request round trip. Zero waits for as long as the
// connection lives.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

type Client struct {
	init protocol.PlayerInit
	log  *zap.Logger
	opts options

	mu     sync.Mutex // one outstanding request
	req    net.Conn
	r      *protocol.Reader
	broken error

	bcast net.Conn
	refl  *Reflector
	done  chan struct{}
	err   error
}

// Dial joins the match served at addr under name: Hello on the request channel,
// then Subscribe on the broadcast port the server hands back.
func Dial(ctx context.Context, addr, name string, log *zap.Logger, opts ...Option) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var d net.Dialer
	req, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial requests: %w", err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = req.SetDeadline(dl)
	}
	r := protocol.NewReader(req)

	init, err := hello(req, r, name)
	if err != nil {
		req.Close()
		return nil, err
	}
	_ = req.SetDeadline(time.Time{})

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		req.Close()
		return nil, fmt.Errorf("server address %q: %w", addr, err)
	}
	bcast, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(init.Port)))
	if err != nil {
		req.Close()
		return nil, fmt.Errorf("dial broadcast: %w", err)
	}
	if err := protocol.Send(bcast, protocol.Subscribe{PlayerID: init.PlayerID, Token: init.Token}); err != nil {
		return nil, multierr.Combine(fmt.Errorf("subscribe: %w", err), req.Close(), bcast.Close())
	}

	log = log.Named("client").With(zap.Int("player", int(init.PlayerID)))
	c := &Client{
		init:  init,
		log:   log,
		opts:  o,
		req:   req,
		r:     r,
		bcast: bcast,
		refl:  NewReflector(log, o.notify),
		done:  make(chan struct{}),
	}
	go c.listen()
	log.Info("joined", zap.String("match", init.MatchID), zap.Int("team", int(init.TeamID)), zap.Int("slot", int(init.SlotID)))
	return c, nil
}

func hello(conn net.Conn, r *protocol.Reader, name string) (protocol.PlayerInit, error) {
	if err := protocol.Send(conn, protocol.Hello{Name: name}); err != nil {
		return protocol.PlayerInit{}, fmt.Errorf("hello: %w", err)
	}
	line, err := r.Next()
	if err != nil {
		return protocol.PlayerInit{}, fmt.Errorf("await player init: %w", err)
	}
	env, err := protocol.Decode(line)
	if err != nil {
		return protocol.PlayerInit{}, err
	}
	init, err := protocol.As[protocol.PlayerInit](env)
	if err != nil {
		return protocol.PlayerInit{}, err
	}
	if init.Status != protocol.StatusOK {
		return init, fmt.Errorf("%w: %s: %w", ErrJoinRefused, init.Status, init.Status.Err())
	}
	if init.Version != protocol.Version {
		return init, fmt.Errorf("%w: server speaks %q, client %q", ErrJoinRefused, init.Version, protocol.Version)
	}
	return init, nil
}

// listen feeds the broadcast channel into the reflector until it closes.
func (c *Client) listen() {
	defer close(c.done)
	r := protocol.NewReader(c.bcast)
	for {
		line, err := r.Next()
		if err != nil {
			c.err = err
			return
		}
		env, err := protocol.Decode(line)
		if err != nil {
			c.log.Warn("decode broadcast", zap.Error(err))
			continue
		}
		if err := c.refl.Apply(env); err != nil {
			c.log.Warn("apply broadcast", zap.Stringer("type", env.Type), zap.Error(err))
		}
	}
}

func (c *Client) ID() engine.PlayerID       { return c.init.PlayerID }
func (c *Client) Init() protocol.PlayerInit { return c.init }
func (c *Client) Mirror() Mirror            { return c.refl.Snapshot() }
func (c *Client) Done() <-chan struct{}     { return c.done }

// Err is why the broadcast channel closed; it is only meaningful after Done.
func (c *Client) Err() error {
	<-c.done
	return c.err
}

// Request sends m and waits for its reply. A non-OK status comes back as the
// matching engine error. A request without a reply counts as failed and breaks
// the channel: the connection is closed and later requests are not sent.
func (c *Client) Request(m protocol.Message) (protocol.Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken != nil {
		return protocol.Reply{}, fmt.Errorf("%w: %s not sent: %w", ErrChannelBroken, m.MessageType(), c.broken)
	}
	if c.opts.timeout > 0 {
		_ = c.req.SetDeadline(time.Now().Add(c.opts.timeout))
		defer c.req.SetDeadline(time.Time{})
	}
	if err := protocol.Send(c.req, m); err != nil {
		return protocol.Reply{}, c.fail(fmt.Errorf("send %s: %w", m.MessageType(), err))
	}
	line, err := c.r.Next()
	if err != nil {
		return protocol.Reply{}, c.fail(fmt.Errorf("await reply to %s: %w", m.MessageType(), err))
	}
	env, err := protocol.Decode(line)
	if err != nil {
		return protocol.Reply{}, c.fail(err)
	}
	reply, err := protocol.As[protocol.Reply](env)
	if err != nil {
		return protocol.Reply{}, c.fail(err)
	}
	if reply.Request != m.MessageType() {
		return reply, c.fail(fmt.Errorf("%w: sent %s, got reply to %s", ErrReplyMismatch, m.MessageType(), reply.Request))
	}
	return reply, reply.Status.Err()
}

// fail marks the request channel broken. Callers hold c.mu.
func (c *Client) fail(err error) error {
	c.broken = err
	_ = c.req.Close()
	c.log.Warn("request channel broken", zap.Error(err))
	return fmt.Errorf("%w: %w", ErrChannelBroken, err)
}

func (c *Client) PlaceTower(typ engine.TowerType, x, y int) (engine.TowerID, error) {
	r, err := c.Request(protocol.TowerAdd{TowerType: typ, X: x, Y: y})
	return r.TowerID, err
}

func (c *Client) UpgradeTower(id engine.TowerID) error {
	_, err := c.Request(protocol.TowerUpgrade{TowerID: id})
	return err
}

// SellTower returns the gold credited for the sale.
func (c *Client) SellTower(id engine.TowerID) (int, error) {
	r, err := c.Request(protocol.TowerSell{TowerID: id})
	return r.Refund, err
}

func (c *Client) LaunchWave(typ engine.CreatureType, count int) error {
	_, err := c.Request(protocol.WaveRequest{CreatureType: typ, Count: count})
	return err
}

func (c *Client) ChangeTeam(id engine.TeamID) error {
	_, err := c.Request(protocol.TeamChange{TeamID: id})
	return err
}

func (c *Client) StartMatch() error {
	_, err := c.Request(protocol.MatchStart{})
	return err
}

// Chat sends text to everyone, or only to the player to when it is non-zero.
func (c *Client) Chat(text string, to engine.PlayerID) error {
	_, err := c.Request(protocol.Chat{Message: text, TargetID: to})
	return err
}

// Close leaves the match and waits for the broadcast reader to stop.
func (c *Client) Close() error {
	err := multierr.Combine(ignoreClosed(c.req.Close()), ignoreClosed(c.bcast.Close()))
	<-c.done
	return err
}

func ignoreClosed(err error) error {
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
