package client

import (
	"context"
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/DoyleJ11/td-sync/internal/engine"
	"github.com/DoyleJ11/td-sync/internal/protocol"
	"github.com/DoyleJ11/td-sync/internal/session"
	"github.com/DoyleJ11/td-sync/internal/terrain"
)

func envelope(t *testing.T, m protocol.Message) protocol.Envelope {
	t.Helper()
	b, err := protocol.Encode(m)
	require.NoError(t, err)
	env, err := protocol.Decode(b)
	require.NoError(t, err)
	return env
}

func TestReflector_AppliesBroadcasts(t *testing.T) {
	r := NewReflector(nil, nil)
	steps := []protocol.Message{
		protocol.MatchState{State: engine.MatchStarted},
		protocol.PlayersState{Players: []protocol.PlayerState{
			{PlayerID: 1, Name: "alice", Gold: 100, Online: true},
			{PlayerID: 2, Name: "bob", Gold: 100, Online: true},
		}},
		protocol.PlayerState{PlayerID: 1, Name: "alice", Gold: 50, Online: true},
		protocol.TeamState{TeamID: 1, Lives: 20},
		protocol.TowerAdded{TowerInfo: protocol.TowerInfo{TowerID: 3, X: 40, Y: 20, OwnerID: 1, Level: 1}},
		protocol.TowerUpgraded{TowerInfo: protocol.TowerInfo{TowerID: 3, X: 40, Y: 20, OwnerID: 1, Level: 2}},
		protocol.CreatureAdded{CreatureID: 5, X: 0, Y: 100, Health: 40, MaxHealth: 40},
		protocol.CreatureAdded{CreatureID: 6, X: 0, Y: 100, Health: 40, MaxHealth: 40},
		protocol.CreatureState{CreatureID: 5, X: 10, Y: 100, Health: 30, Angle: 90},
		protocol.CreatureRemoved{CreatureID: 6, KillerID: 1},
		protocol.CreatureArrived{CreatureID: 5, TeamID: 1, Lives: 19},
		protocol.PlayerLeft{PlayerID: 2, Name: "bob"},
	}
	for _, m := range steps {
		require.NoError(t, r.Apply(envelope(t, m)), "%s", m.MessageType())
	}

	m := r.Snapshot()
	assert.Equal(t, engine.MatchStarted, m.State)
	assert.Equal(t, 50, m.Players[1].Gold)
	assert.False(t, m.Players[2].Online)
	assert.Equal(t, 2, m.Towers[3].Level)
	assert.Empty(t, m.Creatures)
	assert.Equal(t, 19, m.Teams[1].Lives)
}

func TestReflector_CreaturePatchKeepsSpawnData(t *testing.T) {
	r := NewReflector(nil, nil)
	require.NoError(t, r.Apply(envelope(t, protocol.CreatureAdded{CreatureID: 5, Health: 40, MaxHealth: 40, Bounty: 5})))
	require.NoError(t, r.Apply(envelope(t, protocol.CreatureState{CreatureID: 5, X: 12, Y: 7, Health: 25, Angle: 180})))

	c := r.Snapshot().Creatures[5]
	assert.Equal(t, 12, c.X)
	assert.Equal(t, 7, c.Y)
	assert.Equal(t, 25, c.Health)
	assert.Equal(t, 40, c.MaxHealth)
	assert.Equal(t, 5, c.Bounty)
	assert.InDelta(t, 180, c.Angle, 1e-9)
}

func TestReflector_IgnoresPatchesForUnknownIDs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewReflector(zap.New(core), nil)

	cases := []protocol.Message{
		protocol.PlayerState{PlayerID: 9},
		protocol.TowerUpgraded{TowerInfo: protocol.TowerInfo{TowerID: 9}},
		protocol.TowerRemoved{TowerID: 9},
		protocol.CreatureState{CreatureID: 9},
		protocol.CreatureRemoved{CreatureID: 9},
	}
	for _, m := range cases {
		t.Run(m.MessageType().String(), func(t *testing.T) {
			before := logs.Len()
			require.NoError(t, r.Apply(envelope(t, m)))
			assert.Equal(t, before+1, logs.Len())
		})
	}

	m := r.Snapshot()
	assert.Empty(t, m.Players)
	assert.Empty(t, m.Towers)
	assert.Empty(t, m.Creatures)
}

func TestReflector_SnapshotIsACopy(t *testing.T) {
	r := NewReflector(nil, nil)
	require.NoError(t, r.Apply(envelope(t, protocol.TowerAdded{TowerInfo: protocol.TowerInfo{TowerID: 1}})))
	snap := r.Snapshot()
	delete(snap.Towers, 1)
	assert.Contains(t, r.Snapshot().Towers, engine.TowerID(1))
}

func TestReflector_NotifySkipsCreatureStates(t *testing.T) {
	var got []protocol.Type
	r := NewReflector(nil, func(m protocol.Message) { got = append(got, m.MessageType()) })

	require.NoError(t, r.Apply(envelope(t, protocol.CreatureAdded{CreatureID: 1})))
	require.NoError(t, r.Apply(envelope(t, protocol.CreatureState{CreatureID: 1, X: 3})))
	require.NoError(t, r.Apply(envelope(t, protocol.Chat{Message: "hi", PlayerID: 2})))
	require.NoError(t, r.Apply(envelope(t, protocol.MatchState{State: engine.MatchStopped})))

	assert.Equal(t, []protocol.Type{protocol.TypeCreatureAdded, protocol.TypeChat, protocol.TypeMatchState}, got)
}

// serve runs a session server on the duel terrain and returns its request address.
func serve(t *testing.T) (string, *engine.Game) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	grid, err := terrain.Load("", "duel")
	require.NoError(t, err)
	game := engine.New(ctx, grid, engine.Options{Rand: rand.New(rand.NewSource(1))})

	reqLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	bcastLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := session.New(game, session.Options{Refresh: 10 * time.Millisecond})
	go func() { _ = srv.Serve(ctx, reqLn, bcastLn) }()
	return reqLn.Addr().String(), game
}

func dial(t *testing.T, addr, name string, opts ...Option) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, addr, name, nil, append(opts, WithTimeout(2*time.Second))...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClient_TowerPlacementReachesTheMirror(t *testing.T) {
	addr, _ := serve(t)
	alice := dial(t, addr, "alice")
	bob := dial(t, addr, "bob")

	id, err := alice.PlaceTower(engine.TowerArcher, 40, 20)
	require.NoError(t, err)
	require.NotZero(t, id)

	for _, c := range []*Client{alice, bob} {
		require.Eventually(t, func() bool {
			tw, ok := c.Mirror().Towers[id]
			return ok && tw.X == 40 && tw.Y == 20 && tw.OwnerID == alice.ID()
		}, 2*time.Second, 10*time.Millisecond)
	}
	require.Eventually(t, func() bool {
		return bob.Mirror().Players[alice.ID()].Gold == 100-engine.TowerPrice(engine.TowerArcher)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClient_RefusalsComeBackAsEngineErrors(t *testing.T) {
	addr, _ := serve(t)
	alice := dial(t, addr, "alice")
	bob := dial(t, addr, "bob")

	_, err := alice.PlaceTower(engine.TowerFire, 40, 20)
	assert.ErrorIs(t, err, engine.ErrInsufficientFunds)

	_, err = alice.PlaceTower(engine.TowerArcher, 300, 20)
	assert.ErrorIs(t, err, engine.ErrZoneInaccessible)

	assert.ErrorIs(t, bob.StartMatch(), engine.ErrUnauthorized)
	assert.ErrorIs(t, bob.ChangeTeam(9), engine.ErrUnknownTeam)
	assert.ErrorIs(t, alice.LaunchWave(engine.CreatureGrunt, 1), engine.ErrMatchNotStarted)

	require.NoError(t, alice.StartMatch())
	assert.ErrorIs(t, alice.StartMatch(), engine.ErrMatchInProgress)
	assert.ErrorIs(t, alice.LaunchWave(engine.CreatureGrunt, 0), engine.ErrInvalidCount)
	require.NoError(t, alice.LaunchWave(engine.CreatureGrunt, 2))
}

func TestClient_SellReportsRefund(t *testing.T) {
	addr, _ := serve(t)
	alice := dial(t, addr, "alice")

	id, err := alice.PlaceTower(engine.TowerArcher, 40, 20)
	require.NoError(t, err)
	refund, err := alice.SellTower(id)
	require.NoError(t, err)
	assert.Equal(t, engine.TowerPrice(engine.TowerArcher)/2, refund)

	_, err = alice.SellTower(id)
	assert.ErrorIs(t, err, engine.ErrTowerUnknown)
}

func TestClient_ChatNotifies(t *testing.T) {
	addr, _ := serve(t)
	heard := make(chan protocol.Chat, 4)
	alice := dial(t, addr, "alice")
	bob := dial(t, addr, "bob", WithNotify(func(m protocol.Message) {
		if c, ok := m.(protocol.Chat); ok {
			heard <- c
		}
	}))

	require.NoError(t, alice.Chat("psst", bob.ID()))
	select {
	case c := <-heard:
		assert.Equal(t, "psst", c.Message)
		assert.Equal(t, alice.ID(), c.PlayerID)
	case <-time.After(2 * time.Second):
		t.Fatalf("bob never heard the whisper")
	}
}

func TestClient_JoinRefusedWhenFull(t *testing.T) {
	addr, _ := serve(t)
	for _, name := range []string{"a", "b", "c", "d"} {
		dial(t, addr, name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Dial(ctx, addr, "e", nil)
	require.ErrorIs(t, err, ErrJoinRefused)
	assert.ErrorIs(t, err, engine.ErrNoSlot)
}

// slowServer accepts one player and answers its first request only after delay.
// Every request line it reads is passed on to got.
func slowServer(t *testing.T, delay time.Duration) (string, <-chan []byte) {
	t.Helper()
	reqLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	bcastLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { reqLn.Close(); bcastLn.Close() })

	go func() {
		conn, err := bcastLn.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := protocol.NewReader(conn)
		for {
			if _, err := r.Next(); err != nil {
				return
			}
		}
	}()

	got := make(chan []byte, 8)
	go func() {
		conn, err := reqLn.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := protocol.NewReader(conn)
		if _, err := r.Next(); err != nil {
			return
		}
		_ = protocol.Send(conn, protocol.PlayerInit{
			Status:   protocol.StatusOK,
			PlayerID: 1,
			TeamID:   1,
			SlotID:   1,
			Version:  protocol.Version,
			Port:     bcastLn.Addr().(*net.TCPAddr).Port,
			Token:    "t",
		})
		for n := 0; ; n++ {
			line, err := r.Next()
			if err != nil {
				return
			}
			got <- append([]byte(nil), line...)
			if n == 0 {
				time.Sleep(delay)
			}
			_ = protocol.Send(conn, protocol.Reply{Status: protocol.StatusOK, Request: protocol.TypeTowerUpgrade})
		}
	}()
	return reqLn.Addr().String(), got
}

func TestClient_TimedOutRequestBreaksTheChannel(t *testing.T) {
	addr, got := slowServer(t, 300*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, addr, "alice", nil, WithTimeout(100*time.Millisecond))
	require.NoError(t, err)
	defer c.Close()

	err = c.UpgradeTower(1)
	require.ErrorIs(t, err, ErrChannelBroken)
	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatalf("first request never reached the server")
	}

	// Later requests fail without touching the wire.
	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, c.UpgradeTower(1), ErrChannelBroken)
	}
	select {
	case line := <-got:
		t.Fatalf("server received a request after the channel broke: %s", line)
	case <-time.After(400 * time.Millisecond):
	}
}
