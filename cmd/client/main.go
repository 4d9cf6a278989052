package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/td-sync/internal/client"
	"github.com/DoyleJ11/td-sync/internal/config"
	"github.com/DoyleJ11/td-sync/internal/engine"
	"github.com/DoyleJ11/td-sync/internal/logging"
	"github.com/DoyleJ11/td-sync/internal/protocol"
)

const usage = `commands:
  tower <type> <x> <y>     place a tower (1 archer, 2 fire, 3 ice, 4 earth)
  upgrade <tower>          upgrade a tower
  sell <tower>             sell a tower
  wave <creature> <count>  send creatures (1 grunt, 2 runner, 3 brute)
  team <team>              change team before the start
  start                    start the match (creator only)
  say <text>               chat to everyone
  whisper <player> <text>  chat to one player
  state                    print the mirrored match
  quit`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	c, err := client.Dial(dialCtx, cfg.ServerAddr, cfg.PlayerName, logger, client.WithNotify(notify(logger)))
	cancel()
	if err != nil {
		logger.Fatal("join", zap.Error(err))
	}
	defer c.Close()

	init := c.Init()
	fmt.Printf("joined match %s on %s as player %d (team %d, slot %d)\n%s\n",
		init.MatchID, init.Terrain, init.PlayerID, init.TeamID, init.SlotID, usage)

	lines := make(chan string)
	go func() {
		defer close(lines)
		s := bufio.NewScanner(os.Stdin)
		for s.Scan() {
			lines <- s.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.Done():
			logger.Info("server closed the broadcast channel", zap.Error(c.Err()))
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if strings.TrimSpace(line) == "quit" {
				return
			}
			if err := execute(c, line); err != nil {
				fmt.Println("error:", err)
			}
		}
	}
}

func notify(logger *zap.Logger) func(protocol.Message) {
	return func(m protocol.Message) {
		switch m := m.(type) {
		case protocol.Chat:
			fmt.Printf("[%s] %s\n", m.Name, m.Message)
		case protocol.MatchState:
			fmt.Printf("match %s\n", m.State)
		case protocol.PlayerLeft:
			fmt.Printf("%s left\n", m.Name)
		case protocol.CreatureArrived:
			fmt.Printf("team %d lost a life (%d left)\n", m.TeamID, m.Lives)
		default:
			logger.Debug("broadcast", zap.Stringer("type", m.MessageType()))
		}
	}
}

func execute(c *client.Client, line string) error {
	f := strings.Fields(line)
	if len(f) == 0 {
		return nil
	}
	args, err := ints(f[1:])
	switch f[0] {
	case "say":
		return c.Chat(strings.Join(f[1:], " "), 0)
	case "whisper":
		if len(f) < 3 {
			return errors.New("whisper <player> <text>")
		}
		to, err := strconv.Atoi(f[1])
		if err != nil {
			return err
		}
		return c.Chat(strings.Join(f[2:], " "), engine.PlayerID(to))
	case "state":
		printMirror(c.Mirror())
		return nil
	}
	if err != nil {
		return err
	}

	switch {
	case f[0] == "tower" && len(args) == 3:
		id, err := c.PlaceTower(engine.TowerType(args[0]), args[1], args[2])
		if err == nil {
			fmt.Println("tower", id)
		}
		return err
	case f[0] == "upgrade" && len(args) == 1:
		return c.UpgradeTower(engine.TowerID(args[0]))
	case f[0] == "sell" && len(args) == 1:
		refund, err := c.SellTower(engine.TowerID(args[0]))
		if err == nil {
			fmt.Println("refund", refund)
		}
		return err
	case f[0] == "wave" && len(args) == 2:
		return c.LaunchWave(engine.CreatureType(args[0]), args[1])
	case f[0] == "team" && len(args) == 1:
		return c.ChangeTeam(engine.TeamID(args[0]))
	case f[0] == "start" && len(args) == 0:
		return c.StartMatch()
	default:
		return fmt.Errorf("unknown command %q\n%s", line, usage)
	}
}

func ints(fields []string) ([]int, error) {
	out := make([]int, 0, len(fields))
	for _, s := range fields {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", s)
		}
		out = append(out, n)
	}
	return out, nil
}

func printMirror(m client.Mirror) {
	fmt.Printf("state %s", m.State)
	if m.Winner != 0 {
		fmt.Printf(", winner team %d", m.Winner)
	}
	fmt.Println()
	for _, t := range m.Teams {
		fmt.Printf("team %d %s: %d lives, score %d\n", t.TeamID, t.Name, t.Lives, t.Score)
	}
	for _, p := range m.Players {
		fmt.Printf("player %d %s: team %d, gold %d, score %d, online %t\n", p.PlayerID, p.Name, p.TeamID, p.Gold, p.Score, p.Online)
	}
	fmt.Printf("%d towers, %d creatures\n", len(m.Towers), len(m.Creatures))
}
