// Package config reads server and client settings from the environment, after
// loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/DoyleJ11/td-sync/internal/engine"
)

type Config struct {
	RequestAddr   string
	BroadcastAddr string
	HTTPAddr      string

	// WSOrigins are extra origin patterns allowed on the spectator websocket.
	WSOrigins []string

	Terrain     string
	TerrainDir  string
	Tick        time.Duration
	Refresh     time.Duration
	WaveCadence time.Duration
	WaveTarget  engine.TargetPolicy
	LateJoin    bool

	AdminTokenHash string
	DatabaseDSN    string

	LogLevel string
	LogDev   bool

	// Client side.
	ServerAddr string
	PlayerName string
}

// Load reads .env files (missing ones are fine) and then the TD_* variables.
// Every malformed variable is reported, not only the first.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	var errs error
	str := func(key, def string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return def
	}
	dur := func(key string, def time.Duration) time.Duration {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return def
		}
		d, err := time.ParseDuration(v)
		if err == nil && d <= 0 {
			err = errors.New("must be positive")
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s=%q: %w", key, v, err))
			return def
		}
		return d
	}
	boolean := func(key string, def bool) bool {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return def
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s=%q: %w", key, v, err))
			return def
		}
		return b
	}

	c := Config{
		RequestAddr:    str("TD_REQUEST_ADDR", ":2357"),
		BroadcastAddr:  str("TD_BROADCAST_ADDR", ":2358"),
		HTTPAddr:       str("TD_HTTP_ADDR", ":8080"),
		Terrain:        str("TD_TERRAIN", "duel"),
		TerrainDir:     str("TD_TERRAIN_DIR", "terrains"),
		Tick:           dur("TD_TICK", 20*time.Millisecond),
		Refresh:        dur("TD_REFRESH", 100*time.Millisecond),
		WaveCadence:    dur("TD_WAVE_CADENCE", 500*time.Millisecond),
		LateJoin:       boolean("TD_LATE_JOIN", false),
		AdminTokenHash: str("TD_ADMIN_TOKEN_HASH", ""),
		DatabaseDSN:    str("TD_DATABASE_DSN", ""),
		LogLevel:       str("TD_LOG_LEVEL", "info"),
		LogDev:         boolean("TD_LOG_DEV", false),
		ServerAddr:     str("TD_SERVER_ADDR", "localhost:2357"),
		PlayerName:     str("TD_PLAYER_NAME", "player"),
	}

	c.WSOrigins = list(str("TD_WS_ORIGINS", ""))

	switch v := str("TD_WAVE_TARGET", "next-opponent"); v {
	case "next-opponent", "":
		c.WaveTarget = engine.TargetNextOpponent
	case "self":
		c.WaveTarget = engine.TargetSelf
	default:
		errs = multierr.Append(errs, fmt.Errorf("TD_WAVE_TARGET=%q: want next-opponent or self", v))
	}
	if c.RequestAddr == "" {
		errs = multierr.Append(errs, errors.New("TD_REQUEST_ADDR must not be empty"))
	}
	if c.BroadcastAddr == "" {
		errs = multierr.Append(errs, errors.New("TD_BROADCAST_ADDR must not be empty"))
	}
	if c.Terrain == "" {
		errs = multierr.Append(errs, errors.New("TD_TERRAIN must not be empty"))
	}
	return c, errs
}

// list splits a comma separated value, dropping blanks.
func list(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
