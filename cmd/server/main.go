package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/td-sync/internal/config"
	"github.com/DoyleJ11/td-sync/internal/engine"
	"github.com/DoyleJ11/td-sync/internal/httpapi"
	"github.com/DoyleJ11/td-sync/internal/logging"
	"github.com/DoyleJ11/td-sync/internal/session"
	"github.com/DoyleJ11/td-sync/internal/store"
	"github.com/DoyleJ11/td-sync/internal/terrain"
)

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

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	grid, err := terrain.Load(cfg.TerrainDir, cfg.Terrain)
	if err != nil {
		return err
	}

	var rec *store.Recorder
	if cfg.DatabaseDSN != "" {
		if rec, err = store.Open(cfg.DatabaseDSN, logger); err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, rec.Close()) }()
	}

	game := engine.New(ctx, grid, engine.Options{
		Logger:        logger,
		WaveCadence:   cfg.WaveCadence,
		Target:        cfg.WaveTarget,
		AllowLateJoin: cfg.LateJoin,
		OnFinish: func(s engine.Summary) {
			logger.Info("match finished", zap.String("match", s.MatchID), zap.Int("winner", int(s.Winner)))
			if rec == nil {
				return
			}
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := rec.Record(ctx, s); err != nil {
					logger.Error("record match", zap.Error(err))
				}
			}()
		},
	})

	// Bind failures end the process before anything is served.
	reqLn, err := net.Listen("tcp", cfg.RequestAddr)
	if err != nil {
		return err
	}
	bcastLn, err := net.Listen("tcp", cfg.BroadcastAddr)
	if err != nil {
		reqLn.Close()
		return err
	}

	srv := session.New(game, session.Options{Refresh: cfg.Refresh, Logger: logger})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return game.Run(ctx, cfg.Tick) })
	g.Go(func() error { return srv.Serve(ctx, reqLn, bcastLn) })

	if cfg.HTTPAddr != "" {
		httpSrv := &http.Server{
			Addr: cfg.HTTPAddr,
			Handler: httpapi.SetupRoutes(httpapi.Deps{
				Match:          game,
				Hub:            srv.Hub(),
				Origins:        cfg.WSOrigins,
				AdminTokenHash: cfg.AdminTokenHash,
				Logger:         logger,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
			if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutCtx)
		})
	}

	return g.Wait()
}
