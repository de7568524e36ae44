package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/hiddenrank/internal/bot"
	"github.com/lox/hiddenrank/internal/config"
	"github.com/lox/hiddenrank/internal/diagnostics"
	"github.com/lox/hiddenrank/internal/inference"
	"github.com/lox/hiddenrank/internal/randutil"
	"github.com/lox/hiddenrank/internal/runner"
)

type BotCmd struct {
	Config   string `short:"c" default:"hiddenrank.hcl" env:"HIDDENRANK_CONFIG" help:"HCL configuration file"`
	Address  string `arg:"" optional:"" help:"Engine server address (overrides config)"`
	Strategy string `env:"HIDDENRANK_STRATEGY" help:"Strategy: inference, call, fold, random (overrides config)"`
	Listen   string `env:"HIDDENRANK_DIAGNOSTICS" help:"Diagnostics listen address (overrides config)"`
	Seed     int64  `help:"Engine RNG seed, 0 for random (overrides config)"`
	Debug    bool   `help:"Enable debug logging"`
}

func (c *BotCmd) Run() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	logger, closer, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed := randutil.Seed(cfg.Engine.Seed)
	engine := inference.New(
		inference.WithLogger(logger),
		inference.WithSeed(seed),
		inference.WithBudget(cfg.Budget()),
	)

	handler, err := newHandler(cfg, engine, logger, seed)
	if err != nil {
		return err
	}

	logger.Info("Connecting", "address", cfg.Server.Address, "strategy", cfg.Bot.Strategy, "seed", seed)
	transport, err := runner.Dial(ctx, cfg.Server.Address)
	if err != nil {
		return err
	}

	r := runner.New(transport, handler,
		runner.WithLogger(logger),
		runner.WithReadTimeout(cfg.ReadTimeout()),
	)

	g, ctx := errgroup.WithContext(ctx)
	runCtx, cancelRun := context.WithCancel(ctx)
	g.Go(func() error {
		// The match ending stops the diagnostics server too.
		defer cancelRun()
		return r.Run(runCtx)
	})
	if cfg.Diagnostics.Listen != "" {
		srv := diagnostics.NewServer(engine, logger)
		g.Go(func() error {
			return srv.Serve(runCtx, cfg.Diagnostics.Listen)
		})
	}

	err = g.Wait()
	gs := r.GameState()
	logger.Info("Match finished", "rounds", gs.RoundNum-1, "bankroll", gs.Bankroll)
	if ib, ok := handler.(*bot.InferenceBot); ok {
		stats := ib.Stats()
		logger.Info("Inference summary",
			"showdowns", stats.Showdowns,
			"observations", stats.Observations,
			"accepted", stats.Accepted,
			"uncertainty", engine.Uncertainty(),
			"ordering", engine.CurrentOrdering().Compact(),
		)
		logger.Debug("Engine state\n" + engine.Diagnostics())
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *BotCmd) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.Address != "" {
		cfg.Server.Address = c.Address
	}
	if c.Strategy != "" {
		cfg.Bot.Strategy = c.Strategy
	}
	if c.Listen != "" {
		cfg.Diagnostics.Listen = c.Listen
	}
	if c.Seed != 0 {
		cfg.Engine.Seed = c.Seed
	}
	if c.Debug {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newHandler builds the strategy named by the configuration.
func newHandler(cfg *config.Config, engine *inference.Engine, logger *log.Logger, seed int64) (bot.Handler, error) {
	switch cfg.Bot.Strategy {
	case "inference":
		policy := bot.DefaultPolicy()
		policy.StraightUncertainty = uint64(cfg.Bot.StraightUncertainty)
		policy.RaisePot = cfg.Bot.RaisePot

		opts := []bot.InferenceOption{bot.WithPolicy(policy)}
		if cfg.Bot.SnapshotDir != "" {
			w := bot.NewSnapshotWriter(cfg.Bot.SnapshotDir, cfg.Bot.SnapshotEvery, nil)
			logger.Info("Writing snapshots", "path", w.Path(), "every", cfg.Bot.SnapshotEvery)
			opts = append(opts, bot.WithSnapshots(w))
		}
		return bot.NewInferenceBot(engine, logger, opts...), nil
	case "call":
		return bot.NewCallBot(logger), nil
	case "fold":
		return bot.NewFoldBot(), nil
	case "random":
		return bot.NewRandBot(randutil.New(seed + 1)), nil
	default:
		return nil, fmt.Errorf("unknown strategy: %s", cfg.Bot.Strategy)
	}
}
