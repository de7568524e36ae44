package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"

	"github.com/lox/hiddenrank/internal/bot"
	"github.com/lox/hiddenrank/internal/inference"
	"github.com/lox/hiddenrank/internal/randutil"
	"github.com/lox/hiddenrank/internal/simulator"
	"github.com/lox/hiddenrank/poker"
)

type SimulateCmd struct {
	Rounds   int    `default:"1000" help:"Number of rounds to play"`
	Seed     int64  `default:"0" help:"RNG seed (0 for random)"`
	Every    int    `default:"100" help:"Checkpoint interval in rounds"`
	Opponent string `default:"call" enum:"call,fold,random" help:"Opponent strategy: call, fold, random"`
	Hidden   string `help:"Hidden ordering, weakest first (random when empty)"`
	Debug    bool   `help:"Enable debug logging"`
}

func (c *SimulateCmd) Run() error {
	level := log.WarnLevel
	if c.Debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level, ReportTimestamp: true, TimeFormat: "15:04:05"})

	seed := randutil.Seed(c.Seed)
	cfg := simulator.Config{
		Rounds: c.Rounds,
		Seed:   seed,
		Every:  c.Every,
		Logger: logger,
	}
	if c.Hidden != "" {
		hidden, err := poker.ParseOrdering(c.Hidden)
		if err != nil {
			return err
		}
		cfg.Hidden = &hidden
	}

	engine := inference.New(inference.WithLogger(logger), inference.WithSeed(seed))
	cfg.Tracker = engine
	hero := bot.NewInferenceBot(engine, logger)

	var opponent bot.Handler
	switch c.Opponent {
	case "fold":
		opponent = bot.NewFoldBot()
	case "random":
		opponent = bot.NewRandBot(randutil.New(seed + 1))
	default:
		opponent = bot.NewCallBot(logger)
	}

	res, err := simulator.New(cfg, hero, opponent).Run()
	if err != nil {
		return err
	}
	renderSimulation(os.Stdout, seed, res, hero.Stats(), engine.CurrentOrdering())
	return nil
}

func renderSimulation(w io.Writer, seed int64, res *simulator.Result, stats bot.Stats, final poker.Ordering) {
	fmt.Fprintln(w, titleStyle.Render("Simulation"))
	fmt.Fprintln(w, field("Seed", strconv.FormatInt(seed, 10)))
	fmt.Fprintln(w, field("Hidden", res.Hidden.Compact()))
	fmt.Fprintln(w, field("Inferred", final.Compact()))
	fmt.Fprintln(w, field("Rounds", fmt.Sprintf("%d (%d showdowns, %d split, %d folded)", res.Rounds, res.Showdowns, res.Splits, res.Folds)))
	fmt.Fprintln(w, field("Evidence", fmt.Sprintf("%d observations, %d accepted", stats.Observations, stats.Accepted)))
	fmt.Fprintln(w, field("Bankroll", strconv.Itoa(res.Bankroll[0])))

	if len(res.Checkpoints) == 0 {
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(headingStyle).
		Headers("Round", "Agreement", "Orderings", "Hypothesis")
	for _, cp := range res.Checkpoints {
		t.Row(
			strconv.Itoa(cp.Round),
			fmt.Sprintf("%.1f%%", 100*cp.Agreement),
			strconv.FormatUint(cp.Uncertainty, 10),
			cp.Ordering.Compact(),
		)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, t.Render())

	last := res.Checkpoints[len(res.Checkpoints)-1]
	style := badStyle
	if last.Agreement >= 0.9 {
		style = goodStyle
	}
	fmt.Fprintln(w, style.Render(fmt.Sprintf("Final agreement %.1f%%", 100*last.Agreement)))
}
