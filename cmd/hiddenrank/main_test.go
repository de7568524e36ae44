package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/hiddenrank/internal/analysis"
	"github.com/lox/hiddenrank/internal/bot"
	"github.com/lox/hiddenrank/internal/config"
	"github.com/lox/hiddenrank/internal/inference"
	"github.com/lox/hiddenrank/internal/relations"
	"github.com/lox/hiddenrank/internal/showdown"
	"github.com/lox/hiddenrank/internal/simulator"
	"github.com/lox/hiddenrank/poker"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  ClassifyCmd
		want showdown.Category
	}{
		{"straight", ClassifyCmd{Cards: []string{"As", "2d", "3h", "4c", "5s"}, Ordering: "23456789TJQKA"}, showdown.Straight},
		{"no straights", ClassifyCmd{Cards: []string{"As2d3h4c5s"}, Ordering: "23456789TJQKA", NoStraights: true}, showdown.HighCard},
		{"exhaustive", ClassifyCmd{Cards: []string{"AsAd", "7h7c2s"}, Ordering: "23456789TJQKA", Exhaustive: true}, showdown.TwoPair},
		{"exhaustive no straights", ClassifyCmd{Cards: []string{"As2d3h4c5s"}, Ordering: "23456789TJQKA", Exhaustive: true, NoStraights: true}, showdown.HighCard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hand, _, err := tt.cmd.classify()
			require.NoError(t, err)
			assert.Equal(t, tt.want, hand.Category)
		})
	}
}

func TestClassifyErrors(t *testing.T) {
	t.Parallel()

	_, _, err := (&ClassifyCmd{Cards: []string{"AsAs"}, Ordering: "23456789TJQKA"}).classify()
	assert.ErrorIs(t, err, showdown.ErrDuplicateCard)

	_, _, err = (&ClassifyCmd{Cards: []string{"As"}, Ordering: "23456789TJQKA"}).classify()
	assert.ErrorIs(t, err, showdown.ErrHandSize)

	_, _, err = (&ClassifyCmd{Cards: []string{"AsKs"}, Ordering: "2345"}).classify()
	assert.Error(t, err)
}

func TestRenderHand(t *testing.T) {
	t.Parallel()
	o := poker.CanonicalOrdering()
	hand := showdown.Classify(o, poker.MustParseCards("AsAdKh"))

	var out bytes.Buffer
	renderHand(&out, o, hand)
	assert.Contains(t, out.String(), "Pair")
	assert.Contains(t, out.String(), "23456789TJQKA")
	assert.Contains(t, out.String(), "A♠ A♦")
}

func TestRenderAnalysis(t *testing.T) {
	t.Parallel()
	input := strings.Join(append(
		[]string{"count, check, nope"},
		append(relations.Encode([]relations.Edge{relations.E(poker.Two, poker.Three)}), "32456789TJQKA")...,
	), "\n")

	blocks, err := analysis.Parse(strings.NewReader(input))
	require.NoError(t, err)

	var out bytes.Buffer
	renderAnalysis(&out, blocks)
	s := out.String()
	assert.Contains(t, s, "Block at line 1")
	assert.Contains(t, s, "Rule violation: 2 -> 3")
	assert.Contains(t, s, "Correctness: 0%")
	assert.Contains(t, s, "Invalid command nope")
}

func TestAnalyzeCmdPlain(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "block.txt")
	input := "count\n" + strings.Join(relations.Encode(nil), "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(input), 0o644))

	require.NoError(t, (&AnalyzeCmd{Path: path, Plain: true}).Run())
	assert.Error(t, (&AnalyzeCmd{Path: filepath.Join(t.TempDir(), "missing.txt")}).Run())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Parallel()
	cmd := &BotCmd{
		Config:   filepath.Join(t.TempDir(), "missing.hcl"),
		Address:  "ws://engine:9000",
		Strategy: "fold",
		Listen:   "127.0.0.1:0",
		Seed:     5,
		Debug:    true,
	}
	cfg, err := cmd.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "ws://engine:9000", cfg.Server.Address)
	assert.Equal(t, "fold", cfg.Bot.Strategy)
	assert.Equal(t, "127.0.0.1:0", cfg.Diagnostics.Listen)
	assert.Equal(t, int64(5), cfg.Engine.Seed)
	assert.Equal(t, "debug", cfg.Logging.Level)

	cmd.Strategy = "bluff"
	_, err = cmd.loadConfig()
	assert.ErrorContains(t, err, "invalid strategy")
}

func TestNewHandler(t *testing.T) {
	t.Parallel()
	engine := inference.New(inference.WithSeed(1), inference.WithLogger(quietLogger()))

	tests := []struct {
		strategy string
		want     bot.Handler
	}{
		{"inference", &bot.InferenceBot{}},
		{"call", &bot.CallBot{}},
		{"fold", &bot.FoldBot{}},
		{"random", &bot.RandBot{}},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			t.Parallel()
			cfg := config.DefaultConfig()
			cfg.Bot.Strategy = tt.strategy
			cfg.Bot.SnapshotDir = t.TempDir()
			h, err := newHandler(cfg, engine, quietLogger(), 1)
			require.NoError(t, err)
			assert.IsType(t, tt.want, h)
		})
	}

	cfg := config.DefaultConfig()
	cfg.Bot.Strategy = "bluff"
	_, err := newHandler(cfg, engine, quietLogger(), 1)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bot.log")
	logger, closer, err := newLogger(&config.LoggingSettings{Level: "warn", File: path})
	require.NoError(t, err)
	logger.Warn("hello", "k", 1)
	logger.Info("hidden")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.NotContains(t, string(data), "hidden")

	_, _, err = newLogger(&config.LoggingSettings{Level: "loud"})
	assert.Error(t, err)
}

func TestRenderSimulation(t *testing.T) {
	t.Parallel()
	res := &simulator.Result{
		Hidden:    poker.CanonicalOrdering(),
		Rounds:    100,
		Showdowns: 60,
		Folds:     40,
		Checkpoints: []simulator.Checkpoint{
			{Round: 100, Agreement: 0.95, Uncertainty: 12, Ordering: poker.CanonicalOrdering()},
		},
	}

	var out bytes.Buffer
	renderSimulation(&out, 7, res, bot.Stats{Observations: 30, Accepted: 20}, poker.CanonicalOrdering())
	s := out.String()
	assert.Contains(t, s, "100 (60 showdowns, 0 split, 40 folded)")
	assert.Contains(t, s, "30 observations, 20 accepted")
	assert.Contains(t, s, "95.0%")
	assert.Contains(t, s, "Final agreement 95.0%")
}
