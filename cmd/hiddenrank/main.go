package main

import (
	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/muesli/termenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	NoColor  bool             `help:"Disable coloured output" env:"NO_COLOR"`
	Bot      BotCmd           `cmd:"" help:"Connect to an engine server and play a match"`
	Analyze  AnalyzeCmd       `cmd:"" help:"Evaluate relation snapshot blocks from a file"`
	Classify ClassifyCmd      `cmd:"" help:"Classify a set of cards under an ordering"`
	Simulate SimulateCmd      `cmd:"" help:"Check inference offline against a random hidden ordering"`
}

func (c *CLI) AfterApply() error {
	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return nil
}

func main() {
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("hiddenrank"),
		kong.Description("Poker bot that infers a hidden rank ordering from showdowns"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
