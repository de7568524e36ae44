// Package config loads the bot's HCL configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete bot configuration. Every block is optional.
type Config struct {
	Server      *ServerSettings      `hcl:"server,block"`
	Engine      *EngineSettings      `hcl:"engine,block"`
	Bot         *BotSettings         `hcl:"bot,block"`
	Diagnostics *DiagnosticsSettings `hcl:"diagnostics,block"`
	Logging     *LoggingSettings     `hcl:"logging,block"`
}

// ServerSettings contains engine server connection settings
type ServerSettings struct {
	Address     string `hcl:"address,optional"`
	ReadTimeout int    `hcl:"read_timeout,optional"` // seconds
}

// EngineSettings tunes the inference engine
type EngineSettings struct {
	Seed     int64 `hcl:"seed,optional"`      // 0 picks a time-based seed
	BudgetMS int   `hcl:"budget_ms,optional"` // inference pass warning threshold
}

// BotSettings selects and tunes the playing strategy
type BotSettings struct {
	Strategy            string  `hcl:"strategy,optional"`
	StraightUncertainty int64   `hcl:"straight_uncertainty,optional"`
	RaisePot            float64 `hcl:"raise_pot,optional"`
	SnapshotDir         string  `hcl:"snapshot_dir,optional"`
	SnapshotEvery       int     `hcl:"snapshot_every,optional"`
}

// DiagnosticsSettings controls the HTTP diagnostics server
type DiagnosticsSettings struct {
	Listen string `hcl:"listen,optional"` // empty disables the server
}

// LoggingSettings controls log output
type LoggingSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// Strategies lists the accepted bot.strategy values.
var Strategies = []string{"inference", "call", "fold", "random"}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: &ServerSettings{
			Address:     "tcp://localhost:8080",
			ReadTimeout: 30,
		},
		Engine: &EngineSettings{
			BudgetMS: 25,
		},
		Bot: &BotSettings{
			Strategy:            "inference",
			StraightUncertainty: 1000,
			RaisePot:            0.5,
			SnapshotEvery:       50,
		},
		Diagnostics: &DiagnosticsSettings{},
		Logging: &LoggingSettings{
			Level: "info",
		},
	}
}

// Load reads filename. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source and fills in defaults for anything unset.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Server == nil {
		c.Server = defaults.Server
	}
	if c.Server.Address == "" {
		c.Server.Address = defaults.Server.Address
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = defaults.Server.ReadTimeout
	}

	if c.Engine == nil {
		c.Engine = defaults.Engine
	}
	if c.Engine.BudgetMS == 0 {
		c.Engine.BudgetMS = defaults.Engine.BudgetMS
	}

	if c.Bot == nil {
		c.Bot = defaults.Bot
	}
	if c.Bot.Strategy == "" {
		c.Bot.Strategy = defaults.Bot.Strategy
	}
	if c.Bot.StraightUncertainty == 0 {
		c.Bot.StraightUncertainty = defaults.Bot.StraightUncertainty
	}
	if c.Bot.RaisePot == 0 {
		c.Bot.RaisePot = defaults.Bot.RaisePot
	}
	if c.Bot.SnapshotEvery == 0 {
		c.Bot.SnapshotEvery = defaults.Bot.SnapshotEvery
	}

	if c.Diagnostics == nil {
		c.Diagnostics = defaults.Diagnostics
	}

	if c.Logging == nil {
		c.Logging = defaults.Logging
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.Engine.BudgetMS <= 0 {
		return fmt.Errorf("engine budget must be positive")
	}

	validStrategy := false
	for _, s := range Strategies {
		if c.Bot.Strategy == s {
			validStrategy = true
		}
	}
	if !validStrategy {
		return fmt.Errorf("invalid strategy: %s", c.Bot.Strategy)
	}
	if c.Bot.StraightUncertainty < 0 {
		return fmt.Errorf("straight uncertainty cannot be negative")
	}
	if c.Bot.RaisePot < 0 {
		return fmt.Errorf("raise pot fraction cannot be negative")
	}
	if c.Bot.SnapshotEvery < 0 {
		return fmt.Errorf("snapshot interval cannot be negative")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

// ReadTimeout returns the server read timeout
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeout) * time.Second
}

// Budget returns the inference pass budget
func (c *Config) Budget() time.Duration {
	return time.Duration(c.Engine.BudgetMS) * time.Millisecond
}
