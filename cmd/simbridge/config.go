package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/simbridge/simbridge-go/pkg/bridge"
	"github.com/simbridge/simbridge-go/pkg/log"
)

// Mode selects the front end.
type Mode string

const (
	ModeConsole Mode = "console"
	ModeFeed    Mode = "feed"
)

// Config holds the command configuration. Values come from an optional
// YAML file, then from explicitly set flags.
type Config struct {
	Mode        Mode          `yaml:"mode"`
	Identity    string        `yaml:"identity"`
	PeerName    string        `yaml:"peer_name"`
	Listen      string        `yaml:"listen"`
	LogLevel    string        `yaml:"log_level"`
	TraceFile   string        `yaml:"trace_file"`
	TraceDebug  bool          `yaml:"trace_debug"`
	AutoConnect bool          `yaml:"auto_connect"`
	Simulate    bool          `yaml:"simulate"`
	Poll        time.Duration `yaml:"poll_interval"`
	Pump        time.Duration `yaml:"pump_interval"`
	OpenTimeout time.Duration `yaml:"open_timeout"`
}

func defaultConfig() Config {
	bc := bridge.DefaultConfig()
	return Config{
		Mode:        ModeConsole,
		Identity:    bc.Identity,
		Listen:      ":8080",
		LogLevel:    "info",
		AutoConnect: true,
		Simulate:    true,
		Poll:        bc.PollInterval,
		Pump:        bc.PumpInterval,
		OpenTimeout: bc.OpenTimeout,
	}
}

// loadConfigFile overlays the YAML file at path onto cfg.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeConsole, ModeFeed:
	default:
		return fmt.Errorf("unknown mode: %s", c.Mode)
	}
	if c.Mode == ModeFeed && c.Listen == "" {
		return errors.New("feed mode needs a listen address")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// bridgeConfig builds the bridge configuration. The returned closer
// releases the trace file, if any.
func (c *Config) bridgeConfig(logger *slog.Logger) (bridge.Config, func() error, error) {
	bc := bridge.DefaultConfig()
	bc.Identity = c.Identity
	bc.PollInterval = c.Poll
	bc.PumpInterval = c.Pump
	bc.OpenTimeout = c.OpenTimeout
	bc.AutoConnect = c.AutoConnect
	bc.Logger = logger

	closer := func() error { return nil }
	var traces []log.Logger
	if c.TraceFile != "" {
		fl, err := log.NewFileLogger(c.TraceFile)
		if err != nil {
			return bc, closer, err
		}
		traces = append(traces, fl)
		closer = fl.Close
	}
	if c.TraceDebug {
		traces = append(traces, log.NewSlogAdapter(logger))
	}
	if len(traces) > 0 {
		bc.Trace = log.NewMultiLogger(traces...)
	}

	if err := bc.Validate(); err != nil {
		_ = closer()
		return bc, func() error { return nil }, err
	}
	return bc, closer, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", s)
	}
}
