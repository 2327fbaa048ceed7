// Command simbridge bridges an in-process flight simulator to typed
// property groups.
//
// Usage:
//
//	simbridge [flags]
//
// Flags:
//
//	-config string        Configuration file path (YAML)
//	-mode string          Front end: console, feed (default "console")
//	-listen string        Feed listen address (default ":8080")
//	-identity string      Client name sent when opening a session
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-trace string         Write a CBOR protocol trace to this file
//	-trace-debug          Also log every trace event at debug level
//	-auto-connect         Open a session as soon as the simulator runs (default true)
//	-simulate             Advance the simulated flight (default true)
//	-poll duration        Poll interval (default 250ms)
//
// Examples:
//
//	# Interactive console
//	simbridge
//
//	# Stream changes to WebSocket clients with a trace
//	simbridge -mode feed -listen :9000 -trace session.strace
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/simbridge/simbridge-go/internal/console"
	"github.com/simbridge/simbridge-go/internal/feed"
	"github.com/simbridge/simbridge-go/pkg/aircraft"
	"github.com/simbridge/simbridge-go/pkg/bridge"
	"github.com/simbridge/simbridge-go/pkg/connection"
	"github.com/simbridge/simbridge-go/pkg/native/simpeer"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags reads the config file, if any, then applies the flags that
// were set explicitly.
func parseFlags(args []string) (Config, error) {
	cfg := defaultConfig()
	fs := flag.NewFlagSet("simbridge", flag.ContinueOnError)

	configFile := fs.String("config", "", "Configuration file path (YAML)")
	mode := fs.String("mode", string(cfg.Mode), "Front end: console, feed")
	listen := fs.String("listen", cfg.Listen, "Feed listen address")
	identity := fs.String("identity", cfg.Identity, "Client name sent when opening a session")
	peerName := fs.String("peer-name", cfg.PeerName, "Name reported by the simulated peer")
	logLevel := fs.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	traceFile := fs.String("trace", cfg.TraceFile, "Write a CBOR protocol trace to this file")
	traceDebug := fs.Bool("trace-debug", cfg.TraceDebug, "Also log every trace event at debug level")
	autoConnect := fs.Bool("auto-connect", cfg.AutoConnect, "Open a session as soon as the simulator runs")
	simulate := fs.Bool("simulate", cfg.Simulate, "Advance the simulated flight")
	poll := fs.Duration("poll", cfg.Poll, "Poll interval")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *configFile != "" {
		if err := loadConfigFile(*configFile, &cfg); err != nil {
			return cfg, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = Mode(*mode)
		case "listen":
			cfg.Listen = *listen
		case "identity":
			cfg.Identity = *identity
		case "peer-name":
			cfg.PeerName = *peerName
		case "log-level":
			cfg.LogLevel = *logLevel
		case "trace":
			cfg.TraceFile = *traceFile
		case "trace-debug":
			cfg.TraceDebug = *traceDebug
		case "auto-connect":
			cfg.AutoConnect = *autoConnect
		case "simulate":
			cfg.Simulate = *simulate
		case "poll":
			cfg.Poll = *poll
		}
	})

	return cfg, cfg.validate()
}

func run(cfg Config) error {
	level, _ := parseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	bc, closeTrace, err := cfg.bridgeConfig(logger)
	if err != nil {
		return err
	}
	defer closeTrace()

	peer := simpeer.New(cfg.PeerName)
	seedSimulation(peer)

	b, err := bridge.New(peer, peer, bc)
	if err != nil {
		return err
	}
	set, err := aircraft.NewSet(b, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := b.Start(ctx); err != nil {
		return err
	}
	defer func() {
		b.Stop()
		b.Reset()
	}()

	b.OnJoin(func() {
		if b.State() != connection.StateDisconnected {
			return
		}
		if err := b.Initialize(ctx); err != nil {
			logger.Warn("join failed", "error", err)
		}
	})
	b.OnLeave(func() {
		logger.Info("left the simulation")
	})

	if cfg.Simulate {
		go runSimulation(ctx, peer, time.Second, logger)
	}

	switch cfg.Mode {
	case ModeFeed:
		return runFeed(ctx, cfg, b, set, logger)
	default:
		return runConsole(ctx, cancel, b, set, peer, logger)
	}
}

func runConsole(ctx context.Context, cancel context.CancelFunc, b *bridge.Bridge, set *aircraft.Set, peer *simpeer.Peer, logger *slog.Logger) error {
	groups := []console.Group{set.Aircraft, set.ElectricalSystems, set.Fuel, set.PositionSpeed, set.FlightInstrumentation}
	c := console.New(b, groups, peer, os.Stdout)
	defer c.Close()

	b.OnStateChange(func(_, newState connection.State) {
		logger.Info("session state", "state", newState.String())
	})
	return c.Run(ctx, cancel)
}

func runFeed(ctx context.Context, cfg Config, b *bridge.Bridge, set *aircraft.Set, logger *slog.Logger) error {
	hub := feed.NewHub(logger)
	defer hub.Close()

	b.OnStateChange(hub.PublishState)
	for _, g := range []feed.Group{set.Aircraft, set.ElectricalSystems, set.Fuel, set.PositionSpeed, set.FlightInstrumentation} {
		hub.Attach(g)
	}

	mux := http.NewServeMux()
	mux.Handle("/feed", hub)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("feed listening", "addr", cfg.Listen, "path", "/feed")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("feed server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
