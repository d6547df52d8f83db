package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tickworld/worldbridge/internal/config"
	"github.com/tickworld/worldbridge/internal/core/bridge"
	"github.com/tickworld/worldbridge/internal/core/event"
	coresys "github.com/tickworld/worldbridge/internal/core/system"
	"github.com/tickworld/worldbridge/internal/core/tick"
	"github.com/tickworld/worldbridge/internal/data"
	"github.com/tickworld/worldbridge/internal/scripting"
	"github.com/tickworld/worldbridge/internal/system"
	"github.com/tickworld/worldbridge/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/worldsim.toml"
	if p := os.Getenv("WORLDSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Load scenario data and behavior scripts
	scenario, err := data.LoadScenario(cfg.Sim.ScenarioPath)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}

	engine, err := scripting.NewEngine(cfg.Sim.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer engine.Close()

	// 4. Build the world and its bridge
	ws := world.NewState()
	bus := event.NewBus()
	h := bridge.NewHandle(ws, bus, log)

	spawnCh := make(chan world.SpawnRequest, 64)
	telemCh := make(chan world.Telemetry, 256)
	if err := event.AddChannel(bus, spawnCh); err != nil {
		return fmt.Errorf("register spawn channel: %w", err)
	}
	if err := event.AddChannel(bus, telemCh); err != nil {
		return fmt.Errorf("register telemetry channel: %w", err)
	}

	event.Subscribe(bus, func(ev world.AgentRetired) {
		log.Info("agent retired",
			zap.Int64("id", int64(ev.ID)),
			zap.String("name", ev.Name),
			zap.Uint64("tick", ev.Tick),
		)
	})

	// 5. Register per-tick systems
	runner := coresys.NewRunner()
	runner.Register(system.NewIngestSystem(ws, bus, log))
	runner.Register(system.NewBehaviorSystem(ws, engine, log))
	runner.Register(system.NewDispatchSystem(bus))
	runner.Register(system.NewCleanupSystem(ws, bus))

	// 6. Start the external producer feeds
	feedCtx, stopFeeds := context.WithCancel(context.Background())
	defer stopFeeds()
	var feeds sync.WaitGroup

	feeds.Add(1)
	go func() {
		defer feeds.Done()
		spawnFeed(feedCtx, scenario, cfg.Feeds.SpawnInterval, spawnCh)
	}()

	feeds.Add(1)
	go func() {
		defer feeds.Done()
		telemetryFeed(feedCtx, scenario.TelemetrySources, cfg.Feeds.TelemetryInterval, telemCh)
	}()

	// 7. Spawn the census background task
	var census *bridge.Task
	if cfg.Sim.CensusEvery > 0 {
		census = h.Spawn(func(ctx context.Context, tc *bridge.TaskContext[world.State]) error {
			return censusTask(ctx, tc, cfg.Sim.CensusEvery, log)
		})
	}

	// 8. Run the game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sim.TickRate)
	defer ticker.Stop()

	log.Info("world loop started",
		zap.String("server", cfg.Server.Name),
		zap.Duration("tick_rate", cfg.Sim.TickRate),
		zap.Int("scenario_agents", scenario.TotalAgents()),
	)

	for {
		select {
		case <-ticker.C:
			t := h.TickPump()
			runner.Tick(t)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			stopFeeds()
			feeds.Wait()
			h.Close()
			if census != nil {
				<-census.Done()
				if err := census.Err(); err != nil {
					log.Warn("census task exited with error", zap.Error(err))
				}
			}
			log.Info("world stopped",
				zap.Uint64("final_tick", h.Clock().Current()),
				zap.Uint64("spawned", ws.Stats.Spawned),
				zap.Uint64("retired", ws.Stats.Retired),
			)
			return nil
		}
	}
}

// spawnFeed plays one pass over the scenario's agent templates, pushing a
// spawn request per interval. It stands in for an external signal
// transport: it never touches world state directly.
func spawnFeed(ctx context.Context, sc *data.Scenario, interval time.Duration, out chan<- world.SpawnRequest) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for _, tmpl := range sc.Agents {
		for i := 0; i < tmpl.Count; i++ {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			req := world.SpawnRequest{
				Name:   fmt.Sprintf("%s-%d", tmpl.Name, i+1),
				X:      tmpl.X + rand.Intn(5),
				Y:      tmpl.Y + rand.Intn(5),
				Energy: tmpl.Energy,
			}
			select {
			case <-ctx.Done():
				return
			case out <- req:
			}
		}
	}
}

// telemetryFeed emits readings round-robin across the scenario's sensor
// names until cancelled.
func telemetryFeed(ctx context.Context, sources []string, interval time.Duration, out chan<- world.Telemetry) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		reading := world.Telemetry{
			Source: sources[i%len(sources)],
			Value:  rand.Int63n(10),
		}
		select {
		case <-ctx.Done():
			return
		case out <- reading:
		}
	}
}

// censusSnapshot is what the census task reads from the world each report.
type censusSnapshot struct {
	Tick      uint64
	Agents    int
	Spawned   uint64
	Retired   uint64
	Telemetry int64
}

// censusTask periodically sleeps a fixed number of ticks, then reads a
// consistent world snapshot on the game loop and logs it.
func censusTask(ctx context.Context, tc *bridge.TaskContext[world.State], every uint64, log *zap.Logger) error {
	for {
		if err := tc.SleepUpdates(ctx, every); err != nil {
			if errors.Is(err, tick.ErrClosed) {
				return nil // world torn down; clean exit
			}
			return err
		}

		snap, err := bridge.RunOnMain(ctx, tc, func(mc *bridge.MainContext[world.State]) censusSnapshot {
			return censusSnapshot{
				Tick:      mc.Tick,
				Agents:    mc.World.Count(),
				Spawned:   mc.World.Stats.Spawned,
				Retired:   mc.World.Stats.Retired,
				Telemetry: mc.World.Stats.Telemetry,
			}
		})
		if err != nil {
			if errors.Is(err, bridge.ErrWorldClosed) || errors.Is(err, bridge.ErrResponseLost) {
				return nil
			}
			return err
		}

		log.Info("census",
			zap.Uint64("tick", snap.Tick),
			zap.Int("agents", snap.Agents),
			zap.Uint64("spawned", snap.Spawned),
			zap.Uint64("retired", snap.Retired),
			zap.Int64("telemetry", snap.Telemetry),
		)
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
