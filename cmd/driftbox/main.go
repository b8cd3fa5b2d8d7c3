package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lixenwraith/driftbox/audio"
	"github.com/lixenwraith/driftbox/config"
	"github.com/lixenwraith/driftbox/core"
	"github.com/lixenwraith/driftbox/engine"
	"github.com/lixenwraith/driftbox/events"
	"github.com/lixenwraith/driftbox/render"
	"github.com/lixenwraith/driftbox/scenario"
	"github.com/lixenwraith/driftbox/status"
	"github.com/lixenwraith/driftbox/systems"
)

var (
	configFlag   = flag.String("config", "", "path to a TOML config file")
	scenarioFlag = flag.String("scenario", "", "Lua spawn script run before the simulation starts")
	headlessFlag = flag.Bool("headless", false, "write frames to stdout instead of taking over the terminal")
	durationFlag = flag.Duration("duration", 0, "run duration override (0 = use config)")
	policyFlag   = flag.String("policy", "", "scheduling policy override: lockstep or freerun")
	profileFlag  = flag.Bool("profile", false, "write a CPU profile to the working directory")
)

func main() {
	// Panic recovery on the main goroutine; worker goroutines go through
	// core.Go, which funnels into the same handler
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	// 1. Config, with flag overrides applied before validation
	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *durationFlag > 0 {
		cfg.Timing.RunDuration = config.Duration(*durationFlag)
	}
	if *policyFlag != "" {
		cfg.Scheduler.Policy = *policyFlag
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	policy, err := engine.ParsePolicy(cfg.Scheduler.Policy)
	if err != nil {
		return err
	}

	// 2. Logger
	log, err := newLogger(cfg.Logging, *headlessFlag)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if *profileFlag {
		p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
		defer p.Stop()
	}

	// 3. World and starting entities
	world := engine.NewWorld(cfg.Domain.Capacity, cfg.Domain.Width, cfg.Domain.Height)
	for i, seed := range cfg.Entities {
		if _, err := world.Spawn(engine.Seed{
			X:      seed.X,
			Y:      seed.Y,
			VX:     seed.VX,
			VY:     seed.VY,
			Symbol: seed.Rune(),
			Health: seed.HealthOrDefault(),
		}); err != nil {
			return fmt.Errorf("spawn entity %d: %w", i, err)
		}
	}
	if *scenarioFlag != "" {
		n, err := scenario.Run(*scenarioFlag, world, log)
		if err != nil {
			return err
		}
		log.Info("scenario loaded", zap.String("script", *scenarioFlag), zap.Int("spawned", n))
	}
	log.Info("world ready",
		zap.Int("width", cfg.Domain.Width),
		zap.Int("height", cfg.Domain.Height),
		zap.Int("entities", world.Count()),
		zap.Int("capacity", cfg.Domain.Capacity),
	)

	// 4. Event queue, metrics, systems
	queue := events.NewQueue()
	reg := status.NewRegistry()
	stepper := systems.NewPhysicsSystem(world, queue, reg)
	collector := systems.NewRenderSystem(world, reg)
	resolver := systems.NewDamageSystem(world, queue, log, reg)

	// 5. Presentation sink. In terminal mode the quit keys (q, Esc,
	// Ctrl+C) arrive through the tcell event stream, not the signal
	// handler, because tcell puts the terminal in raw mode.
	var sink render.Sink
	quitCh := make(chan struct{})
	if *headlessFlag {
		sink = render.NewWriter(os.Stdout, cfg.Domain.Width, cfg.Domain.Height)
	} else {
		term, err := render.NewTerminal(cfg.Domain.Width, cfg.Domain.Height, reg)
		if err != nil {
			return fmt.Errorf("init terminal: %w", err)
		}
		core.OnCrash(term.Close)
		sink = term
		core.Go(func() { pollQuit(term.Screen(), quitCh) })
	}
	defer sink.Close()

	// 6. Audio cues; a missing sound device is not fatal
	if cfg.Audio.Enabled {
		cues, err := audio.NewCues()
		if err != nil {
			log.Warn("audio unavailable", zap.Error(err))
		} else {
			defer cues.Close()
			resolver.SetHitFunc(func(core.Entity, core.Wall, int) { cues.Hit() })
		}
	}

	// 7. Scheduler
	sched := engine.NewScheduler(engine.SchedulerConfig{
		Policy:        policy,
		StepInterval:  time.Duration(cfg.Timing.StepInterval),
		FrameInterval: time.Duration(cfg.Timing.FrameInterval),
		Stepper:       stepper,
		Collector:     collector,
		Resolver:      resolver,
		Queue:         queue,
		Sink:          sink,
		Registry:      reg,
		Log:           log,
	})
	sched.Start()

	// 8. Wait for the run duration, a signal, or the quit key
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var timeout <-chan time.Time
	runFor := time.Duration(cfg.Timing.RunDuration)
	if runFor > 0 {
		timer := time.NewTimer(runFor)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-timeout:
		log.Info("run duration reached", zap.Duration("duration", runFor))
	case sig := <-sigCh:
		log.Info("signal received", zap.String("signal", sig.String()))
	case <-quitCh:
		log.Info("quit requested")
	}

	sched.Stop()
	return nil
}

// pollQuit watches the tcell event stream for the quit keys. PollEvent
// returns nil once the screen is finalized, which ends the loop on the
// non-interactive exit paths.
func pollQuit(screen tcell.Screen, quit chan<- struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		if key, ok := ev.(*tcell.EventKey); ok {
			if key.Key() == tcell.KeyEscape || key.Key() == tcell.KeyCtrlC ||
				(key.Key() == tcell.KeyRune && key.Rune() == 'q') {
				close(quit)
				return
			}
		}
	}
}

func newLogger(cfg config.LoggingConfig, headless bool) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	// tcell owns the terminal while a screen is live; route logs to a
	// file so they do not fight the draw loop
	target := cfg.File
	if target == "" && !headless {
		target = "driftbox.log"
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if target != "" {
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if target != "" {
		zapCfg.OutputPaths = []string{target}
		zapCfg.ErrorOutputPaths = []string{target}
	}

	return zapCfg.Build()
}
