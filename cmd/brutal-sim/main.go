// brutal-sim drives a particle field through the ECS to exercise the
// scheduler and the job pool under a realistic load.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/waldnercharles/brutal/ecs"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to TOML config file")
		entities    = flag.Int("entities", 0, "Initial particle count (overrides config)")
		ticks       = flag.Int("ticks", 0, "Tick count (overrides config)")
		workers     = flag.Int("workers", 0, "Pool worker count (overrides config)")
		lanes       = flag.Int("lanes", 0, "Lanes per system (overrides config)")
		profileMode = flag.String("profile", "", "Profile mode: cpu or mem")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *entities > 0 {
		cfg.Sim.Entities = *entities
	}
	if *ticks > 0 {
		cfg.Sim.Ticks = *ticks
	}
	if *workers > 0 {
		cfg.Pool.Workers = *workers
	}
	if *lanes > 0 {
		cfg.Pool.Lanes = *lanes
	}

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown profile mode %q\n", *profileMode)
		os.Exit(1)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	ecs.SetLogger(log)

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg Config, log *zap.Logger) error {
	sim := newSimulation(cfg, log)
	defer sim.Close()

	var window int
	var windowDur, total int64
	for tick := 0; cfg.Sim.Ticks == 0 || tick < cfg.Sim.Ticks; tick++ {
		stats, err := sim.Step()
		if err != nil {
			return err
		}

		window++
		windowDur += stats.Duration.Microseconds()
		total += stats.Duration.Microseconds()
		if window == 60 {
			log.Info("progress",
				zap.Int("tick", stats.Tick),
				zap.Int("alive", stats.Alive),
				zap.Int64("avg_tick_us", windowDur/int64(window)))
			window = 0
			windowDur = 0
		}
	}

	if cfg.Sim.Ticks > 0 {
		log.Info("done",
			zap.Int("ticks", cfg.Sim.Ticks),
			zap.Int64("avg_tick_us", total/int64(cfg.Sim.Ticks)))
	}
	return nil
}

func newLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
