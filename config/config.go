package config

import (
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/driftbox/constants"
)

// Config is the full driver configuration. Every field has a default;
// a config file only overrides what it names.
type Config struct {
	Domain    DomainConfig    `toml:"domain"`
	Timing    TimingConfig    `toml:"timing"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Logging   LoggingConfig   `toml:"logging"`
	Audio     AudioConfig     `toml:"audio"`
	Entities  []EntitySeed    `toml:"entity"`
}

type DomainConfig struct {
	Width    int `toml:"width"`
	Height   int `toml:"height"`
	Capacity int `toml:"capacity"`
}

// Duration decodes TOML duration strings like "16ms" or "2s".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

type TimingConfig struct {
	StepInterval  Duration `toml:"step_interval"`
	FrameInterval Duration `toml:"frame_interval"`
	RunDuration   Duration `toml:"run_duration"` // 0 = run until interrupted
}

type SchedulerConfig struct {
	Policy string `toml:"policy"` // "lockstep" or "freerun"
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	File   string `toml:"file"`   // log destination; stderr when empty
}

type AudioConfig struct {
	Enabled bool `toml:"enabled"`
}

// EntitySeed describes one entity spawned at startup.
type EntitySeed struct {
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	VX     float64 `toml:"vx"`
	VY     float64 `toml:"vy"`
	Symbol string  `toml:"symbol"` // single glyph; empty = not drawn
	Health int     `toml:"health"` // defaults to 100 when omitted
}

// Rune returns the seed's glyph, 0 when the entity is not drawn.
func (e EntitySeed) Rune() rune {
	if e.Symbol == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(e.Symbol)
	return r
}

// HealthOrDefault applies the standard starting health when the seed
// omits one.
func (e EntitySeed) HealthOrDefault() int32 {
	if e.Health <= 0 {
		return constants.DefaultHealth
	}
	return int32(e.Health)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Default is the demo configuration: the 80x25 domain with the two
// stock entities bouncing in it.
func Default() *Config {
	return &Config{
		Domain: DomainConfig{
			Width:    constants.GridWidth,
			Height:   constants.GridHeight,
			Capacity: constants.MaxEntities,
		},
		Timing: TimingConfig{
			StepInterval:  Duration(constants.StepInterval),
			FrameInterval: Duration(constants.FrameInterval),
			RunDuration:   Duration(constants.DefaultRunDuration),
		},
		Scheduler: SchedulerConfig{Policy: "lockstep"},
		Logging:   LoggingConfig{Level: "info", Format: "console"},
		Audio:     AudioConfig{Enabled: false},
		Entities: []EntitySeed{
			{X: 40, Y: 12, VX: 0.5, VY: 0.2, Symbol: "@", Health: 100},
			{X: 10, Y: 5, VX: -0.3, VY: 0.1, Symbol: "M", Health: 50},
		},
	}
}

// Validate rejects configurations the engine cannot honor.
func (c *Config) Validate() error {
	if c.Domain.Width < 1 || c.Domain.Height < 1 {
		return fmt.Errorf("domain: width and height must be positive, got %dx%d", c.Domain.Width, c.Domain.Height)
	}
	if c.Domain.Capacity < 1 {
		return fmt.Errorf("domain: capacity must be positive, got %d", c.Domain.Capacity)
	}
	if len(c.Entities) > c.Domain.Capacity {
		return fmt.Errorf("entities: %d seeds exceed capacity %d", len(c.Entities), c.Domain.Capacity)
	}
	if c.Timing.StepInterval < 0 || c.Timing.FrameInterval < 0 || c.Timing.RunDuration < 0 {
		return fmt.Errorf("timing: intervals must not be negative")
	}

	switch c.Scheduler.Policy {
	case "lockstep", "freerun":
	default:
		return fmt.Errorf("scheduler: unknown policy %q", c.Scheduler.Policy)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging: unknown format %q", c.Logging.Format)
	}

	maxX, maxY := float64(c.Domain.Width-1), float64(c.Domain.Height-1)
	for i, e := range c.Entities {
		if e.X < 0 || e.X > maxX || e.Y < 0 || e.Y > maxY {
			return fmt.Errorf("entity %d: position (%v,%v) outside domain", i, e.X, e.Y)
		}
		if e.Symbol != "" && utf8.RuneCountInString(e.Symbol) != 1 {
			return fmt.Errorf("entity %d: symbol must be a single character, got %q", i, e.Symbol)
		}
	}
	return nil
}
