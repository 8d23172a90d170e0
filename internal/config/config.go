// Package config loads the controller configuration from a YAML file
// via viper, with defaults suitable for the simulated backend.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/picodeck/picodeck/internal/input"
	"github.com/picodeck/picodeck/internal/playlist"
)

type Config struct {
	Media     MediaConfig     `mapstructure:"media" yaml:"media"`
	Input     InputConfig     `mapstructure:"input" yaml:"input"`
	Codec     CodecConfig     `mapstructure:"codec" yaml:"codec"`
	Recording RecordingConfig `mapstructure:"recording" yaml:"recording"`
	Display   DisplayConfig   `mapstructure:"display" yaml:"display"`
}

type MediaConfig struct {
	Directory  string   `mapstructure:"directory" yaml:"directory"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	MaxTracks  int      `mapstructure:"max_tracks" yaml:"max_tracks"`
}

type InputConfig struct {
	DebounceMs int            `mapstructure:"debounce_ms" yaml:"debounce_ms"`
	Switches   []SwitchConfig `mapstructure:"switches" yaml:"switches"`
	Remote     RemoteConfig   `mapstructure:"remote" yaml:"remote"`
}

type SwitchConfig struct {
	Pin     int    `mapstructure:"pin" yaml:"pin"`
	Command string `mapstructure:"command" yaml:"command"`
}

type RemoteConfig struct {
	// Mask folds repeat-flag variants of a key onto one code; keys of
	// Codes are hex raw codes, values are command names.
	Mask  string            `mapstructure:"mask" yaml:"mask"`
	Codes map[string]string `mapstructure:"codes" yaml:"codes"`
}

type CodecConfig struct {
	// Backend selects the codec implementation: "sim" or "host".
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Volume is the startup attenuation byte per channel.
	Volume int `mapstructure:"volume" yaml:"volume"`
}

type RecordingConfig struct {
	// Source is "mic" or "line".
	Source string `mapstructure:"source" yaml:"source"`
	Plugin string `mapstructure:"plugin" yaml:"plugin"`
}

type DisplayConfig struct {
	Cols int `mapstructure:"cols" yaml:"cols"`
	Rows int `mapstructure:"rows" yaml:"rows"`
}

// DefaultPath is used when --config is not given.
func DefaultPath() string {
	return os.ExpandEnv("$HOME/.config/picodeck.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("media.directory", os.ExpandEnv("$HOME/Music/picodeck"))
	v.SetDefault("media.extensions", playlist.DefaultExtensions)
	v.SetDefault("media.max_tracks", playlist.DefaultCapacity)
	v.SetDefault("input.debounce_ms", 200)
	v.SetDefault("input.remote.mask", "0xff")
	// Default code table matches the keyremote driver, which yields
	// key bytes as raw codes; an infrared receiver overrides it.
	v.SetDefault("input.remote.codes", map[string]string{
		"0x77": "navigate-up",
		"0x73": "navigate-down",
		"0x61": "navigate-left",
		"0x64": "navigate-right",
		"0x0d": "confirm",
		"0x62": "back",
		"0x20": "toggle-play",
		"0x72": "restart",
		"0x6d": "mute",
		"0x2b": "volume-up",
		"0x2d": "volume-down",
		"0x3e": "speed-up",
		"0x3c": "speed-down",
		"0x5d": "channel-up",
		"0x5b": "channel-down",
		"0x30": "select-0",
		"0x31": "select-1",
		"0x32": "select-2",
		"0x33": "select-3",
		"0x34": "select-4",
		"0x35": "select-5",
		"0x36": "select-6",
		"0x37": "select-7",
		"0x38": "select-8",
		"0x39": "select-9",
	})
	v.SetDefault("codec.backend", "sim")
	v.SetDefault("codec.volume", 40)
	v.SetDefault("recording.source", "mic")
	v.SetDefault("recording.plugin", "venc44k2.plg")
	v.SetDefault("display.cols", 16)
	v.SetDefault("display.rows", 2)
}

// Load reads the configuration file at path. A missing file is not an
// error: defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the parts that would otherwise fail deep inside the
// control loop.
func (c *Config) Validate() error {
	if c.Media.MaxTracks <= 0 {
		return fmt.Errorf("media.max_tracks must be positive, got %d", c.Media.MaxTracks)
	}
	if c.Codec.Volume < 0 || c.Codec.Volume > 254 {
		return fmt.Errorf("codec.volume must be in 0..254, got %d", c.Codec.Volume)
	}
	switch c.Codec.Backend {
	case "sim", "host":
	default:
		return fmt.Errorf("codec.backend must be sim or host, got %q", c.Codec.Backend)
	}
	switch c.Recording.Source {
	case "mic", "line":
	default:
		return fmt.Errorf("recording.source must be mic or line, got %q", c.Recording.Source)
	}
	if c.Display.Cols < 8 || c.Display.Rows < 2 {
		return fmt.Errorf("display must be at least 8x2, got %dx%d", c.Display.Cols, c.Display.Rows)
	}
	if _, err := c.DispatcherConfig(); err != nil {
		return err
	}
	return nil
}

// Debounce returns the input debounce window.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Input.DebounceMs) * time.Millisecond
}

// DispatcherConfig resolves the switch and remote tables into the
// dispatcher's command-typed form.
func (c *Config) DispatcherConfig() (input.Config, error) {
	out := input.Config{Debounce: c.Debounce()}

	for _, sw := range c.Input.Switches {
		cmd, err := input.Parse(sw.Command)
		if err != nil {
			return input.Config{}, fmt.Errorf("switch pin %d: %w", sw.Pin, err)
		}
		out.Switches = append(out.Switches, input.SwitchBinding{Pin: sw.Pin, Command: cmd})
	}

	mask, err := parseCode(c.Input.Remote.Mask)
	if err != nil {
		return input.Config{}, fmt.Errorf("remote mask: %w", err)
	}
	out.RemoteMask = mask

	out.RemoteCodes = make(map[uint32]input.Command, len(c.Input.Remote.Codes))
	for raw, name := range c.Input.Remote.Codes {
		code, err := parseCode(raw)
		if err != nil {
			return input.Config{}, fmt.Errorf("remote code %q: %w", raw, err)
		}
		cmd, err := input.Parse(name)
		if err != nil {
			return input.Config{}, fmt.Errorf("remote code %q: %w", raw, err)
		}
		out.RemoteCodes[code&mask] = cmd
	}
	return out, nil
}

func parseCode(s string) (uint32, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimPrefix(s, "0x")
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("not a hex code: %q", s)
	}
	return uint32(n), nil
}
