// Package config loads vrcpose settings from defaults, an optional file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ayusman/vrcpose/internal/param"
	"github.com/ayusman/vrcpose/internal/region"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Frame source kinds.
const (
	SourceReplay    = "replay"
	SourceCommand   = "command"
	SourceWebSocket = "websocket"
)

// Config holds application configuration.
type Config struct {
	OSC      OSCConfig      `mapstructure:"osc"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Source   SourceConfig   `mapstructure:"source"`
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Tray     TrayConfig     `mapstructure:"tray"`
}

// OSCConfig is the destination of outgoing parameters.
type OSCConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// PipelineConfig holds frame rate, gating, filtering and diagnostic settings.
type PipelineConfig struct {
	TargetFPS            int                      `mapstructure:"target_fps"`
	DetectionThreshold   float64                  `mapstructure:"detection_threshold"`
	SmoothFactor         float64                  `mapstructure:"smooth_factor"`
	MovementScale        float64                  `mapstructure:"movement_scale"`
	ValueChangeThreshold float64                  `mapstructure:"value_change_threshold"`
	LogInterval          time.Duration            `mapstructure:"log_interval"`
	Channels             map[string]ChannelConfig `mapstructure:"channels"`
}

// ChannelConfig overrides the shared filter settings for one channel.
type ChannelConfig struct {
	Scale  *float64 `mapstructure:"scale"`
	Smooth *float64 `mapstructure:"smooth"`
}

// SourceConfig selects where frames come from.
type SourceConfig struct {
	Kind    string `mapstructure:"kind"`
	Path    string `mapstructure:"path"`
	Command string `mapstructure:"command"`
	Loop    bool   `mapstructure:"loop"`
}

// ServerConfig holds HTTP settings. An empty Addr disables the server.
type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	StaticDir string `mapstructure:"static_dir"`
}

// StoreConfig holds sqlite settings.
type StoreConfig struct {
	Path    string `mapstructure:"path"`
	Profile string `mapstructure:"profile"`
}

// TrayConfig controls the system tray icon.
type TrayConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"osc-host":  "osc.host",
	"osc-port":  "osc.port",
	"fps":       "pipeline.target_fps",
	"threshold": "pipeline.detection_threshold",
	"smooth":    "pipeline.smooth_factor",
	"scale":     "pipeline.movement_scale",
	"source":    "source.kind",
	"replay":    "source.path",
	"command":   "source.command",
	"loop":      "source.loop",
	"addr":      "server.addr",
	"db":        "store.path",
	"profile":   "store.profile",
	"tray":      "tray.enabled",
}

// RegisterFlags adds the vrcpose flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "config file (default $VRCPOSE_CONFIG or ~/.config/vrcpose/config.*)")
	fs.String("osc-host", "127.0.0.1", "OSC destination host")
	fs.Int("osc-port", 9000, "OSC destination port")
	fs.Int("fps", 30, "frames processed per second")
	fs.Float64("threshold", 0.0, "landmark visibility a region must exceed to count as detected")
	fs.Float64("smooth", region.DefaultSmoothFactor, "smoothing factor in [0,1)")
	fs.Float64("scale", region.DefaultMovementScale, "movement scale")
	fs.String("source", SourceReplay, "frame source: replay, command or websocket")
	fs.String("replay", "", "JSON-lines recording to replay")
	fs.String("command", "", "landmark detector command printing JSON-lines frames")
	fs.Bool("loop", false, "loop the replay recording")
	fs.String("addr", ":8080", "HTTP listen address, empty to disable")
	fs.String("db", "", "profile database path")
	fs.String("profile", "", "tuning profile to apply at startup")
	fs.Bool("tray", false, "show the system tray icon")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("osc.host", "127.0.0.1")
	v.SetDefault("osc.port", 9000)
	v.SetDefault("pipeline.target_fps", 30)
	v.SetDefault("pipeline.detection_threshold", 0.0)
	v.SetDefault("pipeline.smooth_factor", region.DefaultSmoothFactor)
	v.SetDefault("pipeline.movement_scale", region.DefaultMovementScale)
	v.SetDefault("pipeline.value_change_threshold", 0.01)
	v.SetDefault("pipeline.log_interval", "500ms")
	v.SetDefault("source.kind", SourceReplay)
	v.SetDefault("source.path", "")
	v.SetDefault("source.command", "")
	v.SetDefault("source.loop", false)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("store.path", defaultStorePath())
	v.SetDefault("store.profile", "")
	v.SetDefault("tray.enabled", false)
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "vrcpose.db"
	}
	return filepath.Join(home, ".vrcpose", "vrcpose.db")
}

// Load reads configuration. Env var overrides use prefix VRCPOSE_, e.g.
// VRCPOSE_OSC_PORT. fs may be nil; if given, its changed flags win over everything.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	cfgPath := os.Getenv("VRCPOSE_CONFIG")
	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Changed {
			cfgPath = f.Value.String()
		}
	}
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "vrcpose"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("VRCPOSE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Store.Path == "" {
		c.Store.Path = defaultStorePath()
	}
	return c, nil
}

// Validate checks ranges and cross-field rules.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.OSC.Host == "" {
		add("osc.host is empty")
	}
	if c.OSC.Port < 1 || c.OSC.Port > 65535 {
		add("osc.port %d out of range [1, 65535]", c.OSC.Port)
	}

	p := c.Pipeline
	if p.TargetFPS <= 0 {
		add("pipeline.target_fps must be positive, got %d", p.TargetFPS)
	}
	if p.DetectionThreshold < 0 {
		add("pipeline.detection_threshold must not be negative, got %g", p.DetectionThreshold)
	}
	if p.SmoothFactor < 0 || p.SmoothFactor >= 1 {
		add("pipeline.smooth_factor %g out of range [0, 1)", p.SmoothFactor)
	}
	if p.ValueChangeThreshold < 0 {
		add("pipeline.value_change_threshold must not be negative, got %g", p.ValueChangeThreshold)
	}
	if p.LogInterval < 0 {
		add("pipeline.log_interval must not be negative, got %s", p.LogInterval)
	}
	if _, err := p.Tuning(); err != nil {
		add("%v", err)
	}

	switch c.Source.Kind {
	case SourceReplay:
		if c.Source.Path == "" {
			add("source.path is required for the replay source")
		}
	case SourceCommand:
		if strings.TrimSpace(c.Source.Command) == "" {
			add("source.command is required for the command source")
		}
	case SourceWebSocket:
		if c.Server.Addr == "" {
			add("the websocket source needs server.addr")
		}
	default:
		add("unknown source.kind %q", c.Source.Kind)
	}

	return errors.Join(errs...)
}

// Tuning converts the filter settings, resolving per-channel overrides.
func (p PipelineConfig) Tuning() (region.Tuning, error) {
	t := region.Tuning{
		Scale:  p.MovementScale,
		Smooth: p.SmoothFactor,
	}
	if len(p.Channels) == 0 {
		return t, nil
	}

	keys := make([]string, 0, len(p.Channels))
	for k := range p.Channels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t.Overrides = make(map[param.Name]region.Override, len(keys))
	for _, k := range keys {
		name, err := param.Parse(k)
		if err != nil {
			return region.Tuning{}, fmt.Errorf("pipeline.channels: %w", err)
		}
		if !param.MustLookup(name).Smoothed() {
			return region.Tuning{}, fmt.Errorf("pipeline.channels: %s is not a filtered channel", name)
		}
		ch := p.Channels[k]
		if ch.Smooth != nil && (*ch.Smooth < 0 || *ch.Smooth >= 1) {
			return region.Tuning{}, fmt.Errorf("pipeline.channels: %s smooth %g out of range [0, 1)", name, *ch.Smooth)
		}
		t.Overrides[name] = region.Override{Scale: ch.Scale, Smooth: ch.Smooth}
	}
	return t, nil
}
