package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. CAPSULEKIN_TICKRATE=30.
const EnvPrefix = "CAPSULEKIN"

// Config is the application configuration of the simulator binaries.
type Config struct {
	ScenePath  string
	TuningPath string
	TickRate   int
	Ticks      int
	Agents     int
	LogLevel   string
	LogPretty  bool
	Viewer     ViewerConfig
}

// ViewerConfig holds the raylib window settings.
type ViewerConfig struct {
	Enabled bool
	Width   int
	Height  int
	Title   string
}

// TickInterval returns the fixed simulation step.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// DeltaTime returns the fixed simulation step in seconds.
func (c Config) DeltaTime() float32 {
	return 1 / float32(c.TickRate)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scene", "assets/scenes/playground.yaml")
	v.SetDefault("tuning", "")
	v.SetDefault("tickRate", 60)
	v.SetDefault("ticks", 600)
	v.SetDefault("agents", 1)
	v.SetDefault("logLevel", "info")
	v.SetDefault("logPretty", true)

	v.SetDefault("viewer.enabled", false)
	v.SetDefault("viewer.width", 1280)
	v.SetDefault("viewer.height", 720)
	v.SetDefault("viewer.title", "capsulekin")
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"scene":     "scene",
	"tuning":    "tuning",
	"tick-rate": "tickRate",
	"ticks":     "ticks",
	"agents":    "agents",
	"log-level": "logLevel",
	"viewer":    "viewer.enabled",
}

// RegisterFlags adds the overridable settings to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("scene", "", "scene file to load")
	fs.String("tuning", "", "agent tuning file applied to every spawn")
	fs.Int("tick-rate", 0, "simulation steps per second")
	fs.Int("ticks", 0, "steps to run headless")
	fs.Int("agents", 0, "number of agents to spawn")
	fs.String("log-level", "", "trace, debug, info, warn or error")
	fs.Bool("viewer", false, "open the raylib viewer")
}

// Load reads configuration from the optional file at path, the environment and flags.
// Flags win over the environment, which wins over the file. Only flags that were set
// on the command line override anything. An empty path skips the file.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := Config{
		ScenePath:  v.GetString("scene"),
		TuningPath: v.GetString("tuning"),
		TickRate:   v.GetInt("tickRate"),
		Ticks:      v.GetInt("ticks"),
		Agents:     v.GetInt("agents"),
		LogLevel:   v.GetString("logLevel"),
		LogPretty:  v.GetBool("logPretty"),
		Viewer: ViewerConfig{
			Enabled: v.GetBool("viewer.enabled"),
			Width:   v.GetInt("viewer.width"),
			Height:  v.GetInt("viewer.height"),
			Title:   v.GetString("viewer.title"),
		},
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tickRate must be positive, got %d", c.TickRate)
	}
	if c.Ticks < 0 {
		c.Ticks = 0
	}
	if c.Agents < 0 {
		c.Agents = 0
	}
	return nil
}
