package orrery

import (
	"fmt"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
)

const (
	// DefaultNEOURL is the NASA NeoWs feed endpoint.
	DefaultNEOURL = "https://api.nasa.gov/neo/rest/v1/feed"
	// DefaultFireballURL is the JPL fireball endpoint.
	DefaultFireballURL = "https://ssd-api.jpl.nasa.gov/fireball.api"
)

// FeedsConfig configures the near-Earth object and fireball feeds.
type FeedsConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	APIKey        string        `mapstructure:"api_key"`
	Interval      time.Duration `mapstructure:"interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Retries       int           `mapstructure:"retries"`
	NEOURL        string        `mapstructure:"neo_url"`
	FireballURL   string        `mapstructure:"fireball_url"`
	FireballLimit int           `mapstructure:"fireball_limit"`
	SeedAsteroids bool          `mapstructure:"seed_asteroids"` // One asteroid per NEO of the first fetch.
}

// Config is the whole configuration of a view.
type Config struct {
	Table      Table
	FPS        float64
	Seed       SeedMode
	Epoch      time.Time
	RandSeed   int64
	Asteroids  AsteroidBelt
	Feeds      FeedsConfig
	Export     ExportConfig
	ServerAddr string
}

// Engine returns the engine configuration, without logger, metrics nor renderers.
func (c Config) Engine() EngineConfig {
	return EngineConfig{Seed: c.Seed, Epoch: c.Epoch, RandSeed: c.RandSeed, Asteroids: c.Asteroids}
}

// NewViper returns a viper instance with the defaults set and ORRERY_ environment overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("engine.table", "inner")
	v.SetDefault("engine.fps", FrameRate)
	v.SetDefault("engine.seed", "zero")
	v.SetDefault("engine.scaling", 1.0)
	v.SetDefault("feeds.enabled", false)
	v.SetDefault("feeds.api_key", "DEMO_KEY")
	v.SetDefault("feeds.interval", time.Hour)
	v.SetDefault("feeds.timeout", 10*time.Second)
	v.SetDefault("feeds.retries", 3)
	v.SetDefault("feeds.neo_url", DefaultNEOURL)
	v.SetDefault("feeds.fireball_url", DefaultFireballURL)
	v.SetDefault("feeds.fireball_limit", 20)
	v.SetDefault("export.output_dir", ".")
	v.SetDefault("export.filename", "orrery")
	v.SetDefault("export.every", 1)
	v.SetDefault("server.addr", ":8080")
	v.SetEnvPrefix("ORRERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the configuration file at path. An empty path only uses the defaults
// and the environment.
func LoadConfig(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%s: %s", path, err)
		}
	}
	return ConfigFromViper(v)
}

// ConfigFromViper decodes the configuration. A `bodies` array replaces the named table.
func ConfigFromViper(v *viper.Viper) (conf Config, err error) {
	if v.IsSet("bodies") {
		conf.Table = Table{Name: v.GetString("engine.table"), Scaling: v.GetFloat64("engine.scaling")}
		if err = v.UnmarshalKey("bodies", &conf.Table.Bodies); err != nil {
			return conf, fmt.Errorf("could not read bodies: %s", err)
		}
		if len(conf.Table.Bodies) == 0 {
			return conf, fmt.Errorf("bodies is set but empty")
		}
	} else if conf.Table, err = TableFromString(v.GetString("engine.table")); err != nil {
		return conf, err
	}
	conf.FPS = v.GetFloat64("engine.fps")
	if conf.FPS <= 0 {
		return conf, fmt.Errorf("engine.fps must be positive, got %f", conf.FPS)
	}
	if conf.Seed, err = ParseSeedMode(v.GetString("engine.seed")); err != nil {
		return conf, err
	}
	conf.Epoch = confReadJDEorTime(v, "engine.epoch")
	conf.RandSeed = v.GetInt64("engine.rand_seed")
	// Unmarshal goes through AllSettings so that partial sections keep their defaults.
	var sections struct {
		Asteroids AsteroidBelt `mapstructure:"asteroids"`
		Feeds     FeedsConfig  `mapstructure:"feeds"`
		Export    ExportConfig `mapstructure:"export"`
	}
	if err = v.Unmarshal(&sections); err != nil {
		return conf, fmt.Errorf("could not read configuration: %s", err)
	}
	conf.Asteroids, conf.Feeds, conf.Export = sections.Asteroids, sections.Feeds, sections.Export
	if conf.Export.Epoch.IsZero() {
		conf.Export.Epoch = conf.Epoch
	}
	conf.ServerAddr = v.GetString("server.addr")
	return conf, nil
}

// confReadJDEorTime reads either a Julian date or a date time. Unset keys return the zero time.
func confReadJDEorTime(v *viper.Viper, key string) (dt time.Time) {
	if !v.IsSet(key) {
		return
	}
	jde := v.GetFloat64(key)
	if jde == 0 {
		dt = v.GetTime(key)
	} else {
		dt = julian.JDToTime(jde)
	}
	return dt.UTC()
}
