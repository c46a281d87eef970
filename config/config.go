package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. DRUMKIT_VOLUME=0.5
const EnvPrefix = "DRUMKIT"

// MIDIConfig controls hardware controllers
type MIDIConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	Keyboards bool `mapstructure:"keyboards"` // treat other MIDI inputs as note sources
	PollMS    int  `mapstructure:"poll_ms"`
}

// Config is the main configuration structure
type Config struct {
	Kit             string     `mapstructure:"kit"`     // kit file, "" = built-in kit
	Palette         string     `mapstructure:"palette"` // GIMP palette, "" = built-in
	AllowContinuous bool       `mapstructure:"allow_continuous"`
	Volume          float64    `mapstructure:"volume"`
	SampleRate      int        `mapstructure:"sample_rate"`
	Debug           bool       `mapstructure:"debug"`
	MIDI            MIDIConfig `mapstructure:"midi"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Volume:     0.8,
		SampleRate: 44100,
		MIDI: MIDIConfig{
			Enabled:   true,
			Keyboards: true,
			PollMS:    1000,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-drumkit"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	set(v, DefaultConfig(), v.SetDefault)
	return v
}

// set writes every field of c through fn (SetDefault or Set)
func set(v *viper.Viper, c *Config, fn func(key string, value any)) {
	fn("kit", c.Kit)
	fn("palette", c.Palette)
	fn("allow_continuous", c.AllowContinuous)
	fn("volume", c.Volume)
	fn("sample_rate", c.SampleRate)
	fn("debug", c.Debug)
	fn("midi.enabled", c.MIDI.Enabled)
	fn("midi.keyboards", c.MIDI.Keyboards)
	fn("midi.poll_ms", c.MIDI.PollMS)
}

// LoadEnv reads DRUMKIT_* overrides from dotenv files. Variables already in
// the environment win; missing files are skipped.
func LoadEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. A missing file yields defaults;
// environment overrides apply either way.
func LoadFrom(path string) (*Config, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigType("json")
	set(v, c, v.Set)
	return v.WriteConfigAs(path)
}
