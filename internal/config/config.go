// Package config loads station settings from defaults, an optional YAML file
// under the XDG config directory, and NIGHTWAVE_-prefixed environment
// variables, in rising precedence. The file is watched and reloads are
// announced on a channel the UI drains.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// TrackEntry is one configured track.
type TrackEntry struct {
	Title string `mapstructure:"title"`
	URL   string `mapstructure:"url"`
}

// BackdropEntry is one configured backdrop scene.
type BackdropEntry struct {
	Name    string   `mapstructure:"name"`
	Palette []string `mapstructure:"palette"`
}

// Config holds all runtime settings.
type Config struct {
	Station struct {
		Name  string `mapstructure:"name"`
		About string `mapstructure:"about"`
	} `mapstructure:"station"`
	Audio struct {
		DefaultVolume float64 `mapstructure:"default_volume"`
		VolumeStep    float64 `mapstructure:"volume_step"`
		FetchTimeoutS int     `mapstructure:"fetch_timeout_seconds"`
	} `mapstructure:"audio"`
	Audience struct {
		TickSeconds int `mapstructure:"tick_seconds"`
		Ceiling     int `mapstructure:"ceiling"`
	} `mapstructure:"audience"`
	UI struct {
		Accent string `mapstructure:"accent"`
	} `mapstructure:"ui"`
	Tracks    []TrackEntry    `mapstructure:"tracks"`
	Backdrops []BackdropEntry `mapstructure:"backdrops"`
}

// FetchTimeout returns the track download timeout.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Audio.FetchTimeoutS) * time.Second
}

// AudienceTick returns the interval between listener-count re-rolls.
func (c Config) AudienceTick() time.Duration {
	return time.Duration(c.Audience.TickSeconds) * time.Second
}

// Safe wraps Config with thread-safe access plus a reload notification
// channel fed by the file watcher.
type Safe struct {
	mu       sync.RWMutex
	cfg      Config
	reloadCh chan struct{}
}

// Get returns a copy of the current config.
func (s *Safe) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Safe) set(cfg Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// ReloadCh receives a signal whenever the config file changes on disk.
func (s *Safe) ReloadCh() <-chan struct{} { return s.reloadCh }

func setDefaults(v *viper.Viper) {
	v.SetDefault("station.name", "nightwave fm")
	v.SetDefault("station.about", "24/7 lofi loops to study and drift to.\nsay hi: hello@nightwave.fm")
	v.SetDefault("audio.default_volume", 0.5)
	v.SetDefault("audio.volume_step", 0.1)
	v.SetDefault("audio.fetch_timeout_seconds", 60)
	v.SetDefault("audience.tick_seconds", 5)
	v.SetDefault("audience.ceiling", 1000)
	v.SetDefault("ui.accent", "#7aa2f7")
}

// Load builds a Safe config. An explicit path wins over the XDG search path;
// a missing file is fine, everything then comes from defaults and env.
func Load(path string) (*Safe, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("NIGHTWAVE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir := configHome(); dir != "" {
			v.AddConfigPath(filepath.Join(dir, "nightwave"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	s := &Safe{cfg: cfg, reloadCh: make(chan struct{}, 1)}

	v.OnConfigChange(func(e fsnotify.Event) {
		var next Config
		if err := v.Unmarshal(&next); err != nil {
			return
		}
		s.set(next)
		select {
		case s.reloadCh <- struct{}{}:
		default:
		}
	})
	v.WatchConfig()

	return s, nil
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}
