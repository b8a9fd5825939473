package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"nearbyradar/internal/domain/radar"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// RADAR_HTTP_ADDR for http.addr.
const EnvPrefix = "RADAR"

type Config struct {
	Radar     radar.Settings
	HTTP      HTTPConfig
	DB        DBConfig
	Notify    NotifyConfig
	World     WorldConfig
	Transport TransportConfig
}

type HTTPConfig struct {
	Addr        string
	JWTSecret   string
	CORSOrigins []string
}

type DBConfig struct {
	PostgresDSN string
	SQLitePath  string
}

type NotifyConfig struct {
	LogDir string
}

type WorldConfig struct {
	Scenario string
}

type TransportConfig struct {
	DialTimeout time.Duration
	Path        string
}

func setDefaults(v *viper.Viper) {
	d := radar.DefaultSettings()
	v.SetDefault("radar.refresh_interval", d.RefreshInterval)
	v.SetDefault("radar.visibility_radius", d.VisibilityRadius)
	v.SetDefault("radar.chat_range.enabled", d.ChatRange.Enabled)
	v.SetDefault("radar.chat_range.radius", d.ChatRange.Radius)
	v.SetDefault("radar.sim_range.enabled", d.SimRange.Enabled)
	v.SetDefault("radar.sim_range.radius", d.SimRange.Radius)
	v.SetDefault("radar.sim_range.require_tracked_object", d.SimRequiresTrackedObject)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.jwt_secret", "")
	v.SetDefault("http.cors_origins", []string{})
	v.SetDefault("db.postgres_dsn", "")
	v.SetDefault("db.sqlite_path", "")
	v.SetDefault("notify.log_dir", "")
	v.SetDefault("world.scenario", "scenarios/demo.yaml")
	v.SetDefault("transport.dial_timeout", 5*time.Second)
	v.SetDefault("transport.path", "/region")
}

// Store holds the current configuration and swaps it atomically on reload.
type Store struct {
	v      *viper.Viper
	logger hlog.FullLogger
	cur    atomic.Pointer[Config]

	mu        sync.Mutex
	listeners []func(Config)
}

// Load reads defaults, the optional file at path and RADAR_ env overrides.
// A missing file is not an error.
func Load(path string, logger hlog.FullLogger) (*Store, error) {
	if logger == nil {
		logger = hlog.DefaultLogger()
	}
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
	}

	s := &Store{v: v, logger: logger}
	if err := s.read(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) read() error {
	if s.v.ConfigFileUsed() != "" {
		if err := s.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("read config: %w", err)
			}
			s.logger.Infof("config: %s not found, using defaults", s.v.ConfigFileUsed())
		}
	}
	cfg, problems := decode(s.v)
	for _, p := range problems {
		s.logger.Warnf("config: %s", p)
	}
	s.cur.Store(&cfg)
	return nil
}

// Watch reloads on every change of the config file. Subscribers registered
// with OnChange see the new value after it is stored.
func (s *Store) Watch() {
	if s.v.ConfigFileUsed() == "" {
		return
	}
	s.v.OnConfigChange(func(e fsnotify.Event) {
		if err := s.Reload(); err != nil {
			s.logger.Warnf("config: reload after %s: %v", e.Op, err)
			return
		}
		s.logger.Infof("config: reloaded %s", e.Name)
	})
	s.v.WatchConfig()
}

func (s *Store) Reload() error {
	if err := s.read(); err != nil {
		return err
	}
	cfg := s.Current()
	s.mu.Lock()
	listeners := append([]func(Config){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(cfg)
	}
	return nil
}

func (s *Store) OnChange(fn func(Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) Current() Config {
	return *s.cur.Load()
}

// Settings is read once per poll.
func (s *Store) Settings() radar.Settings {
	return s.cur.Load().Radar
}

func decode(v *viper.Viper) (Config, []string) {
	d := radar.DefaultSettings()
	var problems []string

	refresh := v.GetDuration("radar.refresh_interval")
	if refresh <= 0 {
		problems = append(problems, fmt.Sprintf("radar.refresh_interval %q invalid, using %s", v.GetString("radar.refresh_interval"), d.RefreshInterval))
		refresh = d.RefreshInterval
	}
	radius := func(key string, def float32) float32 {
		r := v.GetFloat64(key)
		if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			problems = append(problems, fmt.Sprintf("%s %q invalid, using %g", key, v.GetString(key), def))
			return def
		}
		return float32(r)
	}

	cfg := Config{
		Radar: radar.Settings{
			RefreshInterval:  refresh,
			VisibilityRadius: radius("radar.visibility_radius", d.VisibilityRadius),
			ChatRange: radar.RangePolicy{
				Enabled: v.GetBool("radar.chat_range.enabled"),
				Radius:  radius("radar.chat_range.radius", d.ChatRange.Radius),
			},
			SimRange: radar.RangePolicy{
				Enabled: v.GetBool("radar.sim_range.enabled"),
				Radius:  radius("radar.sim_range.radius", d.SimRange.Radius),
			},
			SimRequiresTrackedObject: v.GetBool("radar.sim_range.require_tracked_object"),
		},
		HTTP: HTTPConfig{
			Addr:        v.GetString("http.addr"),
			JWTSecret:   v.GetString("http.jwt_secret"),
			CORSOrigins: v.GetStringSlice("http.cors_origins"),
		},
		DB: DBConfig{
			PostgresDSN: v.GetString("db.postgres_dsn"),
			SQLitePath:  v.GetString("db.sqlite_path"),
		},
		Notify: NotifyConfig{LogDir: v.GetString("notify.log_dir")},
		World:  WorldConfig{Scenario: v.GetString("world.scenario")},
		Transport: TransportConfig{
			DialTimeout: v.GetDuration("transport.dial_timeout"),
			Path:        v.GetString("transport.path"),
		},
	}
	if cfg.Transport.DialTimeout <= 0 {
		problems = append(problems, "transport.dial_timeout invalid, using 5s")
		cfg.Transport.DialTimeout = 5 * time.Second
	}
	return cfg, problems
}
