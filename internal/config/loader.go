package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader loads configuration with precedence ENV > file > defaults.
type Loader struct {
	configPath string
	version    string
}

// NewLoader creates a configuration loader. configPath may be empty,
// in which case only defaults and environment variables apply.
func NewLoader(configPath, version string) *Loader {
	return &Loader{configPath: configPath, version: version}
}

// Load resolves the effective configuration and validates it.
func (l *Loader) Load() (AppConfig, error) {
	cfg := defaults()

	if l.configPath != "" {
		if err := mergeFile(&cfg, l.configPath); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	mergeEnv(&cfg)

	// Media root must be absolute so collection paths resolve predictably.
	if abs, err := filepath.Abs(cfg.Media.Root); err == nil {
		cfg.Media.Root = abs
	}

	cfg.Version = l.version

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func defaults() AppConfig {
	return AppConfig{
		LogLevel: "info",
		Panel: PanelConfig{
			Driver: "fbdev",
			Device: "/dev/fb0",
			Width:  320,
			Height: 240,
		},
		Media: MediaConfig{
			Root:             "/media/panel",
			Collections:      map[string]string{},
			WatchCollections: true,
		},
		Player: PlayerConfig{
			TickRate:       60,
			WaitFree:       100 * time.Millisecond,
			WaitFreeSwitch: 200 * time.Millisecond,
			StallStreaming: time.Second,
			StallStill:     1500 * time.Millisecond,
			FPSInterval:    time.Second,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			MetricsAddr:     ":9090",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			RateLimitRPM:    120,
		},
	}
}

func mergeFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator supplied via --config
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func mergeEnv(cfg *AppConfig) {
	cfg.LogLevel = ParseString("PIXELPANE_LOG_LEVEL", cfg.LogLevel)

	cfg.Panel.Driver = ParseString("PIXELPANE_PANEL_DRIVER", cfg.Panel.Driver)
	cfg.Panel.Device = ParseString("PIXELPANE_PANEL_DEVICE", cfg.Panel.Device)
	cfg.Panel.Width = ParseInt("PIXELPANE_PANEL_WIDTH", cfg.Panel.Width)
	cfg.Panel.Height = ParseInt("PIXELPANE_PANEL_HEIGHT", cfg.Panel.Height)

	cfg.Media.Root = ParseString("PIXELPANE_MEDIA_ROOT", cfg.Media.Root)
	cfg.Media.Boot = ParseString("PIXELPANE_MEDIA_BOOT", cfg.Media.Boot)
	cfg.Media.WatchCollections = ParseBool("PIXELPANE_MEDIA_WATCH", cfg.Media.WatchCollections)

	cfg.Player.TickRate = ParseInt("PIXELPANE_TICK_RATE", cfg.Player.TickRate)
	cfg.Player.WaitFree = ParseDuration("PIXELPANE_WAIT_FREE", cfg.Player.WaitFree)
	cfg.Player.WaitFreeSwitch = ParseDuration("PIXELPANE_WAIT_FREE_SWITCH", cfg.Player.WaitFreeSwitch)
	cfg.Player.StallStreaming = ParseDuration("PIXELPANE_STALL_STREAMING", cfg.Player.StallStreaming)
	cfg.Player.StallStill = ParseDuration("PIXELPANE_STALL_STILL", cfg.Player.StallStill)
	cfg.Player.FPSInterval = ParseDuration("PIXELPANE_FPS_INTERVAL", cfg.Player.FPSInterval)

	cfg.Server.ListenAddr = ParseString("PIXELPANE_LISTEN", cfg.Server.ListenAddr)
	cfg.Server.MetricsAddr = ParseString("PIXELPANE_METRICS_LISTEN", cfg.Server.MetricsAddr)
	cfg.Server.ReadTimeout = ParseDuration("PIXELPANE_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = ParseDuration("PIXELPANE_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.ShutdownTimeout = ParseDuration("PIXELPANE_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.RateLimitRPM = ParseInt("PIXELPANE_RATE_LIMIT_RPM", cfg.Server.RateLimitRPM)
}
