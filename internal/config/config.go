// Package config defines the daemon configuration and its loader.
// Precedence is ENV > file > defaults, following the loader contract.
package config

import (
	"fmt"
	"time"
)

// PanelConfig describes the target panel.
type PanelConfig struct {
	// Driver selects the panel backend: "fbdev" or "memory".
	Driver string `yaml:"driver"`
	// Device is the framebuffer device node (fbdev driver only).
	Device string `yaml:"device"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// MediaConfig describes the media storage and playback tunables.
type MediaConfig struct {
	// Root is the mount point of the removable storage.
	Root string `yaml:"root"`
	// Boot is an optional media path opened at startup.
	Boot string `yaml:"boot"`
	// Collections maps a collection name to a directory below Root.
	Collections map[string]string `yaml:"collections"`
	// WatchCollections enables rescanning a collection when its
	// directory changes on disk.
	WatchCollections bool `yaml:"watch_collections"`
}

// PlayerConfig holds the production-cycle tunables.
type PlayerConfig struct {
	// TickRate is the number of production attempts per second.
	TickRate int `yaml:"tick_rate"`
	// WaitFree bounds the producer's wait for a writable slot.
	WaitFree time.Duration `yaml:"wait_free"`
	// WaitFreeSwitch bounds the wait at the safe point of a pending switch.
	WaitFreeSwitch time.Duration `yaml:"wait_free_switch"`
	// StallStreaming is the reopen threshold for streaming media.
	StallStreaming time.Duration `yaml:"stall_streaming"`
	// StallStill is the reopen threshold for still media.
	StallStill time.Duration `yaml:"stall_still"`
	// FPSInterval is the window of the consumer's rolling FPS counter.
	FPSInterval time.Duration `yaml:"fps_interval"`
}

// ServerConfig holds the control-surface listener settings.
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen"`
	MetricsAddr     string        `yaml:"metrics_listen"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimitRPM    int           `yaml:"rate_limit_rpm"`
}

// AppConfig is the root configuration for paneld.
type AppConfig struct {
	LogLevel string       `yaml:"log_level"`
	Panel    PanelConfig  `yaml:"panel"`
	Media    MediaConfig  `yaml:"media"`
	Player   PlayerConfig `yaml:"player"`
	Server   ServerConfig `yaml:"server"`

	Version string `yaml:"-"`
}

// Validate checks the configuration for values the daemon cannot start with.
func (c *AppConfig) Validate() error {
	if c.Panel.Width <= 0 || c.Panel.Height <= 0 {
		return fmt.Errorf("panel dimensions must be positive, got %dx%d", c.Panel.Width, c.Panel.Height)
	}
	switch c.Panel.Driver {
	case "fbdev", "memory":
	default:
		return fmt.Errorf("unknown panel driver %q", c.Panel.Driver)
	}
	if c.Panel.Driver == "fbdev" && c.Panel.Device == "" {
		return fmt.Errorf("panel driver fbdev requires a device node")
	}
	if c.Media.Root == "" {
		return fmt.Errorf("media root must be set")
	}
	if c.Player.TickRate <= 0 {
		return fmt.Errorf("player tick rate must be positive, got %d", c.Player.TickRate)
	}
	if c.Player.StallStreaming <= 0 || c.Player.StallStill <= 0 {
		return fmt.Errorf("stall thresholds must be positive")
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server listen address must be set")
	}
	return nil
}
