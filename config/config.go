// Package config loads environment variables and provides a typed Config used across the service.
// It applies sensible defaults so the binary can run locally with minimal setup.
// Missing platform credentials never fail Load: each chat source simply stays idle.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	// Twitch (push source)
	TwitchChannel      string
	TwitchClientID     string
	TwitchClientSecret string

	// YouTube (poll source). Any subset of the three targets may be set.
	YouTubeAPIKey    string
	YouTubeVideoID   string
	YouTubeChannelID string
	YouTubeChatID    string

	// HTTP
	HTTPAddr  string
	PublicDir string

	// Timing
	PollInterval   time.Duration
	HTTPTimeout    time.Duration
	WSWriteTimeout time.Duration
}

// Load reads environment variables and applies defaults. Only malformed durations are errors.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.TwitchChannel = strings.TrimPrefix(strings.TrimSpace(os.Getenv("TWITCH_CHANNEL")), "#")
	cfg.TwitchClientID = os.Getenv("TWITCH_CLIENT_ID")
	cfg.TwitchClientSecret = os.Getenv("TWITCH_CLIENT_SECRET")

	cfg.YouTubeAPIKey = os.Getenv("YOUTUBE_API_KEY")
	cfg.YouTubeVideoID = strings.TrimSpace(os.Getenv("YOUTUBE_VIDEO_ID"))
	cfg.YouTubeChannelID = strings.TrimSpace(os.Getenv("YOUTUBE_CHANNEL_ID"))
	cfg.YouTubeChatID = strings.TrimSpace(os.Getenv("YOUTUBE_CHAT_ID"))

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":3000"
	}
	cfg.PublicDir = os.Getenv("PUBLIC_DIR")
	if cfg.PublicDir == "" {
		cfg.PublicDir = "public"
	}

	var err error
	if cfg.PollInterval, err = durationEnv("YOUTUBE_POLL_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = durationEnv("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.WSWriteTimeout, err = durationEnv("WS_WRITE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

// ValidateTwitchReady checks the fields the Twitch listener and avatar lookups need.
func (c *Config) ValidateTwitchReady() error {
	if c.TwitchChannel == "" {
		return fmt.Errorf("missing twitch env: require TWITCH_CHANNEL")
	}
	return nil
}

// HasYouTubeTarget reports whether any live chat resolution input is configured.
func (c *Config) HasYouTubeTarget() bool {
	return c.YouTubeVideoID != "" || c.YouTubeChannelID != "" || c.YouTubeChatID != ""
}
