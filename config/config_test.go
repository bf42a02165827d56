package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "PUBLIC_DIR", "YOUTUBE_POLL_INTERVAL", "HTTP_TIMEOUT", "WS_WRITE_TIMEOUT"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.HTTPAddr != ":3000" {
		t.Errorf("HTTPAddr = %q, want :3000", cfg.HTTPAddr)
	}
	if cfg.PublicDir != "public" {
		t.Errorf("PublicDir = %q, want public", cfg.PublicDir)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", cfg.PollInterval)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", cfg.HTTPTimeout)
	}
	if cfg.WSWriteTimeout != 5*time.Second {
		t.Errorf("WSWriteTimeout = %v, want 5s", cfg.WSWriteTimeout)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("YOUTUBE_POLL_INTERVAL", "soon")
	if _, err := Load(); err == nil {
		t.Error("expected error for malformed YOUTUBE_POLL_INTERVAL")
	}
	t.Setenv("YOUTUBE_POLL_INTERVAL", "-1s")
	if _, err := Load(); err == nil {
		t.Error("expected error for negative YOUTUBE_POLL_INTERVAL")
	}
}

func TestValidateTwitchReady(t *testing.T) {
	t.Setenv("TWITCH_CHANNEL", "#chan")
	cfg, _ := Load()
	if cfg.TwitchChannel != "chan" {
		t.Errorf("TwitchChannel = %q, want leading # stripped", cfg.TwitchChannel)
	}
	if err := cfg.ValidateTwitchReady(); err != nil {
		t.Errorf("expected valid twitch config, got %v", err)
	}
	t.Setenv("TWITCH_CHANNEL", "")
	cfg, _ = Load()
	if err := cfg.ValidateTwitchReady(); err == nil {
		t.Error("expected error when TWITCH_CHANNEL missing")
	}
}

func TestHasYouTubeTarget(t *testing.T) {
	t.Setenv("YOUTUBE_VIDEO_ID", "")
	t.Setenv("YOUTUBE_CHANNEL_ID", "")
	t.Setenv("YOUTUBE_CHAT_ID", "")
	cfg, _ := Load()
	if cfg.HasYouTubeTarget() {
		t.Error("expected no target")
	}
	t.Setenv("YOUTUBE_CHAT_ID", "chat-1")
	cfg, _ = Load()
	if !cfg.HasYouTubeTarget() {
		t.Error("expected fallback chat id to count as a target")
	}
}
