package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/onnwee/xp-gauge/chat"
	"github.com/onnwee/xp-gauge/config"
	"github.com/onnwee/xp-gauge/server"
	"github.com/onnwee/xp-gauge/twitchapi"
	"github.com/onnwee/xp-gauge/youtubeapi"
)

// components are the startup steps. renewToken, startPoller and runChat are nil when
// their source is not configured.
type components struct {
	renewToken  func(context.Context) error
	startPoller func(context.Context) bool
	serveHTTP   func(context.Context) error
	runChat     func(context.Context) error
}

// run starts the relay in order: token renewal (awaited), live chat resolution
// (awaited), then the HTTP server and the Twitch listener. It blocks until ctx is done.
func run(ctx context.Context, c components) {
	if c.renewToken != nil {
		if err := c.renewToken(ctx); err != nil {
			slog.Warn("twitch app token unavailable; avatars will use the placeholder", slog.Any("err", err))
		}
	}
	if c.startPoller != nil && !c.startPoller(ctx) {
		slog.Warn("youtube chat: no live chat resolved; polling stays idle")
	}

	go func() {
		if err := c.serveHTTP(ctx); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()
	if c.runChat != nil {
		go func() {
			if err := c.runChat(ctx); err != nil {
				slog.Error("twitch chat exited with error", slog.Any("err", err))
			}
		}()
	}

	<-ctx.Done()
	slog.Info("shutting down")
}

// newComponents wires the relay from configuration.
func newComponents(ctx context.Context, cfg *config.Config) components {
	var c components
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	tokens := &twitchapi.TokenSource{ClientID: cfg.TwitchClientID, ClientSecret: cfg.TwitchClientSecret, HTTPClient: httpClient}
	if cfg.TwitchClientID != "" && cfg.TwitchClientSecret != "" {
		c.renewToken = tokens.Renew
	} else {
		slog.Warn("twitch client credentials not set; avatars will use the placeholder")
	}
	helix := &twitchapi.HelixClient{Tokens: tokens, ClientID: cfg.TwitchClientID, HTTPClient: httpClient}
	avatars := twitchapi.NewProfileResolver(helix, twitchapi.NewProfileCache())

	hub := server.NewHub(cfg.WSWriteTimeout)

	var poller *youtubeapi.Poller
	switch {
	case cfg.YouTubeAPIKey == "":
		slog.Warn("youtube chat disabled: YOUTUBE_API_KEY not set")
	case !cfg.HasYouTubeTarget():
		slog.Warn("youtube chat disabled: set YOUTUBE_VIDEO_ID, YOUTUBE_CHANNEL_ID or YOUTUBE_CHAT_ID")
	default:
		yt, err := youtubeapi.New(ctx, cfg.YouTubeAPIKey, cfg.HTTPTimeout)
		if err != nil {
			slog.Error("youtube client init failed", slog.Any("err", err))
			break
		}
		poller = &youtubeapi.Poller{API: yt, Sink: hub, Interval: cfg.PollInterval}
		target := youtubeapi.Target{VideoID: cfg.YouTubeVideoID, ChannelID: cfg.YouTubeChannelID, FallbackChatID: cfg.YouTubeChatID}
		c.startPoller = func(ctx context.Context) bool { return poller.Start(ctx, target) }
	}

	status := func() map[string]any {
		out := map[string]any{
			"twitch_channel":       cfg.TwitchChannel,
			"twitch_token_present": tokens.Token() != "",
			"live_chat_id":         "",
			"polling":              false,
		}
		if poller != nil {
			out["live_chat_id"] = poller.LiveChatID()
			out["polling"] = poller.Polling()
		}
		return out
	}
	mux := server.NewMux(hub, cfg.PublicDir, status)
	c.serveHTTP = func(ctx context.Context) error { return server.Start(ctx, mux, cfg.HTTPAddr) }

	if err := cfg.ValidateTwitchReady(); err != nil {
		slog.Info("twitch chat disabled", slog.Any("reason", err))
	} else {
		listener := &chat.Listener{Channel: cfg.TwitchChannel, Resolver: avatars, Sink: hub}
		c.runChat = listener.Run
	}
	return c
}
