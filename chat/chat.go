package chat

import (
	"context"
	"errors"
	"log/slog"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/onnwee/xp-gauge/telemetry"
	"github.com/onnwee/xp-gauge/xp"
)

// AvatarResolver maps a Twitch user id to an avatar URL. It never fails.
type AvatarResolver interface {
	Resolve(ctx context.Context, userID string) string
}

// Listener relays xp messages from one Twitch channel.
type Listener struct {
	Channel  string
	Resolver AvatarResolver
	Sink     xp.Sink
}

// HandleMessage parses one chat message and forwards it when it carries a valid xp value.
func (l *Listener) HandleMessage(ctx context.Context, msg twitch.PrivateMessage) {
	telemetry.Inc(telemetry.ChatMessages, telemetry.SourceTwitch)
	n, ok := xp.Parse(msg.Message)
	if !ok {
		return
	}
	name := msg.User.DisplayName
	if name == "" {
		name = msg.User.Name
	}
	avatar := l.Resolver.Resolve(ctx, msg.User.ID)
	ev, ok := xp.New(name, avatar, n)
	if !ok {
		slog.Debug("twitch chat: dropped xp message without author", slog.String("user_id", msg.User.ID))
		return
	}
	telemetry.Inc(telemetry.EventsAccepted, telemetry.SourceTwitch)
	slog.Debug("twitch chat: xp event", slog.String("username", ev.Username), slog.Int("xp", ev.XP))
	l.Sink.Broadcast(ev)
}

// Run connects anonymously, joins the channel and blocks until ctx is done or the
// client gives up.
func (l *Listener) Run(ctx context.Context) error {
	if l.Channel == "" {
		slog.Info("twitch channel not set; skipping chat listener")
		return nil
	}
	client := twitch.NewAnonymousClient()

	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		l.HandleMessage(ctx, msg)
	})
	client.OnConnect(func() {
		slog.Info("twitch chat connected", slog.String("channel", l.Channel))
	})
	client.OnReconnectMessage(func(msg twitch.ReconnectMessage) {
		slog.Info("twitch chat: server requested reconnect", slog.String("channel", l.Channel))
	})

	// Handle context cancellation by closing the client
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = client.Disconnect()
		case <-done:
		}
	}()

	client.Join(l.Channel)
	err := client.Connect()
	if err == nil || errors.Is(err, twitch.ErrClientDisconnected) || ctx.Err() != nil {
		return nil
	}
	slog.Error("twitch chat connect error", slog.Any("err", err))
	return err
}
