package youtubeapi

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/xp-gauge/telemetry"
	"github.com/onnwee/xp-gauge/xp"
)

// DefaultPollInterval is how often the live chat is fetched.
const DefaultPollInterval = 5 * time.Second

// Poller follows one YouTube live chat and forwards xp messages to Sink.
type Poller struct {
	API      LiveAPI
	Sink     xp.Sink
	Interval time.Duration

	session Session
	polling atomic.Bool
}

// Start resolves the live chat (synchronously) and, on success, starts the poll loop.
// Resolution happens once: when it fails the poller stays idle for good.
func (p *Poller) Start(ctx context.Context, target Target) bool {
	id, ok := ResolveLiveChatID(ctx, p.API, target)
	if !ok {
		telemetry.SetPolling(false)
		return false
	}
	p.session.setLiveChatID(id)
	p.polling.Store(true)
	telemetry.SetPolling(true)

	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	go func() {
		// The ticker runs for the life of the process; ctx only ends at shutdown.
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		slog.Info("youtube chat: started poller", slog.Duration("interval", interval), slog.String("live_chat_id", id))
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Tick(ctx)
			}
		}
	}()
	return true
}

// Tick performs one poll. Failures (quota included) skip the tick and keep the page token.
func (p *Poller) Tick(ctx context.Context) {
	liveChatID := p.session.LiveChatID()
	ctx, span := telemetry.StartSpan(ctx, "youtubeapi", "livechat.poll", attribute.String("live_chat_id", liveChatID))
	defer span.End()

	page, err := p.API.ChatMessages(ctx, liveChatID, p.session.PageToken())
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, ErrQuotaExceeded) {
			telemetry.Inc(telemetry.YouTubePolls, "quota")
			slog.Error("youtube api quota exceeded while fetching chat", slog.String("live_chat_id", liveChatID))
			return
		}
		telemetry.Inc(telemetry.YouTubePolls, "error")
		slog.Error("youtube chat fetch failed", slog.String("live_chat_id", liveChatID), slog.Any("err", err))
		return
	}
	telemetry.Inc(telemetry.YouTubePolls, "ok")
	telemetry.SetSpanSuccess(span)
	p.session.setPageToken(page.NextPageToken)

	for _, item := range page.Items {
		telemetry.Inc(telemetry.ChatMessages, telemetry.SourceYouTube)
		n, ok := xp.Parse(item.Text)
		if !ok {
			continue
		}
		ev, ok := xp.New(item.Author, item.Avatar, n)
		if !ok {
			continue
		}
		telemetry.Inc(telemetry.EventsAccepted, telemetry.SourceYouTube)
		p.Sink.Broadcast(ev)
	}
}

// LiveChatID returns the resolved chat id ("" while idle).
func (p *Poller) LiveChatID() string { return p.session.LiveChatID() }

// PageToken returns the cursor the next tick will use.
func (p *Poller) PageToken() string { return p.session.PageToken() }

// Polling reports whether the poll loop was started.
func (p *Poller) Polling() bool { return p.polling.Load() }
