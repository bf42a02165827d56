package youtubeapi

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// LiveAPI is the subset of the YouTube API the relay depends on. *Client implements it.
type LiveAPI interface {
	ActiveLiveChatID(ctx context.Context, videoID string) (string, error)
	LiveVideoID(ctx context.Context, channelID string) (string, error)
	ChatMessages(ctx context.Context, liveChatID, pageToken string) (*ChatPage, error)
}

// Target lists the inputs tried, in order, to find the live chat to poll.
type Target struct {
	VideoID        string
	ChannelID      string
	FallbackChatID string
}

// ResolveLiveChatID walks the fallback chain once: video id, then a live video found
// by channel search, then the static fallback chat id. A failing step (quota included)
// yields nothing and the chain moves on. The bool is false when no step produced an id.
func ResolveLiveChatID(ctx context.Context, api LiveAPI, target Target) (string, bool) {
	if target.VideoID != "" {
		if id := chatIDForVideo(ctx, api, target.VideoID, "video_id"); id != "" {
			slog.Info("youtube live chat id resolved from video id", slog.String("live_chat_id", id), slog.String("video_id", target.VideoID))
			return id, true
		}
	}
	if target.ChannelID != "" {
		videoID, err := api.LiveVideoID(ctx, target.ChannelID)
		switch {
		case err != nil:
			logStepError(err, "channel_search")
		case videoID != "":
			if id := chatIDForVideo(ctx, api, videoID, "channel_search"); id != "" {
				slog.Info("youtube live chat id resolved from channel", slog.String("live_chat_id", id), slog.String("channel_id", target.ChannelID), slog.String("video_id", videoID))
				return id, true
			}
		default:
			slog.Info("youtube channel has no live video", slog.String("channel_id", target.ChannelID))
		}
	}
	if target.FallbackChatID != "" {
		slog.Info("youtube live chat id: using configured fallback", slog.String("live_chat_id", target.FallbackChatID))
		return target.FallbackChatID, true
	}
	slog.Warn("youtube live chat id unresolved; polling disabled")
	return "", false
}

func chatIDForVideo(ctx context.Context, api LiveAPI, videoID, step string) string {
	id, err := api.ActiveLiveChatID(ctx, videoID)
	if err != nil {
		logStepError(err, step)
		return ""
	}
	return id
}

func logStepError(err error, step string) {
	if errors.Is(err, ErrQuotaExceeded) {
		slog.Error("youtube api quota exceeded during live chat resolution", slog.String("step", step))
		return
	}
	slog.Warn("youtube live chat resolution step failed", slog.String("step", step), slog.Any("err", err))
}

// Session is the resolved live chat and the cursor into it.
type Session struct {
	mu            sync.Mutex
	liveChatID    string
	nextPageToken string
}

func (s *Session) LiveChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveChatID
}

func (s *Session) PageToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextPageToken
}

func (s *Session) setLiveChatID(id string) {
	s.mu.Lock()
	s.liveChatID = id
	s.mu.Unlock()
}

func (s *Session) setPageToken(tok string) {
	s.mu.Lock()
	s.nextPageToken = tok
	s.mu.Unlock()
}
