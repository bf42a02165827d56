// Package youtubeapi is the YouTube side of the relay. It wraps the YouTube Data
// API v3 (API key auth) for the three calls the relay needs, resolves which live
// chat to follow, and polls that chat for xp messages on a fixed interval.
package youtubeapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// QuotaExceededReason is the error reason YouTube reports once the daily quota is spent.
const QuotaExceededReason = "quotaExceeded"

// ErrQuotaExceeded marks calls rejected because the API quota is exhausted.
var ErrQuotaExceeded = errors.New("youtube api quota exceeded")

// ChatItem is one live chat message reduced to what the relay uses.
type ChatItem struct {
	Author string
	Avatar string
	Text   string
}

// ChatPage is one liveChatMessages.list response.
type ChatPage struct {
	Items         []ChatItem
	NextPageToken string
}

// Client performs API-key authenticated YouTube Data API calls, each bounded by Timeout.
type Client struct {
	svc     *yt.Service
	timeout time.Duration
}

// New builds a client. Extra options (endpoint, HTTP client) are mainly for tests.
func New(ctx context.Context, apiKey string, timeout time.Duration, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("youtube api key empty")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return &Client{svc: svc, timeout: timeout}, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// ActiveLiveChatID returns the active live chat of a video, or "" when the video is not live.
func (c *Client) ActiveLiveChatID(ctx context.Context, videoID string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	res, err := c.svc.Videos.List([]string{"liveStreamingDetails"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return "", classify(err)
	}
	if len(res.Items) == 0 || res.Items[0] == nil {
		return "", nil
	}
	details := res.Items[0].LiveStreamingDetails
	if details == nil {
		return "", nil
	}
	return details.ActiveLiveChatId, nil
}

// LiveVideoID returns the id of a video the channel is currently streaming, or "".
func (c *Client) LiveVideoID(ctx context.Context, channelID string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	res, err := c.svc.Search.List([]string{"id"}).
		ChannelId(channelID).
		EventType("live").
		Type("video").
		Context(ctx).
		Do()
	if err != nil {
		return "", classify(err)
	}
	if len(res.Items) == 0 || res.Items[0] == nil || res.Items[0].Id == nil {
		return "", nil
	}
	return res.Items[0].Id.VideoId, nil
}

// ChatMessages fetches the chat messages after pageToken ("" for the first page).
func (c *Client) ChatMessages(ctx context.Context, liveChatID, pageToken string) (*ChatPage, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	call := c.svc.LiveChatMessages.List(liveChatID, []string{"snippet", "authorDetails"})
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	res, err := call.Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}
	page := &ChatPage{NextPageToken: res.NextPageToken, Items: make([]ChatItem, 0, len(res.Items))}
	for _, m := range res.Items {
		if m == nil || m.Snippet == nil || m.AuthorDetails == nil {
			continue
		}
		page.Items = append(page.Items, ChatItem{
			Author: m.AuthorDetails.DisplayName,
			Avatar: m.AuthorDetails.ProfileImageUrl,
			Text:   m.Snippet.DisplayMessage,
		})
	}
	return page, nil
}

// IsQuotaExceeded reports whether err is an API error whose first reason is quotaExceeded.
func IsQuotaExceeded(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	return len(gerr.Errors) > 0 && gerr.Errors[0].Reason == QuotaExceededReason
}

func classify(err error) error {
	if IsQuotaExceeded(err) {
		return fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
	}
	return err
}
