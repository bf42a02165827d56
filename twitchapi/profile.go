package twitchapi

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/onnwee/xp-gauge/telemetry"
)

// PlaceholderAvatar is returned (and cached) whenever a lookup fails.
const PlaceholderAvatar = "https://placekitten.com/70/70"

// ProfileLookup fetches a user's avatar from upstream.
type ProfileLookup interface {
	GetProfileImageURL(ctx context.Context, userID string) (string, error)
}

// ProfileCache maps user ids to avatar URLs. Entries are written once and live
// for the whole process; nothing is evicted.
type ProfileCache struct {
	mu sync.Mutex
	m  map[string]string
}

func NewProfileCache() *ProfileCache {
	return &ProfileCache{m: make(map[string]string)}
}

func (c *ProfileCache) Get(userID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[userID]
	return v, ok
}

// Put stores the avatar unless one is already cached and returns the stored value.
func (c *ProfileCache) Put(userID, avatar string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.m[userID]; ok {
		return v
	}
	c.m[userID] = avatar
	return avatar
}

func (c *ProfileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// ProfileResolver resolves Twitch user ids to avatars, memoizing every answer
// (including the placeholder) for the life of the process.
type ProfileResolver struct {
	lookup ProfileLookup
	cache  *ProfileCache
	group  singleflight.Group
}

// NewProfileResolver returns a resolver backed by lookup. A nil cache gets a fresh one.
func NewProfileResolver(lookup ProfileLookup, cache *ProfileCache) *ProfileResolver {
	if cache == nil {
		cache = NewProfileCache()
	}
	return &ProfileResolver{lookup: lookup, cache: cache}
}

// Resolve never fails: upstream errors yield PlaceholderAvatar, which is cached like any other answer.
func (r *ProfileResolver) Resolve(ctx context.Context, userID string) string {
	if v, ok := r.cache.Get(userID); ok {
		telemetry.Inc(telemetry.ProfileLookups, "hit")
		return v
	}
	v, _, _ := r.group.Do(userID, func() (any, error) {
		if v, ok := r.cache.Get(userID); ok {
			return v, nil
		}
		ctx, span := telemetry.StartSpan(ctx, "twitchapi", "profile.lookup")
		defer span.End()
		avatar, err := r.lookup.GetProfileImageURL(ctx, userID)
		if err != nil {
			telemetry.RecordError(span, err)
			telemetry.Inc(telemetry.ProfileLookups, "placeholder")
			slog.Warn("twitch avatar lookup failed; using placeholder", slog.String("user_id", userID), slog.Any("err", err))
			avatar = PlaceholderAvatar
		} else {
			telemetry.SetSpanSuccess(span)
			telemetry.Inc(telemetry.ProfileLookups, "ok")
		}
		return r.cache.Put(userID, avatar), nil
	})
	return v.(string)
}
