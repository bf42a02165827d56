package twitchapi

import (
	"context"
	"testing"
	"time"

	"github.com/onnwee/xp-gauge/testutil"
)

func newMockStack(t *testing.T) (*testutil.MockTwitchServer, *TokenSource, *ProfileResolver) {
	t.Helper()
	mock := testutil.NewMockTwitchServer(t)
	mock.MockOAuthTokenResponse("app-token-abcdef", 3600)
	mock.MockUserResponse(map[string]string{"u1": "https://cdn.example/u1.png"})

	tokens := &TokenSource{
		ClientID:     "cid",
		ClientSecret: "secret",
		TokenURL:     mock.TokenURL(),
		HTTPClient:   mock.Client(),
		AfterFunc:    func(time.Duration, func()) {},
	}
	helix := &HelixClient{Tokens: tokens, ClientID: "cid", HTTPClient: mock.Client(), BaseURL: mock.URL + "/helix"}
	return mock, tokens, NewProfileResolver(helix, NewProfileCache())
}

func TestAvatarPipeline_TokenThenLookup(t *testing.T) {
	mock, tokens, resolver := newMockStack(t)
	ctx := context.Background()

	if err := tokens.Renew(ctx); err != nil {
		t.Fatalf("Renew() error = %v", err)
	}

	if got := resolver.Resolve(ctx, "u1"); got != "https://cdn.example/u1.png" {
		t.Errorf("Resolve(u1) = %q", got)
	}
	if got := resolver.Resolve(ctx, "u1"); got != "https://cdn.example/u1.png" {
		t.Errorf("second Resolve(u1) = %q", got)
	}
	if got := resolver.Resolve(ctx, "u2"); got != PlaceholderAvatar {
		t.Errorf("Resolve(unknown) = %q, want placeholder", got)
	}
	if n := mock.UserCalls(); n != 2 {
		t.Errorf("helix user calls = %d, want 2 (one per distinct user)", n)
	}
}

func TestAvatarPipeline_NoTokenYieldsPlaceholder(t *testing.T) {
	mock, _, resolver := newMockStack(t)

	if got := resolver.Resolve(context.Background(), "u1"); got != PlaceholderAvatar {
		t.Errorf("Resolve() without token = %q, want placeholder", got)
	}
	if n := mock.UserCalls(); n != 1 {
		t.Errorf("helix user calls = %d, want 1", n)
	}
}
