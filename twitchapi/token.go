package twitchapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/onnwee/xp-gauge/telemetry"
)

// DefaultTokenURL is the Twitch OAuth token endpoint.
const DefaultTokenURL = "https://id.twitch.tv/oauth2/token"

// MaxRenewDelay caps the renewal timer at the largest delay a signed 32-bit
// millisecond timer can hold (about 24.8 days).
const MaxRenewDelay = time.Duration(math.MaxInt32) * time.Millisecond

// TokenSource holds the Twitch app access (client credentials) token used for Helix calls.
// The token is renewed by Renew, which re-arms itself at 90% of the reported validity.
// A failed renewal is not retried: the previous (possibly empty) token stays in place.
// NOTE: This token CANNOT be used for IRC chat; the chat listener connects anonymously.
type TokenSource struct {
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
	TokenURL     string
	// AfterFunc schedules the next renewal; defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func())

	mu        sync.RWMutex
	token     string
	expiresIn time.Duration
}

// Token returns the current token. It may be empty (never renewed) or stale (renewal failed).
func (ts *TokenSource) Token() string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.token
}

// ExpiresIn returns the validity window reported by the last successful renewal.
func (ts *TokenSource) ExpiresIn() time.Duration {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.expiresIn
}

// RenewDelay returns how long to wait before renewing a token valid for expiresIn.
func RenewDelay(expiresIn time.Duration) time.Duration {
	d := expiresIn / 10 * 9
	if d > MaxRenewDelay {
		return MaxRenewDelay
	}
	return d
}

// Renew performs the client-credentials exchange. On success it stores the token and
// schedules the next Renew; the timer is never cancelled and lives as long as the process.
// On failure nothing is scheduled.
func (ts *TokenSource) Renew(ctx context.Context) error {
	tok, err := ts.exchange(ctx)
	if err != nil {
		telemetry.Inc(telemetry.TokenRenewals, "error")
		slog.Error("twitch app token renewal failed", slog.Any("err", err), slog.String("component", "twitch_token"))
		return err
	}
	expiresIn := time.Duration(tok.ExpiresIn) * time.Second
	if expiresIn <= 0 && !tok.Expiry.IsZero() {
		expiresIn = time.Until(tok.Expiry)
	}

	ts.mu.Lock()
	ts.token = tok.AccessToken
	ts.expiresIn = expiresIn
	ts.mu.Unlock()

	telemetry.Inc(telemetry.TokenRenewals, "ok")
	slog.Info("twitch app token renewed", slog.Duration("expires_in", expiresIn), slog.String("tail", mask(tok.AccessToken)), slog.String("component", "twitch_token"))

	if expiresIn <= 0 {
		slog.Warn("twitch app token has no expiry; renewal not scheduled", slog.String("component", "twitch_token"))
		return nil
	}
	after := ts.AfterFunc
	if after == nil {
		after = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	next := context.WithoutCancel(ctx)
	after(RenewDelay(expiresIn), func() { _ = ts.Renew(next) })
	return nil
}

func (ts *TokenSource) exchange(ctx context.Context) (*oauth2.Token, error) {
	if ts.ClientID == "" || ts.ClientSecret == "" {
		return nil, errors.New("missing client id/secret for twitch app token")
	}
	tokenURL := ts.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	cc := &clientcredentials.Config{
		ClientID:     ts.ClientID,
		ClientSecret: ts.ClientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	if ts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, ts.HTTPClient)
	}
	tok, err := cc.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("twitch token request failed: %w", err)
	}
	return tok, nil
}

func mask(tok string) string {
	if len(tok) > 6 {
		return "***" + tok[len(tok)-6:]
	}
	return "***"
}
