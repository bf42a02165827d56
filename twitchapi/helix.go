// Package twitchapi contains minimal helpers for the Twitch side of the relay:
// the app access token lifecycle, Helix user lookups and the memoized avatar resolver.
package twitchapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// DefaultHelixURL is the Helix API base.
const DefaultHelixURL = "https://api.twitch.tv/helix"

// Tokens supplies the bearer token for Helix calls.
type Tokens interface {
	Token() string
}

// HelixClient provides the user lookup needed for avatars.
type HelixClient struct {
	Tokens     Tokens
	ClientID   string
	HTTPClient *http.Client
	BaseURL    string
}

func (hc *HelixClient) http() *http.Client {
	if hc.HTTPClient != nil {
		return hc.HTTPClient
	}
	return http.DefaultClient
}

func (hc *HelixClient) baseURL() string {
	if hc.BaseURL != "" {
		return hc.BaseURL
	}
	return DefaultHelixURL
}

// GetProfileImageURL returns the profile image of the user with the given id.
func (hc *HelixClient) GetProfileImageURL(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hc.baseURL()+"/users", nil)
	if err != nil {
		return "", err
	}
	q := req.URL.Query()
	q.Set("id", userID)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Client-Id", hc.ClientID)
	req.Header.Set("Authorization", "Bearer "+hc.Tokens.Token())
	resp, err := hc.http().Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("helix users failed: %s: %s", resp.Status, string(b))
	}
	var body struct {
		Data []struct {
			ID              string `json:"id"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if len(body.Data) == 0 {
		return "", fmt.Errorf("user not found")
	}
	if body.Data[0].ProfileImageURL == "" {
		return "", fmt.Errorf("user has no profile image")
	}
	return body.Data[0].ProfileImageURL, nil
}
