// Package testutil holds shared fakes for the Twitch endpoints the relay calls.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// MockTwitchServer serves the Twitch token and Helix endpoints from one test server.
// Unregistered paths answer 404.
type MockTwitchServer struct {
	*httptest.Server
	Handlers map[string]http.HandlerFunc

	userCalls atomic.Int32
}

// NewMockTwitchServer creates a new mock Twitch API server
func NewMockTwitchServer(t *testing.T) *MockTwitchServer {
	t.Helper()
	m := &MockTwitchServer{
		Handlers: make(map[string]http.HandlerFunc),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := m.Handlers[r.URL.Path]; ok {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(m.Close)
	return m
}

// TokenURL is the client-credentials endpoint of the mock.
func (m *MockTwitchServer) TokenURL() string { return m.URL + "/oauth2/token" }

// UserCalls reports how many /helix/users requests were served.
func (m *MockTwitchServer) UserCalls() int { return int(m.userCalls.Load()) }

// MockUserResponse answers /helix/users with profile images keyed by user id.
// Requests without a bearer token get 401; unknown ids get an empty data array.
func (m *MockTwitchServer) MockUserResponse(images map[string]string) {
	m.Handlers["/helix/users"] = func(w http.ResponseWriter, r *http.Request) {
		m.userCalls.Add(1)
		if r.Header.Get("Authorization") == "Bearer" || r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		data := []map[string]string{}
		id := r.URL.Query().Get("id")
		if img, ok := images[id]; ok {
			data = append(data, map[string]string{"id": id, "profile_image_url": img})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data}) //nolint:errcheck // test mock response
	}
}

// MockOAuthTokenResponse adds a handler for OAuth token endpoint
func (m *MockTwitchServer) MockOAuthTokenResponse(accessToken string, expiresIn int) {
	m.Handlers["/oauth2/token"] = func(w http.ResponseWriter, r *http.Request) {
		response := map[string]any{
			"access_token": accessToken,
			"expires_in":   expiresIn,
			"token_type":   "bearer",
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response) //nolint:errcheck // test mock response
	}
}
