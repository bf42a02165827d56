package twitchapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

// rewriteTransport sends every request to the test server regardless of the original host.
type rewriteTransport struct {
	Transport http.RoundTripper
	host      string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = strings.TrimPrefix(t.host, "http://")
	return t.Transport.RoundTrip(req)
}

func TestHelixClient_GetProfileImageURL(t *testing.T) {
	tests := []struct {
		response    interface{}
		name        string
		userID      string
		wantURL     string
		errContains string
		statusCode  int
		wantErr     bool
	}{
		{
			name:   "successful lookup",
			userID: "12345",
			response: map[string]interface{}{
				"data": []map[string]string{
					{"id": "12345", "profile_image_url": "http://img/u1.png"},
				},
			},
			statusCode: http.StatusOK,
			wantURL:    "http://img/u1.png",
		},
		{
			name:        "user not found",
			userID:      "999",
			response:    map[string]interface{}{"data": []map[string]string{}},
			statusCode:  http.StatusOK,
			wantErr:     true,
			errContains: "user not found",
		},
		{
			name:   "empty profile image",
			userID: "12345",
			response: map[string]interface{}{
				"data": []map[string]string{{"id": "12345", "profile_image_url": ""}},
			},
			statusCode:  http.StatusOK,
			wantErr:     true,
			errContains: "no profile image",
		},
		{
			name:        "unauthorized",
			userID:      "12345",
			response:    map[string]interface{}{"error": "Unauthorized", "status": 401},
			statusCode:  http.StatusUnauthorized,
			wantErr:     true,
			errContains: "401",
		},
		{
			name:        "empty user id",
			userID:      "",
			wantErr:     true,
			errContains: "user id empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Client-Id") != "test-client-id" {
					t.Errorf("missing or wrong Client-Id header")
				}
				if r.Header.Get("Authorization") != "Bearer test-token" {
					t.Errorf("missing or wrong Authorization header")
				}
				if r.URL.Path != "/helix/users" {
					t.Errorf("path = %s, want /helix/users", r.URL.Path)
				}
				if got := r.URL.Query().Get("id"); got != tt.userID {
					t.Errorf("id query param = %s, want %s", got, tt.userID)
				}
				w.WriteHeader(tt.statusCode)
				if tt.response != nil {
					json.NewEncoder(w).Encode(tt.response)
				}
			}))
			defer server.Close()

			client := &HelixClient{
				Tokens:   staticTokens("test-token"),
				ClientID: "test-client-id",
				HTTPClient: &http.Client{
					Transport: &rewriteTransport{Transport: http.DefaultTransport, host: server.URL},
				},
			}

			got, err := client.GetProfileImageURL(context.Background(), tt.userID)
			if tt.wantErr {
				if err == nil {
					t.Errorf("GetProfileImageURL() error = nil, want error containing %q", tt.errContains)
				} else if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("GetProfileImageURL() error = %v, want error containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetProfileImageURL() unexpected error = %v", err)
			}
			if got != tt.wantURL {
				t.Errorf("GetProfileImageURL() = %s, want %s", got, tt.wantURL)
			}
		})
	}
}

func TestHelixClient_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [`))
	}))
	defer server.Close()

	client := &HelixClient{Tokens: staticTokens("t"), ClientID: "c", BaseURL: server.URL + "/helix"}
	if _, err := client.GetProfileImageURL(context.Background(), "1"); err == nil {
		t.Error("expected decode error")
	}
}

func TestHelixClient_UsesCurrentToken(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{{"id": "1", "profile_image_url": "x"}},
		})
	}))
	defer server.Close()

	ts := &TokenSource{}
	client := &HelixClient{Tokens: ts, ClientID: "c", BaseURL: server.URL + "/helix"}

	_, _ = client.GetProfileImageURL(context.Background(), "1")
	ts.mu.Lock()
	ts.token = "renewed"
	ts.mu.Unlock()
	_, _ = client.GetProfileImageURL(context.Background(), "1")

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || strings.TrimSpace(seen[0]) != "Bearer" || seen[1] != "Bearer renewed" {
		t.Errorf("Authorization headers = %q", seen)
	}
}
