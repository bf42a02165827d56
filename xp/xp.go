// Package xp defines the event relayed to overlay clients and the chat text
// parser that produces it. Both chat sources (Twitch IRC and YouTube live chat)
// funnel through Parse and New so every event leaving this package satisfies
// the same range and naming rules.
package xp

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// Min and Max bound the accepted xp value (inclusive).
	Min = 5
	Max = 30
)

// Event is the payload sent to overlay clients, one JSON text frame per event.
type Event struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	XP       int    `json:"xp"`
}

// Sink receives accepted events. The broadcast hub implements it.
type Sink interface {
	Broadcast(Event)
}

var pattern = regexp.MustCompile(`(?i)xp(\d+)`)

// Parse extracts the xp value from a chat message. An "xp" followed by fewer than
// two digits is not a match. The first "xp" followed by two or more digits decides:
// it must carry exactly two digits within [Min, Max].
func Parse(text string) (int, bool) {
	var digits string
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		if len(m[1]) >= 2 {
			digits = m[1]
			break
		}
	}
	if len(digits) != 2 {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < Min || n > Max {
		return 0, false
	}
	return n, true
}

// New builds an Event, rejecting blank usernames and out-of-range values.
func New(username, avatar string, xp int) (Event, bool) {
	if strings.TrimSpace(username) == "" || xp < Min || xp > Max {
		return Event{}, false
	}
	return Event{Username: username, Avatar: avatar, XP: xp}, true
}
