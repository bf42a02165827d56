// Package chat contains the Twitch side of the relay: an anonymous IRC
// listener for a single channel that turns "xpNN" chat messages into
// xp events.
//
// Each accepted message is enriched with the author's avatar through a
// resolver (see twitchapi.ProfileResolver) and handed to an xp.Sink, normally
// the broadcast hub. Messages are handled one at a time on the IRC client's
// goroutine, so events from this source reach the sink in chat order.
//
// Credentials: none. The listener only reads chat, so it connects with the
// library's anonymous login. Reconnects are handled by go-twitch-irc.
package chat
