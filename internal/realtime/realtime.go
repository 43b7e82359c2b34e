// Package realtime hosts the Socket.IO server that delivers in-app events to
// connected clients. Events are addressed to rooms: every client joins its
// own user room after connecting and the room of each chat it has open.
//
// Delivery is fire-and-forget with no persistence; clients that are offline
// simply miss the event and rely on push notifications instead.
package realtime

import (
	"github.com/rs/zerolog/log"

	socketio "github.com/googollee/go-socket.io"
)

// Realtime event names understood by clients.
const (
	EventMatchEstablished = "matchEstablished"
	EventNewMessage       = "newMessage"
)

// UserRoom returns the room name addressing one user's connections.
func UserRoom(userID string) string { return "user:" + userID }

// ChatRoom returns the room name addressing everyone inside one chat.
func ChatRoom(chatID string) string { return "chat:" + chatID }

// Emitter publishes one event to one room. Services hold this narrow seam so
// tests can capture emissions without a socket server.
type Emitter interface {
	Emit(room, event string, payload any)
}

// Server wraps the Socket.IO server and implements Emitter.
type Server struct {
	io *socketio.Server
}

// NewServer builds the Socket.IO server and registers the connection
// lifecycle and room-join handlers.
func NewServer() *Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(c socketio.Conn) error {
		log.Debug().Str("socket_id", c.ID()).Msg("socket connected")
		return nil
	})

	// Clients join their user room right after connecting and a chat room
	// when they open a chat.
	io.OnEvent("/", "join", func(c socketio.Conn, room string) {
		if room == "" {
			return
		}
		c.Join(room)
		log.Debug().Str("socket_id", c.ID()).Str("room", room).Msg("socket joined room")
	})

	io.OnEvent("/", "leave", func(c socketio.Conn, room string) {
		if room != "" {
			c.Leave(room)
		}
	})

	io.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Debug().Str("socket_id", c.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	return &Server{io: io}
}

// IO exposes the underlying server for mounting on the HTTP router and for
// Serve/Close lifecycle management in main.
func (s *Server) IO() *socketio.Server { return s.io }

// Emit broadcasts one event to a room. Emission is fire-and-forget; there is
// nobody to report failure to and the match flow must not depend on it.
func (s *Server) Emit(room, event string, payload any) {
	s.io.BroadcastToRoom("/", room, event, payload)
}

// NopEmitter discards every emission. Used where realtime delivery is
// disabled (tests, one-off tooling).
type NopEmitter struct{}

// Emit implements Emitter by doing nothing.
func (NopEmitter) Emit(room, event string, payload any) {}
