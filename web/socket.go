package web

import (
	"fmt"
	"net/http"
	"time"

	"roomhub/domain"
	"roomhub/sink"

	"github.com/gorilla/websocket"
)

const readLimit = 1024

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced at the reverse-proxy level.
	},
}

// controlMessage is the single server-initiated frame sent right after the
// upgrade, carrying the assigned handle and the connection's credential.
type controlMessage struct {
	Handle domain.Handle `json:"handle"`
	Token  string        `json:"token"`
}

// handleSocket accepts one participant into a room.
//
// Lifecycle: upgrade, register, send the control frame, enqueue the join
// event, then block in the read pump until the client goes away. Teardown
// removes the connection first and enqueues the leave event second, so the
// leaver never receives its own leave and its token dies with the removal.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	room := domain.RoomID(r.URL.Query().Get("room"))
	name := r.URL.Query().Get("name")
	if room == "" || name == "" {
		http.Error(w, "room and name query parameters are required", http.StatusBadRequest)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	sk := sink.NewSocketSink(s.connectionBufferSize)
	conn := s.registry.Register(room, name, sk)

	token, err := s.tokens.Issue(conn)
	if err != nil {
		s.log.Error("Failed to issue connection token",
			"handle", conn.Handle, "error", err)
		s.registry.Remove(conn.Handle)
		sk.Close()
		_ = ws.Close()
		return
	}

	_ = ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err := ws.WriteJSON(controlMessage{Handle: conn.Handle, Token: token}); err != nil {
		s.registry.Remove(conn.Handle)
		sk.Close()
		_ = ws.Close()
		return
	}

	if err := s.dispatcher.EnqueueFrom(r.Context(), conn, domain.KindJoin, nil); err != nil {
		s.log.Warn("Join event not enqueued",
			"handle", conn.Handle, "room", room, "error", err)
	}
	s.log.Info(fmt.Sprintf("%s joined room %s", name, room), "handle", conn.Handle)

	go s.writePump(ws, sk)
	s.readPump(ws) // blocks until the connection closes

	s.registry.Remove(conn.Handle)
	if err := s.dispatcher.EnqueueFrom(r.Context(), conn, domain.KindLeave, nil); err != nil {
		s.log.Warn("Leave event not enqueued",
			"handle", conn.Handle, "room", room, "error", err)
	}
	sk.Close()
	s.log.Info(fmt.Sprintf("%s left room %s", name, room), "handle", conn.Handle)
}

// readPump discards inbound application data; the client is write-silent by
// protocol and reads serve only to detect liveness and close.
func (s *Server) readPump(ws *websocket.Conn) {
	defer ws.Close()
	ws.SetReadLimit(readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(s.pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.pongWait))
	})
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards delivered events to the socket and keeps the
// connection alive with periodic pings. Runs in its own goroutine per
// connection and exits when the sink is retired or a write fails.
func (s *Server) writePump(ws *websocket.Conn, sk *sink.SocketSink) {
	pingPeriod := (s.pongWait * 9) / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = ws.Close()
	}()

	for {
		select {
		case frame := <-sk.Frames():
			_ = ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-sk.Done():
			_ = ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			_ = ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
