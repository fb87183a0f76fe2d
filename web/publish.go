package web

import (
	"encoding/json"
	"net/http"

	"roomhub/domain"
)

// handleBroadcast publishes a plain text message to the caller's room.
func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var payload domain.Broadcast
	s.publish(w, r, domain.KindBroadcast, &payload)
}

func (s *Server) handleBulletComment(w http.ResponseWriter, r *http.Request) {
	var payload domain.BulletComment
	s.publish(w, r, domain.KindBulletComment, &payload)
}

func (s *Server) handlePin(w http.ResponseWriter, r *http.Request) {
	var payload domain.Pin
	s.publish(w, r, domain.KindPin, &payload)
}

func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	var payload domain.Timer
	s.publish(w, r, domain.KindTimer, &payload)
}

func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	var payload domain.Canvas
	s.publish(w, r, domain.KindCanvas, &payload)
}

// publish decodes and validates the typed body, then enqueues it on behalf
// of the connection resolved by the credential middleware. Sender identity
// always comes from the resolved connection, never from body fields.
// Success is 201 with an empty body, matching the socket-originated path:
// the caller sees its own event only through its room subscription.
func (s *Server) publish(w http.ResponseWriter, r *http.Request, kind domain.Kind, payload any) {
	conn, ok := connFromContext(r.Context())
	if !ok {
		// requireConnection guarantees the connection; reaching this
		// branch means the route was mounted without the middleware.
		http.Error(w, "no connection in context", http.StatusInternalServerError)
		return
	}

	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := domain.ValidatePayload(payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := s.dispatcher.Enqueue(r.Context(), conn.Handle, kind, payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
