package http

import (
	"log"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/hireloop/hireloop-ats/internal/assessment"
)

// SessionEventsHandler streams session events over a websocket so the
// builder preview and the taking UI can observe transitions without
// polling. Slow readers drop events rather than block the session's
// transition path.
func SessionEventsHandler(hub *SessionHub, allowedOrigins []string) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, o := range allowedOrigins {
				if o == origin || o == "*" {
					return true
				}
			}
			return false
		},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := hub.Get(chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return // Upgrade already wrote the error
		}
		defer conn.Close()

		ch := make(chan assessment.Event, 64)
		var gone atomic.Bool
		s.OnEvent(func(ev assessment.Event) {
			if gone.Load() {
				return
			}
			select {
			case ch <- ev:
			default: // drop instead of blocking the session
			}
		})

		// reader goroutine: only to notice the peer closing
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		// initial snapshot so a late subscriber has current state
		if err := conn.WriteJSON(s.Snapshot()); err != nil {
			gone.Store(true)
			return
		}

		for {
			select {
			case <-done:
				gone.Store(true)
				return
			case ev := <-ch:
				if err := conn.WriteJSON(ev); err != nil {
					gone.Store(true)
					log.Printf("session event stream closed: %v", err)
					return
				}
			}
		}
	}
}
