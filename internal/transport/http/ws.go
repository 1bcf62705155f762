package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wishwell/api/internal/domain"
	"github.com/wishwell/api/internal/realtime"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// PublicReader loads the public projection for the socket's initial frame.
type PublicReader interface {
	GetPublic(ctx context.Context, slug string) (domain.PublicWishlist, error)
}

// HandleWishlistSocket returns the handler for GET /wishlists/ws/{slug}.
// Connecting subscribes the viewer; the current snapshot is sent immediately
// so a reconnecting client needs no replay. Frames are server-to-client
// only; anything the client sends is discarded.
func HandleWishlistSocket(svc PublicReader, hub *realtime.Hub, allowedOrigins []string, log *logrus.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		// Reject unknown slugs before upgrading.
		snapshot, err := svc.GetPublic(r.Context(), slug)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}
		defer conn.Close()

		feed, cancel := hub.Subscribe(slug)
		defer cancel()

		initial, err := json.Marshal(snapshot)
		if err != nil {
			log.WithError(err).WithField("slug", slug).Error("encode snapshot")
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, initial); err != nil {
			return
		}

		// Reader drains client frames; its only job is noticing the close.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					cancel()
					return
				}
			}
		}()

		ping := time.NewTicker(wsPingInterval)
		defer ping.Stop()

		for {
			select {
			case payload, ok := <-feed:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			case <-ping.C:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}

func originChecker(allowedOrigins []string) func(*http.Request) bool {
	set := newOriginSet(allowedOrigins)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return set.contains(origin)
	}
}
