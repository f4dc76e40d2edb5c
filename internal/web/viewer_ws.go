package web

import (
	"context"
	"net/http"
	"time"

	"courtside-app/internal/mirror"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

const (
	msgDocument = "document"
	msgDeleted  = "deleted"
)

// handleViewerSocket pushes the shared document to a viewer on every remote
// change and closes once the document is deleted.
func (s *Server) handleViewerSocket(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if s.mirror == nil {
		http.NotFound(w, r)
		return
	}
	loadCtx, cancelLoad := context.WithTimeout(r.Context(), remoteTimeout)
	doc, err := mirror.Load(loadCtx, s.mirror, code)
	cancelLoad()
	if err != nil {
		http.NotFound(w, r)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	changes, err := s.mirror.Watch(ctx, code)
	if err != nil {
		s.logger.Warn("watch for viewer", "code", code, "err", err)
		return
	}

	// Viewers never send anything; reading only keeps pongs flowing and
	// notices the client going away.
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeViewerMessage(conn, viewerMessage{Type: msgDocument, Document: &doc}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case c, ok := <-changes:
			if !ok {
				return
			}
			if c.Deleted {
				_ = writeViewerMessage(conn, viewerMessage{Type: msgDeleted})
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shared queue deleted"),
					time.Now().Add(writeWait))
				return
			}
			next, err := mirror.DecodeDocument(c.Data)
			if err != nil {
				s.logger.Warn("skip invalid shared document", "code", code, "err", err)
				continue
			}
			if err := writeViewerMessage(conn, viewerMessage{Type: msgDocument, Document: &next}); err != nil {
				return
			}
		}
	}
}

func writeViewerMessage(conn *websocket.Conn, msg viewerMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
