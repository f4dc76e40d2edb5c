package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"courtside-app/internal/mirror"

	"github.com/go-chi/chi/v5"
)

const remoteTimeout = 10 * time.Second

func (s *Server) handleShareStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.shareView())
}

func (s *Server) handleShareCreate(w http.ResponseWriter, r *http.Request) {
	if s.sharer == nil {
		respondJSON(w, http.StatusServiceUnavailable, ErrorView{Error: "Sharing is not configured."})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), remoteTimeout)
	defer cancel()
	if _, err := s.sharer.Create(ctx, s.state.Snapshot()); err != nil {
		respondJSON(w, http.StatusBadGateway, ErrorView{Error: "Could not start sharing. Try again."})
		return
	}
	respondJSON(w, http.StatusCreated, s.shareView())
}

// handleShareStop always ends sharing locally; a failed remote delete is
// reported but leaves the flags cleared.
func (s *Server) handleShareStop(w http.ResponseWriter, r *http.Request) {
	if s.sharer == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), remoteTimeout)
	defer cancel()
	if err := s.sharer.Stop(ctx, ""); err != nil {
		respondJSON(w, http.StatusBadGateway, ErrorView{Error: "Sharing stopped here, but the shared copy could not be removed."})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleViewer serves the read-only shared queue: HTML for browsers, the
// validated document as JSON otherwise.
func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if s.mirror == nil {
		http.NotFound(w, r)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), remoteTimeout)
	defer cancel()
	doc, err := mirror.Load(ctx, s.mirror, code)
	if err != nil {
		if !errors.Is(err, mirror.ErrNotFound) {
			s.logger.Warn("load shared queue", "code", code, "err", err)
		}
		status := http.StatusNotFound
		if !errors.Is(err, mirror.ErrNotFound) && !errors.Is(err, mirror.ErrInvalidDocument) {
			status = http.StatusBadGateway
		}
		respondJSON(w, status, ErrorView{Error: errorMessage(mirror.ErrNotFound)})
		return
	}

	if wantsHTML(r) && s.templates != nil {
		if err := s.templates.Render(w, "viewer.html", viewerView(code, doc)); err != nil {
			s.logger.Error("render viewer", "err", err)
			http.Error(w, "render failed", http.StatusInternalServerError)
		}
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func wantsHTML(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func viewerView(code string, doc mirror.Document) ViewerView {
	view := ViewerView{Code: code}
	if !doc.LastUpdated.IsZero() {
		view.Document.LastUpdated = doc.LastUpdated.Format("15:04:05")
	}
	for _, c := range doc.Courts {
		court := ViewerCourt{ID: c.ID, Occupied: c.Occupied()}
		if court.Occupied {
			court.GameType = gameLabel(c.IsDoubles)
			for _, id := range c.Players {
				court.PlayerNames = append(court.PlayerNames, nameOrUnknown(doc, id))
			}
		}
		view.Document.Courts = append(view.Document.Courts, court)
	}
	for i, q := range doc.Queue {
		item := ViewerQueueItem{Position: i + 1, GameType: gameLabel(q.IsDoubles)}
		for _, id := range q.PlayerIDs {
			item.PlayerNames = append(item.PlayerNames, nameOrUnknown(doc, id))
		}
		view.Document.Queue = append(view.Document.Queue, item)
	}
	return view
}

func gameLabel(doubles bool) string {
	if doubles {
		return "Doubles"
	}
	return "Singles"
}

func nameOrUnknown(doc mirror.Document, id string) string {
	if name := doc.PlayerName(id); name != "" {
		return name
	}
	return "Unknown"
}
