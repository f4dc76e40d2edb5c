package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"courtside-app/internal/ids"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			if isQuietPath(r.URL.Path) {
				return
			}
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"took", time.Since(start),
				"req", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func isQuietPath(path string) bool {
	return path == "/healthz" || strings.HasSuffix(path, "/ws")
}

func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireShareCode answers 404 for anything that cannot be a share code,
// before any backend lookup.
func requireShareCode(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ids.ValidShareCode(chi.URLParam(r, "code")) {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// flushSharing pushes the debounced shared-queue write before a mutating
// request returns, so a frozen Lambda never holds the last edit.
func (s *Server) flushSharing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if s.sharer == nil || r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			return
		}
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), remoteTimeout)
		defer cancel()
		if err := s.sharer.Flush(ctx); err != nil {
			s.logger.Warn("flush shared queue", "err", err)
		}
	})
}
