package web

import (
	"net/http"
	"time"

	"courtside-app/internal/mirror"
	"courtside-app/internal/state"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
)

type Server struct {
	state     *state.Store
	sharer    *mirror.Sharer
	mirror    mirror.Backend
	templates *Templates
	logger    *log.Logger
	upgrader  websocket.Upgrader
	opts      Options
}

// Options configures the server. FlushSync writes pending shared-queue syncs
// before a mutating request returns; set it when the process may be frozen
// between requests.
type Options struct {
	Logger         *log.Logger
	AllowedOrigins []string
	EventsEnabled  bool
	DevMode        bool
	FlushSync      bool
	Now            func() time.Time
}

func NewServer(st *state.Store, sharer *mirror.Sharer, backend mirror.Backend, templates *Templates, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{
		state:     st,
		sharer:    sharer,
		mirror:    backend,
		templates: templates,
		logger:    opts.Logger.WithPrefix("web"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		opts: opts,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/api", func(r chi.Router) {
		r.Use(limitBody(1 << 20))
		if s.opts.FlushSync {
			r.Use(s.flushSharing)
		}

		r.Get("/state", s.handleState)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/status", s.handleStatus)
		r.Post("/reset", s.handleReset)

		r.Post("/players", s.handlePlayerAdd)
		r.Patch("/players/{playerID}", s.handlePlayerUpdate)
		r.Post("/players/{playerID}/payments", s.handlePayment)
		r.Post("/players/done", s.handlePlayersDone)
		r.Post("/players/active", s.handlePlayersActive)

		r.Post("/queue", s.handleQueueAdd)
		r.Delete("/queue/{queueID}", s.handleQueueRemove)

		r.Post("/courts", s.handleCourtAdd)
		r.Delete("/courts/{courtID}", s.handleCourtRemove)
		r.Post("/courts/{courtID}/assign", s.handleCourtAssign)
		r.Post("/courts/{courtID}/complete", s.handleCourtComplete)

		r.Get("/fees/config", s.handleFeeConfig)
		r.Put("/fees/config", s.handleFeeConfigUpdate)
		r.Get("/fees/report", s.handleFeeReport)
		r.Get("/fees/report.csv", s.handleFeeReportCSV)
		r.Get("/history", s.handleHistory)
		r.Get("/standings", s.handleStandings)

		r.Get("/share", s.handleShareStatus)
		r.Post("/share", s.handleShareCreate)
		r.Delete("/share", s.handleShareStop)

		r.Post("/dev/seed", s.handleDevSeed)
	})

	r.Route("/shared-queue/{code}", func(r chi.Router) {
		r.Use(requireShareCode)
		r.Get("/", s.handleViewer)
		r.Get("/ws", s.handleViewerSocket)
	})

	return r
}
