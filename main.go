package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"courtside-app/internal/config"
	"courtside-app/internal/events"
	"courtside-app/internal/ids"
	"courtside-app/internal/mirror"
	"courtside-app/internal/model"
	"courtside-app/internal/state"
	"courtside-app/internal/store"
	"courtside-app/internal/web"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/charmbracelet/log"
)

func main() {
	config.LoadEnv()
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("load config", "err", err)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           cfg.LogLevel,
		ReportTimestamp: true,
		Prefix:          "courtside",
	})

	appStore, err := openStore(cfg)
	if err != nil {
		logger.Fatal("open store", "err", err)
	}
	if c, ok := appStore.(io.Closer); ok {
		defer c.Close()
	}
	snaps := store.NewSnapshots(appStore, logger)

	emptyState := func() model.AppState { return model.NewAppState(cfg.InitialCourts, cfg.Fees) }
	initial, err := snaps.LoadState(emptyState())
	if err != nil {
		logger.Fatal("read saved session", "err", err)
	}
	st := state.New(initial,
		state.WithLogger(logger),
		state.WithEmptyState(emptyState),
	)
	st.Subscribe(state.PersistTo(snaps, logger))

	ctx := context.Background()
	var backend mirror.Backend
	if cfg.MirrorDSN != "" {
		pg, err := mirror.NewPostgresBackend(ctx, cfg.MirrorDSN, logger)
		if err != nil {
			logger.Fatal("connect shared queue backend", "err", err)
		}
		defer pg.Close()
		backend = pg
	} else {
		logger.Warn("MIRROR_DSN not set, shared queues live in this process only")
		backend = mirror.NewMemoryBackend()
	}

	sharer := mirror.NewSharer(backend, snaps, mirror.Options{
		BaseURL:  cfg.ShareBaseURL,
		Debounce: cfg.SyncDebounce,
		Logger:   logger,
		NewCode:  ids.ShareCode,
	})
	defer sharer.Close()
	st.Subscribe(sharer.Listener())

	verifyCtx, cancelVerify := context.WithTimeout(ctx, 10*time.Second)
	sharer.VerifyOnLoad(verifyCtx, st.Snapshot())
	cancelVerify()

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	defer producer.Close()
	if producer.Enabled() {
		unsubscribe := st.Subscribe(producer.Listener())
		defer unsubscribe()
	}

	templates, err := web.NewTemplates(nil)
	if err != nil {
		logger.Fatal("templates", "err", err)
	}
	server := web.NewServer(st, sharer, backend, templates, web.Options{
		Logger:         logger,
		AllowedOrigins: allowedOrigins(),
		EventsEnabled:  producer.Enabled(),
		DevMode:        strings.EqualFold(strings.TrimSpace(os.Getenv("APP")), "dev"),
		FlushSync:      cfg.Lambda,
	})
	handler := server.Routes()

	if cfg.Lambda {
		logger.Info("starting in lambda mode")
		adapter := httpadapter.New(handler)
		lambda.Start(adapter.ProxyWithContext)
		return
	}

	srv := &http.Server{
		Addr:        cfg.Addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}

// openStore picks the local snapshot store: Postgres, then SQLite, then
// memory.
func openStore(cfg config.Config) (store.Store, error) {
	switch {
	case cfg.PostgresDSN != "":
		return store.NewPostgresStore(cfg.PostgresDSN, store.PostgresOptions{
			MigrationsDir: cfg.PostgresMigrationsDir,
		})
	case cfg.DBPath != "":
		return store.NewSQLiteStore(cfg.DBPath, store.SQLiteOptions{
			MigrationsDir: cfg.DBMigrationsDir,
		})
	}
	return store.NewMemoryStore(), nil
}

func allowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
