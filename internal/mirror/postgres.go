package mirror

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	notifyChannel     = "shared_queues"
	maxListenBackoff  = 30 * time.Second
	fetchAfterTimeout = 10 * time.Second
)

// PostgresBackend stores shared documents in the shared_queues table and
// publishes changes with NOTIFY so watchers on other nodes see them. One
// connection outside the pool stays in LISTEN mode and feeds every watcher.
type PostgresBackend struct {
	pool       *pgxpool.Pool
	connConfig *pgx.ConnConfig
	logger     *log.Logger
	hub        *hub
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewPostgresBackend(ctx context.Context, dsn string, logger *log.Logger) (*PostgresBackend, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("mirror dsn is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mirror dsn: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect mirror: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping mirror: %w", err)
	}
	b := &PostgresBackend{
		pool:       pool,
		connConfig: config.ConnConfig,
		logger:     logger.WithPrefix("mirror-pg"),
		hub:        newHub(),
		done:       make(chan struct{}),
	}
	if err := b.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init mirror schema: %w", err)
	}
	conn, err := b.openListener(ctx)
	if err != nil {
		pool.Close()
		return nil, err
	}
	listenCtx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	go b.listen(listenCtx, conn)
	return b, nil
}

func (b *PostgresBackend) initSchema(ctx context.Context) error {
	_, err := b.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS shared_queues (
			code TEXT PRIMARY KEY,
			document JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	return err
}

func (b *PostgresBackend) Get(ctx context.Context, code string) ([]byte, error) {
	var doc []byte
	err := b.pool.QueryRow(ctx, `SELECT document::text FROM shared_queues WHERE code = $1`, code).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get shared queue %s: %w", code, err)
	}
	return doc, nil
}

func (b *PostgresBackend) Set(ctx context.Context, code string, doc []byte) error {
	err := pgx.BeginFunc(ctx, b.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO shared_queues (code, document, updated_at)
			VALUES ($1, $2::jsonb, now())
			ON CONFLICT (code) DO UPDATE SET document = EXCLUDED.document, updated_at = now()
		`, code, string(doc)); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, "set:"+code)
		return err
	})
	if err != nil {
		return fmt.Errorf("set shared queue %s: %w", code, err)
	}
	return nil
}

func (b *PostgresBackend) Delete(ctx context.Context, code string) error {
	err := pgx.BeginFunc(ctx, b.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM shared_queues WHERE code = $1`, code)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, "delete:"+code)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete shared queue %s: %w", code, err)
	}
	return nil
}

// Watch registers with the shared listener; it takes no connection of its own.
func (b *PostgresBackend) Watch(ctx context.Context, code string) (<-chan Change, error) {
	return b.hub.subscribe(ctx, code), nil
}

func (b *PostgresBackend) openListener(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.ConnectConfig(ctx, b.connConfig.Copy())
	if err != nil {
		return nil, fmt.Errorf("connect listener: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		_ = conn.Close(context.Background())
		return nil, fmt.Errorf("listen: %w", err)
	}
	return conn, nil
}

// listen owns the LISTEN connection until ctx is cancelled, reconnecting with
// backoff. After a reconnect every watched code is re-read, since
// notifications sent while disconnected are lost.
func (b *PostgresBackend) listen(ctx context.Context, conn *pgx.Conn) {
	defer close(b.done)
	backoff := time.Second
	for {
		if conn == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			c, err := b.openListener(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				b.logger.Warn("reconnect listener", "err", err, "retry_in", backoff)
				backoff = min(backoff*2, maxListenBackoff)
				continue
			}
			conn = c
			backoff = time.Second
			b.resync(ctx)
		}

		err := b.receive(ctx, conn)
		_ = conn.Close(context.Background())
		conn = nil
		if ctx.Err() != nil {
			return
		}
		b.logger.Warn("listener connection lost", "err", err)
	}
}

func (b *PostgresBackend) receive(ctx context.Context, conn *pgx.Conn) error {
	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		b.dispatch(ctx, n.Payload)
	}
}

// dispatch turns one "set:<code>" or "delete:<code>" payload into a change
// for the watchers of that code. The document is fetched once per
// notification however many watchers there are.
func (b *PostgresBackend) dispatch(ctx context.Context, payload string) {
	op, code, ok := strings.Cut(payload, ":")
	if !ok || !b.hub.watching(code) {
		return
	}
	switch op {
	case "delete":
		b.hub.publish(code, Change{Deleted: true})
	case "set":
		b.publishCurrent(ctx, code)
	}
}

func (b *PostgresBackend) publishCurrent(ctx context.Context, code string) {
	fetchCtx, cancel := context.WithTimeout(ctx, fetchAfterTimeout)
	defer cancel()
	doc, err := b.Get(fetchCtx, code)
	switch {
	case errors.Is(err, ErrNotFound):
		b.hub.publish(code, Change{Deleted: true})
	case err != nil:
		b.logger.Warn("fetch after notify", "code", code, "err", err)
	default:
		b.hub.publish(code, Change{Data: doc})
	}
}

func (b *PostgresBackend) resync(ctx context.Context) {
	for _, code := range b.hub.codes() {
		b.publishCurrent(ctx, code)
	}
}

func (b *PostgresBackend) Close() {
	if b.cancel != nil {
		b.cancel()
		<-b.done
	}
	b.pool.Close()
}
