package repository

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx.Conn the repositories need. pgxmock satisfies
// it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ConnSource hands out the storage connection and invalidates it on error so
// the next operation re-establishes a fresh one.
type ConnSource interface {
	Acquire(ctx context.Context) (Querier, error)
	Invalidate(ctx context.Context)
}

// SharedConn is a single shared connection, established lazily on first use
// and discarded on any error during use. There is no pool; the pipeline is
// single-threaded and one live connection is the whole resource model.
type SharedConn struct {
	dsn         string
	dialTimeout time.Duration
	logger      *slog.Logger

	mu   sync.Mutex
	conn *pgx.Conn
}

func NewSharedConn(dsn string, dialTimeout time.Duration, logger *slog.Logger) *SharedConn {
	if logger == nil {
		logger = slog.Default()
	}
	return &SharedConn{dsn: dsn, dialTimeout: dialTimeout, logger: logger}
}

// Acquire returns the live connection, dialing if none is established.
func (s *SharedConn) Acquire(ctx context.Context) (Querier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil && !s.conn.IsClosed() {
		return s.conn, nil
	}

	dialCtx := ctx
	if s.dialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, s.dialTimeout)
		defer cancel()
	}

	conn, err := pgx.Connect(dialCtx, s.dsn)
	if err != nil {
		s.logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	s.logger.Info("connected to database")
	s.conn = conn
	return conn, nil
}

// Invalidate closes and discards the connection after a failed operation.
func (s *SharedConn) Invalidate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return
	}
	if err := s.conn.Close(ctx); err != nil {
		s.logger.Warn("error closing invalidated connection", "error", err)
	}
	s.conn = nil
	s.logger.Info("database connection discarded; next operation reconnects")
}

// Close releases the connection at shutdown.
func (s *SharedConn) Close(ctx context.Context) {
	s.Invalidate(ctx)
}

// HealthCheck dials (or reuses) the connection and pings it.
func (s *SharedConn) HealthCheck(ctx context.Context) error {
	q, err := s.Acquire(ctx)
	if err != nil {
		return err
	}
	if conn, ok := q.(*pgx.Conn); ok {
		if err := conn.Ping(ctx); err != nil {
			s.Invalidate(ctx)
			return err
		}
	}
	return nil
}
