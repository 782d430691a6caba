// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/logging"
)

// Table names
const (
	TableMeetings = "meetings"
	TableGuests   = "guests"
	TableAgents   = "agents"
)

// tracerName is the instrumentation name for the store package.
const tracerName = "github.com/meetbridge/meeting-service/internal/infrastructure/store"

// DB is the subset of pgx used by the repositories. It matches *pgxpool.Pool,
// pgx.Tx and *pgx.Conn and allows for fakes in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Open connects a pool to databaseURL, verifies the connection and applies the schema.
func Open(ctx context.Context, databaseURL string, initTimeout time.Duration) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := RunMigration(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migration: %w", err)
	}
	return pool, nil
}

// PoolHealthChecker reports pool reachability for the readiness probe.
type PoolHealthChecker struct {
	pool *pgxpool.Pool
}

// NewPoolHealthChecker creates a new PoolHealthChecker.
func NewPoolHealthChecker(pool *pgxpool.Pool) *PoolHealthChecker {
	return &PoolHealthChecker{pool: pool}
}

// Ping checks that a connection can be acquired and used.
func (h *PoolHealthChecker) Ping(ctx context.Context) error {
	if h.pool == nil {
		return domain.ErrServiceUnavailable
	}
	if err := h.pool.Ping(ctx); err != nil {
		return domain.NewUnavailableError("database is not reachable", err)
	}
	return nil
}

// baseRepository carries the span and error handling shared by the Postgres repositories.
type baseRepository struct {
	db         DB
	table      string
	entityName string // Used in error messages (e.g., "meeting", "guest")
}

func newBaseRepository(db DB, table, entityName string) baseRepository {
	return baseRepository{db: db, table: table, entityName: entityName}
}

// IsReady checks if the repository is ready for use
func (r *baseRepository) IsReady() bool {
	return r.db != nil
}

func (r *baseRepository) startSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", r.table),
	}, attrs...)
	return otel.Tracer(tracerName).Start(ctx, "postgres."+r.table+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// unavailable returns the error for a repository without a database handle.
func (r *baseRepository) unavailable(span trace.Span) error {
	err := domain.NewUnavailableError(fmt.Sprintf("%s repository is not available", r.entityName))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// internal logs err and wraps it as an internal error for the given operation.
func (r *baseRepository) internal(ctx context.Context, span trace.Span, operation string, err error, args ...any) error {
	slog.ErrorContext(ctx, fmt.Sprintf("error running %s on %s", operation, r.entityName),
		append([]any{logging.ErrKey, err}, args...)...)
	err = domain.NewInternalError(fmt.Sprintf("failed to %s %s in store", operation, r.entityName), err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// notFound marks the span and returns notFoundErr.
func (r *baseRepository) notFound(span trace.Span, notFoundErr error) error {
	span.RecordError(notFoundErr)
	span.SetStatus(codes.Error, "not found")
	return notFoundErr
}
