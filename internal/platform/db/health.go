package db

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const healthPingTimeout = 5 * time.Second

const (
	StatusHealthy    = "healthy"
	StatusUnhealthy  = "unhealthy"
	StatusUnmigrated = "unmigrated"
)

// Pinger is the part of *pgxpool.Pool the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PoolStats is a snapshot of the connection pool.
type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
	AcquireCount  int64 `json:"acquire_count"`
}

// Health is the body served at /health/db.
type Health struct {
	Status        string     `json:"status"`
	Error         string     `json:"error,omitempty"`
	SchemaVersion int        `json:"schema_version"`
	Pool          *PoolStats `json:"pool,omitempty"`
}

// Check pings the database and reads the newest migration applied to
// schema. A reachable database the migrator never ran against reports
// StatusUnmigrated, since every query the API makes would fail.
func Check(ctx context.Context, pinger Pinger, schema string) Health {
	if err := pinger.Ping(ctx); err != nil {
		return Health{Status: StatusUnhealthy, Error: err.Error()}
	}

	var version int
	err := pinger.QueryRow(ctx,
		fmt.Sprintf(`SELECT COALESCE(MAX(version), 0) FROM %s.schema_migrations`, schema),
	).Scan(&version)
	if err != nil {
		return Health{Status: StatusUnmigrated, Error: err.Error()}
	}
	if version == 0 {
		return Health{Status: StatusUnmigrated}
	}
	return Health{Status: StatusHealthy, SchemaVersion: version}
}

// HealthHandler serves Check for pool with its connection statistics.
func HealthHandler(pool *pgxpool.Pool, schema string) echo.HandlerFunc {
	return healthHandler(pool, schema, func() *PoolStats {
		stat := pool.Stat()
		return &PoolStats{
			TotalConns:    stat.TotalConns(),
			IdleConns:     stat.IdleConns(),
			AcquiredConns: stat.AcquiredConns(),
			MaxConns:      stat.MaxConns(),
			AcquireCount:  stat.AcquireCount(),
		}
	})
}

func healthHandler(pinger Pinger, schema string, stats func() *PoolStats) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
		defer cancel()

		h := Check(ctx, pinger, schema)
		if stats != nil {
			h.Pool = stats()
		}

		code := http.StatusOK
		if h.Status != StatusHealthy {
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, h)
	}
}
