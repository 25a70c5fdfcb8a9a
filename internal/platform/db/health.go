package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type healthStatus struct {
	Service  string     `json:"service"`
	Database string     `json:"database"`
	Error    string     `json:"error,omitempty"`
	Pool     poolStatus `json:"pool"`
}

type poolStatus struct {
	OpenConns  int32 `json:"open_conns"`
	IdleConns  int32 `json:"idle_conns"`
	InUseConns int32 `json:"in_use_conns"`
	MaxConns   int32 `json:"max_conns"`
}

// HealthHandler pings the database and reports pool usage. Load balancers
// key off the status code, the body is for operators.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		stat := pool.Stat()
		status := healthStatus{
			Service:  "hms",
			Database: "up",
			Pool: poolStatus{
				OpenConns:  stat.TotalConns(),
				IdleConns:  stat.IdleConns(),
				InUseConns: stat.AcquiredConns(),
				MaxConns:   stat.MaxConns(),
			},
		}

		if err := pool.Ping(ctx); err != nil {
			status.Database = "down"
			status.Error = err.Error()
			return c.JSON(http.StatusServiceUnavailable, status)
		}
		return c.JSON(http.StatusOK, status)
	}
}
