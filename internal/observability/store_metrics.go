package observability

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

// ObserveStore times one logical store operation (op is "<collection>.<verb>")
// and counts failures by error class.
func (p *Prom) ObserveStore(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "ok"
	if err != nil {
		status = "error"
		p.StoreErrorsTotal.WithLabelValues(op, classifyStoreErr(err)).Inc()
	}

	p.StoreOpDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())

	return err
}

func classifyStoreErr(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return "unique_violation"
		case "23502":
			return "not_null_violation"
		case "42P01":
			return "undefined_table"
		case "57014":
			return "query_canceled"
		case "53300":
			return "too_many_connections"
		default:
			return "pg_" + pgErr.Code
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return "connection"
	}

	switch {
	case errors.Is(err, redis.Nil):
		return "redis_nil"
	case errors.Is(err, redis.ErrClosed):
		return "redis_closed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "connection"), strings.Contains(msg, "refused"):
		return "connection"
	default:
		return "unknown"
	}
}
