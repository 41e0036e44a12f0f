package repo

import (
	"context"
	"fmt"

	"github.com/geocoder89/scouthub/internal/config"
	"github.com/geocoder89/scouthub/internal/db"
	"github.com/geocoder89/scouthub/internal/domain/player"
	"github.com/geocoder89/scouthub/internal/observability"
	"github.com/geocoder89/scouthub/internal/repo/memory"
	"github.com/geocoder89/scouthub/internal/repo/postgres"
	redisrepo "github.com/geocoder89/scouthub/internal/repo/redis"
)

// Registrations is the full surface every backend provides.
// The API uses Create/List, the retention worker List/Delete.
type Registrations interface {
	Create(ctx context.Context, reg player.Registration) (string, error)
	List(ctx context.Context) ([]player.Registration, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Open builds the backend selected by cfg.StoreDriver. The returned close func is never nil.
func Open(ctx context.Context, cfg config.Config, prom *observability.Prom) (Registrations, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMemory, "":
		return memory.NewRegistrationsRepo(), func() {}, nil

	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return postgres.NewRegistrationsRepo(pool, prom), pool.Close, nil

	case config.StoreRedis:
		rc := redisrepo.DefaultConfig()
		rc.URL = cfg.RedisURL

		r, err := redisrepo.New(rc, prom)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis: %w", err)
		}
		return r, func() { _ = r.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
