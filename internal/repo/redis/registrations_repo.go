package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/geocoder89/scouthub/internal/domain/player"
	"github.com/geocoder89/scouthub/internal/observability"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RegistrationsRepo stores each registration as a JSON document plus an id index set.
type RegistrationsRepo struct {
	client *redis.Client
	prom   *observability.Prom
}

// New connects to Redis and verifies the connection
func New(cfg Config, prom *observability.Prom) (*RegistrationsRepo, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, prom), nil
}

// NewWithClient wraps an existing client (used by tests)
func NewWithClient(client *redis.Client, prom *observability.Prom) *RegistrationsRepo {
	return &RegistrationsRepo{
		client: client,
		prom:   prom,
	}
}

func (r *RegistrationsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveStore(op, fn)
	}
	return fn()
}

func (r *RegistrationsRepo) Create(ctx context.Context, reg player.Registration) (string, error) {
	reg.ID = uuid.NewString()

	data, err := json.Marshal(reg)
	if err != nil {
		return "", err
	}

	err = r.observe("registrations.create", func() error {
		// document and index land together
		_, e := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, registrationKey(reg.ID), data, 0)
			pipe.SAdd(ctx, registrationsIndexKey(), reg.ID)
			return nil
		})
		return e
	})
	if err != nil {
		return "", err
	}

	return reg.ID, nil
}

func (r *RegistrationsRepo) List(ctx context.Context) ([]player.Registration, error) {
	var ids []string

	err := r.observe("registrations.list.index", func() error {
		var e error
		ids, e = r.client.SMembers(ctx, registrationsIndexKey()).Result()
		return e
	})
	if err != nil {
		return nil, err
	}

	out := make([]player.Registration, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, registrationKey(id))
	}

	var values []any

	err = r.observe("registrations.list.fetch", func() error {
		var e error
		values, e = r.client.MGet(ctx, keys...).Result()
		return e
	})
	if err != nil {
		return nil, err
	}

	for i, v := range values {
		// index entry without a document: removed between SMEMBERS and MGET
		if v == nil {
			continue
		}

		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("registration %s: unexpected value type %T", ids[i], v)
		}

		var reg player.Registration
		if err := json.Unmarshal([]byte(s), &reg); err != nil {
			return nil, fmt.Errorf("registration %s: %w", ids[i], err)
		}

		out = append(out, reg)
	}

	return out, nil
}

func (r *RegistrationsRepo) Delete(ctx context.Context, id string) error {
	var removed int64

	err := r.observe("registrations.delete", func() error {
		var del *redis.IntCmd

		_, e := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			del = pipe.Del(ctx, registrationKey(id))
			pipe.SRem(ctx, registrationsIndexKey(), id)
			return nil
		})
		if e != nil {
			return e
		}

		removed = del.Val()
		return nil
	})
	if err != nil {
		return err
	}

	if removed == 0 {
		return player.ErrNotFound
	}

	return nil
}

func (r *RegistrationsRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RegistrationsRepo) Close() error {
	return r.client.Close()
}
