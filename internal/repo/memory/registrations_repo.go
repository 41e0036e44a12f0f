package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/scouthub/internal/domain/player"
	"github.com/google/uuid"
)

type RegistrationsRepo struct {
	mu    sync.RWMutex
	items map[string]player.Registration
}

func NewRegistrationsRepo() *RegistrationsRepo {
	return &RegistrationsRepo{
		items: make(map[string]player.Registration),
	}
}

func (r *RegistrationsRepo) Create(ctx context.Context, reg player.Registration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reg.ID = uuid.NewString()

	r.mu.Lock()
	r.items[reg.ID] = reg
	r.mu.Unlock()

	return reg.ID, nil
}

func (r *RegistrationsRepo) List(ctx context.Context) ([]player.Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Registration, 0, len(r.items))
	for _, reg := range r.items {
		out = append(out, reg)
	}

	return out, nil
}

func (r *RegistrationsRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return player.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func (r *RegistrationsRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}
