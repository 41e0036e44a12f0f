package postgres

import (
	"context"

	"github.com/geocoder89/scouthub/internal/domain/player"
	"github.com/geocoder89/scouthub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RegistrationsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRegistrationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RegistrationsRepo {
	return &RegistrationsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *RegistrationsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveStore(op, fn)
	}
	return fn()
}

// Create inserts the registration and returns the id generated by the database.
func (repo *RegistrationsRepo) Create(ctx context.Context, reg player.Registration) (id string, err error) {
	err = repo.observe("registrations.create", func() error {
		return repo.pool.QueryRow(ctx, `
		INSERT INTO player_registrations
			(full_name, dob, position, phone, current_team, photo_url, video_url, status, created_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id::text
	`,
			reg.FullName, reg.DOB, reg.Position, reg.Phone, reg.CurrentTeam,
			reg.PhotoURL, reg.VideoURL, string(reg.Status), reg.CreatedAt, reg.ExpiresAt,
		).Scan(&id)
	})

	return
}

// List returns every registration; no ordering is promised to callers.
func (repo *RegistrationsRepo) List(ctx context.Context) (regs []player.Registration, err error) {
	var rows pgx.Rows

	err = repo.observe("registrations.list", func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx, `
		SELECT id::text, full_name, dob, position, phone, current_team, photo_url, video_url, status, created_at, expires_at
		FROM player_registrations
	`)
		return qerr
	})

	if err != nil {
		return
	}

	defer rows.Close()

	regs = make([]player.Registration, 0)

	for rows.Next() {
		var r player.Registration
		var status string

		e := rows.Scan(&r.ID, &r.FullName, &r.DOB, &r.Position, &r.Phone, &r.CurrentTeam,
			&r.PhotoURL, &r.VideoURL, &status, &r.CreatedAt, &r.ExpiresAt)

		if e != nil {
			err = e
			return
		}

		r.Status = player.Status(status)
		r.CreatedAt = r.CreatedAt.UTC()
		regs = append(regs, r)
	}

	e := rows.Err()

	if e != nil {
		if repo.prom != nil {
			repo.prom.StoreErrorsTotal.WithLabelValues("registrations.list", "rows_err").Inc()
		}
		err = e
		regs = nil
		return
	}

	return
}

// Delete removes a single registration.
func (repo *RegistrationsRepo) Delete(ctx context.Context, id string) (err error) {
	var tag pgconn.CommandTag

	err = repo.observe("registrations.delete", func() error {
		var e error
		tag, e = repo.pool.Exec(ctx, `DELETE FROM player_registrations WHERE id::text = $1`, id)

		return e
	})

	if err != nil {
		return
	}

	if tag.RowsAffected() == 0 {
		err = player.ErrNotFound
	}

	return
}

func (repo *RegistrationsRepo) Ping(ctx context.Context) error {
	return repo.pool.Ping(ctx)
}
