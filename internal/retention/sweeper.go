package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/geocoder89/scouthub/internal/domain/player"
	"github.com/geocoder89/scouthub/internal/observability"
	"github.com/geocoder89/scouthub/internal/validation"
)

// Store is what the sweeper needs from a registration backend.
type Store interface {
	List(ctx context.Context) ([]player.Registration, error)
	Delete(ctx context.Context, id string) error
}

type Config struct {
	Interval  time.Duration
	OpTimeout time.Duration
}

type Sweeper struct {
	cfg     Config
	store   Store
	now     func() time.Time
	log     *slog.Logger
	prom    *observability.Prom
	metrics *observability.SweepMetrics
	scrape  http.Handler

	readyMu sync.RWMutex
	ready   bool
}

type Option func(*Sweeper)

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Sweeper) { s.log = log }
}

func WithProm(p *observability.Prom) Option {
	return func(s *Sweeper) { s.prom = p }
}

// WithMetricsHandler mounts h at /metrics on the health router.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Sweeper) { s.scrape = h }
}

func New(cfg Config, store Store, opts ...Option) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 30 * time.Second
	}

	s := &Sweeper{
		cfg:     cfg,
		store:   store,
		now:     time.Now,
		log:     slog.Default(),
		metrics: observability.NewSweepMetrics(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type Result struct {
	Scanned int
	Deleted int
	Skipped int // expiresAt present but unparsable
}

// ParseExpiry reads an expiresAt value. RFC 3339 timestamps are used as-is;
// a bare YYYY-MM-DD expires at the start of that day in UTC.
func ParseExpiry(raw string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return t, true
	}

	t, err = time.Parse(validation.DateLayout, raw)
	if err == nil {
		return t, true
	}

	return time.Time{}, false
}

// SweepOnce deletes every registration whose expiry lies in the past.
func (s *Sweeper) SweepOnce(ctx context.Context) (res Result, err error) {
	start := time.Now()
	s.metrics.IncRuns()

	defer func() {
		d := time.Since(start)
		s.metrics.ObserveDuration(d)
		s.metrics.AddDeleted(res.Deleted)
		s.metrics.AddSkipped(res.Skipped)

		result := "ok"
		if err != nil {
			result = "error"
			s.metrics.IncFailed()
		}

		if s.prom != nil {
			s.prom.SweepDuration.WithLabelValues(result).Observe(d.Seconds())
			s.prom.ExpiredDeleted.Add(float64(res.Deleted))
		}
	}()

	opCtx, cancel := context.WithTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()

	regs, err := s.store.List(opCtx)
	if err != nil {
		err = fmt.Errorf("list registrations: %w", err)
		return
	}

	now := s.now()
	var errs []error

	for _, reg := range regs {
		res.Scanned++

		if reg.ExpiresAt == nil {
			continue
		}

		expiry, ok := ParseExpiry(*reg.ExpiresAt)
		if !ok {
			res.Skipped++
			s.log.WarnContext(ctx, "unparsable expiresAt", "registration_id", reg.ID, "expires_at", *reg.ExpiresAt)
			continue
		}

		if !expiry.Before(now) {
			continue
		}

		e := s.store.Delete(opCtx, reg.ID)
		if e != nil && !errors.Is(e, player.ErrNotFound) {
			errs = append(errs, fmt.Errorf("delete %s: %w", reg.ID, e))
			continue
		}

		if e == nil {
			res.Deleted++
			s.log.InfoContext(ctx, "expired registration removed", "registration_id", reg.ID)
		}
	}

	err = errors.Join(errs...)
	return
}

// Run sweeps on every interval until ctx is canceled, backing off after failures.
func (s *Sweeper) Run(ctx context.Context) error {
	s.setReady(true)
	defer s.setReady(false)

	failures := 0

	for {
		res, err := s.SweepOnce(ctx)

		wait := s.cfg.Interval

		if err != nil {
			wait = ExponentialBackoff(failures)
			failures++
			s.log.ErrorContext(ctx, "retention sweep failed", "err", err, "retry_in", wait.String())
		} else {
			failures = 0
			s.log.InfoContext(ctx, "retention sweep done", "scanned", res.Scanned, "deleted", res.Deleted, "skipped", res.Skipped)
		}

		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("retention worker received shutdown signal")
			return nil
		case <-timer.C:
		}
	}
}

func (s *Sweeper) setReady(v bool) {
	s.readyMu.Lock()
	s.ready = v
	s.readyMu.Unlock()
}

func (s *Sweeper) Ready() bool {
	s.readyMu.RLock()
	defer s.readyMu.RUnlock()

	return s.ready
}

func (s *Sweeper) Metrics() observability.SweepMetricsSnapshot {
	return s.metrics.Snapshot()
}
