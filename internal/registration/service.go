package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/geocoder89/scouthub/internal/domain/player"
	"github.com/geocoder89/scouthub/internal/notifications"
	"github.com/geocoder89/scouthub/internal/validation"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Store is the storage-client handle the service persists through.
// Create assigns and returns the record id.
type Store interface {
	Create(ctx context.Context, reg player.Registration) (string, error)
	List(ctx context.Context) ([]player.Registration, error)
}

type Service struct {
	store  Store
	now    func() time.Time
	log    *slog.Logger
	strict *validator.Validate
	minAge int
	notify notifications.Notifier
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithStrictValidation re-checks phone, date and URL formats on the server.
// minAge > 0 also rejects dates of birth later than the age cutoff.
func WithStrictValidation(minAge int) Option {
	return func(s *Service) {
		s.strict = validation.New()
		s.minAge = minAge
	}
}

// WithNotifier announces each stored registration. Notification failures are logged, never returned.
func WithNotifier(n notifications.Notifier) Option {
	return func(s *Service) { s.notify = n }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		log:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

var tracer = otel.Tracer("github.com/geocoder89/scouthub/internal/registration")

// Register validates the candidate, applies defaults and stores it as a pending registration.
func (s *Service) Register(ctx context.Context, req player.RegisterRequest) (id string, err error) {
	ctx, span := tracer.Start(ctx, "registration.Register")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	missing := req.MissingFields()
	if len(missing) > 0 {
		fields := make([]player.FieldViolation, 0, len(missing))
		for _, name := range missing {
			fields = append(fields, player.FieldViolation{Field: name, Rule: "required"})
		}

		err = &player.ValidationError{Kind: player.ErrMissingRequiredFields, Fields: fields}
		return
	}

	now := s.now()

	if s.strict != nil {
		err = s.validateStrict(req.Normalized(), now)
		if err != nil {
			return
		}
	}

	reg := player.NewFromRequest(req, now)

	id, err = s.store.Create(ctx, reg)
	if err != nil {
		s.log.ErrorContext(ctx, "registration store failed", "op", "create", "err", err)
		err = fmt.Errorf("save registration: %w", err)
		return
	}

	span.SetAttributes(attribute.String("registration.id", id))
	s.log.InfoContext(ctx, "player registered", "registration_id", id, "position", reg.Position)

	if s.notify != nil {
		nerr := s.notify.PlayerRegistered(ctx, notifications.PlayerRegisteredInput{
			RegistrationID: id,
			FullName:       reg.FullName,
			Position:       reg.Position,
			CurrentTeam:    reg.CurrentTeam,
		})
		if nerr != nil {
			s.log.WarnContext(ctx, "registration notification failed", "registration_id", id, "err", nerr)
		}
	}

	return
}

// List returns every stored registration. The result is never nil.
func (s *Service) List(ctx context.Context) ([]player.Registration, error) {
	ctx, span := tracer.Start(ctx, "registration.List")
	defer span.End()

	regs, err := s.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.ErrorContext(ctx, "registration store failed", "op", "list", "err", err)
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	if regs == nil {
		regs = make([]player.Registration, 0)
	}

	span.SetAttributes(attribute.Int("registration.count", len(regs)))

	return regs, nil
}

func (s *Service) validateStrict(req player.RegisterRequest, now time.Time) error {
	fields := make([]player.FieldViolation, 0)

	err := s.strict.Struct(req)
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}

		for _, fe := range verrs {
			fields = append(fields, player.FieldViolation{
				Field: fe.Field(),
				Rule:  fe.Tag(),
				Param: fe.Param(),
			})
		}
	}

	if s.minAge > 0 && req.DOB != nil {
		cutoff := validation.MaxDateForAgeAt(now.Local(), s.minAge)

		// YYYY-MM-DD compares chronologically as a string
		if len(*req.DOB) == len(validation.DateLayout) && *req.DOB > cutoff {
			fields = append(fields, player.FieldViolation{
				Field: "dob",
				Rule:  "min_age",
				Param: strconv.Itoa(s.minAge),
			})
		}
	}

	if len(fields) > 0 {
		return &player.ValidationError{Kind: player.ErrInvalidFields, Fields: fields}
	}

	return nil
}
