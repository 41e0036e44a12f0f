package registration_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/geocoder89/scouthub/internal/domain/player"
	"github.com/geocoder89/scouthub/internal/notifications"
	"github.com/geocoder89/scouthub/internal/registration"
	"github.com/geocoder89/scouthub/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingStore struct {
	err error
}

func (f failingStore) Create(ctx context.Context, reg player.Registration) (string, error) {
	return "", f.err
}

func (f failingStore) List(ctx context.Context) ([]player.Registration, error) {
	return nil, f.err
}

type nilListStore struct{ failingStore }

func (nilListStore) List(ctx context.Context) ([]player.Registration, error) {
	return nil, nil
}

func TestRegister_DefaultsAndList(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, time.October, 19, 9, 15, 0, 0, time.UTC)

	svc := registration.NewService(memory.NewRegistrationsRepo(),
		registration.WithClock(func() time.Time { return fixed }),
		registration.WithLogger(quietLogger()),
	)

	id, err := svc.Register(ctx, player.RegisterRequest{FullName: "A", Position: "P", Phone: "0721234567"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	regs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, regs, 1)

	got := regs[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, player.StatusPending, got.Status)
	assert.Equal(t, "Free Agent", got.CurrentTeam)
	assert.Nil(t, got.PhotoURL)
	assert.Nil(t, got.VideoURL)
	assert.Nil(t, got.ExpiresAt)
	assert.True(t, got.CreatedAt.Equal(fixed))
}

func TestRegister_KeepsProvidedOptionals(t *testing.T) {
	ctx := context.Background()
	svc := registration.NewService(memory.NewRegistrationsRepo(), registration.WithLogger(quietLogger()))

	_, err := svc.Register(ctx, player.RegisterRequest{
		FullName:    "Thabo Mokoena",
		DOB:         strPtr("2008-04-12"),
		Position:    "Striker",
		Phone:       "0821112222",
		CurrentTeam: strPtr("Soweto Stars"),
		PhotoURL:    strPtr("https://cdn.example.com/p.jpg"),
		VideoURL:    strPtr("https://cdn.example.com/v.mp4"),
		ExpiresAt:   strPtr("2028-10-19T00:00:00.000Z"),
	})
	require.NoError(t, err)

	regs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, regs, 1)

	got := regs[0]
	assert.Equal(t, "Soweto Stars", got.CurrentTeam)
	require.NotNil(t, got.DOB)
	assert.Equal(t, "2008-04-12", *got.DOB)
	require.NotNil(t, got.VideoURL)
	assert.Equal(t, "https://cdn.example.com/v.mp4", *got.VideoURL)
	require.NotNil(t, got.ExpiresAt)
	assert.Equal(t, "2028-10-19T00:00:00.000Z", *got.ExpiresAt)
}

func TestRegister_MissingRequiredFields(t *testing.T) {
	ctx := context.Background()
	svc := registration.NewService(memory.NewRegistrationsRepo(), registration.WithLogger(quietLogger()))

	tests := []struct {
		name    string
		req     player.RegisterRequest
		missing []string
	}{
		{name: "empty_name", req: player.RegisterRequest{FullName: "", Position: "P", Phone: "0721234567"}, missing: []string{"fullName"}},
		{name: "no_position", req: player.RegisterRequest{FullName: "A", Phone: "0721234567"}, missing: []string{"position"}},
		{name: "no_phone", req: player.RegisterRequest{FullName: "A", Position: "P"}, missing: []string{"phone"}},
		{name: "nothing", req: player.RegisterRequest{}, missing: []string{"fullName", "position", "phone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := svc.Register(ctx, tt.req)
			require.Error(t, err)
			assert.Empty(t, id)
			assert.ErrorIs(t, err, player.ErrMissingRequiredFields)

			var verr *player.ValidationError
			require.ErrorAs(t, err, &verr)

			names := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				names = append(names, f.Field)
				assert.Equal(t, "required", f.Rule)
			}
			assert.Equal(t, tt.missing, names)
		})
	}

	regs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, regs, "failed registrations must not be persisted")
}

func TestRegister_NoImplicitDeduplication(t *testing.T) {
	ctx := context.Background()
	svc := registration.NewService(memory.NewRegistrationsRepo(), registration.WithLogger(quietLogger()))

	req := player.RegisterRequest{FullName: "A", Position: "P", Phone: "0721234567"}

	id1, err := svc.Register(ctx, req)
	require.NoError(t, err)
	id2, err := svc.Register(ctx, req)
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)

	regs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, regs, 2)
}

func TestRegister_UnvalidatedInputPassesThroughByDefault(t *testing.T) {
	ctx := context.Background()
	svc := registration.NewService(memory.NewRegistrationsRepo(), registration.WithLogger(quietLogger()))

	_, err := svc.Register(ctx, player.RegisterRequest{
		FullName: "A",
		Position: "P",
		Phone:    "not-a-phone",
		DOB:      strPtr("yesterday"),
	})
	require.NoError(t, err)

	regs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, "not-a-phone", regs[0].Phone)
	assert.Equal(t, "yesterday", *regs[0].DOB)
}

func TestRegister_StrictValidation(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.Local)

	svc := registration.NewService(memory.NewRegistrationsRepo(),
		registration.WithClock(func() time.Time { return fixed }),
		registration.WithLogger(quietLogger()),
		registration.WithStrictValidation(16),
	)

	tests := []struct {
		name      string
		req       player.RegisterRequest
		wantErr   bool
		wantField string
		wantRule  string
	}{
		{
			name: "valid",
			req:  player.RegisterRequest{FullName: "A", Position: "P", Phone: "0721234567", DOB: strPtr("2010-10-19")},
		},
		{
			name:      "bad_phone",
			req:       player.RegisterRequest{FullName: "A", Position: "P", Phone: "1721234567"},
			wantErr:   true,
			wantField: "phone",
			wantRule:  "natphone",
		},
		{
			name:      "bad_dob_format",
			req:       player.RegisterRequest{FullName: "A", Position: "P", Phone: "0721234567", DOB: strPtr("19/10/2010")},
			wantErr:   true,
			wantField: "dob",
			wantRule:  "datetime",
		},
		{
			name:      "too_young",
			req:       player.RegisterRequest{FullName: "A", Position: "P", Phone: "0721234567", DOB: strPtr("2010-10-20")},
			wantErr:   true,
			wantField: "dob",
			wantRule:  "min_age",
		},
		{
			name:      "bad_photo_url",
			req:       player.RegisterRequest{FullName: "A", Position: "P", Phone: "0721234567", PhotoURL: strPtr("photo.jpg")},
			wantErr:   true,
			wantField: "photoUrl",
			wantRule:  "url",
		},
		{
			name: "empty_optionals_are_absent",
			req:  player.RegisterRequest{FullName: "A", Position: "P", Phone: "0721234567", PhotoURL: strPtr(""), DOB: strPtr("")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, player.ErrInvalidFields)

			var verr *player.ValidationError
			require.ErrorAs(t, err, &verr)
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tt.wantField, verr.Fields[0].Field)
			assert.Equal(t, tt.wantRule, verr.Fields[0].Rule)
		})
	}
}

func TestRegister_StoreFailure(t *testing.T) {
	svc := registration.NewService(failingStore{err: errors.New("deadline exceeded talking to store")}, registration.WithLogger(quietLogger()))

	id, err := svc.Register(context.Background(), player.RegisterRequest{FullName: "A", Position: "P", Phone: "0721234567"})
	require.Error(t, err)
	assert.Empty(t, id)
	assert.Contains(t, err.Error(), "deadline exceeded talking to store")
	assert.NotErrorIs(t, err, player.ErrMissingRequiredFields)
}

func TestList_StoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := registration.NewService(failingStore{err: storeErr}, registration.WithLogger(quietLogger()))

	regs, err := svc.List(context.Background())
	require.ErrorIs(t, err, storeErr)
	assert.Nil(t, regs)
}

func TestList_EmptyStoreIsNeverNil(t *testing.T) {
	svc := registration.NewService(nilListStore{}, registration.WithLogger(quietLogger()))

	regs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, regs)
	assert.Empty(t, regs)
}

type recordingNotifier struct {
	got []notifications.PlayerRegisteredInput
	err error
}

func (r *recordingNotifier) PlayerRegistered(ctx context.Context, in notifications.PlayerRegisteredInput) error {
	r.got = append(r.got, in)
	return r.err
}

func TestRegister_NotifiesAfterStore(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	svc := registration.NewService(memory.NewRegistrationsRepo(), registration.WithNotifier(n))

	id, err := svc.Register(ctx, player.RegisterRequest{FullName: "Ada", Position: "GK", Phone: "0123456789"})
	require.NoError(t, err)

	require.Len(t, n.got, 1)
	assert.Equal(t, id, n.got[0].RegistrationID)
	assert.Equal(t, player.DefaultTeam, n.got[0].CurrentTeam)

	_, err = svc.Register(ctx, player.RegisterRequest{FullName: "Ada"})
	require.Error(t, err)
	assert.Len(t, n.got, 1, "rejected candidates are not announced")
}

func TestRegister_NotifierFailureDoesNotFailRegistration(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRegistrationsRepo()
	n := &recordingNotifier{err: errors.New("provider down")}
	svc := registration.NewService(store, registration.WithNotifier(n))

	id, err := svc.Register(ctx, player.RegisterRequest{FullName: "Ada", Position: "GK", Phone: "0123456789"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
