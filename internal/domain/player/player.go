package player

import (
	"errors"
	"strings"
	"time"
)

type Status string

const (
	StatusPending Status = "pending"
)

const DefaultTeam = "Free Agent"

// Registration is a stored player registration document.
// Optional fields are pointers so an absent value serializes as null instead of being omitted.
type Registration struct {
	ID          string    `json:"id"`
	FullName    string    `json:"fullName"`
	DOB         *string   `json:"dob"`
	Position    string    `json:"position"`
	Phone       string    `json:"phone"`
	CurrentTeam string    `json:"currentTeam"`
	PhotoURL    *string   `json:"photoUrl"`
	VideoURL    *string   `json:"videoUrl"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   *string   `json:"expiresAt"`
}

var (
	ErrMissingRequiredFields = errors.New("missing required fields")
	ErrInvalidFields         = errors.New("invalid field values")
	ErrNotFound              = errors.New("registration not found")
)

// RegisterRequest is the candidate record sent by the registration form.
// validate tags only apply when server-side hardening is switched on.
type RegisterRequest struct {
	FullName    string  `json:"fullName"`
	DOB         *string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Position    string  `json:"position"`
	Phone       string  `json:"phone" validate:"natphone"`
	CurrentTeam *string `json:"currentTeam"`
	PhotoURL    *string `json:"photoUrl" validate:"omitempty,url"`
	VideoURL    *string `json:"videoUrl" validate:"omitempty,url"`
	ExpiresAt   *string `json:"expiresAt" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// MissingFields lists the required fields that are absent or empty, in JSON naming.
func (r RegisterRequest) MissingFields() []string {
	missing := make([]string, 0, 3)

	if r.FullName == "" {
		missing = append(missing, "fullName")
	}
	if r.Position == "" {
		missing = append(missing, "position")
	}
	if r.Phone == "" {
		missing = append(missing, "phone")
	}

	return missing
}

// Normalized returns a copy where empty optional strings are treated as not provided.
// DOB is kept exactly as sent.
func (r RegisterRequest) Normalized() RegisterRequest {
	r.CurrentTeam = nilIfEmpty(r.CurrentTeam)
	r.PhotoURL = nilIfEmpty(r.PhotoURL)
	r.VideoURL = nilIfEmpty(r.VideoURL)
	r.ExpiresAt = nilIfEmpty(r.ExpiresAt)

	return r
}

// A factory to build a pending Registration from the incoming candidate.
// The ID stays empty: the store assigns it on create.
func NewFromRequest(req RegisterRequest, now time.Time) Registration {
	req = req.Normalized()

	team := DefaultTeam
	if req.CurrentTeam != nil {
		team = *req.CurrentTeam
	}

	return Registration{
		FullName:    req.FullName,
		DOB:         req.DOB,
		Position:    req.Position,
		Phone:       req.Phone,
		CurrentTeam: team,
		PhotoURL:    req.PhotoURL,
		VideoURL:    req.VideoURL,
		Status:      StatusPending,
		CreatedAt:   now.UTC().Truncate(time.Millisecond),
		ExpiresAt:   req.ExpiresAt,
	}
}

func nilIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}

	v := *s
	return &v
}

// FieldViolation names one rejected field and the rule it broke.
type FieldViolation struct {
	Field string
	Rule  string
	Param string
}

// ValidationError wraps ErrMissingRequiredFields or ErrInvalidFields with the offending fields.
type ValidationError struct {
	Kind   error
	Fields []FieldViolation
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}

	if len(names) == 0 {
		return e.Kind.Error()
	}

	return e.Kind.Error() + ": " + strings.Join(names, ", ")
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}
