package notifications

import "context"

type PlayerRegisteredInput struct {
	RegistrationID string
	FullName       string
	Position       string
	CurrentTeam    string
}

// Notifier tells scouts that a new registration is waiting for review.
type Notifier interface {
	PlayerRegistered(ctx context.Context, input PlayerRegisteredInput) error
}
