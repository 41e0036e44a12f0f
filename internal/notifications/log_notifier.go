package notifications

import (
	"context"
	"log/slog"
)

type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) PlayerRegistered(ctx context.Context, in PlayerRegisteredInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.player_registered",
		"registration_id", in.RegistrationID,
		"full_name", in.FullName,
		"position", in.Position,
		"current_team", in.CurrentTeam,
	)
	return nil
}
