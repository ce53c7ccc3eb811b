package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/gridmatch-backend/internal/entity"
)

type eventPublisher interface {
	Publish(ctx context.Context, event *entity.Event) error
}

// publish announces a committed mutation. Delivery is best effort: the
// mutation already happened and pollers will observe it either way.
func publish(ctx context.Context, log *slog.Logger, events eventPublisher, event *entity.Event) {
	if events == nil {
		return
	}

	if err := events.Publish(ctx, event); err != nil {
		log.Warn("failed to publish event", "type", event.Type, "entity", event.EntityID, "error", err)
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}
