package events

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Relay moves pending outbox events to a Publisher.
type Relay struct {
	repo      OutboxRepository
	publisher Publisher
	batch     int
}

func NewRelay(repo OutboxRepository, publisher Publisher, batch int) *Relay {
	if batch <= 0 {
		batch = 100
	}
	return &Relay{repo: repo, publisher: publisher, batch: batch}
}

// RunOnce publishes one batch in creation order and returns how many were delivered.
// A failed event stays pending with its attempt count bumped.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	pending, err := r.repo.GetPending(ctx, r.batch)
	if err != nil {
		return 0, errors.Wrap(err, "query pending outbox events")
	}
	published := 0
	for _, event := range pending {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}
		if err := r.publisher.Publish(ctx, event); err != nil {
			zap.L().Warn("outbox publish failed",
				zap.String("event_id", event.EventID),
				zap.String("topic", event.Topic),
				zap.Int("attempts", event.Attempts+1),
				zap.Error(err),
			)
			if merr := r.repo.MarkFailed(ctx, event.ID, err.Error()); merr != nil {
				return published, errors.Wrap(merr, "mark outbox event failed")
			}
			continue
		}
		if err := r.repo.MarkPublished(ctx, event.ID, time.Now()); err != nil {
			return published, errors.Wrap(err, "mark outbox event published")
		}
		published++
	}
	if len(pending) > 0 {
		zap.L().Debug("outbox relay batch done",
			zap.Int("pending", len(pending)),
			zap.Int("published", published),
		)
	}
	return published, nil
}

// Cleanup deletes published events older than retention.
func (r *Relay) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := r.repo.DeletePublishedBefore(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, errors.Wrap(err, "delete published outbox events")
	}
	return n, nil
}
