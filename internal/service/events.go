package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/crm"
	"github.com/spec-kit/support-desk/internal/events"
)

// publisher wraps the dispatcher so that event delivery never fails a request.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func (p publisher) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("entity_id", event.EntityID),
			zap.Error(err))
	}
}

// syncFailed logs and announces a CRM call that did not succeed.
func (p publisher) syncFailed(ctx context.Context, entity string, entityID int64, actorID *int64, res crm.Result) {
	if !res.Failed() {
		return
	}
	p.logger.Warn("crm sync failed",
		zap.String("entity", entity),
		zap.Int64("entity_id", entityID),
		zap.String("outcome", string(res.Outcome)),
		zap.String("reason", res.Reason))
	p.publish(ctx, events.New(events.EventCRMSyncFailed, entityID, actorID, events.CRMSyncFailedPayload{
		Entity:  entity,
		Outcome: res.Outcome,
		Reason:  res.Reason,
	}))
}

func actorOf(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}
