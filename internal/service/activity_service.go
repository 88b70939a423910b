package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/events"
)

// ActivityService writes an activity log line for every domain event.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{dispatcher: dispatcher, logger: logger.Named("activity")}
}

// RegisterHandlers subscribes the activity log to every event type.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.SubscribeAll(a.handle)
}

func (a *ActivityService) handle(_ context.Context, event events.Event) error {
	if event.Type == events.EventCRMSyncFailed {
		a.logger.Warn(string(event.Type), a.fields(event)...)
		return nil
	}
	a.logger.Info(string(event.Type), a.fields(event)...)
	return nil
}

func (a *ActivityService) fields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.Int64("entity_id", event.EntityID),
		zap.Time("at", event.Timestamp),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.Int64("actor_id", *event.ActorID))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	return fields
}
