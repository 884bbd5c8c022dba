package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/store-management/internal/events"
)

const (
	auditTrailKey = "audit:trail"
	auditTrailMax = 1000
)

// AuditSink persists serialized audit entries. Satisfied by
// persistence.Redis; a nil sink keeps log-only auditing.
type AuditSink interface {
	AppendCapped(ctx context.Context, key, value string, max int64)
}

// AuditService records security-relevant events emitted by the other
// services.
type AuditService struct {
	dispatcher events.Dispatcher
	sink       AuditSink
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, sink AuditSink, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, sink: sink, logger: logger}
}

// RegisterHandlers subscribes to every audited event type.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	audited := []events.EventType{
		events.EventUserRegistered,
		events.EventUserLogin,
		events.EventUserRoleChanged,
		events.EventUserEnabled,
		events.EventUserDisabled,
		events.EventProductCreated,
		events.EventProductUpdated,
		events.EventProductDeleted,
	}
	for _, eventType := range audited {
		a.dispatcher.Subscribe(eventType, a.record)
	}
}

func (a *AuditService) record(ctx context.Context, event events.Event) error {
	a.logger.Info("audit",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("actor", event.Actor))

	if a.sink == nil {
		return nil
	}
	encoded, err := json.Marshal(event)
	if err != nil {
		return err
	}
	a.sink.AppendCapped(ctx, auditTrailKey, string(encoded), auditTrailMax)
	return nil
}
