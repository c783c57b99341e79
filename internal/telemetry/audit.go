package telemetry

import (
	"context"
	"log"
	"time"
)

// Publisher is the transport the emitter publishes through.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// AuditEmitter writes audit events for moderation-relevant actions in the
// messaging service. Emission is fire-and-forget; a failed publish is logged
// and the request proceeds.
type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
}

// AuditEvent is the flattened audit record shipped to the audit stream.
type AuditEvent struct {
	SchemaVersion int     `json:"schema_version"`
	EventType     string  `json:"event_type"`
	OccurredAt    string  `json:"occurred_at"`
	Service       string  `json:"service"`
	Environment   string  `json:"environment"`
	RequestID     string  `json:"request_id"`
	UserID        *string `json:"user_id,omitempty"`
	Level         string  `json:"level"`
	Action        string  `json:"action"`
}

const auditSchemaVersion = 1

func NewAuditEmitter(publisher Publisher, routingKey, service, environment string) *AuditEmitter {
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
	}
}

// Emit publishes one audit event. Safe to call on a nil emitter.
func (e *AuditEmitter) Emit(ctx context.Context, level, action, requestID string, userID *string) {
	if e == nil || e.publisher == nil {
		return
	}

	event := AuditEvent{
		SchemaVersion: auditSchemaVersion,
		EventType:     "audit_log",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		UserID:        userID,
		Level:         level,
		Action:        action,
	}

	if err := e.publisher.Publish(ctx, e.routingKey, event); err != nil {
		log.Printf("audit publish failed: %v", err)
	}
}
