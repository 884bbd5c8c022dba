package events

import "time"

// EventType enumerates supported audit event identifiers.
type EventType string

const (
	EventUserRegistered  EventType = "user_registered"
	EventUserLogin       EventType = "user_login"
	EventUserRoleChanged EventType = "user_role_changed"
	EventUserEnabled     EventType = "user_enabled"
	EventUserDisabled    EventType = "user_disabled"
	EventProductCreated  EventType = "product_created"
	EventProductUpdated  EventType = "product_updated"
	EventProductDeleted  EventType = "product_deleted"
)

// Event represents an audit record emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     string      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// UserPayload payload for account events.
type UserPayload struct {
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

// ProductPayload payload for catalog events.
type ProductPayload struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Category  string `json:"category,omitempty"`
}
