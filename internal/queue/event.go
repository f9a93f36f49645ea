// Package queue carries session lifecycle events over RabbitMQ.
package queue

import "time"

// SessionEventsQueue is the durable queue session events are published to.
const SessionEventsQueue = "session.events"

// Event types.
const (
	EventLogin   = "session.login"
	EventLogout  = "session.logout"
	EventExpired = "session.expired"
)

// SessionEvent is published whenever a client session starts, ends or is
// torn down after a rejected refresh.  It is small enough to be logged as a
// single audit line by the consumer.
type SessionEvent struct {
	Type       string    `json:"type"`
	Profile    string    `json:"profile,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	Email      string    `json:"email,omitempty"`
	Role       string    `json:"role,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
