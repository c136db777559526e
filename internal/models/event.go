package models

// UserEventType names a user lifecycle change.
type UserEventType string

const (
	UserCreated UserEventType = "user.created"
	UserUpdated UserEventType = "user.updated"
	UserDeleted UserEventType = "user.deleted"
)

// UserEvent is the message published for every successful mutation.
type UserEvent struct {
	EventID   string        `json:"event_id"`  // EventID is a unique identifier for the event.
	Type      UserEventType `json:"type"`      // Type is one of user.created, user.updated or user.deleted.
	UserID    int64         `json:"user_id"`   // UserID is the affected record.
	Timestamp int64         `json:"timestamp"` // Timestamp is the Unix time (in seconds) the event was emitted.
	User      User          `json:"user"`      // User is the record state after the change.
}
